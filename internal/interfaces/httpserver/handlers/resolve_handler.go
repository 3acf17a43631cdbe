package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"cosmovid/media-api/internal/domain/resolve"
	"cosmovid/media-api/internal/infrastructure/metrics"
)

// ResolveHandler exposes the per-platform resolve endpoints.
type ResolveHandler struct {
	service *resolve.Service
	log     zerolog.Logger
}

func NewResolveHandler(service *resolve.Service, log zerolog.Logger) *ResolveHandler {
	return &ResolveHandler{
		service: service,
		log:     log.With().Str("component", "resolve-handler").Logger(),
	}
}

type resolveRequest struct {
	URL string `json:"url"`
}

// requestURL pulls the url field; an empty value is the only input shape that
// earns a 400, everything else resolves to a success-flagged envelope.
func requestURL(c *gin.Context, missingMsg string) (string, bool) {
	var req resolveRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.URL == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   missingMsg,
			"links":   gin.H{},
		})
		return "", false
	}
	return req.URL, true
}

func resolutionStatus(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}

// TikTok godoc
// @Summary      Resolve TikTok download links
// @Description  Returns watermarked/no-watermark video and audio links for a TikTok URL.
// @Tags         resolve
// @Accept       json
// @Produce      json
// @Param        request  body      resolveRequest  true  "TikTok URL"
// @Success      200      {object}  resolve.TikTokResult
// @Failure      400      {object}  map[string]interface{}
// @Router       /api/download [post]
func (h *ResolveHandler) TikTok(c *gin.Context) {
	url, ok := requestURL(c, "TikTok URL is required.")
	if !ok {
		return
	}
	result := h.service.ResolveTikTok(c.Request.Context(), url)
	metrics.RecordResolution(string(resolve.PlatformTikTok), resolutionStatus(result.Success))
	c.JSON(http.StatusOK, result)
}

// X godoc
// @Summary      Resolve X video link
// @Description  Returns the video link for an X/Twitter status URL.
// @Tags         resolve
// @Accept       json
// @Produce      json
// @Param        request  body      resolveRequest  true  "X URL"
// @Success      200      {object}  resolve.XResult
// @Failure      400      {object}  map[string]interface{}
// @Router       /api/x [post]
func (h *ResolveHandler) X(c *gin.Context) {
	url, ok := requestURL(c, "X URL is required.")
	if !ok {
		return
	}
	result := h.service.ResolveX(c.Request.Context(), url)
	metrics.RecordResolution(string(resolve.PlatformX), resolutionStatus(result.Success))
	c.JSON(http.StatusOK, result)
}

// Instagram godoc
// @Summary      Resolve Instagram download links
// @Description  Returns video/image links for a post or Reel, including carousel items.
// @Tags         resolve
// @Accept       json
// @Produce      json
// @Param        request  body      resolveRequest  true  "Instagram URL"
// @Success      200      {object}  resolve.InstagramResult
// @Failure      400      {object}  map[string]interface{}
// @Router       /api/instagram [post]
func (h *ResolveHandler) Instagram(c *gin.Context) {
	url, ok := requestURL(c, "Instagram URL is required.")
	if !ok {
		return
	}
	result := h.service.ResolveInstagram(c.Request.Context(), url)
	metrics.RecordResolution(string(resolve.PlatformIG), resolutionStatus(result.Success))
	c.JSON(http.StatusOK, result)
}

// Stories godoc
// @Summary      Resolve Instagram stories
// @Description  Returns story items for a public Instagram stories URL.
// @Tags         resolve
// @Accept       json
// @Produce      json
// @Param        request  body      resolveRequest  true  "Stories URL"
// @Success      200      {object}  resolve.StoriesResult
// @Failure      400      {object}  map[string]interface{}
// @Router       /api/instagram/stories [post]
func (h *ResolveHandler) Stories(c *gin.Context) {
	url, ok := requestURL(c, "Instagram stories URL is required.")
	if !ok {
		return
	}
	result := h.service.ResolveStories(c.Request.Context(), url)
	metrics.RecordResolution(string(resolve.PlatformStories), resolutionStatus(result.Success))
	c.JSON(http.StatusOK, result)
}
