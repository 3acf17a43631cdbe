package handlers

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"cosmovid/media-api/internal/domain/proxy"
	"cosmovid/media-api/internal/domain/resolve"
	"cosmovid/media-api/internal/infrastructure/metrics"
)

const (
	strategyExtract = "extract"
	strategyFetch   = "fetch"
)

// ProxyHandler streams resolved media back through this origin. Headers are
// committed only after the upstream has produced its first bytes, so every
// failure surfaces as a JSON error rather than a truncated binary body.
type ProxyHandler struct {
	service *proxy.Service
	log     zerolog.Logger
}

func NewProxyHandler(service *proxy.Service, log zerolog.Logger) *ProxyHandler {
	return &ProxyHandler{
		service: service,
		log:     log.With().Str("component", "proxy-handler").Logger(),
	}
}

// TikTok godoc
// @Summary      Stream TikTok media
// @Description  Streams the chosen variant, re-extracting from the page URL when given.
// @Tags         proxy
// @Produce      octet-stream
// @Param        tiktok_url  query  string  false  "Base64 page URL"
// @Param        media       query  string  false  "Base64 direct media URL"
// @Param        variant     query  string  false  "no_watermark | watermark | mp3"
// @Param        type        query  string  false  "mp4 | mp3"
// @Success      200  "binary data"
// @Failure      400  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /api/download/proxy [get]
func (h *ProxyHandler) TikTok(c *gin.Context) {
	mediaEnc := strings.TrimSpace(c.Query("media"))
	pageEnc := strings.TrimSpace(c.Query("tiktok_url"))
	kind := c.DefaultQuery("type", "mp4")
	variant := resolve.StreamVariant(c.DefaultQuery("variant", string(resolve.VariantNoWatermark)))

	filename := "tiktok-video.mp4"
	contentType := "video/mp4"
	if kind == "mp3" {
		filename = "tiktok-audio.mp3"
		contentType = "audio/mpeg"
	}

	// Page URL wins: re-resolving at download time sidesteps expired CDN links.
	if pageEnc != "" {
		pageURL, err := proxy.DecodeParam(pageEnc)
		if err != nil || !strings.Contains(strings.ToLower(pageURL), "tiktok.com") {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid TikTok URL."})
			return
		}
		h.streamExtract(c, pageURL, variant, filename, contentType,
			"Download failed. Make sure yt-dlp is installed and the URL is valid.")
		return
	}

	if mediaEnc != "" {
		h.streamFetch(c, resolve.PlatformTikTok, mediaEnc, filename, contentType)
		return
	}

	c.JSON(http.StatusBadRequest, gin.H{"error": "Missing media or tiktok_url."})
}

// X godoc
// @Summary      Stream X media
// @Tags         proxy
// @Produce      octet-stream
// @Param        x_url     query  string  false  "Base64 page URL"
// @Param        media     query  string  false  "Base64 direct media URL"
// @Param        filename  query  string  false  "Download filename"
// @Success      200  "binary data"
// @Failure      400  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /api/x/proxy [get]
func (h *ProxyHandler) X(c *gin.Context) {
	mediaEnc := strings.TrimSpace(c.Query("media"))
	pageEnc := strings.TrimSpace(c.Query("x_url"))
	filename := proxy.SanitizeFilename(c.Query("filename"), "x-video.mp4")
	contentType := "video/mp4"

	if pageEnc != "" {
		pageURL, err := proxy.DecodeParam(pageEnc)
		if err != nil || !isXPage(pageURL) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid X/Twitter URL."})
			return
		}
		h.streamExtract(c, pageURL, resolve.VariantWatermark, filename, contentType,
			"Download failed. Make sure yt-dlp is installed and the URL is valid.")
		return
	}

	if mediaEnc != "" {
		h.streamFetch(c, resolve.PlatformX, mediaEnc, filename, contentType)
		return
	}

	c.JSON(http.StatusBadRequest, gin.H{"error": "Missing media or x_url."})
}

// Instagram godoc
// @Summary      Stream Instagram media
// @Description  Direct-fetch only; Instagram links are resolved per item.
// @Tags         proxy
// @Produce      octet-stream
// @Param        media_url  query  string  true   "Base64 direct media URL"
// @Param        filename   query  string  false  "Download filename"
// @Param        type       query  string  false  "mp4 | jpg"
// @Success      200  "binary data"
// @Failure      400  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /api/instagram/proxy [get]
func (h *ProxyHandler) Instagram(c *gin.Context) {
	mediaEnc := strings.TrimSpace(c.Query("media_url"))
	if mediaEnc == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing media_url."})
		return
	}

	kind := c.DefaultQuery("type", "mp4")
	fallbackName := "instagram.mp4"
	contentType := "video/mp4"
	if kind != "mp4" {
		fallbackName = "instagram.jpg"
		contentType = "image/jpeg"
	}
	filename := proxy.SanitizeFilename(c.Query("filename"), fallbackName)

	h.streamFetch(c, resolve.PlatformIG, mediaEnc, filename, contentType)
}

func isXPage(pageURL string) bool {
	lower := strings.ToLower(pageURL)
	return strings.Contains(lower, "x.com") || strings.Contains(lower, "twitter.com")
}

func (h *ProxyHandler) streamExtract(c *gin.Context, pageURL string, variant resolve.StreamVariant, filename, contentType, failMsg string) {
	stream, err := h.service.StreamExtract(c.Request.Context(), pageURL, variant)
	if err != nil {
		metrics.RecordProxyStream(strategyExtract, "error", 0)
		c.JSON(http.StatusBadGateway, gin.H{"error": failMsg})
		return
	}
	h.pipe(c, stream, strategyExtract, filename, contentType)
}

func (h *ProxyHandler) streamFetch(c *gin.Context, platform resolve.Platform, mediaEnc, filename, contentType string) {
	mediaURL, err := proxy.DecodeParam(mediaEnc)
	if err != nil || !h.service.AllowedMediaURL(platform, mediaURL) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or disallowed media URL."})
		return
	}

	stream, err := h.service.FetchDirect(c.Request.Context(), platform, mediaURL)
	if err != nil {
		metrics.RecordProxyStream(strategyFetch, "error", 0)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Could not fetch the file. The link may have expired."})
		return
	}
	h.pipe(c, stream, strategyFetch, filename, contentType)
}

// pipe commits headers and copies the stream. Past this point failures can
// only truncate the body; they are logged, not converted to JSON.
func (h *ProxyHandler) pipe(c *gin.Context, stream *proxy.Stream, strategy, filename, fallbackType string) {
	defer stream.Body.Close()

	contentType := stream.ContentType
	if contentType == "" {
		contentType = fallbackType
	}

	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Header("Content-Type", contentType)
	c.Status(http.StatusOK)

	written := int64(0)
	if n, err := c.Writer.Write(stream.Leading); err != nil {
		h.log.Debug().Err(err).Msg("client went away before first chunk")
		stream.Wait()
		metrics.RecordProxyStream(strategy, "aborted", int64(n))
		return
	}
	written += int64(len(stream.Leading))

	n, copyErr := io.Copy(c.Writer, stream.Body)
	written += n
	waitErr := stream.Wait()

	switch {
	case copyErr != nil:
		h.log.Debug().Err(copyErr).Int64("bytes", written).Msg("stream interrupted")
		metrics.RecordProxyStream(strategy, "aborted", written)
	case waitErr != nil:
		h.log.Warn().Err(waitErr).Int64("bytes", written).Msg("upstream ended with error after streaming began")
		metrics.RecordProxyStream(strategy, "truncated", written)
	default:
		metrics.RecordProxyStream(strategy, "success", written)
	}
}
