package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"cosmovid/media-api/internal/domain/shrink"
)

// ShrinkHandler exposes the video compression endpoint.
type ShrinkHandler struct {
	service *shrink.Service
	log     zerolog.Logger
}

func NewShrinkHandler(service *shrink.Service, log zerolog.Logger) *ShrinkHandler {
	return &ShrinkHandler{
		service: service,
		log:     log.With().Str("component", "shrink-handler").Logger(),
	}
}

// Limit godoc
// @Summary      Report the shrink upload limit
// @Tags         shrink
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /api/shrink/limit [get]
func (h *ShrinkHandler) Limit(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"maxBytes": h.service.MaxBytes(),
		"maxMb":    h.service.MaxMB(),
	})
}

// Shrink godoc
// @Summary      Compress a video
// @Description  Transcodes the uploaded video to 720p H.264 and streams it back.
// @Tags         shrink
// @Accept       multipart/form-data
// @Produce      video/mp4
// @Param        video  formData  file  true  "Video file"
// @Success      200  "binary data"
// @Failure      400  {object}  map[string]interface{}
// @Failure      500  {object}  map[string]interface{}
// @Router       /api/shrink [post]
func (h *ShrinkHandler) Shrink(c *gin.Context) {
	file, header, err := c.Request.FormFile("video")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "No video file uploaded."})
		return
	}
	defer file.Close()

	if header.Size > h.service.MaxBytes() {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   fmt.Sprintf("Video must be %dMB or less.", h.service.MaxMB()),
		})
		return
	}
	if err := shrink.AcceptUpload(header.Filename, header.Header.Get("Content-Type")); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Only video files are allowed."})
		return
	}

	outputPath, cleanup, err := h.service.Process(c.Request.Context(), file, header.Filename)
	if err != nil {
		switch {
		case errors.Is(err, shrink.ErrTooLarge):
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error":   fmt.Sprintf("Video must be %dMB or less.", h.service.MaxMB()),
			})
		default:
			h.log.Error().Err(err).Str("filename", header.Filename).Msg("shrink failed")
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error":   "Video compression failed. Make sure the file is a valid video.",
			})
		}
		return
	}
	defer cleanup()

	c.Header("Content-Disposition", `attachment; filename="`+shrink.OutputName(header.Filename)+`"`)
	c.Header("Content-Type", "video/mp4")
	c.File(outputPath)
}
