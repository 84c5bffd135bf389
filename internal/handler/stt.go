package handler

import (
	"errors"
	"net/http"

	"flightassist/internal/model"
	"flightassist/internal/service"

	"github.com/gin-gonic/gin"
)

// STTHandler handles speech-to-text HTTP requests
type STTHandler struct {
	stt *service.STTService
}

// NewSTTHandler creates a new speech-to-text handler
func NewSTTHandler(stt *service.STTService) *STTHandler {
	return &STTHandler{stt: stt}
}

// Transcribe handles POST /api/v1/stt. Transcription has no degraded
// mode, so provider failures surface as 502.
func (h *STTHandler) Transcribe(c *gin.Context) {
	var req model.STTRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	resp, err := h.stt.Transcribe(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrBadAudio) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": "Transcription failed: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, resp)
}
