package handler

import (
	"net/http"

	"flightassist/internal/model"
	"flightassist/internal/service"

	"github.com/gin-gonic/gin"
)

// AssistantHandler handles assistant query HTTP requests
type AssistantHandler struct {
	assistant *service.Assistant
}

// NewAssistantHandler creates a new assistant handler
func NewAssistantHandler(assistant *service.Assistant) *AssistantHandler {
	return &AssistantHandler{assistant: assistant}
}

// Ask handles POST /api/v1/assistant. A well-formed request always
// gets HTTP 200 with a best-effort answer; only malformed JSON is
// rejected.
func (h *AssistantHandler) Ask(c *gin.Context) {
	var req model.AssistantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	resp := h.assistant.Answer(c.Request.Context(), &req)
	c.JSON(http.StatusOK, resp)
}
