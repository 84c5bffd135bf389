package handler

import (
	"net/http"

	"flightassist/internal/faq"

	"github.com/gin-gonic/gin"
)

// FAQHandler exposes the loaded FAQ set and its refresh trigger
type FAQHandler struct {
	faqService *faq.Service
}

// NewFAQHandler creates a new FAQ handler
func NewFAQHandler(faqService *faq.Service) *FAQHandler {
	return &FAQHandler{faqService: faqService}
}

// List handles GET /api/v1/faq
func (h *FAQHandler) List(c *gin.Context) {
	items, err := h.faqService.Items(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load FAQ: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "count": len(items)})
}

// Refresh handles POST /api/v1/faq/refresh
func (h *FAQHandler) Refresh(c *gin.Context) {
	count, err := h.faqService.Refresh(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to refresh FAQ: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "count": count})
}
