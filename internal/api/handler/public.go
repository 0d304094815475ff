package handler

import (
	"net/http"

	"tulumreporta/backend/internal/models"

	"github.com/gin-gonic/gin"
)

// ListPublishedReports is the public map feed: every published report,
// newest first. No credential required.
func (h *Handler) ListPublishedReports(c *gin.Context) {
	reports, err := h.Storage.ListReportsByStatus(models.StatusPublished, false)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error leyendo reportes"})
		return
	}
	c.JSON(http.StatusOK, reports)
}
