package handler

import (
	"errors"
	"net/http"

	"tulumreporta/backend/internal/storage"

	"github.com/gin-gonic/gin"
)

// AdminAuth gates moderation routes behind the static moderator credential.
// An unset credential disables the whole admin surface.
func (h *Handler) AdminAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader("X-Admin-Token")
		if token == "" {
			token = c.Query("admin_token")
		}
		if h.AdminModToken == "" || token != h.AdminModToken {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "No autorizado"})
			return
		}
		c.Next()
	}
}

// ListPendingReports returns the moderation queue, oldest first.
func (h *Handler) ListPendingReports(c *gin.Context) {
	reports, err := h.Moderation.ListPending()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error leyendo"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "reports": reports})
}

// ApproveReport publishes a pending report and notifies the reporter.
func (h *Handler) ApproveReport(c *gin.Context) {
	report, err := h.Moderation.Approve(c.Param("id"))
	if errors.Is(err, storage.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Reporte no encontrado"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error actualizando"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "report": report})
}

type denyRequest struct {
	Reason string `json:"reason"`
}

// DenyReport rejects a pending report with a reason and notifies the
// reporter.
func (h *Handler) DenyReport(c *gin.Context) {
	var req denyRequest
	// An empty body means denial without a reason; only malformed JSON is an
	// actual error, and even that degrades to no reason (original behavior).
	_ = c.ShouldBindJSON(&req)

	report, err := h.Moderation.Deny(c.Param("id"), req.Reason)
	if errors.Is(err, storage.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Reporte no encontrado"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error actualizando"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "report": report})
}

// NotifyReportStatus re-sends the notification for the report's current
// lifecycle state.
func (h *Handler) NotifyReportStatus(c *gin.Context) {
	err := h.Moderation.NotifyStatus(c.Param("id"))
	if errors.Is(err, storage.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Reporte no encontrado"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error enviando la notificación"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
