// Package handler exposes the HTTP surface: the public map API, the
// token-gated edit API, the short-link redirect and the admin moderation API.
package handler

import (
	"net/http"

	"tulumreporta/backend/internal/config"
	"tulumreporta/backend/internal/editlink"
	"tulumreporta/backend/internal/moderation"
	"tulumreporta/backend/internal/storage"

	"github.com/gin-gonic/gin"
)

// Handler holds the services the HTTP routes delegate to.
type Handler struct {
	Storage       storage.Storage
	Links         *editlink.Resolver
	Moderation    *moderation.Service
	Bounds        config.BoundingBox
	AdminModToken string
}

func NewHandler(s storage.Storage, links *editlink.Resolver, mod *moderation.Service, bounds config.BoundingBox, adminModToken string) *Handler {
	return &Handler{
		Storage:       s,
		Links:         links,
		Moderation:    mod,
		Bounds:        bounds,
		AdminModToken: adminModToken,
	}
}

// RegisterRoutes wires every route onto the router.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/", h.Root)
	r.GET("/ping", h.Ping)

	r.GET("/e/:shortId", h.RedirectShortLink)

	r.GET("/api/reports", h.ListPublishedReports)
	r.GET("/api/reports/:id", h.GetReportForEdit)
	r.PUT("/api/reports/:id/location", h.UpdateReportLocation)

	admin := r.Group("/admin", h.AdminAuth())
	admin.GET("/reports/pending", h.ListPendingReports)
	admin.POST("/reports/:id/approve", h.ApproveReport)
	admin.POST("/reports/:id/deny", h.DenyReport)
	admin.POST("/reports/:id/notify-status", h.NotifyReportStatus)
}

func (h *Handler) Root(c *gin.Context) {
	c.String(http.StatusOK, "Tulum Reporta bot running")
}

func (h *Handler) Ping(c *gin.Context) {
	c.String(http.StatusOK, "pong")
}
