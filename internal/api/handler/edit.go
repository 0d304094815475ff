package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"tulumreporta/backend/internal/editlink"
	"tulumreporta/backend/internal/storage"

	"github.com/gin-gonic/gin"
)

// RedirectShortLink resolves a short edit link to the long edit page URL.
// Unknown ids are 404, expired ones 410.
func (h *Handler) RedirectShortLink(c *gin.Context) {
	record, err := h.Links.Resolve(c.Param("shortId"))
	switch {
	case errors.Is(err, editlink.ErrNotFound):
		c.String(http.StatusNotFound, "Enlace inválido")
		return
	case errors.Is(err, editlink.ErrExpired):
		c.String(http.StatusGone, "Expirado")
		return
	case err != nil:
		c.String(http.StatusInternalServerError, "Error resolviendo enlace")
		return
	}

	c.Redirect(http.StatusFound,
		fmt.Sprintf("/editar.html?reportId=%s&t=%s", record.ReportID, url.QueryEscape(record.Token)))
}

// GetReportForEdit returns the fields the edit page needs, gated by the
// signed token in the query string.
func (h *Handler) GetReportForEdit(c *gin.Context) {
	id := c.Param("id")
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Falta token"})
		return
	}
	if err := h.Links.Authorize(token, id); err != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "Token inválido"})
		return
	}

	report, err := h.Storage.GetReportByID(id)
	if errors.Is(err, storage.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "No encontrado"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error leyendo reporte"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":         report.ID,
		"photo_urls": report.PhotoURLs,
		"lat":        report.Lat,
		"lon":        report.Lon,
	})
}

type updateLocationRequest struct {
	Lat   float64 `json:"lat"`
	Lon   float64 `json:"lon"`
	Label string  `json:"label"`
}

// UpdateReportLocation revises a report's coordinates through a valid edit
// token. The region bounding box is re-validated before the write.
func (h *Handler) UpdateReportLocation(c *gin.Context) {
	id := c.Param("id")
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Falta token"})
		return
	}
	if err := h.Links.Authorize(token, id); err != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "Token inválido"})
		return
	}

	var req updateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "JSON inválido"})
		return
	}
	if !h.Bounds.Contains(req.Lat, req.Lon) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Coordenadas fuera de Tulum"})
		return
	}

	report, err := h.Storage.UpdateReportLocation(id, req.Lat, req.Lon, req.Label)
	if errors.Is(err, storage.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "No encontrado"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error actualizando"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "report": report})
}
