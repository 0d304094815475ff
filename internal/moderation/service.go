// Package moderation implements the human gate between a submitted report
// and its public visibility.
package moderation

import (
	"fmt"
	"log"

	"tulumreporta/backend/internal/models"
	"tulumreporta/backend/internal/storage"
)

// Notifier delivers a text message to a chat recipient.
type Notifier interface {
	Send(recipientID, text string) error
}

// Service handles the business logic for moderation decisions. Authorization
// is the HTTP layer's responsibility; by the time a call reaches here it is
// already authenticated.
type Service struct {
	Storage    storage.Storage
	Notifier   Notifier
	MapBaseURL string
}

// NewService creates a moderation service.
func NewService(s storage.Storage, n Notifier, mapBaseURL string) *Service {
	return &Service{Storage: s, Notifier: n, MapBaseURL: mapBaseURL}
}

// Approve publishes a report and tells the reporter, clearing any earlier
// denial reason. Re-approving a published report is a status no-op but the
// notification is sent again.
func (s *Service) Approve(id string) (*models.Report, error) {
	report, err := s.Storage.UpdateReportStatus(id, models.StatusPublished, nil)
	if err != nil {
		return nil, err
	}
	s.notify(report.ReporterID, s.publishedText(report))
	return report, nil
}

// Deny rejects a report with a reason and tells the reporter.
func (s *Service) Deny(id, reason string) (*models.Report, error) {
	var stored *string
	if reason != "" {
		stored = &reason
	}
	report, err := s.Storage.UpdateReportStatus(id, models.StatusRejected, stored)
	if err != nil {
		return nil, err
	}
	s.notify(report.ReporterID, s.rejectedText(report))
	return report, nil
}

// ListPending returns the moderation queue, oldest first.
func (s *Service) ListPending() ([]models.Report, error) {
	return s.Storage.ListReportsByStatus(models.StatusPending, true)
}

// NotifyStatus re-sends the notification matching the report's current
// lifecycle state. States without a reporter-facing message are a no-op.
func (s *Service) NotifyStatus(id string) error {
	report, err := s.Storage.GetReportByID(id)
	if err != nil {
		return err
	}

	switch report.Status {
	case models.StatusPublished:
		s.notify(report.ReporterID, s.publishedText(report))
	case models.StatusRejected:
		s.notify(report.ReporterID, s.rejectedText(report))
	case models.StatusAssigned:
		s.notify(report.ReporterID, assignedText(report))
	case models.StatusResolved:
		s.notify(report.ReporterID, resolvedText(report))
	}
	return nil
}

func (s *Service) notify(recipientID, text string) {
	if err := s.Notifier.Send(recipientID, text); err != nil {
		log.Printf("ERROR: Failed to notify reporter %s: %v", recipientID, err)
	}
}

func (s *Service) publishedText(r *models.Report) string {
	return fmt.Sprintf("✅ Tu reporte de *%s* fue *publicado*.\n%s?i=%s\n\n"+
		"Daremos seguimiento con la autoridad, empresa o responsable correspondiente y actualizaremos el estado del reporte cuando haya avances.\n\n"+
		"De tu lado, puedes compartir este enlace con vecinos o autoridades y consultar el mapa para ver cómo evoluciona.\n\n"+
		"*Lo que reportas, importa.*",
		r.Category, s.MapBaseURL, r.ID)
}

func (s *Service) rejectedText(r *models.Report) string {
	reason := "Sin motivo."
	if r.DeniedReason != nil && *r.DeniedReason != "" {
		reason = *r.DeniedReason
	}
	return fmt.Sprintf("❌ Tu reporte de *%s* fue rechazado:\n\n*%s*\n\n"+
		"Por favor revisa nuestras condiciones de uso:\nhttps://www.tulumreporta.com/condiciones.html\n\n"+
		"Cuando estés listo, envía un nuevo reporte con las correcciones.",
		r.Category, reason)
}

func assignedText(r *models.Report) string {
	assignee := ""
	if r.Assignee != "" {
		assignee = fmt.Sprintf(": *%s*", r.Assignee)
	}
	return fmt.Sprintf("ℹ️ Tu reporte de *%s* fue *asignado* a un responsable%s.\n"+
		"Ahora el siguiente paso es que el responsable atienda el problema; cuando se marque como resuelto te lo notificaremos.\n\n"+
		"De tu lado, puedes seguir revisando el estado desde el mapa y avisarnos si la situación empeora.\n\n"+
		"Lo que reportas, importa.",
		r.Category, assignee)
}

func resolvedText(r *models.Report) string {
	return fmt.Sprintf("✅ Tu reporte de *%s* fue marcado como *resuelto*.\n"+
		"Ahora consideramos atendido este incidente.\n\n"+
		"Si el problema continúa o reaparece, puedes volver a reportarlo para que se genere un nuevo seguimiento.\n\n"+
		"Lo que reportas, importa.",
		r.Category)
}
