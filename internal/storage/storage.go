package storage

import (
	"context"
	"errors"
	"log"
	"time"

	"tulumreporta/backend/internal/models"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// ErrNotFound is returned when a report or edit token does not exist.
var ErrNotFound = errors.New("record not found")

type Storage interface {
	InsertReport(report *models.Report) error
	GetReportByID(id string) (*models.Report, error)
	ListReportsByStatus(status string, ascending bool) ([]models.Report, error)
	UpdateReportStatus(id, status string, reason *string) (*models.Report, error)
	UpdateReportLocation(id string, lat, lon float64, label string) (*models.Report, error)

	SaveEditToken(token *models.EditToken) error
	GetEditTokenByShortID(shortID string) (*models.EditToken, error)

	SeenDelivery(key string, window time.Duration) (bool, error)
}

type Service struct {
	DB    *gorm.DB
	Redis *redis.Client
	Ctx   context.Context
}

// NewStorageService Constructor. rdb may be nil; delivery de-duplication is
// then disabled.
func NewStorageService(db *gorm.DB, rdb *redis.Client) *Service {
	return &Service{
		DB:    db,
		Redis: rdb,
		Ctx:   context.Background(),
	}
}

// InsertReport persists a new report. The caller is expected to have set
// status and priority already.
func (s *Service) InsertReport(report *models.Report) error {
	if err := s.DB.Create(report).Error; err != nil {
		log.Printf("ERROR: Failed to insert report for reporter %s: %v", report.ReporterID, err)
		return err
	}
	return nil
}

// GetReportByID returns a single report or ErrNotFound.
func (s *Service) GetReportByID(id string) (*models.Report, error) {
	var report models.Report
	err := s.DB.Where("id = ?", id).First(&report).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		log.Printf("ERROR: Failed to get report %s: %v", id, err)
		return nil, err
	}
	return &report, nil
}

// ListReportsByStatus returns reports in creation order: ascending for the
// pending moderation queue, descending for public display.
func (s *Service) ListReportsByStatus(status string, ascending bool) ([]models.Report, error) {
	order := "created_at desc"
	if ascending {
		order = "created_at asc"
	}
	var reports []models.Report
	if err := s.DB.Where("status = ?", status).Order(order).Find(&reports).Error; err != nil {
		log.Printf("ERROR: Failed to list reports with status %s: %v", status, err)
		return nil, err
	}
	return reports, nil
}

// UpdateReportStatus transitions a report's lifecycle state. reason is stored
// as the denial reason; pass nil to clear it.
func (s *Service) UpdateReportStatus(id, status string, reason *string) (*models.Report, error) {
	report, err := s.GetReportByID(id)
	if err != nil {
		return nil, err
	}
	if err := s.DB.Model(report).Updates(map[string]interface{}{
		"status":        status,
		"denied_reason": reason,
	}).Error; err != nil {
		log.Printf("ERROR: Failed to update status of report %s: %v", id, err)
		return nil, err
	}
	report.Status = status
	report.DeniedReason = reason
	return report, nil
}

// UpdateReportLocation replaces a report's coordinates. Bounding-box
// validation happens before this is called.
func (s *Service) UpdateReportLocation(id string, lat, lon float64, label string) (*models.Report, error) {
	report, err := s.GetReportByID(id)
	if err != nil {
		return nil, err
	}
	updates := map[string]interface{}{"lat": lat, "lon": lon}
	if label != "" {
		updates["address_text"] = label
	}
	if err := s.DB.Model(report).Updates(updates).Error; err != nil {
		log.Printf("ERROR: Failed to update location of report %s: %v", id, err)
		return nil, err
	}
	report.Lat = lat
	report.Lon = lon
	if label != "" {
		report.AddressText = label
	}
	return report, nil
}
