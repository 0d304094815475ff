package storage

import (
	"errors"
	"log"
	"time"

	"tulumreporta/backend/internal/models"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// SaveEditToken persists a freshly issued edit token.
func (s *Service) SaveEditToken(token *models.EditToken) error {
	if err := s.DB.Create(token).Error; err != nil {
		log.Printf("ERROR: Failed to save edit token %s for report %s: %v", token.ShortID, token.ReportID, err)
		return err
	}
	return nil
}

// GetEditTokenByShortID looks an edit token up by its public short id.
func (s *Service) GetEditTokenByShortID(shortID string) (*models.EditToken, error) {
	var token models.EditToken
	err := s.DB.Where("short_id = ?", shortID).First(&token).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		log.Printf("ERROR: Failed to get edit token %s: %v", shortID, err)
		return nil, err
	}
	return &token, nil
}

// SeenDelivery records a transport delivery key in Redis and reports whether
// it was already seen within the window. Without Redis every delivery is
// treated as new, which matches the transport's own weak guarantee.
func (s *Service) SeenDelivery(key string, window time.Duration) (bool, error) {
	if s.Redis == nil {
		return false, nil
	}
	set, err := s.Redis.SetNX(s.Ctx, "delivery:"+key, "1", window).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return false, err
	}
	return !set, nil
}
