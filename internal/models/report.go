package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Report lifecycle states. pending is the only state a report is born in;
// published and rejected are terminal for the moderation dimension. assigned
// and resolved are follow-up states set from the admin panel and only matter
// for the status notification.
const (
	StatusPending   = "pending"
	StatusPublished = "published"
	StatusRejected  = "rejected"
	StatusAssigned  = "assigned"
	StatusResolved  = "resolved"
)

// Report is a persisted citizen problem submission.
type Report struct {
	ID           string         `gorm:"primaryKey" json:"id"`
	ReporterID   string         `gorm:"index" json:"-"`
	Category     string         `json:"category"`
	Subcategory  string         `json:"subcategory"`
	Description  string         `json:"description"`
	PhotoURLs    pq.StringArray `gorm:"type:text[]" json:"photo_urls"`
	Lat          float64        `json:"lat"`
	Lon          float64        `json:"lon"`
	AddressText  string         `json:"address_text,omitempty"`
	Landmark     string         `json:"landmark,omitempty"`
	Severity     int            `json:"severity"`
	Priority     int            `json:"priority"`
	Status       string         `gorm:"index" json:"status"`
	DeniedReason *string        `json:"denied_reason,omitempty"`
	Assignee     string         `json:"assignee,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"-"`
}

// BeforeCreate assigns the opaque report id.
func (r *Report) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	return
}

// EditToken is a short-lived credential allowing the original reporter to
// revise a pending report's location. Expiry is enforced twice: by the exp
// claim inside Token and by ExpiresAt here.
type EditToken struct {
	ShortID    string    `gorm:"primaryKey"`
	ReportID   string    `gorm:"index"`
	ReporterID string
	Token      string
	ExpiresAt  time.Time
	CreatedAt  time.Time
}
