package models

import "github.com/google/uuid"

// Notification severity tags.
const (
	TagInfo    = "info"
	TagWarning = "warning"
	TagSuccess = "success"
	TagError   = "error"
)

// MaxNotificationsPerUser bounds the per-user notification log. The oldest
// entries are evicted once the cap is exceeded.
const MaxNotificationsPerUser = 50

// Notification is one entry in a user's notification log, newest first.
type Notification struct {
	Model
	UserID     uint      `json:"user_id" gorm:"not null;index"`
	Text       string    `json:"text" gorm:"not null"`
	IncidentID uuid.UUID `json:"incident_id" gorm:"type:uuid"`
	Tag        string    `json:"type" gorm:"type:varchar(16);default:'info'"`
	IsRead     bool      `json:"is_read" gorm:"default:false"`
}
