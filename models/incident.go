package models

import (
	"time"

	"github.com/google/uuid"
)

// Incident severities.
const (
	SeverityLow      = "low"
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

// Incident statuses. Any status may follow any other; the enum is validated
// but no transition graph is imposed.
const (
	StatusReported    = "reported"
	StatusUnderReview = "under review"
	StatusInProgress  = "in progress"
	StatusResolved    = "resolved"
	StatusDismissed   = "dismissed"
)

// ValidIncidentStatus reports whether status is in the five-value enum.
func ValidIncidentStatus(status string) bool {
	switch status {
	case StatusReported, StatusUnderReview, StatusInProgress, StatusResolved, StatusDismissed:
		return true
	}
	return false
}

// ValidSeverity reports whether severity is in the four-value enum.
func ValidSeverity(severity string) bool {
	switch severity {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}

// Incident is the unit of work: reported by exactly one user, assigned to at
// most one authority, carrying an ordered feedback trail.
type Incident struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Title        string    `json:"title" gorm:"not null"`
	Description  string    `json:"description" gorm:"type:varchar(1000);not null"`
	Location     string    `json:"location" gorm:"not null"`
	ImageURL     string    `json:"image" gorm:"not null"`
	ThumbnailURL string    `json:"thumbnail_url"`
	Severity     string    `json:"severity" gorm:"type:varchar(16);default:'high'"`
	Status       string    `json:"status" gorm:"type:varchar(16);default:'reported';index"`

	ReportedByID uint  `json:"reported_by_id" gorm:"not null;index"`
	ReportedBy   *User `json:"reported_by,omitempty" gorm:"foreignKey:ReportedByID"`
	AssignedToID *uint `json:"assigned_to_id" gorm:"index"`
	AssignedTo   *User `json:"assigned_to,omitempty" gorm:"foreignKey:AssignedToID"`

	Feedback []Feedback `json:"feedback,omitempty" gorm:"foreignKey:IncidentID"`
	Messages []Message  `json:"messages,omitempty" gorm:"foreignKey:IncidentID"`

	ResolvedAt      *time.Time `json:"resolved_at,omitempty"`
	ResolvedByID    *uint      `json:"resolved_by_id,omitempty"`
	ResolutionNotes string     `json:"resolution_notes,omitempty"`
}

// Feedback is one entry in an incident's feedback trail. Rows are inserted
// individually so concurrent appends never overwrite each other.
type Feedback struct {
	Model
	IncidentID    uuid.UUID `json:"incident_id" gorm:"type:uuid;not null;index"`
	Message       string    `json:"message" gorm:"not null"`
	SubmittedByID uint      `json:"submitted_by_id" gorm:"not null"`
	SubmittedBy   *User     `json:"submitted_by,omitempty" gorm:"foreignKey:SubmittedByID"`
	Role          Role      `json:"role" gorm:"type:varchar(16);not null"`
}

// Message is one entry in an incident's conversation thread, ordered by
// creation time. Stored row-per-message like Feedback.
type Message struct {
	Model
	IncidentID uuid.UUID `json:"incident_id" gorm:"type:uuid;not null;index"`
	Text       string    `json:"text" gorm:"not null"`
	SentByID   uint      `json:"sent_by_id" gorm:"not null"`
	SentBy     *User     `json:"sent_by,omitempty" gorm:"foreignKey:SentByID"`
	Role       Role      `json:"role" gorm:"type:varchar(16);not null"`
}

type SendMessageRequest struct {
	Message string `json:"message" binding:"required"`
}

type ReportIncidentRequest struct {
	Title       string `form:"title" binding:"required"`
	Description string `form:"description" binding:"required"`
	Location    string `form:"location" binding:"required"`
	Severity    string `form:"severity"`
}

type AssignIncidentRequest struct {
	AuthorityID uint `json:"authority_id" binding:"required"`
}

type UpdateStatusRequest struct {
	Status          string `json:"status" binding:"required"`
	ResolutionNotes string `json:"resolution_notes"`
}

type SubmitFeedbackRequest struct {
	IncidentID string `json:"incident_id" binding:"required"`
	Feedback   string `json:"feedback" binding:"required"`
}

// DashboardStats is the admin dashboard summary.
type DashboardStats struct {
	TotalUsers           int64   `json:"total_users"`
	PendingRegistrations int64   `json:"pending_registrations"`
	TotalIncidents       int64   `json:"total_incidents"`
	ResolvedIncidents    int64   `json:"resolved_incidents"`
	OpenIncidents        int64   `json:"open_incidents"`
	InProgressIncidents  int64   `json:"in_progress_incidents"`
	ResolutionRate       float64 `json:"resolution_rate"`
}

// AuthorityStats is the per-authority dashboard summary.
type AuthorityStats struct {
	TotalAssigned   int64   `json:"total_assigned"`
	ResolvedCount   int64   `json:"resolved_count"`
	InProgressCount int64   `json:"in_progress_count"`
	PendingCount    int64   `json:"pending_count"`
	ResolutionRate  float64 `json:"resolution_rate"`
}

// MonthlyIncidentCount is one bucket of the incident trend aggregate.
type MonthlyIncidentCount struct {
	Year  int   `json:"year"`
	Month int   `json:"month"`
	Count int64 `json:"count"`
}
