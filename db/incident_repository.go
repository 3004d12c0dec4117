package db

import (
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/techagentng/incidentx/models"
	"gorm.io/gorm"
)

type IncidentRepository interface {
	CreateIncident(incident *models.Incident) (*models.Incident, error)
	FindIncidentByID(id uuid.UUID) (*models.Incident, error)
	GetAllIncidents() ([]models.Incident, error)
	GetIncidentsByReporter(userID uint) ([]models.Incident, error)
	GetIncidentsByAssignee(authorityID uint) ([]models.Incident, error)
	UpdateAssignee(incidentID uuid.UUID, authorityID uint) error
	UpdateStatus(incidentID uuid.UUID, status string) error
	SetResolutionDetails(incidentID uuid.UUID, resolvedBy uint, notes string, at time.Time) error
	AddFeedback(feedback *models.Feedback) error
	GetIncidentsWithFeedback() ([]models.Incident, error)
	AddMessage(message *models.Message) error
	GetAllMessages() ([]models.Message, error)
	GetMessagesByReporter(userID uint) ([]models.Message, error)
	GetMessagesByAssignee(authorityID uint) ([]models.Message, error)
	CountIncidents() (int64, error)
	CountIncidentsByStatus(status string) (int64, error)
	CountIncidentsByAssigneeAndStatus(authorityID uint, status string) (int64, error)
	CountIncidentsByAssignee(authorityID uint) (int64, error)
	GetRecentIncidents(limit int) ([]models.Incident, error)
	GetRecentIncidentsByAssignee(authorityID uint, limit int) ([]models.Incident, error)
	GetMonthlyIncidentCounts(since time.Time) ([]models.MonthlyIncidentCount, error)
}

type incidentRepo struct {
	DB *gorm.DB
}

func NewIncidentRepo(db *GormDB) IncidentRepository {
	return &incidentRepo{db.DB}
}

func (r *incidentRepo) CreateIncident(incident *models.Incident) (*models.Incident, error) {
	if incident == nil {
		return nil, errors.New("incident is nil")
	}
	if incident.ID == uuid.Nil {
		incident.ID = uuid.New()
	}
	if err := r.DB.Create(incident).Error; err != nil {
		log.Printf("CreateIncident error: %v", err)
		return nil, err
	}
	return incident, nil
}

func (r *incidentRepo) FindIncidentByID(id uuid.UUID) (*models.Incident, error) {
	var incident models.Incident
	err := r.DB.
		Preload("ReportedBy").
		Preload("AssignedTo").
		Preload("Feedback", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC, id ASC")
		}).
		Preload("Feedback.SubmittedBy").
		Preload("Messages", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC, id ASC")
		}).
		Preload("Messages.SentBy").
		Where("id = ?", id).First(&incident).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, err
	}
	return &incident, nil
}

func (r *incidentRepo) listQuery() *gorm.DB {
	return r.DB.
		Preload("ReportedBy").
		Preload("AssignedTo").
		Preload("Feedback", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC, id ASC")
		}).
		Order("created_at DESC")
}

func (r *incidentRepo) GetAllIncidents() ([]models.Incident, error) {
	var incidents []models.Incident
	if err := r.listQuery().Find(&incidents).Error; err != nil {
		log.Printf("Error fetching incidents: %v", err)
		return nil, err
	}
	return incidents, nil
}

func (r *incidentRepo) GetIncidentsByReporter(userID uint) ([]models.Incident, error) {
	var incidents []models.Incident
	if err := r.listQuery().Where("reported_by_id = ?", userID).Find(&incidents).Error; err != nil {
		log.Printf("Error fetching incidents for reporter %d: %v", userID, err)
		return nil, err
	}
	return incidents, nil
}

func (r *incidentRepo) GetIncidentsByAssignee(authorityID uint) ([]models.Incident, error) {
	var incidents []models.Incident
	if err := r.listQuery().Where("assigned_to_id = ?", authorityID).Find(&incidents).Error; err != nil {
		log.Printf("Error fetching incidents for assignee %d: %v", authorityID, err)
		return nil, err
	}
	return incidents, nil
}

// UpdateAssignee writes only the assignee column so it cannot clobber
// concurrent writes to other fields.
func (r *incidentRepo) UpdateAssignee(incidentID uuid.UUID, authorityID uint) error {
	result := r.DB.Model(&models.Incident{}).Where("id = ?", incidentID).Update("assigned_to_id", authorityID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UpdateStatus writes only the status column, same reasoning as UpdateAssignee.
func (r *incidentRepo) UpdateStatus(incidentID uuid.UUID, status string) error {
	result := r.DB.Model(&models.Incident{}).Where("id = ?", incidentID).Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *incidentRepo) SetResolutionDetails(incidentID uuid.UUID, resolvedBy uint, notes string, at time.Time) error {
	return r.DB.Model(&models.Incident{}).Where("id = ?", incidentID).Updates(map[string]interface{}{
		"resolved_at":      at,
		"resolved_by_id":   resolvedBy,
		"resolution_notes": notes,
	}).Error
}

// AddFeedback inserts a single feedback row; appends from concurrent
// requests interleave instead of overwriting the whole document.
func (r *incidentRepo) AddFeedback(feedback *models.Feedback) error {
	if err := r.DB.Create(feedback).Error; err != nil {
		log.Printf("AddFeedback error: %v", err)
		return err
	}
	return nil
}

func (r *incidentRepo) GetIncidentsWithFeedback() ([]models.Incident, error) {
	var incidents []models.Incident
	err := r.DB.
		Preload("ReportedBy").
		Preload("Feedback", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC, id ASC")
		}).
		Preload("Feedback.SubmittedBy").
		Joins("JOIN feedbacks ON feedbacks.incident_id = incidents.id").
		Group("incidents.id").
		Order("incidents.created_at DESC").
		Find(&incidents).Error
	if err != nil {
		log.Printf("Error fetching incidents with feedback: %v", err)
		return nil, err
	}
	return incidents, nil
}

// AddMessage appends one row to the incident's conversation thread.
func (r *incidentRepo) AddMessage(message *models.Message) error {
	if err := r.DB.Create(message).Error; err != nil {
		log.Printf("AddMessage error: %v", err)
		return err
	}
	return nil
}

func (r *incidentRepo) messageQuery() *gorm.DB {
	return r.DB.
		Preload("SentBy").
		Order("messages.created_at ASC, messages.id ASC")
}

func (r *incidentRepo) GetAllMessages() ([]models.Message, error) {
	var messages []models.Message
	if err := r.messageQuery().Find(&messages).Error; err != nil {
		log.Printf("Error fetching messages: %v", err)
		return nil, err
	}
	return messages, nil
}

func (r *incidentRepo) GetMessagesByReporter(userID uint) ([]models.Message, error) {
	var messages []models.Message
	err := r.messageQuery().
		Joins("JOIN incidents ON incidents.id = messages.incident_id").
		Where("incidents.reported_by_id = ?", userID).
		Find(&messages).Error
	if err != nil {
		log.Printf("Error fetching messages for reporter %d: %v", userID, err)
		return nil, err
	}
	return messages, nil
}

func (r *incidentRepo) GetMessagesByAssignee(authorityID uint) ([]models.Message, error) {
	var messages []models.Message
	err := r.messageQuery().
		Joins("JOIN incidents ON incidents.id = messages.incident_id").
		Where("incidents.assigned_to_id = ?", authorityID).
		Find(&messages).Error
	if err != nil {
		log.Printf("Error fetching messages for assignee %d: %v", authorityID, err)
		return nil, err
	}
	return messages, nil
}

func (r *incidentRepo) CountIncidents() (int64, error) {
	var count int64
	err := r.DB.Model(&models.Incident{}).Count(&count).Error
	return count, err
}

func (r *incidentRepo) CountIncidentsByStatus(status string) (int64, error) {
	var count int64
	err := r.DB.Model(&models.Incident{}).Where("status = ?", status).Count(&count).Error
	return count, err
}

func (r *incidentRepo) CountIncidentsByAssignee(authorityID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&models.Incident{}).Where("assigned_to_id = ?", authorityID).Count(&count).Error
	return count, err
}

func (r *incidentRepo) CountIncidentsByAssigneeAndStatus(authorityID uint, status string) (int64, error) {
	var count int64
	err := r.DB.Model(&models.Incident{}).
		Where("assigned_to_id = ? AND status = ?", authorityID, status).
		Count(&count).Error
	return count, err
}

func (r *incidentRepo) GetRecentIncidents(limit int) ([]models.Incident, error) {
	var incidents []models.Incident
	err := r.DB.Preload("ReportedBy").Order("created_at DESC").Limit(limit).Find(&incidents).Error
	if err != nil {
		return nil, err
	}
	return incidents, nil
}

func (r *incidentRepo) GetRecentIncidentsByAssignee(authorityID uint, limit int) ([]models.Incident, error) {
	var incidents []models.Incident
	err := r.DB.Preload("ReportedBy").
		Where("assigned_to_id = ?", authorityID).
		Order("created_at DESC").Limit(limit).Find(&incidents).Error
	if err != nil {
		return nil, err
	}
	return incidents, nil
}

func (r *incidentRepo) GetMonthlyIncidentCounts(since time.Time) ([]models.MonthlyIncidentCount, error) {
	var counts []models.MonthlyIncidentCount
	err := r.DB.Model(&models.Incident{}).
		Select("EXTRACT(YEAR FROM created_at)::int AS year, EXTRACT(MONTH FROM created_at)::int AS month, COUNT(*) AS count").
		Where("created_at >= ?", since).
		Group("year, month").
		Order("year, month").
		Scan(&counts).Error
	if err != nil {
		log.Printf("Error aggregating monthly incident counts: %v", err)
		return nil, err
	}
	return counts, nil
}
