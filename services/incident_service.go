package services

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/techagentng/incidentx/db"
	apiError "github.com/techagentng/incidentx/errors"
	"github.com/techagentng/incidentx/models"
	"gorm.io/gorm"
)

// IncidentService implements the incident lifecycle: report, triage,
// assignment, status changes and the feedback trail. Every mutation fans
// out notifications through the NotificationService.
type IncidentService interface {
	ReportIncident(reporter *models.User, req *models.ReportIncidentRequest, imageURL, thumbnailURL string) (*models.Incident, *apiError.Error)
	ViewIncidents(actor *models.User) ([]models.Incident, *apiError.Error)
	ViewIncident(actor *models.User, incidentID uuid.UUID) (*models.Incident, *apiError.Error)
	AssignIncident(admin *models.User, incidentID uuid.UUID, authorityID uint) (*models.Incident, *apiError.Error)
	UpdateIncidentStatus(actor *models.User, incidentID uuid.UUID, req *models.UpdateStatusRequest) (*models.Incident, *apiError.Error)
	SubmitFeedback(actor *models.User, incidentID uuid.UUID, message string) (*models.Feedback, *apiError.Error)
	SendMessage(actor *models.User, incidentID uuid.UUID, text string) (*models.Message, *apiError.Error)
	UserMessages(actor *models.User) ([]models.Message, *apiError.Error)
	IncidentsWithFeedback() ([]models.Incident, *apiError.Error)
	UserIncidents(userID uint) ([]models.Incident, *apiError.Error)
	AssignedIncidents(authorityID uint) ([]models.Incident, *apiError.Error)
	AdminDashboard() (*models.DashboardStats, []models.Incident, []models.MonthlyIncidentCount, *apiError.Error)
	AuthorityDashboard(authorityID uint) (*models.AuthorityStats, []models.Incident, *apiError.Error)
}

type incidentService struct {
	incidentRepo db.IncidentRepository
	authRepo     db.AuthRepository
	notifier     NotificationService
}

func NewIncidentService(incidentRepo db.IncidentRepository, authRepo db.AuthRepository, notifier NotificationService) IncidentService {
	return &incidentService{
		incidentRepo: incidentRepo,
		authRepo:     authRepo,
		notifier:     notifier,
	}
}

// ReportIncident files a new incident for the reporter. The reporter gets a
// confirmation notification; admins are notified in the background so the
// request does not wait on the fan-out.
func (s *incidentService) ReportIncident(reporter *models.User, req *models.ReportIncidentRequest, imageURL, thumbnailURL string) (*models.Incident, *apiError.Error) {
	severity := req.Severity
	if severity == "" {
		severity = models.SeverityHigh
	}
	if !models.ValidSeverity(severity) {
		return nil, apiError.New(fmt.Sprintf("invalid severity %q", severity), http.StatusBadRequest)
	}

	incident := &models.Incident{
		Title:        req.Title,
		Description:  req.Description,
		Location:     req.Location,
		ImageURL:     imageURL,
		ThumbnailURL: thumbnailURL,
		Severity:     severity,
		Status:       models.StatusReported,
		ReportedByID: reporter.ID,
	}
	created, err := s.incidentRepo.CreateIncident(incident)
	if err != nil {
		return nil, apiError.New("unable to create incident", http.StatusInternalServerError)
	}

	s.notifier.Notify(reporter.ID,
		fmt.Sprintf("Your incident %q has been reported successfully.", created.Title),
		models.TagSuccess, created.ID)

	go s.notifyAdmins(created)

	return created, nil
}

func (s *incidentService) notifyAdmins(incident *models.Incident) {
	admins, err := s.authRepo.GetUsersByRole(models.RoleAdmin)
	if err != nil {
		log.Printf("Admin fan-out for incident %s failed: %v", incident.ID, err)
		return
	}
	text := fmt.Sprintf("New incident reported: %q at %s.", incident.Title, incident.Location)
	for _, admin := range admins {
		s.notifier.Notify(admin.ID, text, models.TagWarning, incident.ID)
	}
}

// ViewIncidents lists incidents scoped to the actor: admins see everything,
// authorities their assignments, citizens their own reports.
func (s *incidentService) ViewIncidents(actor *models.User) ([]models.Incident, *apiError.Error) {
	var (
		incidents []models.Incident
		err       error
	)
	switch actor.Role {
	case models.RoleAdmin:
		incidents, err = s.incidentRepo.GetAllIncidents()
	case models.RoleAuthority:
		incidents, err = s.incidentRepo.GetIncidentsByAssignee(actor.ID)
	default:
		incidents, err = s.incidentRepo.GetIncidentsByReporter(actor.ID)
	}
	if err != nil {
		return nil, apiError.New("unable to fetch incidents", http.StatusInternalServerError)
	}
	return incidents, nil
}

func (s *incidentService) ViewIncident(actor *models.User, incidentID uuid.UUID) (*models.Incident, *apiError.Error) {
	incident, err := s.incidentRepo.FindIncidentByID(incidentID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apiError.New("incident not found", http.StatusNotFound)
		}
		return nil, apiError.ErrInternalServerError
	}
	if !models.CanPerform(actor.Role, actor.ID, models.ActionView, incident) {
		return nil, apiError.New("you are not allowed to view this incident", http.StatusForbidden)
	}
	return incident, nil
}

// AssignIncident hands an incident to an authority. The target must exist
// and hold the authority role; assigning to anyone else is a 400, not a
// silent mis-route. Reassignment is allowed and overwrites the previous
// assignee.
func (s *incidentService) AssignIncident(admin *models.User, incidentID uuid.UUID, authorityID uint) (*models.Incident, *apiError.Error) {
	incident, err := s.incidentRepo.FindIncidentByID(incidentID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apiError.New("incident not found", http.StatusNotFound)
		}
		return nil, apiError.ErrInternalServerError
	}
	if !models.CanPerform(admin.Role, admin.ID, models.ActionAssign, incident) {
		return nil, apiError.New("only admins can assign incidents", http.StatusForbidden)
	}

	authority, err := s.authRepo.FindUserByID(authorityID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apiError.New("authority not found", http.StatusBadRequest)
		}
		return nil, apiError.ErrInternalServerError
	}
	if authority.Role != models.RoleAuthority {
		return nil, apiError.New("assignment target is not an authority", http.StatusBadRequest)
	}

	if err := s.incidentRepo.UpdateAssignee(incidentID, authorityID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apiError.New("incident not found", http.StatusNotFound)
		}
		return nil, apiError.ErrInternalServerError
	}
	incident.AssignedToID = &authorityID
	incident.AssignedTo = authority

	s.notifier.Notify(authority.ID,
		fmt.Sprintf("You have been assigned a new incident: %q.", incident.Title),
		models.TagWarning, incident.ID)
	s.notifier.Notify(incident.ReportedByID,
		fmt.Sprintf("Your incident %q has been assigned to an authority.", incident.Title),
		models.TagInfo, incident.ID)

	return incident, nil
}

// UpdateIncidentStatus moves an incident to a new status. The enum is
// validated but any status may follow any other, so re-triage and reopening
// stay possible. Moving to resolved records who resolved it and when.
func (s *incidentService) UpdateIncidentStatus(actor *models.User, incidentID uuid.UUID, req *models.UpdateStatusRequest) (*models.Incident, *apiError.Error) {
	if !models.ValidIncidentStatus(req.Status) {
		return nil, apiError.ErrInvalidStatus(req.Status)
	}

	incident, err := s.incidentRepo.FindIncidentByID(incidentID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apiError.New("incident not found", http.StatusNotFound)
		}
		return nil, apiError.ErrInternalServerError
	}
	if !models.CanPerform(actor.Role, actor.ID, models.ActionUpdateStatus, incident) {
		return nil, apiError.New("you are not allowed to update this incident", http.StatusForbidden)
	}

	if err := s.incidentRepo.UpdateStatus(incidentID, req.Status); err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apiError.New("incident not found", http.StatusNotFound)
		}
		return nil, apiError.ErrInternalServerError
	}
	incident.Status = req.Status

	if req.Status == models.StatusResolved {
		now := time.Now()
		if err := s.incidentRepo.SetResolutionDetails(incidentID, actor.ID, req.ResolutionNotes, now); err != nil {
			log.Printf("Failed to record resolution details for incident %s: %v", incidentID, err)
		} else {
			incident.ResolvedAt = &now
			resolvedBy := actor.ID
			incident.ResolvedByID = &resolvedBy
			incident.ResolutionNotes = req.ResolutionNotes
		}
	}

	s.notifier.Notify(incident.ReportedByID,
		fmt.Sprintf("Your incident %q is now %q.", incident.Title, incident.Status),
		models.TagInfo, incident.ID)

	return incident, nil
}

// SubmitFeedback appends one entry to the incident's feedback trail. No
// notification goes out for feedback.
func (s *incidentService) SubmitFeedback(actor *models.User, incidentID uuid.UUID, message string) (*models.Feedback, *apiError.Error) {
	incident, err := s.incidentRepo.FindIncidentByID(incidentID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apiError.New("incident not found", http.StatusNotFound)
		}
		return nil, apiError.ErrInternalServerError
	}
	if !models.CanPerform(actor.Role, actor.ID, models.ActionAddFeedback, incident) {
		return nil, apiError.New("you are not allowed to comment on this incident", http.StatusForbidden)
	}

	feedback := &models.Feedback{
		IncidentID:    incidentID,
		Message:       message,
		SubmittedByID: actor.ID,
		Role:          actor.Role,
	}
	if err := s.incidentRepo.AddFeedback(feedback); err != nil {
		return nil, apiError.New("unable to submit feedback", http.StatusInternalServerError)
	}
	return feedback, nil
}

// SendMessage appends one entry to the incident's conversation thread. Same
// access rule as feedback: the reporter, the assigned authority and admins.
func (s *incidentService) SendMessage(actor *models.User, incidentID uuid.UUID, text string) (*models.Message, *apiError.Error) {
	incident, err := s.incidentRepo.FindIncidentByID(incidentID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apiError.New("incident not found", http.StatusNotFound)
		}
		return nil, apiError.ErrInternalServerError
	}
	if !models.CanPerform(actor.Role, actor.ID, models.ActionSendMessage, incident) {
		return nil, apiError.New("you are not allowed to message on this incident", http.StatusForbidden)
	}

	message := &models.Message{
		IncidentID: incidentID,
		Text:       text,
		SentByID:   actor.ID,
		Role:       actor.Role,
	}
	if err := s.incidentRepo.AddMessage(message); err != nil {
		return nil, apiError.New("unable to send message", http.StatusInternalServerError)
	}
	return message, nil
}

// UserMessages lists message threads scoped like ViewIncidents: admins see
// every message, authorities those on their assignments, citizens those on
// their own reports.
func (s *incidentService) UserMessages(actor *models.User) ([]models.Message, *apiError.Error) {
	var (
		messages []models.Message
		err      error
	)
	switch actor.Role {
	case models.RoleAdmin:
		messages, err = s.incidentRepo.GetAllMessages()
	case models.RoleAuthority:
		messages, err = s.incidentRepo.GetMessagesByAssignee(actor.ID)
	default:
		messages, err = s.incidentRepo.GetMessagesByReporter(actor.ID)
	}
	if err != nil {
		return nil, apiError.New("unable to fetch messages", http.StatusInternalServerError)
	}
	return messages, nil
}

// IncidentsWithFeedback lists only incidents carrying at least one feedback
// entry, for the authority review surface.
func (s *incidentService) IncidentsWithFeedback() ([]models.Incident, *apiError.Error) {
	incidents, err := s.incidentRepo.GetIncidentsWithFeedback()
	if err != nil {
		return nil, apiError.New("unable to fetch incidents", http.StatusInternalServerError)
	}
	return incidents, nil
}

func (s *incidentService) UserIncidents(userID uint) ([]models.Incident, *apiError.Error) {
	incidents, err := s.incidentRepo.GetIncidentsByReporter(userID)
	if err != nil {
		return nil, apiError.New("unable to fetch incidents", http.StatusInternalServerError)
	}
	return incidents, nil
}

func (s *incidentService) AssignedIncidents(authorityID uint) ([]models.Incident, *apiError.Error) {
	incidents, err := s.incidentRepo.GetIncidentsByAssignee(authorityID)
	if err != nil {
		return nil, apiError.New("unable to fetch incidents", http.StatusInternalServerError)
	}
	return incidents, nil
}

// AdminDashboard aggregates system-wide counts, the most recent incidents
// and a twelve-month trend.
func (s *incidentService) AdminDashboard() (*models.DashboardStats, []models.Incident, []models.MonthlyIncidentCount, *apiError.Error) {
	stats := &models.DashboardStats{}

	var err error
	if stats.TotalUsers, err = s.authRepo.CountUsersByRole(models.RoleUser); err != nil {
		return nil, nil, nil, apiError.ErrInternalServerError
	}
	if stats.PendingRegistrations, err = s.authRepo.CountPendingRegistrations(); err != nil {
		return nil, nil, nil, apiError.ErrInternalServerError
	}
	if stats.TotalIncidents, err = s.incidentRepo.CountIncidents(); err != nil {
		return nil, nil, nil, apiError.ErrInternalServerError
	}
	if stats.ResolvedIncidents, err = s.incidentRepo.CountIncidentsByStatus(models.StatusResolved); err != nil {
		return nil, nil, nil, apiError.ErrInternalServerError
	}
	if stats.InProgressIncidents, err = s.incidentRepo.CountIncidentsByStatus(models.StatusInProgress); err != nil {
		return nil, nil, nil, apiError.ErrInternalServerError
	}
	dismissed, err := s.incidentRepo.CountIncidentsByStatus(models.StatusDismissed)
	if err != nil {
		return nil, nil, nil, apiError.ErrInternalServerError
	}
	stats.OpenIncidents = stats.TotalIncidents - stats.ResolvedIncidents - dismissed
	if stats.TotalIncidents > 0 {
		stats.ResolutionRate = float64(stats.ResolvedIncidents) / float64(stats.TotalIncidents)
	}

	recent, err := s.incidentRepo.GetRecentIncidents(10)
	if err != nil {
		return nil, nil, nil, apiError.ErrInternalServerError
	}
	monthly, err := s.incidentRepo.GetMonthlyIncidentCounts(time.Now().AddDate(-1, 0, 0))
	if err != nil {
		return nil, nil, nil, apiError.ErrInternalServerError
	}
	return stats, recent, monthly, nil
}

// AuthorityDashboard aggregates workload counts for one authority.
func (s *incidentService) AuthorityDashboard(authorityID uint) (*models.AuthorityStats, []models.Incident, *apiError.Error) {
	stats := &models.AuthorityStats{}

	var err error
	if stats.TotalAssigned, err = s.incidentRepo.CountIncidentsByAssignee(authorityID); err != nil {
		return nil, nil, apiError.ErrInternalServerError
	}
	if stats.ResolvedCount, err = s.incidentRepo.CountIncidentsByAssigneeAndStatus(authorityID, models.StatusResolved); err != nil {
		return nil, nil, apiError.ErrInternalServerError
	}
	if stats.InProgressCount, err = s.incidentRepo.CountIncidentsByAssigneeAndStatus(authorityID, models.StatusInProgress); err != nil {
		return nil, nil, apiError.ErrInternalServerError
	}
	stats.PendingCount = stats.TotalAssigned - stats.ResolvedCount - stats.InProgressCount
	if stats.TotalAssigned > 0 {
		stats.ResolutionRate = float64(stats.ResolvedCount) / float64(stats.TotalAssigned)
	}

	recent, err := s.incidentRepo.GetRecentIncidentsByAssignee(authorityID, 10)
	if err != nil {
		return nil, nil, apiError.ErrInternalServerError
	}
	return stats, recent, nil
}
