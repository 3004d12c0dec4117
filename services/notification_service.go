package services

import (
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/techagentng/incidentx/db"
	apiError "github.com/techagentng/incidentx/errors"
	"github.com/techagentng/incidentx/mailingservices"
	"github.com/techagentng/incidentx/models"
	"github.com/techagentng/incidentx/realtime"
	"gorm.io/gorm"
)

// NotificationService persists notifications and delivers them: over the
// user's live socket when one is open, by email otherwise.
type NotificationService interface {
	Notify(userID uint, text, tag string, incidentID uuid.UUID)
	GetNotifications(userID uint) ([]models.Notification, *apiError.Error)
	MarkRead(userID, notificationID uint) *apiError.Error
	MarkAllRead(userID uint) *apiError.Error
	ClearAll(userID uint) *apiError.Error
}

type notificationService struct {
	notificationRepo db.NotificationRepository
	authRepo         db.AuthRepository
	presence         realtime.PresenceDirectory
	mail             mailingservices.Mailer
}

func NewNotificationService(notificationRepo db.NotificationRepository, authRepo db.AuthRepository, presence realtime.PresenceDirectory, mail mailingservices.Mailer) NotificationService {
	return &notificationService{
		notificationRepo: notificationRepo,
		authRepo:         authRepo,
		presence:         presence,
		mail:             mail,
	}
}

type notificationPayload struct {
	Event        string               `json:"event"`
	Notification *models.Notification `json:"notification"`
}

// Notify records the notification and pushes it to the user. Delivery
// failures are logged and swallowed; the triggering operation never fails
// because a notification could not go out.
func (s *notificationService) Notify(userID uint, text, tag string, incidentID uuid.UUID) {
	user, err := s.authRepo.FindUserByID(userID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return
		}
		log.Printf("Notify: failed to load user %d: %v", userID, err)
		return
	}

	n := &models.Notification{
		UserID:     userID,
		Text:       text,
		IncidentID: incidentID,
		Tag:        tag,
	}
	if err := s.notificationRepo.CreateNotification(n); err != nil {
		log.Printf("Notify: failed to persist notification for user %d: %v", userID, err)
		return
	}

	if s.presence != nil && s.presence.Deliver(userID, notificationPayload{Event: "notification", Notification: n}) {
		return
	}

	if s.mail == nil {
		return
	}
	if err := s.mail.SendNotificationEmail(user.Email, user.FirstName, text, incidentID.String()); err != nil {
		log.Printf("Notify: email fallback to %s failed: %v", user.Email, err)
	}
}

func (s *notificationService) GetNotifications(userID uint) ([]models.Notification, *apiError.Error) {
	notifications, err := s.notificationRepo.GetNotificationsByUserID(userID)
	if err != nil {
		return nil, apiError.New("unable to fetch notifications", http.StatusInternalServerError)
	}
	return notifications, nil
}

func (s *notificationService) MarkRead(userID, notificationID uint) *apiError.Error {
	err := s.notificationRepo.MarkNotificationRead(userID, notificationID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return apiError.New("notification not found", http.StatusNotFound)
		}
		return apiError.New("unable to update notification", http.StatusInternalServerError)
	}
	return nil
}

func (s *notificationService) MarkAllRead(userID uint) *apiError.Error {
	if err := s.notificationRepo.MarkAllNotificationsRead(userID); err != nil {
		return apiError.New("unable to update notifications", http.StatusInternalServerError)
	}
	return nil
}

func (s *notificationService) ClearAll(userID uint) *apiError.Error {
	if err := s.notificationRepo.ClearNotifications(userID); err != nil {
		return apiError.New("unable to clear notifications", http.StatusInternalServerError)
	}
	return nil
}
