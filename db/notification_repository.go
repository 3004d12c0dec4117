package db

import (
	"log"

	"github.com/pkg/errors"
	"github.com/techagentng/incidentx/models"
	"gorm.io/gorm"
)

type NotificationRepository interface {
	CreateNotification(n *models.Notification) error
	GetNotificationsByUserID(userID uint) ([]models.Notification, error)
	MarkNotificationRead(userID, notificationID uint) error
	MarkAllNotificationsRead(userID uint) error
	ClearNotifications(userID uint) error
}

type notificationRepo struct {
	DB *gorm.DB
}

func NewNotificationRepo(db *GormDB) NotificationRepository {
	return &notificationRepo{db.DB}
}

// CreateNotification inserts the entry and evicts everything beyond the
// newest MaxNotificationsPerUser rows for that user.
func (r *notificationRepo) CreateNotification(n *models.Notification) error {
	if err := r.DB.Create(n).Error; err != nil {
		log.Printf("CreateNotification error: %v", err)
		return err
	}

	var staleIDs []uint
	err := r.DB.Model(&models.Notification{}).
		Where("user_id = ?", n.UserID).
		Order("created_at DESC, id DESC").
		Offset(models.MaxNotificationsPerUser).
		Limit(models.MaxNotificationsPerUser).
		Pluck("id", &staleIDs).Error
	if err != nil {
		log.Printf("Error collecting stale notifications for user %d: %v", n.UserID, err)
		return err
	}
	if len(staleIDs) > 0 {
		if err := r.DB.Unscoped().Delete(&models.Notification{}, staleIDs).Error; err != nil {
			log.Printf("Error evicting stale notifications for user %d: %v", n.UserID, err)
			return err
		}
	}
	return nil
}

func (r *notificationRepo) GetNotificationsByUserID(userID uint) ([]models.Notification, error) {
	var notifications []models.Notification
	err := r.DB.Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&notifications).Error
	if err != nil {
		log.Printf("Error fetching notifications for user %d: %v", userID, err)
		return nil, err
	}
	return notifications, nil
}

// MarkNotificationRead is idempotent: re-marking a read notification is a
// no-op that still succeeds.
func (r *notificationRepo) MarkNotificationRead(userID, notificationID uint) error {
	var n models.Notification
	err := r.DB.Where("id = ? AND user_id = ?", notificationID, userID).First(&n).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return gorm.ErrRecordNotFound
		}
		return err
	}
	if n.IsRead {
		return nil
	}
	return r.DB.Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Update("is_read", true).Error
}

func (r *notificationRepo) MarkAllNotificationsRead(userID uint) error {
	return r.DB.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true).Error
}

func (r *notificationRepo) ClearNotifications(userID uint) error {
	return r.DB.Unscoped().Where("user_id = ?", userID).Delete(&models.Notification{}).Error
}
