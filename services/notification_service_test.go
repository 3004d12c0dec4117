package services

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/techagentng/incidentx/models"
)

func newTestNotificationService(onlineUsers ...uint) (NotificationService, *fakeAuthRepo, *fakeNotificationRepo, *fakePresence, *fakeMailer) {
	authRepo := newFakeAuthRepo()
	notificationRepo := &fakeNotificationRepo{}
	presence := newFakePresence(onlineUsers...)
	mailer := &fakeMailer{}
	svc := NewNotificationService(notificationRepo, authRepo, presence, mailer)
	return svc, authRepo, notificationRepo, presence, mailer
}

func TestNotify_OnlineUserGetsSocketDelivery(t *testing.T) {
	svc, authRepo, notificationRepo, presence, mailer := newTestNotificationService()
	user := authRepo.addUser(&models.User{Email: "on@example.com", Role: models.RoleUser})
	presence.online[user.ID] = true

	incidentID := uuid.New()
	svc.Notify(user.ID, "Your incident has been reported.", models.TagSuccess, incidentID)

	// Persisted either way.
	stored, err := notificationRepo.GetNotificationsByUserID(user.ID)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, "Your incident has been reported.", stored[0].Text)
	assert.Equal(t, models.TagSuccess, stored[0].Tag)
	assert.Equal(t, incidentID, stored[0].IncidentID)
	assert.False(t, stored[0].IsRead)

	// Socket delivery, no email.
	assert.Equal(t, []uint{user.ID}, presence.delivered)
	assert.Empty(t, mailer.notifiedEmails())
}

func TestNotify_OfflineUserGetsEmailFallback(t *testing.T) {
	svc, authRepo, notificationRepo, presence, mailer := newTestNotificationService()
	user := authRepo.addUser(&models.User{Email: "off@example.com", FirstName: "Asha", Role: models.RoleUser})

	svc.Notify(user.ID, "Your incident is now resolved.", models.TagInfo, uuid.New())

	stored, err := notificationRepo.GetNotificationsByUserID(user.ID)
	require.NoError(t, err)
	require.Len(t, stored, 1)

	assert.Empty(t, presence.delivered)
	assert.Equal(t, []string{"off@example.com"}, mailer.notifiedEmails())
}

func TestNotify_UnknownUserIsANoOp(t *testing.T) {
	svc, _, notificationRepo, presence, mailer := newTestNotificationService()

	svc.Notify(999, "ghost", models.TagInfo, uuid.New())

	assert.Empty(t, notificationRepo.notifications)
	assert.Empty(t, presence.delivered)
	assert.Empty(t, mailer.notifiedEmails())
}

func TestMarkRead(t *testing.T) {
	svc, authRepo, notificationRepo, _, _ := newTestNotificationService()
	user := authRepo.addUser(&models.User{Email: "reader@example.com", Role: models.RoleUser})
	svc.Notify(user.ID, "first", models.TagInfo, uuid.New())

	stored, _ := notificationRepo.GetNotificationsByUserID(user.ID)
	require.Len(t, stored, 1)

	require.Nil(t, svc.MarkRead(user.ID, stored[0].ID))
	stored, _ = notificationRepo.GetNotificationsByUserID(user.ID)
	assert.True(t, stored[0].IsRead)

	// Re-marking is still a success.
	require.Nil(t, svc.MarkRead(user.ID, stored[0].ID))

	apiErr := svc.MarkRead(user.ID, 424242)
	require.NotNil(t, apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
}

func TestMarkAllReadAndClear(t *testing.T) {
	svc, authRepo, notificationRepo, _, _ := newTestNotificationService()
	user := authRepo.addUser(&models.User{Email: "busy@example.com", Role: models.RoleUser})
	other := authRepo.addUser(&models.User{Email: "other@example.com", Role: models.RoleUser})

	svc.Notify(user.ID, "one", models.TagInfo, uuid.New())
	svc.Notify(user.ID, "two", models.TagWarning, uuid.New())
	svc.Notify(other.ID, "theirs", models.TagInfo, uuid.New())

	require.Nil(t, svc.MarkAllRead(user.ID))
	stored, _ := notificationRepo.GetNotificationsByUserID(user.ID)
	for _, n := range stored {
		assert.True(t, n.IsRead)
	}
	otherStored, _ := notificationRepo.GetNotificationsByUserID(other.ID)
	require.Len(t, otherStored, 1)
	assert.False(t, otherStored[0].IsRead)

	require.Nil(t, svc.ClearAll(user.ID))
	stored, _ = notificationRepo.GetNotificationsByUserID(user.ID)
	assert.Empty(t, stored)
	otherStored, _ = notificationRepo.GetNotificationsByUserID(other.ID)
	assert.Len(t, otherStored, 1)
}
