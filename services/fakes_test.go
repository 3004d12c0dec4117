package services

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	apiError "github.com/techagentng/incidentx/errors"
	"github.com/techagentng/incidentx/models"
	"gorm.io/gorm"
)

// In-memory repository fakes shared by the service tests.

type fakeAuthRepo struct {
	mu     sync.Mutex
	nextID uint
	users  map[uint]*models.User
	regs   map[uint]*models.Registration
}

func newFakeAuthRepo() *fakeAuthRepo {
	return &fakeAuthRepo{
		users: make(map[uint]*models.User),
		regs:  make(map[uint]*models.Registration),
	}
}

func (f *fakeAuthRepo) addUser(user *models.User) *models.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	user.ID = f.nextID
	f.users[user.ID] = user
	return user
}

func (f *fakeAuthRepo) CreateUser(user *models.User) (*models.User, error) {
	if user == nil {
		return nil, errors.New("user is nil")
	}
	return f.addUser(user), nil
}

func (f *fakeAuthRepo) FindUserByEmail(email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeAuthRepo) FindUserByID(id uint) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeAuthRepo) FindUserByIDWithRelations(id uint) (*models.User, error) {
	return f.FindUserByID(id)
}

func (f *fakeAuthRepo) IsEmailExist(email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			return errors.New("email already in use")
		}
	}
	for _, r := range f.regs {
		if r.Email == email {
			return errors.New("email already in use")
		}
	}
	return nil
}

func (f *fakeAuthRepo) IsMobileExist(mobile string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Mobile == mobile {
			return errors.New("mobile already in use")
		}
	}
	for _, r := range f.regs {
		if r.Mobile == mobile {
			return errors.New("mobile already in use")
		}
	}
	return nil
}

func (f *fakeAuthRepo) GetUsersByRole(role models.Role) ([]models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.User
	for _, u := range f.users {
		if u.Role == role {
			out = append(out, *u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeAuthRepo) DeleteUser(userID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[userID]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.users, userID)
	return nil
}

func (f *fakeAuthRepo) UpdatePassword(userID uint, hashedPassword string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[userID]; ok {
		u.HashedPassword = hashedPassword
	}
	return nil
}

func (f *fakeAuthRepo) UpdateProfilePic(userID uint, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.ProfilePicURL = url
	return nil
}

func (f *fakeAuthRepo) CountUsersByRole(role models.Role) (int64, error) {
	users, _ := f.GetUsersByRole(role)
	return int64(len(users)), nil
}

func (f *fakeAuthRepo) CreateRegistration(reg *models.Registration) (*models.Registration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	reg.ID = f.nextID
	f.regs[reg.ID] = reg
	return reg, nil
}

func (f *fakeAuthRepo) FindRegistrationByID(id uint) (*models.Registration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r, ok := f.regs[id]; ok {
		return r, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeAuthRepo) FindRegistrationByEmail(email string) (*models.Registration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.regs {
		if r.Email == email {
			return r, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeAuthRepo) GetAllRegistrations() ([]models.Registration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Registration
	for _, r := range f.regs {
		out = append(out, *r)
	}
	return out, nil
}

func (f *fakeAuthRepo) UpdateRegistrationStatus(id uint, status models.ApprovalStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.regs[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	r.Status = status
	return nil
}

func (f *fakeAuthRepo) CountPendingRegistrations() (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for _, r := range f.regs {
		if r.Status == models.StatusPending {
			count++
		}
	}
	return count, nil
}

func (f *fakeAuthRepo) AddToBlackList(*models.Blacklist) error { return nil }
func (f *fakeAuthRepo) IsTokenInBlacklist(string) bool         { return false }

type fakeIncidentRepo struct {
	mu        sync.Mutex
	incidents map[uuid.UUID]*models.Incident
	feedback  []models.Feedback
	messages  []models.Message
}

func newFakeIncidentRepo() *fakeIncidentRepo {
	return &fakeIncidentRepo{incidents: make(map[uuid.UUID]*models.Incident)}
}

func (f *fakeIncidentRepo) CreateIncident(incident *models.Incident) (*models.Incident, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if incident.ID == uuid.Nil {
		incident.ID = uuid.New()
	}
	incident.CreatedAt = time.Now()
	f.incidents[incident.ID] = incident
	return incident, nil
}

func (f *fakeIncidentRepo) FindIncidentByID(id uuid.UUID) (*models.Incident, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if inc, ok := f.incidents[id]; ok {
		copied := *inc
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeIncidentRepo) all() []models.Incident {
	var out []models.Incident
	for _, inc := range f.incidents {
		out = append(out, *inc)
	}
	return out
}

func (f *fakeIncidentRepo) GetAllIncidents() ([]models.Incident, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.all(), nil
}

func (f *fakeIncidentRepo) GetIncidentsByReporter(userID uint) ([]models.Incident, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Incident
	for _, inc := range f.incidents {
		if inc.ReportedByID == userID {
			out = append(out, *inc)
		}
	}
	return out, nil
}

func (f *fakeIncidentRepo) GetIncidentsByAssignee(authorityID uint) ([]models.Incident, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Incident
	for _, inc := range f.incidents {
		if inc.AssignedToID != nil && *inc.AssignedToID == authorityID {
			out = append(out, *inc)
		}
	}
	return out, nil
}

func (f *fakeIncidentRepo) UpdateAssignee(incidentID uuid.UUID, authorityID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	inc, ok := f.incidents[incidentID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	inc.AssignedToID = &authorityID
	return nil
}

func (f *fakeIncidentRepo) UpdateStatus(incidentID uuid.UUID, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	inc, ok := f.incidents[incidentID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	inc.Status = status
	return nil
}

func (f *fakeIncidentRepo) SetResolutionDetails(incidentID uuid.UUID, resolvedBy uint, notes string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	inc, ok := f.incidents[incidentID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	inc.ResolvedAt = &at
	inc.ResolvedByID = &resolvedBy
	inc.ResolutionNotes = notes
	return nil
}

func (f *fakeIncidentRepo) AddFeedback(feedback *models.Feedback) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.feedback = append(f.feedback, *feedback)
	return nil
}

func (f *fakeIncidentRepo) GetIncidentsWithFeedback() ([]models.Incident, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	seen := make(map[uuid.UUID]bool)
	var out []models.Incident
	for _, fb := range f.feedback {
		if seen[fb.IncidentID] {
			continue
		}
		seen[fb.IncidentID] = true
		if inc, ok := f.incidents[fb.IncidentID]; ok {
			out = append(out, *inc)
		}
	}
	return out, nil
}

func (f *fakeIncidentRepo) AddMessage(message *models.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, *message)
	return nil
}

func (f *fakeIncidentRepo) GetAllMessages() ([]models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Message(nil), f.messages...), nil
}

func (f *fakeIncidentRepo) GetMessagesByReporter(userID uint) ([]models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Message
	for _, m := range f.messages {
		if inc, ok := f.incidents[m.IncidentID]; ok && inc.ReportedByID == userID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeIncidentRepo) GetMessagesByAssignee(authorityID uint) ([]models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Message
	for _, m := range f.messages {
		inc, ok := f.incidents[m.IncidentID]
		if ok && inc.AssignedToID != nil && *inc.AssignedToID == authorityID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeIncidentRepo) CountIncidents() (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.incidents)), nil
}

func (f *fakeIncidentRepo) CountIncidentsByStatus(status string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for _, inc := range f.incidents {
		if inc.Status == status {
			count++
		}
	}
	return count, nil
}

func (f *fakeIncidentRepo) CountIncidentsByAssignee(authorityID uint) (int64, error) {
	incidents, _ := f.GetIncidentsByAssignee(authorityID)
	return int64(len(incidents)), nil
}

func (f *fakeIncidentRepo) CountIncidentsByAssigneeAndStatus(authorityID uint, status string) (int64, error) {
	incidents, _ := f.GetIncidentsByAssignee(authorityID)
	var count int64
	for _, inc := range incidents {
		if inc.Status == status {
			count++
		}
	}
	return count, nil
}

func (f *fakeIncidentRepo) GetRecentIncidents(limit int) ([]models.Incident, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := f.all()
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeIncidentRepo) GetRecentIncidentsByAssignee(authorityID uint, limit int) ([]models.Incident, error) {
	incidents, _ := f.GetIncidentsByAssignee(authorityID)
	if len(incidents) > limit {
		incidents = incidents[:limit]
	}
	return incidents, nil
}

func (f *fakeIncidentRepo) GetMonthlyIncidentCounts(since time.Time) ([]models.MonthlyIncidentCount, error) {
	return nil, nil
}

type fakeNotificationRepo struct {
	mu            sync.Mutex
	nextID        uint
	notifications []models.Notification
}

func (f *fakeNotificationRepo) CreateNotification(n *models.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	n.ID = f.nextID
	f.notifications = append(f.notifications, *n)
	return nil
}

func (f *fakeNotificationRepo) GetNotificationsByUserID(userID uint) ([]models.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Notification
	for _, n := range f.notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (f *fakeNotificationRepo) MarkNotificationRead(userID, notificationID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.notifications {
		if f.notifications[i].ID == notificationID && f.notifications[i].UserID == userID {
			f.notifications[i].IsRead = true
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeNotificationRepo) MarkAllNotificationsRead(userID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.notifications {
		if f.notifications[i].UserID == userID {
			f.notifications[i].IsRead = true
		}
	}
	return nil
}

func (f *fakeNotificationRepo) ClearNotifications(userID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	var kept []models.Notification
	for _, n := range f.notifications {
		if n.UserID != userID {
			kept = append(kept, n)
		}
	}
	f.notifications = kept
	return nil
}

// fakePresence marks a fixed set of users online and records deliveries.
type fakePresence struct {
	mu        sync.Mutex
	online    map[uint]bool
	delivered []uint
}

func newFakePresence(onlineUsers ...uint) *fakePresence {
	online := make(map[uint]bool)
	for _, id := range onlineUsers {
		online[id] = true
	}
	return &fakePresence{online: online}
}

func (f *fakePresence) Register(userID uint, conn *websocket.Conn) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.online[userID] = true
}

func (f *fakePresence) Remove(userID uint, conn *websocket.Conn) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.online, userID)
}

func (f *fakePresence) IsOnline(userID uint) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.online[userID]
}

func (f *fakePresence) Deliver(userID uint, payload interface{}) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.online[userID] {
		return false
	}
	f.delivered = append(f.delivered, userID)
	return true
}

// fakeMailer records outbound email recipients.
type fakeMailer struct {
	mu       sync.Mutex
	welcomed []string
	notified []string
}

func (f *fakeMailer) SendWelcomeMessage(toEmail, subject string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.welcomed = append(f.welcomed, toEmail)
	return "queued", nil
}

func (f *fakeMailer) SendNotificationEmail(toEmail, firstName, message, incidentID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notified = append(f.notified, toEmail)
	return nil
}

func (f *fakeMailer) notifiedEmails() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.notified...)
}

type notifyCall struct {
	UserID     uint
	Text       string
	Tag        string
	IncidentID uuid.UUID
}

// recordingNotifier captures Notify fan-out without touching delivery.
type recordingNotifier struct {
	mu    sync.Mutex
	calls []notifyCall
}

func (r *recordingNotifier) Notify(userID uint, text, tag string, incidentID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, notifyCall{UserID: userID, Text: text, Tag: tag, IncidentID: incidentID})
}

func (r *recordingNotifier) GetNotifications(userID uint) ([]models.Notification, *apiError.Error) {
	return nil, nil
}
func (r *recordingNotifier) MarkRead(userID, notificationID uint) *apiError.Error { return nil }
func (r *recordingNotifier) MarkAllRead(userID uint) *apiError.Error              { return nil }
func (r *recordingNotifier) ClearAll(userID uint) *apiError.Error                 { return nil }

func (r *recordingNotifier) callsFor(userID uint) []notifyCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []notifyCall
	for _, call := range r.calls {
		if call.UserID == userID {
			out = append(out, call)
		}
	}
	return out
}

func (r *recordingNotifier) waitForCalls(n int, timeout time.Duration) []notifyCall {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		r.mu.Lock()
		count := len(r.calls)
		r.mu.Unlock()
		if count >= n {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]notifyCall(nil), r.calls...)
}

func containsText(calls []notifyCall, fragment string) bool {
	for _, call := range calls {
		if strings.Contains(call.Text, fragment) {
			return true
		}
	}
	return false
}
