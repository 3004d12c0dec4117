package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestCanPerform_Admin(t *testing.T) {
	incident := &Incident{ID: uuid.New(), ReportedByID: 7}

	for _, action := range []Action{ActionView, ActionAssign, ActionUpdateStatus, ActionAddFeedback} {
		assert.True(t, CanPerform(RoleAdmin, 1, action, incident), "admin should be allowed to %s", action)
	}
}

func TestCanPerform_Authority(t *testing.T) {
	authorityID := uint(3)
	incident := &Incident{ID: uuid.New(), ReportedByID: 7, AssignedToID: &authorityID}

	assert.True(t, CanPerform(RoleAuthority, authorityID, ActionView, incident))
	assert.True(t, CanPerform(RoleAuthority, authorityID, ActionUpdateStatus, incident))
	assert.True(t, CanPerform(RoleAuthority, authorityID, ActionAddFeedback, incident))
	assert.False(t, CanPerform(RoleAuthority, authorityID, ActionAssign, incident))

	// Another authority's incident.
	assert.False(t, CanPerform(RoleAuthority, 99, ActionView, incident))
	assert.False(t, CanPerform(RoleAuthority, 99, ActionUpdateStatus, incident))

	// Unassigned incident.
	unassigned := &Incident{ID: uuid.New(), ReportedByID: 7}
	assert.False(t, CanPerform(RoleAuthority, authorityID, ActionUpdateStatus, unassigned))
}

func TestCanPerform_User(t *testing.T) {
	incident := &Incident{ID: uuid.New(), ReportedByID: 7}

	assert.True(t, CanPerform(RoleUser, 7, ActionView, incident))
	assert.True(t, CanPerform(RoleUser, 7, ActionAddFeedback, incident))
	assert.False(t, CanPerform(RoleUser, 7, ActionUpdateStatus, incident))
	assert.False(t, CanPerform(RoleUser, 7, ActionAssign, incident))

	// Someone else's incident.
	assert.False(t, CanPerform(RoleUser, 8, ActionView, incident))
	assert.False(t, CanPerform(RoleUser, 8, ActionAddFeedback, incident))
}

func TestCanPerform_NilIncident(t *testing.T) {
	assert.False(t, CanPerform(RoleAdmin, 1, ActionView, nil))
	assert.False(t, CanPerform(RoleAuthority, 1, ActionView, nil))
	assert.False(t, CanPerform(RoleUser, 1, ActionView, nil))
}

func TestValidIncidentStatus(t *testing.T) {
	for _, status := range []string{StatusReported, StatusUnderReview, StatusInProgress, StatusResolved, StatusDismissed} {
		assert.True(t, ValidIncidentStatus(status))
	}
	assert.False(t, ValidIncidentStatus("closed"))
	assert.False(t, ValidIncidentStatus(""))
	assert.False(t, ValidIncidentStatus("Resolved"))
}

func TestValidSeverity(t *testing.T) {
	for _, severity := range []string{SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical} {
		assert.True(t, ValidSeverity(severity))
	}
	assert.False(t, ValidSeverity("urgent"))
}

func TestValidRole(t *testing.T) {
	assert.True(t, ValidRole(RoleAdmin))
	assert.True(t, ValidRole(RoleAuthority))
	assert.True(t, ValidRole(RoleUser))
	assert.False(t, ValidRole(Role("superuser")))
}
