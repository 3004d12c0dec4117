package models

// Role is the closed set of account roles. Permissions are decided in one
// place, CanPerform, instead of string checks scattered across handlers.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleAuthority Role = "authority"
	RoleUser      Role = "user"
)

// ValidRole reports whether r is one of the three known roles.
func ValidRole(r Role) bool {
	switch r {
	case RoleAdmin, RoleAuthority, RoleUser:
		return true
	}
	return false
}

// Action is an operation on an incident gated by the role policy.
type Action string

const (
	ActionView         Action = "view"
	ActionAssign       Action = "assign"
	ActionUpdateStatus Action = "update_status"
	ActionAddFeedback  Action = "add_feedback"
	ActionSendMessage  Action = "send_message"
)

// CanPerform is the role policy: given the actor's role, the actor's user id
// and the incident acted on, decide whether the action is permitted.
//
//   - admin: every action, unconditionally.
//   - authority: view, status change, feedback and messages only on incidents
//     assigned to them; never permitted to assign.
//   - user: view, feedback and messages only on incidents they reported;
//     never permitted to change status or assign.
//
// Pure decision function, no side effects. Callers translate a false return
// into a 403.
func CanPerform(role Role, actorID uint, action Action, incident *Incident) bool {
	if incident == nil {
		return false
	}
	switch role {
	case RoleAdmin:
		return true
	case RoleAuthority:
		if incident.AssignedToID == nil || *incident.AssignedToID != actorID {
			return false
		}
		switch action {
		case ActionView, ActionUpdateStatus, ActionAddFeedback, ActionSendMessage:
			return true
		}
		return false
	case RoleUser:
		if incident.ReportedByID != actorID {
			return false
		}
		switch action {
		case ActionView, ActionAddFeedback, ActionSendMessage:
			return true
		}
		return false
	}
	return false
}
