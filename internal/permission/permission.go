// Package permission is the single source of truth for what a principal may
// do. It is pure: every decision is a function of the role, the acting user
// id, and the ticket author id. Mutation sites consult this package instead
// of repeating role checks inline.
package permission

import "github.com/spec-kit/ticket-tracker/internal/domain"

// ActionSet is the set of actions available to a principal, optionally
// relative to one ticket.
type ActionSet struct {
	// CanManage gates ticket metadata: status toggle, title, description,
	// priority, labels, and re-assignment. It does NOT gate commenting or
	// attachment upload/delete; those stay open to any authenticated user.
	CanManage     bool
	CanDelete     bool
	CanCreateUser bool
	CanAssignRole bool
	CanComment    bool
}

// For computes the action set for a principal acting on a ticket authored
// by ticketAuthorID.
func For(role domain.Role, actingUserID, ticketAuthorID string) ActionSet {
	return ActionSet{
		CanManage:     CanManage(role, actingUserID, ticketAuthorID),
		CanDelete:     role == domain.RoleAdmin,
		CanCreateUser: role == domain.RoleAdmin,
		CanAssignRole: role == domain.RoleAdmin,
		CanComment:    true,
	}
}

// CanManage reports whether the principal may mutate ticket metadata.
// Admins and agents manage any ticket; users manage only their own.
func CanManage(role domain.Role, actingUserID, ticketAuthorID string) bool {
	if role == domain.RoleAdmin || role == domain.RoleAgent {
		return true
	}
	return actingUserID != "" && actingUserID == ticketAuthorID
}

// CanDelete reports whether the principal may delete a ticket.
func CanDelete(role domain.Role) bool {
	return role == domain.RoleAdmin
}

// CanAdministerUsers reports whether the principal may create users or
// assign roles.
func CanAdministerUsers(role domain.Role) bool {
	return role == domain.RoleAdmin
}
