package domain

import "time"

// ActivityAction tags an audit trail entry. The set is open-ended; new
// action kinds may be introduced without a schema change.
type ActivityAction string

const (
	ActionCreated   ActivityAction = "created"
	ActionAssigned  ActivityAction = "assigned"
	ActionLabeled   ActivityAction = "labeled"
	ActionClosed    ActivityAction = "closed"
	ActionReopened  ActivityAction = "reopened"
	ActionCommented ActivityAction = "commented"
)

// ActivityEntry is an immutable, append-only audit record for a ticket.
type ActivityEntry struct {
	ID        string
	TicketID  string
	ActorName string
	Action    ActivityAction
	Details   string
	CreatedAt time.Time
}
