package domain

import "time"

// Comment is a message on a ticket thread. Comments are append-only: there
// is no edit or delete operation.
type Comment struct {
	ID         string
	TicketID   string
	AuthorID   string
	AuthorName string
	Content    string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
