package dto

import (
	"time"

	"github.com/spec-kit/ticket-tracker/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Priority    domain.TicketPriority `json:"priority"`
	Labels      []domain.TicketLabel  `json:"labels"`
	AssigneeID  *string               `json:"assignee_id"`
}

// UpdateTitleRequest payload.
type UpdateTitleRequest struct {
	Title string `json:"title"`
}

// UpdateDescriptionRequest payload.
type UpdateDescriptionRequest struct {
	Description string `json:"description"`
}

// UpdatePriorityRequest payload.
type UpdatePriorityRequest struct {
	Priority domain.TicketPriority `json:"priority"`
}

// SetLabelsRequest carries the complete resulting label set.
type SetLabelsRequest struct {
	Labels []domain.TicketLabel `json:"labels"`
}

// AssignRequest payload. A null assignee id unassigns.
type AssignRequest struct {
	AssigneeID *string `json:"assignee_id"`
}

// CreateCommentRequest payload.
type CreateCommentRequest struct {
	Content string `json:"content"`
}

// TicketSummary response.
type TicketSummary struct {
	ID           string                `json:"id"`
	TicketNumber int64                 `json:"ticket_number"`
	Title        string                `json:"title"`
	AuthorName   string                `json:"author_name"`
	AssigneeName *string               `json:"assignee_name"`
	Status       domain.TicketStatus   `json:"status"`
	Priority     domain.TicketPriority `json:"priority"`
	Labels       []domain.TicketLabel  `json:"labels"`
	CreatedAt    time.Time             `json:"created_at"`
	UpdatedAt    time.Time             `json:"updated_at"`
}

// TicketCapabilities tells the client which controls to show for the
// authenticated caller. The server re-checks on every mutation; this is a
// presentation hint, not an enforcement point.
type TicketCapabilities struct {
	CanManage  bool `json:"can_manage"`
	CanDelete  bool `json:"can_delete"`
	CanComment bool `json:"can_comment"`
}

// TicketDetailResponse provides full ticket info with thread and audit trail.
type TicketDetailResponse struct {
	ID           string                `json:"id"`
	TicketNumber int64                 `json:"ticket_number"`
	Title        string                `json:"title"`
	Description  string                `json:"description"`
	AuthorID     string                `json:"author_id"`
	AuthorName   string                `json:"author_name"`
	AuthorEmail  string                `json:"author_email"`
	AssigneeID   *string               `json:"assignee_id"`
	AssigneeName *string               `json:"assignee_name"`
	Status       domain.TicketStatus   `json:"status"`
	Priority     domain.TicketPriority `json:"priority"`
	Labels       []domain.TicketLabel  `json:"labels"`
	CreatedAt    time.Time             `json:"created_at"`
	UpdatedAt    time.Time             `json:"updated_at"`
	ClosedAt     *time.Time            `json:"closed_at"`
	Comments     []CommentResponse     `json:"comments"`
	Activity     []ActivityResponse    `json:"activity"`
	Capabilities TicketCapabilities    `json:"capabilities"`
}

// CommentResponse represents a thread comment.
type CommentResponse struct {
	ID         string    `json:"id"`
	AuthorID   string    `json:"author_id"`
	AuthorName string    `json:"author_name"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
}

// ActivityResponse represents one audit trail entry.
type ActivityResponse struct {
	ID        string                `json:"id"`
	ActorName string                `json:"actor_name"`
	Action    domain.ActivityAction `json:"action"`
	Details   string                `json:"details,omitempty"`
	CreatedAt time.Time             `json:"created_at"`
}

// AttachmentResponse metadata.
type AttachmentResponse struct {
	ID         string    `json:"id"`
	TicketID   string    `json:"ticket_id"`
	FileName   string    `json:"file_name"`
	MimeType   string    `json:"mime_type"`
	SizeBytes  int64     `json:"size_bytes"`
	UploadedBy string    `json:"uploaded_by"`
	CreatedAt  time.Time `json:"created_at"`
}
