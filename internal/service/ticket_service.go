package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/ticket-tracker/internal/domain"
	"github.com/spec-kit/ticket-tracker/internal/events"
	"github.com/spec-kit/ticket-tracker/internal/permission"
	"github.com/spec-kit/ticket-tracker/internal/repository"
	apperrors "github.com/spec-kit/ticket-tracker/pkg/util"
)

// Actor is the authenticated principal performing an operation, with the
// role resolved for this request.
type Actor struct {
	ID    string
	Name  string
	Email string
	Role  domain.Role
}

// TicketService is the ticket lifecycle manager. Every metadata mutation
// runs the same sequence: permission check, field validation, write,
// activity entry where required. Failed permission checks are no-ops.
type TicketService struct {
	tickets    repository.TicketRepository
	comments   repository.CommentRepository
	activity   repository.ActivityRepository
	profiles   repository.ProfileRepository
	dispatcher events.Dispatcher
}

// TicketDependencies bundles repositories for the ticket service.
type TicketDependencies struct {
	TicketRepo   repository.TicketRepository
	CommentRepo  repository.CommentRepository
	ActivityRepo repository.ActivityRepository
	ProfileRepo  repository.ProfileRepository
	Dispatcher   events.Dispatcher
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:    deps.TicketRepo,
		comments:   deps.CommentRepo,
		activity:   deps.ActivityRepo,
		profiles:   deps.ProfileRepo,
		dispatcher: deps.Dispatcher,
	}
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Title       string
	Description string
	Priority    domain.TicketPriority
	Labels      []domain.TicketLabel
	AssigneeID  *string
}

// TicketDetail is the per-ticket read model: the ticket together with its
// comment thread, audit trail, and the actions the caller may take on it.
// Capabilities let the presentation layer hide controls the caller cannot
// use without repeating the policy client-side.
type TicketDetail struct {
	Ticket       domain.Ticket
	Comments     []domain.Comment
	Activity     []domain.ActivityEntry
	Capabilities permission.ActionSet
}

// CreateTicket creates a ticket authored by the acting user. The founding
// activity entry is written after the ticket itself; if that second write
// fails the ticket is kept and the failure is surfaced.
func (s *TicketService) CreateTicket(ctx context.Context, actor Actor, input TicketCreateInput) (*domain.Ticket, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, apperrors.NewInvalidInput("title must not be empty", nil)
	}
	priority := input.Priority
	if priority == "" {
		priority = domain.TicketPriorityMedium
	}
	if !domain.ValidPriority(priority) {
		return nil, apperrors.NewInvalidInput("unrecognized priority", map[string]any{"priority": priority})
	}
	for _, label := range input.Labels {
		if !domain.ValidLabel(label) {
			return nil, apperrors.NewInvalidInput("unrecognized label", map[string]any{"label": label})
		}
	}

	ticket := &domain.Ticket{
		Title:       title,
		Description: strings.TrimSpace(input.Description),
		AuthorID:    actor.ID,
		AuthorName:  actor.Name,
		AuthorEmail: actor.Email,
		Status:      domain.TicketStatusOpen,
		Priority:    priority,
		Labels:      domain.DedupeLabels(input.Labels),
	}

	if input.AssigneeID != nil {
		assignee, err := s.profiles.GetByID(ctx, *input.AssigneeID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, apperrors.NewInvalidInput("assignee does not exist", map[string]any{"assignee_id": *input.AssigneeID})
			}
			return nil, apperrors.NewStoreFailure(err)
		}
		ticket.AssigneeID = &assignee.ID
		ticket.AssigneeName = &assignee.Name
	}

	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.NewStoreFailure(err)
	}

	if err := s.appendActivity(ctx, ticket.ID, actor.Name, domain.ActionCreated, ""); err != nil {
		return nil, err
	}
	if len(ticket.Labels) > 0 {
		if err := s.appendActivity(ctx, ticket.ID, actor.Name, domain.ActionLabeled, labelDetails(ticket.Labels)); err != nil {
			return nil, err
		}
	}
	if ticket.AssigneeName != nil {
		if err := s.appendActivity(ctx, ticket.ID, actor.Name, domain.ActionAssigned, *ticket.AssigneeName); err != nil {
			return nil, err
		}
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Actor:    events.Actor{UserID: actor.ID, Name: actor.Name},
		Payload: events.TicketCreatedPayload{
			TicketNumber: ticket.TicketNumber,
			Title:        ticket.Title,
			Priority:     ticket.Priority,
			Labels:       ticket.Labels,
		},
	})
	return ticket, nil
}

// ListTickets returns the full ticket collection, newest first.
func (s *TicketService) ListTickets(ctx context.Context) ([]domain.Ticket, error) {
	tickets, err := s.tickets.List(ctx)
	if err != nil {
		return nil, apperrors.NewStoreFailure(err)
	}
	return tickets, nil
}

// GetTicket assembles the per-ticket read model for the acting caller. The
// three reads are independent and could be issued concurrently; they share
// no ordering requirement beyond the ticket existing.
func (s *TicketService) GetTicket(ctx context.Context, actor Actor, ticketID string) (*TicketDetail, error) {
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	comments, err := s.comments.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, apperrors.NewStoreFailure(err)
	}
	activity, err := s.activity.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, apperrors.NewStoreFailure(err)
	}
	return &TicketDetail{
		Ticket:       *ticket,
		Comments:     comments,
		Activity:     activity,
		Capabilities: permission.For(actor.Role, actor.ID, ticket.AuthorID),
	}, nil
}

// ToggleStatus flips the ticket between open and closed. This is the only
// status-change primitive: closing sets closedAt and logs `closed`,
// reopening clears closedAt and logs `reopened`.
func (s *TicketService) ToggleStatus(ctx context.Context, actor Actor, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.loadManaged(ctx, actor, ticketID)
	if err != nil {
		return nil, err
	}

	oldStatus := ticket.Status
	var action domain.ActivityAction
	if ticket.Status == domain.TicketStatusOpen {
		now := time.Now()
		ticket.Status = domain.TicketStatusClosed
		ticket.ClosedAt = &now
		action = domain.ActionClosed
	} else {
		ticket.Status = domain.TicketStatusOpen
		ticket.ClosedAt = nil
		action = domain.ActionReopened
	}

	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.NewStoreFailure(err)
	}
	if err := s.appendActivity(ctx, ticket.ID, actor.Name, action, ""); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketStatusChanged,
		TicketID: ticket.ID,
		Actor:    events.Actor{UserID: actor.ID, Name: actor.Name},
		Payload: events.TicketStatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: ticket.Status,
		},
	})
	return ticket, nil
}

// UpdateTitle edits the ticket title.
func (s *TicketService) UpdateTitle(ctx context.Context, actor Actor, ticketID, title string) (*domain.Ticket, error) {
	ticket, err := s.loadManaged(ctx, actor, ticketID)
	if err != nil {
		return nil, err
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, apperrors.NewInvalidInput("title must not be empty", nil)
	}
	ticket.Title = title
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.NewStoreFailure(err)
	}
	return ticket, nil
}

// UpdateDescription edits the ticket description. Descriptions may be empty.
func (s *TicketService) UpdateDescription(ctx context.Context, actor Actor, ticketID, description string) (*domain.Ticket, error) {
	ticket, err := s.loadManaged(ctx, actor, ticketID)
	if err != nil {
		return nil, err
	}
	ticket.Description = strings.TrimSpace(description)
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.NewStoreFailure(err)
	}
	return ticket, nil
}

// UpdatePriority changes the ticket priority. Priority changes are not
// logged to the audit trail.
func (s *TicketService) UpdatePriority(ctx context.Context, actor Actor, ticketID string, priority domain.TicketPriority) (*domain.Ticket, error) {
	ticket, err := s.loadManaged(ctx, actor, ticketID)
	if err != nil {
		return nil, err
	}
	if !domain.ValidPriority(priority) {
		return nil, apperrors.NewInvalidInput("unrecognized priority", map[string]any{"priority": priority})
	}
	ticket.Priority = priority
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.NewStoreFailure(err)
	}
	return ticket, nil
}

// SetLabels replaces the label set with the caller-supplied complete set
// (toggle semantics live in the caller). Label edits after creation are not
// logged to the audit trail.
func (s *TicketService) SetLabels(ctx context.Context, actor Actor, ticketID string, labels []domain.TicketLabel) (*domain.Ticket, error) {
	ticket, err := s.loadManaged(ctx, actor, ticketID)
	if err != nil {
		return nil, err
	}
	for _, label := range labels {
		if !domain.ValidLabel(label) {
			return nil, apperrors.NewInvalidInput("unrecognized label", map[string]any{"label": label})
		}
	}
	ticket.Labels = domain.DedupeLabels(labels)
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.NewStoreFailure(err)
	}
	return ticket, nil
}

// Assign sets or clears the assignee and logs an `assigned` entry.
func (s *TicketService) Assign(ctx context.Context, actor Actor, ticketID string, assigneeID *string) (*domain.Ticket, error) {
	ticket, err := s.loadManaged(ctx, actor, ticketID)
	if err != nil {
		return nil, err
	}

	details := "unassigned"
	if assigneeID == nil {
		ticket.AssigneeID = nil
		ticket.AssigneeName = nil
	} else {
		assignee, err := s.profiles.GetByID(ctx, *assigneeID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, apperrors.NewInvalidInput("assignee does not exist", map[string]any{"assignee_id": *assigneeID})
			}
			return nil, apperrors.NewStoreFailure(err)
		}
		ticket.AssigneeID = &assignee.ID
		ticket.AssigneeName = &assignee.Name
		details = assignee.Name
	}

	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.NewStoreFailure(err)
	}
	if err := s.appendActivity(ctx, ticket.ID, actor.Name, domain.ActionAssigned, details); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketAssigned,
		TicketID: ticket.ID,
		Actor:    events.Actor{UserID: actor.ID, Name: actor.Name},
		Payload: events.TicketAssignedPayload{
			AssigneeID:   ticket.AssigneeID,
			AssigneeName: ticket.AssigneeName,
		},
	})
	return ticket, nil
}

// DeleteTicket removes a ticket. Admin only. Comments, activity entries,
// and attachment records cascade in the record store; this issues exactly
// one delete call.
func (s *TicketService) DeleteTicket(ctx context.Context, actor Actor, ticketID string) error {
	if !permission.CanDelete(actor.Role) {
		return apperrors.NewForbidden("only admins can delete tickets")
	}
	if err := s.tickets.Delete(ctx, ticketID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return apperrors.NewStoreFailure(err)
	}
	return nil
}

// AddComment appends a comment and its `commented` activity entry.
// Commenting is open to any authenticated principal; it is not gated by
// canManage.
func (s *TicketService) AddComment(ctx context.Context, actor Actor, ticketID, content string) (*domain.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperrors.NewInvalidInput("comment must not be empty", nil)
	}
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	comment := &domain.Comment{
		TicketID:   ticket.ID,
		AuthorID:   actor.ID,
		AuthorName: actor.Name,
		Content:    content,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, apperrors.NewStoreFailure(err)
	}
	if err := s.appendActivity(ctx, ticket.ID, actor.Name, domain.ActionCommented, ""); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventCommentAdded,
		TicketID: ticket.ID,
		Actor:    events.Actor{UserID: actor.ID, Name: actor.Name},
		Payload: events.CommentAddedPayload{
			CommentID:   comment.ID,
			AuthorName:  comment.AuthorName,
			BodyPreview: stringPreview(comment.Content, 120),
		},
	})
	return comment, nil
}

// loadManaged fetches the ticket and enforces the metadata permission
// check. A Forbidden outcome leaves the ticket untouched: no write, no
// activity entry.
func (s *TicketService) loadManaged(ctx context.Context, actor Actor, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !permission.CanManage(actor.Role, actor.ID, ticket.AuthorID) {
		return nil, apperrors.NewForbidden("not allowed to manage this ticket")
	}
	return ticket, nil
}

func (s *TicketService) loadTicket(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.NewStoreFailure(err)
	}
	return ticket, nil
}

// appendActivity writes one audit entry. The caller's preceding write is
// never rolled back on failure; the inconsistency is accepted and only
// this step's error is reported.
func (s *TicketService) appendActivity(ctx context.Context, ticketID, actorName string, action domain.ActivityAction, details string) error {
	entry := &domain.ActivityEntry{
		TicketID:  ticketID,
		ActorName: actorName,
		Action:    action,
		Details:   details,
	}
	if err := s.activity.Create(ctx, entry); err != nil {
		return apperrors.NewStoreFailure(err)
	}
	return nil
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func labelDetails(labels []domain.TicketLabel) string {
	parts := make([]string, 0, len(labels))
	for _, label := range labels {
		parts = append(parts, string(label))
	}
	return strings.Join(parts, ", ")
}

// stringPreview truncates to max runes. Truncation happens on rune
// boundaries so the preview is always valid UTF-8.
func stringPreview(body string, max int) string {
	body = strings.TrimSpace(body)
	runes := []rune(body)
	if len(runes) <= max {
		return body
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}
