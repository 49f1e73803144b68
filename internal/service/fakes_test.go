package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/ticket-tracker/internal/domain"
	"github.com/spec-kit/ticket-tracker/internal/storage"
)

var errStoreDown = errors.New("store unavailable")

type fakeTicketRepo struct {
	tickets    map[string]*domain.Ticket
	nextNumber int64
	failCreate bool
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{tickets: make(map[string]*domain.Ticket)}
}

func (r *fakeTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	if r.failCreate {
		return errStoreDown
	}
	r.nextNumber++
	ticket.ID = uuid.NewString()
	ticket.TicketNumber = r.nextNumber
	ticket.CreatedAt = time.Now()
	ticket.UpdatedAt = ticket.CreatedAt
	clone := *ticket
	r.tickets[ticket.ID] = &clone
	return nil
}

func (r *fakeTicketRepo) Update(_ context.Context, ticket *domain.Ticket) error {
	if _, ok := r.tickets[ticket.ID]; !ok {
		return pgx.ErrNoRows
	}
	ticket.UpdatedAt = time.Now()
	clone := *ticket
	r.tickets[ticket.ID] = &clone
	return nil
}

func (r *fakeTicketRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	ticket, ok := r.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *ticket
	return &clone, nil
}

func (r *fakeTicketRepo) List(_ context.Context) ([]domain.Ticket, error) {
	result := make([]domain.Ticket, 0, len(r.tickets))
	for _, ticket := range r.tickets {
		result = append(result, *ticket)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].TicketNumber > result[j].TicketNumber
	})
	return result, nil
}

func (r *fakeTicketRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.tickets[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.tickets, id)
	return nil
}

type fakeCommentRepo struct {
	comments []domain.Comment
}

func (r *fakeCommentRepo) Create(_ context.Context, comment *domain.Comment) error {
	comment.ID = uuid.NewString()
	comment.CreatedAt = time.Now()
	comment.UpdatedAt = comment.CreatedAt
	r.comments = append(r.comments, *comment)
	return nil
}

func (r *fakeCommentRepo) ListByTicket(_ context.Context, ticketID string) ([]domain.Comment, error) {
	result := make([]domain.Comment, 0)
	for _, comment := range r.comments {
		if comment.TicketID == ticketID {
			result = append(result, comment)
		}
	}
	return result, nil
}

type fakeActivityRepo struct {
	entries    []domain.ActivityEntry
	failCreate bool
}

func (r *fakeActivityRepo) Create(_ context.Context, entry *domain.ActivityEntry) error {
	if r.failCreate {
		return errStoreDown
	}
	entry.ID = uuid.NewString()
	entry.CreatedAt = time.Now()
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *fakeActivityRepo) ListByTicket(_ context.Context, ticketID string) ([]domain.ActivityEntry, error) {
	result := make([]domain.ActivityEntry, 0)
	for _, entry := range r.entries {
		if entry.TicketID == ticketID {
			result = append(result, entry)
		}
	}
	return result, nil
}

func (r *fakeActivityRepo) byAction(action domain.ActivityAction) []domain.ActivityEntry {
	result := make([]domain.ActivityEntry, 0)
	for _, entry := range r.entries {
		if entry.Action == action {
			result = append(result, entry)
		}
	}
	return result
}

type fakeProfileRepo struct {
	profiles map[string]*domain.Profile
}

func newFakeProfileRepo(profiles ...domain.Profile) *fakeProfileRepo {
	repo := &fakeProfileRepo{profiles: make(map[string]*domain.Profile)}
	for i := range profiles {
		clone := profiles[i]
		repo.profiles[clone.ID] = &clone
	}
	return repo
}

func (r *fakeProfileRepo) Create(_ context.Context, profile *domain.Profile) error {
	if profile.ID == "" {
		profile.ID = uuid.NewString()
	}
	clone := *profile
	r.profiles[profile.ID] = &clone
	return nil
}

func (r *fakeProfileRepo) Update(_ context.Context, profile *domain.Profile) error {
	if _, ok := r.profiles[profile.ID]; !ok {
		return pgx.ErrNoRows
	}
	clone := *profile
	r.profiles[profile.ID] = &clone
	return nil
}

func (r *fakeProfileRepo) GetByID(_ context.Context, id string) (*domain.Profile, error) {
	profile, ok := r.profiles[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *profile
	return &clone, nil
}

func (r *fakeProfileRepo) GetByEmail(_ context.Context, email string) (*domain.Profile, error) {
	for _, profile := range r.profiles {
		if profile.Email == email {
			clone := *profile
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeProfileRepo) List(_ context.Context) ([]domain.Profile, error) {
	result := make([]domain.Profile, 0, len(r.profiles))
	for _, profile := range r.profiles {
		result = append(result, *profile)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

// fakeRoleRepo preserves insertion order so the earliest-created
// assignment wins lookups, matching the real user_roles query.
type fakeRoleRepo struct {
	assignments []domain.RoleAssignment
}

func (r *fakeRoleRepo) Create(_ context.Context, assignment *domain.RoleAssignment) error {
	assignment.ID = uuid.NewString()
	assignment.CreatedAt = time.Now()
	r.assignments = append(r.assignments, *assignment)
	return nil
}

func (r *fakeRoleRepo) EarliestByUser(_ context.Context, userID string) (*domain.RoleAssignment, error) {
	for i := range r.assignments {
		if r.assignments[i].UserID == userID {
			clone := r.assignments[i]
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeRoleRepo) ListAll(_ context.Context) ([]domain.RoleAssignment, error) {
	return append([]domain.RoleAssignment{}, r.assignments...), nil
}

func (r *fakeRoleRepo) DeleteByUser(_ context.Context, userID string) error {
	kept := r.assignments[:0]
	for _, assignment := range r.assignments {
		if assignment.UserID != userID {
			kept = append(kept, assignment)
		}
	}
	r.assignments = kept
	return nil
}

type fakeAttachmentRepo struct {
	attachments map[string]*domain.Attachment
	failCreate  bool
	failDelete  bool
}

func newFakeAttachmentRepo() *fakeAttachmentRepo {
	return &fakeAttachmentRepo{attachments: make(map[string]*domain.Attachment)}
}

func (r *fakeAttachmentRepo) Create(_ context.Context, attachment *domain.Attachment) error {
	if r.failCreate {
		return errStoreDown
	}
	attachment.ID = uuid.NewString()
	attachment.CreatedAt = time.Now()
	clone := *attachment
	r.attachments[attachment.ID] = &clone
	return nil
}

func (r *fakeAttachmentRepo) GetByID(_ context.Context, id string) (*domain.Attachment, error) {
	attachment, ok := r.attachments[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *attachment
	return &clone, nil
}

func (r *fakeAttachmentRepo) ListByTicket(_ context.Context, ticketID string) ([]domain.Attachment, error) {
	result := make([]domain.Attachment, 0)
	for _, attachment := range r.attachments {
		if attachment.TicketID == ticketID {
			result = append(result, *attachment)
		}
	}
	return result, nil
}

func (r *fakeAttachmentRepo) Delete(_ context.Context, id string) error {
	if r.failDelete {
		return errStoreDown
	}
	if _, ok := r.attachments[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.attachments, id)
	return nil
}

type fakeBlob struct {
	data []byte
	mime string
}

// fakeBlobStore counts every call so tests can assert a store was never
// touched, or touched exactly once.
type fakeBlobStore struct {
	blobs       map[string]fakeBlob
	uploadCalls int
	removeCalls int
	failUpload  bool
	failRemove  bool
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{blobs: make(map[string]fakeBlob)}
}

func (s *fakeBlobStore) Upload(_ context.Context, path, mimeType string, data []byte) error {
	s.uploadCalls++
	if s.failUpload {
		return errStoreDown
	}
	s.blobs[path] = fakeBlob{data: data, mime: mimeType}
	return nil
}

func (s *fakeBlobStore) Fetch(_ context.Context, path string) ([]byte, string, error) {
	blob, ok := s.blobs[path]
	if !ok {
		return nil, "", storage.ErrBlobNotFound
	}
	return blob.data, blob.mime, nil
}

func (s *fakeBlobStore) Remove(_ context.Context, path string) error {
	s.removeCalls++
	if s.failRemove {
		return errStoreDown
	}
	delete(s.blobs, path)
	return nil
}

func (s *fakeBlobStore) CreateSignedURL(path string, _ time.Duration) (string, error) {
	return "/files/download?token=" + path, nil
}
