package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/ticket-tracker/internal/domain"
	"github.com/spec-kit/ticket-tracker/internal/repository"
	"github.com/spec-kit/ticket-tracker/internal/storage"
	apperrors "github.com/spec-kit/ticket-tracker/pkg/util"
)

// AttachmentService manages attachment blobs and their metadata records.
// Upload and delete are open to any authenticated user; they are
// deliberately not gated by the ticket management permission.
type AttachmentService struct {
	attachments  repository.AttachmentRepository
	tickets      repository.TicketRepository
	blobs        storage.BlobStore
	signedURLTTL time.Duration
}

// AttachmentDependencies bundles collaborators.
type AttachmentDependencies struct {
	AttachmentRepo repository.AttachmentRepository
	TicketRepo     repository.TicketRepository
	Blobs          storage.BlobStore
	SignedURLTTL   time.Duration
}

// NewAttachmentService constructs the service.
func NewAttachmentService(deps AttachmentDependencies) *AttachmentService {
	ttl := deps.SignedURLTTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &AttachmentService{
		attachments:  deps.AttachmentRepo,
		tickets:      deps.TicketRepo,
		blobs:        deps.Blobs,
		signedURLTTL: ttl,
	}
}

// UploadInput describes an attachment upload.
type UploadInput struct {
	FileName string
	MimeType string
	Data     []byte
}

// Upload stores the blob and then its metadata record. The size cap is
// enforced before any store call. A metadata failure after a successful
// blob write leaves an orphaned blob; that inconsistency is accepted and
// the metadata error is reported.
func (s *AttachmentService) Upload(ctx context.Context, actor Actor, ticketID string, input UploadInput) (*domain.Attachment, error) {
	if int64(len(input.Data)) > domain.MaxAttachmentBytes {
		return nil, apperrors.NewInvalidInput("file exceeds the 10 MiB limit", map[string]any{
			"size_bytes": len(input.Data),
			"max_bytes":  domain.MaxAttachmentBytes,
		})
	}
	if strings.TrimSpace(input.FileName) == "" {
		return nil, apperrors.NewInvalidInput("file name required", nil)
	}

	if _, err := s.tickets.GetByID(ctx, ticketID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.NewStoreFailure(err)
	}

	storagePath := buildStoragePath(ticketID, input.FileName)
	if err := s.blobs.Upload(ctx, storagePath, input.MimeType, input.Data); err != nil {
		return nil, apperrors.NewStoreFailure(err)
	}

	attachment := &domain.Attachment{
		TicketID:    ticketID,
		FileName:    input.FileName,
		MimeType:    input.MimeType,
		SizeBytes:   int64(len(input.Data)),
		StoragePath: storagePath,
		UploadedBy:  actor.Name,
	}
	if err := s.attachments.Create(ctx, attachment); err != nil {
		return nil, apperrors.NewStoreFailure(err)
	}
	return attachment, nil
}

// List returns attachment metadata for a ticket, newest first.
func (s *AttachmentService) List(ctx context.Context, ticketID string) ([]domain.Attachment, error) {
	attachments, err := s.attachments.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, apperrors.NewStoreFailure(err)
	}
	return attachments, nil
}

// Delete removes the blob and its metadata record as one logical unit. The
// blob removal is attempted exactly once and never retried; if the
// metadata delete then fails, the blob stays absent and the failure is
// reported.
func (s *AttachmentService) Delete(ctx context.Context, attachmentID string) error {
	attachment, err := s.attachments.GetByID(ctx, attachmentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("attachment", map[string]any{"attachment_id": attachmentID})
		}
		return apperrors.NewStoreFailure(err)
	}

	if err := s.blobs.Remove(ctx, attachment.StoragePath); err != nil {
		return apperrors.NewStoreFailure(err)
	}
	if err := s.attachments.Delete(ctx, attachmentID); err != nil {
		return apperrors.NewStoreFailure(err)
	}
	return nil
}

// SignedURL issues a time-limited download URL for the attachment.
func (s *AttachmentService) SignedURL(ctx context.Context, attachmentID string) (string, error) {
	attachment, err := s.attachments.GetByID(ctx, attachmentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", apperrors.NewNotFound("attachment", map[string]any{"attachment_id": attachmentID})
		}
		return "", apperrors.NewStoreFailure(err)
	}
	url, err := s.blobs.CreateSignedURL(attachment.StoragePath, s.signedURLTTL)
	if err != nil {
		return "", apperrors.NewStoreFailure(err)
	}
	return url, nil
}

// FetchBlob reads blob bytes for a verified storage path.
func (s *AttachmentService) FetchBlob(ctx context.Context, storagePath string) ([]byte, string, error) {
	data, mimeType, err := s.blobs.Fetch(ctx, storagePath)
	if err != nil {
		if errors.Is(err, storage.ErrBlobNotFound) {
			return nil, "", apperrors.NewNotFound("attachment", nil)
		}
		return nil, "", apperrors.NewStoreFailure(err)
	}
	return data, mimeType, nil
}

func buildStoragePath(ticketID, fileName string) string {
	ext := filepath.Ext(fileName)
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("%s/%d-%s%s", ticketID, time.Now().UnixMilli(), suffix, ext)
}
