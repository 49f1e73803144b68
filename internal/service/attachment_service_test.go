package service

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/ticket-tracker/internal/domain"
	apperrors "github.com/spec-kit/ticket-tracker/pkg/util"
)

type attachmentFixture struct {
	svc         *AttachmentService
	attachments *fakeAttachmentRepo
	tickets     *fakeTicketRepo
	blobs       *fakeBlobStore
	ticketID    string
}

func newAttachmentFixture(t *testing.T) *attachmentFixture {
	t.Helper()
	f := &attachmentFixture{
		attachments: newFakeAttachmentRepo(),
		tickets:     newFakeTicketRepo(),
		blobs:       newFakeBlobStore(),
	}
	ticket := &domain.Ticket{Title: "host ticket", AuthorID: plainActor.ID, Status: domain.TicketStatusOpen}
	require.NoError(t, f.tickets.Create(context.Background(), ticket))
	f.ticketID = ticket.ID

	f.svc = NewAttachmentService(AttachmentDependencies{
		AttachmentRepo: f.attachments,
		TicketRepo:     f.tickets,
		Blobs:          f.blobs,
		SignedURLTTL:   time.Minute,
	})
	return f
}

func TestUploadRejectsOversizeBeforeAnyStoreCall(t *testing.T) {
	f := newAttachmentFixture(t)

	oversized := bytes.Repeat([]byte("x"), 15<<20)
	_, err := f.svc.Upload(context.Background(), plainActor, f.ticketID, UploadInput{
		FileName: "huge.bin",
		MimeType: "application/octet-stream",
		Data:     oversized,
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "INVALID_INPUT"))
	assert.Zero(t, f.blobs.uploadCalls, "blob store must not be touched")
	assert.Empty(t, f.attachments.attachments)
}

func TestUploadAcceptsExactlyTenMiB(t *testing.T) {
	f := newAttachmentFixture(t)

	data := bytes.Repeat([]byte("y"), int(domain.MaxAttachmentBytes))
	attachment, err := f.svc.Upload(context.Background(), plainActor, f.ticketID, UploadInput{
		FileName: "boundary.bin",
		MimeType: "application/octet-stream",
		Data:     data,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.MaxAttachmentBytes, attachment.SizeBytes)
	assert.Equal(t, 1, f.blobs.uploadCalls)
}

func TestUploadRequiresExistingTicket(t *testing.T) {
	f := newAttachmentFixture(t)

	_, err := f.svc.Upload(context.Background(), plainActor, "missing-ticket", UploadInput{
		FileName: "orphan.txt",
		MimeType: "text/plain",
		Data:     []byte("hello"),
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "NOT_FOUND"))
	assert.Zero(t, f.blobs.uploadCalls)
}

func TestUploadMetadataFailureKeepsBlobAndSurfaces(t *testing.T) {
	f := newAttachmentFixture(t)
	f.attachments.failCreate = true

	_, err := f.svc.Upload(context.Background(), plainActor, f.ticketID, UploadInput{
		FileName: "report.pdf",
		MimeType: "application/pdf",
		Data:     []byte("pdf bytes"),
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "STORE_FAILURE"))
	assert.Equal(t, 1, f.blobs.uploadCalls)
	assert.Len(t, f.blobs.blobs, 1, "the orphaned blob is accepted, not rolled back")
}

func TestDeleteRemovesBlobExactlyOnceThenMetadata(t *testing.T) {
	f := newAttachmentFixture(t)
	attachment, err := f.svc.Upload(context.Background(), plainActor, f.ticketID, UploadInput{
		FileName: "photo.png",
		MimeType: "image/png",
		Data:     []byte("png bytes"),
	})
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(context.Background(), attachment.ID))
	assert.Equal(t, 1, f.blobs.removeCalls)
	assert.Empty(t, f.blobs.blobs)
	assert.Empty(t, f.attachments.attachments)
}

func TestDeleteMetadataFailureAfterBlobRemoval(t *testing.T) {
	f := newAttachmentFixture(t)
	attachment, err := f.svc.Upload(context.Background(), plainActor, f.ticketID, UploadInput{
		FileName: "notes.txt",
		MimeType: "text/plain",
		Data:     []byte("notes"),
	})
	require.NoError(t, err)
	f.attachments.failDelete = true

	err = f.svc.Delete(context.Background(), attachment.ID)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "STORE_FAILURE"))
	assert.Equal(t, 1, f.blobs.removeCalls, "blob removal is attempted exactly once, never retried")
	assert.Empty(t, f.blobs.blobs, "the blob stays gone")
}

func TestDeleteUnknownAttachment(t *testing.T) {
	f := newAttachmentFixture(t)

	err := f.svc.Delete(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "NOT_FOUND"))
	assert.Zero(t, f.blobs.removeCalls)
}

func TestFetchBlobMissingPath(t *testing.T) {
	f := newAttachmentFixture(t)

	_, _, err := f.svc.FetchBlob(context.Background(), "nowhere/nothing.bin")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "NOT_FOUND"))
}
