package domain

import "time"

// MaxAttachmentBytes caps attachment size. Enforced before any store call.
const MaxAttachmentBytes int64 = 10 << 20

// Attachment is metadata for a file stored in the blob store under
// StoragePath. Deleting an attachment removes both the blob and this record.
type Attachment struct {
	ID          string
	TicketID    string
	FileName    string
	MimeType    string
	SizeBytes   int64
	StoragePath string
	UploadedBy  string
	CreatedAt   time.Time
}
