package handlers

import (
	"io"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-tracker/internal/api/dto"
	"github.com/spec-kit/ticket-tracker/internal/domain"
	"github.com/spec-kit/ticket-tracker/internal/service"
	"github.com/spec-kit/ticket-tracker/internal/storage"
	apperrors "github.com/spec-kit/ticket-tracker/pkg/util"
)

// AttachmentsHandler manages attachment endpoints.
type AttachmentsHandler struct {
	service *service.AttachmentService
	signer  *storage.URLSigner
}

// NewAttachmentsHandler constructs handler.
func NewAttachmentsHandler(attachmentService *service.AttachmentService, signer *storage.URLSigner) *AttachmentsHandler {
	return &AttachmentsHandler{service: attachmentService, signer: signer}
}

// List GET /api/tickets/:id/attachments.
func (h *AttachmentsHandler) List(c *fiber.Ctx) error {
	attachments, err := h.service.List(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	items := make([]dto.AttachmentResponse, 0, len(attachments))
	for i := range attachments {
		items = append(items, attachmentResponse(&attachments[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Upload POST /api/tickets/:id/attachments. Expects a multipart form with
// a single "file" field.
func (h *AttachmentsHandler) Upload(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return apperrors.NewInvalidInput("multipart field 'file' required", nil)
	}
	if fileHeader.Size > domain.MaxAttachmentBytes {
		return apperrors.NewInvalidInput("file exceeds the 10 MiB limit", map[string]any{
			"size_bytes": fileHeader.Size,
			"max_bytes":  domain.MaxAttachmentBytes,
		})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return apperrors.NewInvalidInput("unreadable upload", nil)
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		return apperrors.NewInvalidInput("unreadable upload", nil)
	}

	attachment, err := h.service.Upload(c.UserContext(), actor, c.Params("id"), service.UploadInput{
		FileName: fileHeader.Filename,
		MimeType: fileHeader.Header.Get("Content-Type"),
		Data:     data,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": attachmentResponse(attachment)})
}

// SignedURL GET /api/attachments/:id/url.
func (h *AttachmentsHandler) SignedURL(c *fiber.Ctx) error {
	url, err := h.service.SignedURL(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"url": url}})
}

// Delete DELETE /api/attachments/:id.
func (h *AttachmentsHandler) Delete(c *fiber.Ctx) error {
	if _, err := requireActor(c); err != nil {
		return err
	}
	if err := h.service.Delete(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Download GET /files/download?token=... streams the blob granted by a
// signed URL token. The token is the sole credential.
func (h *AttachmentsHandler) Download(c *fiber.Ctx) error {
	token := c.Query("token")
	if token == "" {
		return apperrors.NewInvalidInput("token required", nil)
	}
	path, err := h.signer.Verify(token)
	if err != nil {
		return apperrors.NewUnauthorized("invalid or expired download token")
	}
	data, mimeType, err := h.service.FetchBlob(c.UserContext(), path)
	if err != nil {
		return err
	}
	if mimeType != "" {
		c.Set(fiber.HeaderContentType, mimeType)
	}
	return c.Send(data)
}

func attachmentResponse(attachment *domain.Attachment) dto.AttachmentResponse {
	return dto.AttachmentResponse{
		ID:         attachment.ID,
		TicketID:   attachment.TicketID,
		FileName:   attachment.FileName,
		MimeType:   attachment.MimeType,
		SizeBytes:  attachment.SizeBytes,
		UploadedBy: attachment.UploadedBy,
		CreatedAt:  attachment.CreatedAt,
	}
}
