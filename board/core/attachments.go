// ABOUTME: Attachment metadata and upload flow for card images.
// ABOUTME: The blob is written first; the metadata row only after the blob commits.
package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"
)

// AttachmentKindImage is the only attachment kind accepted today.
const AttachmentKindImage = "image"

// allowedMimeTypes maps accepted upload types to their blob key extension.
var allowedMimeTypes = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
}

// AllowedMimeTypes returns the accepted upload types in a stable order.
func AllowedMimeTypes() []string {
	return []string{"image/jpeg", "image/png", "image/webp"}
}

// Attachment describes a stored blob belonging to a card.
type Attachment struct {
	ID        string
	CardID    string
	Kind      string
	Key       string
	MimeType  string
	SizeBytes int64
	Author    *string
	CreatedAt time.Time
}

// AddAttachment stores body as a new image attachment on cardID. size is the
// declared length, used to reject obviously bad uploads before any bytes are
// written; the stored size is what the blob store actually wrote.
func (b *Board) AddAttachment(ctx context.Context, author, cardID, mimeType string, size int64, body io.Reader) (Attachment, error) {
	if b.blobs == nil {
		return Attachment{}, newError(KindAttachmentsDisabled, "")
	}
	ext, ok := allowedMimeTypes[mimeType]
	if !ok {
		return Attachment{}, newError(KindInvalidMimeType, mimeType)
	}
	if size <= 0 {
		return Attachment{}, newError(KindEmptyFile, "")
	}
	if size > b.maxAttachmentBytes {
		return Attachment{}, b.tooLarge()
	}
	if _, err := b.table.GetCard(ctx, cardID); err != nil {
		return Attachment{}, err
	}

	a := Attachment{
		ID:       NewChildID(),
		CardID:   cardID,
		Kind:     AttachmentKindImage,
		MimeType: mimeType,
		Author:   trimmedPtr(author),
	}
	a.Key = fmt.Sprintf("cards/%s/%s.%s", cardID, a.ID, ext)

	n, err := b.blobs.Put(ctx, a.Key, mimeType, io.LimitReader(body, b.maxAttachmentBytes+1))
	if err != nil {
		return Attachment{}, fmt.Errorf("put blob: %w", err)
	}
	if n == 0 || n > b.maxAttachmentBytes {
		if derr := b.blobs.Delete(ctx, a.Key); derr != nil {
			b.logger.Warn("discarding rejected blob failed",
				zap.String("component", "board.attachments"),
				zap.String("key", a.Key),
				zap.Error(derr))
		}
		if n == 0 {
			return Attachment{}, newError(KindEmptyFile, "")
		}
		return Attachment{}, b.tooLarge()
	}
	a.SizeBytes = n
	a.CreatedAt = b.stamp()

	// An orphaned blob is tolerated if this insert fails.
	if err := b.table.InsertAttachment(ctx, a); err != nil {
		return Attachment{}, fmt.Errorf("insert attachment: %w", err)
	}
	b.logger.Info("attachment stored",
		zap.String("component", "board.attachments"),
		zap.String("action", "create"),
		zap.String("card_id", cardID),
		zap.String("attachment_id", a.ID),
		zap.Int64("size_bytes", n))
	return a, nil
}

// ListAttachments returns the attachments on cardID ordered by creation time.
func (b *Board) ListAttachments(ctx context.Context, cardID string) ([]Attachment, error) {
	out, err := b.table.ListAttachments(ctx, cardID)
	if err != nil {
		return nil, fmt.Errorf("list attachments: %w", err)
	}
	return out, nil
}

// OpenAttachment returns the attachment metadata and a reader over its bytes.
// The caller closes the reader.
func (b *Board) OpenAttachment(ctx context.Context, id string) (Attachment, io.ReadCloser, error) {
	if b.blobs == nil {
		return Attachment{}, nil, newError(KindAttachmentsDisabled, "")
	}
	a, err := b.table.GetAttachment(ctx, id)
	if err != nil {
		return Attachment{}, nil, err
	}
	rc, err := b.blobs.Get(ctx, a.Key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Attachment{}, nil, newError(KindNotFound, "missing object "+a.Key)
		}
		return Attachment{}, nil, fmt.Errorf("get blob: %w", err)
	}
	return a, rc, nil
}

func (b *Board) tooLarge() error {
	return newError(KindFileTooLarge, fmt.Sprintf("max %d bytes", b.maxAttachmentBytes))
}
