// ABOUTME: Persistence and blob contracts consumed by the board core.
// ABOUTME: Implemented by board/store; fakes in tests implement the same interfaces.
package core

import (
	"context"
	"io"
	"time"
)

// CardTable stores card rows. Lookups and mutations of a missing id return an
// error matching ErrNotFound.
type CardTable interface {
	InsertCard(ctx context.Context, card Card) error
	GetCard(ctx context.Context, id string) (Card, error)
	// UpdateCard writes every Set field of patch plus UpdatedAt in one statement.
	UpdateCard(ctx context.Context, id string, patch CardPatch) error
	ArchiveCard(ctx context.Context, id string, at time.Time) error
	DeleteCard(ctx context.Context, id string) error
	// ListCards orders by status rank, sort ascending, updated_at descending.
	ListCards(ctx context.Context, filter ListFilter) ([]Card, error)
	// MaxSort returns the largest sort among non-archived cards in the lane,
	// or 0 when the lane is empty.
	MaxSort(ctx context.Context, status Status) (int64, error)
}

// FocusTable stores the singleton focus record.
type FocusTable interface {
	// GetFocus returns ok=false when the record has never been written.
	GetFocus(ctx context.Context) (rec FocusRecord, ok bool, err error)
	PutFocus(ctx context.Context, rec FocusRecord) error
}

// CommentTable stores append-only card comments.
type CommentTable interface {
	InsertComment(ctx context.Context, c Comment) error
	ListComments(ctx context.Context, cardID string) ([]Comment, error)
}

// AttachmentTable stores attachment metadata rows.
type AttachmentTable interface {
	InsertAttachment(ctx context.Context, a Attachment) error
	ListAttachments(ctx context.Context, cardID string) ([]Attachment, error)
	GetAttachment(ctx context.Context, id string) (Attachment, error)
}

// Table is the full persistent table surface.
type Table interface {
	CardTable
	FocusTable
	CommentTable
	AttachmentTable
}

// BlobStore holds attachment bytes addressed by key.
type BlobStore interface {
	// Put stores r under key and returns the number of bytes written.
	Put(ctx context.Context, key, mimeType string, r io.Reader) (int64, error)
	// Get opens the blob; a missing key returns an error matching ErrNotFound.
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}
