// ABOUTME: Board wires the card store, epic resolver, focus tracker, and ordering assigner
// ABOUTME: over a persistent table and optional blob store. All work is request-scoped.
package core

import (
	"time"

	"go.uber.org/zap"
)

// DefaultMaxAttachmentBytes caps a single attachment upload.
const DefaultMaxAttachmentBytes int64 = 5 * 1024 * 1024

// Board is the entry point for every card, focus, comment, and attachment
// operation. It holds no mutable state of its own.
type Board struct {
	table Table
	blobs BlobStore

	Epics    *EpicResolver
	Focus    *FocusTracker
	Ordering *OrderingAssigner

	maxAttachmentBytes int64
	now                func() time.Time
	logger             *zap.Logger
}

// Option configures a Board.
type Option func(*Board)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(b *Board) { b.now = now }
}

// WithLogger sets the structured logger.
func WithLogger(logger *zap.Logger) Option {
	return func(b *Board) { b.logger = logger }
}

// WithBlobStore enables attachments. maxBytes <= 0 selects the default cap.
func WithBlobStore(blobs BlobStore, maxBytes int64) Option {
	return func(b *Board) {
		b.blobs = blobs
		if maxBytes > 0 {
			b.maxAttachmentBytes = maxBytes
		}
	}
}

// NewBoard builds a Board over table.
func NewBoard(table Table, opts ...Option) *Board {
	b := &Board{
		table:              table,
		maxAttachmentBytes: DefaultMaxAttachmentBytes,
		now:                time.Now,
		logger:             zap.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.Epics = NewEpicResolver(table)
	b.Ordering = NewOrderingAssigner(table)
	b.Focus = NewFocusTracker(table, b.now, b.logger)
	return b
}

// AttachmentsEnabled reports whether a blob store is configured.
func (b *Board) AttachmentsEnabled() bool {
	return b.blobs != nil
}

// MaxAttachmentBytes returns the configured upload cap.
func (b *Board) MaxAttachmentBytes() int64 {
	return b.maxAttachmentBytes
}

func (b *Board) stamp() time.Time {
	return truncateMillis(b.now())
}

// truncateMillis drops sub-millisecond precision so values survive the
// millisecond round trip through storage unchanged.
func truncateMillis(t time.Time) time.Time {
	return time.UnixMilli(t.UnixMilli()).UTC()
}
