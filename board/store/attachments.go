// ABOUTME: Attachment metadata rows; the bytes themselves live in a BlobStore.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/2389-research/gridhq/board/core"
)

const attachmentColumns = "id, card_id, kind, blob_key, mime_type, size_bytes, author, created_at"

// InsertAttachment writes an attachment metadata row.
func (s *SQLite) InsertAttachment(ctx context.Context, a core.Attachment) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO card_attachments (`+attachmentColumns+`) VALUES (`+placeholders(8)+`)`,
		a.ID, a.CardID, a.Kind, a.Key, a.MimeType, a.SizeBytes, nullableString(a.Author), toMillis(a.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert attachment: %w", err)
	}
	return nil
}

// ListAttachments returns attachments on cardID, oldest first.
func (s *SQLite) ListAttachments(ctx context.Context, cardID string) ([]core.Attachment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+attachmentColumns+` FROM card_attachments
		 WHERE card_id = ? ORDER BY created_at ASC, rowid ASC`, cardID)
	if err != nil {
		return nil, fmt.Errorf("query attachments: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []core.Attachment
	for rows.Next() {
		a, err := scanAttachment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan attachment: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// GetAttachment returns attachment id.
func (s *SQLite) GetAttachment(ctx context.Context, id string) (core.Attachment, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+attachmentColumns+` FROM card_attachments WHERE id = ?`, id)
	a, err := scanAttachment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Attachment{}, core.NotFoundError("attachment", id)
	}
	if err != nil {
		return core.Attachment{}, fmt.Errorf("get attachment: %w", err)
	}
	return a, nil
}

func scanAttachment(r rowScanner) (core.Attachment, error) {
	var (
		a         core.Attachment
		author    sql.NullString
		createdAt int64
	)
	if err := r.Scan(&a.ID, &a.CardID, &a.Kind, &a.Key, &a.MimeType, &a.SizeBytes, &author, &createdAt); err != nil {
		return core.Attachment{}, err
	}
	a.Author = stringPtr(author)
	a.CreatedAt = fromMillis(createdAt)
	return a, nil
}
