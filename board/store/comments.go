// ABOUTME: Append-only card comment rows.
package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/2389-research/gridhq/board/core"
)

// InsertComment writes a comment row.
func (s *SQLite) InsertComment(ctx context.Context, c core.Comment) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO card_comments (id, card_id, parent_id, author, text, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID, c.CardID, nullableString(c.ParentID), nullableString(c.Author), c.Text, toMillis(c.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert comment: %w", err)
	}
	return nil
}

// ListComments returns comments on cardID, oldest first.
func (s *SQLite) ListComments(ctx context.Context, cardID string) ([]core.Comment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, card_id, parent_id, author, text, created_at
		 FROM card_comments WHERE card_id = ? ORDER BY created_at ASC, rowid ASC`, cardID)
	if err != nil {
		return nil, fmt.Errorf("query comments: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []core.Comment
	for rows.Next() {
		var (
			c         core.Comment
			parentID  sql.NullString
			author    sql.NullString
			createdAt int64
		)
		if err := rows.Scan(&c.ID, &c.CardID, &parentID, &author, &c.Text, &createdAt); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		c.ParentID = stringPtr(parentID)
		c.Author = stringPtr(author)
		c.CreatedAt = fromMillis(createdAt)
		out = append(out, c)
	}
	return out, rows.Err()
}
