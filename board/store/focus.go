// ABOUTME: Singleton focus_status row persistence.
// ABOUTME: Writes upsert the fixed "singleton" key; reads report whether it was ever written.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/2389-research/gridhq/board/core"
)

const focusKey = "singleton"

// GetFocus returns the stored record; ok is false before the first write.
func (s *SQLite) GetFocus(ctx context.Context) (core.FocusRecord, bool, error) {
	var (
		rec       core.FocusRecord
		mode      string
		cardID    sql.NullString
		updatedAt sql.NullInt64
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT message, mode, focus_card_id, updated_at FROM focus_status WHERE id = ?", focusKey).
		Scan(&rec.Message, &mode, &cardID, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.FocusRecord{}, false, nil
	}
	if err != nil {
		return core.FocusRecord{}, false, fmt.Errorf("query focus: %w", err)
	}
	rec.Mode = core.Mode(mode)
	rec.FocusCardID = stringPtr(cardID)
	rec.UpdatedAt = timePtr(updatedAt)
	return rec, true, nil
}

// PutFocus replaces the singleton record.
func (s *SQLite) PutFocus(ctx context.Context, rec core.FocusRecord) error {
	mode := rec.Mode
	if mode == "" {
		mode = core.ModeIdle
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO focus_status (id, message, mode, focus_card_id, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			message = excluded.message,
			mode = excluded.mode,
			focus_card_id = excluded.focus_card_id,
			updated_at = excluded.updated_at`,
		focusKey, rec.Message, string(mode), nullableString(rec.FocusCardID), nullableMillis(rec.UpdatedAt))
	if err != nil {
		return fmt.Errorf("upsert focus: %w", err)
	}
	return nil
}
