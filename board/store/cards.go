// ABOUTME: Card row persistence: insert, patch-based update, archive, delete, list, and lane max sort.
// ABOUTME: Labels are stored as a JSON array in a TEXT column; timestamps as unix milliseconds.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/2389-research/gridhq/board/core"
)

const cardColumns = `id, title, status, sort, created_at, updated_at, description,
	labels, due_date, archived, priority, is_epic, epic_id`

// statusOrder ranks lanes for list ordering; unknown values sort last.
var statusOrder = func() string {
	var b strings.Builder
	b.WriteString("CASE status")
	for _, s := range core.Statuses {
		fmt.Fprintf(&b, " WHEN '%s' THEN %d", s, s.Rank())
	}
	fmt.Fprintf(&b, " ELSE %d END", len(core.Statuses))
	return b.String()
}()

// InsertCard writes a new card row.
func (s *SQLite) InsertCard(ctx context.Context, c core.Card) error {
	labels, err := encodeLabels(c.Labels)
	if err != nil {
		return err
	}
	var priority sql.NullString
	if c.Priority != nil {
		priority = sql.NullString{String: string(*c.Priority), Valid: true}
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO cards (`+cardColumns+`) VALUES (`+placeholders(13)+`)`,
		c.ID, c.Title, string(c.Status), c.Sort,
		toMillis(c.CreatedAt), toMillis(c.UpdatedAt),
		nullableString(c.Description), labels, nullableMillis(c.DueDate),
		boolInt(c.Archived), priority, boolInt(c.IsEpic), nullableString(c.EpicID))
	if err != nil {
		return fmt.Errorf("insert card: %w", err)
	}
	return nil
}

// GetCard returns card id regardless of its archived flag.
func (s *SQLite) GetCard(ctx context.Context, id string) (core.Card, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+cardColumns+` FROM cards WHERE id = ?`, id)
	c, err := scanCard(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Card{}, core.NotFoundError("card", id)
	}
	if err != nil {
		return core.Card{}, fmt.Errorf("get card: %w", err)
	}
	return c, nil
}

// UpdateCard writes every Set field of patch and UpdatedAt in one statement.
func (s *SQLite) UpdateCard(ctx context.Context, id string, p core.CardPatch) error {
	var (
		sets []string
		args []any
	)
	set := func(col string, v any) {
		sets = append(sets, col+" = ?")
		args = append(args, v)
	}

	if p.Title.Set {
		set("title", p.Title.Value)
	}
	if p.Status.Set {
		set("status", string(p.Status.Value))
	}
	if p.Description.Set {
		set("description", nullableString(p.Description.Ptr()))
	}
	if p.Labels.Set {
		var labels []string
		if p.Labels.Valid {
			labels = p.Labels.Value
		}
		encoded, err := encodeLabels(labels)
		if err != nil {
			return err
		}
		set("labels", encoded)
	}
	if p.DueDate.Set {
		set("due_date", nullableMillis(p.DueDate.Ptr()))
	}
	if p.Priority.Set {
		var priority sql.NullString
		if p.Priority.Valid {
			priority = sql.NullString{String: string(p.Priority.Value), Valid: true}
		}
		set("priority", priority)
	}
	if p.Archived.Set {
		set("archived", boolInt(p.Archived.Value))
	}
	if p.Sort.Set {
		set("sort", p.Sort.Value)
	}
	if p.IsEpic.Set {
		set("is_epic", boolInt(p.IsEpic.Value))
	}
	if p.EpicID.Set {
		set("epic_id", nullableString(p.EpicID.Ptr()))
	}
	set("updated_at", toMillis(p.UpdatedAt))
	args = append(args, id)

	res, err := s.db.ExecContext(ctx,
		"UPDATE cards SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return fmt.Errorf("update card: %w", err)
	}
	return requireRow(res, "card", id)
}

// ArchiveCard sets the archived flag and refreshes updated_at.
func (s *SQLite) ArchiveCard(ctx context.Context, id string, at time.Time) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE cards SET archived = 1, updated_at = ? WHERE id = ?", toMillis(at), id)
	if err != nil {
		return fmt.Errorf("archive card: %w", err)
	}
	return requireRow(res, "card", id)
}

// DeleteCard removes the row; comments and attachment metadata cascade.
func (s *SQLite) DeleteCard(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM cards WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete card: %w", err)
	}
	return requireRow(res, "card", id)
}

// ListCards returns cards matching filter in board order.
func (s *SQLite) ListCards(ctx context.Context, f core.ListFilter) ([]core.Card, error) {
	var (
		where []string
		args  []any
	)
	if !f.IncludeArchived {
		where = append(where, "archived = 0")
	}
	if f.EpicsOnly {
		where = append(where, "is_epic = 1")
	}
	if f.EpicID != "" {
		where = append(where, "epic_id = ?")
		args = append(args, f.EpicID)
	}
	if f.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(f.Status))
	}

	query := `SELECT ` + cardColumns + ` FROM cards`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY " + statusOrder + ", sort ASC, updated_at DESC, id ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query cards: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var cards []core.Card
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			return nil, fmt.Errorf("scan card: %w", err)
		}
		cards = append(cards, c)
	}
	return cards, rows.Err()
}

// MaxSort returns the highest sort among active cards in status, or 0.
func (s *SQLite) MaxSort(ctx context.Context, status core.Status) (int64, error) {
	var top int64
	err := s.db.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(sort), 0) FROM cards WHERE status = ? AND archived = 0",
		string(status)).Scan(&top)
	if err != nil {
		return 0, fmt.Errorf("max sort: %w", err)
	}
	return top, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCard(r rowScanner) (core.Card, error) {
	var (
		c           core.Card
		status      string
		createdAt   int64
		updatedAt   int64
		description sql.NullString
		labels      sql.NullString
		dueDate     sql.NullInt64
		archived    int
		priority    sql.NullString
		isEpic      int
		epicID      sql.NullString
	)
	if err := r.Scan(&c.ID, &c.Title, &status, &c.Sort, &createdAt, &updatedAt,
		&description, &labels, &dueDate, &archived, &priority, &isEpic, &epicID); err != nil {
		return core.Card{}, err
	}
	c.Status = core.Status(status)
	c.CreatedAt = fromMillis(createdAt)
	c.UpdatedAt = fromMillis(updatedAt)
	c.Description = stringPtr(description)
	c.DueDate = timePtr(dueDate)
	c.Archived = archived != 0
	c.IsEpic = isEpic != 0
	c.EpicID = stringPtr(epicID)
	if priority.Valid {
		p := core.Priority(priority.String)
		c.Priority = &p
	}
	decoded, err := decodeLabels(labels)
	if err != nil {
		return core.Card{}, err
	}
	c.Labels = decoded
	return c, nil
}

func encodeLabels(labels []string) (sql.NullString, error) {
	if len(labels) == 0 {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(labels)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("encode labels: %w", err)
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

func decodeLabels(ns sql.NullString) ([]string, error) {
	if !ns.Valid || ns.String == "" {
		return nil, nil
	}
	var labels []string
	if err := json.Unmarshal([]byte(ns.String), &labels); err != nil {
		return nil, fmt.Errorf("decode labels: %w", err)
	}
	if len(labels) == 0 {
		return nil, nil
	}
	return labels, nil
}

func requireRow(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return core.NotFoundError(entity, id)
	}
	return nil
}
