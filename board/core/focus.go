// ABOUTME: FocusTracker owns the singleton "current focus" record and its auto-update rules.
// ABOUTME: The record is advisory: card status is never inferred from it and races are last-writer-wins.
package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Mode describes what the board's operator is currently doing.
type Mode string

const (
	ModeIdle     Mode = "idle"
	ModeWorking  Mode = "working"
	ModeWaiting  Mode = "waiting"
	ModeSleeping Mode = "sleeping"
)

// Modes lists every declared focus mode.
var Modes = []Mode{ModeIdle, ModeWorking, ModeWaiting, ModeSleeping}

// Valid reports whether m is a declared mode.
func (m Mode) Valid() bool {
	for _, v := range Modes {
		if v == m {
			return true
		}
	}
	return false
}

// FocusRecord is the singleton describing which card, if any, is being worked on.
type FocusRecord struct {
	Message     string
	Mode        Mode
	FocusCardID *string
	UpdatedAt   *time.Time
}

// DefaultFocus is the shape returned before the record is first written.
func DefaultFocus() FocusRecord {
	return FocusRecord{Mode: ModeIdle}
}

// FocusInput is a direct external write. Only Set fields are merged, and
// Message and Mode are merged only when non-null.
type FocusInput struct {
	Message     OptionalField[string]
	Mode        OptionalField[string]
	FocusCardID OptionalField[string]
}

// workingPrefix precedes the card title in auto-set focus messages.
const workingPrefix = "Working on: "

// FocusTracker keeps the focus record in step with card status transitions.
type FocusTracker struct {
	table  FocusTable
	now    func() time.Time
	logger *zap.Logger
}

// NewFocusTracker returns a tracker writing to table.
func NewFocusTracker(table FocusTable, now func() time.Time, logger *zap.Logger) *FocusTracker {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FocusTracker{table: table, now: now, logger: logger}
}

// Get returns the current record, or DefaultFocus when none was written yet.
func (f *FocusTracker) Get(ctx context.Context) (FocusRecord, error) {
	rec, ok, err := f.table.GetFocus(ctx)
	if err != nil {
		return FocusRecord{}, fmt.Errorf("get focus: %w", err)
	}
	if !ok {
		return DefaultFocus(), nil
	}
	if rec.Mode == "" {
		rec.Mode = ModeIdle
	}
	return rec, nil
}

// Update merges the provided fields into the record and refreshes UpdatedAt.
// A null message or mode counts as not provided; only a null focus card clears.
func (f *FocusTracker) Update(ctx context.Context, in FocusInput) (FocusRecord, error) {
	var mode *Mode
	if in.Mode.Set && in.Mode.Valid {
		m := Mode(strings.TrimSpace(in.Mode.Value))
		if !m.Valid() {
			return FocusRecord{}, newError(KindInvalidMode, in.Mode.Value)
		}
		mode = &m
	}

	rec, err := f.Get(ctx)
	if err != nil {
		return FocusRecord{}, err
	}
	if in.Message.Set && in.Message.Valid {
		rec.Message = in.Message.Value
	}
	if mode != nil {
		rec.Mode = *mode
	}
	if in.FocusCardID.Set {
		rec.FocusCardID = nil
		if id := strings.TrimSpace(in.FocusCardID.Value); in.FocusCardID.Valid && id != "" {
			rec.FocusCardID = &id
		}
	}
	now := f.stamp()
	rec.UpdatedAt = &now

	if err := f.table.PutFocus(ctx, rec); err != nil {
		return FocusRecord{}, fmt.Errorf("put focus: %w", err)
	}
	f.logger.Debug("focus updated",
		zap.String("component", "board.focus"),
		zap.String("action", "direct_write"),
		zap.String("mode", string(rec.Mode)))
	return rec, nil
}

// CardStatusChanged applies the auto-focus rules after a card's status
// changed: entering doing takes focus, entering done releases focus held by
// the same card, anything else leaves the record alone.
func (f *FocusTracker) CardStatusChanged(ctx context.Context, cardID, title string, status Status) error {
	switch status {
	case StatusDoing:
		now := f.stamp()
		id := cardID
		rec := FocusRecord{
			Message:     workingPrefix + title,
			Mode:        ModeWorking,
			FocusCardID: &id,
			UpdatedAt:   &now,
		}
		if err := f.table.PutFocus(ctx, rec); err != nil {
			return fmt.Errorf("put focus: %w", err)
		}
		f.logger.Debug("focus taken",
			zap.String("component", "board.focus"),
			zap.String("action", "auto_working"),
			zap.String("card_id", cardID))
		return nil
	case StatusDone:
		return f.release(ctx, cardID, "auto_done")
	default:
		return nil
	}
}

// CardRemoved releases focus held by a card that was archived or deleted.
func (f *FocusTracker) CardRemoved(ctx context.Context, cardID string) error {
	return f.release(ctx, cardID, "auto_removed")
}

// release resets the record to idle when it currently points at cardID.
func (f *FocusTracker) release(ctx context.Context, cardID, action string) error {
	rec, ok, err := f.table.GetFocus(ctx)
	if err != nil {
		return fmt.Errorf("get focus: %w", err)
	}
	if !ok || rec.FocusCardID == nil || *rec.FocusCardID != cardID {
		return nil
	}
	now := f.stamp()
	idle := FocusRecord{Mode: ModeIdle, UpdatedAt: &now}
	if err := f.table.PutFocus(ctx, idle); err != nil {
		return fmt.Errorf("put focus: %w", err)
	}
	f.logger.Debug("focus released",
		zap.String("component", "board.focus"),
		zap.String("action", action),
		zap.String("card_id", cardID))
	return nil
}

func (f *FocusTracker) stamp() time.Time {
	return truncateMillis(f.now())
}
