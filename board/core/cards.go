// ABOUTME: Card store operations: create, update, archive, delete, get, and list.
// ABOUTME: Validates every field before a single write, then notifies the focus tracker.
package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// CreateCard validates in, assigns the lane position, and persists a new
// active card. It returns the new card's id.
func (b *Board) CreateCard(ctx context.Context, in CreateCardInput) (string, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return "", newError(KindTitleRequired, "")
	}

	status := StatusBacklog
	if strings.TrimSpace(in.Status) != "" {
		s, err := ParseStatus(in.Status)
		if err != nil {
			return "", err
		}
		status = s
	}

	var priority *Priority
	if strings.TrimSpace(in.Priority) != "" {
		p, err := ParsePriority(in.Priority)
		if err != nil {
			return "", err
		}
		priority = &p
	}

	epicID := strings.TrimSpace(in.EpicID)
	if in.IsEpic && epicID != "" {
		return "", newError(KindEpicCannotHaveEpic, "")
	}
	if epicID != "" {
		if _, err := b.Epics.Resolve(ctx, epicID); err != nil {
			return "", epicError(err, epicID)
		}
	}

	labels := NormalizeLabels(in.Labels)
	if in.IsEpic {
		labels = WithEpicLabel(labels)
	}

	sort, err := b.Ordering.NextSort(ctx, status)
	if err != nil {
		return "", err
	}

	now := b.stamp()
	card := Card{
		ID:          NewCardID(),
		Title:       title,
		Status:      status,
		Sort:        sort,
		CreatedAt:   now,
		UpdatedAt:   now,
		Description: trimmedPtr(in.Description),
		Labels:      labels,
		Priority:    priority,
		IsEpic:      in.IsEpic,
	}
	if in.DueDate != nil {
		due := truncateMillis(*in.DueDate)
		card.DueDate = &due
	}
	if epicID != "" {
		card.EpicID = &epicID
	}

	if err := b.table.InsertCard(ctx, card); err != nil {
		return "", fmt.Errorf("insert card: %w", err)
	}
	b.logger.Info("card created",
		zap.String("component", "board.cards"),
		zap.String("action", "create"),
		zap.String("card_id", card.ID),
		zap.String("status", string(card.Status)),
		zap.Int64("sort", card.Sort))
	return card.ID, nil
}

// UpdateCard applies the provided fields of in to card id. Validation runs
// before the write; either every provided field is written or none is.
func (b *Board) UpdateCard(ctx context.Context, id string, in UpdateCardInput) error {
	patch, err := buildPatch(in)
	if err != nil {
		return err
	}
	if patch.empty() {
		return newError(KindNoUpdates, "")
	}

	existing, err := b.table.GetCard(ctx, id)
	if err != nil {
		return err
	}

	if err := b.applyEpicRules(ctx, id, existing, &patch); err != nil {
		return err
	}

	patch.UpdatedAt = b.stamp()
	if err := b.table.UpdateCard(ctx, id, patch); err != nil {
		return err
	}

	b.logger.Info("card updated",
		zap.String("component", "board.cards"),
		zap.String("action", "update"),
		zap.String("card_id", id),
		zap.Strings("fields", patch.fields()))

	if patch.Status.Set && patch.Status.Value != existing.Status {
		title := existing.Title
		if patch.Title.Set {
			title = patch.Title.Value
		}
		if err := b.Focus.CardStatusChanged(ctx, id, title, patch.Status.Value); err != nil {
			return err
		}
	}
	if patch.Archived.Set && patch.Archived.Value && !existing.Archived {
		if err := b.Focus.CardRemoved(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// ArchiveCard soft-deletes card id. Archiving an already archived card
// succeeds and refreshes its updated timestamp.
func (b *Board) ArchiveCard(ctx context.Context, id string) error {
	if err := b.table.ArchiveCard(ctx, id, b.stamp()); err != nil {
		return err
	}
	b.logger.Info("card archived",
		zap.String("component", "board.cards"),
		zap.String("action", "archive"),
		zap.String("card_id", id))
	return b.Focus.CardRemoved(ctx, id)
}

// DeleteCard removes card id permanently. Deleting a missing or already
// deleted card returns ErrNotFound.
func (b *Board) DeleteCard(ctx context.Context, id string) error {
	if err := b.table.DeleteCard(ctx, id); err != nil {
		return err
	}
	b.logger.Info("card deleted",
		zap.String("component", "board.cards"),
		zap.String("action", "delete"),
		zap.String("card_id", id))
	return b.Focus.CardRemoved(ctx, id)
}

// GetCard returns a single card, archived or not.
func (b *Board) GetCard(ctx context.Context, id string) (Card, error) {
	return b.table.GetCard(ctx, id)
}

// ListCards returns cards ordered by lane, sort ascending, then most recently
// updated first.
func (b *Board) ListCards(ctx context.Context, filter ListFilter) ([]Card, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, newError(KindInvalidStatus, string(filter.Status))
	}
	cards, err := b.table.ListCards(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}
	return cards, nil
}

// applyEpicRules enforces the epic invariants against the card's current
// state and rewrites patch so the stored row stays consistent.
func (b *Board) applyEpicRules(ctx context.Context, id string, existing Card, patch *CardPatch) error {
	isEpic := existing.IsEpic
	if patch.IsEpic.Set {
		isEpic = patch.IsEpic.Value
	}

	if isEpic {
		if patch.EpicID.Set && patch.EpicID.Valid {
			return newError(KindEpicCannotHaveEpic, "")
		}
		if existing.EpicID != nil && !patch.EpicID.Set {
			patch.EpicID = Null[string]()
		}
		promoted := patch.IsEpic.Set && patch.IsEpic.Value
		if promoted || patch.Labels.Set {
			labels := existing.Labels
			if patch.Labels.Set {
				labels = patch.Labels.Value
			}
			patch.Labels = Present(WithEpicLabel(labels))
		}
		return nil
	}

	if patch.EpicID.Set && patch.EpicID.Valid {
		if patch.EpicID.Value == id {
			return newError(KindInvalidEpic, "card cannot be its own epic")
		}
		if _, err := b.Epics.Resolve(ctx, patch.EpicID.Value); err != nil {
			return epicError(err, patch.EpicID.Value)
		}
	}
	return nil
}

// buildPatch validates and normalizes every provided field.
func buildPatch(in UpdateCardInput) (CardPatch, error) {
	var p CardPatch

	if in.Title.Set {
		title := strings.TrimSpace(in.Title.Value)
		if !in.Title.Valid || title == "" {
			return CardPatch{}, newError(KindTitleRequired, "")
		}
		p.Title = Present(title)
	}

	if in.Status.Set {
		if !in.Status.Valid {
			return CardPatch{}, newError(KindInvalidStatus, "null")
		}
		s, err := ParseStatus(in.Status.Value)
		if err != nil {
			return CardPatch{}, err
		}
		p.Status = Present(s)
	}

	if in.Description.Set {
		p.Description = Null[string]()
		if d := trimmedPtr(in.Description.Value); in.Description.Valid && d != nil {
			p.Description = Present(*d)
		}
	}

	if in.Labels.Set {
		p.Labels = Null[[]string]()
		if labels := NormalizeLabels(in.Labels.Value); in.Labels.Valid && labels != nil {
			p.Labels = Present(labels)
		}
	}

	if in.DueDate.Set {
		p.DueDate = Null[time.Time]()
		if in.DueDate.Valid && !in.DueDate.Value.IsZero() {
			p.DueDate = Present(truncateMillis(in.DueDate.Value))
		}
	}

	if in.Priority.Set {
		p.Priority = Null[Priority]()
		if in.Priority.Valid && strings.TrimSpace(in.Priority.Value) != "" {
			pr, err := ParsePriority(in.Priority.Value)
			if err != nil {
				return CardPatch{}, err
			}
			p.Priority = Present(pr)
		}
	}

	if in.Archived.Set {
		p.Archived = Present(in.Archived.Valid && in.Archived.Value)
	}

	if in.Sort.Set && in.Sort.Valid {
		p.Sort = Present(in.Sort.Value)
	}

	if in.IsEpic.Set {
		p.IsEpic = Present(in.IsEpic.Valid && in.IsEpic.Value)
	}

	if in.EpicID.Set {
		p.EpicID = Null[string]()
		if epicID := strings.TrimSpace(in.EpicID.Value); in.EpicID.Valid && epicID != "" {
			p.EpicID = Present(epicID)
		}
	}

	return p, nil
}

func (p CardPatch) empty() bool {
	return len(p.fields()) == 0
}

// fields lists the column names touched by the patch, for logging and the
// empty-update check.
func (p CardPatch) fields() []string {
	var out []string
	add := func(set bool, name string) {
		if set {
			out = append(out, name)
		}
	}
	add(p.Title.Set, "title")
	add(p.Status.Set, "status")
	add(p.Description.Set, "description")
	add(p.Labels.Set, "labels")
	add(p.DueDate.Set, "due_date")
	add(p.Priority.Set, "priority")
	add(p.Archived.Set, "archived")
	add(p.Sort.Set, "sort")
	add(p.IsEpic.Set, "is_epic")
	add(p.EpicID.Set, "epic_id")
	return out
}

func epicError(err error, epicID string) error {
	if errors.Is(err, ErrNotAnEpic) {
		return newError(KindInvalidEpic, epicID)
	}
	return err
}

func trimmedPtr(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
