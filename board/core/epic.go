// ABOUTME: EpicResolver validates epic references used by card mutations.
// ABOUTME: A reference is valid only when it names an existing, active epic card.
package core

import (
	"context"
	"errors"
	"fmt"
)

// EpicResolver looks up epic cards. It never mutates.
type EpicResolver struct {
	cards CardTable
}

// NewEpicResolver returns a resolver reading from cards.
func NewEpicResolver(cards CardTable) *EpicResolver {
	return &EpicResolver{cards: cards}
}

// Resolve returns the referenced card when it exists, is an epic, and is not
// archived. Any other outcome returns ErrNotAnEpic; storage failures are
// returned unchanged.
func (r *EpicResolver) Resolve(ctx context.Context, epicID string) (Card, error) {
	card, err := r.cards.GetCard(ctx, epicID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Card{}, ErrNotAnEpic
		}
		return Card{}, fmt.Errorf("resolve epic: %w", err)
	}
	if !card.IsEpic || card.Archived {
		return Card{}, ErrNotAnEpic
	}
	return card, nil
}
