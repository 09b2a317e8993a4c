// ABOUTME: OrderingAssigner computes the insertion position for new cards within a lane.
// ABOUTME: Max+1 is read-then-write and not atomic; duplicate sort values are tolerated.
package core

import (
	"context"
	"fmt"
)

// OrderingAssigner hands out sort keys for lanes.
type OrderingAssigner struct {
	cards CardTable
}

// NewOrderingAssigner returns an assigner reading from cards.
func NewOrderingAssigner(cards CardTable) *OrderingAssigner {
	return &OrderingAssigner{cards: cards}
}

// NextSort returns 1 + the largest sort among active cards in the lane, or 1
// when the lane is empty.
func (o *OrderingAssigner) NextSort(ctx context.Context, status Status) (int64, error) {
	if !status.Valid() {
		return 0, newError(KindInvalidStatus, string(status))
	}
	top, err := o.cards.MaxSort(ctx, status)
	if err != nil {
		return 0, fmt.Errorf("next sort: %w", err)
	}
	if top < 0 {
		top = 0
	}
	return top + 1, nil
}
