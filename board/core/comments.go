// ABOUTME: Comment is an append-only note on a card, optionally replying to another comment.
// ABOUTME: Comments are listed oldest first.
package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Comment is a note attached to a card.
type Comment struct {
	ID        string
	CardID    string
	ParentID  *string
	Author    *string
	Text      string
	CreatedAt time.Time
}

// AddComment appends a comment to card cardID. author may be empty for
// anonymous principals.
func (b *Board) AddComment(ctx context.Context, author, cardID, text, parentID string) (Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Comment{}, newError(KindTextRequired, "")
	}
	if _, err := b.table.GetCard(ctx, cardID); err != nil {
		return Comment{}, err
	}

	c := Comment{
		ID:        NewChildID(),
		CardID:    cardID,
		ParentID:  trimmedPtr(parentID),
		Author:    trimmedPtr(author),
		Text:      text,
		CreatedAt: b.stamp(),
	}
	if err := b.table.InsertComment(ctx, c); err != nil {
		return Comment{}, fmt.Errorf("insert comment: %w", err)
	}
	b.logger.Info("comment added",
		zap.String("component", "board.comments"),
		zap.String("action", "create"),
		zap.String("card_id", cardID),
		zap.String("comment_id", c.ID))
	return c, nil
}

// ListComments returns the comments on cardID ordered by creation time.
func (b *Board) ListComments(ctx context.Context, cardID string) ([]Comment, error) {
	comments, err := b.table.ListComments(ctx, cardID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return comments, nil
}
