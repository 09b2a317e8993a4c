// ABOUTME: Identifier helpers: ULIDs for cards, UUIDs for comments and attachments.
// ABOUTME: Centralizes id creation so every caller uses the same entropy source.
package core

import (
	"crypto/rand"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// NewCardID generates a lexically sortable card id.
func NewCardID() string {
	return ulid.MustNew(ulid.Now(), rand.Reader).String()
}

// NewChildID generates an id for comments and attachments.
func NewChildID() string {
	return uuid.NewString()
}
