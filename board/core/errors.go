// ABOUTME: Error taxonomy for board operations: every caller-facing failure carries a Kind.
// ABOUTME: Sentinel values match any error of the same kind through errors.Is.
package core

import (
	"errors"
	"fmt"
)

// Kind classifies a caller-input or caller-authorization failure.
type Kind string

const (
	KindTitleRequired       Kind = "title_required"
	KindInvalidStatus       Kind = "invalid_status"
	KindInvalidPriority     Kind = "invalid_priority"
	KindEpicCannotHaveEpic  Kind = "epic_cannot_have_epic"
	KindInvalidEpic         Kind = "invalid_epic"
	KindNoUpdates           Kind = "no_updates"
	KindNotFound            Kind = "not_found"
	KindUnauthorized        Kind = "unauthorized"
	KindTextRequired        Kind = "text_required"
	KindInvalidMode         Kind = "invalid_mode"
	KindInvalidMimeType     Kind = "invalid_mime_type"
	KindEmptyFile           Kind = "empty_file"
	KindFileTooLarge        Kind = "file_too_large"
	KindAttachmentsDisabled Kind = "attachments_disabled"
)

// Error is a structured board failure. Detail is optional free text.
type Error struct {
	Kind   Kind
	Detail string
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

// Is matches any *Error with the same Kind, so callers can compare against
// the sentinels below regardless of Detail.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

func newError(kind Kind, detail string) *Error {
	return &Error{Kind: kind, Detail: detail}
}

var (
	ErrTitleRequired       = &Error{Kind: KindTitleRequired}
	ErrInvalidStatus       = &Error{Kind: KindInvalidStatus}
	ErrInvalidPriority     = &Error{Kind: KindInvalidPriority}
	ErrEpicCannotHaveEpic  = &Error{Kind: KindEpicCannotHaveEpic}
	ErrInvalidEpic         = &Error{Kind: KindInvalidEpic}
	ErrNoUpdates           = &Error{Kind: KindNoUpdates}
	ErrNotFound            = &Error{Kind: KindNotFound}
	ErrUnauthorized        = &Error{Kind: KindUnauthorized}
	ErrTextRequired        = &Error{Kind: KindTextRequired}
	ErrInvalidMode         = &Error{Kind: KindInvalidMode}
	ErrInvalidMimeType     = &Error{Kind: KindInvalidMimeType}
	ErrEmptyFile           = &Error{Kind: KindEmptyFile}
	ErrFileTooLarge        = &Error{Kind: KindFileTooLarge}
	ErrAttachmentsDisabled = &Error{Kind: KindAttachmentsDisabled}
)

// ErrNotAnEpic is returned by the epic resolver when the referenced card is
// missing, archived, or not flagged as an epic. The card store maps it to
// KindInvalidEpic.
var ErrNotAnEpic = errors.New("not a valid epic")

// NotFoundError builds a not_found error naming the missing entity.
func NotFoundError(entity, id string) *Error {
	return newError(KindNotFound, fmt.Sprintf("%s %s", entity, id))
}

// KindOf extracts the Kind of err, or "" when err is not a board error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
