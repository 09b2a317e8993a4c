// ABOUTME: Card represents a kanban task or epic with status lane, ordering, labels, and epic linkage.
// ABOUTME: Status and Priority are closed enums; Status declaration order drives lane ordering.
package core

import (
	"fmt"
	"strings"
	"time"
)

// Status is the lane a card lives in.
type Status string

const (
	StatusBacklog Status = "backlog"
	StatusDoing   Status = "doing"
	StatusBlocked Status = "blocked"
	StatusDone    Status = "done"
)

// Statuses lists every lane in declared order.
var Statuses = []Status{StatusBacklog, StatusDoing, StatusBlocked, StatusDone}

// Valid reports whether s is one of the declared lanes.
func (s Status) Valid() bool {
	return s.Rank() >= 0
}

// Rank returns the lane's position in declared order, or -1 for unknown values.
func (s Status) Rank() int {
	for i, v := range Statuses {
		if v == s {
			return i
		}
	}
	return -1
}

// ParseStatus validates a raw status string.
func ParseStatus(raw string) (Status, error) {
	s := Status(strings.TrimSpace(raw))
	if !s.Valid() {
		return "", newError(KindInvalidStatus, raw)
	}
	return s, nil
}

// Priority is the optional urgency marker on a card.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Priorities lists every priority from lowest to highest.
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}

// Valid reports whether p is a declared priority.
func (p Priority) Valid() bool {
	for _, v := range Priorities {
		if v == p {
			return true
		}
	}
	return false
}

// ParsePriority validates a raw priority string.
func ParsePriority(raw string) (Priority, error) {
	p := Priority(strings.TrimSpace(raw))
	if !p.Valid() {
		return "", newError(KindInvalidPriority, raw)
	}
	return p, nil
}

// Card is a task or epic on the board.
type Card struct {
	ID          string
	Title       string
	Status      Status
	Sort        int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Description *string
	Labels      []string
	DueDate     *time.Time
	Archived    bool
	Priority    *Priority
	IsEpic      bool
	EpicID      *string
}

// Overdue reports whether the card has a due date strictly before now.
func (c Card) Overdue(now time.Time) bool {
	return c.DueDate != nil && c.DueDate.Before(now)
}

// dueDateLayouts are accepted for string due dates, most specific first.
var dueDateLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02T15:04", "2006-01-02"}

// ParseDueDate parses an ISO-8601 date or timestamp. Values without a zone
// are read as UTC.
func ParseDueDate(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	for _, layout := range dueDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", raw)
}

// CreateCardInput carries the fields accepted when creating a card.
// Zero values mean "not provided".
type CreateCardInput struct {
	Title       string
	Status      string
	Description string
	Labels      []string
	DueDate     *time.Time
	Priority    string
	IsEpic      bool
	EpicID      string
}

// UpdateCardInput is a partial update. Absent fields are left untouched,
// null fields clear the stored value.
type UpdateCardInput struct {
	Title       OptionalField[string]
	Status      OptionalField[string]
	Description OptionalField[string]
	Labels      OptionalField[[]string]
	DueDate     OptionalField[time.Time]
	Priority    OptionalField[string]
	Archived    OptionalField[bool]
	Sort        OptionalField[int64]
	IsEpic      OptionalField[bool]
	EpicID      OptionalField[string]
}

// CardPatch is a validated, normalized update ready to be written in a single
// statement. Only Set fields are written; Set && !Valid writes NULL.
type CardPatch struct {
	Title       OptionalField[string]
	Status      OptionalField[Status]
	Description OptionalField[string]
	Labels      OptionalField[[]string]
	DueDate     OptionalField[time.Time]
	Priority    OptionalField[Priority]
	Archived    OptionalField[bool]
	Sort        OptionalField[int64]
	IsEpic      OptionalField[bool]
	EpicID      OptionalField[string]
	UpdatedAt   time.Time
}

// ListFilter narrows ListCards results.
type ListFilter struct {
	IncludeArchived bool
	EpicsOnly       bool
	EpicID          string
	Status          Status
}
