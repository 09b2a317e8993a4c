// ABOUTME: Board summary: counts of active cards by lane, priority, due state, and epic linkage.
// ABOUTME: Orphan children are cards whose epic is missing, archived, or no longer an epic.
package core

import (
	"context"
	"time"
)

// EpicSummary counts epics and how children reference them.
type EpicSummary struct {
	Total          int
	WithChildren   int
	OrphanChildren int
}

// Summary aggregates the active board.
type Summary struct {
	Total      int
	ByStatus   map[Status]int
	ByPriority map[Priority]int
	Overdue    int
	Epics      EpicSummary
}

// Summarize computes a Summary over cards, skipping archived ones. A child is
// an orphan when its epic is not among the active epics.
func Summarize(cards []Card, now time.Time) Summary {
	s := Summary{
		ByStatus:   make(map[Status]int, len(Statuses)),
		ByPriority: make(map[Priority]int, len(Priorities)),
	}
	for _, st := range Statuses {
		s.ByStatus[st] = 0
	}
	for _, p := range Priorities {
		s.ByPriority[p] = 0
	}

	epics := make(map[string]bool)
	for _, c := range cards {
		if c.IsEpic && !c.Archived {
			epics[c.ID] = true
		}
	}
	children := make(map[string]int)

	for _, c := range cards {
		if c.Archived {
			continue
		}
		s.Total++
		s.ByStatus[c.Status]++
		if c.Priority != nil {
			s.ByPriority[*c.Priority]++
		}
		if c.Overdue(now) {
			s.Overdue++
		}
		if c.EpicID != nil {
			children[*c.EpicID]++
			if !epics[*c.EpicID] {
				s.Epics.OrphanChildren++
			}
		}
	}

	s.Epics.Total = len(epics)
	for id := range epics {
		if children[id] > 0 {
			s.Epics.WithChildren++
		}
	}
	return s
}

// Summary loads the active board and summarizes it.
func (b *Board) Summary(ctx context.Context) (Summary, error) {
	cards, err := b.ListCards(ctx, ListFilter{})
	if err != nil {
		return Summary{}, err
	}
	return Summarize(cards, b.now()), nil
}
