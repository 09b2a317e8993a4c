// ABOUTME: Shared lane grouping for every exporter.
// ABOUTME: Lanes always appear in status order; cards within a lane follow board list order.
package export

import (
	"sort"

	"github.com/2389-research/gridhq/board/core"
)

// lane is one status column with its cards in board order.
type lane struct {
	Status core.Status
	Cards  []core.Card
}

// groupByLane buckets cards by status. Every declared status gets a lane,
// even when empty; cards with an unknown status are dropped.
func groupByLane(cards []core.Card) []lane {
	byStatus := make(map[core.Status][]core.Card, len(core.Statuses))
	for _, c := range cards {
		if c.Status.Valid() {
			byStatus[c.Status] = append(byStatus[c.Status], c)
		}
	}

	lanes := make([]lane, 0, len(core.Statuses))
	for _, s := range core.Statuses {
		cs := byStatus[s]
		sort.SliceStable(cs, func(i, j int) bool {
			if cs[i].Sort != cs[j].Sort {
				return cs[i].Sort < cs[j].Sort
			}
			if !cs[i].UpdatedAt.Equal(cs[j].UpdatedAt) {
				return cs[i].UpdatedAt.After(cs[j].UpdatedAt)
			}
			return cs[i].ID < cs[j].ID
		})
		lanes = append(lanes, lane{Status: s, Cards: cs})
	}
	return lanes
}

// laneTitle is the human heading for a status.
func laneTitle(s core.Status) string {
	switch s {
	case core.StatusBacklog:
		return "Backlog"
	case core.StatusDoing:
		return "Doing"
	case core.StatusBlocked:
		return "Blocked"
	case core.StatusDone:
		return "Done"
	default:
		return string(s)
	}
}
