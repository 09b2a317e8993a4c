// ABOUTME: Tests for status and priority parsing, overdue checks, and due date parsing.
package core_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389-research/gridhq/board/core"
)

func TestParseDueDate(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2026-03-01", time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)},
		{" 2026-03-01T09:30 ", time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)},
		{"2026-03-01T09:30:15", time.Date(2026, 3, 1, 9, 30, 15, 0, time.UTC)},
		{"2026-03-01T09:30:15+02:00", time.Date(2026, 3, 1, 7, 30, 15, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := core.ParseDueDate(tt.in)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s want %s", got, tt.want)
			assert.Equal(t, time.UTC, got.Location())
		})
	}

	_, err := core.ParseDueDate("next tuesday")
	assert.Error(t, err)
}

func TestStatusRank(t *testing.T) {
	assert.Equal(t, 0, core.StatusBacklog.Rank())
	assert.Equal(t, 3, core.StatusDone.Rank())
	assert.Equal(t, -1, core.Status("shipped").Rank())
	assert.False(t, core.Status("").Valid())
}

func TestCardOverdue(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	past, future := now.Add(-time.Minute), now.Add(time.Minute)

	assert.False(t, core.Card{}.Overdue(now))
	assert.True(t, core.Card{DueDate: &past}.Overdue(now))
	assert.False(t, core.Card{DueDate: &future}.Overdue(now))
	assert.False(t, core.Card{DueDate: &now}.Overdue(now))
}
