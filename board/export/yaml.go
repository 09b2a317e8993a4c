// ABOUTME: Exports the board as a structured YAML snapshot grouped by lane.
// ABOUTME: Uses gopkg.in/yaml.v3 for serialization with deterministic ordering.
package export

import (
	"fmt"
	"time"

	"github.com/2389-research/gridhq/board/core"
	"gopkg.in/yaml.v3"
)

// SnapshotVersion identifies the export document layout.
const SnapshotVersion = "1"

// YamlCard is a serializable YAML representation of a single card.
type YamlCard struct {
	ID          string   `yaml:"id"`
	Title       string   `yaml:"title"`
	Sort        int64    `yaml:"sort"`
	Description string   `yaml:"description,omitempty"`
	Labels      []string `yaml:"labels,omitempty"`
	Priority    string   `yaml:"priority,omitempty"`
	DueDate     string   `yaml:"due_date,omitempty"`
	Epic        bool     `yaml:"epic,omitempty"`
	EpicID      string   `yaml:"epic_id,omitempty"`
	Archived    bool     `yaml:"archived,omitempty"`
	CreatedAt   string   `yaml:"created_at"`
	UpdatedAt   string   `yaml:"updated_at"`
}

// YamlLane is one status column.
type YamlLane struct {
	Name  string     `yaml:"name"`
	Cards []YamlCard `yaml:"cards"`
}

// YamlFocus mirrors the focus record.
type YamlFocus struct {
	Mode      string `yaml:"mode"`
	Message   string `yaml:"message,omitempty"`
	CardID    string `yaml:"card_id,omitempty"`
	UpdatedAt string `yaml:"updated_at,omitempty"`
}

// YamlBoard is the top-level snapshot document.
type YamlBoard struct {
	Version    string     `yaml:"version"`
	ExportedAt string     `yaml:"exported_at"`
	Focus      YamlFocus  `yaml:"focus"`
	Lanes      []YamlLane `yaml:"lanes"`
}

// ExportYAML renders cards and the focus record as YAML. Lanes appear in
// status order and always include all four statuses.
func ExportYAML(cards []core.Card, focus core.FocusRecord, exportedAt time.Time) (string, error) {
	doc := YamlBoard{
		Version:    SnapshotVersion,
		ExportedAt: formatTime(exportedAt),
		Focus: YamlFocus{
			Mode:    string(focus.Mode),
			Message: focus.Message,
		},
	}
	if focus.FocusCardID != nil {
		doc.Focus.CardID = *focus.FocusCardID
	}
	if focus.UpdatedAt != nil {
		doc.Focus.UpdatedAt = formatTime(*focus.UpdatedAt)
	}

	for _, l := range groupByLane(cards) {
		yl := YamlLane{Name: string(l.Status), Cards: make([]YamlCard, 0, len(l.Cards))}
		for _, c := range l.Cards {
			yl.Cards = append(yl.Cards, toYamlCard(c))
		}
		doc.Lanes = append(doc.Lanes, yl)
	}

	data, err := yaml.Marshal(&doc)
	if err != nil {
		return "", fmt.Errorf("yaml marshal: %w", err)
	}
	return string(data), nil
}

func toYamlCard(c core.Card) YamlCard {
	yc := YamlCard{
		ID:        c.ID,
		Title:     c.Title,
		Sort:      c.Sort,
		Labels:    c.Labels,
		Epic:      c.IsEpic,
		Archived:  c.Archived,
		CreatedAt: formatTime(c.CreatedAt),
		UpdatedAt: formatTime(c.UpdatedAt),
	}
	if c.Description != nil {
		yc.Description = *c.Description
	}
	if c.Priority != nil {
		yc.Priority = string(*c.Priority)
	}
	if c.DueDate != nil {
		yc.DueDate = formatTime(*c.DueDate)
	}
	if c.EpicID != nil {
		yc.EpicID = *c.EpicID
	}
	return yc
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
