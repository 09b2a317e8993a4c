// ABOUTME: Label normalization for cards: trimmed, non-empty, insertion ordered, never an empty slice.
// ABOUTME: Epics carry a synthetic "epic" label, matched case-insensitively.
package core

import "strings"

// EpicLabel is added to every card promoted to an epic.
const EpicLabel = "epic"

// NormalizeLabels trims every label and drops blanks. Order and case-variant
// duplicates are preserved. An empty result is returned as nil.
func NormalizeLabels(in []string) []string {
	var out []string
	for _, l := range in {
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		out = append(out, l)
	}
	return out
}

// WithEpicLabel appends EpicLabel unless a label equal to it ignoring case is
// already present.
func WithEpicLabel(labels []string) []string {
	for _, l := range labels {
		if strings.EqualFold(l, EpicLabel) {
			return labels
		}
	}
	out := make([]string, 0, len(labels)+1)
	out = append(out, labels...)
	return append(out, EpicLabel)
}
