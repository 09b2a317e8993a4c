// ABOUTME: Loose JSON decoding for card and focus bodies, mirroring what browser and agent clients send.
// ABOUTME: Produces OptionalField patches: absent keys stay absent, explicit null becomes Null.
package web

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/2389-research/gridhq/board/core"
)

// maxJSONBody caps card, comment, and focus request bodies.
const maxJSONBody = 1 << 20

// decodeError is a malformed field value; it renders as invalid_body.
type decodeError struct {
	field string
	msg   string
}

func (e *decodeError) Error() string {
	return fmt.Sprintf("%s: %s", e.field, e.msg)
}

// readObject decodes body into its top-level fields. An unreadable or
// non-object body decodes as an empty object so validation reports the
// missing fields instead.
func readObject(body io.Reader) map[string]json.RawMessage {
	fields := map[string]json.RawMessage{}
	data, err := io.ReadAll(io.LimitReader(body, maxJSONBody))
	if err != nil || len(bytes.TrimSpace(data)) == 0 {
		return fields
	}
	if err := json.Unmarshal(data, &fields); err != nil {
		return map[string]json.RawMessage{}
	}
	return fields
}

func isNull(raw json.RawMessage) bool {
	return string(bytes.TrimSpace(raw)) == "null"
}

// looseString accepts strings, numbers, and booleans.
func looseString(field string, raw json.RawMessage) (string, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return "", &decodeError{field, "invalid JSON"}
	}
	switch t := v.(type) {
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), nil
	case bool:
		return strconv.FormatBool(t), nil
	default:
		return "", &decodeError{field, "must be a string"}
	}
}

// looseBool treats JSON truthiness the way the web client does.
func looseBool(raw json.RawMessage) bool {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return false
	}
	switch t := v.(type) {
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		return t != "" && t != "false" && t != "0"
	default:
		return v != nil
	}
}

func decodeLabels(raw json.RawMessage) ([]string, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		// Non-array values clear the labels.
		return nil, nil
	}
	out := make([]string, 0, len(items))
	for i, item := range items {
		s, err := looseString(fmt.Sprintf("labels[%d]", i), item)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// decodeDueDate accepts epoch milliseconds or an ISO-8601 string. ok is
// false for empty values, which clear the date.
func decodeDueDate(raw json.RawMessage) (due time.Time, ok bool, err error) {
	var ms float64
	if json.Unmarshal(raw, &ms) == nil {
		if ms == 0 {
			return time.Time{}, false, nil
		}
		if math.IsNaN(ms) || math.Abs(ms) >= math.MaxInt64 {
			return time.Time{}, false, &decodeError{"dueDate", "milliseconds out of range"}
		}
		return time.UnixMilli(int64(ms)).UTC(), true, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return time.Time{}, false, &decodeError{"dueDate", "must be milliseconds or a date string"}
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false, nil
	}
	t, perr := core.ParseDueDate(s)
	if perr != nil {
		return time.Time{}, false, &decodeError{"dueDate", fmt.Sprintf("unrecognized date %q", s)}
	}
	return t, true, nil
}

// decodeSort returns ok=false for values that are not numeric; those are
// ignored rather than rejected.
func decodeSort(raw json.RawMessage) (int64, bool) {
	var f float64
	if json.Unmarshal(raw, &f) == nil {
		return clampSort(f)
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return clampSort(f)
		}
	}
	return 0, false
}

func clampSort(f float64) (int64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return int64(f), true
}

func optionalString(fields map[string]json.RawMessage, key string) (core.OptionalField[string], error) {
	raw, ok := fields[key]
	if !ok {
		return core.Absent[string](), nil
	}
	if isNull(raw) {
		return core.Null[string](), nil
	}
	s, err := looseString(key, raw)
	if err != nil {
		return core.OptionalField[string]{}, err
	}
	return core.Present(s), nil
}

func optionalBool(fields map[string]json.RawMessage, key string) core.OptionalField[bool] {
	raw, ok := fields[key]
	if !ok {
		return core.Absent[bool]()
	}
	if isNull(raw) {
		return core.Null[bool]()
	}
	return core.Present(looseBool(raw))
}

// decodeCardPatch builds an UpdateCardInput from a PATCH body.
func decodeCardPatch(fields map[string]json.RawMessage) (core.UpdateCardInput, error) {
	var (
		in  core.UpdateCardInput
		err error
	)
	for _, f := range []struct {
		key string
		dst *core.OptionalField[string]
	}{
		{"title", &in.Title},
		{"status", &in.Status},
		{"description", &in.Description},
		{"priority", &in.Priority},
		{"epicId", &in.EpicID},
	} {
		if *f.dst, err = optionalString(fields, f.key); err != nil {
			return core.UpdateCardInput{}, err
		}
	}

	if raw, ok := fields["labels"]; ok {
		in.Labels = core.Null[[]string]()
		if !isNull(raw) {
			labels, err := decodeLabels(raw)
			if err != nil {
				return core.UpdateCardInput{}, err
			}
			if labels != nil {
				in.Labels = core.Present(labels)
			}
		}
	}

	if raw, ok := fields["dueDate"]; ok {
		in.DueDate = core.Null[time.Time]()
		if !isNull(raw) {
			due, set, err := decodeDueDate(raw)
			if err != nil {
				return core.UpdateCardInput{}, err
			}
			if set {
				in.DueDate = core.Present(due)
			}
		}
	}

	if raw, ok := fields["sort"]; ok && !isNull(raw) {
		if sort, ok := decodeSort(raw); ok {
			in.Sort = core.Present(sort)
		}
	}

	in.Archived = optionalBool(fields, "archived")
	in.IsEpic = optionalBool(fields, "isEpic")
	return in, nil
}

// decodeCreateCard builds a CreateCardInput from a POST body.
func decodeCreateCard(fields map[string]json.RawMessage) (core.CreateCardInput, error) {
	var in core.CreateCardInput
	for _, f := range []struct {
		key string
		dst *string
	}{
		{"title", &in.Title},
		{"status", &in.Status},
		{"description", &in.Description},
		{"priority", &in.Priority},
		{"epicId", &in.EpicID},
	} {
		v, err := optionalString(fields, f.key)
		if err != nil {
			return core.CreateCardInput{}, err
		}
		*f.dst = v.Value
	}

	if raw, ok := fields["labels"]; ok && !isNull(raw) {
		labels, err := decodeLabels(raw)
		if err != nil {
			return core.CreateCardInput{}, err
		}
		in.Labels = labels
	}
	if raw, ok := fields["dueDate"]; ok && !isNull(raw) {
		due, set, err := decodeDueDate(raw)
		if err != nil {
			return core.CreateCardInput{}, err
		}
		if set {
			in.DueDate = &due
		}
	}
	if raw, ok := fields["isEpic"]; ok {
		in.IsEpic = looseBool(raw)
	}
	return in, nil
}

// decodeFocus builds a direct focus write. Absent keys are left alone.
func decodeFocus(fields map[string]json.RawMessage) (core.FocusInput, error) {
	var (
		in  core.FocusInput
		err error
	)
	if in.Message, err = optionalString(fields, "message"); err != nil {
		return core.FocusInput{}, err
	}
	if in.Mode, err = optionalString(fields, "mode"); err != nil {
		return core.FocusInput{}, err
	}
	if in.FocusCardID, err = optionalString(fields, "focusCardId"); err != nil {
		return core.FocusInput{}, err
	}
	return in, nil
}
