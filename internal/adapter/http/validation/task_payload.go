package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"todoapi/internal/core/domain"
)

var (
	ErrInvalidJSON  = errors.New("invalid json body")
	ErrTitleMissing = fmt.Errorf("%w: title is required", domain.ErrInvalidTaskPayload)
)

// maxExactOrder bounds orders to integers a float64 holds exactly.
const maxExactOrder = 1 << 53

// DecodeObject parses a JSON body into its raw fields. An empty body and any
// valid non-object JSON both yield an empty field set.
func DecodeObject(body []byte) (map[string]json.RawMessage, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return map[string]json.RawMessage{}, nil
	}
	if !json.Valid(body) {
		return nil, ErrInvalidJSON
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil || raw == nil {
		return map[string]json.RawMessage{}, nil
	}
	return raw, nil
}

// BuildCreateTaskInput requires a non-blank string title. description and
// priority fall back to "" and medium when absent or of the wrong shape.
func BuildCreateTaskInput(raw map[string]json.RawMessage) (domain.NewTaskInput, error) {
	title, ok := stringField(raw, "title")
	if !ok {
		return domain.NewTaskInput{}, ErrTitleMissing
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return domain.NewTaskInput{}, ErrTitleMissing
	}

	description, _ := stringField(raw, "description")

	priority := domain.PriorityMedium
	if value, ok := priorityField(raw); ok {
		priority = value
	}

	return domain.NewTaskInput{
		Title:       title,
		Description: description,
		Priority:    priority,
	}, nil
}

// BuildTaskPatch keeps the recognised, well-typed fields and silently drops
// everything else.
func BuildTaskPatch(raw map[string]json.RawMessage) domain.TaskPatch {
	var patch domain.TaskPatch

	if value, ok := stringField(raw, "title"); ok {
		patch.Title = &value
	}
	if value, ok := stringField(raw, "description"); ok {
		patch.Description = &value
	}
	if value, ok := boolField(raw, "completed"); ok {
		patch.Completed = &value
	}
	if value, ok := priorityField(raw); ok {
		patch.Priority = &value
	}
	if value, ok := orderValue(raw["order"]); ok {
		patch.Order = &value
	}

	return patch
}

// BuildReorderPlan accepts a JSON array of {id, order}. A body that is not an
// array is an empty plan; malformed entries are skipped.
func BuildReorderPlan(body []byte) ([]domain.ReorderItem, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, nil
	}
	if !json.Valid(body) {
		return nil, ErrInvalidJSON
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, nil
	}

	plan := make([]domain.ReorderItem, 0, len(entries))
	for _, entry := range entries {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(entry, &fields); err != nil || fields == nil {
			continue
		}

		id, ok := stringField(fields, "id")
		if !ok {
			continue
		}
		order, ok := orderValue(fields["order"])
		if !ok {
			continue
		}
		plan = append(plan, domain.ReorderItem{ID: id, Order: order})
	}
	return plan, nil
}

func stringField(raw map[string]json.RawMessage, field string) (string, bool) {
	value, ok := raw[field]
	if !ok || isJSONNull(value) {
		return "", false
	}

	var s string
	if err := json.Unmarshal(value, &s); err != nil {
		return "", false
	}
	return s, true
}

func boolField(raw map[string]json.RawMessage, field string) (bool, bool) {
	value, ok := raw[field]
	if !ok || isJSONNull(value) {
		return false, false
	}

	var b bool
	if err := json.Unmarshal(value, &b); err != nil {
		return false, false
	}
	return b, true
}

func priorityField(raw map[string]json.RawMessage) (domain.Priority, bool) {
	value, ok := stringField(raw, "priority")
	if !ok {
		return "", false
	}
	priority := domain.Priority(value)
	if !priority.Valid() {
		return "", false
	}
	return priority, true
}

// orderValue accepts any finite integral JSON number.
func orderValue(value json.RawMessage) (int64, bool) {
	if value == nil || isJSONNull(value) {
		return 0, false
	}

	var f float64
	if err := json.Unmarshal(value, &f); err != nil {
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) || math.Abs(f) > maxExactOrder {
		return 0, false
	}
	return int64(f), true
}

func isJSONNull(value json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(value), []byte("null"))
}
