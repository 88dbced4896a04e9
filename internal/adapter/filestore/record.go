package filestore

import (
	"bytes"
	"encoding/json"
	"math"

	"todoapi/internal/core/domain"
)

// maxExactInt bounds numbers to integers a float64 holds exactly.
const maxExactInt = 1 << 53

// decodeRecord reads one stored task field by field. A field that is missing
// or of the wrong type takes its zero value instead of failing the whole
// file; Normalize fills in the remaining defaults. ok is false only when the
// entry is not a JSON object at all.
func decodeRecord(raw json.RawMessage) (domain.Task, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return domain.Task{}, false
	}

	task := domain.Task{
		ID:          stringValue(fields["id"]),
		Title:       stringValue(fields["title"]),
		Description: stringValue(fields["description"]),
		Completed:   boolValue(fields["completed"]),
		Priority:    domain.Priority(stringValue(fields["priority"])),
		Order:       intValue(fields["order"]),
		CreatedAt:   intValue(fields["createdAt"]),
		UpdatedAt:   intValue(fields["updatedAt"]),
	}
	task.Normalize()
	return task, true
}

func stringValue(raw json.RawMessage) string {
	var s string
	if isNull(raw) || json.Unmarshal(raw, &s) != nil {
		return ""
	}
	return s
}

func boolValue(raw json.RawMessage) bool {
	var b bool
	if isNull(raw) || json.Unmarshal(raw, &b) != nil {
		return false
	}
	return b
}

// intValue rounds fractional numbers to the nearest integer; anything else,
// including numbers too large to hold exactly, reads as 0.
func intValue(raw json.RawMessage) int64 {
	var f float64
	if isNull(raw) || json.Unmarshal(raw, &f) != nil {
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || math.Abs(f) > maxExactInt {
		return 0
	}
	return int64(math.Round(f))
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
