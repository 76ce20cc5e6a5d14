package generation

import (
	"bytes"
	"encoding/json"
)

type EntryKind int

const (
	Accepted EntryKind = iota + 1
	Skipped
)

type SkipReason string

const (
	ReasonNotObject       SkipReason = "entry is not an object"
	ReasonNoTitle         SkipReason = "missing title"
	ReasonTitleNotText    SkipReason = "title is not a string"
	ReasonNoSteps         SkipReason = "missing steps"
	ReasonStepsNotMapping SkipReason = "steps is not a mapping"
)

// Entry is the parse result of one subtask record: either Accepted with a
// title and ordered step texts, or Skipped with a reason.
type Entry struct {
	Key    string
	Kind   EntryKind
	Title  string
	Steps  []string
	Reason SkipReason
}

func skip(key string, reason SkipReason) Entry {
	return Entry{Key: key, Kind: Skipped, Reason: reason}
}

// ParseEntry classifies a single subtask record. All per-entry skip policy
// lives here.
func ParseEntry(key string, raw json.RawMessage) Entry {
	fields, ok := decodeObject(raw)
	if !ok {
		return skip(key, ReasonNotObject)
	}

	rawTitle, ok := lookup(fields, "title")
	if !ok || falsy(rawTitle) {
		return skip(key, ReasonNoTitle)
	}
	var title string
	if err := json.Unmarshal(rawTitle, &title); err != nil {
		return skip(key, ReasonTitleNotText)
	}

	rawSteps, ok := lookup(fields, "steps")
	if !ok || falsy(rawSteps) {
		return skip(key, ReasonNoSteps)
	}
	steps, ok := decodeObject(rawSteps)
	if !ok {
		if steps, ok = decodeArray(rawSteps); !ok {
			return skip(key, ReasonStepsNotMapping)
		}
	}

	texts := make([]string, 0, len(steps))
	for _, s := range steps {
		texts = append(texts, stepText(s.Value))
	}
	return Entry{Key: key, Kind: Accepted, Title: title, Steps: texts}
}

// stepText renders a step value as text; non-string values keep their JSON form.
func stepText(v json.RawMessage) string {
	var decoded any
	if err := json.Unmarshal(v, &decoded); err == nil {
		if s, ok := decoded.(string); ok {
			return s
		}
	}
	return string(bytes.TrimSpace(v))
}

func falsy(raw json.RawMessage) bool {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return true
	}
	switch x := v.(type) {
	case nil:
		return true
	case bool:
		return !x
	case float64:
		return x == 0
	case string:
		return x == ""
	}
	return false
}
