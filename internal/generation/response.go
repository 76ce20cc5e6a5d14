package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"strconv"
)

const (
	StatusSuccess = "success"
	StatusOK      = "ok"
	StatusError   = "error"
)

// RawResponse is the envelope returned by the generation service. Data is kept
// raw so that key order of the subtask and step mappings survives decoding.
type RawResponse struct {
	Status    string          `json:"status"`
	Message   string          `json:"message,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
	RawOutput string          `json:"raw_output,omitempty"`
}

// Generator is the transport collaborator that asks the service for a breakdown.
type Generator interface {
	Generate(ctx context.Context, modelID, query string) (RawResponse, error)
}

type member struct {
	Key   string
	Value json.RawMessage
}

// decodeObject returns the members of a JSON object in document order. A
// repeated key keeps its first position and takes the last value.
func decodeObject(raw json.RawMessage) ([]member, bool) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	if !expectDelim(dec, '{') {
		return nil, false
	}

	var members []member
	index := make(map[string]int)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, false
		}
		key, ok := tok.(string)
		if !ok {
			return nil, false
		}
		var v json.RawMessage
		if err := dec.Decode(&v); err != nil {
			return nil, false
		}
		if i, dup := index[key]; dup {
			members[i].Value = v
			continue
		}
		index[key] = len(members)
		members = append(members, member{Key: key, Value: v})
	}
	if !expectDelim(dec, '}') {
		return nil, false
	}
	return members, true
}

// decodeArray returns array elements keyed by their index.
func decodeArray(raw json.RawMessage) ([]member, bool) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	if !expectDelim(dec, '[') {
		return nil, false
	}

	var members []member
	for i := 0; dec.More(); i++ {
		var v json.RawMessage
		if err := dec.Decode(&v); err != nil {
			return nil, false
		}
		members = append(members, member{Key: strconv.Itoa(i), Value: v})
	}
	if !expectDelim(dec, ']') {
		return nil, false
	}
	return members, true
}

func expectDelim(dec *json.Decoder, want json.Delim) bool {
	tok, err := dec.Token()
	if err != nil {
		return false
	}
	d, ok := tok.(json.Delim)
	return ok && d == want
}

func lookup(members []member, key string) (json.RawMessage, bool) {
	for _, m := range members {
		if m.Key == key {
			return m.Value, true
		}
	}
	return nil, false
}
