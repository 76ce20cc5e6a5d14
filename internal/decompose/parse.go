package decompose

import (
	"bytes"
	"encoding/json"
	"errors"
	"regexp"
	"strings"
)

var (
	errNotObject   = errors.New("parsed object is not a dictionary")
	errNoJSONBlock = errors.New("no JSON block found in response")
	errBadBlock    = errors.New("extracted block is not valid JSON")
)

var fencedObject = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*\\})\\s*```")

// ParseObject extracts a JSON object from model output, falling back to the
// first fenced code block when the text is not bare JSON.
func ParseObject(text string) (json.RawMessage, error) {
	trimmed := strings.TrimSpace(text)
	if json.Valid([]byte(trimmed)) {
		if !isObject(trimmed) {
			return nil, errNotObject
		}
		return json.RawMessage(trimmed), nil
	}

	m := fencedObject.FindStringSubmatch(text)
	if m == nil {
		return nil, errNoJSONBlock
	}
	block := m[1]
	if !json.Valid([]byte(block)) {
		return nil, errBadBlock
	}
	return json.RawMessage(block), nil
}

func isObject(s string) bool {
	return bytes.HasPrefix(bytes.TrimSpace([]byte(s)), []byte("{"))
}
