package decompose

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseObject(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		want    string
		wantErr error
	}{
		{name: "bare object", text: "  {\"a\":1}\n", want: `{"a":1}`},
		{name: "fenced with language", text: "Here:\n```json\n{\"a\":{\"b\":2}}\n```\nDone", want: `{"a":{"b":2}}`},
		{name: "fenced without language", text: "```\n{\"a\":1}\n```", want: `{"a":1}`},
		{name: "bare array", text: `[1,2]`, wantErr: errNotObject},
		{name: "no json at all", text: "sorry", wantErr: errNoJSONBlock},
		{name: "broken fenced block", text: "```json\n{\"a\":}\n```", wantErr: errBadBlock},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseObject(tt.text)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}
