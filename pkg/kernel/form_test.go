package kernel

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type formBody struct {
	Min         FormNumber       `json:"min"`
	Published   FormBool         `json:"published"`
	Description Optional[string] `json:"description"`
}

func TestFormDecoding(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		min       *float64
		published bool
		descSet   bool
		desc      *string
	}{
		{"absent", `{}`, nil, false, false, nil},
		{"numbers", `{"min": 50000, "published": true, "description": "hi"}`, ptr(50000.0), true, true, ptr("hi")},
		{"strings", `{"min": " 1,20,000 ", "published": "on"}`, ptr(120000.0), true, false, nil},
		{"blank and null", `{"min": "", "published": null, "description": null}`, nil, false, true, nil},
		{"unparsable number string", `{"min": "negotiable", "published": "false"}`, nil, false, false, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got formBody
			require.NoError(t, json.Unmarshal([]byte(tt.body), &got))
			assert.Equal(t, tt.min, got.Min.Value)
			assert.Equal(t, tt.published, bool(got.Published))
			assert.Equal(t, tt.descSet, got.Description.Set)
			assert.Equal(t, tt.desc, got.Description.Value)
		})
	}
}

func TestOptionalHelpers(t *testing.T) {
	s := Some("x")
	assert.True(t, s.Set)
	assert.Equal(t, "x", *s.Value)

	n := Null[float64]()
	assert.True(t, n.Set)
	assert.Nil(t, n.Value)
}

func ptr[T any](v T) *T { return &v }
