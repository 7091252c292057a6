package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseJSONResponse(t *testing.T) {
	type payload struct {
		Summary string   `json:"summary"`
		Items   []string `json:"items"`
	}

	tests := []struct {
		name     string
		response string
		want     payload
	}{
		{
			name:     "bare object",
			response: `{"summary": "ok", "items": ["a"]}`,
			want:     payload{Summary: "ok", Items: []string{"a"}},
		},
		{
			name:     "fenced with language tag",
			response: "```json\n{\"summary\": \"ok\", \"items\": [\"a\", \"b\"]}\n```",
			want:     payload{Summary: "ok", Items: []string{"a", "b"}},
		},
		{
			name:     "fenced without language tag",
			response: "```\n{\"summary\": \"ok\"}\n```",
			want:     payload{Summary: "ok"},
		},
		{
			name:     "object embedded in prose",
			response: "Here is the analysis you asked for:\n{\"summary\": \"ok\"}\nLet me know if you need more.",
			want:     payload{Summary: "ok"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := parseJSONResponse[payload](tc.response)
			require.NoError(t, err)
			assert.Equal(t, tc.want, *got)
		})
	}
}

func TestParseJSONResponse_Array(t *testing.T) {
	got, err := parseJSONResponse[[]string]("```json\n[\"x\", \"y\"]\n```")
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y"}, *got)
}

func TestParseJSONResponse_Invalid(t *testing.T) {
	type payload struct{}

	_, err := parseJSONResponse[payload]("the model refused to answer")
	assert.Error(t, err)

	_, err = parseJSONResponse[payload]("{broken json")
	assert.Error(t, err)
}

func TestTruncateString(t *testing.T) {
	assert.Equal(t, "abc", truncateString("abc", 10))
	assert.Equal(t, "ab...", truncateString("abcdef", 2))
	assert.Equal(t, "", truncateString("abc", 0))
}
