package scanner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAxeResult(t *testing.T) {
	raw := []byte(`{
		"violations": [
			{
				"id": "image-alt",
				"help": "Images must have alternate text",
				"description": "Ensures <img> elements have alternate text",
				"impact": "critical",
				"tags": ["wcag2a", "wcag111"],
				"helpUrl": "https://dequeuniversity.com/rules/axe/4.8/image-alt",
				"nodes": [
					{"target": ["img.hero"], "html": "<img class=\"hero\">", "failureSummary": "Fix: add alt"}
				]
			}
		],
		"incomplete": [],
		"passes": [
			{"id": "document-title", "help": "Documents must have a title", "nodes": []}
		],
		"testEngine": {"name": "axe-core", "version": "4.8.2"},
		"testRunner": {"name": "axe"}
	}`)

	result, err := parseAxeResult(raw)
	require.NoError(t, err)

	require.Len(t, result.Violations, 1)
	v := result.Violations[0]
	assert.Equal(t, "image-alt", v.ID)
	assert.Equal(t, "critical", v.Impact)
	assert.Equal(t, []string{"wcag2a", "wcag111"}, v.Tags)
	require.Len(t, v.Nodes, 1)
	assert.Equal(t, []string{"img.hero"}, v.Nodes[0].Target)

	assert.Empty(t, result.Incomplete)
	assert.Len(t, result.Passes, 1)
	assert.Equal(t, "4.8.2", result.TestEngine.Version)
}

func TestParseAxeResult_Errors(t *testing.T) {
	_, err := parseAxeResult(nil)
	assert.Error(t, err)

	_, err = parseAxeResult([]byte("null"))
	assert.Error(t, err)

	_, err = parseAxeResult([]byte("{not json"))
	assert.Error(t, err)
}
