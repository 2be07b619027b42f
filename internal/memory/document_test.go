package memory

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_MinimalSchema(t *testing.T) {
	doc, err := Parse([]byte(`{
		"id": "mem_1234567890_abc",
		"timestamp": 1234567890,
		"type": "checkpoint"
	}`))
	require.NoError(t, err)
	assert.Equal(t, "mem_1234567890_abc", doc.ID)
	assert.Equal(t, int64(1234567890), doc.Timestamp)
	assert.Equal(t, "checkpoint", doc.Type)
	assert.Nil(t, doc.Git)
	assert.Empty(t, doc.Extra)
}

func TestParse_WithGitContext(t *testing.T) {
	doc, err := Parse([]byte(`{
		"id": "mem_1234567890_def",
		"timestamp": 1234567890,
		"type": "checkpoint",
		"git": {"branch": "main", "commit": "abc123", "dirty": false}
	}`))
	require.NoError(t, err)
	require.NotNil(t, doc.Git)
	assert.Equal(t, "main", doc.Git.Branch)
	assert.Equal(t, "abc123", doc.Git.Commit)
	assert.False(t, doc.Git.Dirty)
}

func TestParse_FlexibleSchemaCheckpoint(t *testing.T) {
	doc, err := Parse([]byte(`{
		"id": "mem_1234567890_ghi",
		"timestamp": 1234567890,
		"type": "checkpoint",
		"description": "Fixed auth bug",
		"tags": ["bug", "auth"]
	}`))
	require.NoError(t, err)

	var extra map[string]any
	require.NoError(t, json.Unmarshal(doc.Extra, &extra))
	assert.Equal(t, "Fixed auth bug", extra["description"])
	assert.Len(t, extra["tags"], 2)
}

func TestParse_FlexibleSchemaDecision(t *testing.T) {
	doc, err := Parse([]byte(`{
		"id": "dec_1234567890_jkl",
		"timestamp": 1234567890,
		"type": "decision",
		"question": "Which database?",
		"chosen": "SQLite",
		"alternatives": ["Postgres", "MySQL"],
		"rationale": "Simplicity"
	}`))
	require.NoError(t, err)
	assert.Equal(t, "decision", doc.Type)

	var extra map[string]any
	require.NoError(t, json.Unmarshal(doc.Extra, &extra))
	assert.Equal(t, "Which database?", extra["question"])
	assert.Equal(t, "SQLite", extra["chosen"])
	assert.Len(t, extra["alternatives"], 2)
}

func TestRender_PrettyPrintsWithIndentation(t *testing.T) {
	doc := &Document{
		ID: "mem_test_123", Timestamp: 1234567890, Type: "checkpoint",
		Git: &GitContext{Branch: "main", Commit: "abc123", Dirty: false, FilesChanged: []string{"src/main.go"}},
	}
	extra, err := json.Marshal(map[string]any{"description": "Test memory", "tags": []string{"test"}})
	require.NoError(t, err)
	doc.Extra = extra

	out, err := doc.Render(true)
	require.NoError(t, err)
	assert.Contains(t, string(out), "\n")
	assert.Contains(t, string(out), "  ")
}

func TestRender_RoundTripsThroughParse(t *testing.T) {
	doc := &Document{
		ID: "mem_test_123", Timestamp: 1234567890, Type: "checkpoint",
		Git: &GitContext{Branch: "main", Commit: "abc123", Dirty: false},
	}
	extra, err := json.Marshal(map[string]any{"description": "Test memory", "tags": []string{"test"}})
	require.NoError(t, err)
	doc.Extra = extra

	rendered, err := doc.Render(true)
	require.NoError(t, err)

	reparsed, err := Parse(rendered)
	require.NoError(t, err)
	assert.Equal(t, doc.ID, reparsed.ID)
	assert.Equal(t, doc.Timestamp, reparsed.Timestamp)
	assert.Equal(t, doc.Type, reparsed.Type)
	require.NotNil(t, reparsed.Git)
	assert.Equal(t, *doc.Git, *reparsed.Git)

	var origExtra, gotExtra map[string]any
	require.NoError(t, json.Unmarshal(doc.Extra, &origExtra))
	require.NoError(t, json.Unmarshal(reparsed.Extra, &gotExtra))
	assert.Equal(t, origExtra, gotExtra)
}
