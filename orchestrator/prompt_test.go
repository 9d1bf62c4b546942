package orchestrator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/voicemesh/core"
)

func TestTrimHistory(t *testing.T) {
	turns := []core.Turn{
		{Role: core.RoleUser, Content: "1"},
		{Role: core.RoleAssistant, Content: "2"},
		{Role: core.RoleUser, Content: "3"},
		{Role: core.RoleAssistant, Content: "4"},
		{Role: core.RoleUser, Content: "5"},
	}
	trimmed := trimHistory(turns)
	require.Len(t, trimmed, historyWindow)
	assert.Equal(t, "2", trimmed[0].Content)
	assert.Equal(t, "5", trimmed[3].Content)

	short := []core.Turn{{Role: core.RoleUser, Content: "only"}}
	assert.Len(t, trimHistory(short), 1)
}

func TestSerializeHistory(t *testing.T) {
	out := serializeHistory([]core.Turn{
		{Role: core.RoleUser, Content: "hi"},
		{Role: core.RoleAssistant, Content: "hello"},
	})
	assert.Equal(t, "user: hi\nassistant: hello", out)
	assert.Empty(t, serializeHistory(nil))
}

func TestReplyCacheKey(t *testing.T) {
	a := replyCacheKey("query", "history")
	assert.Equal(t, a, replyCacheKey("query", "history"))
	assert.NotEqual(t, a, replyCacheKey("query", "other history"))
	assert.NotEqual(t, a, replyCacheKey("other query", "history"))
	// the separator keeps (q, h) pairs unambiguous
	assert.NotEqual(t, replyCacheKey("ab", "c"), replyCacheKey("a", "bc"))
}

func TestBuildPrompt(t *testing.T) {
	prompt, err := buildPrompt(
		"You are {{default \"Ava\" .name}}.",
		"[From doc.txt]\nPython basics",
		"user: hi",
		"tell me more",
		map[string]string{"name": "Nova"},
	)
	require.NoError(t, err)
	assert.Contains(t, prompt, "You are Nova.")
	assert.Contains(t, prompt, "Relevant background:\n[From doc.txt]")
	assert.Contains(t, prompt, "Conversation so far:\nuser: hi")
	assert.Contains(t, prompt, "Caller: tell me more")
}

func TestBuildPrompt_OmitsEmptySections(t *testing.T) {
	prompt, err := buildPrompt("persona", "", "", "hello", nil)
	require.NoError(t, err)
	assert.NotContains(t, prompt, "Relevant background")
	assert.NotContains(t, prompt, "Conversation so far")
}

func TestClassifyObjection(t *testing.T) {
	tests := []struct {
		utterance string
		category  string
		matched   bool
	}{
		{"that's really expensive", "price", true},
		{"I'm too busy these days", "time", true},
		{"I'm a total beginner", "experience", true},
		{"sounds great, tell me more", "", false},
	}
	for _, tt := range tests {
		rule, ok := classifyObjection(tt.utterance)
		assert.Equal(t, tt.matched, ok, tt.utterance)
		if tt.matched {
			assert.Equal(t, tt.category, rule.category)
			assert.NotEmpty(t, rule.deflection)
		}
	}
}
