package voicemesh

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/voicemesh/core"
	"github.com/hupe1980/voicemesh/synth"
)

func TestNewDefaultsAreUsable(t *testing.T) {
	m := New()

	require.NoError(t, m.LoadKnowledge(context.Background()))
	assert.Nil(t, m.Index())

	d := m.StartCall("call-1", nil)
	assert.Equal(t, core.DirectiveSpeak, d.Kind)
	assert.NotEmpty(t, d.Text)

	// No generator configured: the mediator still answers, degraded.
	d = m.HandleTurn(context.Background(), core.TurnInput{
		CallID:    "call-1",
		Utterance: "tell me about pricing options",
	})
	assert.Equal(t, core.DirectiveSpeak, d.Kind)
	assert.NotEmpty(t, d.Text)

	require.NoError(t, m.EndCall("call-1"))
}

func TestNewWithKnowledgeAndGenerator(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, "courses.txt"),
		[]byte("The diving course runs every weekend and includes equipment rental."),
		0o644,
	))

	m := New(func(o *Options) {
		o.KnowledgeDir = dir
		o.Generator = synth.NewMockGenerator()
		o.Greeting = "Hi, this is Nova."
	})

	require.NoError(t, m.LoadKnowledge(context.Background()))
	require.NotNil(t, m.Index())
	assert.Positive(t, m.Index().Len())

	d := m.StartCall("call-1", map[string]string{"name": "Alex"})
	assert.Equal(t, "Hi, this is Nova.", d.Text)

	d = m.HandleTurn(context.Background(), core.TurnInput{
		CallID:    "call-1",
		Utterance: "what does the diving course include",
	})
	assert.Equal(t, core.DirectiveSpeak, d.Kind)
	assert.NotEmpty(t, d.Text)
}
