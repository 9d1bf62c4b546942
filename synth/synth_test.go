package synth

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/voicemesh/core"
)

// Interface compliance (compile-time assertions)
var (
	_ core.Generator   = (*MockGenerator)(nil)
	_ core.Synthesizer = (*MockSynthesizer)(nil)
)

func TestMockGenerator_CannedAndFallback(t *testing.T) {
	g := NewMockGenerator()
	g.AddResponse("prompt-a", "reply-a")

	reply, err := g.Generate(context.Background(), "prompt-a")
	require.NoError(t, err)
	assert.Equal(t, "reply-a", reply)

	fallback, err := g.Generate(context.Background(), "other")
	require.NoError(t, err)
	assert.Contains(t, fallback, "other")
	assert.Equal(t, 2, g.Calls)
}

func TestMockGenerator_Failure(t *testing.T) {
	g := NewMockGenerator()
	g.Err = errors.New("quota exceeded")
	_, err := g.Generate(context.Background(), "prompt")
	assert.Error(t, err)
}

func TestMockSynthesizer(t *testing.T) {
	s := &MockSynthesizer{}
	data, err := s.Synthesize(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, []byte("audio:hello"), data)

	s.Err = errors.New("tts down")
	_, err = s.Synthesize(context.Background(), "hello")
	assert.Error(t, err)
}
