// Package synth hosts the external generation and synthesis collaborators.
// The core.Generator and core.Synthesizer contracts live in the core package;
// vendor adapters live in sub-packages (openai, anthropic) so the wiring
// layer picks a provider without the orchestrator knowing which one. The
// mocks below are deterministic in-memory implementations for tests and
// examples.
package synth

import (
	"context"
	"fmt"
	"sync"
)

// MockGenerator is a lightweight in-memory core.Generator useful for tests
// and examples. Register canned replies per prompt; unregistered prompts get
// a deterministic fallback.
type MockGenerator struct {
	mu        sync.Mutex
	responses map[string]string
	// Err, when set, is returned by every Generate call.
	Err error
	// Calls counts Generate invocations (cache-hit assertions in tests).
	Calls int
}

// NewMockGenerator constructs an empty MockGenerator.
func NewMockGenerator() *MockGenerator {
	return &MockGenerator{responses: make(map[string]string)}
}

// AddResponse registers a deterministic canned reply for a prompt.
func (m *MockGenerator) AddResponse(prompt, reply string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[prompt] = reply
}

// Generate implements core.Generator.
func (m *MockGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	if m.Err != nil {
		return "", m.Err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if reply, ok := m.responses[prompt]; ok {
		return reply, nil
	}
	return fmt.Sprintf("Mock reply to: %s", prompt), nil
}

// MockSynthesizer is a deterministic in-memory core.Synthesizer: the audio
// bytes are the input text prefixed with "audio:".
type MockSynthesizer struct {
	// Err, when set, is returned by every Synthesize call.
	Err error
}

// Synthesize implements core.Synthesizer.
func (m *MockSynthesizer) Synthesize(ctx context.Context, text string) ([]byte, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return []byte("audio:" + text), nil
}
