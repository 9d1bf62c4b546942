package orchestrator

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/hupe1980/voicemesh/core"
	"github.com/hupe1980/voicemesh/internal/util"
)

// historyWindow is how many of the most recent turns are forwarded to the
// generation collaborator, bounding prompt size.
const historyWindow = 4

// defaultPersona is used when no persona template is configured.
const defaultPersona = "You are {{default \"Ava\" .Name}}, a friendly phone advisor. Keep replies short, natural and suitable for speech."

// trimHistory returns the most recent historyWindow turns.
func trimHistory(turns []core.Turn) []core.Turn {
	if len(turns) > historyWindow {
		return turns[len(turns)-historyWindow:]
	}
	return turns
}

// serializeHistory renders turns one per line as "role: content". The result
// both feeds the prompt and keys the reply cache, so it must be deterministic.
func serializeHistory(turns []core.Turn) string {
	var b strings.Builder
	for i, turn := range turns {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(string(turn.Role))
		b.WriteString(": ")
		b.WriteString(turn.Content)
	}
	return b.String()
}

// replyCacheKey keys the generated-reply cache by the exact (query,
// serialized-history) pair so identical repeated turns short-circuit
// generation.
func replyCacheKey(utterance, history string) string {
	sum := sha256.Sum256([]byte(utterance + "\x00" + history))
	return "voicemesh:reply:" + hex.EncodeToString(sum[:])
}

// buildPrompt assembles the generation input from the persona template, the
// knowledge context block, the trimmed history and the utterance.
func buildPrompt(persona, contextBlock, history, utterance string, metadata map[string]string) (string, error) {
	data := make(map[string]any, len(metadata))
	for k, v := range metadata {
		data[k] = v
	}
	rendered, err := util.RenderTemplate(persona, data)
	if err != nil {
		return "", fmt.Errorf("render persona: %w", err)
	}

	var b strings.Builder
	b.WriteString(rendered)
	b.WriteString("\n")
	if contextBlock != "" {
		b.WriteString("\nRelevant background:\n")
		b.WriteString(contextBlock)
		b.WriteString("\n")
	}
	if history != "" {
		b.WriteString("\nConversation so far:\n")
		b.WriteString(history)
		b.WriteString("\n")
	}
	b.WriteString("\nCaller: ")
	b.WriteString(utterance)
	b.WriteString("\nReply:")
	return b.String(), nil
}
