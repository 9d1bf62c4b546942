package core

import "time"

// Role identifies the speaker of a conversation turn.
type Role string

const (
	// RoleUser marks a turn spoken by the caller.
	RoleUser Role = "user"
	// RoleAssistant marks a turn spoken by the AI persona.
	RoleAssistant Role = "assistant"
)

// Turn is one utterance within a call's history. Turns form an ordered,
// append-only sequence per call; the session store caps the sequence at a
// configured maximum by dropping the oldest turns first.
type Turn struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// NewTurn creates a turn stamped with the current UTC time.
func NewTurn(role Role, content string) Turn {
	return Turn{Role: role, Content: content, Timestamp: time.Now().UTC()}
}

// TurnInput is the per-utterance payload delivered by the telephony
// transport. Metadata carries caller attributes (phone number, campaign tag,
// etc.) that are stored on the conversation record when the call begins.
type TurnInput struct {
	CallID       string            `json:"call_id"`
	Utterance    string            `json:"utterance"`
	Interruption bool              `json:"interruption"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}
