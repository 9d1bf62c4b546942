package core

// CallState tracks where a call sits in the conversational loop:
//
//	greeting → listening → processing → speaking → (booking | closing)
//
// with listening reachable again after speaking. States are advisory
// bookkeeping, not a hard guard: Transition performs an unconditional
// overwrite and no transition table is enforced. A call has no terminal
// state; it ends when the transport tears it down and the record is cleaned
// up explicitly.
type CallState string

const (
	// StateGreeting is the initial state when a call begins.
	StateGreeting CallState = "greeting"
	// StateListening means the transport is collecting caller speech.
	StateListening CallState = "listening"
	// StateProcessing means an utterance is being handled.
	StateProcessing CallState = "processing"
	// StateSpeaking means synthesized audio is being played back.
	StateSpeaking CallState = "speaking"
	// StateBooking means the conversation has moved to scheduling.
	StateBooking CallState = "booking"
	// StateClosing means the conversation is wrapping up.
	StateClosing CallState = "closing"
)

// String returns the state's wire representation.
func (s CallState) String() string { return string(s) }
