package core

// DirectiveKind enumerates the actions the transport can be told to take
// after a turn has been handled.
type DirectiveKind string

const (
	// DirectiveSpeak instructs the transport to speak the given text via its
	// own TTS, then resume listening.
	DirectiveSpeak DirectiveKind = "speak"
	// DirectivePlay instructs the transport to play a previously synthesized
	// audio reference, then resume listening.
	DirectivePlay DirectiveKind = "play"
	// DirectiveListen instructs the transport to listen without speaking.
	DirectiveListen DirectiveKind = "listen"
)

// GatherConfig controls how the transport collects the next caller utterance.
type GatherConfig struct {
	// TimeoutSeconds bounds how long the transport waits for speech.
	TimeoutSeconds int `json:"timeout_seconds"`
	// BargeIn allows the caller to interrupt ongoing playback.
	BargeIn bool `json:"barge_in"`
}

// Directive is the orchestrator's answer to a turn: play or speak something
// (or nothing) and then listen again. Every turn ends in a re-listen unless
// the caller hangs up, so a Directive always carries a GatherConfig.
type Directive struct {
	Kind   DirectiveKind `json:"kind"`
	Text   string        `json:"text,omitempty"`
	Audio  string        `json:"audio,omitempty"`
	Gather GatherConfig  `json:"gather"`
}

// defaultGather is applied by the directive constructors.
var defaultGather = GatherConfig{TimeoutSeconds: 10, BargeIn: true}

// SpeakThenListen builds a speak(text)-then-listen directive.
func SpeakThenListen(text string) Directive {
	return Directive{Kind: DirectiveSpeak, Text: text, Gather: defaultGather}
}

// PlayThenListen builds a play(audio)-then-listen directive.
func PlayThenListen(audioRef string) Directive {
	return Directive{Kind: DirectivePlay, Audio: audioRef, Gather: defaultGather}
}

// ListenOnly builds a listen-only directive.
func ListenOnly() Directive {
	return Directive{Kind: DirectiveListen, Gather: defaultGather}
}
