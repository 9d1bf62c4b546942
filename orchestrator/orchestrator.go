package orchestrator

import (
	"context"
	"strings"
	"time"

	"github.com/hupe1980/voicemesh/audio"
	"github.com/hupe1980/voicemesh/cache"
	"github.com/hupe1980/voicemesh/conversation"
	"github.com/hupe1980/voicemesh/core"
	"github.com/hupe1980/voicemesh/logging"
	"github.com/hupe1980/voicemesh/session"
)

// Canned replies for the short-circuit and failure paths. The conversational
// loop invariant holds for all of them: the caller always ends up being
// listened to again.
const (
	apologyReply     = "I'm sorry, go ahead, I'm listening."
	repromptReply    = "I didn't quite catch that. Could you say it again?"
	failureReply     = "I'm sorry, I'm having a little trouble on my end. Could you say that again?"
	unavailableReply = "I'm sorry, our assistant is temporarily unavailable. Please call back in a little while."
	defaultGreeting  = "Hi! Thanks for taking my call. Do you have a quick minute to chat?"
)

// Options configure an Orchestrator. All stores default to in-memory
// implementations so tests and demos need no wiring; production supplies the
// durable file store, the tiered cache and real collaborators.
type Options struct {
	// SessionStore holds per-call turn history.
	SessionStore core.SessionStore
	// Tracker holds per-call conversation metadata.
	Tracker core.ConversationTracker
	// Knowledge supplies background context per query. Nil disables retrieval.
	Knowledge core.KnowledgeBase
	// ReplyCache short-circuits generation for identical repeated turns.
	ReplyCache core.Cache
	// AudioStore persists synthesized audio for playback.
	AudioStore core.AudioStore
	// Generator is the language-generation collaborator. Nil puts the
	// orchestrator in degraded mode: every generated turn yields the
	// unavailable-service reply.
	Generator core.Generator
	// Synthesizer is the text-to-speech collaborator. Nil (or failure) falls
	// back to speak-text directives rendered by the transport's own TTS.
	Synthesizer core.Synthesizer
	// Persona is the prompt persona template (internal/util template syntax,
	// caller metadata as data).
	Persona string
	// Greeting is spoken when a call starts.
	Greeting string
	// GenerationTimeout bounds each generation call. Defaults to 10s.
	GenerationTimeout time.Duration
	// SynthesisTimeout bounds each synthesis call. Defaults to 15s.
	SynthesisTimeout time.Duration
	// StaleTimeout is the inactivity window after which a call's metadata is
	// considered gone and re-initialized. Defaults to 5m.
	StaleTimeout time.Duration
	// Logger provides structured logging. Defaults to NoOpLogger.
	Logger logging.Logger
}

// Orchestrator handles one caller utterance at a time per call. Turns for a
// single call arrive sequentially from the transport; across calls its
// methods are safe for concurrent use because every dependency is.
type Orchestrator struct {
	sessions    core.SessionStore
	tracker     core.ConversationTracker
	knowledge   core.KnowledgeBase
	replyCache  core.Cache
	audioStore  core.AudioStore
	generator   core.Generator
	synthesizer core.Synthesizer

	persona      string
	greeting     string
	genTimeout   time.Duration
	synthTimeout time.Duration
	staleTimeout time.Duration
	logger       logging.Logger
}

// New constructs an Orchestrator with optional overrides.
func New(optFns ...func(o *Options)) *Orchestrator {
	opts := Options{
		SessionStore:      session.NewInMemoryStore(),
		Tracker:           conversation.NewTracker(),
		ReplyCache:        cache.NewTiered(nil),
		AudioStore:        audio.NewInMemoryStore(),
		Persona:           defaultPersona,
		Greeting:          defaultGreeting,
		GenerationTimeout: 10 * time.Second,
		SynthesisTimeout:  15 * time.Second,
		StaleTimeout:      conversation.DefaultStaleTimeout,
		Logger:            logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Orchestrator{
		sessions:     opts.SessionStore,
		tracker:      opts.Tracker,
		knowledge:    opts.Knowledge,
		replyCache:   opts.ReplyCache,
		audioStore:   opts.AudioStore,
		generator:    opts.Generator,
		synthesizer:  opts.Synthesizer,
		persona:      opts.Persona,
		greeting:     opts.Greeting,
		genTimeout:   opts.GenerationTimeout,
		synthTimeout: opts.SynthesisTimeout,
		staleTimeout: opts.StaleTimeout,
		logger:       opts.Logger,
	}
}

// StartCall initializes the call's metadata record and returns the greeting
// directive. Session history and metadata share the call identifier but live
// in independent stores; both lifecycles are owned here. A call may be
// started twice (once at outbound dial time, again from the vendor's
// call-start webhook); the second start keeps the existing record and merges
// any new metadata instead of resetting it.
func (o *Orchestrator) StartCall(callID string, metadata map[string]string) core.Directive {
	if o.tracker.IsStale(callID, o.staleTimeout) {
		o.tracker.Initialize(callID, metadata)
	} else {
		o.tracker.MergeMetadata(callID, metadata)
	}
	o.logger.Info("call started", "call_id", callID)
	return core.SpeakThenListen(o.greeting)
}

// EndCall tears down both per-call stores together. Safe to call for calls
// that were never started or have already ended.
func (o *Orchestrator) EndCall(callID string) error {
	o.tracker.Cleanup(callID)
	if err := o.sessions.Delete(callID); err != nil {
		return err
	}
	o.logger.Info("call ended", "call_id", callID)
	return nil
}

// HandleTurn processes one caller utterance and always returns a directive
// ending in a re-listen. Collaborator failures are recovered here and never
// propagate to the transport.
func (o *Orchestrator) HandleTurn(ctx context.Context, input core.TurnInput) core.Directive {
	start := time.Now()
	callID := input.CallID

	// A missing or expired metadata record means this is effectively a new
	// call for bookkeeping purposes.
	if o.tracker.IsStale(callID, o.staleTimeout) {
		o.tracker.Initialize(callID, input.Metadata)
	}

	if input.Interruption {
		if stop := o.tracker.RecordInterruption(callID); stop {
			// Abandon the in-flight reply: no history mutation, no generation.
			o.logger.Info("interruption threshold reached, re-prompting", "call_id", callID)
			o.tracker.Transition(callID, core.StateListening)
			return core.SpeakThenListen(apologyReply)
		}
	}

	o.tracker.Transition(callID, core.StateProcessing)

	utterance := strings.TrimSpace(input.Utterance)
	if utterance == "" {
		o.tracker.Transition(callID, core.StateListening)
		return core.SpeakThenListen(repromptReply)
	}

	// Booking intent takes precedence over the objection table because the
	// two share scheduling vocabulary ("schedule"): a caller asking to book
	// is converting, not objecting, and gets a generated reply.
	booking := hasBookingIntent(utterance)
	if booking {
		attempt := o.tracker.RecordBookingAttempt(callID)
		o.tracker.Transition(callID, core.StateBooking)
		o.logger.Info("booking attempt recorded", "call_id", callID, "attempt", attempt)
	}

	var (
		reply  string
		cached bool
	)
	if rule, ok := classifyObjection(utterance); ok && !booking {
		// Canned deflection: bypasses the knowledge index and the generation
		// collaborator entirely.
		o.tracker.RecordObjection(callID, rule.category)
		o.logger.Info("objection detected", "call_id", callID, "category", rule.category)
		reply = rule.deflection
	} else {
		var err error
		reply, cached, err = o.generateReply(ctx, callID, utterance, input.Metadata)
		if err != nil {
			o.logger.Error("generation failed", "call_id", callID, "utterance", utterance, "error", err)
			o.tracker.Transition(callID, core.StateListening)
			return core.SpeakThenListen(failureReply)
		}
		if reply == "" {
			// Empty reply is legal but nothing useful to say or persist.
			o.logger.Warn("generator returned empty reply", "call_id", callID)
			o.tracker.Transition(callID, core.StateListening)
			return core.SpeakThenListen(repromptReply)
		}
	}

	if err := o.sessions.Append(callID, core.RoleUser, utterance); err != nil {
		o.logger.Error("session append failed", "call_id", callID, "error", err)
	}
	if err := o.sessions.Append(callID, core.RoleAssistant, reply); err != nil {
		o.logger.Error("session append failed", "call_id", callID, "error", err)
	}

	o.tracker.Transition(callID, core.StateSpeaking)
	directive := o.deliver(ctx, callID, reply)
	o.logger.Info("turn completed", "call_id", callID, "directive", string(directive.Kind), "duration", time.Since(start), "reply_cached", cached)
	return directive
}

// generateReply reads the trimmed history, consults the reply cache and falls
// through to knowledge retrieval plus the generation collaborator bounded by
// the generation timeout. Successful replies are cached under the exact
// (query, serialized-history) pair.
func (o *Orchestrator) generateReply(ctx context.Context, callID, utterance string, metadata map[string]string) (string, bool, error) {
	if o.generator == nil {
		// Degraded mode: configuration for the generation collaborator is
		// missing; the core keeps serving a clear unavailable-service reply.
		return unavailableReply, false, nil
	}

	turns, err := o.sessions.Read(callID)
	if err != nil {
		// Storage trouble reads as empty history rather than a failed turn.
		o.logger.Warn("session read failed, using empty history", "call_id", callID, "error", err)
		turns = nil
	}
	history := serializeHistory(trimHistory(turns))

	key := replyCacheKey(utterance, history)
	if cachedReply, ok := o.replyCache.Get(ctx, key); ok {
		return string(cachedReply), true, nil
	}

	contextBlock := ""
	if o.knowledge != nil {
		contextBlock = o.knowledge.Retrieve(ctx, utterance)
	}

	prompt, err := buildPrompt(o.persona, contextBlock, history, utterance, metadata)
	if err != nil {
		return "", false, err
	}

	genCtx, cancel := context.WithTimeout(ctx, o.genTimeout)
	defer cancel()
	reply, err := o.generator.Generate(genCtx, prompt)
	if err != nil {
		return "", false, err
	}
	reply = strings.TrimSpace(reply)
	if reply != "" {
		o.replyCache.Set(ctx, key, []byte(reply), cache.TTLReply)
	}
	return reply, false, nil
}

// deliver synthesizes the reply and returns a play-then-listen directive with
// barge-in enabled. When synthesis is unavailable or fails, the reply text is
// handed to the transport's own TTS via a speak directive instead; the reply
// is already generated, so dropping it for an apology would waste the turn.
func (o *Orchestrator) deliver(ctx context.Context, callID, reply string) core.Directive {
	if o.synthesizer == nil {
		return core.SpeakThenListen(reply)
	}

	synthCtx, cancel := context.WithTimeout(ctx, o.synthTimeout)
	defer cancel()
	start := time.Now()
	data, err := o.synthesizer.Synthesize(synthCtx, reply)
	if err != nil {
		o.logger.Error("synthesis failed, falling back to speak directive", "call_id", callID, "duration", time.Since(start), "error", err)
		return core.SpeakThenListen(reply)
	}
	if len(data) == 0 {
		o.logger.Warn("synthesizer returned empty audio", "call_id", callID)
		return core.SpeakThenListen(reply)
	}

	ref, err := o.audioStore.Save(callID, data)
	if err != nil {
		o.logger.Error("audio save failed, falling back to speak directive", "call_id", callID, "error", err)
		return core.SpeakThenListen(reply)
	}
	return core.PlayThenListen(ref)
}
