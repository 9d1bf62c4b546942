// Package voicemesh provides a high-level façade over the turn orchestrator
// and its supporting services (caching, knowledge retrieval, session history,
// conversation tracking). Most applications interact with this package by:
//  1. Creating a VoiceMesh via New() (optionally overriding default in-memory services)
//  2. Loading the knowledge index
//  3. Feeding call lifecycle events in (StartCall, HandleTurn, EndCall)
//
// The façade delegates turn handling to orchestrator.Orchestrator while
// keeping setup ergonomics concise. All defaults are safe for local
// development and testing; production deployments typically supply a Redis
// URL, durable stores and a structured logger.
package voicemesh

import (
	"context"
	"time"

	"github.com/hupe1980/voicemesh/audio"
	"github.com/hupe1980/voicemesh/cache"
	"github.com/hupe1980/voicemesh/conversation"
	"github.com/hupe1980/voicemesh/core"
	"github.com/hupe1980/voicemesh/knowledge"
	"github.com/hupe1980/voicemesh/logging"
	"github.com/hupe1980/voicemesh/orchestrator"
	"github.com/hupe1980/voicemesh/session"
)

// Options configures the VoiceMesh instance.
type Options struct {
	// KnowledgeDir is the directory of plain-text knowledge files the index
	// is built from. Empty disables retrieval entirely.
	KnowledgeDir string

	// Cache backs the knowledge snapshot and the reply cache. Defaults to an
	// in-process tier with no shared backend.
	Cache core.Cache

	// Stores (default to in-memory implementations if not provided).
	SessionStore core.SessionStore
	Tracker      core.ConversationTracker
	AudioStore   core.AudioStore

	// Collaborators. A nil Generator puts turn handling in degraded mode; a
	// nil Synthesizer makes every directive a speak-text one.
	Generator   core.Generator
	Synthesizer core.Synthesizer

	// Persona and Greeting override the built-in prompt persona and opening
	// line.
	Persona  string
	Greeting string

	GenerationTimeout time.Duration
	SynthesisTimeout  time.Duration
	StaleTimeout      time.Duration

	// Logger (defaults to NoOp logger if nil).
	Logger logging.Logger
}

// VoiceMesh is the high-level façade aggregating the orchestrator and its
// services.
type VoiceMesh struct {
	opts  Options
	orch  *orchestrator.Orchestrator
	index *knowledge.Index
	cache core.Cache
}

// New creates a VoiceMesh instance with optional overrides. Any unset service
// is initialized with an in-memory implementation.
func New(optFns ...func(o *Options)) *VoiceMesh {
	opts := Options{
		Cache:        cache.NewTiered(nil),
		SessionStore: session.NewInMemoryStore(),
		Tracker:      conversation.NewTracker(),
		AudioStore:   audio.NewInMemoryStore(),
		StaleTimeout: conversation.DefaultStaleTimeout,
		Logger:       logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	var index *knowledge.Index
	if opts.KnowledgeDir != "" {
		index = knowledge.NewIndex(opts.KnowledgeDir, opts.Cache, func(o *knowledge.Options) {
			o.Logger = opts.Logger
		})
	}

	orch := orchestrator.New(func(o *orchestrator.Options) {
		o.SessionStore = opts.SessionStore
		o.Tracker = opts.Tracker
		if index != nil {
			o.Knowledge = index
		}
		o.ReplyCache = opts.Cache
		o.AudioStore = opts.AudioStore
		o.Generator = opts.Generator
		o.Synthesizer = opts.Synthesizer
		if opts.Persona != "" {
			o.Persona = opts.Persona
		}
		if opts.Greeting != "" {
			o.Greeting = opts.Greeting
		}
		if opts.GenerationTimeout > 0 {
			o.GenerationTimeout = opts.GenerationTimeout
		}
		if opts.SynthesisTimeout > 0 {
			o.SynthesisTimeout = opts.SynthesisTimeout
		}
		o.StaleTimeout = opts.StaleTimeout
		o.Logger = opts.Logger
	})

	return &VoiceMesh{opts: opts, orch: orch, index: index, cache: opts.Cache}
}

// LoadKnowledge populates the retrieval index from cache or disk. A nil index
// (no knowledge directory) is a no-op.
func (m *VoiceMesh) LoadKnowledge(ctx context.Context) error {
	if m.index == nil {
		return nil
	}
	return m.index.Load(ctx)
}

// Orchestrator exposes the underlying turn orchestrator.
func (m *VoiceMesh) Orchestrator() *orchestrator.Orchestrator { return m.orch }

// Index exposes the knowledge index, nil when no directory was configured.
func (m *VoiceMesh) Index() *knowledge.Index { return m.index }

// StartCall initializes call state and returns the greeting directive.
func (m *VoiceMesh) StartCall(callID string, metadata map[string]string) core.Directive {
	return m.orch.StartCall(callID, metadata)
}

// HandleTurn processes one caller utterance.
func (m *VoiceMesh) HandleTurn(ctx context.Context, input core.TurnInput) core.Directive {
	return m.orch.HandleTurn(ctx, input)
}

// EndCall tears down all per-call state.
func (m *VoiceMesh) EndCall(callID string) error {
	return m.orch.EndCall(callID)
}
