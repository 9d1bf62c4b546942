// Command voicemesh runs the call mediation service: it terminates telephony
// webhooks, orchestrates each conversational turn and hands directives back
// to the vendor.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	voicemesh "github.com/hupe1980/voicemesh"
	"github.com/hupe1980/voicemesh/audio"
	"github.com/hupe1980/voicemesh/cache"
	"github.com/hupe1980/voicemesh/config"
	"github.com/hupe1980/voicemesh/conversation"
	"github.com/hupe1980/voicemesh/core"
	"github.com/hupe1980/voicemesh/logging"
	"github.com/hupe1980/voicemesh/session"
	synthanthropic "github.com/hupe1980/voicemesh/synth/anthropic"
	synthopenai "github.com/hupe1980/voicemesh/synth/openai"
	"github.com/hupe1980/voicemesh/transport"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.NewSlogLogger(logging.LogLevelError, "text", false).Error("config load failed", "error", err)
		os.Exit(1)
	}

	logger := logging.NewSlogLogger(parseLevel(cfg.LogLevel), cfg.LogFormat, false)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Shared cache tier. A missing or unreachable Redis is not fatal; the
	// tier runs on its in-process fallback until the backend comes up.
	var remote *cache.Redis
	if cfg.RedisURL != "" {
		remote, err = cache.NewRedisFromURL(ctx, cfg.RedisURL, func(o *cache.RedisOptions) {
			o.Logger = logger
		})
		if err != nil {
			logger.Warn("shared cache unavailable, continuing on local tier", "error", err)
			remote = nil
		} else {
			defer remote.Close()
		}
	}
	tier := cache.NewTiered(remote, func(o *cache.TieredOptions) {
		o.Logger = logger
	})

	// Durable per-call stores.
	sessions, err := session.NewFileStore(cfg.SessionDir, func(o *session.FileStoreOptions) {
		o.Logger = logger
	})
	if err != nil {
		logger.Error("session store init failed", "dir", cfg.SessionDir, "error", err)
		os.Exit(1)
	}

	audioStore, err := audio.NewFileStore(cfg.AudioDir)
	if err != nil {
		logger.Error("audio store init failed", "dir", cfg.AudioDir, "error", err)
		os.Exit(1)
	}

	tracker := conversation.NewTracker()

	generator, synthesizer := buildProviders(cfg, logger)

	mesh := voicemesh.New(func(o *voicemesh.Options) {
		o.KnowledgeDir = cfg.KnowledgeDir
		o.Cache = tier
		o.SessionStore = sessions
		o.Tracker = tracker
		o.AudioStore = audioStore
		o.Generator = generator
		o.Synthesizer = synthesizer
		o.Persona = cfg.Persona
		o.Greeting = cfg.Greeting
		o.GenerationTimeout = cfg.GenerationTimeout
		o.SynthesisTimeout = cfg.SynthesisTimeout
		o.StaleTimeout = cfg.StaleTimeout
		o.Logger = logger
	})

	if err := mesh.LoadKnowledge(ctx); err != nil {
		logger.Error("knowledge index load failed", "dir", cfg.KnowledgeDir, "error", err)
		os.Exit(1)
	}
	if idx := mesh.Index(); idx != nil {
		logger.Info("knowledge index ready", "chunks", idx.Len())
	}

	go sweepLoop(ctx, cfg, logger, sessions, tracker, audioStore)

	handler := transport.NewHandler(mesh.Orchestrator(), func(o *transport.Options) {
		o.CallbackURL = cfg.CallbackURL
		o.Audio = audioStore
		o.Cache = tier
		if idx := mesh.Index(); idx != nil {
			o.Index = idx
		}
		o.Logger = logger
	})

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      handler.Routes(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("voicemesh listening", "addr", cfg.HTTPAddr, "degraded", cfg.Degraded())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}

// buildProviders wires the configured generation provider and, for OpenAI,
// its speech synthesizer. Missing credentials yield a nil generator: the
// service starts anyway and answers every call with the unavailability line.
func buildProviders(cfg *config.Config, logger logging.Logger) (core.Generator, core.Synthesizer) {
	if cfg.Degraded() {
		logger.Warn("no provider credentials, running degraded", "provider", cfg.Provider)
		return nil, nil
	}

	if cfg.Provider == "anthropic" {
		gen := synthanthropic.NewGenerator(func(o *synthanthropic.Options) {
			o.APIKey = cfg.AnthropicAPIKey
		})
		// Anthropic has no TTS endpoint; synthesis stays with OpenAI when
		// those credentials are present too.
		if cfg.OpenAIAPIKey != "" {
			return gen, synthopenai.NewSynthesizer()
		}
		return gen, nil
	}

	return synthopenai.NewGenerator(), synthopenai.NewSynthesizer()
}

// sweepLoop periodically evicts stale conversation records, aged session
// files and expired audio artifacts.
func sweepLoop(
	ctx context.Context,
	cfg *config.Config,
	logger logging.Logger,
	sessions core.SessionStore,
	tracker *conversation.Tracker,
	audioStore core.AudioStore,
) {
	ticker := time.NewTicker(cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			stale := tracker.SweepStale(cfg.StaleTimeout)

			aged, err := sessions.Sweep(cfg.SessionRetention)
			if err != nil {
				logger.Warn("session sweep failed", "error", err)
			}

			expired, err := audioStore.Sweep(cfg.AudioRetention)
			if err != nil {
				logger.Warn("audio sweep failed", "error", err)
			}

			if stale+aged+expired > 0 {
				logger.Debug("sweep complete", "stale_calls", stale, "aged_sessions", aged, "expired_audio", expired)
			}
		}
	}
}

func parseLevel(s string) logging.LogLevel {
	switch strings.ToLower(s) {
	case "debug":
		return logging.LogLevelDebug
	case "warn":
		return logging.LogLevelWarn
	case "error":
		return logging.LogLevelError
	default:
		return logging.LogLevelInfo
	}
}
