package transport

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/hupe1980/voicemesh/audio"
	"github.com/hupe1980/voicemesh/core"
	"github.com/hupe1980/voicemesh/logging"
	"github.com/hupe1980/voicemesh/orchestrator"
)

// HealthReporter is implemented by components that can report whether their
// shared backend is reachable.
type HealthReporter interface {
	Healthy() bool
}

// Sizer is implemented by the knowledge index to expose how many chunks are
// currently published.
type Sizer interface {
	Len() int
}

// Options configures the HTTP handler.
type Options struct {
	// Dialer triggers outbound calls through the telephony vendor. When nil
	// the outbound endpoint answers 503.
	Dialer core.Dialer

	// CallbackURL is the public base URL handed to the dialer so the vendor
	// knows where to post webhooks for the new call.
	CallbackURL string

	// Audio serves synthesized audio referenced by play directives.
	Audio core.AudioStore

	// Cache and Index feed the health endpoint. Either may be nil.
	Cache HealthReporter
	Index Sizer

	Logger logging.Logger
}

// Handler is the HTTP surface of the mediator.
type Handler struct {
	orch        *orchestrator.Orchestrator
	dialer      core.Dialer
	callbackURL string
	audio       core.AudioStore
	cache       HealthReporter
	index       Sizer
	logger      logging.Logger
}

// NewHandler builds the HTTP surface around an orchestrator.
func NewHandler(orch *orchestrator.Orchestrator, optFns ...func(o *Options)) *Handler {
	opts := Options{
		Logger: logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &Handler{
		orch:        orch,
		dialer:      opts.Dialer,
		callbackURL: opts.CallbackURL,
		audio:       opts.Audio,
		cache:       opts.Cache,
		index:       opts.Index,
		logger:      opts.Logger,
	}
}

// Routes assembles the chi router for the handler.
func (h *Handler) Routes() *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", h.health)

	r.Route("/calls", func(r chi.Router) {
		r.Post("/", h.dial)
		r.Route("/{callID}", func(r chi.Router) {
			r.Post("/start", h.start)
			r.Post("/turns", h.turn)
			r.Delete("/", h.end)
		})
	})

	r.Get("/audio/{ref}", h.serveAudio)

	return r
}

type dialRequest struct {
	Destination string            `json:"destination"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

type dialResponse struct {
	CallID string `json:"call_id"`
	Status string `json:"status"`
}

// dial triggers an outbound call via the configured telephony dialer.
func (h *Handler) dial(w http.ResponseWriter, r *http.Request) {
	if h.dialer == nil {
		writeError(w, http.StatusServiceUnavailable, "outbound dialing is not configured")
		return
	}

	var req dialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if strings.TrimSpace(req.Destination) == "" {
		writeError(w, http.StatusBadRequest, "destination is required")
		return
	}

	callID, err := h.dialer.Dial(r.Context(), req.Destination, h.callbackURL)
	if err != nil {
		h.logger.Error("outbound dial failed", "destination", req.Destination, "error", err)
		writeError(w, http.StatusBadGateway, "dial failed")
		return
	}

	h.orch.StartCall(callID, req.Metadata)

	writeJSON(w, http.StatusCreated, dialResponse{CallID: callID, Status: "dialing"})
}

type startRequest struct {
	Metadata map[string]string `json:"metadata,omitempty"`
}

// start handles the call-answered webhook and returns the greeting directive.
func (h *Handler) start(w http.ResponseWriter, r *http.Request) {
	callID := chi.URLParam(r, "callID")

	var req startRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	directive := h.orch.StartCall(callID, req.Metadata)

	writeJSON(w, http.StatusOK, directive)
}

// turn handles a per-utterance webhook and returns the next directive.
func (h *Handler) turn(w http.ResponseWriter, r *http.Request) {
	callID := chi.URLParam(r, "callID")

	var input core.TurnInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	// The path is authoritative; a mismatched body call_id is ignored.
	input.CallID = callID

	directive := h.orch.HandleTurn(r.Context(), input)

	writeJSON(w, http.StatusOK, directive)
}

// end handles the hang-up webhook, tearing down conversation and session
// state together.
func (h *Handler) end(w http.ResponseWriter, r *http.Request) {
	callID := chi.URLParam(r, "callID")

	if err := h.orch.EndCall(callID); err != nil {
		h.logger.Error("call teardown failed", "call_id", callID, "error", err)
		writeError(w, http.StatusInternalServerError, "teardown failed")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// serveAudio streams a synthesized audio reference back to the transport.
func (h *Handler) serveAudio(w http.ResponseWriter, r *http.Request) {
	if h.audio == nil {
		writeError(w, http.StatusNotFound, "audio serving is not configured")
		return
	}

	ref := chi.URLParam(r, "ref")

	data, err := h.audio.Get(ref)
	if err != nil {
		if errors.Is(err, audio.ErrNotFound) {
			writeError(w, http.StatusNotFound, "unknown audio reference")
			return
		}

		h.logger.Error("audio read failed", "ref", ref, "error", err)
		writeError(w, http.StatusInternalServerError, "audio read failed")

		return
	}

	w.Header().Set("Content-Type", "audio/mpeg")
	w.Header().Set("Content-Length", fmt.Sprintf("%d", len(data)))
	_, _ = w.Write(data)
}

type healthResponse struct {
	Status string `json:"status"`
	Cache  string `json:"cache"`
	Chunks int    `json:"chunks"`
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	resp := healthResponse{Status: "ok", Cache: "local"}

	if h.cache != nil && h.cache.Healthy() {
		resp.Cache = "shared"
	}

	if h.index != nil {
		resp.Chunks = h.index.Len()
	}

	writeJSON(w, http.StatusOK, resp)
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
