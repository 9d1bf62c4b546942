package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/voicemesh/audio"
	"github.com/hupe1980/voicemesh/core"
	"github.com/hupe1980/voicemesh/orchestrator"
	"github.com/hupe1980/voicemesh/synth"
)

type fakeDialer struct {
	callID      string
	err         error
	destination string
	callbackURL string
}

func (d *fakeDialer) Dial(_ context.Context, destination, callbackURL string) (string, error) {
	d.destination = destination
	d.callbackURL = callbackURL
	if d.err != nil {
		return "", d.err
	}
	return d.callID, nil
}

type staticHealth struct{ healthy bool }

func (s staticHealth) Healthy() bool { return s.healthy }

type staticSizer struct{ n int }

func (s staticSizer) Len() int { return s.n }

func newTestServer(t *testing.T, optFns ...func(o *Options)) (*httptest.Server, *synth.MockGenerator) {
	t.Helper()

	gen := synth.NewMockGenerator()
	orch := orchestrator.New(func(o *orchestrator.Options) {
		o.Generator = gen
	})

	h := NewHandler(orch, optFns...)
	srv := httptest.NewServer(h.Routes())
	t.Cleanup(srv.Close)

	return srv, gen
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()

	data, err := json.Marshal(body)
	require.NoError(t, err)

	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	require.NoError(t, err)

	return resp
}

func decodeDirective(t *testing.T, resp *http.Response) core.Directive {
	t.Helper()
	defer resp.Body.Close()

	var d core.Directive
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&d))

	return d
}

func TestStartReturnsGreetingDirective(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := postJSON(t, srv.URL+"/calls/call-1/start", map[string]any{
		"metadata": map[string]string{"name": "Alex"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	d := decodeDirective(t, resp)
	assert.Equal(t, core.DirectiveSpeak, d.Kind)
	assert.NotEmpty(t, d.Text)
	assert.True(t, d.Gather.BargeIn)
}

func TestTurnReturnsDirective(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := postJSON(t, srv.URL+"/calls/call-1/start", nil)
	resp.Body.Close()

	resp = postJSON(t, srv.URL+"/calls/call-1/turns", core.TurnInput{
		Utterance: "tell me about your courses",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	d := decodeDirective(t, resp)
	assert.Equal(t, core.DirectiveSpeak, d.Kind)
	assert.NotEmpty(t, d.Text)
}

func TestTurnPathCallIDWins(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := postJSON(t, srv.URL+"/calls/path-id/start", nil)
	resp.Body.Close()

	// Body claims a different call; the path decides which call this is.
	resp = postJSON(t, srv.URL+"/calls/path-id/turns", core.TurnInput{
		CallID:    "body-id",
		Utterance: "hello there everyone",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

func TestTurnRejectsInvalidBody(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Post(srv.URL+"/calls/call-1/turns", "application/json", bytes.NewReader([]byte("{not json")))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestEndCall(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := postJSON(t, srv.URL+"/calls/call-1/start", nil)
	resp.Body.Close()

	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/calls/call-1", nil)
	require.NoError(t, err)

	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestDialTriggersOutboundCall(t *testing.T) {
	dialer := &fakeDialer{callID: "vendor-42"}
	srv, _ := newTestServer(t, func(o *Options) {
		o.Dialer = dialer
		o.CallbackURL = "https://mediator.example.com"
	})

	resp := postJSON(t, srv.URL+"/calls", dialRequest{Destination: "+15551234567"})
	defer resp.Body.Close()

	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var out dialResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "vendor-42", out.CallID)
	assert.Equal(t, "dialing", out.Status)
	assert.Equal(t, "+15551234567", dialer.destination)
	assert.Equal(t, "https://mediator.example.com", dialer.callbackURL)
}

func TestDialRequiresDestination(t *testing.T) {
	srv, _ := newTestServer(t, func(o *Options) {
		o.Dialer = &fakeDialer{callID: "vendor-42"}
	})

	resp := postJSON(t, srv.URL+"/calls", dialRequest{Destination: "   "})
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDialWithoutDialerConfigured(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := postJSON(t, srv.URL+"/calls", dialRequest{Destination: "+15551234567"})
	defer resp.Body.Close()

	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestDialFailureReturnsBadGateway(t *testing.T) {
	srv, _ := newTestServer(t, func(o *Options) {
		o.Dialer = &fakeDialer{err: fmt.Errorf("vendor unreachable")}
	})

	resp := postJSON(t, srv.URL+"/calls", dialRequest{Destination: "+15551234567"})
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
}

func TestServeAudio(t *testing.T) {
	store := audio.NewInMemoryStore()
	ref, err := store.Save("call-1", []byte("mp3-bytes"))
	require.NoError(t, err)

	srv, _ := newTestServer(t, func(o *Options) {
		o.Audio = store
	})

	resp, err := http.Get(srv.URL + "/audio/" + ref)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "audio/mpeg", resp.Header.Get("Content-Type"))

	resp, err = http.Get(srv.URL + "/audio/no-such-ref")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t, func(o *Options) {
		o.Cache = staticHealth{healthy: true}
		o.Index = staticSizer{n: 7}
	})

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out healthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "ok", out.Status)
	assert.Equal(t, "shared", out.Cache)
	assert.Equal(t, 7, out.Chunks)
}

func TestHealthzLocalOnly(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	var out healthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "local", out.Cache)
}
