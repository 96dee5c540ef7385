package server

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"playkeys/internal/config"
	"playkeys/internal/dispatch"
	"playkeys/internal/keymap"
)

type fakeHost struct {
	duration time.Duration
	position time.Duration
	volume   float64
	seeks    []time.Duration
	toggles  int
}

func (h *fakeHost) Duration() (time.Duration, error) { return h.duration, nil }
func (h *fakeHost) Position() (time.Duration, error) { return h.position, nil }
func (h *fakeHost) Seek(pos time.Duration) error {
	h.seeks = append(h.seeks, pos)
	return nil
}
func (h *fakeHost) Volume() (float64, error)  { return h.volume, nil }
func (h *fakeHost) SetVolume(v float64) error { h.volume = v; return nil }
func (h *fakeHost) Toggle() error             { h.toggles++; return nil }
func (h *fakeHost) Next() error               { return nil }
func (h *fakeHost) Previous() error           { return nil }

func newTestServer(t *testing.T, host *fakeHost) *Server {
	t.Helper()
	d, err := dispatch.New(host, nil, keymap.Default())
	require.NoError(t, err)
	return New(d, nil, nil, config.DefaultConfig(), "test")
}

func postKeydown(t *testing.T, s *Server, body string) bool {
	t.Helper()
	req := httptest.NewRequest("POST", "/keydown", strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.handleKeydown(rec, req)
	require.Equal(t, 200, rec.Code)

	var resp keydownResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp.Handled
}

func TestHandleKeydown_PlayPause(t *testing.T) {
	host := &fakeHost{duration: time.Minute}
	s := newTestServer(t, host)

	handled := postKeydown(t, s, `{"code":"KeyK"}`)
	assert.True(t, handled)
	assert.Equal(t, 1, host.toggles)
}

func TestHandleKeydown_DigitSeeks(t *testing.T) {
	host := &fakeHost{duration: 100 * time.Second}
	s := newTestServer(t, host)

	handled := postKeydown(t, s, `{"code":"Digit5"}`)
	assert.True(t, handled)
	require.Len(t, host.seeks, 1)
	assert.Equal(t, 50*time.Second, host.seeks[0])
}

func TestHandleKeydown_DigitWithoutTrackUnhandled(t *testing.T) {
	host := &fakeHost{duration: 0}
	s := newTestServer(t, host)

	handled := postKeydown(t, s, `{"code":"Digit5"}`)
	assert.False(t, handled, "digit must stay typeable with no track loaded")
	assert.Empty(t, host.seeks)
}

func TestHandleKeydown_ModifierGuard(t *testing.T) {
	host := &fakeHost{duration: time.Minute}
	s := newTestServer(t, host)

	assert.False(t, postKeydown(t, s, `{"code":"KeyK","ctrl":true}`))
	assert.Zero(t, host.toggles)
}

func TestHandleKeydown_TypingContext(t *testing.T) {
	host := &fakeHost{duration: time.Minute, position: 30 * time.Second}
	s := newTestServer(t, host)

	assert.False(t, postKeydown(t, s, `{"code":"KeyK","element":"input"}`))
	assert.Zero(t, host.toggles)

	// Arrows stay live while typing.
	assert.True(t, postKeydown(t, s, `{"code":"ArrowRight","element":"input"}`))
	require.Len(t, host.seeks, 1)
	assert.Equal(t, 35*time.Second, host.seeks[0])
}

func TestHandleKeydown_UnknownCodeFallsBackToKeyLabel(t *testing.T) {
	host := &fakeHost{duration: time.Minute}
	s := newTestServer(t, host)

	// Code not in the table, but the key label matches a binding.
	handled := postKeydown(t, s, `{"code":"NumpadEnter","key":"k"}`)
	assert.True(t, handled)
	assert.Equal(t, 1, host.toggles)
}

func TestHandleKeydown_InvalidJSON(t *testing.T) {
	s := newTestServer(t, &fakeHost{})

	req := httptest.NewRequest("POST", "/keydown", strings.NewReader("{nope"))
	rec := httptest.NewRecorder()
	s.handleKeydown(rec, req)
	assert.Equal(t, 400, rec.Code)
}

func TestHandleKeydown_MethodNotAllowed(t *testing.T) {
	s := newTestServer(t, &fakeHost{})

	req := httptest.NewRequest("GET", "/keydown", nil)
	rec := httptest.NewRecorder()
	s.handleKeydown(rec, req)
	assert.Equal(t, 405, rec.Code)
}

func TestHandleBindings(t *testing.T) {
	s := newTestServer(t, &fakeHost{})

	req := httptest.NewRequest("GET", "/bindings", nil)
	rec := httptest.NewRecorder()
	s.handleBindings(rec, req)
	require.Equal(t, 200, rec.Code)

	var entries []bindingEntry
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&entries))
	assert.Len(t, entries, len(keymap.Default()))
	assert.Contains(t, entries, bindingEntry{Action: "play-pause", Key: "k"})
	assert.Contains(t, entries, bindingEntry{Action: "next", Key: "n", Shift: true})
}

func TestHandleStatus_NoMonitor(t *testing.T) {
	s := newTestServer(t, &fakeHost{})

	req := httptest.NewRequest("GET", "/status", nil)
	rec := httptest.NewRecorder()
	s.handleStatus(rec, req)
	require.Equal(t, 200, rec.Code)

	var resp statusResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "no player", resp.State)
	assert.Equal(t, "test", resp.Version)
	assert.Contains(t, resp.Hotkeys, "play-pause")
}
