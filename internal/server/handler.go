package server

import (
	"encoding/json"
	"io"
	"io/fs"
	"log"
	"net/http"

	"playkeys/internal/autostart"
	"playkeys/internal/dispatch"
	"playkeys/internal/keymap"
	"playkeys/internal/web"
)

// handleIndex serves the settings page HTML.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	staticFS, _ := fs.Sub(web.StaticFiles, "static")
	f, err := staticFS.Open("index.html")
	if err != nil {
		http.Error(w, "not found", 404)
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	io.Copy(w, f)
}

// statusResponse is the JSON response for GET /status.
type statusResponse struct {
	State     string            `json:"state"`
	Player    string            `json:"player"`
	Version   string            `json:"version"`
	AutoStart bool              `json:"auto_start"`
	Hotkeys   map[string]string `json:"hotkeys"`
}

// handleStatus returns the current player state and hotkey config.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		http.Error(w, "method not allowed", 405)
		return
	}

	resp := statusResponse{
		State:     "no player",
		Version:   s.version,
		AutoStart: s.cfg.GetAutoStart(),
		Hotkeys:   make(map[string]string),
	}
	if s.monitor != nil {
		resp.State = s.monitor.State().String()
		resp.Player = s.monitor.Identity()
	}
	for action, hk := range s.cfg.GetHotkeys() {
		resp.Hotkeys[action] = hk.String()
	}

	writeJSON(w, resp)
}

// keydownRequest is the JSON body for POST /keydown: one raw keydown
// as the settings page saw it.
type keydownRequest struct {
	Code     string `json:"code"` // JS event.code, e.g. "KeyK"
	Key      string `json:"key"`  // JS event.key, fallback when code is unknown
	Shift    bool   `json:"shift"`
	Ctrl     bool   `json:"ctrl"`
	Alt      bool   `json:"alt"`
	Meta     bool   `json:"meta"`
	Element  string `json:"element"`  // focused tag name, lower case
	Editable bool   `json:"editable"` // contenteditable focus
}

// keydownResponse tells the page whether to preventDefault.
type keydownResponse struct {
	Handled bool `json:"handled"`
}

// handleKeydown dispatches one keydown and reports whether it was
// consumed by a playback action.
func (s *Server) handleKeydown(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		http.Error(w, "method not allowed", 405)
		return
	}

	var req keydownRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", 400)
		return
	}

	// Prefer the layout-independent code; fall back to the key label
	// for anything the code table doesn't cover.
	key, err := keymap.FromCode(req.Code)
	if err != nil {
		key = req.Key
	}

	handled := s.dispatcher.Handle(dispatch.Event{
		Key:   key,
		Shift: req.Shift,
		Ctrl:  req.Ctrl,
		Alt:   req.Alt,
		Meta:  req.Meta,
		Focus: dispatch.Focus{Element: req.Element, Editable: req.Editable},
	})

	writeJSON(w, keydownResponse{Handled: handled})
}

// bindingEntry is one row of the GET /bindings response.
type bindingEntry struct {
	Action string `json:"action"`
	Key    string `json:"key"`
	Shift  bool   `json:"shift"`
}

// handleBindings lists the compiled-in key table.
func (s *Server) handleBindings(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		http.Error(w, "method not allowed", 405)
		return
	}

	bindings := s.dispatcher.Bindings()
	entries := make([]bindingEntry, 0, len(bindings))
	for _, b := range bindings {
		entries = append(entries, bindingEntry{
			Action: b.Action.String(),
			Key:    b.Key,
			Shift:  b.Shift,
		})
	}

	writeJSON(w, entries)
}

// hotkeyRequest is the JSON body for POST /hotkey.
type hotkeyRequest struct {
	Action    string   `json:"action"`
	Modifiers []string `json:"modifiers"`
	JSCode    string   `json:"js_code"`
}

// hotkeyResponse is the JSON response for POST /hotkey.
type hotkeyResponse struct {
	Hotkey string `json:"hotkey,omitempty"`
	Error  string `json:"error,omitempty"`
}

// handleHotkey rebinds one global hotkey combo.
func (s *Server) handleHotkey(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		http.Error(w, "method not allowed", 405)
		return
	}

	var req hotkeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, hotkeyResponse{Error: "invalid JSON"})
		return
	}

	mgr, ok := s.hotkeys[req.Action]
	if !ok {
		writeJSON(w, hotkeyResponse{Error: "unknown action: " + req.Action})
		return
	}

	// Global combos without a modifier would shadow normal typing.
	if len(req.Modifiers) == 0 {
		writeJSON(w, hotkeyResponse{Error: "at least one modifier required"})
		return
	}

	keyName, err := keymap.FromCode(req.JSCode)
	if err != nil {
		writeJSON(w, hotkeyResponse{Error: "unsupported key: " + req.JSCode})
		return
	}

	if err := mgr.Register(req.Modifiers, keyName); err != nil {
		log.Printf("[server] hotkey register failed: %v", err)
		writeJSON(w, hotkeyResponse{Error: "failed to register hotkey: " + err.Error()})
		return
	}

	if err := s.cfg.SetHotkey(req.Action, req.Modifiers, keyName); err != nil {
		log.Printf("[server] config save failed: %v", err)
		writeJSON(w, hotkeyResponse{Error: "saved hotkey but failed to persist config"})
		return
	}

	hk := s.cfg.GetHotkeys()[req.Action]
	log.Printf("[server] hotkey %s updated to: %s", req.Action, hk.String())
	writeJSON(w, hotkeyResponse{Hotkey: hk.String()})
}

// autoStartRequest is the JSON body for POST /autostart.
type autoStartRequest struct {
	Enabled bool `json:"enabled"`
}

// autoStartResponse is the JSON response for POST /autostart.
type autoStartResponse struct {
	AutoStart bool   `json:"auto_start"`
	Error     string `json:"error,omitempty"`
}

// handleAutoStart toggles the auto-start on login setting.
func (s *Server) handleAutoStart(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		http.Error(w, "method not allowed", 405)
		return
	}

	var req autoStartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, autoStartResponse{Error: "invalid JSON"})
		return
	}

	if req.Enabled {
		if err := autostart.Enable(); err != nil {
			log.Printf("[server] enable autostart: %v", err)
			writeJSON(w, autoStartResponse{Error: "failed to enable auto-start: " + err.Error()})
			return
		}
	} else {
		if err := autostart.Disable(); err != nil {
			log.Printf("[server] disable autostart: %v", err)
			writeJSON(w, autoStartResponse{Error: "failed to disable auto-start: " + err.Error()})
			return
		}
	}

	if err := s.cfg.SetAutoStart(req.Enabled); err != nil {
		log.Printf("[server] config save failed: %v", err)
	}

	writeJSON(w, autoStartResponse{AutoStart: req.Enabled})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
