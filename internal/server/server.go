// Package server provides the local HTTP server for the settings UI.
// The settings page doubles as the keydown surface: it forwards raw
// key events to POST /keydown and suppresses the browser default
// exactly when the dispatcher reports the key as handled.
package server

import (
	"context"
	"fmt"
	"io/fs"
	"log"
	"net"
	"net/http"
	"time"

	"playkeys/internal/config"
	"playkeys/internal/dispatch"
	"playkeys/internal/hotkey"
	"playkeys/internal/mpris"
	"playkeys/internal/web"
)

// Server serves the settings UI on localhost.
type Server struct {
	httpServer *http.Server
	listener   net.Listener
	dispatcher *dispatch.Dispatcher
	monitor    *mpris.Monitor
	hotkeys    map[string]*hotkey.Manager
	cfg        *config.Config
	version    string
}

// New creates a settings server.
func New(dispatcher *dispatch.Dispatcher, monitor *mpris.Monitor, hotkeys map[string]*hotkey.Manager, cfg *config.Config, version string) *Server {
	return &Server{
		dispatcher: dispatcher,
		monitor:    monitor,
		hotkeys:    hotkeys,
		cfg:        cfg,
		version:    version,
	}
}

// Start begins serving on a random localhost port.
// Returns the URL to open in the browser.
func (s *Server) Start() (string, error) {
	mux := http.NewServeMux()

	// Serve embedded static files
	staticFS, err := fs.Sub(web.StaticFiles, "static")
	if err != nil {
		return "", fmt.Errorf("static fs: %w", err)
	}
	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))

	// Settings page
	mux.HandleFunc("/", s.handleIndex)

	// API endpoints
	mux.HandleFunc("/status", s.handleStatus)
	mux.HandleFunc("/keydown", s.handleKeydown)
	mux.HandleFunc("/bindings", s.handleBindings)
	mux.HandleFunc("/hotkey", s.handleHotkey)
	mux.HandleFunc("/autostart", s.handleAutoStart)

	// Bind to random localhost port
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", fmt.Errorf("listen: %w", err)
	}
	s.listener = ln

	s.httpServer = &http.Server{
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			log.Printf("[server] error: %v", err)
		}
	}()

	url := fmt.Sprintf("http://%s", ln.Addr().String())
	log.Printf("[server] settings available at %s", url)
	return url, nil
}

// Stop shuts down the HTTP server.
func (s *Server) Stop() {
	if s.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		s.httpServer.Shutdown(ctx)
	}
}

// URL returns the server's URL, or empty string if not started.
func (s *Server) URL() string {
	if s.listener == nil {
		return ""
	}
	return fmt.Sprintf("http://%s", s.listener.Addr().String())
}
