// playkeys — media hotkeys from the system tray.
//
// Finds a running MPRIS media player on the session bus and drives it
// from the keyboard: global hotkeys for the transport controls
// (default: Ctrl+Alt+Space/arrows), plus a full single-key layer on
// the settings page (K, M, J/L, arrows, digits, Shift+N/P).
package main

import (
	"context"
	"log"
	"os/exec"
	"runtime"

	"playkeys/internal/autostart"
	"playkeys/internal/config"
	"playkeys/internal/dispatch"
	"playkeys/internal/hotkey"
	"playkeys/internal/keymap"
	"playkeys/internal/mpris"
	"playkeys/internal/notify"
	"playkeys/internal/server"
	"playkeys/internal/tray"
)

var version = "dev"

func main() {
	// Load or create config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[playkeys] config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	// Player monitor — finds an MPRIS player, reconnects when it goes away
	monitor := mpris.NewMonitor(cfg.GetPlayer(), func(state mpris.State, identity string) {
		tray.SetState(state, identity)
		log.Printf("[playkeys] player: %s", state)
	})

	// Notifications are best-effort; run without them if the bus has
	// no notification daemon.
	var notifier notify.Notifier = notify.Nop{}
	if cfg.GetNotifications() {
		if n, err := notify.NewDBus(); err != nil {
			log.Printf("[playkeys] notifications unavailable: %v", err)
		} else {
			notifier = n
		}
	}

	dispatcher, err := dispatch.New(monitor, notifier, keymap.Default())
	if err != nil {
		log.Fatalf("[playkeys] bindings: %v", err)
	}

	// One manager per configured global hotkey so a combo that fails
	// to register never takes the others down with it.
	managers := make(map[string]*hotkey.Manager)
	for name := range cfg.GetHotkeys() {
		action, ok := keymap.ActionByName(name)
		if !ok {
			log.Printf("[playkeys] unknown hotkey action %q in config, skipping", name)
			continue
		}
		managers[name] = hotkey.NewManager(name, func() {
			dispatcher.Invoke(action)
		})
	}

	// Settings HTTP server
	srv := server.New(dispatcher, monitor, managers, cfg, version)

	// System tray — blocks on main thread
	tray.Run(tray.RunOpts{
		Version:          version,
		AutoStartEnabled: cfg.GetAutoStart(),

		// onReady — start background services after tray is initialized
		OnReady: func() {
			go monitor.Run(ctx)

			// Register global hotkeys; failures are per-binding
			for name, mgr := range managers {
				combo := cfg.GetHotkeys()[name]
				if err := mgr.Register(combo.Modifiers, combo.Key); err != nil {
					log.Printf("[playkeys] hotkey %s (%s) register failed: %v", name, combo.String(), err)
					log.Printf("[playkeys] you can rebind it via Settings")
					continue
				}
				log.Printf("[playkeys] hotkey %s: %s", name, combo.String())
			}

			if _, err := srv.Start(); err != nil {
				log.Printf("[playkeys] settings server: %v", err)
			}

			log.Printf("[playkeys] ready (version %s)", version)
		},

		// onSettings — open browser to settings page
		OnSettings: func() {
			url := srv.URL()
			if url == "" {
				log.Println("[playkeys] settings server not running")
				return
			}
			openBrowser(url)
		},

		OnPlayPause: func() { dispatcher.Invoke(keymap.PlayPause) },
		OnNext:      func() { dispatcher.Invoke(keymap.NextTrack) },
		OnPrevious:  func() { dispatcher.Invoke(keymap.PrevTrack) },

		// onAutoStart — toggle auto-start on login
		OnAutoStart: func(enabled bool) {
			if enabled {
				if err := autostart.Enable(); err != nil {
					log.Printf("[playkeys] enable autostart: %v", err)
					return
				}
			} else {
				if err := autostart.Disable(); err != nil {
					log.Printf("[playkeys] disable autostart: %v", err)
					return
				}
			}
			if err := cfg.SetAutoStart(enabled); err != nil {
				log.Printf("[playkeys] save autostart config: %v", err)
			}
			log.Printf("[playkeys] auto-start: %v", enabled)
		},

		// onQuit — clean shutdown
		OnQuit: func() {
			cancel()
			for _, mgr := range managers {
				mgr.Unregister()
			}
			srv.Stop()
		},
	})
}

func openBrowser(url string) {
	var cmd string
	var args []string

	switch runtime.GOOS {
	case "darwin":
		cmd = "open"
		args = []string{url}
	case "windows":
		cmd = "cmd"
		args = []string{"/c", "start", url}
	default: // linux, bsd
		cmd = "xdg-open"
		args = []string{url}
	}

	if err := exec.Command(cmd, args...).Start(); err != nil {
		log.Printf("[playkeys] open browser: %v", err)
	}
}
