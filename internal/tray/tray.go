// Package tray manages the system tray icon and menu.
package tray

import (
	"strings"

	"fyne.io/systray"

	"playkeys/internal/mpris"
)

// RunOpts configures the system tray.
type RunOpts struct {
	Version          string // app version string (e.g., "1.0.0")
	AutoStartEnabled bool   // initial state of "Start on Login" checkbox
	OnReady          func()
	OnSettings       func()
	OnPlayPause      func()
	OnNext           func()
	OnPrevious       func()
	OnAutoStart      func(enabled bool) // called when user toggles auto-start
	OnQuit           func()
}

// Run starts the system tray. It blocks on the main thread.
func Run(opts RunOpts) {
	systray.Run(func() {
		systray.SetIcon(IconNoPlayer)
		systray.SetTitle("")
		systray.SetTooltip("playkeys — No player")

		// Version label (disabled — just informational)
		versionLabel := "playkeys"
		if opts.Version != "" && opts.Version != "dev" {
			versionLabel += " v" + strings.TrimPrefix(opts.Version, "v")
		}
		mVersion := systray.AddMenuItem(versionLabel, "")
		mVersion.Disable()

		systray.AddSeparator()

		mPlayPause := systray.AddMenuItem("Play / Pause", "Toggle playback")
		mNext := systray.AddMenuItem("Next Track", "Skip forward")
		mPrevious := systray.AddMenuItem("Previous Track", "Skip back")

		systray.AddSeparator()

		mSettings := systray.AddMenuItem("Settings...", "Configure hotkeys")
		mAutoStart := systray.AddMenuItemCheckbox("Start on Login", "Launch automatically on login", opts.AutoStartEnabled)

		systray.AddSeparator()

		mStatus := systray.AddMenuItem("Status: No player", "")
		mStatus.Disable()

		systray.AddSeparator()

		mQuit := systray.AddMenuItem("Quit", "Exit playkeys")

		// Store status item for updates
		statusItem = mStatus

		if opts.OnReady != nil {
			opts.OnReady()
		}

		go func() {
			for {
				select {
				case <-mPlayPause.ClickedCh:
					if opts.OnPlayPause != nil {
						opts.OnPlayPause()
					}
				case <-mNext.ClickedCh:
					if opts.OnNext != nil {
						opts.OnNext()
					}
				case <-mPrevious.ClickedCh:
					if opts.OnPrevious != nil {
						opts.OnPrevious()
					}
				case <-mSettings.ClickedCh:
					if opts.OnSettings != nil {
						opts.OnSettings()
					}
				case <-mAutoStart.ClickedCh:
					if mAutoStart.Checked() {
						mAutoStart.Uncheck()
						if opts.OnAutoStart != nil {
							opts.OnAutoStart(false)
						}
					} else {
						mAutoStart.Check()
						if opts.OnAutoStart != nil {
							opts.OnAutoStart(true)
						}
					}
				case <-mQuit.ClickedCh:
					if opts.OnQuit != nil {
						opts.OnQuit()
					}
					systray.Quit()
				}
			}
		}()
	}, func() {
		// cleanup on systray exit
	})
}

var statusItem *systray.MenuItem

// SetState updates the tray icon and tooltip based on player state.
func SetState(state mpris.State, identity string) {
	switch state {
	case mpris.NoPlayer:
		systray.SetIcon(IconNoPlayer)
		systray.SetTooltip("playkeys — No player")
		if statusItem != nil {
			statusItem.SetTitle("Status: No player")
		}
	case mpris.Connected:
		systray.SetIcon(IconConnected)
		systray.SetTooltip("playkeys — " + identity)
		if statusItem != nil {
			statusItem.SetTitle("Status: " + identity)
		}
	}
}

// Quit stops the system tray.
func Quit() {
	systray.Quit()
}
