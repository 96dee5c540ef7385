// Package dispatch translates keydown events into playback host calls.
//
// A Dispatcher owns the binding table, the volume throttle and the
// host reference; it is created once at startup and lives for the
// process lifetime. Handle runs the guarded keyboard path, Invoke runs
// an action directly for callers that bring their own trigger (global
// hotkeys, the tray menu).
package dispatch

import (
	"errors"
	"fmt"
	"log"
	"math"
	"sync"
	"time"

	"playkeys/internal/keymap"
	"playkeys/internal/notify"
	"playkeys/internal/player"
)

const (
	seekStep      = 5 * time.Second
	seekStepLarge = 10 * time.Second

	volumeStep     = 0.05
	volumeInterval = 100 * time.Millisecond // min gap between volume commits

	// Restore level when unmuting without a native mute toggle.
	fallbackVolume = 0.5
)

// Focus describes the UI element that owned keyboard focus when the
// key went down.
type Focus struct {
	Element  string // lower-case tag name, e.g. "input", "textarea"
	Editable bool   // contenteditable or equivalent
}

// Typing reports whether keyboard input is expected to produce text.
func (f Focus) Typing() bool {
	switch f.Element {
	case "input", "textarea":
		return true
	}
	return f.Editable
}

// Event is a single keydown.
type Event struct {
	Key   string // key label, normalized case-insensitively
	Shift bool
	Ctrl  bool
	Alt   bool
	Meta  bool
	Focus Focus
}

// Dispatcher maps keydown events to host calls.
type Dispatcher struct {
	host     player.Host
	mute     player.MuteStrategy
	notifier notify.Notifier
	bindings []keymap.Binding
	table    map[keymap.Chord]keymap.Action

	now func() time.Time

	// Keydowns arrive from the settings page and from hotkey listener
	// goroutines, so the throttle timestamp needs a lock of its own.
	volumeMu      sync.Mutex
	lastVolumeSet time.Time
}

// New builds a dispatcher over the given host and key table. The mute
// strategy is resolved here, once. A nil notifier disables
// notifications.
func New(host player.Host, notifier notify.Notifier, bindings []keymap.Binding) (*Dispatcher, error) {
	table, err := keymap.Table(bindings)
	if err != nil {
		return nil, fmt.Errorf("build key table: %w", err)
	}
	if notifier == nil {
		notifier = notify.Nop{}
	}
	d := &Dispatcher{
		host:     host,
		mute:     player.DetectMuteStrategy(host),
		notifier: notifier,
		bindings: bindings,
		table:    table,
		now:      time.Now,
	}
	log.Printf("[dispatch] %d bindings, mute strategy: %s", len(bindings), d.mute)
	return d, nil
}

// Bindings returns the key table the dispatcher was built with.
func (d *Dispatcher) Bindings() []keymap.Binding {
	return d.bindings
}

// alwaysAvailable keys stay active while a text field has focus, so
// seeking and volume keep working mid-typing.
func alwaysAvailable(key string) bool {
	switch key {
	case "left", "right", "up", "down":
		return true
	}
	return false
}

// Handle runs one keydown through the guards and the binding table.
// It returns true when a playback action consumed the key, in which
// case the caller should suppress the key's default behavior.
func (d *Dispatcher) Handle(ev Event) bool {
	if ev.Ctrl || ev.Alt || ev.Meta {
		return false // leave OS and browser shortcuts alone
	}
	key := keymap.Normalize(ev.Key)
	if key == "" {
		return false
	}
	if !alwaysAvailable(key) && ev.Focus.Typing() {
		return false // the focused field gets the key
	}
	action, ok := d.table[keymap.Chord{Key: key, Shift: ev.Shift}]
	if !ok {
		return false
	}
	return d.run(action, key)
}

// Invoke runs an action directly, bypassing the keyboard guards.
// The volume throttle still applies.
func (d *Dispatcher) Invoke(action keymap.Action) bool {
	return d.run(action, "")
}

func (d *Dispatcher) run(action keymap.Action, key string) bool {
	switch action {
	case keymap.PlayPause:
		return d.call("toggle", d.host.Toggle)
	case keymap.ToggleMute:
		return d.toggleMute()
	case keymap.SeekBack:
		return d.seekBy(-seekStep)
	case keymap.SeekForward:
		return d.seekBy(seekStep)
	case keymap.SeekBackLarge:
		return d.seekBy(-seekStepLarge)
	case keymap.SeekForwardLarge:
		return d.seekBy(seekStepLarge)
	case keymap.VolumeUp:
		return d.changeVolume(true)
	case keymap.VolumeDown:
		return d.changeVolume(false)
	case keymap.NextTrack:
		return d.call("next", d.host.Next)
	case keymap.PrevTrack:
		return d.call("previous", d.host.Previous)
	case keymap.PercentJump:
		return d.percentJump(key)
	}
	return false
}

// call invokes a single host method. With no player attached the key
// stays unhandled so it keeps its default behavior; other host errors
// do not un-handle the key, the press meant this action either way.
func (d *Dispatcher) call(name string, fn func() error) bool {
	err := fn()
	if err == nil {
		return true
	}
	if errors.Is(err, player.ErrNoPlayer) {
		return false
	}
	log.Printf("[dispatch] %s: %v", name, err)
	return true
}

// seekBy moves the playback position by delta, clamped to the track.
// With no track loaded there is nothing to seek in, so the key is left
// unhandled.
func (d *Dispatcher) seekBy(delta time.Duration) bool {
	dur, err := d.host.Duration()
	if err != nil {
		if !errors.Is(err, player.ErrNoPlayer) {
			log.Printf("[dispatch] duration: %v", err)
		}
		return false
	}
	if dur <= 0 {
		return false
	}
	pos, err := d.host.Position()
	if err != nil {
		log.Printf("[dispatch] position: %v", err)
		return false
	}
	target := pos + delta
	if target < 0 {
		target = 0
	}
	if target > dur {
		target = dur
	}
	if err := d.host.Seek(target); err != nil {
		log.Printf("[dispatch] seek: %v", err)
	}
	return true
}

// percentJump seeks to digit/10 of the track. With no track loaded the
// digit must stay typeable, so the key is left unhandled.
func (d *Dispatcher) percentJump(key string) bool {
	if len(key) != 1 || key[0] < '0' || key[0] > '9' {
		return false
	}
	digit := time.Duration(key[0] - '0')
	dur, err := d.host.Duration()
	if err != nil {
		if !errors.Is(err, player.ErrNoPlayer) {
			log.Printf("[dispatch] duration: %v", err)
		}
		return false
	}
	if dur <= 0 {
		return false
	}
	if err := d.host.Seek(digit * dur / 10); err != nil {
		log.Printf("[dispatch] seek: %v", err)
	}
	return true
}

// changeVolume applies one throttled volume step. With no player there
// is no volume to own, so the key stays unhandled; otherwise the key
// counts as handled even when the throttle suppresses the commit, so a
// held volume key never falls through to the page between commits.
func (d *Dispatcher) changeVolume(increase bool) bool {
	v, ok, err := d.tryChangeVolume(increase)
	if errors.Is(err, player.ErrNoPlayer) {
		return false
	}
	if ok {
		d.notifier.Notify("Volume", fmt.Sprintf("%d%%", int(math.Round(v*100))))
	}
	return true
}

// tryChangeVolume commits a single volume step unless one was already
// committed within the throttle window. Returns the new volume when a
// change was made.
func (d *Dispatcher) tryChangeVolume(increase bool) (float64, bool, error) {
	d.volumeMu.Lock()
	defer d.volumeMu.Unlock()

	now := d.now()
	if now.Sub(d.lastVolumeSet) < volumeInterval {
		return 0, false, nil
	}
	v, err := d.host.Volume()
	if err != nil {
		if !errors.Is(err, player.ErrNoPlayer) {
			log.Printf("[dispatch] volume: %v", err)
		}
		return 0, false, err
	}
	if increase {
		v += volumeStep
	} else {
		v -= volumeStep
	}
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	if err := d.host.SetVolume(v); err != nil {
		log.Printf("[dispatch] set volume: %v", err)
		return 0, false, err
	}
	d.lastVolumeSet = now
	return v, true, nil
}

func (d *Dispatcher) toggleMute() bool {
	if d.mute == player.NativeToggle {
		if t, ok := d.host.(player.MuteToggler); ok {
			return d.call("toggle mute", func() error {
				if err := t.ToggleMute(); err != nil {
					return err
				}
				d.notifier.Notify("Playback", "Mute toggled")
				return nil
			})
		}
	}

	// Volume fallback: volume > 0 counts as unmuted. Snap to zero, or
	// back to the fixed restore level.
	v, err := d.host.Volume()
	if err != nil {
		if errors.Is(err, player.ErrNoPlayer) {
			return false // nothing to mute
		}
		log.Printf("[dispatch] volume: %v", err)
		return true
	}
	if v > 0 {
		if err := d.host.SetVolume(0); err != nil {
			log.Printf("[dispatch] set volume: %v", err)
			return true
		}
		d.notifier.Notify("Playback", "Muted")
	} else {
		if err := d.host.SetVolume(fallbackVolume); err != nil {
			log.Printf("[dispatch] set volume: %v", err)
			return true
		}
		d.notifier.Notify("Playback", "Unmuted")
	}
	return true
}
