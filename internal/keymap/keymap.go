// Package keymap defines the playback actions, the key table that
// triggers them, and key-label normalization for browser key events.
package keymap

import (
	"fmt"
	"strings"
)

// Action identifies one playback control.
type Action int

const (
	PlayPause Action = iota
	ToggleMute
	SeekBack         // -5s
	SeekForward      // +5s
	SeekBackLarge    // -10s
	SeekForwardLarge // +10s
	VolumeUp
	VolumeDown
	NextTrack
	PrevTrack
	PercentJump // digit keys, jump to digit/10 of the track
)

var actionNames = map[Action]string{
	PlayPause:        "play-pause",
	ToggleMute:       "mute",
	SeekBack:         "seek-back",
	SeekForward:      "seek-forward",
	SeekBackLarge:    "seek-back-large",
	SeekForwardLarge: "seek-forward-large",
	VolumeUp:         "volume-up",
	VolumeDown:       "volume-down",
	NextTrack:        "next",
	PrevTrack:        "previous",
	PercentJump:      "percent-jump",
}

func (a Action) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return "unknown"
}

// ActionByName returns the action for a config-facing name like
// "play-pause".
func ActionByName(name string) (Action, bool) {
	for a, n := range actionNames {
		if n == name {
			return a, true
		}
	}
	return 0, false
}

// Binding maps a key (plus optional shift) to a playback action.
// Bindings are defined once at startup and never mutated.
type Binding struct {
	Action Action `json:"-"`
	Key    string `json:"key"`
	Shift  bool   `json:"shift,omitempty"`
}

// Chord is a normalized key plus its shift state. Each chord may carry
// at most one binding.
type Chord struct {
	Key   string
	Shift bool
}

func (c Chord) String() string {
	if c.Shift {
		return "shift+" + c.Key
	}
	return c.Key
}

// Default returns the built-in key table.
func Default() []Binding {
	b := []Binding{
		{Action: PlayPause, Key: "k"},
		{Action: ToggleMute, Key: "m"},
		{Action: SeekBack, Key: "left"},
		{Action: SeekForward, Key: "right"},
		{Action: SeekBackLarge, Key: "j"},
		{Action: SeekForwardLarge, Key: "l"},
		{Action: VolumeUp, Key: "up"},
		{Action: VolumeDown, Key: "down"},
		{Action: NextTrack, Key: "n", Shift: true},
		{Action: PrevTrack, Key: "p", Shift: true},
	}
	for d := '0'; d <= '9'; d++ {
		b = append(b, Binding{Action: PercentJump, Key: string(d)})
	}
	return b
}

// Table builds the chord lookup table, rejecting duplicate
// (key, shift) pairs.
func Table(bindings []Binding) (map[Chord]Action, error) {
	table := make(map[Chord]Action, len(bindings))
	for _, b := range bindings {
		chord := Chord{Key: Normalize(b.Key), Shift: b.Shift}
		if prev, ok := table[chord]; ok {
			return nil, fmt.Errorf("duplicate binding for %s: %s and %s", chord, prev, b.Action)
		}
		table[chord] = b.Action
	}
	return table, nil
}

// aliases folds browser key labels onto canonical names.
var aliases = map[string]string{
	"arrowleft":  "left",
	"arrowright": "right",
	"arrowup":    "up",
	"arrowdown":  "down",
	" ":          "space",
	"spacebar":   "space",
	"esc":        "escape",
	"enter":      "return",
}

// Normalize lower-cases a key label and resolves browser aliases.
// Canonical names pass through unchanged.
func Normalize(label string) string {
	key := strings.ToLower(label)
	if canonical, ok := aliases[key]; ok {
		return canonical
	}
	return key
}

// FromCode converts a JavaScript event.code to a canonical key name,
// e.g. "KeyK" → "k", "Digit5" → "5", "ArrowLeft" → "left".
func FromCode(jsCode string) (string, error) {
	name, ok := codeToName[jsCode]
	if !ok {
		return "", fmt.Errorf("unsupported key code: %q", jsCode)
	}
	return name, nil
}

var codeToName = map[string]string{
	"KeyA": "a", "KeyB": "b", "KeyC": "c", "KeyD": "d",
	"KeyE": "e", "KeyF": "f", "KeyG": "g", "KeyH": "h",
	"KeyI": "i", "KeyJ": "j", "KeyK": "k", "KeyL": "l",
	"KeyM": "m", "KeyN": "n", "KeyO": "o", "KeyP": "p",
	"KeyQ": "q", "KeyR": "r", "KeyS": "s", "KeyT": "t",
	"KeyU": "u", "KeyV": "v", "KeyW": "w", "KeyX": "x",
	"KeyY": "y", "KeyZ": "z",
	"Digit0": "0", "Digit1": "1", "Digit2": "2", "Digit3": "3",
	"Digit4": "4", "Digit5": "5", "Digit6": "6", "Digit7": "7",
	"Digit8": "8", "Digit9": "9",
	"F1": "f1", "F2": "f2", "F3": "f3", "F4": "f4",
	"F5": "f5", "F6": "f6", "F7": "f7", "F8": "f8",
	"F9": "f9", "F10": "f10", "F11": "f11", "F12": "f12",
	"Space": "space", "Enter": "return", "Escape": "escape",
	"Backspace": "delete", "Tab": "tab",
	"ArrowUp": "up", "ArrowDown": "down",
	"ArrowLeft": "left", "ArrowRight": "right",
}
