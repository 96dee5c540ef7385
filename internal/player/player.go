// Package player defines the contract for the external playback host.
// The host owns all playback state; nothing here caches or mirrors it.
package player

import (
	"errors"
	"time"
)

// ErrNoPlayer is returned by host calls while no media player is
// reachable.
var ErrNoPlayer = errors.New("no media player available")

// Host is the external playback control surface.
type Host interface {
	// Duration returns the length of the current track, 0 when nothing
	// is loaded.
	Duration() (time.Duration, error)
	// Position returns the current playback position.
	Position() (time.Duration, error)
	// Seek jumps to an absolute position.
	Seek(pos time.Duration) error
	// Volume returns the current volume in [0, 1].
	Volume() (float64, error)
	// SetVolume sets the volume, expected to be in [0, 1].
	SetVolume(v float64) error
	// Toggle flips between playing and paused.
	Toggle() error
	Next() error
	Previous() error
}

// MuteToggler is an optional host capability. Hosts without it get the
// volume-based mute fallback.
type MuteToggler interface {
	ToggleMute() error
}

// MuteStrategy selects how the mute action is carried out. It is
// resolved once at startup, not re-checked per keypress.
type MuteStrategy int

const (
	// NativeToggle uses the host's own mute primitive.
	NativeToggle MuteStrategy = iota
	// VolumeFallback snaps the volume to zero and back to a fixed
	// restore level. Lossy: the pre-mute volume is not preserved.
	VolumeFallback
)

func (s MuteStrategy) String() string {
	switch s {
	case NativeToggle:
		return "native toggle"
	case VolumeFallback:
		return "volume fallback"
	default:
		return "unknown"
	}
}

// DetectMuteStrategy resolves the host's mute capability.
func DetectMuteStrategy(h Host) MuteStrategy {
	if _, ok := h.(MuteToggler); ok {
		return NativeToggle
	}
	return VolumeFallback
}
