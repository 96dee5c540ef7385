// Package mpris drives a media player over the org.mpris.MediaPlayer2
// D-Bus interfaces and keeps track of whether one is available.
package mpris

import (
	"fmt"
	"strings"
	"time"

	"github.com/godbus/dbus/v5"
)

const (
	busPrefix  = "org.mpris.MediaPlayer2."
	objectPath = dbus.ObjectPath("/org/mpris/MediaPlayer2")

	rootIface   = "org.mpris.MediaPlayer2"
	playerIface = "org.mpris.MediaPlayer2.Player"
	propsIface  = "org.freedesktop.DBus.Properties"
)

// Client controls a single MPRIS player on the session bus.
type Client struct {
	conn *dbus.Conn
	name string // full bus name, e.g. "org.mpris.MediaPlayer2.spotify"
}

// NewClient wraps an already-connected bus.
func NewClient(conn *dbus.Conn, name string) *Client {
	return &Client{conn: conn, name: name}
}

// Name returns the player's bus name.
func (c *Client) Name() string { return c.name }

func (c *Client) obj() dbus.BusObject {
	return c.conn.Object(c.name, objectPath)
}

func (c *Client) getProp(iface, prop string) (dbus.Variant, error) {
	v, err := c.obj().GetProperty(iface + "." + prop)
	if err != nil {
		return dbus.Variant{}, fmt.Errorf("get %s: %w", prop, err)
	}
	return v, nil
}

func (c *Client) command(name string) error {
	if call := c.obj().Call(playerIface+"."+name, 0); call.Err != nil {
		return fmt.Errorf("%s: %w", strings.ToLower(name), call.Err)
	}
	return nil
}

// Identity returns the player's human-readable name.
func (c *Client) Identity() (string, error) {
	v, err := c.getProp(rootIface, "Identity")
	if err != nil {
		return "", err
	}
	s, ok := v.Value().(string)
	if !ok {
		return "", fmt.Errorf("identity: unexpected type %T", v.Value())
	}
	return s, nil
}

func (c *Client) metadata() (map[string]dbus.Variant, error) {
	v, err := c.getProp(playerIface, "Metadata")
	if err != nil {
		return nil, err
	}
	m, ok := v.Value().(map[string]dbus.Variant)
	if !ok {
		return nil, fmt.Errorf("metadata: unexpected type %T", v.Value())
	}
	return m, nil
}

// Duration returns the length of the current track, or 0 when nothing
// is loaded.
func (c *Client) Duration() (time.Duration, error) {
	m, err := c.metadata()
	if err != nil {
		return 0, err
	}
	length, ok := m["mpris:length"]
	if !ok {
		return 0, nil
	}
	return microsToDuration(length.Value()), nil
}

// Position returns the current playback position.
func (c *Client) Position() (time.Duration, error) {
	v, err := c.getProp(playerIface, "Position")
	if err != nil {
		return 0, err
	}
	return microsToDuration(v.Value()), nil
}

// Seek jumps to an absolute position. MPRIS only exposes absolute
// seeking through SetPosition, which wants the current track id.
func (c *Client) Seek(pos time.Duration) error {
	m, err := c.metadata()
	if err != nil {
		return err
	}
	trackID, err := trackIDFrom(m)
	if err != nil {
		return err
	}
	call := c.obj().Call(playerIface+".SetPosition", 0, trackID, pos.Microseconds())
	if call.Err != nil {
		return fmt.Errorf("set position: %w", call.Err)
	}
	return nil
}

// Volume returns the player volume in [0, 1].
func (c *Client) Volume() (float64, error) {
	v, err := c.getProp(playerIface, "Volume")
	if err != nil {
		return 0, err
	}
	f, ok := v.Value().(float64)
	if !ok {
		return 0, fmt.Errorf("volume: unexpected type %T", v.Value())
	}
	return f, nil
}

// SetVolume sets the player volume.
func (c *Client) SetVolume(v float64) error {
	call := c.obj().Call(propsIface+".Set", 0, playerIface, "Volume", dbus.MakeVariant(v))
	if call.Err != nil {
		return fmt.Errorf("set volume: %w", call.Err)
	}
	return nil
}

// Toggle flips between playing and paused.
func (c *Client) Toggle() error { return c.command("PlayPause") }

// Next skips to the next track.
func (c *Client) Next() error { return c.command("Next") }

// Previous skips to the previous track.
func (c *Client) Previous() error { return c.command("Previous") }

func trackIDFrom(metadata map[string]dbus.Variant) (dbus.ObjectPath, error) {
	v, ok := metadata["mpris:trackid"]
	if !ok {
		return "", fmt.Errorf("seek: no track loaded")
	}
	switch id := v.Value().(type) {
	case dbus.ObjectPath:
		return id, nil
	case string:
		// Some players report the track id as a plain string.
		return dbus.ObjectPath(id), nil
	default:
		return "", fmt.Errorf("seek: unexpected trackid type %T", v.Value())
	}
}

// microsToDuration converts an MPRIS microsecond value. Players are
// not consistent about the numeric type they report.
func microsToDuration(v any) time.Duration {
	switch n := v.(type) {
	case int64:
		return time.Duration(n) * time.Microsecond
	case uint64:
		return time.Duration(n) * time.Microsecond
	case int32:
		return time.Duration(n) * time.Microsecond
	case uint32:
		return time.Duration(n) * time.Microsecond
	case int:
		return time.Duration(n) * time.Microsecond
	case float64:
		return time.Duration(n * float64(time.Microsecond))
	default:
		return 0
	}
}
