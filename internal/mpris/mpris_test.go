package mpris

import (
	"errors"
	"testing"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"playkeys/internal/player"
)

func TestMatchPlayer(t *testing.T) {
	names := []string{
		"org.freedesktop.DBus",
		":1.42",
		"org.mpris.MediaPlayer2.spotify",
		"org.mpris.MediaPlayer2.vlc.instance123",
	}

	got, ok := matchPlayer(names, "")
	require.True(t, ok)
	assert.Equal(t, "org.mpris.MediaPlayer2.spotify", got)

	got, ok = matchPlayer(names, "VLC")
	require.True(t, ok)
	assert.Equal(t, "org.mpris.MediaPlayer2.vlc.instance123", got)

	_, ok = matchPlayer(names, "mpv")
	assert.False(t, ok)

	_, ok = matchPlayer([]string{"org.freedesktop.DBus"}, "")
	assert.False(t, ok)
}

func TestMicrosToDuration(t *testing.T) {
	assert.Equal(t, 3*time.Second, microsToDuration(int64(3_000_000)))
	assert.Equal(t, 3*time.Second, microsToDuration(uint64(3_000_000)))
	assert.Equal(t, time.Millisecond, microsToDuration(int32(1000)))
	assert.Equal(t, 1500*time.Millisecond, microsToDuration(float64(1_500_000)))
	assert.Equal(t, time.Duration(0), microsToDuration("bogus"))
	assert.Equal(t, time.Duration(0), microsToDuration(nil))
}

func TestTrackIDFrom(t *testing.T) {
	id, err := trackIDFrom(map[string]dbus.Variant{
		"mpris:trackid": dbus.MakeVariant(dbus.ObjectPath("/org/mpris/MediaPlayer2/Track/7")),
	})
	require.NoError(t, err)
	assert.Equal(t, dbus.ObjectPath("/org/mpris/MediaPlayer2/Track/7"), id)

	id, err = trackIDFrom(map[string]dbus.Variant{
		"mpris:trackid": dbus.MakeVariant("/track/as/string"),
	})
	require.NoError(t, err)
	assert.Equal(t, dbus.ObjectPath("/track/as/string"), id)

	_, err = trackIDFrom(map[string]dbus.Variant{})
	assert.Error(t, err)

	_, err = trackIDFrom(map[string]dbus.Variant{
		"mpris:trackid": dbus.MakeVariant(int64(12)),
	})
	assert.Error(t, err)
}

// stubBusClient is a canned player attached to a bus name.
type stubBusClient struct {
	name        string
	identity    string
	identityErr error
	duration    time.Duration
}

func (c *stubBusClient) Name() string                     { return c.name }
func (c *stubBusClient) Identity() (string, error)        { return c.identity, c.identityErr }
func (c *stubBusClient) Duration() (time.Duration, error) { return c.duration, nil }
func (c *stubBusClient) Position() (time.Duration, error) { return 0, nil }
func (c *stubBusClient) Seek(time.Duration) error         { return nil }
func (c *stubBusClient) Volume() (float64, error)         { return 0.5, nil }
func (c *stubBusClient) SetVolume(float64) error          { return nil }
func (c *stubBusClient) Toggle() error                    { return nil }
func (c *stubBusClient) Next() error                      { return nil }
func (c *stubBusClient) Previous() error                  { return nil }

// stubBus serves a mutable name list so tests can script players
// appearing and quitting.
type stubBus struct {
	names   []string
	owners  map[string]bool
	clients map[string]*stubBusClient
	listErr error
}

func (b *stubBus) ListNames() ([]string, error) { return b.names, b.listErr }
func (b *stubBus) NameHasOwner(name string) (bool, error) {
	return b.owners[name], nil
}
func (b *stubBus) Client(name string) busClient {
	if c, ok := b.clients[name]; ok {
		return c
	}
	return &stubBusClient{name: name, identity: name}
}

type stateEvent struct {
	state    State
	identity string
}

func TestMonitor_ConnectLoseReconnect(t *testing.T) {
	const vlc = "org.mpris.MediaPlayer2.vlc"

	b := &stubBus{
		names:  []string{"org.freedesktop.DBus", ":1.7"},
		owners: map[string]bool{},
		clients: map[string]*stubBusClient{
			vlc: {name: vlc, identity: "VLC media player", duration: 90 * time.Second},
		},
	}
	var events []stateEvent
	m := NewMonitor("", func(s State, identity string) {
		events = append(events, stateEvent{s, identity})
	})
	m.conn = b

	// No player on the bus: stays disconnected, no callback fires.
	m.tryConnect()
	assert.Equal(t, NoPlayer, m.State())
	assert.Empty(t, events)

	// A player shows up.
	b.names = append(b.names, vlc)
	b.owners[vlc] = true
	m.tryConnect()
	assert.Equal(t, Connected, m.State())
	assert.Equal(t, "VLC media player", m.Identity())
	require.Equal(t, []stateEvent{{Connected, "VLC media player"}}, events)

	// Host calls reach the attached client now.
	dur, err := m.Duration()
	require.NoError(t, err)
	assert.Equal(t, 90*time.Second, dur)

	// Health check while the name is still owned: no transition.
	m.healthCheck()
	assert.Equal(t, Connected, m.State())
	require.Len(t, events, 1)

	// The player quits.
	b.owners[vlc] = false
	m.healthCheck()
	assert.Equal(t, NoPlayer, m.State())
	assert.Equal(t, "", m.Identity())
	require.Equal(t, []stateEvent{
		{Connected, "VLC media player"},
		{NoPlayer, ""},
	}, events)
	_, err = m.Duration()
	assert.True(t, errors.Is(err, player.ErrNoPlayer))

	// And comes back on the next poll.
	b.owners[vlc] = true
	m.tryConnect()
	assert.Equal(t, Connected, m.State())
	require.Len(t, events, 3)
	assert.Equal(t, stateEvent{Connected, "VLC media player"}, events[2])
}

func TestMonitor_ListNamesErrorKeepsRetrying(t *testing.T) {
	b := &stubBus{listErr: errors.New("bus gone")}
	var calls int
	m := NewMonitor("", func(State, string) { calls++ })
	m.conn = b

	m.tryConnect()
	assert.Equal(t, NoPlayer, m.State())
	assert.Zero(t, calls)

	// The bus recovers.
	b.listErr = nil
	b.names = []string{"org.mpris.MediaPlayer2.mpv"}
	m.tryConnect()
	assert.Equal(t, Connected, m.State())
	assert.Equal(t, 1, calls)
}

func TestMonitor_IdentityFallsBackToBusName(t *testing.T) {
	const name = "org.mpris.MediaPlayer2.spotify"
	b := &stubBus{
		names: []string{name},
		clients: map[string]*stubBusClient{
			name: {name: name, identityErr: errors.New("no reply")},
		},
	}
	m := NewMonitor("", nil)
	m.conn = b

	m.tryConnect()
	assert.Equal(t, Connected, m.State())
	assert.Equal(t, "spotify", m.Identity())
}

func TestMonitor_FilterSkipsOtherPlayers(t *testing.T) {
	b := &stubBus{names: []string{"org.mpris.MediaPlayer2.spotify"}}
	m := NewMonitor("vlc", nil)
	m.conn = b

	m.tryConnect()
	assert.Equal(t, NoPlayer, m.State())

	b.names = append(b.names, "org.mpris.MediaPlayer2.vlc")
	m.tryConnect()
	assert.Equal(t, Connected, m.State())
	assert.Equal(t, "vlc", m.Identity())
}

func TestMonitor_HostCallsWhileDisconnected(t *testing.T) {
	m := NewMonitor("", nil)

	_, err := m.Duration()
	assert.True(t, errors.Is(err, player.ErrNoPlayer))
	_, err = m.Position()
	assert.True(t, errors.Is(err, player.ErrNoPlayer))
	_, err = m.Volume()
	assert.True(t, errors.Is(err, player.ErrNoPlayer))
	assert.True(t, errors.Is(m.Seek(time.Second), player.ErrNoPlayer))
	assert.True(t, errors.Is(m.SetVolume(0.5), player.ErrNoPlayer))
	assert.True(t, errors.Is(m.Toggle(), player.ErrNoPlayer))
	assert.True(t, errors.Is(m.Next(), player.ErrNoPlayer))
	assert.True(t, errors.Is(m.Previous(), player.ErrNoPlayer))

	assert.Equal(t, NoPlayer, m.State())
	assert.Equal(t, "", m.Identity())
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "no player", NoPlayer.String())
	assert.Equal(t, "connected", Connected.String())
	assert.Equal(t, "unknown", State(9).String())
}
