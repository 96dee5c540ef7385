package mpris

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/godbus/dbus/v5"

	"playkeys/internal/player"
)

// State represents the monitor's view of the host player.
type State int

const (
	NoPlayer State = iota
	Connected
)

func (s State) String() string {
	switch s {
	case NoPlayer:
		return "no player"
	case Connected:
		return "connected"
	default:
		return "unknown"
	}
}

// Fixed retry delay while no player is present.
const pollInterval = time.Second

// bus is the slice of session-bus operations the monitor uses.
type bus interface {
	ListNames() ([]string, error)
	NameHasOwner(name string) (bool, error)
	Client(name string) busClient
}

// busClient is a playback host attached to one bus name.
type busClient interface {
	player.Host
	Name() string
	Identity() (string, error)
}

// dbusBus adapts a live session-bus connection.
type dbusBus struct {
	conn *dbus.Conn
}

func (b dbusBus) ListNames() ([]string, error) {
	var names []string
	if err := b.conn.BusObject().Call("org.freedesktop.DBus.ListNames", 0).Store(&names); err != nil {
		return nil, fmt.Errorf("list names: %w", err)
	}
	return names, nil
}

func (b dbusBus) NameHasOwner(name string) (bool, error) {
	var has bool
	if err := b.conn.BusObject().Call("org.freedesktop.DBus.NameHasOwner", 0, name).Store(&has); err != nil {
		return false, fmt.Errorf("name has owner: %w", err)
	}
	return has, nil
}

func (b dbusBus) Client(name string) busClient {
	return NewClient(b.conn, name)
}

// Monitor finds an MPRIS player on the session bus, reconnects when it
// goes away, and exposes it as a playback host. While no player is
// present, every host call fails with player.ErrNoPlayer so handlers
// degrade to no-ops.
type Monitor struct {
	mu       sync.Mutex
	conn     bus
	client   busClient
	state    State
	identity string

	filter   string // optional substring match on the bus name
	onChange func(State, string)
}

// NewMonitor creates a monitor. filter narrows the search to bus names
// containing it ("" matches any player). onChange fires on every state
// transition with the player's identity.
func NewMonitor(filter string, onChange func(State, string)) *Monitor {
	return &Monitor{
		state:    NoPlayer,
		filter:   filter,
		onChange: onChange,
	}
}

// State returns the current connection state.
func (m *Monitor) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Identity returns the connected player's name, or "".
func (m *Monitor) Identity() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.identity
}

// Run polls the session bus until ctx is cancelled: every second it
// either looks for a player or health-checks the one it has. Never
// gives up; a player may appear at any time.
func (m *Monitor) Run(ctx context.Context) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	m.tryConnect()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if m.State() == Connected {
				m.healthCheck()
			} else {
				m.tryConnect()
			}
		}
	}
}

// tryConnect looks for an MPRIS bus name and attaches to the first
// match. Failures are silent; the next tick retries.
func (m *Monitor) tryConnect() {
	b, err := m.bus()
	if err != nil {
		return // bus not up yet
	}

	names, err := b.ListNames()
	if err != nil {
		log.Printf("[mpris] %v", err)
		return
	}
	name, ok := matchPlayer(names, m.filter)
	if !ok {
		return
	}

	client := b.Client(name)
	identity, err := client.Identity()
	if err != nil {
		identity = strings.TrimPrefix(name, busPrefix)
	}

	m.mu.Lock()
	m.client = client
	m.state = Connected
	m.identity = identity
	onChange := m.onChange
	m.mu.Unlock()

	log.Printf("[mpris] player found: %s (%s)", identity, name)
	if onChange != nil {
		onChange(Connected, identity)
	}
}

// healthCheck drops the client when its bus name has lost its owner.
func (m *Monitor) healthCheck() {
	m.mu.Lock()
	b, client := m.conn, m.client
	m.mu.Unlock()
	if b == nil || client == nil {
		return
	}

	has, err := b.NameHasOwner(client.Name())
	if err == nil && has {
		return
	}

	m.mu.Lock()
	m.client = nil
	m.state = NoPlayer
	m.identity = ""
	onChange := m.onChange
	m.mu.Unlock()

	log.Printf("[mpris] player gone: %s", client.Name())
	if onChange != nil {
		onChange(NoPlayer, "")
	}
}

func (m *Monitor) bus() (bus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.conn != nil {
		return m.conn, nil
	}
	conn, err := dbus.SessionBus()
	if err != nil {
		return nil, err
	}
	m.conn = dbusBus{conn: conn}
	return m.conn, nil
}

// matchPlayer returns the first MPRIS bus name, preferring those that
// contain the filter when one is set.
func matchPlayer(names []string, filter string) (string, bool) {
	filter = strings.ToLower(filter)
	for _, n := range names {
		if !strings.HasPrefix(n, busPrefix) {
			continue
		}
		if filter != "" && !strings.Contains(strings.ToLower(n), filter) {
			continue
		}
		return n, true
	}
	return "", false
}

func (m *Monitor) host() (player.Host, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.client == nil {
		return nil, player.ErrNoPlayer
	}
	return m.client, nil
}

// The monitor itself satisfies player.Host by delegating to whichever
// client is currently attached.

func (m *Monitor) Duration() (time.Duration, error) {
	h, err := m.host()
	if err != nil {
		return 0, err
	}
	return h.Duration()
}

func (m *Monitor) Position() (time.Duration, error) {
	h, err := m.host()
	if err != nil {
		return 0, err
	}
	return h.Position()
}

func (m *Monitor) Seek(pos time.Duration) error {
	h, err := m.host()
	if err != nil {
		return err
	}
	return h.Seek(pos)
}

func (m *Monitor) Volume() (float64, error) {
	h, err := m.host()
	if err != nil {
		return 0, err
	}
	return h.Volume()
}

func (m *Monitor) SetVolume(v float64) error {
	h, err := m.host()
	if err != nil {
		return err
	}
	return h.SetVolume(v)
}

func (m *Monitor) Toggle() error {
	h, err := m.host()
	if err != nil {
		return err
	}
	return h.Toggle()
}

func (m *Monitor) Next() error {
	h, err := m.host()
	if err != nil {
		return err
	}
	return h.Next()
}

func (m *Monitor) Previous() error {
	h, err := m.host()
	if err != nil {
		return err
	}
	return h.Previous()
}
