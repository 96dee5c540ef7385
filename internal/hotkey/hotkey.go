// Package hotkey provides cross-platform global hotkey registration
// for the transport controls.
package hotkey

import (
	"context"
	"fmt"
	"log"
	"sync"

	"golang.design/x/hotkey"
)

// Manager owns one registered global hotkey and its press callback.
// Each binding gets its own manager so one failing registration never
// affects the others.
type Manager struct {
	mu      sync.Mutex
	name    string
	hk      *hotkey.Hotkey
	cancel  context.CancelFunc
	onPress func()
}

// NewManager creates a hotkey manager for the named action.
func NewManager(name string, onPress func()) *Manager {
	return &Manager{
		name:    name,
		onPress: onPress,
	}
}

// Register sets up a global hotkey with the given modifiers and key.
// If a hotkey is already registered, it is unregistered first.
func (m *Manager) Register(mods []string, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.unregisterLocked()

	parsedMods, err := ParseModifiers(mods)
	if err != nil {
		return fmt.Errorf("parse modifiers: %w", err)
	}
	parsedKey, err := ParseKey(key)
	if err != nil {
		return fmt.Errorf("parse key: %w", err)
	}

	hk := hotkey.New(parsedMods, parsedKey)
	if err := hk.Register(); err != nil {
		return fmt.Errorf("register hotkey: %w", err)
	}

	m.hk = hk

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	go m.listen(ctx, hk)

	log.Printf("[hotkey] %s registered: %v+%s", m.name, mods, key)
	return nil
}

// listen fires the press callback on every keydown. OS auto-repeat
// delivers repeated keydowns while the combo is held; the dispatcher's
// volume throttle keeps that from flooding the host.
func (m *Manager) listen(ctx context.Context, hk *hotkey.Hotkey) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-hk.Keydown():
			if m.onPress != nil {
				m.onPress()
			}
		}
	}
}

// Unregister removes the current global hotkey.
func (m *Manager) Unregister() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.unregisterLocked()
}

func (m *Manager) unregisterLocked() {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	if m.hk != nil {
		m.hk.Unregister()
		m.hk = nil
	}
}
