// Package config handles loading and saving the playkeys configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Config holds the application configuration. The single-key table is
// compiled in (see internal/keymap); only the global hotkey combos and
// a few switches are configurable.
type Config struct {
	mu            sync.RWMutex            `json:"-"`
	Player        string                  `json:"player"` // bus-name filter, "" = first player found
	Hotkeys       map[string]HotkeyConfig `json:"hotkeys"`
	Notifications bool                    `json:"notifications"`
	AutoStart     bool                    `json:"auto_start"`
}

// HotkeyConfig defines a global hotkey combo.
type HotkeyConfig struct {
	Modifiers []string `json:"modifiers"` // "ctrl", "shift", "alt", "super"
	Key       string   `json:"key"`       // "space", "right", "f5", etc.
}

// String returns a human-readable representation like "Ctrl+Alt+Space".
func (h HotkeyConfig) String() string {
	s := ""
	for _, m := range h.Modifiers {
		switch m {
		case "ctrl":
			s += "Ctrl+"
		case "shift":
			s += "Shift+"
		case "alt":
			s += "Alt+"
		case "super":
			s += "Super+"
		}
	}
	if len(h.Key) == 1 && h.Key[0] >= 'a' && h.Key[0] <= 'z' {
		s += string(h.Key[0] - 32) // uppercase single letter
	} else {
		s += h.Key
	}
	return s
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Hotkeys: map[string]HotkeyConfig{
			"play-pause":  {Modifiers: []string{"ctrl", "alt"}, Key: "space"},
			"next":        {Modifiers: []string{"ctrl", "alt"}, Key: "right"},
			"previous":    {Modifiers: []string{"ctrl", "alt"}, Key: "left"},
			"volume-up":   {Modifiers: []string{"ctrl", "alt"}, Key: "up"},
			"volume-down": {Modifiers: []string{"ctrl", "alt"}, Key: "down"},
		},
		Notifications: true,
	}
}

// Dir returns the OS-appropriate config directory for playkeys.
func Dir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("user config dir: %w", err)
	}
	return filepath.Join(base, "playkeys"), nil
}

// Path returns the full path to the config file.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config from disk. If the file doesn't exist, it
// creates a default config and saves it.
func Load() (*Config, error) {
	p, err := Path()
	if err != nil {
		return nil, err
	}
	return loadFrom(p)
}

func loadFrom(p string) (*Config, error) {
	data, err := os.ReadFile(p)
	if os.IsNotExist(err) {
		cfg := DefaultConfig()
		if saveErr := cfg.saveTo(p); saveErr != nil {
			return nil, fmt.Errorf("create default config: %w", saveErr)
		}
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := DefaultConfig() // start with defaults so new fields get populated
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Save writes the config to disk atomically (write temp, rename).
func (c *Config) Save() error {
	p, err := Path()
	if err != nil {
		return err
	}
	return c.saveTo(p)
}

func (c *Config) saveTo(p string) error {
	c.mu.RLock()
	data, err := json.MarshalIndent(c, "", "  ")
	c.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	tmp := p + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp config: %w", err)
	}
	if err := os.Rename(tmp, p); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename config: %w", err)
	}
	return nil
}

// GetPlayer returns the bus-name filter.
func (c *Config) GetPlayer() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.Player
}

// GetHotkeys returns a copy of the global hotkey combos keyed by
// action name.
func (c *Config) GetHotkeys() map[string]HotkeyConfig {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]HotkeyConfig, len(c.Hotkeys))
	for name, hk := range c.Hotkeys {
		mods := make([]string, len(hk.Modifiers))
		copy(mods, hk.Modifiers)
		out[name] = HotkeyConfig{Modifiers: mods, Key: hk.Key}
	}
	return out
}

// SetHotkey updates one global hotkey combo and saves to disk.
func (c *Config) SetHotkey(action string, mods []string, key string) error {
	c.mu.Lock()
	if c.Hotkeys == nil {
		c.Hotkeys = make(map[string]HotkeyConfig)
	}
	c.Hotkeys[action] = HotkeyConfig{Modifiers: mods, Key: key}
	c.mu.Unlock()
	return c.Save()
}

// GetNotifications returns whether notifications are enabled.
func (c *Config) GetNotifications() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.Notifications
}

// GetAutoStart returns the current auto-start setting.
func (c *Config) GetAutoStart() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.AutoStart
}

// SetAutoStart updates the auto-start setting and saves to disk.
func (c *Config) SetAutoStart(enabled bool) error {
	c.mu.Lock()
	c.AutoStart = enabled
	c.mu.Unlock()
	return c.Save()
}
