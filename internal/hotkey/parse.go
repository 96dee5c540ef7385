package hotkey

import (
	"fmt"
	"strings"

	"golang.design/x/hotkey"
)

// ParseModifiers converts string modifier names to hotkey.Modifier
// values. The modMap variable is defined in the platform-specific
// modifiers_*.go files.
func ParseModifiers(names []string) ([]hotkey.Modifier, error) {
	var mods []hotkey.Modifier
	for _, name := range names {
		m, ok := modMap[strings.ToLower(name)]
		if !ok {
			return nil, fmt.Errorf("unknown modifier: %q (available: ctrl, shift, alt, super)", name)
		}
		mods = append(mods, m)
	}
	return mods, nil
}

// ParseKey converts a string key name to a hotkey.Key value. The
// keyMap variable is defined in keys.go and is shared across
// platforms.
func ParseKey(name string) (hotkey.Key, error) {
	k, ok := keyMap[strings.ToLower(name)]
	if !ok {
		return 0, fmt.Errorf("unknown key: %q", name)
	}
	return k, nil
}
