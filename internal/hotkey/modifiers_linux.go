//go:build linux

package hotkey

import "golang.design/x/hotkey"

// X11 modifier masks: alt is Mod1, super is Mod4.
var modMap = map[string]hotkey.Modifier{
	"ctrl":  hotkey.ModCtrl,
	"shift": hotkey.ModShift,
	"alt":   hotkey.Mod1,
	"super": hotkey.Mod4,
}
