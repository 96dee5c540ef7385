//go:build darwin

package hotkey

import "golang.design/x/hotkey"

// "alt" maps to Option, "super" to Command.
var modMap = map[string]hotkey.Modifier{
	"ctrl":  hotkey.ModCtrl,
	"shift": hotkey.ModShift,
	"alt":   hotkey.ModOption,
	"super": hotkey.ModCmd,
}
