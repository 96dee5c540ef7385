package tray

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
)

// Tray icons, rendered once at startup instead of shipping binary
// assets: a filled disc whose color tracks the player state.
var (
	IconNoPlayer  = renderIcon(color.RGBA{R: 0x8a, G: 0x8a, B: 0x8a, A: 0xff})
	IconConnected = renderIcon(color.RGBA{R: 0x3d, G: 0xb5, B: 0x6d, A: 0xff})
)

const iconSize = 22

func renderIcon(c color.RGBA) []byte {
	img := image.NewRGBA(image.Rect(0, 0, iconSize, iconSize))

	center := float64(iconSize-1) / 2
	radius := float64(iconSize)/2 - 1.5
	for y := 0; y < iconSize; y++ {
		for x := 0; x < iconSize; x++ {
			dx := float64(x) - center
			dy := float64(y) - center
			if dx*dx+dy*dy <= radius*radius {
				img.SetRGBA(x, y, c)
			}
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		// Encoding an in-memory RGBA image cannot fail in practice.
		return nil
	}
	return buf.Bytes()
}
