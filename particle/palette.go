package particle

import "image/color"

// Palette returns n colors ramping from blue (index 0) to red (index n-1).
// A single-entry palette is pure red.
func Palette(n int) []color.RGBA {
	if n < 1 {
		return nil
	}
	if n == 1 {
		return []color.RGBA{{R: 255, A: 255}}
	}
	colors := make([]color.RGBA, n)
	for i := range colors {
		t := float64(i) / float64(n-1)
		colors[i] = color.RGBA{
			R: uint8(t * 255),
			B: uint8((1 - t) * 255),
			A: 255,
		}
	}
	return colors
}
