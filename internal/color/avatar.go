// Package color derives the fallback swatch shown for users without an
// avatar image.
package color

import (
	"fmt"
	"hash/fnv"
)

// Only the hue varies per user. Saturation and lightness are pinned so
// every swatch stays readable behind white initials.
const (
	swatchSaturation = 0.4
	swatchLightness  = 0.65
)

// ForUser maps a user ID to a stable hex color. The same ID always yields
// the same color, so a user's fallback avatar never shifts between sessions.
func ForUser(userID string) string {
	d := fnv.New32a()
	d.Write([]byte(userID))
	hue := float64(d.Sum32() % 360)

	r, g, b := hslToRGB(hue, swatchSaturation, swatchLightness)
	return fmt.Sprintf("#%02X%02X%02X", r, g, b)
}

// hslToRGB converts an HSL triple (hue 0-360, saturation and lightness 0-1)
// to 8-bit RGB channels.
func hslToRGB(h, s, l float64) (r, g, b uint8) {
	h /= 360.0

	if s == 0 {
		gray := uint8(l * 255)
		return gray, gray, gray
	}

	q := l + s - l*s
	if l < 0.5 {
		q = l * (1 + s)
	}
	p := 2*l - q

	r = uint8(hueChannel(p, q, h+1.0/3.0) * 255)
	g = uint8(hueChannel(p, q, h) * 255)
	b = uint8(hueChannel(p, q, h-1.0/3.0) * 255)
	return r, g, b
}

func hueChannel(p, q, t float64) float64 {
	switch {
	case t < 0:
		t++
	case t > 1:
		t--
	}
	switch {
	case t < 1.0/6.0:
		return p + (q-p)*6*t
	case t < 1.0/2.0:
		return q
	case t < 2.0/3.0:
		return p + (q-p)*(2.0/3.0-t)*6
	default:
		return p
	}
}
