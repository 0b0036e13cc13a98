package palette

import (
	"fmt"
	"math"
)

// RGB - 8-bit color channels
type RGB struct {
	R int
	G int
	B int
}

// HSL - hue 0-360, saturation/lightness 0-100
type HSL struct {
	H float64
	S float64
	L float64
}

func clamp(value, min, max float64) float64 {
	return math.Max(min, math.Min(max, value))
}

// RGBToHex - "#RRGGBB" upper-case
func RGBToHex(c RGB) string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

// RGBToHSL - convert 8-bit RGB to HSL
func RGBToHSL(c RGB) HSL {
	rn := float64(c.R) / 255
	gn := float64(c.G) / 255
	bn := float64(c.B) / 255

	max := math.Max(rn, math.Max(gn, bn))
	min := math.Min(rn, math.Min(gn, bn))

	l := (max + min) / 2
	d := max - min

	var h, s float64
	if d != 0 {
		if l > 0.5 {
			s = d / (2 - max - min)
		} else {
			s = d / (max + min)
		}

		switch max {
		case rn:
			h = (gn - bn) / d
			if gn < bn {
				h += 6
			}
		case gn:
			h = (bn-rn)/d + 2
		default:
			h = (rn-gn)/d + 4
		}
		h /= 6
	}

	return HSL{H: h * 360, S: s * 100, L: l * 100}
}

// HSLToRGB - convert HSL back to 8-bit RGB
func HSLToRGB(c HSL) RGB {
	h := clamp(c.H, 0, 360) / 360
	s := clamp(c.S, 0, 100) / 100
	l := clamp(c.L, 0, 100) / 100

	if s == 0 {
		v := int(math.Round(l * 255))
		return RGB{R: v, G: v, B: v}
	}

	var q float64
	if l < 0.5 {
		q = l * (1 + s)
	} else {
		q = l + s - l*s
	}
	p := 2*l - q

	hue2rgb := func(t float64) float64 {
		if t < 0 {
			t++
		}
		if t > 1 {
			t--
		}
		switch {
		case t < 1.0/6:
			return p + (q-p)*6*t
		case t < 1.0/2:
			return q
		case t < 2.0/3:
			return p + (q-p)*(2.0/3-t)*6
		default:
			return p
		}
	}

	return RGB{
		R: int(math.Round(hue2rgb(h+1.0/3) * 255)),
		G: int(math.Round(hue2rgb(h) * 255)),
		B: int(math.Round(hue2rgb(h-1.0/3) * 255)),
	}
}

// ComplementaryColor - rotate hue 180° and nudge lightness
func ComplementaryColor(c RGB, lightnessAdjust float64) RGB {
	hsl := RGBToHSL(c)
	h := math.Mod(hsl.H+180, 360)
	l := clamp(hsl.L+lightnessAdjust, 0, 100)
	return HSLToRGB(HSL{H: h, S: hsl.S, L: l})
}
