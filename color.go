package paint

import (
	"image/color"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
)

// RGBA represents a color with red, green, blue, and alpha components.
// Each component is in the range [0, 1].
type RGBA struct {
	R, G, B, A float64
}

// Color converts RGBA to the standard color.Color interface.
func (c RGBA) Color() color.Color {
	return color.NRGBA{
		R: uint8(clamp255(c.R * 255)),
		G: uint8(clamp255(c.G * 255)),
		B: uint8(clamp255(c.B * 255)),
		A: uint8(clamp255(c.A * 255)),
	}
}

// FromColor converts a standard color.Color to RGBA.
func FromColor(c color.Color) RGBA {
	r, g, b, a := c.RGBA()
	return RGBA{
		R: float64(r) / 65535,
		G: float64(g) / 65535,
		B: float64(b) / 65535,
		A: float64(a) / 65535,
	}
}

// RGB creates an opaque color from RGB components.
func RGB(r, g, b float64) RGBA {
	return RGBA{R: r, G: g, B: b, A: 1.0}
}

// Common colors.
var (
	Black       = RGBA{0, 0, 0, 1}
	White       = RGBA{1, 1, 1, 1}
	Transparent = RGBA{0, 0, 0, 0}
)

// Hex creates a color from a hex string.
// Supports formats: "RGB", "RGBA", "RRGGBB", "RRGGBBAA".
func Hex(hex string) RGBA {
	if hex != "" && hex[0] == '#' {
		hex = hex[1:]
	}

	var r, g, b, a uint32 = 0, 0, 0, 255
	switch len(hex) {
	case 3:
		parseHex(hex[0:1]+hex[0:1], &r)
		parseHex(hex[1:2]+hex[1:2], &g)
		parseHex(hex[2:3]+hex[2:3], &b)
	case 4:
		parseHex(hex[0:1]+hex[0:1], &r)
		parseHex(hex[1:2]+hex[1:2], &g)
		parseHex(hex[2:3]+hex[2:3], &b)
		parseHex(hex[3:4]+hex[3:4], &a)
	case 6:
		parseHex(hex[0:2], &r)
		parseHex(hex[2:4], &g)
		parseHex(hex[4:6], &b)
	case 8:
		parseHex(hex[0:2], &r)
		parseHex(hex[2:4], &g)
		parseHex(hex[4:6], &b)
		parseHex(hex[6:8], &a)
	}

	return RGBA{
		R: float64(r) / 255,
		G: float64(g) / 255,
		B: float64(b) / 255,
		A: float64(a) / 255,
	}
}

// parseHex parses a two-character hex string into val.
// Invalid input leaves val at zero.
func parseHex(s string, val *uint32) {
	v, err := strconv.ParseUint(s, 16, 32)
	if err == nil {
		*val = uint32(v)
	}
}

// ParseColor resolves a CSS color string: hex ("#rrggbb"), functional
// ("rgb(r,g,b)", "rgba(r,g,b,a)"), the "transparent" keyword, or a named
// color ("rebeccapurple"). Unparseable input returns (Black, false) so
// callers can fall back without an error path; a bad color string should
// never abort a paint.
func ParseColor(s string) (RGBA, bool) {
	s = strings.TrimSpace(strings.ToLower(s))
	switch {
	case s == "":
		return Black, false
	case s == "transparent":
		return Transparent, true
	case s[0] == '#':
		return Hex(s), true
	case strings.HasPrefix(s, "rgb(") || strings.HasPrefix(s, "rgba("):
		return parseRGBFunc(s)
	}
	if c, ok := colornames.Map[s]; ok {
		return FromColor(c), true
	}
	return Black, false
}

// parseRGBFunc parses "rgb(r, g, b)" and "rgba(r, g, b, a)" with integer
// channels in [0, 255] and a fractional alpha in [0, 1].
func parseRGBFunc(s string) (RGBA, bool) {
	open := strings.IndexByte(s, '(')
	close := strings.LastIndexByte(s, ')')
	if open < 0 || close < open {
		return Black, false
	}
	parts := strings.Split(s[open+1:close], ",")
	if len(parts) != 3 && len(parts) != 4 {
		return Black, false
	}

	var chans [3]float64
	for i := range 3 {
		v, err := strconv.ParseFloat(strings.TrimSpace(parts[i]), 64)
		if err != nil {
			return Black, false
		}
		chans[i] = clamp255(v) / 255
	}
	alpha := 1.0
	if len(parts) == 4 {
		v, err := strconv.ParseFloat(strings.TrimSpace(parts[3]), 64)
		if err != nil {
			return Black, false
		}
		alpha = clamp01(v)
	}
	return RGBA{R: chans[0], G: chans[1], B: chans[2], A: alpha}, true
}

func clamp255(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 255 {
		return 255
	}
	return x
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
