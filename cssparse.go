package paint

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/gogpu/paint/cache"
)

// Style strings repeat heavily across frames (every layer rebuild re-reads
// the same computed values), so parse results are memoized.
var (
	transformCache = cache.NewSharded[string, Transform](64, cache.StringHasher)
	blendModeCache = cache.NewSharded[string, CompositingMode](16, cache.StringHasher)
)

var (
	translateRe = regexp.MustCompile(`translate\(\s*(-?[\d.]+)(?:px)?\s*(?:,\s*(-?[\d.]+)(?:px)?\s*)?\)`)
	scaleRe     = regexp.MustCompile(`scale\(\s*(-?[\d.]+)\s*(?:,\s*(-?[\d.]+)\s*)?\)`)
	rotateRe    = regexp.MustCompile(`rotate\(\s*(-?[\d.]+)deg\s*\)`)
)

// ParseTransform parses a CSS transform value ("translate(10px, 20px)
// scale(2) rotate(45deg)") into a Transform. Functions the parser does not
// recognize are silently ignored; a value with no recognizable function
// yields the identity transform. Parsing never fails with an error.
func ParseTransform(value string) Transform {
	value = strings.TrimSpace(value)
	if value == "" || value == "none" {
		return IdentityTransform()
	}
	return transformCache.GetOrCreate(value, func() Transform {
		return parseTransform(value)
	})
}

func parseTransform(value string) Transform {
	t := IdentityTransform()

	if m := translateRe.FindStringSubmatch(value); m != nil {
		t.TranslateX = parseFloat(m[1], 0)
		if m[2] != "" {
			t.TranslateY = parseFloat(m[2], 0)
		}
	}
	if m := scaleRe.FindStringSubmatch(value); m != nil {
		t.ScaleX = parseFloat(m[1], 1)
		t.ScaleY = t.ScaleX // scale(x) is uniform
		if m[2] != "" {
			t.ScaleY = parseFloat(m[2], 1)
		}
	}
	if m := rotateRe.FindStringSubmatch(value); m != nil {
		t.Rotation = parseFloat(m[1], 0) * math.Pi / 180
	}

	return t
}

// ParseCompositingMode maps a CSS mix-blend-mode keyword to a
// CompositingMode. Unrecognized keywords default to ModeSourceOver.
func ParseCompositingMode(value string) CompositingMode {
	value = strings.TrimSpace(strings.ToLower(value))
	if value == "" || value == "normal" {
		return ModeSourceOver
	}
	return blendModeCache.GetOrCreate(value, func() CompositingMode {
		switch value {
		case "multiply":
			return ModeMultiply
		case "screen":
			return ModeScreen
		case "overlay":
			return ModeOverlay
		case "darken":
			return ModeDarken
		case "lighten":
			return ModeLighten
		default:
			return ModeSourceOver
		}
	})
}

// ParseOpacity parses a CSS opacity value, clamped to [0, 1].
// Empty or unparseable values yield 1 (fully opaque).
func ParseOpacity(value string) float64 {
	value = strings.TrimSpace(value)
	if value == "" {
		return 1
	}
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 1
	}
	return clamp01(v)
}

func parseFloat(s string, fallback float64) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fallback
	}
	return v
}
