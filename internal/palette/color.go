// Package palette derives consistent fill, stroke and text colors from a single
// base hex color and hands out default colors for new departments and roles.
package palette

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Text colors returned by ContrastingText.
const (
	DarkText  = "#111827"
	LightText = "#ffffff"
)

// Neutral is the stroke used for nodes without a department or role.
const Neutral = "#64748b"

const luminanceThreshold = 0.55

// Colors is a fill/stroke/text triple for one visual element.
type Colors struct {
	Fill   string
	Stroke string
	Text   string
}

type rgb struct {
	r, g, b uint8
}

// NormalizeHex returns hex as a lowercase "#rrggbb" string. Three-digit
// shorthand is expanded; anything else yields fallback.
func NormalizeHex(hex, fallback string) string {
	c, ok := parseHex(hex)
	if !ok {
		return fallback
	}
	return c.String()
}

// Valid reports whether hex is a 3 or 6 digit hex color, with or without "#".
func Valid(hex string) bool {
	_, ok := parseHex(hex)
	return ok
}

func parseHex(hex string) (rgb, bool) {
	h := strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 {
		return rgb{}, false
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return rgb{}, false
	}
	return rgb{r: uint8(v >> 16), g: uint8(v >> 8), b: uint8(v)}, true
}

func (c rgb) String() string {
	return fmt.Sprintf("#%02x%02x%02x", c.r, c.g, c.b)
}

// Mix moves every channel of hex toward black (amount < 0) or white
// (amount > 0) by |amount|, clamped to [0,1]. Invalid input is treated as Neutral.
func Mix(hex string, amount float64) string {
	c, ok := parseHex(hex)
	if !ok {
		c, _ = parseHex(Neutral)
	}
	t := math.Min(math.Abs(amount), 1)
	target := 0.0
	if amount > 0 {
		target = 255
	}
	mix := func(v uint8) uint8 {
		return uint8(math.Round(float64(v) + (target-float64(v))*t))
	}
	return rgb{r: mix(c.r), g: mix(c.g), b: mix(c.b)}.String()
}

// Luminance returns the relative luminance of hex in [0,1].
func Luminance(hex string) float64 {
	c, ok := parseHex(hex)
	if !ok {
		c, _ = parseHex(Neutral)
	}
	return 0.2126*linear(c.r) + 0.7152*linear(c.g) + 0.0722*linear(c.b)
}

func linear(v uint8) float64 {
	c := float64(v) / 255
	if c <= 0.03928 {
		return c / 12.92
	}
	return math.Pow((c+0.055)/1.055, 2.4)
}

// ContrastingText returns DarkText on light backgrounds and LightText otherwise.
func ContrastingText(hex string) string {
	if Luminance(hex) > luminanceThreshold {
		return DarkText
	}
	return LightText
}

// LaneColors styles a department lane.
func LaneColors(base string) Colors {
	return Colors{Fill: base, Stroke: Mix(base, -0.35), Text: ContrastingText(base)}
}

// RoleNodeColors styles a step node tinted by its role.
func RoleNodeColors(base string) Colors {
	return Colors{Fill: base, Stroke: Mix(base, -0.45), Text: ContrastingText(base)}
}

// LaneTint is a light background derived from base.
func LaneTint(base string) string {
	return Mix(base, 0.85)
}
