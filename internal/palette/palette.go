// Package palette decides the terminal color tier and converts authored
// hex colors into the values the ANSI escape families expect.
package palette

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
)

// Mode indicates terminal color capability
type Mode uint8

const (
	None      Mode = iota // plain text, no escapes
	ANSI256               // xterm-256 palette
	TrueColor             // 24-bit RGB
)

func (m Mode) String() string {
	switch m {
	case ANSI256:
		return "256"
	case TrueColor:
		return "truecolor"
	default:
		return "none"
	}
}

// ParseMode maps a user-facing name to a Mode. The empty string, "auto" and
// "none" yield None, meaning no override; turning color off for "none" is
// left to the caller.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto", "none":
		return None, nil
	case "256", "ansi256", "256color":
		return ANSI256, nil
	case "truecolor", "24bit":
		return TrueColor, nil
	default:
		return None, fmt.Errorf("unknown color mode: %s", s)
	}
}

// Detect picks a color mode from the process environment.
func Detect(override Mode, enabled bool) Mode {
	return DetectEnv(os.Getenv, override, enabled)
}

// DetectEnv picks a color mode using getenv for COLORTERM and TERM.
// Disabled color always wins; an explicit override wins over the environment.
func DetectEnv(getenv func(string) string, override Mode, enabled bool) Mode {
	if !enabled {
		return None
	}
	if override == TrueColor || override == ANSI256 {
		return override
	}

	colorterm := strings.ToLower(getenv("COLORTERM"))
	if colorterm == "truecolor" || colorterm == "24bit" {
		return TrueColor
	}

	if strings.Contains(strings.ToLower(getenv("TERM")), "256color") {
		return ANSI256
	}

	return None
}

// RGB represents a 24-bit color
type RGB struct {
	R, G, B uint8
}

// ParseHex parses "#rgb" or "#rrggbb"; the leading '#' is optional.
func ParseHex(s string) (RGB, bool) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return RGB{}, false
	}

	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return RGB{}, false
	}
	return RGB{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, true
}

// Grayscale ramp: 232-255
const grayscaleStart = 232

// RGBTo256 converts RGB to an xterm-256 palette index.
// Pure grays use the grayscale ramp with 16 and 231 as the dark and light
// ends; everything else is quantized onto the 6x6x6 cube at 16 + 36r + 6g + b.
func RGBTo256(c RGB) uint8 {
	if c.R == c.G && c.G == c.B {
		switch {
		case c.R < 8:
			return 16
		case c.R > 248:
			return 231
		}
		step := math.RoundToEven(float64(int(c.R)-8) / 247 * 24)
		return uint8(grayscaleStart + int(step))
	}

	r := cubeLevel(c.R)
	g := cubeLevel(c.G)
	b := cubeLevel(c.B)
	return 16 + 36*r + 6*g + b
}

func cubeLevel(v uint8) uint8 {
	return uint8(math.RoundToEven(float64(v) / 255 * 5))
}
