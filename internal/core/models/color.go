package models

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Color is a display colour. The engine passes it through untouched.
type Color struct {
	R, G, B uint8
}

// String renders the colour as #rrggbb.
func (c Color) String() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// ParseColor parses #rrggbb (the leading # is optional).
func ParseColor(s string) (Color, error) {
	var c Color
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		return c, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return c, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	c.R, c.G, c.B = uint8(v>>16), uint8(v>>8), uint8(v)
	return c, nil
}

// ColorFromName derives a stable colour from a robot name. Each channel is
// kept in the upper half of its range so robots stay visible on a dark arena.
func ColorFromName(name string) Color {
	h := xxhash.Sum64String(name)
	return Color{
		R: uint8(h) | 0x80,
		G: uint8(h>>8) | 0x80,
		B: uint8(h>>16) | 0x80,
	}
}

func (c Color) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

func (c *Color) UnmarshalText(text []byte) error {
	parsed, err := ParseColor(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
