package flatten

import (
	"fmt"
	"strconv"
	"strings"
)

// ColorF is a non-premultiplied RGBA color with float components in [0, 1].
type ColorF struct {
	R, G, B, A float32
}

// Common colors.
var (
	Transparent = ColorF{}
	Black       = ColorF{A: 1}
	White       = ColorF{R: 1, G: 1, B: 1, A: 1}
)

// IsTransparent reports whether the color has zero alpha.
func (c ColorF) IsTransparent() bool {
	return c.A <= 0
}

// IsOpaque reports whether the color has full alpha.
func (c ColorF) IsOpaque() bool {
	return c.A >= 1
}

// ScaleAlpha returns c with its alpha multiplied by f.
func (c ColorF) ScaleAlpha(f float32) ColorF {
	c.A *= f
	return c
}

// String formats the color as rgba(r, g, b, a).
func (c ColorF) String() string {
	return fmt.Sprintf("rgba(%g, %g, %g, %g)", c.R, c.G, c.B, c.A)
}

var namedColors = map[string]ColorF{
	"transparent": Transparent,
	"black":       Black,
	"white":       White,
	"red":         {R: 1, A: 1},
	"green":       {G: 1, A: 1},
	"blue":        {B: 1, A: 1},
	"yellow":      {R: 1, G: 1, A: 1},
	"cyan":        {G: 1, B: 1, A: 1},
	"magenta":     {R: 1, B: 1, A: 1},
}

// ParseColor parses a named color ("red"), a hex color ("#rgb", "#rrggbb",
// "#rrggbbaa") or a space separated component list ("1 0 0 0.5").
func ParseColor(s string) (ColorF, error) {
	s = strings.TrimSpace(s)
	if c, ok := namedColors[strings.ToLower(s)]; ok {
		return c, nil
	}
	if strings.HasPrefix(s, "#") {
		return parseHexColor(s[1:])
	}
	fields := strings.Fields(s)
	if len(fields) != 3 && len(fields) != 4 {
		return ColorF{}, fmt.Errorf("flatten: invalid color %q", s)
	}
	comps := [4]float32{0, 0, 0, 1}
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 32)
		if err != nil {
			return ColorF{}, fmt.Errorf("flatten: invalid color %q: %w", s, err)
		}
		comps[i] = float32(v)
	}
	return ColorF{R: comps[0], G: comps[1], B: comps[2], A: comps[3]}, nil
}

func parseHexColor(h string) (ColorF, error) {
	switch len(h) {
	case 3:
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]}) + "ff"
	case 6:
		h += "ff"
	case 8:
	default:
		return ColorF{}, fmt.Errorf("flatten: invalid hex color #%s", h)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return ColorF{}, fmt.Errorf("flatten: invalid hex color #%s: %w", h, err)
	}
	return ColorF{
		R: float32(v>>24&0xff) / 255,
		G: float32(v>>16&0xff) / 255,
		B: float32(v>>8&0xff) / 255,
		A: float32(v&0xff) / 255,
	}, nil
}

// UnmarshalText implements encoding.TextUnmarshaler using ParseColor.
func (c *ColorF) UnmarshalText(text []byte) error {
	parsed, err := ParseColor(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// FontRenderMode selects the anti-aliasing used for glyphs. Modes are
// ordered from least to most expensive.
type FontRenderMode uint8

const (
	FontRenderMono FontRenderMode = iota
	FontRenderAlpha
	FontRenderSubpixel
)

// String returns a human-readable name for the render mode.
func (m FontRenderMode) String() string {
	switch m {
	case FontRenderMono:
		return "mono"
	case FontRenderAlpha:
		return "alpha"
	case FontRenderSubpixel:
		return "subpixel"
	default:
		return "unknown"
	}
}

// LimitBy returns the cheaper of m and other.
func (m FontRenderMode) LimitBy(other FontRenderMode) FontRenderMode {
	return min(m, other)
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *FontRenderMode) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "mono":
		*m = FontRenderMono
	case "alpha":
		*m = FontRenderAlpha
	case "subpixel":
		*m = FontRenderSubpixel
	default:
		return fmt.Errorf("flatten: unknown font render mode %q", text)
	}
	return nil
}
