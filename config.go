package flatten

import (
	"bytes"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// ChasePrimitive selects one primitive whose progress through the pass is
// traced at Info level. At most one of ID and Rect should be set.
type ChasePrimitive struct {
	// ID matches the per-pass sequence number assigned to each created
	// primitive instance.
	ID *uint64 `toml:"id"`
	// Rect matches a leaf primitive by its resolved layout rect (x, y, w, h).
	Rect *[4]float32 `toml:"rect"`
}

// Enabled reports whether any primitive is being chased.
func (c ChasePrimitive) Enabled() bool {
	return c.ID != nil || c.Rect != nil
}

// Matches reports whether the primitive with the given sequence number and
// rect is the chased one.
func (c ChasePrimitive) Matches(id uint64, r Rect) bool {
	if c.ID != nil && *c.ID == id {
		return true
	}
	if c.Rect != nil {
		want := RectFromXYWH(c.Rect[0], c.Rect[1], c.Rect[2], c.Rect[3])
		return want == r
	}
	return false
}

// Config holds the recognized flattening options.
type Config struct {
	// EnablePictureCaching turns on tile-cache partitioning. When no stacking
	// context requests a tile cache, the whole frame gets one implicit cache.
	EnablePictureCaching bool `toml:"enable_picture_caching"`

	// DefaultFontRenderMode caps the render mode of every text run.
	DefaultFontRenderMode FontRenderMode `toml:"default_font_render_mode"`

	// BackgroundColor is used when the root pipeline has no opaque-enough
	// background of its own.
	BackgroundColor ColorF `toml:"background_color"`

	ChasePrimitive ChasePrimitive `toml:"chase_primitive"`

	// LenientAssertions downgrades empty-stack pops and clip-chain marker
	// mismatches to warnings. Other contract faults stay fatal.
	LenientAssertions bool `toml:"lenient_assertions"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		EnablePictureCaching:  true,
		DefaultFontRenderMode: FontRenderSubpixel,
		BackgroundColor:       White,
	}
}

// NewConfig returns DefaultConfig with opts applied in order.
func NewConfig(opts ...Option) Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// ParseConfig decodes TOML on top of DefaultConfig. Unknown keys are
// rejected.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	dec := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("flatten: decode config: %w", err)
	}
	return cfg, nil
}

// LoadConfig reads and decodes a TOML config file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("flatten: read config: %w", err)
	}
	return ParseConfig(data)
}
