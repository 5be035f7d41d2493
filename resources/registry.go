// Package resources resolves the font keys used by display lists.
//
// The registry parses font files with go-text/typesetting, keeps font
// instances (a font at a size and render mode), and can shape plain strings
// into glyph runs for tools and tests that author display lists.
package resources

import (
	"bytes"
	"errors"
	"fmt"
	"sync"

	"github.com/go-text/typesetting/di"
	"github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	"golang.org/x/image/math/fixed"

	"github.com/gogpu/flatten"
	"github.com/gogpu/flatten/displaylist"
)

var (
	// ErrUnknownFont is returned for a font key that was never added.
	ErrUnknownFont = errors.New("resources: unknown font")

	// ErrUnknownFontInstance is returned for an instance key that was
	// never added or has been deleted.
	ErrUnknownFontInstance = errors.New("resources: unknown font instance")
)

// FontInstance is a font at a size with rasterization settings.
type FontInstance struct {
	Key        displaylist.FontInstanceKey
	Font       displaylist.FontKey
	Size       float32
	RenderMode flatten.FontRenderMode
	Flags      displaylist.FontInstanceFlags
}

// Registry maps font and font instance keys to parsed fonts.
//
// Registry is safe for concurrent use. Parsed font.Font values are
// read-only; a font.Face is created per shaping call because faces are not
// safe for concurrent use.
type Registry struct {
	shaperPool sync.Pool

	mu        sync.RWMutex
	fonts     map[displaylist.FontKey]*font.Font
	instances map[displaylist.FontInstanceKey]*FontInstance
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		shaperPool: sync.Pool{
			New: func() any {
				return &shaping.HarfbuzzShaper{}
			},
		},
		fonts:     make(map[displaylist.FontKey]*font.Font),
		instances: make(map[displaylist.FontInstanceKey]*FontInstance),
	}
}

// AddFont parses an OpenType font (.ttf, .otf) and stores it under key,
// replacing any previous font with that key.
func (r *Registry) AddFont(key displaylist.FontKey, data []byte) error {
	face, err := font.ParseTTF(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("resources: parse font %v: %w", key, err)
	}
	r.mu.Lock()
	r.fonts[key] = face.Font
	r.mu.Unlock()
	flatten.Logger().Debug("font added", "key", key, "upem", face.Upem())
	return nil
}

// AddFontInstance registers an instance of a previously added font.
func (r *Registry) AddFontInstance(key displaylist.FontInstanceKey, fontKey displaylist.FontKey, size float32, mode flatten.FontRenderMode, flags displaylist.FontInstanceFlags) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.fonts[fontKey]; !ok {
		return fmt.Errorf("%w: %v", ErrUnknownFont, fontKey)
	}
	r.instances[key] = &FontInstance{Key: key, Font: fontKey, Size: size, RenderMode: mode, Flags: flags}
	return nil
}

// DeleteFontInstance removes an instance. Deleting an unknown key is a
// no-op.
func (r *Registry) DeleteFontInstance(key displaylist.FontInstanceKey) {
	r.mu.Lock()
	delete(r.instances, key)
	r.mu.Unlock()
}

// FontInstance returns the instance registered under key.
func (r *Registry) FontInstance(key displaylist.FontInstanceKey) (*FontInstance, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	inst, ok := r.instances[key]
	return inst, ok
}

// LayoutText shapes text in the given font instance and returns glyphs
// positioned on a baseline starting at origin. It implements
// displaylist.GlyphLayouter.
func (r *Registry) LayoutText(key displaylist.FontInstanceKey, text string, origin flatten.Point) ([]displaylist.GlyphInstance, error) {
	r.mu.RLock()
	inst, ok := r.instances[key]
	var f *font.Font
	if ok {
		f = r.fonts[inst.Font]
	}
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrUnknownFontInstance, key)
	}
	if f == nil {
		return nil, fmt.Errorf("%w: %v", ErrUnknownFont, inst.Font)
	}
	if text == "" {
		return nil, nil
	}

	runes := []rune(text)
	input := shaping.Input{
		Text:      runes,
		RunStart:  0,
		RunEnd:    len(runes),
		Direction: di.DirectionLTR,
		Face:      font.NewFace(f),
		Size:      fixed.Int26_6(inst.Size * 64),
		Script:    detectScript(runes),
		Language:  language.NewLanguage("en"),
	}
	hb := r.shaperPool.Get().(*shaping.HarfbuzzShaper)
	output := hb.Shape(input)
	r.shaperPool.Put(hb)

	glyphs := make([]displaylist.GlyphInstance, len(output.Glyphs))
	pen := origin.X
	for i, g := range output.Glyphs {
		glyphs[i] = displaylist.GlyphInstance{
			Index: uint32(g.GlyphID),
			Point: flatten.Point{
				X: pen + fixedToFloat(g.XOffset),
				// Shaper offsets grow upwards.
				Y: origin.Y - fixedToFloat(g.YOffset),
			},
		}
		pen += fixedToFloat(g.Advance)
	}
	return glyphs, nil
}

// detectScript returns the script of the first non-space rune.
func detectScript(runes []rune) language.Script {
	for _, r := range runes {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			continue
		}
		return language.LookupScript(r)
	}
	return language.Latin
}

func fixedToFloat(v fixed.Int26_6) float32 {
	return float32(v) / 64
}
