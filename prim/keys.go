package prim

import (
	"fmt"
	"math"
	"strings"

	"github.com/chewxy/math32"
	"golang.org/x/image/math/fixed"

	"github.com/gogpu/flatten"
	"github.com/gogpu/flatten/displaylist"
	"github.com/gogpu/flatten/intern"
)

// Key is the interned content of a leaf primitive, minus its position.
// Every implementation is a comparable value type.
type Key interface {
	Kind() Kind
	// IsVisible reports whether the primitive can paint anything.
	IsVisible() bool
}

// Shadowable is implemented by keys that can produce a shadow copy.
type Shadowable interface {
	Key
	// CreateShadow returns the key of the primitive's shadow: the same
	// shape painted in the shadow color.
	CreateShadow(s displaylist.Shadow) Key
}

// InternKey is the full interning key of a leaf primitive.
type InternKey struct {
	Size            flatten.Size
	BackfaceVisible bool
	Key             Key
}

// Data is the per-handle data kept by the primitive interner.
type Data struct {
	Kind Kind
}

// Interner interns leaf primitives.
type Interner = intern.Interner[InternKey, Data]

// NewInterner creates an empty primitive interner.
func NewInterner() *Interner {
	return intern.New[InternKey, Data]()
}

// Intern interns k and returns its handle.
func Intern(in *Interner, k InternKey) intern.Handle {
	return in.Intern(k, func() Data { return Data{Kind: k.Key.Kind()} })
}

// RectangleKey is a solid color rectangle.
type RectangleKey struct {
	Color flatten.ColorF
}

func (RectangleKey) Kind() Kind        { return KindRectangle }
func (k RectangleKey) IsVisible() bool { return !k.Color.IsTransparent() }
func (k RectangleKey) CreateShadow(s displaylist.Shadow) Key {
	return RectangleKey{Color: s.Color}
}

// ClearKey punches a transparent hole.
type ClearKey struct{}

func (ClearKey) Kind() Kind      { return KindClear }
func (ClearKey) IsVisible() bool { return true }

// ImageKey is a possibly tiled image.
type ImageKey struct {
	Image       displaylist.ImageKey
	StretchSize flatten.Size
	TileSpacing flatten.Size
	Color       flatten.ColorF
	Rendering   displaylist.ImageRendering
	Alpha       displaylist.AlphaType
}

func (ImageKey) Kind() Kind        { return KindImage }
func (k ImageKey) IsVisible() bool { return !k.Color.IsTransparent() }
func (k ImageKey) CreateShadow(s displaylist.Shadow) Key {
	k.Color = s.Color
	return k
}

// YuvImageKey is a planar YUV image.
type YuvImageKey struct {
	Planes     [3]displaylist.ImageKey
	Format     displaylist.YuvFormat
	ColorDepth displaylist.ColorDepth
	ColorSpace displaylist.YuvColorSpace
	Rendering  displaylist.ImageRendering
}

func (YuvImageKey) Kind() Kind      { return KindYuvImage }
func (YuvImageKey) IsVisible() bool { return true }

// TextRunKey is a glyph run in one font instance. Glyph positions are
// relative to the primitive origin.
type TextRunKey struct {
	Font       displaylist.FontInstanceKey
	Size       float32
	Color      flatten.ColorF
	RenderMode flatten.FontRenderMode
	Flags      displaylist.FontInstanceFlags
	Glyphs     GlyphRun
}

func (TextRunKey) Kind() Kind        { return KindTextRun }
func (k TextRunKey) IsVisible() bool { return !k.Color.IsTransparent() && k.Glyphs != "" }
func (k TextRunKey) CreateShadow(s displaylist.Shadow) Key {
	k.Color = s.Color
	return k
}

// GlyphRun is a packed, comparable glyph list: per glyph a little endian
// uint32 index followed by 26.6 fixed point x and y.
type GlyphRun string

// PackGlyphs packs glyphs with positions made relative to origin.
func PackGlyphs(glyphs []displaylist.GlyphInstance, origin flatten.Point) GlyphRun {
	var b strings.Builder
	b.Grow(len(glyphs) * 12)
	for _, g := range glyphs {
		p := fixed.Point26_6{
			X: fixed.Int26_6(math32.Round((g.Point.X - origin.X) * 64)),
			Y: fixed.Int26_6(math32.Round((g.Point.Y - origin.Y) * 64)),
		}
		writeUint32(&b, g.Index)
		writeUint32(&b, uint32(p.X))
		writeUint32(&b, uint32(p.Y))
	}
	return GlyphRun(b.String())
}

// Len returns the number of glyphs.
func (r GlyphRun) Len() int {
	return len(r) / 12
}

// Glyph returns glyph i with its 26.6 position.
func (r GlyphRun) Glyph(i int) (uint32, fixed.Point26_6) {
	s := string(r[i*12:])
	return readUint32(s), fixed.Point26_6{X: fixed.Int26_6(readUint32(s[4:])), Y: fixed.Int26_6(readUint32(s[8:]))}
}

// LineDecorationKey is an underline, overline or strike-through.
type LineDecorationKey struct {
	Color             flatten.ColorF
	Style             displaylist.LineStyle
	Orientation       displaylist.LineOrientation
	WavyLineThickness float32
}

func (LineDecorationKey) Kind() Kind        { return KindLineDecoration }
func (k LineDecorationKey) IsVisible() bool { return !k.Color.IsTransparent() }
func (k LineDecorationKey) CreateShadow(s displaylist.Shadow) Key {
	k.Color = s.Color
	return k
}

// LinearGradientKey is a linear gradient, possibly tiled. Start is always
// left of (or above) End; ReverseStops records that the caller's points
// were swapped to get there.
type LinearGradientKey struct {
	Start, End   flatten.Point
	Extend       displaylist.ExtendMode
	Stops        Stops
	ReverseStops bool
	StretchSize  flatten.Size
	TileSpacing  flatten.Size
}

func (LinearGradientKey) Kind() Kind        { return KindLinearGradient }
func (k LinearGradientKey) IsVisible() bool { return k.Stops.HasOpaque() }

// RadialGradientKey is a radial gradient, possibly tiled.
type RadialGradientKey struct {
	Center                 flatten.Point
	Radius                 flatten.Size
	StartOffset, EndOffset float32
	Extend                 displaylist.ExtendMode
	Stops                  Stops
	StretchSize            flatten.Size
	TileSpacing            flatten.Size
}

func (RadialGradientKey) Kind() Kind        { return KindRadialGradient }
func (k RadialGradientKey) IsVisible() bool { return k.Stops.HasOpaque() }

// Stops is a packed, comparable gradient stop list: per stop five little
// endian float32s (offset, r, g, b, a).
type Stops string

// PackStops packs stops.
func PackStops(stops []displaylist.GradientStop) Stops {
	var b strings.Builder
	b.Grow(len(stops) * 20)
	for _, s := range stops {
		for _, v := range [5]float32{s.Offset, s.Color.R, s.Color.G, s.Color.B, s.Color.A} {
			writeUint32(&b, math.Float32bits(v))
		}
	}
	return Stops(b.String())
}

// Len returns the number of stops.
func (s Stops) Len() int {
	return len(s) / 20
}

// Stop returns stop i.
func (s Stops) Stop(i int) displaylist.GradientStop {
	str := string(s[i*20:])
	f := func(j int) float32 { return math.Float32frombits(readUint32(str[j*4:])) }
	return displaylist.GradientStop{Offset: f(0), Color: flatten.ColorF{R: f(1), G: f(2), B: f(3), A: f(4)}}
}

// HasOpaque reports whether any stop has a non-zero alpha.
func (s Stops) HasOpaque() bool {
	for i := 0; i < s.Len(); i++ {
		if s.Stop(i).Color.A > 0 {
			return true
		}
	}
	return false
}

// NormalBorderKey is a border painted with per-side styles.
type NormalBorderKey struct {
	Widths displaylist.SideOffsets
	Border displaylist.NormalBorder
}

func (NormalBorderKey) Kind() Kind { return KindNormalBorder }

func (k NormalBorderKey) IsVisible() bool {
	b := k.Border
	return b.Left.IsVisible() || b.Right.IsVisible() || b.Top.IsVisible() || b.Bottom.IsVisible()
}

func (k NormalBorderKey) CreateShadow(s displaylist.Shadow) Key {
	for _, side := range []*displaylist.BorderSide{&k.Border.Left, &k.Border.Right, &k.Border.Top, &k.Border.Bottom} {
		side.Color = s.Color
	}
	return k
}

// ImageBorderKey is a nine-patch image border.
type ImageBorderKey struct {
	Widths    displaylist.SideOffsets
	NinePatch displaylist.NinePatchBorder
}

func (ImageBorderKey) Kind() Kind      { return KindImageBorder }
func (ImageBorderKey) IsVisible() bool { return true }

// BoxShadowKey paints the body of a box shadow. The blurred edge and the
// element cut-out are carried by clip items.
type BoxShadowKey struct {
	Color        flatten.ColorF
	BlurRadius   float32
	SpreadRadius float32
	BorderRadius displaylist.BorderRadius
	ClipMode     displaylist.BoxShadowClipMode
}

func (BoxShadowKey) Kind() Kind        { return KindBoxShadow }
func (k BoxShadowKey) IsVisible() bool { return !k.Color.IsTransparent() }

// BackdropKey reads the content of a cut backdrop picture.
type BackdropKey struct {
	Picture PictureIndex
}

func (BackdropKey) Kind() Kind      { return KindBackdrop }
func (BackdropKey) IsVisible() bool { return true }

// String formats a key for debug output.
func String(k Key) string {
	switch k := k.(type) {
	case RectangleKey:
		return fmt.Sprintf("rect %v", k.Color)
	case TextRunKey:
		return fmt.Sprintf("text font=%v glyphs=%d %v %v", k.Font, k.Glyphs.Len(), k.Color, k.RenderMode)
	case LinearGradientKey:
		return fmt.Sprintf("linear-gradient stops=%d", k.Stops.Len())
	case RadialGradientKey:
		return fmt.Sprintf("radial-gradient stops=%d", k.Stops.Len())
	case ImageKey:
		return fmt.Sprintf("image %v", k.Image)
	case BackdropKey:
		return fmt.Sprintf("backdrop pic%d", k.Picture)
	default:
		return k.Kind().String()
	}
}

func writeUint32(b *strings.Builder, v uint32) {
	b.WriteByte(byte(v))
	b.WriteByte(byte(v >> 8))
	b.WriteByte(byte(v >> 16))
	b.WriteByte(byte(v >> 24))
}

func readUint32(s string) uint32 {
	return uint32(s[0]) | uint32(s[1])<<8 | uint32(s[2])<<16 | uint32(s[3])<<24
}
