package displaylist

import "github.com/gogpu/flatten"

// PrimitiveFlags are per-item rendering flags. The zero value is the
// default: backface visible.
type PrimitiveFlags uint8

const (
	// FlagBackfaceHidden hides the item when its plane faces away.
	FlagBackfaceHidden PrimitiveFlags = 1 << iota
	// FlagScrollbarContainer marks a scrollbar container for the embedder.
	FlagScrollbarContainer
)

// IsBackfaceVisible reports whether the backface of the item is drawn.
func (f PrimitiveFlags) IsBackfaceVisible() bool {
	return f&FlagBackfaceHidden == 0
}

// CommonProperties are shared by all leaf items.
type CommonProperties struct {
	ClipRect     flatten.Rect
	SpaceAndClip SpaceAndClip
	Flags        PrimitiveFlags
	HitInfo      *ItemTag
}

// TransformStyle selects flat or 3D-preserving composition of children.
type TransformStyle uint8

const (
	TransformFlat TransformStyle = iota
	TransformPreserve3D
)

// String returns a human-readable name for the transform style.
func (s TransformStyle) String() string {
	if s == TransformPreserve3D {
		return "preserve-3d"
	}
	return "flat"
}

// MixBlendMode is a separable or non-separable CSS blend mode.
type MixBlendMode uint8

// Blend modes. MixBlendNormal means no blending.
const (
	MixBlendNormal MixBlendMode = iota
	MixBlendMultiply
	MixBlendScreen
	MixBlendOverlay
	MixBlendDarken
	MixBlendLighten
	MixBlendColorDodge
	MixBlendColorBurn
	MixBlendHardLight
	MixBlendSoftLight
	MixBlendDifference
	MixBlendExclusion
	MixBlendHue
	MixBlendSaturation
	MixBlendColor
	MixBlendLuminosity
)

var mixBlendNames = [...]string{
	MixBlendNormal:     "normal",
	MixBlendMultiply:   "multiply",
	MixBlendScreen:     "screen",
	MixBlendOverlay:    "overlay",
	MixBlendDarken:     "darken",
	MixBlendLighten:    "lighten",
	MixBlendColorDodge: "color-dodge",
	MixBlendColorBurn:  "color-burn",
	MixBlendHardLight:  "hard-light",
	MixBlendSoftLight:  "soft-light",
	MixBlendDifference: "difference",
	MixBlendExclusion:  "exclusion",
	MixBlendHue:        "hue",
	MixBlendSaturation: "saturation",
	MixBlendColor:      "color",
	MixBlendLuminosity: "luminosity",
}

// String returns the CSS name of the blend mode.
func (m MixBlendMode) String() string {
	if int(m) < len(mixBlendNames) {
		return mixBlendNames[m]
	}
	return "unknown"
}

// ParseMixBlendMode returns the blend mode with the given CSS name.
func ParseMixBlendMode(name string) (MixBlendMode, bool) {
	for i, n := range mixBlendNames {
		if n == name {
			return MixBlendMode(i), true
		}
	}
	return MixBlendNormal, false
}

// RasterSpace selects where a picture is rasterized. The zero value is
// screen space.
type RasterSpace struct {
	Local bool
	// Scale applies to local raster space only.
	Scale float32
}

// ScreenSpace returns the screen raster space.
func ScreenSpace() RasterSpace { return RasterSpace{} }

// LocalSpace returns a local raster space with the given scale.
func LocalSpace(scale float32) RasterSpace { return RasterSpace{Local: true, Scale: scale} }

// ReferenceFrameKind distinguishes plain transforms from perspective.
type ReferenceFrameKind uint8

const (
	ReferenceFrameTransform ReferenceFrameKind = iota
	ReferenceFramePerspective
)

// ScrollSensitivity controls which events may scroll a frame.
type ScrollSensitivity uint8

const (
	ScrollScriptAndInputEvents ScrollSensitivity = iota
	ScrollScript
)

// StackingContext holds the parameters of a PushStackingContext item.
// Filters travel separately as auxiliary items.
type StackingContext struct {
	Flags          PrimitiveFlags
	TransformStyle TransformStyle
	MixBlendMode   MixBlendMode
	// Clip, when set, clips the whole context.
	Clip           *ClipID
	RasterSpace    RasterSpace
	CacheTiles     bool
	IsBackdropRoot bool
}

// Filters groups the filter payloads of a stacking context or backdrop
// filter. Ops and Primitives must not both be set.
type Filters struct {
	Ops        []FilterOp
	Data       []FilterData
	Primitives []FilterPrimitive
}

// IsEmpty reports whether no filter payload is present.
func (f Filters) IsEmpty() bool {
	return len(f.Ops) == 0 && len(f.Data) == 0 && len(f.Primitives) == 0
}

// ClipMode selects whether a clip keeps the inside or the outside.
type ClipMode uint8

const (
	ClipModeClip ClipMode = iota
	ClipModeClipOut
)

// BorderRadius holds the corner radii of a rounded rectangle.
type BorderRadius struct {
	TopLeft, TopRight, BottomLeft, BottomRight flatten.Size
}

// UniformRadius returns a radius with all corners r by r.
func UniformRadius(r float32) BorderRadius {
	s := flatten.Size{Width: r, Height: r}
	return BorderRadius{TopLeft: s, TopRight: s, BottomLeft: s, BottomRight: s}
}

// IsZero reports whether all corners are square.
func (r BorderRadius) IsZero() bool {
	return r == BorderRadius{}
}

// ComplexClipRegion is a rounded clip rectangle.
type ComplexClipRegion struct {
	Rect  flatten.Rect
	Radii BorderRadius
	Mode  ClipMode
}

// ImageMask clips by the alpha of an image.
type ImageMask struct {
	Image  ImageKey
	Rect   flatten.Rect
	Repeat bool
}

// Shadow describes a text or primitive shadow.
type Shadow struct {
	Offset     flatten.Vector
	Color      flatten.ColorF
	BlurRadius float32
}

// GlyphInstance is a positioned glyph.
type GlyphInstance struct {
	Index uint32
	Point flatten.Point
}

// FontInstanceFlags configure glyph rasterization.
type FontInstanceFlags uint32

const (
	FontSyntheticBold FontInstanceFlags = 1 << iota
	FontEmbeddedBitmaps
	FontSubpixelPosition
	FontTransposed
)

// GlyphOptions override the font instance's render settings for one run.
type GlyphOptions struct {
	RenderMode flatten.FontRenderMode
	Flags      FontInstanceFlags
}

// LineOrientation is the direction of a line decoration.
type LineOrientation uint8

const (
	LineHorizontal LineOrientation = iota
	LineVertical
)

// LineStyle is the dash pattern of a line decoration.
type LineStyle uint8

const (
	LineSolid LineStyle = iota
	LineDotted
	LineDashed
	LineWavy
)

// ExtendMode controls gradient behavior outside the stop range.
type ExtendMode uint8

const (
	ExtendClamp ExtendMode = iota
	ExtendRepeat
)

// GradientStop is one color stop. Offsets are in [0, 1].
type GradientStop struct {
	Offset float32
	Color  flatten.ColorF
}

// Gradient is a linear gradient between two points.
type Gradient struct {
	Start, End flatten.Point
	Extend     ExtendMode
}

// RadialGradient is an elliptical radial gradient.
type RadialGradient struct {
	Center                 flatten.Point
	Radius                 flatten.Size
	StartOffset, EndOffset float32
	Extend                 ExtendMode
}

// ImageRendering selects the image sampling filter.
type ImageRendering uint8

const (
	ImageRenderingAuto ImageRendering = iota
	ImageRenderingCrispEdges
	ImageRenderingPixelated
)

// AlphaType tells whether image data is premultiplied.
type AlphaType uint8

const (
	AlphaStraight AlphaType = iota
	AlphaPremultiplied
)

// YuvFormat is the plane layout of a YUV image.
type YuvFormat uint8

const (
	YuvNV12 YuvFormat = iota
	YuvPlanar
	YuvInterleaved
)

// YuvColorSpace is the YUV to RGB conversion matrix.
type YuvColorSpace uint8

const (
	YuvRec601 YuvColorSpace = iota
	YuvRec709
	YuvRec2020
)

// ColorDepth is the bit depth of YUV planes.
type ColorDepth uint8

const (
	ColorDepth8 ColorDepth = iota
	ColorDepth10
	ColorDepth12
	ColorDepth16
)

// BoxShadowClipMode distinguishes outer and inner box shadows.
type BoxShadowClipMode uint8

const (
	BoxShadowOutset BoxShadowClipMode = iota
	BoxShadowInset
)

// BorderStyle is the CSS style of one border side.
type BorderStyle uint8

const (
	BorderNone BorderStyle = iota
	BorderSolid
	BorderDouble
	BorderDotted
	BorderDashed
	BorderHidden
	BorderGroove
	BorderRidge
	BorderInset
	BorderOutset
)

// BorderSide is the paint of one border side.
type BorderSide struct {
	Color flatten.ColorF
	Style BorderStyle
}

// IsVisible reports whether the side paints anything.
func (s BorderSide) IsVisible() bool {
	return s.Style != BorderNone && s.Style != BorderHidden && !s.Color.IsTransparent()
}

// SideOffsets are per-side widths or offsets.
type SideOffsets struct {
	Top, Right, Bottom, Left float32
}

// NormalBorder is a border painted with per-side styles.
type NormalBorder struct {
	Left, Right, Top, Bottom BorderSide
	Radius                   BorderRadius
	DoAA                     bool
}

// NinePatchBorder paints a border from a sliced image.
type NinePatchBorder struct {
	Image         ImageKey
	Width, Height int32
	Slice         SideOffsets
	Fill          bool
	Outset        SideOffsets
}

// BorderKind selects the BorderDetails variant.
type BorderKind uint8

const (
	BorderKindNormal BorderKind = iota
	BorderKindNinePatch
)

// BorderDetails holds the variant data of a border item.
type BorderDetails struct {
	Kind      BorderKind
	Normal    NormalBorder
	NinePatch NinePatchBorder
}

// StickyMargins are the optional sticky thresholds on each side.
type StickyMargins struct {
	Top, Right, Bottom, Left *float32
}

// StickyOffsetBounds limit how far a sticky frame may move on one axis.
type StickyOffsetBounds struct {
	Min, Max float32
}
