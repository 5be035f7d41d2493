package displaylist

import "github.com/gogpu/flatten"

// ItemKind identifies the concrete type of an Item.
type ItemKind uint8

// Item kinds. Leaf drawables first, then structure items, containers and
// auxiliary data items.
const (
	KindRectangle ItemKind = iota
	KindClearRectangle
	KindHitTest
	KindText
	KindLine
	KindImage
	KindYuvImage
	KindBorder
	KindBoxShadow
	KindGradient
	KindRadialGradient
	KindBackdropFilter

	KindPushShadow
	KindPopAllShadows

	KindClip
	KindClipChain
	KindScrollFrame
	KindStickyFrame
	KindIframe

	KindPushReferenceFrame
	KindPopReferenceFrame
	KindPushStackingContext
	KindPopStackingContext

	KindSetGradientStops
	KindSetFilterOps
	KindSetFilterData
	KindSetFilterPrimitives
)

// String returns a human-readable name for the item kind.
func (k ItemKind) String() string {
	switch k {
	case KindRectangle:
		return "Rectangle"
	case KindClearRectangle:
		return "ClearRectangle"
	case KindHitTest:
		return "HitTest"
	case KindText:
		return "Text"
	case KindLine:
		return "Line"
	case KindImage:
		return "Image"
	case KindYuvImage:
		return "YuvImage"
	case KindBorder:
		return "Border"
	case KindBoxShadow:
		return "BoxShadow"
	case KindGradient:
		return "Gradient"
	case KindRadialGradient:
		return "RadialGradient"
	case KindBackdropFilter:
		return "BackdropFilter"
	case KindPushShadow:
		return "PushShadow"
	case KindPopAllShadows:
		return "PopAllShadows"
	case KindClip:
		return "Clip"
	case KindClipChain:
		return "ClipChain"
	case KindScrollFrame:
		return "ScrollFrame"
	case KindStickyFrame:
		return "StickyFrame"
	case KindIframe:
		return "Iframe"
	case KindPushReferenceFrame:
		return "PushReferenceFrame"
	case KindPopReferenceFrame:
		return "PopReferenceFrame"
	case KindPushStackingContext:
		return "PushStackingContext"
	case KindPopStackingContext:
		return "PopStackingContext"
	case KindSetGradientStops:
		return "SetGradientStops"
	case KindSetFilterOps:
		return "SetFilterOps"
	case KindSetFilterData:
		return "SetFilterData"
	case KindSetFilterPrimitives:
		return "SetFilterPrimitives"
	default:
		return "Unknown"
	}
}

// IsContainerPush returns true for items that open a container.
func (k ItemKind) IsContainerPush() bool {
	return k == KindPushReferenceFrame || k == KindPushStackingContext
}

// IsContainerPop returns true for items that close a container.
func (k ItemKind) IsContainerPop() bool {
	return k == KindPopReferenceFrame || k == KindPopStackingContext
}

// IsAuxiliary returns true for data items consumed by the item after them.
func (k ItemKind) IsAuxiliary() bool {
	return k >= KindSetGradientStops
}

// matchingPop returns the pop kind closing a container push.
func (k ItemKind) matchingPop() ItemKind {
	if k == KindPushReferenceFrame {
		return KindPopReferenceFrame
	}
	return KindPopStackingContext
}

// Item is one display list entry. The set of implementations is closed;
// switch on Kind to dispatch.
type Item interface {
	Kind() ItemKind
	isItem()
}

// RectangleItem is a solid color rectangle.
type RectangleItem struct {
	Common CommonProperties
	Bounds flatten.Rect
	Color  flatten.ColorF
}

// ClearRectangleItem clears its bounds to transparent.
type ClearRectangleItem struct {
	Common CommonProperties
	Bounds flatten.Rect
}

// HitTestItem contributes only to hit testing; its area is the clip rect.
type HitTestItem struct {
	Common CommonProperties
}

// TextItem is a run of glyphs from one font instance.
type TextItem struct {
	Common  CommonProperties
	Bounds  flatten.Rect
	Font    FontInstanceKey
	Color   flatten.ColorF
	Glyphs  []GlyphInstance
	Options *GlyphOptions
}

// LineItem is a text decoration line.
type LineItem struct {
	Common            CommonProperties
	Area              flatten.Rect
	Orientation       LineOrientation
	WavyLineThickness float32
	Color             flatten.ColorF
	Style             LineStyle
}

// ImageItem draws an image, optionally tiled.
type ImageItem struct {
	Common      CommonProperties
	Bounds      flatten.Rect
	StretchSize flatten.Size
	TileSpacing flatten.Size
	Image       ImageKey
	Rendering   ImageRendering
	Alpha       AlphaType
	Color       flatten.ColorF
}

// YuvImageItem draws a YUV video frame.
type YuvImageItem struct {
	Common     CommonProperties
	Bounds     flatten.Rect
	Format     YuvFormat
	Planes     [3]ImageKey
	ColorDepth ColorDepth
	ColorSpace YuvColorSpace
	Rendering  ImageRendering
}

// BorderItem draws a border inside Bounds.
type BorderItem struct {
	Common  CommonProperties
	Bounds  flatten.Rect
	Widths  SideOffsets
	Details BorderDetails
}

// BoxShadowItem draws a CSS box shadow for the box at BoxBounds.
type BoxShadowItem struct {
	Common       CommonProperties
	BoxBounds    flatten.Rect
	Offset       flatten.Vector
	Color        flatten.ColorF
	BlurRadius   float32
	SpreadRadius float32
	BorderRadius BorderRadius
	ClipMode     BoxShadowClipMode
}

// GradientItem is a linear gradient. Its stops come from the preceding
// SetGradientStops item.
type GradientItem struct {
	Common      CommonProperties
	Bounds      flatten.Rect
	Gradient    Gradient
	TileSize    flatten.Size
	TileSpacing flatten.Size
}

// RadialGradientItem is a radial gradient. Its stops come from the
// preceding SetGradientStops item.
type RadialGradientItem struct {
	Common      CommonProperties
	Bounds      flatten.Rect
	Gradient    RadialGradient
	TileSize    flatten.Size
	TileSpacing flatten.Size
}

// BackdropFilterItem filters the content behind Common.ClipRect. Its filters
// come from the preceding SetFilter* items.
type BackdropFilterItem struct {
	Common CommonProperties
}

// PushShadowItem opens a shadow scope.
type PushShadowItem struct {
	SpaceAndClip  SpaceAndClip
	Shadow        Shadow
	ShouldInflate bool
}

// PopAllShadowsItem closes every open shadow scope.
type PopAllShadowsItem struct{}

// ClipItem defines a clip node.
type ClipItem struct {
	ID        ClipID
	Parent    SpaceAndClip
	ClipRect  flatten.Rect
	Complex   []ComplexClipRegion
	ImageMask *ImageMask
}

// ClipChainItem defines a user clip chain from existing clips. A nil Parent
// parents the chain to the pipeline's root clip.
type ClipChainItem struct {
	ID     ClipChainID
	Parent *ClipChainID
	Clips  []ClipID
}

// ScrollFrameItem defines a scroll frame and its clip.
type ScrollFrameItem struct {
	ClipID               ClipID
	ScrollFrameID        SpatialID
	ExternalID           *ExternalScrollID
	Parent               SpaceAndClip
	ContentRect          flatten.Rect
	ClipRect             flatten.Rect
	Complex              []ComplexClipRegion
	ImageMask            *ImageMask
	Sensitivity          ScrollSensitivity
	ExternalScrollOffset flatten.Vector
}

// StickyFrameItem defines a position: sticky frame.
type StickyFrameItem struct {
	ID                      SpatialID
	Parent                  SpatialID
	Bounds                  flatten.Rect
	Margins                 StickyMargins
	VerticalOffsetBounds    StickyOffsetBounds
	HorizontalOffsetBounds  StickyOffsetBounds
	PreviouslyAppliedOffset flatten.Vector
}

// IframeItem embeds another pipeline.
type IframeItem struct {
	Bounds                flatten.Rect
	ClipRect              flatten.Rect
	SpaceAndClip          SpaceAndClip
	Pipeline              PipelineID
	IgnoreMissingPipeline bool
}

// PushReferenceFrameItem opens a reference frame container.
type PushReferenceFrameItem struct {
	Origin         flatten.Point
	ParentSpatial  SpatialID
	ID             SpatialID
	TransformStyle TransformStyle
	Transform      flatten.Transform
	FrameKind      ReferenceFrameKind
}

// PopReferenceFrameItem closes a reference frame container.
type PopReferenceFrameItem struct{}

// PushStackingContextItem opens a stacking context container.
type PushStackingContextItem struct {
	Origin  flatten.Point
	Spatial SpatialID
	Context StackingContext
}

// PopStackingContextItem closes a stacking context container.
type PopStackingContextItem struct{}

// SetGradientStopsItem carries the stops of the following gradient item.
type SetGradientStopsItem struct {
	Stops []GradientStop
}

// SetFilterOpsItem carries the filters of the following item.
type SetFilterOpsItem struct {
	Ops []FilterOp
}

// SetFilterDataItem carries one component transfer function set.
type SetFilterDataItem struct {
	Data FilterData
}

// SetFilterPrimitivesItem carries the SVG filter chain of the following item.
type SetFilterPrimitivesItem struct {
	Primitives []FilterPrimitive
}

func (RectangleItem) Kind() ItemKind           { return KindRectangle }
func (ClearRectangleItem) Kind() ItemKind      { return KindClearRectangle }
func (HitTestItem) Kind() ItemKind             { return KindHitTest }
func (TextItem) Kind() ItemKind                { return KindText }
func (LineItem) Kind() ItemKind                { return KindLine }
func (ImageItem) Kind() ItemKind               { return KindImage }
func (YuvImageItem) Kind() ItemKind            { return KindYuvImage }
func (BorderItem) Kind() ItemKind              { return KindBorder }
func (BoxShadowItem) Kind() ItemKind           { return KindBoxShadow }
func (GradientItem) Kind() ItemKind            { return KindGradient }
func (RadialGradientItem) Kind() ItemKind      { return KindRadialGradient }
func (BackdropFilterItem) Kind() ItemKind      { return KindBackdropFilter }
func (PushShadowItem) Kind() ItemKind          { return KindPushShadow }
func (PopAllShadowsItem) Kind() ItemKind       { return KindPopAllShadows }
func (ClipItem) Kind() ItemKind                { return KindClip }
func (ClipChainItem) Kind() ItemKind           { return KindClipChain }
func (ScrollFrameItem) Kind() ItemKind         { return KindScrollFrame }
func (StickyFrameItem) Kind() ItemKind         { return KindStickyFrame }
func (IframeItem) Kind() ItemKind              { return KindIframe }
func (PushReferenceFrameItem) Kind() ItemKind  { return KindPushReferenceFrame }
func (PopReferenceFrameItem) Kind() ItemKind   { return KindPopReferenceFrame }
func (PushStackingContextItem) Kind() ItemKind { return KindPushStackingContext }
func (PopStackingContextItem) Kind() ItemKind  { return KindPopStackingContext }
func (SetGradientStopsItem) Kind() ItemKind    { return KindSetGradientStops }
func (SetFilterOpsItem) Kind() ItemKind        { return KindSetFilterOps }
func (SetFilterDataItem) Kind() ItemKind       { return KindSetFilterData }
func (SetFilterPrimitivesItem) Kind() ItemKind { return KindSetFilterPrimitives }

func (RectangleItem) isItem()           {}
func (ClearRectangleItem) isItem()      {}
func (HitTestItem) isItem()             {}
func (TextItem) isItem()                {}
func (LineItem) isItem()                {}
func (ImageItem) isItem()               {}
func (YuvImageItem) isItem()            {}
func (BorderItem) isItem()              {}
func (BoxShadowItem) isItem()           {}
func (GradientItem) isItem()            {}
func (RadialGradientItem) isItem()      {}
func (BackdropFilterItem) isItem()      {}
func (PushShadowItem) isItem()          {}
func (PopAllShadowsItem) isItem()       {}
func (ClipItem) isItem()                {}
func (ClipChainItem) isItem()           {}
func (ScrollFrameItem) isItem()         {}
func (StickyFrameItem) isItem()         {}
func (IframeItem) isItem()              {}
func (PushReferenceFrameItem) isItem()  {}
func (PopReferenceFrameItem) isItem()   {}
func (PushStackingContextItem) isItem() {}
func (PopStackingContextItem) isItem()  {}
func (SetGradientStopsItem) isItem()    {}
func (SetFilterOpsItem) isItem()        {}
func (SetFilterDataItem) isItem()       {}
func (SetFilterPrimitivesItem) isItem() {}
