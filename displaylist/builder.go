package displaylist

import "github.com/gogpu/flatten"

// Builder records a display list for one pipeline. Ids returned by the
// Define* and PushReferenceFrame methods are unique within the pipeline.
//
// Example:
//
//	b := displaylist.NewBuilder(pipeline, flatten.Size{Width: 800, Height: 600})
//	root := displaylist.RootSpaceAndClip(pipeline)
//	b.PushStackingContext(flatten.Point{}, root.Spatial, displaylist.StackingContext{}, displaylist.Filters{})
//	b.PushRect(displaylist.CommonProperties{ClipRect: r, SpaceAndClip: root}, r, flatten.White)
//	b.PopStackingContext()
//	list, err := b.Finalize()
type Builder struct {
	pipeline    PipelineID
	contentSize flatten.Size
	items       []Item

	nextSpatial   uint32
	nextClip      uint64
	nextClipChain uint64
}

// NewBuilder creates a builder for the given pipeline.
func NewBuilder(pipeline PipelineID, contentSize flatten.Size) *Builder {
	return &Builder{
		pipeline:    pipeline,
		contentSize: contentSize,
		nextSpatial: firstUserSpatialIndex,
		nextClip:    1,
	}
}

// Pipeline returns the pipeline being recorded.
func (b *Builder) Pipeline() PipelineID {
	return b.pipeline
}

// Len returns the number of recorded items.
func (b *Builder) Len() int {
	return len(b.items)
}

// Push appends a raw item.
func (b *Builder) Push(item Item) {
	b.items = append(b.items, item)
}

// Finalize validates the recorded items and returns the built list. The
// builder must not be used afterwards.
func (b *Builder) Finalize() (*BuiltDisplayList, error) {
	return NewBuiltDisplayList(b.pipeline, b.contentSize, b.items)
}

func (b *Builder) newSpatialID() SpatialID {
	id := SpatialID{Index: b.nextSpatial, Pipeline: b.pipeline}
	b.nextSpatial++
	return id
}

func (b *Builder) newClipID() ClipID {
	id := ClipID{Kind: ClipIDClip, Index: b.nextClip, Pipeline: b.pipeline}
	b.nextClip++
	return id
}

func (b *Builder) pushFilters(f Filters) {
	if len(f.Ops) > 0 {
		b.Push(SetFilterOpsItem{Ops: f.Ops})
	}
	for _, d := range f.Data {
		b.Push(SetFilterDataItem{Data: d})
	}
	if len(f.Primitives) > 0 {
		b.Push(SetFilterPrimitivesItem{Primitives: f.Primitives})
	}
}

// ---------------------------------------------------------------------------
// Leaf items
// ---------------------------------------------------------------------------

// PushRect records a solid rectangle.
func (b *Builder) PushRect(common CommonProperties, bounds flatten.Rect, color flatten.ColorF) {
	b.Push(RectangleItem{Common: common, Bounds: bounds, Color: color})
}

// PushClearRect records a clear rectangle.
func (b *Builder) PushClearRect(common CommonProperties, bounds flatten.Rect) {
	b.Push(ClearRectangleItem{Common: common, Bounds: bounds})
}

// PushHitTest records a hit-test-only area (the clip rect of common).
func (b *Builder) PushHitTest(common CommonProperties) {
	b.Push(HitTestItem{Common: common})
}

// PushText records a glyph run.
func (b *Builder) PushText(common CommonProperties, bounds flatten.Rect, glyphs []GlyphInstance, font FontInstanceKey, color flatten.ColorF, opts *GlyphOptions) {
	b.Push(TextItem{Common: common, Bounds: bounds, Font: font, Color: color, Glyphs: glyphs, Options: opts})
}

// PushLine records a line decoration.
func (b *Builder) PushLine(common CommonProperties, area flatten.Rect, orientation LineOrientation, wavyThickness float32, color flatten.ColorF, style LineStyle) {
	b.Push(LineItem{
		Common:            common,
		Area:              area,
		Orientation:       orientation,
		WavyLineThickness: wavyThickness,
		Color:             color,
		Style:             style,
	})
}

// PushImage records an image item.
func (b *Builder) PushImage(common CommonProperties, bounds flatten.Rect, stretch, spacing flatten.Size, rendering ImageRendering, alpha AlphaType, key ImageKey, color flatten.ColorF) {
	b.Push(ImageItem{
		Common:      common,
		Bounds:      bounds,
		StretchSize: stretch,
		TileSpacing: spacing,
		Image:       key,
		Rendering:   rendering,
		Alpha:       alpha,
		Color:       color,
	})
}

// PushYuvImage records a YUV image.
func (b *Builder) PushYuvImage(common CommonProperties, bounds flatten.Rect, format YuvFormat, planes [3]ImageKey, depth ColorDepth, space YuvColorSpace, rendering ImageRendering) {
	b.Push(YuvImageItem{
		Common:     common,
		Bounds:     bounds,
		Format:     format,
		Planes:     planes,
		ColorDepth: depth,
		ColorSpace: space,
		Rendering:  rendering,
	})
}

// PushBorder records a border.
func (b *Builder) PushBorder(common CommonProperties, bounds flatten.Rect, widths SideOffsets, details BorderDetails) {
	b.Push(BorderItem{Common: common, Bounds: bounds, Widths: widths, Details: details})
}

// PushBoxShadow records a box shadow.
func (b *Builder) PushBoxShadow(common CommonProperties, box flatten.Rect, offset flatten.Vector, color flatten.ColorF, blur, spread float32, radius BorderRadius, mode BoxShadowClipMode) {
	b.Push(BoxShadowItem{
		Common:       common,
		BoxBounds:    box,
		Offset:       offset,
		Color:        color,
		BlurRadius:   blur,
		SpreadRadius: spread,
		BorderRadius: radius,
		ClipMode:     mode,
	})
}

// PushGradient records a linear gradient and its stops.
func (b *Builder) PushGradient(common CommonProperties, bounds flatten.Rect, g Gradient, stops []GradientStop, tileSize, tileSpacing flatten.Size) {
	b.Push(SetGradientStopsItem{Stops: stops})
	b.Push(GradientItem{Common: common, Bounds: bounds, Gradient: g, TileSize: tileSize, TileSpacing: tileSpacing})
}

// PushRadialGradient records a radial gradient and its stops.
func (b *Builder) PushRadialGradient(common CommonProperties, bounds flatten.Rect, g RadialGradient, stops []GradientStop, tileSize, tileSpacing flatten.Size) {
	b.Push(SetGradientStopsItem{Stops: stops})
	b.Push(RadialGradientItem{Common: common, Bounds: bounds, Gradient: g, TileSize: tileSize, TileSpacing: tileSpacing})
}

// PushBackdropFilter records a backdrop filter over common.ClipRect.
func (b *Builder) PushBackdropFilter(common CommonProperties, f Filters) {
	b.pushFilters(f)
	b.Push(BackdropFilterItem{Common: common})
}

// PushShadow opens a shadow scope.
func (b *Builder) PushShadow(sc SpaceAndClip, shadow Shadow, shouldInflate bool) {
	b.Push(PushShadowItem{SpaceAndClip: sc, Shadow: shadow, ShouldInflate: shouldInflate})
}

// PopAllShadows closes all open shadow scopes.
func (b *Builder) PopAllShadows() {
	b.Push(PopAllShadowsItem{})
}

// ---------------------------------------------------------------------------
// Clips and spatial nodes
// ---------------------------------------------------------------------------

// DefineClip records a clip node and returns its id.
func (b *Builder) DefineClip(parent SpaceAndClip, clipRect flatten.Rect, complex []ComplexClipRegion, mask *ImageMask) ClipID {
	id := b.newClipID()
	b.Push(ClipItem{ID: id, Parent: parent, ClipRect: clipRect, Complex: complex, ImageMask: mask})
	return id
}

// DefineClipChain records a clip chain made of clips and returns its id.
func (b *Builder) DefineClipChain(parent *ClipChainID, clips []ClipID) ClipChainID {
	id := ClipChainID{Index: b.nextClipChain, Pipeline: b.pipeline}
	b.nextClipChain++
	b.Push(ClipChainItem{ID: id, Parent: parent, Clips: clips})
	return id
}

// DefineScrollFrame records a scroll frame whose visible area is clipRect
// and whose scrollable content is content. It returns the frame's space
// and clip.
func (b *Builder) DefineScrollFrame(parent SpaceAndClip, externalID *ExternalScrollID, content, clipRect flatten.Rect, sensitivity ScrollSensitivity, scrollOffset flatten.Vector) SpaceAndClip {
	sc := SpaceAndClip{Spatial: b.newSpatialID(), Clip: b.newClipID()}
	b.Push(ScrollFrameItem{
		ClipID:               sc.Clip,
		ScrollFrameID:        sc.Spatial,
		ExternalID:           externalID,
		Parent:               parent,
		ContentRect:          content,
		ClipRect:             clipRect,
		Sensitivity:          sensitivity,
		ExternalScrollOffset: scrollOffset,
	})
	return sc
}

// DefineStickyFrame records a sticky frame and returns its spatial id.
func (b *Builder) DefineStickyFrame(parent SpatialID, bounds flatten.Rect, margins StickyMargins, vertical, horizontal StickyOffsetBounds, applied flatten.Vector) SpatialID {
	id := b.newSpatialID()
	b.Push(StickyFrameItem{
		ID:                      id,
		Parent:                  parent,
		Bounds:                  bounds,
		Margins:                 margins,
		VerticalOffsetBounds:    vertical,
		HorizontalOffsetBounds:  horizontal,
		PreviouslyAppliedOffset: applied,
	})
	return id
}

// PushIframe embeds another pipeline.
func (b *Builder) PushIframe(bounds, clipRect flatten.Rect, sc SpaceAndClip, pipeline PipelineID, ignoreMissing bool) {
	b.Push(IframeItem{
		Bounds:                bounds,
		ClipRect:              clipRect,
		SpaceAndClip:          sc,
		Pipeline:              pipeline,
		IgnoreMissingPipeline: ignoreMissing,
	})
}

// ---------------------------------------------------------------------------
// Containers
// ---------------------------------------------------------------------------

// PushReferenceFrame opens a reference frame and returns its spatial id.
func (b *Builder) PushReferenceFrame(origin flatten.Point, parent SpatialID, style TransformStyle, transform flatten.Transform, kind ReferenceFrameKind) SpatialID {
	id := b.newSpatialID()
	b.Push(PushReferenceFrameItem{
		Origin:         origin,
		ParentSpatial:  parent,
		ID:             id,
		TransformStyle: style,
		Transform:      transform,
		FrameKind:      kind,
	})
	return id
}

// PopReferenceFrame closes the innermost reference frame.
func (b *Builder) PopReferenceFrame() {
	b.Push(PopReferenceFrameItem{})
}

// PushStackingContext opens a stacking context with optional filters.
func (b *Builder) PushStackingContext(origin flatten.Point, spatial SpatialID, sc StackingContext, f Filters) {
	b.pushFilters(f)
	b.Push(PushStackingContextItem{Origin: origin, Spatial: spatial, Context: sc})
}

// PopStackingContext closes the innermost stacking context.
func (b *Builder) PopStackingContext() {
	b.Push(PopStackingContextItem{})
}
