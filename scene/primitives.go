package scene

import (
	"github.com/chewxy/math32"

	"github.com/gogpu/flatten"
	"github.com/gogpu/flatten/clip"
	"github.com/gogpu/flatten/displaylist"
	"github.com/gogpu/flatten/prim"
	"github.com/gogpu/flatten/spatial"
)

// primitiveInfo is the resolved layout of a leaf item.
type primitiveInfo struct {
	rect            flatten.Rect
	clipRect        flatten.Rect
	backfaceVisible bool
	hitInfo         *displaylist.ItemTag
}

// clipAndScroll is the resolved spatial node and clip chain of an item.
type clipAndScroll struct {
	spatialNode spatial.NodeIndex
	clipChain   clip.ChainID
}

// clipAndScroll resolves an item's ids. An invalid clip id means the
// pipeline clip. The pipeline's root clip and the invalid id both resolve
// to NONE once an enclosing stacking context has applied the pipeline clip.
func (b *Builder) clipAndScroll(clipID displaylist.ClipID, spatialID displaylist.SpatialID, applyPipelineClip bool) clipAndScroll {
	cs := clipAndScroll{
		spatialNode: b.idMapper.SpatialNodeIndex(spatialID),
		clipChain:   clip.ChainNone,
	}
	switch {
	case !clipID.IsValid():
		if applyPipelineClip {
			cs.clipChain = b.pipelineClip()
		}
	case clipID.IsRoot() && !applyPipelineClip:
	default:
		cs.clipChain = b.idMapper.ClipChainID(clipID)
	}
	return cs
}

// processCommon resolves the common properties of a leaf item. A nil bounds
// uses the clip rect.
func (b *Builder) processCommon(common *displaylist.CommonProperties, bounds *flatten.Rect, applyPipelineClip bool) (primitiveInfo, clipAndScroll) {
	cs := b.clipAndScroll(common.SpaceAndClip.Clip, common.SpaceAndClip.Spatial, applyPipelineClip)
	offset := b.currentOffset(cs.spatialNode)
	rect := common.ClipRect
	if bounds != nil {
		rect = *bounds
	}
	return primitiveInfo{
		rect:            rect.Translate(offset),
		clipRect:        common.ClipRect.Translate(offset),
		backfaceVisible: common.Flags.IsBackfaceVisible(),
		hitInfo:         common.HitInfo,
	}, cs
}

// createPrimitive interns key and returns a new leaf instance.
func (b *Builder) createPrimitive(info primitiveInfo, chain clip.ChainID, node spatial.NodeIndex, key prim.Key) prim.Instance {
	handle := prim.Intern(b.interners.Prims, prim.InternKey{
		Size:            info.rect.Size(),
		BackfaceVisible: info.backfaceVisible,
		Key:             key,
	})
	inst := prim.Instance{
		Kind:          key.Kind(),
		Handle:        handle,
		Rect:          info.rect,
		LocalClipRect: info.clipRect,
		ClipChain:     chain,
		SpatialNode:   node,
		Opacity:       1,
		ID:            b.nextPrimID,
	}
	b.nextPrimID++
	return inst
}

func (b *Builder) addPrimToDrawList(info primitiveInfo, chain clip.ChainID, cs clipAndScroll, key prim.Key) {
	inst := b.createPrimitive(info, chain, cs.spatialNode, key)
	b.addPrimitiveToHitTesting(info, cs)
	b.addToDrawList(inst)
}

// addToDrawList appends inst to the open stacking context.
func (b *Builder) addToDrawList(inst prim.Instance) {
	chase := b.cfg.ChasePrimitive
	if inst.Kind != prim.KindPicture && !inst.Kind.IsMarker() && chase.Enabled() && chase.Matches(inst.ID, inst.Rect) {
		flatten.Logger().Info("chased primitive added",
			"id", inst.ID,
			"kind", inst.Kind,
			"rect", inst.Rect,
			"clip_chain", inst.ClipChain,
			"spatial_node", inst.SpatialNode,
			"depth", len(b.scStack),
		)
	}
	sc := b.topStackingContext()
	if sc == nil {
		flatten.Faultf("scene.addToDrawList", "no stacking context is open")
	}
	sc.prims = append(sc.prims, inst)
}

// ----------------------------------------------------------------------------
// Leaf constructors
// ----------------------------------------------------------------------------

func (b *Builder) addRectangle(v displaylist.RectangleItem, apply bool) {
	info, cs := b.processCommon(&v.Common, &v.Bounds, apply)
	b.addPrimitive(cs, info, nil, prim.RectangleKey{Color: v.Color})
}

func (b *Builder) addClearRectangle(v displaylist.ClearRectangleItem, apply bool) {
	info, cs := b.processCommon(&v.Common, &v.Bounds, apply)
	b.addPrimitive(cs, info, nil, prim.ClearKey{})
}

func (b *Builder) addHitTest(v displaylist.HitTestItem, apply bool) {
	info, cs := b.processCommon(&v.Common, nil, apply)
	b.addPrimitiveToHitTesting(info, cs)
}

func (b *Builder) addLine(v displaylist.LineItem, apply bool) {
	info, cs := b.processCommon(&v.Common, &v.Area, apply)
	b.addPrimitive(cs, info, nil, prim.LineDecorationKey{
		Color:             v.Color,
		Style:             v.Style,
		Orientation:       v.Orientation,
		WavyLineThickness: v.WavyLineThickness,
	})
}

func (b *Builder) addImage(v displaylist.ImageItem, apply bool) {
	info, cs := b.processCommon(&v.Common, &v.Bounds, apply)
	stretch, spacing := v.StretchSize, v.TileSpacing
	if stretch.IsEmpty() {
		stretch = info.rect.Size()
	}
	info.rect, spacing = simplifyRepeated(stretch, spacing, info.rect)
	b.addPrimitive(cs, info, nil, prim.ImageKey{
		Image:       v.Image,
		StretchSize: stretch,
		TileSpacing: spacing,
		Color:       v.Color,
		Rendering:   v.Rendering,
		Alpha:       v.Alpha,
	})
}

func (b *Builder) addYuvImage(v displaylist.YuvImageItem, apply bool) {
	info, cs := b.processCommon(&v.Common, &v.Bounds, apply)
	b.addPrimitive(cs, info, nil, prim.YuvImageKey{
		Planes:     v.Planes,
		Format:     v.Format,
		ColorDepth: v.ColorDepth,
		ColorSpace: v.ColorSpace,
		Rendering:  v.Rendering,
	})
}

// simplifyRepeated drops tiling on an axis where a single tile covers rect.
func simplifyRepeated(stretch, spacing flatten.Size, rect flatten.Rect) (flatten.Rect, flatten.Size) {
	size := rect.Size()
	if stretch.Width+spacing.Width >= size.Width {
		spacing.Width = 0
		size.Width = math32.Min(size.Width, stretch.Width)
	}
	if stretch.Height+spacing.Height >= size.Height {
		spacing.Height = 0
		size.Height = math32.Min(size.Height, stretch.Height)
	}
	return rect.WithSize(size), spacing
}

func (b *Builder) addText(v displaylist.TextItem, apply bool) {
	info, cs := b.processCommon(&v.Common, &v.Bounds, apply)
	if b.fonts == nil {
		flatten.Logger().Warn("text dropped: no font source", "font", v.Font)
		return
	}
	inst, ok := b.fonts.FontInstance(v.Font)
	if !ok {
		flatten.Logger().Warn("text dropped: unknown font instance", "font", v.Font)
		return
	}
	if inst.Size <= 0 {
		return
	}

	mode := b.cfg.DefaultFontRenderMode.LimitBy(inst.RenderMode)
	flags := inst.Flags
	if v.Options != nil {
		mode = mode.LimitBy(v.Options.RenderMode)
		flags |= v.Options.Flags
	}
	b.addPrimitive(cs, info, nil, prim.TextRunKey{
		Font:       v.Font,
		Size:       inst.Size,
		Color:      v.Color,
		RenderMode: mode,
		Flags:      flags,
		Glyphs:     prim.PackGlyphs(v.Glyphs, v.Bounds.Origin()),
	})
}

func (b *Builder) addGradient(v displaylist.GradientItem, stops []displaylist.GradientStop, apply bool) {
	info, cs := b.processCommon(&v.Common, &v.Bounds, apply)
	tile, spacing := v.TileSize, v.TileSpacing
	if tile.IsEmpty() {
		tile = info.rect.Size()
	}
	info.rect, spacing = simplifyRepeated(tile, spacing, info.rect)

	start, end := v.Gradient.Start, v.Gradient.End
	// Keys always run left to right, or top to bottom.
	reverse := start.X > end.X || (start.X == end.X && start.Y > end.Y)
	if reverse {
		start, end = end, start
	}
	b.addPrimitive(cs, info, nil, prim.LinearGradientKey{
		Start:        start,
		End:          end,
		Extend:       v.Gradient.Extend,
		Stops:        prim.PackStops(stops),
		ReverseStops: reverse,
		StretchSize:  tile,
		TileSpacing:  spacing,
	})
}

func (b *Builder) addRadialGradient(v displaylist.RadialGradientItem, stops []displaylist.GradientStop, apply bool) {
	info, cs := b.processCommon(&v.Common, &v.Bounds, apply)
	tile, spacing := v.TileSize, v.TileSpacing
	if tile.IsEmpty() {
		tile = info.rect.Size()
	}
	info.rect, spacing = simplifyRepeated(tile, spacing, info.rect)
	b.addPrimitive(cs, info, nil, prim.RadialGradientKey{
		Center:      v.Gradient.Center,
		Radius:      v.Gradient.Radius,
		StartOffset: v.Gradient.StartOffset,
		EndOffset:   v.Gradient.EndOffset,
		Extend:      v.Gradient.Extend,
		Stops:       prim.PackStops(stops),
		StretchSize: tile,
		TileSpacing: spacing,
	})
}

func (b *Builder) addBorder(v displaylist.BorderItem, apply bool) {
	info, cs := b.processCommon(&v.Common, &v.Bounds, apply)
	switch v.Details.Kind {
	case displaylist.BorderKindNormal:
		border := v.Details.Normal
		border.Radius = ensureNoCornerOverlap(border.Radius, info.rect.Size())
		b.addPrimitive(cs, info, nil, prim.NormalBorderKey{Widths: v.Widths, Border: border})
	case displaylist.BorderKindNinePatch:
		np := v.Details.NinePatch
		// The outset grows the painted area beyond the border box.
		info.rect = flatten.Rect{
			MinX: info.rect.MinX - np.Outset.Left,
			MinY: info.rect.MinY - np.Outset.Top,
			MaxX: info.rect.MaxX + np.Outset.Right,
			MaxY: info.rect.MaxY + np.Outset.Bottom,
		}
		b.addPrimitive(cs, info, nil, prim.ImageBorderKey{Widths: v.Widths, NinePatch: np})
	default:
		flatten.Faultf("scene.addBorder", "unknown border kind %d", v.Details.Kind)
	}
}

// ensureNoCornerOverlap scales radii down uniformly until adjacent corners
// fit along every side of a box of the given size.
func ensureNoCornerOverlap(r displaylist.BorderRadius, size flatten.Size) displaylist.BorderRadius {
	ratio := float32(1)
	fit := func(sum, side float32) {
		if sum > side && sum > 0 {
			ratio = math32.Min(ratio, side/sum)
		}
	}
	fit(r.TopLeft.Width+r.TopRight.Width, size.Width)
	fit(r.BottomLeft.Width+r.BottomRight.Width, size.Width)
	fit(r.TopLeft.Height+r.BottomLeft.Height, size.Height)
	fit(r.TopRight.Height+r.BottomRight.Height, size.Height)
	if ratio >= 1 {
		return r
	}
	scale := func(s flatten.Size) flatten.Size {
		return flatten.Size{Width: s.Width * ratio, Height: s.Height * ratio}
	}
	return displaylist.BorderRadius{
		TopLeft:     scale(r.TopLeft),
		TopRight:    scale(r.TopRight),
		BottomLeft:  scale(r.BottomLeft),
		BottomRight: scale(r.BottomRight),
	}
}

// boxShadowBlurExtent is how far, in blur radii, a blurred edge reaches
// past the shadow rect.
const boxShadowBlurExtent = 3

// addBoxShadow lowers a box shadow to a BoxShadow primitive clipped to the
// visible part: outside the box for outset shadows, inside it for inset
// ones.
func (b *Builder) addBoxShadow(v displaylist.BoxShadowItem, apply bool) {
	if v.Color.IsTransparent() {
		return
	}
	info, cs := b.processCommon(&v.Common, &v.BoxBounds, apply)
	box := info.rect
	blur := math32.Max(v.BlurRadius, 0)

	spread := v.SpreadRadius
	mode := displaylist.ClipModeClip
	if v.ClipMode == displaylist.BoxShadowInset {
		spread = -spread
		mode = displaylist.ClipModeClipOut
	}
	shadowRect := box.Translate(v.Offset).Inflate(spread, spread)
	shadowRadius := adjustRadius(v.BorderRadius, spread)

	var items []clip.ItemKey
	switch v.ClipMode {
	case displaylist.BoxShadowOutset:
		if shadowRect.IsEmpty() && blur == 0 {
			return
		}
		info.rect = shadowRect.Inflate(blur*boxShadowBlurExtent, blur*boxShadowBlurExtent)
		items = append(items, clip.RoundedRectKey(box, v.BorderRadius, displaylist.ClipModeClipOut, cs.spatialNode))
	case displaylist.BoxShadowInset:
		info.rect = box
		items = append(items, clip.RoundedRectKey(box, v.BorderRadius, displaylist.ClipModeClip, cs.spatialNode))
	}
	if blur > 0 || !shadowRadius.IsZero() {
		items = append(items, clip.BoxShadowKey(shadowRect, shadowRadius, blur, mode, cs.spatialNode))
	} else if v.ClipMode == displaylist.BoxShadowInset {
		items = append(items, clip.RectKey(shadowRect, displaylist.ClipModeClipOut, cs.spatialNode))
	}

	b.addPrimitive(cs, info, items, prim.BoxShadowKey{
		Color:        v.Color,
		BlurRadius:   blur,
		SpreadRadius: v.SpreadRadius,
		BorderRadius: shadowRadius,
		ClipMode:     v.ClipMode,
	})
}

// adjustRadius grows every corner of r by spread, clamped at zero.
func adjustRadius(r displaylist.BorderRadius, spread float32) displaylist.BorderRadius {
	grow := func(s flatten.Size) flatten.Size {
		if s.Width <= 0 && s.Height <= 0 {
			return s
		}
		return flatten.Size{Width: math32.Max(s.Width+spread, 0), Height: math32.Max(s.Height+spread, 0)}
	}
	return displaylist.BorderRadius{
		TopLeft:     grow(r.TopLeft),
		TopRight:    grow(r.TopRight),
		BottomLeft:  grow(r.BottomLeft),
		BottomRight: grow(r.BottomRight),
	}
}

func (b *Builder) addBackdrop(v displaylist.BackdropFilterItem, filters displaylist.Filters, apply bool) {
	info, cs := b.processCommon(&v.Common, nil, apply)
	b.addBackdropFilter(cs, info, newCompositeOps(filters, displaylist.MixBlendNormal))
}
