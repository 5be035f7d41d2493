package scene

import (
	"github.com/gogpu/flatten"
	"github.com/gogpu/flatten/clip"
	"github.com/gogpu/flatten/displaylist"
	"github.com/gogpu/flatten/spatial"
)

// flattenItems walks it until its end or a bare container pop.
// applyPipelineClip is false once an enclosing stacking context carries the
// pipeline clip.
func (b *Builder) flattenItems(it *displaylist.Iterator, pipeline displaylist.PipelineID, applyPipelineClip bool) {
	for {
		item, ok := it.Next()
		if !ok {
			return
		}
		if item.Kind().IsContainerPop() {
			return
		}
		b.flattenItem(it, item, pipeline, applyPipelineClip)
	}
}

func (b *Builder) flattenItem(it *displaylist.Iterator, item displaylist.Item, pipeline displaylist.PipelineID, apply bool) {
	switch v := item.(type) {
	case displaylist.RectangleItem:
		b.addRectangle(v, apply)
	case displaylist.ClearRectangleItem:
		b.addClearRectangle(v, apply)
	case displaylist.HitTestItem:
		b.addHitTest(v, apply)
	case displaylist.TextItem:
		b.addText(v, apply)
	case displaylist.LineItem:
		b.addLine(v, apply)
	case displaylist.ImageItem:
		b.addImage(v, apply)
	case displaylist.YuvImageItem:
		b.addYuvImage(v, apply)
	case displaylist.BorderItem:
		b.addBorder(v, apply)
	case displaylist.BoxShadowItem:
		b.addBoxShadow(v, apply)
	case displaylist.GradientItem:
		b.addGradient(v, it.GradientStops(), apply)
	case displaylist.RadialGradientItem:
		b.addRadialGradient(v, it.GradientStops(), apply)
	case displaylist.BackdropFilterItem:
		b.addBackdrop(v, it.Filters(), apply)

	case displaylist.PushShadowItem:
		cs := b.clipAndScroll(v.SpaceAndClip.Clip, v.SpaceAndClip.Spatial, apply)
		b.pushShadow(v.Shadow, cs, v.ShouldInflate)
	case displaylist.PopAllShadowsItem:
		b.popAllShadows()

	case displaylist.ClipItem:
		node := b.idMapper.SpatialNodeIndex(v.Parent.Spatial)
		region := newClipRegion(v.ClipRect, v.Complex, v.ImageMask, b.currentOffset(node))
		b.addClipNode(v.ID, v.Parent, region)
	case displaylist.ClipChainItem:
		b.addClipChainAlias(v)
	case displaylist.ScrollFrameItem:
		b.flattenScrollFrame(v, pipeline)
	case displaylist.StickyFrameItem:
		b.flattenStickyFrame(v, pipeline)
	case displaylist.IframeItem:
		b.flattenIframe(v)

	case displaylist.PushReferenceFrameItem:
		b.flattenReferenceFrame(it, v, pipeline, apply)
	case displaylist.PushStackingContextItem:
		b.flattenStackingContext(it, v, pipeline, apply)

	case displaylist.SetGradientStopsItem, displaylist.SetFilterOpsItem,
		displaylist.SetFilterDataItem, displaylist.SetFilterPrimitivesItem:
		// Read by the next item through the iterator.
	default:
		flatten.Faultf("scene.flattenItem", "unexpected item %v", item.Kind())
	}
}

func (b *Builder) flattenStackingContext(it *displaylist.Iterator, v displaylist.PushStackingContextItem, pipeline displaylist.PipelineID, apply bool) {
	// Filter payloads belong to the push and must be read before the
	// iterator moves into the children.
	ops := newCompositeOps(it.Filters(), v.Context.MixBlendMode)

	// An empty context still paints when a filter can generate content
	// (flood, drop shadow) from nothing.
	if it.CurrentContainerEmpty() && len(ops.filters) == 0 && len(ops.primitives) == 0 {
		it.SkipCurrentContainer()
		return
	}

	node := b.idMapper.SpatialNodeIndex(v.Spatial)
	chain := clip.ChainNone
	if v.Context.Clip != nil {
		chain = b.idMapper.ClipChainID(*v.Context.Clip)
	}

	b.pushStackingContext(stackingParams{
		pipeline:        pipeline,
		ops:             ops,
		transformStyle:  v.Context.TransformStyle,
		backfaceVisible: v.Context.Flags.IsBackfaceVisible(),
		createTileCache: v.Context.CacheTiles,
		spatialNode:     node,
		clipChain:       chain,
		rasterSpace:     v.Context.RasterSpace,
		isBackdropRoot:  v.Context.IsBackdropRoot,
	})
	b.rfMapper.PushOffset(v.Origin.ToVector())
	b.flattenItems(it.SubIterator(), pipeline, apply && chain == clip.ChainNone)
	b.rfMapper.PopOffset()
	b.popStackingContext()

	it.SkipCurrentContainer()
}

func (b *Builder) flattenReferenceFrame(it *displaylist.Iterator, v displaylist.PushReferenceFrameItem, pipeline displaylist.PipelineID, apply bool) {
	parent := b.idMapper.SpatialNodeIndex(v.ParentSpatial)
	origin := v.Origin.ToVector().Add(b.currentOffset(parent))
	b.pushReferenceFrame(v.ID, parent, pipeline, v.TransformStyle, v.Transform, v.FrameKind, origin)

	// Positions inside a reference frame are relative to its origin.
	b.rfMapper.PushScope()
	b.flattenItems(it.SubIterator(), pipeline, apply)
	b.rfMapper.PopScope()

	it.SkipCurrentContainer()
}

// flattenScrollFrame defines the frame's clip and its scroll node. The clip
// rect doubles as the scroll viewport.
func (b *Builder) flattenScrollFrame(v displaylist.ScrollFrameItem, pipeline displaylist.PipelineID) {
	parent := b.idMapper.SpatialNodeIndex(v.Parent.Spatial)
	region := newClipRegion(v.ClipRect, v.Complex, v.ImageMask, b.currentOffset(parent))
	b.addClipNode(v.ClipID, v.Parent, region)

	b.addScrollFrame(v.ScrollFrameID, parent, v.ExternalID, pipeline,
		region.main, v.ContentRect.Size(), v.Sensitivity, spatial.ScrollFrameExplicit, v.ExternalScrollOffset)
}

func (b *Builder) flattenStickyFrame(v displaylist.StickyFrameItem, pipeline displaylist.PipelineID) {
	parent := b.idMapper.SpatialNodeIndex(v.Parent)
	idx := b.tree.AddStickyFrame(parent, spatial.StickyFrameInfo{
		FrameRect:               v.Bounds.Translate(b.currentOffset(parent)),
		Margins:                 v.Margins,
		VerticalOffsetBounds:    v.VerticalOffsetBounds,
		HorizontalOffsetBounds:  v.HorizontalOffsetBounds,
		PreviouslyAppliedOffset: v.PreviouslyAppliedOffset,
	}, pipeline)
	b.idMapper.MapSpatialNode(v.ID, idx)
}

// flattenIframe flattens an embedded pipeline under its own root clip,
// reference frame and scroll frame. A missing pipeline drops the item.
func (b *Builder) flattenIframe(v displaylist.IframeItem) {
	p := b.doc.Pipelines[v.Pipeline]
	if p == nil {
		if v.IgnoreMissingPipeline {
			flatten.Logger().Debug("iframe skipped: pipeline not ready", "pipeline", v.Pipeline)
		} else {
			flatten.Logger().Warn("iframe dropped: unknown pipeline", "pipeline", v.Pipeline)
		}
		return
	}

	parent := b.idMapper.SpatialNodeIndex(v.SpaceAndClip.Spatial)
	offset := b.currentOffset(parent)

	chain := b.addClipNode(displaylist.RootClip(v.Pipeline), v.SpaceAndClip,
		newClipRegion(v.ClipRect, nil, nil, offset))
	b.pipelineClips = append(b.pipelineClips, chain)

	bounds := v.Bounds.Translate(offset)
	rf := b.pushReferenceFrame(displaylist.RootReferenceFrame(v.Pipeline), parent, v.Pipeline,
		displaylist.TransformFlat, flatten.Identity(), displaylist.ReferenceFrameTransform, bounds.Origin().ToVector())
	scroll := b.addScrollFrame(displaylist.RootScrollNode(v.Pipeline), rf,
		&displaylist.ExternalScrollID{Pipeline: v.Pipeline}, v.Pipeline,
		flatten.RectFromOriginSize(flatten.Point{}, bounds.Size()), p.DisplayList.ContentSize(),
		displaylist.ScrollScriptAndInputEvents, spatial.ScrollFramePipelineRoot, flatten.Vector{})

	// The pipeline's own context; redundant unless the pipeline is a frame
	// output.
	b.pushStackingContext(stackingParams{
		pipeline:        v.Pipeline,
		transformStyle:  displaylist.TransformFlat,
		backfaceVisible: true,
		spatialNode:     scroll,
		clipChain:       clip.ChainNone,
		rasterSpace:     b.topStackingContext().rasterSpace,
	})
	b.rfMapper.PushScope()
	b.flattenItems(p.DisplayList.Iter(), v.Pipeline, true)
	b.rfMapper.PopScope()
	b.popStackingContext()

	b.pipelineClips = b.pipelineClips[:len(b.pipelineClips)-1]
}
