package scene

import (
	"github.com/gogpu/flatten"
	"github.com/gogpu/flatten/clip"
	"github.com/gogpu/flatten/displaylist"
	"github.com/gogpu/flatten/filter"
	"github.com/gogpu/flatten/prim"
	"github.com/gogpu/flatten/spatial"
)

// compositeOps are the compositing effects of a stacking context.
type compositeOps struct {
	filters    []filter.Filter
	filterData []displaylist.FilterData
	primitives []displaylist.FilterPrimitive
	mixBlend   displaylist.MixBlendMode
}

// newCompositeOps sanitizes f. Invalid filter ops are dropped.
func newCompositeOps(f displaylist.Filters, mixBlend displaylist.MixBlendMode) compositeOps {
	ops := compositeOps{
		filterData: f.Data,
		primitives: f.Primitives,
		mixBlend:   mixBlend,
	}
	for _, op := range f.Ops {
		if s, ok := filter.Sanitize(op); ok {
			ops.filters = append(ops.filters, s)
		}
	}
	return ops
}

func (o *compositeOps) isEmpty() bool {
	return len(o.filters) == 0 && len(o.primitives) == 0 && o.mixBlend == displaylist.MixBlendNormal
}

// context3D is a stacking context's part in a preserve-3d hierarchy.
type context3D struct {
	in bool
	// isRoot marks the context that establishes the 3D rendering context.
	// Its rootPrims collects the pictures that get plane-split together.
	isRoot    bool
	rootPrims []prim.Instance
	ancestor  spatial.NodeIndex
}

// flattenedStackingContext accumulates the primitives of one open stacking
// context.
type flattenedStackingContext struct {
	prims []prim.Instance

	pipeline            displaylist.PipelineID
	backfaceVisible     bool
	rasterSpace         displaylist.RasterSpace
	spatialNode         spatial.NodeIndex
	clipChain           clip.ChainID
	frameOutputPipeline *displaylist.PipelineID
	ops                 compositeOps
	blitReason          prim.BlitReason
	transformStyle      displaylist.TransformStyle
	context3D           context3D
	createTileCache     bool
	isBackdropRoot      bool
}

// is3D reports whether the context has a usable preserve-3d style. Any
// composite op flattens it.
func (sc *flattenedStackingContext) is3D() bool {
	return sc.transformStyle == displaylist.TransformPreserve3D && sc.ops.isEmpty()
}

// isRedundant reports whether sc can be spliced into parent without a
// picture of its own.
func (sc *flattenedStackingContext) isRedundant(parent *flattenedStackingContext) bool {
	switch {
	case sc.context3D.in:
		return false
	case len(sc.ops.filters) > 0 || len(sc.ops.primitives) > 0:
		return false
	// A blend with an empty backdrop is a no-op.
	case sc.ops.mixBlend != displaylist.MixBlendNormal && len(parent.prims) > 0:
		return false
	case !sc.backfaceVisible:
		return false
	case sc.rasterSpace != parent.rasterSpace:
		return false
	case sc.frameOutputPipeline != nil:
		return false
	case sc.blitReason != 0:
		return false
	case sc.createTileCache:
		return false
	}
	return true
}

// cutItemSequence moves the primitives accumulated so far in sc into a new
// picture and returns an instance of it. ok is false when sc is empty.
func (b *Builder) cutItemSequence(sc *flattenedStackingContext, mode *prim.CompositeMode, ctx prim.Context3D) (idx prim.PictureIndex, inst prim.Instance, ok bool) {
	if len(sc.prims) == 0 {
		return 0, prim.Instance{}, false
	}
	idx = b.pictures.AddPicture(prim.Picture{
		Mode:               mode,
		Context3D:          ctx,
		ApplyLocalClipRect: true,
		IsBackfaceVisible:  sc.backfaceVisible,
		RasterSpace:        sc.rasterSpace,
		SpatialNode:        sc.spatialNode,
		Prims:              sc.prims,
	})
	sc.prims = nil
	return idx, b.newPictureInstance(idx, mode, sc.backfaceVisible, clip.ChainNone, sc.spatialNode), true
}

// stackingParams are the arguments of pushStackingContext.
type stackingParams struct {
	pipeline        displaylist.PipelineID
	ops             compositeOps
	transformStyle  displaylist.TransformStyle
	backfaceVisible bool
	createTileCache bool
	spatialNode     spatial.NodeIndex
	clipChain       clip.ChainID
	rasterSpace     displaylist.RasterSpace
	isBackdropRoot  bool
}

func (b *Builder) topStackingContext() *flattenedStackingContext {
	if len(b.scStack) == 0 {
		return nil
	}
	return b.scStack[len(b.scStack)-1]
}

func (b *Builder) pushStackingContext(p stackingParams) {
	parent := b.topStackingContext()

	var output *displaylist.PipelineID
	if (parent == nil || parent.pipeline != p.pipeline) && b.outputPipelines[p.pipeline] {
		id := p.pipeline
		output = &id
	}

	// Flat children recorded so far in a 3D parent are cut into their own
	// picture now, so they keep their order relative to this context.
	parentIs3D := parent != nil && parent.is3D()
	if parentIs3D {
		ctx := prim.Context3D{Kind: prim.In3D, Ancestor: parent.context3D.ancestor}
		if _, inst, ok := b.cutItemSequence(parent, prim.Blit(prim.BlitPreserve3D), ctx); ok {
			b.addToThreeDRoot(inst)
		}
	}

	var ctx3D context3D
	if p.ops.isEmpty() && (parentIs3D || p.transformStyle == displaylist.TransformPreserve3D) {
		// Backface visibility is judged against the nearest flat ancestor.
		ancestor := spatial.RootNode
		for i := len(b.scStack) - 1; i >= 0; i-- {
			if !b.scStack[i].is3D() {
				ancestor = b.scStack[i].spatialNode
				break
			}
		}
		ctx3D = context3D{in: true, isRoot: !parentIs3D, ancestor: ancestor}
	}

	var blit prim.BlitReason
	if b.hasComplexClip(p.clipChain) {
		blit = prim.BlitClip
	}
	if p.createTileCache {
		b.explicitTileCache = true
	}

	b.scStack = append(b.scStack, &flattenedStackingContext{
		pipeline:            p.pipeline,
		backfaceVisible:     p.backfaceVisible,
		rasterSpace:         p.rasterSpace,
		spatialNode:         p.spatialNode,
		clipChain:           p.clipChain,
		frameOutputPipeline: output,
		ops:                 p.ops,
		blitReason:          blit,
		transformStyle:      p.transformStyle,
		context3D:           ctx3D,
		createTileCache:     p.createTileCache,
		isBackdropRoot:      p.isBackdropRoot,
	})
}

func (b *Builder) popStackingContext() {
	if len(b.scStack) == 0 {
		b.softFault("scene.popStackingContext", "stacking context stack is empty")
		return
	}
	if len(b.pendingShadows) != 0 {
		flatten.Faultf("scene.popStackingContext", "%d shadow items still open", len(b.pendingShadows))
	}
	sc := b.scStack[len(b.scStack)-1]
	b.scStack = b.scStack[:len(b.scStack)-1]
	parent := b.topStackingContext()

	parentIsEmpty := true
	if parent != nil {
		if sc.isRedundant(parent) {
			b.splice(parent, sc)
			return
		}
		parentIsEmpty = len(parent.prims) == 0
	}

	switch {
	case sc.createTileCache:
		sc.prims = b.setupPictureCaching(sc.prims)
	case parent == nil && b.wantsImplicitTileCache():
		sc.prims = b.wrapImplicitTileCache(sc.prims)
	}

	// A 3D participant left empty, typically after a backdrop filter cut
	// its content, gets no leaf picture.
	emptyLeaf := sc.context3D.in && len(sc.prims) == 0 && parent != nil
	if emptyLeaf && (!sc.context3D.isRoot || len(sc.context3D.rootPrims) == 0) {
		return
	}

	var (
		leafMode   *prim.CompositeMode
		leafCtx    prim.Context3D
		leafOutput *displaylist.PipelineID
	)
	if sc.context3D.in {
		// Every 3D participant is drawn to its own surface for plane
		// splitting.
		leafCtx = prim.Context3D{Kind: prim.In3D, Ancestor: sc.context3D.ancestor}
		leafMode = prim.Blit(prim.BlitPreserve3D | sc.blitReason)
	} else {
		if sc.blitReason != 0 {
			leafMode = prim.Blit(sc.blitReason)
		}
		leafOutput = sc.frameOutputPipeline
	}

	var (
		cur  prim.PictureIndex
		inst prim.Instance
	)
	if !emptyLeaf {
		cur = b.pictures.AddPicture(prim.Picture{
			Mode:                leafMode,
			Context3D:           leafCtx,
			FrameOutputPipeline: leafOutput,
			ApplyLocalClipRect:  true,
			IsBackfaceVisible:   sc.backfaceVisible,
			RasterSpace:         sc.rasterSpace,
			SpatialNode:         sc.spatialNode,
			Prims:               sc.prims,
		})
		inst = b.newPictureInstance(cur, leafMode, sc.backfaceVisible, clip.ChainNone, sc.spatialNode)
	}

	if sc.context3D.in && sc.context3D.isRoot {
		// The leaf holds the trailing flat children; it joins the pictures
		// collected during the 3D scope under one container.
		prims := sc.context3D.rootPrims
		if !emptyLeaf {
			prims = append(prims, inst)
		}
		cur = b.pictures.AddPicture(prim.Picture{
			Context3D:           prim.Context3D{Kind: prim.In3D, IsRoot: true, Ancestor: sc.context3D.ancestor},
			FrameOutputPipeline: sc.frameOutputPipeline,
			ApplyLocalClipRect:  true,
			IsBackfaceVisible:   sc.backfaceVisible,
			RasterSpace:         sc.rasterSpace,
			SpatialNode:         sc.spatialNode,
			Prims:               prims,
		})
		inst = b.newPictureInstance(cur, nil, sc.backfaceVisible, clip.ChainNone, sc.spatialNode)
	}

	filtered, inst := b.wrapWithFilters(inst, cur, sc.ops.filters, sc.ops.filterData, sc.ops.primitives, true)
	hasFilters := filtered != cur
	cur = filtered

	if sc.ops.mixBlend != displaylist.MixBlendNormal && !parentIsEmpty {
		if parent.is3D() {
			flatten.Logger().Warn("mix-blend-mode inside a preserve-3d context ignored", "mode", sc.ops.mixBlend)
		} else {
			mode := prim.MixBlend(sc.ops.mixBlend)
			cur = b.pictures.AddPicture(prim.Picture{
				Mode:               mode,
				ApplyLocalClipRect: true,
				IsBackfaceVisible:  sc.backfaceVisible,
				RasterSpace:        sc.rasterSpace,
				SpatialNode:        sc.spatialNode,
				Prims:              []prim.Instance{inst},
			})
			inst = b.newPictureInstance(cur, mode, sc.backfaceVisible, clip.ChainNone, sc.spatialNode)
			parent.blitReason |= prim.BlitIsolate
		}
	}

	// Only the outermost picture is clipped.
	inst.ClipChain = sc.clipChain

	switch {
	case parent == nil:
		b.root = cur
		b.hasRoot = true
	case !hasFilters && parent.is3D():
		b.addToThreeDRoot(inst)
	default:
		parent.prims = append(parent.prims, inst)
	}
}

// splice appends the primitives of a redundant context to its parent,
// scoping them with clip chain markers when the context had a clip.
func (b *Builder) splice(parent, sc *flattenedStackingContext) {
	clipped := sc.clipChain != clip.ChainNone
	if clipped {
		parent.prims = append(parent.prims, prim.NewClipMarker(prim.KindPushClipChain, sc.clipChain))
	}
	if len(parent.prims) == 0 {
		parent.prims = sc.prims
	} else {
		parent.prims = append(parent.prims, sc.prims...)
	}
	if clipped {
		parent.prims = append(parent.prims, prim.NewClipMarker(prim.KindPopClipChain, clip.ChainNone))
	}
}

// addToThreeDRoot appends inst to the nearest enclosing 3D root.
func (b *Builder) addToThreeDRoot(inst prim.Instance) {
	for i := len(b.scStack) - 1; i >= 0; i-- {
		sc := b.scStack[i]
		switch {
		case !sc.context3D.in:
			flatten.Faultf("scene.addToThreeDRoot", "no 3D root on the stack")
		case sc.context3D.isRoot:
			sc.context3D.rootPrims = append(sc.context3D.rootPrims, inst)
			return
		}
	}
	flatten.Faultf("scene.addToThreeDRoot", "no 3D root on the stack")
}
