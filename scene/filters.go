package scene

import (
	"github.com/gogpu/flatten"
	"github.com/gogpu/flatten/clip"
	"github.com/gogpu/flatten/displaylist"
	"github.com/gogpu/flatten/filter"
	"github.com/gogpu/flatten/prim"
)

// wrapWithFilters wraps inst (an instance of picture idx) in one picture per
// CSS filter, or in a single picture for an SVG filter chain. It returns the
// outermost picture and its instance; idx is returned unchanged when no
// filter applies.
func (b *Builder) wrapWithFilters(
	inst prim.Instance,
	idx prim.PictureIndex,
	filters []filter.Filter,
	data []displaylist.FilterData,
	primitives []displaylist.FilterPrimitive,
	inflate bool,
) (prim.PictureIndex, prim.Instance) {
	if len(filters) > 0 && len(primitives) > 0 {
		flatten.Faultf("scene.wrapWithFilters", "filter ops and filter primitives on the same stacking context")
	}

	dataIndex := 0
	for _, f := range filters {
		var mode *prim.CompositeMode
		if f.Kind == displaylist.FilterComponentTransfer {
			if dataIndex >= len(data) {
				flatten.Faultf("scene.wrapWithFilters", "component transfer %d has no filter data", dataIndex)
			}
			d := filter.SanitizeData(data[dataIndex])
			dataIndex++
			if d.IsIdentity() {
				continue
			}
			h := b.interners.FilterData.Intern(d.Key(), func() filter.Data { return d })
			mode = prim.ComponentTransfer(h)
		} else {
			mode = prim.FilterMode(f)
		}
		idx, inst = b.wrapPicture(inst, mode, inflate)
	}

	if len(primitives) > 0 {
		sanitized := make([]filter.Data, len(data))
		for i, d := range data {
			sanitized[i] = filter.SanitizeData(d)
		}
		mode := prim.SvgFilter(filter.SanitizePrimitives(primitives), sanitized)
		idx, inst = b.wrapPicture(inst, mode, inflate)
	}
	return idx, inst
}

// wrapPicture puts inst in a new screen-space picture with mode and runs
// the opacity optimization on it.
func (b *Builder) wrapPicture(inst prim.Instance, mode *prim.CompositeMode, inflate bool) (prim.PictureIndex, prim.Instance) {
	idx := b.pictures.AddPicture(prim.Picture{
		Mode:               mode,
		ApplyLocalClipRect: true,
		IsBackfaceVisible:  true,
		RasterSpace:        displaylist.ScreenSpace(),
		SpatialNode:        inst.SpatialNode,
		Options:            prim.Options{InflateIfRequired: inflate},
		Prims:              []prim.Instance{inst},
	})
	out := b.newPictureInstance(idx, mode, true, clip.ChainNone, inst.SpatialNode)
	if b.pictures.OptimizePicture(idx) {
		flatten.Logger().Debug("filter folded", "picture", idx, "mode", mode)
	}
	return idx, out
}

// addBackdropFilter filters everything painted so far up to the nearest
// backdrop root and appends the result to that root.
func (b *Builder) addBackdropFilter(cs clipAndScroll, info primitiveInfo, ops compositeOps) {
	backdrop, ok := b.cutBackdropPicture()
	if !ok {
		// Nothing behind it.
		return
	}
	node := b.pictures.Picture(backdrop).SpatialNode
	inst := b.createPrimitive(info, clip.ChainNone, node, prim.BackdropKey{Picture: backdrop})

	rootPos := b.backdropRootIndex()
	// Clips of the contexts between the filter and the backdrop root still
	// apply to the filtered result.
	for i := len(b.scStack) - 1; i > rootPos; i-- {
		sc := b.scStack[i]
		idx := b.pictures.AddPicture(prim.Picture{
			ApplyLocalClipRect: true,
			IsBackfaceVisible:  sc.backfaceVisible,
			RasterSpace:        sc.rasterSpace,
			SpatialNode:        sc.spatialNode,
			Prims:              []prim.Instance{inst},
		})
		inst = b.newPictureInstance(idx, nil, sc.backfaceVisible, sc.clipChain, sc.spatialNode)
	}

	idx, inst := b.wrapWithFilters(inst, backdrop, ops.filters, ops.filterData, ops.primitives, false)
	for i := len(b.scStack) - 1; i > rootPos; i-- {
		sc := b.scStack[i]
		idx, inst = b.wrapWithFilters(inst, idx, sc.ops.filters, sc.ops.filterData, sc.ops.primitives, false)
	}
	inst.ClipChain = cs.clipChain
	root := b.scStack[rootPos]
	root.prims = append(root.prims, inst)
}

// cutBackdropPicture cuts the primitives of every open context down to the
// backdrop root into nested pictures, marks the outermost as a backdrop
// and appends it to the root. ok is false when there is nothing to cut.
func (b *Builder) cutBackdropPicture() (idx prim.PictureIndex, ok bool) {
	var (
		cut  prim.Instance
		root *flattenedStackingContext
	)
	for i := len(b.scStack) - 1; i >= 0; i-- {
		sc := b.scStack[i]
		if ok {
			sc.prims = append(sc.prims, cut)
		}
		idx, cut, ok = b.cutItemSequence(sc, nil, prim.Context3D{})
		if sc.isBackdropRoot {
			root = sc
			break
		}
	}
	if !ok {
		return 0, false
	}
	if root == nil {
		flatten.Faultf("scene.cutBackdropPicture", "no backdrop root on the stack")
	}
	pic := b.pictures.Picture(idx)
	pic.Mode = prim.Blit(prim.BlitBackdrop)
	cut = b.newPictureInstance(idx, pic.Mode, pic.IsBackfaceVisible, clip.ChainNone, pic.SpatialNode)
	root.prims = append(root.prims, cut)
	return idx, true
}

func (b *Builder) backdropRootIndex() int {
	for i := len(b.scStack) - 1; i >= 0; i-- {
		if b.scStack[i].isBackdropRoot {
			return i
		}
	}
	flatten.Faultf("scene.backdropRootIndex", "no backdrop root on the stack")
	return -1
}
