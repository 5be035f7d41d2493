package scene

import (
	"github.com/gogpu/flatten"
	"github.com/gogpu/flatten/clip"
	"github.com/gogpu/flatten/displaylist"
	"github.com/gogpu/flatten/filter"
	"github.com/gogpu/flatten/prim"
)

// pendingShadow is an open shadow scope.
type pendingShadow struct {
	shadow        displaylist.Shadow
	shouldInflate bool
	cs            clipAndScroll
}

// pendingPrimitive is a shadowable primitive recorded while a shadow scope
// is open.
type pendingPrimitive struct {
	info primitiveInfo
	cs   clipAndScroll
	key  prim.Key
}

// shadowItem is one entry of the shadow queue: exactly one field is set.
type shadowItem struct {
	shadow *pendingShadow
	prim   *pendingPrimitive
}

func (b *Builder) pushShadow(shadow displaylist.Shadow, cs clipAndScroll, shouldInflate bool) {
	b.pendingShadows = append(b.pendingShadows, shadowItem{
		shadow: &pendingShadow{shadow: shadow, shouldInflate: shouldInflate, cs: cs},
	})
}

// addPrimitive adds a primitive built from key. While a shadow scope is
// open, shadowable primitives are queued until popAllShadows.
func (b *Builder) addPrimitive(cs clipAndScroll, info primitiveInfo, clipItems []clip.ItemKey, key prim.Key) {
	_, shadowable := key.(prim.Shadowable)
	if len(b.pendingShadows) == 0 || !shadowable {
		if !key.IsVisible() {
			b.addPrimitiveToHitTesting(info, cs)
			return
		}
		chain := b.buildClipChain(clipItems, cs.clipChain)
		b.addPrimToDrawList(info, chain, cs, key)
		return
	}
	if len(clipItems) > 0 {
		flatten.Faultf("scene.addPrimitive", "per-primitive clips on shadowed %v", key.Kind())
	}
	b.pendingShadows = append(b.pendingShadows, shadowItem{
		prim: &pendingPrimitive{info: info, cs: cs, key: key},
	})
}

// popAllShadows drains the shadow queue. Each shadow becomes a blur picture
// holding offset copies of the primitives queued after it; the primitives
// themselves follow, so they paint on top of their shadows.
func (b *Builder) popAllShadows() {
	if len(b.pendingShadows) == 0 {
		flatten.Faultf("scene.popAllShadows", "no shadows are open")
	}
	items := b.pendingShadows
	b.pendingShadows = nil

	for i, item := range items {
		if item.prim != nil {
			if item.prim.key.IsVisible() {
				b.addPrimToDrawList(item.prim.info, item.prim.cs.clipChain, item.prim.cs, item.prim.key)
			}
			continue
		}

		ps := item.shadow
		// The blur standard deviation is half the CSS blur radius.
		stdDeviation := ps.shadow.BlurRadius * 0.5
		// An unblurred shadow draws straight into the parent surface, so
		// it keeps the parent's raster space and needs the local clip.
		passThrough := ps.shadow.BlurRadius == 0
		raster := displaylist.LocalSpace(1)
		if passThrough {
			raster = b.topStackingContext().rasterSpace
		}

		var prims []prim.Instance
		for _, later := range items[i+1:] {
			if later.prim == nil {
				continue
			}
			prims = append(prims, b.createShadowPrimitive(ps, later.prim))
		}
		if len(prims) == 0 {
			continue
		}

		blur, ok := filter.Sanitize(displaylist.Blur(stdDeviation))
		if !ok {
			blur = filter.Filter(displaylist.Blur(0))
		}
		mode := prim.FilterMode(blur)
		idx := b.pictures.AddPicture(prim.Picture{
			Mode:               mode,
			ApplyLocalClipRect: passThrough,
			IsBackfaceVisible:  true,
			RasterSpace:        raster,
			SpatialNode:        ps.cs.spatialNode,
			Options:            prim.Options{InflateIfRequired: ps.shouldInflate},
			Prims:              prims,
		})
		b.addToDrawList(b.newPictureInstance(idx, mode, true, ps.cs.clipChain, ps.cs.spatialNode))
	}
}

// createShadowPrimitive returns the copy of pp cast by shadow ps.
func (b *Builder) createShadowPrimitive(ps *pendingShadow, pp *pendingPrimitive) prim.Instance {
	info := pp.info
	info.rect = info.rect.Translate(ps.shadow.Offset)
	info.clipRect = info.clipRect.Translate(ps.shadow.Offset)
	key := pp.key.(prim.Shadowable).CreateShadow(ps.shadow)
	return b.createPrimitive(info, pp.cs.clipChain, pp.cs.spatialNode, key)
}
