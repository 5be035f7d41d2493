package scene

import "github.com/gogpu/flatten/hittest"

// addPrimitiveToHitTesting records a tagged primitive with the clip chains
// of every open stacking context.
func (b *Builder) addPrimitiveToHitTesting(info primitiveInfo, cs clipAndScroll) {
	if info.hitInfo == nil {
		return
	}
	start := b.hitTesting.NextClipChainIndex()
	b.hitTesting.AddClipChain(cs.clipChain)
	for _, sc := range b.scStack {
		b.hitTesting.AddClipChain(sc.clipChain)
	}
	b.hitTesting.AddItem(hittest.Item{
		Tag:         *info.hitInfo,
		Rect:        info.rect,
		ClipRect:    info.clipRect,
		SpatialNode: cs.spatialNode,
		ClipChains:  hittest.Range{Start: start, End: b.hitTesting.NextClipChainIndex()},
	})
}
