package scene

import (
	"github.com/gogpu/flatten"
	"github.com/gogpu/flatten/clip"
	"github.com/gogpu/flatten/displaylist"
	"github.com/gogpu/flatten/intern"
	"github.com/gogpu/flatten/spatial"
)

// clipRegion is the geometry of one clip node, translated into the space of
// its spatial node.
type clipRegion struct {
	main    flatten.Rect
	mask    *displaylist.ImageMask
	complex []displaylist.ComplexClipRegion
}

func newClipRegion(main flatten.Rect, complex []displaylist.ComplexClipRegion, mask *displaylist.ImageMask, offset flatten.Vector) clipRegion {
	r := clipRegion{main: main.Translate(offset)}
	if mask != nil {
		m := *mask
		m.Rect = m.Rect.Translate(offset)
		r.mask = &m
	}
	if len(complex) > 0 {
		r.complex = make([]displaylist.ComplexClipRegion, len(complex))
		for i, c := range complex {
			c.Rect = c.Rect.Translate(offset)
			r.complex[i] = c
		}
	}
	return r
}

// buildClipChain interns items and links them, in order, under parent.
// With no items the parent is returned unchanged.
func (b *Builder) buildClipChain(items []clip.ItemKey, parent clip.ChainID) clip.ChainID {
	chain := parent
	for _, item := range items {
		handle := clip.Intern(b.interners.Clips, item)
		chain = b.clips.AddChainNode(handle, chain)
	}
	return chain
}

// resolveClipChain returns the chain for a clip id referenced as a parent.
// An invalid id means the pipeline's clip.
func (b *Builder) resolveClipChain(id displaylist.ClipID) clip.ChainID {
	if !id.IsValid() {
		return b.pipelineClip()
	}
	return b.idMapper.ClipChainID(id)
}

// addClipNode defines clip id as the main rect, then the optional image
// mask, then each complex region, chained under parent.
func (b *Builder) addClipNode(id displaylist.ClipID, parent displaylist.SpaceAndClip, region clipRegion) clip.ChainID {
	chain := b.resolveClipChain(parent.Clip)
	node := b.idMapper.SpatialNodeIndex(parent.Spatial)

	items := make([]clip.ItemKey, 0, 2+len(region.complex))
	items = append(items, clip.RectKey(region.main, displaylist.ClipModeClip, node))
	if region.mask != nil {
		items = append(items, clip.ImageMaskKey(*region.mask, node))
	}
	for _, c := range region.complex {
		items = append(items, clip.RoundedRectKey(c.Rect, c.Radii, c.Mode, node))
	}
	chain = b.buildClipChain(items, chain)
	b.idMapper.AddClipChain(id, chain, len(items))
	return chain
}

// addClipChainAlias defines a user clip chain by re-linking the nodes of
// existing clips under the alias's parent.
func (b *Builder) addClipChainAlias(item displaylist.ClipChainItem) {
	chain := b.pipelineClip()
	if item.Parent != nil {
		chain = b.idMapper.ClipChainID(item.Parent.ClipID())
	}
	for _, id := range item.Clips {
		src := b.idMapper.ClipNode(id)
		cur := src.chain
		for range src.count {
			n := b.clips.Chain(cur)
			cur = n.Parent
			chain = b.clips.AddChainNode(n.Handle, chain)
		}
	}
	b.idMapper.AddClipChain(item.ID.ClipID(), chain, 0)
}

// hasComplexClip reports whether any node of chain needs a mask.
func (b *Builder) hasComplexClip(chain clip.ChainID) bool {
	for chain != clip.ChainNone && chain != clip.ChainInvalid {
		n := b.clips.Chain(chain)
		if b.interners.Clips.Data(n.Handle).NodeKind == clip.NodeComplex {
			return true
		}
		chain = n.Parent
	}
	return false
}

// collectRectClips appends the rectangle clips of chain that are positioned
// by scrollRoot or one of its ancestors.
func (b *Builder) collectRectClips(scrollRoot spatial.NodeIndex, chain clip.ChainID, out []intern.Handle) []intern.Handle {
	for chain != clip.ChainNone && chain != clip.ChainInvalid {
		n := b.clips.Chain(chain)
		data := b.interners.Clips.Data(n.Handle)
		if data.NodeKind == clip.NodeRectangle && b.tree.IsAncestor(data.SpatialNode, scrollRoot) {
			out = append(out, n.Handle)
		}
		chain = n.Parent
	}
	return out
}
