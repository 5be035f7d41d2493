package scene

import (
	"slices"

	"github.com/gogpu/flatten"
	"github.com/gogpu/flatten/clip"
	"github.com/gogpu/flatten/displaylist"
	"github.com/gogpu/flatten/intern"
	"github.com/gogpu/flatten/prim"
	"github.com/gogpu/flatten/spatial"
)

// setupPictureCaching wraps the part of prims that scrolls with a single
// scroll root in a tile cache picture.
//
// The list is expected to look like
//
//	[prims fixed to the root] [prims in one scroll root] [prims fixed to the root]
//
// Everything from the first scrolled primitive on goes into the cache.
// Finding a second scroll root abandons caching for the frame.
func (b *Builder) setupPictureCaching(prims []prim.Instance) []prim.Instance {
	if !b.cfg.EnablePictureCaching || b.cachingAbandoned {
		return prims
	}

	var (
		first      = -1
		scrollRoot = spatial.InvalidNode
		shared     []intern.Handle
		lastChain  = clip.ChainInvalid
		open       []clip.ChainID
		openAtCut  []clip.ChainID
	)
	for i, inst := range prims {
		switch inst.Kind {
		case prim.KindPushClipChain:
			open = append(open, inst.ClipChain)
			continue
		case prim.KindPopClipChain:
			if len(open) == 0 {
				b.softFault("scene.setupPictureCaching", "clip chain pop without push at %d", i)
				continue
			}
			open = open[:len(open)-1]
			continue
		}

		node := inst.SpatialNode
		if inst.Kind == prim.KindPicture {
			node = b.pictures.Picture(inst.Picture).SpatialNode
		}
		root := b.tree.FindScrollRoot(node)
		if root == spatial.RootNode {
			continue
		}
		switch scrollRoot {
		case spatial.InvalidNode:
			scrollRoot = root
		case root:
		default:
			b.cachingAbandoned = true
			flatten.Logger().Debug("picture caching abandoned: multiple scroll roots",
				"first", scrollRoot, "second", root)
			return prims
		}

		if first < 0 {
			first = i
			openAtCut = slices.Clone(open)
			shared = b.collectRectClips(root, inst.ClipChain, nil)
		} else if inst.ClipChain != lastChain {
			clips := b.collectRectClips(root, inst.ClipChain, nil)
			shared = slices.DeleteFunc(shared, func(h intern.Handle) bool {
				return !slices.Contains(clips, h)
			})
		}
		lastChain = inst.ClipChain
	}
	if first < 0 {
		return prims
	}

	// Clip scopes open across the cut are closed before it and reopened
	// inside the cache.
	out := make([]prim.Instance, 0, first+len(openAtCut)+1)
	out = append(out, prims[:first]...)
	for range openAtCut {
		out = append(out, prim.NewClipMarker(prim.KindPopClipChain, clip.ChainNone))
	}
	cached := make([]prim.Instance, 0, len(openAtCut)+len(prims)-first)
	for _, c := range openAtCut {
		cached = append(cached, prim.NewClipMarker(prim.KindPushClipChain, c))
	}
	cached = append(cached, prims[first:]...)

	chain := clip.ChainNone
	for _, h := range shared {
		chain = b.clips.AddChainNode(h, chain)
	}
	flatten.Logger().Debug("tile cache created",
		"scroll_root", scrollRoot, "primitives", len(cached), "shared_clips", len(shared))
	return append(out, b.newTileCache(scrollRoot, shared, cached, chain))
}

func (b *Builder) wantsImplicitTileCache() bool {
	return b.cfg.EnablePictureCaching && !b.explicitTileCache && !b.cachingAbandoned
}

// wrapImplicitTileCache puts the whole frame in one tile cache anchored at
// the root.
func (b *Builder) wrapImplicitTileCache(prims []prim.Instance) []prim.Instance {
	if len(prims) == 0 {
		return prims
	}
	return []prim.Instance{b.newTileCache(spatial.RootNode, nil, prims, clip.ChainNone)}
}

func (b *Builder) newTileCache(scrollRoot spatial.NodeIndex, shared []intern.Handle, prims []prim.Instance, chain clip.ChainID) prim.Instance {
	mode := prim.TileCache(scrollRoot, shared)
	idx := b.pictures.AddPicture(prim.Picture{
		Mode:               mode,
		ApplyLocalClipRect: true,
		IsBackfaceVisible:  true,
		RasterSpace:        displaylist.ScreenSpace(),
		SpatialNode:        scrollRoot,
		Prims:              prims,
	})
	b.tileCaches = append(b.tileCaches, idx)
	return b.newPictureInstance(idx, mode, true, chain, scrollRoot)
}
