// Package hittest records tagged primitives during flattening and answers
// point queries against them.
package hittest

import (
	"github.com/gogpu/flatten"
	"github.com/gogpu/flatten/clip"
	"github.com/gogpu/flatten/displaylist"
	"github.com/gogpu/flatten/spatial"
)

// Range is a half-open range [Start, End) into the clip chain root list.
type Range struct {
	Start, End int
}

// Len returns the number of entries in the range.
func (r Range) Len() int {
	return r.End - r.Start
}

// Item is one hit-testable area.
type Item struct {
	Tag         displaylist.ItemTag
	Rect        flatten.Rect
	ClipRect    flatten.Rect
	SpatialNode spatial.NodeIndex
	// ClipChains lists the clip chain roots that apply to the item: its
	// own chain followed by those of every enclosing stacking context.
	ClipChains Range
}

// Scene is the hit-testing index produced by one pass.
type Scene struct {
	items      []Item
	clipChains []clip.ChainID
}

// NewScene creates an empty scene.
func NewScene() *Scene {
	return &Scene{}
}

// NextClipChainIndex returns the index the next AddClipChain will use.
func (s *Scene) NextClipChainIndex() int {
	return len(s.clipChains)
}

// AddClipChain appends a clip chain root. NONE is skipped.
func (s *Scene) AddClipChain(id clip.ChainID) {
	if id == clip.ChainNone {
		return
	}
	s.clipChains = append(s.clipChains, id)
}

// AddItem records a hit-testable item.
func (s *Scene) AddItem(item Item) {
	s.items = append(s.items, item)
}

// Items returns all items in paint order.
func (s *Scene) Items() []Item {
	return s.items
}

// ClipChains returns the clip chain roots in r.
func (s *Scene) ClipChains(r Range) []clip.ChainID {
	return s.clipChains[r.Start:r.End]
}

// Result is one hit.
type Result struct {
	Tag         displaylist.ItemTag
	SpatialNode spatial.NodeIndex
	Point       flatten.Point
}

// HitTest returns the tags of items containing p, topmost first. Points
// and rects are compared in the items' local space, which matches world
// space for untransformed, unscrolled content. Clip chains are not
// evaluated; the local clip rect is.
func (s *Scene) HitTest(p flatten.Point) []Result {
	var out []Result
	for i := len(s.items) - 1; i >= 0; i-- {
		it := &s.items[i]
		if it.Rect.Contains(p) && it.ClipRect.Contains(p) {
			out = append(out, Result{Tag: it.Tag, SpatialNode: it.SpatialNode, Point: p})
		}
	}
	return out
}
