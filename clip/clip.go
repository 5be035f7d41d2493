// Package clip defines interned clip items and the clip chain forest.
//
// A clip chain is a linked list of nodes, each referencing one interned clip
// item and a parent chain. Chains share suffixes, so the set of all chains
// forms a forest rooted at ChainNone.
package clip

import (
	"fmt"
	"math"

	"github.com/gogpu/flatten"
	"github.com/gogpu/flatten/displaylist"
	"github.com/gogpu/flatten/intern"
	"github.com/gogpu/flatten/spatial"
)

// ChainID indexes a node in a Store.
type ChainID uint32

const (
	// ChainNone is the root of the forest: no clipping.
	ChainNone ChainID = math.MaxUint32

	// ChainInvalid means no clip was requested and the pipeline default
	// applies.
	ChainInvalid ChainID = math.MaxUint32 - 1
)

// String implements fmt.Stringer.
func (id ChainID) String() string {
	switch id {
	case ChainNone:
		return "NONE"
	case ChainInvalid:
		return "INVALID"
	default:
		return fmt.Sprintf("chain#%d", uint32(id))
	}
}

// ItemKind is the shape of a clip item.
type ItemKind uint8

const (
	ItemRectangle ItemKind = iota
	ItemRoundedRectangle
	ItemImageMask
	ItemBoxShadow
)

// String implements fmt.Stringer.
func (k ItemKind) String() string {
	switch k {
	case ItemRectangle:
		return "rect"
	case ItemRoundedRectangle:
		return "rounded-rect"
	case ItemImageMask:
		return "image-mask"
	case ItemBoxShadow:
		return "box-shadow"
	default:
		return fmt.Sprintf("ItemKind(%d)", k)
	}
}

// NodeKind classifies clip items for compositing decisions.
type NodeKind uint8

const (
	// NodeRectangle is an axis-aligned rect in clip mode. It can be applied
	// without a mask.
	NodeRectangle NodeKind = iota
	// NodeComplex needs a mask: rounded corners, clip-out, images or
	// shadows.
	NodeComplex
)

// ItemKey is the interned identity of one clip item. Rect is in the local
// space of SpatialNode.
type ItemKey struct {
	Kind        ItemKind
	Mode        displaylist.ClipMode
	Rect        flatten.Rect
	Radii       displaylist.BorderRadius
	Image       displaylist.ImageKey
	Repeat      bool
	BlurRadius  float32
	SpatialNode spatial.NodeIndex
}

// NodeKind returns the compositing class of the item.
func (k ItemKey) NodeKind() NodeKind {
	if k.Kind == ItemRectangle && k.Mode == displaylist.ClipModeClip {
		return NodeRectangle
	}
	return NodeComplex
}

// RectKey returns the key for a plain rectangle clip.
func RectKey(r flatten.Rect, mode displaylist.ClipMode, node spatial.NodeIndex) ItemKey {
	return ItemKey{Kind: ItemRectangle, Mode: mode, Rect: r, SpatialNode: node}
}

// RoundedRectKey returns the key for a rounded rectangle clip. A zero
// radius degrades to a plain rectangle.
func RoundedRectKey(r flatten.Rect, radii displaylist.BorderRadius, mode displaylist.ClipMode, node spatial.NodeIndex) ItemKey {
	if radii.IsZero() {
		return RectKey(r, mode, node)
	}
	return ItemKey{Kind: ItemRoundedRectangle, Mode: mode, Rect: r, Radii: radii, SpatialNode: node}
}

// ImageMaskKey returns the key for an image mask clip.
func ImageMaskKey(m displaylist.ImageMask, node spatial.NodeIndex) ItemKey {
	return ItemKey{Kind: ItemImageMask, Rect: m.Rect, Image: m.Image, Repeat: m.Repeat, SpatialNode: node}
}

// BoxShadowKey returns the key for the blurred edge of a box shadow.
func BoxShadowKey(shadowRect flatten.Rect, radii displaylist.BorderRadius, blur float32, mode displaylist.ClipMode, node spatial.NodeIndex) ItemKey {
	return ItemKey{Kind: ItemBoxShadow, Mode: mode, Rect: shadowRect, Radii: radii, BlurRadius: blur, SpatialNode: node}
}

// ItemData is the per-handle data kept by the clip interner.
type ItemData struct {
	NodeKind    NodeKind
	SpatialNode spatial.NodeIndex
}

// Interner interns clip items.
type Interner = intern.Interner[ItemKey, ItemData]

// NewInterner creates an empty clip interner.
func NewInterner() *Interner {
	return intern.New[ItemKey, ItemData]()
}

// Intern interns key and returns its handle.
func Intern(in *Interner, key ItemKey) intern.Handle {
	return in.Intern(key, func() ItemData {
		return ItemData{NodeKind: key.NodeKind(), SpatialNode: key.SpatialNode}
	})
}

// ChainNode is one link of a clip chain.
type ChainNode struct {
	Handle intern.Handle
	Parent ChainID
}

// Store is the clip chain forest for one pass. A node's parent is always
// created before the node.
type Store struct {
	nodes []ChainNode
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{}
}

// AddChainNode appends a node referencing handle under parent.
func (s *Store) AddChainNode(handle intern.Handle, parent ChainID) ChainID {
	if parent != ChainNone && int(parent) >= len(s.nodes) {
		flatten.Faultf("clip.AddChainNode", "parent %v does not exist", parent)
	}
	s.nodes = append(s.nodes, ChainNode{Handle: handle, Parent: parent})
	return ChainID(len(s.nodes) - 1)
}

// Chain returns the node for id.
func (s *Store) Chain(id ChainID) ChainNode {
	if int(id) >= len(s.nodes) {
		flatten.Faultf("clip.Chain", "no chain node %v", id)
	}
	return s.nodes[id]
}

// Len returns the number of chain nodes.
func (s *Store) Len() int {
	return len(s.nodes)
}

// Handles returns the handles of the chain starting at id, innermost
// first.
func (s *Store) Handles(id ChainID) []intern.Handle {
	var out []intern.Handle
	for id != ChainNone {
		n := s.Chain(id)
		out = append(out, n.Handle)
		id = n.Parent
	}
	return out
}
