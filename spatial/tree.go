// Package spatial stores the positioning tree used while flattening:
// reference frames, scroll frames and sticky frames.
//
// The tree is append-only during a pass. It does not compute world
// transforms; it only answers the structural queries the flattener needs
// (scroll roots, accumulated external scroll offsets, ancestry).
package spatial

import (
	"fmt"
	"math"

	"github.com/chewxy/math32"

	"github.com/gogpu/flatten"
	"github.com/gogpu/flatten/displaylist"
)

// NodeIndex is a dense index into a Tree.
type NodeIndex uint32

const (
	// RootNode is the root reference frame of the root pipeline.
	RootNode NodeIndex = 0

	// InvalidNode marks the absence of a parent.
	InvalidNode NodeIndex = math.MaxUint32
)

// String implements fmt.Stringer.
func (i NodeIndex) String() string {
	if i == InvalidNode {
		return "#invalid"
	}
	return fmt.Sprintf("#%d", uint32(i))
}

// NodeKind identifies the variant stored in a Node.
type NodeKind uint8

const (
	KindReferenceFrame NodeKind = iota
	KindScrollFrame
	KindStickyFrame
)

// String implements fmt.Stringer.
func (k NodeKind) String() string {
	switch k {
	case KindReferenceFrame:
		return "ReferenceFrame"
	case KindScrollFrame:
		return "ScrollFrame"
	case KindStickyFrame:
		return "StickyFrame"
	default:
		return fmt.Sprintf("NodeKind(%d)", k)
	}
}

// ScrollFrameKind tells a pipeline's implicit root scroll frame apart from
// frames defined by display list items.
type ScrollFrameKind uint8

const (
	ScrollFramePipelineRoot ScrollFrameKind = iota
	ScrollFrameExplicit
)

// ReferenceFrameInfo describes a reference frame node.
type ReferenceFrameInfo struct {
	TransformStyle displaylist.TransformStyle
	Transform      flatten.Transform
	Kind           displaylist.ReferenceFrameKind
	Origin         flatten.Vector
}

// ScrollFrameInfo describes a scroll frame node.
type ScrollFrameInfo struct {
	FrameRect   flatten.Rect
	ContentSize flatten.Size
	// ScrollableSize is how far the content can move inside the frame.
	ScrollableSize       flatten.Size
	ExternalID           *displaylist.ExternalScrollID
	Sensitivity          displaylist.ScrollSensitivity
	Kind                 ScrollFrameKind
	ExternalScrollOffset flatten.Vector
}

// IsScrollable reports whether the frame has content outside its viewport.
func (s *ScrollFrameInfo) IsScrollable() bool {
	return s.ScrollableSize.Width > 0 || s.ScrollableSize.Height > 0
}

// StickyFrameInfo describes a sticky frame node.
type StickyFrameInfo struct {
	FrameRect               flatten.Rect
	Margins                 displaylist.StickyMargins
	VerticalOffsetBounds    displaylist.StickyOffsetBounds
	HorizontalOffsetBounds  displaylist.StickyOffsetBounds
	PreviouslyAppliedOffset flatten.Vector
}

// Node is one entry of the tree. Exactly one of the info fields is set,
// selected by Kind.
type Node struct {
	Parent   NodeIndex
	Pipeline displaylist.PipelineID
	Kind     NodeKind

	Reference *ReferenceFrameInfo
	Scroll    *ScrollFrameInfo
	Sticky    *StickyFrameInfo
}

// Tree is an append-only arena of spatial nodes.
type Tree struct {
	nodes []Node
}

// NewTree creates an empty tree.
func NewTree() *Tree {
	return &Tree{}
}

// Len returns the number of nodes.
func (t *Tree) Len() int {
	return len(t.nodes)
}

// Node returns the node at index i. It panics on an out-of-range index.
func (t *Tree) Node(i NodeIndex) *Node {
	return &t.nodes[i]
}

// Reset drops all nodes so the tree can be reused for another pass.
func (t *Tree) Reset() {
	t.nodes = t.nodes[:0]
}

func (t *Tree) add(n Node) NodeIndex {
	if n.Parent != InvalidNode && int(n.Parent) >= len(t.nodes) {
		flatten.Faultf("spatial.add", "parent %v does not exist", n.Parent)
	}
	t.nodes = append(t.nodes, n)
	return NodeIndex(len(t.nodes) - 1)
}

// AddReferenceFrame appends a reference frame. parent is InvalidNode for
// the root of the whole tree.
func (t *Tree) AddReferenceFrame(
	parent NodeIndex,
	style displaylist.TransformStyle,
	transform flatten.Transform,
	kind displaylist.ReferenceFrameKind,
	origin flatten.Vector,
	pipeline displaylist.PipelineID,
) NodeIndex {
	return t.add(Node{
		Parent:   parent,
		Pipeline: pipeline,
		Kind:     KindReferenceFrame,
		Reference: &ReferenceFrameInfo{
			TransformStyle: style,
			Transform:      transform,
			Kind:           kind,
			Origin:         origin,
		},
	})
}

// AddScrollFrame appends a scroll frame whose viewport is frameRect and
// whose content is contentSize.
func (t *Tree) AddScrollFrame(
	parent NodeIndex,
	externalID *displaylist.ExternalScrollID,
	pipeline displaylist.PipelineID,
	frameRect flatten.Rect,
	contentSize flatten.Size,
	sensitivity displaylist.ScrollSensitivity,
	kind ScrollFrameKind,
	externalScrollOffset flatten.Vector,
) NodeIndex {
	scrollable := flatten.Size{
		Width:  math32.Max(contentSize.Width-frameRect.Width(), 0),
		Height: math32.Max(contentSize.Height-frameRect.Height(), 0),
	}
	return t.add(Node{
		Parent:   parent,
		Pipeline: pipeline,
		Kind:     KindScrollFrame,
		Scroll: &ScrollFrameInfo{
			FrameRect:            frameRect,
			ContentSize:          contentSize,
			ScrollableSize:       scrollable,
			ExternalID:           externalID,
			Sensitivity:          sensitivity,
			Kind:                 kind,
			ExternalScrollOffset: externalScrollOffset,
		},
	})
}

// AddStickyFrame appends a sticky frame.
func (t *Tree) AddStickyFrame(parent NodeIndex, info StickyFrameInfo, pipeline displaylist.PipelineID) NodeIndex {
	return t.add(Node{
		Parent:   parent,
		Pipeline: pipeline,
		Kind:     KindStickyFrame,
		Sticky:   &info,
	})
}

// FindScrollRoot returns the outermost scrollable explicit scroll frame
// that positions index without an intervening transform. Content that
// only moves with the page, or sits under a transform, returns RootNode.
//
// The walk stops at the first pipeline root scroll frame, so iframe
// content is attributed to scroll frames within its own pipeline.
func (t *Tree) FindScrollRoot(index NodeIndex) NodeIndex {
	root := RootNode
	node := index
	for node != RootNode && node != InvalidNode {
		n := &t.nodes[node]
		switch n.Kind {
		case KindReferenceFrame:
			// Content below a reference frame may be transformed, so inner
			// scroll frames cannot anchor a cache.
			root = RootNode
		case KindScrollFrame:
			if n.Scroll.Kind == ScrollFramePipelineRoot {
				return root
			}
			if n.Scroll.IsScrollable() {
				root = node
			}
		case KindStickyFrame:
		}
		node = n.Parent
	}
	return root
}

// ExternalScrollOffset sums the external scroll offsets of the scroll
// frames between index and its nearest reference frame.
func (t *Tree) ExternalScrollOffset(index NodeIndex) flatten.Vector {
	var offset flatten.Vector
	node := index
	for node != InvalidNode {
		n := &t.nodes[node]
		switch n.Kind {
		case KindReferenceFrame:
			return offset
		case KindScrollFrame:
			offset = offset.Add(n.Scroll.ExternalScrollOffset)
		case KindStickyFrame:
		}
		node = n.Parent
	}
	return offset
}

// IsAncestor reports whether ancestor is child or one of its ancestors.
func (t *Tree) IsAncestor(ancestor, child NodeIndex) bool {
	for node := child; node != InvalidNode; node = t.nodes[node].Parent {
		if node == ancestor {
			return true
		}
	}
	return false
}
