// Package prim holds the output of flattening: interned primitive keys,
// primitive instances and the picture arena.
package prim

import (
	"fmt"

	"github.com/gogpu/flatten"
	"github.com/gogpu/flatten/clip"
	"github.com/gogpu/flatten/intern"
	"github.com/gogpu/flatten/spatial"
)

// Kind is the closed set of primitive instance kinds.
type Kind uint8

const (
	KindRectangle Kind = iota
	KindClear
	KindImage
	KindYuvImage
	KindTextRun
	KindLineDecoration
	KindLinearGradient
	KindRadialGradient
	KindNormalBorder
	KindImageBorder
	KindBoxShadow
	KindBackdrop

	// KindPicture references a child picture.
	KindPicture

	// KindPushClipChain and KindPopClipChain bracket a run of instances
	// that share an extra clip chain. They are produced when a stacking
	// context with a clip is collapsed into its parent.
	KindPushClipChain
	KindPopClipChain
)

var kindNames = [...]string{
	KindRectangle:      "Rectangle",
	KindClear:          "Clear",
	KindImage:          "Image",
	KindYuvImage:       "YuvImage",
	KindTextRun:        "TextRun",
	KindLineDecoration: "LineDecoration",
	KindLinearGradient: "LinearGradient",
	KindRadialGradient: "RadialGradient",
	KindNormalBorder:   "NormalBorder",
	KindImageBorder:    "ImageBorder",
	KindBoxShadow:      "BoxShadow",
	KindBackdrop:       "Backdrop",
	KindPicture:        "Picture",
	KindPushClipChain:  "PushClipChain",
	KindPopClipChain:   "PopClipChain",
}

// String implements fmt.Stringer.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// IsMarker reports whether k is a clip chain marker.
func (k Kind) IsMarker() bool {
	return k == KindPushClipChain || k == KindPopClipChain
}

// Instance places a primitive in a picture.
type Instance struct {
	Kind Kind
	// Handle is the interned key for leaf kinds and the picture key for
	// pictures. Markers have no handle.
	Handle intern.Handle
	// Picture is the child picture for KindPicture.
	Picture PictureIndex

	// Rect is the primitive's local rect in the space of SpatialNode.
	Rect          flatten.Rect
	LocalClipRect flatten.Rect
	// ClipChain is the chain applied to this instance. For
	// KindPushClipChain it is the chain being opened.
	ClipChain   clip.ChainID
	SpatialNode spatial.NodeIndex
	// Opacity is folded in by picture optimization; 1 otherwise.
	Opacity float32
	// ID numbers leaf instances in creation order within a pass.
	ID uint64
}

// NewPictureInstance returns an instance referencing picture idx. Picture
// instances have no own clip; the caller sets ClipChain on the outermost
// one.
func NewPictureInstance(idx PictureIndex, handle intern.Handle, node spatial.NodeIndex) Instance {
	return Instance{
		Kind:          KindPicture,
		Handle:        handle,
		Picture:       idx,
		LocalClipRect: flatten.MaxRect(),
		ClipChain:     clip.ChainNone,
		SpatialNode:   node,
		Opacity:       1,
	}
}

// NewClipMarker returns a push or pop clip chain marker.
func NewClipMarker(kind Kind, chain clip.ChainID) Instance {
	if !kind.IsMarker() {
		flatten.Faultf("prim.NewClipMarker", "%v is not a marker kind", kind)
	}
	return Instance{
		Kind:          kind,
		LocalClipRect: flatten.MaxRect(),
		ClipChain:     chain,
		Opacity:       1,
	}
}
