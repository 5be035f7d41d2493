package prim

import (
	"fmt"
	"strings"

	"github.com/gogpu/flatten"
	"github.com/gogpu/flatten/displaylist"
	"github.com/gogpu/flatten/filter"
	"github.com/gogpu/flatten/intern"
	"github.com/gogpu/flatten/spatial"
)

// PictureIndex indexes a picture in a Store.
type PictureIndex uint32

// BlitReason is a bitset of reasons a picture needs its own surface even
// though it has no filter.
type BlitReason uint8

const (
	// BlitIsolate: a child uses a mix-blend-mode.
	BlitIsolate BlitReason = 1 << iota
	// BlitPreserve3D: the picture takes part in a 3D rendering context.
	BlitPreserve3D
	// BlitBackdrop: the picture was cut to feed a backdrop filter.
	BlitBackdrop
	// BlitClip: the picture's clip chain has a complex clip.
	BlitClip
)

// String implements fmt.Stringer.
func (r BlitReason) String() string {
	if r == 0 {
		return "none"
	}
	var parts []string
	for _, n := range []struct {
		bit  BlitReason
		name string
	}{{BlitIsolate, "isolate"}, {BlitPreserve3D, "preserve3d"}, {BlitBackdrop, "backdrop"}, {BlitClip, "clip"}} {
		if r&n.bit != 0 {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, "|")
}

// CompositeKind selects the CompositeMode variant.
type CompositeKind uint8

const (
	CompositeBlit CompositeKind = iota
	CompositeFilter
	CompositeMixBlend
	CompositeComponentTransfer
	CompositeSvgFilter
	CompositeTileCache
)

// CompositeMode is how a picture's content is composited into its parent.
// A nil *CompositeMode on a Picture means pass-through.
type CompositeMode struct {
	Kind CompositeKind

	Blit     BlitReason
	Filter   filter.Filter
	MixBlend displaylist.MixBlendMode
	// TransferData is the interned filter.Data of a component transfer.
	TransferData  intern.Handle
	SvgPrimitives []displaylist.FilterPrimitive
	// SvgData holds the component transfer functions of an SVG chain.
	SvgData []filter.Data
	// ScrollRoot and SharedClips parameterize a tile cache.
	ScrollRoot  spatial.NodeIndex
	SharedClips []intern.Handle
}

// Blit returns a blit mode with the given reasons.
func Blit(reason BlitReason) *CompositeMode {
	return &CompositeMode{Kind: CompositeBlit, Blit: reason}
}

// FilterMode returns a CSS filter mode.
func FilterMode(f filter.Filter) *CompositeMode {
	return &CompositeMode{Kind: CompositeFilter, Filter: f}
}

// MixBlend returns a mix-blend mode.
func MixBlend(m displaylist.MixBlendMode) *CompositeMode {
	return &CompositeMode{Kind: CompositeMixBlend, MixBlend: m}
}

// ComponentTransfer returns a component transfer mode for interned data.
func ComponentTransfer(data intern.Handle) *CompositeMode {
	return &CompositeMode{Kind: CompositeComponentTransfer, TransferData: data}
}

// SvgFilter returns an SVG filter chain mode.
func SvgFilter(prims []displaylist.FilterPrimitive, data []filter.Data) *CompositeMode {
	return &CompositeMode{Kind: CompositeSvgFilter, SvgPrimitives: prims, SvgData: data}
}

// TileCache returns a tile cache mode anchored at scrollRoot.
func TileCache(scrollRoot spatial.NodeIndex, shared []intern.Handle) *CompositeMode {
	return &CompositeMode{Kind: CompositeTileCache, ScrollRoot: scrollRoot, SharedClips: shared}
}

// String formats the mode for debug output.
func (m *CompositeMode) String() string {
	if m == nil {
		return "pass-through"
	}
	switch m.Kind {
	case CompositeBlit:
		return fmt.Sprintf("blit(%v)", m.Blit)
	case CompositeFilter:
		return fmt.Sprintf("filter(%v)", m.Filter)
	case CompositeMixBlend:
		return fmt.Sprintf("mix-blend(%v)", m.MixBlend)
	case CompositeComponentTransfer:
		return fmt.Sprintf("component-transfer(%v)", m.TransferData)
	case CompositeSvgFilter:
		return fmt.Sprintf("svg-filter(%d primitives)", len(m.SvgPrimitives))
	case CompositeTileCache:
		return fmt.Sprintf("tile-cache(root=%v, shared clips=%d)", m.ScrollRoot, len(m.SharedClips))
	default:
		return fmt.Sprintf("CompositeKind(%d)", m.Kind)
	}
}

// CompositeKey is the comparable identity of a composite mode.
type CompositeKey struct {
	Kind         CompositeKind
	Blit         BlitReason
	Filter       filter.Filter
	MixBlend     displaylist.MixBlendMode
	TransferData intern.Handle
	Svg          string
	ScrollRoot   spatial.NodeIndex
}

// Key returns the comparable identity of m. Shared clips are not part of
// the key.
func (m *CompositeMode) Key() CompositeKey {
	k := CompositeKey{
		Kind:         m.Kind,
		Blit:         m.Blit,
		Filter:       m.Filter,
		MixBlend:     m.MixBlend,
		TransferData: m.TransferData,
		ScrollRoot:   m.ScrollRoot,
	}
	if len(m.SvgPrimitives) > 0 || len(m.SvgData) > 0 {
		k.Svg = fmt.Sprint(m.SvgPrimitives, m.SvgData)
	}
	return k
}

// PictureKey is the interning key of a picture instance.
type PictureKey struct {
	HasMode         bool
	Composite       CompositeKey
	BackfaceVisible bool
}

// NewPictureKey builds the key for a picture with mode m.
func NewPictureKey(m *CompositeMode, backfaceVisible bool) PictureKey {
	k := PictureKey{BackfaceVisible: backfaceVisible}
	if m != nil {
		k.HasMode = true
		k.Composite = m.Key()
	}
	return k
}

// PictureInterner interns picture keys.
type PictureInterner = intern.Interner[PictureKey, struct{}]

// NewPictureInterner creates an empty picture interner.
func NewPictureInterner() *PictureInterner {
	return intern.New[PictureKey, struct{}]()
}

// Context3DKind tells whether a picture participates in a 3D context.
type Context3DKind uint8

const (
	Out3D Context3DKind = iota
	In3D
)

// Context3D describes a picture's place in a preserve-3d hierarchy.
type Context3D struct {
	Kind Context3DKind
	// IsRoot marks the container that plane-splits its children.
	IsRoot bool
	// Ancestor is the nearest spatial node outside the 3D context, used
	// for backface visibility.
	Ancestor spatial.NodeIndex
}

// Options are picture build options.
type Options struct {
	// InflateIfRequired grows the picture bounds to fit blur output.
	InflateIfRequired bool
}

// Picture is a compositing group of primitive instances.
type Picture struct {
	Mode                *CompositeMode
	Context3D           Context3D
	FrameOutputPipeline *displaylist.PipelineID
	ApplyLocalClipRect  bool
	IsBackfaceVisible   bool
	RasterSpace         displaylist.RasterSpace
	SpatialNode         spatial.NodeIndex
	Options             Options
	Prims               []Instance
}

// Store is the picture arena of one pass.
type Store struct {
	pictures []Picture
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{}
}

// AddPicture appends p and returns its index.
func (s *Store) AddPicture(p Picture) PictureIndex {
	s.pictures = append(s.pictures, p)
	return PictureIndex(len(s.pictures) - 1)
}

// Picture returns the picture at idx. The pointer is invalidated by the
// next AddPicture.
func (s *Store) Picture(idx PictureIndex) *Picture {
	if int(idx) >= len(s.pictures) {
		flatten.Faultf("prim.Picture", "no picture %d", idx)
	}
	return &s.pictures[idx]
}

// Len returns the number of pictures.
func (s *Store) Len() int {
	return len(s.pictures)
}

// OptimizePicture removes the surface of picture idx when it has no
// visible effect. An opacity of 1 becomes pass-through. Any other opacity
// over a single rectangle or image (possibly nested in pass-through
// pictures) is folded into that instance. It reports whether the picture
// became pass-through.
func (s *Store) OptimizePicture(idx PictureIndex) bool {
	pic := s.Picture(idx)
	if pic.Mode == nil || pic.Mode.Kind != CompositeFilter || pic.Mode.Filter.Kind != displaylist.FilterOpacity {
		return false
	}
	alpha := pic.Mode.Filter.Amount
	if alpha == 1 {
		pic.Mode = nil
		return true
	}
	leaf := s.singleLeaf(idx)
	if leaf == nil {
		return false
	}
	switch leaf.Kind {
	case KindRectangle, KindImage:
		leaf.Opacity *= alpha
		// leaf may point into another picture; re-fetch idx.
		s.Picture(idx).Mode = nil
		return true
	default:
		return false
	}
}

// singleLeaf follows pictures with exactly one instance through
// pass-through children and returns the leaf instance, or nil.
func (s *Store) singleLeaf(idx PictureIndex) *Instance {
	for {
		pic := s.Picture(idx)
		if len(pic.Prims) != 1 {
			return nil
		}
		inst := &pic.Prims[0]
		if inst.Kind != KindPicture {
			return inst
		}
		child := s.Picture(inst.Picture)
		if child.Mode != nil || child.Context3D.Kind != Out3D {
			return nil
		}
		idx = inst.Picture
	}
}
