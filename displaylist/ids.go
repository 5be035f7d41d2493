package displaylist

import "fmt"

// PipelineID identifies one display list (a document root or an iframe).
type PipelineID struct {
	Namespace, Index uint32
}

// String formats the pipeline id.
func (p PipelineID) String() string {
	return fmt.Sprintf("pipeline(%d,%d)", p.Namespace, p.Index)
}

// Reserved spatial indices present in every pipeline.
const (
	rootReferenceFrameIndex = 0
	rootScrollNodeIndex     = 1
	firstUserSpatialIndex   = 2
)

// SpatialID is a caller-stable identifier of a spatial node.
type SpatialID struct {
	Index    uint32
	Pipeline PipelineID
}

// RootReferenceFrame returns the implicit root reference frame of p.
func RootReferenceFrame(p PipelineID) SpatialID {
	return SpatialID{Index: rootReferenceFrameIndex, Pipeline: p}
}

// RootScrollNode returns the implicit root scroll frame of p.
func RootScrollNode(p PipelineID) SpatialID {
	return SpatialID{Index: rootScrollNodeIndex, Pipeline: p}
}

// String formats the spatial id.
func (s SpatialID) String() string {
	return fmt.Sprintf("spatial(%d,%v)", s.Index, s.Pipeline)
}

// ClipIDKind distinguishes clip node ids from clip chain ids.
type ClipIDKind uint8

const (
	// ClipIDInvalid is the zero value: no clip requested.
	ClipIDInvalid ClipIDKind = iota
	ClipIDClip
	ClipIDChain
)

// ClipID is a caller-stable identifier of a clip node or clip chain.
type ClipID struct {
	Kind     ClipIDKind
	Index    uint64
	Pipeline PipelineID
}

// RootClip returns the implicit root clip of p.
func RootClip(p PipelineID) ClipID {
	return ClipID{Kind: ClipIDClip, Index: 0, Pipeline: p}
}

// IsRoot reports whether c is the root clip of its pipeline.
func (c ClipID) IsRoot() bool {
	return c.Kind == ClipIDClip && c.Index == 0
}

// IsValid reports whether c names a clip.
func (c ClipID) IsValid() bool {
	return c.Kind != ClipIDInvalid
}

// String formats the clip id.
func (c ClipID) String() string {
	switch c.Kind {
	case ClipIDClip:
		return fmt.Sprintf("clip(%d,%v)", c.Index, c.Pipeline)
	case ClipIDChain:
		return fmt.Sprintf("clipchain(%d,%v)", c.Index, c.Pipeline)
	default:
		return "clip(invalid)"
	}
}

// ClipChainID is a caller-stable identifier of a user-defined clip chain.
type ClipChainID struct {
	Index    uint64
	Pipeline PipelineID
}

// ClipID returns c as a ClipID usable wherever a clip is expected.
func (c ClipChainID) ClipID() ClipID {
	return ClipID{Kind: ClipIDChain, Index: c.Index, Pipeline: c.Pipeline}
}

// SpaceAndClip pairs a positioning node with a clip.
type SpaceAndClip struct {
	Spatial SpatialID
	Clip    ClipID
}

// RootSpaceAndClip returns the root scroll node and root clip of p.
func RootSpaceAndClip(p PipelineID) SpaceAndClip {
	return SpaceAndClip{Spatial: RootScrollNode(p), Clip: RootClip(p)}
}

// ExternalScrollID identifies a scroll frame to the embedder.
type ExternalScrollID struct {
	ID       uint64
	Pipeline PipelineID
}

// ItemTag is the hit-testing tag attached to an item.
type ItemTag struct {
	ID    uint64
	Extra uint16
}

// FontKey identifies font data registered with the resource cache.
type FontKey struct {
	Namespace, Index uint32
}

// FontInstanceKey identifies a sized, configured instance of a font.
type FontInstanceKey struct {
	Namespace, Index uint32
}

// ImageKey identifies an image registered with the resource cache.
type ImageKey struct {
	Namespace, Index uint32
}
