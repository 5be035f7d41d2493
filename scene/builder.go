// Package scene flattens display lists into a picture tree.
//
// A pass walks the root pipeline's display list (and every iframe pipeline
// it embeds) once, in order. Stacking contexts become pictures, redundant
// ones are spliced into their parent, filters and blend modes wrap pictures
// in compositing layers, shadows are expanded into blur pictures, and the
// scrolling region of the frame is wrapped in a tile cache. Clip and
// spatial definitions are recorded into a clip chain forest and the
// caller's spatial tree along the way.
//
// Basic usage:
//
//	doc := scene.NewDocument(&scene.Pipeline{DisplayList: list, Viewport: viewport})
//	s, err := scene.Build(doc, spatial.NewTree())
//	if err != nil {
//	    return err
//	}
//	s.Dump(os.Stdout)
//
// Malformed display lists (unbalanced containers, unknown ids, shadows left
// open) abort the pass with an error wrapping flatten.ErrContract.
package scene

import (
	"errors"
	"fmt"

	"github.com/gogpu/flatten"
	"github.com/gogpu/flatten/clip"
	"github.com/gogpu/flatten/displaylist"
	"github.com/gogpu/flatten/filter"
	"github.com/gogpu/flatten/hittest"
	"github.com/gogpu/flatten/intern"
	"github.com/gogpu/flatten/prim"
	"github.com/gogpu/flatten/resources"
	"github.com/gogpu/flatten/spatial"
)

var (
	// ErrNoRootPipeline is returned when the document's root pipeline is
	// missing.
	ErrNoRootPipeline = errors.New("scene: root pipeline not found")

	// ErrBuilderUsed is returned when Build is called twice on one Builder.
	ErrBuilderUsed = errors.New("scene: builder already used")
)

// SpatialTree receives the spatial nodes defined by a pass and answers the
// queries the flattener needs. *spatial.Tree implements it. The tree must
// be empty when the pass starts.
type SpatialTree interface {
	AddReferenceFrame(parent spatial.NodeIndex, style displaylist.TransformStyle, transform flatten.Transform,
		kind displaylist.ReferenceFrameKind, origin flatten.Vector, pipeline displaylist.PipelineID) spatial.NodeIndex
	AddScrollFrame(parent spatial.NodeIndex, externalID *displaylist.ExternalScrollID, pipeline displaylist.PipelineID,
		frameRect flatten.Rect, contentSize flatten.Size, sensitivity displaylist.ScrollSensitivity,
		kind spatial.ScrollFrameKind, externalScrollOffset flatten.Vector) spatial.NodeIndex
	AddStickyFrame(parent spatial.NodeIndex, info spatial.StickyFrameInfo, pipeline displaylist.PipelineID) spatial.NodeIndex
	FindScrollRoot(index spatial.NodeIndex) spatial.NodeIndex
	ExternalScrollOffset(index spatial.NodeIndex) flatten.Vector
	IsAncestor(ancestor, child spatial.NodeIndex) bool
}

// FontInstances resolves font instance keys used by text items.
// *resources.Registry implements it.
type FontInstances interface {
	FontInstance(key displaylist.FontInstanceKey) (*resources.FontInstance, bool)
}

// Pipeline is one display list with its viewport.
type Pipeline struct {
	DisplayList *displaylist.BuiltDisplayList
	Viewport    flatten.Size
	// Background, when set and opaque, overrides Config.BackgroundColor.
	Background *flatten.ColorF
}

// Document is the set of pipelines for one frame.
type Document struct {
	Root      displaylist.PipelineID
	Pipelines map[displaylist.PipelineID]*Pipeline
}

// NewDocument creates a document whose root is root. Iframe pipelines are
// passed as others.
func NewDocument(root *Pipeline, others ...*Pipeline) *Document {
	doc := &Document{
		Root:      root.DisplayList.Pipeline(),
		Pipelines: make(map[displaylist.PipelineID]*Pipeline, 1+len(others)),
	}
	doc.Pipelines[doc.Root] = root
	for _, p := range others {
		doc.Pipelines[p.DisplayList.Pipeline()] = p
	}
	return doc
}

// Interners hold the interned data shared across passes. Reusing them
// between frames keeps handles stable for unchanged content.
//
// Interners are not safe for concurrent use.
type Interners struct {
	Prims      *prim.Interner
	Clips      *clip.Interner
	Pictures   *prim.PictureInterner
	FilterData *intern.Interner[filter.DataKey, filter.Data]
}

// NewInterners creates empty interners.
func NewInterners() *Interners {
	return &Interners{
		Prims:      prim.NewInterner(),
		Clips:      clip.NewInterner(),
		Pictures:   prim.NewPictureInterner(),
		FilterData: intern.New[filter.DataKey, filter.Data](),
	}
}

// EndFrame ends the current frame on every interner, evicting entries not
// used in the last retain frames. It returns the number of evicted entries.
func (in *Interners) EndFrame(retain uint64) int {
	return in.Prims.EndFrame(retain) +
		in.Clips.EndFrame(retain) +
		in.Pictures.EndFrame(retain) +
		in.FilterData.EndFrame(retain)
}

// Option configures a Builder.
type Option func(*Builder)

// WithConfig sets the flattening configuration. The default is
// flatten.DefaultConfig().
func WithConfig(cfg flatten.Config) Option {
	return func(b *Builder) {
		b.cfg = cfg
	}
}

// WithInterners reuses interners from a previous pass.
func WithInterners(in *Interners) Option {
	return func(b *Builder) {
		b.interners = in
	}
}

// WithFontInstances sets the font instance source used by text items.
// Without it every text item is dropped.
func WithFontInstances(fonts FontInstances) Option {
	return func(b *Builder) {
		b.fonts = fonts
	}
}

// WithOutputPipelines tags the root picture of each given pipeline as a
// frame output.
func WithOutputPipelines(ids ...displaylist.PipelineID) Option {
	return func(b *Builder) {
		for _, id := range ids {
			b.outputPipelines[id] = true
		}
	}
}

// Scene is the result of a pass.
type Scene struct {
	Pictures   *prim.Store
	Root       prim.PictureIndex
	HitTesting *hittest.Scene
	Clips      *clip.Store
	Interners  *Interners
	Background flatten.ColorF
	// PictureCaching is false when caching is disabled or was abandoned
	// for this frame.
	PictureCaching bool
}

// Builder owns the state of one flattening pass. A Builder is single use
// and not safe for concurrent use.
type Builder struct {
	doc             *Document
	tree            SpatialTree
	cfg             flatten.Config
	fonts           FontInstances
	outputPipelines map[displaylist.PipelineID]bool
	interners       *Interners

	clips      *clip.Store
	pictures   *prim.Store
	hitTesting *hittest.Scene

	idMapper      *nodeIDMapper
	rfMapper      referenceFrameMapper
	scrollMapper  scrollOffsetMapper
	pipelineClips []clip.ChainID
	scStack       []*flattenedStackingContext

	// pendingShadows is the shadow queue; non-empty while a shadow scope
	// is open.
	pendingShadows []shadowItem

	root    prim.PictureIndex
	hasRoot bool

	// Picture caching state for the frame.
	explicitTileCache bool
	cachingAbandoned  bool
	tileCaches        []prim.PictureIndex

	nextPrimID uint64
	used       bool
}

// NewBuilder prepares a pass over doc that records spatial nodes into tree.
func NewBuilder(doc *Document, tree SpatialTree, opts ...Option) (*Builder, error) {
	if doc == nil || doc.Pipelines[doc.Root] == nil {
		return nil, ErrNoRootPipeline
	}
	b := &Builder{
		doc:             doc,
		tree:            tree,
		cfg:             flatten.DefaultConfig(),
		outputPipelines: make(map[displaylist.PipelineID]bool),
		clips:           clip.NewStore(),
		pictures:        prim.NewStore(),
		hitTesting:      hittest.NewScene(),
		idMapper:        newNodeIDMapper(),
		pipelineClips:   []clip.ChainID{clip.ChainNone},
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.interners == nil {
		b.interners = NewInterners()
	}
	return b, nil
}

// Build flattens doc into a Scene, recording spatial nodes into tree.
func Build(doc *Document, tree SpatialTree, opts ...Option) (*Scene, error) {
	b, err := NewBuilder(doc, tree, opts...)
	if err != nil {
		return nil, err
	}
	return b.Build()
}

// Build runs the pass. Contract faults raised anywhere in the pass are
// returned as a *flatten.ContractError.
func (b *Builder) Build() (s *Scene, err error) {
	if b.used {
		return nil, ErrBuilderUsed
	}
	b.used = true

	defer func() {
		if r := recover(); r != nil {
			ce, ok := r.(*flatten.ContractError)
			if !ok {
				panic(r)
			}
			s, err = nil, fmt.Errorf("scene: build: %w", ce)
		}
	}()

	root := b.doc.Pipelines[b.doc.Root]
	b.pushRoot(b.doc.Root, root)

	// One stacking context always encloses the whole list so primitives
	// have somewhere to go.
	b.pushStackingContext(stackingParams{
		pipeline:        b.doc.Root,
		transformStyle:  displaylist.TransformFlat,
		backfaceVisible: true,
		spatialNode:     spatial.RootNode,
		clipChain:       clip.ChainNone,
		rasterSpace:     displaylist.ScreenSpace(),
		isBackdropRoot:  true,
	})
	b.rfMapper.PushScope()
	b.flattenItems(root.DisplayList.Iter(), b.doc.Root, true)
	b.rfMapper.PopScope()
	b.popStackingContext()

	if len(b.scStack) != 0 {
		flatten.Faultf("scene.Build", "%d stacking contexts left open", len(b.scStack))
	}
	if b.rfMapper.Depth() != 0 {
		flatten.Faultf("scene.Build", "%d offset scopes left open", b.rfMapper.Depth())
	}
	if !b.hasRoot {
		flatten.Faultf("scene.Build", "no root picture")
	}
	if b.cachingAbandoned {
		// Tile caches built before the frame was found ambiguous revert to
		// plain pictures.
		for _, idx := range b.tileCaches {
			b.pictures.Picture(idx).Mode = nil
		}
	}

	s = &Scene{
		Pictures:       b.pictures,
		Root:           b.root,
		HitTesting:     b.hitTesting,
		Clips:          b.clips,
		Interners:      b.interners,
		Background:     b.cfg.BackgroundColor,
		PictureCaching: b.cfg.EnablePictureCaching && !b.cachingAbandoned,
	}
	if root.Background != nil && root.Background.IsOpaque() {
		s.Background = *root.Background
	}
	flatten.Logger().Debug("scene built",
		"pictures", b.pictures.Len(),
		"primitives", b.nextPrimID,
		"clip_nodes", b.clips.Len(),
		"hit_items", len(b.hitTesting.Items()),
		"picture_caching", s.PictureCaching,
	)
	return s, nil
}

// pushRoot defines the root clip, reference frame and scroll frame of the
// root pipeline.
func (b *Builder) pushRoot(id displaylist.PipelineID, p *Pipeline) {
	if b.cfg.ChasePrimitive.ID != nil {
		flatten.Logger().Info("chasing primitive by id", "id", *b.cfg.ChasePrimitive.ID)
	}
	b.idMapper.AddClipChain(displaylist.RootClip(id), clip.ChainNone, 0)
	rf := b.pushReferenceFrame(displaylist.RootReferenceFrame(id), spatial.InvalidNode, id,
		displaylist.TransformFlat, flatten.Identity(), displaylist.ReferenceFrameTransform, flatten.Vector{})
	if rf != spatial.RootNode {
		flatten.Faultf("scene.pushRoot", "spatial tree is not empty (root frame got index %v)", rf)
	}
	b.addScrollFrame(displaylist.RootScrollNode(id), rf, &displaylist.ExternalScrollID{Pipeline: id}, id,
		flatten.RectFromOriginSize(flatten.Point{}, p.Viewport), p.DisplayList.ContentSize(),
		displaylist.ScrollScriptAndInputEvents, spatial.ScrollFramePipelineRoot, flatten.Vector{})
}

func (b *Builder) pushReferenceFrame(
	id displaylist.SpatialID,
	parent spatial.NodeIndex,
	pipeline displaylist.PipelineID,
	style displaylist.TransformStyle,
	transform flatten.Transform,
	kind displaylist.ReferenceFrameKind,
	origin flatten.Vector,
) spatial.NodeIndex {
	idx := b.tree.AddReferenceFrame(parent, style, transform, kind, origin, pipeline)
	b.idMapper.MapSpatialNode(id, idx)
	return idx
}

func (b *Builder) addScrollFrame(
	id displaylist.SpatialID,
	parent spatial.NodeIndex,
	externalID *displaylist.ExternalScrollID,
	pipeline displaylist.PipelineID,
	frameRect flatten.Rect,
	contentSize flatten.Size,
	sensitivity displaylist.ScrollSensitivity,
	kind spatial.ScrollFrameKind,
	externalScrollOffset flatten.Vector,
) spatial.NodeIndex {
	idx := b.tree.AddScrollFrame(parent, externalID, pipeline, frameRect, contentSize, sensitivity, kind, externalScrollOffset)
	b.idMapper.MapSpatialNode(id, idx)
	return idx
}

// pipelineClip returns the clip chain of the innermost pipeline.
func (b *Builder) pipelineClip() clip.ChainID {
	if len(b.pipelineClips) == 0 {
		flatten.Faultf("scene.pipelineClip", "pipeline clip stack is empty")
	}
	return b.pipelineClips[len(b.pipelineClips)-1]
}

// currentOffset is the reference frame offset plus the external scroll
// offset of node.
func (b *Builder) currentOffset(node spatial.NodeIndex) flatten.Vector {
	return b.rfMapper.CurrentOffset().Add(b.scrollMapper.ExternalScrollOffset(b.tree, node))
}

// softFault raises a contract fault unless lenient assertions are on, in
// which case it logs a warning and the caller continues.
func (b *Builder) softFault(op, format string, args ...any) {
	if !b.cfg.LenientAssertions {
		flatten.Faultf(op, format, args...)
	}
	flatten.Logger().Warn("contract violation ignored", "op", op, "detail", fmt.Sprintf(format, args...))
}

// newPictureInstance interns the picture key for mode and returns an
// instance of picture idx.
func (b *Builder) newPictureInstance(idx prim.PictureIndex, mode *prim.CompositeMode, backfaceVisible bool, chain clip.ChainID, node spatial.NodeIndex) prim.Instance {
	handle := b.interners.Pictures.Intern(prim.NewPictureKey(mode, backfaceVisible), func() struct{} { return struct{}{} })
	inst := prim.NewPictureInstance(idx, handle, node)
	inst.ClipChain = chain
	return inst
}
