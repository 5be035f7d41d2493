package displaylist

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chewxy/math32"
	"gopkg.in/yaml.v3"

	"github.com/gogpu/flatten"
)

// GlyphLayouter turns a string into positioned glyphs for a font instance.
// The YAML loader uses it for text items that give "text" instead of
// explicit glyphs.
type GlyphLayouter interface {
	LayoutText(font FontInstanceKey, text string, origin flatten.Point) ([]GlyphInstance, error)
}

// YAMLOption configures LoadYAML.
type YAMLOption func(*yamlOptions)

type yamlOptions struct {
	layouter GlyphLayouter
	pipeline PipelineID
}

// WithGlyphLayouter sets the layouter used for "text" strings.
func WithGlyphLayouter(l GlyphLayouter) YAMLOption {
	return func(o *yamlOptions) {
		o.layouter = l
	}
}

// WithRootPipeline sets the root pipeline id used when the document does
// not name one.
func WithRootPipeline(p PipelineID) YAMLOption {
	return func(o *yamlOptions) {
		o.pipeline = p
	}
}

// YAMLPipeline is one pipeline decoded from a YAML scene.
type YAMLPipeline struct {
	List       *BuiltDisplayList
	Viewport   flatten.Size
	Background *flatten.ColorF
}

// LoadYAML decodes a scene description. The first returned pipeline is the
// root; nested "pipelines" entries follow in document order.
//
// A minimal document:
//
//	viewport: [800, 600]
//	items:
//	  - type: stacking-context
//	    items:
//	      - type: rect
//	        bounds: [10, 10, 100, 100]
//	        color: red
func LoadYAML(r io.Reader, opts ...YAMLOption) ([]YAMLPipeline, error) {
	var o yamlOptions
	for _, opt := range opts {
		opt(&o)
	}

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var doc yamlPipeline
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("displaylist: decode yaml: %w", err)
	}

	var out []YAMLPipeline
	if err := loadPipeline(&doc, o.pipeline, &o, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func loadPipeline(doc *yamlPipeline, fallback PipelineID, o *yamlOptions, out *[]YAMLPipeline) error {
	pipeline := fallback
	if len(doc.Pipeline) > 0 {
		if len(doc.Pipeline) != 2 {
			return fmt.Errorf("displaylist: pipeline must be [namespace, index]")
		}
		pipeline = PipelineID{Namespace: doc.Pipeline[0], Index: doc.Pipeline[1]}
	}
	viewport, err := sizeOf(doc.Viewport, flatten.Size{Width: 800, Height: 600})
	if err != nil {
		return fmt.Errorf("displaylist: viewport: %w", err)
	}
	content, err := sizeOf(doc.ContentSize, viewport)
	if err != nil {
		return fmt.Errorf("displaylist: content-size: %w", err)
	}

	l := &yamlLoader{
		b:        NewBuilder(pipeline, content),
		opts:     o,
		clips:    map[string]ClipID{"root": RootClip(pipeline)},
		spatials: map[string]SpatialID{"root": RootScrollNode(pipeline), "root-reference-frame": RootReferenceFrame(pipeline)},
	}
	if err := l.items(doc.Items, RootSpaceAndClip(pipeline)); err != nil {
		return fmt.Errorf("displaylist: %v: %w", pipeline, err)
	}
	list, err := l.b.Finalize()
	if err != nil {
		return err
	}

	p := YAMLPipeline{List: list, Viewport: viewport}
	if doc.Background != nil {
		c := flatten.ColorF(*doc.Background)
		p.Background = &c
	}
	*out = append(*out, p)

	for i := range doc.Pipelines {
		if err := loadPipeline(&doc.Pipelines[i], PipelineID{}, o, out); err != nil {
			return err
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Document schema
// ---------------------------------------------------------------------------

type yamlPipeline struct {
	Pipeline    []uint32       `yaml:"pipeline"`
	Viewport    []float32      `yaml:"viewport"`
	ContentSize []float32      `yaml:"content-size"`
	Background  *yamlColor     `yaml:"background"`
	Items       []yamlItem     `yaml:"items"`
	Pipelines   []yamlPipeline `yaml:"pipelines"`
}

type yamlItem struct {
	Type           string     `yaml:"type"`
	ID             string     `yaml:"id"`
	Bounds         []float32  `yaml:"bounds"`
	ClipRect       []float32  `yaml:"clip-rect"`
	Clip           string     `yaml:"clip"`
	Spatial        string     `yaml:"spatial"`
	Color          *yamlColor `yaml:"color"`
	Tag            *uint64    `yaml:"tag"`
	BackfaceHidden bool       `yaml:"backface-hidden"`
	Items          []yamlItem `yaml:"items"`

	// stacking contexts and reference frames
	Origin         []float32        `yaml:"origin"`
	TransformStyle string           `yaml:"transform-style"`
	Transform      string           `yaml:"transform"`
	Perspective    bool             `yaml:"perspective"`
	MixBlendMode   string           `yaml:"mix-blend-mode"`
	Filters        []string         `yaml:"filters"`
	FilterData     []yamlFilterData `yaml:"filter-data"`
	RasterSpace    string           `yaml:"raster-space"`
	CacheTiles     bool             `yaml:"cache-tiles"`
	BackdropRoot   bool             `yaml:"backdrop-root"`

	// text
	Font    uint32      `yaml:"font"`
	Glyphs  []uint32    `yaml:"glyphs"`
	Offsets [][]float32 `yaml:"offsets"`
	Text    string      `yaml:"text"`

	// images
	Image       uint32    `yaml:"image"`
	Planes      []uint32  `yaml:"planes"`
	StretchSize []float32 `yaml:"stretch-size"`
	TileSpacing []float32 `yaml:"tile-spacing"`
	TileSize    []float32 `yaml:"tile-size"`

	// lines and borders
	Orientation string  `yaml:"orientation"`
	Style       string  `yaml:"style"`
	Thickness   float32 `yaml:"thickness"`
	Width       float32 `yaml:"width"`

	// gradients
	Start  []float32  `yaml:"start"`
	End    []float32  `yaml:"end"`
	Center []float32  `yaml:"center"`
	Radius []float32  `yaml:"radius"`
	Stops  []yamlStop `yaml:"stops"`
	Repeat bool       `yaml:"repeat"`

	// shadows
	Offset       []float32 `yaml:"offset"`
	BlurRadius   float32   `yaml:"blur-radius"`
	SpreadRadius float32   `yaml:"spread-radius"`
	BorderRadius float32   `yaml:"border-radius"`
	Inset        bool      `yaml:"inset"`
	Inflate      bool      `yaml:"inflate"`

	// clips and frames
	Complex      []yamlComplex `yaml:"complex"`
	Clips        []string      `yaml:"clips"`
	Parent       string        `yaml:"parent"`
	ContentSize  []float32     `yaml:"content-size"`
	ScrollOffset []float32     `yaml:"scroll-offset"`
	ExternalID   *uint64       `yaml:"external-id"`
	Margins      yamlMargins   `yaml:"margins"`

	// iframes
	Pipeline      []uint32 `yaml:"pipeline"`
	IgnoreMissing bool     `yaml:"ignore-missing"`
}

type yamlStop struct {
	Offset float32   `yaml:"offset"`
	Color  yamlColor `yaml:"color"`
}

type yamlComplex struct {
	Rect    []float32 `yaml:"rect"`
	Radius  float32   `yaml:"radius"`
	ClipOut bool      `yaml:"clip-out"`
}

type yamlMargins struct {
	Top    *float32 `yaml:"top"`
	Right  *float32 `yaml:"right"`
	Bottom *float32 `yaml:"bottom"`
	Left   *float32 `yaml:"left"`
}

type yamlFilterData struct {
	FuncR string    `yaml:"func-r"`
	FuncG string    `yaml:"func-g"`
	FuncB string    `yaml:"func-b"`
	FuncA string    `yaml:"func-a"`
	R     []float32 `yaml:"r"`
	G     []float32 `yaml:"g"`
	B     []float32 `yaml:"b"`
	A     []float32 `yaml:"a"`
}

// yamlColor accepts a color string (see flatten.ParseColor) or a list of
// three or four components.
type yamlColor flatten.ColorF

// UnmarshalYAML implements yaml.Unmarshaler.
func (c *yamlColor) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		parsed, err := flatten.ParseColor(value.Value)
		if err != nil {
			return err
		}
		*c = yamlColor(parsed)
		return nil
	case yaml.SequenceNode:
		var comps []float32
		if err := value.Decode(&comps); err != nil {
			return err
		}
		if len(comps) != 3 && len(comps) != 4 {
			return fmt.Errorf("color needs 3 or 4 components, got %d", len(comps))
		}
		col := flatten.ColorF{R: comps[0], G: comps[1], B: comps[2], A: 1}
		if len(comps) == 4 {
			col.A = comps[3]
		}
		*c = yamlColor(col)
		return nil
	default:
		return fmt.Errorf("line %d: invalid color", value.Line)
	}
}

func (c *yamlColor) or(def flatten.ColorF) flatten.ColorF {
	if c == nil {
		return def
	}
	return flatten.ColorF(*c)
}

// ---------------------------------------------------------------------------
// Loader
// ---------------------------------------------------------------------------

type yamlLoader struct {
	b        *Builder
	opts     *yamlOptions
	clips    map[string]ClipID
	spatials map[string]SpatialID
}

func (l *yamlLoader) items(items []yamlItem, sc SpaceAndClip) error {
	for i := range items {
		if err := l.item(&items[i], sc); err != nil {
			return fmt.Errorf("item %d (%s): %w", i, items[i].Type, err)
		}
	}
	return nil
}

func (l *yamlLoader) resolve(it *yamlItem, sc SpaceAndClip) (SpaceAndClip, error) {
	if it.Spatial != "" {
		id, ok := l.spatials[it.Spatial]
		if !ok {
			return sc, fmt.Errorf("unknown spatial %q", it.Spatial)
		}
		sc.Spatial = id
	}
	if it.Clip != "" {
		id, ok := l.clips[it.Clip]
		if !ok {
			return sc, fmt.Errorf("unknown clip %q", it.Clip)
		}
		sc.Clip = id
	}
	return sc, nil
}

func (l *yamlLoader) common(it *yamlItem, sc SpaceAndClip) (CommonProperties, flatten.Rect, error) {
	sc, err := l.resolve(it, sc)
	if err != nil {
		return CommonProperties{}, flatten.Rect{}, err
	}
	bounds, err := rectOf(it.Bounds)
	if err != nil {
		return CommonProperties{}, flatten.Rect{}, fmt.Errorf("bounds: %w", err)
	}
	clipRect := bounds
	if it.ClipRect != nil {
		if clipRect, err = rectOf(it.ClipRect); err != nil {
			return CommonProperties{}, flatten.Rect{}, fmt.Errorf("clip-rect: %w", err)
		}
	}
	common := CommonProperties{ClipRect: clipRect, SpaceAndClip: sc}
	if it.BackfaceHidden {
		common.Flags |= FlagBackfaceHidden
	}
	if it.Tag != nil {
		common.HitInfo = &ItemTag{ID: *it.Tag}
	}
	return common, bounds, nil
}

func (l *yamlLoader) register(name string, clip *ClipID, spatial *SpatialID) {
	if name == "" {
		return
	}
	if clip != nil {
		l.clips[name] = *clip
	}
	if spatial != nil {
		l.spatials[name] = *spatial
	}
}

func (l *yamlLoader) item(it *yamlItem, sc SpaceAndClip) error {
	switch it.Type {
	case "stacking-context":
		return l.stackingContext(it, sc)
	case "reference-frame":
		return l.referenceFrame(it, sc)
	case "clip":
		return l.clip(it, sc)
	case "clip-chain":
		return l.clipChain(it)
	case "scroll-frame":
		return l.scrollFrame(it, sc)
	case "sticky-frame":
		return l.stickyFrame(it, sc)
	case "shadow":
		return l.shadow(it, sc)
	case "iframe":
		return l.iframe(it, sc)
	}

	common, bounds, err := l.common(it, sc)
	if err != nil {
		return err
	}
	switch it.Type {
	case "rect":
		l.b.PushRect(common, bounds, it.Color.or(flatten.Black))
	case "clear-rect":
		l.b.PushClearRect(common, bounds)
	case "hit-test":
		l.b.PushHitTest(common)
	case "text":
		return l.text(it, common, bounds)
	case "line":
		orientation := LineHorizontal
		if it.Orientation == "vertical" {
			orientation = LineVertical
		}
		style, err := parseLineStyle(it.Style)
		if err != nil {
			return err
		}
		l.b.PushLine(common, bounds, orientation, it.Thickness, it.Color.or(flatten.Black), style)
	case "image":
		stretch, err := sizeOf(it.StretchSize, bounds.Size())
		if err != nil {
			return fmt.Errorf("stretch-size: %w", err)
		}
		spacing, err := sizeOf(it.TileSpacing, flatten.Size{})
		if err != nil {
			return fmt.Errorf("tile-spacing: %w", err)
		}
		l.b.PushImage(common, bounds, stretch, spacing, ImageRenderingAuto, AlphaPremultiplied,
			ImageKey{Index: it.Image}, it.Color.or(flatten.White))
	case "yuv-image":
		if len(it.Planes) == 0 || len(it.Planes) > 3 {
			return errors.New("yuv-image needs 1 to 3 planes")
		}
		var planes [3]ImageKey
		for i, p := range it.Planes {
			planes[i] = ImageKey{Index: p}
		}
		format := YuvPlanar
		if len(it.Planes) == 2 {
			format = YuvNV12
		} else if len(it.Planes) == 1 {
			format = YuvInterleaved
		}
		l.b.PushYuvImage(common, bounds, format, planes, ColorDepth8, YuvRec709, ImageRenderingAuto)
	case "border":
		style := BorderSolid
		if it.Style != "" {
			if style, err = parseBorderStyle(it.Style); err != nil {
				return err
			}
		}
		side := BorderSide{Color: it.Color.or(flatten.Black), Style: style}
		w := it.Width
		l.b.PushBorder(common, bounds, SideOffsets{Top: w, Right: w, Bottom: w, Left: w}, BorderDetails{
			Kind: BorderKindNormal,
			Normal: NormalBorder{
				Left: side, Right: side, Top: side, Bottom: side,
				Radius: UniformRadius(it.BorderRadius),
				DoAA:   true,
			},
		})
	case "box-shadow":
		offset, err := vectorOf(it.Offset)
		if err != nil {
			return fmt.Errorf("offset: %w", err)
		}
		mode := BoxShadowOutset
		if it.Inset {
			mode = BoxShadowInset
		}
		l.b.PushBoxShadow(common, bounds, offset, it.Color.or(flatten.Black), it.BlurRadius, it.SpreadRadius,
			UniformRadius(it.BorderRadius), mode)
	case "gradient":
		start, err := pointOf(it.Start)
		if err != nil {
			return fmt.Errorf("start: %w", err)
		}
		end, err := pointOf(it.End)
		if err != nil {
			return fmt.Errorf("end: %w", err)
		}
		tile, spacing, err := tiling(it, bounds)
		if err != nil {
			return err
		}
		l.b.PushGradient(common, bounds, Gradient{Start: start, End: end, Extend: extendOf(it.Repeat)},
			stopsOf(it.Stops), tile, spacing)
	case "radial-gradient":
		center, err := pointOf(it.Center)
		if err != nil {
			return fmt.Errorf("center: %w", err)
		}
		radius, err := sizeOf(it.Radius, flatten.Size{})
		if err != nil {
			return fmt.Errorf("radius: %w", err)
		}
		tile, spacing, err := tiling(it, bounds)
		if err != nil {
			return err
		}
		l.b.PushRadialGradient(common, bounds, RadialGradient{
			Center: center, Radius: radius, StartOffset: 0, EndOffset: 1, Extend: extendOf(it.Repeat),
		}, stopsOf(it.Stops), tile, spacing)
	case "backdrop-filter":
		f, err := filtersOf(it)
		if err != nil {
			return err
		}
		l.b.PushBackdropFilter(common, f)
	default:
		return fmt.Errorf("unknown item type %q", it.Type)
	}
	return nil
}

func (l *yamlLoader) text(it *yamlItem, common CommonProperties, bounds flatten.Rect) error {
	font := FontInstanceKey{Index: it.Font}
	var glyphs []GlyphInstance
	switch {
	case it.Text != "":
		if l.opts.layouter == nil {
			return errors.New("text strings need a glyph layouter")
		}
		origin, err := pointOf(it.Origin)
		if err != nil {
			return fmt.Errorf("origin: %w", err)
		}
		if glyphs, err = l.opts.layouter.LayoutText(font, it.Text, origin); err != nil {
			return err
		}
	default:
		if len(it.Offsets) != len(it.Glyphs) {
			return fmt.Errorf("%d glyphs but %d offsets", len(it.Glyphs), len(it.Offsets))
		}
		for i, g := range it.Glyphs {
			p, err := pointOf(it.Offsets[i])
			if err != nil {
				return fmt.Errorf("offset %d: %w", i, err)
			}
			glyphs = append(glyphs, GlyphInstance{Index: g, Point: p})
		}
	}
	l.b.PushText(common, bounds, glyphs, font, it.Color.or(flatten.Black), nil)
	return nil
}

func (l *yamlLoader) stackingContext(it *yamlItem, sc SpaceAndClip) error {
	inner, err := l.resolve(&yamlItem{Spatial: it.Spatial}, sc)
	if err != nil {
		return err
	}
	origin, err := pointOf(it.Origin)
	if err != nil {
		return fmt.Errorf("origin: %w", err)
	}
	ctx := StackingContext{
		CacheTiles:     it.CacheTiles,
		IsBackdropRoot: it.BackdropRoot,
	}
	if it.BackfaceHidden {
		ctx.Flags |= FlagBackfaceHidden
	}
	if it.TransformStyle == "preserve-3d" {
		ctx.TransformStyle = TransformPreserve3D
	}
	if it.MixBlendMode != "" {
		mode, ok := ParseMixBlendMode(it.MixBlendMode)
		if !ok {
			return fmt.Errorf("unknown mix-blend-mode %q", it.MixBlendMode)
		}
		ctx.MixBlendMode = mode
	}
	if it.Clip != "" {
		id, ok := l.clips[it.Clip]
		if !ok {
			return fmt.Errorf("unknown clip %q", it.Clip)
		}
		ctx.Clip = &id
	}
	if ctx.RasterSpace, err = parseRasterSpace(it.RasterSpace); err != nil {
		return err
	}
	f, err := filtersOf(it)
	if err != nil {
		return err
	}

	l.b.PushStackingContext(origin, inner.Spatial, ctx, f)
	if err := l.items(it.Items, inner); err != nil {
		return err
	}
	l.b.PopStackingContext()
	return nil
}

func (l *yamlLoader) referenceFrame(it *yamlItem, sc SpaceAndClip) error {
	parent, err := l.resolve(&yamlItem{Spatial: it.Spatial}, sc)
	if err != nil {
		return err
	}
	origin, err := pointOf(it.Origin)
	if err != nil {
		return fmt.Errorf("origin: %w", err)
	}
	transform, err := ParseTransform(it.Transform)
	if err != nil {
		return err
	}
	style := TransformFlat
	if it.TransformStyle == "preserve-3d" {
		style = TransformPreserve3D
	}
	kind := ReferenceFrameTransform
	if it.Perspective {
		kind = ReferenceFramePerspective
	}

	id := l.b.PushReferenceFrame(origin, parent.Spatial, style, transform, kind)
	l.register(it.ID, nil, &id)
	inner := parent
	inner.Spatial = id
	if err := l.items(it.Items, inner); err != nil {
		return err
	}
	l.b.PopReferenceFrame()
	return nil
}

func (l *yamlLoader) clip(it *yamlItem, sc SpaceAndClip) error {
	parent, err := l.resolve(it, sc)
	if err != nil {
		return err
	}
	bounds, err := rectOf(it.Bounds)
	if err != nil {
		return fmt.Errorf("bounds: %w", err)
	}
	var complex []ComplexClipRegion
	for _, c := range it.Complex {
		r, err := rectOf(c.Rect)
		if err != nil {
			return fmt.Errorf("complex rect: %w", err)
		}
		mode := ClipModeClip
		if c.ClipOut {
			mode = ClipModeClipOut
		}
		complex = append(complex, ComplexClipRegion{Rect: r, Radii: UniformRadius(c.Radius), Mode: mode})
	}
	id := l.b.DefineClip(parent, bounds, complex, nil)
	l.register(it.ID, &id, nil)

	inner := parent
	inner.Clip = id
	return l.items(it.Items, inner)
}

func (l *yamlLoader) clipChain(it *yamlItem) error {
	var parent *ClipChainID
	if it.Parent != "" {
		id, ok := l.clips[it.Parent]
		if !ok || id.Kind != ClipIDChain {
			return fmt.Errorf("parent %q is not a clip chain", it.Parent)
		}
		parent = &ClipChainID{Index: id.Index, Pipeline: id.Pipeline}
	}
	clips := make([]ClipID, 0, len(it.Clips))
	for _, name := range it.Clips {
		id, ok := l.clips[name]
		if !ok || id.Kind != ClipIDClip {
			return fmt.Errorf("unknown clip %q", name)
		}
		clips = append(clips, id)
	}
	id := l.b.DefineClipChain(parent, clips).ClipID()
	l.register(it.ID, &id, nil)
	return nil
}

func (l *yamlLoader) scrollFrame(it *yamlItem, sc SpaceAndClip) error {
	parent, err := l.resolve(it, sc)
	if err != nil {
		return err
	}
	bounds, err := rectOf(it.Bounds)
	if err != nil {
		return fmt.Errorf("bounds: %w", err)
	}
	contentSize, err := sizeOf(it.ContentSize, bounds.Size())
	if err != nil {
		return fmt.Errorf("content-size: %w", err)
	}
	offset, err := vectorOf(it.ScrollOffset)
	if err != nil {
		return fmt.Errorf("scroll-offset: %w", err)
	}
	var external *ExternalScrollID
	if it.ExternalID != nil {
		external = &ExternalScrollID{ID: *it.ExternalID, Pipeline: l.b.Pipeline()}
	}
	content := flatten.RectFromOriginSize(bounds.Origin(), contentSize)
	inner := l.b.DefineScrollFrame(parent, external, content, bounds, ScrollScriptAndInputEvents, offset)
	l.register(it.ID, &inner.Clip, &inner.Spatial)
	return l.items(it.Items, inner)
}

func (l *yamlLoader) stickyFrame(it *yamlItem, sc SpaceAndClip) error {
	parent, err := l.resolve(it, sc)
	if err != nil {
		return err
	}
	bounds, err := rectOf(it.Bounds)
	if err != nil {
		return fmt.Errorf("bounds: %w", err)
	}
	margins := StickyMargins{Top: it.Margins.Top, Right: it.Margins.Right, Bottom: it.Margins.Bottom, Left: it.Margins.Left}
	id := l.b.DefineStickyFrame(parent.Spatial, bounds, margins, StickyOffsetBounds{}, StickyOffsetBounds{}, flatten.Vector{})
	l.register(it.ID, nil, &id)
	inner := parent
	inner.Spatial = id
	return l.items(it.Items, inner)
}

func (l *yamlLoader) shadow(it *yamlItem, sc SpaceAndClip) error {
	outer, err := l.resolve(it, sc)
	if err != nil {
		return err
	}
	offset, err := vectorOf(it.Offset)
	if err != nil {
		return fmt.Errorf("offset: %w", err)
	}
	l.b.PushShadow(outer, Shadow{Offset: offset, Color: it.Color.or(flatten.Black), BlurRadius: it.BlurRadius}, it.Inflate)
	if err := l.items(it.Items, sc); err != nil {
		return err
	}
	l.b.PopAllShadows()
	return nil
}

func (l *yamlLoader) iframe(it *yamlItem, sc SpaceAndClip) error {
	common, bounds, err := l.common(it, sc)
	if err != nil {
		return err
	}
	if len(it.Pipeline) != 2 {
		return errors.New("iframe pipeline must be [namespace, index]")
	}
	pipeline := PipelineID{Namespace: it.Pipeline[0], Index: it.Pipeline[1]}
	l.b.PushIframe(bounds, common.ClipRect, common.SpaceAndClip, pipeline, it.IgnoreMissing)
	return nil
}

// ---------------------------------------------------------------------------
// Value parsing
// ---------------------------------------------------------------------------

func rectOf(v []float32) (flatten.Rect, error) {
	if len(v) != 4 {
		return flatten.Rect{}, fmt.Errorf("want [x, y, w, h], got %d values", len(v))
	}
	return flatten.RectFromXYWH(v[0], v[1], v[2], v[3]), nil
}

func pairOf(v []float32) (float32, float32, error) {
	switch len(v) {
	case 0:
		return 0, 0, nil
	case 2:
		return v[0], v[1], nil
	default:
		return 0, 0, fmt.Errorf("want 2 values, got %d", len(v))
	}
}

func pointOf(v []float32) (flatten.Point, error) {
	x, y, err := pairOf(v)
	return flatten.Point{X: x, Y: y}, err
}

func vectorOf(v []float32) (flatten.Vector, error) {
	x, y, err := pairOf(v)
	return flatten.Vector{X: x, Y: y}, err
}

func sizeOf(v []float32, def flatten.Size) (flatten.Size, error) {
	if len(v) == 0 {
		return def, nil
	}
	w, h, err := pairOf(v)
	return flatten.Size{Width: w, Height: h}, err
}

func tiling(it *yamlItem, bounds flatten.Rect) (flatten.Size, flatten.Size, error) {
	tile, err := sizeOf(it.TileSize, bounds.Size())
	if err != nil {
		return tile, tile, fmt.Errorf("tile-size: %w", err)
	}
	spacing, err := sizeOf(it.TileSpacing, flatten.Size{})
	if err != nil {
		return tile, spacing, fmt.Errorf("tile-spacing: %w", err)
	}
	return tile, spacing, nil
}

func extendOf(repeat bool) ExtendMode {
	if repeat {
		return ExtendRepeat
	}
	return ExtendClamp
}

func stopsOf(in []yamlStop) []GradientStop {
	stops := make([]GradientStop, len(in))
	for i, s := range in {
		stops[i] = GradientStop{Offset: s.Offset, Color: flatten.ColorF(s.Color)}
	}
	return stops
}

func parseLineStyle(s string) (LineStyle, error) {
	switch s {
	case "", "solid":
		return LineSolid, nil
	case "dotted":
		return LineDotted, nil
	case "dashed":
		return LineDashed, nil
	case "wavy":
		return LineWavy, nil
	default:
		return LineSolid, fmt.Errorf("unknown line style %q", s)
	}
}

func parseBorderStyle(s string) (BorderStyle, error) {
	styles := map[string]BorderStyle{
		"none": BorderNone, "solid": BorderSolid, "double": BorderDouble,
		"dotted": BorderDotted, "dashed": BorderDashed, "hidden": BorderHidden,
		"groove": BorderGroove, "ridge": BorderRidge, "inset": BorderInset, "outset": BorderOutset,
	}
	style, ok := styles[s]
	if !ok {
		return BorderNone, fmt.Errorf("unknown border style %q", s)
	}
	return style, nil
}

func parseRasterSpace(s string) (RasterSpace, error) {
	switch {
	case s == "" || s == "screen":
		return ScreenSpace(), nil
	case strings.HasPrefix(s, "local"):
		args, err := callArgs(s, "local")
		if err != nil {
			return RasterSpace{}, err
		}
		scale := float32(1)
		if len(args) == 1 {
			scale = args[0]
		}
		return LocalSpace(scale), nil
	default:
		return RasterSpace{}, fmt.Errorf("unknown raster-space %q", s)
	}
}

func transferFuncOf(s string) (TransferFuncType, error) {
	switch s {
	case "", "identity":
		return TransferIdentity, nil
	case "table":
		return TransferTable, nil
	case "discrete":
		return TransferDiscrete, nil
	case "linear":
		return TransferLinear, nil
	case "gamma":
		return TransferGamma, nil
	default:
		return TransferIdentity, fmt.Errorf("unknown transfer function %q", s)
	}
}

func filtersOf(it *yamlItem) (Filters, error) {
	var f Filters
	for _, s := range it.Filters {
		op, err := ParseFilter(s)
		if err != nil {
			return f, err
		}
		f.Ops = append(f.Ops, op)
	}
	for _, d := range it.FilterData {
		var fd FilterData
		var err error
		funcs := []*TransferFuncType{&fd.FuncR, &fd.FuncG, &fd.FuncB, &fd.FuncA}
		for i, name := range []string{d.FuncR, d.FuncG, d.FuncB, d.FuncA} {
			if *funcs[i], err = transferFuncOf(name); err != nil {
				return f, err
			}
		}
		fd.R, fd.G, fd.B, fd.A = d.R, d.G, d.B, d.A
		f.Data = append(f.Data, fd)
	}
	return f, nil
}

// callArgs splits "name(a, b c)" into its numeric arguments.
func callArgs(s, name string) ([]float32, error) {
	body := strings.TrimSpace(strings.TrimPrefix(s, name))
	if body == "" {
		return nil, nil
	}
	if !strings.HasPrefix(body, "(") || !strings.HasSuffix(body, ")") {
		return nil, fmt.Errorf("malformed %q", s)
	}
	fields := strings.FieldsFunc(body[1:len(body)-1], func(r rune) bool { return r == ',' || r == ' ' })
	args := make([]float32, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.ParseFloat(f, 32)
		if err != nil {
			return nil, fmt.Errorf("malformed %q: %w", s, err)
		}
		args = append(args, float32(v))
	}
	return args, nil
}

// ParseFilter parses a CSS-like filter such as "blur(4)", "opacity(0.5)",
// "drop-shadow(2 2 4 red)", "flood(blue)" or "component-transfer".
func ParseFilter(s string) (FilterOp, error) {
	s = strings.TrimSpace(s)
	name, _, _ := strings.Cut(s, "(")
	name = strings.TrimSpace(name)

	switch name {
	case "component-transfer":
		return ComponentTransfer(), nil
	case "srgb-to-linear":
		return FilterOp{Kind: FilterSrgbToLinear}, nil
	case "linear-to-srgb":
		return FilterOp{Kind: FilterLinearToSrgb}, nil
	case "identity":
		return FilterOp{Kind: FilterIdentity}, nil
	case "flood", "drop-shadow":
		return parseColorFilter(s, name)
	}

	kinds := map[string]FilterKind{
		"blur": FilterBlur, "brightness": FilterBrightness, "contrast": FilterContrast,
		"grayscale": FilterGrayscale, "hue-rotate": FilterHueRotate, "invert": FilterInvert,
		"opacity": FilterOpacity, "saturate": FilterSaturate, "sepia": FilterSepia,
	}
	kind, ok := kinds[name]
	if !ok {
		return FilterOp{}, fmt.Errorf("unknown filter %q", s)
	}
	args, err := callArgs(s, name)
	if err != nil {
		return FilterOp{}, err
	}
	if len(args) != 1 {
		return FilterOp{}, fmt.Errorf("filter %q takes one argument", name)
	}
	return Scalar(kind, args[0]), nil
}

func parseColorFilter(s, name string) (FilterOp, error) {
	body := strings.TrimPrefix(s, name)
	body = strings.TrimSuffix(strings.TrimPrefix(strings.TrimSpace(body), "("), ")")
	fields := strings.Fields(strings.ReplaceAll(body, ",", " "))
	if name == "flood" {
		c, err := flatten.ParseColor(strings.Join(fields, " "))
		if err != nil {
			return FilterOp{}, err
		}
		return Flood(c), nil
	}
	if len(fields) < 4 {
		return FilterOp{}, fmt.Errorf("drop-shadow needs x y blur color, got %q", s)
	}
	var nums [3]float32
	for i := range nums {
		v, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return FilterOp{}, fmt.Errorf("malformed %q: %w", s, err)
		}
		nums[i] = float32(v)
	}
	c, err := flatten.ParseColor(strings.Join(fields[3:], " "))
	if err != nil {
		return FilterOp{}, err
	}
	return DropShadow(Shadow{Offset: flatten.Vector{X: nums[0], Y: nums[1]}, BlurRadius: nums[2], Color: c}), nil
}

// ParseTransform parses a sequence like "translate(10, 20) rotate(45)
// scale(2)". Functions apply left to right in CSS order. Rotation is in
// degrees. An empty string is the identity.
func ParseTransform(s string) (flatten.Transform, error) {
	t := flatten.Identity()
	rest := strings.TrimSpace(s)
	for rest != "" {
		end := strings.IndexByte(rest, ')')
		if end < 0 {
			return t, fmt.Errorf("malformed transform %q", s)
		}
		call := strings.TrimSpace(rest[:end+1])
		rest = strings.TrimSpace(rest[end+1:])
		name, _, _ := strings.Cut(call, "(")
		name = strings.TrimSpace(name)
		args, err := callArgs(call, name)
		if err != nil {
			return t, err
		}
		var step flatten.Transform
		switch {
		case name == "translate" && len(args) == 2:
			step = flatten.Translation(args[0], args[1])
		case name == "scale" && len(args) == 1:
			step = flatten.Scale(args[0], args[0])
		case name == "scale" && len(args) == 2:
			step = flatten.Scale(args[0], args[1])
		case name == "rotate" && len(args) == 1:
			step = flatten.Rotation(args[0] * math32.Pi / 180)
		default:
			return t, fmt.Errorf("unsupported transform %q", call)
		}
		t = t.Multiply(step)
	}
	return t, nil
}
