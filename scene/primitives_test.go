package scene

import (
	"slices"
	"testing"

	"github.com/gogpu/flatten"
	"github.com/gogpu/flatten/clip"
	"github.com/gogpu/flatten/displaylist"
	"github.com/gogpu/flatten/prim"
	"github.com/gogpu/flatten/resources"
	"github.com/gogpu/flatten/spatial"
)

type fakeFonts map[displaylist.FontInstanceKey]*resources.FontInstance

func (f fakeFonts) FontInstance(key displaylist.FontInstanceKey) (*resources.FontInstance, bool) {
	inst, ok := f[key]
	return inst, ok
}

func TestText(t *testing.T) {
	known := displaylist.FontInstanceKey{Index: 1}
	empty := displaylist.FontInstanceKey{Index: 2}
	fonts := fakeFonts{
		known: {Key: known, Size: 16, RenderMode: flatten.FontRenderAlpha, Flags: displaylist.FontSyntheticBold},
		empty: {Key: empty, Size: 0, RenderMode: flatten.FontRenderAlpha},
	}
	bounds := flatten.RectFromXYWH(10, 10, 100, 20)
	glyphs := []displaylist.GlyphInstance{{Index: 5, Point: flatten.Point{X: 12, Y: 26}}}

	tests := []struct {
		name      string
		fonts     FontInstances
		font      displaylist.FontInstanceKey
		opts      *displaylist.GlyphOptions
		wantRuns  int
		wantMode  flatten.FontRenderMode
		wantFlags displaylist.FontInstanceFlags
	}{
		{"no font source", nil, known, nil, 0, 0, 0},
		{"unknown instance", fonts, displaylist.FontInstanceKey{Index: 9}, nil, 0, 0, 0},
		{"zero size", fonts, empty, nil, 0, 0, 0},
		{"instance mode", fonts, known, nil, 1, flatten.FontRenderAlpha, displaylist.FontSyntheticBold},
		{"options lower mode", fonts, known,
			&displaylist.GlyphOptions{RenderMode: flatten.FontRenderMono, Flags: displaylist.FontTransposed},
			1, flatten.FontRenderMono, displaylist.FontSyntheticBold | displaylist.FontTransposed},
		{"options cannot raise mode", fonts, known,
			&displaylist.GlyphOptions{RenderMode: flatten.FontRenderSubpixel},
			1, flatten.FontRenderAlpha, displaylist.FontSyntheticBold},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newList()
			b.PushText(commonAt(bounds, rootSC()), bounds, glyphs, tt.font, red, tt.opts)

			opts := []Option{noCaching()}
			if tt.fonts != nil {
				opts = append(opts, WithFontInstances(tt.fonts))
			}
			s := buildScene(t, b, opts...)
			got := leaves(s, s.Root)
			if len(got) != tt.wantRuns {
				t.Fatalf("text runs = %d, want %d", len(got), tt.wantRuns)
			}
			if tt.wantRuns == 0 {
				return
			}
			key, ok := keyOf(t, s, got[0]).(prim.TextRunKey)
			if !ok {
				t.Fatalf("key = %T, want TextRunKey", keyOf(t, s, got[0]))
			}
			if key.RenderMode != tt.wantMode {
				t.Errorf("RenderMode = %v, want %v", key.RenderMode, tt.wantMode)
			}
			if key.Flags != tt.wantFlags {
				t.Errorf("Flags = %v, want %v", key.Flags, tt.wantFlags)
			}
			if key.Size != 16 {
				t.Errorf("Size = %v, want 16", key.Size)
			}
			if key.Glyphs.Len() != 1 {
				t.Fatalf("glyphs = %d, want 1", key.Glyphs.Len())
			}
			idx, pos := key.Glyphs.Glyph(0)
			if idx != 5 || pos.X != 2*64 || pos.Y != 16*64 {
				t.Errorf("glyph = %d at %v, want 5 at (2,16) relative to the run", idx, pos)
			}
		})
	}
}

func TestLinearGradient(t *testing.T) {
	bounds := flatten.RectFromXYWH(0, 0, 100, 100)
	opaque := []displaylist.GradientStop{{Offset: 0, Color: red}, {Offset: 1, Color: blue}}
	transparent := []displaylist.GradientStop{{Offset: 0, Color: flatten.Transparent}, {Offset: 1, Color: flatten.Transparent}}

	tests := []struct {
		name        string
		g           displaylist.Gradient
		stops       []displaylist.GradientStop
		wantPrims   int
		wantStart   flatten.Point
		wantEnd     flatten.Point
		wantReverse bool
	}{
		{"left to right",
			displaylist.Gradient{Start: flatten.Point{X: 0}, End: flatten.Point{X: 100}},
			opaque, 1, flatten.Point{X: 0}, flatten.Point{X: 100}, false},
		{"right to left",
			displaylist.Gradient{Start: flatten.Point{X: 100}, End: flatten.Point{X: 0}},
			opaque, 1, flatten.Point{X: 0}, flatten.Point{X: 100}, true},
		{"bottom to top",
			displaylist.Gradient{Start: flatten.Point{Y: 100}, End: flatten.Point{Y: 0}},
			opaque, 1, flatten.Point{Y: 0}, flatten.Point{Y: 100}, true},
		{"transparent stops", displaylist.Gradient{End: flatten.Point{X: 100}}, transparent, 0, flatten.Point{}, flatten.Point{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newList()
			b.PushGradient(commonAt(bounds, rootSC()), bounds, tt.g, tt.stops, flatten.Size{}, flatten.Size{})
			s := buildScene(t, b, noCaching())
			got := leaves(s, s.Root)
			if len(got) != tt.wantPrims {
				t.Fatalf("prims = %d, want %d", len(got), tt.wantPrims)
			}
			if tt.wantPrims == 0 {
				return
			}
			key := keyOf(t, s, got[0]).(prim.LinearGradientKey)
			if key.Start != tt.wantStart || key.End != tt.wantEnd {
				t.Errorf("points = %v -> %v, want %v -> %v", key.Start, key.End, tt.wantStart, tt.wantEnd)
			}
			if key.ReverseStops != tt.wantReverse {
				t.Errorf("ReverseStops = %v, want %v", key.ReverseStops, tt.wantReverse)
			}
			if key.Stops.Len() != 2 || key.Stops.Stop(1) != opaque[1] {
				t.Errorf("stops = %d, want the item's 2 stops", key.Stops.Len())
			}
		})
	}
}

func TestSimplifyRepeated(t *testing.T) {
	rect := flatten.RectFromXYWH(10, 10, 100, 100)
	tests := []struct {
		name        string
		stretch     flatten.Size
		spacing     flatten.Size
		wantRect    flatten.Rect
		wantSpacing flatten.Size
	}{
		{"tiled", flatten.Size{Width: 10, Height: 10}, flatten.Size{Width: 5, Height: 5},
			rect, flatten.Size{Width: 5, Height: 5}},
		{"single tile wide", flatten.Size{Width: 60, Height: 10}, flatten.Size{Width: 50, Height: 5},
			flatten.RectFromXYWH(10, 10, 60, 100), flatten.Size{Height: 5}},
		{"larger than rect", flatten.Size{Width: 200, Height: 200}, flatten.Size{},
			rect, flatten.Size{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotRect, gotSpacing := simplifyRepeated(tt.stretch, tt.spacing, rect)
			if gotRect != tt.wantRect {
				t.Errorf("rect = %v, want %v", gotRect, tt.wantRect)
			}
			if gotSpacing != tt.wantSpacing {
				t.Errorf("spacing = %v, want %v", gotSpacing, tt.wantSpacing)
			}
		})
	}
}

func TestEnsureNoCornerOverlap(t *testing.T) {
	tests := []struct {
		name string
		r    displaylist.BorderRadius
		size flatten.Size
		want displaylist.BorderRadius
	}{
		{"fits", displaylist.UniformRadius(10), flatten.Size{Width: 100, Height: 100}, displaylist.UniformRadius(10)},
		{"scaled", displaylist.UniformRadius(40), flatten.Size{Width: 40, Height: 100}, displaylist.UniformRadius(20)},
		{"zero", displaylist.BorderRadius{}, flatten.Size{}, displaylist.BorderRadius{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ensureNoCornerOverlap(tt.r, tt.size); got != tt.want {
				t.Errorf("ensureNoCornerOverlap() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBoxShadow(t *testing.T) {
	box := flatten.RectFromXYWH(100, 100, 50, 50)
	tests := []struct {
		name        string
		color       flatten.ColorF
		blur        float32
		radius      displaylist.BorderRadius
		mode        displaylist.BoxShadowClipMode
		wantPrims   int
		wantRect    flatten.Rect
		wantHandles int
	}{
		{"transparent", flatten.Transparent, 2, displaylist.BorderRadius{}, displaylist.BoxShadowOutset, 0, flatten.Rect{}, 0},
		{"outset blurred", red, 2, displaylist.BorderRadius{}, displaylist.BoxShadowOutset, 1,
			box.Translate(flatten.Vector{X: 5, Y: 5}).Inflate(1+6, 1+6), 2},
		{"outset sharp", red, 0, displaylist.BorderRadius{}, displaylist.BoxShadowOutset, 1,
			box.Translate(flatten.Vector{X: 5, Y: 5}).Inflate(1, 1), 1},
		{"inset sharp", red, 0, displaylist.BorderRadius{}, displaylist.BoxShadowInset, 1, box, 2},
		{"inset rounded", red, 0, displaylist.UniformRadius(8), displaylist.BoxShadowInset, 1, box, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newList()
			b.PushBoxShadow(commonAt(box.Inflate(50, 50), rootSC()), box, flatten.Vector{X: 5, Y: 5},
				tt.color, tt.blur, 1, tt.radius, tt.mode)
			s := buildScene(t, b, noCaching())
			got := leaves(s, s.Root)
			if len(got) != tt.wantPrims {
				t.Fatalf("prims = %d, want %d", len(got), tt.wantPrims)
			}
			if tt.wantPrims == 0 {
				return
			}
			if got[0].Kind != prim.KindBoxShadow {
				t.Errorf("Kind = %v, want BoxShadow", got[0].Kind)
			}
			if got[0].Rect != tt.wantRect {
				t.Errorf("Rect = %v, want %v", got[0].Rect, tt.wantRect)
			}
			if n := len(s.Clips.Handles(got[0].ClipChain)); n != tt.wantHandles {
				t.Errorf("clip handles = %d, want %d", n, tt.wantHandles)
			}
		})
	}
}

func TestBoxShadowIgnoresShadowScope(t *testing.T) {
	box := flatten.RectFromXYWH(10, 10, 20, 20)
	b := newList()
	b.PushShadow(rootSC(), displaylist.Shadow{Color: blue, BlurRadius: 2}, false)
	b.PushBoxShadow(commonAt(box, rootSC()), box, flatten.Vector{}, red, 2, 0,
		displaylist.BorderRadius{}, displaylist.BoxShadowOutset)
	b.PopAllShadows()

	s := buildScene(t, b, noCaching())
	root := s.Pictures.Picture(s.Root)
	if len(root.Prims) != 1 || root.Prims[0].Kind != prim.KindBoxShadow {
		t.Errorf("root prims = %v, want one unshadowed box shadow", root.Prims)
	}
}

func TestStackingContextOrigin(t *testing.T) {
	r := flatten.RectFromXYWH(0, 0, 10, 10)
	b := newList()
	b.PushStackingContext(flatten.Point{X: 5, Y: 5}, rootSC().Spatial, displaylist.StackingContext{}, displaylist.Filters{})
	b.PushStackingContext(flatten.Point{X: 1, Y: 2}, rootSC().Spatial, displaylist.StackingContext{}, displaylist.Filters{})
	b.PushRect(commonAt(r, rootSC()), r, red)
	b.PopStackingContext()
	b.PushRect(commonAt(r, rootSC()), r, blue)
	b.PopStackingContext()

	s := buildScene(t, b, noCaching())
	got := leaves(s, s.Root)
	want := []flatten.Rect{
		flatten.RectFromXYWH(6, 7, 10, 10),
		flatten.RectFromXYWH(5, 5, 10, 10),
	}
	if len(got) != len(want) {
		t.Fatalf("leaves = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].Rect != want[i] {
			t.Errorf("leaf %d Rect = %v, want %v", i, got[i].Rect, want[i])
		}
		if got[i].LocalClipRect != want[i] {
			t.Errorf("leaf %d LocalClipRect = %v, want %v", i, got[i].LocalClipRect, want[i])
		}
	}
}

func TestReferenceFrame(t *testing.T) {
	r := flatten.RectFromXYWH(0, 0, 10, 10)
	b := newList()
	b.PushStackingContext(flatten.Point{X: 5, Y: 5}, rootSC().Spatial, displaylist.StackingContext{}, displaylist.Filters{})
	rf := b.PushReferenceFrame(flatten.Point{X: 10, Y: 20}, rootSC().Spatial,
		displaylist.TransformFlat, flatten.Identity(), displaylist.ReferenceFrameTransform)
	sc := displaylist.SpaceAndClip{Spatial: rf, Clip: displaylist.RootClip(testPipeline)}
	b.PushRect(commonAt(r, sc), r, red)
	b.PopReferenceFrame()
	b.PopStackingContext()

	tree := spatial.NewTree()
	doc := NewDocument(&Pipeline{DisplayList: finalize(t, b), Viewport: testViewport})
	s, err := Build(doc, tree, noCaching())
	if err != nil {
		t.Fatalf("Build() = %v", err)
	}

	got := leaves(s, s.Root)
	if len(got) != 1 {
		t.Fatalf("leaves = %d, want 1", len(got))
	}
	if got[0].Rect != r {
		t.Errorf("Rect = %v, want %v relative to the frame", got[0].Rect, r)
	}
	if got[0].SpatialNode != 2 {
		t.Errorf("SpatialNode = %v, want #2", got[0].SpatialNode)
	}
	node := tree.Node(2)
	if node.Reference == nil {
		t.Fatalf("node #2 kind = %v, want reference frame", node.Kind)
	}
	if want := (flatten.Vector{X: 15, Y: 25}); node.Reference.Origin != want {
		t.Errorf("frame origin = %v, want %v", node.Reference.Origin, want)
	}
}

func TestExternalScrollOffset(t *testing.T) {
	r := flatten.RectFromXYWH(0, 100, 10, 10)
	off := flatten.Vector{Y: -40}
	b := newList()
	sf := b.DefineScrollFrame(rootSC(), &displaylist.ExternalScrollID{ID: 7, Pipeline: testPipeline},
		flatten.RectFromXYWH(0, 0, 100, 500), flatten.RectFromXYWH(0, 0, 100, 100),
		displaylist.ScrollScriptAndInputEvents, off)
	b.PushRect(commonAt(r, sf), r, red)

	s := buildScene(t, b, noCaching())
	got := leaves(s, s.Root)
	if len(got) != 1 {
		t.Fatalf("leaves = %d, want 1", len(got))
	}
	if want := r.Translate(off); got[0].Rect != want {
		t.Errorf("Rect = %v, want %v", got[0].Rect, want)
	}
	if got[0].ClipChain == clip.ChainNone {
		t.Error("scrolled rect is not clipped by its frame")
	}
}

func TestStickyFrame(t *testing.T) {
	r := flatten.RectFromXYWH(0, 0, 10, 10)
	bounds := flatten.RectFromXYWH(0, 100, 50, 20)
	top := float32(5)
	b := newList()
	b.PushStackingContext(flatten.Point{X: 5, Y: 7}, rootSC().Spatial, displaylist.StackingContext{}, displaylist.Filters{})
	sf := b.DefineScrollFrame(rootSC(), nil, flatten.RectFromXYWH(0, 0, 100, 500), flatten.RectFromXYWH(0, 0, 100, 100),
		displaylist.ScrollScriptAndInputEvents, flatten.Vector{Y: -40})
	sticky := b.DefineStickyFrame(sf.Spatial, bounds, displaylist.StickyMargins{Top: &top},
		displaylist.StickyOffsetBounds{Min: -100, Max: 0}, displaylist.StickyOffsetBounds{}, flatten.Vector{})
	b.PushRect(commonAt(r, displaylist.SpaceAndClip{Spatial: sticky, Clip: sf.Clip}), r, red)
	b.PopStackingContext()

	tree := spatial.NewTree()
	doc := NewDocument(&Pipeline{DisplayList: finalize(t, b), Viewport: testViewport})
	s, err := Build(doc, tree, noCaching())
	if err != nil {
		t.Fatalf("Build() = %v", err)
	}

	if tree.Len() != 4 {
		t.Fatalf("tree.Len() = %d, want 4", tree.Len())
	}
	node := tree.Node(3)
	if node.Kind != spatial.KindStickyFrame || node.Sticky == nil {
		t.Fatalf("node #3 kind = %v, want sticky frame", node.Kind)
	}
	if node.Parent != 2 {
		t.Errorf("sticky parent = %v, want #2", node.Parent)
	}
	// Stacking context origin plus the scroll frame's external offset.
	if want := bounds.Translate(flatten.Vector{X: 5, Y: -33}); node.Sticky.FrameRect != want {
		t.Errorf("FrameRect = %v, want %v", node.Sticky.FrameRect, want)
	}
	if node.Sticky.Margins.Top == nil || *node.Sticky.Margins.Top != top {
		t.Errorf("Margins.Top = %v, want %v", node.Sticky.Margins.Top, top)
	}

	got := leaves(s, s.Root)
	if len(got) != 1 {
		t.Fatalf("leaves = %d, want 1", len(got))
	}
	if got[0].SpatialNode != 3 {
		t.Errorf("SpatialNode = %v, want the sticky frame #3", got[0].SpatialNode)
	}
}

func TestPictureCaching(t *testing.T) {
	r := flatten.RectFromXYWH(0, 0, 50, 50)
	content := flatten.RectFromXYWH(0, 0, 100, 500)
	viewport := flatten.RectFromXYWH(0, 0, 100, 100)
	scroll := func(b *displaylist.Builder) displaylist.SpaceAndClip {
		return b.DefineScrollFrame(rootSC(), nil, content, viewport, displaylist.ScrollScriptAndInputEvents, flatten.Vector{})
	}
	cacheTiles := displaylist.StackingContext{CacheTiles: true}

	t.Run("single scroll root", func(t *testing.T) {
		b := newList()
		sf := scroll(b)
		b.PushStackingContext(flatten.Point{}, rootSC().Spatial, cacheTiles, displaylist.Filters{})
		b.PushRect(commonAt(r, rootSC()), r, blue)
		b.PushRect(commonAt(r, sf), r, red)
		b.PushRect(commonAt(r, sf), r, red)
		b.PopStackingContext()

		s := buildScene(t, b)
		if !s.PictureCaching {
			t.Error("PictureCaching = false, want true")
		}
		tile, tileInst, owner := findTileCache(t, s)
		if tile.Mode.ScrollRoot != 2 {
			t.Errorf("ScrollRoot = %v, want #2", tile.Mode.ScrollRoot)
		}
		if len(tile.Mode.SharedClips) != 1 {
			t.Errorf("SharedClips = %d, want 1", len(tile.Mode.SharedClips))
		}
		if tileInst.ClipChain == clip.ChainNone {
			t.Error("tile cache instance has no shared clip chain")
		}
		if len(tile.Prims) != 2 {
			t.Errorf("cached prims = %d, want 2", len(tile.Prims))
		}
		if len(owner.Prims) != 2 || owner.Prims[0].Kind != prim.KindRectangle {
			t.Errorf("owner prims = %v, want the fixed rect then the cache", owner.Prims)
		}
	})

	t.Run("clip scope across the cut", func(t *testing.T) {
		b := newList()
		sf := scroll(b)
		c := b.DefineClip(rootSC(), flatten.RectFromXYWH(0, 0, 80, 80), nil, nil)
		b.PushStackingContext(flatten.Point{}, rootSC().Spatial, cacheTiles, displaylist.Filters{})
		b.PushStackingContext(flatten.Point{}, rootSC().Spatial, displaylist.StackingContext{Clip: &c}, displaylist.Filters{})
		b.PushRect(commonAt(r, rootSC()), r, blue)
		b.PushRect(commonAt(r, sf), r, red)
		b.PopStackingContext()
		b.PopStackingContext()

		s := buildScene(t, b)
		tile, _, owner := findTileCache(t, s)

		before := owner.Prims[:len(owner.Prims)-1]
		wantBefore := []prim.Kind{prim.KindPushClipChain, prim.KindRectangle, prim.KindPopClipChain}
		wantTile := []prim.Kind{prim.KindPushClipChain, prim.KindRectangle, prim.KindPopClipChain}
		if got := kinds(before); !slices.Equal(got, wantBefore) {
			t.Errorf("before the cache = %v, want %v", got, wantBefore)
		}
		if got := kinds(tile.Prims); !slices.Equal(got, wantTile) {
			t.Fatalf("cached = %v, want %v", got, wantTile)
		}
		if before[0].ClipChain != tile.Prims[0].ClipChain {
			t.Errorf("reopened chain = %v, want %v", tile.Prims[0].ClipChain, before[0].ClipChain)
		}
		if !markersBalanced(before) {
			t.Error("clip markers before the cache are unbalanced")
		}
		if !markersBalanced(tile.Prims) {
			t.Error("clip markers in the cache are unbalanced")
		}
	})

	t.Run("shared clips intersect", func(t *testing.T) {
		b := newList()
		sf := scroll(b)
		c1 := b.DefineClip(sf, flatten.RectFromXYWH(0, 0, 40, 40), nil, nil)
		c2 := b.DefineClip(sf, flatten.RectFromXYWH(10, 10, 40, 40), nil, nil)
		b.PushStackingContext(flatten.Point{}, rootSC().Spatial, cacheTiles, displaylist.Filters{})
		b.PushRect(commonAt(r, displaylist.SpaceAndClip{Spatial: sf.Spatial, Clip: c1}), r, red)
		b.PushRect(commonAt(r, displaylist.SpaceAndClip{Spatial: sf.Spatial, Clip: c2}), r, blue)
		b.PopStackingContext()

		s := buildScene(t, b)
		tile, _, _ := findTileCache(t, s)
		// Only the scroll frame's own clip is common to both rects.
		if len(tile.Mode.SharedClips) != 1 {
			t.Errorf("SharedClips = %d, want 1", len(tile.Mode.SharedClips))
		}
		if len(tile.Prims) != 2 || tile.Prims[0].ClipChain == tile.Prims[1].ClipChain {
			t.Errorf("cached prims = %v, want two rects with distinct chains", tile.Prims)
		}
	})

	t.Run("multiple scroll roots", func(t *testing.T) {
		b := newList()
		sf1 := scroll(b)
		sf2 := scroll(b)
		b.PushStackingContext(flatten.Point{}, rootSC().Spatial, cacheTiles, displaylist.Filters{})
		b.PushRect(commonAt(r, sf1), r, red)
		b.PushRect(commonAt(r, sf2), r, blue)
		b.PopStackingContext()

		s := buildScene(t, b)
		if s.PictureCaching {
			t.Error("PictureCaching = true, want false after abandonment")
		}
		if n := countMode(s, prim.CompositeTileCache); n != 0 {
			t.Errorf("tile cache pictures = %d, want 0", n)
		}
		if got := len(leaves(s, s.Root)); got != 2 {
			t.Errorf("leaves = %d, want 2", got)
		}
	})

	t.Run("implicit", func(t *testing.T) {
		b := newList()
		b.PushRect(commonAt(r, rootSC()), r, red)
		s := buildScene(t, b)
		if n := countMode(s, prim.CompositeTileCache); n != 1 {
			t.Fatalf("tile cache pictures = %d, want 1", n)
		}
		root := s.Pictures.Picture(s.Root)
		tile := s.Pictures.Picture(root.Prims[0].Picture)
		if tile.Mode.ScrollRoot != spatial.RootNode {
			t.Errorf("ScrollRoot = %v, want root", tile.Mode.ScrollRoot)
		}
	})
}

// findTileCache returns the only tile cache picture below the root, its
// instance and the picture that holds it.
func findTileCache(t *testing.T, s *Scene) (tile *prim.Picture, inst prim.Instance, owner *prim.Picture) {
	t.Helper()
	for _, pic := range pictures(s, s.Root) {
		for _, i := range pic.Prims {
			if i.Kind != prim.KindPicture {
				continue
			}
			child := s.Pictures.Picture(i.Picture)
			if child.Mode != nil && child.Mode.Kind == prim.CompositeTileCache {
				if tile != nil {
					t.Fatal("more than one tile cache")
				}
				tile, inst, owner = child, i, pic
			}
		}
	}
	if tile == nil {
		t.Fatal("no tile cache picture")
	}
	return tile, inst, owner
}

func kinds(prims []prim.Instance) []prim.Kind {
	out := make([]prim.Kind, len(prims))
	for i, p := range prims {
		out[i] = p.Kind
	}
	return out
}

func markersBalanced(prims []prim.Instance) bool {
	depth := 0
	for _, p := range prims {
		switch p.Kind {
		case prim.KindPushClipChain:
			depth++
		case prim.KindPopClipChain:
			depth--
			if depth < 0 {
				return false
			}
		}
	}
	return depth == 0
}

func TestClipChainAlias(t *testing.T) {
	r := flatten.RectFromXYWH(0, 0, 100, 100)
	b := newList()
	c1 := b.DefineClip(rootSC(), flatten.RectFromXYWH(0, 0, 80, 80), nil, nil)
	c2 := b.DefineClip(rootSC(), flatten.RectFromXYWH(10, 10, 80, 80),
		[]displaylist.ComplexClipRegion{{Rect: r, Radii: displaylist.UniformRadius(4)}}, nil)
	chain := b.DefineClipChain(nil, []displaylist.ClipID{c1, c2})
	b.PushRect(commonAt(r, displaylist.SpaceAndClip{Spatial: rootSC().Spatial, Clip: chain.ClipID()}), r, red)

	s := buildScene(t, b, noCaching())
	got := leaves(s, s.Root)
	if len(got) != 1 {
		t.Fatalf("leaves = %d, want 1", len(got))
	}
	// One rect from c1, a rect and a rounded rect from c2.
	if n := len(s.Clips.Handles(got[0].ClipChain)); n != 3 {
		t.Errorf("clip handles = %d, want 3", n)
	}
}

func TestBorder(t *testing.T) {
	bounds := flatten.RectFromXYWH(10, 10, 40, 100)
	widths := displaylist.SideOffsets{Top: 2, Right: 2, Bottom: 2, Left: 2}
	side := displaylist.BorderSide{Color: red, Style: displaylist.BorderSolid}

	t.Run("normal", func(t *testing.T) {
		b := newList()
		b.PushBorder(commonAt(bounds, rootSC()), bounds, widths, displaylist.BorderDetails{
			Kind: displaylist.BorderKindNormal,
			Normal: displaylist.NormalBorder{
				Left: side, Right: side, Top: side, Bottom: side,
				Radius: displaylist.UniformRadius(40),
			},
		})
		s := buildScene(t, b, noCaching())
		got := leaves(s, s.Root)
		if len(got) != 1 {
			t.Fatalf("prims = %d, want 1", len(got))
		}
		key := keyOf(t, s, got[0]).(prim.NormalBorderKey)
		if want := displaylist.UniformRadius(20); key.Border.Radius != want {
			t.Errorf("Radius = %v, want %v", key.Border.Radius, want)
		}
	})

	t.Run("nine patch outset", func(t *testing.T) {
		b := newList()
		b.PushBorder(commonAt(bounds, rootSC()), bounds, widths, displaylist.BorderDetails{
			Kind: displaylist.BorderKindNinePatch,
			NinePatch: displaylist.NinePatchBorder{
				Width: 30, Height: 30,
				Outset: displaylist.SideOffsets{Top: 1, Right: 2, Bottom: 3, Left: 4},
			},
		})
		s := buildScene(t, b, noCaching())
		got := leaves(s, s.Root)
		if len(got) != 1 || got[0].Kind != prim.KindImageBorder {
			t.Fatalf("prims = %v, want one image border", got)
		}
		want := flatten.Rect{MinX: 6, MinY: 9, MaxX: 52, MaxY: 113}
		if got[0].Rect != want {
			t.Errorf("Rect = %v, want %v", got[0].Rect, want)
		}
	})

	t.Run("invisible sides", func(t *testing.T) {
		b := newList()
		b.PushBorder(commonAt(bounds, rootSC()), bounds, widths, displaylist.BorderDetails{Kind: displaylist.BorderKindNormal})
		s := buildScene(t, b, noCaching())
		if got := len(leaves(s, s.Root)); got != 0 {
			t.Errorf("prims = %d, want 0", got)
		}
	})
}
