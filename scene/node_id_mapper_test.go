package scene

import (
	"errors"
	"testing"

	"github.com/gogpu/flatten"
	"github.com/gogpu/flatten/clip"
	"github.com/gogpu/flatten/displaylist"
	"github.com/gogpu/flatten/spatial"
)

// expectFault runs fn and reports whether it raised a contract fault.
func expectFault(t *testing.T, fn func()) (faulted bool) {
	t.Helper()
	defer func() {
		if r := recover(); r != nil {
			ce, ok := r.(*flatten.ContractError)
			if !ok {
				panic(r)
			}
			if !errors.Is(ce, flatten.ErrContract) {
				t.Errorf("fault %v does not wrap ErrContract", ce)
			}
			faulted = true
		}
	}()
	fn()
	return false
}

func TestNodeIDMapper(t *testing.T) {
	m := newNodeIDMapper()
	c := displaylist.ClipID{Kind: displaylist.ClipIDClip, Index: 3, Pipeline: testPipeline}
	s := displaylist.SpatialID{Index: 4, Pipeline: testPipeline}

	m.AddClipChain(c, clip.ChainID(7), 2)
	m.MapSpatialNode(s, spatial.NodeIndex(5))

	if got := m.ClipChainID(c); got != 7 {
		t.Errorf("ClipChainID() = %v, want 7", got)
	}
	if got := m.ClipNode(c).count; got != 2 {
		t.Errorf("ClipNode().count = %d, want 2", got)
	}
	if got := m.SpatialNodeIndex(s); got != 5 {
		t.Errorf("SpatialNodeIndex() = %v, want 5", got)
	}

	tests := []struct {
		name string
		fn   func()
	}{
		{"duplicate clip", func() { m.AddClipChain(c, clip.ChainNone, 0) }},
		{"duplicate spatial", func() { m.MapSpatialNode(s, 0) }},
		{"unknown clip", func() { m.ClipChainID(displaylist.ClipID{Kind: displaylist.ClipIDClip, Index: 99}) }},
		{"unknown spatial", func() { m.SpatialNodeIndex(displaylist.SpatialID{Index: 99}) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !expectFault(t, tt.fn) {
				t.Error("no fault raised")
			}
		})
	}
}

func TestReferenceFrameMapper(t *testing.T) {
	var m referenceFrameMapper
	m.PushScope()
	m.PushOffset(flatten.Vector{X: 5, Y: 5})
	m.PushOffset(flatten.Vector{X: 1, Y: 2})
	if got, want := m.CurrentOffset(), (flatten.Vector{X: 6, Y: 7}); got != want {
		t.Errorf("CurrentOffset() = %v, want %v", got, want)
	}

	m.PushScope()
	if got := m.CurrentOffset(); got != (flatten.Vector{}) {
		t.Errorf("CurrentOffset() in new scope = %v, want zero", got)
	}
	m.PopScope()

	m.PopOffset()
	if got, want := m.CurrentOffset(), (flatten.Vector{X: 5, Y: 5}); got != want {
		t.Errorf("CurrentOffset() after pop = %v, want %v", got, want)
	}
	m.PopOffset()
	if !expectFault(t, m.PopOffset) {
		t.Error("PopOffset() below the scope base did not fault")
	}
	m.PopScope()
	if m.Depth() != 0 {
		t.Errorf("Depth() = %d, want 0", m.Depth())
	}
	if !expectFault(t, m.PopScope) {
		t.Error("PopScope() with no scope did not fault")
	}
}

func TestScrollOffsetMapper(t *testing.T) {
	tree := spatial.NewTree()
	rf := tree.AddReferenceFrame(spatial.InvalidNode, displaylist.TransformFlat, flatten.Identity(),
		displaylist.ReferenceFrameTransform, flatten.Vector{}, testPipeline)
	frame := flatten.RectFromXYWH(0, 0, 100, 100)
	outer := tree.AddScrollFrame(rf, nil, testPipeline, frame, flatten.Size{Width: 100, Height: 300},
		displaylist.ScrollScriptAndInputEvents, spatial.ScrollFrameExplicit, flatten.Vector{Y: -10})
	inner := tree.AddScrollFrame(outer, nil, testPipeline, frame, flatten.Size{Width: 100, Height: 300},
		displaylist.ScrollScriptAndInputEvents, spatial.ScrollFrameExplicit, flatten.Vector{Y: -5})

	var m scrollOffsetMapper
	if got, want := m.ExternalScrollOffset(tree, inner), (flatten.Vector{Y: -15}); got != want {
		t.Errorf("ExternalScrollOffset(inner) = %v, want %v", got, want)
	}
	if got, want := m.ExternalScrollOffset(tree, outer), (flatten.Vector{Y: -10}); got != want {
		t.Errorf("ExternalScrollOffset(outer) = %v, want %v", got, want)
	}
	if got := m.ExternalScrollOffset(tree, rf); got != (flatten.Vector{}) {
		t.Errorf("ExternalScrollOffset(frame) = %v, want zero", got)
	}
}

func TestLenientAssertions(t *testing.T) {
	tests := []struct {
		name      string
		lenient   bool
		wantFault bool
	}{
		{"strict", false, true},
		{"lenient", true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := NewDocument(&Pipeline{DisplayList: finalize(t, newList()), Viewport: testViewport})
			b, err := NewBuilder(doc, spatial.NewTree(),
				WithConfig(flatten.NewConfig(flatten.WithLenientAssertions(tt.lenient))))
			if err != nil {
				t.Fatal(err)
			}
			if got := expectFault(t, b.popStackingContext); got != tt.wantFault {
				t.Errorf("popStackingContext() on an empty stack faulted = %v, want %v", got, tt.wantFault)
			}
		})
	}
}
