package displaylist

import (
	"strings"
	"testing"

	"github.com/chewxy/math32"

	"github.com/gogpu/flatten"
)

const sampleScene = `
viewport: [800, 600]
background: "#102030"
items:
  - type: stacking-context
    filters: ["opacity(0.5)", "blur(2)"]
    items:
      - type: rect
        bounds: [10, 10, 100, 100]
        color: red
      - type: scroll-frame
        id: scroller
        bounds: [0, 0, 200, 200]
        content-size: [200, 1000]
        items:
          - type: rect
            bounds: [0, 0, 200, 50]
            color: [0, 0, 1, 0.5]
      - type: clip
        id: rounded
        bounds: [0, 0, 50, 50]
        complex:
          - rect: [0, 0, 50, 50]
            radius: 8
      - type: clip-chain
        id: chain
        clips: [rounded]
      - type: rect
        bounds: [0, 0, 20, 20]
        clip: chain
pipelines:
  - pipeline: [1, 7]
    items:
      - type: rect
        bounds: [0, 0, 5, 5]
`

func kindsOf(list *BuiltDisplayList) []ItemKind {
	kinds := make([]ItemKind, list.Len())
	for i := range kinds {
		kinds[i] = list.Item(i).Kind()
	}
	return kinds
}

func TestLoadYAML(t *testing.T) {
	pipelines, err := LoadYAML(strings.NewReader(sampleScene))
	if err != nil {
		t.Fatalf("LoadYAML() = %v", err)
	}
	if len(pipelines) != 2 {
		t.Fatalf("got %d pipelines, want 2", len(pipelines))
	}

	root := pipelines[0]
	if root.Viewport != (flatten.Size{Width: 800, Height: 600}) {
		t.Errorf("Viewport = %v", root.Viewport)
	}
	if root.Background == nil || root.Background.A != 1 {
		t.Errorf("Background = %v", root.Background)
	}

	want := []ItemKind{
		KindSetFilterOps, KindPushStackingContext,
		KindRectangle,
		KindScrollFrame, KindRectangle,
		KindClip, KindClipChain,
		KindRectangle,
		KindPopStackingContext,
	}
	got := kindsOf(root.List)
	if len(got) != len(want) {
		t.Fatalf("kinds = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("item %d = %v, want %v", i, got[i], want[i])
		}
	}

	scrolled := root.List.Item(4).(RectangleItem)
	frame := root.List.Item(3).(ScrollFrameItem)
	if scrolled.Common.SpaceAndClip.Spatial != frame.ScrollFrameID {
		t.Errorf("nested item spatial = %v, want %v", scrolled.Common.SpaceAndClip.Spatial, frame.ScrollFrameID)
	}
	if frame.ContentRect.Height() != 1000 {
		t.Errorf("content height = %v, want 1000", frame.ContentRect.Height())
	}
	if scrolled.Color.A != 0.5 {
		t.Errorf("sequence color alpha = %v, want 0.5", scrolled.Color.A)
	}

	clipped := root.List.Item(7).(RectangleItem)
	if clipped.Common.SpaceAndClip.Clip.Kind != ClipIDChain {
		t.Errorf("clip kind = %v, want chain", clipped.Common.SpaceAndClip.Clip.Kind)
	}

	child := pipelines[1]
	if child.List.Pipeline() != (PipelineID{Namespace: 1, Index: 7}) {
		t.Errorf("child pipeline = %v", child.List.Pipeline())
	}
}

func TestLoadYAMLErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"unknown field", "items:\n  - type: rect\n    bogus: 1\n"},
		{"unknown type", "items:\n  - type: teapot\n"},
		{"bad bounds", "items:\n  - type: rect\n    bounds: [1, 2]\n"},
		{"unknown clip", "items:\n  - type: rect\n    bounds: [0, 0, 1, 1]\n    clip: nope\n"},
		{"bad color", "items:\n  - type: rect\n    bounds: [0, 0, 1, 1]\n    color: chartreuse-ish\n"},
		{"text without layouter", "items:\n  - type: text\n    bounds: [0, 0, 1, 1]\n    text: hi\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadYAML(strings.NewReader(tt.doc)); err == nil {
				t.Error("LoadYAML() succeeded, want error")
			}
		})
	}
}

type fixedLayouter struct{ calls int }

func (l *fixedLayouter) LayoutText(_ FontInstanceKey, text string, origin flatten.Point) ([]GlyphInstance, error) {
	l.calls++
	glyphs := make([]GlyphInstance, len(text))
	for i := range glyphs {
		glyphs[i] = GlyphInstance{Index: uint32(i + 1), Point: flatten.Point{X: origin.X + float32(i)*10, Y: origin.Y}}
	}
	return glyphs, nil
}

func TestLoadYAMLTextLayouter(t *testing.T) {
	doc := "items:\n  - type: text\n    bounds: [0, 0, 100, 20]\n    font: 3\n    origin: [5, 15]\n    text: abc\n"
	l := &fixedLayouter{}
	pipelines, err := LoadYAML(strings.NewReader(doc), WithGlyphLayouter(l))
	if err != nil {
		t.Fatal(err)
	}
	text := pipelines[0].List.Item(0).(TextItem)
	if l.calls != 1 {
		t.Errorf("layouter calls = %d, want 1", l.calls)
	}
	if len(text.Glyphs) != 3 || text.Glyphs[2].Point.X != 25 {
		t.Errorf("glyphs = %v", text.Glyphs)
	}
	if text.Font.Index != 3 {
		t.Errorf("font = %v, want index 3", text.Font)
	}
}

func TestParseFilter(t *testing.T) {
	tests := []struct {
		in   string
		want FilterOp
	}{
		{"blur(4)", Blur(4)},
		{"opacity(0.25)", Opacity(0.25)},
		{"hue-rotate(90)", Scalar(FilterHueRotate, 90)},
		{"component-transfer", ComponentTransfer()},
		{"flood(red)", Flood(flatten.ColorF{R: 1, A: 1})},
		{"drop-shadow(1 2 3 black)", DropShadow(Shadow{Offset: flatten.Vector{X: 1, Y: 2}, BlurRadius: 3, Color: flatten.Black})},
	}
	for _, tt := range tests {
		got, err := ParseFilter(tt.in)
		if err != nil {
			t.Errorf("ParseFilter(%q) error = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseFilter(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
	for _, bad := range []string{"wobble(1)", "blur", "blur(1 2)", "drop-shadow(1 2)"} {
		if _, err := ParseFilter(bad); err == nil {
			t.Errorf("ParseFilter(%q) succeeded, want error", bad)
		}
	}
}

func TestParseTransform(t *testing.T) {
	tr, err := ParseTransform("translate(10, 20) scale(2)")
	if err != nil {
		t.Fatal(err)
	}
	p := tr.TransformPoint(flatten.Point{X: 1, Y: 1})
	if p != (flatten.Point{X: 12, Y: 22}) {
		t.Errorf("TransformPoint = %v, want (12, 22)", p)
	}

	rot, err := ParseTransform("rotate(90)")
	if err != nil {
		t.Fatal(err)
	}
	q := rot.TransformPoint(flatten.Point{X: 1, Y: 0})
	if math32.Abs(q.X) > 1e-5 || math32.Abs(q.Y-1) > 1e-5 {
		t.Errorf("rotate(90) maps (1,0) to %v, want (0,1)", q)
	}

	id, err := ParseTransform("")
	if err != nil || !id.IsIdentity() {
		t.Errorf("ParseTransform(\"\") = %v, %v", id, err)
	}
	if _, err := ParseTransform("skew(1)"); err == nil {
		t.Error("ParseTransform(skew) succeeded, want error")
	}
}
