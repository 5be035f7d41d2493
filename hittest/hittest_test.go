package hittest

import (
	"testing"

	"github.com/gogpu/flatten"
	"github.com/gogpu/flatten/clip"
	"github.com/gogpu/flatten/displaylist"
	"github.com/gogpu/flatten/spatial"
)

func TestClipChainRanges(t *testing.T) {
	s := NewScene()
	start := s.NextClipChainIndex()
	s.AddClipChain(3)
	s.AddClipChain(clip.ChainNone)
	s.AddClipChain(1)
	r := Range{Start: start, End: s.NextClipChainIndex()}

	if r.Len() != 2 {
		t.Fatalf("Len() = %d, want 2 (NONE is skipped)", r.Len())
	}
	got := s.ClipChains(r)
	if got[0] != 3 || got[1] != 1 {
		t.Errorf("ClipChains() = %v, want [3 1]", got)
	}
}

func TestHitTest(t *testing.T) {
	s := NewScene()
	s.AddItem(Item{
		Tag:         displaylist.ItemTag{ID: 1},
		Rect:        flatten.RectFromXYWH(0, 0, 100, 100),
		ClipRect:    flatten.MaxRect(),
		SpatialNode: spatial.RootNode,
	})
	s.AddItem(Item{
		Tag:      displaylist.ItemTag{ID: 2},
		Rect:     flatten.RectFromXYWH(50, 50, 100, 100),
		ClipRect: flatten.RectFromXYWH(50, 50, 20, 20),
	})

	tests := []struct {
		p    flatten.Point
		want []uint64
	}{
		{flatten.Point{X: 10, Y: 10}, []uint64{1}},
		{flatten.Point{X: 60, Y: 60}, []uint64{2, 1}},
		{flatten.Point{X: 90, Y: 90}, []uint64{1}},
		{flatten.Point{X: 200, Y: 200}, nil},
	}
	for _, tt := range tests {
		got := s.HitTest(tt.p)
		if len(got) != len(tt.want) {
			t.Errorf("HitTest(%v) = %v, want tags %v", tt.p, got, tt.want)
			continue
		}
		for i := range got {
			if got[i].Tag.ID != tt.want[i] {
				t.Errorf("HitTest(%v)[%d] = %d, want %d", tt.p, i, got[i].Tag.ID, tt.want[i])
			}
		}
	}
}
