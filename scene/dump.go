package scene

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/gogpu/flatten/clip"
	"github.com/gogpu/flatten/prim"
)

// Dump writes the picture tree to w, one instance per line, indented by
// depth.
//
// Example output:
//
//	background rgba(1, 1, 1, 1) caching=true
//	pic1 pass-through spatial=#0 raster=screen
//	  pic0 tile-cache(root=#0, shared clips=0) spatial=#0 raster=screen
//	    #0 rect rgba(1, 0, 0, 1) (10,10)-(110,110)
func (s *Scene) Dump(w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "background %v caching=%v\n", s.Background, s.PictureCaching)
	s.dumpPicture(bw, s.Root, 0)
	return bw.Flush()
}

func (s *Scene) dumpPicture(w *bufio.Writer, idx prim.PictureIndex, depth int) {
	pic := s.Pictures.Picture(idx)
	indent := strings.Repeat("  ", depth)

	fmt.Fprintf(w, "%spic%d %v spatial=%v raster=%s", indent, idx, pic.Mode, pic.SpatialNode, rasterName(pic))
	if pic.Context3D.Kind == prim.In3D {
		if pic.Context3D.IsRoot {
			fmt.Fprint(w, " 3d-root")
		} else {
			fmt.Fprint(w, " 3d")
		}
	}
	if pic.FrameOutputPipeline != nil {
		fmt.Fprintf(w, " output=%v", *pic.FrameOutputPipeline)
	}
	if !pic.IsBackfaceVisible {
		fmt.Fprint(w, " backface-hidden")
	}
	fmt.Fprintln(w)

	for _, inst := range pic.Prims {
		s.dumpInstance(w, inst, depth+1)
	}
}

func (s *Scene) dumpInstance(w *bufio.Writer, inst prim.Instance, depth int) {
	if inst.Kind == prim.KindPicture {
		if inst.ClipChain != clip.ChainNone {
			fmt.Fprintf(w, "%sclip %v\n", strings.Repeat("  ", depth), inst.ClipChain)
		}
		s.dumpPicture(w, inst.Picture, depth)
		return
	}

	indent := strings.Repeat("  ", depth)
	if inst.Kind.IsMarker() {
		fmt.Fprintf(w, "%s%v %v\n", indent, inst.Kind, inst.ClipChain)
		return
	}

	desc := inst.Kind.String()
	if k, ok := s.Interners.Prims.Key(inst.Handle); ok {
		desc = prim.String(k.Key)
	}
	r := inst.Rect
	fmt.Fprintf(w, "%s#%d %s (%g,%g)-(%g,%g)", indent, inst.ID, desc, r.MinX, r.MinY, r.MaxX, r.MaxY)
	if inst.ClipChain != clip.ChainNone {
		fmt.Fprintf(w, " clip=%v", inst.ClipChain)
	}
	if inst.Opacity != 1 {
		fmt.Fprintf(w, " opacity=%g", inst.Opacity)
	}
	fmt.Fprintln(w)
}

func rasterName(pic *prim.Picture) string {
	if pic.RasterSpace.Local {
		return fmt.Sprintf("local(%g)", pic.RasterSpace.Scale)
	}
	return "screen"
}
