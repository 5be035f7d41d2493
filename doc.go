// Package flatten turns nested display lists into flat picture trees.
//
// # Overview
//
// A display list is the retained output of a layout engine: leaf items
// (rectangles, text, images, borders, gradients, box shadows) interleaved
// with containers (stacking contexts, reference frames, shadow scopes) and
// definitions (clips, clip chains, scroll and sticky frames, iframes).
// Flattening walks one frame's display lists once and produces
//
//   - a tree of pictures, each a compositing group of primitive instances,
//     with redundant stacking contexts collapsed into their parents
//   - a spatial tree of reference, scroll and sticky frames
//   - a forest of interned clip chains
//   - a hit-testing index
//
// Picture caching partitions the content of one scroll root into a tile
// cache picture so unchanged tiles can be reused across frames.
//
// # Quick Start
//
//	import (
//	    "github.com/gogpu/flatten"
//	    "github.com/gogpu/flatten/displaylist"
//	    "github.com/gogpu/flatten/scene"
//	    "github.com/gogpu/flatten/spatial"
//	)
//
//	p := displaylist.PipelineID{Index: 1}
//	b := displaylist.NewBuilder(p, flatten.Size{Width: 800, Height: 600})
//	root := displaylist.RootSpaceAndClip(p)
//	r := flatten.RectFromXYWH(10, 10, 100, 100)
//	b.PushRect(displaylist.CommonProperties{ClipRect: r, SpaceAndClip: root}, r, flatten.Black)
//	list, err := b.Finalize()
//
//	doc := scene.NewDocument(&scene.Pipeline{DisplayList: list, Viewport: flatten.Size{Width: 800, Height: 600}})
//	s, err := scene.Build(doc, spatial.NewTree())
//	s.Dump(os.Stdout)
//
// # Architecture
//
// The module is organized into:
//   - flatten: geometry, colors, configuration, logging, contract errors
//   - displaylist: items, ids, the builder, the validated list and its
//     iterator, and a YAML loader
//   - scene: the flattening pass
//   - prim, clip, spatial, hittest: the outputs of a pass
//   - intern: the generic interner shared by prim and clip data
//   - filter: filter sanitizing
//   - resources: font and font instance registry
//
// # Errors
//
// Malformed input (mismatched containers, duplicate ids, shadows left open)
// is a contract violation. A pass stops at the first one and returns a
// *ContractError that wraps ErrContract. Recoverable problems such as an
// unknown font instance drop the item and log a warning.
//
// # Coordinate System
//
// Uses standard computer graphics coordinates:
//   - Origin (0,0) at top-left
//   - X increases right
//   - Y increases down
package flatten
