package displaylist

import (
	"errors"
	"fmt"

	"github.com/gogpu/flatten"
)

// ErrUnbalanced is returned when container pushes and pops do not match.
var ErrUnbalanced = errors.New("displaylist: unbalanced container items")

// BuiltDisplayList is an immutable, validated display list for one pipeline.
// Every container push has a matching pop of the same kind.
type BuiltDisplayList struct {
	pipeline    PipelineID
	contentSize flatten.Size
	items       []Item
	// ends[i] is the index of the pop matching the push at i, or -1.
	ends []int
}

// NewBuiltDisplayList validates items and precomputes container extents.
// The items slice is retained and must not be modified afterwards.
func NewBuiltDisplayList(pipeline PipelineID, contentSize flatten.Size, items []Item) (*BuiltDisplayList, error) {
	ends := make([]int, len(items))
	var open []int
	for i, item := range items {
		ends[i] = -1
		k := item.Kind()
		switch {
		case k.IsContainerPush():
			open = append(open, i)
		case k.IsContainerPop():
			if len(open) == 0 {
				return nil, fmt.Errorf("%w: %v at %d without push", ErrUnbalanced, k, i)
			}
			start := open[len(open)-1]
			if want := items[start].Kind().matchingPop(); want != k {
				return nil, fmt.Errorf("%w: %v at %d closes %v at %d", ErrUnbalanced, k, i, items[start].Kind(), start)
			}
			open = open[:len(open)-1]
			ends[start] = i
		}
	}
	if len(open) > 0 {
		start := open[len(open)-1]
		return nil, fmt.Errorf("%w: %v at %d never closed", ErrUnbalanced, items[start].Kind(), start)
	}
	return &BuiltDisplayList{
		pipeline:    pipeline,
		contentSize: contentSize,
		items:       items,
		ends:        ends,
	}, nil
}

// Pipeline returns the pipeline the list belongs to.
func (l *BuiltDisplayList) Pipeline() PipelineID {
	return l.pipeline
}

// ContentSize returns the size of the pipeline's scrollable content.
func (l *BuiltDisplayList) ContentSize() flatten.Size {
	return l.contentSize
}

// Len returns the number of items, including auxiliary items.
func (l *BuiltDisplayList) Len() int {
	return len(l.items)
}

// Item returns the item at index i.
func (l *BuiltDisplayList) Item(i int) Item {
	return l.items[i]
}

// Iter returns an iterator over the whole list.
func (l *BuiltDisplayList) Iter() *Iterator {
	return &Iterator{list: l, pos: -1, end: len(l.items)}
}

// Iterator walks a BuiltDisplayList.
//
// Auxiliary items (SetGradientStops, SetFilterOps, SetFilterData,
// SetFilterPrimitives) are yielded like any other item, and their payload
// stays available through the accessors until the next non-auxiliary item
// has been consumed.
//
// Example usage:
//
//	it := list.Iter()
//	for item, ok := it.Next(); ok; item, ok = it.Next() {
//	    switch v := item.(type) {
//	    case displaylist.RectangleItem:
//	        // handle rect
//	    case displaylist.PushStackingContextItem:
//	        sub := it.SubIterator()
//	        // walk children with sub
//	        it.SkipCurrentContainer()
//	    }
//	}
type Iterator struct {
	list *BuiltDisplayList
	pos  int
	end  int

	clearAux bool
	stops    []GradientStop
	ops      []FilterOp
	data     []FilterData
	prims    []FilterPrimitive
}

// Next advances to the next item. It returns false at the end of the list
// or, for a sub-iterator, after its container's pop.
func (it *Iterator) Next() (Item, bool) {
	if it.clearAux {
		it.stops, it.ops, it.data, it.prims = nil, nil, nil, nil
		it.clearAux = false
	}
	if it.pos+1 >= it.end {
		it.pos = it.end
		return nil, false
	}
	it.pos++
	item := it.list.items[it.pos]
	switch v := item.(type) {
	case SetGradientStopsItem:
		it.stops = v.Stops
	case SetFilterOpsItem:
		it.ops = v.Ops
	case SetFilterDataItem:
		it.data = append(it.data, v.Data)
	case SetFilterPrimitivesItem:
		it.prims = v.Primitives
	default:
		it.clearAux = true
	}
	return item, true
}

// Peek returns the kind of the next item without advancing.
func (it *Iterator) Peek() (ItemKind, bool) {
	if it.pos+1 >= it.end {
		return 0, false
	}
	return it.list.items[it.pos+1].Kind(), true
}

// HasMore returns true if Next would return an item.
func (it *Iterator) HasMore() bool {
	return it.pos+1 < it.end
}

// Position returns the index of the current item in the list.
func (it *Iterator) Position() int {
	return it.pos
}

// Pipeline returns the pipeline of the underlying list.
func (it *Iterator) Pipeline() PipelineID {
	return it.list.pipeline
}

// GradientStops returns the stops set for the current item.
func (it *Iterator) GradientStops() []GradientStop {
	return it.stops
}

// Filters returns the filter payloads set for the current item.
func (it *Iterator) Filters() Filters {
	return Filters{Ops: it.ops, Data: it.data, Primitives: it.prims}
}

func (it *Iterator) currentEnd(op string) int {
	if it.pos < 0 || it.pos >= it.end {
		flatten.Faultf(op, "no current item")
	}
	end := it.list.ends[it.pos]
	if end < 0 {
		flatten.Faultf(op, "current item %v is not a container", it.list.items[it.pos].Kind())
	}
	return end
}

// SubIterator returns an iterator over the children of the current
// container item, ending with (and including) its matching pop.
func (it *Iterator) SubIterator() *Iterator {
	end := it.currentEnd("SubIterator")
	return &Iterator{list: it.list, pos: it.pos, end: end + 1}
}

// SkipCurrentContainer moves past the matching pop of the current
// container item.
func (it *Iterator) SkipCurrentContainer() {
	it.pos = it.currentEnd("SkipCurrentContainer")
	it.clearAux = true
}

// CurrentContainerEmpty reports whether the current container item has no
// children.
func (it *Iterator) CurrentContainerEmpty() bool {
	return it.currentEnd("CurrentContainerEmpty") == it.pos+1
}
