// Package intern provides content-addressed interning: every distinct
// structural key maps to one stable Handle for as long as the key stays in
// use.
//
// An Interner is owned by one flattening pass at a time and is not safe for
// concurrent use. Interners are retained across passes so that unchanged
// content keeps its handle from frame to frame.
package intern

import "fmt"

// Handle identifies an interned entry. The zero Handle is invalid.
//
// Handles carry a generation so that a handle to an evicted entry is
// detected instead of silently aliasing a newer entry in the same slot.
type Handle struct {
	index      uint32
	generation uint32
}

// Index returns the dense slot index of the handle.
func (h Handle) Index() int {
	return int(h.index)
}

// IsValid reports whether h was returned by an Interner.
func (h Handle) IsValid() bool {
	return h.generation != 0
}

// String formats the handle for debug output.
func (h Handle) String() string {
	return fmt.Sprintf("#%d.%d", h.index, h.generation)
}

// entry holds an interned key, its data and its last use frame.
type entry[K comparable, D any] struct {
	key        K
	data       D
	generation uint32
	lastUsed   uint64
	live       bool
}

// Interner maps structural keys of type K to stable handles, each carrying
// per-entry data of type D created on first use.
type Interner[K comparable, D any] struct {
	handles map[K]Handle
	entries []entry[K, D]
	free    []uint32
	frame   uint64

	hits, misses, evictions uint64
}

// New creates an empty interner.
func New[K comparable, D any]() *Interner[K, D] {
	return &Interner[K, D]{
		handles: make(map[K]Handle),
	}
}

// Intern returns the handle for key. The first time a key is seen, create
// is called to produce its data; later calls with an equal key return the
// same handle and leave the data untouched.
func (in *Interner[K, D]) Intern(key K, create func() D) Handle {
	if h, ok := in.handles[key]; ok {
		in.entries[h.index].lastUsed = in.frame
		in.hits++
		return h
	}
	in.misses++

	var data D
	if create != nil {
		data = create()
	}

	var index uint32
	if n := len(in.free); n > 0 {
		index = in.free[n-1]
		in.free = in.free[:n-1]
	} else {
		index = uint32(len(in.entries))
		in.entries = append(in.entries, entry[K, D]{})
	}

	e := &in.entries[index]
	e.key = key
	e.data = data
	e.generation++
	e.lastUsed = in.frame
	e.live = true

	h := Handle{index: index, generation: e.generation}
	in.handles[key] = h
	return h
}

// Lookup returns the handle for key without interning it.
func (in *Interner[K, D]) Lookup(key K) (Handle, bool) {
	h, ok := in.handles[key]
	return h, ok
}

// Get returns the data for h. It returns false for invalid or evicted
// handles.
func (in *Interner[K, D]) Get(h Handle) (D, bool) {
	if e := in.entry(h); e != nil {
		return e.data, true
	}
	var zero D
	return zero, false
}

// Data returns the data for h. It panics on an invalid or evicted handle,
// which indicates a handle from another interner or a previous epoch.
func (in *Interner[K, D]) Data(h Handle) D {
	e := in.entry(h)
	if e == nil {
		panic(fmt.Sprintf("intern: stale or foreign handle %v", h))
	}
	return e.data
}

// Key returns the key interned under h.
func (in *Interner[K, D]) Key(h Handle) (K, bool) {
	if e := in.entry(h); e != nil {
		return e.key, true
	}
	var zero K
	return zero, false
}

func (in *Interner[K, D]) entry(h Handle) *entry[K, D] {
	if !h.IsValid() || int(h.index) >= len(in.entries) {
		return nil
	}
	e := &in.entries[h.index]
	if !e.live || e.generation != h.generation {
		return nil
	}
	return e
}

// Len returns the number of live entries.
func (in *Interner[K, D]) Len() int {
	return len(in.handles)
}

// EndFrame finishes the current frame and evicts every entry that has not
// been interned during the last retain frames. It returns the number of
// evicted entries. A retain of 0 keeps only entries used in the frame that
// just ended.
func (in *Interner[K, D]) EndFrame(retain uint64) int {
	evicted := 0
	for i := range in.entries {
		e := &in.entries[i]
		if !e.live || in.frame-e.lastUsed <= retain {
			continue
		}
		delete(in.handles, e.key)
		var zeroK K
		var zeroD D
		e.key, e.data, e.live = zeroK, zeroD, false
		in.free = append(in.free, uint32(i))
		evicted++
	}
	in.evictions += uint64(evicted)
	in.frame++
	return evicted
}

// Stats returns interner statistics.
func (in *Interner[K, D]) Stats() Stats {
	return Stats{
		Len:       len(in.handles),
		Hits:      in.hits,
		Misses:    in.misses,
		Evictions: in.evictions,
		Frame:     in.frame,
	}
}

// Stats contains interner statistics.
type Stats struct {
	// Len is the current number of live entries.
	Len int
	// Hits counts Intern calls that found an existing key.
	Hits uint64
	// Misses counts Intern calls that created a new entry.
	Misses uint64
	// Evictions counts entries removed by EndFrame.
	Evictions uint64
	// Frame is the current frame counter.
	Frame uint64
}
