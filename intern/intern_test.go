package intern

import "testing"

type testKey struct {
	kind  uint8
	value float32
}

func TestInternIdempotent(t *testing.T) {
	in := New[testKey, string]()
	calls := 0
	create := func() string { calls++; return "data" }

	a := in.Intern(testKey{1, 2}, create)
	b := in.Intern(testKey{1, 2}, create)
	if a != b {
		t.Errorf("Intern(k) = %v, then %v, want equal handles", a, b)
	}
	if calls != 1 {
		t.Errorf("create called %d times, want 1", calls)
	}
	if !a.IsValid() {
		t.Error("returned handle is not valid")
	}
}

func TestInternDistinct(t *testing.T) {
	in := New[testKey, int]()
	keys := []testKey{{1, 0}, {1, 1}, {2, 0}, {2, 1}}
	seen := make(map[Handle]testKey)
	for i, k := range keys {
		h := in.Intern(k, func() int { return i })
		if prev, ok := seen[h]; ok {
			t.Errorf("keys %v and %v share handle %v", prev, k, h)
		}
		seen[h] = k
		if got := in.Data(h); got != i {
			t.Errorf("Data(%v) = %d, want %d", h, got, i)
		}
		if got, ok := in.Key(h); !ok || got != k {
			t.Errorf("Key(%v) = %v, %v, want %v", h, got, ok, k)
		}
	}
	if in.Len() != len(keys) {
		t.Errorf("Len() = %d, want %d", in.Len(), len(keys))
	}
}

func TestInternNilCreate(t *testing.T) {
	in := New[string, struct{}]()
	h := in.Intern("a", nil)
	if _, ok := in.Get(h); !ok {
		t.Error("Get() after Intern with nil create = false")
	}
}

func TestZeroHandleInvalid(t *testing.T) {
	in := New[string, int]()
	if _, ok := in.Get(Handle{}); ok {
		t.Error("Get(zero handle) = true, want false")
	}
	defer func() {
		if recover() == nil {
			t.Error("Data(zero handle) did not panic")
		}
	}()
	in.Data(Handle{})
}

func TestEndFrameEviction(t *testing.T) {
	in := New[string, int]()
	old := in.Intern("old", func() int { return 1 })
	in.Intern("kept", func() int { return 2 })
	if n := in.EndFrame(0); n != 0 {
		t.Fatalf("EndFrame evicted %d entries used this frame", n)
	}

	in.Intern("kept", nil)
	if n := in.EndFrame(0); n != 1 {
		t.Fatalf("EndFrame(0) evicted %d, want 1", n)
	}
	if _, ok := in.Get(old); ok {
		t.Error("evicted handle still resolves")
	}
	if _, ok := in.Lookup("old"); ok {
		t.Error("evicted key still present")
	}

	// The freed slot is reused with a new generation.
	fresh := in.Intern("new", func() int { return 3 })
	if fresh.Index() != old.Index() {
		t.Errorf("slot not reused: got index %d, want %d", fresh.Index(), old.Index())
	}
	if fresh == old {
		t.Error("reused slot returned the stale handle")
	}
	if got := in.Data(fresh); got != 3 {
		t.Errorf("Data(fresh) = %d, want 3", got)
	}
}

func TestEndFrameRetain(t *testing.T) {
	in := New[int, int]()
	in.Intern(1, nil)
	for range 3 {
		if n := in.EndFrame(5); n != 0 {
			t.Fatalf("EndFrame(5) evicted %d entries within retain window", n)
		}
	}
	st := in.Stats()
	if st.Len != 1 || st.Misses != 1 || st.Frame != 3 {
		t.Errorf("Stats() = %+v", st)
	}
}

func TestStats(t *testing.T) {
	in := New[int, int]()
	in.Intern(1, nil)
	in.Intern(1, nil)
	in.Intern(2, nil)
	st := in.Stats()
	if st.Hits != 1 || st.Misses != 2 || st.Len != 2 {
		t.Errorf("Stats() = %+v, want 1 hit, 2 misses, len 2", st)
	}
}
