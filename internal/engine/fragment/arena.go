package fragment

// Handle is a non-owning reference to a fragment in an Arena.
//
// The zero Handle is invalid. A Handle remains valid for the lifetime of
// the fragment it names; the generation counter lets the arena detect a
// handle that outlived its slot.
type Handle struct {
	index uint32
	gen   uint32
}

// NoHandle is the invalid zero handle.
var NoHandle = Handle{}

// IsValid returns true if the handle refers to an allocated slot.
// It does not guarantee the slot is still live; use Arena.Get for that.
func (h Handle) IsValid() bool {
	return h.gen != 0
}

// slot holds one fragment and the generation it was allocated under.
type slot struct {
	gen  uint32
	frag any
}

// Arena stores every fragment of one expansion under stable handles.
//
// Fragments are allocated during graph construction and released all at
// once when the expansion is dismissed. Individual slots can also be
// released, which bumps the generation so outstanding handles go stale
// instead of aliasing a recycled slot.
type Arena struct {
	slots []slot
}

// NewArena creates an empty arena.
func NewArena() *Arena {
	return &Arena{}
}

// Alloc stores a fragment and returns its handle.
// The fragment should be a *Field, *Transformation, *Variable, *Code,
// or *Snippet.
func (a *Arena) Alloc(frag any) Handle {
	a.slots = append(a.slots, slot{gen: 1, frag: frag})
	return Handle{index: uint32(len(a.slots) - 1), gen: 1}
}

// Get returns the fragment for a handle, or false if the handle is
// invalid, stale, or out of range.
func (a *Arena) Get(h Handle) (any, bool) {
	if !h.IsValid() || int(h.index) >= len(a.slots) {
		return nil, false
	}
	s := a.slots[h.index]
	if s.gen != h.gen || s.frag == nil {
		return nil, false
	}
	return s.frag, true
}

// Release frees a single slot. Outstanding handles to it become stale.
func (a *Arena) Release(h Handle) {
	if !h.IsValid() || int(h.index) >= len(a.slots) {
		return
	}
	if a.slots[h.index].gen == h.gen {
		a.slots[h.index].gen++
		a.slots[h.index].frag = nil
	}
}

// Len returns the number of live fragments.
func (a *Arena) Len() int {
	n := 0
	for _, s := range a.slots {
		if s.frag != nil {
			n++
		}
	}
	return n
}

// Field resolves a handle to a *Field, or nil if the handle does not
// refer to a live Field.
func (a *Arena) Field(h Handle) *Field {
	if f, ok := a.Get(h); ok {
		if fld, ok := f.(*Field); ok {
			return fld
		}
	}
	return nil
}

// Transformation resolves a handle to a *Transformation, or nil.
func (a *Arena) Transformation(h Handle) *Transformation {
	if f, ok := a.Get(h); ok {
		if tr, ok := f.(*Transformation); ok {
			return tr
		}
	}
	return nil
}

// Variable resolves a handle to a *Variable, or nil.
func (a *Arena) Variable(h Handle) *Variable {
	if f, ok := a.Get(h); ok {
		if v, ok := f.(*Variable); ok {
			return v
		}
	}
	return nil
}

// Code resolves a handle to a *Code, or nil.
func (a *Arena) Code(h Handle) *Code {
	if f, ok := a.Get(h); ok {
		if c, ok := f.(*Code); ok {
			return c
		}
	}
	return nil
}

// Snippet resolves a handle to a nested *Snippet, or nil.
func (a *Arena) Snippet(h Handle) *Snippet {
	if f, ok := a.Get(h); ok {
		if s, ok := f.(*Snippet); ok {
			return s
		}
	}
	return nil
}
