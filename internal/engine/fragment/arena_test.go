package fragment

import "testing"

func TestArena_AllocGet(t *testing.T) {
	a := NewArena()
	f := NewPlaceholder([]Segment{TextSegment("hi")})

	h := a.Alloc(f)
	if !h.IsValid() {
		t.Fatal("expected valid handle from Alloc")
	}

	got, ok := a.Get(h)
	if !ok {
		t.Fatal("expected Get to resolve live handle")
	}
	if got != f {
		t.Errorf("Get returned %v, want the allocated fragment", got)
	}
}

func TestArena_ZeroHandle(t *testing.T) {
	a := NewArena()

	if NoHandle.IsValid() {
		t.Error("zero handle must be invalid")
	}
	if _, ok := a.Get(NoHandle); ok {
		t.Error("Get on zero handle must fail")
	}
	if a.Field(NoHandle) != nil {
		t.Error("typed accessor on zero handle must return nil")
	}
}

func TestArena_StaleHandle(t *testing.T) {
	a := NewArena()
	h := a.Alloc(NewPlaceholder(nil))

	a.Release(h)

	if _, ok := a.Get(h); ok {
		t.Error("released handle must be stale")
	}
	if a.Field(h) != nil {
		t.Error("typed accessor on stale handle must return nil")
	}
	if a.Len() != 0 {
		t.Errorf("Len() = %d, want 0 after release", a.Len())
	}
}

func TestArena_TypedAccessors(t *testing.T) {
	a := NewArena()
	fh := a.Alloc(NewPlaceholder(nil))
	th := a.Alloc(&Transformation{Section: "a", Format: "b"})
	vh := a.Alloc(&Variable{Name: "USER"})
	ch := a.Alloc(&Code{Code: "true", Shebang: "sh"})

	if a.Field(fh) == nil {
		t.Error("Field accessor failed on field handle")
	}
	if a.Transformation(th) == nil {
		t.Error("Transformation accessor failed")
	}
	if a.Variable(vh) == nil {
		t.Error("Variable accessor failed")
	}
	if a.Code(ch) == nil {
		t.Error("Code accessor failed")
	}

	// Wrong-type resolution degrades to nil, never panics.
	if a.Field(th) != nil {
		t.Error("Field accessor on transformation handle must return nil")
	}
	if a.Variable(fh) != nil {
		t.Error("Variable accessor on field handle must return nil")
	}
}
