package transform

import (
	"testing"

	"github.com/dshills/snipstorm/internal/engine/fragment"
)

func TestEngine_Derive(t *testing.T) {
	a := fragment.NewArena()
	src := a.Alloc(&fragment.Variable{Name: "USER", Value: "john"})
	tr := a.Alloc(&fragment.Transformation{
		Section: `(\w+)`,
		Format:  `\u$1`,
		Source:  src,
	})

	e := NewEngine(a)
	e.Derive(tr)

	got := a.Transformation(tr)
	if got.Result != "John" {
		t.Errorf("Result = %q, want %q", got.Result, "John")
	}
	if !got.Derived {
		t.Error("expected Derived after Derive")
	}
}

func TestEngine_Derive_StaleHandle(t *testing.T) {
	a := fragment.NewArena()
	h := a.Alloc(&fragment.Transformation{})
	a.Release(h)

	// Must not panic on a stale handle.
	NewEngine(a).Derive(h)
}

func TestEngine_SourceText(t *testing.T) {
	a := fragment.NewArena()
	field := a.Alloc(fragment.NewPlaceholder([]fragment.Segment{
		fragment.TextSegment("body"),
	}))
	variable := a.Alloc(&fragment.Variable{Name: "V", Value: "val"})
	code := a.Alloc(&fragment.Code{Output: "out"})
	derived := a.Alloc(&fragment.Transformation{Result: "res", Derived: true})

	e := NewEngine(a)

	tests := []struct {
		name string
		h    fragment.Handle
		want string
	}{
		{"field", field, "body"},
		{"variable", variable, "val"},
		{"code", code, "out"},
		{"transformation", derived, "res"},
		{"stale", fragment.NoHandle, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := e.SourceText(tt.h); got != tt.want {
				t.Errorf("SourceText() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEngine_Propagate_Chain(t *testing.T) {
	a := fragment.NewArena()
	src := a.Alloc(&fragment.Variable{Name: "NAME", Value: "ada"})
	first := a.Alloc(&fragment.Transformation{
		Section: `(\w+)`, Format: `\u$1`, Source: src,
	})
	second := a.Alloc(&fragment.Transformation{
		Section: `(.+)`, Format: "$1!", Source: first,
	})

	s := &fragment.Snippet{}
	s.AddDependent(src, first)
	s.AddDependent(first, second)
	s.RegisterTransformation(first)
	s.RegisterTransformation(second)

	e := NewEngine(a)
	e.DeriveAll(s)
	if got := a.Transformation(second).Result; got != "Ada!" {
		t.Fatalf("initial chain Result = %q, want %q", got, "Ada!")
	}

	// An upstream edit must flow through the whole chain before the
	// next render.
	a.Variable(src).Value = "grace"
	e.Propagate(s, src)

	if got := a.Transformation(first).Result; got != "Grace" {
		t.Errorf("first Result = %q, want %q", got, "Grace")
	}
	if got := a.Transformation(second).Result; got != "Grace!" {
		t.Errorf("second Result = %q, want %q", got, "Grace!")
	}
}

func TestEngine_Propagate_OnlyDependents(t *testing.T) {
	a := fragment.NewArena()
	src := a.Alloc(&fragment.Variable{Name: "A", Value: "x"})
	other := a.Alloc(&fragment.Variable{Name: "B", Value: "y"})
	dep := a.Alloc(&fragment.Transformation{
		Section: "(.+)", Format: "$1$1", Source: src,
	})
	unrelated := a.Alloc(&fragment.Transformation{
		Section: "(.+)", Format: "$1", Source: other,
	})

	s := &fragment.Snippet{}
	s.AddDependent(src, dep)
	s.AddDependent(other, unrelated)

	NewEngine(a).Propagate(s, src)

	if got := a.Transformation(dep).Result; got != "xx" {
		t.Errorf("dependent Result = %q, want %q", got, "xx")
	}
	if a.Transformation(unrelated).Derived {
		t.Error("transformation on an untouched source must not rederive")
	}
}
