package render

import (
	"testing"

	"github.com/dshills/snipstorm/internal/engine/fragment"
)

func text(s string) fragment.Segment {
	return fragment.TextSegment(s)
}

// The canonical greeting: a choice, a literal, and a placeholder.
func greetingSnippet(a *fragment.Arena, selected int) *fragment.Snippet {
	choice := a.Alloc(fragment.NewChoice(selected, [][]fragment.Segment{
		{text("Hi")}, {text("Hello")}, {text("Howdee")},
	}))
	name := a.Alloc(fragment.NewPlaceholder([]fragment.Segment{text("John")}))
	return &fragment.Snippet{
		Body: []fragment.Segment{
			fragment.FieldSegment(choice),
			text(" there "),
			fragment.FieldSegment(name),
		},
	}
}

func TestSnippet_Greeting(t *testing.T) {
	a := fragment.NewArena()
	s := greetingSnippet(a, 1)

	if got := Snippet(a, s); got != "Hello there John" {
		t.Errorf("Snippet() = %q, want %q", got, "Hello there John")
	}
}

func TestSnippet_ChoiceOutOfRange(t *testing.T) {
	a := fragment.NewArena()
	s := greetingSnippet(a, 7)

	// Out-of-range selection degrades to empty text, never an error.
	if got := Snippet(a, s); got != " there John" {
		t.Errorf("Snippet() = %q, want %q", got, " there John")
	}
}

func TestSnippet_Deterministic(t *testing.T) {
	a := fragment.NewArena()
	s := greetingSnippet(a, 0)

	first := Snippet(a, s)
	second := Snippet(a, s)
	if first != second {
		t.Errorf("render not deterministic: %q then %q", first, second)
	}
}

func TestSnippet_AllFragmentKinds(t *testing.T) {
	a := fragment.NewArena()
	tr := a.Alloc(&fragment.Transformation{Result: "DERIVED", Derived: true})
	v := a.Alloc(&fragment.Variable{Name: "USER", Value: "kim"})
	c := a.Alloc(&fragment.Code{Output: "out"})
	nested := a.Alloc(&fragment.Snippet{Body: []fragment.Segment{text("inner")}})

	s := &fragment.Snippet{Body: []fragment.Segment{
		text("["),
		fragment.TransformationSegment(tr),
		text("|"),
		fragment.VariableSegment(v),
		text("|"),
		fragment.CodeSegment(c),
		text("|"),
		{Kind: fragment.SegSnippet, Ref: nested},
		text("]"),
	}}

	if got := Snippet(a, s); got != "[DERIVED|kim|out|inner]" {
		t.Errorf("Snippet() = %q, want %q", got, "[DERIVED|kim|out|inner]")
	}
}

func TestSnippet_DegradesGracefully(t *testing.T) {
	a := fragment.NewArena()
	underived := a.Alloc(&fragment.Transformation{Result: "stale"})
	unresolved := a.Alloc(&fragment.Variable{Name: "X"})

	s := &fragment.Snippet{Body: []fragment.Segment{
		text("a"),
		fragment.TransformationSegment(underived),
		fragment.VariableSegment(unresolved),
		fragment.FieldSegment(fragment.NoHandle), // dangling
		text("b"),
	}}

	if got := Snippet(a, s); got != "ab" {
		t.Errorf("Snippet() = %q, want %q", got, "ab")
	}
}

func TestField_Nested(t *testing.T) {
	a := fragment.NewArena()
	inner := a.Alloc(fragment.NewPlaceholder([]fragment.Segment{text("x")}))
	outer := fragment.NewPlaceholder([]fragment.Segment{
		text("("), fragment.FieldSegment(inner), text(")"),
	})

	if got := Field(a, outer); got != "(x)" {
		t.Errorf("Field() = %q, want %q", got, "(x)")
	}
	if got := Field(a, nil); got != "" {
		t.Errorf("Field(nil) = %q, want empty", got)
	}
}
