package fragment

// SegmentKind identifies the variant held by a Segment.
type SegmentKind uint8

const (
	// SegText is a literal text run.
	SegText SegmentKind = iota
	// SegField references a user-editable Field.
	SegField
	// SegTransformation references a derived Transformation.
	SegTransformation
	// SegVariable references a host- or client-supplied Variable.
	SegVariable
	// SegCode references the output of an executed Code fragment.
	SegCode
	// SegSnippet references a nested expansion. A segment is never
	// constructed with this kind; it is rewritten to it, exactly once,
	// when the user expands a snippet at a tabstop.
	SegSnippet
)

// String returns the kind name.
func (k SegmentKind) String() string {
	switch k {
	case SegText:
		return "text"
	case SegField:
		return "field"
	case SegTransformation:
		return "transformation"
	case SegVariable:
		return "variable"
	case SegCode:
		return "code"
	case SegSnippet:
		return "snippet"
	default:
		return "unknown"
	}
}

// Segment is one element of a snippet body: either a text literal or a
// reference to a non-text fragment in the arena.
//
// Body order is significant and fixed after construction, with one
// exception: a segment may be rewritten in place to SegSnippet when a
// nested snippet is expanded at its position.
type Segment struct {
	Kind SegmentKind
	Text string // SegText only
	Ref  Handle // every kind except SegText
}

// TextSegment creates a literal text segment.
func TextSegment(text string) Segment {
	return Segment{Kind: SegText, Text: text}
}

// FieldSegment creates a segment referencing a Field.
func FieldSegment(h Handle) Segment {
	return Segment{Kind: SegField, Ref: h}
}

// TransformationSegment creates a segment referencing a Transformation.
func TransformationSegment(h Handle) Segment {
	return Segment{Kind: SegTransformation, Ref: h}
}

// VariableSegment creates a segment referencing a Variable.
func VariableSegment(h Handle) Segment {
	return Segment{Kind: SegVariable, Ref: h}
}

// CodeSegment creates a segment referencing a Code fragment.
func CodeSegment(h Handle) Segment {
	return Segment{Kind: SegCode, Ref: h}
}

// FieldKind identifies the variant of a Field.
type FieldKind uint8

const (
	// Placeholder is a field with a single default body the user
	// overwrites by typing.
	Placeholder FieldKind = iota
	// Choice is a field with multiple candidate bodies, one active.
	Choice
)

// String returns the field kind name.
func (k FieldKind) String() string {
	switch k {
	case Placeholder:
		return "placeholder"
	case Choice:
		return "choice"
	default:
		return "unknown"
	}
}

// Field is the part of a snippet fashioned from user input.
//
// A Field is owned by exactly one container (the body holding its
// segment). It may be referenced, never owned, by any number of Tabs
// and by transformations that use it as a source.
type Field struct {
	Kind FieldKind

	// Body is the placeholder's default (or user-replaced) content.
	Body []Segment

	// Selected is the active option index of a Choice.
	Selected int

	// Options are the candidate bodies of a Choice.
	Options [][]Segment
}

// NewPlaceholder creates a placeholder field with the given body.
func NewPlaceholder(body []Segment) *Field {
	return &Field{Kind: Placeholder, Body: body}
}

// NewChoice creates a choice field with the given options and selection.
func NewChoice(selected int, options [][]Segment) *Field {
	return &Field{Kind: Choice, Selected: selected, Options: options}
}

// ActiveBody returns the body currently presented by the field: the
// placeholder body, or the selected choice option. A choice with an
// out-of-range selection has no active body and returns nil, which
// renders as empty text rather than failing.
func (f *Field) ActiveBody() []Segment {
	switch f.Kind {
	case Placeholder:
		return f.Body
	case Choice:
		if f.Selected < 0 || f.Selected >= len(f.Options) {
			return nil
		}
		return f.Options[f.Selected]
	default:
		return nil
	}
}

// Transformation is a fragment derived by applying a pattern/replace
// rule to the rendered text of a source fragment.
//
// Result caches the last derivation and must be recomputed whenever the
// source's rendered text changes. The graph builder runs one derivation
// pass at construction, so Result is never read before a pass.
type Transformation struct {
	// Section is the regex matched against the source text.
	Section string

	// Format is the replacement template: literal text interleaved
	// with group back-references and case-folding directives.
	Format string

	// Flags modify matching: "i" case-insensitive, "g" replace all
	// matches, "m" multiline anchors.
	Flags string

	// Result is the cached derived text.
	Result string

	// Source is the fragment this transformation derives from.
	Source Handle

	// Derived is true once at least one derivation pass has run.
	Derived bool
}

// VariableSource defines where a variable's value comes from.
type VariableSource uint8

const (
	// SourceDaemon resolves from the hosting process's own state,
	// typically its environment.
	SourceDaemon VariableSource = iota
	// SourceClient resolves through an external requester, typically
	// over a socket round trip.
	SourceClient
)

// String returns the source name.
func (s VariableSource) String() string {
	switch s {
	case SourceDaemon:
		return "daemon"
	case SourceClient:
		return "client"
	default:
		return "unknown"
	}
}

// Variable is a fragment filled in by the hosting program or an
// external client. Immutable once resolved within one expansion.
type Variable struct {
	Name     string
	Value    string
	Source   VariableSource
	Resolved bool
}

// Code is a fragment filled in with the standard output of external
// code run under the interpreter named by Shebang. Output stays empty
// until execution completes, and stays empty if execution fails.
type Code struct {
	Code    string
	Output  string
	Shebang string

	// Ran is true once execution was attempted, successful or not.
	Ran bool
}

// NamedKind identifies the variant of a NamedSegment.
type NamedKind uint8

const (
	// NamedTransformation names a reusable transformation.
	NamedTransformation NamedKind = iota
	// NamedCode names a reusable code fragment.
	NamedCode
)

// NamedSegment is an index entry giving a transformation or code
// fragment a name so a later part of the same snippet can reuse the
// same instance instead of redefining it. Never an owner.
type NamedSegment struct {
	Name string
	Kind NamedKind
	Ref  Handle
}

// Tab is one stop in the user-edit cycle, bound to one Field.
type Tab struct {
	// Num is the cycle order, unique across the snippet's tabs.
	Num int

	// Field is the field selected when this tab is active.
	Field Handle

	// Transformations are the transformations whose source is this
	// tab's field, in declaration order.
	Transformations []Handle
}

// Expansion pairs a program-filled fragment (Variable or Code) with the
// transformations deriving from it, so resolution can fan out updates.
type Expansion[E any] struct {
	// Ref is the variable or code fragment being tracked.
	Ref Handle

	// Transformations derive from Ref, in declaration order.
	Transformations []Handle
}

// Snippet is one live expansion: a body of segments plus non-owning
// indexes over the fragments the body owns.
type Snippet struct {
	// Body is the ordered segment sequence.
	Body []Segment

	// Tabs are the edit stops, ordered by ascending Num.
	Tabs []Tab

	// Variables tracks every variable instance and its dependents.
	Variables []Expansion[Variable]

	// CodeExpansions tracks every code instance and its dependents.
	CodeExpansions []Expansion[Code]

	// NamedSegments indexes reusable transformations and code by name.
	NamedSegments []NamedSegment

	// deps maps a source fragment to the transformations that derive
	// from it, covering field, variable, code and chained
	// transformation sources.
	deps map[Handle][]Handle

	// transformations lists every transformation in declaration
	// order, which is also dependency order: a source must be
	// declared before anything deriving from it.
	transformations []Handle
}

// TabByNum returns the tab with the given cycle number.
func (s *Snippet) TabByNum(num int) (*Tab, bool) {
	for i := range s.Tabs {
		if s.Tabs[i].Num == num {
			return &s.Tabs[i], true
		}
	}
	return nil, false
}

// Named returns the named segment with the given name.
func (s *Snippet) Named(name string) (NamedSegment, bool) {
	for _, ns := range s.NamedSegments {
		if ns.Name == name {
			return ns, true
		}
	}
	return NamedSegment{}, false
}

// AddDependent records that the transformation tr derives from source.
// Called by the graph builder while wiring references.
func (s *Snippet) AddDependent(source, tr Handle) {
	if s.deps == nil {
		s.deps = make(map[Handle][]Handle)
	}
	s.deps[source] = append(s.deps[source], tr)
}

// Dependents returns the transformations deriving directly from source.
func (s *Snippet) Dependents(source Handle) []Handle {
	return s.deps[source]
}

// RegisterTransformation appends to the declaration-ordered
// transformation list. Called by the graph builder.
func (s *Snippet) RegisterTransformation(tr Handle) {
	s.transformations = append(s.transformations, tr)
}

// Transformations returns every transformation in declaration order.
func (s *Snippet) Transformations() []Handle {
	return s.transformations
}
