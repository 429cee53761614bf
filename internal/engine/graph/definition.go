package graph

// Segment definition kinds accepted by the builder.
const (
	KindText           = "text"
	KindPlaceholder    = "placeholder"
	KindChoice         = "choice"
	KindTransformation = "transformation"
	KindVariable       = "variable"
	KindCode           = "code"
	KindRef            = "ref"
	KindMirror         = "mirror"
)

// Definition is the structured graph form of one snippet, as produced
// by a parser collaborator or decoded from a catalog file.
type Definition struct {
	// Name identifies the snippet in a catalog.
	Name string `toml:"name" yaml:"name"`

	// Body is the ordered segment sequence.
	Body []SegmentDef `toml:"body" yaml:"body"`

	// Tabs declares the edit cycle: each entry binds a cycle number
	// to a field declared in the body. Two tabs may bind the same
	// field (a mirror).
	Tabs []TabDef `toml:"tabs" yaml:"tabs"`
}

// TabDef binds a cycle number to a field ID.
type TabDef struct {
	Num   int    `toml:"num" yaml:"num"`
	Field string `toml:"field" yaml:"field"`
}

// SegmentDef describes one segment of a snippet body.
//
// Kind selects the variant and decides which other fields apply:
//
//	text           Text
//	placeholder    ID, Body
//	choice         ID, Selected, Options
//	transformation Name (optional), Source, Pattern, Format, Flags
//	variable       Name, VarSource ("daemon" or "client")
//	code           Name (optional), Code, Shebang
//	ref            Ref (a declared transformation or code name)
//	mirror         Ref (a declared field ID)
//
// References resolve only to names declared earlier in the body: a
// named segment lets a later part of the snippet reuse an
// already-defined fragment.
type SegmentDef struct {
	Kind string `toml:"kind" yaml:"kind"`

	Text string `toml:"text,omitempty" yaml:"text,omitempty"`

	// ID names a field so tabs, mirrors, and transformation sources
	// can refer to it.
	ID string `toml:"id,omitempty" yaml:"id,omitempty"`

	Body     []SegmentDef   `toml:"body,omitempty" yaml:"body,omitempty"`
	Selected int            `toml:"selected,omitempty" yaml:"selected,omitempty"`
	Options  [][]SegmentDef `toml:"options,omitempty" yaml:"options,omitempty"`

	// Name declares a reusable transformation or code fragment, or
	// names the variable for the variable kind.
	Name string `toml:"name,omitempty" yaml:"name,omitempty"`

	// Source names what a transformation derives from:
	// "field:ID", "var:NAME", or "name:NAME" for a declared
	// transformation or code fragment.
	Source  string `toml:"source,omitempty" yaml:"source,omitempty"`
	Pattern string `toml:"pattern,omitempty" yaml:"pattern,omitempty"`
	Format  string `toml:"format,omitempty" yaml:"format,omitempty"`
	Flags   string `toml:"flags,omitempty" yaml:"flags,omitempty"`

	// VarSource is "daemon" (host-resolved) or "client"
	// (externally requested); daemon is the default.
	VarSource string `toml:"var_source,omitempty" yaml:"var_source,omitempty"`

	Code    string `toml:"code,omitempty" yaml:"code,omitempty"`
	Shebang string `toml:"shebang,omitempty" yaml:"shebang,omitempty"`

	Ref string `toml:"ref,omitempty" yaml:"ref,omitempty"`
}
