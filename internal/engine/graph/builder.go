package graph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dshills/snipstorm/internal/engine/fragment"
	"github.com/dshills/snipstorm/internal/engine/transform"
)

// Build constructs a snippet and a fresh arena from a definition.
func Build(def Definition) (*fragment.Snippet, *fragment.Arena, error) {
	a := fragment.NewArena()
	s, err := BuildInto(a, def)
	if err != nil {
		return nil, nil, err
	}
	return s, a, nil
}

// BuildInto constructs a snippet into an existing arena. Used for
// nested expansions, which share the enclosing expansion's arena so
// handles resolve across the whole graph.
func BuildInto(a *fragment.Arena, def Definition) (*fragment.Snippet, error) {
	b := &builder{
		arena:  a,
		snip:   &fragment.Snippet{},
		fields: make(map[string]fragment.Handle),
		vars:   make(map[string]fragment.Handle),
		named:  make(map[string]fragment.NamedSegment),
	}

	body, err := b.walk(def.Body)
	if err != nil {
		return nil, fmt.Errorf("snippet %q: %w", def.Name, err)
	}
	b.snip.Body = body

	if err := b.wireTabs(def.Tabs); err != nil {
		return nil, fmt.Errorf("snippet %q: %w", def.Name, err)
	}
	b.wireExpansions()

	// Initial derivation pass: Result is never read underived.
	transform.NewEngine(a).DeriveAll(b.snip)

	return b.snip, nil
}

// builder carries construction state for one definition.
type builder struct {
	arena  *fragment.Arena
	snip   *fragment.Snippet
	fields map[string]fragment.Handle
	vars   map[string]fragment.Handle
	named  map[string]fragment.NamedSegment

	// declaration order of variable and code fragments, for the
	// snippet's expansion lists
	varOrder  []fragment.Handle
	codeOrder []fragment.Handle
}

func (b *builder) walk(defs []SegmentDef) ([]fragment.Segment, error) {
	segs := make([]fragment.Segment, 0, len(defs))
	for _, d := range defs {
		seg, err := b.segment(d)
		if err != nil {
			return nil, err
		}
		segs = append(segs, seg)
	}
	return segs, nil
}

func (b *builder) segment(d SegmentDef) (fragment.Segment, error) {
	switch d.Kind {
	case KindText:
		return fragment.TextSegment(d.Text), nil

	case KindPlaceholder:
		body, err := b.walk(d.Body)
		if err != nil {
			return fragment.Segment{}, err
		}
		h := b.arena.Alloc(fragment.NewPlaceholder(body))
		if d.ID != "" {
			b.fields[d.ID] = h
		}
		return fragment.FieldSegment(h), nil

	case KindChoice:
		options := make([][]fragment.Segment, 0, len(d.Options))
		for _, opt := range d.Options {
			body, err := b.walk(opt)
			if err != nil {
				return fragment.Segment{}, err
			}
			options = append(options, body)
		}
		h := b.arena.Alloc(fragment.NewChoice(d.Selected, options))
		if d.ID != "" {
			b.fields[d.ID] = h
		}
		return fragment.FieldSegment(h), nil

	case KindTransformation:
		src, err := b.resolveSource(d.Source)
		if err != nil {
			return fragment.Segment{}, err
		}
		h := b.arena.Alloc(&fragment.Transformation{
			Section: d.Pattern,
			Format:  d.Format,
			Flags:   d.Flags,
			Source:  src,
		})
		b.snip.AddDependent(src, h)
		b.snip.RegisterTransformation(h)
		if d.Name != "" {
			b.declareNamed(d.Name, fragment.NamedTransformation, h)
		}
		return fragment.TransformationSegment(h), nil

	case KindVariable:
		if d.Name == "" {
			return fragment.Segment{}, fmt.Errorf("variable segment without a name")
		}
		if h, ok := b.vars[d.Name]; ok {
			// Same variable used twice resolves once and renders
			// everywhere.
			return fragment.VariableSegment(h), nil
		}
		src, err := parseVariableSource(d.VarSource)
		if err != nil {
			return fragment.Segment{}, err
		}
		h := b.arena.Alloc(&fragment.Variable{Name: d.Name, Source: src})
		b.vars[d.Name] = h
		b.varOrder = append(b.varOrder, h)
		return fragment.VariableSegment(h), nil

	case KindCode:
		h := b.arena.Alloc(&fragment.Code{Code: d.Code, Shebang: d.Shebang})
		b.codeOrder = append(b.codeOrder, h)
		if d.Name != "" {
			b.declareNamed(d.Name, fragment.NamedCode, h)
		}
		return fragment.CodeSegment(h), nil

	case KindRef:
		ns, ok := b.named[d.Ref]
		if !ok {
			return fragment.Segment{}, fmt.Errorf("named segment %q: %w", d.Ref, ErrUnresolvedReference)
		}
		if ns.Kind == fragment.NamedCode {
			return fragment.CodeSegment(ns.Ref), nil
		}
		return fragment.TransformationSegment(ns.Ref), nil

	case KindMirror:
		h, ok := b.fields[d.Ref]
		if !ok {
			return fragment.Segment{}, fmt.Errorf("field %q: %w", d.Ref, ErrUnresolvedReference)
		}
		return fragment.FieldSegment(h), nil

	default:
		return fragment.Segment{}, fmt.Errorf("unknown segment kind %q", d.Kind)
	}
}

// resolveSource resolves a transformation source reference. Sources
// must be declared before the transformation that uses them.
func (b *builder) resolveSource(source string) (fragment.Handle, error) {
	kind, name, ok := strings.Cut(source, ":")
	if !ok {
		return fragment.NoHandle, fmt.Errorf("malformed source %q: %w", source, ErrUnresolvedReference)
	}
	switch kind {
	case "field":
		if h, ok := b.fields[name]; ok {
			return h, nil
		}
	case "var":
		if h, ok := b.vars[name]; ok {
			return h, nil
		}
	case "name":
		if ns, ok := b.named[name]; ok {
			return ns.Ref, nil
		}
	}
	return fragment.NoHandle, fmt.Errorf("source %q: %w", source, ErrUnresolvedReference)
}

// declareNamed registers a reusable fragment. Later refs resolve to
// the same instance, never a copy.
func (b *builder) declareNamed(name string, kind fragment.NamedKind, h fragment.Handle) {
	ns := fragment.NamedSegment{Name: name, Kind: kind, Ref: h}
	b.named[name] = ns
	b.snip.NamedSegments = append(b.snip.NamedSegments, ns)
}

func (b *builder) wireTabs(defs []TabDef) error {
	seen := make(map[int]bool, len(defs))
	tabs := make([]fragment.Tab, 0, len(defs))
	for _, td := range defs {
		if seen[td.Num] {
			return fmt.Errorf("tab %d: %w", td.Num, ErrDuplicateTabIndex)
		}
		seen[td.Num] = true

		h, ok := b.fields[td.Field]
		if !ok {
			return fmt.Errorf("tab %d field %q: %w", td.Num, td.Field, ErrUnresolvedReference)
		}
		tabs = append(tabs, fragment.Tab{
			Num:             td.Num,
			Field:           h,
			Transformations: b.snip.Dependents(h),
		})
	}
	sort.Slice(tabs, func(i, j int) bool { return tabs[i].Num < tabs[j].Num })
	b.snip.Tabs = tabs
	return nil
}

func (b *builder) wireExpansions() {
	for _, h := range b.varOrder {
		b.snip.Variables = append(b.snip.Variables, fragment.Expansion[fragment.Variable]{
			Ref:             h,
			Transformations: b.snip.Dependents(h),
		})
	}
	for _, h := range b.codeOrder {
		b.snip.CodeExpansions = append(b.snip.CodeExpansions, fragment.Expansion[fragment.Code]{
			Ref:             h,
			Transformations: b.snip.Dependents(h),
		})
	}
}

func parseVariableSource(s string) (fragment.VariableSource, error) {
	switch s {
	case "", "daemon":
		return fragment.SourceDaemon, nil
	case "client":
		return fragment.SourceClient, nil
	default:
		return 0, fmt.Errorf("unknown variable source %q", s)
	}
}
