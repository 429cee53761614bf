package cycle

import (
	"errors"
	"fmt"

	"github.com/dshills/snipstorm/internal/engine/fragment"
	"github.com/dshills/snipstorm/internal/engine/graph"
	"github.com/dshills/snipstorm/internal/engine/transform"
)

// Errors returned by controller operations.
var (
	ErrNoActiveTab      = errors.New("no active tab")
	ErrNotChoice        = errors.New("active field is not a choice")
	ErrChoiceOutOfRange = errors.New("choice index out of range")
	ErrNoActiveOption   = errors.New("choice has no active option")
	ErrAlreadyExpanded  = errors.New("tab already holds a nested expansion")
)

// stop is one entry in the flattened tab cycle: a tab together with
// the snippet that declares it (the root, or a nested expansion).
type stop struct {
	snip *fragment.Snippet
	tab  int // index into snip.Tabs
}

// Controller tracks the active tabstop and applies user edits.
//
// The cycle starts as the root snippet's tabs in ascending number.
// Nested expansions splice their own tabs in after the tab they were
// expanded at.
type Controller struct {
	arena  *fragment.Arena
	engine *transform.Engine

	// snips holds every snippet in the expansion: the root first,
	// then nested expansions in the order they were expanded. Tabless
	// nested snippets appear here even though they add no stops.
	snips []*fragment.Snippet

	order  []stop
	active int // index into order, -1 when no tab is active

	expanded map[int]bool // order index -> nested expansion done
}

// New creates a controller for a built snippet. No tab is active until
// the first Next, Previous, or Jump.
func New(a *fragment.Arena, s *fragment.Snippet, engine *transform.Engine) *Controller {
	c := &Controller{
		arena:    a,
		engine:   engine,
		snips:    []*fragment.Snippet{s},
		active:   -1,
		expanded: make(map[int]bool),
	}
	for i := range s.Tabs {
		c.order = append(c.order, stop{snip: s, tab: i})
	}
	return c
}

// Active returns the active tab, or false if none is active.
func (c *Controller) Active() (*fragment.Tab, bool) {
	if c.active < 0 || c.active >= len(c.order) {
		return nil, false
	}
	st := c.order[c.active]
	return &st.snip.Tabs[st.tab], true
}

// ActiveNum returns the active tab's cycle number.
func (c *Controller) ActiveNum() (int, bool) {
	tab, ok := c.Active()
	if !ok {
		return 0, false
	}
	return tab.Num, true
}

// ActiveField returns the field bound to the active tab.
func (c *Controller) ActiveField() (*fragment.Field, bool) {
	tab, ok := c.Active()
	if !ok {
		return nil, false
	}
	f := c.arena.Field(tab.Field)
	if f == nil {
		return nil, false
	}
	return f, true
}

// Next advances to the next tab in cycle order, wrapping to the first
// after the last. From no active tab it moves to the first. Returns
// false when the snippet has no tabs.
func (c *Controller) Next() (*fragment.Tab, bool) {
	if len(c.order) == 0 {
		return nil, false
	}
	if c.active < 0 {
		c.active = 0
	} else {
		c.active = (c.active + 1) % len(c.order)
	}
	return c.Active()
}

// Previous moves to the previous tab, wrapping to the last from the
// first. From no active tab it moves to the last.
func (c *Controller) Previous() (*fragment.Tab, bool) {
	if len(c.order) == 0 {
		return nil, false
	}
	if c.active < 0 {
		c.active = len(c.order) - 1
	} else {
		c.active = (c.active - 1 + len(c.order)) % len(c.order)
	}
	return c.Active()
}

// Jump moves directly to the tab with the given number. Returns false
// if no tab in the cycle has that number.
func (c *Controller) Jump(num int) (*fragment.Tab, bool) {
	for i, st := range c.order {
		if st.snip.Tabs[st.tab].Num == num {
			c.active = i
			return c.Active()
		}
	}
	return nil, false
}

// Edit replaces the content of the active tab's field with the given
// text. The edit lands on the shared field, so every tab and
// transformation referencing it observes the change; dependents are
// rederived before the next render.
func (c *Controller) Edit(text string) error {
	tab, ok := c.Active()
	if !ok {
		return ErrNoActiveTab
	}
	f := c.arena.Field(tab.Field)
	if f == nil {
		return fmt.Errorf("tab %d: stale field handle", tab.Num)
	}

	body := []fragment.Segment{fragment.TextSegment(text)}
	switch f.Kind {
	case fragment.Placeholder:
		f.Body = body
	case fragment.Choice:
		if f.Selected < 0 || f.Selected >= len(f.Options) {
			return ErrNoActiveOption
		}
		f.Options[f.Selected] = body
	}

	c.propagate(tab.Field)
	return nil
}

// SelectChoice activates an option of the active tab's choice field.
// Re-selection is an edit on the field and propagates the same way.
func (c *Controller) SelectChoice(index int) error {
	tab, ok := c.Active()
	if !ok {
		return ErrNoActiveTab
	}
	f := c.arena.Field(tab.Field)
	if f == nil {
		return fmt.Errorf("tab %d: stale field handle", tab.Num)
	}
	if f.Kind != fragment.Choice {
		return ErrNotChoice
	}
	if index < 0 || index >= len(f.Options) {
		return ErrChoiceOutOfRange
	}

	f.Selected = index
	c.propagate(tab.Field)
	return nil
}

// ExpandNested builds a nested snippet from the definition and rewrites
// the active tab's segment in place to the nested-snippet variant. The
// rewrite happens at most once per tab. The nested snippet's tabs enter
// the cycle immediately after the enclosing tab, and the first of them
// becomes active.
//
// When two tabs mirror the same field, the rewrite lands on the first
// segment referencing that field in body order; the other occurrences
// keep rendering the field itself.
func (c *Controller) ExpandNested(def graph.Definition) error {
	tab, ok := c.Active()
	if !ok {
		return ErrNoActiveTab
	}
	if c.expanded[c.active] {
		return ErrAlreadyExpanded
	}

	st := c.order[c.active]
	seg := c.findFieldSegment(st.snip.Body, tab.Field)
	if seg == nil {
		return fmt.Errorf("tab %d: field segment not found", tab.Num)
	}

	nested, err := graph.BuildInto(c.arena, def)
	if err != nil {
		return err
	}
	nh := c.arena.Alloc(nested)

	// In-place variant rewrite; single writer per session.
	*seg = fragment.Segment{Kind: fragment.SegSnippet, Ref: nh}
	c.expanded[c.active] = true
	c.snips = append(c.snips, nested)

	if len(nested.Tabs) > 0 {
		splice := make([]stop, 0, len(nested.Tabs))
		for i := range nested.Tabs {
			splice = append(splice, stop{snip: nested, tab: i})
		}
		rest := make([]stop, len(c.order[c.active+1:]))
		copy(rest, c.order[c.active+1:])
		c.order = append(c.order[:c.active+1], append(splice, rest...)...)

		// Re-key expansion marks that shifted right.
		shifted := make(map[int]bool, len(c.expanded))
		for idx, done := range c.expanded {
			if idx > c.active {
				shifted[idx+len(splice)] = done
			} else {
				shifted[idx] = done
			}
		}
		c.expanded = shifted

		c.active++ // nested tabs shadow the enclosing tab
	}
	return nil
}

// Len returns the number of tabs currently in the cycle, nested
// expansions included.
func (c *Controller) Len() int {
	return len(c.order)
}

// Snippets returns every snippet of the expansion: the root first,
// then nested expansions in expansion order. Resolution walks this
// list so fragments inside nested expansions are reached too.
func (c *Controller) Snippets() []*fragment.Snippet {
	out := make([]*fragment.Snippet, len(c.snips))
	copy(out, c.snips)
	return out
}

// propagate rederives dependents in every snippet of the expansion.
// Dependents of a field are registered on the declaring snippet only,
// so each snippet is walked once.
func (c *Controller) propagate(source fragment.Handle) {
	for _, s := range c.snips {
		c.engine.Propagate(s, source)
	}
}

// findFieldSegment locates the first segment referencing the given
// field, searching nested field bodies depth-first.
func (c *Controller) findFieldSegment(segs []fragment.Segment, h fragment.Handle) *fragment.Segment {
	for i := range segs {
		if segs[i].Kind != fragment.SegField {
			continue
		}
		if segs[i].Ref == h {
			return &segs[i]
		}
		f := c.arena.Field(segs[i].Ref)
		if f == nil {
			continue
		}
		if found := c.findFieldSegment(f.Body, h); found != nil {
			return found
		}
		for oi := range f.Options {
			if found := c.findFieldSegment(f.Options[oi], h); found != nil {
				return found
			}
		}
	}
	return nil
}
