package session

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/dshills/snipstorm/internal/engine/cycle"
	"github.com/dshills/snipstorm/internal/engine/fragment"
	"github.com/dshills/snipstorm/internal/engine/graph"
	"github.com/dshills/snipstorm/internal/engine/render"
	"github.com/dshills/snipstorm/internal/engine/transform"
	"github.com/dshills/snipstorm/internal/event"
	"github.com/dshills/snipstorm/internal/process"
	"github.com/dshills/snipstorm/internal/resolve"
)

// Option configures a Session.
type Option func(*config)

type config struct {
	bus        *event.Bus
	lookup     resolve.Lookup
	requester  resolve.Requester
	supervisor *process.Supervisor
	timeout    time.Duration
}

// WithBus sets the bus sessions publish events on. A session without
// one gets a private bus.
func WithBus(bus *event.Bus) Option {
	return func(c *config) {
		c.bus = bus
	}
}

// WithLookup sets the daemon variable lookup function.
func WithLookup(fn resolve.Lookup) Option {
	return func(c *config) {
		c.lookup = fn
	}
}

// WithRequester sets the client variable requester.
func WithRequester(rq resolve.Requester) Option {
	return func(c *config) {
		c.requester = rq
	}
}

// WithSupervisor shares one process supervisor across sessions.
func WithSupervisor(sup *process.Supervisor) Option {
	return func(c *config) {
		c.supervisor = sup
	}
}

// WithTimeout sets the client variable round-trip deadline.
func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		c.timeout = d
	}
}

// Session is one live expansion: the instantiated graph plus the
// engines that drive it. Not safe for concurrent use; the host's
// event loop serializes all calls.
type Session struct {
	// ID uniquely identifies the session.
	ID string

	// Name is the snippet definition name, when known.
	Name string

	// Created is when the expansion was instantiated.
	Created time.Time

	arena    *fragment.Arena
	snip     *fragment.Snippet
	engine   *transform.Engine
	cycle    *cycle.Controller
	resolver *resolve.Resolver
	bus      *event.Bus
}

// New instantiates a snippet definition into a live session. The whole
// graph is created atomically: a definition that fails validation
// produces no session.
func New(def graph.Definition, opts ...Option) (*Session, error) {
	snip, arena, err := graph.Build(def)
	if err != nil {
		return nil, err
	}

	cfg := config{timeout: resolve.DefaultTimeout}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.bus == nil {
		cfg.bus = event.NewBus()
	}

	id := uuid.New().String()
	engine := transform.NewEngine(arena)

	resolverOpts := []resolve.Option{
		resolve.WithBus(cfg.bus, id),
		resolve.WithTimeout(cfg.timeout),
	}
	if cfg.lookup != nil {
		resolverOpts = append(resolverOpts, resolve.WithLookup(cfg.lookup))
	}
	if cfg.requester != nil {
		resolverOpts = append(resolverOpts, resolve.WithRequester(cfg.requester))
	}
	if cfg.supervisor != nil {
		resolverOpts = append(resolverOpts, resolve.WithSupervisor(cfg.supervisor))
	}

	s := &Session{
		ID:       id,
		Name:     def.Name,
		Created:  time.Now(),
		arena:    arena,
		snip:     snip,
		engine:   engine,
		cycle:    cycle.New(arena, snip, engine),
		resolver: resolve.New(arena, engine, resolverOpts...),
		bus:      cfg.bus,
	}

	s.bus.Publish(event.TopicSnippetExpanded, s.ID, def.Name)
	return s, nil
}

// Bus returns the session's event bus.
func (s *Session) Bus() *event.Bus {
	return s.bus
}

// Render materializes the expansion's current text. Safe to call
// repeatedly; no side effects.
func (s *Session) Render() string {
	return render.Snippet(s.arena, s.snip)
}

// Resolve fills every variable and code fragment of the expansion,
// nested snippets included, honoring the context's deadline. Non-fatal
// failures surface on the bus. Safe to call again after ExpandNested:
// already-resolved fragments are left alone.
func (s *Session) Resolve(ctx context.Context) error {
	for _, snip := range s.cycle.Snippets() {
		if err := s.resolver.ResolveAll(ctx, snip); err != nil {
			return err
		}
	}
	return nil
}

// Next advances the tab cycle. Returns the new active tab number, or
// false when the snippet has no tabs.
func (s *Session) Next() (int, bool) {
	tab, ok := s.cycle.Next()
	if !ok {
		return 0, false
	}
	s.bus.Publish(event.TopicTabChanged, s.ID, tab.Num)
	return tab.Num, true
}

// Previous steps the tab cycle backwards.
func (s *Session) Previous() (int, bool) {
	tab, ok := s.cycle.Previous()
	if !ok {
		return 0, false
	}
	s.bus.Publish(event.TopicTabChanged, s.ID, tab.Num)
	return tab.Num, true
}

// Jump moves directly to the tab with the given number.
func (s *Session) Jump(num int) bool {
	tab, ok := s.cycle.Jump(num)
	if !ok {
		return false
	}
	s.bus.Publish(event.TopicTabChanged, s.ID, tab.Num)
	return true
}

// ActiveTab returns the active tab number.
func (s *Session) ActiveTab() (int, bool) {
	return s.cycle.ActiveNum()
}

// ActiveField returns the field bound to the active tab.
func (s *Session) ActiveField() (*fragment.Field, bool) {
	return s.cycle.ActiveField()
}

// ActiveFieldText returns the rendered text of the active tab's field.
func (s *Session) ActiveFieldText() string {
	f, ok := s.cycle.ActiveField()
	if !ok {
		return ""
	}
	return render.Field(s.arena, f)
}

// Edit replaces the active tab's field content with text and
// rederives everything sourced on it.
func (s *Session) Edit(text string) error {
	return s.cycle.Edit(text)
}

// SelectChoice activates an option of the active tab's choice field.
func (s *Session) SelectChoice(index int) error {
	return s.cycle.SelectChoice(index)
}

// ExpandNested expands a snippet definition at the active tab. The
// nested snippet's tabs enter the cycle right after the enclosing tab.
func (s *Session) ExpandNested(def graph.Definition) error {
	return s.cycle.ExpandNested(def)
}

// Tabs returns the number of tabs in the cycle, nested expansions
// included.
func (s *Session) Tabs() int {
	return s.cycle.Len()
}
