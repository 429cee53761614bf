package resolve

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dshills/snipstorm/internal/engine/fragment"
	"github.com/dshills/snipstorm/internal/engine/transform"
	"github.com/dshills/snipstorm/internal/event"
	"github.com/dshills/snipstorm/internal/process"
	"github.com/dshills/snipstorm/internal/resolve/luacode"
)

// Errors surfaced by resolution. Both are recovered locally: the
// affected fragment renders as empty text and the editing session
// continues.
var (
	// ErrResolutionTimeout indicates a client variable's round trip
	// missed its deadline.
	ErrResolutionTimeout = errors.New("variable resolution timed out")

	// ErrExecutionError indicates a code fragment's interpreter was
	// missing, failed to start, or exited non-zero.
	ErrExecutionError = errors.New("code execution failed")
)

// DefaultTimeout bounds a client variable round trip unless the caller
// supplies its own deadline.
const DefaultTimeout = 3 * time.Second

// Lookup resolves a daemon variable by name from host state.
type Lookup func(name string) (string, bool)

// EnvLookup resolves daemon variables from the process environment.
func EnvLookup(name string) (string, bool) {
	return os.LookupEnv(name)
}

// Requester obtains client variable values over an external channel.
// Request must honor the context's deadline and cancellation.
type Requester interface {
	Request(ctx context.Context, name string) (string, error)
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLookup sets the daemon variable lookup function.
func WithLookup(fn Lookup) Option {
	return func(r *Resolver) {
		r.lookup = fn
	}
}

// WithRequester sets the client variable requester.
func WithRequester(rq Requester) Option {
	return func(r *Resolver) {
		r.requester = rq
	}
}

// WithTimeout sets the client variable round-trip deadline.
func WithTimeout(d time.Duration) Option {
	return func(r *Resolver) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithSupervisor sets the process supervisor used for external
// interpreters.
func WithSupervisor(sup *process.Supervisor) Option {
	return func(r *Resolver) {
		r.supervisor = sup
	}
}

// WithBus sets the bus non-fatal failures are published to.
func WithBus(bus *event.Bus, session string) Option {
	return func(r *Resolver) {
		r.bus = bus
		r.session = session
	}
}

// Resolver fills the variable and code fragments of one expansion.
type Resolver struct {
	arena  *fragment.Arena
	engine *transform.Engine

	lookup     Lookup
	requester  Requester
	supervisor *process.Supervisor
	timeout    time.Duration

	bus     *event.Bus
	session string
}

// New creates a resolver over the given arena and derivation engine.
func New(a *fragment.Arena, engine *transform.Engine, opts ...Option) *Resolver {
	r := &Resolver{
		arena:   a,
		engine:  engine,
		lookup:  EnvLookup,
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.supervisor == nil {
		r.supervisor = process.NewSupervisor()
	}
	return r
}

// ResolveVariable sets a variable's value exactly once per session.
//
// Daemon variables come from the lookup function; an unknown name
// resolves to empty text. Client variables block on the requester,
// bounded by the resolver's timeout on top of any caller deadline;
// on expiry the variable stays empty, a TopicVariableTimeout event is
// published, and ErrResolutionTimeout is returned. Cancellation
// likewise leaves the variable unresolved and the graph intact.
func (r *Resolver) ResolveVariable(ctx context.Context, snip *fragment.Snippet, exp fragment.Expansion[fragment.Variable]) error {
	v := r.arena.Variable(exp.Ref)
	if v == nil {
		return fmt.Errorf("stale variable handle")
	}
	if v.Resolved {
		return nil
	}

	switch v.Source {
	case fragment.SourceDaemon:
		if val, ok := r.lookup(v.Name); ok {
			v.Value = val
		}
		v.Resolved = true

	case fragment.SourceClient:
		if r.requester == nil {
			return fmt.Errorf("variable %q: no client requester configured", v.Name)
		}
		rctx, cancel := context.WithTimeout(ctx, r.timeout)
		defer cancel()

		val, err := r.requester.Request(rctx, v.Name)
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				err = fmt.Errorf("variable %q: %w", v.Name, ErrResolutionTimeout)
				r.publish(event.TopicVariableTimeout, err)
				return err
			}
			return fmt.Errorf("variable %q: %w", v.Name, err)
		}
		v.Value = val
		v.Resolved = true
	}

	r.engine.Propagate(snip, exp.Ref)
	return nil
}

// ResolveCode executes a code fragment and captures its standard
// output. Execution failure is reported out-of-band as a
// TopicCodeError event, never as an error to the caller: the fragment
// keeps empty output and renders as empty text. Context cancellation
// is the one exception and is returned so the host can unwind.
func (r *Resolver) ResolveCode(ctx context.Context, snip *fragment.Snippet, exp fragment.Expansion[fragment.Code]) error {
	c := r.arena.Code(exp.Ref)
	if c == nil {
		return fmt.Errorf("stale code handle")
	}
	if c.Ran {
		return nil
	}

	var out string
	var err error
	if luacode.IsLuaShebang(c.Shebang) {
		out, err = luacode.Run(ctx, c.Code)
	} else {
		out, err = r.supervisor.Execute(ctx, c.Shebang, c.Code)
	}

	if err != nil {
		if ctx.Err() != nil {
			// Cancelled: leave the fragment unresolved and retryable.
			return ctx.Err()
		}
		c.Ran = true
		r.publish(event.TopicCodeError, fmt.Errorf("%w: %v", ErrExecutionError, err))
		return nil
	}

	c.Output = strings.TrimRight(out, "\n")
	c.Ran = true
	r.engine.Propagate(snip, exp.Ref)
	return nil
}

// ResolveAll resolves every variable and code expansion of a snippet.
// Non-fatal failures (timeouts, execution errors) are published and
// skipped; only context cancellation stops the pass.
func (r *Resolver) ResolveAll(ctx context.Context, snip *fragment.Snippet) error {
	for _, exp := range snip.Variables {
		if err := r.ResolveVariable(ctx, snip, exp); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			// Already surfaced out-of-band; the variable renders
			// as empty text.
			continue
		}
	}
	for _, exp := range snip.CodeExpansions {
		if err := r.ResolveCode(ctx, snip, exp); err != nil {
			return err
		}
	}
	return nil
}

func (r *Resolver) publish(topic event.Topic, err error) {
	if r.bus != nil {
		r.bus.Publish(topic, r.session, err)
	}
}
