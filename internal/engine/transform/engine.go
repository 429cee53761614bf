package transform

import (
	"github.com/dshills/snipstorm/internal/engine/fragment"
	"github.com/dshills/snipstorm/internal/engine/render"
)

// Engine rederives transformations against one arena.
//
// The graph is expected to be small, so dependents are recomputed
// eagerly on every write rather than through an incremental framework.
type Engine struct {
	arena *fragment.Arena
}

// NewEngine creates a derivation engine over the given arena.
func NewEngine(a *fragment.Arena) *Engine {
	return &Engine{arena: a}
}

// SourceText returns the current rendered text of a source fragment.
// A stale handle yields empty text.
func (e *Engine) SourceText(h fragment.Handle) string {
	frag, ok := e.arena.Get(h)
	if !ok {
		return ""
	}
	switch f := frag.(type) {
	case *fragment.Field:
		return render.Field(e.arena, f)
	case *fragment.Variable:
		return f.Value
	case *fragment.Code:
		return f.Output
	case *fragment.Transformation:
		return f.Result
	case *fragment.Snippet:
		return render.Snippet(e.arena, f)
	default:
		return ""
	}
}

// Derive recomputes one transformation from its source's current text.
func (e *Engine) Derive(h fragment.Handle) {
	tr := e.arena.Transformation(h)
	if tr == nil {
		return
	}
	tr.Result = Apply(tr.Section, tr.Format, tr.Flags, e.SourceText(tr.Source))
	tr.Derived = true
}

// Propagate rederives every transformation that depends on the given
// source fragment, transitively through chained transformations. Must
// run before the next render observes the source change.
func (e *Engine) Propagate(s *fragment.Snippet, source fragment.Handle) {
	visited := make(map[fragment.Handle]bool)
	queue := []fragment.Handle{source}
	for len(queue) > 0 {
		h := queue[0]
		queue = queue[1:]
		for _, dep := range s.Dependents(h) {
			if visited[dep] {
				continue
			}
			visited[dep] = true
			e.Derive(dep)
			queue = append(queue, dep)
		}
	}
}

// DeriveAll runs a full derivation pass in declaration order. The
// builder declares a source before anything deriving from it, so
// declaration order is dependency order.
func (e *Engine) DeriveAll(s *fragment.Snippet) {
	for _, h := range s.Transformations() {
		e.Derive(h)
	}
}
