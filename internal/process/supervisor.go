package process

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Errors returned by the supervisor.
var (
	// ErrRunNotStarted is returned for operations requiring a started run.
	ErrRunNotStarted = errors.New("interpreter run not started")

	// ErrRunAlreadyStarted is returned when starting a run twice.
	ErrRunAlreadyStarted = errors.New("interpreter run already started")

	// ErrSupervisorShutdown is returned after Shutdown.
	ErrSupervisorShutdown = errors.New("supervisor is shut down")

	// ErrEmptyShebang is returned for a code fragment with no
	// interpreter designation.
	ErrEmptyShebang = errors.New("empty shebang")
)

// Supervisor manages interpreter runs with lifecycle tracking and
// cleanup. Safe for concurrent use.
type Supervisor struct {
	mu   sync.RWMutex
	runs map[string]*Run

	closed atomic.Bool

	// maxRuns limits concurrent interpreter runs (0 = unlimited).
	maxRuns int
}

// SupervisorOption configures a Supervisor.
type SupervisorOption func(*Supervisor)

// WithMaxRuns sets the maximum number of concurrent interpreter runs.
func WithMaxRuns(n int) SupervisorOption {
	return func(s *Supervisor) {
		s.maxRuns = n
	}
}

// NewSupervisor creates a supervisor with no active runs.
func NewSupervisor(opts ...SupervisorOption) *Supervisor {
	s := &Supervisor{runs: make(map[string]*Run)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Execute runs source code under the interpreter named by shebang and
// returns the captured standard output.
//
// The shebang is split into the interpreter program and its arguments;
// a leading "#!" is accepted and stripped. Source is supplied on the
// interpreter's stdin. A context deadline or cancellation kills the
// interpreter and returns the context error; a non-zero exit returns
// an error carrying the exit code and captured stderr. On any error
// the returned output is empty, never partial.
func (s *Supervisor) Execute(ctx context.Context, shebang, source string) (string, error) {
	argv, err := splitShebang(shebang)
	if err != nil {
		return "", err
	}

	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Stdin = strings.NewReader(source)

	run, err := s.track(uuid.New().String(), argv[0], cmd)
	if err != nil {
		return "", err
	}
	defer s.untrack(run.ID)

	if err := run.start(); err != nil {
		return "", err
	}

	select {
	case <-ctx.Done():
		_ = run.Kill()
		<-run.Done()
		return "", ctx.Err()
	case <-run.Done():
	}

	if code := run.ExitCode(); code != 0 {
		return "", fmt.Errorf("interpreter %s exited with code %d: %s",
			argv[0], code, strings.TrimSpace(run.ErrOutput()))
	}
	return run.Output(), nil
}

// Runs returns the number of live interpreter runs.
func (s *Supervisor) Runs() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.runs)
}

// Shutdown terminates all live runs, escalating from SIGTERM to
// SIGKILL after the grace period. The supervisor accepts no new runs
// afterwards.
func (s *Supervisor) Shutdown(grace time.Duration) {
	if s.closed.Swap(true) {
		return
	}

	s.mu.RLock()
	live := make([]*Run, 0, len(s.runs))
	for _, r := range s.runs {
		live = append(live, r)
	}
	s.mu.RUnlock()

	for _, r := range live {
		_ = r.Terminate()
	}

	deadline := time.After(grace)
	for _, r := range live {
		select {
		case <-r.Done():
		case <-deadline:
			_ = r.Kill()
			<-r.Done()
		}
	}
}

func (s *Supervisor) track(id, interpreter string, cmd *exec.Cmd) (*Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed.Load() {
		return nil, ErrSupervisorShutdown
	}
	if s.maxRuns > 0 && len(s.runs) >= s.maxRuns {
		return nil, fmt.Errorf("run limit reached: %d", s.maxRuns)
	}

	run := newRun(id, interpreter, cmd)
	s.runs[id] = run
	return run, nil
}

func (s *Supervisor) untrack(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.runs, id)
}

// splitShebang parses an interpreter designation into argv form.
// "#!/usr/bin/env python3" and "python3 -u" are both accepted.
func splitShebang(shebang string) ([]string, error) {
	s := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(shebang), "#!"))
	if s == "" {
		return nil, ErrEmptyShebang
	}
	return strings.Fields(s), nil
}
