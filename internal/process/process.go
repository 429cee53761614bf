package process

import (
	"bytes"
	"fmt"
	"os/exec"
	"sync"
	"sync/atomic"
	"syscall"
	"time"
)

// State represents the state of an interpreter run.
type State int

const (
	// StateCreated indicates the run has been created but not started.
	StateCreated State = iota
	// StateRunning indicates the interpreter is executing.
	StateRunning
	// StateExited indicates the interpreter exited on its own.
	StateExited
	// StateKilled indicates the interpreter was killed by a signal.
	StateKilled
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateRunning:
		return "running"
	case StateExited:
		return "exited"
	case StateKilled:
		return "killed"
	default:
		return fmt.Sprintf("unknown(%d)", s)
	}
}

// Run is one managed interpreter invocation.
//
// Run wraps an exec.Cmd with lifecycle tracking and captured output.
// It is safe for concurrent use.
type Run struct {
	// ID is the unique identifier for this run.
	ID string

	// Interpreter is the resolved interpreter program.
	Interpreter string

	// Cmd is the underlying exec.Cmd.
	Cmd *exec.Cmd

	// Started is the time the interpreter was started.
	Started time.Time

	stdout bytes.Buffer
	stderr bytes.Buffer

	// done is closed when the interpreter exits.
	done chan struct{}

	state    atomic.Int32
	exitCode atomic.Int32

	mu      sync.RWMutex
	exitErr error

	waitOnce sync.Once
}

func newRun(id, interpreter string, cmd *exec.Cmd) *Run {
	r := &Run{
		ID:          id,
		Interpreter: interpreter,
		Cmd:         cmd,
		done:        make(chan struct{}),
	}
	cmd.Stdout = &r.stdout
	cmd.Stderr = &r.stderr
	r.state.Store(int32(StateCreated))
	r.exitCode.Store(-1) // -1 indicates not exited
	return r
}

// State returns the current run state.
func (r *Run) State() State {
	return State(r.state.Load())
}

// ExitCode returns the interpreter's exit code, or -1 before exit.
func (r *Run) ExitCode() int {
	return int(r.exitCode.Load())
}

// ExitError returns any error from waiting on the interpreter.
func (r *Run) ExitError() error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.exitErr
}

// Done returns a channel closed when the interpreter exits.
func (r *Run) Done() <-chan struct{} {
	return r.done
}

// Output returns captured standard output. Only stable after Done.
func (r *Run) Output() string {
	return r.stdout.String()
}

// ErrOutput returns captured standard error. Only stable after Done.
func (r *Run) ErrOutput() string {
	return r.stderr.String()
}

// IsRunning returns true while the interpreter is executing.
func (r *Run) IsRunning() bool {
	return r.State() == StateRunning
}

// PID returns the interpreter's process ID, or -1 if not started.
func (r *Run) PID() int {
	if r.Cmd.Process == nil {
		return -1
	}
	return r.Cmd.Process.Pid
}

// Terminate sends SIGTERM to the interpreter.
func (r *Run) Terminate() error {
	return r.signal(syscall.SIGTERM)
}

// Kill sends SIGKILL to the interpreter.
func (r *Run) Kill() error {
	return r.signal(syscall.SIGKILL)
}

func (r *Run) signal(sig syscall.Signal) error {
	if !r.IsRunning() || r.Cmd.Process == nil {
		return ErrRunNotStarted
	}
	return r.Cmd.Process.Signal(sig)
}

// start launches the interpreter and begins tracking it.
func (r *Run) start() error {
	if r.State() != StateCreated {
		return ErrRunAlreadyStarted
	}

	if err := r.Cmd.Start(); err != nil {
		return fmt.Errorf("start interpreter: %w", err)
	}

	r.Started = time.Now()
	r.state.Store(int32(StateRunning))

	go r.waitLoop()
	return nil
}

// waitLoop waits for the interpreter to exit and updates state.
func (r *Run) waitLoop() {
	r.waitOnce.Do(func() {
		err := r.Cmd.Wait()

		r.mu.Lock()
		r.exitErr = err
		r.mu.Unlock()

		exitCode := 0
		state := StateExited

		if err != nil {
			if exitErr, ok := err.(*exec.ExitError); ok {
				exitCode = exitErr.ExitCode()
				if status, ok := exitErr.Sys().(syscall.WaitStatus); ok && status.Signaled() {
					state = StateKilled
				}
			} else {
				exitCode = -1
			}
		}

		r.exitCode.Store(int32(exitCode))
		r.state.Store(int32(state))
		close(r.done)
	})
}
