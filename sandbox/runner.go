package sandbox

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"sync"
	"time"
)

// outputDrainDelay bounds how long Wait may block on open output pipes after
// the child exits or the context is canceled. Without it a child that hands
// its pipes to a long-lived grandchild would stall the call indefinitely.
const outputDrainDelay = 2 * time.Second

// execRunner implements CommandRunner using os/exec
type execRunner struct {
	maxOutputBytes int64
}

// Run spawns exactly one process and waits for it. The command name is
// resolved against PATH on every call. Combined stdout and stderr are capped
// at maxOutputBytes; excess bytes are dropped without failing the run.
func (r execRunner) Run(ctx context.Context, name string, args ...string) (RunResult, error) {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec // Spawning the configured interpreter is the point
	cmd.WaitDelay = outputDrainDelay
	// Stdin stays nil so an interpreter that polls it sees EOF immediately.

	budget := newOutputBudget(r.maxOutputBytes)
	stdout := budget.newWriter()
	stderr := budget.newWriter()
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	err := cmd.Run()

	res := RunResult{
		Stdout:    stdout.String(),
		Stderr:    stderr.String(),
		Truncated: budget.Truncated(),
	}

	if err != nil {
		if exitError, ok := err.(*exec.ExitError); ok {
			res.ExitCode = exitError.ExitCode()
			return res, nil
		}
		if errors.Is(err, exec.ErrWaitDelay) {
			// The child exited cleanly; only stray pipe holders were cut off.
			return res, nil
		}
		return res, err
	}

	return res, nil
}

// outputBudget shares one byte allowance between the two output streams.
// exec pumps stdout and stderr from separate goroutines, hence the lock.
type outputBudget struct {
	mu        sync.Mutex
	remaining int64
	truncated bool
}

func newOutputBudget(maxBytes int64) *outputBudget {
	return &outputBudget{remaining: maxBytes}
}

func (b *outputBudget) Truncated() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.truncated
}

func (b *outputBudget) newWriter() *budgetWriter {
	return &budgetWriter{budget: b}
}

// budgetWriter buffers up to its share of the budget and silently drops the
// rest, so a chatty child keeps running instead of blocking on a full pipe.
type budgetWriter struct {
	budget *outputBudget
	buf    bytes.Buffer
}

func (w *budgetWriter) Write(p []byte) (int, error) {
	w.budget.mu.Lock()
	defer w.budget.mu.Unlock()

	if w.budget.remaining <= 0 {
		if len(p) > 0 {
			w.budget.truncated = true
		}
		return len(p), nil
	}

	n := int64(len(p))
	if n > w.budget.remaining {
		w.budget.truncated = true
		n = w.budget.remaining
	}
	w.budget.remaining -= n
	w.buf.Write(p[:n])

	return len(p), nil
}

func (w *budgetWriter) String() string {
	w.budget.mu.Lock()
	defer w.budget.mu.Unlock()
	return w.buf.String()
}
