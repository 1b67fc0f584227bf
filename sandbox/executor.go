package sandbox

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Config holds the executor settings shared by every call.
type Config struct {
	Interpreter    string
	MaxOutputBytes int64
	HelpURL        string
}

// Executor runs code snippets through an external interpreter process.
// It is stateless between calls; concurrent calls spawn independent
// children and do not interfere.
type Executor struct {
	logger *zap.Logger
	config *Config
	runner CommandRunner
}

// Option configures an Executor
type Option func(*Executor)

// WithCommandRunner replaces the process-spawning backend, used by tests
// to exercise classification without real processes.
func WithCommandRunner(r CommandRunner) Option {
	return func(e *Executor) {
		e.runner = r
	}
}

// New creates an Executor backed by a real os/exec runner unless an
// option overrides it.
func New(logger *zap.Logger, cfg *Config, opts ...Option) *Executor {
	e := &Executor{
		logger: logger,
		config: cfg,
		runner: execRunner{maxOutputBytes: cfg.MaxOutputBytes},
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Execute runs one code snippet and classifies the result. It always
// returns an Outcome value: every failure path, including a panic in the
// orchestration itself, is converted at this boundary and nothing
// propagates to the caller.
func (e *Executor) Execute(ctx context.Context, req Request) (out Outcome) {
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("executor panic recovered", zap.Any("panic", r))
			out = Outcome{
				Failure:   FailureUnexpected,
				Message:   fmt.Sprintf("internal executor error: %v", r),
				ExitCode:  -1,
				ElapsedMs: time.Since(start).Milliseconds(),
			}
		}
	}()

	if strings.TrimSpace(req.Code) == "" {
		// Rejected before any process is spawned; elapsed stays zero.
		return Outcome{
			Failure:  FailureEmptyInput,
			Message:  "code must not be empty",
			ExitCode: -1,
		}
	}

	timeout := time.Duration(req.TimeoutSec) * time.Second

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	e.logger.Debug("spawning interpreter",
		zap.String("interpreter", e.config.Interpreter),
		zap.Int("timeout_sec", req.TimeoutSec),
		zap.Int("code_len", len(req.Code)))

	res, err := e.runner.Run(runCtx, e.config.Interpreter, "-c", req.Code)
	elapsed := time.Since(start).Milliseconds()

	out = e.classify(runCtx, req, res, err)
	out.ElapsedMs = elapsed

	e.logger.Info("execution finished",
		zap.Bool("success", out.Success),
		zap.String("failure", string(out.Failure)),
		zap.Int("exit_code", out.ExitCode),
		zap.Int64("elapsed_ms", out.ElapsedMs),
		zap.Bool("truncated", out.Truncated))

	return out
}

// classify maps the raw run observations onto the outcome taxonomy. The
// deadline is checked before the exit status: a child killed by the
// timeout surfaces as an ExitError-by-signal, which must not be mistaken
// for the code's own failure.
func (e *Executor) classify(runCtx context.Context, req Request, res RunResult, err error) Outcome {
	out := Outcome{
		Stdout:    trimTrailing(res.Stdout),
		Stderr:    trimTrailing(res.Stderr),
		Truncated: res.Truncated,
	}

	switch {
	case errors.Is(runCtx.Err(), context.DeadlineExceeded):
		out.Failure = FailureTimeout
		out.Message = fmt.Sprintf("execution timed out after %d seconds", req.TimeoutSec)
		out.ExitCode = -1

	case runCtx.Err() != nil:
		// Caller canceled before the deadline; the child was killed
		// through the same context path.
		out.Failure = FailureProcess
		out.Message = fmt.Sprintf("execution canceled: %v", runCtx.Err())
		out.ExitCode = -1

	case errors.Is(err, exec.ErrNotFound):
		out.Failure = FailureInterpreterNotFound
		out.Message = fmt.Sprintf("interpreter %q not found", e.config.Interpreter)
		out.Help = e.helpText()
		out.ExitCode = -1

	case err != nil:
		out.Failure = FailureProcess
		out.Message = fmt.Sprintf("failed to run interpreter: %v", err)
		out.ExitCode = -1

	case res.ExitCode != 0:
		out.Failure = FailureNonZeroExit
		out.Message = fmt.Sprintf("process exited with code %d", res.ExitCode)
		out.ExitCode = res.ExitCode

	default:
		out.Success = true
	}

	return out
}

// helpText builds the remediation hint attached to interpreter-not-found
// outcomes.
func (e *Executor) helpText() string {
	help := fmt.Sprintf("Install %q or make sure it is on PATH, or point executor.interpreter at a different command.", e.config.Interpreter)
	if e.config.HelpURL != "" {
		help += " See " + e.config.HelpURL
	}
	return help
}

func trimTrailing(s string) string {
	return strings.TrimRight(s, " \t\r\n")
}
