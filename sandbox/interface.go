package sandbox

import "context"

// FailureKind identifies why an execution did not succeed.
type FailureKind string

// Failure kinds reported in Outcome. Exactly one is set when Success is false.
const (
	FailureEmptyInput          FailureKind = "empty_input"
	FailureInterpreterNotFound FailureKind = "interpreter_not_found"
	FailureTimeout             FailureKind = "timeout"
	FailureProcess             FailureKind = "process_error"
	FailureNonZeroExit         FailureKind = "non_zero_exit"
	FailureUnexpected          FailureKind = "unexpected"
)

// Request represents the parameters for one code execution
type Request struct {
	Code       string
	TimeoutSec int
}

// Outcome represents the terminal result of one code execution. Every field
// is populated on every path; Failure is empty exactly when Success is true.
// ExitCode is -1 when no process ran or the process was killed by a signal.
type Outcome struct {
	Success   bool
	Failure   FailureKind
	Message   string
	Help      string
	Stdout    string
	Stderr    string
	ExitCode  int
	ElapsedMs int64
	Truncated bool
}

// CodeExecutor defines the interface for code execution
type CodeExecutor interface {
	Execute(ctx context.Context, req Request) Outcome
}

// RunResult carries the raw observations from one child process run.
type RunResult struct {
	Stdout    string
	Stderr    string
	ExitCode  int
	Truncated bool
}

// CommandRunner defines an interface for spawning interpreter processes.
// A non-zero exit of the child is reported through RunResult.ExitCode, not
// through the error; the error covers spawn and wait failures only.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) (RunResult, error)
}
