// Package sandbox executes untrusted code snippets in external
// interpreter processes.
//
// Each call spawns one child process, waits for it under a hard wall-clock
// timeout, captures stdout and stderr up to a combined byte cap, and
// classifies the result into a closed set of outcomes: success, empty
// input, interpreter not found, timeout, process error, non-zero exit, or
// unexpected. Execute always returns an Outcome value; no error or panic
// crosses the package boundary.
//
// Process spawning sits behind the CommandRunner interface so the
// classification logic can be tested without real processes.
//
// Usage:
//
//	executor := sandbox.New(logger, &sandbox.Config{
//	    Interpreter:    "python3",
//	    MaxOutputBytes: 1 << 20,
//	})
//	outcome := executor.Execute(ctx, sandbox.Request{
//	    Code:       "print('Hello, World!')",
//	    TimeoutSec: 10,
//	})
package sandbox
