// Package main implements the execbox developer CLI, a one-shot harness
// that runs a snippet through the same sandbox executor the MCP server
// uses and prints the classified outcome.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/urfave/cli/v3"

	"github.com/odelin/execbox/logger"
	"github.com/odelin/execbox/sandbox"
)

const (
	defaultTimeoutSec = 10
	defaultOutputKB   = 1024

	// exitTimeout mirrors the convention of timeout(1).
	exitTimeout = 124
)

func main() {
	cmd := &cli.Command{
		Name:  "execbox",
		Usage: "Run code snippets in a bounded interpreter process",
		Commands: []*cli.Command{
			runCommand(),
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func runCommand() *cli.Command {
	return &cli.Command{
		Name:      "run",
		Usage:     "Execute a snippet from FILE or stdin and print the outcome",
		ArgsUsage: "[FILE]",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "timeout",
				Usage: "execution budget in seconds",
				Value: defaultTimeoutSec,
			},
			&cli.StringFlag{
				Name:  "interpreter",
				Usage: "interpreter command to run the snippet with",
				Value: "python3",
			},
			&cli.IntFlag{
				Name:  "max-output-kb",
				Usage: "combined stdout/stderr cap in KiB",
				Value: defaultOutputKB,
			},
		},
		Action: runAction,
	}
}

func runAction(ctx context.Context, cmd *cli.Command) error {
	code, err := readCode(cmd.Args().First())
	if err != nil {
		return err
	}

	log, err := logger.New("development", "error")
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck // Best-effort flush on exit

	executor := sandbox.New(log, &sandbox.Config{
		Interpreter:    cmd.String("interpreter"),
		MaxOutputBytes: int64(cmd.Int("max-output-kb")) * 1024,
	})

	out := executor.Execute(ctx, sandbox.Request{
		Code:       code,
		TimeoutSec: int(cmd.Int("timeout")),
	})

	if out.Stdout != "" {
		fmt.Fprintln(os.Stdout, out.Stdout)
	}
	if out.Stderr != "" {
		fmt.Fprintln(os.Stderr, out.Stderr)
	}
	printVerdict(out)

	return exitError(out)
}

// readCode loads the snippet from the named file, or from stdin when no
// file is given.
func readCode(path string) (string, error) {
	if path != "" {
		data, err := os.ReadFile(path) //nolint:gosec // Reading the user's own snippet file
		if err != nil {
			return "", fmt.Errorf("reading %s: %w", path, err)
		}
		return string(data), nil
	}

	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	return string(data), nil
}

func printVerdict(out sandbox.Outcome) {
	if out.Success {
		verdict := color.New(color.FgGreen, color.Bold).Sprint("OK")
		fmt.Fprintf(os.Stderr, "%s exit=0 elapsed=%dms", verdict, out.ElapsedMs)
		if out.Truncated {
			fmt.Fprint(os.Stderr, " (output truncated)")
		}
		fmt.Fprintln(os.Stderr)
		return
	}

	verdict := color.New(color.FgRed, color.Bold).Sprint("FAIL")
	fmt.Fprintf(os.Stderr, "%s %s exit=%d elapsed=%dms: %s\n",
		verdict, out.Failure, out.ExitCode, out.ElapsedMs, out.Message)
	if out.Help != "" {
		fmt.Fprintln(os.Stderr, out.Help)
	}
}

// exitError maps the outcome onto the process exit status: 0 for success,
// the child's own code for a non-zero exit, 124 for timeout, 1 otherwise.
func exitError(out sandbox.Outcome) error {
	switch {
	case out.Success:
		return nil
	case out.Failure == sandbox.FailureTimeout:
		return cli.Exit("", exitTimeout)
	case out.Failure == sandbox.FailureNonZeroExit && out.ExitCode > 0:
		return cli.Exit("", out.ExitCode)
	default:
		return cli.Exit("", 1)
	}
}
