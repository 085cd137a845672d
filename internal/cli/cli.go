package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	appLog "csv2ics/internal/log"
)

const (
	ExitSuccess           = 0
	ExitFailure           = 1
	ExitInvalidInvocation = 2
)

// InvocationError carries the exit code a failed command should produce.
type InvocationError struct {
	ExitCode int
	Message  string
	Err      error
}

func (e *InvocationError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *InvocationError) Unwrap() error { return e.Err }

func invalidInvocationf(format string, args ...any) error {
	return &InvocationError{ExitCode: ExitInvalidInvocation, Message: fmt.Sprintf(format, args...)}
}

func failure(msg string, err error) error {
	return &InvocationError{ExitCode: ExitFailure, Message: msg, Err: err}
}

// Env abstracts the process environment so commands can be tested.
type Env struct {
	Stdout io.Writer
	Stderr io.Writer
	Lookup func(string) (string, bool)
}

// OSEnv is the real process environment.
func OSEnv() Env {
	return Env{Stdout: os.Stdout, Stderr: os.Stderr, Lookup: os.LookupEnv}
}

// NewRootCommand builds the command tree.
func NewRootCommand(env Env) *cobra.Command {
	root := newConvertCommand(env)
	root.AddCommand(newInspectCommand())
	root.AddCommand(newConfigCommand(env))
	return root
}

// Execute runs the command line args and returns the process exit code.
func Execute(args []string, env Env) int {
	root := NewRootCommand(env)
	root.SetArgs(args)
	root.SetOut(env.Stdout)
	root.SetErr(env.Stderr)

	err := root.Execute()
	if err == nil {
		return ExitSuccess
	}

	var invErr *InvocationError
	if errors.As(err, &invErr) {
		if invErr.ExitCode == ExitInvalidInvocation {
			fmt.Fprintln(env.Stderr, invErr.Message)
		} else {
			appLog.Error(invErr.Message, invErr.Err)
		}
		return invErr.ExitCode
	}

	// Flag and argument errors raised by cobra itself.
	fmt.Fprintln(env.Stderr, err)
	return ExitInvalidInvocation
}
