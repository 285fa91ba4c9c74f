package tool

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

// Commander interface for testing
type Commander interface {
	Run() error
}

// Invocation is one external program call
type Invocation struct {
	Name string
	Args []string
	Dir  string
}

func (i Invocation) String() string {
	if len(i.Args) == 0 {
		return i.Name
	}

	return i.Name + " " + strings.Join(i.Args, " ")
}

// Result holds the captured output of a finished invocation
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Error reports a failed or non-zero exit from an external tool
type Error struct {
	Invocation Invocation
	ExitCode   int
	Stderr     string
	Err        error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s failed", e.Invocation.Name)
	if e.ExitCode >= 0 {
		msg = fmt.Sprintf("%s exited with code %d", e.Invocation.Name, e.ExitCode)
	}

	if s := strings.TrimSpace(e.Stderr); s != "" {
		return msg + ": " + s
	}

	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}

	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Runner executes external tools and captures their output
type Runner struct {
	execCommand func(ctx context.Context, inv Invocation, stdout, stderr io.Writer) Commander
	stream      io.Writer
}

// NewRunner creates a new runner backed by os/exec
func NewRunner() *Runner {
	return &Runner{
		execCommand: func(ctx context.Context, inv Invocation, stdout, stderr io.Writer) Commander {
			cmd := exec.CommandContext(ctx, inv.Name, inv.Args...)
			cmd.Dir = inv.Dir
			cmd.Stdout = stdout
			cmd.Stderr = stderr

			return cmd
		},
	}
}

// WithStream mirrors tool output to w as it is produced
func (r *Runner) WithStream(w io.Writer) *Runner {
	r.stream = w
	return r
}

// Run executes inv and blocks until it exits. A non-zero exit is returned as *Error.
func (r *Runner) Run(ctx context.Context, inv Invocation) (*Result, error) {
	var stdout, stderr bytes.Buffer

	var outW, errW io.Writer = &stdout, &stderr
	if r.stream != nil {
		outW = io.MultiWriter(&stdout, r.stream)
		errW = io.MultiWriter(&stderr, r.stream)
	}

	err := r.execCommand(ctx, inv, outW, errW).Run()

	res := &Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if err != nil {
		code := -1

		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			code = exitErr.ExitCode()
		}

		res.ExitCode = code

		return res, &Error{
			Invocation: inv,
			ExitCode:   code,
			Stderr:     res.Stderr,
			Err:        err,
		}
	}

	return res, nil
}

// PrintInvocation prints verbose information about an invocation
func PrintInvocation(w io.Writer, inv Invocation) {
	fmt.Fprintf(w, "Running command: %s\nDirectory: %s\n", inv, inv.Dir)
}
