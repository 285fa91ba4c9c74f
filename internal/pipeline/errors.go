package pipeline

import (
	"errors"
	"fmt"

	"github.com/Norgate-AV/cppbind/internal/codes"
)

// Kind classifies pipeline failures
type Kind int

const (
	// EnvironmentError: missing or old tool, unsupported platform or generator
	EnvironmentError Kind = iota + 1

	// ExternalToolError: non-zero exit from clone, configure or build
	ExternalToolError

	// GatherIOError: traversal or copy failure while collecting artifacts.
	// Never fatal.
	GatherIOError

	// EmissionIOError: the binding file cannot be produced
	EmissionIOError
)

func (k Kind) String() string {
	switch k {
	case EnvironmentError:
		return "environment error"
	case ExternalToolError:
		return "external tool error"
	case GatherIOError:
		return "gather I/O error"
	case EmissionIOError:
		return "emission I/O error"
	default:
		return "unknown error"
	}
}

// ExitCode maps the kind to a process exit code
func (k Kind) ExitCode() int {
	switch k {
	case EnvironmentError:
		return codes.Environment
	case ExternalToolError:
		return codes.ExternalTool
	case EmissionIOError:
		return codes.Emission
	default:
		return codes.General
	}
}

// Stage names a pipeline step
type Stage string

const (
	StageVersionGate     Stage = "version-gate"
	StagePrepare         Stage = "prepare"
	StageClone           Stage = "clone"
	StageConfigure       Stage = "configure"
	StageBuild           Stage = "build"
	StageGatherLibraries Stage = "gather-libraries"
	StageGatherHeaders   Stage = "gather-headers"
	StageEmit            Stage = "generate-bindings"
)

// Error is a failure attributed to a pipeline stage
type Error struct {
	Stage Stage
	Kind  Kind
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s failed (%s): %v", e.Stage, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func fail(stage Stage, kind Kind, err error) *Error {
	return &Error{Stage: stage, Kind: kind, Err: err}
}

// ExitCode returns the process exit code for err
func ExitCode(err error) int {
	if err == nil {
		return codes.Success
	}

	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind.ExitCode()
	}

	return codes.General
}
