// Package gate validates the host toolchain before anything is cloned or built.
//
// Every failure is an environment error: the platform must be supported, git
// and CMake must meet their minimum versions, and CMake must offer one of the
// accepted Visual Studio generators.
package gate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/Norgate-AV/cppbind/internal/tool"
)

// ErrEnvironment is wrapped by every gate failure
var ErrEnvironment = errors.New("unsupported build environment")

// Runner runs a probe command and returns its captured output
type Runner interface {
	Run(ctx context.Context, inv tool.Invocation) (*tool.Result, error)
}

// Report lists what the gate found
type Report struct {
	Platform  Platform
	Versions  map[Tool]Version
	Generator string
}

// Gate checks the host platform and tool versions
type Gate struct {
	runner     Runner
	platform   Platform
	generators []string
	dir        string
}

// New creates a gate for the given host platform and accepted generators
func New(runner Runner, platform Platform, generators []string) *Gate {
	return &Gate{
		runner:     runner,
		platform:   platform,
		generators: generators,
	}
}

// InDir sets the working directory for probe commands
func (g *Gate) InDir(dir string) *Gate {
	g.dir = dir
	return g
}

// Check runs the platform check, then git and CMake version probes, then the
// generator probe. It stops at the first failure.
func (g *Gate) Check(ctx context.Context) (*Report, error) {
	if err := CheckPlatform(g.platform); err != nil {
		return nil, err
	}

	report := &Report{
		Platform: g.platform,
		Versions: make(map[Tool]Version, len(MinimumVersions)),
	}

	for _, t := range []Tool{Git, CMake} {
		res, err := g.runner.Run(ctx, tool.Invocation{Name: string(t), Args: []string{"--version"}, Dir: g.dir})
		if err != nil {
			return nil, fmt.Errorf("%w: %s not usable: %v", ErrEnvironment, t, err)
		}

		if err := Validate(res.Stdout, t); err != nil {
			return nil, err
		}

		report.Versions[t] = ParseVersion(res.Stdout)
	}

	res, err := g.runner.Run(ctx, tool.Invocation{Name: string(CMake), Args: []string{"-E", "capabilities"}, Dir: g.dir})
	if err != nil {
		return nil, fmt.Errorf("%w: cannot query CMake capabilities: %v", ErrEnvironment, err)
	}

	generator, err := ValidateGenerator(res.Stdout, g.generators)
	if err != nil {
		return nil, err
	}

	report.Generator = generator

	return report, nil
}

// CheckPlatform fails for any host other than SupportedPlatform
func CheckPlatform(p Platform) error {
	if p != SupportedPlatform {
		return fmt.Errorf("%w: platform %s not yet supported (requires %s)", ErrEnvironment, p, SupportedPlatform)
	}

	return nil
}

// Validate parses raw tool output and checks it against the minimum for t
func Validate(output string, t Tool) error {
	min, ok := MinimumVersions[t]
	if !ok {
		return fmt.Errorf("%w: no version policy for %s", ErrEnvironment, t)
	}

	found := ParseVersion(output)
	if found.IsZero() || !found.AtLeast(min) {
		return fmt.Errorf("%w: %s %s found, %s or newer required; please install, update, or repair %s",
			ErrEnvironment, t, found, min, t)
	}

	return nil
}

type capabilities struct {
	Generators []struct {
		Name string `json:"name"`
	} `json:"generators"`
}

// ValidateGenerator returns the first accepted generator that CMake reports.
// JSON output from `cmake -E capabilities` is decoded; anything else is searched as text.
func ValidateGenerator(output string, accepted []string) (string, error) {
	var caps capabilities
	if err := json.Unmarshal([]byte(output), &caps); err == nil && len(caps.Generators) > 0 {
		for _, want := range accepted {
			for _, g := range caps.Generators {
				if g.Name == want {
					return want, nil
				}
			}
		}
	} else {
		for _, want := range accepted {
			if strings.Contains(output, want) {
				return want, nil
			}
		}
	}

	return "", fmt.Errorf("%w: CMake reports no suitable generator (accepted: %s)", ErrEnvironment, strings.Join(accepted, ", "))
}
