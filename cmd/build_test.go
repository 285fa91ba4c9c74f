package cmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Norgate-AV/cppbind/internal/codes"
	"github.com/Norgate-AV/cppbind/internal/gate"
	"github.com/Norgate-AV/cppbind/internal/output"
	"github.com/Norgate-AV/cppbind/internal/pipeline"
	"github.com/Norgate-AV/cppbind/internal/tool"
	"github.com/Norgate-AV/cppbind/internal/version"
)

// stubRunner answers gate probes and succeeds for everything else
type stubRunner struct {
	outputs map[string]string
	calls   []string
}

func newStubRunner() *stubRunner {
	return &stubRunner{
		outputs: map[string]string{
			"git --version":         "git version 2.45.1.windows.1",
			"cmake --version":       "cmake version 3.31.0",
			"cmake -E capabilities": `{"generators":[{"name":"Visual Studio 17 2022"}]}`,
		},
	}
}

func (s *stubRunner) Run(_ context.Context, inv tool.Invocation) (*tool.Result, error) {
	s.calls = append(s.calls, inv.String())
	return &tool.Result{Stdout: s.outputs[inv.String()]}, nil
}

func stubTools(t *testing.T, r pipeline.Runner, platform gate.Platform) {
	t.Helper()

	origRunner, origPlatform := newRunner, hostPlatform
	t.Cleanup(func() {
		newRunner, hostPlatform = origRunner, origPlatform
	})

	newRunner = func(*output.Logger) pipeline.Runner { return r }
	hostPlatform = func() gate.Platform { return platform }
}

func resetFlags(c *cobra.Command) {
	for _, fs := range []*pflag.FlagSet{c.Flags(), c.PersistentFlags()} {
		fs.VisitAll(func(f *pflag.Flag) {
			_ = f.Value.Set(f.DefValue)
			f.Changed = false
		})
	}

	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// execute runs the CLI with args in isolation from user configuration
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	viper.Reset()
	t.Setenv("APPDATA", t.TempDir())
	resetFlags(rootCmd)

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)

	err := rootCmd.ExecuteContext(context.Background())

	return out.String(), errOut.String(), err
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

var windows = gate.Platform{OS: "windows", Arch: "amd64"}

func TestRunBuild(t *testing.T) {
	r := newStubRunner()
	stubTools(t, r, windows)

	dir := t.TempDir()
	staging := filepath.Join(dir, "target")
	outDir := filepath.Join(dir, "external")

	stdout, stderr, err := execute(t, "build", "--staging-dir", staging, "--output-dir", outDir, "--no-cache")
	require.NoError(t, err)

	assert.Contains(t, r.calls, "git clone https://github.com/abseil/abseil-cpp.git abseil-cpp")
	assert.Contains(t, r.calls, "cmake --build . --config Debug -- /p:Platform=x64 /p:Configuration=Debug")
	assert.Contains(t, stdout, "Done")

	// Nothing was really built, so gathering only warns
	assert.Contains(t, stderr, "Warning:")
	assert.FileExists(t, filepath.Join(outDir, "bindings.cpp"))
	assert.NoDirExists(t, filepath.Join(staging, ".cppbind-cache"))
}

func TestRunBuild_UnsupportedPlatform(t *testing.T) {
	r := newStubRunner()
	stubTools(t, r, gate.Platform{OS: "linux", Arch: "arm64"})

	staging := filepath.Join(t.TempDir(), "target")

	_, _, err := execute(t, "build", "--staging-dir", staging)
	require.Error(t, err)

	assert.Equal(t, codes.Environment, exitCode(err))
	assert.Empty(t, r.calls)
	assert.NoDirExists(t, staging)
}

func TestRunBuild_InvalidBuildType(t *testing.T) {
	stubTools(t, newStubRunner(), windows)

	_, _, err := execute(t, "build", "-b", "Profile", "--staging-dir", t.TempDir())
	require.Error(t, err)

	assert.Equal(t, codes.Configuration, exitCode(err))
	assert.Contains(t, err.Error(), "invalid build type")
}

func TestRunBuild_RejectsArguments(t *testing.T) {
	_, _, err := execute(t, "build", "extra")
	assert.Error(t, err)
}

func TestRunDoctor(t *testing.T) {
	r := newStubRunner()
	stubTools(t, r, windows)

	stdout, _, err := execute(t, "doctor", "--staging-dir", t.TempDir())
	require.NoError(t, err)

	assert.Contains(t, stdout, "2.45.1")
	assert.Contains(t, stdout, "3.31.0")
	assert.Contains(t, stdout, "Generator: Visual Studio 17 2022")
	assert.NotContains(t, r.calls, "git clone https://github.com/abseil/abseil-cpp.git abseil-cpp")
}

func TestRunDoctor_OldCMake(t *testing.T) {
	r := newStubRunner()
	r.outputs["cmake --version"] = "cmake version 3.28.3"
	stubTools(t, r, windows)

	_, _, err := execute(t, "doctor")
	require.Error(t, err)

	assert.Equal(t, codes.Environment, exitCode(err))
	assert.ErrorIs(t, err, gate.ErrEnvironment)
	assert.Contains(t, err.Error(), "3.31.0 or newer required")
}

func TestRunBindgen(t *testing.T) {
	outDir := t.TempDir()
	header := filepath.Join(outDir, "include", "absl", "base", "a.h")
	writeFile(t, header, "int a();\n")

	_, _, err := execute(t, "bindgen", "--output-dir", outDir)
	require.NoError(t, err)

	binding := filepath.Join(outDir, "bindings.cpp")
	before, err := os.ReadFile(binding)
	require.NoError(t, err)
	assert.Contains(t, string(before), `#include "absl/base/a.h"`)
	assert.Contains(t, string(before), "  int a_wrapper() { return a(); }")

	// Up to date
	stdout, _, err := execute(t, "bindgen", "--diff", "--output-dir", outDir)
	require.NoError(t, err)
	assert.Contains(t, stdout, "up to date")

	// A new declaration makes the file stale; --diff must not write it
	writeFile(t, header, "int a();\nint b();\n")

	stdout, _, err = execute(t, "bindgen", "--diff", "--output-dir", outDir)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errOutOfDate))
	assert.Equal(t, codes.OutOfDate, exitCode(err))
	assert.Contains(t, stdout, "+  int b_wrapper() { return b(); }")

	after, err := os.ReadFile(binding)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestDiffBindings(t *testing.T) {
	diff, err := diffBindings("bindings.cpp", "a\nb\n", "a\nb\n")
	require.NoError(t, err)
	assert.Empty(t, diff)

	diff, err = diffBindings("bindings.cpp", "a\nb\n", "a\nc\n")
	require.NoError(t, err)
	assert.Contains(t, diff, "--- bindings.cpp\n")
	assert.Contains(t, diff, "+++ bindings.cpp (generated)\n")
	assert.Contains(t, diff, "-b\n")
	assert.Contains(t, diff, "+c\n")
}

func TestCacheCommands(t *testing.T) {
	stubTools(t, newStubRunner(), windows)

	dir := t.TempDir()
	staging := filepath.Join(dir, "target")
	outDir := filepath.Join(dir, "external")

	_, _, err := execute(t, "build", "--staging-dir", staging, "--output-dir", outDir)
	require.NoError(t, err)

	stdout, _, err := execute(t, "cache", "stats", "--staging-dir", staging)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Entries: 1")
	assert.Contains(t, stdout, "Latest:")

	_, _, err = execute(t, "cache", "clear", "--staging-dir", staging)
	require.NoError(t, err)

	stdout, _, err = execute(t, "cache", "stats", "--staging-dir", staging)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Entries: 0")
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"plain error", errors.New("boom"), codes.General},
		{"explicit code", withCode(codes.Configuration, errors.New("bad")), codes.Configuration},
		{"pipeline error", &pipeline.Error{Kind: pipeline.ExternalToolError, Err: errors.New("exit 1")}, codes.ExternalTool},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCode(tt.err))
		})
	}
}

func TestVersionString(t *testing.T) {
	assert.Contains(t, rootCmd.Version, version.Version)
}
