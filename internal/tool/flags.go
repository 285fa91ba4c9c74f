package tool

import (
	"path/filepath"

	"github.com/Norgate-AV/cppbind/internal/config"
)

// Flags is an ordered, append-only argument list. Order is preserved because
// CMake and MSBuild treat some arguments positionally.
type Flags struct {
	args []string
}

// NewFlags creates a flag list seeded with args
func NewFlags(args ...string) *Flags {
	f := &Flags{}
	return f.Add(args...)
}

// Add appends args in order
func (f *Flags) Add(args ...string) *Flags {
	f.args = append(f.args, args...)
	return f
}

// Args returns a copy of the accumulated arguments
func (f *Flags) Args() []string {
	out := make([]string, len(f.args))
	copy(out, f.args)

	return out
}

func (f *Flags) Len() int {
	return len(f.args)
}

// ConfigureFlags builds the CMake configure arguments; the source directory
// ("..", relative to the build tree) is always last.
func ConfigureFlags(cfg *config.Config) *Flags {
	f := NewFlags()

	if cfg.Generator != "" {
		f.Add("-G", cfg.Generator)
	}

	f.Add(
		"-DCMAKE_CXX_STANDARD_REQUIRED=ON",
		"-DCMAKE_CXX_STANDARD="+cfg.CXXStandard,
		"-DCMAKE_BUILD_TYPE="+cfg.BuildType,
	)
	f.Add(cfg.Defines...)
	f.Add("..")

	return f
}

// BuildFlags builds the CMake --build arguments, with MSBuild options after "--"
func BuildFlags(cfg *config.Config) *Flags {
	return NewFlags(
		"--build", ".",
		"--config", cfg.BuildType,
		"--",
		"/p:Platform="+cfg.Platform,
		"/p:Configuration="+cfg.BuildType,
	)
}

// CloneInvocation clones the configured repository into the staging directory
func CloneInvocation(cfg *config.Config) Invocation {
	args := []string{"clone"}
	if cfg.Ref != "" {
		args = append(args, "--branch", cfg.Ref, "--depth", "1")
	}

	args = append(args, cfg.Repository, filepath.Base(cfg.SourceDir()))

	return Invocation{Name: "git", Args: args, Dir: cfg.StagingDir}
}

// ConfigureInvocation runs the CMake configure step inside the build tree
func ConfigureInvocation(cfg *config.Config, flags *Flags) Invocation {
	return Invocation{Name: "cmake", Args: flags.Args(), Dir: cfg.BuildDir()}
}

// BuildInvocation runs the CMake build step inside the build tree
func BuildInvocation(cfg *config.Config, flags *Flags) Invocation {
	return Invocation{Name: "cmake", Args: flags.Args(), Dir: cfg.BuildDir()}
}
