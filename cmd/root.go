package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/Norgate-AV/cppbind/internal/codes"
	"github.com/Norgate-AV/cppbind/internal/config"
	"github.com/Norgate-AV/cppbind/internal/output"
	"github.com/Norgate-AV/cppbind/internal/pipeline"
	"github.com/Norgate-AV/cppbind/internal/tool"
	"github.com/Norgate-AV/cppbind/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "cppbind",
	Short: "Build a C++ library and generate C bindings for it",
	Long: `Fetch and build a native C++ dependency (abseil-cpp by default) with CMake,
collect its libraries and headers, and generate a flat extern "C" binding file.`,
	RunE:          runBuild,
	SilenceUsage:  true,
	SilenceErrors: true,
	Args:          cobra.NoArgs,
}

// Hooks for tests
var (
	newRunner = func(log *output.Logger) pipeline.Runner {
		r := tool.NewRunner()
		if log.Verbose() {
			r.WithStream(log.Writer())
		}

		return r
	}

	hostPlatform = pipeline.HostPlatform
)

// exitError carries an explicit process exit code
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	return e.err.Error()
}

func (e *exitError) Unwrap() error {
	return e.err
}

func withCode(code int, err error) error {
	return &exitError{code: code, err: err}
}

// exitCode returns the process exit code for an error returned by a command
func exitCode(err error) int {
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}

	return pipeline.ExitCode(err)
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		code := exitCode(err)
		output.NewLogger().Error("%v (%s)", err, codes.GetErrorMessage(code))
		stop()
		os.Exit(code)
	}
}

// loadConfig resolves the layered configuration for cmd and a logger set up from it
func loadConfig(cmd *cobra.Command) (*config.Config, *output.Logger, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get working directory: %w", err)
	}

	cfg, err := config.NewLoader().LoadForRun(cmd, wd)
	if err != nil {
		return nil, nil, withCode(codes.Configuration, fmt.Errorf("failed to load configuration: %w", err))
	}

	log := output.NewLoggerTo(cmd.OutOrStdout(), cmd.ErrOrStderr())
	log.SetNoColor(cfg.NoColor)
	log.SetVerbose(cfg.Verbose)

	return cfg, log, nil
}

func init() {
	rootCmd.Version = fmt.Sprintf("%s (%s) %s", version.Version, version.Commit, version.BuildTime)
	rootCmd.PersistentFlags().String("repo", "", "Upstream git repository")
	rootCmd.PersistentFlags().String("ref", "", "Branch or tag to clone (shallow)")
	rootCmd.PersistentFlags().String("staging-dir", "", "Directory for the checkout and build tree")
	rootCmd.PersistentFlags().StringP("output-dir", "o", "", "Directory for libraries, headers and bindings")
	rootCmd.PersistentFlags().StringP("build-type", "b", "", "CMake build type (Debug, Release, RelWithDebInfo, MinSizeRel)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().Bool("no-cache", false, "Disable build cache")
	rootCmd.PersistentFlags().Bool("no-color", false, "Disable colored output")
	rootCmd.AddCommand(buildCmd, doctorCmd, bindgenCmd, cacheCmd)
}
