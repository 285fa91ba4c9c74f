package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/spf13/cobra"

	"github.com/Norgate-AV/cppbind/internal/codes"
	"github.com/Norgate-AV/cppbind/internal/emit"
	"github.com/Norgate-AV/cppbind/internal/pipeline"
)

var errOutOfDate = errors.New("generated bindings are out of date")

var bindgenCmd = &cobra.Command{
	Use:   "bindgen",
	Short: "Regenerate the binding file from collected headers",
	Long: `Generate the binding file from the headers already collected into the output
directory, without building anything. With --diff nothing is written; the
differences to the existing file are printed and the exit status is non-zero
when they differ.`,
	RunE:         runBindgen,
	SilenceUsage: true,
	Args:         cobra.NoArgs,
}

func init() {
	bindgenCmd.Flags().Bool("diff", false, "Show changes instead of writing the binding file")
}

func runBindgen(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	emitter := emit.NewFromConfig(cfg, log)

	showDiff, _ := cmd.Flags().GetBool("diff")
	if !showDiff {
		summary, err := emitter.Emit(cfg.IncludeDir(), cfg.BindingPath())
		if err != nil {
			return &pipeline.Error{Stage: pipeline.StageEmit, Kind: pipeline.EmissionIOError, Err: err}
		}

		log.Success("Generated %d wrappers for %d headers at %s", summary.Wrappers, summary.Headers, summary.Path)

		return nil
	}

	binding, err := emitter.Scan(cfg.IncludeDir())
	if err != nil {
		return &pipeline.Error{Stage: pipeline.StageEmit, Kind: pipeline.EmissionIOError, Err: err}
	}

	fresh, _, err := emitter.Bytes(binding)
	if err != nil {
		return &pipeline.Error{Stage: pipeline.StageEmit, Kind: pipeline.EmissionIOError, Err: err}
	}

	current, err := os.ReadFile(cfg.BindingPath())
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to read %s: %w", cfg.BindingPath(), err)
	}

	diff, err := diffBindings(cfg.BindingPath(), string(current), string(fresh))
	if err != nil {
		return err
	}

	if diff == "" {
		log.Success("%s is up to date", cfg.BindingPath())
		return nil
	}

	fmt.Fprint(cmd.OutOrStdout(), diff)

	return withCode(codes.OutOfDate, errOutOfDate)
}

// diffBindings returns a unified diff from the existing binding file to the
// freshly generated content, or "" when they match
func diffBindings(path, current, fresh string) (string, error) {
	if current == fresh {
		return "", nil
	}

	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(current),
		B:        difflib.SplitLines(fresh),
		FromFile: path,
		ToFile:   path + " (generated)",
		Context:  3,
	})
}
