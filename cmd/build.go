package cmd

import (
	"github.com/spf13/cobra"

	"github.com/Norgate-AV/cppbind/internal/pipeline"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Run the full pipeline",
	Long: `Check the toolchain, clone and build the upstream repository, collect its
libraries and headers, and generate the binding file.`,
	RunE:         runBuild,
	SilenceUsage: true,
	Args:         cobra.NoArgs,
}

func runBuild(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	log.Debug("Repository: %s\nStaging: %s\nOutput: %s\nBuild type: %s",
		cfg.Repository, cfg.StagingDir, cfg.OutputDir, cfg.BuildType)

	p := pipeline.New(cfg,
		pipeline.WithLogger(log),
		pipeline.WithRunner(newRunner(log)),
		pipeline.WithPlatform(hostPlatform()),
		pipeline.WithCacheDir(cfg.CacheDir()),
	)

	report, err := p.Run(cmd.Context())
	if err != nil {
		return err
	}

	if report.Warnings > 0 {
		log.Warn("completed with %d warnings; output may be incomplete", report.Warnings)
	}

	log.Success("Done")

	return nil
}
