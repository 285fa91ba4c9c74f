package cmd

import (
	"github.com/spf13/cobra"

	"github.com/Norgate-AV/cppbind/internal/gate"
	"github.com/Norgate-AV/cppbind/internal/pipeline"
)

var doctorCmd = &cobra.Command{
	Use:          "doctor",
	Short:        "Check the build environment",
	Long:         `Verify the host platform, git and CMake versions, and the available Visual Studio generator.`,
	RunE:         runDoctor,
	SilenceUsage: true,
	Args:         cobra.NoArgs,
}

func runDoctor(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	report, err := gate.New(newRunner(log), hostPlatform(), cfg.AcceptedGenerators).Check(cmd.Context())
	if err != nil {
		return &pipeline.Error{Stage: pipeline.StageVersionGate, Kind: pipeline.EnvironmentError, Err: err}
	}

	log.Info("Platform:  %s", report.Platform)

	for _, t := range []gate.Tool{gate.Git, gate.CMake} {
		log.Info("%-10s %s (minimum %s)", string(t)+":", report.Versions[t], gate.MinimumVersions[t])
	}

	log.Info("Generator: %s", report.Generator)
	log.Success("Build environment is ready")

	return nil
}
