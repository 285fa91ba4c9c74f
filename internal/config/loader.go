package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// flagKeys maps command-line flag names to viper keys
var flagKeys = map[string]string{
	"repo":        "repository",
	"ref":         "ref",
	"staging-dir": "staging_dir",
	"output-dir":  "output_dir",
	"build-type":  "build_type",
	"verbose":     "verbose",
	"no-cache":    "no_cache",
	"no-color":    "no_color",
}

// Loader handles configuration loading from various sources
type Loader struct{}

// NewLoader creates a new configuration loader
func NewLoader() *Loader {
	return &Loader{}
}

// LoadForRun loads configuration for a pipeline run started in workDir
func (l *Loader) LoadForRun(cmd *cobra.Command, workDir string) (*Config, error) {
	l.setupViperDefaults()
	l.loadGlobalConfig()
	l.loadLocalConfig(workDir)
	l.bindCommandFlags(cmd)

	return Load()
}

// setupViperDefaults sets up default values for viper
func (l *Loader) setupViperDefaults() {
	SetDefaults()
}

// loadGlobalConfig loads the per-user configuration
func (l *Loader) loadGlobalConfig() {
	globalDir := GlobalConfigDir()
	if globalDir == "" {
		return
	}

	for _, ext := range configExtensions {
		globalPath := filepath.Join(globalDir, "config."+ext)

		if _, err := os.Stat(globalPath); err == nil {
			viper.SetConfigFile(globalPath)

			if err := viper.MergeInConfig(); err == nil {
				break
			}
		}
	}
}

// loadLocalConfig merges the nearest .cppbind.* file at or above workDir
func (l *Loader) loadLocalConfig(workDir string) {
	if workDir == "" {
		return
	}

	abs, err := filepath.Abs(workDir)
	if err != nil {
		return // config.Load() validates what is left
	}

	localPath := FindLocalConfig(abs)
	if localPath != "" {
		viper.SetConfigFile(localPath)
		_ = viper.MergeInConfig()
	}
}

// bindCommandFlags binds command flags to viper
func (l *Loader) bindCommandFlags(cmd *cobra.Command) {
	if cmd == nil {
		return
	}

	for name, key := range flagKeys {
		if f := cmd.Flags().Lookup(name); f != nil {
			_ = viper.BindPFlag(key, f)
		}
	}
}
