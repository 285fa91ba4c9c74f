package config

import (
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		setupViper  func()
		check       func(*testing.T, *Config)
		wantErr     bool
		errContains string
	}{
		{
			name: "load with all defaults",
			setupViper: func() {
				viper.Reset()
				SetDefaults()
			},
			check: func(t *testing.T, cfg *Config) {
				abs, _ := filepath.Abs(DefaultStagingDir)
				assert.Equal(t, abs, cfg.StagingDir)
				assert.Equal(t, DefaultRepository, cfg.Repository)
				assert.Equal(t, DefaultBuildType, cfg.BuildType)
				assert.Equal(t, []string{".h"}, cfg.HeaderExtensions)
				assert.Equal(t, []string{".lib", ".pdb", ".exp"}, cfg.LibraryExtensions)
				assert.Equal(t, DefaultStripSegments, cfg.StripSegments)
				assert.Equal(t, DefaultAcceptedGenerators, cfg.AcceptedGenerators)
				assert.Equal(t, WrapperPolicyAll, cfg.WrapperPolicy)
				assert.Equal(t, "LOW_LEVEL_ALLOC", cfg.DenylistPrefix)
			},
		},
		{
			name: "load with nothing set falls back to defaults",
			setupViper: func() {
				viper.Reset()
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, DefaultRepository, cfg.Repository)
				assert.Equal(t, DefaultBuildType, cfg.BuildType)
				assert.Equal(t, DefaultCXXStandard, cfg.CXXStandard)
				assert.Equal(t, DefaultPlatform, cfg.Platform)
			},
		},
		{
			name: "load with custom values",
			setupViper: func() {
				viper.Reset()
				SetDefaults()
				viper.Set("repository", "https://example.com/acme/widgets.git")
				viper.Set("ref", "v1.2.3")
				viper.Set("build_type", "Release")
				viper.Set("header_extensions", []string{"H", ".hpp"})
				viper.Set("defines", []string{"-DBUILD_TESTING=OFF"})
				viper.Set("wrapper_policy", WrapperPolicyZeroArg)
				viper.Set("verbose", true)
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "https://example.com/acme/widgets.git", cfg.Repository)
				assert.Equal(t, "v1.2.3", cfg.Ref)
				assert.Equal(t, "Release", cfg.BuildType)
				assert.Equal(t, []string{".h", ".hpp"}, cfg.HeaderExtensions)
				assert.Equal(t, []string{"-DBUILD_TESTING=OFF"}, cfg.Defines)
				assert.Equal(t, WrapperPolicyZeroArg, cfg.WrapperPolicy)
				assert.True(t, cfg.Verbose)
				assert.Equal(t, "widgets", filepath.Base(cfg.SourceDir()))
			},
		},
		{
			name: "invalid build type",
			setupViper: func() {
				viper.Reset()
				viper.Set("build_type", "Fast")
			},
			wantErr:     true,
			errContains: "invalid build type",
		},
		{
			name: "invalid wrapper policy",
			setupViper: func() {
				viper.Reset()
				viper.Set("wrapper_policy", "some")
			},
			wantErr:     true,
			errContains: "invalid wrapper policy",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setupViper()

			cfg, err := Load()

			if tt.wantErr {
				require.Error(t, err)
				if tt.errContains != "" {
					assert.Contains(t, err.Error(), tt.errContains)
				}
				return
			}

			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		config      *Config
		wantErr     bool
		errContains string
		checkFields func(*testing.T, *Config)
	}{
		{
			name: "relative paths are resolved",
			config: &Config{
				Repository:    DefaultRepository,
				StagingDir:    "target",
				OutputDir:     "external",
				BuildType:     "Debug",
				WrapperPolicy: WrapperPolicyAll,
			},
			checkFields: func(t *testing.T, cfg *Config) {
				assert.True(t, filepath.IsAbs(cfg.StagingDir))
				assert.True(t, filepath.IsAbs(cfg.OutputDir))
			},
		},
		{
			name: "empty repository",
			config: &Config{
				Repository:    "  ",
				BuildType:     "Debug",
				WrapperPolicy: WrapperPolicyAll,
			},
			wantErr:     true,
			errContains: "repository not specified",
		},
		{
			name: "define without -D prefix",
			config: &Config{
				Repository:    DefaultRepository,
				BuildType:     "Debug",
				WrapperPolicy: WrapperPolicyAll,
				Defines:       []string{"BUILD_TESTING=OFF"},
			},
			wantErr:     true,
			errContains: "must start with -D",
		},
		{
			name: "extensions are normalized",
			config: &Config{
				Repository:        DefaultRepository,
				BuildType:         "MinSizeRel",
				WrapperPolicy:     WrapperPolicyAll,
				HeaderExtensions:  []string{"h", " .HPP ", ""},
				LibraryExtensions: []string{"LIB"},
			},
			checkFields: func(t *testing.T, cfg *Config) {
				assert.Equal(t, []string{".h", ".hpp"}, cfg.HeaderExtensions)
				assert.Equal(t, []string{".lib"}, cfg.LibraryExtensions)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()

			if tt.wantErr {
				require.Error(t, err)
				if tt.errContains != "" {
					assert.Contains(t, err.Error(), tt.errContains)
				}
				return
			}

			require.NoError(t, err)
			if tt.checkFields != nil {
				tt.checkFields(t, tt.config)
			}
		})
	}
}

func TestConfig_Layout(t *testing.T) {
	root := t.TempDir()
	cfg := &Config{
		Repository:   DefaultRepository,
		StagingDir:   filepath.Join(root, "target"),
		OutputDir:    filepath.Join(root, "external"),
		BindingFile:  DefaultBindingFile,
		HeaderSubdir: "absl",
	}

	assert.Equal(t, filepath.Join(root, "target", "abseil-cpp"), cfg.SourceDir())
	assert.Equal(t, filepath.Join(root, "target", "abseil-cpp", "build"), cfg.BuildDir())
	assert.Equal(t, filepath.Join(root, "target", "abseil-cpp", "absl"), cfg.HeaderSourceDir())
	assert.Equal(t, filepath.Join(root, "external", "include"), cfg.IncludeDir())
	assert.Equal(t, filepath.Join(root, "external", "lib"), cfg.LibDir())
	assert.Equal(t, filepath.Join(root, "external", "bindings.cpp"), cfg.BindingPath())

	abs := filepath.Join(root, "elsewhere", "out.cpp")
	cfg.BindingFile = abs
	assert.Equal(t, abs, cfg.BindingPath())
}
