package config

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/viper"

	"github.com/Norgate-AV/cppbind/internal/utils"
)

// Default configuration values
const (
	DefaultRepository     = "https://github.com/abseil/abseil-cpp.git"
	DefaultStagingDir     = "target"
	DefaultOutputDir      = "external"
	DefaultBindingFile    = "bindings.cpp"
	DefaultHeaderSubdir   = "absl"
	DefaultBuildType      = "Debug"
	DefaultCXXStandard    = "20"
	DefaultPlatform       = "x64"
	DefaultDenylistPrefix = "LOW_LEVEL_ALLOC"
	DefaultWrapperPolicy  = WrapperPolicyAll
)

// Wrapper policies decide which extracted signatures become wrapper stubs
const (
	WrapperPolicyAll     = "all"
	WrapperPolicyZeroArg = "zero-arg"
)

var (
	DefaultDefines            = []string{"-DABSL_USE_GOOGLETEST_HEAD=ON", "-DABSL_MSVC_STATIC_RUNTIME=ON"}
	DefaultHeaderExtensions   = []string{".h"}
	DefaultLibraryExtensions  = []string{".lib", ".pdb", ".exp"}
	DefaultStripSegments      = []string{"Debug", "Release", "RelWithDebInfo", "MinSizeRel"}
	DefaultAcceptedGenerators = []string{"Visual Studio 16 2019", "Visual Studio 17 2022"}

	buildTypes = []string{"Debug", "Release", "RelWithDebInfo", "MinSizeRel"}
)

// Holds the configuration options for a cppbind run
type Config struct {
	// Upstream git repository and optional branch or tag
	Repository string
	Ref        string

	// Staging root for the checkout and build tree
	StagingDir string

	// Output root for include/, lib/ and the binding file
	OutputDir string

	// Binding file name, relative to OutputDir unless absolute
	BindingFile string

	// Header folder inside the checkout (e.g. absl)
	HeaderSubdir string

	// CMake build configuration (Debug, Release, ...)
	BuildType string

	CXXStandard string

	// MSBuild platform passed to the build step
	Platform string

	// Optional CMake generator (-G)
	Generator string

	// Extra -D defines, in order
	Defines []string

	HeaderExtensions  []string
	LibraryExtensions []string

	// Path segments removed from collected library paths
	StripSegments []string

	// Signatures whose name starts with this prefix get no wrapper
	DenylistPrefix string

	AcceptedGenerators []string

	WrapperPolicy string

	NoCache bool
	NoColor bool
	Verbose bool
}

// SetDefaults registers default values with viper
func SetDefaults() {
	viper.SetDefault("repository", DefaultRepository)
	viper.SetDefault("staging_dir", DefaultStagingDir)
	viper.SetDefault("output_dir", DefaultOutputDir)
	viper.SetDefault("binding_file", DefaultBindingFile)
	viper.SetDefault("header_subdir", DefaultHeaderSubdir)
	viper.SetDefault("build_type", DefaultBuildType)
	viper.SetDefault("cxx_standard", DefaultCXXStandard)
	viper.SetDefault("platform", DefaultPlatform)
	viper.SetDefault("denylist_prefix", DefaultDenylistPrefix)
	viper.SetDefault("wrapper_policy", DefaultWrapperPolicy)
	viper.SetDefault("defines", DefaultDefines)
	viper.SetDefault("header_extensions", DefaultHeaderExtensions)
	viper.SetDefault("library_extensions", DefaultLibraryExtensions)
	viper.SetDefault("strip_segments", DefaultStripSegments)
	viper.SetDefault("accepted_generators", DefaultAcceptedGenerators)
}

func Load() (*Config, error) {
	cfg := &Config{
		Repository:         viper.GetString("repository"),
		Ref:                viper.GetString("ref"),
		StagingDir:         viper.GetString("staging_dir"),
		OutputDir:          viper.GetString("output_dir"),
		BindingFile:        viper.GetString("binding_file"),
		HeaderSubdir:       viper.GetString("header_subdir"),
		BuildType:          viper.GetString("build_type"),
		CXXStandard:        viper.GetString("cxx_standard"),
		Platform:           viper.GetString("platform"),
		Generator:          viper.GetString("generator"),
		Defines:            viper.GetStringSlice("defines"),
		HeaderExtensions:   viper.GetStringSlice("header_extensions"),
		LibraryExtensions:  viper.GetStringSlice("library_extensions"),
		StripSegments:      viper.GetStringSlice("strip_segments"),
		DenylistPrefix:     viper.GetString("denylist_prefix"),
		AcceptedGenerators: viper.GetStringSlice("accepted_generators"),
		WrapperPolicy:      viper.GetString("wrapper_policy"),
		NoCache:            viper.GetBool("no_cache"),
		NoColor:            viper.GetBool("no_color"),
		Verbose:            viper.GetBool("verbose"),
	}

	// Apply defaults if not set
	if cfg.Repository == "" {
		cfg.Repository = DefaultRepository
	}

	if cfg.StagingDir == "" {
		cfg.StagingDir = DefaultStagingDir
	}

	if cfg.OutputDir == "" {
		cfg.OutputDir = DefaultOutputDir
	}

	if cfg.BindingFile == "" {
		cfg.BindingFile = DefaultBindingFile
	}

	if cfg.BuildType == "" {
		cfg.BuildType = DefaultBuildType
	}

	if cfg.CXXStandard == "" {
		cfg.CXXStandard = DefaultCXXStandard
	}

	if cfg.Platform == "" {
		cfg.Platform = DefaultPlatform
	}

	if cfg.WrapperPolicy == "" {
		cfg.WrapperPolicy = DefaultWrapperPolicy
	}

	if len(cfg.HeaderExtensions) == 0 {
		cfg.HeaderExtensions = DefaultHeaderExtensions
	}

	if len(cfg.LibraryExtensions) == 0 {
		cfg.LibraryExtensions = DefaultLibraryExtensions
	}

	if len(cfg.AcceptedGenerators) == 0 {
		cfg.AcceptedGenerators = DefaultAcceptedGenerators
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.Repository) == "" {
		return fmt.Errorf("repository not specified")
	}

	if !slices.Contains(buildTypes, c.BuildType) {
		return fmt.Errorf("invalid build type: %s (expected one of %s)", c.BuildType, strings.Join(buildTypes, ", "))
	}

	if c.WrapperPolicy != WrapperPolicyAll && c.WrapperPolicy != WrapperPolicyZeroArg {
		return fmt.Errorf("invalid wrapper policy: %s", c.WrapperPolicy)
	}

	for _, d := range c.Defines {
		if !strings.HasPrefix(d, "-D") {
			return fmt.Errorf("invalid define %q: must start with -D", d)
		}
	}

	c.HeaderExtensions = normalizeExtensions(c.HeaderExtensions)
	c.LibraryExtensions = normalizeExtensions(c.LibraryExtensions)

	for _, dir := range []*string{&c.StagingDir, &c.OutputDir} {
		abs, err := filepath.Abs(*dir)
		if err != nil {
			return fmt.Errorf("invalid directory path: %v", err)
		}

		*dir = abs
	}

	return nil
}

// SourceDir is the upstream checkout directory
func (c *Config) SourceDir() string {
	return filepath.Join(c.StagingDir, utils.RepoName(c.Repository))
}

// BuildDir is the CMake build tree inside the checkout
func (c *Config) BuildDir() string {
	return filepath.Join(c.SourceDir(), "build")
}

// HeaderSourceDir is the upstream header root inside the checkout
func (c *Config) HeaderSourceDir() string {
	return filepath.Join(c.SourceDir(), c.HeaderSubdir)
}

// IncludeDir is the include root all generated #include paths are relative to
func (c *Config) IncludeDir() string {
	return filepath.Join(c.OutputDir, "include")
}

// LibDir receives the flat library artifacts
func (c *Config) LibDir() string {
	return filepath.Join(c.OutputDir, "lib")
}

// BindingPath is the generated binding file
func (c *Config) BindingPath() string {
	if filepath.IsAbs(c.BindingFile) {
		return c.BindingFile
	}

	return filepath.Join(c.OutputDir, c.BindingFile)
}

// CacheDir holds the build cache database
func (c *Config) CacheDir() string {
	return filepath.Join(c.StagingDir, ".cppbind-cache")
}

func normalizeExtensions(exts []string) []string {
	out := make([]string, 0, len(exts))
	for _, e := range exts {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}

		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}

		out = append(out, e)
	}

	return out
}
