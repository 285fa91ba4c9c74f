// Package pipeline drives one cppbind run:
//
//	version gate -> clone -> configure -> build -> gather libraries ->
//	gather headers -> generate bindings
//
// The run is strictly sequential. Environment, external tool and emission
// failures abort the run with an *Error naming the stage; gather failures are
// reported as warnings and the run continues with whatever was collected.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/google/uuid"

	"github.com/Norgate-AV/cppbind/internal/cache"
	"github.com/Norgate-AV/cppbind/internal/collect"
	"github.com/Norgate-AV/cppbind/internal/config"
	"github.com/Norgate-AV/cppbind/internal/emit"
	"github.com/Norgate-AV/cppbind/internal/gate"
	"github.com/Norgate-AV/cppbind/internal/output"
	"github.com/Norgate-AV/cppbind/internal/tool"
)

// Runner executes external tools
type Runner interface {
	Run(ctx context.Context, inv tool.Invocation) (*tool.Result, error)
}

// Report summarises a completed run
type Report struct {
	RunID        string
	Environment  *gate.Report
	CacheHit     bool
	CloneSkipped bool
	Libraries    *collect.Result
	Headers      *collect.Result
	Binding      *emit.Summary
	Warnings     int
}

// Pipeline runs the stages for one configuration
type Pipeline struct {
	cfg       *config.Config
	runner    Runner
	platform  gate.Platform
	log       *output.Logger
	cacheDir  string
	collector *collect.Collector
	emitter   *emit.Emitter
}

// Option customises a Pipeline
type Option func(*Pipeline)

// WithRunner replaces the os/exec runner
func WithRunner(r Runner) Option {
	return func(p *Pipeline) { p.runner = r }
}

// WithPlatform overrides the detected host platform
func WithPlatform(platform gate.Platform) Option {
	return func(p *Pipeline) { p.platform = platform }
}

// WithLogger sets the logger
func WithLogger(log *output.Logger) Option {
	return func(p *Pipeline) { p.log = log }
}

// WithCacheDir enables the build cache stored in dir
func WithCacheDir(dir string) Option {
	return func(p *Pipeline) { p.cacheDir = dir }
}

// HostPlatform returns the platform this process runs on
func HostPlatform() gate.Platform {
	return gate.Platform{OS: runtime.GOOS, Arch: runtime.GOARCH}
}

// New creates a pipeline for cfg
func New(cfg *config.Config, opts ...Option) *Pipeline {
	p := &Pipeline{
		cfg:      cfg,
		platform: HostPlatform(),
		log:      output.NewLogger(),
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.runner == nil {
		p.runner = tool.NewRunner()
	}

	p.collector = collect.New(p.log)
	p.emitter = emit.NewFromConfig(cfg, p.log)

	return p
}

// Run executes every stage in order
func (p *Pipeline) Run(ctx context.Context) (*Report, error) {
	report := &Report{RunID: uuid.NewString()}
	p.log.Debug("run %s", report.RunID)

	p.log.Step("Checking build environment")
	env, err := gate.New(p.runner, p.platform, p.cfg.AcceptedGenerators).Check(ctx)
	if err != nil {
		return report, fail(StageVersionGate, EnvironmentError, err)
	}

	report.Environment = env
	for _, t := range []gate.Tool{gate.Git, gate.CMake} {
		p.log.Info("Found %s %s", t, env.Versions[t])
	}

	p.log.Info("Found generator %s", env.Generator)

	if err := os.MkdirAll(p.cfg.StagingDir, 0o755); err != nil {
		return report, fail(StagePrepare, EnvironmentError, fmt.Errorf("failed to create staging directory: %w", err))
	}

	c := p.openCache()
	if c != nil {
		defer c.Close()
	}

	key := cache.NewKey(p.cfg, toolVersions(env))
	report.CacheHit = p.lookup(c, key)

	if report.CacheHit {
		p.log.Success("Reusing cached build of %s", p.cfg.Repository)
	} else {
		skipped, err := p.build(ctx)
		report.CloneSkipped = skipped
		if err != nil {
			return report, err
		}
	}

	p.log.Step("Gathering libraries")
	report.Libraries = p.gather(StageGatherLibraries, p.cfg.BuildDir(), p.cfg.LibDir(), collect.Options{
		Predicate: collect.All(
			collect.HasExtension(p.cfg.LibraryExtensions...),
			collect.UnderSegment(p.cfg.BuildType),
		),
		StripSegments: p.cfg.StripSegments,
		Flatten:       true,
	})
	report.Warnings += len(report.Libraries.Failed())
	p.log.Info("Collected %d libraries into %s", len(report.Libraries.Copied()), p.cfg.LibDir())

	p.log.Step("Gathering headers")
	report.Headers = p.gather(StageGatherHeaders, p.cfg.HeaderSourceDir(), filepath.Join(p.cfg.IncludeDir(), p.cfg.HeaderSubdir), collect.Options{
		Predicate:     collect.HasExtension(p.cfg.HeaderExtensions...),
		StripSegments: p.cfg.StripSegments,
	})
	report.Warnings += len(report.Headers.Failed())
	p.log.Info("Collected %d headers into %s", len(report.Headers.Copied()), p.cfg.IncludeDir())

	p.log.Step("Generating bindings")
	summary, err := p.emitter.Emit(p.cfg.IncludeDir(), p.cfg.BindingPath())
	if err != nil {
		return report, fail(StageEmit, EmissionIOError, err)
	}

	report.Binding = summary
	p.log.Success("Generated %d wrappers at %s", summary.Wrappers, summary.Path)

	p.record(c, key, report)

	return report, nil
}

// openCache opens the build cache unless it is disabled. An unusable cache
// only warns.
func (p *Pipeline) openCache() *cache.Cache {
	if p.cacheDir == "" || p.cfg.NoCache {
		return nil
	}

	c, err := cache.New(p.cacheDir)
	if err != nil {
		p.log.Warn("build cache disabled: %v", err)
		return nil
	}

	return c
}

// lookup reports whether a successful build for key is cached and its
// build tree is still present
func (p *Pipeline) lookup(c *cache.Cache, key cache.Key) bool {
	if c == nil {
		return false
	}

	entry, err := c.Get(key.Hash())
	if err != nil {
		p.log.Warn("cache lookup failed: %v", err)
		return false
	}

	if entry == nil || !entry.Success {
		return false
	}

	if _, err := os.Stat(p.cfg.BuildDir()); err != nil {
		p.log.Debug("cached build tree %s is gone, rebuilding", p.cfg.BuildDir())
		return false
	}

	return true
}

// build runs clone, configure and build. It reports whether the clone was
// skipped because a checkout already exists.
func (p *Pipeline) build(ctx context.Context) (bool, error) {
	p.log.Step("Cloning %s", p.cfg.Repository)

	skipped := exists(filepath.Join(p.cfg.SourceDir(), ".git"))
	if skipped {
		p.log.Info("Using existing checkout at %s", p.cfg.SourceDir())
	} else if err := p.run(ctx, tool.CloneInvocation(p.cfg)); err != nil {
		return false, fail(StageClone, ExternalToolError, err)
	}

	p.log.Step("Configuring")
	if err := os.MkdirAll(p.cfg.BuildDir(), 0o755); err != nil {
		return skipped, fail(StageConfigure, ExternalToolError, fmt.Errorf("failed to create build directory: %w", err))
	}

	if err := p.run(ctx, tool.ConfigureInvocation(p.cfg, tool.ConfigureFlags(p.cfg))); err != nil {
		return skipped, fail(StageConfigure, ExternalToolError, err)
	}

	p.log.Step("Building (%s)", p.cfg.BuildType)
	if err := p.run(ctx, tool.BuildInvocation(p.cfg, tool.BuildFlags(p.cfg))); err != nil {
		return skipped, fail(StageBuild, ExternalToolError, err)
	}

	return skipped, nil
}

func (p *Pipeline) run(ctx context.Context, inv tool.Invocation) error {
	if p.log.Verbose() {
		tool.PrintInvocation(p.log.Writer(), inv)
	}

	_, err := p.runner.Run(ctx, inv)

	return err
}

// gather collects files and downgrades every failure to a warning
func (p *Pipeline) gather(stage Stage, src, dst string, opts collect.Options) *collect.Result {
	result, err := p.collector.Collect(src, dst, opts)
	if err != nil {
		p.log.Warn("%v", fail(stage, GatherIOError, err))
	}

	if result == nil {
		result = &collect.Result{}
	}

	return result
}

// record stores the run in the cache; failures only warn
func (p *Pipeline) record(c *cache.Cache, key cache.Key, report *Report) {
	if c == nil {
		return
	}

	entry := &cache.Entry{
		Hash:          key.Hash(),
		RunID:         report.RunID,
		Repository:    p.cfg.Repository,
		Ref:           p.cfg.Ref,
		BuildType:     p.cfg.BuildType,
		ConfigureArgs: key.ConfigureArgs,
		BuildArgs:     key.BuildArgs,
		ToolVersions:  key.ToolVersions,
		Libraries:     len(report.Libraries.Copied()),
		Headers:       len(report.Headers.Copied()),
		Wrappers:      report.Binding.Wrappers,
		Success:       true,
	}

	if sum, err := cache.HashFile(report.Binding.Path); err == nil {
		entry.BindingHash = sum
	}

	if err := c.Store(entry); err != nil {
		p.log.Warn("failed to update build cache: %v", err)
	}
}

func toolVersions(r *gate.Report) map[string]string {
	versions := make(map[string]string, len(r.Versions))
	for t, v := range r.Versions {
		versions[string(t)] = v.String()
	}

	return versions
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
