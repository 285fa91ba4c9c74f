// Package emit generates the extern "C" binding file from collected headers.
package emit

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/Norgate-AV/cppbind/internal/config"
	"github.com/Norgate-AV/cppbind/internal/extract"
	"github.com/Norgate-AV/cppbind/internal/header"
	"github.com/Norgate-AV/cppbind/internal/output"
)

// Options controls discovery and wrapper selection
type Options struct {
	Extractor        extract.Extractor
	HeaderExtensions []string

	// Signatures whose name starts with this prefix get no wrapper
	DenylistPrefix string

	WrapperPolicy string

	// Extra provenance line, e.g. the upstream repository and ref
	Source string
}

// Binding is the scanned content of an include root
type Binding struct {
	Headers    []header.File
	Signatures []extract.FunctionSignature
}

// Summary describes a written binding file
type Summary struct {
	Path     string
	Headers  int
	Wrappers int
	Skipped  int
}

// Emitter renders and writes binding files
type Emitter struct {
	opts Options
	log  *output.Logger
}

// New creates an emitter
func New(opts Options, log *output.Logger) *Emitter {
	if opts.Extractor == nil {
		opts.Extractor = extract.New()
	}

	if len(opts.HeaderExtensions) == 0 {
		opts.HeaderExtensions = config.DefaultHeaderExtensions
	}

	if opts.WrapperPolicy == "" {
		opts.WrapperPolicy = config.WrapperPolicyAll
	}

	if log == nil {
		log = output.Discard()
	}

	return &Emitter{opts: opts, log: log}
}

// NewFromConfig creates an emitter using the binding settings of cfg
func NewFromConfig(cfg *config.Config, log *output.Logger) *Emitter {
	source := cfg.Repository
	if cfg.Ref != "" {
		source += " (" + cfg.Ref + ")"
	}

	return New(Options{
		HeaderExtensions: cfg.HeaderExtensions,
		DenylistPrefix:   cfg.DenylistPrefix,
		WrapperPolicy:    cfg.WrapperPolicy,
		Source:           source,
	}, log)
}

// Scan discovers headers under includeRoot and extracts their signatures.
// A missing include root yields an empty binding. Headers that cannot be
// read are skipped with a warning.
func (e *Emitter) Scan(includeRoot string) (*Binding, error) {
	b := &Binding{}

	headers, err := header.Discover(includeRoot, e.opts.HeaderExtensions)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			e.log.Warn("include directory %s does not exist, generating empty bindings", includeRoot)
			return b, nil
		}

		return nil, err
	}

	b.Headers = headers

	for _, h := range headers {
		data, err := os.ReadFile(h.Path)
		if err != nil {
			e.log.Warn("failed to read header %s: %v", h.Rel, err)
			continue
		}

		for _, sig := range e.opts.Extractor.Extract(string(data)) {
			sig.Origin = h
			b.Signatures = append(b.Signatures, sig)
		}
	}

	return b, nil
}

// Wraps reports whether sig gets a wrapper stub
func (e *Emitter) Wraps(sig extract.FunctionSignature) bool {
	if e.opts.DenylistPrefix != "" && strings.HasPrefix(sig.Name, e.opts.DenylistPrefix) {
		return false
	}

	if e.opts.WrapperPolicy == config.WrapperPolicyZeroArg {
		return sig.IsZeroArg()
	}

	return true
}

// Render writes the binding file content for b to w and returns the number
// of wrappers written
func (e *Emitter) Render(w io.Writer, b *Binding) (int, error) {
	bw := bufio.NewWriter(w)

	fmt.Fprintln(bw, "// language: C++")
	fmt.Fprintln(bw, "// This file is auto-generated. It includes all header files from the external folder")

	if e.opts.Source != "" {
		fmt.Fprintf(bw, "// Source: %s\n", e.opts.Source)
	}

	fmt.Fprintln(bw)
	fmt.Fprintln(bw, "#ifdef __cplusplus")
	fmt.Fprintln(bw, `extern "C" {`)
	fmt.Fprintln(bw, "#endif")
	fmt.Fprintln(bw)

	for _, h := range b.Headers {
		fmt.Fprintf(bw, "#include %q\n", h.Rel)
	}

	fmt.Fprintln(bw)

	wrappers := 0
	for _, sig := range b.Signatures {
		if !e.Wraps(sig) {
			continue
		}

		writeWrapper(bw, sig)
		wrappers++
	}

	fmt.Fprintln(bw)
	fmt.Fprintln(bw, "#ifdef __cplusplus")
	fmt.Fprintln(bw, "}")
	fmt.Fprintln(bw, "#endif")

	return wrappers, bw.Flush()
}

func writeWrapper(w io.Writer, sig extract.FunctionSignature) {
	fmt.Fprintf(w, "  // Wrapper for function declared in %q\n", sig.Origin.Rel)

	if sig.TemplatePrefix != "" {
		fmt.Fprintf(w, "  %s\n", sig.TemplatePrefix)
	}

	fmt.Fprintf(w, "  %s %s_wrapper() { return %s(); }\n\n", sig.ReturnType, sig.Name, sig.Name)
}

// Bytes renders b into memory
func (e *Emitter) Bytes(b *Binding) ([]byte, int, error) {
	var buf bytes.Buffer

	n, err := e.Render(&buf, b)
	if err != nil {
		return nil, 0, err
	}

	return buf.Bytes(), n, nil
}

// Emit scans includeRoot and writes the binding file to dest, replacing any
// previous file in one step
func (e *Emitter) Emit(includeRoot, dest string) (*Summary, error) {
	b, err := e.Scan(includeRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to scan headers: %w", err)
	}

	content, wrappers, err := e.Bytes(b)
	if err != nil {
		return nil, fmt.Errorf("failed to render bindings: %w", err)
	}

	if err := WriteFile(dest, content); err != nil {
		return nil, err
	}

	summary := &Summary{
		Path:     dest,
		Headers:  len(b.Headers),
		Wrappers: wrappers,
		Skipped:  len(b.Signatures) - wrappers,
	}

	e.log.Debug("wrote %d wrappers for %d headers to %s", summary.Wrappers, summary.Headers, dest)

	return summary, nil
}

// WriteFile replaces dest with content through a temporary file in the same
// directory
func WriteFile(dest string, content []byte) error {
	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(dest)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create binding file: %w", err)
	}

	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write binding file: %w", err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write binding file: %w", err)
	}

	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("failed to set binding file permissions: %w", err)
	}

	if err := os.Rename(tmpName, dest); err != nil {
		return fmt.Errorf("failed to replace binding file: %w", err)
	}

	return nil
}
