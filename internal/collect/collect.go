// Package collect copies selected files from a build or source tree into an
// output tree.
//
// Collection is best effort: a missing source root produces an empty result
// and a warning, and a file that cannot be copied is recorded in the result
// without stopping the walk. Destination trees are regenerated on every run,
// so a partially populated tree is acceptable.
package collect

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/Norgate-AV/cppbind/internal/output"
	"github.com/Norgate-AV/cppbind/internal/utils"
)

// Options controls which files are collected and where they land
type Options struct {
	Predicate Predicate

	// Segment names removed from the relative destination path
	StripSegments []string

	// Copy into destRoot by file name only
	Flatten bool
}

// Outcome is the result of collecting one file
type Outcome struct {
	Source string
	Dest   string

	// Destination path relative to destRoot, forward slashes
	Rel string

	Err error
}

// Result lists per-file outcomes in traversal order
type Result struct {
	Outcomes []Outcome
}

// Copied returns the successful outcomes
func (r *Result) Copied() []Outcome {
	var out []Outcome
	for _, o := range r.Outcomes {
		if o.Err == nil {
			out = append(out, o)
		}
	}

	return out
}

// Failed returns the outcomes that could not be copied
func (r *Result) Failed() []Outcome {
	var out []Outcome
	for _, o := range r.Outcomes {
		if o.Err != nil {
			out = append(out, o)
		}
	}

	return out
}

// Collector walks source trees and copies matching files
type Collector struct {
	log *output.Logger
}

// New creates a collector reporting through log
func New(log *output.Logger) *Collector {
	if log == nil {
		log = output.Discard()
	}

	return &Collector{log: log}
}

// Collect copies every regular file under sourceRoot accepted by opts.Predicate
// into destRoot. The returned error is only set when sourceRoot exists but
// cannot be walked at all; per-file failures are in the result.
func (c *Collector) Collect(sourceRoot, destRoot string, opts Options) (*Result, error) {
	result := &Result{}

	if opts.Predicate == nil {
		return result, errors.New("collect: no predicate")
	}

	info, err := os.Stat(sourceRoot)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			c.log.Warn("source directory %s does not exist, nothing to collect", sourceRoot)
			return result, nil
		}

		return result, fmt.Errorf("failed to read source directory: %w", err)
	}

	if !info.IsDir() {
		return result, fmt.Errorf("source %s is not a directory", sourceRoot)
	}

	strip := utils.SegmentSet(opts.StripSegments)

	walkErr := filepath.WalkDir(sourceRoot, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == sourceRoot {
				return err
			}

			c.log.Warn("cannot read %s: %v", p, err)
			result.Outcomes = append(result.Outcomes, Outcome{Source: p, Err: err})

			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}

			return nil
		}

		if d.IsDir() || !d.Type().IsRegular() || !opts.Predicate(p) {
			return nil
		}

		result.Outcomes = append(result.Outcomes, c.collectFile(sourceRoot, destRoot, p, strip, opts.Flatten))

		return nil
	})
	if walkErr != nil {
		return result, fmt.Errorf("failed to walk %s: %w", sourceRoot, walkErr)
	}

	return result, nil
}

func (c *Collector) collectFile(sourceRoot, destRoot, src string, strip map[string]struct{}, flatten bool) Outcome {
	outcome := Outcome{Source: src}

	rel, err := utils.SlashRel(sourceRoot, src)
	if err != nil {
		outcome.Err = err
		c.log.Warn("cannot place %s: %v", src, err)
		return outcome
	}

	rel = utils.StripSegments(rel, strip)
	if flatten {
		rel = path.Base(rel)
	}

	outcome.Rel = rel
	outcome.Dest = filepath.Join(destRoot, filepath.FromSlash(rel))

	if err := copyFile(src, outcome.Dest); err != nil {
		outcome.Err = err
		c.log.Warn("failed copying %s to %s: %v", src, outcome.Dest, err)
		return outcome
	}

	c.log.Debug("copied %s", rel)

	return outcome
}
