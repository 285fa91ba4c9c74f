package header

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/Norgate-AV/cppbind/internal/utils"
)

// File identifies a discovered header
type File struct {
	// Absolute path on disk
	Path string

	// Path relative to the include root, always with forward slashes
	Rel string
}

// New builds a File for path under root
func New(root, path string) (File, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return File{}, err
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return File{}, err
	}

	rel, err := utils.SlashRel(absRoot, abs)
	if err != nil {
		return File{}, err
	}

	return File{Path: abs, Rel: rel}, nil
}

// HasExtension reports whether path ends in one of exts, ignoring case
func HasExtension(path string, exts []string) bool {
	ext := filepath.Ext(path)
	for _, e := range exts {
		if strings.EqualFold(ext, e) {
			return true
		}
	}

	return false
}

// Discover lists header files under root in lexical traversal order.
// A missing root returns an error wrapping fs.ErrNotExist.
func Discover(root string, exts []string) ([]File, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}

	if !info.IsDir() {
		return nil, fmt.Errorf("include root %s is not a directory", root)
	}

	var files []File
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() || !d.Type().IsRegular() || !HasExtension(path, exts) {
			return nil
		}

		f, err := New(root, path)
		if err != nil {
			return err
		}

		files = append(files, f)

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", root, err)
	}

	return files, nil
}
