package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/Norgate-AV/cppbind/internal/config"
	"github.com/Norgate-AV/cppbind/internal/tool"
)

// Key is everything that decides whether an existing build tree can be reused
type Key struct {
	Repository    string
	Ref           string
	ConfigureArgs []string
	BuildArgs     []string

	// Tool name -> version found by the gate
	ToolVersions map[string]string
}

// NewKey builds the cache key for cfg and the tool versions found on the host
func NewKey(cfg *config.Config, versions map[string]string) Key {
	return Key{
		Repository:    cfg.Repository,
		Ref:           cfg.Ref,
		ConfigureArgs: tool.ConfigureFlags(cfg).Args(),
		BuildArgs:     tool.BuildFlags(cfg).Args(),
		ToolVersions:  versions,
	}
}

// Hash creates a unique hash for the key.
// Argument order is significant and kept; tool versions are sorted by name.
func (k Key) Hash() string {
	h := sha256.New()

	write := func(parts ...string) {
		h.Write([]byte(strings.Join(parts, "\x1f")))
		h.Write([]byte{0})
	}

	write(k.Repository)
	write(k.Ref)
	write(k.ConfigureArgs...)
	write(k.BuildArgs...)

	names := make([]string, 0, len(k.ToolVersions))
	for name := range k.ToolVersions {
		names = append(names, name)
	}

	sort.Strings(names)

	for _, name := range names {
		write(name, k.ToolVersions[name])
	}

	return hex.EncodeToString(h.Sum(nil))
}

// HashFile creates a hash of a file's content
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}
