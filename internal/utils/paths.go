package utils

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"
)

// SlashRel returns target relative to base, always using forward slashes
func SlashRel(base, target string) (string, error) {
	rel, err := filepath.Rel(base, target)
	if err != nil {
		return "", err
	}

	rel = filepath.ToSlash(rel)
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return "", fmt.Errorf("%s is not under %s", target, base)
	}

	// ToSlash is a no-op on non-Windows hosts, where a backslash is a legal name character
	return strings.ReplaceAll(rel, `\`, "/"), nil
}

// Segments splits a slash-separated relative path into its components
func Segments(rel string) []string {
	parts := strings.Split(filepath.ToSlash(rel), "/")
	segments := make([]string, 0, len(parts))

	for _, p := range parts {
		if p != "" && p != "." {
			segments = append(segments, p)
		}
	}

	return segments
}

// StripSegments removes every path segment whose name is in strip
func StripSegments(rel string, strip map[string]struct{}) string {
	segments := Segments(rel)
	if len(strip) == 0 {
		return path.Join(segments...)
	}

	kept := segments[:0]
	for _, s := range segments {
		if _, drop := strip[s]; !drop {
			kept = append(kept, s)
		}
	}

	return path.Join(kept...)
}

// HasSegment reports whether any directory segment of p equals name
func HasSegment(p, name string) bool {
	segments := Segments(filepath.Dir(p))
	for _, s := range segments {
		if s == name {
			return true
		}
	}

	return false
}

// SegmentSet builds a lookup set from a list of segment names, skipping blanks
func SegmentSet(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			set[n] = struct{}{}
		}
	}

	return set
}

// RepoName derives the checkout directory name from a repository URL
// (e.g. https://github.com/abseil/abseil-cpp.git -> abseil-cpp)
func RepoName(url string) string {
	url = strings.TrimRight(strings.TrimSpace(url), "/")
	url = strings.TrimSuffix(url, ".git")

	if i := strings.LastIndexAny(url, "/:"); i >= 0 {
		url = url[i+1:]
	}

	return url
}
