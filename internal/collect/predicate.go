package collect

import (
	"github.com/Norgate-AV/cppbind/internal/header"
	"github.com/Norgate-AV/cppbind/internal/utils"
)

// Predicate decides whether a visited file is collected. It must be pure.
type Predicate func(path string) bool

// HasExtension matches files whose extension is one of exts, ignoring case
func HasExtension(exts ...string) Predicate {
	return func(path string) bool {
		return header.HasExtension(path, exts)
	}
}

// UnderSegment matches files with an ancestor directory named name
func UnderSegment(name string) Predicate {
	return func(path string) bool {
		return utils.HasSegment(path, name)
	}
}

// All matches when every predicate matches
func All(preds ...Predicate) Predicate {
	return func(path string) bool {
		for _, p := range preds {
			if !p(path) {
				return false
			}
		}

		return true
	}
}
