package gate

import (
	"fmt"
	"regexp"
	"strings"

	goversion "github.com/hashicorp/go-version"
)

var tripleRe = regexp.MustCompile(`(\d+)\.(\d+)\.(\d+)`)

// Version is a major.minor.patch triple; missing components are 0
type Version struct {
	Major int
	Minor int
	Patch int
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// IsZero reports whether v is 0.0.0, the value of an unparsable version
func (v Version) IsZero() bool {
	return v == Version{}
}

// Compare returns -1, 0 or 1 using tuple ordering
func (v Version) Compare(o Version) int {
	return v.semver().Compare(o.semver())
}

// AtLeast reports whether v >= min
func (v Version) AtLeast(min Version) bool {
	return v.Compare(min) >= 0
}

func (v Version) semver() *goversion.Version {
	return goversion.Must(goversion.NewVersion(v.String()))
}

// ParseVersion extracts the first dotted-number triple from raw tool output.
// Output without a triple yields 0.0.0.
func ParseVersion(output string) Version {
	m := tripleRe.FindString(output)
	if m == "" {
		return Version{}
	}

	return fromString(m)
}

// ParseVersionToken parses the third whitespace-separated token, as in
// "git version 2.42.0.windows.1" or "cmake version 3.31".
func ParseVersionToken(output string) Version {
	fields := strings.Fields(output)
	if len(fields) < 3 {
		return Version{}
	}

	token := fields[2]
	if v, err := goversion.NewVersion(token); err == nil {
		return fromSegments(v.Segments())
	}

	return ParseVersion(token)
}

func fromString(s string) Version {
	v, err := goversion.NewVersion(s)
	if err != nil {
		return Version{}
	}

	return fromSegments(v.Segments())
}

func fromSegments(segs []int) Version {
	var v Version
	if len(segs) > 0 {
		v.Major = segs[0]
	}

	if len(segs) > 1 {
		v.Minor = segs[1]
	}

	if len(segs) > 2 {
		v.Patch = segs[2]
	}

	return v
}
