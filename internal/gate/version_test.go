package gate

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseVersion(t *testing.T) {
	tests := []struct {
		input string
		want  Version
	}{
		{"git version 2.42.0", Version{2, 42, 0}},
		{"git version 2.42.0.windows.1\n", Version{2, 42, 0}},
		{"cmake version 3.31.2\n\nCMake suite maintained and supported by Kitware (kitware.com/cmake).", Version{3, 31, 2}},
		{"v10.0.1", Version{10, 0, 1}},
		{"release 1.2 then 3.4.5", Version{3, 4, 5}},
		{"cmake version 3.31", Version{}},
		{"", Version{}},
		{"not a version", Version{}},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseVersion(tt.input), "ParseVersion(%q)", tt.input)
	}
}

func TestParseVersionToken(t *testing.T) {
	tests := []struct {
		input string
		want  Version
	}{
		{"git version 2.42.0", Version{2, 42, 0}},
		{"git version 2.42.0.windows.1", Version{2, 42, 0}},
		{"cmake version 3.31", Version{3, 31, 0}},
		{"cmake version 4", Version{4, 0, 0}},
		{"git version", Version{}},
		{"git version unknown", Version{}},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseVersionToken(tt.input), "ParseVersionToken(%q)", tt.input)
	}
}

func TestVersion_Compare(t *testing.T) {
	tests := []struct {
		a, b Version
		want int
	}{
		{Version{2, 40, 0}, Version{2, 40, 0}, 0},
		{Version{2, 41, 0}, Version{2, 40, 9}, 1},
		{Version{2, 39, 99}, Version{2, 40, 0}, -1},
		{Version{3, 0, 0}, Version{2, 99, 99}, 1},
		{Version{3, 31, 1}, Version{3, 31, 0}, 1},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.a.Compare(tt.b), "%s vs %s", tt.a, tt.b)
	}
}

func TestVersion_AtLeastMatchesTupleOrder(t *testing.T) {
	min := Version{2, 40, 0}

	for major := 1; major <= 3; major++ {
		for minor := 38; minor <= 42; minor++ {
			for patch := 0; patch <= 2; patch++ {
				v := ParseVersion(fmt.Sprintf("%d.%d.%d", major, minor, patch))
				want := major > 2 || (major == 2 && minor >= 40)
				assert.Equal(t, want, v.AtLeast(min), "%s >= %s", v, min)
			}
		}
	}
}

func TestVersion_String(t *testing.T) {
	assert.Equal(t, "3.31.0", Version{3, 31, 0}.String())
	assert.True(t, Version{}.IsZero())
	assert.False(t, Version{0, 0, 1}.IsZero())
}
