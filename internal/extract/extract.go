// Package extract scans C++ header text for function-like declarations.
//
// Extraction is lexical and line anchored. It does not parse C++: a macro
// invocation that looks like a declaration is reported like any other match,
// and callers decide which records to drop.
package extract

import (
	"regexp"
	"strings"

	"github.com/Norgate-AV/cppbind/internal/header"
)

// FunctionSignature is one function-like declaration found in header text
type FunctionSignature struct {
	// "template <...>" preamble, empty for non-generic declarations
	TemplatePrefix string

	// Tokens preceding the name, trimmed
	ReturnType string

	Name string

	// Raw text between the parentheses, whitespace collapsed
	Params string

	// False when the closing parenthesis was not found
	ParamsKnown bool

	// 1-based line of Name
	Line int

	Origin header.File
}

// IsZeroArg reports whether the declaration takes no arguments
func (s FunctionSignature) IsZeroArg() bool {
	return s.ParamsKnown && (s.Params == "" || s.Params == "void")
}

// IsTemplate reports whether the declaration has a template preamble
func (s FunctionSignature) IsTemplate() bool {
	return s.TemplatePrefix != ""
}

// Extractor turns header text into signatures
type Extractor interface {
	Extract(text string) []FunctionSignature
}

// The template preamble may end on the line before the declaration; the
// return type, name and parenthesis stay on one line.
var declPattern = regexp.MustCompile(`(?m)^[ \t]*(template[ \t]*<[^;:{]+>\s*)?([\w:*&<> \t]+)[ \t]+(\w+)[ \t]*\(`)

// RegexExtractor is the default Extractor
type RegexExtractor struct {
	pattern *regexp.Regexp
}

// New creates the default extractor
func New() *RegexExtractor {
	return &RegexExtractor{pattern: declPattern}
}

// Extract returns one record per match in text order. Records are not
// deduplicated, so overloads each produce their own entry.
func (e *RegexExtractor) Extract(text string) []FunctionSignature {
	matches := e.pattern.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return nil
	}

	sigs := make([]FunctionSignature, 0, len(matches))
	lines := newLineCounter(text)

	for _, m := range matches {
		sig := FunctionSignature{
			ReturnType: strings.TrimSpace(text[m[4]:m[5]]),
			Name:       text[m[6]:m[7]],
			Line:       lines.lineAt(m[6]),
		}

		if m[2] >= 0 {
			sig.TemplatePrefix = strings.TrimSpace(text[m[2]:m[3]])
		}

		// The match ends just past the opening parenthesis
		sig.Params, sig.ParamsKnown = captureParams(text, m[1])

		sigs = append(sigs, sig)
	}

	return sigs
}

// captureParams returns the text up to the parenthesis closing the one
// opened just before start
func captureParams(text string, start int) (string, bool) {
	depth := 1
	for i := start; i < len(text); i++ {
		switch text[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return strings.Join(strings.Fields(text[start:i]), " "), true
			}
		}
	}

	return "", false
}

// lineCounter maps byte offsets to line numbers for increasing offsets
type lineCounter struct {
	text   string
	offset int
	line   int
}

func newLineCounter(text string) *lineCounter {
	return &lineCounter{text: text, line: 1}
}

func (c *lineCounter) lineAt(offset int) int {
	if offset > c.offset {
		c.line += strings.Count(c.text[c.offset:offset], "\n")
		c.offset = offset
	}

	return c.line
}
