// Package matcher holds the line predicates that recognise usage declarations
// in LaTeX sources. Traversal code only sees the Matcher interface, so the
// detection patterns can be swapped through configuration.
package matcher

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// DefaultPackageKeywords are the commands that load a package. Matching is case-sensitive.
var DefaultPackageKeywords = []string{"usepackage", "RequirePackage"}

// DefaultRootPattern recognises a compilable root document.
const DefaultRootPattern = `\\documentclass`

// ErrNoKeywords indicates a package matcher was requested without any declaration keyword.
var ErrNoKeywords = errors.New("no package declaration keywords configured")

// Matcher reports whether a single source line carries a declaration.
type Matcher interface {
	Match(line string) bool
	String() string
}

// Factory instantiates a Matcher for a resource name.
type Factory func(name string) Matcher

// Regexp is a Matcher backed by a compiled regular expression.
type Regexp struct {
	re *regexp.Regexp
}

// NewRegexp compiles pattern into a Matcher.
func NewRegexp(pattern string) (*Regexp, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("compile pattern %q: %w", pattern, err)
	}
	return &Regexp{re: re}, nil
}

func (m *Regexp) Match(line string) bool { return m.re.MatchString(line) }
func (m *Regexp) String() string         { return m.re.String() }

// PackageFactory returns a Factory producing matchers for a package-inclusion
// declaration of a given package name, e.g. for "foo":
//
//	\usepackage{foo}
//	\usepackage[opt=1]{bar, foo,baz}
//	\RequirePackage{foo}
//
// Names match whole list entries only, so "foo" does not match {foobar}.
func PackageFactory(keywords []string) (Factory, error) {
	if len(keywords) == 0 {
		return nil, ErrNoKeywords
	}
	quoted := make([]string, len(keywords))
	for i, k := range keywords {
		quoted[i] = regexp.QuoteMeta(k)
	}
	prefix := `\\(?:` + strings.Join(quoted, "|") + `)\s*(?:\[[^\]]*\])?\s*\{(?:[^{}]*?,)?\s*`
	const suffix = `\s*(?:,[^{}]*)?\}`

	return func(name string) Matcher {
		return &Regexp{re: regexp.MustCompile(prefix + regexp.QuoteMeta(name) + suffix)}
	}, nil
}

// Constant returns a Factory that ignores the resource name.
func Constant(m Matcher) Factory {
	return func(string) Matcher { return m }
}

// RootFactory returns a Factory recognising compilable roots via pattern.
func RootFactory(pattern string) (Factory, error) {
	if pattern == "" {
		pattern = DefaultRootPattern
	}
	m, err := NewRegexp(pattern)
	if err != nil {
		return nil, err
	}
	return Constant(m), nil
}

// FirstMatch returns the index of the first line m matches, or -1.
func FirstMatch(m Matcher, lines []string) int {
	for i, line := range lines {
		if m.Match(line) {
			return i
		}
	}
	return -1
}
