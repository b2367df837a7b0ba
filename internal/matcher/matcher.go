// Package matcher classifies a single line of source code into a declaration
// shape and extracts the parts a docblock needs.
package matcher

import (
	"strings"

	"github.com/phyten/docblocker/internal/model"
)

// Matcher recognises one declaration shape.
//
// Parse is only called after Test reported true for the same line and never
// fails.
type Matcher interface {
	Kind() model.Kind
	Test(line string) bool
	Parse(line string) model.Doc
	Name(line string) string
}

type Match struct {
	Kind model.Kind
	Name string
	Doc  model.Doc
}

// Registry runs matchers in registration order and keeps the first hit.
type Registry struct {
	matchers     []Matcher
	placeholders model.Placeholders
}

func NewRegistry(p model.Placeholders, ms ...Matcher) *Registry {
	out := make([]Matcher, 0, len(ms))
	for _, m := range ms {
		if m != nil {
			out = append(out, m)
		}
	}
	return &Registry{matchers: out, placeholders: p}
}

func (r *Registry) Matchers() []Matcher {
	out := make([]Matcher, len(r.matchers))
	copy(out, r.matchers)
	return out
}


// Identify returns the first matcher result for line.
func (r *Registry) Identify(line string) (Match, bool) {
	for _, m := range r.matchers {
		if !m.Test(line) {
			continue
		}
		return Match{Kind: m.Kind(), Name: m.Name(line), Doc: m.Parse(line)}, true
	}
	return Match{}, false
}

// Describe is Identify with the generic fallback applied.
func (r *Registry) Describe(line string) Match {
	if m, ok := r.Identify(line); ok {
		return m
	}
	return Match{Kind: model.KindUnknown, Doc: model.EmptyDoc(r.placeholders)}
}

// PHP returns the registry for PHP-style declarations:
// function, then property, then class.
func PHP(p model.Placeholders) *Registry {
	return NewRegistry(p, NewFunction(p), NewProperty(p), NewClass(p))
}

var languageRegistries = map[string]func(model.Placeholders) *Registry{
	"php": PHP,
}

// ForLanguage returns the registry for a canonical language name.
func ForLanguage(lang string, p model.Placeholders) (*Registry, bool) {
	build, ok := languageRegistries[strings.ToLower(strings.TrimSpace(lang))]
	if !ok {
		return nil, false
	}
	return build(p), true
}

func Languages() []string {
	return []string{"php"}
}
