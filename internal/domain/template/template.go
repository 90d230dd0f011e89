// Package template defines the vulnerability template entity owned by
// the template catalog. Templates are immutable once loaded.
package template

import "github.com/bughunter/bughunter/internal/domain/scan"

// MatcherType enumerates the supported matcher rule kinds.
type MatcherType string

const (
	MatcherWord  MatcherType = "word"
	MatcherRegex MatcherType = "regex"
)

// Matcher is a single matching rule inside a template. A word matcher
// lists literal signatures, a regex matcher lists patterns. Condition
// "and" requires every entry to match before the rule counts; the
// default "or" credits each matching entry on its own.
type Matcher struct {
	Type      MatcherType `yaml:"type"`
	Condition string      `yaml:"condition,omitempty"`
	Words     []string    `yaml:"words,omitempty"`
	Regex     []string    `yaml:"regex,omitempty"`
	Part      string      `yaml:"part,omitempty"`
}

// AppliesToBody reports whether the rule matches response bodies.
// Only bodies are fetched, so rules scoped to another part are inert.
func (m Matcher) AppliesToBody() bool {
	return m.Part == "" || m.Part == "body"
}

// Entries returns the rule entries the engine evaluates, honoring the
// declared type and part scope.
func (m Matcher) Entries() int {
	if !m.AppliesToBody() {
		return 0
	}
	switch m.Type {
	case MatcherWord:
		return len(m.Words)
	case MatcherRegex:
		return len(m.Regex)
	default:
		return len(m.Words) + len(m.Regex)
	}
}

// Template is a named, categorized rule set describing how to detect a
// class of vulnerability.
type Template struct {
	ID          string
	Category    string
	Severity    scan.Severity
	Name        string
	Description string
	Tags        []string
	CVSSScore   float64
	Matchers    []Matcher
	Path        string
}

// ConditionCount returns the total number of evaluated matcher
// conditions, the denominator for rule-coverage confidence scoring.
func (t Template) ConditionCount() int {
	n := 0
	for _, m := range t.Matchers {
		n += m.Entries()
	}
	return n
}
