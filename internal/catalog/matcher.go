package catalog

import (
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/bughunter/bughunter/internal/domain/template"
)

// DefaultThreshold is the minimum rule coverage a template must reach
// before a match is surfaced. The exact value is heuristic; it is
// configurable through MatcherConfig rather than assumed constant.
const DefaultThreshold = 0.5

// Match pairs a template with the confidence of its content match.
type Match struct {
	TemplateID string
	Confidence float64
	Matched    []string
}

// MatcherConfig tunes content matching behavior.
type MatcherConfig struct {
	// Threshold is the minimum confidence (0..1) to surface a match.
	Threshold float64
}

// Matcher scores fetched content against the catalog's templates.
// Confidence is rule-coverage based: the fraction of a template's
// matcher conditions satisfied by the content.
type Matcher struct {
	catalog   *Catalog
	threshold float64

	mu    sync.RWMutex
	cache map[string]*regexp.Regexp
}

// NewMatcher creates a matcher over the given catalog.
func NewMatcher(c *Catalog, cfg MatcherConfig) *Matcher {
	threshold := cfg.Threshold
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultThreshold
	}
	return &Matcher{
		catalog:   c,
		threshold: threshold,
		cache:     make(map[string]*regexp.Regexp),
	}
}

// MatchContent evaluates every template against the content and
// returns the matches at or above the configured threshold, ordered by
// severity descending then template id ascending, mirroring Search
// ordering so auto-selection is predictable.
func (m *Matcher) MatchContent(content string) []Match {
	lowered := strings.ToLower(content)

	var matches []Match
	for _, t := range m.catalog.All() {
		total := t.ConditionCount()
		if total == 0 {
			continue
		}

		satisfied := 0
		var evidence []string
		for _, rule := range t.Matchers {
			if !rule.AppliesToBody() {
				continue
			}
			var hits []string
			if rule.Type != template.MatcherRegex {
				for _, word := range rule.Words {
					if strings.Contains(lowered, strings.ToLower(word)) {
						hits = append(hits, word)
					}
				}
			}
			if rule.Type != template.MatcherWord {
				for _, pattern := range rule.Regex {
					re := m.compile(pattern)
					if re != nil && re.MatchString(content) {
						hits = append(hits, pattern)
					}
				}
			}
			// An "and" rule counts only when every entry matched; a
			// partial hit contributes nothing.
			if rule.Condition == "and" && len(hits) < rule.Entries() {
				continue
			}
			satisfied += len(hits)
			evidence = append(evidence, hits...)
		}

		confidence := float64(satisfied) / float64(total)
		if confidence >= m.threshold {
			matches = append(matches, Match{
				TemplateID: t.ID,
				Confidence: confidence,
				Matched:    evidence,
			})
		}
	}

	// Catalog iteration is already severity desc / id asc; a stable
	// sort on those keys keeps ties deterministic even if the corpus
	// order ever changes.
	sort.SliceStable(matches, func(i, j int) bool {
		ti, _ := m.catalog.Get(matches[i].TemplateID)
		tj, _ := m.catalog.Get(matches[j].TemplateID)
		if ti.Severity.Rank() != tj.Severity.Rank() {
			return ti.Severity.Rank() > tj.Severity.Rank()
		}
		return ti.ID < tj.ID
	})

	return matches
}

// Threshold returns the configured confidence threshold.
func (m *Matcher) Threshold() float64 {
	return m.threshold
}

// compile returns a cached compiled pattern, or nil when the pattern
// is invalid. Invalid patterns simply never match.
func (m *Matcher) compile(pattern string) *regexp.Regexp {
	m.mu.RLock()
	re, ok := m.cache[pattern]
	m.mu.RUnlock()
	if ok {
		return re
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		re = nil
	}

	m.mu.Lock()
	m.cache[pattern] = re
	m.mu.Unlock()
	return re
}
