package catalog

import (
	"testing"

	"github.com/bughunter/bughunter/internal/domain/scan"
	"github.com/bughunter/bughunter/internal/domain/template"
)

func matcherCatalog() *Catalog {
	return NewFromTemplates([]template.Template{
		{
			ID: "sql-errors", Severity: scan.SeverityHigh,
			Matchers: []template.Matcher{{
				Type:  template.MatcherWord,
				Words: []string{"SQL syntax", "ORA-01756"},
			}},
		},
		{
			ID: "debug-banner", Severity: scan.SeverityMedium,
			Matchers: []template.Matcher{{
				Type:  template.MatcherRegex,
				Regex: []string{`Apache/[0-9]+\.[0-9]+`, `nginx/[0-9]+`},
			}},
		},
	})
}

func TestMatchContentConfidenceIsConditionCoverage(t *testing.T) {
	m := NewMatcher(matcherCatalog(), MatcherConfig{Threshold: 0.4})

	matches := m.MatchContent("error in your SQL syntax near line 3")
	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matches))
	}
	if matches[0].TemplateID != "sql-errors" {
		t.Errorf("unexpected template: %s", matches[0].TemplateID)
	}
	if matches[0].Confidence != 0.5 {
		t.Errorf("expected confidence 0.5 (1 of 2 conditions), got %g", matches[0].Confidence)
	}
}

func TestMatchContentBelowThresholdIsDropped(t *testing.T) {
	m := NewMatcher(matcherCatalog(), MatcherConfig{Threshold: 0.75})

	matches := m.MatchContent("error in your SQL syntax near line 3")
	if len(matches) != 0 {
		t.Errorf("expected no matches below threshold, got %d", len(matches))
	}
}

func TestMatchContentWordMatchIsCaseInsensitive(t *testing.T) {
	m := NewMatcher(matcherCatalog(), MatcherConfig{Threshold: 0.4})

	matches := m.MatchContent("ERROR IN YOUR sql SYNTAX")
	if len(matches) != 1 {
		t.Errorf("expected case-insensitive word match, got %d matches", len(matches))
	}
}

func TestMatchContentRegexAndOrdering(t *testing.T) {
	m := NewMatcher(matcherCatalog(), MatcherConfig{Threshold: 0.4})

	content := "Server: Apache/2.4 ... You have an error in your SQL syntax"
	matches := m.MatchContent(content)
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}
	// severity descending: high before medium
	if matches[0].TemplateID != "sql-errors" || matches[1].TemplateID != "debug-banner" {
		t.Errorf("unexpected order: %s, %s", matches[0].TemplateID, matches[1].TemplateID)
	}
}

func TestMatchContentInvalidRegexNeverMatches(t *testing.T) {
	c := NewFromTemplates([]template.Template{{
		ID: "broken", Severity: scan.SeverityHigh,
		Matchers: []template.Matcher{{
			Type:  template.MatcherRegex,
			Regex: []string{`([unclosed`},
		}},
	}})
	m := NewMatcher(c, MatcherConfig{Threshold: 0.1})

	if matches := m.MatchContent("([unclosed"); len(matches) != 0 {
		t.Errorf("invalid pattern must never match, got %d matches", len(matches))
	}
}

func TestMatchContentFullCoverage(t *testing.T) {
	m := NewMatcher(matcherCatalog(), MatcherConfig{Threshold: 0.5})

	matches := m.MatchContent("SQL syntax ORA-01756")
	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matches))
	}
	if matches[0].Confidence != 1.0 {
		t.Errorf("expected full confidence, got %g", matches[0].Confidence)
	}
	if len(matches[0].Matched) != 2 {
		t.Errorf("expected both words as evidence, got %v", matches[0].Matched)
	}
}

func TestMatchContentAndConditionRequiresEveryEntry(t *testing.T) {
	c := NewFromTemplates([]template.Template{{
		ID: "paired-markers", Severity: scan.SeverityHigh,
		Matchers: []template.Matcher{{
			Type:      template.MatcherWord,
			Condition: "and",
			Words:     []string{"Warning: mysql_", "supplied argument"},
		}},
	}})
	m := NewMatcher(c, MatcherConfig{Threshold: 0.4})

	// One of two entries present: the and-group is unsatisfied and
	// contributes nothing.
	if matches := m.MatchContent("Warning: mysql_fetch_array()"); len(matches) != 0 {
		t.Fatalf("partial and-group must not match, got %d matches", len(matches))
	}

	matches := m.MatchContent("Warning: mysql_fetch_array(): supplied argument is not valid")
	if len(matches) != 1 {
		t.Fatalf("expected a match with both entries present, got %d", len(matches))
	}
	if matches[0].Confidence != 1.0 {
		t.Errorf("expected full confidence, got %g", matches[0].Confidence)
	}
}

func TestMatchContentIgnoresNonBodyRules(t *testing.T) {
	c := NewFromTemplates([]template.Template{{
		ID: "header-scoped", Severity: scan.SeverityMedium,
		Matchers: []template.Matcher{
			{Type: template.MatcherWord, Part: "header", Words: []string{"X-Powered-By"}},
			{Type: template.MatcherWord, Part: "body", Words: []string{"stack trace"}},
		},
	}})
	m := NewMatcher(c, MatcherConfig{Threshold: 0.5})

	// Only bodies are fetched; the header-scoped rule neither matches
	// nor dilutes the denominator.
	matches := m.MatchContent("unhandled exception, stack trace follows")
	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matches))
	}
	if matches[0].Confidence != 1.0 {
		t.Errorf("expected confidence 1.0 from the body rule alone, got %g", matches[0].Confidence)
	}

	if matches := m.MatchContent("X-Powered-By: PHP"); len(matches) != 0 {
		t.Errorf("header-scoped rule must not match body content, got %d matches", len(matches))
	}
}

func TestMatchContentHonorsDeclaredType(t *testing.T) {
	// A word rule carrying stray regex entries only evaluates its words.
	c := NewFromTemplates([]template.Template{{
		ID: "typed", Severity: scan.SeverityLow,
		Matchers: []template.Matcher{{
			Type:  template.MatcherWord,
			Words: []string{"marker"},
			Regex: []string{`ignored-[0-9]+`},
		}},
	}})
	m := NewMatcher(c, MatcherConfig{Threshold: 0.5})

	matches := m.MatchContent("marker present")
	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matches))
	}
	if matches[0].Confidence != 1.0 {
		t.Errorf("expected the stray regex excluded from scoring, got %g", matches[0].Confidence)
	}

	if matches := m.MatchContent("ignored-42"); len(matches) != 0 {
		t.Errorf("regex entries of a word rule must not match, got %d matches", len(matches))
	}
}

func TestNewMatcherRejectsOutOfRangeThreshold(t *testing.T) {
	m := NewMatcher(matcherCatalog(), MatcherConfig{Threshold: 3.0})
	if m.Threshold() != DefaultThreshold {
		t.Errorf("expected default threshold, got %g", m.Threshold())
	}
}
