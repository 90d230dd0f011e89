package backend

import (
	"context"
	"errors"
	"testing"

	"github.com/bughunter/bughunter/internal/catalog"
	"github.com/bughunter/bughunter/internal/domain/scan"
	"github.com/bughunter/bughunter/internal/domain/template"
)

type stubFetcher struct {
	body []byte
	err  error
}

func (s *stubFetcher) Fetch(ctx context.Context, url string) (*FetchResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &FetchResult{StatusCode: 200, Body: s.body}, nil
}

func templateTestCatalog() *catalog.Catalog {
	return catalog.NewFromTemplates([]template.Template{{
		ID:          "sql-injection-error",
		Severity:    scan.SeverityHigh,
		Description: "Database error messages indicate SQL injection",
		CVSSScore:   8.6,
		Matchers: []template.Matcher{{
			Type:  template.MatcherWord,
			Words: []string{"You have an error in your SQL syntax"},
		}},
	}})
}

func TestTemplateProbeEmitsMatchFindings(t *testing.T) {
	c := templateTestCatalog()
	probe := &TemplateProbe{
		Fetcher: &stubFetcher{body: []byte("You have an error in your SQL syntax near ''")},
		Matcher: catalog.NewMatcher(c, catalog.MatcherConfig{Threshold: 0.5}),
		Catalog: c,
	}

	findings, err := probe.Probe(context.Background(), newTestTarget(t, "http://example.com"))
	if err != nil {
		t.Fatalf("probe failed: %v", err)
	}
	if len(findings) != 1 {
		t.Fatalf("expected 1 finding, got %d", len(findings))
	}

	f := findings[0]
	if f.Type != "template_match" {
		t.Errorf("expected type template_match, got %s", f.Type)
	}
	if f.TemplateID != "sql-injection-error" {
		t.Errorf("unexpected template id: %s", f.TemplateID)
	}
	if f.Severity != scan.SeverityHigh {
		t.Errorf("expected severity high, got %s", f.Severity)
	}
	if f.Confidence != 1.0 {
		t.Errorf("expected confidence 1.0, got %g", f.Confidence)
	}
	if f.CVSSScore != 8.6 {
		t.Errorf("expected cvss 8.6, got %g", f.CVSSScore)
	}
}

func TestTemplateProbeNoMatch(t *testing.T) {
	c := templateTestCatalog()
	probe := &TemplateProbe{
		Fetcher: &stubFetcher{body: []byte("<html>all good here</html>")},
		Matcher: catalog.NewMatcher(c, catalog.MatcherConfig{Threshold: 0.5}),
		Catalog: c,
	}

	findings, err := probe.Probe(context.Background(), newTestTarget(t, "http://example.com"))
	if err != nil {
		t.Fatalf("probe failed: %v", err)
	}
	if len(findings) != 0 {
		t.Errorf("expected no findings, got %d", len(findings))
	}
}

func TestTemplateProbePropagatesFetchError(t *testing.T) {
	c := templateTestCatalog()
	wantErr := errors.New("connection refused")
	probe := &TemplateProbe{
		Fetcher: &stubFetcher{err: wantErr},
		Matcher: catalog.NewMatcher(c, catalog.MatcherConfig{}),
		Catalog: c,
	}

	if _, err := probe.Probe(context.Background(), newTestTarget(t, "http://example.com")); !errors.Is(err, wantErr) {
		t.Errorf("expected fetch error to propagate, got %v", err)
	}
}

func TestTemplateProbeHonorsCancelledContext(t *testing.T) {
	c := templateTestCatalog()
	probe := &TemplateProbe{
		Fetcher: &stubFetcher{body: []byte("ok")},
		Matcher: catalog.NewMatcher(c, catalog.MatcherConfig{}),
		Catalog: c,
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := probe.Probe(ctx, newTestTarget(t, "http://example.com")); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
