package backend

import (
	"context"
	"time"

	"github.com/bughunter/bughunter/internal/catalog"
	"github.com/bughunter/bughunter/internal/domain/scan"
)

// TemplateProbe fetches the target's content and delegates to the
// catalog matcher, emitting one candidate finding per template whose
// confidence reaches the matcher threshold.
type TemplateProbe struct {
	Fetcher Fetcher
	Matcher *catalog.Matcher
	Catalog *catalog.Catalog
}

// Name returns the backend identifier.
func (p *TemplateProbe) Name() string {
	return "templates"
}

// Probe matches the fetched content against the template catalog.
func (p *TemplateProbe) Probe(ctx context.Context, target scan.Target) ([]scan.Finding, error) {
	result, err := p.Fetcher.Fetch(ctx, target.URL())
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	matches := p.Matcher.MatchContent(string(result.Body))

	findings := make([]scan.Finding, 0, len(matches))
	now := time.Now().UTC()
	for _, match := range matches {
		tmpl, ok := p.Catalog.Get(match.TemplateID)
		if !ok {
			continue
		}
		findings = append(findings, scan.Finding{
			Type:          "template_match",
			Target:        target.URL(),
			Severity:      tmpl.Severity,
			Description:   tmpl.Description,
			Details:       append([]string{"template: " + tmpl.ID}, match.Matched...),
			SourceBackend: p.Name(),
			TemplateID:    tmpl.ID,
			Confidence:    match.Confidence,
			CVSSScore:     tmpl.CVSSScore,
			DiscoveredAt:  now,
		})
	}

	return findings, nil
}
