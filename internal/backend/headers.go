package backend

import (
	"context"
	"fmt"
	"time"

	"github.com/bughunter/bughunter/internal/domain/scan"
)

// requiredSecurityHeaders lists the response headers every target is
// expected to send. Each absent header yields one missing_header
// finding of severity medium.
var requiredSecurityHeaders = []struct {
	Name        string
	Description string
}{
	{"X-Frame-Options", "Missing X-Frame-Options header"},
	{"X-Content-Type-Options", "Missing X-Content-Type-Options header"},
	{"Content-Security-Policy", "Missing Content-Security-Policy header"},
	{"Strict-Transport-Security", "Missing Strict-Transport-Security header"},
	{"Referrer-Policy", "Missing Referrer-Policy header"},
}

// SecurityHeaderCheck compares response headers against the required
// set.
type SecurityHeaderCheck struct {
	Fetcher Fetcher

	// Required overrides the default header set when non-empty.
	Required []string
}

// Name returns the backend identifier.
func (c *SecurityHeaderCheck) Name() string {
	return "security-headers"
}

// Probe fetches the target and emits one finding per missing header.
func (c *SecurityHeaderCheck) Probe(ctx context.Context, target scan.Target) ([]scan.Finding, error) {
	result, err := c.Fetcher.Fetch(ctx, target.URL())
	if err != nil {
		return nil, err
	}

	required := c.Required
	if len(required) == 0 {
		required = make([]string, 0, len(requiredSecurityHeaders))
		for _, h := range requiredSecurityHeaders {
			required = append(required, h.Name)
		}
	}

	var findings []scan.Finding
	for _, name := range required {
		if result.Headers.Get(name) != "" {
			continue
		}
		findings = append(findings, scan.Finding{
			Type:          "missing_header",
			Target:        target.URL(),
			Severity:      scan.SeverityMedium,
			Description:   fmt.Sprintf("Missing %s header", name),
			Details:       []string{fmt.Sprintf("The %s header is absent from the response", name)},
			SourceBackend: c.Name(),
			DiscoveredAt:  time.Now().UTC(),
		})
	}

	return findings, nil
}
