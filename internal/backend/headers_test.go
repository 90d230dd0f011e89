package backend

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bughunter/bughunter/internal/domain/scan"
)

func newTestTarget(t *testing.T, url string) scan.Target {
	t.Helper()
	target, err := scan.NewTarget(url)
	if err != nil {
		t.Fatalf("failed to create target: %v", err)
	}
	return target
}

func TestSecurityHeaderCheckReportsMissingHeaders(t *testing.T) {
	// Serve every required header except X-Frame-Options and
	// Content-Security-Policy.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Strict-Transport-Security", "max-age=63072000")
		w.Header().Set("Referrer-Policy", "no-referrer")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	check := &SecurityHeaderCheck{Fetcher: &HTTPFetcher{Timeout: 5 * time.Second}}
	findings, err := check.Probe(context.Background(), newTestTarget(t, srv.URL))
	if err != nil {
		t.Fatalf("probe failed: %v", err)
	}

	if len(findings) != 2 {
		t.Fatalf("expected exactly 2 findings, got %d", len(findings))
	}

	missing := map[string]bool{}
	for _, f := range findings {
		if f.Type != "missing_header" {
			t.Errorf("expected type missing_header, got %s", f.Type)
		}
		if f.Severity != scan.SeverityMedium {
			t.Errorf("expected severity medium, got %s", f.Severity)
		}
		if f.SourceBackend != "security-headers" {
			t.Errorf("unexpected source backend: %s", f.SourceBackend)
		}
		missing[f.Description] = true
	}
	if !missing["Missing X-Frame-Options header"] || !missing["Missing Content-Security-Policy header"] {
		t.Errorf("unexpected finding descriptions: %v", missing)
	}
}

func TestSecurityHeaderCheckAllHeadersPresent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Content-Security-Policy", "default-src 'self'")
		w.Header().Set("Strict-Transport-Security", "max-age=63072000")
		w.Header().Set("Referrer-Policy", "no-referrer")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	check := &SecurityHeaderCheck{Fetcher: &HTTPFetcher{Timeout: 5 * time.Second}}
	findings, err := check.Probe(context.Background(), newTestTarget(t, srv.URL))
	if err != nil {
		t.Fatalf("probe failed: %v", err)
	}
	if len(findings) != 0 {
		t.Errorf("expected no findings, got %d", len(findings))
	}
}

func TestSecurityHeaderCheckCustomRequiredSet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	check := &SecurityHeaderCheck{
		Fetcher:  &HTTPFetcher{Timeout: 5 * time.Second},
		Required: []string{"X-Custom-Header"},
	}
	findings, err := check.Probe(context.Background(), newTestTarget(t, srv.URL))
	if err != nil {
		t.Fatalf("probe failed: %v", err)
	}
	if len(findings) != 1 {
		t.Fatalf("expected 1 finding, got %d", len(findings))
	}
	if findings[0].Description != "Missing X-Custom-Header header" {
		t.Errorf("unexpected description: %s", findings[0].Description)
	}
}

func TestSecurityHeaderCheckFetchFailure(t *testing.T) {
	check := &SecurityHeaderCheck{Fetcher: &HTTPFetcher{Timeout: time.Second}}
	_, err := check.Probe(context.Background(), newTestTarget(t, "http://127.0.0.1:1"))
	if err == nil {
		t.Error("expected an error for unreachable target")
	}
}
