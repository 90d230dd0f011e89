package scan

import (
	"errors"
	"testing"

	sharedErrors "github.com/bughunter/bughunter/internal/shared/errors"
)

func TestNewTargetBareHostDefaultsToHTTP(t *testing.T) {
	target, err := NewTarget("example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if target.Scheme() != "http" {
		t.Errorf("expected scheme http, got %s", target.Scheme())
	}
	if target.Host() != "example.com" {
		t.Errorf("expected host example.com, got %s", target.Host())
	}
	if target.URL() != "http://example.com" {
		t.Errorf("expected url http://example.com, got %s", target.URL())
	}
}

func TestNewTargetPreservesHTTPS(t *testing.T) {
	target, err := NewTarget("https://example.com:8443/login")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if target.Scheme() != "https" {
		t.Errorf("expected scheme https, got %s", target.Scheme())
	}
	if target.Port() != "8443" {
		t.Errorf("expected port 8443, got %s", target.Port())
	}
	if target.Host() != "example.com" {
		t.Errorf("expected host example.com, got %s", target.Host())
	}
}

func TestNewTargetHostWithPort(t *testing.T) {
	target, err := NewTarget("example.com:8080")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if target.Scheme() != "http" {
		t.Errorf("expected scheme http, got %s", target.Scheme())
	}
	if target.Port() != "8080" {
		t.Errorf("expected port 8080, got %s", target.Port())
	}
}

func TestNewTargetRejectsEmpty(t *testing.T) {
	if _, err := NewTarget("   "); !errors.Is(err, sharedErrors.ErrEmptyTarget) {
		t.Errorf("expected ErrEmptyTarget, got %v", err)
	}
}

func TestNewTargetRejectsNonHTTPSchemes(t *testing.T) {
	for _, raw := range []string{"ftp://example.com", "gopher://example.com", "file:///etc/passwd"} {
		if _, err := NewTarget(raw); !errors.Is(err, sharedErrors.ErrInvalidTarget) {
			t.Errorf("%s: expected ErrInvalidTarget, got %v", raw, err)
		}
	}
}

func TestNewTargetRejectsEmptyHost(t *testing.T) {
	for _, raw := range []string{"http://", "https:///path"} {
		if _, err := NewTarget(raw); !errors.Is(err, sharedErrors.ErrInvalidTarget) {
			t.Errorf("%s: expected ErrInvalidTarget, got %v", raw, err)
		}
	}
}

func TestNewTargetDotFreeHostWithPort(t *testing.T) {
	// "localhost:8080" parses as scheme "localhost" without the
	// explicit-scheme check; it must still normalize as a host.
	target, err := NewTarget("localhost:8080")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if target.Host() != "localhost" || target.Port() != "8080" {
		t.Errorf("expected localhost:8080, got %s:%s", target.Host(), target.Port())
	}
	if target.Scheme() != "http" {
		t.Errorf("expected scheme http, got %s", target.Scheme())
	}
}

func TestNewTargetKeepsOriginal(t *testing.T) {
	target, err := NewTarget("example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if target.Original() != "example.com" {
		t.Errorf("expected original example.com, got %s", target.Original())
	}
}
