package scan

import (
	"net/url"
	"strings"

	sharedErrors "github.com/bughunter/bughunter/internal/shared/errors"
)

// Target is a normalized, scheme-qualified scan target.
type Target struct {
	original string
	scheme   string
	host     string
	port     string
	url      string
}

// NewTarget parses and normalizes a target string. Accepted forms:
//   - example.com
//   - http://example.com
//   - https://example.com:8443/path
//
// A bare host is normalized to http://. Construction fails when no
// host can be extracted.
func NewTarget(raw string) (Target, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Target{}, sharedErrors.ErrEmptyTarget
	}

	var parsed *url.URL
	var err error
	if strings.Contains(raw, "://") {
		// An explicit scheme was supplied; never rewrite it, so
		// "file:///etc/passwd" fails the allowlist below instead of
		// being reinterpreted as an http host.
		parsed, err = url.Parse(raw)
	} else {
		// Bare host, host:port or host/path. url.Parse alone would
		// read "example.com:8080" as scheme "example.com"; parse with
		// an explicit scheme instead.
		parsed, err = url.Parse("http://" + raw)
	}
	if err != nil {
		return Target{}, sharedErrors.ErrInvalidTarget
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return Target{}, sharedErrors.ErrInvalidTarget
	}
	if parsed.Hostname() == "" {
		return Target{}, sharedErrors.ErrInvalidTarget
	}

	return Target{
		original: raw,
		scheme:   parsed.Scheme,
		host:     parsed.Hostname(),
		port:     parsed.Port(),
		url:      parsed.String(),
	}, nil
}

// Original returns the target string as submitted.
func (t Target) Original() string {
	return t.original
}

// Scheme returns the URL scheme, always http or https.
func (t Target) Scheme() string {
	return t.scheme
}

// Host returns the bare hostname without port or path.
func (t Target) Host() string {
	return t.host
}

// Port returns the explicit port, or empty when the scheme default applies.
func (t Target) Port() string {
	return t.port
}

// URL returns the full normalized URL used for HTTP requests.
func (t Target) URL() string {
	return t.url
}
