package backend

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultMaxBodyBytes = 1 << 20 // 1 MiB body cap per fetch

// FetchResult carries the raw bytes and headers a fetch produced.
type FetchResult struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// Fetcher supplies target content to backends. Fetch failures are
// backend-level errors, never fatal to the orchestrator.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*FetchResult, error)
}

// HTTPFetcher is the default Fetcher, a plain HTTP GET with a body cap.
type HTTPFetcher struct {
	Timeout      time.Duration
	MaxBodyBytes int64
}

// Fetch performs a GET against the URL and reads up to MaxBodyBytes.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (*FetchResult, error) {
	client := &http.Client{
		Timeout: f.Timeout,
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: false},
		},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	maxBytes := f.MaxBodyBytes
	if maxBytes <= 0 {
		maxBytes = defaultMaxBodyBytes
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBytes))
	if err != nil {
		return nil, fmt.Errorf("read body from %s: %w", url, err)
	}

	return &FetchResult{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       body,
	}, nil
}
