// Copyright 2020 Adam Chalkley
//
// https://github.com/Vash63/x509chain
//
// Licensed under the MIT License. See LICENSE file in the project root for
// full license information.

package certstore

import (
	"context"
	"crypto/x509"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

// AIAFetcher retrieves a missing issuer certificate from an Authority
// Information Access URL. It is a supplemental collaborator (SPEC_FULL.md
// §4): the issuer resolver consults it only after every store-backed
// lookup has failed, and never changes the store-first resolution order
// the engine otherwise requires.
type AIAFetcher interface {
	FetchIssuer(ctx context.Context, url string) (*x509.Certificate, error)
}

// HTTPAIAFetcher fetches a DER-encoded issuer certificate over HTTP(S),
// modeled on the lazily-built, mutex-guarded HTTP client pattern used by
// the tls-cert-chain-resolver example's HTTPConfig.
type HTTPAIAFetcher struct {
	Timeout time.Duration

	mu     sync.Mutex
	client *http.Client
}

// NewHTTPAIAFetcher returns a fetcher with the given request timeout.
func NewHTTPAIAFetcher(timeout time.Duration) *HTTPAIAFetcher {
	return &HTTPAIAFetcher{Timeout: timeout}
}

func (f *HTTPAIAFetcher) httpClient() *http.Client {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.client == nil || f.client.Timeout != f.Timeout {
		f.client = &http.Client{Timeout: f.Timeout}
	}

	return f.client
}

// FetchIssuer retrieves and parses a single DER-encoded certificate from
// url.
func (f *HTTPAIAFetcher) FetchIssuer(ctx context.Context, url string) (*x509.Certificate, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building AIA request for %s: %w", url, err)
	}

	resp, err := f.httpClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching AIA issuer from %s: %w", url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading AIA response body from %s: %w", url, err)
	}

	cert, err := x509.ParseCertificate(body)
	if err != nil {
		return nil, fmt.Errorf("parsing AIA issuer certificate from %s: %w", url, err)
	}

	return cert, nil
}
