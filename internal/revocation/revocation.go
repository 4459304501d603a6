// Copyright 2020 Adam Chalkley
//
// https://github.com/Vash63/x509chain
//
// Licensed under the MIT License. See LICENSE file in the project root for
// full license information.

// Package revocation implements the revocation-responder collaborator
// described in SPEC_FULL.md §4.8: given a (subject, issuer) certificate
// pair it reports whether the subject has been revoked, consulting OCSP
// first and falling back to a CRL distribution point. It wraps
// golang.org/x/crypto/ocsp, the same dependency cert-manager's cmctl pulls
// in for its own revocation tooling.
package revocation

import (
	"bytes"
	"context"
	"crypto/sha256"
	"crypto/x509"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"golang.org/x/crypto/ocsp"
)

// Status is the outcome of a single revocation check.
type Status int

const (
	// StatusGood means the responder affirmatively vouches for the cert.
	StatusGood Status = iota
	// StatusRevoked means the responder reports the cert as revoked.
	StatusRevoked
	// StatusUnknown means a responder was reached but had no opinion (OCSP
	// "unknown" or an unparseable answer), or no OCSP/CRL responder is
	// configured at all.
	StatusUnknown
	// StatusOffline means every responder was unreachable, as distinct
	// from StatusUnknown's "reached but had no opinion".
	StatusOffline
)

// ErrNoResponder indicates the certificate carries neither an OCSP
// responder URL nor a CRL distribution point.
var ErrNoResponder = errors.New("certificate has no revocation responder configured")

// Result is one Checker.Check outcome.
type Result struct {
	Status Status
	Err    error
}

// Checker is the revocation-responder collaborator.
type Checker interface {
	Check(ctx context.Context, subject, issuer *x509.Certificate) Result
}

// HTTPChecker checks OCSP first, falling back to CRL, over plain
// net/http. Its client is built once by NewHTTPChecker.
type HTTPChecker struct {
	client *http.Client
}

// NewHTTPChecker returns a Checker with the given per-request timeout.
func NewHTTPChecker(timeout time.Duration) *HTTPChecker {
	return &HTTPChecker{client: &http.Client{Timeout: timeout}}
}

// Check implements Checker.
func (c *HTTPChecker) Check(ctx context.Context, subject, issuer *x509.Certificate) Result {
	if len(subject.OCSPServer) > 0 {
		if result, ok := c.checkOCSP(ctx, subject, issuer); ok {
			return result
		}
	}

	if len(subject.CRLDistributionPoints) > 0 {
		return c.checkCRL(ctx, subject)
	}

	if len(subject.OCSPServer) > 0 {
		return Result{Status: StatusOffline, Err: fmt.Errorf("no answer from OCSP responder %s", subject.OCSPServer[0])}
	}

	return Result{Status: StatusUnknown, Err: ErrNoResponder}
}

// checkOCSP returns ok=false when the responder could not be reached at
// all (network failure), signalling the caller should try CRL instead of
// treating the absence of an answer as StatusUnknown.
func (c *HTTPChecker) checkOCSP(ctx context.Context, subject, issuer *x509.Certificate) (Result, bool) {
	reqBytes, err := ocsp.CreateRequest(subject, issuer, nil)
	if err != nil {
		return Result{}, false
	}

	responderURL := subject.OCSPServer[0]

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, responderURL, bytes.NewReader(reqBytes))
	if err != nil {
		return Result{}, false
	}
	httpReq.Header.Set("Content-Type", "application/ocsp-request")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return Result{}, false
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, false
	}

	ocspResp, err := ocsp.ParseResponseForCert(body, subject, issuer)
	if err != nil {
		return Result{Status: StatusUnknown, Err: fmt.Errorf("parsing OCSP response from %s: %w", responderURL, err)}, true
	}

	switch ocspResp.Status {
	case ocsp.Good:
		return Result{Status: StatusGood}, true
	case ocsp.Revoked:
		return Result{Status: StatusRevoked}, true
	default:
		return Result{Status: StatusUnknown}, true
	}
}

func (c *HTTPChecker) checkCRL(ctx context.Context, subject *x509.Certificate) Result {
	url := subject.CRLDistributionPoints[0]

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Result{Status: StatusOffline, Err: err}
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return Result{Status: StatusOffline, Err: fmt.Errorf("fetching CRL from %s: %w", url, err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{Status: StatusOffline, Err: err}
	}

	crl, err := x509.ParseRevocationList(body)
	if err != nil {
		return Result{Status: StatusUnknown, Err: fmt.Errorf("parsing CRL from %s: %w", url, err)}
	}

	for _, revoked := range crl.RevokedCertificateEntries {
		if revoked.SerialNumber != nil && subject.SerialNumber != nil &&
			revoked.SerialNumber.Cmp(subject.SerialNumber) == 0 {
			return Result{Status: StatusRevoked}
		}
	}

	return Result{Status: StatusGood}
}

func pairKey(subject, issuer *x509.Certificate) string {
	h := sha256.New()
	h.Write(subject.Raw)
	h.Write(issuer.Raw)

	return hex.EncodeToString(h.Sum(nil))
}

// CachingChecker decorates a Checker with a fixed-capacity, insertion-order
// eviction cache keyed by the (subject, issuer) pair, giving the engine's
// EngineConfig.MaxCachedCerts knob (§6) something to bound on the
// revocation side as well as the certificate-store side.
type CachingChecker struct {
	inner      Checker
	maxEntries int

	mu    sync.Mutex
	cache map[string]Result
	order []string
}

// NewCachingChecker wraps inner with a cache capped at maxEntries results.
// maxEntries <= 0 means unbounded.
func NewCachingChecker(inner Checker, maxEntries int) *CachingChecker {
	return &CachingChecker{
		inner:      inner,
		maxEntries: maxEntries,
		cache:      map[string]Result{},
	}
}

// Check consults the cache first, falling back to inner and caching inner's
// result on return.
func (c *CachingChecker) Check(ctx context.Context, subject, issuer *x509.Certificate) Result {
	key := pairKey(subject, issuer)

	if r, ok := c.lookup(key); ok {
		return r
	}

	r := c.inner.Check(ctx, subject, issuer)
	c.store(key, r)

	return r
}

// Lookup reports the cached result for (subject, issuer) without ever
// calling the wrapped Checker — the REVOCATION_CACHE_ONLY mode (§4.8).
func (c *CachingChecker) Lookup(subject, issuer *x509.Certificate) (Result, bool) {
	return c.lookup(pairKey(subject, issuer))
}

func (c *CachingChecker) lookup(key string) (Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	r, ok := c.cache[key]

	return r, ok
}

func (c *CachingChecker) store(key string, r Result) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.cache[key]; !exists {
		c.order = append(c.order, key)
	}
	c.cache[key] = r

	if c.maxEntries > 0 {
		for len(c.order) > c.maxEntries {
			oldest := c.order[0]
			c.order = c.order[1:]
			delete(c.cache, oldest)
		}
	}
}
