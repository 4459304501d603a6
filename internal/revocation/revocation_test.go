// Copyright 2024 Adam Chalkley
//
// https://github.com/Vash63/x509chain
//
// Licensed under the MIT License. See LICENSE file in the project root for
// full license information.

package revocation

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"math/big"
	"testing"
	"time"
)

func genTestCert(t *testing.T, cn string, serial int64) *x509.Certificate {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("generating key: %v", err)
	}

	now := time.Now()
	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(serial),
		Subject:      pkix.Name{CommonName: cn},
		NotBefore:    now.Add(-time.Hour),
		NotAfter:     now.Add(time.Hour * 24 * 365),
	}

	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	if err != nil {
		t.Fatalf("creating certificate: %v", err)
	}

	cert, err := x509.ParseCertificate(der)
	if err != nil {
		t.Fatalf("parsing certificate: %v", err)
	}

	return cert
}

// stubChecker is a Checker whose result is fixed at construction, used to
// isolate CachingChecker's caching behavior from any real responder.
type stubChecker struct {
	calls  int
	result Result
}

func (s *stubChecker) Check(ctx context.Context, subject, issuer *x509.Certificate) Result {
	s.calls++
	return s.result
}

func TestHTTPCheckerNoResponderConfigured(t *testing.T) {
	subject := genTestCert(t, "No Responder", 1)
	issuer := genTestCert(t, "Issuer", 2)

	checker := NewHTTPChecker(time.Second)
	result := checker.Check(context.Background(), subject, issuer)

	if result.Status != StatusUnknown || result.Err != ErrNoResponder {
		t.Fatalf("expected StatusUnknown/ErrNoResponder for a cert with no OCSP/CRL endpoints, got %+v", result)
	}
}

func TestCachingCheckerCachesResult(t *testing.T) {
	subject := genTestCert(t, "Cached Subject", 1)
	issuer := genTestCert(t, "Cached Issuer", 2)

	stub := &stubChecker{result: Result{Status: StatusGood}}
	cache := NewCachingChecker(stub, 10)

	first := cache.Check(context.Background(), subject, issuer)
	second := cache.Check(context.Background(), subject, issuer)

	if first.Status != StatusGood || second.Status != StatusGood {
		t.Fatalf("expected both calls to report StatusGood")
	}

	if stub.calls != 1 {
		t.Fatalf("expected the wrapped checker to be invoked once, got %d calls", stub.calls)
	}
}

func TestCachingCheckerLookupNeverCallsInner(t *testing.T) {
	subject := genTestCert(t, "Lookup Subject", 1)
	issuer := genTestCert(t, "Lookup Issuer", 2)

	stub := &stubChecker{result: Result{Status: StatusRevoked}}
	cache := NewCachingChecker(stub, 10)

	if _, ok := cache.Lookup(subject, issuer); ok {
		t.Fatalf("expected no cached entry before any Check call")
	}

	if stub.calls != 0 {
		t.Fatalf("expected Lookup to never invoke the wrapped checker, got %d calls", stub.calls)
	}

	cache.Check(context.Background(), subject, issuer)

	result, ok := cache.Lookup(subject, issuer)
	if !ok || result.Status != StatusRevoked {
		t.Fatalf("expected Lookup to find the cached result after a Check call")
	}

	if stub.calls != 1 {
		t.Fatalf("expected Lookup itself to never invoke the wrapped checker, got %d calls", stub.calls)
	}
}

func TestCachingCheckerEvictsOldestBeyondCapacity(t *testing.T) {
	stub := &stubChecker{result: Result{Status: StatusGood}}
	cache := NewCachingChecker(stub, 2)

	issuer := genTestCert(t, "Shared Issuer", 100)
	subjects := make([]*x509.Certificate, 3)
	for i := range subjects {
		subjects[i] = genTestCert(t, "Subject", int64(i+1))
		cache.Check(context.Background(), subjects[i], issuer)
	}

	if _, ok := cache.Lookup(subjects[0], issuer); ok {
		t.Fatalf("expected the oldest entry to have been evicted once capacity was exceeded")
	}

	if _, ok := cache.Lookup(subjects[2], issuer); !ok {
		t.Fatalf("expected the most recent entry to remain cached")
	}
}
