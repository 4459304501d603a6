// Copyright 2024 Adam Chalkley
//
// https://github.com/Vash63/x509chain
//
// Licensed under the MIT License. See LICENSE file in the project root for
// full license information.

package chainengine

import (
	"crypto/x509"
	"crypto/x509/pkix"
	"testing"
	"time"

	"github.com/Vash63/x509chain/internal/certstore"
)

func TestValidateSimpleChainFlagsExpiredLeaf(t *testing.T) {
	now := time.Now()

	rootTmpl := &x509.Certificate{
		SerialNumber:          testSerial(t, 1),
		Subject:               pkix.Name{CommonName: "Test Root CA"},
		NotBefore:             now.Add(-time.Hour),
		NotAfter:              now.Add(time.Hour * 24 * 365),
		BasicConstraintsValid: true,
		IsCA:                  true,
		KeyUsage:              x509.KeyUsageCertSign | x509.KeyUsageCRLSign,
	}
	rootCert, rootKey := genCert(t, rootTmpl, nil, nil)

	interTmpl := &x509.Certificate{
		SerialNumber:          testSerial(t, 2),
		Subject:               pkix.Name{CommonName: "Test Intermediate CA"},
		NotBefore:             now.Add(-time.Hour),
		NotAfter:              now.Add(time.Hour * 24 * 365),
		BasicConstraintsValid: true,
		IsCA:                  true,
		KeyUsage:              x509.KeyUsageCertSign | x509.KeyUsageCRLSign,
	}
	interCert, interKey := genCert(t, interTmpl, rootCert, rootKey)

	expiredLeafTmpl := &x509.Certificate{
		SerialNumber: testSerial(t, 3),
		Subject:      pkix.Name{CommonName: "expired.example.com"},
		DNSNames:     []string{"expired.example.com"},
		NotBefore:    now.Add(-time.Hour * 24 * 30),
		NotAfter:     now.Add(-time.Hour), // already expired
		KeyUsage:     x509.KeyUsageDigitalSignature,
	}
	expiredLeaf, _ := genCert(t, expiredLeafTmpl, interCert, interKey)

	chain := &SimpleChain{Elements: []*ChainElement{{Cert: expiredLeaf}, {Cert: interCert}, {Cert: rootCert}}}

	validateSimpleChain(chain, ValidateOptions{})

	if !chain.Elements[0].Status.Errors.Has(ErrIsNotTimeValid) {
		t.Fatalf("expected expired leaf to carry IS_NOT_TIME_VALID, got %s", chain.Elements[0].Status.Errors)
	}
}

func TestValidateSimpleChainUntrustedRoot(t *testing.T) {
	root, inter, leaf := buildTestChain(t)

	chain := &SimpleChain{Elements: []*ChainElement{{Cert: leaf}, {Cert: inter}, {Cert: root}}}

	// An empty trusted-root store means the self-signed root cannot be
	// found there, so it should be flagged untrusted.
	opts := ValidateOptions{TrustedRootStore: certstore.NewMemoryStore()}
	validateSimpleChain(chain, opts)

	if !chain.Elements[2].Status.Errors.Has(ErrIsUntrustedRoot) {
		t.Fatalf("expected root to be flagged IS_UNTRUSTED_ROOT, got %s", chain.Elements[2].Status.Errors)
	}
}

func TestValidateSimpleChainTrustedRootClean(t *testing.T) {
	root, inter, leaf := buildTestChain(t)

	chain := &SimpleChain{Elements: []*ChainElement{{Cert: leaf}, {Cert: inter}, {Cert: root}}}

	store := certstore.NewMemoryStore()
	store.Add(root)

	validateSimpleChain(chain, ValidateOptions{TrustedRootStore: store})

	if !chain.Aggregate.IsClean() {
		t.Fatalf("expected a well-formed, trusted chain to validate clean, got %s", chain.Aggregate.Errors)
	}
}
