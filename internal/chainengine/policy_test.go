// Copyright 2024 Adam Chalkley
//
// https://github.com/Vash63/x509chain
//
// Licensed under the MIT License. See LICENSE file in the project root for
// full license information.

package chainengine

import (
	"testing"
	"time"
)

func TestRunPolicyUnknownPolicyErrors(t *testing.T) {
	_, _, leaf := buildTestChain(t)
	cc := &ChainContext{Primary: &SimpleChain{Elements: []*ChainElement{{Cert: leaf}}}}

	if _, err := RunPolicy(cc, PolicyID("NOT_REGISTERED"), "", time.Time{}); err == nil {
		t.Fatalf("expected an error for an unregistered policy ID")
	}
}

func TestRunPolicyBaseHappyPath(t *testing.T) {
	root, inter, leaf := buildTestChain(t)
	cc := &ChainContext{Primary: &SimpleChain{Elements: []*ChainElement{{Cert: leaf}, {Cert: inter}, {Cert: root}}}}

	result, err := RunPolicy(cc, PolicyBase, "", time.Time{})
	if err != nil {
		t.Fatalf("RunPolicy(BASE) returned error: %v", err)
	}

	if result.Code != PolicyCodeNoError {
		t.Fatalf("expected NO_ERROR for a clean chain, got %s at element %d", result.Code, result.ElementIndex)
	}
}

// TestRunPolicyBaseUntrustedRoot exercises §8 scenario 2: a root absent
// from the trusted-root store reduces to CERT_UNTRUSTEDROOT at (0, 2).
func TestRunPolicyBaseUntrustedRoot(t *testing.T) {
	root, inter, leaf := buildTestChain(t)
	cc := &ChainContext{Primary: &SimpleChain{Elements: []*ChainElement{
		{Cert: leaf},
		{Cert: inter},
		{Cert: root, Status: TrustStatus{Errors: ErrIsUntrustedRoot}},
	}}}

	result, err := RunPolicy(cc, PolicyBase, "", time.Time{})
	if err != nil {
		t.Fatalf("RunPolicy(BASE) returned error: %v", err)
	}

	if result.Code != PolicyCodeUntrustedRoot || result.ElementIndex != 2 {
		t.Fatalf("expected CERT_UNTRUSTEDROOT at element 2, got %s at element %d", result.Code, result.ElementIndex)
	}
}

// TestRunPolicyBaseCyclic exercises §8 scenario 6: a cyclic chain reduces
// to CERT_CHAINING with element index -1, not attributed to one cert.
func TestRunPolicyBaseCyclic(t *testing.T) {
	_, _, leaf := buildTestChain(t)
	cc := &ChainContext{Primary: &SimpleChain{Elements: []*ChainElement{
		{Cert: leaf},
		{Cert: leaf, Status: TrustStatus{Errors: ErrIsCyclic | ErrInvalidBasicConstraints}},
	}}}

	result, err := RunPolicy(cc, PolicyBase, "", time.Time{})
	if err != nil {
		t.Fatalf("RunPolicy(BASE) returned error: %v", err)
	}

	if result.Code != PolicyCodeChaining || result.ElementIndex != -1 {
		t.Fatalf("expected CERT_CHAINING at element -1, got %s at element %d", result.Code, result.ElementIndex)
	}
}

func TestRunPolicyBasicConstraintsFindsFirstOffender(t *testing.T) {
	root, inter, leaf := buildTestChain(t)
	cc := &ChainContext{Primary: &SimpleChain{Elements: []*ChainElement{
		{Cert: leaf},
		{Cert: inter, Status: TrustStatus{Errors: ErrInvalidBasicConstraints}},
		{Cert: root},
	}}}

	result, err := RunPolicy(cc, PolicyBasicConstraints, "", time.Time{})
	if err != nil {
		t.Fatalf("RunPolicy(BASIC_CONSTRAINTS) returned error: %v", err)
	}

	if result.Code != PolicyCodeBasicConstraints || result.ElementIndex != 1 {
		t.Fatalf("expected BASIC_CONSTRAINTS at element 1, got %s at element %d", result.Code, result.ElementIndex)
	}
}

// TestRunPolicyAuthenticodeUpgradesKnownTestRoot exercises §4.9's
// Authenticode test-root upgrade: an untrusted root whose public key is a
// registered Authenticode test-root key reduces to UNTRUSTEDTESTROOT
// instead of CERT_UNTRUSTEDROOT.
func TestRunPolicyAuthenticodeUpgradesKnownTestRoot(t *testing.T) {
	root, inter, leaf := buildTestChain(t)

	RegisterAuthenticodeTestRootFingerprint(spkiFingerprint(root))
	t.Cleanup(func() { delete(authenticodeTestRootSPKIFingerprints, spkiFingerprint(root)) })

	cc := &ChainContext{Primary: &SimpleChain{Elements: []*ChainElement{
		{Cert: leaf},
		{Cert: inter},
		{Cert: root, Status: TrustStatus{Errors: ErrIsUntrustedRoot}},
	}}}

	result, err := RunPolicy(cc, PolicyAuthenticode, "", time.Time{})
	if err != nil {
		t.Fatalf("RunPolicy(AUTHENTICODE) returned error: %v", err)
	}

	if result.Code != PolicyCodeUntrustedTestRoot || result.ElementIndex != 2 {
		t.Fatalf("expected UNTRUSTEDTESTROOT at element 2, got %s at element %d", result.Code, result.ElementIndex)
	}
}

func TestRunPolicyAuthenticodeLeavesUnknownRootUnupgraded(t *testing.T) {
	root, inter, leaf := buildTestChain(t)
	cc := &ChainContext{Primary: &SimpleChain{Elements: []*ChainElement{
		{Cert: leaf},
		{Cert: inter},
		{Cert: root, Status: TrustStatus{Errors: ErrIsUntrustedRoot}},
	}}}

	result, err := RunPolicy(cc, PolicyAuthenticode, "", time.Time{})
	if err != nil {
		t.Fatalf("RunPolicy(AUTHENTICODE) returned error: %v", err)
	}

	if result.Code != PolicyCodeUntrustedRoot {
		t.Fatalf("expected CERT_UNTRUSTEDROOT for a non-test root, got %s", result.Code)
	}
}

func TestRunPolicySSLMatchesSubjectAltName(t *testing.T) {
	root, inter, leaf := buildTestChain(t)
	cc := &ChainContext{Primary: &SimpleChain{Elements: []*ChainElement{{Cert: leaf}, {Cert: inter}, {Cert: root}}}}

	result, err := RunPolicy(cc, PolicySSL, "leaf.example.com", time.Time{})
	if err != nil {
		t.Fatalf("RunPolicy(SSL) returned error: %v", err)
	}

	if result.Code != PolicyCodeNoError {
		t.Fatalf("expected a matching server name to produce NO_ERROR, got %s", result.Code)
	}
}

// TestRunPolicySSLRejectsSuffixOnlyMatch guards against a full-string
// equality regression: a server name that is merely a suffix of a SAN
// entry (or vice versa) must not be treated as a match (§4.9 step 1).
func TestRunPolicySSLRejectsSuffixOnlyMatch(t *testing.T) {
	root, inter, leaf := buildTestChain(t)
	cc := &ChainContext{Primary: &SimpleChain{Elements: []*ChainElement{{Cert: leaf}, {Cert: inter}, {Cert: root}}}}

	result, err := RunPolicy(cc, PolicySSL, "evil-leaf.example.com", time.Time{})
	if err != nil {
		t.Fatalf("RunPolicy(SSL) returned error: %v", err)
	}

	if result.Code != PolicyCodeCNNoMatch {
		t.Fatalf("expected a suffix-only match to be rejected as CN_NO_MATCH, got %s", result.Code)
	}
}

// TestRunPolicySSLRejectsMismatchedServerName exercises §8 scenario 5: no
// matching SAN entry reduces to CN_NO_MATCH at (0, 0).
func TestRunPolicySSLRejectsMismatchedServerName(t *testing.T) {
	root, inter, leaf := buildTestChain(t)
	cc := &ChainContext{Primary: &SimpleChain{Elements: []*ChainElement{{Cert: leaf}, {Cert: inter}, {Cert: root}}}}

	result, err := RunPolicy(cc, PolicySSL, "not-the-right-host.example.com", time.Time{})
	if err != nil {
		t.Fatalf("RunPolicy(SSL) returned error: %v", err)
	}

	if result.Code != PolicyCodeCNNoMatch || result.ChainIndex != 0 || result.ElementIndex != 0 {
		t.Fatalf("expected CN_NO_MATCH at (0, 0), got %s at (%d, %d)", result.Code, result.ChainIndex, result.ElementIndex)
	}
}

// TestRunPolicySSLUntrustedRoot exercises §8 scenario 2's SSL-policy half:
// the same untrusted-root locator base policy produces.
func TestRunPolicySSLUntrustedRoot(t *testing.T) {
	root, inter, leaf := buildTestChain(t)
	cc := &ChainContext{Primary: &SimpleChain{Elements: []*ChainElement{
		{Cert: leaf},
		{Cert: inter},
		{Cert: root, Status: TrustStatus{Errors: ErrIsUntrustedRoot}},
	}}}

	result, err := RunPolicy(cc, PolicySSL, "leaf.example.com", time.Time{})
	if err != nil {
		t.Fatalf("RunPolicy(SSL) returned error: %v", err)
	}

	if result.Code != PolicyCodeUntrustedRoot || result.ElementIndex != 2 {
		t.Fatalf("expected CERT_UNTRUSTEDROOT at element 2, got %s at element %d", result.Code, result.ElementIndex)
	}
}

// TestRunPolicySSLExpiredLeaf exercises §8 scenario 3: an expired leaf
// reduces to CERT_EXPIRED at (0, 0).
func TestRunPolicySSLExpiredLeaf(t *testing.T) {
	root, inter, leaf := buildTestChain(t)
	cc := &ChainContext{Primary: &SimpleChain{Elements: []*ChainElement{
		{Cert: leaf, Status: TrustStatus{Errors: ErrIsNotTimeValid}},
		{Cert: inter},
		{Cert: root},
	}}}

	result, err := RunPolicy(cc, PolicySSL, "leaf.example.com", time.Time{})
	if err != nil {
		t.Fatalf("RunPolicy(SSL) returned error: %v", err)
	}

	if result.Code != PolicyCodeExpired || result.ElementIndex != 0 {
		t.Fatalf("expected CERT_EXPIRED at element 0, got %s at element %d", result.Code, result.ElementIndex)
	}
}

// TestRunPolicySSLCyclicIsUntrustedRoot exercises §4.9's SSL-specific
// cyclic mapping: unlike Base, SSL treats a cyclic chain as
// CERT_UNTRUSTEDROOT rather than CERT_CHAINING.
func TestRunPolicySSLCyclicIsUntrustedRoot(t *testing.T) {
	_, _, leaf := buildTestChain(t)
	cc := &ChainContext{Primary: &SimpleChain{Elements: []*ChainElement{
		{Cert: leaf},
		{Cert: leaf, Status: TrustStatus{Errors: ErrIsCyclic | ErrInvalidBasicConstraints}},
	}}}

	result, err := RunPolicy(cc, PolicySSL, "leaf.example.com", time.Time{})
	if err != nil {
		t.Fatalf("RunPolicy(SSL) returned error: %v", err)
	}

	if result.Code != PolicyCodeUntrustedRoot {
		t.Fatalf("expected a cyclic SSL chain to reduce to CERT_UNTRUSTEDROOT, got %s", result.Code)
	}
}

func TestRunPolicyMicrosoftRootOmitsLocatorForUnknownRoot(t *testing.T) {
	root, inter, leaf := buildTestChain(t)
	cc := &ChainContext{Primary: &SimpleChain{Elements: []*ChainElement{{Cert: leaf}, {Cert: inter}, {Cert: root}}}}

	result, err := RunPolicy(cc, PolicyMicrosoftRoot, "", time.Time{})
	if err != nil {
		t.Fatalf("RunPolicy(MICROSOFT_ROOT) returned error: %v", err)
	}

	if result.Code != PolicyCodeNoError || result.ElementIndex == 0 {
		t.Fatalf("expected a non-Microsoft root to pass Base without the informational locator, got %s at element %d", result.Code, result.ElementIndex)
	}
}

func TestRunPolicyMicrosoftRootSetsInformationalLocator(t *testing.T) {
	root, inter, leaf := buildTestChain(t)

	RegisterMicrosoftRootFingerprint(spkiFingerprint(root))
	t.Cleanup(func() { delete(microsoftRootSPKIFingerprints, spkiFingerprint(root)) })

	cc := &ChainContext{Primary: &SimpleChain{Elements: []*ChainElement{{Cert: leaf}, {Cert: inter}, {Cert: root}}}}

	result, err := RunPolicy(cc, PolicyMicrosoftRoot, "", time.Time{})
	if err != nil {
		t.Fatalf("RunPolicy(MICROSOFT_ROOT) returned error: %v", err)
	}

	if result.Code != PolicyCodeNoError || result.ChainIndex != 0 || result.ElementIndex != 0 {
		t.Fatalf("expected the informational locator (0, 0), got %s at (%d, %d)", result.Code, result.ChainIndex, result.ElementIndex)
	}
}

func TestRunPolicyMicrosoftRootPropagatesBaseFailure(t *testing.T) {
	root, inter, leaf := buildTestChain(t)
	cc := &ChainContext{Primary: &SimpleChain{Elements: []*ChainElement{
		{Cert: leaf},
		{Cert: inter},
		{Cert: root, Status: TrustStatus{Errors: ErrIsUntrustedRoot}},
	}}}

	result, err := RunPolicy(cc, PolicyMicrosoftRoot, "", time.Time{})
	if err != nil {
		t.Fatalf("RunPolicy(MICROSOFT_ROOT) returned error: %v", err)
	}

	if result.Code != PolicyCodeUntrustedRoot {
		t.Fatalf("expected MICROSOFT_ROOT to run Base first and surface its failure, got %s", result.Code)
	}
}

func TestRegisterPolicyAddsCustomVerifier(t *testing.T) {
	called := false

	RegisterPolicy("CUSTOM_TEST_POLICY", func(cc *ChainContext, sslServerName string, evalTime time.Time) PolicyResult {
		called = true

		return NoErrorResult
	})

	v, ok := LookupPolicy("CUSTOM_TEST_POLICY")
	if !ok || v == nil {
		t.Fatalf("expected RegisterPolicy to make the verifier discoverable via LookupPolicy")
	}

	_, _, leaf := buildTestChain(t)
	cc := &ChainContext{Primary: &SimpleChain{Elements: []*ChainElement{{Cert: leaf}}}}

	if _, err := RunPolicy(cc, "CUSTOM_TEST_POLICY", "", time.Time{}); err != nil {
		t.Fatalf("RunPolicy returned error: %v", err)
	}

	if !called {
		t.Fatalf("expected the registered custom verifier to be invoked")
	}
}
