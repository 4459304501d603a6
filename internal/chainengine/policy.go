// Copyright 2020 Adam Chalkley
//
// https://github.com/Vash63/x509chain
//
// Licensed under the MIT License. See LICENSE file in the project root for
// full license information.

package chainengine

import (
	"crypto/x509/pkix"
	"encoding/asn1"
	"fmt"
	"strings"
	"time"
)

// PolicyID names one of the built-in policy verifiers, or a caller-provided
// custom one (§4.9).
type PolicyID string

// Built-in policy identifiers.
const (
	PolicyBase             PolicyID = "BASE"
	PolicyBasicConstraints PolicyID = "BASIC_CONSTRAINTS"
	PolicyAuthenticode     PolicyID = "AUTHENTICODE"
	PolicySSL              PolicyID = "SSL"
	PolicyMicrosoftRoot    PolicyID = "MICROSOFT_ROOT"
)

// PolicyCode is the single error code a policy verifier reduces a chain's
// status bits to (§4.9, §7). The built-in verifiers only ever produce the
// codes declared below; a custom verifier may return any other string.
type PolicyCode string

// Built-in policy codes (§4.9, §8 scenarios 2/3/5/6).
const (
	PolicyCodeNoError           PolicyCode = "NO_ERROR"
	PolicyCodeCertSignature     PolicyCode = "CERT_SIGNATURE"
	PolicyCodeUntrustedRoot     PolicyCode = "CERT_UNTRUSTEDROOT"
	PolicyCodeChaining          PolicyCode = "CERT_CHAINING"
	PolicyCodeBasicConstraints  PolicyCode = "BASIC_CONSTRAINTS"
	PolicyCodeExpired           PolicyCode = "CERT_EXPIRED"
	PolicyCodeUntrustedTestRoot PolicyCode = "UNTRUSTEDTESTROOT"
	PolicyCodeCNNoMatch         PolicyCode = "CN_NO_MATCH"
)

// PolicyResult is the code + locator a policy verifier returns (§4.9, §7).
// ChainIndex addresses which simple chain the fault belongs to (0 for
// every built-in, since they only ever inspect cc.Primary); ElementIndex
// addresses the faulting element within that chain, or -1 when the fault
// isn't attributable to a single element (e.g. CERT_CHAINING).
type PolicyResult struct {
	Code         PolicyCode
	ChainIndex   int
	ElementIndex int
}

// NoErrorResult is the PolicyResult every built-in verifier returns on
// success, absent a policy-specific informational locator.
var NoErrorResult = PolicyResult{Code: PolicyCodeNoError, ElementIndex: -1}

// PolicyVerifier inspects a built ChainContext against a policy-specific
// rule set, beyond what validateSimpleChain already enforces generically,
// and reduces the chain's status to a single PolicyResult (§4.9, §7, P8
// "policy purity": a pure function of the chain context and parameters).
//
// sslServerName is consulted only by PolicySSL (the expected server name
// being verified against); every other policy ignores it.
type PolicyVerifier func(cc *ChainContext, sslServerName string, evalTime time.Time) PolicyResult

// policyRegistry maps a PolicyID to its verifier. Populated by the five
// built-ins; callers may register additional entries with
// RegisterPolicy.
var policyRegistry = map[PolicyID]PolicyVerifier{
	PolicyBase:             verifyBasePolicy,
	PolicyBasicConstraints: verifyBasicConstraintsPolicy,
	PolicyAuthenticode:     verifyAuthenticodePolicy,
	PolicySSL:              verifySSLPolicy,
	PolicyMicrosoftRoot:    verifyMicrosoftRootPolicy,
}

// RegisterPolicy adds or replaces a caller-defined policy verifier,
// extending the registry beyond the five built-ins (§4.9, "user-extensible
// registry").
func RegisterPolicy(id PolicyID, verifier PolicyVerifier) {
	policyRegistry[id] = verifier
}

// LookupPolicy returns the verifier registered for id, or nil if none is.
func LookupPolicy(id PolicyID) (PolicyVerifier, bool) {
	v, ok := policyRegistry[id]

	return v, ok
}

// verifyBasePolicy implements §4.9's Base rule: the first element with
// IS_NOT_SIGNATURE_VALID reduces to CERT_SIGNATURE; else the first with
// IS_UNTRUSTED_ROOT reduces to CERT_UNTRUSTEDROOT; else any cyclic element
// reduces to CERT_CHAINING (element index -1, since the fault is the
// chain's shape, not one certificate); else success.
func verifyBasePolicy(cc *ChainContext, _ string, _ time.Time) PolicyResult {
	chain := cc.Primary

	for i, el := range chain.Elements {
		if el.Status.Errors.Has(ErrIsNotSignatureValid) {
			return PolicyResult{Code: PolicyCodeCertSignature, ElementIndex: i}
		}
	}

	for i, el := range chain.Elements {
		if el.Status.Errors.Has(ErrIsUntrustedRoot) {
			return PolicyResult{Code: PolicyCodeUntrustedRoot, ElementIndex: i}
		}
	}

	for _, el := range chain.Elements {
		if el.Status.Errors.Has(ErrIsCyclic) {
			return PolicyResult{Code: PolicyCodeChaining, ElementIndex: -1}
		}
	}

	return NoErrorResult
}

// verifyBasicConstraintsPolicy reduces to BASIC_CONSTRAINTS at the first
// element carrying INVALID_BASIC_CONSTRAINTS, else success (§4.9).
func verifyBasicConstraintsPolicy(cc *ChainContext, _ string, _ time.Time) PolicyResult {
	chain := cc.Primary

	for i, el := range chain.Elements {
		if el.Status.Errors.Has(ErrInvalidBasicConstraints) {
			return PolicyResult{Code: PolicyCodeBasicConstraints, ElementIndex: i}
		}
	}

	return NoErrorResult
}

// verifyAuthenticodePolicy runs Base; if the result is CERT_UNTRUSTEDROOT
// and the faulting certificate's public key is one of the known
// Authenticode test-root keys, the code is upgraded to UNTRUSTEDTESTROOT
// (§4.9).
func verifyAuthenticodePolicy(cc *ChainContext, sslServerName string, evalTime time.Time) PolicyResult {
	result := verifyBasePolicy(cc, sslServerName, evalTime)

	if result.Code == PolicyCodeUntrustedRoot && result.ElementIndex >= 0 {
		faulting := cc.Primary.Elements[result.ElementIndex].Cert
		if isWellKnownAuthenticodeTestRoot(faulting) {
			result.Code = PolicyCodeUntrustedTestRoot
		}
	}

	return result
}

// oidDomainComponent and oidCommonName identify the RDN attributes §4.9
// SSL step 2/3 fall back to when the leaf carries no subjectAltName.
var (
	oidDomainComponent = asn1.ObjectIdentifier{0, 9, 2342, 19200300, 100, 1, 25}
	oidCommonName      = asn1.ObjectIdentifier{2, 5, 4, 3}
)

// rdnStrings returns every string-valued RDN attribute of the given OID
// present in names.
func rdnStrings(names []pkix.AttributeTypeAndValue, oid asn1.ObjectIdentifier) []string {
	var values []string
	for _, atv := range names {
		if !oidEqual(atv.Type, oid) {
			continue
		}
		if s, ok := atv.Value.(string); ok {
			values = append(values, s)
		}
	}

	return values
}

// lengthBoundedEqualFold reports whether a and b are case-insensitively
// equal, bounding each side at 254 bytes per §4.9 steps 2/3 ("length-bounded
// comparison... do not rely on NUL termination").
func lengthBoundedEqualFold(a, b string) bool {
	const maxLen = 254
	if len(a) > maxLen || len(b) > maxLen {
		return false
	}

	return strings.EqualFold(a, b)
}

// matchServerName implements §4.9 SSL steps 1-3: a subjectAltName dNSName
// entry must fully (case-insensitively) equal serverName; absent a SAN,
// every dot-separated label of serverName must match one of the leaf's
// domainComponent RDN attributes; absent either, serverName is compared
// against commonName.
func matchServerName(leaf *ChainElement, serverName string) bool {
	san := InspectSubjectAltName(leaf.Cert)
	if san.Present {
		for _, dnsName := range san.DNS {
			if strings.EqualFold(dnsName, serverName) {
				return true
			}
		}

		return false
	}

	domainComponents := rdnStrings(leaf.Cert.Subject.Names, oidDomainComponent)
	if len(domainComponents) > 0 {
		for _, label := range strings.Split(serverName, ".") {
			if len(label) > 254 {
				return false
			}

			matched := false
			for _, dc := range domainComponents {
				if lengthBoundedEqualFold(label, dc) {
					matched = true

					break
				}
			}
			if !matched {
				return false
			}
		}

		return true
	}

	commonNames := rdnStrings(leaf.Cert.Subject.Names, oidCommonName)
	if len(commonNames) == 0 {
		return lengthBoundedEqualFold(serverName, leaf.Cert.Subject.CommonName)
	}

	for _, cn := range commonNames {
		if lengthBoundedEqualFold(serverName, cn) {
			return true
		}
	}

	return false
}

// verifySSLPolicy implements §4.9's SSL rule: Base-style checks extended to
// flag IS_NOT_TIME_VALID as CERT_EXPIRED and to treat a cyclic chain as
// CERT_UNTRUSTEDROOT rather than CERT_CHAINING; if the chain is otherwise
// clean and sslServerName is non-empty, the leaf's name must match it
// (matchServerName), else CN_NO_MATCH at (0, 0).
func verifySSLPolicy(cc *ChainContext, sslServerName string, _ time.Time) PolicyResult {
	chain := cc.Primary

	for i, el := range chain.Elements {
		if el.Status.Errors.Has(ErrIsNotSignatureValid) {
			return PolicyResult{Code: PolicyCodeCertSignature, ElementIndex: i}
		}
	}

	for i, el := range chain.Elements {
		if el.Status.Errors.Has(ErrIsUntrustedRoot) {
			return PolicyResult{Code: PolicyCodeUntrustedRoot, ElementIndex: i}
		}
	}

	for i, el := range chain.Elements {
		if el.Status.Errors.Has(ErrIsNotTimeValid) {
			return PolicyResult{Code: PolicyCodeExpired, ElementIndex: i}
		}
	}

	for _, el := range chain.Elements {
		if el.Status.Errors.Has(ErrIsCyclic) {
			return PolicyResult{Code: PolicyCodeUntrustedRoot, ElementIndex: -1}
		}
	}

	if sslServerName == "" {
		return NoErrorResult
	}

	if !matchServerName(chain.Leaf(), sslServerName) {
		return PolicyResult{Code: PolicyCodeCNNoMatch, ChainIndex: 0, ElementIndex: 0}
	}

	return NoErrorResult
}

// verifyMicrosoftRootPolicy runs Base; on success, if the chain's root
// public key is one of the known Microsoft-root keys, the locator is set
// to (0, 0) as an informational marker rather than an error (§4.9).
func verifyMicrosoftRootPolicy(cc *ChainContext, sslServerName string, evalTime time.Time) PolicyResult {
	result := verifyBasePolicy(cc, sslServerName, evalTime)
	if result.Code != PolicyCodeNoError {
		return result
	}

	if isWellKnownMicrosoftRoot(cc.Primary.LastElement().Cert) {
		return PolicyResult{Code: PolicyCodeNoError, ChainIndex: 0, ElementIndex: 0}
	}

	return result
}

// RunPolicy looks up id and applies it to cc, returning the reduced
// PolicyResult. Policy verification is read-only: it never mutates cc's
// status bits (P8).
func RunPolicy(cc *ChainContext, id PolicyID, sslServerName string, evalTime time.Time) (PolicyResult, error) {
	verifier, ok := LookupPolicy(id)
	if !ok {
		return PolicyResult{}, fmt.Errorf("unknown policy %q", id)
	}

	if evalTime.IsZero() {
		evalTime = time.Now()
	}

	return verifier(cc, sslServerName, evalTime), nil
}
