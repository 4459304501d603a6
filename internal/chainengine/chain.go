// Copyright 2020 Adam Chalkley
//
// https://github.com/Vash63/x509chain
//
// Licensed under the MIT License. See LICENSE file in the project root for
// full license information.

package chainengine

import (
	"bytes"
	"crypto/x509"
)

// ChainElement is a single certificate plus the trust status accumulated
// against it during a single BuildChain call. An element is owned by
// exactly one SimpleChain and never shared across chains (§3).
type ChainElement struct {
	Cert   *x509.Certificate
	Status TrustStatus
}

// SimpleChain is an ordered sequence of chain elements: index 0 is the end
// entity, the last index is intended to be a self-signed root (§3).
type SimpleChain struct {
	Elements []*ChainElement

	// Aggregate is the bitwise OR of every element's errors, and the
	// bitwise OR of the propagating half of every element's info (§3).
	Aggregate TrustStatus
}

// Leaf returns the end-entity element, or nil if the chain is empty.
func (sc *SimpleChain) Leaf() *ChainElement {
	if len(sc.Elements) == 0 {
		return nil
	}

	return sc.Elements[0]
}

// LastElement returns the terminal element of the chain (intended to be a
// self-signed root, a cyclic element, or the last successfully resolved
// issuer before a partial-chain stop).
func (sc *SimpleChain) LastElement() *ChainElement {
	if len(sc.Elements) == 0 {
		return nil
	}

	return sc.Elements[len(sc.Elements)-1]
}

// recomputeAggregate rebuilds sc.Aggregate from scratch by OR-ing every
// element's status (§3 invariant, P2).
func (sc *SimpleChain) recomputeAggregate() {
	sc.Aggregate = TrustStatus{}
	for _, el := range sc.Elements {
		sc.Aggregate.Merge(el.Status)
	}
}

// setElementErrors ORs mask into element i's errors and refreshes the
// chain's aggregate. Monotone: never clears bits (P1).
func (sc *SimpleChain) setElementErrors(i int, mask ErrorStatus) {
	sc.Elements[i].Status.Errors |= mask
	sc.recomputeAggregate()
}

// setElementInfo ORs mask into element i's info and refreshes the chain's
// aggregate.
func (sc *SimpleChain) setElementInfo(i int, mask InfoStatus) {
	sc.Elements[i].Status.Info |= mask
	sc.recomputeAggregate()
}

// truncateAfter drops every element after index i (inclusive of discarding
// elements beyond it) and refreshes the aggregate. Used by the cycle
// detector (§4.5) when element j duplicates an earlier element.
func (sc *SimpleChain) truncateAfter(i int) {
	sc.Elements = sc.Elements[:i+1]
	sc.recomputeAggregate()
}

// ChainContext is the outer object returned to callers: one or more simple
// chains (only Primary is populated by this engine; the data model leaves
// room for CTL bridges per §9) plus a list of lower-quality sibling
// contexts.
type ChainContext struct {
	Primary *SimpleChain

	// LowerQuality holds fully built alternate contexts that lost the
	// quality ranking (§4.7) but are retained for caller inspection.
	LowerQuality []*ChainContext

	// Policy holds the result of the engine-configured policy verifier
	// (§4.9), or nil if no policy was configured for the BuildChain call
	// that produced this context.
	Policy *PolicyResult
}

// isSelfSigned reports whether cert's subject and issuer distinguished
// names are bitwise equal (§4.4 "Self-signed detection").
func isSelfSigned(cert *x509.Certificate) bool {
	return bytes.Equal(cert.RawSubject, cert.RawIssuer)
}

// tbsEqual reports whether two certificates carry byte-identical
// tbsCertificate content, the codec-equality predicate the cycle detector
// (§4.5) relies on.
func tbsEqual(a, b *x509.Certificate) bool {
	return bytes.Equal(a.RawTBSCertificate, b.RawTBSCertificate)
}

// detectCycle runs the O(n^2) pairwise comparison described in §4.5: for
// every pair (i, j) with i < j, if elements i and j carry byte-identical
// tbsCertificate content, j is flagged as the cycle point. Returns the
// index of the first duplicate found, or -1 if none.
func detectCycle(elements []*ChainElement) int {
	for i := 0; i < len(elements); i++ {
		for j := i + 1; j < len(elements); j++ {
			if tbsEqual(elements[i].Cert, elements[j].Cert) {
				return j
			}
		}
	}

	return -1
}
