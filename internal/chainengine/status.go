// Copyright 2020 Adam Chalkley
//
// https://github.com/Vash63/x509chain
//
// Licensed under the MIT License. See LICENSE file in the project root for
// full license information.

package chainengine

import "strings"

// ErrorStatus is a bit-set of chain/element trust errors. Bits are additive
// and monotone: once set during a single BuildChain call they are never
// cleared by that same call.
type ErrorStatus uint32

// InfoStatus is a bit-set of chain/element informational flags. The upper
// 28 bits propagate into a chain's aggregate info; the low nibble
// (InfoLowNibbleMask) is element-local and is masked off before OR-ing into
// an aggregate.
type InfoStatus uint32

// ErrorStatus bit vocabulary. Names match the observable semantics a policy
// verifier inspects; do not renumber existing bits once referenced by a
// policy.
const (
	ErrIsNotTimeValid ErrorStatus = 1 << iota
	ErrIsNotTimeNested
	ErrIsRevoked
	ErrIsNotSignatureValid
	ErrIsNotValidForUsage
	ErrIsUntrustedRoot
	ErrRevocationStatusUnknown
	ErrIsCyclic
	ErrInvalidExtension
	ErrInvalidPolicyConstraints
	ErrInvalidBasicConstraints
	ErrInvalidNameConstraints
	ErrHasNotSupportedNameConstraint
	ErrHasNotDefinedNameConstraint
	ErrHasNotPermittedNameConstraint
	ErrHasExcludedNameConstraint
	ErrIsPartialChain
	ErrIsOfflineRevocation
)

// InfoLowNibbleMask covers the element-local bits of InfoStatus that must
// not propagate into a chain's aggregate info.
const InfoLowNibbleMask InfoStatus = 0x0000000F

// InfoStatus bit vocabulary. All four bits live above the low nibble so
// they propagate into chain-level aggregates unmodified.
const (
	InfoHasExactMatchIssuer InfoStatus = 1 << (iota + 4)
	InfoHasKeyMatchIssuer
	InfoHasNameMatchIssuer
	InfoIsSelfSigned
)

// Has reports whether all bits in mask are set.
func (e ErrorStatus) Has(mask ErrorStatus) bool { return e&mask == mask }

// Any reports whether any bit in mask is set.
func (e ErrorStatus) Any(mask ErrorStatus) bool { return e&mask != 0 }

// Has reports whether all bits in mask are set.
func (i InfoStatus) Has(mask InfoStatus) bool { return i&mask == mask }

// Propagating returns the copy of i with the element-local low nibble
// masked off, suitable for OR-ing into an aggregate chain-level InfoStatus.
func (i InfoStatus) Propagating() InfoStatus { return i &^ InfoLowNibbleMask }

var errorStatusNames = []struct {
	bit  ErrorStatus
	name string
}{
	{ErrIsNotTimeValid, "IS_NOT_TIME_VALID"},
	{ErrIsNotTimeNested, "IS_NOT_TIME_NESTED"},
	{ErrIsRevoked, "IS_REVOKED"},
	{ErrIsNotSignatureValid, "IS_NOT_SIGNATURE_VALID"},
	{ErrIsNotValidForUsage, "IS_NOT_VALID_FOR_USAGE"},
	{ErrIsUntrustedRoot, "IS_UNTRUSTED_ROOT"},
	{ErrRevocationStatusUnknown, "REVOCATION_STATUS_UNKNOWN"},
	{ErrIsCyclic, "IS_CYCLIC"},
	{ErrInvalidExtension, "INVALID_EXTENSION"},
	{ErrInvalidPolicyConstraints, "INVALID_POLICY_CONSTRAINTS"},
	{ErrInvalidBasicConstraints, "INVALID_BASIC_CONSTRAINTS"},
	{ErrInvalidNameConstraints, "INVALID_NAME_CONSTRAINTS"},
	{ErrHasNotSupportedNameConstraint, "HAS_NOT_SUPPORTED_NAME_CONSTRAINT"},
	{ErrHasNotDefinedNameConstraint, "HAS_NOT_DEFINED_NAME_CONSTRAINT"},
	{ErrHasNotPermittedNameConstraint, "HAS_NOT_PERMITTED_NAME_CONSTRAINT"},
	{ErrHasExcludedNameConstraint, "HAS_EXCLUDED_NAME_CONSTRAINT"},
	{ErrIsPartialChain, "IS_PARTIAL_CHAIN"},
	{ErrIsOfflineRevocation, "IS_OFFLINE_REVOCATION"},
}

// String renders the set bits as a pipe-joined list, e.g.
// "IS_UNTRUSTED_ROOT|IS_PARTIAL_CHAIN". An empty set renders as "NONE".
func (e ErrorStatus) String() string {
	if e == 0 {
		return "NONE"
	}

	var names []string
	for _, entry := range errorStatusNames {
		if e.Has(entry.bit) {
			names = append(names, entry.name)
		}
	}

	return strings.Join(names, "|")
}

var infoStatusNames = []struct {
	bit  InfoStatus
	name string
}{
	{InfoHasExactMatchIssuer, "HAS_EXACT_MATCH_ISSUER"},
	{InfoHasKeyMatchIssuer, "HAS_KEY_MATCH_ISSUER"},
	{InfoHasNameMatchIssuer, "HAS_NAME_MATCH_ISSUER"},
	{InfoIsSelfSigned, "IS_SELF_SIGNED"},
}

// String renders the set bits as a pipe-joined list. An empty set renders
// as "NONE".
func (i InfoStatus) String() string {
	if i == 0 {
		return "NONE"
	}

	var names []string
	for _, entry := range infoStatusNames {
		if i.Has(entry.bit) {
			names = append(names, entry.name)
		}
	}

	return strings.Join(names, "|")
}

// TrustStatus is the pair of bit-sets carried by a chain element and, in
// aggregate, by a simple chain.
type TrustStatus struct {
	Errors ErrorStatus
	Info   InfoStatus
}

// Merge ORs other into ts in place, masking other's Info to its propagating
// bits only. Errors are OR-ed verbatim.
func (ts *TrustStatus) Merge(other TrustStatus) {
	ts.Errors |= other.Errors
	ts.Info |= other.Info.Propagating()
}

// IsClean reports whether no error bits are set.
func (ts TrustStatus) IsClean() bool {
	return ts.Errors == 0
}
