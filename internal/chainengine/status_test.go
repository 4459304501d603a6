// Copyright 2024 Adam Chalkley
//
// https://github.com/Vash63/x509chain
//
// Licensed under the MIT License. See LICENSE file in the project root for
// full license information.

package chainengine

import "testing"

func TestTrustStatusMergeIsMonotone(t *testing.T) {
	var agg TrustStatus

	agg.Merge(TrustStatus{Errors: ErrIsNotTimeValid})
	agg.Merge(TrustStatus{Errors: ErrIsRevoked})

	if !agg.Errors.Has(ErrIsNotTimeValid) || !agg.Errors.Has(ErrIsRevoked) {
		t.Fatalf("expected both error bits set, got %s", agg.Errors)
	}

	if agg.IsClean() {
		t.Fatalf("expected aggregate with errors set to not be clean")
	}
}

func TestInfoStatusPropagatingMasksLowNibble(t *testing.T) {
	local := InfoHasExactMatchIssuer | InfoIsSelfSigned

	propagated := local.Propagating()

	if propagated != local {
		t.Fatalf("expected the upper-nibble bits to survive Propagating unchanged, got %s", propagated)
	}

	// Every defined InfoStatus bit currently lives above the low nibble, so
	// masking should never remove a named bit; this guards that invariant
	// if a future bit is ever added incorrectly.
	if local&InfoLowNibbleMask != 0 {
		t.Fatalf("test fixture bits unexpectedly overlap the element-local low nibble")
	}
}

func TestErrorStatusStringRendersNamesAndNone(t *testing.T) {
	if got := ErrorStatus(0).String(); got != "NONE" {
		t.Fatalf("expected NONE for zero value, got %q", got)
	}

	got := (ErrIsUntrustedRoot | ErrIsPartialChain).String()
	if got != "IS_UNTRUSTED_ROOT|IS_PARTIAL_CHAIN" {
		t.Fatalf("unexpected rendering: %q", got)
	}
}

func TestErrorStatusHasAndAny(t *testing.T) {
	s := ErrIsCyclic | ErrInvalidExtension

	if !s.Has(ErrIsCyclic) {
		t.Fatalf("expected Has to report ErrIsCyclic set")
	}

	if s.Has(ErrIsCyclic | ErrIsRevoked) {
		t.Fatalf("expected Has to require every bit in mask")
	}

	if !s.Any(ErrIsCyclic | ErrIsRevoked) {
		t.Fatalf("expected Any to report true when at least one bit is set")
	}
}
