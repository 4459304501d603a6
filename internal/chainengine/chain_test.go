// Copyright 2024 Adam Chalkley
//
// https://github.com/Vash63/x509chain
//
// Licensed under the MIT License. See LICENSE file in the project root for
// full license information.

package chainengine

import "testing"

func TestIsSelfSigned(t *testing.T) {
	root, inter, _ := buildTestChain(t)

	if !isSelfSigned(root) {
		t.Fatalf("expected root to be self-signed")
	}

	if isSelfSigned(inter) {
		t.Fatalf("expected intermediate to not be self-signed")
	}
}

func TestDetectCycleFindsDuplicateTBS(t *testing.T) {
	root, inter, leaf := buildTestChain(t)

	elements := []*ChainElement{
		{Cert: leaf},
		{Cert: inter},
		{Cert: root},
		{Cert: inter}, // duplicate TBS reappearing further up the chain
	}

	if pos := detectCycle(elements); pos != 3 {
		t.Fatalf("expected cycle detected at index 3, got %d", pos)
	}
}

func TestDetectCycleNoCycle(t *testing.T) {
	root, inter, leaf := buildTestChain(t)

	elements := []*ChainElement{{Cert: leaf}, {Cert: inter}, {Cert: root}}

	if pos := detectCycle(elements); pos != -1 {
		t.Fatalf("expected no cycle, got index %d", pos)
	}
}

func TestSimpleChainAggregateRecompute(t *testing.T) {
	root, inter, leaf := buildTestChain(t)

	sc := &SimpleChain{Elements: []*ChainElement{{Cert: leaf}, {Cert: inter}, {Cert: root}}}

	sc.setElementErrors(0, ErrIsNotTimeValid)
	sc.setElementErrors(2, ErrIsUntrustedRoot)

	if !sc.Aggregate.Errors.Has(ErrIsNotTimeValid) || !sc.Aggregate.Errors.Has(ErrIsUntrustedRoot) {
		t.Fatalf("expected aggregate to OR both elements' errors, got %s", sc.Aggregate.Errors)
	}

	sc.truncateAfter(1)

	if len(sc.Elements) != 2 {
		t.Fatalf("expected truncateAfter(1) to leave 2 elements, got %d", len(sc.Elements))
	}

	if sc.Aggregate.Errors.Has(ErrIsUntrustedRoot) {
		t.Fatalf("expected truncation to drop the root element's contribution to the aggregate")
	}
}
