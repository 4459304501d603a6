// Copyright 2024 Adam Chalkley
//
// https://github.com/Vash63/x509chain
//
// Licensed under the MIT License. See LICENSE file in the project root for
// full license information.

package chainengine

import "testing"

func TestChainQualityCleanChainSetsValidityBits(t *testing.T) {
	root, inter, leaf := buildTestChain(t)

	chain := &SimpleChain{Elements: []*ChainElement{{Cert: leaf}, {Cert: inter}, {Cert: root}}}
	validateSimpleChain(chain, ValidateOptions{})

	q := ChainQuality(chain)

	want := qualitySigValid | qualityTimeValid | qualityComplete | qualityBasicConstraintsValid
	if q&want != want {
		t.Fatalf("expected a clean chain to set sig/time/complete/basic-constraints bits, got 0x%x", q)
	}

	// TrustedRoot depends on the (unset here) trusted-root store, so it is
	// not asserted unconditionally.
}

func TestChainQualityPenalizesExpiredLeaf(t *testing.T) {
	root, inter, leaf := buildTestChain(t)

	cleanChain := &SimpleChain{Elements: []*ChainElement{{Cert: leaf}, {Cert: inter}, {Cert: root}}}
	validateSimpleChain(cleanChain, ValidateOptions{})

	brokenChain := &SimpleChain{Elements: []*ChainElement{{Cert: leaf}, {Cert: inter}, {Cert: root}}}
	brokenChain.setElementErrors(0, ErrIsNotTimeValid)
	brokenChain.recomputeAggregate()

	if ChainQuality(brokenChain) >= ChainQuality(cleanChain) {
		t.Fatalf("expected a time-invalid chain to score lower than a clean one")
	}
}

func TestRankAndPromoteSwapsInABetterSibling(t *testing.T) {
	root, inter, leaf := buildTestChain(t)

	primary := &SimpleChain{Elements: []*ChainElement{{Cert: leaf}, {Cert: inter}, {Cert: root}}}
	primary.setElementErrors(0, ErrIsNotTimeValid) // worse than a clean alternate

	better := &SimpleChain{Elements: []*ChainElement{{Cert: leaf}, {Cert: inter}, {Cert: root}}}
	validateSimpleChain(better, ValidateOptions{})

	cc := &ChainContext{
		Primary:      primary,
		LowerQuality: []*ChainContext{{Primary: better}},
	}

	rankAndPromote(cc)

	if cc.Primary != better {
		t.Fatalf("expected the higher-quality sibling to be promoted to primary")
	}

	if len(cc.LowerQuality) != 1 || cc.LowerQuality[0].Primary != primary {
		t.Fatalf("expected the former primary to take the promoted sibling's old slot")
	}
}
