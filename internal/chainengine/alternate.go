// Copyright 2020 Adam Chalkley
//
// https://github.com/Vash63/x509chain
//
// Licensed under the MIT License. See LICENSE file in the project root for
// full license information.

package chainengine

import (
	"context"
	"crypto/sha256"
	"crypto/x509"
	"encoding/hex"

	"github.com/Vash63/x509chain/internal/certstore"
)

// Quality bit-score components (§4.7). Higher is better; a bit is set when
// the corresponding error condition is absent.
//
// The spec text lists SIG_VALID as bit value 0x16, which overlaps
// TIME_VALID(8) and BASIC_CONSTRAINTS_VALID(2) rather than naming a
// distinct bit. Treated as a documentation slip (an Open Question this
// port resolves, recorded in DESIGN.md) and implemented as the next free
// bit, 0x10, so all five components are independent and summable.
const (
	qualityTrustedRoot           uint32 = 1
	qualityBasicConstraintsValid uint32 = 2
	qualityComplete              uint32 = 4
	qualityTimeValid             uint32 = 8
	qualitySigValid              uint32 = 0x10
)

// ChainQuality computes the §4.7 bit-score for chain: higher is better.
func ChainQuality(chain *SimpleChain) uint32 {
	var q uint32

	errs := chain.Aggregate.Errors

	if !errs.Has(ErrIsNotSignatureValid) {
		q |= qualitySigValid
	}
	if !errs.Has(ErrIsNotTimeValid) {
		q |= qualityTimeValid
	}
	if !errs.Any(ErrIsPartialChain | ErrIsCyclic) {
		q |= qualityComplete
	}
	if !errs.Has(ErrInvalidBasicConstraints) {
		q |= qualityBasicConstraintsValid
	}
	if !errs.Has(ErrIsUntrustedRoot) {
		q |= qualityTrustedRoot
	}

	return q
}

// defaultMaxAlternates bounds alternate-path exploration so a pathological
// store (many cross-signed issuers at every position) cannot run away.
const defaultMaxAlternates = 32

// alternateExplorer iteratively discovers alternate simple chains for a
// built primary chain (§4.7). It tracks, per subject certificate, which
// issuer candidates have already been used anywhere in the exploration so
// far — a set-based stand-in for the spec's stateful per-position
// "previous" cursor that produces the same externally observable behavior
// (deterministic, loop-free, one new alternate discovered per round)
// without needing to keep a live IssuerCursor pinned to a position across
// repeated chain copies.
type alternateExplorer struct {
	world         certstore.Store
	aia           certstore.AIAFetcher
	cycleModulus  int
	validateOpts  ValidateOptions
	maxAlternates int

	usedIssuers map[string]map[string]bool
}

func newAlternateExplorer(world certstore.Store, aia certstore.AIAFetcher, cycleModulus int, validateOpts ValidateOptions) *alternateExplorer {
	return &alternateExplorer{
		world:         world,
		aia:           aia,
		cycleModulus:  cycleModulus,
		validateOpts:  validateOpts,
		maxAlternates: defaultMaxAlternates,
		usedIssuers:   map[string]map[string]bool{},
	}
}

func certFingerprint(cert *x509.Certificate) string {
	sum := sha256.Sum256(cert.Raw)

	return hex.EncodeToString(sum[:])
}

func (ex *alternateExplorer) markUsed(subject, issuer *x509.Certificate) {
	key := certFingerprint(subject)

	if ex.usedIssuers[key] == nil {
		ex.usedIssuers[key] = map[string]bool{}
	}

	ex.usedIssuers[key][certFingerprint(issuer)] = true
}

func (ex *alternateExplorer) isUsed(subject, issuer *x509.Certificate) bool {
	return ex.usedIssuers[certFingerprint(subject)][certFingerprint(issuer)]
}

// markChainPath records every adjacent (subject, issuer) pair already
// present in chain so the explorer never re-discovers the path it was
// built from.
func (ex *alternateExplorer) markChainPath(chain *SimpleChain) {
	for i := 0; i < len(chain.Elements)-1; i++ {
		ex.markUsed(chain.Elements[i].Cert, chain.Elements[i+1].Cert)
	}
}

// findAlternate scans chain from the leaf towards the root (excluding the
// terminal element, which has no issuer to replace) for the first position
// where an unused issuer candidate exists, per §4.7: "ask the issuer
// resolver, at each element in turn, for another issuer after the one
// already used there".
func (ex *alternateExplorer) findAlternate(chain *SimpleChain) (pos int, issuer *x509.Certificate, info InfoStatus, ok bool) {
	for pos := 0; pos <= len(chain.Elements)-2; pos++ {
		subject := chain.Elements[pos].Cert

		cursor := NewIssuerCursor(subject, ex.world)

		for {
			cand, candInfo, found := cursor.Next()
			if !found {
				break
			}

			if ex.isUsed(subject, cand) {
				continue
			}

			return pos, cand, candInfo, true
		}
	}

	return 0, nil, 0, false
}

// buildAlternate copies primary's elements [0, pos], resets their status
// (the alternate chain accumulates its own trust status independently per
// §3's "no element shared across chains"), appends issuer, then continues
// building and validates the result.
func (ex *alternateExplorer) buildAlternate(ctxBg context.Context, primary *SimpleChain, pos int, issuer *x509.Certificate, info InfoStatus) *SimpleChain {
	alt := &SimpleChain{}

	for i := 0; i <= pos; i++ {
		alt.Elements = append(alt.Elements, &ChainElement{Cert: primary.Elements[i].Cert})
	}

	alt.setElementInfo(pos, info)
	alt.Elements = append(alt.Elements, &ChainElement{Cert: issuer})
	alt.recomputeAggregate()

	continued := continueBuildingChain(ctxBg, alt, ex.world, ex.aia, ex.cycleModulus)
	validateSimpleChain(continued, ex.validateOpts)

	return continued
}

// explore runs §4.7's alternate-path discovery loop against ctx.Primary,
// attaching each newly found alternate as a lower-quality sibling, then
// picks the best of {primary, siblings...} as the new primary (P4).
func explore(ctxBg context.Context, cc *ChainContext, world certstore.Store, aia certstore.AIAFetcher, cycleModulus int, validateOpts ValidateOptions) {
	if cc == nil || cc.Primary == nil {
		return
	}

	ex := newAlternateExplorer(world, aia, cycleModulus, validateOpts)
	ex.markChainPath(cc.Primary)

	for round := 0; round < ex.maxAlternates; round++ {
		pos, issuer, info, found := ex.findAlternate(cc.Primary)
		if !found {
			break
		}

		ex.markUsed(cc.Primary.Elements[pos].Cert, issuer)

		altChain := ex.buildAlternate(ctxBg, cc.Primary, pos, issuer, info)
		ex.markChainPath(altChain)

		cc.LowerQuality = append(cc.LowerQuality, &ChainContext{Primary: altChain})
	}

	rankAndPromote(cc)
}

// rankAndPromote enforces P4: the primary's quality is >= every sibling's.
// When a sibling outranks the current primary, the two exchange slots —
// the sibling's chain becomes Primary, and the former primary is kept as a
// new sibling in the promoted chain's old slot. No back-pointers are kept
// (§9 design note).
func rankAndPromote(cc *ChainContext) {
	bestQuality := ChainQuality(cc.Primary)
	bestIdx := -1

	for i, sib := range cc.LowerQuality {
		if sib == nil || sib.Primary == nil {
			continue
		}

		if q := ChainQuality(sib.Primary); q > bestQuality {
			bestQuality = q
			bestIdx = i
		}
	}

	if bestIdx < 0 {
		return
	}

	formerPrimary := cc.Primary
	cc.Primary = cc.LowerQuality[bestIdx].Primary
	cc.LowerQuality[bestIdx] = &ChainContext{Primary: formerPrimary}
}
