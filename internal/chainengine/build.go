// Copyright 2020 Adam Chalkley
//
// https://github.com/Vash63/x509chain
//
// Licensed under the MIT License. See LICENSE file in the project root for
// full license information.

package chainengine

import (
	"context"
	"errors"

	"github.com/Vash63/x509chain/internal/certstore"
)

// ErrNoIssuerFound indicates the issuer resolver could not produce even the
// starting element of a chain (§7 condition 3). BuildChain returns this
// only when the leaf itself cannot be resolved at all; a failure partway
// through building instead sets IS_PARTIAL_CHAIN and returns a (truncated)
// chain successfully.
var ErrNoIssuerFound = errors.New("issuer resolver produced no candidate for the starting element")

// defaultCycleModulus is used whenever an EngineConfig's CycleModulus is
// zero (§6).
const defaultCycleModulus = 7

// buildSimpleChain extends a chain one element at a time by repeated
// issuer lookup until a self-signed certificate is reached, a cycle is
// detected, or no issuer is found (§4.4).
//
// startCursors, when non-nil, supplies the IssuerCursor to resume at a given
// element index and receives every cursor the build creates, so a later
// caller holding the map can continue enumeration *past* the candidate
// already used at that index.
func buildSimpleChain(
	ctx context.Context,
	leaf *ChainElement,
	world certstore.Store,
	aia certstore.AIAFetcher,
	cycleModulus int,
	startCursors map[int]*IssuerCursor,
) *SimpleChain {
	chain := &SimpleChain{Elements: []*ChainElement{leaf}}

	return continueChainWithCursors(ctx, chain, world, aia, cycleModulus, startCursors)
}

// continueBuildingChain extends an already partially-built chain (used by
// §4.7's alternate-path exploration, which forks a chain mid-way through
// and needs to complete the forked tail independently).
func continueBuildingChain(
	ctx context.Context,
	chain *SimpleChain,
	world certstore.Store,
	aia certstore.AIAFetcher,
	cycleModulus int,
) *SimpleChain {
	return continueChainWithCursors(ctx, chain, world, aia, cycleModulus, nil)
}

func continueChainWithCursors(
	ctx context.Context,
	chain *SimpleChain,
	world certstore.Store,
	aia certstore.AIAFetcher,
	cycleModulus int,
	startCursors map[int]*IssuerCursor,
) *SimpleChain {
	if cycleModulus <= 0 {
		cycleModulus = defaultCycleModulus
	}

	sinceLastCycleCheck := 0

	for {
		last := chain.LastElement()
		lastIdx := len(chain.Elements) - 1

		if isSelfSigned(last.Cert) {
			break
		}

		cursor := startCursors[lastIdx]
		if cursor == nil {
			cursor = NewIssuerCursor(last.Cert, world)
			if startCursors != nil {
				startCursors[lastIdx] = cursor
			}
		}

		issuerCert, infoStatus, found := cursor.Next()

		if !found && aia != nil && len(last.Cert.IssuingCertificateURL) > 0 {
			if fetched, err := aia.FetchIssuer(ctx, last.Cert.IssuingCertificateURL[0]); err == nil {
				issuerCert, infoStatus, found = fetched, InfoHasNameMatchIssuer, true
			}
		}

		if !found {
			chain.setElementErrors(lastIdx, ErrIsPartialChain)
			break
		}

		chain.setElementInfo(lastIdx, infoStatus)

		chain.Elements = append(chain.Elements, &ChainElement{Cert: issuerCert})
		chain.recomputeAggregate()

		sinceLastCycleCheck++
		if sinceLastCycleCheck >= cycleModulus {
			sinceLastCycleCheck = 0

			if cyclePos := detectCycle(chain.Elements); cyclePos >= 0 {
				chain.setElementErrors(cyclePos, ErrIsCyclic|ErrInvalidBasicConstraints)
				chain.truncateAfter(cyclePos)

				break
			}
		}
	}

	// Final cycle sweep: the modulus gate may leave a cycle undetected if
	// the chain terminates (self-signed or partial) before the next gated
	// check. Catching it here keeps P6 (cycle detector invariant) true
	// regardless of where termination happened.
	if cyclePos := detectCycle(chain.Elements); cyclePos >= 0 {
		chain.setElementErrors(cyclePos, ErrIsCyclic|ErrInvalidBasicConstraints)
		chain.truncateAfter(cyclePos)
	}

	return chain
}
