// Copyright 2020 Adam Chalkley
//
// https://github.com/Vash63/x509chain
//
// Licensed under the MIT License. See LICENSE file in the project root for
// full license information.

package chainengine

import (
	"crypto/x509"
	"math/big"

	"github.com/Vash63/x509chain/internal/certstore"
)

// IssuerCursor is a restartable enumeration of candidate issuers for a
// single subject certificate. Per §9's design note it replaces a
// (store, previous) pair with an explicit cursor: calling Next() again
// after a prior call continues the same enumeration, which is exactly what
// §4.7's alternate-path exploration needs to ask for "another issuer after
// the one already used".
type IssuerCursor struct {
	candidates []*x509.Certificate
	infoStatus InfoStatus
	pos        int
}

// NewIssuerCursor determines the lookup strategy for subject per §4.3 and
// queries store once, eagerly, to populate the candidate list the cursor
// walks.
//
// Preference order (first present field wins):
//
//  1. v1 authorityKeyIdentifier (OID 2.5.29.1) with both certIssuer and
//     certSerialNumber present -> exact (issuer DN, serial) lookup,
//     info-status HAS_EXACT_MATCH_ISSUER.
//  2. v1 authorityKeyIdentifier with only keyId present, or v2
//     authorityKeyIdentifier (OID 2.5.29.35) -> key-id lookup, info-status
//     HAS_KEY_MATCH_ISSUER (the v2 form's directoryName-typed issuer is
//     consulted first per §4.3 step 2, falling back to keyId).
//  3. Neither extension present -> subject-name lookup, info-status
//     HAS_NAME_MATCH_ISSUER.
func NewIssuerCursor(subject *x509.Certificate, store certstore.Store) *IssuerCursor {
	aki := InspectAuthorityKeyIdentifier(subject)

	switch {
	case aki.Present && aki.IsLegacyForm && aki.IssuerNamePresent && aki.SerialPresent:
		serial := new(big.Int).SetBytes(aki.SerialNumber)

		return &IssuerCursor{
			candidates: store.ByNameAndSerial(aki.IssuerName, serial),
			infoStatus: InfoHasExactMatchIssuer,
		}

	case aki.Present && aki.IsLegacyForm && len(aki.KeyID) > 0:
		return &IssuerCursor{
			candidates: store.ByKeyID(aki.KeyID),
			infoStatus: InfoHasKeyMatchIssuer,
		}

	case aki.Present && !aki.IsLegacyForm && aki.IssuerNamePresent:
		return &IssuerCursor{
			candidates: store.ByName(aki.IssuerName),
			infoStatus: InfoHasKeyMatchIssuer,
		}

	case aki.Present && !aki.IsLegacyForm && len(aki.KeyID) > 0:
		return &IssuerCursor{
			candidates: store.ByKeyID(aki.KeyID),
			infoStatus: InfoHasKeyMatchIssuer,
		}

	default:
		return &IssuerCursor{
			candidates: store.ByName(subject.Issuer.String()),
			infoStatus: InfoHasNameMatchIssuer,
		}
	}
}

// Next returns the next untried candidate issuer along with the
// info-status describing how the match was made, and false once the
// enumeration is exhausted.
func (c *IssuerCursor) Next() (*x509.Certificate, InfoStatus, bool) {
	if c == nil || c.pos >= len(c.candidates) {
		return nil, 0, false
	}

	cert := c.candidates[c.pos]
	c.pos++

	return cert, c.infoStatus, true
}

// Remaining reports how many untried candidates are left.
func (c *IssuerCursor) Remaining() int {
	if c == nil {
		return 0
	}

	return len(c.candidates) - c.pos
}
