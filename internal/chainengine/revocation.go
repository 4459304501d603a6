// Copyright 2020 Adam Chalkley
//
// https://github.com/Vash63/x509chain
//
// Licensed under the MIT License. See LICENSE file in the project root for
// full license information.

package chainengine

import (
	"context"
	"crypto/x509"
	"time"

	"github.com/Vash63/x509chain/internal/revocation"
)

// RevocationFlags selects which chain elements the revocation driver
// checks (§4.8). Flags combine with bitwise OR.
type RevocationFlags uint32

const (
	// RevocationCheckEndCert checks only the leaf (element 0).
	RevocationCheckEndCert RevocationFlags = 1 << iota
	// RevocationCheckChain checks every non-root element, and the root
	// against itself.
	RevocationCheckChain
	// RevocationCheckChainExcludeRoot checks every non-root element but
	// skips the root entirely.
	RevocationCheckChainExcludeRoot
	// RevocationCacheOnly consults only CachingChecker's cache, never the
	// network; an uncached element is reported offline rather than
	// unknown, distinguishing "never checked" from "checked, no answer".
	RevocationCacheOnly
)

// RevocationOptions configures one checkRevocation pass.
type RevocationOptions struct {
	Flags RevocationFlags

	// AccumulativeTimeout bounds the total wall-clock time spent across
	// every responder call in the pass, mirroring the teacher's single
	// overall per-host timeout budget rather than a per-request one.
	AccumulativeTimeout time.Duration

	Checker *revocation.CachingChecker
}

// checkRevocation runs the §4.8 revocation driver over chain, assembling
// the (subject, issuer) vector implied by opts.Flags and mapping each
// collaborator result onto the corresponding status bits.
func checkRevocation(ctx context.Context, chain *SimpleChain, opts RevocationOptions) {
	if opts.Checker == nil || opts.Flags == 0 {
		return
	}

	n := len(chain.Elements)
	if n == 0 {
		return
	}

	rootIdx := n - 1

	deadline := time.Now().Add(opts.AccumulativeTimeout)
	if opts.AccumulativeTimeout <= 0 {
		deadline = time.Time{}
	}

	for _, idx := range revocationTargets(n, rootIdx, opts.Flags) {
		if !deadline.IsZero() && time.Now().After(deadline) {
			chain.setElementErrors(idx, ErrRevocationStatusUnknown)

			continue
		}

		subject := chain.Elements[idx].Cert

		issuer := subject
		if idx != rootIdx {
			issuer = chain.Elements[idx+1].Cert
		}

		applyRevocationResult(ctx, chain, idx, opts, subject, issuer)
	}
}

// applyRevocationResult checks (subject, issuer) per opts and folds the
// outcome into element idx's status.
func applyRevocationResult(ctx context.Context, chain *SimpleChain, idx int, opts RevocationOptions, subject, issuer *x509.Certificate) {
	var result revocation.Result

	if opts.Flags&RevocationCacheOnly != 0 {
		cached, ok := opts.Checker.Lookup(subject, issuer)
		if !ok {
			chain.setElementErrors(idx, ErrIsOfflineRevocation)

			return
		}

		result = cached
	} else {
		result = opts.Checker.Check(ctx, subject, issuer)
	}

	switch result.Status {
	case revocation.StatusRevoked:
		chain.setElementErrors(idx, ErrIsRevoked)
	case revocation.StatusOffline:
		chain.setElementErrors(idx, ErrIsOfflineRevocation)
	case revocation.StatusUnknown:
		chain.setElementErrors(idx, ErrRevocationStatusUnknown)
	case revocation.StatusGood:
		// No status bit: a clean revocation result leaves Errors untouched.
	}
}

func revocationTargets(n, rootIdx int, flags RevocationFlags) []int {
	var targets []int

	if flags&RevocationCheckEndCert != 0 {
		targets = append(targets, 0)
	}

	switch {
	case flags&RevocationCheckChain != 0:
		for i := 0; i < n; i++ {
			targets = appendUnique(targets, i)
		}
	case flags&RevocationCheckChainExcludeRoot != 0:
		for i := 0; i < rootIdx; i++ {
			targets = appendUnique(targets, i)
		}
	}

	return targets
}

func appendUnique(targets []int, i int) []int {
	for _, t := range targets {
		if t == i {
			return targets
		}
	}

	return append(targets, i)
}
