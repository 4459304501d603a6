// Copyright 2020 Adam Chalkley
//
// https://github.com/Vash63/x509chain
//
// Licensed under the MIT License. See LICENSE file in the project root for
// full license information.

// Package chainengine implements the certificate chain-building and
// validation engine: issuer resolution, simple-chain construction, RFC
// 5280 conformance validation, alternate-path exploration and quality
// ranking, revocation checking, and named policy verifiers.
package chainengine

import (
	"context"
	"crypto/x509"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/Vash63/x509chain/internal/certstore"
	"github.com/Vash63/x509chain/internal/revocation"
)

// ErrRestrictedRootNotTrusted is returned by NewEngine when
// EngineConfig.RestrictedRootStore contains a certificate absent from the
// system trusted-root store it is meant to narrow (§6).
var ErrRestrictedRootNotTrusted = errors.New("restricted root store contains a certificate not present in the trusted-root store")

// EngineConfig configures a single Engine (§6).
type EngineConfig struct {
	// TrustedRootStore is the system/distribution trusted-root store.
	TrustedRootStore certstore.Store

	// RestrictedRootStore, if non-nil, narrows which roots the engine
	// trusts to a subset of TrustedRootStore. Every certificate in it must
	// already be present in TrustedRootStore, checked at construction.
	RestrictedRootStore certstore.Store

	// AdditionalStores are consulted alongside the root store when
	// resolving issuers (system CA store, user store, caller-supplied
	// certificates) and unioned, in order, into the engine's world store.
	AdditionalStores []certstore.Store

	// URLRetrievalTimeout bounds both AIA issuer fetches and revocation
	// responder round-trips.
	URLRetrievalTimeout time.Duration

	// MaxCachedCerts bounds the revocation result cache. Zero means
	// unbounded.
	MaxCachedCerts int

	// CycleModulus overrides defaultCycleModulus when positive.
	CycleModulus int

	// RevocationFlags selects which elements get revocation-checked; zero
	// disables revocation checking entirely.
	RevocationFlags RevocationFlags

	// AccumulativeRevocationTimeout bounds total time spent across all
	// revocation responder calls for a single BuildChain call.
	AccumulativeRevocationTimeout time.Duration

	// Policy, if non-empty, is run automatically at the end of every
	// BuildChain call.
	Policy PolicyID

	// SSLServerName is forwarded to PolicySSL.
	SSLServerName string
}

// Engine is the top-level chain-building object (§3, §9). It is safe for
// concurrent use: BuildChain allocates no shared mutable state beyond the
// read-only configuration and a mutex-guarded revocation result cache.
type Engine struct {
	worldStore       certstore.Store
	trustedRootStore certstore.Store
	aia              certstore.AIAFetcher
	cycleModulus     int
	revocationOpts   RevocationOptions
	policy           PolicyID
	sslServerName    string

	refs int32
}

// NewEngine validates cfg and returns a ready-to-use Engine with one
// outstanding reference (Acquire has already been called once on the
// caller's behalf; call Release when done, mirroring the teacher's
// resource lifecycle conventions elsewhere in the codebase).
func NewEngine(cfg EngineConfig) (*Engine, error) {
	if cfg.RestrictedRootStore != nil && cfg.TrustedRootStore != nil {
		for _, cert := range cfg.RestrictedRootStore.Certificates() {
			if !certstore.Contains(cfg.TrustedRootStore, cert) {
				return nil, fmt.Errorf("%w: subject %s", ErrRestrictedRootNotTrusted, cert.Subject)
			}
		}
	}

	effectiveRoot := cfg.TrustedRootStore
	if cfg.RestrictedRootStore != nil {
		effectiveRoot = cfg.RestrictedRootStore
	}

	members := []certstore.Store{}
	if effectiveRoot != nil {
		members = append(members, effectiveRoot)
	}
	members = append(members, cfg.AdditionalStores...)

	cycleModulus := cfg.CycleModulus
	if cycleModulus <= 0 {
		cycleModulus = defaultCycleModulus
	}

	var aia certstore.AIAFetcher
	if cfg.URLRetrievalTimeout > 0 {
		aia = certstore.NewHTTPAIAFetcher(cfg.URLRetrievalTimeout)
	}

	revOpts := RevocationOptions{
		Flags:               cfg.RevocationFlags,
		AccumulativeTimeout: cfg.AccumulativeRevocationTimeout,
	}
	if cfg.RevocationFlags != 0 {
		httpChecker := revocation.NewHTTPChecker(cfg.URLRetrievalTimeout)
		revOpts.Checker = revocation.NewCachingChecker(httpChecker, cfg.MaxCachedCerts)
	}

	return &Engine{
		worldStore:       certstore.NewUnionStore(members...),
		trustedRootStore: effectiveRoot,
		aia:              aia,
		cycleModulus:     cycleModulus,
		revocationOpts:   revOpts,
		policy:           cfg.Policy,
		sslServerName:    cfg.SSLServerName,
		refs:             1,
	}, nil
}

// ChainParameters configures a single BuildChain call (§6, "Chain-parameters
// record"). The zero value evaluates at time.Now() with no other
// constraints; the requested-usage and requested-issuance-policy fields
// the full record specifies are not yet consumed by this engine.
type ChainParameters struct {
	// EvalTime is the point in time chain validity (§4.6 item 2) and
	// policy checks are evaluated against. Zero means time.Now(), matching
	// validateSimpleChain's own default (§8.3).
	EvalTime time.Time
}

// Acquire increments the engine's reference count, mirroring
// CertGetCertificateChain/CertFreeCertificateChain's caller-visible
// lifetime contract (§9) even though this implementation holds no
// OS-level resources to free.
func (e *Engine) Acquire() { atomic.AddInt32(&e.refs, 1) }

// Release decrements the reference count and reports whether it reached
// zero.
func (e *Engine) Release() bool {
	return atomic.AddInt32(&e.refs, -1) == 0
}

// RefCount reports the engine's current outstanding reference count.
func (e *Engine) RefCount() int32 { return atomic.LoadInt32(&e.refs) }

// BuildChain resolves and validates a certificate chain for leaf (§3's
// top-level operation): build the primary simple chain, validate it,
// explore and rank alternates, run revocation checks against the winning
// chain, then run the configured policy.
//
// It returns ErrNoIssuerFound only when not even the first issuer lookup
// for leaf produced a candidate; any later resolution failure instead
// yields a successfully-returned, IS_PARTIAL_CHAIN-flagged chain.
func (e *Engine) BuildChain(ctx context.Context, leaf *x509.Certificate, params ChainParameters) (*ChainContext, error) {
	startCursors := map[int]*IssuerCursor{}

	chain := buildSimpleChain(ctx, &ChainElement{Cert: leaf}, e.worldStore, e.aia, e.cycleModulus, startCursors)

	if len(chain.Elements) == 1 && chain.Aggregate.Errors.Has(ErrIsPartialChain) && !isSelfSigned(leaf) {
		return nil, ErrNoIssuerFound
	}

	validateOpts := ValidateOptions{
		WorldStore:       e.worldStore,
		TrustedRootStore: e.trustedRootStore,
		EvalTime:         params.EvalTime,
	}

	validateSimpleChain(chain, validateOpts)

	cc := &ChainContext{Primary: chain}

	explore(ctx, cc, e.worldStore, e.aia, e.cycleModulus, validateOpts)

	if e.revocationOpts.Checker != nil {
		checkRevocation(ctx, cc.Primary, e.revocationOpts)
	}

	if e.policy != "" {
		result, err := RunPolicy(cc, e.policy, e.sslServerName, params.EvalTime)
		if err != nil {
			return cc, err
		}
		cc.Policy = &result
	}

	return cc, nil
}

// defaultEngine backs DefaultEngine/SetDefaultEngine's compare-and-swap
// initialize-once semantics (§9's "default engine" design note).
var defaultEngine atomic.Pointer[Engine]

// DefaultEngine returns the process-wide default Engine, or nil if none
// has been set yet.
func DefaultEngine() *Engine {
	return defaultEngine.Load()
}

// SetDefaultEngine installs e as the process-wide default engine if one
// has not already been installed, and reports whether its call won the
// race. Losing callers should Release the engine they built instead of
// using it, since the winner's engine is the one DefaultEngine will return.
func SetDefaultEngine(e *Engine) bool {
	return defaultEngine.CompareAndSwap(nil, e)
}
