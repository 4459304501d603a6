// Copyright 2024 Adam Chalkley
//
// https://github.com/Vash63/x509chain
//
// Licensed under the MIT License. See LICENSE file in the project root for
// full license information.

package certs

import (
	"crypto/x509"
	"fmt"
	"strings"

	"github.com/Vash63/x509chain/internal/chainengine"
	"github.com/atc0005/go-nagios"
)

// Add an "implements assertion" to fail the build if the interface
// implementation isn't correct.
var _ CertChainValidationResult = (*ChainEngineValidationResult)(nil)

// ChainEngineValidationResult adapts a chainengine.ChainContext's trust
// status bits to the CertChainValidationResult interface, so the
// RFC 5280 engine's findings flow through the same sorting, priority and
// report-rendering machinery as the expiration/hostname/SANs checks.
//
// Unlike those checks, the engine's trust status is a single bitwise
// aggregate rather than one concern at a time, so this type reports a
// single consolidated result rather than decomposing into one
// CertChainValidationResult per error bit.
type ChainEngineValidationResult struct {
	certChain []*x509.Certificate
	cc        *chainengine.ChainContext
	err       error
	ignored   bool
}

// ValidateWithChainEngine runs cc's accumulated chain-building/validation
// findings through the adapter. cc.Primary.Aggregate carries the result of
// BuildChain, validateSimpleChain, alternate-path exploration and revocation
// checking (§4 of the chain engine). A configured policy's result is held in
// cc.Policy and is not reflected in the aggregate.
func ValidateWithChainEngine(cc *chainengine.ChainContext, ignored bool) ChainEngineValidationResult {
	certChain := make([]*x509.Certificate, 0, len(cc.Primary.Elements))
	for _, el := range cc.Primary.Elements {
		certChain = append(certChain, el.Cert)
	}

	var err error
	if !cc.Primary.Aggregate.IsClean() {
		err = fmt.Errorf(
			"chain validation failed: %s",
			cc.Primary.Aggregate.Errors,
		)
	}

	return ChainEngineValidationResult{
		certChain: certChain,
		cc:        cc,
		err:       err,
		ignored:   ignored,
	}
}

// CheckName emits the human-readable name of this validation check result.
func (cevr ChainEngineValidationResult) CheckName() string {
	return checkNameChainEngineValidationResult
}

// CertChain returns the evaluated certificate chain.
func (cevr ChainEngineValidationResult) CertChain() []*x509.Certificate {
	return cevr.certChain
}

// TotalCerts returns the number of certificates in the evaluated chain.
func (cevr ChainEngineValidationResult) TotalCerts() int {
	return len(cevr.certChain)
}

// errs returns the aggregate error bitset for the evaluated chain, or 0 if
// no chain was built.
func (cevr ChainEngineValidationResult) errs() chainengine.ErrorStatus {
	if cevr.cc == nil || cevr.cc.Primary == nil {
		return 0
	}

	return cevr.cc.Primary.Aggregate.Errors
}

// criticalMask is the set of error bits treated as CRITICAL: the chain
// could not be trusted, failed signature/time validation, was revoked, or
// is structurally broken (cyclic/partial).
const criticalMask = chainengine.ErrIsNotTimeValid |
	chainengine.ErrIsNotSignatureValid |
	chainengine.ErrIsRevoked |
	chainengine.ErrIsUntrustedRoot |
	chainengine.ErrIsCyclic |
	chainengine.ErrIsPartialChain |
	chainengine.ErrInvalidBasicConstraints |
	chainengine.ErrInvalidNameConstraints |
	chainengine.ErrHasExcludedNameConstraint

// warningMask is the set of error bits treated as WARNING: conditions
// worth flagging but not an outright broken chain.
const warningMask = chainengine.ErrIsNotTimeNested |
	chainengine.ErrIsNotValidForUsage |
	chainengine.ErrInvalidExtension |
	chainengine.ErrInvalidPolicyConstraints |
	chainengine.ErrHasNotSupportedNameConstraint |
	chainengine.ErrHasNotDefinedNameConstraint |
	chainengine.ErrHasNotPermittedNameConstraint |
	chainengine.ErrIsOfflineRevocation

// unknownMask is the set of error bits treated as UNKNOWN: the engine
// could not determine a definitive answer.
const unknownMask = chainengine.ErrRevocationStatusUnknown

// IsWarningState indicates whether this result is in a WARNING state.
func (cevr ChainEngineValidationResult) IsWarningState() bool {
	if cevr.IsIgnored() || cevr.IsCriticalState() {
		return false
	}

	return cevr.errs().Any(warningMask)
}

// IsCriticalState indicates whether this result is in a CRITICAL state.
func (cevr ChainEngineValidationResult) IsCriticalState() bool {
	if cevr.IsIgnored() {
		return false
	}

	return cevr.errs().Any(criticalMask)
}

// IsUnknownState indicates whether this result is in an UNKNOWN state.
func (cevr ChainEngineValidationResult) IsUnknownState() bool {
	if cevr.IsIgnored() || cevr.IsCriticalState() || cevr.IsWarningState() {
		return false
	}

	return cevr.errs().Any(unknownMask)
}

// IsOKState indicates whether this result is in an OK or passing state.
func (cevr ChainEngineValidationResult) IsOKState() bool {
	return cevr.err == nil || cevr.IsIgnored()
}

// IsIgnored indicates whether this result is flagged as ignored for the
// purposes of determining final validation state.
func (cevr ChainEngineValidationResult) IsIgnored() bool {
	return cevr.ignored
}

// IsSucceeded indicates whether this result is not ignored and no problems
// were identified.
func (cevr ChainEngineValidationResult) IsSucceeded() bool {
	return cevr.IsOKState() && !cevr.IsIgnored()
}

// IsFailed indicates whether this result is not ignored and problems were
// identified.
func (cevr ChainEngineValidationResult) IsFailed() bool {
	return cevr.err != nil && !cevr.IsIgnored()
}

// Err returns the underlying error (if any).
func (cevr ChainEngineValidationResult) Err() error {
	return cevr.err
}

// ServiceState returns the appropriate Service Check Status label and exit
// code for this result.
func (cevr ChainEngineValidationResult) ServiceState() nagios.ServiceState {
	return ServiceState(cevr)
}

// Priority indicates the level of importance for this result.
func (cevr ChainEngineValidationResult) Priority() int {
	switch {
	case cevr.ignored:
		return baselinePriorityChainEngineValidationResult
	case cevr.IsCriticalState():
		return baselinePriorityChainEngineValidationResult + priorityModifierMaximum
	case cevr.IsWarningState():
		return baselinePriorityChainEngineValidationResult + priorityModifierMinimum
	default:
		return baselinePriorityChainEngineValidationResult
	}
}

// Overview provides a high-level summary of this result.
func (cevr ChainEngineValidationResult) Overview() string {
	return fmt.Sprintf(
		"[CHAIN_LENGTH: %d, ERRORS: %s]",
		cevr.TotalCerts(),
		cevr.errs(),
	)
}

// Status is intended as a brief status of this result.
func (cevr ChainEngineValidationResult) Status() string {
	return fmt.Sprintf(
		"%s: %s validation %s",
		cevr.ServiceState().Label,
		cevr.CheckName(),
		cevr.ValidationStatus(),
	)
}

// StatusDetail provides additional details explaining the overall state of
// this result, listing every element of the chain and the errors recorded
// against it.
func (cevr ChainEngineValidationResult) StatusDetail() string {
	if cevr.cc == nil || cevr.cc.Primary == nil {
		return ""
	}

	var detail strings.Builder

	for i, el := range cevr.cc.Primary.Elements {
		fmt.Fprintf(
			&detail,
			"%d: %s%s  errors: %s%s  info: %s%s",
			i,
			el.Cert.Subject.String(),
			nagios.CheckOutputEOL,
			el.Status.Errors,
			nagios.CheckOutputEOL,
			el.Status.Info,
			nagios.CheckOutputEOL,
		)
	}

	if len(cevr.cc.LowerQuality) > 0 {
		fmt.Fprintf(
			&detail,
			"%d alternate chain(s) discovered and ranked below the primary chain%s",
			len(cevr.cc.LowerQuality),
			nagios.CheckOutputEOL,
		)
	}

	return detail.String()
}

// String provides the validation check result in human-readable format.
func (cevr ChainEngineValidationResult) String() string {
	return fmt.Sprintf("%s %s", cevr.Status(), cevr.Overview())
}

// Report provides the validation check result in verbose human-readable
// format.
func (cevr ChainEngineValidationResult) Report() string {
	return fmt.Sprintf(
		"%s %s%s%s",
		cevr.Status(),
		nagios.CheckOutputEOL,
		nagios.CheckOutputEOL,
		cevr.StatusDetail(),
	)
}

// ValidationStatus provides a one word status value for this result.
func (cevr ChainEngineValidationResult) ValidationStatus() string {
	switch {
	case cevr.ignored:
		return ValidationStatusIgnored
	case cevr.err != nil:
		return ValidationStatusFailed
	default:
		return ValidationStatusSuccessful
	}
}
