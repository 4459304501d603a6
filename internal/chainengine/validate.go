// Copyright 2020 Adam Chalkley
//
// https://github.com/Vash63/x509chain
//
// Licensed under the MIT License. See LICENSE file in the project root for
// full license information.

package chainengine

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/md5" //nolint:gosec // retained for MD5WithRSA signature verification of legacy certs
	"crypto/rsa"
	"crypto/sha1" //nolint:gosec // retained for SHA1WithRSA/ECDSAWithSHA1 signature verification of legacy certs
	"crypto/x509"
	"errors"
	"fmt"
	"time"

	"github.com/Vash63/x509chain/internal/certstore"
)

// ErrSignatureVerificationFailed mirrors the teacher's sentinel of the same
// name; it wraps the concrete cause of a signature check failure for log
// messages, distinct from the IS_NOT_SIGNATURE_VALID status bit the
// validator records on the affected element.
var ErrSignatureVerificationFailed = errors.New("signature verification failed")

// ValidateOptions configures a single simple-chain validation pass.
type ValidateOptions struct {
	// EvalTime is the point in time validity checks are evaluated against.
	// The zero value means "now".
	EvalTime time.Time

	// WorldStore is consulted to decide whether a v1/v2 certificate without
	// an explicit basicConstraints extension should be treated as an
	// implicit CA (§4.6 item 4: "a v1/v2 cert present in the engine's world
	// store is implicitly a CA").
	WorldStore certstore.Store

	// TrustedRootStore is consulted for the root-specific trust check
	// (§4.6, "look the root up in the trusted-root store").
	TrustedRootStore certstore.Store
}

type chainConstraints struct {
	set     bool
	pathLen int
}

// validateSimpleChain runs the RFC 5280 conformance checks of §4.6 over a
// completed simple chain, walking from the root (last element) down to the
// leaf (element 0), and populates per-element and aggregate trust status.
func validateSimpleChain(chain *SimpleChain, opts ValidateOptions) {
	evalTime := opts.EvalTime
	if evalTime.IsZero() {
		evalTime = time.Now()
	}

	n := len(chain.Elements)
	if n == 0 {
		return
	}

	rootIdx := n - 1

	pathLenViolated := false
	constraints := chainConstraints{}

	// §4.6 item 8: a chain that was truncated by the cycle detector carries
	// IS_CYCLIC on its terminal element. Treat that terminal element as an
	// untrusted non-root from here on: force the path-length violation and
	// mark the chain partial, since no self-signed root was ever reached.
	if chain.Elements[rootIdx].Status.Errors.Has(ErrIsCyclic) {
		chain.setElementErrors(rootIdx, ErrIsPartialChain|ErrInvalidBasicConstraints)
		pathLenViolated = true
	}

	for i := rootIdx; i >= 0; i-- {
		el := chain.Elements[i]
		cert := el.Cert
		isRoot := i == rootIdx
		isLeaf := i == 0

		// Item 1: version/contents consistency. crypto/x509 does not
		// surface issuerUniqueID/subjectUniqueID, so only the "extensions
		// present on a v1/v2 cert" half of this check is evaluable here.
		if (cert.Version == 1 || cert.Version == 2) && len(cert.Extensions) > 0 {
			chain.setElementErrors(i, ErrInvalidExtension)
		}

		// Item 2: validity time.
		if evalTime.Before(cert.NotBefore) || evalTime.After(cert.NotAfter) {
			chain.setElementErrors(i, ErrIsNotTimeValid)
		}

		// Item 3: signature of the issued cert, checked against the
		// element that issued it (the next element up towards the root).
		if !isRoot {
			issuer := chain.Elements[i+1].Cert
			if err := verifySignature(cert, issuer); err != nil {
				chain.setElementErrors(i, ErrIsNotSignatureValid)
			}
		}

		// Item 4: basic constraints / path length, evaluated for every
		// non-leaf position (intermediates and root).
		if !isLeaf {
			if pathLenViolated {
				chain.setElementErrors(i, ErrInvalidBasicConstraints)
			} else {
				effectiveCA := isRoot || isImplicitCA(cert, opts.WorldStore)

				bc := InspectBasicConstraints(cert, effectiveCA)
				if !isRoot {
					effectiveCA = bc.IsCA
				}

				if !effectiveCA {
					chain.setElementErrors(i, ErrInvalidBasicConstraints)
					pathLenViolated = true
				} else {
					remainingCAs := i - 1 // intermediate CAs strictly below i, above the leaf

					if bc.PathLenSet && (!constraints.set || bc.PathLen < constraints.pathLen) {
						constraints = chainConstraints{set: true, pathLen: bc.PathLen}
					}

					switch {
					case constraints.set && remainingCAs > constraints.pathLen:
						pathLenViolated = true
						chain.setElementErrors(i, ErrInvalidBasicConstraints)
					case constraints.set && constraints.pathLen > 0:
						constraints.pathLen--
					}
				}
			}
		}

		// Item 5: key usage.
		ku := InspectKeyUsage(cert)
		if ku.Undecodable {
			chain.setElementErrors(i, ErrInvalidExtension)
		} else {
			switch {
			case !isLeaf:
				locallyTrusted := isRoot || isImplicitCA(cert, opts.WorldStore)
				if ku.Present && !ku.HasCertSign() {
					chain.setElementErrors(i, ErrIsNotValidForUsage)
				} else if !ku.Present && !locallyTrusted {
					chain.setElementErrors(i, ErrIsNotValidForUsage)
				}
			default: // leaf
				bc := InspectBasicConstraints(cert, false)
				if ku.Present && ku.HasCertSign() && !bc.IsCA {
					chain.setElementErrors(i, ErrIsNotValidForUsage)
				}
			}
		}

		// Item 6: extended key usage, non-leaf only.
		if !isLeaf {
			eku := InspectExtKeyUsage(cert)
			if eku.Present && eku.Critical && !eku.HasCodeSigning() {
				chain.setElementErrors(i, ErrInvalidExtension)
			}
		}

		// Item 7: critical-extension whitelist.
		if !criticalExtensionsWhitelisted(cert) {
			chain.setElementErrors(i, ErrInvalidExtension)
		}
	}

	enforceNameConstraints(chain, opts)

	// Root-specific checks.
	root := chain.Elements[rootIdx]
	if isSelfSigned(root.Cert) {
		chain.setElementInfo(rootIdx, InfoIsSelfSigned|InfoHasNameMatchIssuer)

		if err := verifySignature(root.Cert, root.Cert); err != nil {
			chain.setElementErrors(rootIdx, ErrIsNotSignatureValid)
		}

		if opts.TrustedRootStore != nil && !certstore.Contains(opts.TrustedRootStore, root.Cert) {
			chain.setElementErrors(rootIdx, ErrIsUntrustedRoot)
		}
	}
}

// isImplicitCA reports whether cert is a v1 or v2 certificate present in
// worldStore, which the engine treats as an implicitly trusted CA absent
// an explicit basicConstraints extension (§4.6 item 4).
func isImplicitCA(cert *x509.Certificate, worldStore certstore.Store) bool {
	if cert.Version != 1 && cert.Version != 2 {
		return false
	}
	if worldStore == nil {
		return false
	}

	return certstore.Contains(worldStore, cert)
}

// verifySignature verifies that issuerCert's public key signs issuedCert's
// tbsCertificate, falling back to manual verification of signature
// algorithms crypto/x509 now rejects outright as insecure (carried forward
// from the teacher's certs.go, unchanged in approach).
func verifySignature(issuedCert *x509.Certificate, issuerCert *x509.Certificate) error {
	sigVerifyErr := issuerCert.CheckSignature(
		issuedCert.SignatureAlgorithm,
		issuedCert.RawTBSCertificate,
		issuedCert.Signature,
	)

	if !errors.Is(sigVerifyErr, x509.InsecureAlgorithmError(issuedCert.SignatureAlgorithm)) {
		if sigVerifyErr != nil {
			return fmt.Errorf("%w: %w", sigVerifyErr, ErrSignatureVerificationFailed)
		}

		return nil
	}

	switch issuedCert.SignatureAlgorithm {
	case x509.MD5WithRSA:
		return verifyLegacySignature(issuedCert, issuerCert, crypto.MD5, md5.New())
	case x509.SHA1WithRSA:
		return verifyLegacySignature(issuedCert, issuerCert, crypto.SHA1, sha1.New())
	case x509.ECDSAWithSHA1:
		return verifyECDSASHA1(issuedCert, issuerCert)
	default:
		return fmt.Errorf(
			"unsupported insecure signature algorithm %s: %w: %w",
			issuedCert.SignatureAlgorithm, sigVerifyErr, ErrSignatureVerificationFailed,
		)
	}
}

type hasher interface {
	Write(p []byte) (int, error)
	Sum(b []byte) []byte
}

func verifyLegacySignature(issuedCert, issuerCert *x509.Certificate, h crypto.Hash, hasherImpl hasher) error {
	if _, err := hasherImpl.Write(issuedCert.RawTBSCertificate); err != nil {
		return fmt.Errorf("%w: %w", ErrSignatureVerificationFailed, err)
	}

	hashed := hasherImpl.Sum(nil)

	pub, ok := issuerCert.PublicKey.(*rsa.PublicKey)
	if !ok {
		return fmt.Errorf("issuer public key not RSA: %w", ErrSignatureVerificationFailed)
	}

	if err := rsa.VerifyPKCS1v15(pub, h, hashed, issuedCert.Signature); err != nil {
		return fmt.Errorf("%w: %w", err, ErrSignatureVerificationFailed)
	}

	return nil
}

func verifyECDSASHA1(issuedCert, issuerCert *x509.Certificate) error {
	h := sha1.New() //nolint:gosec // not used for cryptographic purposes
	if _, err := h.Write(issuedCert.RawTBSCertificate); err != nil {
		return fmt.Errorf("%w: %w", ErrSignatureVerificationFailed, err)
	}

	hashed := h.Sum(nil)

	pub, ok := issuerCert.PublicKey.(*ecdsa.PublicKey)
	if !ok {
		return fmt.Errorf("issuer public key not ECDSA: %w", ErrSignatureVerificationFailed)
	}

	if !ecdsa.VerifyASN1(pub, hashed, issuedCert.Signature) {
		return fmt.Errorf("ECDSA signature invalid: %w", ErrSignatureVerificationFailed)
	}

	return nil
}
