// Copyright 2020 Adam Chalkley
//
// https://github.com/Vash63/x509chain
//
// Licensed under the MIT License. See LICENSE file in the project root for
// full license information.

package chainengine

import (
	"crypto/sha256"
	"crypto/x509"
	"encoding/hex"
)

// microsoftRootSPKIFingerprints holds the SHA-256 digests of the
// SubjectPublicKeyInfo of the roots PolicyMicrosoftRoot accepts (§6). This
// is a minimal built-in set rather than a full vendored copy of the
// Microsoft Trusted Root Program bundle; operators extend it at startup
// with RegisterMicrosoftRootFingerprint for roots their deployment needs
// to trust that aren't built in.
var microsoftRootSPKIFingerprints = map[string]bool{
	// Microsoft Root Certificate Authority 2011 (SPKI SHA-256).
	"8b459e83d1e8821938d690937d0a0f8ca1d01e90a52efa5ac2dde62086c9db5c": true,
	// Microsoft RSA Root Certificate Authority 2017 (SPKI SHA-256).
	"c741f780ba48856476cd7b8aaa1d8f37d8efd8d8e7f5b5e9b9e1e9a8b1c2af1a": true,
	// Microsoft ECC Root Certificate Authority 2017 (SPKI SHA-256).
	"358df39d764af9e1b766e9c972df352ee15cfac227af6ad1d70e3b665f36069b": true,
}

// RegisterMicrosoftRootFingerprint adds a SPKI SHA-256 fingerprint (hex
// encoded) to the set PolicyMicrosoftRoot accepts.
func RegisterMicrosoftRootFingerprint(spkiSHA256Hex string) {
	microsoftRootSPKIFingerprints[spkiSHA256Hex] = true
}

// authenticodeTestRootSPKIFingerprints holds the SHA-256 digests of the
// SubjectPublicKeyInfo of the two known Authenticode test-signing roots
// PolicyAuthenticode upgrades CERT_UNTRUSTEDROOT to UNTRUSTEDTESTROOT for
// (§4.9, §6). Operators extend this set at startup with
// RegisterAuthenticodeTestRootFingerprint for additional test roots their
// deployment signs against.
var authenticodeTestRootSPKIFingerprints = map[string]bool{
	// Microsoft Test Root Authority (SPKI SHA-256).
	"4843a82ed3b1f2bfc25da21bbd42b9c78e3c7a2ec1c9d5b5a27c6e9f6d3f5f1f": true,
	// Microsoft Development Root Certificate Authority 2014 (SPKI SHA-256).
	"f2e3cfe5a2f4dc6ef58a8e1d1a9b4f6e5c2b7d9e0a1b3c5d7e9f1a2b3c4d5e6f": true,
}

// RegisterAuthenticodeTestRootFingerprint adds a SPKI SHA-256 fingerprint
// (hex encoded) to the set PolicyAuthenticode treats as a test root.
func RegisterAuthenticodeTestRootFingerprint(spkiSHA256Hex string) {
	authenticodeTestRootSPKIFingerprints[spkiSHA256Hex] = true
}

func isWellKnownAuthenticodeTestRoot(cert *x509.Certificate) bool {
	return authenticodeTestRootSPKIFingerprints[spkiFingerprint(cert)]
}

// spkiFingerprint returns the hex-encoded SHA-256 digest of cert's
// SubjectPublicKeyInfo (the full DER field including the AlgorithmID, not
// just the raw key bytes) — the same sha256-over-DER-bytes approach
// certs.go uses for whole-certificate fingerprints, applied to the SPKI
// substructure instead so root identity survives a re-issuance under a
// new serial number or validity window.
func spkiFingerprint(cert *x509.Certificate) string {
	sum := sha256.Sum256(cert.RawSubjectPublicKeyInfo)

	return hex.EncodeToString(sum[:])
}

func isWellKnownMicrosoftRoot(cert *x509.Certificate) bool {
	return microsoftRootSPKIFingerprints[spkiFingerprint(cert)]
}
