// Copyright 2024 Adam Chalkley
//
// https://github.com/Vash63/x509chain
//
// Licensed under the MIT License. See LICENSE file in the project root for
// full license information.

package chainengine

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"math/big"
	"testing"
	"time"
)

// genCert generates a self-signed or issuer-signed certificate for tests.
// When issuer/issuerKey are nil, the returned certificate is self-signed.
func genCert(t *testing.T, tmpl *x509.Certificate, issuer *x509.Certificate, issuerKey *ecdsa.PrivateKey) (*x509.Certificate, *ecdsa.PrivateKey) {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("generating key: %v", err)
	}

	signer := issuer
	signerKey := issuerKey
	if signer == nil {
		signer = tmpl
		signerKey = key
	}

	der, err := x509.CreateCertificate(rand.Reader, tmpl, signer, &key.PublicKey, signerKey)
	if err != nil {
		t.Fatalf("creating certificate: %v", err)
	}

	cert, err := x509.ParseCertificate(der)
	if err != nil {
		t.Fatalf("parsing certificate: %v", err)
	}

	return cert, key
}

func testSerial(t *testing.T, n int64) *big.Int {
	t.Helper()

	return big.NewInt(n)
}

// buildTestChain returns a (root, intermediate, leaf) triple wired
// together by issuer signing, each a valid CA except the leaf.
func buildTestChain(t *testing.T) (root, inter, leaf *x509.Certificate) {
	t.Helper()

	now := time.Now()

	rootTmpl := &x509.Certificate{
		SerialNumber:          testSerial(t, 1),
		Subject:               pkix.Name{CommonName: "Test Root CA"},
		NotBefore:             now.Add(-time.Hour),
		NotAfter:              now.Add(time.Hour * 24 * 365),
		BasicConstraintsValid: true,
		IsCA:                  true,
		KeyUsage:              x509.KeyUsageCertSign | x509.KeyUsageCRLSign,
	}
	rootCert, rootKey := genCert(t, rootTmpl, nil, nil)

	interTmpl := &x509.Certificate{
		SerialNumber:          testSerial(t, 2),
		Subject:               pkix.Name{CommonName: "Test Intermediate CA"},
		NotBefore:             now.Add(-time.Hour),
		NotAfter:              now.Add(time.Hour * 24 * 365),
		BasicConstraintsValid: true,
		IsCA:                  true,
		MaxPathLen:            0,
		MaxPathLenZero:        true,
		KeyUsage:              x509.KeyUsageCertSign | x509.KeyUsageCRLSign,
	}
	interCert, interKey := genCert(t, interTmpl, rootCert, rootKey)

	leafTmpl := &x509.Certificate{
		SerialNumber: testSerial(t, 3),
		Subject:      pkix.Name{CommonName: "leaf.example.com"},
		DNSNames:     []string{"leaf.example.com"},
		NotBefore:    now.Add(-time.Hour),
		NotAfter:     now.Add(time.Hour * 24 * 365),
		KeyUsage:     x509.KeyUsageDigitalSignature,
	}
	leafCert, _ := genCert(t, leafTmpl, interCert, interKey)

	return rootCert, interCert, leafCert
}
