// Copyright 2024 Adam Chalkley
//
// https://github.com/Vash63/x509chain
//
// Licensed under the MIT License. See LICENSE file in the project root for
// full license information.

package certstore

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

func genTestCert(t *testing.T, cn string, serial int64, keyID []byte) *x509.Certificate {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("generating key: %v", err)
	}

	now := time.Now()
	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(serial),
		Subject:      pkix.Name{CommonName: cn},
		NotBefore:    now.Add(-time.Hour),
		NotAfter:     now.Add(time.Hour * 24 * 365),
		SubjectKeyId: keyID,
		KeyUsage:     x509.KeyUsageDigitalSignature,
	}

	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	if err != nil {
		t.Fatalf("creating certificate: %v", err)
	}

	cert, err := x509.ParseCertificate(der)
	if err != nil {
		t.Fatalf("parsing certificate: %v", err)
	}

	return cert
}

func TestMemoryStoreByNameAndSerial(t *testing.T) {
	store := NewMemoryStore()
	c1 := genTestCert(t, "Issuer A", 42, nil)
	c2 := genTestCert(t, "Issuer A", 99, nil)
	store.AddAll([]*x509.Certificate{c1, c2})

	got := store.ByNameAndSerial("CN=Issuer A", big.NewInt(42))
	if len(got) != 1 || got[0] != c1 {
		t.Fatalf("expected exactly c1 to match (name, serial), got %d results", len(got))
	}

	if got := store.ByNameAndSerial("CN=Issuer A", big.NewInt(7)); len(got) != 0 {
		t.Fatalf("expected no match for an unused serial, got %d results", len(got))
	}
}

func TestMemoryStoreByKeyID(t *testing.T) {
	store := NewMemoryStore()
	keyID := []byte{0xAA, 0xBB, 0xCC}
	c1 := genTestCert(t, "Has Key ID", 1, keyID)
	c2 := genTestCert(t, "No Key ID", 2, nil)
	store.AddAll([]*x509.Certificate{c1, c2})

	got := store.ByKeyID(keyID)
	if len(got) != 1 || got[0] != c1 {
		t.Fatalf("expected exactly c1 to match by key id, got %d results", len(got))
	}

	if got := store.ByKeyID(nil); got != nil {
		t.Fatalf("expected a nil/empty key id query to return no results, got %d", len(got))
	}
}

func TestMemoryStoreByName(t *testing.T) {
	store := NewMemoryStore()
	c1 := genTestCert(t, "Same Name", 1, nil)
	c2 := genTestCert(t, "Same Name", 2, nil)
	c3 := genTestCert(t, "Different Name", 3, nil)
	store.AddAll([]*x509.Certificate{c1, c2, c3})

	got := store.ByName("CN=Same Name")
	if len(got) != 2 {
		t.Fatalf("expected 2 certs sharing a subject DN, got %d", len(got))
	}
}

func TestMemoryStoreCertificatesPreservesInsertionOrder(t *testing.T) {
	store := NewMemoryStore()
	c1 := genTestCert(t, "First", 1, nil)
	c2 := genTestCert(t, "Second", 2, nil)
	store.Add(c1)
	store.Add(c2)

	got := store.Certificates()
	if len(got) != 2 || got[0] != c1 || got[1] != c2 {
		t.Fatalf("expected Certificates() to preserve insertion order")
	}
}

func TestUnionStoreQueriesAllMembersInOrder(t *testing.T) {
	a := NewMemoryStore()
	b := NewMemoryStore()

	c1 := genTestCert(t, "Shared Name", 1, nil)
	c2 := genTestCert(t, "Shared Name", 2, nil)
	a.Add(c1)
	b.Add(c2)

	union := NewUnionStore(a, b)

	got := union.ByName("CN=Shared Name")
	if len(got) != 2 || got[0] != c1 || got[1] != c2 {
		t.Fatalf("expected union to return member a's results before member b's, got %d results", len(got))
	}

	allCerts := union.Certificates()
	if len(allCerts) != 2 {
		t.Fatalf("expected union Certificates() to concatenate both members, got %d", len(allCerts))
	}
}

func TestContainsComparesByRawBytes(t *testing.T) {
	store := NewMemoryStore()
	c1 := genTestCert(t, "In Store", 1, nil)
	c2 := genTestCert(t, "Not In Store", 2, nil)
	store.Add(c1)

	if !Contains(store, c1) {
		t.Fatalf("expected Contains to find a certificate present in the store")
	}

	if Contains(store, c2) {
		t.Fatalf("expected Contains to report false for a certificate absent from the store")
	}
}
