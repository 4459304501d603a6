// Copyright 2020 Adam Chalkley
//
// https://github.com/Vash63/x509chain
//
// Licensed under the MIT License. See LICENSE file in the project root for
// full license information.

// Package certstore provides the certificate-store abstraction the chain
// engine treats as an external collaborator: it opens, enumerates, and
// indexes certificates by name, key id, and (issuer, serial). The engine
// never depends on a concrete store implementation, only the Store
// interface below.
package certstore

import (
	"bytes"
	"crypto/x509"
	"math/big"
)

// Store is the certificate-store abstraction the issuer resolver queries.
// Implementations must return candidates in a deterministic, store-defined
// order (§5 "Ordering guarantees").
type Store interface {
	// ByNameAndSerial returns certificates whose subject distinguished name
	// equals issuerDN and whose serial number equals serial (exact
	// AKI+serial match, §4.3 step 1).
	ByNameAndSerial(issuerDN string, serial *big.Int) []*x509.Certificate

	// ByKeyID returns certificates whose subject key identifier equals
	// keyID (key-id match, §4.3 steps 1-2).
	ByKeyID(keyID []byte) []*x509.Certificate

	// ByName returns certificates whose subject distinguished name equals
	// subjectDN (subject-name-only match, §4.3 step 3).
	ByName(subjectDN string) []*x509.Certificate

	// Certificates returns every certificate held by the store, in
	// deterministic enumeration order.
	Certificates() []*x509.Certificate
}

// MemoryStore is an in-memory Store backed by an insertion-ordered slice;
// every lookup scans that slice. It is the engine's default implementation of the
// certificate-store collaborator described in spec §1 as out of scope; the
// engine itself never constructs certificates, only looks them up here.
type MemoryStore struct {
	certs []*x509.Certificate
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Add appends cert to the store. Insertion order is the store's
// enumeration order, matching the teacher's general preference for
// deterministic, unsurprising ordering over certificates gathered from
// disk/PEM bundles.
func (s *MemoryStore) Add(cert *x509.Certificate) {
	s.certs = append(s.certs, cert)
}

// AddAll appends every certificate in certs, in order.
func (s *MemoryStore) AddAll(certs []*x509.Certificate) {
	for _, c := range certs {
		s.Add(c)
	}
}

// Certificates returns every certificate in insertion order.
func (s *MemoryStore) Certificates() []*x509.Certificate {
	out := make([]*x509.Certificate, len(s.certs))
	copy(out, s.certs)

	return out
}

// ByNameAndSerial returns certificates whose subject DN and serial number
// both match, in insertion order.
func (s *MemoryStore) ByNameAndSerial(issuerDN string, serial *big.Int) []*x509.Certificate {
	var out []*x509.Certificate
	for _, c := range s.certs {
		if c.Subject.String() == issuerDN && serial != nil && c.SerialNumber != nil &&
			c.SerialNumber.Cmp(serial) == 0 {
			out = append(out, c)
		}
	}

	return out
}

// ByKeyID returns certificates whose SubjectKeyId matches keyID.
func (s *MemoryStore) ByKeyID(keyID []byte) []*x509.Certificate {
	if len(keyID) == 0 {
		return nil
	}

	var out []*x509.Certificate
	for _, c := range s.certs {
		if bytes.Equal(c.SubjectKeyId, keyID) {
			out = append(out, c)
		}
	}

	return out
}

// ByName returns certificates whose subject DN equals subjectDN.
func (s *MemoryStore) ByName(subjectDN string) []*x509.Certificate {
	var out []*x509.Certificate
	for _, c := range s.certs {
		if c.Subject.String() == subjectDN {
			out = append(out, c)
		}
	}

	return out
}

// UnionStore presents several stores as one, preserving each member
// store's internal order and iterating members in the order supplied to
// NewUnionStore. This is the engine's "world store": trusted root + system
// CA + user stores + caller additions (§3, §5).
type UnionStore struct {
	members []Store
}

// NewUnionStore returns a Store that queries each of members in order and
// concatenates their results, keeping exploration deterministic.
func NewUnionStore(members ...Store) *UnionStore {
	return &UnionStore{members: members}
}

func (u *UnionStore) ByNameAndSerial(issuerDN string, serial *big.Int) []*x509.Certificate {
	var out []*x509.Certificate
	for _, m := range u.members {
		out = append(out, m.ByNameAndSerial(issuerDN, serial)...)
	}

	return out
}

func (u *UnionStore) ByKeyID(keyID []byte) []*x509.Certificate {
	var out []*x509.Certificate
	for _, m := range u.members {
		out = append(out, m.ByKeyID(keyID)...)
	}

	return out
}

func (u *UnionStore) ByName(subjectDN string) []*x509.Certificate {
	var out []*x509.Certificate
	for _, m := range u.members {
		out = append(out, m.ByName(subjectDN)...)
	}

	return out
}

func (u *UnionStore) Certificates() []*x509.Certificate {
	var out []*x509.Certificate
	for _, m := range u.members {
		out = append(out, m.Certificates()...)
	}

	return out
}

// Contains reports whether cert (compared by raw DER bytes) is present in
// the store. Used to validate a restricted root store is a subset of the
// system trusted-root store at engine-construction time (§6).
func Contains(s Store, cert *x509.Certificate) bool {
	for _, c := range s.Certificates() {
		if bytes.Equal(c.Raw, cert.Raw) {
			return true
		}
	}

	return false
}
