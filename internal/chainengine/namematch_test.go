// Copyright 2024 Adam Chalkley
//
// https://github.com/Vash63/x509chain
//
// Licensed under the MIT License. See LICENSE file in the project root for
// full license information.

package chainengine

import "testing"

func TestMatchDNS(t *testing.T) {
	tests := []struct {
		name       string
		constraint string
		candidate  string
		matched    bool
		malformed  bool
	}{
		{name: "ExactMatch", constraint: "example.com", candidate: "example.com", matched: true},
		{name: "Subdomain", constraint: "example.com", candidate: "www.example.com", matched: true},
		{name: "CaseInsensitive", constraint: "Example.COM", candidate: "www.example.com", matched: true},
		{name: "SuffixWithoutLabelBoundary", constraint: "example.com", candidate: "notexample.com", matched: true},
		{name: "EmptyConstraintMalformed", constraint: "", candidate: "example.com", malformed: true},
		{name: "EmptyCandidateNoMatch", constraint: "example.com", candidate: "", matched: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := matchDNS(tt.constraint, tt.candidate)
			if got.Matched != tt.matched || got.Malformed != tt.malformed {
				t.Fatalf("matchDNS(%q, %q) = %+v, want matched=%v malformed=%v",
					tt.constraint, tt.candidate, got, tt.matched, tt.malformed)
			}
		})
	}
}

func TestMatchURI(t *testing.T) {
	tests := []struct {
		name       string
		constraint string
		candidate  string
		matched    bool
	}{
		{name: "DotPrefixStrictSuffix", constraint: ".example.com", candidate: "host.example.com", matched: true},
		{name: "DotPrefixRejectsBareDomain", constraint: ".example.com", candidate: "example.com", matched: false},
		{name: "FullMatchRequired", constraint: "example.com", candidate: "host.example.com", matched: false},
		{name: "FullMatchExact", constraint: "example.com", candidate: "example.com", matched: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := matchURI(tt.constraint, tt.candidate); got.Matched != tt.matched {
				t.Fatalf("matchURI(%q, %q).Matched = %v, want %v", tt.constraint, tt.candidate, got.Matched, tt.matched)
			}
		})
	}
}

func TestMatchRFC822(t *testing.T) {
	tests := []struct {
		name       string
		constraint string
		candidate  string
		matched    bool
	}{
		{name: "FullAddressExact", constraint: "user@example.com", candidate: "user@example.com", matched: true},
		{name: "FullAddressMismatch", constraint: "user@example.com", candidate: "other@example.com", matched: false},
		{name: "HostConstraintNeedsExactHostPart", constraint: "example.com", candidate: "user@host.example.com", matched: false},
		{name: "HostConstraintNoAtInCandidate", constraint: "example.com", candidate: "example.com", matched: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := matchRFC822(tt.constraint, tt.candidate); got.Matched != tt.matched {
				t.Fatalf("matchRFC822(%q, %q).Matched = %v, want %v", tt.constraint, tt.candidate, got.Matched, tt.matched)
			}
		})
	}
}

func TestMatchIP(t *testing.T) {
	constraint := []byte{10, 0, 0, 0, 255, 255, 255, 0} // 10.0.0.0/24

	tests := []struct {
		name      string
		candidate []byte
		matched   bool
	}{
		{name: "InRange", candidate: []byte{10, 0, 0, 42}, matched: true},
		{name: "OutOfRange", candidate: []byte{10, 0, 1, 42}, matched: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := matchIP(constraint, tt.candidate); got.Matched != tt.matched {
				t.Fatalf("matchIP(%v, %v).Matched = %v, want %v", constraint, tt.candidate, got.Matched, tt.matched)
			}
		})
	}

	t.Run("MalformedConstraintLength", func(t *testing.T) {
		if got := matchIP([]byte{1, 2, 3}, []byte{10, 0, 0, 1}); !got.Malformed {
			t.Fatalf("expected malformed result for a constraint of invalid length")
		}
	})
}
