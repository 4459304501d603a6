// Copyright 2020 Adam Chalkley
//
// https://github.com/Vash63/x509chain
//
// Licensed under the MIT License. See LICENSE file in the project root for
// full license information.

package chainengine

import (
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/asn1"
)

// Legacy and current extension OIDs this inspector cares about. crypto/x509
// already decodes the "v2"/"current" forms into convenience fields on
// *x509.Certificate; the "v1" OIDs below are pre-RFC 3280 forms that
// crypto/x509 carries only as raw bytes in Certificate.Extensions, exactly
// as the teacher's own extension handling treats anything it doesn't have a
// typed accessor for.
var (
	oidBasicConstraintsV1 = asn1.ObjectIdentifier{2, 5, 29, 10}
	oidBasicConstraintsV2 = asn1.ObjectIdentifier{2, 5, 29, 19}
	oidKeyUsage           = asn1.ObjectIdentifier{2, 5, 29, 15}
	oidExtKeyUsage        = asn1.ObjectIdentifier{2, 5, 29, 37}
	oidNameConstraints    = asn1.ObjectIdentifier{2, 5, 29, 30}
	oidAuthorityKeyIDV1   = asn1.ObjectIdentifier{2, 5, 29, 1}
	oidAuthorityKeyIDV2   = asn1.ObjectIdentifier{2, 5, 29, 35}
	oidSubjectAltNameV1   = asn1.ObjectIdentifier{2, 5, 29, 7}
	oidSubjectAltNameV2   = asn1.ObjectIdentifier{2, 5, 29, 17}
	oidCodeSigningEKU     = asn1.ObjectIdentifier{1, 3, 6, 1, 5, 5, 7, 3, 3}
)

// criticalExtensionWhitelist is the set of extensions a conformant element
// of a simple chain is permitted to mark critical (§4.6 item 7).
var criticalExtensionWhitelist = []asn1.ObjectIdentifier{
	oidBasicConstraintsV1,
	oidBasicConstraintsV2,
	oidNameConstraints,
	oidKeyUsage,
	oidSubjectAltNameV1,
	oidSubjectAltNameV2,
	oidExtKeyUsage,
}

func oidEqual(a, b asn1.ObjectIdentifier) bool { return a.Equal(b) }

func findExtension(cert *x509.Certificate, oid asn1.ObjectIdentifier) *pkix.Extension {
	for i := range cert.Extensions {
		if oidEqual(cert.Extensions[i].Id, oid) {
			return &cert.Extensions[i]
		}
	}

	return nil
}

// BasicConstraints is the decoded form of either the v1 (subjectType CA
// bit) or v2 (fCA/fPathLenConstraint/pathLenConstraint) basicConstraints
// extension.
type BasicConstraints struct {
	Present       bool
	IsCA          bool
	PathLenSet    bool
	PathLen       int
}

type basicConstraintsV2ASN1 struct {
	IsCA       bool `asn1:"optional"`
	MaxPathLen int  `asn1:"optional,default:-1"`
}

// basicConstraintsV1ASN1 mirrors the legacy v1 basicConstraints
// structure's subjectType BIT STRING, where the high bit (0x80) indicates a
// CA certificate.
type basicConstraintsV1ASN1 struct {
	SubjectType asn1.BitString
	PathLen     int `asn1:"optional,default:-1"`
}

// InspectBasicConstraints decodes the basicConstraints extension (v1 or
// v2), preferring v2 if both are somehow present. If neither is present,
// defaultCA supplies the effective CA status (§4.2).
func InspectBasicConstraints(cert *x509.Certificate, defaultCA bool) BasicConstraints {
	if ext := findExtension(cert, oidBasicConstraintsV2); ext != nil {
		var v basicConstraintsV2ASN1
		if _, err := asn1.Unmarshal(ext.Value, &v); err == nil {
			bc := BasicConstraints{Present: true, IsCA: v.IsCA}
			if v.MaxPathLen >= 0 {
				bc.PathLenSet = true
				bc.PathLen = v.MaxPathLen
			}

			return bc
		}

		// Fall back to the fields crypto/x509 already decoded for us.
		bc := BasicConstraints{Present: cert.BasicConstraintsValid, IsCA: cert.IsCA}
		if cert.MaxPathLen > 0 || cert.MaxPathLenZero {
			bc.PathLenSet = true
			bc.PathLen = cert.MaxPathLen
		}

		return bc
	}

	if ext := findExtension(cert, oidBasicConstraintsV1); ext != nil {
		var v basicConstraintsV1ASN1
		if _, err := asn1.Unmarshal(ext.Value, &v); err == nil {
			isCA := v.SubjectType.BitLength > 0 && v.SubjectType.At(0) != 0
			bc := BasicConstraints{Present: true, IsCA: isCA}
			if v.PathLen >= 0 {
				bc.PathLenSet = true
				bc.PathLen = v.PathLen
			}

			return bc
		}
	}

	if cert.BasicConstraintsValid {
		bc := BasicConstraints{Present: true, IsCA: cert.IsCA}
		if cert.MaxPathLen > 0 || cert.MaxPathLenZero {
			bc.PathLenSet = true
			bc.PathLen = cert.MaxPathLen
		}

		return bc
	}

	return BasicConstraints{Present: false, IsCA: defaultCA}
}

// KeyUsage is the decoded keyUsage extension, if present.
type KeyUsage struct {
	Present      bool
	Critical     bool
	Bits         x509.KeyUsage
	Undecodable  bool
}

// InspectKeyUsage decodes the keyUsage extension (a BIT STRING of at most
// two bytes per §4.6 item 5).
func InspectKeyUsage(cert *x509.Certificate) KeyUsage {
	ext := findExtension(cert, oidKeyUsage)
	if ext == nil {
		return KeyUsage{}
	}

	var bs asn1.BitString
	if _, err := asn1.Unmarshal(ext.Value, &bs); err != nil || len(bs.Bytes) > 2 {
		return KeyUsage{Present: true, Critical: ext.Critical, Undecodable: true}
	}

	return KeyUsage{Present: true, Critical: ext.Critical, Bits: cert.KeyUsage}
}

// HasCertSign reports whether the decoded keyUsage bits assert
// keyCertSign.
func (ku KeyUsage) HasCertSign() bool {
	return ku.Bits&x509.KeyUsageCertSign != 0
}

// ExtKeyUsage is the decoded extendedKeyUsage extension, if present.
type ExtKeyUsage struct {
	Present  bool
	Critical bool
	OIDs     []asn1.ObjectIdentifier
}

// InspectExtKeyUsage decodes the extendedKeyUsage extension.
func InspectExtKeyUsage(cert *x509.Certificate) ExtKeyUsage {
	ext := findExtension(cert, oidExtKeyUsage)
	if ext == nil {
		return ExtKeyUsage{}
	}

	var oids []asn1.ObjectIdentifier
	if _, err := asn1.Unmarshal(ext.Value, &oids); err != nil {
		return ExtKeyUsage{Present: true, Critical: ext.Critical}
	}

	return ExtKeyUsage{Present: true, Critical: ext.Critical, OIDs: oids}
}

// HasCodeSigning reports whether one of the decoded OIDs is the code
// signing EKU, per §4.6 item 6.
func (eku ExtKeyUsage) HasCodeSigning() bool {
	for _, oid := range eku.OIDs {
		if oidEqual(oid, oidCodeSigningEKU) {
			return true
		}
	}

	return false
}

// GeneralSubtree is one entry of a permitted/excluded subtree list.
type GeneralSubtree struct {
	Form  NameForm
	Value string  // DNS/RFC822/URI textual base, empty for IP
	IPNet []byte  // addr||mask, populated only for NameFormIP
	Other bool    // true if the GeneralName form is not one of the four supported forms
}

type generalSubtreeASN1 struct {
	Base    asn1.RawValue
	Minimum int `asn1:"optional,tag:0,default:0"`
	Maximum int `asn1:"optional,tag:1,default:-1"`
}

type nameConstraintsASN1 struct {
	Permitted []generalSubtreeASN1 `asn1:"optional,tag:0"`
	Excluded  []generalSubtreeASN1 `asn1:"optional,tag:1"`
}

// NameConstraints is the decoded nameConstraints extension.
type NameConstraints struct {
	Present              bool
	Permitted            []GeneralSubtree
	Excluded             []GeneralSubtree
	NonDefaultMinOrMax   bool // true if any subtree specified a non-default minimum/maximum (§4.6.1 item 1)
}

// The four supported GeneralName choice tags (context class, constructed or
// primitive as ASN.1 demands); decodeGeneralSubtree maps each to a NameForm.
const (
	tagGeneralNameRFC822 = 1
	tagGeneralNameDNS    = 2
	tagGeneralNameURI    = 6
	tagGeneralNameIP     = 7
)

func decodeGeneralSubtree(raw generalSubtreeASN1) GeneralSubtree {
	gs := GeneralSubtree{}

	switch raw.Base.Tag {
	case tagGeneralNameDNS:
		gs.Form = NameFormDNS
		gs.Value = string(raw.Base.Bytes)
	case tagGeneralNameRFC822:
		gs.Form = NameFormRFC822
		gs.Value = string(raw.Base.Bytes)
	case tagGeneralNameURI:
		gs.Form = NameFormURI
		gs.Value = string(raw.Base.Bytes)
	case tagGeneralNameIP:
		gs.Form = NameFormIP
		gs.IPNet = raw.Base.Bytes
	default:
		gs.Other = true
	}

	return gs
}

// InspectNameConstraints decodes the nameConstraints extension.
func InspectNameConstraints(cert *x509.Certificate) NameConstraints {
	ext := findExtension(cert, oidNameConstraints)
	if ext == nil {
		return NameConstraints{}
	}

	var v nameConstraintsASN1
	if _, err := asn1.Unmarshal(ext.Value, &v); err != nil {
		// Go's own parser rejects certificates with nonconformant
		// min/max at ParseCertificate time, so in practice this branch
		// only fires for inputs assembled by hand in tests.
		return NameConstraints{Present: true, NonDefaultMinOrMax: true}
	}

	nc := NameConstraints{Present: true}

	for _, raw := range v.Permitted {
		if raw.Minimum != 0 || raw.Maximum != -1 {
			nc.NonDefaultMinOrMax = true

			continue
		}
		nc.Permitted = append(nc.Permitted, decodeGeneralSubtree(raw))
	}

	for _, raw := range v.Excluded {
		if raw.Minimum != 0 || raw.Maximum != -1 {
			nc.NonDefaultMinOrMax = true

			continue
		}
		nc.Excluded = append(nc.Excluded, decodeGeneralSubtree(raw))
	}

	return nc
}

// AuthorityKeyIdentifier is the decoded authorityKeyIdentifier extension
// (v1 or v2 form).
type AuthorityKeyIdentifier struct {
	Present          bool
	KeyID            []byte
	IssuerName       string // directoryName form of certIssuer/authorityCertIssuer, if present
	IssuerNamePresent bool
	SerialNumber     []byte
	SerialPresent    bool
}

type authorityKeyIDV2ASN1 struct {
	KeyIdentifier             []byte        `asn1:"optional,tag:0"`
	AuthorityCertIssuer       []asn1.RawValue `asn1:"optional,tag:1"`
	AuthorityCertSerialNumber []byte        `asn1:"optional,tag:2"`
}

// AuthorityKeyIdentifierResult is a decoded authorityKeyIdentifier plus the
// form it came from; the caller distinguishes v1 vs v2 for info-status
// purposes via IsLegacyForm.
type AuthorityKeyIdentifierResult struct {
	AuthorityKeyIdentifier
	IsLegacyForm bool
}

// InspectAuthorityKeyIdentifier decodes the v1 (legacy, OID 2.5.29.1)
// authorityKeyIdentifier extension if present, else the v2 (current, OID
// 2.5.29.35) form, else the key id crypto/x509 already decoded.
func InspectAuthorityKeyIdentifier(cert *x509.Certificate) AuthorityKeyIdentifierResult {
	if ext := findExtension(cert, oidAuthorityKeyIDV1); ext != nil {
		var v authorityKeyIDV2ASN1
		if _, err := asn1.Unmarshal(ext.Value, &v); err == nil {
			aki := AuthorityKeyIdentifier{Present: true, KeyID: v.KeyIdentifier}
			if len(v.AuthorityCertSerialNumber) > 0 {
				aki.SerialPresent = true
				aki.SerialNumber = v.AuthorityCertSerialNumber
			}
			if name, ok := firstDirectoryName(v.AuthorityCertIssuer); ok {
				aki.IssuerNamePresent = true
				aki.IssuerName = name
			}

			return AuthorityKeyIdentifierResult{AuthorityKeyIdentifier: aki, IsLegacyForm: true}
		}
	}

	if ext := findExtension(cert, oidAuthorityKeyIDV2); ext != nil {
		var v authorityKeyIDV2ASN1
		if _, err := asn1.Unmarshal(ext.Value, &v); err == nil {
			aki := AuthorityKeyIdentifier{Present: true, KeyID: v.KeyIdentifier}
			if len(v.AuthorityCertSerialNumber) > 0 {
				aki.SerialPresent = true
				aki.SerialNumber = v.AuthorityCertSerialNumber
			}
			if name, ok := firstDirectoryName(v.AuthorityCertIssuer); ok {
				aki.IssuerNamePresent = true
				aki.IssuerName = name
			}

			return AuthorityKeyIdentifierResult{AuthorityKeyIdentifier: aki}
		}
	}

	// Fall back to crypto/x509's own decode of the v2 extension.
	if len(cert.AuthorityKeyId) > 0 {
		return AuthorityKeyIdentifierResult{
			AuthorityKeyIdentifier: AuthorityKeyIdentifier{Present: true, KeyID: cert.AuthorityKeyId},
		}
	}

	return AuthorityKeyIdentifierResult{}
}

// firstDirectoryName returns the first GeneralName of type directoryName
// (context tag 4, constructed) from a GeneralNames sequence.
func firstDirectoryName(names []asn1.RawValue) (string, bool) {
	const tagDirectoryName = 4

	for _, n := range names {
		if n.Tag == tagDirectoryName {
			var rdn pkix.RDNSequence
			if _, err := asn1.Unmarshal(n.Bytes, &rdn); err == nil {
				var name pkix.Name
				name.FillFromRDNSequence(&rdn)

				return name.String(), true
			}
		}
	}

	return "", false
}

// SubjectAltName is the decoded subjectAltName extension (v1 or v2 form).
type SubjectAltName struct {
	Present bool
	DNS     []string
	Email   []string
	URI     []string
	IP      [][]byte
	Other   bool // true if one or more entries used an unsupported GeneralName form
}

// InspectSubjectAltName decodes the subjectAltName extension, preferring
// the current (v2, OID 2.5.29.17) form and falling back to the legacy (v1,
// OID 2.5.29.7) form, per §4.6.1 item 2.
func InspectSubjectAltName(cert *x509.Certificate) SubjectAltName {
	ext := findExtension(cert, oidSubjectAltNameV2)
	if ext == nil {
		ext = findExtension(cert, oidSubjectAltNameV1)
	}
	if ext == nil {
		return SubjectAltName{}
	}

	var names []asn1.RawValue
	if _, err := asn1.Unmarshal(ext.Value, &names); err != nil {
		return SubjectAltName{Present: true}
	}

	san := SubjectAltName{Present: true}
	for _, n := range names {
		switch n.Tag {
		case tagGeneralNameDNS:
			san.DNS = append(san.DNS, string(n.Bytes))
		case tagGeneralNameRFC822:
			san.Email = append(san.Email, string(n.Bytes))
		case tagGeneralNameURI:
			san.URI = append(san.URI, string(n.Bytes))
		case tagGeneralNameIP:
			san.IP = append(san.IP, n.Bytes)
		default:
			san.Other = true
		}
	}

	return san
}

// criticalExtensionsWhitelisted reports whether every critical extension on
// cert appears in criticalExtensionWhitelist (§4.6 item 7).
func criticalExtensionsWhitelisted(cert *x509.Certificate) bool {
	for _, ext := range cert.Extensions {
		if !ext.Critical {
			continue
		}

		whitelisted := false
		for _, oid := range criticalExtensionWhitelist {
			if oidEqual(ext.Id, oid) {
				whitelisted = true

				break
			}
		}

		if !whitelisted {
			return false
		}
	}

	return true
}
