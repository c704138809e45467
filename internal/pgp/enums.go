package pgp

import (
	"crypto"
	"fmt"
)

// PacketTag identifies the content of an OpenPGP packet.
// See RFC 4880, section 4.3. The list of named tags is incomplete;
// packets with other tags are carried through undecoded.
type PacketTag byte

const (
	TagSignature PacketTag = 2
	TagPublicKey PacketTag = 6
	TagUserID    PacketTag = 13
)

func (t PacketTag) String() string {
	switch t {
	case TagSignature:
		return "Signature Packet"
	case TagPublicKey:
		return "Public-Key Packet"
	case TagUserID:
		return "User ID Packet"
	}
	return fmt.Sprintf("Packet Tag %d", byte(t))
}

// PublicKeyAlgo identifies a public-key algorithm.
// See RFC 4880, section 9.1. Only the RSA variants are supported.
type PublicKeyAlgo byte

const (
	AlgoRSA            PublicKeyAlgo = 1
	AlgoRSAEncryptOnly PublicKeyAlgo = 2
	AlgoRSASignOnly    PublicKeyAlgo = 3
)

func (a PublicKeyAlgo) IsRSA() bool {
	return a == AlgoRSA || a == AlgoRSAEncryptOnly || a == AlgoRSASignOnly
}

func (a PublicKeyAlgo) String() string {
	switch a {
	case AlgoRSA:
		return "RSA (Encrypt or Sign)"
	case AlgoRSAEncryptOnly:
		return "RSA Encrypt-Only"
	case AlgoRSASignOnly:
		return "RSA Sign-Only"
	}
	return fmt.Sprintf("Public-Key Algorithm %d", byte(a))
}

// lookupPublicKeyAlgo is strict: an unknown algorithm ID makes the
// enclosing packet unparseable.
func lookupPublicKeyAlgo(id byte) (PublicKeyAlgo, error) {
	algo := PublicKeyAlgo(id)
	if !algo.IsRSA() {
		return 0, fmt.Errorf("unsupported public-key algorithm %d", id)
	}
	return algo, nil
}

// HashAlgo identifies a hash algorithm. See RFC 4880, section 9.4.
// This list is incomplete.
type HashAlgo byte

const (
	HashMD5    HashAlgo = 1
	HashSHA256 HashAlgo = 8
	HashSHA384 HashAlgo = 9
	HashSHA512 HashAlgo = 10
	HashSHA224 HashAlgo = 11
)

func (h HashAlgo) String() string {
	switch h {
	case HashMD5:
		return "MD5"
	case HashSHA256:
		return "SHA256"
	case HashSHA384:
		return "SHA384"
	case HashSHA512:
		return "SHA512"
	case HashSHA224:
		return "SHA224"
	}
	return fmt.Sprintf("Hash Algorithm %d", byte(h))
}

// cryptoHash maps the algorithm onto the standard library's registry.
// MD5 maps too; it is the verifier that refuses to use it.
func (h HashAlgo) cryptoHash() (crypto.Hash, bool) {
	switch h {
	case HashMD5:
		return crypto.MD5, true
	case HashSHA256:
		return crypto.SHA256, true
	case HashSHA384:
		return crypto.SHA384, true
	case HashSHA512:
		return crypto.SHA512, true
	case HashSHA224:
		return crypto.SHA224, true
	}
	return 0, false
}

func lookupHashAlgo(id byte) (HashAlgo, error) {
	algo := HashAlgo(id)
	if _, ok := algo.cryptoHash(); !ok {
		return 0, fmt.Errorf("unsupported hash algorithm %d", id)
	}
	return algo, nil
}

// SignatureType identifies what a signature is asserting over its
// signed data. See RFC 4880, section 5.2.1.
type SignatureType byte

const (
	SigTypeBinaryDocument         SignatureType = 0x00
	SigTypeTextDocument           SignatureType = 0x01
	SigTypeStandalone             SignatureType = 0x02
	SigTypeGenericUserID          SignatureType = 0x10
	SigTypePersonaUserID          SignatureType = 0x11
	SigTypeCasualUserID           SignatureType = 0x12
	SigTypePositiveUserID         SignatureType = 0x13
	SigTypeSubkeyBinding          SignatureType = 0x18
	SigTypePrimaryKeyBinding      SignatureType = 0x19
	SigTypeDirectlyOnKey          SignatureType = 0x1F
	SigTypeKeyRevocation          SignatureType = 0x20
	SigTypeSubkeyRevocation       SignatureType = 0x28
	SigTypeCertRevocation         SignatureType = 0x30
	SigTypeTimestamp              SignatureType = 0x40
	SigTypeThirdPartyConfirmation SignatureType = 0x50
)

var signatureTypeNames = map[SignatureType]string{
	SigTypeBinaryDocument:         "signature of a binary document",
	SigTypeTextDocument:           "signature of a canonical text document",
	SigTypeStandalone:             "standalone signature",
	SigTypeGenericUserID:          "generic certification of a user id and public-key packet",
	SigTypePersonaUserID:          "persona certification of a user id and public-key packet",
	SigTypeCasualUserID:           "casual certification of a user id and public-key packet",
	SigTypePositiveUserID:         "positive certification of a user id and public-key packet",
	SigTypeSubkeyBinding:          "subkey binding signature",
	SigTypePrimaryKeyBinding:      "primary key binding signature",
	SigTypeDirectlyOnKey:          "signature directly on a key",
	SigTypeKeyRevocation:          "key revocation signature",
	SigTypeSubkeyRevocation:       "subkey revocation signature",
	SigTypeCertRevocation:         "certification revocation signature",
	SigTypeTimestamp:              "timestamp signature",
	SigTypeThirdPartyConfirmation: "third-party confirmation signature",
}

func (t SignatureType) String() string {
	if name, ok := signatureTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Signature Type 0x%02X", byte(t))
}

func lookupSignatureType(id byte) (SignatureType, error) {
	sigType := SignatureType(id)
	if _, ok := signatureTypeNames[sigType]; !ok {
		return 0, fmt.Errorf("unsupported signature type 0x%02X", id)
	}
	return sigType, nil
}

// SubpacketTag identifies a signature subpacket.
// See RFC 4880, section 5.2.3.1. Unknown tags are tolerated since the
// subpacket bytes are carried through verbatim either way.
type SubpacketTag byte

const (
	SubpacketCreationTime        SubpacketTag = 2
	SubpacketExpirationTime      SubpacketTag = 3
	SubpacketExportable          SubpacketTag = 4
	SubpacketTrust               SubpacketTag = 5
	SubpacketRegularExpression   SubpacketTag = 6
	SubpacketRevocable           SubpacketTag = 7
	SubpacketKeyExpirationTime   SubpacketTag = 9
	SubpacketPreferredSymmetric  SubpacketTag = 11
	SubpacketRevocationKey       SubpacketTag = 12
	SubpacketIssuer              SubpacketTag = 16
	SubpacketNotationData        SubpacketTag = 20
	SubpacketPreferredHash       SubpacketTag = 21
	SubpacketPreferredCompress   SubpacketTag = 22
	SubpacketKeyServerPrefs      SubpacketTag = 23
	SubpacketPreferredKeyServer  SubpacketTag = 24
	SubpacketPrimaryUserID       SubpacketTag = 25
	SubpacketPolicyURI           SubpacketTag = 26
	SubpacketKeyFlags            SubpacketTag = 27
	SubpacketSignersUserID       SubpacketTag = 28
	SubpacketReasonForRevocation SubpacketTag = 29
	SubpacketFeatures            SubpacketTag = 30
	SubpacketSignatureTarget     SubpacketTag = 31
	SubpacketEmbeddedSignature   SubpacketTag = 32
	SubpacketIssuerFingerprint   SubpacketTag = 33
)

var subpacketTagNames = map[SubpacketTag]string{
	SubpacketCreationTime:        "Signature Creation Time",
	SubpacketExpirationTime:      "Signature Expiration Time",
	SubpacketExportable:          "Exportable Certification",
	SubpacketTrust:               "Trust Signature",
	SubpacketRegularExpression:   "Regular Expression",
	SubpacketRevocable:           "Revocable",
	SubpacketKeyExpirationTime:   "Key Expiration Time",
	SubpacketPreferredSymmetric:  "Preferred Symmetric Algorithms",
	SubpacketRevocationKey:       "Revocation Key",
	SubpacketIssuer:              "Issuer",
	SubpacketNotationData:        "Notation Data",
	SubpacketPreferredHash:       "Preferred Hash Algorithms",
	SubpacketPreferredCompress:   "Preferred Compression Algorithms",
	SubpacketKeyServerPrefs:      "Key Server Preferences",
	SubpacketPreferredKeyServer:  "Preferred Key Server",
	SubpacketPrimaryUserID:       "Primary User ID",
	SubpacketPolicyURI:           "Policy URI",
	SubpacketKeyFlags:            "Key Flags",
	SubpacketSignersUserID:       "Signer's User ID",
	SubpacketReasonForRevocation: "Reason for Revocation",
	SubpacketFeatures:            "Features",
	SubpacketSignatureTarget:     "Signature Target",
	SubpacketEmbeddedSignature:   "Embedded Signature",
	SubpacketIssuerFingerprint:   "Issuer Fingerprint",
}

func (t SubpacketTag) String() string {
	if name, ok := subpacketTagNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Subpacket Type %d", byte(t))
}

// subpacketKind selects how a subpacket body is decoded into an
// advisory value. The raw bytes remain authoritative regardless.
type subpacketKind int

const (
	kindRaw subpacketKind = iota
	kindTime
	kindString
	kindInt
)

func (t SubpacketTag) kind() subpacketKind {
	switch t {
	case SubpacketCreationTime, SubpacketExpirationTime, SubpacketKeyExpirationTime:
		return kindTime
	case SubpacketPreferredKeyServer, SubpacketPolicyURI, SubpacketSignersUserID, SubpacketReasonForRevocation:
		return kindString
	case SubpacketExportable, SubpacketRevocable, SubpacketKeyServerPrefs, SubpacketPrimaryUserID, SubpacketKeyFlags, SubpacketFeatures:
		return kindInt
	}
	return kindRaw
}
