package pgp

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"time"
)

// Signature is a V4 RSA signature. See RFC 4880, section 5.2.3.
//
// The order of HashedSubpackets is significant: those octets are part
// of the signed data and are re-emitted verbatim by SignedData.
type Signature struct {
	Type               SignatureType
	KeyAlgo            PublicKeyAlgo
	HashAlgo           HashAlgo
	HashedSubpackets   []*Subpacket
	UnhashedSubpackets []*Subpacket
	Left16             []byte
	SignatureBytes     []byte
}

// parseSignature deserializes a signature packet body. Only V4 RSA
// signatures are supported.
func parseSignature(ds *DataSource) (*Signature, error) {
	version, err := ds.Octet()
	if err != nil {
		return nil, err
	}
	if version != 4 {
		return nil, fmt.Errorf("unsupported signature version %d", version)
	}

	typeID, err := ds.Octet()
	if err != nil {
		return nil, err
	}
	sigType, err := lookupSignatureType(typeID)
	if err != nil {
		return nil, err
	}

	keyAlgoID, err := ds.Octet()
	if err != nil {
		return nil, err
	}
	keyAlgo, err := lookupPublicKeyAlgo(keyAlgoID)
	if err != nil {
		return nil, err
	}

	hashAlgoID, err := ds.Octet()
	if err != nil {
		return nil, err
	}
	hashAlgo, err := lookupHashAlgo(hashAlgoID)
	if err != nil {
		return nil, err
	}

	hashedSubpackets, err := parseSubpacketArea(ds)
	if err != nil {
		return nil, err
	}
	unhashedSubpackets, err := parseSubpacketArea(ds)
	if err != nil {
		return nil, err
	}

	left16, err := ds.Chunk(2)
	if err != nil {
		return nil, err
	}

	// A single MPI holding the RSA signature value.
	signatureBytes, err := ds.MPIBytes()
	if err != nil {
		return nil, err
	}

	return &Signature{
		Type:               sigType,
		KeyAlgo:            keyAlgo,
		HashAlgo:           hashAlgo,
		HashedSubpackets:   hashedSubpackets,
		UnhashedSubpackets: unhashedSubpackets,
		Left16:             left16,
		SignatureBytes:     signatureBytes,
	}, nil
}

// parseSubpacketArea reads a two-octet byte count and deserializes
// exactly that many octets of subpackets. The framed subpackets must
// account for every declared octet; parseSubpackets fails otherwise,
// since a subpacket overrunning the area runs out of data.
func parseSubpacketArea(ds *DataSource) ([]*Subpacket, error) {
	count, err := ds.Int(2)
	if err != nil {
		return nil, err
	}
	area, err := ds.Chunk(int(count))
	if err != nil {
		return nil, err
	}
	return parseSubpackets(area)
}

// SignedData reconstructs the exact octet sequence that was hashed
// when this signature was produced. See RFC 4880, section 5.2.4: the
// signature prefix through the hashed subpacket area, followed by the
// six-octet V4 trailer.
//
// The RFC describes the trailer's four-octet length as excluding the
// trailer itself, which reads as if it were just the prefix length.
// GnuPG includes the six prefix octets in that count, and signatures
// in the wild verify only under that interpretation, so it is the one
// implemented here.
func (s *Signature) SignedData() []byte {
	hashedLen := 0
	for _, subpacket := range s.HashedSubpackets {
		hashedLen += len(subpacket.RawHeader) + len(subpacket.Body)
	}

	var buf bytes.Buffer
	buf.WriteByte(4)
	buf.WriteByte(byte(s.Type))
	buf.WriteByte(byte(s.KeyAlgo))
	buf.WriteByte(byte(s.HashAlgo))
	buf.WriteByte(byte(hashedLen >> 8))
	buf.WriteByte(byte(hashedLen))
	for _, subpacket := range s.HashedSubpackets {
		buf.Write(subpacket.RawHeader)
		buf.Write(subpacket.Body)
	}

	buf.WriteByte(4)
	buf.WriteByte(0xFF)
	var trailer [4]byte
	binary.BigEndian.PutUint32(trailer[:], uint32(6+hashedLen))
	buf.Write(trailer[:])

	return buf.Bytes()
}

// Subpackets returns all subpackets with the given tag, hashed ones
// first.
func (s *Signature) Subpackets(tag SubpacketTag) []*Subpacket {
	var subpackets []*Subpacket
	for _, subpacket := range s.HashedSubpackets {
		if subpacket.Tag == tag {
			subpackets = append(subpackets, subpacket)
		}
	}
	for _, subpacket := range s.UnhashedSubpackets {
		if subpacket.Tag == tag {
			subpackets = append(subpackets, subpacket)
		}
	}
	return subpackets
}

// Subpacket returns the single subpacket with the given tag. It is an
// error for the signature to carry zero or several of them.
func (s *Signature) Subpacket(tag SubpacketTag) (*Subpacket, error) {
	subpackets := s.Subpackets(tag)
	if len(subpackets) > 1 {
		return nil, fmt.Errorf("signature contains %d %q subpackets, expected one", len(subpackets), tag)
	}
	if len(subpackets) == 0 {
		return nil, fmt.Errorf("signature contains no %q subpacket", tag)
	}
	return subpackets[0], nil
}

// CreationTime returns the signature creation time subpacket value,
// if present.
func (s *Signature) CreationTime() (time.Time, bool) {
	subpacket, err := s.Subpacket(SubpacketCreationTime)
	if err != nil {
		return time.Time{}, false
	}
	when, ok := subpacket.Value.(time.Time)
	return when, ok
}

// IssuerKeyID returns the eight-octet issuer key ID subpacket value,
// if present.
func (s *Signature) IssuerKeyID() ([]byte, bool) {
	subpackets := s.Subpackets(SubpacketIssuer)
	if len(subpackets) == 0 || len(subpackets[0].Body) != 8 {
		return nil, false
	}
	return subpackets[0].Body, true
}
