package pgp

import (
	"fmt"
	"time"
	"unicode/utf8"
)

// Subpacket is a single signature subpacket. RawHeader holds the
// length octets plus the type octet exactly as they appeared on the
// wire; signed-data reconstruction re-emits them verbatim, so they
// are never normalized.
//
// Value is advisory: a time.Time for the timestamp subpackets, a
// string or uint64 for the string and flag subpackets, nil otherwise.
// RawHeader and Body are what the signature hash actually covers.
type Subpacket struct {
	RawHeader []byte
	Length    uint32
	Tag       SubpacketTag
	Body      []byte
	Value     interface{}
}

// parseSubpackets deserializes a hashed or unhashed subpacket area.
func parseSubpackets(area []byte) ([]*Subpacket, error) {
	ds := NewDataSource(area)
	var subpackets []*Subpacket
	for ds.Avail() > 0 {
		offset := ds.Offset()
		subpacket, err := parseSubpacket(ds)
		if err != nil {
			return nil, fmt.Errorf("cannot parse subpacket at offset %d: %v", offset, err)
		}
		subpackets = append(subpackets, subpacket)
	}
	return subpackets, nil
}

// parseSubpacket deserializes a single signature subpacket.
// See RFC 4880, section 5.2.3.1. The subpacket length encoding is
// distinct from the packet one: there is no partial form, and the
// declared length includes the following type octet.
func parseSubpacket(ds *DataSource) (*Subpacket, error) {
	header := make([]byte, 0, 6)

	octet1, err := ds.Octet()
	if err != nil {
		return nil, err
	}
	header = append(header, octet1)

	var length uint32
	switch {
	case octet1 < 0xC0:
		length = uint32(octet1)
	case octet1 < 0xFF:
		octet2, err := ds.Octet()
		if err != nil {
			return nil, err
		}
		header = append(header, octet2)
		length = (uint32(octet1)-0xC0)<<8 + uint32(octet2) + 0xC0
	default:
		chunk, err := ds.Chunk(4)
		if err != nil {
			return nil, err
		}
		header = append(header, chunk...)
		length = uint32(chunk[0])<<24 | uint32(chunk[1])<<16 | uint32(chunk[2])<<8 | uint32(chunk[3])
	}

	if length == 0 {
		return nil, fmt.Errorf("invalid subpacket length 0")
	}

	typeOctet, err := ds.Octet()
	if err != nil {
		return nil, err
	}
	header = append(header, typeOctet)
	tag := SubpacketTag(typeOctet)

	// The declared length counts the type octet just read.
	body, err := ds.Chunk(int(length) - 1)
	if err != nil {
		return nil, err
	}

	value, err := decodeSubpacketValue(tag, body)
	if err != nil {
		return nil, err
	}

	return &Subpacket{
		RawHeader: header,
		Length:    length,
		Tag:       tag,
		Body:      body,
		Value:     value,
	}, nil
}

// decodeSubpacketValue interprets the subpacket body according to its
// tag. Unknown tags and oversized flag bodies yield a nil value; the
// raw bytes remain available on the Subpacket.
func decodeSubpacketValue(tag SubpacketTag, body []byte) (interface{}, error) {
	switch tag.kind() {
	case kindTime:
		if len(body) != 4 {
			return nil, fmt.Errorf("invalid %s subpacket: expected 4 octets, got %d", tag, len(body))
		}
		seconds := uint32(body[0])<<24 | uint32(body[1])<<16 | uint32(body[2])<<8 | uint32(body[3])
		return time.Unix(int64(seconds), 0).UTC(), nil
	case kindString:
		if !utf8.Valid(body) {
			return nil, fmt.Errorf("invalid %s subpacket: not valid UTF-8", tag)
		}
		return string(body), nil
	case kindInt:
		if len(body) > 8 {
			return nil, nil
		}
		var value uint64
		for _, octet := range body {
			value = value<<8 | uint64(octet)
		}
		return value, nil
	}
	return nil, nil
}
