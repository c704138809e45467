package pgp

import (
	"fmt"
	"unicode/utf8"
)

// Packet is a single OpenPGP packet: its framing details, raw body,
// and, for the supported tags, a decoded value.
//
// Value holds a *PublicKey for tag 6, a *Signature for tag 2, and a
// string for tag 13. Packets with other tags are preserved with a nil
// Value.
type Packet struct {
	NewFormat bool
	Tag       PacketTag
	Length    int
	Body      []byte
	Value     interface{}
}

// PublicKey returns the decoded public key carried by this packet.
func (p *Packet) PublicKey() (*PublicKey, error) {
	key, ok := p.Value.(*PublicKey)
	if !ok {
		return nil, fmt.Errorf("packet is a %s, not a public key", p.Tag)
	}
	return key, nil
}

// Signature returns the decoded signature carried by this packet.
func (p *Packet) Signature() (*Signature, error) {
	sig, ok := p.Value.(*Signature)
	if !ok {
		return nil, fmt.Errorf("packet is a %s, not a signature", p.Tag)
	}
	return sig, nil
}

// parsePackets deserializes packets until the datasource is exhausted.
func parsePackets(ds *DataSource) ([]*Packet, error) {
	var packets []*Packet
	for ds.Avail() > 0 {
		offset := ds.Offset()
		packet, err := parsePacket(ds)
		if err != nil {
			return nil, fmt.Errorf("cannot parse packet at offset %d: %v", offset, err)
		}
		packets = append(packets, packet)
	}
	return packets, nil
}

// parsePacket deserializes a single packet. See RFC 4880, section 4.2.
func parsePacket(ds *DataSource) (*Packet, error) {
	octet0, err := ds.Octet()
	if err != nil {
		return nil, err
	}

	// Bit 7 must be set. Bit 6 selects the new packet format.
	if octet0&0x80 == 0 {
		return nil, fmt.Errorf("invalid packet header octet 0x%02X (bit 7 must be set)", octet0)
	}
	newFormat := octet0&0x40 != 0

	var tag PacketTag
	var length int
	if newFormat {
		tag = PacketTag(octet0 & 0x3F)
		length, err = parseNewLength(ds)
	} else {
		tag = PacketTag((octet0 >> 2) & 0x0F)
		length, err = parseOldLength(ds, octet0&0x03)
	}
	if err != nil {
		return nil, err
	}

	body, err := ds.Chunk(length)
	if err != nil {
		return nil, err
	}

	value, err := parsePacketBody(tag, body)
	if err != nil {
		return nil, err
	}
	debugf("packet %q: new-format=%v length=%d", tag, newFormat, length)

	return &Packet{
		NewFormat: newFormat,
		Tag:       tag,
		Length:    length,
		Body:      body,
		Value:     value,
	}, nil
}

// parseOldLength reads an old-format packet length.
func parseOldLength(ds *DataSource, lengthType byte) (int, error) {
	switch lengthType {
	case 0:
		octet, err := ds.Octet()
		return int(octet), err
	case 1:
		length, err := ds.Int(2)
		return int(length), err
	case 3:
		length, err := ds.Int(4)
		return int(length), err
	}
	return 0, fmt.Errorf("unsupported old-format length type %d", lengthType)
}

// parseNewLength reads a new-format packet length. Partial body
// lengths (first octet 0xE0..0xFE) are not supported.
func parseNewLength(ds *DataSource) (int, error) {
	octet1, err := ds.Octet()
	if err != nil {
		return 0, err
	}
	switch {
	case octet1 < 0xC0:
		return int(octet1), nil
	case octet1 < 0xE0:
		octet2, err := ds.Octet()
		if err != nil {
			return 0, err
		}
		return (int(octet1)-0xC0)<<8 + int(octet2) + 0xC0, nil
	case octet1 == 0xFF:
		length, err := ds.Int(4)
		return int(length), err
	}
	return 0, fmt.Errorf("unsupported partial body length octet 0x%02X", octet1)
}

// parsePacketBody decodes the packet body for the supported tags.
func parsePacketBody(tag PacketTag, body []byte) (interface{}, error) {
	switch tag {
	case TagPublicKey:
		return parsePublicKey(NewDataSource(body))
	case TagSignature:
		return parseSignature(NewDataSource(body))
	case TagUserID:
		if !utf8.Valid(body) {
			return nil, fmt.Errorf("user id is not valid UTF-8")
		}
		return string(body), nil
	}
	return nil, nil
}
