package pgp_test

import (
	"bytes"

	. "gopkg.in/check.v1"

	"github.com/openpgp-go/armory/internal/pgp"
)

// oldPacket serializes an old-format packet header and body.
func oldPacket(tag byte, lengthType byte, length []byte, body []byte) []byte {
	var buf bytes.Buffer
	buf.WriteByte(0x80 | tag<<2 | lengthType)
	buf.Write(length)
	buf.Write(body)
	return buf.Bytes()
}

// newPacket serializes a new-format packet header and body.
func newPacket(tag byte, length []byte, body []byte) []byte {
	var buf bytes.Buffer
	buf.WriteByte(0xC0 | tag)
	buf.Write(length)
	buf.Write(body)
	return buf.Bytes()
}

type framingTest struct {
	summary   string
	payload   []byte
	newFormat bool
	tag       pgp.PacketTag
	length    int
	relerror  string
}

var framingTests = []framingTest{{
	summary:   "Old format, one-octet length",
	payload:   oldPacket(9, 0, []byte{0x03}, bytes.Repeat([]byte{0xAA}, 3)),
	newFormat: false,
	tag:       pgp.PacketTag(9),
	length:    3,
}, {
	summary:   "Old format, two-octet length",
	payload:   oldPacket(9, 1, []byte{0x01, 0x00}, bytes.Repeat([]byte{0xAA}, 256)),
	newFormat: false,
	tag:       pgp.PacketTag(9),
	length:    256,
}, {
	summary:   "Old format, four-octet length",
	payload:   oldPacket(9, 3, []byte{0x00, 0x00, 0x01, 0x02}, bytes.Repeat([]byte{0xAA}, 258)),
	newFormat: false,
	tag:       pgp.PacketTag(9),
	length:    258,
}, {
	summary:  "Old format, indeterminate length is unsupported",
	payload:  oldPacket(1, 2, nil, nil),
	relerror: "cannot parse packet at offset 0: unsupported old-format length type 2",
}, {
	summary:   "New format, one-octet length",
	payload:   newPacket(9, []byte{0xBF}, bytes.Repeat([]byte{0xAA}, 0xBF)),
	newFormat: true,
	tag:       pgp.PacketTag(9),
	length:    0xBF,
}, {
	summary:   "New format, two-octet length",
	payload:   newPacket(9, []byte{0xC5, 0x42}, bytes.Repeat([]byte{0xAA}, 0x542+0xC0)),
	newFormat: true,
	tag:       pgp.PacketTag(9),
	length:    0x542 + 0xC0,
}, {
	summary:   "New format, five-octet length",
	payload:   newPacket(9, []byte{0xFF, 0x00, 0x00, 0x02, 0x00}, bytes.Repeat([]byte{0xAA}, 512)),
	newFormat: true,
	tag:       pgp.PacketTag(9),
	length:    512,
}, {
	summary:  "New format, partial body length is unsupported",
	payload:  newPacket(9, []byte{0xE0}, nil),
	relerror: "cannot parse packet at offset 0: unsupported partial body length octet 0xE0",
}, {
	summary:  "Bit 7 unset",
	payload:  []byte{0x24, 0x00},
	relerror: `cannot parse packet at offset 0: invalid packet header octet 0x24 \(bit 7 must be set\)`,
}, {
	summary:  "Body shorter than declared",
	payload:  oldPacket(9, 0, []byte{0x05}, []byte{0xAA}),
	relerror: "cannot parse packet at offset 0: insufficient data at offset 2: need 5 octets, have 1",
}, {
	summary:  "Second packet headers report their offset",
	payload:  append(oldPacket(9, 0, []byte{0x01}, []byte{0xAA}), 0x24),
	relerror: `cannot parse packet at offset 3: invalid packet header octet 0x24 \(bit 7 must be set\)`,
}}

func (s *S) TestPacketFraming(c *C) {
	for _, test := range framingTests {
		c.Logf("Summary: %s", test.summary)

		msg, err := pgp.Dearmor(armorWrap("PGP MESSAGE", test.payload))
		if test.relerror != "" {
			c.Assert(err, ErrorMatches, test.relerror)
			continue
		}
		c.Assert(err, IsNil)
		c.Assert(msg.PacketList, HasLen, 1)

		packet := msg.PacketList[0]
		c.Assert(packet.NewFormat, Equals, test.newFormat)
		c.Assert(packet.Tag, Equals, test.tag)
		c.Assert(packet.Length, Equals, test.length)
		c.Assert(packet.Length, Equals, len(packet.Body))
	}
}

// reserialize rebuilds the wire form of a parsed packet under its
// original format bit.
func reserialize(c *C, packet *pgp.Packet) []byte {
	var buf bytes.Buffer
	if packet.NewFormat {
		buf.WriteByte(0xC0 | byte(packet.Tag))
		switch {
		case packet.Length < 0xC0:
			buf.WriteByte(byte(packet.Length))
		case packet.Length < 0x20C0:
			buf.WriteByte(byte((packet.Length-0xC0)>>8) + 0xC0)
			buf.WriteByte(byte(packet.Length - 0xC0))
		default:
			buf.WriteByte(0xFF)
			buf.WriteByte(byte(packet.Length >> 24))
			buf.WriteByte(byte(packet.Length >> 16))
			buf.WriteByte(byte(packet.Length >> 8))
			buf.WriteByte(byte(packet.Length))
		}
	} else {
		switch {
		case packet.Length < 0x100:
			buf.WriteByte(0x80 | byte(packet.Tag)<<2)
			buf.WriteByte(byte(packet.Length))
		case packet.Length < 0x10000:
			buf.WriteByte(0x80 | byte(packet.Tag)<<2 | 1)
			buf.WriteByte(byte(packet.Length >> 8))
			buf.WriteByte(byte(packet.Length))
		default:
			buf.WriteByte(0x80 | byte(packet.Tag)<<2 | 3)
			buf.WriteByte(byte(packet.Length >> 24))
			buf.WriteByte(byte(packet.Length >> 16))
			buf.WriteByte(byte(packet.Length >> 8))
			buf.WriteByte(byte(packet.Length))
		}
	}
	buf.Write(packet.Body)
	return buf.Bytes()
}

func (s *S) TestPacketReserialization(c *C) {
	for _, armored := range []string{key1.PubKeyArmor, key2.PubKeyArmor, keyUbuntu.PubKeyArmor} {
		msg, err := pgp.Dearmor(armored)
		c.Assert(err, IsNil)

		var rebuilt bytes.Buffer
		for _, packet := range msg.PacketList {
			rebuilt.Write(reserialize(c, packet))
		}
		c.Assert(rebuilt.Bytes(), DeepEquals, msg.Data)
	}
}

func (s *S) TestUserIDPacket(c *C) {
	payload := oldPacket(byte(pgp.TagUserID), 0, []byte{0x03}, []byte("abc"))
	msg, err := pgp.Dearmor(armorWrap("PGP MESSAGE", payload))
	c.Assert(err, IsNil)
	c.Assert(msg.PacketList[0].Value, Equals, "abc")

	payload = oldPacket(byte(pgp.TagUserID), 0, []byte{0x02}, []byte{0xFF, 0xFE})
	_, err = pgp.Dearmor(armorWrap("PGP MESSAGE", payload))
	c.Assert(err, ErrorMatches, "cannot parse packet at offset 0: user id is not valid UTF-8")
}
