package pgp

import (
	"encoding/base64"
	"fmt"
	"regexp"
	"strings"

	"github.com/openpgp-go/armory/internal/crc24"
)

// AscType identifies the kind of data an ASCII armor envelope claims
// to carry. See RFC 4880, section 6.2. This list is incomplete.
type AscType int

const (
	AscMessage AscType = iota
	AscPublicKeyBlock
	AscPrivateKeyBlock
	AscSignature
)

var ascTypeNames = map[AscType]string{
	AscMessage:         "PGP MESSAGE",
	AscPublicKeyBlock:  "PGP PUBLIC KEY BLOCK",
	AscPrivateKeyBlock: "PGP PRIVATE KEY BLOCK",
	AscSignature:       "PGP SIGNATURE",
}

func (t AscType) String() string {
	return ascTypeNames[t]
}

// Header returns the exact BEGIN line for this armor type.
func (t AscType) Header() string {
	return "-----BEGIN " + ascTypeNames[t] + "-----"
}

// Footer returns the exact END line for this armor type.
func (t AscType) Footer() string {
	return "-----END " + ascTypeNames[t] + "-----"
}

func ascTypeByHeader(line string) (AscType, bool) {
	for t := range ascTypeNames {
		if line == t.Header() {
			return t, true
		}
	}
	return 0, false
}

func ascTypeByFooter(line string) (AscType, bool) {
	for t := range ascTypeNames {
		if line == t.Footer() {
			return t, true
		}
	}
	return 0, false
}

// Message holds the data extracted from one ASCII-armored text block:
// the envelope type, the decoded payload, the checksum the armor
// declared, and the packets parsed out of the payload. A Message is
// never modified after Dearmor returns it.
type Message struct {
	Type       AscType
	Data       []byte
	CRC        uint32
	PacketList []*Packet
}

var crcLineExp = regexp.MustCompile(`^=([A-Za-z0-9/+]{4})$`)

// maxArmorFileSize bounds DearmorFile inputs. Armored keys and
// signatures are small; anything larger is a mistake.
const maxArmorFileSize = 16 * 1024

// Dearmor parses ASCII-armored text into a Message, checking the
// armor checksum and deserializing all packets in the payload.
//
// Armor headers ("Key: value" lines after BEGIN) are not supported
// and will be rejected as malformed payload.
func Dearmor(text string) (*Message, error) {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	filtered := lines[:0]
	for _, line := range lines {
		line = strings.TrimRight(line, " \t\r")
		if line != "" {
			filtered = append(filtered, line)
		}
	}
	lines = filtered

	if len(lines) < 4 {
		return nil, fmt.Errorf("cannot dearmor: text must contain at least 4 lines")
	}

	ascType, ok := ascTypeByHeader(lines[0])
	if !ok {
		return nil, fmt.Errorf("cannot dearmor: unknown armor header %q", lines[0])
	}
	footerType, ok := ascTypeByFooter(lines[len(lines)-1])
	if !ok {
		return nil, fmt.Errorf("cannot dearmor: unknown armor footer %q", lines[len(lines)-1])
	}
	if ascType != footerType {
		return nil, fmt.Errorf("cannot dearmor: header %q does not match footer %q", ascType, footerType)
	}

	match := crcLineExp.FindStringSubmatch(lines[len(lines)-2])
	if match == nil {
		return nil, fmt.Errorf("cannot dearmor: next-to-last line must hold the armor checksum")
	}
	crcData, err := base64.StdEncoding.DecodeString(match[1])
	if err != nil || len(crcData) != 3 {
		return nil, fmt.Errorf("cannot dearmor: invalid armor checksum line %q", lines[len(lines)-2])
	}
	declaredCRC := uint32(crcData[0])<<16 | uint32(crcData[1])<<8 | uint32(crcData[2])

	data, err := base64.StdEncoding.DecodeString(strings.Join(lines[1:len(lines)-2], ""))
	if err != nil {
		return nil, fmt.Errorf("cannot dearmor: invalid base64 payload: %v", err)
	}

	if actualCRC := crc24.Sum(data); actualCRC != declaredCRC {
		return nil, fmt.Errorf("cannot dearmor: checksum mismatch: computed 0x%06X, declared 0x%06X", actualCRC, declaredCRC)
	}

	packets, err := parsePackets(NewDataSource(data))
	if err != nil {
		return nil, err
	}
	debugf("dearmored %q: %d payload octets, %d packets", ascType, len(data), len(packets))

	return &Message{
		Type:       ascType,
		Data:       data,
		CRC:        declaredCRC,
		PacketList: packets,
	}, nil
}

// DearmorFile reads an ASCII-armored text file and dearmors it. The
// file size is capped to avoid slurping arbitrarily large inputs.
func DearmorFile(path string) (*Message, error) {
	text, err := readArmorFile(path)
	if err != nil {
		return nil, err
	}
	return Dearmor(text)
}

// Packets returns all packets in the message with the given tag.
func (m *Message) Packets(tag PacketTag) []*Packet {
	var packets []*Packet
	for _, packet := range m.PacketList {
		if packet.Tag == tag {
			packets = append(packets, packet)
		}
	}
	return packets
}

// Packet returns the single packet in the message with the given tag.
// It is an error for the message to contain zero or several of them.
func (m *Message) Packet(tag PacketTag) (*Packet, error) {
	packets := m.Packets(tag)
	if len(packets) > 1 {
		return nil, fmt.Errorf("message contains %d packets with tag %q, expected one", len(packets), tag)
	}
	if len(packets) == 0 {
		return nil, fmt.Errorf("message contains no packet with tag %q", tag)
	}
	return packets[0], nil
}
