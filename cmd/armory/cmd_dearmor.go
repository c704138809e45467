package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
	"gopkg.in/yaml.v3"

	"github.com/openpgp-go/armory/internal/pgp"
)

var shortDearmorHelp = "Load data from an ASCII-armored file"
var longDearmorHelp = `
The dearmor command loads an ASCII-armored OpenPGP file, checks its
checksum, and prints a normalized description of the packets found in
it. The default output format is JSON; YAML is available through the
--format option.
`

var dearmorDescs = map[string]string{
	"file":   "The ASCII-armored file",
	"format": "Output format, json or yaml",
}

type cmdDearmor struct {
	File   string `long:"file" value-name:"<path>" required:"yes"`
	Format string `long:"format" value-name:"<format>"`
}

func init() {
	addCommand("dearmor", shortDearmorHelp, longDearmorHelp, func() flags.Commander { return &cmdDearmor{} }, dearmorDescs, nil)
}

// The description types mirror the parse tree in a form that renders
// cleanly in both JSON and YAML.

type messageDesc struct {
	ArmorType  string       `json:"armor-type" yaml:"armor-type"`
	DataLength int          `json:"data-length" yaml:"data-length"`
	CRC24      string       `json:"crc24" yaml:"crc24"`
	Packets    []packetDesc `json:"packets" yaml:"packets"`
}

type packetDesc struct {
	Tag       string         `json:"tag" yaml:"tag"`
	NewFormat bool           `json:"new-format" yaml:"new-format"`
	Length    int            `json:"length" yaml:"length"`
	PublicKey *publicKeyDesc `json:"public-key,omitempty" yaml:"public-key,omitempty"`
	Signature *signatureDesc `json:"signature,omitempty" yaml:"signature,omitempty"`
	UserID    string         `json:"user-id,omitempty" yaml:"user-id,omitempty"`
}

type publicKeyDesc struct {
	Algorithm   string `json:"algorithm" yaml:"algorithm"`
	CreatedAt   string `json:"created-at" yaml:"created-at"`
	ModulusBits int    `json:"modulus-bits" yaml:"modulus-bits"`
	Exponent    string `json:"exponent" yaml:"exponent"`
}

type signatureDesc struct {
	Type               string          `json:"type" yaml:"type"`
	KeyAlgorithm       string          `json:"key-algorithm" yaml:"key-algorithm"`
	HashAlgorithm      string          `json:"hash-algorithm" yaml:"hash-algorithm"`
	CreatedAt          string          `json:"created-at,omitempty" yaml:"created-at,omitempty"`
	IssuerKeyID        string          `json:"issuer-key-id,omitempty" yaml:"issuer-key-id,omitempty"`
	Left16             string          `json:"left16" yaml:"left16"`
	SignatureBits      int             `json:"signature-bits" yaml:"signature-bits"`
	HashedSubpackets   []subpacketDesc `json:"hashed-subpackets" yaml:"hashed-subpackets"`
	UnhashedSubpackets []subpacketDesc `json:"unhashed-subpackets,omitempty" yaml:"unhashed-subpackets,omitempty"`
}

type subpacketDesc struct {
	Type   string `json:"type" yaml:"type"`
	Length int    `json:"length" yaml:"length"`
	Value  string `json:"value,omitempty" yaml:"value,omitempty"`
}

func (cmd *cmdDearmor) Execute(args []string) error {
	if len(args) > 0 {
		return ErrExtraArgs
	}

	switch cmd.Format {
	case "", "json", "yaml":
	default:
		return fmt.Errorf("unknown output format %q", cmd.Format)
	}

	msg, err := pgp.DearmorFile(cmd.File)
	if err != nil {
		return err
	}

	desc := describeMessage(msg)
	if cmd.Format == "yaml" {
		data, err := yaml.Marshal(desc)
		if err != nil {
			return err
		}
		fmt.Fprint(Stdout, string(data))
		return nil
	}
	enc := json.NewEncoder(Stdout)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(desc)
}

func describeMessage(msg *pgp.Message) *messageDesc {
	desc := &messageDesc{
		ArmorType:  msg.Type.String(),
		DataLength: len(msg.Data),
		CRC24:      fmt.Sprintf("0x%06X", msg.CRC),
		Packets:    []packetDesc{},
	}
	for _, packet := range msg.PacketList {
		pd := packetDesc{
			Tag:       packet.Tag.String(),
			NewFormat: packet.NewFormat,
			Length:    packet.Length,
		}
		switch value := packet.Value.(type) {
		case *pgp.PublicKey:
			pd.PublicKey = &publicKeyDesc{
				Algorithm:   value.Algo.String(),
				CreatedAt:   value.CreatedAt().Format(time.RFC3339),
				ModulusBits: value.Modulus.BitLen(),
				Exponent:    value.Exponent.String(),
			}
		case *pgp.Signature:
			pd.Signature = describeSignature(value)
		case string:
			pd.UserID = value
		}
		desc.Packets = append(desc.Packets, pd)
	}
	return desc
}

func describeSignature(sig *pgp.Signature) *signatureDesc {
	desc := &signatureDesc{
		Type:               sig.Type.String(),
		KeyAlgorithm:       sig.KeyAlgo.String(),
		HashAlgorithm:      sig.HashAlgo.String(),
		Left16:             hex.EncodeToString(sig.Left16),
		SignatureBits:      len(sig.SignatureBytes) * 8,
		HashedSubpackets:   describeSubpackets(sig.HashedSubpackets),
		UnhashedSubpackets: describeSubpackets(sig.UnhashedSubpackets),
	}
	if when, ok := sig.CreationTime(); ok {
		desc.CreatedAt = when.Format(time.RFC3339)
	}
	if issuer, ok := sig.IssuerKeyID(); ok {
		desc.IssuerKeyID = hex.EncodeToString(issuer)
	}
	return desc
}

func describeSubpackets(subpackets []*pgp.Subpacket) []subpacketDesc {
	descs := []subpacketDesc{}
	for _, subpacket := range subpackets {
		sd := subpacketDesc{
			Type:   subpacket.Tag.String(),
			Length: len(subpacket.Body),
		}
		switch value := subpacket.Value.(type) {
		case time.Time:
			sd.Value = value.Format(time.RFC3339)
		case string:
			sd.Value = value
		case uint64:
			sd.Value = fmt.Sprintf("0x%X", value)
		}
		descs = append(descs, sd)
	}
	return descs
}
