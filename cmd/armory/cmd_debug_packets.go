package main

import (
	"fmt"

	"github.com/jessevdk/go-flags"

	"github.com/openpgp-go/armory/internal/pgp"
)

var shortDebugPacketsHelp = "Dump raw packet framing of an armored file"
var longDebugPacketsHelp = `
The debug packets command dearmors a file and prints the framing of
every packet found in it, without interpreting packet bodies.
`

var debugPacketsDescs = map[string]string{
	"file": "The ASCII-armored file",
}

type cmdDebugPackets struct {
	File string `long:"file" value-name:"<path>" required:"yes"`
}

func init() {
	addDebugCommand("packets", shortDebugPacketsHelp, longDebugPacketsHelp,
		func() flags.Commander { return &cmdDebugPackets{} }, debugPacketsDescs, nil)
}

func (cmd *cmdDebugPackets) Execute(args []string) error {
	if len(args) > 0 {
		return ErrExtraArgs
	}

	msg, err := pgp.DearmorFile(cmd.File)
	if err != nil {
		return err
	}

	fmt.Fprintf(Stdout, "%s, %d octets, crc24 0x%06X\n", msg.Type, len(msg.Data), msg.CRC)
	for i, packet := range msg.PacketList {
		format := "old"
		if packet.NewFormat {
			format = "new"
		}
		fmt.Fprintf(Stdout, "%d: %s format=%s length=%d\n", i, packet.Tag, format, packet.Length)
	}
	return nil
}
