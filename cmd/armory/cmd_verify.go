package main

import (
	"github.com/jessevdk/go-flags"

	"github.com/openpgp-go/armory/internal/pgp"
)

var shortVerifyHelp = "Verify a file against a PGP signature"
var longVerifyHelp = `
The verify command checks a detached, ASCII-armored RSA signature
over a file, using an ASCII-armored public key. It exits with status
0 only when the signature cryptographically verifies.
`

var verifyDescs = map[string]string{
	"keyfile": "ASCII-armored PGP public key file",
	"sigfile": "ASCII-armored PGP signature file",
	"file":    "The file to verify",
}

type cmdVerify struct {
	KeyFile string `long:"keyfile" value-name:"<path>" required:"yes"`
	SigFile string `long:"sigfile" value-name:"<path>" required:"yes"`
	File    string `long:"file" value-name:"<path>" required:"yes"`
}

func init() {
	addCommand("verify", shortVerifyHelp, longVerifyHelp, func() flags.Commander { return &cmdVerify{} }, verifyDescs, nil)
}

func (cmd *cmdVerify) Execute(args []string) error {
	if len(args) > 0 {
		return ErrExtraArgs
	}

	return pgp.VerifyFile(cmd.KeyFile, cmd.SigFile, cmd.File)
}
