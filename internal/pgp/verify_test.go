package pgp_test

import (
	"bytes"
	"crypto"
	"errors"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/crypto/openpgp/armor"
	"golang.org/x/crypto/openpgp/packet"
	. "gopkg.in/check.v1"

	"github.com/openpgp-go/armory/internal/pgp"
	"github.com/openpgp-go/armory/internal/testutil"
)

// signArmored produces a real detached signature over content with the
// x/crypto implementation, as an armored signature block.
func signArmored(c *C, key *testutil.PGPKeyData, hash crypto.Hash, content []byte) string {
	sig := &packet.Signature{
		SigType:      packet.SigTypeBinary,
		PubKeyAlgo:   packet.PubKeyAlgoRSA,
		Hash:         hash,
		CreationTime: time.Now(),
		IssuerKeyId:  &key.PrivKey.KeyId,
	}
	h := hash.New()
	h.Write(content)
	c.Assert(sig.Sign(h, key.PrivKey, nil), IsNil)

	var buf bytes.Buffer
	w, err := armor.Encode(&buf, "PGP SIGNATURE", nil)
	c.Assert(err, IsNil)
	c.Assert(sig.Serialize(w), IsNil)
	c.Assert(w.Close(), IsNil)
	return buf.String()
}

func (s *S) TestVerify(c *C) {
	content := []byte("hello\n")
	for _, hash := range []crypto.Hash{crypto.SHA256, crypto.SHA384, crypto.SHA512} {
		c.Logf("Hash: %v", hash)
		sigArmor := signArmored(c, key1, hash, content)

		err := pgp.Verify(key1.PubKeyArmor, sigArmor, bytes.NewReader(content))
		c.Assert(err, IsNil)

		// A single changed octet must break verification.
		err = pgp.Verify(key1.PubKeyArmor, sigArmor, bytes.NewReader([]byte("hellx\n")))
		c.Assert(errors.Is(err, pgp.ErrSignatureInvalid), Equals, true)

		// So must verifying against a different key.
		err = pgp.Verify(key2.PubKeyArmor, sigArmor, bytes.NewReader(content))
		c.Assert(errors.Is(err, pgp.ErrSignatureInvalid), Equals, true)
	}
}

func (s *S) TestVerifyCorruptedSignature(c *C) {
	content := []byte("hello\n")
	sigArmor := signArmored(c, key1, crypto.SHA512, content)

	msg, err := pgp.Dearmor(sigArmor)
	c.Assert(err, IsNil)
	sigPacket, err := msg.Packet(pgp.TagSignature)
	c.Assert(err, IsNil)
	sig, err := sigPacket.Signature()
	c.Assert(err, IsNil)

	flipped := make([]byte, len(sig.SignatureBytes))
	copy(flipped, sig.SignatureBytes)
	flipped[len(flipped)/2] ^= 0x01
	sig.SignatureBytes = flipped

	err = pgp.VerifySignature(key1.PubKey, sig, bytes.NewReader(content))
	c.Assert(errors.Is(err, pgp.ErrSignatureInvalid), Equals, true)
}

func (s *S) TestVerifyIgnoresLeft16(c *C) {
	content := []byte("hello\n")
	sigArmor := signArmored(c, key1, crypto.SHA512, content)

	msg, err := pgp.Dearmor(sigArmor)
	c.Assert(err, IsNil)
	sigPacket, err := msg.Packet(pgp.TagSignature)
	c.Assert(err, IsNil)
	sig, err := sigPacket.Signature()
	c.Assert(err, IsNil)

	// Signers are not required to be honest about the hash prefix.
	sig.Left16 = []byte{0x00, 0x00}
	c.Assert(pgp.VerifySignature(key1.PubKey, sig, bytes.NewReader(content)), IsNil)
}

func (s *S) TestVerifyRejectsMD5(c *C) {
	sig, err := parseSig(c, sigBody(0x00, 1, 1, nil, nil))
	c.Assert(err, IsNil)
	err = pgp.VerifySignature(key1.PubKey, sig, bytes.NewReader(nil))
	c.Assert(err, ErrorMatches, "unsupported hash algorithm for verification: MD5")
}

func (s *S) TestVerifyStructuralErrors(c *C) {
	content := []byte("hello\n")
	sigArmor := signArmored(c, key1, crypto.SHA512, content)

	// The key block must hold a public key packet.
	err := pgp.Verify(sigArmor, sigArmor, bytes.NewReader(content))
	c.Assert(err, ErrorMatches, `cannot read public key block: message contains no packet with tag "Public-Key Packet"`)

	// The signature block must hold a signature packet.
	userIDOnly := armorWrap("PGP SIGNATURE", oldPacket(byte(pgp.TagUserID), 0, []byte{0x03}, []byte("abc")))
	err = pgp.Verify(key1.PubKeyArmor, userIDOnly, bytes.NewReader(content))
	c.Assert(err, ErrorMatches, `cannot read signature block: message contains no packet with tag "Signature Packet"`)

	err = pgp.Verify("not armor", sigArmor, bytes.NewReader(content))
	c.Assert(err, ErrorMatches, "cannot read public key block: cannot dearmor: .*")
}

func (s *S) TestVerifyFile(c *C) {
	dir := c.MkDir()
	content := []byte("important payload\n")

	keyfile := filepath.Join(dir, "key.asc")
	sigfile := filepath.Join(dir, "payload.sig")
	file := filepath.Join(dir, "payload")
	c.Assert(os.WriteFile(keyfile, []byte(key1.PubKeyArmor), 0644), IsNil)
	c.Assert(os.WriteFile(sigfile, []byte(signArmored(c, key1, crypto.SHA512, content)), 0644), IsNil)
	c.Assert(os.WriteFile(file, content, 0644), IsNil)

	c.Assert(pgp.VerifyFile(keyfile, sigfile, file), IsNil)

	c.Assert(os.WriteFile(file, []byte("important payload!\n"), 0644), IsNil)
	err := pgp.VerifyFile(keyfile, sigfile, file)
	c.Assert(errors.Is(err, pgp.ErrSignatureInvalid), Equals, true)

	err = pgp.VerifyFile(keyfile, sigfile, filepath.Join(dir, "missing"))
	c.Assert(err, ErrorMatches, ".*no such file or directory")
}

func (s *S) TestVerifySignatureAgainstUbuntuKeyFails(c *C) {
	content := []byte("hello\n")
	sigArmor := signArmored(c, key1, crypto.SHA512, content)
	err := pgp.Verify(keyUbuntu.PubKeyArmor, sigArmor, bytes.NewReader(content))
	c.Assert(errors.Is(err, pgp.ErrSignatureInvalid), Equals, true)
}
