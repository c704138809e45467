package pgp

import (
	"crypto/rsa"
	"crypto/sha256"
	"crypto/sha512"
	"errors"
	"fmt"
	"hash"
	"io"
	"os"
)

// ErrSignatureInvalid reports that the inputs were well-formed but the
// signature did not verify. Callers can distinguish it from the
// structural errors with errors.Is.
var ErrSignatureInvalid = errors.New("signature verification failed")

// newHash returns a fresh hash context for the signature's algorithm.
// MD5 is refused: it is far too weak to assert anything.
func newHash(algo HashAlgo) (hash.Hash, error) {
	switch algo {
	case HashSHA224:
		return sha256.New224(), nil
	case HashSHA256:
		return sha256.New(), nil
	case HashSHA384:
		return sha512.New384(), nil
	case HashSHA512:
		return sha512.New(), nil
	}
	return nil, fmt.Errorf("unsupported hash algorithm for verification: %s", algo)
}

// padSignature left-pads the signature octets with zeros up to the
// modulus size. OpenPGP stores the signature as an MPI, which drops
// leading zero octets that PKCS#1 verification expects back.
func padSignature(key *rsa.PublicKey, sig []byte) []byte {
	size := (key.N.BitLen() + 7) / 8
	if len(sig) >= size {
		return sig
	}
	padded := make([]byte, size)
	copy(padded[size-len(sig):], sig)
	return padded
}

// VerifySignature checks sig over the contents of body using key. The
// body is streamed into the hash in chunks, then the reconstructed
// signed-data trailer is hashed after it, and the resulting digest is
// checked against the RSA PKCS#1 v1.5 signature.
//
// The left16 hint in the signature is not compared to the digest;
// signers are not required to be honest about it and verification
// does not depend on it.
func VerifySignature(key *PublicKey, sig *Signature, body io.Reader) error {
	hasher, err := newHash(sig.HashAlgo)
	if err != nil {
		return err
	}
	cryptoHash, _ := sig.HashAlgo.cryptoHash()

	if _, err := io.Copy(hasher, body); err != nil {
		return fmt.Errorf("cannot hash data: %v", err)
	}
	signedData := sig.SignedData()
	hasher.Write(signedData)
	digest := hasher.Sum(nil)
	debugf("signed data: %x", signedData)
	debugf("%s digest: %x", sig.HashAlgo, digest)

	rsaKey, err := key.RSA()
	if err != nil {
		return err
	}
	if err := rsa.VerifyPKCS1v15(rsaKey, cryptoHash, digest, padSignature(rsaKey, sig.SignatureBytes)); err != nil {
		return ErrSignatureInvalid
	}
	return nil
}

// Verify dearmors a public key block and a signature block and checks
// the signature over the contents of body. The key block must contain
// exactly one public key packet, and the signature block exactly one
// signature packet.
func Verify(keyArmor, sigArmor string, body io.Reader) error {
	keyMsg, err := Dearmor(keyArmor)
	if err != nil {
		return fmt.Errorf("cannot read public key block: %v", err)
	}
	keyPacket, err := keyMsg.Packet(TagPublicKey)
	if err != nil {
		return fmt.Errorf("cannot read public key block: %v", err)
	}
	key, err := keyPacket.PublicKey()
	if err != nil {
		return fmt.Errorf("cannot read public key block: %v", err)
	}

	sigMsg, err := Dearmor(sigArmor)
	if err != nil {
		return fmt.Errorf("cannot read signature block: %v", err)
	}
	sigPacket, err := sigMsg.Packet(TagSignature)
	if err != nil {
		return fmt.Errorf("cannot read signature block: %v", err)
	}
	sig, err := sigPacket.Signature()
	if err != nil {
		return fmt.Errorf("cannot read signature block: %v", err)
	}

	return VerifySignature(key, sig, body)
}

// VerifyFile checks the armored signature in sigfile, made by the
// armored public key in keyfile, over the contents of file.
func VerifyFile(keyfile, sigfile, file string) error {
	keyArmor, err := readArmorFile(keyfile)
	if err != nil {
		return err
	}
	sigArmor, err := readArmorFile(sigfile)
	if err != nil {
		return err
	}
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()
	return Verify(keyArmor, sigArmor, f)
}

func readArmorFile(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	if info.Size() > maxArmorFileSize {
		return "", fmt.Errorf("cannot dearmor %s: file too large (%d bytes, limit %d)", path, info.Size(), maxArmorFileSize)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
