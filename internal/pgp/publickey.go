package pgp

import (
	"crypto/rsa"
	"fmt"
	"math/big"
	"time"
)

// PublicKey is a V4 RSA public key. See RFC 4880, section 5.5.2.
type PublicKey struct {
	CreationTime uint32
	Algo         PublicKeyAlgo
	Modulus      *big.Int
	Exponent     *big.Int
}

// parsePublicKey deserializes a public key packet body. Only V4 RSA
// keys are supported. A V4 key may carry additional material after
// the algorithm fields; any such trailing bytes are ignored.
func parsePublicKey(ds *DataSource) (*PublicKey, error) {
	version, err := ds.Octet()
	if err != nil {
		return nil, err
	}
	if version != 4 {
		return nil, fmt.Errorf("unsupported public key version %d", version)
	}

	creationTime, err := ds.Int(4)
	if err != nil {
		return nil, err
	}

	algoID, err := ds.Octet()
	if err != nil {
		return nil, err
	}
	algo, err := lookupPublicKeyAlgo(algoID)
	if err != nil {
		return nil, err
	}

	modulus, err := ds.MPI()
	if err != nil {
		return nil, err
	}
	exponent, err := ds.MPI()
	if err != nil {
		return nil, err
	}

	return &PublicKey{
		CreationTime: uint32(creationTime),
		Algo:         algo,
		Modulus:      modulus,
		Exponent:     exponent,
	}, nil
}

// CreatedAt returns the key creation time as a time.Time.
func (k *PublicKey) CreatedAt() time.Time {
	return time.Unix(int64(k.CreationTime), 0).UTC()
}

// RSA converts the key material into a *rsa.PublicKey.
func (k *PublicKey) RSA() (*rsa.PublicKey, error) {
	if !k.Exponent.IsInt64() || k.Exponent.Int64() > int64(^uint32(0)) || k.Exponent.Int64() < 3 {
		return nil, fmt.Errorf("invalid RSA public exponent")
	}
	return &rsa.PublicKey{
		N: k.Modulus,
		E: int(k.Exponent.Int64()),
	}, nil
}
