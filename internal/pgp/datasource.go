package pgp

import (
	"fmt"
	"math/big"
)

// DataSource is a forward-only cursor used to deserialize OpenPGP
// objects. It is intended for short messages where all packets fit
// comfortably into memory, and is not safe for concurrent use.
type DataSource struct {
	data  []byte
	index int
}

func NewDataSource(data []byte) *DataSource {
	return &DataSource{data: data}
}

// Avail returns the number of octets still available to be read.
func (ds *DataSource) Avail() int {
	return len(ds.data) - ds.index
}

// Offset returns the number of octets already consumed.
func (ds *DataSource) Offset() int {
	return ds.index
}

// Chunk reads the next length octets. The returned slice aliases the
// underlying data and must not be modified.
func (ds *DataSource) Chunk(length int) ([]byte, error) {
	if length < 0 || length > ds.Avail() {
		return nil, fmt.Errorf("insufficient data at offset %d: need %d octets, have %d", ds.index, length, ds.Avail())
	}
	chunk := ds.data[ds.index : ds.index+length]
	ds.index += length
	return chunk, nil
}

// Octet reads a single octet.
func (ds *DataSource) Octet() (byte, error) {
	chunk, err := ds.Chunk(1)
	if err != nil {
		return 0, err
	}
	return chunk[0], nil
}

// Int reads a big-endian unsigned integer of the given octet length.
// See RFC 4880, section 3.1.
func (ds *DataSource) Int(length int) (uint64, error) {
	if length < 1 || length > 8 {
		return 0, fmt.Errorf("invalid integer length %d", length)
	}
	chunk, err := ds.Chunk(length)
	if err != nil {
		return 0, err
	}
	var value uint64
	for _, octet := range chunk {
		value = value<<8 | uint64(octet)
	}
	return value, nil
}

// mpiChunk reads a multiprecision integer and returns its octets.
// The unused high bits of the first octet are masked off when the bit
// length is not a multiple of eight; inputs where those bits were set
// are tolerated rather than rejected. See RFC 4880, section 3.2.
func (ds *DataSource) mpiChunk(mask bool) ([]byte, error) {
	bitLength, err := ds.Int(2)
	if err != nil {
		return nil, err
	}
	chunk, err := ds.Chunk(int(bitLength+7) / 8)
	if err != nil {
		return nil, err
	}
	extraBits := bitLength % 8
	if mask && extraBits != 0 && len(chunk) > 0 {
		masked := make([]byte, len(chunk))
		copy(masked, chunk)
		masked[0] &= 0xFF >> (8 - extraBits)
		chunk = masked
	}
	return chunk, nil
}

// MPI reads a multiprecision integer as a *big.Int.
func (ds *DataSource) MPI() (*big.Int, error) {
	chunk, err := ds.mpiChunk(true)
	if err != nil {
		return nil, err
	}
	return new(big.Int).SetBytes(chunk), nil
}

// MPIBytes reads a multiprecision integer and returns its raw
// big-endian octets with no high-bit masking applied. Used for the
// signature value, whose octets are consumed directly by the verifier.
func (ds *DataSource) MPIBytes() ([]byte, error) {
	return ds.mpiChunk(false)
}
