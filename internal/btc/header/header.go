// Package header parses 80-byte Bitcoin block headers and validates header
// chains: per-header proof-of-work, previous-hash linkage, and accumulated
// difficulty. Field offsets follow the consensus serialization.
package header

import (
	"encoding/binary"
	"math/big"

	"github.com/mrz1836/vigil/internal/btc/hash"
	verr "github.com/mrz1836/vigil/pkg/errors"
)

// Header layout.
const (
	// Len is the serialized size of one block header.
	Len = 80

	prevHashOffset   = 4
	merkleRootOffset = 36
	bitsOffset       = 72
)

// MaxChainLen caps one proof's header chain at a full retarget epoch.
const MaxChainLen = 2016

// diff1Target is the maximum (easiest) target, corresponding to
// difficulty 1: 0xFFFF shifted into the top of a 224-bit number.
//
//nolint:gochecknoglobals // Consensus constant
var diff1Target = new(big.Int).Lsh(big.NewInt(0xFFFF), 208)

// Sentinel errors.
var (
	// ErrInvalidChain indicates headers that are empty, oversized, or not
	// a multiple of 80 bytes.
	ErrInvalidChain = &verr.VigilError{
		Code:     "INVALID_HEADER_CHAIN",
		Message:  "malformed header chain",
		ExitCode: verr.ExitInput,
	}

	// ErrBrokenLinkage indicates a header whose previous-hash field does
	// not match its predecessor's hash.
	ErrBrokenLinkage = &verr.VigilError{
		Code:     "INVALID_HEADER_CHAIN",
		Message:  "header chain linkage broken",
		ExitCode: verr.ExitProof,
	}

	// ErrInsufficientWork indicates a header whose hash does not meet its
	// own declared target.
	ErrInsufficientWork = &verr.VigilError{
		Code:     "INVALID_HEADER_CHAIN",
		Message:  "header hash does not satisfy its target",
		ExitCode: verr.ExitProof,
	}

	// ErrBadTarget indicates a zero or negative decoded target.
	ErrBadTarget = &verr.VigilError{
		Code:     "INVALID_HEADER_CHAIN",
		Message:  "header declares an invalid difficulty target",
		ExitCode: verr.ExitInput,
	}
)

// MerkleRoot extracts the Merkle-root field of the first header, in the
// internal byte order used by txids.
func MerkleRoot(headers []byte) ([32]byte, error) {
	var root [32]byte
	if len(headers) < Len {
		return root, ErrInvalidChain
	}
	copy(root[:], headers[merkleRootOffset:merkleRootOffset+32])
	return root, nil
}

// Bits extracts the compact difficulty-target field of the header at the
// given offset.
func Bits(header []byte) uint32 {
	return binary.LittleEndian.Uint32(header[bitsOffset : bitsOffset+4])
}

// TargetFromBits expands the compact "bits" representation into the full
// 256-bit target. The sign bit is rejected; Bitcoin targets are positive.
func TargetFromBits(bits uint32) (*big.Int, error) {
	if bits&0x00800000 != 0 {
		return nil, ErrBadTarget
	}

	mantissa := int64(bits & 0x007FFFFF)
	exponent := uint(bits >> 24)

	var target *big.Int
	if exponent <= 3 {
		target = big.NewInt(mantissa >> (8 * (3 - exponent)))
	} else {
		target = new(big.Int).Lsh(big.NewInt(mantissa), 8*(exponent-3))
	}

	if target.Sign() <= 0 {
		return nil, ErrBadTarget
	}
	return target, nil
}

// Difficulty converts a target into Bitcoin difficulty: diff1 / target,
// in integer division as consensus code does.
func Difficulty(target *big.Int) *big.Int {
	return new(big.Int).Div(diff1Target, target)
}

// FirstDifficulty returns the difficulty declared by the first header of a
// chain.
func FirstDifficulty(headers []byte) (*big.Int, error) {
	if len(headers) < Len {
		return nil, ErrInvalidChain
	}
	target, err := TargetFromBits(Bits(headers[:Len]))
	if err != nil {
		return nil, err
	}
	return Difficulty(target), nil
}

// Hash computes the block hash of one serialized header, in internal byte
// order.
func Hash(header []byte) [32]byte {
	return hash.DoubleSHA256Sum(header)
}

// ValidateChain walks a concatenation of 80-byte headers, verifying each
// header's proof-of-work against its own declared target and its linkage to
// the preceding header, and returns the accumulated difficulty.
func ValidateChain(headers []byte) (*big.Int, error) {
	if len(headers) == 0 || len(headers)%Len != 0 || len(headers)/Len > MaxChainLen {
		return nil, ErrInvalidChain
	}

	accumulated := new(big.Int)
	var prevDigest [32]byte

	for offset := 0; offset < len(headers); offset += Len {
		hdr := headers[offset : offset+Len]

		if offset > 0 {
			var claimed [32]byte
			copy(claimed[:], hdr[prevHashOffset:prevHashOffset+32])
			if claimed != prevDigest {
				return nil, ErrBrokenLinkage
			}
		}

		target, err := TargetFromBits(Bits(hdr))
		if err != nil {
			return nil, err
		}

		digest := Hash(hdr)
		if hashToBig(digest).Cmp(target) > 0 {
			return nil, ErrInsufficientWork
		}

		accumulated.Add(accumulated, Difficulty(target))
		prevDigest = digest
	}

	return accumulated, nil
}

// hashToBig interprets an internal-byte-order digest as the big-endian
// integer the target comparison is defined over.
func hashToBig(digest [32]byte) *big.Int {
	var reversed [32]byte
	for i := 0; i < 32; i++ {
		reversed[i] = digest[31-i]
	}
	return new(big.Int).SetBytes(reversed[:])
}
