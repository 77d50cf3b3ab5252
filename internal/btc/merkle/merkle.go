// Package merkle verifies Bitcoin Merkle inclusion proofs: a leaf hash, a
// sibling path, and the leaf's index in the block reproduce the header's
// Merkle root or the proof is rejected.
package merkle

import (
	"github.com/mrz1836/vigil/internal/btc/hash"
	verr "github.com/mrz1836/vigil/pkg/errors"
)

const (
	// hashLen is one sibling hash in the proof.
	hashLen = 32

	// MaxDepth bounds the proof walk. A Bitcoin block cannot hold enough
	// transactions to need a deeper tree.
	MaxDepth = 32
)

// Sentinel errors.
var (
	// ErrInvalidProof indicates a proof whose length is not a multiple of
	// 32 bytes or exceeds the depth cap.
	ErrInvalidProof = &verr.VigilError{
		Code:     "INVALID_MERKLE_PROOF",
		Message:  "malformed Merkle proof",
		ExitCode: verr.ExitInput,
	}

	// ErrProofMismatch indicates a structurally valid proof that does not
	// reproduce the expected root.
	ErrProofMismatch = &verr.VigilError{
		Code:     "MERKLE_PROOF_MISMATCH",
		Message:  "Merkle proof does not reproduce the root",
		ExitCode: verr.ExitProof,
	}
)

// Prove verifies that leaf sits at the given index of the tree with the
// given root, using proof as the concatenated sibling hashes from leaf
// level upward. An empty proof is valid only when the leaf is the root
// (single-transaction block).
func Prove(leaf, root [32]byte, proof []byte, index uint) error {
	if len(proof)%hashLen != 0 || len(proof)/hashLen > MaxDepth {
		return ErrInvalidProof
	}

	if len(proof) == 0 {
		if leaf == root {
			return nil
		}
		return ErrProofMismatch
	}

	current := leaf
	for offset := 0; offset < len(proof); offset += hashLen {
		var sibling [32]byte
		copy(sibling[:], proof[offset:offset+hashLen])

		// The index bit at this level decides whether the running hash is
		// the left or the right child.
		if index&1 == 1 {
			current = hashPair(sibling, current)
		} else {
			current = hashPair(current, sibling)
		}
		index >>= 1
	}

	if current != root {
		return ErrProofMismatch
	}
	return nil
}

// hashPair is the Bitcoin interior-node hash: double SHA256 of the
// concatenated children.
func hashPair(left, right [32]byte) [32]byte {
	buf := make([]byte, 0, 2*hashLen)
	buf = append(buf, left[:]...)
	buf = append(buf, right[:]...)
	return hash.DoubleSHA256Sum(buf)
}
