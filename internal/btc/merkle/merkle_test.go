package merkle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/vigil/internal/btc/hash"
)

// buildTree constructs a Bitcoin Merkle tree over the given leaves (count
// must be a power of two here) and returns the root plus one proof per leaf.
func buildTree(leaves [][32]byte) (root [32]byte, proofs [][]byte) {
	proofs = make([][]byte, len(leaves))

	level := append([][32]byte{}, leaves...)
	for len(level) > 1 {
		next := make([][32]byte, 0, len(level)/2)
		for i := 0; i < len(level); i += 2 {
			pair := append(append([]byte{}, level[i][:]...), level[i+1][:]...)
			next = append(next, hash.DoubleSHA256Sum(pair))
		}

		// Record each leaf's sibling at this level.
		width := len(leaves) / len(level) // leaves covered per node so far
		for leafIdx := range leaves {
			nodeIdx := leafIdx / width
			sibling := nodeIdx ^ 1
			proofs[leafIdx] = append(proofs[leafIdx], level[sibling][:]...)
		}

		level = next
	}

	return level[0], proofs
}

func testLeaves(n int) [][32]byte {
	leaves := make([][32]byte, n)
	for i := range leaves {
		leaves[i] = hash.DoubleSHA256Sum([]byte{byte(i)})
	}
	return leaves
}

func TestProve_FourLeafTree(t *testing.T) {
	t.Parallel()

	leaves := testLeaves(4)
	root, proofs := buildTree(leaves)

	for i, leaf := range leaves {
		require.NoError(t, Prove(leaf, root, proofs[i], uint(i)),
			"leaf %d", i)
	}
}

func TestProve_EightLeafTree(t *testing.T) {
	t.Parallel()

	leaves := testLeaves(8)
	root, proofs := buildTree(leaves)

	for i, leaf := range leaves {
		require.NoError(t, Prove(leaf, root, proofs[i], uint(i)))
	}
}

func TestProve_WrongIndex(t *testing.T) {
	t.Parallel()

	leaves := testLeaves(4)
	root, proofs := buildTree(leaves)

	// A valid proof bound to the wrong position must not verify.
	err := Prove(leaves[0], root, proofs[0], 1)
	assert.ErrorIs(t, err, ErrProofMismatch)
}

func TestProve_WrongLeaf(t *testing.T) {
	t.Parallel()

	leaves := testLeaves(4)
	root, proofs := buildTree(leaves)

	err := Prove(leaves[1], root, proofs[0], 0)
	assert.ErrorIs(t, err, ErrProofMismatch)
}

func TestProve_TamperedSibling(t *testing.T) {
	t.Parallel()

	leaves := testLeaves(4)
	root, proofs := buildTree(leaves)

	tampered := append([]byte{}, proofs[0]...)
	tampered[0] ^= 0x01

	err := Prove(leaves[0], root, tampered, 0)
	assert.ErrorIs(t, err, ErrProofMismatch)
}

func TestProve_EmptyProof(t *testing.T) {
	t.Parallel()

	leaf := hash.DoubleSHA256Sum([]byte("only transaction"))

	t.Run("leaf equals root", func(t *testing.T) {
		assert.NoError(t, Prove(leaf, leaf, nil, 0))
	})

	t.Run("leaf differs from root", func(t *testing.T) {
		other := hash.DoubleSHA256Sum([]byte("other"))
		assert.ErrorIs(t, Prove(leaf, other, nil, 0), ErrProofMismatch)
	})
}

func TestProve_StructuralErrors(t *testing.T) {
	t.Parallel()

	var leaf, root [32]byte

	t.Run("length not a multiple of 32", func(t *testing.T) {
		assert.ErrorIs(t, Prove(leaf, root, make([]byte, 31), 0), ErrInvalidProof)
	})

	t.Run("depth above cap", func(t *testing.T) {
		assert.ErrorIs(t, Prove(leaf, root, make([]byte, 33*32), 0), ErrInvalidProof)
	})
}
