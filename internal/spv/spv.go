// Package spv validates Bitcoin SPV proofs: a transaction, its Merkle
// inclusion path, the block's coinbase inclusion path, and a header chain
// whose accumulated proof-of-work is measured against a difficulty oracle.
// Every call is a pure function of its inputs plus one blocking oracle
// read; nothing is persisted between calls.
package spv

import (
	"context"
	"crypto/sha256"
	"math/big"

	"github.com/mrz1836/vigil/internal/btc/header"
	"github.com/mrz1836/vigil/internal/btc/merkle"
	"github.com/mrz1836/vigil/internal/btc/txn"
	verr "github.com/mrz1836/vigil/pkg/errors"
)

// DefaultDifficultyFactor is the default multiplier of epoch difficulty a
// proof must accumulate. Six headers at the claimed difficulty is the
// conventional confirmation depth.
const DefaultDifficultyFactor = 6

// DifficultyOracle supplies the two retarget-epoch difficulties a proof may
// legitimately claim. Implementations live in the relay package; staleness
// and retries are their concern, not the validator's.
type DifficultyOracle interface {
	CurrentEpochDifficulty(ctx context.Context) (*big.Int, error)
	PreviousEpochDifficulty(ctx context.Context) (*big.Int, error)
}

// Proof is the SPV proof bundle accompanying a transaction.
type Proof struct {
	// MerkleProof is the concatenated sibling hashes proving the
	// transaction's inclusion.
	MerkleProof []byte

	// TxIndexInBlock is the transaction's position in the block.
	TxIndexInBlock uint

	// BitcoinHeaders is a concatenation of 80-byte headers, the first of
	// which is the block containing the transaction.
	BitcoinHeaders []byte

	// CoinbasePreimage is the single-SHA256 of the block's coinbase
	// transaction; one more hash round yields its txid.
	CoinbasePreimage [32]byte

	// CoinbaseProof proves the coinbase transaction at index 0 of the same
	// tree.
	CoinbaseProof []byte
}

// Sentinel errors.
var (
	// ErrMerkleLevelMismatch indicates transaction and coinbase proofs of
	// different depths, which cannot belong to the same tree.
	ErrMerkleLevelMismatch = &verr.VigilError{
		Code:     "MERKLE_TREE_LEVEL_MISMATCH",
		Message:  "transaction and coinbase Merkle proofs have different depths",
		ExitCode: verr.ExitInput,
	}

	// ErrTxMerkleProof indicates the transaction is not proven under the
	// header's Merkle root.
	ErrTxMerkleProof = &verr.VigilError{
		Code:     "INVALID_TX_MERKLE_PROOF",
		Message:  "transaction Merkle proof is invalid",
		ExitCode: verr.ExitProof,
	}

	// ErrCoinbaseMerkleProof indicates the coinbase is not proven under
	// the header's Merkle root.
	ErrCoinbaseMerkleProof = &verr.VigilError{
		Code:     "INVALID_COINBASE_MERKLE_PROOF",
		Message:  "coinbase Merkle proof is invalid",
		ExitCode: verr.ExitProof,
	}

	// ErrNotAtEpochDifficulty indicates a first header whose difficulty
	// matches neither permitted epoch.
	ErrNotAtEpochDifficulty = &verr.VigilError{
		Code:     "NOT_AT_CURRENT_OR_PREVIOUS_DIFFICULTY",
		Message:  "header difficulty matches neither current nor previous epoch",
		ExitCode: verr.ExitProof,
	}

	// ErrInsufficientDifficulty indicates too little accumulated work.
	ErrInsufficientDifficulty = &verr.VigilError{
		Code:     "INSUFFICIENT_ACCUMULATED_DIFFICULTY",
		Message:  "insufficient accumulated difficulty in header chain",
		ExitCode: verr.ExitProof,
	}
)

// Validator checks SPV proofs against a difficulty oracle.
type Validator struct {
	oracle           DifficultyOracle
	difficultyFactor uint64
}

// New creates a Validator. A zero difficultyFactor falls back to the
// default of 6.
func New(oracle DifficultyOracle, difficultyFactor uint64) *Validator {
	if difficultyFactor == 0 {
		difficultyFactor = DefaultDifficultyFactor
	}
	return &Validator{
		oracle:           oracle,
		difficultyFactor: difficultyFactor,
	}
}

// ValidateProof runs the full SPV check and returns the verified txid:
// structural vector validation, txid computation, Merkle inclusion of the
// transaction and of the coinbase, and difficulty evaluation of the header
// chain. On any failure the zero txid and a typed error are returned; there
// is no partial credit.
func (v *Validator) ValidateProof(ctx context.Context, tx txn.Transaction, proof Proof) ([32]byte, error) {
	var zero [32]byte

	if err := tx.Validate(); err != nil {
		return zero, err
	}

	if len(proof.MerkleProof) != len(proof.CoinbaseProof) {
		return zero, ErrMerkleLevelMismatch
	}

	root, err := header.MerkleRoot(proof.BitcoinHeaders)
	if err != nil {
		return zero, err
	}

	txID := tx.TxID()
	if err := merkle.Prove(txID, root, proof.MerkleProof, proof.TxIndexInBlock); err != nil {
		return zero, ErrTxMerkleProof
	}

	coinbaseHash := sha256.Sum256(proof.CoinbasePreimage[:])
	if err := merkle.Prove(coinbaseHash, root, proof.CoinbaseProof, 0); err != nil {
		return zero, ErrCoinbaseMerkleProof
	}

	if err := v.evaluateProofDifficulty(ctx, proof.BitcoinHeaders); err != nil {
		return zero, err
	}

	return txID, nil
}

// evaluateProofDifficulty checks the header chain's work against the
// oracle's two permitted epoch difficulties.
func (v *Validator) evaluateProofDifficulty(ctx context.Context, headers []byte) error {
	if v.oracle == nil {
		return verr.ErrOracleUnavailable
	}

	current, err := v.oracle.CurrentEpochDifficulty(ctx)
	if err != nil {
		return verr.Wrap(verr.ErrOracleUnavailable, "reading current epoch difficulty")
	}
	previous, err := v.oracle.PreviousEpochDifficulty(ctx)
	if err != nil {
		return verr.Wrap(verr.ErrOracleUnavailable, "reading previous epoch difficulty")
	}

	firstDifficulty, err := header.FirstDifficulty(headers)
	if err != nil {
		return err
	}

	var requested *big.Int
	switch {
	case firstDifficulty.Cmp(current) == 0:
		requested = current
	case firstDifficulty.Cmp(previous) == 0:
		requested = previous
	default:
		return ErrNotAtEpochDifficulty
	}

	accumulated, err := header.ValidateChain(headers)
	if err != nil {
		return err
	}

	return CheckProofDifficulty(accumulated, requested, v.difficultyFactor)
}

// CheckProofDifficulty requires accumulated >= requested * factor.
// Equality passes; one unit below fails.
func CheckProofDifficulty(accumulated, requested *big.Int, factor uint64) error {
	required := new(big.Int).Mul(requested, new(big.Int).SetUint64(factor))
	if accumulated.Cmp(required) < 0 {
		return ErrInsufficientDifficulty
	}
	return nil
}
