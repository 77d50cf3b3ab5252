package spv

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/vigil/internal/btc/header"
	"github.com/mrz1836/vigil/internal/btc/txn"
	verr "github.com/mrz1836/vigil/pkg/errors"
)

// staticOracle is a test oracle with fixed epoch difficulties.
type staticOracle struct {
	current  *big.Int
	previous *big.Int
}

func (o staticOracle) CurrentEpochDifficulty(context.Context) (*big.Int, error) {
	return o.current, nil
}

func (o staticOracle) PreviousEpochDifficulty(context.Context) (*big.Int, error) {
	return o.previous, nil
}

// failingOracle always errors.
type failingOracle struct{}

func (failingOracle) CurrentEpochDifficulty(context.Context) (*big.Int, error) {
	return nil, errors.New("relay unreachable")
}

func (failingOracle) PreviousEpochDifficulty(context.Context) (*big.Int, error) {
	return nil, errors.New("relay unreachable")
}

func oracleAt(current, previous int64) staticOracle {
	return staticOracle{current: big.NewInt(current), previous: big.NewInt(previous)}
}

// The Bitcoin genesis block: a real single-transaction block at difficulty 1
// whose coinbase txid is the Merkle root, so both inclusion proofs are empty.
const (
	genesisHeaderHex = "01000000" +
		"0000000000000000000000000000000000000000000000000000000000000000" +
		"3ba3edfd7a7b12b27ac72c3e67768f617fc81bc3888a51323a9fb8aa4b1e5e4a" +
		"29ab5f49" + "ffff001d" + "1dac2b7c"

	genesisVersion = "01000000"
	genesisVin     = "010000000000000000000000000000000000000000000000000000000000000000ffffffff" +
		"4d04ffff001d0104455468652054696d65732030332f4a616e2f323030392043" +
		"68616e63656c6c6f72206f6e206272696e6b206f66207365636f6e64206261696c6f75" +
		"7420666f722062616e6b73ffffffff"
	genesisVout = "0100f2052a01000000434104678afdb0fe5548271967f1a67130b7105cd6a828" +
		"e03909a67962e0ea1f61deb649f6bc3f4cef38c4f35504e51ec112de5c384df7ba0b8d" +
		"578a4c702b6bf11d5fac"
	genesisLocktime = "00000000"
)

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	decoded, err := hex.DecodeString(s)
	require.NoError(t, err)
	return decoded
}

func genesisTx(t *testing.T) txn.Transaction {
	t.Helper()
	return txn.Transaction{
		Version:      mustHex(t, genesisVersion),
		InputVector:  mustHex(t, genesisVin),
		OutputVector: mustHex(t, genesisVout),
		Locktime:     mustHex(t, genesisLocktime),
	}
}

// coinbasePreimage computes the single-SHA256 of a coinbase transaction's
// legacy serialization.
func coinbasePreimage(tx txn.Transaction) [32]byte {
	buf := append([]byte{}, tx.Version...)
	buf = append(buf, tx.InputVector...)
	buf = append(buf, tx.OutputVector...)
	buf = append(buf, tx.Locktime...)
	return sha256.Sum256(buf)
}

func genesisProof(t *testing.T) Proof {
	t.Helper()
	return Proof{
		MerkleProof:      nil,
		TxIndexInBlock:   0,
		BitcoinHeaders:   mustHex(t, genesisHeaderHex),
		CoinbasePreimage: coinbasePreimage(genesisTx(t)),
		CoinbaseProof:    nil,
	}
}

func TestValidateProof_GenesisBlock(t *testing.T) {
	t.Parallel()

	validator := New(oracleAt(1, 1), 1)

	txID, err := validator.ValidateProof(context.Background(), genesisTx(t), genesisProof(t))
	require.NoError(t, err)

	assert.Equal(t,
		"3ba3edfd7a7b12b27ac72c3e67768f617fc81bc3888a51323a9fb8aa4b1e5e4a",
		hex.EncodeToString(txID[:]))
}

func TestValidateProof_PreviousEpochAccepted(t *testing.T) {
	t.Parallel()

	validator := New(oracleAt(99, 1), 1)

	_, err := validator.ValidateProof(context.Background(), genesisTx(t), genesisProof(t))
	assert.NoError(t, err)
}

func TestValidateProof_Failures(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	tests := []struct {
		name    string
		mutate  func(tx *txn.Transaction, proof *Proof)
		oracle  DifficultyOracle
		factor  uint64
		wantErr error
	}{
		{
			name:    "difficulty at neither epoch",
			mutate:  func(*txn.Transaction, *Proof) {},
			oracle:  oracleAt(2, 3),
			factor:  1,
			wantErr: ErrNotAtEpochDifficulty,
		},
		{
			name:    "accumulated difficulty below factor",
			mutate:  func(*txn.Transaction, *Proof) {},
			oracle:  oracleAt(1, 1),
			factor:  2,
			wantErr: ErrInsufficientDifficulty,
		},
		{
			name: "proof depth mismatch",
			mutate: func(_ *txn.Transaction, proof *Proof) {
				proof.MerkleProof = make([]byte, 32)
			},
			oracle:  oracleAt(1, 1),
			factor:  1,
			wantErr: ErrMerkleLevelMismatch,
		},
		{
			name: "transaction not in tree",
			mutate: func(tx *txn.Transaction, _ *Proof) {
				tx.Version = []byte{0x02, 0x00, 0x00, 0x00}
			},
			oracle:  oracleAt(1, 1),
			factor:  1,
			wantErr: ErrTxMerkleProof,
		},
		{
			name: "coinbase preimage wrong",
			mutate: func(_ *txn.Transaction, proof *Proof) {
				proof.CoinbasePreimage[0] ^= 0x01
			},
			oracle:  oracleAt(1, 1),
			factor:  1,
			wantErr: ErrCoinbaseMerkleProof,
		},
		{
			name: "malformed input vector",
			mutate: func(tx *txn.Transaction, _ *Proof) {
				tx.InputVector = []byte{0x00}
			},
			oracle:  oracleAt(1, 1),
			factor:  1,
			wantErr: txn.ErrInvalidInputVector,
		},
		{
			name: "truncated headers",
			mutate: func(_ *txn.Transaction, proof *Proof) {
				proof.BitcoinHeaders = proof.BitcoinHeaders[:40]
			},
			oracle:  oracleAt(1, 1),
			factor:  1,
			wantErr: header.ErrInvalidChain,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tx := genesisTx(t)
			proof := genesisProof(t)
			tc.mutate(&tx, &proof)

			validator := New(tc.oracle, tc.factor)
			_, err := validator.ValidateProof(ctx, tx, proof)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tc.wantErr),
				"expected %v, got %v", tc.wantErr, err)
		})
	}
}

func TestValidateProof_OracleUnavailable(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("nil oracle", func(t *testing.T) {
		validator := New(nil, 1)
		_, err := validator.ValidateProof(ctx, genesisTx(t), genesisProof(t))
		assert.ErrorIs(t, err, verr.ErrOracleUnavailable)
	})

	t.Run("oracle read fails", func(t *testing.T) {
		validator := New(failingOracle{}, 1)
		_, err := validator.ValidateProof(ctx, genesisTx(t), genesisProof(t))
		assert.ErrorIs(t, err, verr.ErrOracleUnavailable)
	})
}

func TestNew_DefaultFactor(t *testing.T) {
	t.Parallel()

	validator := New(nil, 0)
	assert.Equal(t, uint64(DefaultDifficultyFactor), validator.difficultyFactor)

	validator = New(nil, 3)
	assert.Equal(t, uint64(3), validator.difficultyFactor)
}

func TestCheckProofDifficulty(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		accumulated int64
		requested   int64
		factor      uint64
		wantErr     bool
	}{
		{name: "exactly sufficient", accumulated: 6, requested: 1, factor: 6},
		{name: "surplus", accumulated: 7, requested: 1, factor: 6},
		{name: "one unit short", accumulated: 5, requested: 1, factor: 6, wantErr: true},
		{name: "zero requested", accumulated: 0, requested: 0, factor: 6},
		{name: "large factor shortfall", accumulated: 11, requested: 2, factor: 6, wantErr: true},
		{name: "large factor exact", accumulated: 12, requested: 2, factor: 6},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := CheckProofDifficulty(
				big.NewInt(tc.accumulated), big.NewInt(tc.requested), tc.factor)
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrInsufficientDifficulty)
				return
			}
			assert.NoError(t, err)
		})
	}
}

// Synthetic single-transaction block helpers shared with the composite
// verification tests. The header declares a target far above any possible
// hash value, so the chain validates with integer difficulty zero.

func buildSyntheticVin(scriptSig []byte) []byte {
	vin := []byte{0x01}
	vin = append(vin, make([]byte, 36)...) // zeroed outpoint
	vin = append(vin, byte(len(scriptSig)))
	vin = append(vin, scriptSig...)
	return append(vin, 0xFF, 0xFF, 0xFF, 0xFF)
}

func buildSyntheticOutput(value uint64, script []byte) []byte {
	out := make([]byte, 8)
	binary.LittleEndian.PutUint64(out, value)
	out = append(out, byte(len(script)))
	return append(out, script...)
}

func buildSyntheticVout(outputs ...[]byte) []byte {
	vout := []byte{byte(len(outputs))}
	for _, out := range outputs {
		vout = append(vout, out...)
	}
	return vout
}

// syntheticHeader builds an 80-byte header whose Merkle root is the given
// txid and whose compact bits (0x227fffff) decode to a target above 2^256.
func syntheticHeader(txID [32]byte) []byte {
	hdr := make([]byte, 0, header.Len)
	hdr = append(hdr, 0x01, 0x00, 0x00, 0x00) // version
	hdr = append(hdr, make([]byte, 32)...)    // previous block hash
	hdr = append(hdr, txID[:]...)             // merkle root
	hdr = append(hdr, 0x00, 0x00, 0x00, 0x00) // time
	hdr = append(hdr, 0xFF, 0xFF, 0x7F, 0x22) // bits, little-endian
	hdr = append(hdr, 0x00, 0x00, 0x00, 0x00) // nonce
	return hdr
}

func syntheticProof(tx txn.Transaction) Proof {
	return Proof{
		BitcoinHeaders:   syntheticHeader(tx.TxID()),
		CoinbasePreimage: coinbasePreimage(tx),
	}
}

func TestValidateProof_SyntheticBlock(t *testing.T) {
	t.Parallel()

	tx := txn.Transaction{
		Version:      []byte{0x01, 0x00, 0x00, 0x00},
		InputVector:  buildSyntheticVin([]byte{0x01, 0x00}),
		OutputVector: buildSyntheticVout(buildSyntheticOutput(1000, []byte{0x6a})),
		Locktime:     []byte{0x00, 0x00, 0x00, 0x00},
	}

	validator := New(oracleAt(0, 0), 1)
	txID, err := validator.ValidateProof(context.Background(), tx, syntheticProof(tx))
	require.NoError(t, err)
	assert.Equal(t, tx.TxID(), txID)
}
