package script

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/vigil/internal/btc/address"
	"github.com/mrz1836/vigil/internal/btc/hash"
)

// compressedKey is the compressed secp256k1 generator point; its Hash160 is
// 751e76e8199196d454941c45d1b3a323f1433bd6.
func compressedKey(t *testing.T) []byte {
	t.Helper()
	key, err := hex.DecodeString("0279be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798")
	require.NoError(t, err)
	return key
}

// push prefixes data with its direct push opcode.
func push(data []byte) []byte {
	return append([]byte{byte(len(data))}, data...)
}

func TestVerifyInputOwnership_P2PKH(t *testing.T) {
	t.Parallel()

	pubKey := compressedKey(t)
	signature := make([]byte, 71) // DER signature placeholder
	signature[0] = 0x30

	owned := address.Address{
		Type:       address.P2PKH,
		ScriptHash: hash.Hash160(pubKey),
	}
	other := address.Address{
		Type:       address.P2PKH,
		ScriptHash: make([]byte, 20),
	}

	scriptSig := append(push(signature), push(pubKey)...)
	vin := buildVin(buildInput(scriptSig))

	t.Run("spending key matches address", func(t *testing.T) {
		found, err := VerifyInputOwnership(vin, owned)
		require.NoError(t, err)
		assert.True(t, found)
	})

	t.Run("spending key does not match", func(t *testing.T) {
		found, err := VerifyInputOwnership(vin, other)
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("match among multiple inputs", func(t *testing.T) {
		unrelated := buildInput(append(push(signature), push(make([]byte, 33))...))
		multi := buildVin(unrelated, buildInput(scriptSig))
		found, err := VerifyInputOwnership(multi, owned)
		require.NoError(t, err)
		assert.True(t, found)
	})
}

func TestVerifyInputOwnership_P2SH(t *testing.T) {
	t.Parallel()

	// 1-of-1 style redeem script stand-in: any byte string works, only its
	// Hash160 matters.
	redeemScript := []byte{0x51, 0x21}
	redeemScript = append(redeemScript, compressedKey(t)...)
	redeemScript = append(redeemScript, 0x51, 0xae)

	owned := address.Address{
		Type:       address.P2SH,
		ScriptHash: hash.Hash160(redeemScript),
	}

	scriptSig := append(push(make([]byte, 71)), push(redeemScript)...)
	vin := buildVin(buildInput(scriptSig))

	found, err := VerifyInputOwnership(vin, owned)
	require.NoError(t, err)
	assert.True(t, found)

	found, err = VerifyInputOwnership(vin, address.Address{
		Type:       address.P2SH,
		ScriptHash: make([]byte, 20),
	})
	require.NoError(t, err)
	assert.False(t, found)
}

func TestVerifyInputOwnership_WitnessTypesFailClosed(t *testing.T) {
	t.Parallel()

	vin := buildVin(buildInput(nil))

	for _, addrType := range []address.ScriptType{address.P2WPKH, address.P2WSH} {
		_, err := VerifyInputOwnership(vin, address.Address{
			Type:       addrType,
			ScriptHash: make([]byte, addrType.HashLen()),
		})
		assert.ErrorIs(t, err, ErrUnsupportedOwnership, addrType.String())
	}
}

func TestVerifyInputOwnership_NonPushScriptSig(t *testing.T) {
	t.Parallel()

	// OP_DUP is not a push; extraction aborts and the input is skipped.
	vin := buildVin(buildInput([]byte{0x76}))

	found, err := VerifyInputOwnership(vin, address.Address{
		Type:       address.P2PKH,
		ScriptHash: make([]byte, 20),
	})
	require.NoError(t, err)
	assert.False(t, found)
}

func TestExtractSpendingPubKey(t *testing.T) {
	t.Parallel()

	pubKey := compressedKey(t)
	signature := make([]byte, 71)

	tests := []struct {
		name      string
		scriptSig []byte
		want      []byte
	}{
		{
			name:      "signature then compressed key",
			scriptSig: append(push(signature), push(pubKey)...),
			want:      pubKey,
		},
		{
			name:      "signature then uncompressed key",
			scriptSig: append(push(signature), push(make([]byte, 65))...),
			want:      make([]byte, 65),
		},
		{
			name:      "single push only",
			scriptSig: push(pubKey),
			want:      nil,
		},
		{
			name:      "second push wrong length",
			scriptSig: append(push(signature), push(make([]byte, 20))...),
			want:      nil,
		},
		{
			name:      "truncated push",
			scriptSig: []byte{0x21, 0x02},
			want:      nil,
		},
		{
			name:      "empty scriptSig",
			scriptSig: nil,
			want:      nil,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ExtractSpendingPubKey(tc.scriptSig))
		})
	}
}

func TestExtractRedeemScript(t *testing.T) {
	t.Parallel()

	redeem := []byte{0x51, 0x51, 0xae}

	t.Run("last push wins", func(t *testing.T) {
		scriptSig := append(push([]byte{0x01}), push(redeem)...)
		assert.Equal(t, redeem, ExtractRedeemScript(scriptSig))
	})

	t.Run("pushdata1 form", func(t *testing.T) {
		long := make([]byte, 100)
		long[0] = 0x51
		scriptSig := append([]byte{opPushData1, 100}, long...)
		assert.Equal(t, long, ExtractRedeemScript(scriptSig))
	})

	t.Run("empty scriptSig", func(t *testing.T) {
		assert.Nil(t, ExtractRedeemScript(nil))
	})

	t.Run("non-push opcode", func(t *testing.T) {
		assert.Nil(t, ExtractRedeemScript([]byte{0xac}))
	})
}
