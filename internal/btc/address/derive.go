package address

import (
	"github.com/decred/dcrd/dcrec/secp256k1/v4"

	"github.com/mrz1836/vigil/internal/btc/bech32"
	"github.com/mrz1836/vigil/internal/btc/hash"
	verr "github.com/mrz1836/vigil/pkg/errors"
)

// uncompressedKeyLen is a raw X||Y secp256k1 public key without prefix byte.
const uncompressedKeyLen = 64

// ErrInvalidPublicKey indicates a public key that is malformed or not a
// point on the secp256k1 curve.
var ErrInvalidPublicKey = &verr.VigilError{
	Code:     "INVALID_PUBLIC_KEY",
	Message:  "invalid secp256k1 public key",
	ExitCode: verr.ExitInput,
}

// DeriveP2WPKH derives the native SegWit address controlled by the given
// uncompressed public key (64 bytes, X||Y). The key is compressed with the
// parity prefix, hashed with Hash160, and Bech32-encoded for the network.
//
// This is the exact inverse of decoding: verifying that a claimed address
// reproduces from a known public key closes the gap where a signature alone
// would not bind the key to the address.
func DeriveP2WPKH(uncompressedPubKey []byte, network Network) (string, error) {
	program, err := WitnessProgramForKey(uncompressedPubKey)
	if err != nil {
		return "", err
	}
	return bech32.EncodeSegWit(network.HRP(), 0, program)
}

// WitnessProgramForKey computes the 20-byte P2WPKH witness program for an
// uncompressed public key: Hash160 of the compressed key form.
func WitnessProgramForKey(uncompressedPubKey []byte) ([]byte, error) {
	compressed, err := CompressPublicKey(uncompressedPubKey)
	if err != nil {
		return nil, err
	}
	return hash.Hash160(compressed), nil
}

// CompressPublicKey converts a 64-byte X||Y public key to its 33-byte
// compressed form, rejecting points not on the secp256k1 curve.
func CompressPublicKey(uncompressedPubKey []byte) ([]byte, error) {
	if len(uncompressedPubKey) != uncompressedKeyLen {
		return nil, ErrInvalidPublicKey
	}

	raw := make([]byte, secp256k1.PubKeyBytesLenUncompressed)
	raw[0] = 0x04 // uncompressed point prefix
	copy(raw[1:], uncompressedPubKey)

	key, err := secp256k1.ParsePubKey(raw)
	if err != nil {
		return nil, verr.WithDetails(ErrInvalidPublicKey, map[string]string{
			"reason": err.Error(),
		})
	}

	return key.SerializeCompressed(), nil
}
