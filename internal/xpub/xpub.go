// Package xpub derives watch-only P2WPKH addresses from an account-level
// extended public key. No private key material is ever accepted or
// produced; an xprv is rejected outright.
package xpub

import (
	"github.com/tyler-smith/go-bip32"

	"github.com/mrz1836/vigil/internal/btc/address"
	"github.com/mrz1836/vigil/internal/btc/bech32"
	"github.com/mrz1836/vigil/internal/btc/hash"
	verr "github.com/mrz1836/vigil/pkg/errors"
)

// externalChain is the receive-chain index under the account key (BIP-44
// layout); watch-only derivation never walks the change chain.
const externalChain = 0

// Sentinel errors.
var (
	// ErrInvalidXPub indicates an undecodable extended key.
	ErrInvalidXPub = &verr.VigilError{
		Code:     "INVALID_XPUB",
		Message:  "invalid extended public key",
		ExitCode: verr.ExitInput,
	}

	// ErrPrivateKey indicates an extended private key where only public
	// material is allowed.
	ErrPrivateKey = &verr.VigilError{
		Code:     "PRIVATE_KEY_REJECTED",
		Message:  "extended private keys are not accepted",
		ExitCode: verr.ExitInput,
	}
)

// DerivedAddress is one watch-only derived address.
type DerivedAddress struct {
	// Index is the address index within the external chain.
	Index uint32 `json:"index"`

	// Address is the Bech32 P2WPKH address string.
	Address string `json:"address"`

	// WitnessProgram is the 20-byte program behind the address, in hex.
	WitnessProgram string `json:"witness_program"`
}

// Derive derives the external-chain P2WPKH address at the given index from
// an account xpub.
func Derive(accountXPub string, index uint32, network address.Network) (DerivedAddress, error) {
	key, err := bip32.B58Deserialize(accountXPub)
	if err != nil {
		return DerivedAddress{}, verr.WithDetails(ErrInvalidXPub, map[string]string{
			"reason": err.Error(),
		})
	}
	if key.IsPrivate {
		return DerivedAddress{}, ErrPrivateKey
	}

	external, err := key.NewChildKey(externalChain)
	if err != nil {
		return DerivedAddress{}, verr.Wrap(ErrInvalidXPub, "deriving external chain")
	}

	child, err := external.NewChildKey(index)
	if err != nil {
		return DerivedAddress{}, verr.Wrap(ErrInvalidXPub, "deriving index %d", index)
	}

	program := hash.Hash160(child.PublicKey().Key)
	addr, err := bech32.EncodeSegWit(network.HRP(), 0, program)
	if err != nil {
		return DerivedAddress{}, err
	}

	return DerivedAddress{
		Index:          index,
		Address:        addr,
		WitnessProgram: address.Address{Type: address.P2WPKH, Network: network, ScriptHash: program}.HashHex(),
	}, nil
}

// DeriveRange derives count consecutive external-chain addresses starting
// at start. Bounded by the caller; used for gap scans and audits.
func DeriveRange(accountXPub string, start, count uint32, network address.Network) ([]DerivedAddress, error) {
	const maxRange = 1000
	if count == 0 || count > maxRange {
		return nil, verr.ErrInvalidInput
	}

	out := make([]DerivedAddress, 0, count)
	for i := uint32(0); i < count; i++ {
		derived, err := Derive(accountXPub, start+i, network)
		if err != nil {
			return nil, err
		}
		out = append(out, derived)
	}
	return out, nil
}
