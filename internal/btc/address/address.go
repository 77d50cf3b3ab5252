// Package address decodes, classifies, and derives Bitcoin addresses. A
// decoded address is the canonical (script type, script hash) pair the rest
// of the verification pipeline works with; the string form is never trusted
// past this package.
package address

import (
	"encoding/hex"
	"strings"

	"github.com/mrz1836/vigil/internal/btc/base58"
	"github.com/mrz1836/vigil/internal/btc/bech32"
	verr "github.com/mrz1836/vigil/pkg/errors"
)

// ScriptType classifies the four supported locking-script shapes.
type ScriptType int

// Supported script types.
const (
	P2PKH ScriptType = iota
	P2SH
	P2WPKH
	P2WSH
)

// String returns the conventional name of the script type.
func (t ScriptType) String() string {
	switch t {
	case P2PKH:
		return "p2pkh"
	case P2SH:
		return "p2sh"
	case P2WPKH:
		return "p2wpkh"
	case P2WSH:
		return "p2wsh"
	default:
		return "unknown"
	}
}

// HashLen returns the script hash length the type requires.
func (t ScriptType) HashLen() int {
	if t == P2WSH {
		return 32
	}
	return 20
}

// Network identifies the Bitcoin network an address belongs to.
type Network int

// Supported networks.
const (
	Mainnet Network = iota
	Testnet
)

// String returns the network name.
func (n Network) String() string {
	if n == Testnet {
		return "testnet"
	}
	return "mainnet"
}

// HRP returns the Bech32 human-readable part for the network.
func (n Network) HRP() string {
	if n == Testnet {
		return "tb"
	}
	return "bc"
}

// Base58 version bytes per network.
const (
	versionP2PKHMainnet = 0x00
	versionP2SHMainnet  = 0x05
	versionP2PKHTestnet = 0x6F
	versionP2SHTestnet  = 0xC4
)

// maxAddressLen bounds address input before any decoding work.
const maxAddressLen = 90

// Sentinel errors.
var (
	// ErrInvalidLength indicates an empty or oversized address string.
	ErrInvalidLength = &verr.VigilError{
		Code:     "INVALID_FORMAT",
		Message:  "address must be 1-90 characters",
		ExitCode: verr.ExitInput,
	}

	// ErrUnsupportedType indicates an unrecognized version byte or
	// human-readable part.
	ErrUnsupportedType = &verr.VigilError{
		Code:     "UNSUPPORTED_ADDRESS_TYPE",
		Message:  "unrecognized address version byte or prefix",
		ExitCode: verr.ExitInput,
	}
)

// Address is the canonical decoded form of a Bitcoin address. Immutable
// once decoded: ScriptHash is 20 bytes for P2PKH/P2SH/P2WPKH and 32 bytes
// for P2WSH.
type Address struct {
	Type       ScriptType
	Network    Network
	ScriptHash []byte
}

// HashHex returns the script hash as lowercase hex.
func (a Address) HashHex() string {
	return hex.EncodeToString(a.ScriptHash)
}

// Decode parses a Bitcoin address string into its canonical form. Bech32
// addresses are recognized by a '1' in the 3rd position behind a known
// prefix (bc/tb, case-insensitively); everything else routes to Base58Check.
func Decode(text string) (Address, error) {
	if len(text) == 0 || len(text) > maxAddressLen {
		return Address{}, ErrInvalidLength
	}

	if isBech32Candidate(text) {
		return decodeBech32(text)
	}
	return decodeBase58(text)
}

// ValidateFormat is a cheap structural check: length bounds and character
// set only. It does not verify checksums; callers wanting a full check use
// Decode.
func ValidateFormat(text string) error {
	if len(text) == 0 || len(text) > maxAddressLen {
		return ErrInvalidLength
	}

	if isBech32Candidate(text) {
		lower := strings.ToLower(text)
		for i := 3; i < len(lower); i++ {
			if !strings.ContainsRune(bech32.Charset, rune(lower[i])) {
				return bech32.ErrInvalidCharacter
			}
		}
		return nil
	}

	for i := 0; i < len(text); i++ {
		if !strings.ContainsRune(base58.Alphabet, rune(text[i])) {
			return base58.ErrInvalidCharacter
		}
	}
	return nil
}

// isBech32Candidate reports whether the string looks like a SegWit address:
// a known two-character prefix followed by the '1' separator.
func isBech32Candidate(text string) bool {
	if len(text) < 3 || text[2] != '1' {
		return false
	}
	prefix := strings.ToLower(text[:2])
	return prefix == "bc" || prefix == "tb"
}

// decodeBech32 decodes a SegWit address and classifies it by program length.
// The decoded HRP must be exactly bc or tb: the codec splits on the last '1',
// so an HRP containing '1' (e.g. "bc1f") can slip past the prefix heuristic
// with a valid checksum and must be rejected here.
func decodeBech32(text string) (Address, error) {
	hrp, _, program, err := bech32.DecodeSegWit(text)
	if err != nil {
		return Address{}, err
	}

	var network Network
	switch hrp {
	case "bc":
		network = Mainnet
	case "tb":
		network = Testnet
	default:
		return Address{}, verr.WithDetails(ErrUnsupportedType, map[string]string{
			"hrp": hrp,
		})
	}

	addrType := P2WPKH
	if len(program) == bech32.ProgramLenP2WSH {
		addrType = P2WSH
	}

	return Address{Type: addrType, Network: network, ScriptHash: program}, nil
}

// decodeBase58 decodes a legacy address and maps its version byte to a
// script type and network.
func decodeBase58(text string) (Address, error) {
	version, payload, err := base58.DecodeChecked(text)
	if err != nil {
		return Address{}, err
	}

	var addrType ScriptType
	var network Network
	switch version {
	case versionP2PKHMainnet:
		addrType, network = P2PKH, Mainnet
	case versionP2SHMainnet:
		addrType, network = P2SH, Mainnet
	case versionP2PKHTestnet:
		addrType, network = P2PKH, Testnet
	case versionP2SHTestnet:
		addrType, network = P2SH, Testnet
	default:
		return Address{}, verr.WithDetails(ErrUnsupportedType, map[string]string{
			"version": hex.EncodeToString([]byte{version}),
		})
	}

	return Address{Type: addrType, Network: network, ScriptHash: payload}, nil
}

// Encode renders the canonical form back to an address string. The inverse
// of Decode; used by derivation and round-trip tests.
func Encode(addr Address) (string, error) {
	if len(addr.ScriptHash) != addr.Type.HashLen() {
		return "", ErrInvalidLength
	}

	switch addr.Type {
	case P2PKH:
		version := byte(versionP2PKHMainnet)
		if addr.Network == Testnet {
			version = versionP2PKHTestnet
		}
		return base58.EncodeChecked(version, addr.ScriptHash), nil
	case P2SH:
		version := byte(versionP2SHMainnet)
		if addr.Network == Testnet {
			version = versionP2SHTestnet
		}
		return base58.EncodeChecked(version, addr.ScriptHash), nil
	case P2WPKH, P2WSH:
		return bech32.EncodeSegWit(addr.Network.HRP(), 0, addr.ScriptHash)
	default:
		return "", ErrUnsupportedType
	}
}
