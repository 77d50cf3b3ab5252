// Package script builds Bitcoin locking-script templates from decoded
// addresses and matches them against transaction outputs and inputs. The
// four supported templates are byte-exact; anything that does not equal a
// template is a non-match, never a partial one.
package script

import (
	"bytes"

	"github.com/mrz1836/vigil/internal/btc/address"
	"github.com/mrz1836/vigil/internal/btc/txn"
	verr "github.com/mrz1836/vigil/pkg/errors"
)

// Script opcodes used by the templates.
const (
	opDup         = 0x76
	opHash160     = 0xA9
	opEqual       = 0x87
	opEqualVerify = 0x88
	opCheckSig    = 0xAC
	opReturn      = 0x6A
	opPush20      = 0x14
	opPush32      = 0x20
	opVersion0    = 0x00
)

// ErrUnsupportedScript indicates an address type with no known template.
var ErrUnsupportedScript = &verr.VigilError{
	Code:     "UNSUPPORTED_ADDRESS_TYPE",
	Message:  "no locking script template for address type",
	ExitCode: verr.ExitInput,
}

// LockingScript builds the exact locking-script bytes for an address:
//
//	P2PKH:  76 a9 14 <20-byte hash> 88 ac
//	P2SH:   a9 14 <20-byte hash> 87
//	P2WPKH: 00 14 <20-byte hash>
//	P2WSH:  00 20 <32-byte hash>
func LockingScript(addr address.Address) ([]byte, error) {
	if len(addr.ScriptHash) != addr.Type.HashLen() {
		return nil, ErrUnsupportedScript
	}

	h := addr.ScriptHash
	switch addr.Type {
	case address.P2PKH:
		s := make([]byte, 0, 25)
		s = append(s, opDup, opHash160, opPush20)
		s = append(s, h...)
		return append(s, opEqualVerify, opCheckSig), nil
	case address.P2SH:
		s := make([]byte, 0, 23)
		s = append(s, opHash160, opPush20)
		s = append(s, h...)
		return append(s, opEqual), nil
	case address.P2WPKH:
		s := make([]byte, 0, 22)
		s = append(s, opVersion0, opPush20)
		return append(s, h...), nil
	case address.P2WSH:
		s := make([]byte, 0, 34)
		s = append(s, opVersion0, opPush32)
		return append(s, h...), nil
	default:
		return nil, ErrUnsupportedScript
	}
}

// VerifyPaymentOutput reports whether any output in the vector pays at
// least minAmount to the address's exact locking script.
func VerifyPaymentOutput(outputVector []byte, addr address.Address, minAmount uint64) (bool, error) {
	template, err := LockingScript(addr)
	if err != nil {
		return false, err
	}

	outputs, err := txn.ParseOutputs(outputVector)
	if err != nil {
		return false, err
	}

	for _, out := range outputs {
		if out.Value >= minAmount && bytes.Equal(out.Script, template) {
			return true, nil
		}
	}
	return false, nil
}

// VerifyOpReturnPayload reports whether any output carries an OP_RETURN
// script whose 32-byte payload equals expected. Binds an off-chain signed
// challenge to the on-chain broadcast. The script must be exactly
// 6a 20 <payload> (34 bytes); trailing bytes after the push disqualify the
// output rather than matching on prefix alone.
func VerifyOpReturnPayload(outputVector []byte, expected [32]byte) (bool, error) {
	outputs, err := txn.ParseOutputs(outputVector)
	if err != nil {
		return false, err
	}

	for _, out := range outputs {
		if len(out.Script) == 2+32 && out.Script[0] == opReturn && out.Script[1] == opPush32 &&
			bytes.Equal(out.Script[2:], expected[:]) {
			return true, nil
		}
	}
	return false, nil
}
