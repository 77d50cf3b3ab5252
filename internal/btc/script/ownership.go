package script

import (
	"bytes"

	"github.com/mrz1836/vigil/internal/btc/address"
	"github.com/mrz1836/vigil/internal/btc/hash"
	"github.com/mrz1836/vigil/internal/btc/txn"
	verr "github.com/mrz1836/vigil/pkg/errors"
)

// Push opcodes recognized in scriptSig parsing.
const (
	opPushData1 = 0x4C
	opPushData2 = 0x4D
	opPushData4 = 0x4E
)

// Sentinel errors.
var (
	// ErrUnsupportedOwnership indicates an ownership check against a
	// witness-type address. Witness spends carry an empty scriptSig, so
	// there is nothing to extract; the check fails closed rather than
	// defaulting to verified.
	ErrUnsupportedOwnership = &verr.VigilError{
		Code:     "UNSUPPORTED_OWNERSHIP_CHECK",
		Message:  "input ownership check not supported for witness address types",
		ExitCode: verr.ExitInput,
	}

	// ErrMalformedScriptSig indicates a scriptSig that does not parse as a
	// sequence of data pushes.
	ErrMalformedScriptSig = &verr.VigilError{
		Code:     "MALFORMED_SCRIPT_SIG",
		Message:  "scriptSig is not a sequence of data pushes",
		ExitCode: verr.ExitInput,
	}
)

// VerifyInputOwnership reports whether any input in the vector spends from
// the address. For P2PKH the spending public key is extracted and hashed;
// for P2SH the redeem script is. Witness types return
// ErrUnsupportedOwnership.
func VerifyInputOwnership(inputVector []byte, addr address.Address) (bool, error) {
	switch addr.Type {
	case address.P2PKH, address.P2SH:
	default:
		return false, ErrUnsupportedOwnership
	}

	inputs, err := txn.ParseInputs(inputVector)
	if err != nil {
		return false, err
	}

	for _, in := range inputs {
		var candidate []byte
		if addr.Type == address.P2PKH {
			candidate = ExtractSpendingPubKey(in.ScriptSig)
		} else {
			candidate = ExtractRedeemScript(in.ScriptSig)
		}
		if candidate == nil {
			continue
		}
		if bytes.Equal(hash.Hash160(candidate), addr.ScriptHash) {
			return true, nil
		}
	}
	return false, nil
}

// ExtractSpendingPubKey parses a P2PKH scriptSig of the shape
// <push signature><push pubkey> and returns the public key, or nil if the
// scriptSig does not have that shape.
func ExtractSpendingPubKey(scriptSig []byte) []byte {
	pushes, err := parsePushes(scriptSig)
	if err != nil || len(pushes) != 2 {
		return nil
	}
	pubKey := pushes[1]
	if len(pubKey) != 33 && len(pubKey) != 65 {
		return nil
	}
	return pubKey
}

// ExtractRedeemScript returns the last data push of a P2SH scriptSig.
//
// Known limitation: "last push is the redeem script" is correct for
// standard redeem-script spends but can be fooled by non-standard scripts.
// Any non-push opcode aborts extraction instead of guessing.
func ExtractRedeemScript(scriptSig []byte) []byte {
	pushes, err := parsePushes(scriptSig)
	if err != nil || len(pushes) == 0 {
		return nil
	}
	last := pushes[len(pushes)-1]
	if len(last) == 0 {
		return nil
	}
	return last
}

// parsePushes walks a scriptSig as a sequence of data pushes. Direct pushes
// (0x01-0x4B) and OP_PUSHDATA1/2/4 are recognized; anything else errors.
func parsePushes(scriptSig []byte) ([][]byte, error) {
	var pushes [][]byte
	offset := 0

	for offset < len(scriptSig) {
		op := scriptSig[offset]
		offset++

		var dataLen int
		switch {
		case op >= 0x01 && op <= 0x4B:
			dataLen = int(op)
		case op == opPushData1:
			if offset >= len(scriptSig) {
				return nil, ErrMalformedScriptSig
			}
			dataLen = int(scriptSig[offset])
			offset++
		case op == opPushData2:
			if offset+2 > len(scriptSig) {
				return nil, ErrMalformedScriptSig
			}
			dataLen = int(scriptSig[offset]) | int(scriptSig[offset+1])<<8
			offset += 2
		case op == opPushData4:
			if offset+4 > len(scriptSig) {
				return nil, ErrMalformedScriptSig
			}
			dataLen = int(scriptSig[offset]) | int(scriptSig[offset+1])<<8 |
				int(scriptSig[offset+2])<<16 | int(scriptSig[offset+3])<<24
			offset += 4
		default:
			return nil, ErrMalformedScriptSig
		}

		if dataLen < 0 || dataLen > txn.MaxScriptLen || offset+dataLen > len(scriptSig) {
			return nil, ErrMalformedScriptSig
		}
		pushes = append(pushes, scriptSig[offset:offset+dataLen])
		offset += dataLen
	}

	return pushes, nil
}
