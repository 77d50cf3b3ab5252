// Package txn parses Bitcoin's legacy (non-segwit) transaction wire format:
// CompactSize integers, input and output vectors, and txid computation.
// Every vector must account for exactly the bytes it claims; trailing
// garbage and overruns are rejected, never ignored.
package txn

import (
	"encoding/binary"

	"github.com/mrz1836/vigil/internal/btc/hash"
	verr "github.com/mrz1836/vigil/pkg/errors"
)

// Fixed field sizes in the legacy serialization.
const (
	versionLen  = 4
	locktimeLen = 4
	outpointLen = 36 // 32-byte txid + 4-byte output index
	sequenceLen = 4
	valueLen    = 8
)

// Sentinel errors.
var (
	// ErrInvalidInputVector indicates a vin that does not parse to exactly
	// its own length.
	ErrInvalidInputVector = &verr.VigilError{
		Code:     "INVALID_INPUT_VECTOR",
		Message:  "malformed transaction input vector",
		ExitCode: verr.ExitInput,
	}

	// ErrInvalidOutputVector indicates a vout that does not parse to
	// exactly its own length.
	ErrInvalidOutputVector = &verr.VigilError{
		Code:     "INVALID_OUTPUT_VECTOR",
		Message:  "malformed transaction output vector",
		ExitCode: verr.ExitInput,
	}

	// ErrInvalidTransaction indicates bad fixed-size fields.
	ErrInvalidTransaction = &verr.VigilError{
		Code:     "INVALID_TRANSACTION",
		Message:  "malformed transaction",
		ExitCode: verr.ExitInput,
	}
)

// Transaction is the four sliced fields of a legacy Bitcoin transaction.
// The vectors keep their leading CompactSize counts.
type Transaction struct {
	Version      []byte // 4 bytes, little-endian
	InputVector  []byte
	OutputVector []byte
	Locktime     []byte // 4 bytes, little-endian
}

// Validate checks the fixed fields and both vectors.
func (t Transaction) Validate() error {
	if len(t.Version) != versionLen || len(t.Locktime) != locktimeLen {
		return ErrInvalidTransaction
	}
	if err := ValidateVin(t.InputVector); err != nil {
		return err
	}
	return ValidateVout(t.OutputVector)
}

// TxID computes the double-SHA256 transaction id over the legacy
// serialization. The caller is expected to have validated the vectors.
func (t Transaction) TxID() [32]byte {
	buf := make([]byte, 0, len(t.Version)+len(t.InputVector)+len(t.OutputVector)+len(t.Locktime))
	buf = append(buf, t.Version...)
	buf = append(buf, t.InputVector...)
	buf = append(buf, t.OutputVector...)
	buf = append(buf, t.Locktime...)
	return hash.DoubleSHA256Sum(buf)
}

// Input is one parsed transaction input.
type Input struct {
	Outpoint  []byte // 36 bytes: previous txid + output index
	ScriptSig []byte
	Sequence  uint32
}

// Output is one parsed transaction output.
type Output struct {
	Value  uint64 // satoshis, little-endian on the wire
	Script []byte // locking script (pkScript)
}

// ValidateVin checks that the input vector is self-consistent: a CompactSize
// count followed by exactly that many well-formed inputs, consuming every
// byte.
func ValidateVin(vin []byte) error {
	_, err := ParseInputs(vin)
	return err
}

// ValidateVout checks the output vector the same way.
func ValidateVout(vout []byte) error {
	_, err := ParseOutputs(vout)
	return err
}

// ParseInputs enumerates the inputs of a serialized input vector.
func ParseInputs(vin []byte) ([]Input, error) {
	count, offset, err := ParseVarInt(vin)
	if err != nil || count == 0 || count > MaxVectorItems {
		return nil, ErrInvalidInputVector
	}

	inputs := make([]Input, 0, count)
	for i := uint64(0); i < count; i++ {
		input, consumed, err := parseInput(vin[offset:])
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, input)
		offset += consumed
	}

	if offset != len(vin) {
		return nil, ErrInvalidInputVector
	}
	return inputs, nil
}

// parseInput parses one input: outpoint, scriptSig, sequence.
func parseInput(buf []byte) (Input, int, error) {
	if len(buf) < outpointLen {
		return Input{}, 0, ErrInvalidInputVector
	}
	offset := outpointLen

	scriptLen, size, err := ParseVarInt(buf[offset:])
	if err != nil || scriptLen > MaxScriptLen {
		return Input{}, 0, ErrInvalidInputVector
	}
	offset += size

	end := offset + int(scriptLen)
	if end+sequenceLen > len(buf) {
		return Input{}, 0, ErrInvalidInputVector
	}

	input := Input{
		Outpoint:  buf[:outpointLen],
		ScriptSig: buf[offset:end],
		Sequence:  binary.LittleEndian.Uint32(buf[end : end+sequenceLen]),
	}
	return input, end + sequenceLen, nil
}

// ParseOutputs enumerates the outputs of a serialized output vector.
func ParseOutputs(vout []byte) ([]Output, error) {
	count, offset, err := ParseVarInt(vout)
	if err != nil || count == 0 || count > MaxVectorItems {
		return nil, ErrInvalidOutputVector
	}

	outputs := make([]Output, 0, count)
	for i := uint64(0); i < count; i++ {
		output, consumed, err := parseOutput(vout[offset:])
		if err != nil {
			return nil, err
		}
		outputs = append(outputs, output)
		offset += consumed
	}

	if offset != len(vout) {
		return nil, ErrInvalidOutputVector
	}
	return outputs, nil
}

// parseOutput parses one output: value, locking script.
func parseOutput(buf []byte) (Output, int, error) {
	if len(buf) < valueLen {
		return Output{}, 0, ErrInvalidOutputVector
	}
	offset := valueLen

	scriptLen, size, err := ParseVarInt(buf[offset:])
	if err != nil || scriptLen > MaxScriptLen {
		return Output{}, 0, ErrInvalidOutputVector
	}
	offset += size

	end := offset + int(scriptLen)
	if end > len(buf) {
		return Output{}, 0, ErrInvalidOutputVector
	}

	output := Output{
		Value:  binary.LittleEndian.Uint64(buf[:valueLen]),
		Script: buf[offset:end],
	}
	return output, end, nil
}
