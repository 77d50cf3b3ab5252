package txn

import (
	"encoding/binary"

	verr "github.com/mrz1836/vigil/pkg/errors"
)

// Bounds on attacker-controlled counts and lengths, checked before any
// count-driven loop runs.
const (
	// MaxVectorItems caps the number of inputs or outputs in one vector.
	MaxVectorItems = 10_000

	// MaxScriptLen is Bitcoin's consensus cap on script length.
	MaxScriptLen = 10_000
)

// ErrInvalidVarInt indicates a truncated or oversized variable-length
// integer.
var ErrInvalidVarInt = &verr.VigilError{
	Code:     "INVALID_VARINT",
	Message:  "malformed variable-length integer",
	ExitCode: verr.ExitInput,
}

// ParseVarInt decodes a Bitcoin CompactSize integer from the start of buf.
// It returns the value and the number of bytes consumed.
func ParseVarInt(buf []byte) (value uint64, size int, err error) {
	if len(buf) == 0 {
		return 0, 0, ErrInvalidVarInt
	}

	switch tag := buf[0]; {
	case tag < 0xFD:
		return uint64(tag), 1, nil
	case tag == 0xFD:
		if len(buf) < 3 {
			return 0, 0, ErrInvalidVarInt
		}
		return uint64(binary.LittleEndian.Uint16(buf[1:3])), 3, nil
	case tag == 0xFE:
		if len(buf) < 5 {
			return 0, 0, ErrInvalidVarInt
		}
		return uint64(binary.LittleEndian.Uint32(buf[1:5])), 5, nil
	default:
		if len(buf) < 9 {
			return 0, 0, ErrInvalidVarInt
		}
		return binary.LittleEndian.Uint64(buf[1:9]), 9, nil
	}
}
