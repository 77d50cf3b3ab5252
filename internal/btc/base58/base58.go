// Package base58 implements the Base58 and Base58Check encodings used by
// legacy Bitcoin addresses.
//
// Decoding runs the classic "multiply by 58, add digit" big-integer loop over
// a fixed 32-byte accumulator. The fixed capacity is a deliberate bound, not
// an artifact: any input whose value does not fit is rejected with
// ErrOverflow before it can cost unbounded work or memory.
package base58

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/mrz1836/vigil/internal/btc/hash"
	verr "github.com/mrz1836/vigil/pkg/errors"
)

// Alphabet is the 58-character alphabet used by Bitcoin. The visually
// ambiguous characters 0, O, I and l are excluded.
const Alphabet = "123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"

const (
	// accumulatorSize bounds the decoded value to 32 bytes, enough for any
	// Base58Check payload (25 bytes) with headroom.
	accumulatorSize = 32

	// maxInputLen bounds attacker-controlled input before any per-character
	// work happens. Bitcoin addresses are at most 90 characters.
	maxInputLen = 90

	// checksumLen is the length of the trailing double-SHA256 checksum.
	checksumLen = 4

	// checkedLen is the exact decoded length of a Base58Check address:
	// 1 version byte + 20 payload bytes + 4 checksum bytes.
	checkedLen = 25
)

// Sentinel errors.
var (
	// ErrInvalidCharacter indicates a character outside the Base58 alphabet.
	ErrInvalidCharacter = &verr.VigilError{
		Code:     "INVALID_CHARACTER",
		Message:  "invalid Base58 character",
		ExitCode: verr.ExitInput,
	}

	// ErrInvalidLength indicates an empty or oversized input string.
	ErrInvalidLength = &verr.VigilError{
		Code:     "INVALID_FORMAT",
		Message:  "invalid Base58 string length",
		ExitCode: verr.ExitInput,
	}

	// ErrOverflow indicates the decoded value does not fit the fixed
	// 32-byte accumulator.
	ErrOverflow = &verr.VigilError{
		Code:     "BASE58_OVERFLOW",
		Message:  "Base58 value exceeds 32-byte capacity",
		ExitCode: verr.ExitInput,
	}

	// ErrChecksumMismatch indicates a failed Base58Check checksum.
	ErrChecksumMismatch = &verr.VigilError{
		Code:     "CHECKSUM_MISMATCH",
		Message:  "Base58Check checksum mismatch",
		ExitCode: verr.ExitInput,
	}

	// ErrInvalidPayload indicates a checked string whose decoded length is
	// not the 25 bytes of a Bitcoin address.
	ErrInvalidPayload = &verr.VigilError{
		Code:     "INVALID_FORMAT",
		Message:  "Base58Check payload has unexpected length",
		ExitCode: verr.ExitInput,
	}
)

// Decode decodes a Base58-encoded string.
func Decode(s string) ([]byte, error) {
	if len(s) == 0 || len(s) > maxInputLen {
		return nil, ErrInvalidLength
	}

	zeros := countLeadingOnes(s)
	acc, err := decodePayload(s, zeros)
	if err != nil {
		return nil, err
	}

	return buildResult(acc, zeros), nil
}

// countLeadingOnes counts leading '1's, which encode zero bytes verbatim.
func countLeadingOnes(s string) int {
	zeros := 0
	for zeros < len(s) && s[zeros] == '1' {
		zeros++
	}
	return zeros
}

// decodePayload decodes the non-zero portion of a Base58 string into the
// fixed-size accumulator.
func decodePayload(s string, zeros int) ([]byte, error) {
	acc := make([]byte, accumulatorSize)

	for i := zeros; i < len(s); i++ {
		carry, ok := charValue(s[i])
		if !ok {
			return nil, verr.WithDetails(ErrInvalidCharacter, map[string]string{
				"position": strconv.Itoa(i),
			})
		}
		for j := len(acc) - 1; j >= 0; j-- {
			carry += int(acc[j]) * 58
			acc[j] = byte(carry % 256)
			carry /= 256
		}
		if carry != 0 {
			return nil, ErrOverflow
		}
	}
	return acc, nil
}

// charValue returns the value of a Base58 character.
func charValue(c byte) (int, bool) {
	idx := strings.IndexByte(Alphabet, c)
	if idx < 0 {
		return 0, false
	}
	return idx, true
}

// buildResult assembles leading zero bytes plus the minimal-length
// significant bytes of the accumulator.
func buildResult(acc []byte, zeros int) []byte {
	j := 0
	for j < len(acc) && acc[j] == 0 {
		j++
	}
	result := make([]byte, zeros+len(acc)-j)
	copy(result[zeros:], acc[j:])
	return result
}

// DecodeChecked decodes a Base58Check-encoded Bitcoin address and verifies
// its checksum. It returns the version byte and the 20-byte payload.
func DecodeChecked(s string) (version byte, payload []byte, err error) {
	decoded, err := Decode(s)
	if err != nil {
		return 0, nil, err
	}

	if len(decoded) != checkedLen {
		return 0, nil, ErrInvalidPayload
	}

	body := decoded[:checkedLen-checksumLen]
	checksum := decoded[checkedLen-checksumLen:]
	expected := hash.DoubleSHA256(body)[:checksumLen]

	if !bytes.Equal(checksum, expected) {
		return 0, nil, ErrChecksumMismatch
	}

	return body[0], body[1:], nil
}

// Encode encodes data to Base58.
func Encode(data []byte) string {
	if len(data) == 0 {
		return ""
	}

	var zeros int
	for zeros < len(data) && data[zeros] == 0 {
		zeros++
	}

	// log(256) / log(58), rounded up
	size := (len(data)-zeros)*138/100 + 1
	buf := make([]byte, size)

	for _, b := range data[zeros:] {
		carry := int(b)
		for j := len(buf) - 1; j >= 0; j-- {
			carry += int(buf[j]) << 8
			buf[j] = byte(carry % 58)
			carry /= 58
		}
	}

	// Skip leading zeros in buffer
	j := 0
	for j < len(buf) && buf[j] == 0 {
		j++
	}

	result := make([]byte, zeros+len(buf)-j)
	for i := 0; i < zeros; i++ {
		result[i] = '1'
	}
	for i, b := range buf[j:] {
		result[zeros+i] = Alphabet[b]
	}

	return string(result)
}

// EncodeChecked encodes a version byte and payload with a trailing
// double-SHA256 checksum.
func EncodeChecked(version byte, payload []byte) string {
	data := make([]byte, 0, 1+len(payload)+checksumLen)
	data = append(data, version)
	data = append(data, payload...)

	checksum := hash.DoubleSHA256(data)[:checksumLen]
	data = append(data, checksum...)

	return Encode(data)
}
