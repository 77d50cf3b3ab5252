// Package bech32 implements the BIP-173 Bech32 encoding used by native
// SegWit addresses, including the polymod checksum, 5-bit/8-bit regrouping,
// and the SegWit witness-program helpers.
package bech32

import (
	"strings"

	verr "github.com/mrz1836/vigil/pkg/errors"
)

// Charset is the 32-character Bech32 alphabet.
const Charset = "qpzry9x8gf2tvdw0s3jn54khce6mua7l"

const (
	// maxAddressLen is the BIP-173 upper bound on a Bech32 string.
	maxAddressLen = 90

	// checksumLen is the number of trailing checksum symbols.
	checksumLen = 6

	// minHRPLen and maxHRPLen bound the human-readable part.
	minHRPLen = 1
	maxHRPLen = 83
)

// charsetRev maps ASCII to 5-bit values, 0xFF for invalid characters.
//
//nolint:gochecknoglobals // Lookup table derived from the fixed charset
var charsetRev = func() [128]byte {
	var rev [128]byte
	for i := range rev {
		rev[i] = 0xFF
	}
	for i := 0; i < len(Charset); i++ {
		rev[Charset[i]] = byte(i)
	}
	return rev
}()

// Sentinel errors.
var (
	// ErrInvalidLength indicates an empty, oversized, or unsplittable string.
	ErrInvalidLength = &verr.VigilError{
		Code:     "INVALID_FORMAT",
		Message:  "invalid Bech32 string length",
		ExitCode: verr.ExitInput,
	}

	// ErrInvalidCharacter indicates a character outside the Bech32 charset.
	ErrInvalidCharacter = &verr.VigilError{
		Code:     "INVALID_CHARACTER",
		Message:  "invalid Bech32 character",
		ExitCode: verr.ExitInput,
	}

	// ErrMixedCase indicates upper- and lowercase letters in one string,
	// which BIP-173 forbids.
	ErrMixedCase = &verr.VigilError{
		Code:     "MIXED_CASE",
		Message:  "Bech32 string mixes uppercase and lowercase",
		ExitCode: verr.ExitInput,
	}

	// ErrChecksumMismatch indicates a failed polymod checksum.
	ErrChecksumMismatch = &verr.VigilError{
		Code:     "CHECKSUM_MISMATCH",
		Message:  "Bech32 checksum mismatch",
		ExitCode: verr.ExitInput,
	}

	// ErrUnsupportedWitnessProgram indicates a witness version or program
	// length this system does not handle.
	ErrUnsupportedWitnessProgram = &verr.VigilError{
		Code:     "UNSUPPORTED_WITNESS_PROGRAM",
		Message:  "unsupported witness version or program length",
		ExitCode: verr.ExitInput,
	}

	// ErrInvalidPadding indicates leftover bits after 5-to-8 regrouping.
	ErrInvalidPadding = &verr.VigilError{
		Code:     "INVALID_FORMAT",
		Message:  "invalid padding in Bech32 data",
		ExitCode: verr.ExitInput,
	}
)

// Decode splits and checksum-verifies a Bech32 string. It returns the
// lowercase human-readable part and the 5-bit data values including the
// trailing six checksum symbols.
func Decode(s string) (hrp string, data []byte, err error) {
	if len(s) < minHRPLen+1+checksumLen || len(s) > maxAddressLen {
		return "", nil, ErrInvalidLength
	}

	lower := strings.ToLower(s)
	upper := strings.ToUpper(s)
	if s != lower && s != upper {
		return "", nil, ErrMixedCase
	}
	s = lower

	sep := strings.LastIndexByte(s, '1')
	if sep < minHRPLen || sep > maxHRPLen || sep+1+checksumLen > len(s) {
		return "", nil, ErrInvalidLength
	}

	hrp = s[:sep]
	for i := 0; i < len(hrp); i++ {
		if hrp[i] < 33 || hrp[i] > 126 {
			return "", nil, ErrInvalidCharacter
		}
	}

	dataPart := s[sep+1:]
	data = make([]byte, len(dataPart))
	for i := 0; i < len(dataPart); i++ {
		c := dataPart[i]
		if c >= 128 || charsetRev[c] == 0xFF {
			return "", nil, ErrInvalidCharacter
		}
		data[i] = charsetRev[c]
	}

	if !verifyChecksum(hrp, data) {
		return "", nil, ErrChecksumMismatch
	}

	return hrp, data, nil
}

// Encode renders a human-readable part and 5-bit data values as a Bech32
// string, computing and appending the six checksum symbols.
func Encode(hrp string, data []byte) (string, error) {
	if len(hrp) < minHRPLen || len(hrp) > maxHRPLen ||
		len(hrp)+1+len(data)+checksumLen > maxAddressLen {
		return "", ErrInvalidLength
	}

	var sb strings.Builder
	sb.Grow(len(hrp) + 1 + len(data) + checksumLen)
	sb.WriteString(hrp)
	sb.WriteByte('1')
	for _, v := range data {
		if v >= 32 {
			return "", ErrInvalidCharacter
		}
		sb.WriteByte(Charset[v])
	}
	for _, v := range createChecksum(hrp, data) {
		sb.WriteByte(Charset[v])
	}
	return sb.String(), nil
}

// verifyChecksum reports whether the running polymod over the expanded HRP
// and data (checksum symbols included) equals 1.
func verifyChecksum(hrp string, data []byte) bool {
	return polymod(append(hrpExpand(hrp), data...)) == 1
}

// createChecksum computes the six checksum symbols for hrp + data.
func createChecksum(hrp string, data []byte) []byte {
	values := append(hrpExpand(hrp), data...)
	values = append(values, 0, 0, 0, 0, 0, 0)
	mod := polymod(values) ^ 1
	checksum := make([]byte, checksumLen)
	for i := 0; i < checksumLen; i++ {
		checksum[i] = byte((mod >> uint(5*(5-i))) & 31)
	}
	return checksum
}

// hrpExpand produces the checksum input for the human-readable part:
// high bits, a zero separator, then low bits.
func hrpExpand(hrp string) []byte {
	out := make([]byte, 0, len(hrp)*2+1)
	for i := 0; i < len(hrp); i++ {
		out = append(out, hrp[i]>>5)
	}
	out = append(out, 0)
	for i := 0; i < len(hrp); i++ {
		out = append(out, hrp[i]&31)
	}
	return out
}

// polymod is the BIP-173 BCH checksum over 5-bit values.
func polymod(values []byte) uint32 {
	const (
		gen0 = 0x3b6a57b2
		gen1 = 0x26508e6d
		gen2 = 0x1ea119fa
		gen3 = 0x3d4233dd
		gen4 = 0x2a1462b3
	)
	chk := uint32(1)
	for _, v := range values {
		top := chk >> 25
		chk = (chk&0x1ffffff)<<5 ^ uint32(v)
		if (top & 1) != 0 {
			chk ^= gen0
		}
		if (top & 2) != 0 {
			chk ^= gen1
		}
		if (top & 4) != 0 {
			chk ^= gen2
		}
		if (top & 8) != 0 {
			chk ^= gen3
		}
		if (top & 16) != 0 {
			chk ^= gen4
		}
	}
	return chk
}

// ConvertBits regroups data between bit widths. With pad set, an incomplete
// trailing group is zero-padded (encode direction); without it, leftover
// bits must be zero and shorter than a full input group (decode direction).
func ConvertBits(data []byte, fromBits, toBits uint, pad bool) ([]byte, error) {
	if fromBits < 1 || fromBits > 8 || toBits < 1 || toBits > 8 {
		return nil, ErrInvalidPadding
	}

	var acc uint32
	var bits uint
	maxv := uint32(1)<<toBits - 1
	out := make([]byte, 0, len(data)*int(fromBits)/int(toBits)+1)

	for _, b := range data {
		if uint32(b)>>fromBits != 0 {
			return nil, ErrInvalidCharacter
		}
		acc = acc<<fromBits | uint32(b)
		bits += fromBits
		for bits >= toBits {
			bits -= toBits
			out = append(out, byte(acc>>bits&maxv))
		}
	}

	if pad {
		if bits > 0 {
			out = append(out, byte(acc<<(toBits-bits)&maxv))
		}
	} else if bits >= fromBits || acc<<(toBits-bits)&maxv != 0 {
		return nil, ErrInvalidPadding
	}

	return out, nil
}
