package bech32

// Witness program lengths accepted by this system.
const (
	ProgramLenP2WPKH = 20
	ProgramLenP2WSH  = 32
)

// DecodeSegWit decodes a SegWit address into its human-readable part,
// witness version, and witness program bytes. Only witness version 0 with a
// 20- or 32-byte program is accepted.
func DecodeSegWit(addr string) (hrp string, version byte, program []byte, err error) {
	hrp, data, err := Decode(addr)
	if err != nil {
		return "", 0, nil, err
	}

	// Data part must hold at least the witness version and checksum.
	if len(data) < 1+checksumLen {
		return "", 0, nil, ErrInvalidLength
	}

	version = data[0]
	if version != 0 {
		return "", 0, nil, ErrUnsupportedWitnessProgram
	}

	program, err = ConvertBits(data[1:len(data)-checksumLen], 5, 8, false)
	if err != nil {
		return "", 0, nil, err
	}

	if len(program) != ProgramLenP2WPKH && len(program) != ProgramLenP2WSH {
		return "", 0, nil, ErrUnsupportedWitnessProgram
	}

	return hrp, version, program, nil
}

// EncodeSegWit encodes a witness version and program as a SegWit address.
func EncodeSegWit(hrp string, version byte, program []byte) (string, error) {
	if version != 0 {
		return "", ErrUnsupportedWitnessProgram
	}
	if len(program) != ProgramLenP2WPKH && len(program) != ProgramLenP2WSH {
		return "", ErrUnsupportedWitnessProgram
	}

	grouped, err := ConvertBits(program, 8, 5, true)
	if err != nil {
		return "", err
	}

	data := make([]byte, 0, 1+len(grouped))
	data = append(data, version)
	data = append(data, grouped...)

	return Encode(hrp, data)
}
