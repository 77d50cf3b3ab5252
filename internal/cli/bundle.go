package cli

import (
	"encoding/hex"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mrz1836/vigil/internal/btc/txn"
	"github.com/mrz1836/vigil/internal/spv"
	verr "github.com/mrz1836/vigil/pkg/errors"
)

// txFile is the YAML layout of a transaction bundle: the four legacy
// serialization fields as hex strings.
type txFile struct {
	Version      string `yaml:"version"`
	InputVector  string `yaml:"input_vector"`
	OutputVector string `yaml:"output_vector"`
	Locktime     string `yaml:"locktime"`
}

// proofFile is the YAML layout of an SPV proof bundle.
type proofFile struct {
	MerkleProof      string `yaml:"merkle_proof"`
	TxIndexInBlock   uint   `yaml:"tx_index_in_block"`
	BitcoinHeaders   string `yaml:"bitcoin_headers"`
	CoinbasePreimage string `yaml:"coinbase_preimage"`
	CoinbaseProof    string `yaml:"coinbase_proof"`
}

// loadTransaction reads a transaction bundle file.
func loadTransaction(path string) (txn.Transaction, error) {
	var file txFile
	if err := loadYAML(path, &file); err != nil {
		return txn.Transaction{}, err
	}

	var tx txn.Transaction
	var err error
	if tx.Version, err = decodeHexField("version", file.Version); err != nil {
		return txn.Transaction{}, err
	}
	if tx.InputVector, err = decodeHexField("input_vector", file.InputVector); err != nil {
		return txn.Transaction{}, err
	}
	if tx.OutputVector, err = decodeHexField("output_vector", file.OutputVector); err != nil {
		return txn.Transaction{}, err
	}
	if tx.Locktime, err = decodeHexField("locktime", file.Locktime); err != nil {
		return txn.Transaction{}, err
	}
	return tx, nil
}

// loadProof reads an SPV proof bundle file.
func loadProof(path string) (spv.Proof, error) {
	var file proofFile
	if err := loadYAML(path, &file); err != nil {
		return spv.Proof{}, err
	}

	var proof spv.Proof
	var err error
	if proof.MerkleProof, err = decodeHexField("merkle_proof", file.MerkleProof); err != nil {
		return spv.Proof{}, err
	}
	if proof.BitcoinHeaders, err = decodeHexField("bitcoin_headers", file.BitcoinHeaders); err != nil {
		return spv.Proof{}, err
	}
	if proof.CoinbaseProof, err = decodeHexField("coinbase_proof", file.CoinbaseProof); err != nil {
		return spv.Proof{}, err
	}

	preimage, err := decodeHexField("coinbase_preimage", file.CoinbasePreimage)
	if err != nil {
		return spv.Proof{}, err
	}
	if len(preimage) != 32 {
		return spv.Proof{}, verr.WithDetails(verr.ErrInvalidInput, map[string]string{
			"field":  "coinbase_preimage",
			"reason": "must be 32 bytes",
		})
	}
	copy(proof.CoinbasePreimage[:], preimage)

	proof.TxIndexInBlock = file.TxIndexInBlock
	return proof, nil
}

// loadYAML reads and unmarshals one YAML file.
func loadYAML(path string, v any) error {
	// #nosec G304 -- file path comes from an explicit CLI flag
	data, err := os.ReadFile(path)
	if err != nil {
		return verr.WithDetails(verr.ErrNotFound, map[string]string{
			"path": path,
		})
	}
	if err := yaml.Unmarshal(data, v); err != nil {
		return verr.WithDetails(verr.ErrInvalidInput, map[string]string{
			"path":   path,
			"reason": err.Error(),
		})
	}
	return nil
}

// decodeHexField decodes one hex field with a field-named error.
func decodeHexField(field, value string) ([]byte, error) {
	decoded, err := hex.DecodeString(value)
	if err != nil {
		return nil, verr.WithDetails(verr.ErrInvalidInput, map[string]string{
			"field":  field,
			"reason": "not valid hex",
		})
	}
	return decoded, nil
}
