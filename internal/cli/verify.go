//nolint:gochecknoglobals,gochecknoinits // Cobra CLI pattern
package cli

import (
	"encoding/hex"
	"math/big"

	"github.com/spf13/cobra"

	"github.com/mrz1836/vigil/internal/btc/txn"
	"github.com/mrz1836/vigil/internal/relay"
	"github.com/mrz1836/vigil/internal/spv"
	verr "github.com/mrz1836/vigil/pkg/errors"
)

var (
	verifyTxFile       string
	verifyProofFile    string
	verifyAddress      string
	verifyAmount       uint64
	verifyChallenge    string
	verifyRelayRPC     string
	verifyRelayAddr    string
	verifyCurrentDiff  string
	verifyPreviousDiff string
	verifyFactor       uint64
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify SPV proofs and payment/ownership claims",
}

var verifyProofCmd = &cobra.Command{
	Use:   "proof",
	Short: "Verify a transaction's SPV proof",
	RunE: func(cmd *cobra.Command, _ []string) error {
		validator, closeOracle, err := buildValidator(cmd)
		if err != nil {
			return err
		}
		defer closeOracle()

		tx, proof, err := loadBundles()
		if err != nil {
			return err
		}

		txID, err := validator.ValidateProof(cmd.Context(), tx, proof)
		if err != nil {
			return err
		}

		return formatter.Print(map[string]string{
			"status": "verified",
			"txid":   hex.EncodeToString(txID[:]),
		})
	},
}

var verifyPaymentCmd = &cobra.Command{
	Use:   "payment",
	Short: "Verify a proven transaction pays an address",
	RunE: func(cmd *cobra.Command, _ []string) error {
		validator, closeOracle, err := buildValidator(cmd)
		if err != nil {
			return err
		}
		defer closeOracle()

		tx, proof, err := loadBundles()
		if err != nil {
			return err
		}

		txID, err := validator.VerifyRedemptionFulfillment(
			cmd.Context(), verifyAddress, verifyAmount, tx, proof)
		if err != nil {
			return err
		}

		return formatter.Print(map[string]string{
			"status":  "verified",
			"txid":    hex.EncodeToString(txID[:]),
			"address": verifyAddress,
		})
	},
}

var verifyControlCmd = &cobra.Command{
	Use:   "control",
	Short: "Verify a proven transaction demonstrates wallet control",
	RunE: func(cmd *cobra.Command, _ []string) error {
		challengeBytes, err := hex.DecodeString(verifyChallenge)
		if err != nil || len(challengeBytes) != 32 {
			return verr.WithDetails(verr.ErrInvalidInput, map[string]string{
				"challenge": "must be 32 bytes of hex",
			})
		}
		var challenge [32]byte
		copy(challenge[:], challengeBytes)

		validator, closeOracle, err := buildValidator(cmd)
		if err != nil {
			return err
		}
		defer closeOracle()

		tx, proof, err := loadBundles()
		if err != nil {
			return err
		}

		txID, err := validator.VerifyWalletControl(
			cmd.Context(), verifyAddress, challenge, tx, proof)
		if err != nil {
			return err
		}

		return formatter.Print(map[string]string{
			"status":  "verified",
			"txid":    hex.EncodeToString(txID[:]),
			"address": verifyAddress,
		})
	},
}

// loadBundles reads the transaction and proof files named by the flags.
func loadBundles() (txn.Transaction, spv.Proof, error) {
	tx, err := loadTransaction(verifyTxFile)
	if err != nil {
		return txn.Transaction{}, spv.Proof{}, err
	}
	proof, err := loadProof(verifyProofFile)
	if err != nil {
		return txn.Transaction{}, spv.Proof{}, err
	}
	return tx, proof, nil
}

// buildValidator wires a validator to either the static oracle (explicit
// difficulty flags) or the Ethereum relay. The returned func releases the
// oracle connection, if any.
func buildValidator(cmd *cobra.Command) (*spv.Validator, func(), error) {
	factor := verifyFactor
	if factor == 0 {
		factor = cfg.Proof.DifficultyFactor
	}

	if verifyCurrentDiff != "" || verifyPreviousDiff != "" {
		current, ok := new(big.Int).SetString(verifyCurrentDiff, 10)
		if !ok {
			return nil, nil, verr.WithDetails(verr.ErrInvalidInput, map[string]string{
				"current-difficulty": "not a decimal integer",
			})
		}
		previous, ok := new(big.Int).SetString(verifyPreviousDiff, 10)
		if !ok {
			return nil, nil, verr.WithDetails(verr.ErrInvalidInput, map[string]string{
				"previous-difficulty": "not a decimal integer",
			})
		}
		oracle := relay.NewStaticOracle(current, previous)
		return spv.New(oracle, factor), func() {}, nil
	}

	rpcURL := verifyRelayRPC
	if rpcURL == "" {
		rpcURL = cfg.Relay.RPC
	}
	contract := verifyRelayAddr
	if contract == "" {
		contract = cfg.Relay.Contract
	}
	if contract == "" {
		return nil, nil, verr.WithSuggestion(verr.ErrOracleUnavailable,
			"set --relay-contract (or relay.contract in config), or pass --current-difficulty/--previous-difficulty for offline verification")
	}

	oracle, err := relay.NewEthereumOracle(cmd.Context(), rpcURL, contract)
	if err != nil {
		return nil, nil, err
	}

	logger.Debug("using relay oracle at %s (contract %s)", rpcURL, contract)
	return spv.New(oracle, factor), oracle.Close, nil
}

func init() {
	for _, cmd := range []*cobra.Command{verifyProofCmd, verifyPaymentCmd, verifyControlCmd} {
		cmd.Flags().StringVar(&verifyTxFile, "tx", "", "transaction bundle file (YAML)")
		cmd.Flags().StringVar(&verifyProofFile, "proof", "", "SPV proof bundle file (YAML)")
		cmd.Flags().StringVar(&verifyRelayRPC, "relay-rpc", "", "Ethereum RPC endpoint for the relay oracle")
		cmd.Flags().StringVar(&verifyRelayAddr, "relay-contract", "", "light-relay contract address")
		cmd.Flags().StringVar(&verifyCurrentDiff, "current-difficulty", "", "current epoch difficulty (offline oracle)")
		cmd.Flags().StringVar(&verifyPreviousDiff, "previous-difficulty", "", "previous epoch difficulty (offline oracle)")
		cmd.Flags().Uint64Var(&verifyFactor, "difficulty-factor", 0, "required difficulty multiplier (default from config)")
		_ = cmd.MarkFlagRequired("tx")
		_ = cmd.MarkFlagRequired("proof")
	}

	verifyPaymentCmd.Flags().StringVar(&verifyAddress, "address", "", "claimed Bitcoin address")
	verifyPaymentCmd.Flags().Uint64Var(&verifyAmount, "amount", 0, "required payment amount in satoshis")
	_ = verifyPaymentCmd.MarkFlagRequired("address")
	_ = verifyPaymentCmd.MarkFlagRequired("amount")

	verifyControlCmd.Flags().StringVar(&verifyAddress, "address", "", "claimed Bitcoin address")
	verifyControlCmd.Flags().StringVar(&verifyChallenge, "challenge", "", "expected 32-byte challenge (hex)")
	_ = verifyControlCmd.MarkFlagRequired("address")
	_ = verifyControlCmd.MarkFlagRequired("challenge")

	verifyCmd.AddCommand(verifyProofCmd)
	verifyCmd.AddCommand(verifyPaymentCmd)
	verifyCmd.AddCommand(verifyControlCmd)
	rootCmd.AddCommand(verifyCmd)
}
