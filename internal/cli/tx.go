//nolint:gochecknoglobals,gochecknoinits // Cobra CLI pattern
package cli

import (
	"encoding/hex"

	"github.com/spf13/cobra"

	"github.com/mrz1836/vigil/internal/btc/txn"
)

var txParseFile string

var txCmd = &cobra.Command{
	Use:   "tx",
	Short: "Parse Bitcoin transactions",
}

// txSummary is the JSON/text projection of a parsed transaction.
type txSummary struct {
	TxID    string            `json:"txid"`
	Inputs  []txInputSummary  `json:"inputs"`
	Outputs []txOutputSummary `json:"outputs"`
}

type txInputSummary struct {
	Outpoint  string `json:"outpoint"`
	ScriptSig string `json:"script_sig"`
	Sequence  uint32 `json:"sequence"`
}

type txOutputSummary struct {
	Value  uint64 `json:"value"`
	Script string `json:"script"`
}

var txParseCmd = &cobra.Command{
	Use:   "parse",
	Short: "Validate and summarize a transaction bundle",
	RunE: func(_ *cobra.Command, _ []string) error {
		tx, err := loadTransaction(txParseFile)
		if err != nil {
			return err
		}

		if err := tx.Validate(); err != nil {
			return err
		}

		inputs, err := txn.ParseInputs(tx.InputVector)
		if err != nil {
			return err
		}
		outputs, err := txn.ParseOutputs(tx.OutputVector)
		if err != nil {
			return err
		}

		txID := tx.TxID()
		summary := txSummary{
			TxID:    hex.EncodeToString(txID[:]),
			Inputs:  make([]txInputSummary, 0, len(inputs)),
			Outputs: make([]txOutputSummary, 0, len(outputs)),
		}
		for _, in := range inputs {
			summary.Inputs = append(summary.Inputs, txInputSummary{
				Outpoint:  hex.EncodeToString(in.Outpoint),
				ScriptSig: hex.EncodeToString(in.ScriptSig),
				Sequence:  in.Sequence,
			})
		}
		for _, out := range outputs {
			summary.Outputs = append(summary.Outputs, txOutputSummary{
				Value:  out.Value,
				Script: hex.EncodeToString(out.Script),
			})
		}

		logger.Debug("parsed transaction %s: %d inputs, %d outputs",
			summary.TxID, len(inputs), len(outputs))

		return formatter.Print(summary)
	},
}

func init() {
	txParseCmd.Flags().StringVar(&txParseFile, "tx", "", "transaction bundle file (YAML)")
	_ = txParseCmd.MarkFlagRequired("tx")

	txCmd.AddCommand(txParseCmd)
	rootCmd.AddCommand(txCmd)
}
