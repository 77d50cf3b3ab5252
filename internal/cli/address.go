//nolint:gochecknoglobals,gochecknoinits // Cobra CLI pattern
package cli

import (
	"encoding/hex"

	"github.com/spf13/cobra"

	"github.com/mrz1836/vigil/internal/btc/address"
	"github.com/mrz1836/vigil/internal/config"
	"github.com/mrz1836/vigil/internal/xpub"
	verr "github.com/mrz1836/vigil/pkg/errors"
)

var (
	deriveNetwork string
	derivePubKey  string
	deriveXPub    string
	deriveIndex   uint32
	deriveCount   uint32
)

var addressCmd = &cobra.Command{
	Use:   "address",
	Short: "Decode and derive Bitcoin addresses",
}

var addressDecodeCmd = &cobra.Command{
	Use:   "decode <address>",
	Short: "Decode an address to its script type and hash",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		addr, err := address.Decode(args[0])
		if err != nil {
			return err
		}

		logger.Debug("decoded address %s as %s", args[0], addr.Type)

		return formatter.Print(map[string]string{
			"address":     args[0],
			"script_type": addr.Type.String(),
			"network":     addr.Network.String(),
			"script_hash": addr.HashHex(),
		})
	},
}

var addressDeriveCmd = &cobra.Command{
	Use:   "derive",
	Short: "Derive a P2WPKH address from a public key or account xpub",
	RunE: func(_ *cobra.Command, _ []string) error {
		network, err := config.ParseNetwork(deriveNetwork)
		if err != nil {
			return err
		}

		switch {
		case derivePubKey != "":
			return deriveFromPubKey(network)
		case deriveXPub != "":
			return deriveFromXPub(network)
		default:
			return verr.WithSuggestion(verr.ErrInvalidInput,
				"provide --pubkey (128 hex chars, uncompressed X||Y) or --xpub")
		}
	},
}

// deriveFromPubKey derives one address from an uncompressed public key.
func deriveFromPubKey(network address.Network) error {
	keyBytes, err := hex.DecodeString(derivePubKey)
	if err != nil {
		return verr.WithDetails(verr.ErrInvalidInput, map[string]string{
			"pubkey": "not valid hex",
		})
	}

	addr, err := address.DeriveP2WPKH(keyBytes, network)
	if err != nil {
		return err
	}

	return formatter.Print(map[string]string{
		"address": addr,
		"network": network.String(),
	})
}

// deriveFromXPub derives one or more watch-only addresses from an xpub.
func deriveFromXPub(network address.Network) error {
	count := deriveCount
	if count == 0 {
		count = 1
	}

	derived, err := xpub.DeriveRange(deriveXPub, deriveIndex, count, network)
	if err != nil {
		return err
	}

	if len(derived) == 1 {
		return formatter.Print(derived[0])
	}
	return formatter.Print(derived)
}

func init() {
	addressDeriveCmd.Flags().StringVar(&deriveNetwork, "network", "mainnet", "network: mainnet or testnet")
	addressDeriveCmd.Flags().StringVar(&derivePubKey, "pubkey", "", "uncompressed public key (128 hex chars, X||Y)")
	addressDeriveCmd.Flags().StringVar(&deriveXPub, "xpub", "", "account extended public key")
	addressDeriveCmd.Flags().Uint32Var(&deriveIndex, "index", 0, "address index")
	addressDeriveCmd.Flags().Uint32Var(&deriveCount, "count", 1, "number of consecutive addresses")

	addressCmd.AddCommand(addressDecodeCmd)
	addressCmd.AddCommand(addressDeriveCmd)
	rootCmd.AddCommand(addressCmd)
}
