package relay

import (
	"context"
	"math/big"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/mrz1836/vigil/internal/spv"
	verr "github.com/mrz1836/vigil/pkg/errors"
)

// Light-relay contract methods. The relay tracks Bitcoin retarget epochs
// on Ethereum and exposes the two difficulties a proof may claim.
const (
	methodCurrentEpochDifficulty = "getCurrentEpochDifficulty()"
	methodPrevEpochDifficulty    = "getPrevEpochDifficulty()"
)

// Sentinel errors.
var (
	// ErrInvalidContract indicates a malformed relay contract address.
	ErrInvalidContract = &verr.VigilError{
		Code:     "INVALID_CONTRACT_ADDRESS",
		Message:  "invalid relay contract address",
		ExitCode: verr.ExitInput,
	}

	// ErrRelayCall indicates a failed contract read.
	ErrRelayCall = &verr.VigilError{
		Code:     "ORACLE_UNAVAILABLE",
		Message:  "relay contract call failed",
		ExitCode: verr.ExitOracle,
	}
)

// Compile-time interface check
var _ spv.DifficultyOracle = (*EthereumOracle)(nil)

// EthereumOracle reads epoch difficulties from a light-relay contract via
// eth_call. Reads are rate limited and retried; the validator above sees a
// single blocking read.
type EthereumOracle struct {
	client   *ethclient.Client
	endpoint string
	contract common.Address
	limiter  *RateLimiter
	retryCfg RetryConfig
}

// NewEthereumOracle connects to an Ethereum RPC endpoint and targets the
// given relay contract.
func NewEthereumOracle(ctx context.Context, rpcURL, contractAddress string) (*EthereumOracle, error) {
	if !common.IsHexAddress(contractAddress) {
		return nil, verr.WithDetails(ErrInvalidContract, map[string]string{
			"address": contractAddress,
		})
	}

	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, verr.Wrap(verr.ErrOracleUnavailable, "dialing relay RPC")
	}

	return &EthereumOracle{
		client:   client,
		endpoint: rpcURL,
		contract: common.HexToAddress(contractAddress),
		limiter:  DefaultRateLimiter(),
		retryCfg: DefaultRetryConfig(),
	}, nil
}

// Close releases the underlying RPC connection.
func (o *EthereumOracle) Close() {
	o.client.Close()
}

// CurrentEpochDifficulty reads the current retarget-epoch difficulty.
func (o *EthereumOracle) CurrentEpochDifficulty(ctx context.Context) (*big.Int, error) {
	return o.readUint256(ctx, methodCurrentEpochDifficulty)
}

// PreviousEpochDifficulty reads the previous retarget-epoch difficulty.
func (o *EthereumOracle) PreviousEpochDifficulty(ctx context.Context) (*big.Int, error) {
	return o.readUint256(ctx, methodPrevEpochDifficulty)
}

// readUint256 eth_calls a no-argument uint256 getter on the relay contract.
func (o *EthereumOracle) readUint256(ctx context.Context, method string) (*big.Int, error) {
	if err := o.limiter.Wait(ctx, o.endpoint); err != nil {
		return nil, verr.Wrap(verr.ErrOracleUnavailable, "rate limiter interrupted")
	}

	selector := crypto.Keccak256([]byte(method))[:4]
	msg := ethereum.CallMsg{
		To:   &o.contract,
		Data: selector,
	}

	result, err := RetryWithConfig(ctx, o.retryCfg, func() ([]byte, error) {
		out, callErr := o.client.CallContract(ctx, msg, nil)
		if callErr != nil {
			// RPC transport hiccups are worth retrying; a revert is not,
			// but the relay getters cannot revert.
			return nil, WrapRetryable(callErr)
		}
		return out, nil
	})
	if err != nil {
		return nil, verr.Wrap(ErrRelayCall, "calling %s", method)
	}

	if len(result) != 32 {
		return nil, verr.WithDetails(ErrRelayCall, map[string]string{
			"method": method,
			"reason": "unexpected return length",
		})
	}

	return new(big.Int).SetBytes(result), nil
}
