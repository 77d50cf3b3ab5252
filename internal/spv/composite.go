package spv

import (
	"context"

	"github.com/mrz1836/vigil/internal/btc/address"
	"github.com/mrz1836/vigil/internal/btc/script"
	"github.com/mrz1836/vigil/internal/btc/txn"
	verr "github.com/mrz1836/vigil/pkg/errors"
)

// Sentinel errors for the composite checks.
var (
	// ErrChallengeNotFound indicates no OP_RETURN output carried the
	// expected challenge value.
	ErrChallengeNotFound = &verr.VigilError{
		Code:     "CHALLENGE_NOT_FOUND",
		Message:  "transaction does not carry the expected challenge payload",
		ExitCode: verr.ExitProof,
	}

	// ErrOwnershipNotProven indicates no input spends from the claimed
	// address.
	ErrOwnershipNotProven = &verr.VigilError{
		Code:     "OWNERSHIP_NOT_PROVEN",
		Message:  "no transaction input spends from the claimed address",
		ExitCode: verr.ExitProof,
	}

	// ErrPaymentNotFound indicates no output pays the required amount to
	// the claimed address.
	ErrPaymentNotFound = &verr.VigilError{
		Code:     "PAYMENT_NOT_FOUND",
		Message:  "no transaction output pays the required amount to the address",
		ExitCode: verr.ExitProof,
	}
)

// VerifyWalletControl proves that the holder of the claimed address
// broadcast a real, sufficiently buried transaction carrying the expected
// challenge: the SPV proof must pass, an OP_RETURN output must carry the
// challenge, and an input must spend from the address. Checks short-circuit
// on the first failure.
func (v *Validator) VerifyWalletControl(
	ctx context.Context,
	claimedAddress string,
	challenge [32]byte,
	tx txn.Transaction,
	proof Proof,
) ([32]byte, error) {
	var zero [32]byte

	addr, err := address.Decode(claimedAddress)
	if err != nil {
		return zero, err
	}

	txID, err := v.ValidateProof(ctx, tx, proof)
	if err != nil {
		return zero, err
	}

	found, err := script.VerifyOpReturnPayload(tx.OutputVector, challenge)
	if err != nil {
		return zero, err
	}
	if !found {
		return zero, ErrChallengeNotFound
	}

	owned, err := script.VerifyInputOwnership(tx.InputVector, addr)
	if err != nil {
		return zero, err
	}
	if !owned {
		return zero, ErrOwnershipNotProven
	}

	return txID, nil
}

// VerifyRedemptionFulfillment proves that a real, sufficiently buried
// transaction pays at least amount satoshis to the claimed address.
func (v *Validator) VerifyRedemptionFulfillment(
	ctx context.Context,
	claimedAddress string,
	amount uint64,
	tx txn.Transaction,
	proof Proof,
) ([32]byte, error) {
	var zero [32]byte

	addr, err := address.Decode(claimedAddress)
	if err != nil {
		return zero, err
	}

	txID, err := v.ValidateProof(ctx, tx, proof)
	if err != nil {
		return zero, err
	}

	paid, err := script.VerifyPaymentOutput(tx.OutputVector, addr, amount)
	if err != nil {
		return zero, err
	}
	if !paid {
		return zero, ErrPaymentNotFound
	}

	return txID, nil
}
