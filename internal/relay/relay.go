// Package relay provides difficulty oracles: sources for the current and
// previous Bitcoin retarget-epoch difficulty the SPV validator evaluates
// proofs against. The production implementation reads a light-relay
// contract on Ethereum; a static oracle serves offline verification and
// tests.
package relay

import (
	"context"
	"math/big"

	verr "github.com/mrz1836/vigil/pkg/errors"
)

// ErrNoDifficulty indicates an oracle configured without difficulty data.
var ErrNoDifficulty = &verr.VigilError{
	Code:     "ORACLE_UNAVAILABLE",
	Message:  "oracle has no difficulty data",
	ExitCode: verr.ExitOracle,
}

// StaticOracle serves fixed epoch difficulties. Used for offline
// verification where the caller asserts the difficulties out of band.
type StaticOracle struct {
	Current  *big.Int
	Previous *big.Int
}

// NewStaticOracle creates a static oracle from two difficulty values.
func NewStaticOracle(current, previous *big.Int) *StaticOracle {
	return &StaticOracle{Current: current, Previous: previous}
}

// CurrentEpochDifficulty returns the fixed current-epoch difficulty.
func (o *StaticOracle) CurrentEpochDifficulty(_ context.Context) (*big.Int, error) {
	if o.Current == nil {
		return nil, ErrNoDifficulty
	}
	return new(big.Int).Set(o.Current), nil
}

// PreviousEpochDifficulty returns the fixed previous-epoch difficulty.
func (o *StaticOracle) PreviousEpochDifficulty(_ context.Context) (*big.Int, error) {
	if o.Previous == nil {
		return nil, ErrNoDifficulty
	}
	return new(big.Int).Set(o.Previous), nil
}
