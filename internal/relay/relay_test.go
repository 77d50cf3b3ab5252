package relay

import (
	"context"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticOracle(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	oracle := NewStaticOracle(big.NewInt(100), big.NewInt(90))

	current, err := oracle.CurrentEpochDifficulty(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(100), current.Int64())

	previous, err := oracle.PreviousEpochDifficulty(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(90), previous.Int64())
}

func TestStaticOracle_ReturnsCopies(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	oracle := NewStaticOracle(big.NewInt(100), big.NewInt(90))

	current, err := oracle.CurrentEpochDifficulty(ctx)
	require.NoError(t, err)
	current.SetInt64(0)

	again, err := oracle.CurrentEpochDifficulty(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(100), again.Int64())
}

func TestStaticOracle_MissingData(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	oracle := NewStaticOracle(nil, big.NewInt(90))
	_, err := oracle.CurrentEpochDifficulty(ctx)
	assert.ErrorIs(t, err, ErrNoDifficulty)

	oracle = NewStaticOracle(big.NewInt(100), nil)
	_, err = oracle.PreviousEpochDifficulty(ctx)
	assert.ErrorIs(t, err, ErrNoDifficulty)
}

func TestNewEthereumOracle_InvalidContract(t *testing.T) {
	t.Parallel()

	_, err := NewEthereumOracle(context.Background(), "http://127.0.0.1:8545", "not-an-address")
	assert.ErrorIs(t, err, ErrInvalidContract)
}
