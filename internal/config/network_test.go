package config

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/vigil/internal/btc/address"
	verr "github.com/mrz1836/vigil/pkg/errors"
)

func TestParseNetwork(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  address.Network
	}{
		{name: "mainnet", input: "mainnet", want: address.Mainnet},
		{name: "bitcoin alias", input: "bitcoin", want: address.Mainnet},
		{name: "main alias", input: "main", want: address.Mainnet},
		{name: "testnet", input: "testnet", want: address.Testnet},
		{name: "test alias", input: "test", want: address.Testnet},
		{name: "case and whitespace", input: "  MainNet  ", want: address.Mainnet},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			network, err := ParseNetwork(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.want, network)
		})
	}
}

func TestParseNetwork_UnknownWithSuggestion(t *testing.T) {
	t.Parallel()

	_, err := ParseNetwork("mainet")
	require.Error(t, err)
	assert.True(t, errors.Is(err, verr.ErrUnknownNetwork))

	var ve *verr.VigilError
	require.True(t, errors.As(err, &ve))
	assert.Contains(t, ve.Suggestion, "mainnet")
}

func TestParseNetwork_UnknownWithoutSuggestion(t *testing.T) {
	t.Parallel()

	_, err := ParseNetwork("completely-unrelated")
	require.Error(t, err)

	var ve *verr.VigilError
	require.True(t, errors.As(err, &ve))
	assert.Empty(t, ve.Suggestion)
}

func TestSuggestNetwork(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "close to mainnet", input: "mainet", want: "mainnet"},
		{name: "close to testnet", input: "tstnet", want: "testnet"},
		{name: "case insensitive", input: "TESTNET", want: "testnet"},
		{name: "too far", input: "regtest-signet-thing", want: ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, SuggestNetwork(tc.input))
		})
	}
}
