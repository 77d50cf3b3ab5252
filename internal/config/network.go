package config

import (
	"math"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/mrz1836/vigil/internal/btc/address"
	verr "github.com/mrz1836/vigil/pkg/errors"
)

// MaxTypoDistance is the maximum Levenshtein distance to consider a
// suggestion.
const MaxTypoDistance = 3

// knownNetworks lists the accepted network names.
//
//nolint:gochecknoglobals // Fixed vocabulary for suggestions
var knownNetworks = []string{"mainnet", "testnet"}

// ParseNetwork maps a network name to its address network. Unknown names
// get a did-you-mean suggestion when a known name is close enough.
func ParseNetwork(name string) (address.Network, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "mainnet", "bitcoin", "main":
		return address.Mainnet, nil
	case "testnet", "test":
		return address.Testnet, nil
	}

	err := verr.WithDetails(verr.ErrUnknownNetwork, map[string]string{
		"network": name,
	})
	if suggestion := SuggestNetwork(name); suggestion != "" {
		err = verr.WithSuggestion(err, "did you mean \""+suggestion+"\"?")
	}
	return address.Mainnet, err
}

// SuggestNetwork finds the closest known network name to the input using
// Levenshtein distance. Returns empty string if nothing is close enough.
func SuggestNetwork(input string) string {
	input = strings.ToLower(strings.TrimSpace(input))

	minDist := math.MaxInt
	var suggestion string

	for _, name := range knownNetworks {
		dist := levenshtein.ComputeDistance(input, name)
		if dist < minDist {
			minDist = dist
			suggestion = name
		}
	}

	if minDist <= MaxTypoDistance {
		return suggestion
	}
	return ""
}
