package config

// DefaultRelayRPCURL is the default Ethereum RPC endpoint.
// Uses PublicNode (Allnodes), a privacy-first provider that requires no API key.
const DefaultRelayRPCURL = "https://ethereum-rpc.publicnode.com"

// Defaults returns the default configuration.
func Defaults() *Config {
	return &Config{
		Version: 1,
		Home:    "~/.vigil",
		Network: "mainnet",
		Proof: ProofConfig{
			DifficultyFactor: 6,
			MaxHeaders:       2016,
		},
		Relay: RelayConfig{
			RPC:           DefaultRelayRPCURL,
			Contract:      "",
			RatePerSecond: 5,
			Burst:         10,
		},
		Output: OutputConfig{
			DefaultFormat: "auto",
			Verbose:       false,
		},
		Logging: LoggingConfig{
			Level: "error",
			File:  "~/.vigil/vigil.log",
		},
	}
}
