package config

import (
	"os"
	"strings"

	"github.com/mrz1836/go-sanitize"
)

// Environment variable names.
const (
	EnvHome          = "VIGIL_HOME"
	EnvNetwork       = "VIGIL_NETWORK"
	EnvRelayRPC      = "VIGIL_RELAY_RPC"
	EnvRelayContract = "VIGIL_RELAY_CONTRACT"
	EnvOutputFormat  = "VIGIL_OUTPUT_FORMAT"
	EnvVerbose       = "VIGIL_VERBOSE"
	EnvLogLevel      = "VIGIL_LOG_LEVEL"
)

// ApplyEnvironment applies environment variable overrides to the
// configuration.
func ApplyEnvironment(cfg *Config) {
	if v := os.Getenv(EnvHome); v != "" {
		cfg.Home = v
	}

	if v := os.Getenv(EnvNetwork); v != "" {
		cfg.Network = strings.ToLower(strings.TrimSpace(v))
	}

	if v := os.Getenv(EnvRelayRPC); v != "" {
		cfg.Relay.RPC = SanitizeURL(v)
	}

	if v := os.Getenv(EnvRelayContract); v != "" {
		cfg.Relay.Contract = strings.TrimSpace(v)
	}

	if v := os.Getenv(EnvOutputFormat); v != "" {
		cfg.Output.DefaultFormat = strings.ToLower(v)
	}

	if v := os.Getenv(EnvVerbose); v != "" {
		cfg.Output.Verbose = parseBool(v)
	}

	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
}

// SanitizeURL cleans a URL string by removing invalid characters and
// trimming whitespace.
func SanitizeURL(url string) string {
	return sanitize.URL(strings.TrimSpace(url))
}

// parseBool interprets common truthy strings.
func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}
