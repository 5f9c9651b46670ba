// Package config exposes the environment-driven settings of the
// authentication and signature core.
package config

import (
	"os"
	"strconv"
	"time"
)

// Default values
const (
	DefaultCacheTTL         = 5 * time.Minute
	DefaultChallengeTimeout = 5 * time.Minute
	DefaultNonceBytes       = 32
	DefaultResolverURL      = "http://localhost:8090/1.0/identifiers"
	DefaultRPC              = "http://localhost:8545"
	// DefaultRegistryAddress is the canonical ERC-1056 registry deployment.
	DefaultRegistryAddress = "0xdca7ef03e98e0dc2b855be647c39abe984fcf21b"
)

// Environment variable names
const (
	EnvCacheTTL         = "DID_CACHE_TTL_SECONDS"
	EnvChallengeTimeout = "DID_CHALLENGE_TIMEOUT_SECONDS"
	EnvNonceBytes       = "DID_CHALLENGE_NONCE_BYTES"
	EnvResolverURL      = "DID_RESOLVER_URL"
	EnvRPC              = "DID_ETH_RPC_URL"
	EnvRegistryAddress  = "DID_ETH_REGISTRY_ADDRESS"
)

// CacheTTL returns the DID document cache TTL from the environment or the
// default value.
func CacheTTL() time.Duration {
	if v := os.Getenv(EnvCacheTTL); v != "" {
		if secs, err := strconv.ParseInt(v, 10, 64); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return DefaultCacheTTL
}

// ChallengeTimeout returns the authentication challenge validity window from
// the environment or the default value.
func ChallengeTimeout() time.Duration {
	if v := os.Getenv(EnvChallengeTimeout); v != "" {
		if secs, err := strconv.ParseInt(v, 10, 64); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return DefaultChallengeTimeout
}

// NonceBytes returns the challenge nonce size from the environment or the
// default value.
func NonceBytes() int {
	if v := os.Getenv(EnvNonceBytes); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return DefaultNonceBytes
}

// ResolverURL returns the HTTP DID resolver base URL from the environment or
// the default value.
func ResolverURL() string {
	if v := os.Getenv(EnvResolverURL); v != "" {
		return v
	}
	return DefaultResolverURL
}

// RPC returns the Ethereum RPC URL from the environment or the default value.
func RPC() string {
	if v := os.Getenv(EnvRPC); v != "" {
		return v
	}
	return DefaultRPC
}

// RegistryAddress returns the ERC-1056 registry contract address from the
// environment or the default value.
func RegistryAddress() string {
	if v := os.Getenv(EnvRegistryAddress); v != "" {
		return v
	}
	return DefaultRegistryAddress
}
