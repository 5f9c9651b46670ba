// Package cms wires the DID authentication core and the contract signing
// service around a shared method-dispatched resolver.
package cms

import (
	"time"

	"github.com/gitmujoshi/cms/config"
	"github.com/gitmujoshi/cms/contract"
	"github.com/gitmujoshi/cms/did"
)

// Core bundles the authentication and signing entry points. All components
// share one resolver, so a DID document resolved during login is served from
// cache when the same party signs a contract.
type Core struct {
	Resolver *did.MultiResolver
	Auth     *did.Authenticator
	Signing  *contract.SigningService
}

// New creates a core with explicit settings. Register per-method resolvers
// on Core.Resolver before serving.
func New(cacheTTL time.Duration, challengeCfg did.ChallengeConfig, opts ...did.Option) *Core {
	resolver := did.NewMultiResolver(cacheTTL, opts...)
	verifier := did.NewVerifier(resolver)
	return &Core{
		Resolver: resolver,
		Auth:     did.NewAuthenticator(verifier, challengeCfg),
		Signing:  contract.NewSigningService(verifier),
	}
}

// Default creates a core from environment-driven configuration, with
// document validation enabled.
func Default() *Core {
	cfg := did.ChallengeConfig{
		Timeout:    config.ChallengeTimeout(),
		NonceBytes: config.NonceBytes(),
	}
	return New(config.CacheTTL(), cfg, did.WithDocumentValidation())
}
