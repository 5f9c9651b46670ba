package did

import "errors"

// Sentinel errors for the DID authentication core. Callers dispatch on these
// with errors.Is; every failure path wraps exactly one of them.
var (
	// ErrInvalidFormat is returned for a DID string that does not match
	// did:<method>:<method-specific-id>. Not retryable.
	ErrInvalidFormat = errors.New("invalid DID format")

	// ErrResolutionFailed is returned when no resolver is registered for a
	// DID method or the resolver itself fails. Callers may retry with backoff.
	ErrResolutionFailed = errors.New("DID resolution failed")

	// ErrVerificationMethodNotFound is returned when a resolved DID document
	// does not contain the referenced verification method.
	ErrVerificationMethodNotFound = errors.New("verification method not found")

	// ErrInvalidSignature covers both malformed encodings and cryptographic
	// mismatches. It is always surfaced, never treated as "maybe valid".
	ErrInvalidSignature = errors.New("invalid signature")

	// ErrChallengeExpired is returned when an authentication challenge is
	// presented past its expiration. The caller must issue a fresh challenge.
	ErrChallengeExpired = errors.New("challenge expired")
)
