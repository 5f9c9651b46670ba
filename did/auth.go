package did

import "context"

// Authenticator composes challenge issuance with signature verification to
// implement challenge-response login. It holds no per-challenge state;
// callers persist the issued challenge and present it back on verification.
type Authenticator struct {
	verifier *Verifier
	cfg      ChallengeConfig
}

// NewAuthenticator creates an authenticator using the given verifier and
// challenge configuration.
func NewAuthenticator(verifier *Verifier, cfg ChallengeConfig) *Authenticator {
	return &Authenticator{verifier: verifier, cfg: cfg}
}

// IssueChallenge issues a fresh challenge bound to the DID. The DID is
// format-checked up front so malformed identifiers fail before a round trip.
func (a *Authenticator) IssueChallenge(did string) (*AuthChallenge, error) {
	if _, err := Method(did); err != nil {
		return nil, err
	}
	return NewChallengeWithConfig(did, a.cfg)
}

// Authenticate validates the challenge window, then verifies the signature
// over the challenge's canonical message using the referenced verification
// method. Expiration is checked first so an expired challenge is always
// reported as ErrChallengeExpired, regardless of the signature's validity.
func (a *Authenticator) Authenticate(ctx context.Context, challenge *AuthChallenge, signature, verificationMethodID string) (bool, error) {
	if err := challenge.CheckNotExpired(); err != nil {
		return false, err
	}
	return a.verifier.VerifySignature(ctx, challenge.DID, challenge.Message(), signature, verificationMethodID)
}
