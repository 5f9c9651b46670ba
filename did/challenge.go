package did

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ChallengeConfig controls challenge issuance.
type ChallengeConfig struct {
	// Timeout is how long an issued challenge remains valid.
	Timeout time.Duration
	// NonceBytes is the length of the random nonce before hex encoding.
	NonceBytes int
}

// DefaultChallengeConfig returns the production defaults: a five minute
// window and a 32-byte nonce (64 hex characters).
func DefaultChallengeConfig() ChallengeConfig {
	return ChallengeConfig{
		Timeout:    5 * time.Minute,
		NonceBytes: 32,
	}
}

// AuthChallenge is a time-bounded authentication challenge bound to a DID.
// A challenge is stateless once issued: its validity derives purely from its
// own timestamps, so no server-side locking is needed to check it.
type AuthChallenge struct {
	ChallengeID string    `json:"challengeId"`
	DID         string    `json:"did"`
	Nonce       string    `json:"nonce"`
	IssuedAt    time.Time `json:"issuedAt"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// NewChallenge issues a challenge for a DID with the default configuration.
func NewChallenge(did string) (*AuthChallenge, error) {
	return NewChallengeWithConfig(did, DefaultChallengeConfig())
}

// NewChallengeWithConfig issues a challenge for a DID.
func NewChallengeWithConfig(did string, cfg ChallengeConfig) (*AuthChallenge, error) {
	nonce, err := generateNonce(cfg.NonceBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to generate challenge nonce: %w", err)
	}

	now := time.Now().UTC()
	return &AuthChallenge{
		ChallengeID: uuid.NewString(),
		DID:         did,
		Nonce:       nonce,
		IssuedAt:    now,
		ExpiresAt:   now.Add(cfg.Timeout),
	}, nil
}

// CheckNotExpired fails closed once the current time is strictly past
// ExpiresAt. At exactly ExpiresAt the challenge is still valid.
func (c *AuthChallenge) CheckNotExpired() error {
	if time.Now().After(c.ExpiresAt) {
		return fmt.Errorf("%w: challenge %s", ErrChallengeExpired, c.ChallengeID)
	}
	return nil
}

// Message renders the canonical string the client must sign. It embeds only
// fields fixed at issuance, never the current wall-clock time, so any
// verifier can regenerate it byte for byte at any later point.
func (c *AuthChallenge) Message() string {
	return fmt.Sprintf(
		"Sign this challenge for DID authentication:\nChallenge ID: %s\nDID: %s\nNonce: %s\nIssued At: %s",
		c.ChallengeID, c.DID, c.Nonce, c.IssuedAt.UTC().Format(time.RFC3339),
	)
}

func generateNonce(size int) (string, error) {
	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
