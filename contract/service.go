package contract

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/gitmujoshi/cms/did"
)

// SigningService verifies party signatures against their DID documents and
// drives the contract signing state machine. Signing is serialized per
// contract id: sign is verify-then-commit as a single logical transaction,
// and without serialization two concurrent calls for the same party could
// both pass the duplicate check before either commits.
type SigningService struct {
	verifier *did.Verifier

	mu    sync.Mutex // guards locks
	locks map[uuid.UUID]*sync.Mutex
}

// NewSigningService creates a signing service backed by the given verifier.
func NewSigningService(verifier *did.Verifier) *SigningService {
	return &SigningService{
		verifier: verifier,
		locks:    make(map[uuid.UUID]*sync.Mutex),
	}
}

func (s *SigningService) contractLock(id uuid.UUID) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[id]
	if !ok {
		l = &sync.Mutex{}
		s.locks[id] = l
	}
	return l
}

// Sign records a party's signature on the contract after verifying it
// cryptographically against the canonical signing message. On any failure
// the contract is left unchanged. On success the party's proof and signing
// time are committed and the status recomputed: Active once every party has
// signed, PendingSignatures otherwise.
func (s *SigningService) Sign(ctx context.Context, c *Contract, signerDID, signature, verificationMethodID string) error {
	l := s.contractLock(c.ID)
	l.Lock()
	defer l.Unlock()

	if c.Status != StatusDraft && c.Status != StatusPendingSignatures {
		return fmt.Errorf("%w: cannot sign contract in status %s", ErrInvalidContractState, c.Status)
	}

	party := c.party(signerDID)
	if party == nil {
		return fmt.Errorf("%w: %s on contract %s", ErrUnauthorizedSigner, signerDID, c.ID)
	}
	if party.Signature != nil {
		return fmt.Errorf("%w: %s", ErrAlreadySigned, signerDID)
	}

	message, err := c.SigningMessage()
	if err != nil {
		return err
	}

	method, err := s.verifier.LookupMethod(ctx, signerDID, verificationMethodID)
	if err != nil {
		return err
	}

	valid, err := s.verifier.VerifySignature(ctx, signerDID, message, signature, verificationMethodID)
	if err != nil {
		return err
	}
	if !valid {
		return fmt.Errorf("%w: signature rejected for %s on contract %s", did.ErrInvalidSignature, signerDID, c.ID)
	}

	now := time.Now().UTC()
	party.SignedAt = &now
	party.Signature = &SignatureProof{
		Type:               proofTypeFor(method.Type),
		Created:            now,
		VerificationMethod: verificationMethodID,
		ProofPurpose:       "contractSigning",
		ProofValue:         signature,
	}

	if c.IsFullySigned() {
		c.Status = StatusActive
	} else {
		c.Status = StatusPendingSignatures
	}
	c.UpdatedAt = now
	return nil
}

// Terminate terminates the contract on behalf of one of its parties.
func (s *SigningService) Terminate(c *Contract, reason, terminatorDID string) error {
	l := s.contractLock(c.ID)
	l.Lock()
	defer l.Unlock()

	if c.party(terminatorDID) == nil {
		return fmt.Errorf("%w: %s on contract %s", ErrUnauthorizedSigner, terminatorDID, c.ID)
	}
	return c.Terminate(reason)
}

// VerifyAllSignatures re-verifies every recorded signature against the
// canonical signing message, independent of the stored signed flags. It
// returns false when the role quorum is incomplete, any party has not
// signed, or any recorded signature fails verification. Verification fans
// out across parties; resolver errors abort with the underlying error.
func (s *SigningService) VerifyAllSignatures(ctx context.Context, c *Contract) (bool, error) {
	if !c.hasRoleQuorum() {
		return false, nil
	}

	message, err := c.SigningMessage()
	if err != nil {
		return false, err
	}

	var invalid atomic.Bool
	g, ctx := errgroup.WithContext(ctx)
	for i := range c.Parties {
		party := c.Parties[i]
		if party.Signature == nil {
			return false, nil
		}
		g.Go(func() error {
			valid, err := s.verifier.VerifySignature(ctx, party.DID, message, party.Signature.ProofValue, party.Signature.VerificationMethod)
			if err != nil {
				if errors.Is(err, did.ErrInvalidSignature) {
					invalid.Store(true)
					return nil
				}
				return err
			}
			if !valid {
				invalid.Store(true)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return false, err
	}
	return !invalid.Load(), nil
}

// proofTypeFor maps a verification method type to its proof type.
func proofTypeFor(methodType string) string {
	switch methodType {
	case did.TypeEd25519VerificationKey2018:
		return "Ed25519Signature2018"
	case did.TypeEcdsaSecp256k1VerificationKey2019:
		return "EcdsaSecp256k1Signature2019"
	default:
		return methodType
	}
}
