package contract

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// New creates a contract in Draft. validUntil, when set, must be after
// validFrom.
func New(title, description string, terms DataProcessingTerms, infra InfrastructureRequirements, validFrom time.Time, validUntil *time.Time) (*Contract, error) {
	if validUntil != nil && !validUntil.After(validFrom) {
		return nil, fmt.Errorf("%w: validUntil must be after validFrom", ErrInvalidContractState)
	}

	now := time.Now().UTC()
	return &Contract{
		ID:                         uuid.New(),
		Title:                      title,
		Description:                description,
		ProcessingTerms:            terms,
		InfrastructureRequirements: infra,
		Status:                     StatusDraft,
		CreatedAt:                  now,
		UpdatedAt:                  now,
		ValidFrom:                  validFrom,
		ValidUntil:                 validUntil,
	}, nil
}

// AddParty registers a party on the contract. Parties must be added before
// any signing begins: once a signature exists the party set is frozen so the
// canonical signing message stays stable for every signer.
//
// The data consumer and infrastructure provider roles are singular; multiple
// distinct data providers are permitted. A DID may appear at most once.
func (c *Contract) AddParty(did string, role PartyRole) error {
	if c.Status != StatusDraft && c.Status != StatusPendingSignatures {
		return fmt.Errorf("%w: cannot add party in status %s", ErrInvalidContractState, c.Status)
	}
	if c.hasAnySignature() {
		return fmt.Errorf("%w: cannot add party after signing has begun", ErrInvalidContractState)
	}

	for _, p := range c.Parties {
		if p.DID == did {
			return fmt.Errorf("%w: %s is already a party", ErrDuplicateParty, did)
		}
	}

	switch role {
	case RoleDataConsumer, RoleInfrastructureProvider:
		if c.partyByRole(role) != nil {
			return fmt.Errorf("%w: contract already has a %s", ErrDuplicateParty, role)
		}
	case RoleDataProvider:
		// any number of distinct providers
	default:
		return fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}

	c.Parties = append(c.Parties, Party{DID: did, Role: role})
	c.UpdatedAt = time.Now().UTC()
	return nil
}

// Terminate moves the contract to Terminated and records the reason.
// Terminating an already terminal contract is an error, not a no-op.
func (c *Contract) Terminate(reason string) error {
	if c.Status == StatusTerminated || c.Status == StatusExpired {
		return fmt.Errorf("%w: contract is already %s", ErrInvalidContractState, c.Status)
	}
	c.Status = StatusTerminated
	c.TerminationReason = reason
	c.UpdatedAt = time.Now().UTC()
	return nil
}

// IsFullySigned reports whether the signing quorum is complete: the role
// cardinality invariant holds and every registered party carries a verified
// signature.
func (c *Contract) IsFullySigned() bool {
	if !c.hasRoleQuorum() {
		return false
	}
	for _, p := range c.Parties {
		if p.Signature == nil {
			return false
		}
	}
	return true
}

// IsExpired reports whether the contract's validity window has passed.
// Expiration is derived, not auto-transitioned; callers decide when to
// persist an Expired status.
func (c *Contract) IsExpired(now time.Time) bool {
	return c.ValidUntil != nil && now.After(*c.ValidUntil)
}

// SigningMessage renders the canonical message every party signs. It is
// derived only from fields fixed by the time signing begins: contract id,
// title, the party identifiers per role, the validity start and a digest of
// the terms. It must never embed the current time, otherwise the message
// verified would not be the message originally signed.
func (c *Contract) SigningMessage() (string, error) {
	termsHash, err := canonicalSHA256(struct {
		Processing     DataProcessingTerms        `json:"processing"`
		Infrastructure InfrastructureRequirements `json:"infrastructure"`
	}{c.ProcessingTerms, c.InfrastructureRequirements})
	if err != nil {
		return "", fmt.Errorf("failed to hash contract terms: %w", err)
	}

	var providers []string
	var consumer, infra string
	for _, p := range c.Parties {
		switch p.Role {
		case RoleDataProvider:
			providers = append(providers, p.DID)
		case RoleDataConsumer:
			consumer = p.DID
		case RoleInfrastructureProvider:
			infra = p.DID
		}
	}
	sort.Strings(providers)

	return fmt.Sprintf(
		"Contract Signing Request:\nContract ID: %s\nTitle: %s\nData Consumer: %s\nInfrastructure Provider: %s\nData Providers: %s\nValid From: %s\nTerms Hash: %s",
		c.ID, c.Title, consumer, infra, strings.Join(providers, ","),
		c.ValidFrom.UTC().Format(time.RFC3339), termsHash,
	), nil
}

// party returns the party with the given DID, or nil.
func (c *Contract) party(did string) *Party {
	for i := range c.Parties {
		if c.Parties[i].DID == did {
			return &c.Parties[i]
		}
	}
	return nil
}

// partyByRole returns the first party with the given role, or nil.
func (c *Contract) partyByRole(role PartyRole) *Party {
	for i := range c.Parties {
		if c.Parties[i].Role == role {
			return &c.Parties[i]
		}
	}
	return nil
}

func (c *Contract) hasAnySignature() bool {
	for _, p := range c.Parties {
		if p.Signature != nil {
			return true
		}
	}
	return false
}

// hasRoleQuorum checks the cardinality invariant: at least one data
// provider, exactly one data consumer, exactly one infrastructure provider.
func (c *Contract) hasRoleQuorum() bool {
	var providers, consumers, infras int
	for _, p := range c.Parties {
		switch p.Role {
		case RoleDataProvider:
			providers++
		case RoleDataConsumer:
			consumers++
		case RoleInfrastructureProvider:
			infras++
		}
	}
	return providers >= 1 && consumers == 1 && infras == 1
}
