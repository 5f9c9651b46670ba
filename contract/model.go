// Package contract models multi-party data processing contracts and the
// quorum-based signing state machine that activates them. Persistence of
// contracts, parties and signatures belongs to the calling service; this
// package defines the in-memory invariants and transition rules.
package contract

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// PartyRole identifies a party's role in a contract. A contract needs at
// least one data provider, exactly one data consumer and exactly one
// infrastructure provider before it can become active.
type PartyRole string

const (
	RoleDataProvider           PartyRole = "DATA_PROVIDER"
	RoleDataConsumer           PartyRole = "DATA_CONSUMER"
	RoleInfrastructureProvider PartyRole = "INFRASTRUCTURE_PROVIDER"
)

// Status is the lifecycle state of a contract.
type Status string

const (
	StatusDraft             Status = "DRAFT"
	StatusPendingSignatures Status = "PENDING_SIGNATURES"
	StatusActive            Status = "ACTIVE"
	StatusTerminated        Status = "TERMINATED"
	StatusExpired           Status = "EXPIRED"
)

// Contract-state errors. Each failed operation leaves the contract
// unmodified.
var (
	ErrUnauthorizedSigner   = errors.New("not a party to this contract")
	ErrAlreadySigned        = errors.New("party has already signed")
	ErrInvalidContractState = errors.New("invalid contract state")
	ErrDuplicateParty       = errors.New("duplicate contract party")
	ErrInvalidRole          = errors.New("invalid party role")
)

// SignatureProof records how a party's signature was produced, in the shape
// of a linked-data proof.
type SignatureProof struct {
	Type               string    `json:"type"`
	Created            time.Time `json:"created"`
	VerificationMethod string    `json:"verificationMethod"`
	ProofPurpose       string    `json:"proofPurpose"`
	ProofValue         string    `json:"proofValue"`
}

// Party is a contract participant identified by DID. SignedAt and Signature
// remain nil until the party's signature has been cryptographically
// verified and committed.
type Party struct {
	DID       string          `json:"did"`
	Role      PartyRole       `json:"role"`
	SignedAt  *time.Time      `json:"signedAt,omitempty"`
	Signature *SignatureProof `json:"signature,omitempty"`
}

// DataProcessingTerms describes what the consumer may do with provided data.
type DataProcessingTerms struct {
	DataDescription      string   `json:"dataDescription"`
	AllowedOperations    []string `json:"allowedOperations"`
	RetentionPeriodDays  int      `json:"retentionPeriodDays"`
	AccessControls       []string `json:"accessControls"`
	SecurityRequirements []string `json:"securityRequirements"`
}

// InfrastructureRequirements describes the execution environment the
// infrastructure provider must supply.
type InfrastructureRequirements struct {
	EnclaveType             string   `json:"enclaveType"`
	AttestationType         string   `json:"attestationType"`
	SecurityLevel           string   `json:"securityLevel"`
	Certifications          []string `json:"certifications"`
	PerformanceRequirements []string `json:"performanceRequirements"`
}

// Contract is a multi-party agreement. Status transitions are driven by the
// signing state machine: Draft → PendingSignatures → Active, with
// Terminated reachable from any non-terminal state.
type Contract struct {
	ID                         uuid.UUID                  `json:"id"`
	Title                      string                     `json:"title"`
	Description                string                     `json:"description"`
	Parties                    []Party                    `json:"parties"`
	ProcessingTerms            DataProcessingTerms        `json:"processingTerms"`
	InfrastructureRequirements InfrastructureRequirements `json:"infrastructureRequirements"`
	Status                     Status                     `json:"status"`
	TerminationReason          string                     `json:"terminationReason,omitempty"`
	CreatedAt                  time.Time                  `json:"createdAt"`
	UpdatedAt                  time.Time                  `json:"updatedAt"`
	ValidFrom                  time.Time                  `json:"validFrom"`
	ValidUntil                 *time.Time                 `json:"validUntil,omitempty"`
}
