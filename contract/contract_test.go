package contract

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTerms() DataProcessingTerms {
	return DataProcessingTerms{
		DataDescription:      "Clinical imaging dataset",
		AllowedOperations:    []string{"train", "evaluate"},
		RetentionPeriodDays:  30,
		AccessControls:       []string{"encryption-at-rest"},
		SecurityRequirements: []string{"attestation"},
	}
}

func testInfra() InfrastructureRequirements {
	return InfrastructureRequirements{
		EnclaveType:             "AWS Nitro",
		AttestationType:         "DCE",
		SecurityLevel:           "High",
		Certifications:          []string{"ISO27001"},
		PerformanceRequirements: []string{"4 vCPUs"},
	}
}

func testContract(t *testing.T) *Contract {
	t.Helper()
	until := time.Now().UTC().Add(30 * 24 * time.Hour)
	c, err := New("Test Contract", "Test Description", testTerms(), testInfra(), time.Now().UTC(), &until)
	require.NoError(t, err)
	return c
}

func TestNewContract(t *testing.T) {
	c := testContract(t)
	assert.Equal(t, StatusDraft, c.Status)
	assert.NotEqual(t, c.ID.String(), "00000000-0000-0000-0000-000000000000")
	assert.Empty(t, c.Parties)
}

func TestNewContractRejectsInvertedValidity(t *testing.T) {
	from := time.Now().UTC()
	until := from.Add(-time.Hour)
	_, err := New("Bad", "", testTerms(), testInfra(), from, &until)
	assert.ErrorIs(t, err, ErrInvalidContractState)
}

func TestAddPartyRoleCardinality(t *testing.T) {
	c := testContract(t)

	require.NoError(t, c.AddParty("did:example:consumer", RoleDataConsumer))
	err := c.AddParty("did:example:consumer2", RoleDataConsumer)
	assert.ErrorIs(t, err, ErrDuplicateParty)

	require.NoError(t, c.AddParty("did:example:infra", RoleInfrastructureProvider))
	err = c.AddParty("did:example:infra2", RoleInfrastructureProvider)
	assert.ErrorIs(t, err, ErrDuplicateParty)

	// multiple distinct data providers are fine
	require.NoError(t, c.AddParty("did:example:provider1", RoleDataProvider))
	require.NoError(t, c.AddParty("did:example:provider2", RoleDataProvider))

	// but the same DID may appear only once
	err = c.AddParty("did:example:provider1", RoleDataProvider)
	assert.ErrorIs(t, err, ErrDuplicateParty)
}

func TestAddPartyRejectsUnknownRole(t *testing.T) {
	c := testContract(t)
	err := c.AddParty("did:example:auditor", PartyRole("AUDITOR"))
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestAddPartyAfterSignatureFrozen(t *testing.T) {
	c := testContract(t)
	require.NoError(t, c.AddParty("did:example:provider", RoleDataProvider))
	require.NoError(t, c.AddParty("did:example:consumer", RoleDataConsumer))
	require.NoError(t, c.AddParty("did:example:infra", RoleInfrastructureProvider))

	now := time.Now().UTC()
	c.Parties[0].SignedAt = &now
	c.Parties[0].Signature = &SignatureProof{ProofValue: "sig"}
	c.Status = StatusPendingSignatures

	err := c.AddParty("did:example:late", RoleDataProvider)
	assert.ErrorIs(t, err, ErrInvalidContractState)
}

func TestTerminate(t *testing.T) {
	c := testContract(t)
	require.NoError(t, c.Terminate("budget withdrawn"))
	assert.Equal(t, StatusTerminated, c.Status)
	assert.Equal(t, "budget withdrawn", c.TerminationReason)

	err := c.Terminate("again")
	assert.ErrorIs(t, err, ErrInvalidContractState)
}

func TestIsFullySignedRequiresQuorum(t *testing.T) {
	c := testContract(t)
	require.NoError(t, c.AddParty("did:example:provider", RoleDataProvider))
	require.NoError(t, c.AddParty("did:example:consumer", RoleDataConsumer))

	// no infrastructure provider yet: even all-signed parties are not a quorum
	now := time.Now().UTC()
	for i := range c.Parties {
		c.Parties[i].SignedAt = &now
		c.Parties[i].Signature = &SignatureProof{ProofValue: "sig"}
	}
	assert.False(t, c.IsFullySigned())
}

func TestIsExpired(t *testing.T) {
	c := testContract(t)
	assert.False(t, c.IsExpired(time.Now()))
	assert.True(t, c.IsExpired(c.ValidUntil.Add(time.Second)))

	open, err := New("Open", "", testTerms(), testInfra(), time.Now().UTC(), nil)
	require.NoError(t, err)
	assert.False(t, open.IsExpired(time.Now().Add(1000*time.Hour)))
}

func TestSigningMessageDeterministic(t *testing.T) {
	c := testContract(t)
	require.NoError(t, c.AddParty("did:example:providerB", RoleDataProvider))
	require.NoError(t, c.AddParty("did:example:providerA", RoleDataProvider))
	require.NoError(t, c.AddParty("did:example:consumer", RoleDataConsumer))
	require.NoError(t, c.AddParty("did:example:infra", RoleInfrastructureProvider))

	first, err := c.SigningMessage()
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)
	second, err := c.SigningMessage()
	require.NoError(t, err)

	assert.Equal(t, first, second, "message must not embed the current time")
	assert.Contains(t, first, c.ID.String())
	assert.Contains(t, first, "did:example:providerA,did:example:providerB", "provider list is order-independent")
	assert.Contains(t, first, "Terms Hash: sha256:")
}

func TestSigningMessageChangesWithTerms(t *testing.T) {
	a := testContract(t)
	b := testContract(t)
	b.ProcessingTerms.RetentionPeriodDays = 90

	// align identity-bearing fields so only the terms differ
	b.ID = a.ID
	b.ValidFrom = a.ValidFrom

	msgA, err := a.SigningMessage()
	require.NoError(t, err)
	msgB, err := b.SigningMessage()
	require.NoError(t, err)
	assert.NotEqual(t, msgA, msgB)
}
