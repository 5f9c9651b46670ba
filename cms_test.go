package cms

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"testing"
	"time"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gitmujoshi/cms/did"
)

type staticResolver struct {
	doc *did.Document
}

func (s *staticResolver) Resolve(ctx context.Context, didstr string) (*did.Document, error) {
	return s.doc, nil
}

func TestDefaultWiring(t *testing.T) {
	core := Default()
	require.NotNil(t, core.Resolver)
	require.NotNil(t, core.Auth)
	require.NotNil(t, core.Signing)
}

func TestEndToEndAuthentication(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	doc := &did.Document{
		ID: "did:example:alice",
		VerificationMethod: []did.VerificationMethod{{
			ID:              "did:example:alice#keys-1",
			Type:            did.TypeEd25519VerificationKey2018,
			Controller:      "did:example:alice",
			PublicKeyBase58: base58.Encode(pub),
		}},
		Updated: time.Now().UTC(),
	}

	core := New(5*time.Minute, did.DefaultChallengeConfig(), did.WithDocumentValidation())
	core.Resolver.Register("example", &staticResolver{doc: doc})

	challenge, err := core.Auth.IssueChallenge("did:example:alice")
	require.NoError(t, err)

	signature := base58.Encode(ed25519.Sign(priv, []byte(challenge.Message())))
	valid, err := core.Auth.Authenticate(context.Background(), challenge, signature, "did:example:alice#keys-1")
	require.NoError(t, err)
	assert.True(t, valid)
}
