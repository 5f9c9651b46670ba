// Package did implements the decentralized-identity authentication core:
// method-dispatched DID resolution with a TTL cache, time-bounded
// challenge-response login, and signature verification across the
// Ed25519 and secp256k1 verification method types.
package did

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
)

// Supported verification method types.
const (
	TypeEd25519VerificationKey2018        = "Ed25519VerificationKey2018"
	TypeEcdsaSecp256k1VerificationKey2019 = "EcdsaSecp256k1VerificationKey2019"
)

// Document is a DID document as resolved at a point in time. It is an
// immutable snapshot; re-resolution may return a different document.
type Document struct {
	Context            []string             `json:"@context,omitempty"`
	ID                 string               `json:"id"`
	Controller         []string             `json:"controller,omitempty"`
	VerificationMethod []VerificationMethod `json:"verificationMethod"`
	Authentication     []string             `json:"authentication,omitempty"`
	AssertionMethod    []string             `json:"assertionMethod,omitempty"`
	Updated            time.Time            `json:"updated,omitempty"`
}

// VerificationMethod is a named public key entry within a DID document.
// The key encoding is canonical per type: Ed25519 keys are base58 in
// PublicKeyBase58, secp256k1 keys are hex in PublicKeyHex. Ethereum-backed
// documents may carry only BlockchainAccountID, in which case secp256k1
// signatures are checked by public key recovery.
type VerificationMethod struct {
	ID                  string `json:"id"`
	Type                string `json:"type"`
	Controller          string `json:"controller"`
	PublicKeyBase58     string `json:"publicKeyBase58,omitempty"`
	PublicKeyHex        string `json:"publicKeyHex,omitempty"`
	BlockchainAccountID string `json:"blockchainAccountId,omitempty"`
}

// Method extracts the method name from a DID string.
// "did:example:123" yields "example".
func Method(did string) (string, error) {
	parts := strings.SplitN(did, ":", 3)
	if len(parts) != 3 || parts[0] != "did" || parts[1] == "" || parts[2] == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidFormat, did)
	}
	return parts[1], nil
}

// Hash calculates the Keccak-256 hash of the canonicalized document,
// lowercase hex with 0x prefix. Two documents that differ only in JSON
// serialization order hash identically.
func (d *Document) Hash() (string, error) {
	raw, err := json.Marshal(d)
	if err != nil {
		return "", fmt.Errorf("failed to marshal DID document: %w", err)
	}

	var m map[string]interface{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return "", fmt.Errorf("failed to rebuild DID document for canonicalization: %w", err)
	}

	canon, err := canonicalizeDocument(m)
	if err != nil {
		return "", fmt.Errorf("failed to canonicalize DID document: %w", err)
	}

	return strings.ToLower(crypto.Keccak256Hash(canon).Hex()), nil
}

// findVerificationMethod returns the method with the given id, or nil.
func (d *Document) findVerificationMethod(id string) *VerificationMethod {
	for i := range d.VerificationMethod {
		if d.VerificationMethod[i].ID == id {
			return &d.VerificationMethod[i]
		}
	}
	return nil
}
