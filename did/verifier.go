package did

import (
	"bytes"
	"context"
	"crypto/ecdsa"
	"crypto/ed25519"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/mr-tron/base58"
)

// Verifier verifies signatures against verification methods found in
// resolved DID documents. It is pure apart from the resolver's cache read:
// it never mutates challenge or contract state.
type Verifier struct {
	resolver *MultiResolver
}

// NewVerifier creates a verifier backed by the given resolver.
func NewVerifier(resolver *MultiResolver) *Verifier {
	return &Verifier{resolver: resolver}
}

// LookupMethod resolves a DID and returns the verification method with the
// given id.
func (v *Verifier) LookupMethod(ctx context.Context, did, verificationMethodID string) (*VerificationMethod, error) {
	doc, err := v.resolver.Resolve(ctx, did)
	if err != nil {
		return nil, err
	}

	method := doc.findVerificationMethod(verificationMethodID)
	if method == nil {
		return nil, fmt.Errorf("%w: %q", ErrVerificationMethodNotFound, verificationMethodID)
	}
	return method, nil
}

// VerifySignature resolves the DID, locates the verification method and
// dispatches on its type. The message is verified as its raw UTF-8 bytes for
// Ed25519 and as its Keccak-256 digest for secp256k1.
func (v *Verifier) VerifySignature(ctx context.Context, did, message, signature, verificationMethodID string) (bool, error) {
	method, err := v.LookupMethod(ctx, did, verificationMethodID)
	if err != nil {
		return false, err
	}

	switch method.Type {
	case TypeEd25519VerificationKey2018:
		return verifyEd25519(message, signature, method.PublicKeyBase58)
	case TypeEcdsaSecp256k1VerificationKey2019:
		if method.PublicKeyHex == "" && method.BlockchainAccountID != "" {
			return verifySecp256k1Recovery(message, signature, method.BlockchainAccountID)
		}
		return verifySecp256k1(message, signature, method.PublicKeyHex)
	default:
		return false, fmt.Errorf("%w: unsupported verification method type %q", ErrResolutionFailed, method.Type)
	}
}

// verifyEd25519 checks a base58 signature over the raw message bytes with a
// base58 Ed25519 public key.
func verifyEd25519(message, signature, publicKeyB58 string) (bool, error) {
	pub, err := base58.Decode(publicKeyB58)
	if err != nil {
		return false, fmt.Errorf("%w: decode ed25519 public key: %v", ErrInvalidSignature, err)
	}
	if len(pub) != ed25519.PublicKeySize {
		return false, fmt.Errorf("%w: ed25519 public key must be %d bytes, got %d",
			ErrInvalidSignature, ed25519.PublicKeySize, len(pub))
	}

	sig, err := base58.Decode(signature)
	if err != nil {
		return false, fmt.Errorf("%w: decode ed25519 signature: %v", ErrInvalidSignature, err)
	}
	if len(sig) != ed25519.SignatureSize {
		return false, fmt.Errorf("%w: ed25519 signature must be %d bytes, got %d",
			ErrInvalidSignature, ed25519.SignatureSize, len(sig))
	}

	return ed25519.Verify(ed25519.PublicKey(pub), []byte(message), sig), nil
}

// verifySecp256k1 checks a hex signature over the Keccak-256 digest of the
// message with a hex secp256k1 public key (compressed or uncompressed).
// Signatures are accepted as 64-byte r‖s or 65-byte r‖s‖v compact form.
func verifySecp256k1(message, signature, publicKeyHex string) (bool, error) {
	keyBytes, err := hex.DecodeString(strings.TrimPrefix(publicKeyHex, "0x"))
	if err != nil {
		return false, fmt.Errorf("%w: decode secp256k1 public key: %v", ErrInvalidSignature, err)
	}
	pub, err := secp256k1.ParsePubKey(keyBytes)
	if err != nil {
		return false, fmt.Errorf("%w: parse secp256k1 public key: %v", ErrInvalidSignature, err)
	}

	sig, err := decodeCompactSignature(signature)
	if err != nil {
		return false, err
	}

	digest := ethcrypto.Keccak256([]byte(message))
	r := new(big.Int).SetBytes(sig[:32])
	s := new(big.Int).SetBytes(sig[32:])

	key := pub.ToECDSA()
	verifyKey := &ecdsa.PublicKey{Curve: btcec.S256(), X: key.X, Y: key.Y}
	return ecdsa.Verify(verifyKey, digest, r, s), nil
}

// verifySecp256k1Recovery checks a 65-byte recoverable signature against a
// CAIP-10 blockchain account id ("eip155:<chain>:<address>") by recovering
// the signing key and comparing its derived address.
func verifySecp256k1Recovery(message, signature, accountID string) (bool, error) {
	parts := strings.Split(accountID, ":")
	address := parts[len(parts)-1]

	sig, err := hex.DecodeString(strings.TrimPrefix(signature, "0x"))
	if err != nil {
		return false, fmt.Errorf("%w: decode secp256k1 signature: %v", ErrInvalidSignature, err)
	}
	if len(sig) != 65 {
		return false, fmt.Errorf("%w: recoverable secp256k1 signature must be 65 bytes, got %d",
			ErrInvalidSignature, len(sig))
	}

	// Normalize the recovery id: on-chain tooling emits V as 27/28.
	if sig[64] >= 27 {
		sig = bytes.Clone(sig)
		sig[64] -= 27
	}

	digest := ethcrypto.Keccak256([]byte(message))
	recovered, err := ethcrypto.SigToPub(digest, sig)
	if err != nil {
		return false, fmt.Errorf("%w: recover secp256k1 public key: %v", ErrInvalidSignature, err)
	}

	recoveredAddr := ethcrypto.PubkeyToAddress(*recovered).Hex()
	return strings.EqualFold(recoveredAddr, address), nil
}

// decodeCompactSignature accepts hex r‖s (64 bytes) or r‖s‖v (65 bytes) and
// returns the 64-byte r‖s form.
func decodeCompactSignature(signature string) ([]byte, error) {
	sig, err := hex.DecodeString(strings.TrimPrefix(signature, "0x"))
	if err != nil {
		return nil, fmt.Errorf("%w: decode secp256k1 signature: %v", ErrInvalidSignature, err)
	}
	switch len(sig) {
	case 65:
		return sig[:64], nil
	case 64:
		return sig, nil
	default:
		return nil, fmt.Errorf("%w: secp256k1 signature must be 64 or 65 bytes, got %d",
			ErrInvalidSignature, len(sig))
	}
}
