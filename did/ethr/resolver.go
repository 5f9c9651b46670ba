// Package ethr resolves did:ethr identifiers against an ERC-1056 style
// registry contract. The resolved document carries a secp256k1 verification
// method keyed by blockchain account id; signatures against it are checked
// by public key recovery.
package ethr

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/gitmujoshi/cms/did"
)

// registryABI is the read surface of the ERC-1056 registry used here.
const registryABI = `[
  {"constant":true,"inputs":[{"name":"identity","type":"address"}],"name":"identityOwner","outputs":[{"name":"","type":"address"}],"payable":false,"stateMutability":"view","type":"function"},
  {"constant":true,"inputs":[{"name":"identity","type":"address"}],"name":"changed","outputs":[{"name":"","type":"uint256"}],"payable":false,"stateMutability":"view","type":"function"}
]`

// ContractCaller abstracts the eth_call surface of an Ethereum client so the
// resolver can be exercised against a fake in tests.
type ContractCaller interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// Resolver resolves did:ethr DIDs from a registry contract.
type Resolver struct {
	caller   ContractCaller
	registry common.Address
	abi      abi.ABI
}

// NewResolver creates a resolver over an existing contract caller.
func NewResolver(caller ContractCaller, registry common.Address) (*Resolver, error) {
	parsed, err := abi.JSON(strings.NewReader(registryABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse registry ABI: %w", err)
	}
	return &Resolver{caller: caller, registry: registry, abi: parsed}, nil
}

// Dial connects to an Ethereum RPC endpoint and creates a resolver for the
// registry at the given hex address.
func Dial(rpcURL, registryHex string) (*Resolver, error) {
	if !common.IsHexAddress(registryHex) {
		return nil, fmt.Errorf("invalid registry address %q", registryHex)
	}
	client, err := ethclient.Dial(rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Ethereum RPC: %w", err)
	}
	return NewResolver(client, common.HexToAddress(registryHex))
}

// Resolve builds the DID document for a did:ethr identifier. The document's
// controller is the current identity owner read from the registry; for a
// never-changed identity this is the identity address itself.
func (r *Resolver) Resolve(ctx context.Context, didstr string) (*did.Document, error) {
	address, err := parseEthrDID(didstr)
	if err != nil {
		return nil, err
	}

	owner, err := r.identityOwner(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("%w: read identity owner for %s: %v", did.ErrResolutionFailed, didstr, err)
	}

	controllerDID := "did:ethr:" + strings.ToLower(owner.Hex())
	vmID := didstr + "#controller"

	return &did.Document{
		Context: []string{
			"https://www.w3.org/ns/did/v1",
			"https://w3id.org/security/v1",
		},
		ID:         didstr,
		Controller: []string{controllerDID},
		VerificationMethod: []did.VerificationMethod{{
			ID:                  vmID,
			Type:                did.TypeEcdsaSecp256k1VerificationKey2019,
			Controller:          controllerDID,
			BlockchainAccountID: "eip155:1:" + strings.ToLower(owner.Hex()),
		}},
		Authentication:  []string{vmID},
		AssertionMethod: []string{vmID},
		Updated:         time.Now().UTC(),
	}, nil
}

func (r *Resolver) identityOwner(ctx context.Context, identity common.Address) (common.Address, error) {
	data, err := r.abi.Pack("identityOwner", identity)
	if err != nil {
		return common.Address{}, fmt.Errorf("pack identityOwner call: %w", err)
	}

	out, err := r.caller.CallContract(ctx, ethereum.CallMsg{To: &r.registry, Data: data}, nil)
	if err != nil {
		return common.Address{}, err
	}

	results, err := r.abi.Unpack("identityOwner", out)
	if err != nil {
		return common.Address{}, fmt.Errorf("unpack identityOwner result: %w", err)
	}
	owner, ok := results[0].(common.Address)
	if !ok {
		return common.Address{}, fmt.Errorf("unexpected identityOwner result type %T", results[0])
	}
	return owner, nil
}

// parseEthrDID extracts the identity address from did:ethr:<address> or
// did:ethr:<network>:<address>.
func parseEthrDID(didstr string) (common.Address, error) {
	method, err := did.Method(didstr)
	if err != nil {
		return common.Address{}, err
	}
	if method != "ethr" {
		return common.Address{}, fmt.Errorf("%w: unsupported method %q", did.ErrResolutionFailed, method)
	}

	parts := strings.Split(didstr, ":")
	address := parts[len(parts)-1]
	if !common.IsHexAddress(address) {
		return common.Address{}, fmt.Errorf("%w: %q does not contain a valid address", did.ErrInvalidFormat, didstr)
	}
	return common.HexToAddress(address), nil
}
