package chain

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"

	"github.com/medichain/medichain/core"
	"github.com/medichain/medichain/ports"
)

const didRegistryABI = `[
	{"type":"function","name":"registerDid","stateMutability":"nonpayable","inputs":[{"name":"did","type":"string"},{"name":"document","type":"string"},{"name":"publicKey","type":"string"}],"outputs":[{"name":"success","type":"bool"}]},
	{"type":"function","name":"resolveDid","stateMutability":"view","inputs":[{"name":"did","type":"string"}],"outputs":[{"name":"document","type":"string"},{"name":"active","type":"bool"},{"name":"exists","type":"bool"}]},
	{"type":"function","name":"updateDidDocument","stateMutability":"nonpayable","inputs":[{"name":"did","type":"string"},{"name":"document","type":"string"}],"outputs":[]},
	{"type":"function","name":"deactivateDid","stateMutability":"nonpayable","inputs":[{"name":"did","type":"string"}],"outputs":[]},
	{"type":"function","name":"isActive","stateMutability":"view","inputs":[{"name":"did","type":"string"}],"outputs":[{"name":"","type":"bool"}]},
	{"type":"function","name":"didForAddress","stateMutability":"view","inputs":[{"name":"owner","type":"address"}],"outputs":[{"name":"","type":"string"}]}
]`

// DIDRegistry is the typed client for the DID registry contract.
type DIDRegistry struct {
	client   *Client
	contract *bind.BoundContract
}

var didRegistryParsedABI = mustParseABI(didRegistryABI)

// NewDIDRegistry binds the DID registry contract at address.
func NewDIDRegistry(client *Client, address common.Address) ports.DIDRegistry {
	return &DIDRegistry{
		client:   client,
		contract: client.bound(address, didRegistryParsedABI),
	}
}

// Register anchors a DID with its document JSON and public key.
func (r *DIDRegistry) Register(ctx context.Context, didStr string, document []byte, publicKey string) error {
	tx, err := r.contract.Transact(r.client.transactOpts(ctx), "registerDid", didStr, string(document), publicKey)
	if err != nil {
		return fmt.Errorf("registerDid: %w", err)
	}
	return r.client.waitMined(ctx, tx)
}

// Resolve reads the document for a DID from the registry.
func (r *DIDRegistry) Resolve(ctx context.Context, didStr string) (*core.DIDDocument, error) {
	var out []interface{}
	if err := r.contract.Call(callOpts(ctx), &out, "resolveDid", didStr); err != nil {
		return nil, fmt.Errorf("resolveDid: %w", err)
	}

	docJSON := *abi.ConvertType(out[0], new(string)).(*string)
	active := *abi.ConvertType(out[1], new(bool)).(*bool)
	exists := *abi.ConvertType(out[2], new(bool)).(*bool)

	if !exists {
		return nil, core.ErrDIDNotFound
	}
	if !active {
		return nil, core.ErrDIDDeactivated
	}

	var doc core.DIDDocument
	if err := json.Unmarshal([]byte(docJSON), &doc); err != nil {
		return nil, fmt.Errorf("decode registry document for %s: %w", didStr, err)
	}

	return &doc, nil
}

// Update replaces the document stored for a DID.
func (r *DIDRegistry) Update(ctx context.Context, didStr string, document []byte) error {
	tx, err := r.contract.Transact(r.client.transactOpts(ctx), "updateDidDocument", didStr, string(document))
	if err != nil {
		return fmt.Errorf("updateDidDocument: %w", err)
	}
	return r.client.waitMined(ctx, tx)
}

// Deactivate marks a DID as no longer usable.
func (r *DIDRegistry) Deactivate(ctx context.Context, didStr string) error {
	tx, err := r.contract.Transact(r.client.transactOpts(ctx), "deactivateDid", didStr)
	if err != nil {
		return fmt.Errorf("deactivateDid: %w", err)
	}
	return r.client.waitMined(ctx, tx)
}

// IsActive reports whether a DID is registered and not deactivated.
func (r *DIDRegistry) IsActive(ctx context.Context, didStr string) (bool, error) {
	var out []interface{}
	if err := r.contract.Call(callOpts(ctx), &out, "isActive", didStr); err != nil {
		return false, fmt.Errorf("isActive: %w", err)
	}
	return *abi.ConvertType(out[0], new(bool)).(*bool), nil
}

// DIDForAddress returns the DID registered by an address, or "" when none.
func (r *DIDRegistry) DIDForAddress(ctx context.Context, address string) (string, error) {
	if !common.IsHexAddress(address) {
		return "", core.ErrInvalidAddress
	}

	var out []interface{}
	if err := r.contract.Call(callOpts(ctx), &out, "didForAddress", common.HexToAddress(address)); err != nil {
		return "", fmt.Errorf("didForAddress: %w", err)
	}

	return strings.TrimSpace(*abi.ConvertType(out[0], new(string)).(*string)), nil
}
