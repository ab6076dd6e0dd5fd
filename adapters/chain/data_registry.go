package chain

import (
	"context"
	"encoding/hex"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"

	"github.com/medichain/medichain/core"
	"github.com/medichain/medichain/ports"
)

const dataRegistryABI = `[
	{"type":"function","name":"registerRecord","stateMutability":"nonpayable","inputs":[{"name":"id","type":"string"},{"name":"ownerDid","type":"string"},{"name":"resourceType","type":"string"},{"name":"hash","type":"bytes32"}],"outputs":[]},
	{"type":"function","name":"getRecord","stateMutability":"view","inputs":[{"name":"id","type":"string"}],"outputs":[{"name":"ownerDid","type":"string"},{"name":"resourceType","type":"string"},{"name":"hash","type":"bytes32"},{"name":"registeredAt","type":"uint256"},{"name":"exists","type":"bool"}]}
]`

// DataRegistry is the typed client for the data registry contract. Only the
// record hash is anchored on-chain; payloads stay off-chain.
type DataRegistry struct {
	client   *Client
	contract *bind.BoundContract
}

var dataRegistryParsedABI = mustParseABI(dataRegistryABI)

// NewDataRegistry binds the data registry contract at address.
func NewDataRegistry(client *Client, address common.Address) ports.DataRegistry {
	return &DataRegistry{
		client:   client,
		contract: client.bound(address, dataRegistryParsedABI),
	}
}

// RegisterRecord anchors a record's hash under its ID.
func (r *DataRegistry) RegisterRecord(ctx context.Context, record *core.Record) error {
	hashBytes, err := hex.DecodeString(record.Hash)
	if err != nil || len(hashBytes) != 32 {
		return fmt.Errorf("record hash must be 32 hex-encoded bytes: %q", record.Hash)
	}
	var hash [32]byte
	copy(hash[:], hashBytes)

	tx, err := r.contract.Transact(r.client.transactOpts(ctx), "registerRecord",
		record.ID, record.OwnerDID, record.ResourceType, hash)
	if err != nil {
		return fmt.Errorf("registerRecord: %w", err)
	}
	return r.client.waitMined(ctx, tx)
}

// GetRecord reads an anchored record by ID.
func (r *DataRegistry) GetRecord(ctx context.Context, id string) (*core.Record, error) {
	var out []interface{}
	if err := r.contract.Call(callOpts(ctx), &out, "getRecord", id); err != nil {
		return nil, fmt.Errorf("getRecord: %w", err)
	}

	exists := *abi.ConvertType(out[4], new(bool)).(*bool)
	if !exists {
		return nil, core.ErrRecordNotFound
	}

	hash := *abi.ConvertType(out[2], new([32]byte)).(*[32]byte)
	registeredAt := *abi.ConvertType(out[3], new(*big.Int)).(**big.Int)

	return &core.Record{
		ID:           id,
		OwnerDID:     *abi.ConvertType(out[0], new(string)).(*string),
		ResourceType: *abi.ConvertType(out[1], new(string)).(*string),
		Hash:         hex.EncodeToString(hash[:]),
		RegisteredAt: time.Unix(bigToTime(registeredAt), 0).UTC(),
	}, nil
}
