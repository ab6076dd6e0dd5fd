package chain

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"

	"github.com/medichain/medichain/core"
	"github.com/medichain/medichain/ports"
)

const consentABI = `[
	{"type":"function","name":"grantConsent","stateMutability":"nonpayable","inputs":[{"name":"producerDid","type":"string"},{"name":"consumerDid","type":"string"},{"name":"expiresAt","type":"uint256"}],"outputs":[]},
	{"type":"function","name":"revokeConsent","stateMutability":"nonpayable","inputs":[{"name":"producerDid","type":"string"},{"name":"consumerDid","type":"string"}],"outputs":[]},
	{"type":"function","name":"checkConsent","stateMutability":"view","inputs":[{"name":"producerDid","type":"string"},{"name":"consumerDid","type":"string"}],"outputs":[{"name":"granted","type":"bool"},{"name":"grantedAt","type":"uint256"},{"name":"expiresAt","type":"uint256"}]}
]`

// ConsentRegistry is the typed client for the consent contract.
type ConsentRegistry struct {
	client   *Client
	contract *bind.BoundContract
}

var consentParsedABI = mustParseABI(consentABI)

// NewConsentRegistry binds the consent contract at address.
func NewConsentRegistry(client *Client, address common.Address) ports.ConsentRegistry {
	return &ConsentRegistry{
		client:   client,
		contract: client.bound(address, consentParsedABI),
	}
}

// Grant records a sharing grant from producer to consumer. A zero expiresAt
// means the grant does not expire.
func (r *ConsentRegistry) Grant(ctx context.Context, producerDID, consumerDID string, expiresAt time.Time) error {
	expiry := big.NewInt(0)
	if !expiresAt.IsZero() {
		expiry = big.NewInt(expiresAt.Unix())
	}

	tx, err := r.contract.Transact(r.client.transactOpts(ctx), "grantConsent", producerDID, consumerDID, expiry)
	if err != nil {
		return fmt.Errorf("grantConsent: %w", err)
	}
	return r.client.waitMined(ctx, tx)
}

// Revoke withdraws a sharing grant.
func (r *ConsentRegistry) Revoke(ctx context.Context, producerDID, consumerDID string) error {
	tx, err := r.contract.Transact(r.client.transactOpts(ctx), "revokeConsent", producerDID, consumerDID)
	if err != nil {
		return fmt.Errorf("revokeConsent: %w", err)
	}
	return r.client.waitMined(ctx, tx)
}

// Check reads the current grant between producer and consumer.
func (r *ConsentRegistry) Check(ctx context.Context, producerDID, consumerDID string) (*core.Consent, error) {
	var out []interface{}
	if err := r.contract.Call(callOpts(ctx), &out, "checkConsent", producerDID, consumerDID); err != nil {
		return nil, fmt.Errorf("checkConsent: %w", err)
	}

	granted := *abi.ConvertType(out[0], new(bool)).(*bool)
	grantedAt := *abi.ConvertType(out[1], new(*big.Int)).(**big.Int)
	expiresAt := *abi.ConvertType(out[2], new(*big.Int)).(**big.Int)

	consent := &core.Consent{
		ProducerDID: producerDID,
		ConsumerDID: consumerDID,
		Granted:     granted,
	}
	if ts := bigToTime(grantedAt); ts > 0 {
		consent.GrantedAt = time.Unix(ts, 0).UTC()
	}
	if ts := bigToTime(expiresAt); ts > 0 {
		consent.ExpiresAt = time.Unix(ts, 0).UTC()
	}

	return consent, nil
}
