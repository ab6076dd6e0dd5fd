package ports

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/medichain/medichain/core"
)

// DIDRegistry is the typed client for the on-chain DID registry contract.
// Calls that revert are surfaced to the caller; there are no retries.
type DIDRegistry interface {
	// Register anchors a DID with its document JSON and public key.
	Register(ctx context.Context, did string, document []byte, publicKey string) error

	// Resolve reads the document for a DID. Returns core.ErrDIDNotFound when
	// the registry has no entry, so callers can distinguish absence from
	// transport failures.
	Resolve(ctx context.Context, did string) (*core.DIDDocument, error)

	Update(ctx context.Context, did string, document []byte) error
	Deactivate(ctx context.Context, did string) error
	IsActive(ctx context.Context, did string) (bool, error)

	// DIDForAddress returns the DID registered for an address, or "" when
	// the address has never registered one.
	DIDForAddress(ctx context.Context, address string) (string, error)
}

// AuthRegistry answers on-chain role credential checks for a DID.
type AuthRegistry interface {
	HasRole(ctx context.Context, did string, role core.Role) (bool, error)
}

// SignatureChecker is the optional on-chain signature verification path
// backed by the DID verifier contract. Implementations may be absent; the
// local ECDSA recovery path is always available as fallback.
type SignatureChecker interface {
	CheckSignature(ctx context.Context, address string, message, signature []byte) (bool, error)
}

// DataRegistry anchors record hashes in the data registry contract.
type DataRegistry interface {
	RegisterRecord(ctx context.Context, record *core.Record) error
	GetRecord(ctx context.Context, id string) (*core.Record, error)
}

// ConsentRegistry manages producer-to-consumer sharing grants.
type ConsentRegistry interface {
	Grant(ctx context.Context, producerDID, consumerDID string, expiresAt time.Time) error
	Revoke(ctx context.Context, producerDID, consumerDID string) error
	Check(ctx context.Context, producerDID, consumerDID string) (*core.Consent, error)
}

// Compensation exposes token balances and withdrawals from the compensation
// contract, denominated in whole tokens.
type Compensation interface {
	BalanceOf(ctx context.Context, address string) (decimal.Decimal, error)
	Withdraw(ctx context.Context, address string, amount decimal.Decimal) (txHash string, err error)
}
