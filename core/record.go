package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// Record is a registered health-data record. The payload itself never
// touches the chain; only its SHA-256 hash is anchored in the data registry.
type Record struct {
	ID           string    `json:"id"`
	OwnerDID     string    `json:"ownerDid"`
	ResourceType string    `json:"resourceType"`
	Hash         string    `json:"hash"` // hex-encoded SHA-256
	RegisteredAt time.Time `json:"registeredAt"`
}

// Consent is a producer-to-consumer sharing grant held by the consent
// contract.
type Consent struct {
	ProducerDID string    `json:"producerDid"`
	ConsumerDID string    `json:"consumerDid"`
	Granted     bool      `json:"granted"`
	GrantedAt   time.Time `json:"grantedAt"`
	ExpiresAt   time.Time `json:"expiresAt,omitempty"`
}

// Balance is a compensation balance denominated in whole tokens.
type Balance struct {
	Address string          `json:"address"`
	Amount  decimal.Decimal `json:"amount"`
}
