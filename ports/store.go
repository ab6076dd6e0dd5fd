package ports

import (
	"context"
	"time"

	"github.com/medichain/medichain/core"
)

// ChallengeStore keeps pending authentication challenges keyed by normalized
// address. Issuing a new challenge for an address overwrites the previous
// one; successful verification must Delete the entry so a challenge is
// consumed exactly once.
type ChallengeStore interface {
	Put(ctx context.Context, challenge *core.Challenge, ttl time.Duration) error
	Get(ctx context.Context, address string) (*core.Challenge, error)
	Delete(ctx context.Context, address string) error
}

// RevocationStore tracks invalidated refresh token IDs
type RevocationStore interface {
	InvalidateToken(ctx context.Context, tokenID string, expiry time.Duration) error
	IsTokenInvalidated(ctx context.Context, tokenID string) (bool, error)
}
