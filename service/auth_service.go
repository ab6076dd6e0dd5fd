package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/medichain/medichain/core"
	"github.com/medichain/medichain/internal/eth"
	"github.com/medichain/medichain/ports"
)

// AuthService handles the challenge/response authentication flow
type AuthService struct {
	tokenizer   ports.Tokenizer
	challenges  ports.ChallengeStore
	revocations ports.RevocationStore
	registry    ports.DIDRegistry
	roles       *RoleResolver
	checker     ports.SignatureChecker // optional on-chain verification path
	eventPub    ports.EventPublisher
	log         zerolog.Logger

	challengeTTL time.Duration
	accessTTL    time.Duration
	refreshTTL   time.Duration
}

// NewAuthService creates a new authentication service. checker may be nil;
// signature verification then uses local ECDSA recovery only.
func NewAuthService(
	tokenizer ports.Tokenizer,
	challenges ports.ChallengeStore,
	revocations ports.RevocationStore,
	registry ports.DIDRegistry,
	roles *RoleResolver,
	checker ports.SignatureChecker,
	eventPub ports.EventPublisher,
	log zerolog.Logger,
) *AuthService {
	return &AuthService{
		tokenizer:    tokenizer,
		challenges:   challenges,
		revocations:  revocations,
		registry:     registry,
		roles:        roles,
		checker:      checker,
		eventPub:     eventPub,
		log:          log.With().Str("component", "auth_service").Logger(),
		challengeTTL: 5 * time.Minute,
		accessTTL:    15 * time.Minute,
		refreshTTL:   5 * 24 * time.Hour, // 5 days
	}
}

// WithTTLs overrides the default challenge/access/refresh lifetimes.
func (s *AuthService) WithTTLs(challenge, access, refresh time.Duration) *AuthService {
	if challenge > 0 {
		s.challengeTTL = challenge
	}
	if access > 0 {
		s.accessTTL = access
	}
	if refresh > 0 {
		s.refreshTTL = refresh
	}
	return s
}

// AccessTTL returns the configured access token lifetime.
func (s *AuthService) AccessTTL() time.Duration {
	return s.accessTTL
}

// CreateChallenge generates a new authentication challenge for an address.
// Any pending challenge for the same address is overwritten.
func (s *AuthService) CreateChallenge(ctx context.Context, address string) (*core.Challenge, error) {
	if !common.IsHexAddress(address) {
		return nil, core.ErrInvalidAddress
	}

	nonceBytes := make([]byte, 32)
	if _, err := rand.Read(nonceBytes); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	now := time.Now()
	challenge := &core.Challenge{
		ID:        uuid.New().String(),
		Address:   strings.ToLower(address),
		Nonce:     hex.EncodeToString(nonceBytes),
		IssuedAt:  now,
		ExpiresAt: now.Add(s.challengeTTL),
	}

	if err := s.challenges.Put(ctx, challenge, s.challengeTTL); err != nil {
		return nil, fmt.Errorf("failed to store challenge: %w", err)
	}

	return challenge, nil
}

// Authenticate verifies a signed challenge and issues a token pair. The
// challenge is consumed on success and cannot be replayed. An address
// without a registered DID still authenticates, with the default role and an
// empty DID.
func (s *AuthService) Authenticate(ctx context.Context, address, signature string) (string, string, *core.Session, error) {
	if !common.IsHexAddress(address) {
		return "", "", nil, core.ErrInvalidAddress
	}

	challenge, err := s.challenges.Get(ctx, address)
	if err != nil {
		return "", "", nil, core.ErrInvalidChallenge
	}
	if challenge.Expired(time.Now()) {
		return "", "", nil, core.ErrInvalidChallenge
	}

	message := eth.ChallengeMessage(challenge.Nonce)
	if !s.verifySignature(ctx, address, message, signature) {
		return "", "", nil, core.ErrInvalidSignature
	}

	// Consume the challenge: one successful verification per issue.
	if err := s.challenges.Delete(ctx, address); err != nil {
		s.log.Warn().Err(err).Str("address", address).Msg("failed to delete consumed challenge")
	}

	session, err := s.buildSession(ctx, address)
	if err != nil {
		return "", "", nil, err
	}

	accessToken, refreshToken, err := s.mintTokens(session)
	if err != nil {
		return "", "", nil, err
	}

	if err := s.eventPub.PublishLogin(ctx, session.Address, session.DID, string(session.Role)); err != nil {
		s.log.Warn().Err(err).Str("address", session.Address).Msg("failed to publish login event")
	}

	return accessToken, refreshToken, session, nil
}

// Refresh rotates the refresh token and issues new access and refresh
// tokens. Role and DID are re-resolved from the chain so a rotated access
// token reflects credential changes.
func (s *AuthService) Refresh(ctx context.Context, refreshTokenStr string) (string, string, *core.Session, error) {
	old, err := s.tokenizer.RefreshTokenToSession(refreshTokenStr)
	if err != nil {
		return "", "", nil, fmt.Errorf("invalid refresh token: %w", err)
	}

	if time.Now().After(old.RefreshExpiry) {
		return "", "", nil, core.ErrTokenExpired
	}

	invalidated, err := s.revocations.IsTokenInvalidated(ctx, old.RefreshID)
	if err != nil {
		return "", "", nil, fmt.Errorf("failed to check token invalidation: %w", err)
	}
	if invalidated {
		return "", "", nil, core.ErrTokenInvalidated
	}

	// Invalidate the old refresh token for the remainder of its lifetime.
	if err := s.revocations.InvalidateToken(ctx, old.RefreshID, time.Until(old.RefreshExpiry)); err != nil {
		return "", "", nil, fmt.Errorf("failed to invalidate old token: %w", err)
	}

	session, err := s.buildSession(ctx, old.Address)
	if err != nil {
		return "", "", nil, err
	}

	accessToken, refreshToken, err := s.mintTokens(session)
	if err != nil {
		return "", "", nil, err
	}

	return accessToken, refreshToken, session, nil
}

// Logout invalidates a refresh token. Logout is a real revocation, not a
// client-side discard: the token ID is blacklisted for its remaining
// lifetime, which also kills access tokens minted against it.
func (s *AuthService) Logout(ctx context.Context, refreshTokenStr string) error {
	session, err := s.tokenizer.RefreshTokenToSession(refreshTokenStr)
	if err != nil {
		return fmt.Errorf("invalid refresh token: %w", err)
	}

	// Even an expired token gets a short-lived invalidation record, in case
	// clocks are slightly out of sync.
	remaining := time.Until(session.RefreshExpiry)
	if remaining <= 0 {
		remaining = time.Hour
	}

	if err := s.revocations.InvalidateToken(ctx, session.RefreshID, remaining); err != nil {
		return fmt.Errorf("failed to invalidate token: %w", err)
	}

	if err := s.eventPub.PublishLogout(ctx, session.Address, session.RefreshID); err != nil {
		// The token is already invalidated in the store, which is the part
		// that matters; cross-instance notification is best effort.
		s.log.Warn().Err(err).Str("address", session.Address).Msg("failed to publish logout event")
	}

	return nil
}

// ValidateAccessToken parses and validates an access token, including the
// revocation state of its parent refresh token.
func (s *AuthService) ValidateAccessToken(ctx context.Context, accessToken string) (*core.Session, error) {
	session, err := s.tokenizer.AccessTokenToSession(accessToken)
	if err != nil {
		return nil, fmt.Errorf("invalid access token: %w", err)
	}

	if time.Now().After(session.AccessExpiry) {
		return nil, core.ErrTokenExpired
	}

	if session.RefreshID != "" {
		invalidated, err := s.revocations.IsTokenInvalidated(ctx, session.RefreshID)
		if err != nil {
			return nil, fmt.Errorf("failed to check token invalidation: %w", err)
		}
		if invalidated {
			return nil, core.ErrTokenInvalidated
		}
	}

	return session, nil
}

// verifySignature tries the on-chain verifier first when configured and
// falls back to local ECDSA recovery when that path errors.
func (s *AuthService) verifySignature(ctx context.Context, address, message, signature string) bool {
	if s.checker != nil {
		sigBytes, err := decodeHexSignature(signature)
		if err == nil {
			ok, err := s.checker.CheckSignature(ctx, address, []byte(message), sigBytes)
			if err == nil {
				return ok
			}
			s.log.Warn().Err(err).Msg("on-chain signature check failed, falling back to local recovery")
		}
	}

	return eth.VerifySignature(message, signature, address)
}

// buildSession resolves the DID and role for an address and assembles a new
// session. A missing DID registration never blocks authentication.
func (s *AuthService) buildSession(ctx context.Context, address string) (*core.Session, error) {
	didStr, err := s.registry.DIDForAddress(ctx, address)
	if err != nil {
		s.log.Warn().Err(err).Str("address", address).Msg("did lookup failed, continuing without did")
		didStr = ""
	}

	role, _ := s.roles.Resolve(ctx, didStr)

	now := time.Now()
	return &core.Session{
		ID:            uuid.New().String(),
		Address:       strings.ToLower(address),
		DID:           didStr,
		Role:          role,
		IssuedAt:      now,
		AccessExpiry:  now.Add(s.accessTTL),
		RefreshExpiry: now.Add(s.refreshTTL),
		RefreshID:     uuid.New().String(),
	}, nil
}

func decodeHexSignature(signature string) ([]byte, error) {
	sig, err := hexutil.Decode(signature)
	if err != nil {
		return nil, fmt.Errorf("failed to decode signature: %w", err)
	}
	if len(sig) != eth.SignatureLength {
		return nil, fmt.Errorf("signature must be %d bytes: %w", eth.SignatureLength, core.ErrInvalidSignature)
	}
	return sig, nil
}

func (s *AuthService) mintTokens(session *core.Session) (string, string, error) {
	accessToken, err := s.tokenizer.SessionToAccessToken(session)
	if err != nil {
		return "", "", fmt.Errorf("failed to create access token: %w", err)
	}

	refreshToken, err := s.tokenizer.SessionToRefreshToken(session)
	if err != nil {
		return "", "", fmt.Errorf("failed to create refresh token: %w", err)
	}

	return accessToken, refreshToken, nil
}
