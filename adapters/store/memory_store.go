package store

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/medichain/medichain/core"
)

// MemoryStore is an in-memory implementation of the challenge and revocation
// stores, intended for tests and single-instance deployments.
type MemoryStore struct {
	challenges        map[string]memoryChallenge
	invalidatedTokens map[string]time.Time
	mu                sync.RWMutex
}

type memoryChallenge struct {
	challenge core.Challenge
	expiresAt time.Time
}

// NewMemoryStore creates a new in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		challenges:        make(map[string]memoryChallenge),
		invalidatedTokens: make(map[string]time.Time),
	}
}

// Put stores a challenge for its address, overwriting any pending one.
func (s *MemoryStore) Put(ctx context.Context, challenge *core.Challenge, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.challenges[strings.ToLower(challenge.Address)] = memoryChallenge{
		challenge: *challenge,
		expiresAt: time.Now().Add(ttl),
	}
	return nil
}

// Get retrieves the pending challenge for an address.
func (s *MemoryStore) Get(ctx context.Context, address string) (*core.Challenge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.challenges[strings.ToLower(address)]
	if !ok || time.Now().After(entry.expiresAt) {
		return nil, core.ErrInvalidChallenge
	}

	challenge := entry.challenge
	return &challenge, nil
}

// Delete removes the pending challenge for an address.
func (s *MemoryStore) Delete(ctx context.Context, address string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.challenges, strings.ToLower(address))
	return nil
}

// InvalidateToken marks a token as invalidated
func (s *MemoryStore) InvalidateToken(ctx context.Context, tokenID string, expiry time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	expiryTime := time.Now().Add(expiry)
	s.invalidatedTokens[tokenID] = expiryTime

	// Start a cleanup goroutine
	go func() {
		time.Sleep(expiry)

		s.mu.Lock()
		defer s.mu.Unlock()

		// Only delete if the expiry time hasn't changed
		if storedExpiry, exists := s.invalidatedTokens[tokenID]; exists && !storedExpiry.After(expiryTime) {
			delete(s.invalidatedTokens, tokenID)
		}
	}()

	return nil
}

// IsTokenInvalidated checks if a token is invalidated
func (s *MemoryStore) IsTokenInvalidated(ctx context.Context, tokenID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	expiryTime, exists := s.invalidatedTokens[tokenID]
	if !exists {
		return false, nil
	}

	// Check if the token invalidation has expired
	if time.Now().After(expiryTime) {
		return false, nil
	}

	return true, nil
}
