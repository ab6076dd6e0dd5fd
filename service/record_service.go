package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/medichain/medichain/core"
	"github.com/medichain/medichain/internal/hashing"
	"github.com/medichain/medichain/ports"
)

// RecordService anchors health-data record hashes in the data registry.
// Payloads never leave the caller; only their SHA-256 digest goes on-chain.
type RecordService struct {
	registry ports.DataRegistry
	log      zerolog.Logger
}

// NewRecordService creates a new record service
func NewRecordService(registry ports.DataRegistry, log zerolog.Logger) *RecordService {
	return &RecordService{
		registry: registry,
		log:      log.With().Str("component", "record_service").Logger(),
	}
}

// Register hashes the payload and anchors it under a fresh record ID.
func (s *RecordService) Register(ctx context.Context, ownerDID, resourceType string, payload any) (*core.Record, error) {
	if ownerDID == "" {
		return nil, fmt.Errorf("owner did is required")
	}
	if resourceType == "" {
		return nil, fmt.Errorf("resource type is required")
	}

	hash, err := hashing.Hex(payload)
	if err != nil {
		return nil, fmt.Errorf("hash payload: %w", err)
	}

	record := &core.Record{
		ID:           uuid.New().String(),
		OwnerDID:     ownerDID,
		ResourceType: resourceType,
		Hash:         hash,
		RegisteredAt: time.Now().UTC(),
	}

	if err := s.registry.RegisterRecord(ctx, record); err != nil {
		return nil, fmt.Errorf("anchor record: %w", err)
	}

	return record, nil
}

// Get reads an anchored record by ID.
func (s *RecordService) Get(ctx context.Context, id string) (*core.Record, error) {
	return s.registry.GetRecord(ctx, id)
}

// Verify reports whether payload hashes to the digest anchored for the
// record.
func (s *RecordService) Verify(ctx context.Context, id string, payload any) (bool, error) {
	record, err := s.registry.GetRecord(ctx, id)
	if err != nil {
		return false, err
	}

	hash, err := hashing.Hex(payload)
	if err != nil {
		return false, fmt.Errorf("hash payload: %w", err)
	}

	return hash == record.Hash, nil
}
