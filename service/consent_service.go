package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/medichain/medichain/core"
	"github.com/medichain/medichain/did"
	"github.com/medichain/medichain/ports"
)

// ConsentService manages producer-to-consumer sharing grants.
type ConsentService struct {
	registry ports.ConsentRegistry
	log      zerolog.Logger
}

// NewConsentService creates a new consent service
func NewConsentService(registry ports.ConsentRegistry, log zerolog.Logger) *ConsentService {
	return &ConsentService{
		registry: registry,
		log:      log.With().Str("component", "consent_service").Logger(),
	}
}

// Grant records consent from producer to consumer. expiresAt may be zero
// for a grant without expiry.
func (s *ConsentService) Grant(ctx context.Context, producerDID, consumerDID string, expiresAt time.Time) error {
	if err := validateConsentPair(producerDID, consumerDID); err != nil {
		return err
	}
	if !expiresAt.IsZero() && expiresAt.Before(time.Now()) {
		return fmt.Errorf("consent expiry is in the past")
	}

	return s.registry.Grant(ctx, producerDID, consumerDID, expiresAt)
}

// Revoke withdraws consent from producer to consumer.
func (s *ConsentService) Revoke(ctx context.Context, producerDID, consumerDID string) error {
	if err := validateConsentPair(producerDID, consumerDID); err != nil {
		return err
	}

	return s.registry.Revoke(ctx, producerDID, consumerDID)
}

// Check reads the current grant between producer and consumer. An expired
// grant reads back as not granted.
func (s *ConsentService) Check(ctx context.Context, producerDID, consumerDID string) (*core.Consent, error) {
	if err := validateConsentPair(producerDID, consumerDID); err != nil {
		return nil, err
	}

	consent, err := s.registry.Check(ctx, producerDID, consumerDID)
	if err != nil {
		return nil, err
	}

	if consent.Granted && !consent.ExpiresAt.IsZero() && consent.ExpiresAt.Before(time.Now()) {
		consent.Granted = false
	}

	return consent, nil
}

func validateConsentPair(producerDID, consumerDID string) error {
	if _, err := did.Address(producerDID); err != nil {
		return fmt.Errorf("invalid producer did: %w", err)
	}
	if _, err := did.Address(consumerDID); err != nil {
		return fmt.Errorf("invalid consumer did: %w", err)
	}
	if producerDID == consumerDID {
		return fmt.Errorf("producer and consumer dids must differ")
	}
	return nil
}
