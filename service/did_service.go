package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"

	"github.com/medichain/medichain/core"
	"github.com/medichain/medichain/did"
	"github.com/medichain/medichain/ports"
)

// DIDService implements DID lifecycle operations over the registry contract.
type DIDService struct {
	registry ports.DIDRegistry
	eventPub ports.EventPublisher
	log      zerolog.Logger
}

// NewDIDService creates a new DID service
func NewDIDService(registry ports.DIDRegistry, eventPub ports.EventPublisher, log zerolog.Logger) *DIDService {
	return &DIDService{
		registry: registry,
		eventPub: eventPub,
		log:      log.With().Str("component", "did_service").Logger(),
	}
}

// Create registers the DID for an address. When the DID is already
// registered, the existing document is returned with created=false and no
// second registration transaction is submitted. Both paths return the same
// {did, document} shape.
func (s *DIDService) Create(ctx context.Context, address string) (string, *core.DIDDocument, bool, error) {
	didStr, err := did.AddressDID(address)
	if err != nil {
		return "", nil, false, err
	}

	existing, err := s.registry.Resolve(ctx, didStr)
	switch {
	case err == nil:
		return didStr, existing, false, nil
	case errors.Is(err, core.ErrDIDNotFound):
		// fall through to registration
	default:
		return "", nil, false, err
	}

	doc := did.NewDocument(didStr, address)
	docJSON, err := json.Marshal(doc)
	if err != nil {
		return "", nil, false, fmt.Errorf("marshal did document: %w", err)
	}

	accountID := "eip155:1:" + common.HexToAddress(address).Hex()
	if err := s.registry.Register(ctx, didStr, docJSON, accountID); err != nil {
		return "", nil, false, fmt.Errorf("register did: %w", err)
	}

	if err := s.eventPub.PublishDIDRegistered(ctx, strings.ToLower(address), didStr); err != nil {
		s.log.Warn().Err(err).Str("did", didStr).Msg("failed to publish did registration event")
	}

	return didStr, doc, true, nil
}

// Resolve reads a DID document. Lookup failures are reported inside the
// resolution metadata so callers can tell "not found" from transport errors,
// which are returned as errors.
func (s *DIDService) Resolve(ctx context.Context, didStr string) (*core.ResolutionResult, error) {
	doc, err := s.registry.Resolve(ctx, didStr)
	switch {
	case err == nil:
		return &core.ResolutionResult{Document: doc}, nil
	case errors.Is(err, core.ErrDIDNotFound):
		return &core.ResolutionResult{Metadata: core.ResolutionMetadata{Error: "notFound"}}, nil
	case errors.Is(err, core.ErrDIDDeactivated):
		return &core.ResolutionResult{Metadata: core.ResolutionMetadata{Error: "deactivated"}}, nil
	default:
		return nil, err
	}
}

// Update replaces the stored document for a DID. The document must parse
// and its id must match the DID being updated.
func (s *DIDService) Update(ctx context.Context, didStr string, document json.RawMessage) error {
	var doc core.DIDDocument
	if err := json.Unmarshal(document, &doc); err != nil {
		return fmt.Errorf("invalid did document: %w", err)
	}
	if doc.ID != didStr {
		return fmt.Errorf("document id %q does not match did %q", doc.ID, didStr)
	}

	return s.registry.Update(ctx, didStr, document)
}

// Deactivate marks a DID as deactivated in the registry.
func (s *DIDService) Deactivate(ctx context.Context, didStr string) error {
	return s.registry.Deactivate(ctx, didStr)
}

// IsActive reports whether a DID is registered and active.
func (s *DIDService) IsActive(ctx context.Context, didStr string) (bool, error) {
	return s.registry.IsActive(ctx, didStr)
}
