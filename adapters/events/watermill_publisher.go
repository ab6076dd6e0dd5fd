package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"

	"github.com/medichain/medichain/ports"
)

const (
	loginTopic         = "medichain.auth.login"
	logoutTopic        = "medichain.auth.logout"
	didRegisteredTopic = "medichain.did.registered"
)

// LoginEvent is published after a successful authentication.
type LoginEvent struct {
	Address string `json:"address"`
	DID     string `json:"did,omitempty"`
	Role    string `json:"role"`
}

// LogoutEvent represents a logout event
type LogoutEvent struct {
	Address string `json:"address"`
	TokenID string `json:"token_id"`
}

// DIDRegisteredEvent is published when a new DID is anchored on-chain.
type DIDRegisteredEvent struct {
	Address string `json:"address"`
	DID     string `json:"did"`
}

// WatermillPublisher implements the EventPublisher interface using Watermill
type WatermillPublisher struct {
	publisher message.Publisher
}

// NewWatermillPublisher creates a new Watermill publisher
func NewWatermillPublisher(publisher message.Publisher) ports.EventPublisher {
	return &WatermillPublisher{publisher: publisher}
}

// PublishLogin publishes a login event
func (p *WatermillPublisher) PublishLogin(ctx context.Context, address, didStr, role string) error {
	return p.publish(loginTopic, uuid.New().String(), LoginEvent{
		Address: address,
		DID:     didStr,
		Role:    role,
	})
}

// PublishLogout publishes a logout event
func (p *WatermillPublisher) PublishLogout(ctx context.Context, address string, tokenID string) error {
	return p.publish(logoutTopic, tokenID, LogoutEvent{
		Address: address,
		TokenID: tokenID,
	})
}

// PublishDIDRegistered publishes a DID registration event
func (p *WatermillPublisher) PublishDIDRegistered(ctx context.Context, address, didStr string) error {
	return p.publish(didRegisteredTopic, uuid.New().String(), DIDRegisteredEvent{
		Address: address,
		DID:     didStr,
	})
}

func (p *WatermillPublisher) publish(topic, id string, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(id, payload)

	if err := p.publisher.Publish(topic, msg); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}
