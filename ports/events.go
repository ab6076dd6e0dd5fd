package ports

import "context"

// EventPublisher publishes platform events to notify other instances
type EventPublisher interface {
	PublishLogin(ctx context.Context, address, did string, role string) error
	PublishLogout(ctx context.Context, address string, tokenID string) error
	PublishDIDRegistered(ctx context.Context, address, did string) error
}
