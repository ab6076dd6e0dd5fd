package service

import (
	"context"
	"sync"
	"time"

	"github.com/medichain/medichain/core"
)

// fakeAuthRegistry answers role checks from fixed maps.
type fakeAuthRegistry struct {
	granted map[core.Role]bool
	errs    map[core.Role]error

	mu    sync.Mutex
	calls []core.Role
}

func (f *fakeAuthRegistry) HasRole(ctx context.Context, didStr string, role core.Role) (bool, error) {
	f.mu.Lock()
	f.calls = append(f.calls, role)
	f.mu.Unlock()

	if err, ok := f.errs[role]; ok {
		return false, err
	}
	return f.granted[role], nil
}

// fakeDIDRegistry keeps registrations in memory.
type fakeDIDRegistry struct {
	mu            sync.Mutex
	documents     map[string]*core.DIDDocument
	byAddress     map[string]string
	deactivated   map[string]bool
	registerCalls int

	resolveErr error
	lookupErr  error
}

func newFakeDIDRegistry() *fakeDIDRegistry {
	return &fakeDIDRegistry{
		documents:   make(map[string]*core.DIDDocument),
		byAddress:   make(map[string]string),
		deactivated: make(map[string]bool),
	}
}

func (f *fakeDIDRegistry) Register(ctx context.Context, didStr string, document []byte, publicKey string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.registerCalls++
	doc := &core.DIDDocument{ID: didStr}
	f.documents[didStr] = doc
	return nil
}

func (f *fakeDIDRegistry) put(address, didStr string, doc *core.DIDDocument) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.documents[didStr] = doc
	f.byAddress[address] = didStr
}

func (f *fakeDIDRegistry) Resolve(ctx context.Context, didStr string) (*core.DIDDocument, error) {
	if f.resolveErr != nil {
		return nil, f.resolveErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deactivated[didStr] {
		return nil, core.ErrDIDDeactivated
	}
	doc, ok := f.documents[didStr]
	if !ok {
		return nil, core.ErrDIDNotFound
	}
	return doc, nil
}

func (f *fakeDIDRegistry) Update(ctx context.Context, didStr string, document []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.documents[didStr]; !ok {
		return core.ErrDIDNotFound
	}
	return nil
}

func (f *fakeDIDRegistry) Deactivate(ctx context.Context, didStr string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deactivated[didStr] = true
	return nil
}

func (f *fakeDIDRegistry) IsActive(ctx context.Context, didStr string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.documents[didStr]
	return ok && !f.deactivated[didStr], nil
}

func (f *fakeDIDRegistry) DIDForAddress(ctx context.Context, address string) (string, error) {
	if f.lookupErr != nil {
		return "", f.lookupErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.byAddress[address], nil
}

// fakeEventPublisher records published events.
type fakeEventPublisher struct {
	mu      sync.Mutex
	logins  int
	logouts int
	didRegs int
	err     error
}

func (f *fakeEventPublisher) PublishLogin(ctx context.Context, address, didStr, role string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logins++
	return f.err
}

func (f *fakeEventPublisher) PublishLogout(ctx context.Context, address, tokenID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logouts++
	return f.err
}

func (f *fakeEventPublisher) PublishDIDRegistered(ctx context.Context, address, didStr string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.didRegs++
	return f.err
}

// fakeDataRegistry keeps anchored records in memory.
type fakeDataRegistry struct {
	mu      sync.Mutex
	records map[string]*core.Record
}

func newFakeDataRegistry() *fakeDataRegistry {
	return &fakeDataRegistry{records: make(map[string]*core.Record)}
}

func (f *fakeDataRegistry) RegisterRecord(ctx context.Context, record *core.Record) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *record
	f.records[record.ID] = &copied
	return nil
}

func (f *fakeDataRegistry) GetRecord(ctx context.Context, id string) (*core.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	record, ok := f.records[id]
	if !ok {
		return nil, core.ErrRecordNotFound
	}
	copied := *record
	return &copied, nil
}

// fakeConsentRegistry keeps grants in memory.
type fakeConsentRegistry struct {
	mu     sync.Mutex
	grants map[string]*core.Consent
}

func newFakeConsentRegistry() *fakeConsentRegistry {
	return &fakeConsentRegistry{grants: make(map[string]*core.Consent)}
}

func consentKey(producerDID, consumerDID string) string {
	return producerDID + "|" + consumerDID
}

func (f *fakeConsentRegistry) Grant(ctx context.Context, producerDID, consumerDID string, expiresAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.grants[consentKey(producerDID, consumerDID)] = &core.Consent{
		ProducerDID: producerDID,
		ConsumerDID: consumerDID,
		Granted:     true,
		GrantedAt:   time.Now(),
		ExpiresAt:   expiresAt,
	}
	return nil
}

func (f *fakeConsentRegistry) Revoke(ctx context.Context, producerDID, consumerDID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if consent, ok := f.grants[consentKey(producerDID, consumerDID)]; ok {
		consent.Granted = false
	}
	return nil
}

func (f *fakeConsentRegistry) Check(ctx context.Context, producerDID, consumerDID string) (*core.Consent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	consent, ok := f.grants[consentKey(producerDID, consumerDID)]
	if !ok {
		return &core.Consent{ProducerDID: producerDID, ConsumerDID: consumerDID}, nil
	}
	copied := *consent
	return &copied, nil
}
