package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medichain/medichain/core"
)

const (
	didAddress = "0x8ba1f109551bD432803012645Ac136ddd64DBA72"
	didString  = "did:ethr:0x8ba1f109551bd432803012645ac136ddd64dba72"
)

func newDIDFixture() (*DIDService, *fakeDIDRegistry, *fakeEventPublisher) {
	registry := newFakeDIDRegistry()
	events := &fakeEventPublisher{}
	return NewDIDService(registry, events, zerolog.Nop()), registry, events
}

func TestCreateRegistersOnce(t *testing.T) {
	svc, registry, events := newDIDFixture()
	ctx := context.Background()

	didStr, doc, created, err := svc.Create(ctx, didAddress)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, didString, didStr)
	assert.Equal(t, didString, doc.ID)
	assert.Equal(t, 1, registry.registerCalls)
	assert.Equal(t, 1, events.didRegs)

	// Second call returns the existing document without a new transaction.
	didStr2, doc2, created2, err := svc.Create(ctx, didAddress)
	require.NoError(t, err)
	assert.False(t, created2)
	assert.Equal(t, didStr, didStr2)
	assert.Equal(t, doc.ID, doc2.ID)
	assert.Equal(t, 1, registry.registerCalls, "no duplicate registration")
}

func TestCreateInvalidAddress(t *testing.T) {
	svc, _, _ := newDIDFixture()

	_, _, _, err := svc.Create(context.Background(), "not-an-address")
	assert.ErrorIs(t, err, core.ErrInvalidAddress)
}

func TestResolveRoundTrip(t *testing.T) {
	svc, _, _ := newDIDFixture()
	ctx := context.Background()

	didStr, _, _, err := svc.Create(ctx, didAddress)
	require.NoError(t, err)

	result, err := svc.Resolve(ctx, didStr)
	require.NoError(t, err)
	require.NotNil(t, result.Document)
	assert.Equal(t, didStr, result.Document.ID)
	assert.Empty(t, result.Metadata.Error)
}

func TestResolveNotFound(t *testing.T) {
	svc, _, _ := newDIDFixture()

	result, err := svc.Resolve(context.Background(), "did:ethr:0x0000000000000000000000000000000000000001")
	require.NoError(t, err)
	assert.Nil(t, result.Document)
	assert.Equal(t, "notFound", result.Metadata.Error)
}

func TestResolveDeactivated(t *testing.T) {
	svc, registry, _ := newDIDFixture()
	ctx := context.Background()

	didStr, _, _, err := svc.Create(ctx, didAddress)
	require.NoError(t, err)
	require.NoError(t, registry.Deactivate(ctx, didStr))

	result, err := svc.Resolve(ctx, didStr)
	require.NoError(t, err)
	assert.Equal(t, "deactivated", result.Metadata.Error)
}

func TestUpdateValidatesDocument(t *testing.T) {
	svc, _, _ := newDIDFixture()
	ctx := context.Background()

	didStr, _, _, err := svc.Create(ctx, didAddress)
	require.NoError(t, err)

	err = svc.Update(ctx, didStr, json.RawMessage(`{"id":"did:ethr:0x0000000000000000000000000000000000000001"}`))
	assert.Error(t, err, "document id must match the did")

	err = svc.Update(ctx, didStr, json.RawMessage(`not json`))
	assert.Error(t, err)

	err = svc.Update(ctx, didStr, json.RawMessage(`{"id":"`+didStr+`"}`))
	assert.NoError(t, err)
}

func TestDeactivate(t *testing.T) {
	svc, _, _ := newDIDFixture()
	ctx := context.Background()

	didStr, _, _, err := svc.Create(ctx, didAddress)
	require.NoError(t, err)

	active, err := svc.IsActive(ctx, didStr)
	require.NoError(t, err)
	assert.True(t, active)

	require.NoError(t, svc.Deactivate(ctx, didStr))

	active, err = svc.IsActive(ctx, didStr)
	require.NoError(t, err)
	assert.False(t, active)
}
