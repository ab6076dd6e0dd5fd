package http

import (
	"bytes"
	"context"
	"crypto/ecdsa"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medichain/medichain/adapters/store"
	"github.com/medichain/medichain/adapters/tokenizer"
	"github.com/medichain/medichain/core"
	"github.com/medichain/medichain/internal/eth"
	"github.com/medichain/medichain/service"
)

// stubRegistry backs both the DID registry and the role registry for router
// tests.
type stubRegistry struct {
	documents   map[string]*core.DIDDocument
	byAddress   map[string]string
	deactivated map[string]bool
	roles       map[string]map[core.Role]bool
}

func newStubRegistry() *stubRegistry {
	return &stubRegistry{
		documents:   make(map[string]*core.DIDDocument),
		byAddress:   make(map[string]string),
		deactivated: make(map[string]bool),
		roles:       make(map[string]map[core.Role]bool),
	}
}

func (s *stubRegistry) Register(ctx context.Context, didStr string, document []byte, publicKey string) error {
	s.documents[didStr] = &core.DIDDocument{ID: didStr}
	s.byAddress[strings.TrimPrefix(didStr, "did:ethr:")] = didStr
	return nil
}

func (s *stubRegistry) Resolve(ctx context.Context, didStr string) (*core.DIDDocument, error) {
	if s.deactivated[didStr] {
		return nil, core.ErrDIDDeactivated
	}
	doc, ok := s.documents[didStr]
	if !ok {
		return nil, core.ErrDIDNotFound
	}
	return doc, nil
}

func (s *stubRegistry) Update(ctx context.Context, didStr string, document []byte) error {
	if _, ok := s.documents[didStr]; !ok {
		return core.ErrDIDNotFound
	}
	return nil
}

func (s *stubRegistry) Deactivate(ctx context.Context, didStr string) error {
	s.deactivated[didStr] = true
	return nil
}

func (s *stubRegistry) IsActive(ctx context.Context, didStr string) (bool, error) {
	_, ok := s.documents[didStr]
	return ok && !s.deactivated[didStr], nil
}

func (s *stubRegistry) DIDForAddress(ctx context.Context, address string) (string, error) {
	return s.byAddress[strings.ToLower(address)], nil
}

func (s *stubRegistry) HasRole(ctx context.Context, didStr string, role core.Role) (bool, error) {
	return s.roles[didStr][role], nil
}

func (s *stubRegistry) grantRole(didStr string, role core.Role) {
	if s.roles[didStr] == nil {
		s.roles[didStr] = make(map[core.Role]bool)
	}
	s.roles[didStr][role] = true
}

type stubDataRegistry struct {
	records map[string]*core.Record
}

func (s *stubDataRegistry) RegisterRecord(ctx context.Context, record *core.Record) error {
	copied := *record
	s.records[record.ID] = &copied
	return nil
}

func (s *stubDataRegistry) GetRecord(ctx context.Context, id string) (*core.Record, error) {
	record, ok := s.records[id]
	if !ok {
		return nil, core.ErrRecordNotFound
	}
	copied := *record
	return &copied, nil
}

type stubEvents struct{}

func (stubEvents) PublishLogin(ctx context.Context, address, didStr, role string) error { return nil }

func (stubEvents) PublishLogout(ctx context.Context, address, tokenID string) error { return nil }

func (stubEvents) PublishDIDRegistered(ctx context.Context, address, didStr string) error {
	return nil
}

type routerFixture struct {
	router   *gin.Engine
	registry *stubRegistry
	key      *ecdsa.PrivateKey
	address  string
}

func newRouterFixture(t *testing.T) *routerFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	key, err := crypto.GenerateKey()
	require.NoError(t, err)

	registry := newStubRegistry()
	memStore := store.NewMemoryStore()
	tok := tokenizer.NewJWTTokenizer([]byte("access-secret"), []byte("refresh-secret"))
	log := zerolog.Nop()
	roles := service.NewRoleResolver(registry, log)
	events := stubEvents{}

	authService := service.NewAuthService(tok, memStore, memStore, registry, roles, nil, events, log)
	didService := service.NewDIDService(registry, events, log)
	recordService := service.NewRecordService(&stubDataRegistry{records: make(map[string]*core.Record)}, log)

	router := SetupRouter(Services{
		Auth:    authService,
		DID:     didService,
		Records: recordService,
	})

	return &routerFixture{
		router:   router,
		registry: registry,
		key:      key,
		address:  crypto.PubkeyToAddress(key.PublicKey).Hex(),
	}
}

func (f *routerFixture) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder, data any) Envelope {
	t.Helper()

	var envelope struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
		Message string          `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	if data != nil && len(envelope.Data) > 0 {
		require.NoError(t, json.Unmarshal(envelope.Data, data))
	}
	return Envelope{Success: envelope.Success, Message: envelope.Message}
}

// login runs the full challenge flow and returns the issued token pair.
func (f *routerFixture) login(t *testing.T) (access, refresh string) {
	t.Helper()

	var challengeResp struct {
		Challenge string `json:"challenge"`
		ExpiresAt string `json:"expiresAt"`
	}
	rec := f.do(t, http.MethodPost, "/auth/challenge", "", gin.H{"address": f.address})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	decodeEnvelope(t, rec, &challengeResp)
	require.Len(t, challengeResp.Challenge, 64)

	message := eth.ChallengeMessage(challengeResp.Challenge)
	sig, err := crypto.Sign(accounts.TextHash([]byte(message)), f.key)
	require.NoError(t, err)
	sig[64] += 27

	var tokens struct {
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
		User         struct {
			Address string `json:"address"`
			DID     string `json:"did"`
			Role    string `json:"role"`
		} `json:"user"`
	}
	rec = f.do(t, http.MethodPost, "/auth/authenticate", "", gin.H{
		"address":   f.address,
		"signature": hexutil.Encode(sig),
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	decodeEnvelope(t, rec, &tokens)
	require.NotEmpty(t, tokens.AccessToken)
	require.NotEmpty(t, tokens.RefreshToken)

	return tokens.AccessToken, tokens.RefreshToken
}

func TestChallengeLoginFlow(t *testing.T) {
	f := newRouterFixture(t)

	access, _ := f.login(t)

	var me struct {
		Address string `json:"address"`
		DID     string `json:"did"`
		Role    string `json:"role"`
	}
	rec := f.do(t, http.MethodGet, "/api/me", access, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeEnvelope(t, rec, &me)

	assert.Equal(t, strings.ToLower(f.address), me.Address)
	assert.Empty(t, me.DID)
	assert.Equal(t, string(core.RoleConsumer), me.Role)
}

func TestAuthenticateRejectsWrongSigner(t *testing.T) {
	f := newRouterFixture(t)

	var challengeResp struct {
		Challenge string `json:"challenge"`
	}
	rec := f.do(t, http.MethodPost, "/auth/challenge", "", gin.H{"address": f.address})
	require.Equal(t, http.StatusOK, rec.Code)
	decodeEnvelope(t, rec, &challengeResp)

	otherKey, err := crypto.GenerateKey()
	require.NoError(t, err)
	message := eth.ChallengeMessage(challengeResp.Challenge)
	sig, err := crypto.Sign(accounts.TextHash([]byte(message)), otherKey)
	require.NoError(t, err)

	rec = f.do(t, http.MethodPost, "/auth/authenticate", "", gin.H{
		"address":   f.address,
		"signature": hexutil.Encode(sig),
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	envelope := decodeEnvelope(t, rec, nil)
	assert.False(t, envelope.Success)
}

func TestAuthMiddleware(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(t, http.MethodGet, "/api/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("Authorization", "Token abc") // wrong scheme
	raw := httptest.NewRecorder()
	f.router.ServeHTTP(raw, req)
	assert.Equal(t, http.StatusUnauthorized, raw.Code)

	rec = f.do(t, http.MethodGet, "/api/me", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestDIDCreateIdempotent(t *testing.T) {
	f := newRouterFixture(t)

	var first struct {
		DID string `json:"did"`
	}
	rec := f.do(t, http.MethodPost, "/did/create", "", gin.H{"address": f.address})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	decodeEnvelope(t, rec, &first)
	assert.Equal(t, "did:ethr:"+strings.ToLower(f.address), first.DID)

	var second struct {
		DID string `json:"did"`
	}
	rec = f.do(t, http.MethodPost, "/did/create", "", gin.H{"address": f.address})
	require.Equal(t, http.StatusOK, rec.Code)
	decodeEnvelope(t, rec, &second)
	assert.Equal(t, first.DID, second.DID)
}

func TestDIDResolveNotFound(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(t, http.MethodPost, "/did/resolve", "", gin.H{
		"did": "did:ethr:0x0000000000000000000000000000000000000001",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	envelope := decodeEnvelope(t, rec, nil)
	assert.False(t, envelope.Success)
	assert.Contains(t, envelope.Message, "notFound")
}

func TestDIDUpdateRequiresAdmin(t *testing.T) {
	f := newRouterFixture(t)

	access, _ := f.login(t) // consumer token

	rec := f.do(t, http.MethodPost, "/did/update", access, gin.H{
		"did":         "did:ethr:" + strings.ToLower(f.address),
		"didDocument": gin.H{"id": "did:ethr:" + strings.ToLower(f.address)},
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(t, http.MethodPost, "/did/update", "", gin.H{"did": "x"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRecordLifecycle(t *testing.T) {
	f := newRouterFixture(t)

	// Register the DID and grant the producer role before logging in so the
	// session carries both.
	rec := f.do(t, http.MethodPost, "/did/create", "", gin.H{"address": f.address})
	require.Equal(t, http.StatusCreated, rec.Code)
	didStr := "did:ethr:" + strings.ToLower(f.address)
	f.registry.grantRole(didStr, core.RoleProducer)

	access, _ := f.login(t)

	payload := gin.H{"resourceType": "Observation", "status": "final"}

	var record core.Record
	rec = f.do(t, http.MethodPost, "/records/register", access, gin.H{
		"did":          didStr,
		"resourceType": "Observation",
		"payload":      payload,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	decodeEnvelope(t, rec, &record)
	require.NotEmpty(t, record.ID)
	assert.Equal(t, didStr, record.OwnerDID)

	var fetched core.Record
	rec = f.do(t, http.MethodGet, "/records/"+record.ID, access, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeEnvelope(t, rec, &fetched)
	assert.Equal(t, record.Hash, fetched.Hash)

	var verify struct {
		Valid bool `json:"valid"`
	}
	rec = f.do(t, http.MethodPost, "/records/"+record.ID+"/verify", access, gin.H{"payload": payload})
	require.Equal(t, http.StatusOK, rec.Code)
	decodeEnvelope(t, rec, &verify)
	assert.True(t, verify.Valid)

	rec = f.do(t, http.MethodPost, "/records/"+record.ID+"/verify", access, gin.H{
		"payload": gin.H{"resourceType": "Observation", "status": "amended"},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	decodeEnvelope(t, rec, &verify)
	assert.False(t, verify.Valid)
}

func TestRecordRegisterRequiresProducerRole(t *testing.T) {
	f := newRouterFixture(t)

	access, _ := f.login(t) // consumer token

	rec := f.do(t, http.MethodPost, "/records/register", access, gin.H{
		"did":          "did:ethr:" + strings.ToLower(f.address),
		"resourceType": "Observation",
		"payload":      gin.H{"status": "final"},
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRecordRegisterRejectsForeignDID(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(t, http.MethodPost, "/did/create", "", gin.H{"address": f.address})
	require.Equal(t, http.StatusCreated, rec.Code)
	didStr := "did:ethr:" + strings.ToLower(f.address)
	f.registry.grantRole(didStr, core.RoleProducer)

	access, _ := f.login(t)

	rec = f.do(t, http.MethodPost, "/records/register", access, gin.H{
		"did":          "did:ethr:0x0000000000000000000000000000000000000001",
		"resourceType": "Observation",
		"payload":      gin.H{"status": "final"},
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRefreshRotation(t *testing.T) {
	f := newRouterFixture(t)

	_, refresh := f.login(t)

	var rotated struct {
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
	}
	rec := f.do(t, http.MethodPost, "/auth/refresh", "", gin.H{"refreshToken": refresh})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	decodeEnvelope(t, rec, &rotated)
	assert.NotEqual(t, refresh, rotated.RefreshToken)

	// The rotated-out token is dead.
	rec = f.do(t, http.MethodPost, "/auth/refresh", "", gin.H{"refreshToken": refresh})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogoutRevokesAccess(t *testing.T) {
	f := newRouterFixture(t)

	access, refresh := f.login(t)

	rec := f.do(t, http.MethodPost, "/auth/logout", access, gin.H{"refreshToken": refresh})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// The access token minted against the revoked refresh token dies with it.
	rec = f.do(t, http.MethodGet, "/api/me", access, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestVerifyEndpoint(t *testing.T) {
	f := newRouterFixture(t)

	access, _ := f.login(t)

	var user struct {
		Address string `json:"address"`
		Role    string `json:"role"`
	}
	rec := f.do(t, http.MethodPost, "/auth/verify", "", gin.H{"token": access})
	require.Equal(t, http.StatusOK, rec.Code)
	decodeEnvelope(t, rec, &user)
	assert.Equal(t, strings.ToLower(f.address), user.Address)

	rec = f.do(t, http.MethodPost, "/auth/verify", "", gin.H{"token": "garbage"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
