package tokenizer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medichain/medichain/core"
)

var (
	accessSecret  = []byte("access-secret-for-tests")
	refreshSecret = []byte("refresh-secret-for-tests")
)

func testSession() *core.Session {
	now := time.Now()
	return &core.Session{
		ID:            "session-1",
		Address:       "0x8ba1f109551bd432803012645ac136ddd64dba72",
		DID:           "did:ethr:0x8ba1f109551bd432803012645ac136ddd64dba72",
		Role:          core.RoleProducer,
		IssuedAt:      now,
		AccessExpiry:  now.Add(15 * time.Minute),
		RefreshExpiry: now.Add(5 * 24 * time.Hour),
		RefreshID:     "refresh-1",
	}
}

func TestAccessTokenRoundTrip(t *testing.T) {
	tok := NewJWTTokenizer(accessSecret, refreshSecret)
	session := testSession()

	tokenStr, err := tok.SessionToAccessToken(session)
	require.NoError(t, err)

	got, err := tok.AccessTokenToSession(tokenStr)
	require.NoError(t, err)

	assert.Equal(t, session.Address, got.Address)
	assert.Equal(t, session.DID, got.DID)
	assert.Equal(t, session.Role, got.Role)
	assert.Equal(t, session.RefreshID, got.RefreshID)
}

func TestAccessTokenWithoutDID(t *testing.T) {
	tok := NewJWTTokenizer(accessSecret, refreshSecret)
	session := testSession()
	session.DID = ""
	session.Role = core.RoleConsumer

	tokenStr, err := tok.SessionToAccessToken(session)
	require.NoError(t, err)

	got, err := tok.AccessTokenToSession(tokenStr)
	require.NoError(t, err)

	assert.Empty(t, got.DID)
	assert.Equal(t, core.RoleConsumer, got.Role)
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	tok := NewJWTTokenizer(accessSecret, refreshSecret)
	session := testSession()

	tokenStr, err := tok.SessionToRefreshToken(session)
	require.NoError(t, err)

	got, err := tok.RefreshTokenToSession(tokenStr)
	require.NoError(t, err)

	assert.Equal(t, session.Address, got.Address)
	assert.Equal(t, session.RefreshID, got.RefreshID)
}

func TestTokensSignedWithDistinctSecrets(t *testing.T) {
	tok := NewJWTTokenizer(accessSecret, refreshSecret)
	session := testSession()

	accessToken, err := tok.SessionToAccessToken(session)
	require.NoError(t, err)
	refreshToken, err := tok.SessionToRefreshToken(session)
	require.NoError(t, err)

	// Tokens do not validate across classes.
	_, err = tok.RefreshTokenToSession(accessToken)
	assert.Error(t, err)
	_, err = tok.AccessTokenToSession(refreshToken)
	assert.Error(t, err)
}

func TestWrongSecretRejected(t *testing.T) {
	tok := NewJWTTokenizer(accessSecret, refreshSecret)
	other := NewJWTTokenizer([]byte("different-access"), []byte("different-refresh"))

	session := testSession()
	tokenStr, err := tok.SessionToAccessToken(session)
	require.NoError(t, err)

	_, err = other.AccessTokenToSession(tokenStr)
	assert.Error(t, err)
}

func TestExpiredAccessTokenRejected(t *testing.T) {
	tok := NewJWTTokenizer(accessSecret, refreshSecret)

	session := testSession()
	session.IssuedAt = time.Now().Add(-time.Hour)
	session.AccessExpiry = time.Now().Add(-30 * time.Minute)

	tokenStr, err := tok.SessionToAccessToken(session)
	require.NoError(t, err)

	_, err = tok.AccessTokenToSession(tokenStr)
	assert.ErrorIs(t, err, core.ErrTokenExpired)
}

func TestGarbageTokenRejected(t *testing.T) {
	tok := NewJWTTokenizer(accessSecret, refreshSecret)

	_, err := tok.AccessTokenToSession("not.a.jwt")
	assert.ErrorIs(t, err, core.ErrInvalidToken)

	_, err = tok.RefreshTokenToSession("")
	assert.ErrorIs(t, err, core.ErrInvalidToken)
}
