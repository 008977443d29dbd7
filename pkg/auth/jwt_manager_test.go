package auth

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTManager_RoundTrip(t *testing.T) {
	m := NewJWTManager("secret", time.Hour)

	token, err := m.Generate("user_1", Claims{Name: "Ada", Email: "ada@example.com", OrgID: "org_1", OrgRole: "org:admin"})
	require.NoError(t, err)

	claims, err := m.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user_1", claims.Subject)
	assert.Equal(t, "Ada", claims.Name)
	assert.Equal(t, "org_1", claims.OrgID)
	assert.Equal(t, "org:admin", claims.OrgRole)

	exp, err := m.Expiry(token)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)
}

func TestJWTManager_RejectsForeignSecret(t *testing.T) {
	token, err := NewJWTManager("other", time.Hour).Generate("user_1", Claims{})
	require.NoError(t, err)

	_, err = NewJWTManager("secret", time.Hour).Verify(token)
	assert.Error(t, err)
}

func TestJWTManager_RejectsExpired(t *testing.T) {
	token, err := NewJWTManager("secret", -time.Minute).Generate("user_1", Claims{})
	require.NoError(t, err)

	_, err = NewJWTManager("secret", time.Hour).Verify(token)
	assert.Error(t, err)
}

func TestJWTManager_RejectsMissingSubject(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{Name: "nobody"})
	signed, err := token.SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = NewJWTManager("secret", time.Hour).Verify(signed)
	assert.Error(t, err)
}

func TestExtractTokenFromHeader(t *testing.T) {
	req, _ := http.NewRequest(http.MethodGet, "/", nil)

	_, err := ExtractTokenFromHeader(req)
	assert.Error(t, err)

	req.Header.Set("Authorization", "bearer abc")
	token, err := ExtractTokenFromHeader(req)
	require.NoError(t, err)
	assert.Equal(t, "abc", token)

	req.Header.Set("Authorization", "Basic abc")
	_, err = ExtractTokenFromHeader(req)
	assert.Error(t, err)
}

func TestMemoryBlacklist(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBlacklist()

	revoked, err := b.IsRevoked(ctx, "t1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, b.Revoke(ctx, "t1", time.Minute))
	revoked, err = b.IsRevoked(ctx, "t1")
	require.NoError(t, err)
	assert.True(t, revoked)

	require.NoError(t, b.Revoke(ctx, "t2", 0))
	revoked, err = b.IsRevoked(ctx, "t2")
	require.NoError(t, err)
	assert.False(t, revoked)
}
