package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuidarbem/cuidarbem-api/models"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("segredo123")
	require.NoError(t, err)
	assert.NotEqual(t, "segredo123", hash)

	assert.True(t, CheckPassword(hash, "segredo123"))
	assert.False(t, CheckPassword(hash, "errada"))
	assert.False(t, CheckPassword("", "segredo123"))
}

func TestIssueAndParse(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)
	user := &models.User{ID: 12, Role: models.RoleCaregiver}

	signed, claims, err := issuer.Issue(user)
	require.NoError(t, err)
	assert.NotEmpty(t, claims.ID)

	parsed, err := issuer.Parse(signed)
	require.NoError(t, err)
	assert.Equal(t, uint(12), parsed.UserID)
	assert.Equal(t, models.RoleCaregiver, parsed.Role)
	assert.Equal(t, claims.ID, parsed.ID)
	assert.WithinDuration(t, time.Now().Add(time.Hour), parsed.Expiry(), 5*time.Second)
}

func TestParse_RejectsExpiredToken(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)
	issuer.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	signed, _, err := issuer.Issue(&models.User{ID: 1, Role: models.RolePatient})
	require.NoError(t, err)

	_, err = issuer.Parse(signed)
	assert.Error(t, err)
}

func TestParse_RejectsOtherSecret(t *testing.T) {
	signed, _, err := NewTokenIssuer("one", time.Hour).Issue(&models.User{ID: 1, Role: models.RolePatient})
	require.NoError(t, err)

	_, err = NewTokenIssuer("two", time.Hour).Parse(signed)
	assert.Error(t, err)
}

func TestParse_RejectsNoneAlgorithm(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{UserID: 1, Role: models.RoleDoctor})
	signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewTokenIssuer("k", time.Hour).Parse(signed)
	assert.Error(t, err)
}

func TestMemoryRevocationStore(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	store := NewMemoryRevocationStore()
	store.now = func() time.Time { return now }

	require.NoError(t, store.Revoke(ctx, "jti-1", now.Add(time.Hour)))
	require.NoError(t, store.Revoke(ctx, "jti-old", now.Add(-time.Minute)))

	revoked, err := store.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = store.IsRevoked(ctx, "jti-old")
	require.NoError(t, err)
	assert.False(t, revoked, "already expired tokens are not tracked")

	now = now.Add(2 * time.Hour)
	revoked, err = store.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)
}
