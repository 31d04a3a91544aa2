package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cuidarbem/cuidarbem-api/auth"
	"github.com/cuidarbem/cuidarbem-api/models"
)

func newProtectedApp(tokens *auth.TokenIssuer, revocations auth.RevocationStore) *fiber.App {
	app := fiber.New()
	app.Use(Logger(zap.NewNop()))
	app.Get("/me", Protected(tokens, revocations, zap.NewNop()), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"id": CurrentUserID(c), "role": CurrentRole(c)})
	})
	app.Get("/doctors", Protected(tokens, revocations, zap.NewNop()), RequireRole(models.RoleDoctor), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})
	return app
}

func get(t *testing.T, app *fiber.App, path, token string) int {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp.StatusCode
}

func TestProtected(t *testing.T) {
	tokens := auth.NewTokenIssuer("k", time.Hour)
	revocations := auth.NewMemoryRevocationStore()
	app := newProtectedApp(tokens, revocations)

	token, claims, err := tokens.Issue(&models.User{ID: 7, Role: models.RolePatient})
	require.NoError(t, err)

	assert.Equal(t, http.StatusUnauthorized, get(t, app, "/me", ""))
	assert.Equal(t, http.StatusUnauthorized, get(t, app, "/me", "garbage"))
	assert.Equal(t, http.StatusOK, get(t, app, "/me", token))

	other, _, err := auth.NewTokenIssuer("other", time.Hour).Issue(&models.User{ID: 7, Role: models.RolePatient})
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, get(t, app, "/me", other))

	require.NoError(t, revocations.Revoke(context.Background(), claims.ID, claims.Expiry()))
	assert.Equal(t, http.StatusUnauthorized, get(t, app, "/me", token))
}

func TestRequireRole(t *testing.T) {
	tokens := auth.NewTokenIssuer("k", time.Hour)
	app := newProtectedApp(tokens, auth.NewMemoryRevocationStore())

	patient, _, err := tokens.Issue(&models.User{ID: 1, Role: models.RolePatient})
	require.NoError(t, err)
	doctor, _, err := tokens.Issue(&models.User{ID: 2, Role: models.RoleDoctor})
	require.NoError(t, err)

	assert.Equal(t, http.StatusForbidden, get(t, app, "/doctors", patient))
	assert.Equal(t, http.StatusNoContent, get(t, app, "/doctors", doctor))
}

func TestTokenWithUnknownRoleIsRejected(t *testing.T) {
	tokens := auth.NewTokenIssuer("k", time.Hour)
	app := newProtectedApp(tokens, auth.NewMemoryRevocationStore())

	token, _, err := tokens.Issue(&models.User{ID: 3, Role: models.Role("admin")})
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, get(t, app, "/me", token))
}
