package middleware

import (
	"github.com/gofiber/fiber/v2"
	jwtware "github.com/gofiber/jwt/v3"
	"github.com/golang-jwt/jwt/v4"
	"go.uber.org/zap"

	"github.com/cuidarbem/cuidarbem-api/auth"
	"github.com/cuidarbem/cuidarbem-api/models"
)

const (
	localUserID = "userID"
	localRole   = "role"
	localClaims = "claims"
)

// Protected validates the bearer token, rejects revoked tokens and stores the
// caller's id, role and claims in the request locals.
func Protected(tokens *auth.TokenIssuer, revocations auth.RevocationStore, log *zap.Logger) fiber.Handler {
	return jwtware.New(jwtware.Config{
		KeyFunc:      tokens.KeyFunc,
		Claims:       &auth.Claims{},
		AuthScheme:   "Bearer",
		ErrorHandler: jwtError,
		SuccessHandler: func(c *fiber.Ctx) error {
			token, ok := c.Locals("user").(*jwt.Token)
			if !ok {
				return unauthorized(c)
			}
			claims, ok := token.Claims.(*auth.Claims)
			if !ok || claims.UserID == 0 || !claims.Role.Valid() {
				return unauthorized(c)
			}

			if claims.ID != "" {
				revoked, err := revocations.IsRevoked(c.UserContext(), claims.ID)
				if err != nil {
					log.Error("check token revocation", zap.Error(err))
					return unauthorized(c)
				}
				if revoked {
					return unauthorized(c)
				}
			}

			c.Locals(localUserID, claims.UserID)
			c.Locals(localRole, claims.Role)
			c.Locals(localClaims, claims)
			return c.Next()
		},
	})
}

func jwtError(c *fiber.Ctx, _ error) error {
	return unauthorized(c)
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error": "unauthorized",
	})
}

// CurrentUserID returns the authenticated caller, or 0 outside Protected.
func CurrentUserID(c *fiber.Ctx) uint {
	id, _ := c.Locals(localUserID).(uint)
	return id
}

func CurrentRole(c *fiber.Ctx) models.Role {
	role, _ := c.Locals(localRole).(models.Role)
	return role
}

func CurrentClaims(c *fiber.Ctx) *auth.Claims {
	claims, _ := c.Locals(localClaims).(*auth.Claims)
	return claims
}
