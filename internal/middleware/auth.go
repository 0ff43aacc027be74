// Package middleware provides authentication, logging, rate limiting and tracing middleware.
package middleware

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"campusbridge/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// Locals keys set by the auth middleware.
const (
	LocalUserID  = "userID"
	LocalIsAdmin = "isAdmin"
)

var (
	errMissingToken = errors.New("authorization header required")
	errBadFormat    = errors.New("invalid authorization header format")
	errBadToken     = errors.New("invalid or expired token")
	errBadSubject   = errors.New("invalid token subject")
)

// Identity is what the identity provider asserts about the caller.
type Identity struct {
	UserID  uint
	IsAdmin bool
}

// Authenticator verifies HS256 bearer tokens issued by the identity provider.
type Authenticator struct {
	secret []byte
}

// NewAuthenticator returns an Authenticator for the shared secret.
func NewAuthenticator(secret string) *Authenticator {
	return &Authenticator{secret: []byte(secret)}
}

// Parse validates a raw token and extracts the caller identity from the
// "sub" and optional "adm" claims.
func (a *Authenticator) Parse(tokenString string) (Identity, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errBadToken
		}
		return a.secret, nil
	})
	if err != nil || !token.Valid {
		return Identity{}, errBadToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, errBadToken
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return Identity{}, errBadSubject
	}
	userID, err := strconv.ParseUint(sub, 10, 32)
	if err != nil || userID == 0 {
		return Identity{}, errBadSubject
	}

	isAdmin, _ := claims["adm"].(bool)
	return Identity{UserID: uint(userID), IsAdmin: isAdmin}, nil
}

func bearerToken(c *fiber.Ctx) (string, error) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return "", errMissingToken
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", errBadFormat
	}
	return parts[1], nil
}

func (a *Authenticator) identify(c *fiber.Ctx) error {
	raw, err := bearerToken(c)
	if err != nil {
		return err
	}
	id, err := a.Parse(raw)
	if err != nil {
		return err
	}
	c.Locals(LocalUserID, id.UserID)
	c.Locals(LocalIsAdmin, id.IsAdmin)
	c.SetUserContext(WithUserID(c.UserContext(), id.UserID))
	return nil
}

// Required rejects requests without a valid bearer token.
func (a *Authenticator) Required() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := a.identify(c); err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized, models.NewUnauthorizedError(err.Error()))
		}
		return c.Next()
	}
}

// Optional identifies the caller when a token is present and lets anonymous
// requests through. An invalid token is still rejected.
func (a *Authenticator) Optional() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Get("Authorization") == "" {
			return c.Next()
		}
		if err := a.identify(c); err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized, models.NewUnauthorizedError(err.Error()))
		}
		return c.Next()
	}
}

// AdminRequired must run after Required.
func AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if isAdmin, _ := c.Locals(LocalIsAdmin).(bool); !isAdmin {
			return models.RespondWithError(c, fiber.StatusForbidden, models.NewPermissionDeniedError("admin access required"))
		}
		return c.Next()
	}
}

// SignToken issues a token in the identity provider's format. cmd/seed uses it
// to hand out a development admin token.
func SignToken(secret string, userID uint, isAdmin bool, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub": strconv.FormatUint(uint64(userID), 10),
		"exp": time.Now().Add(ttl).Unix(),
	}
	if isAdmin {
		claims["adm"] = true
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
