// Package auth is the identity check in front of the personalized endpoints. Tokens are HS256
// JWTs carried in the Authorization header or a session cookie.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

const (
	// DefaultCookieName carries the token for browser sessions.
	DefaultCookieName = "seithi_session"
	defaultTTL        = 7 * 24 * time.Hour
)

type ctxKey struct{}

var (
	errMissingToken = errors.New("missing token")
	errInvalidToken = errors.New("invalid token")
	errNoSecret     = errors.New("jwt secret not configured")
)

// Config configures signing and verification.
type Config struct {
	Secret     string
	Issuer     string
	TTL        time.Duration
	CookieName string
}

// Claims are the token claims. The subject is the user id.
type Claims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Identity is the authenticated caller.
type Identity struct {
	UserID string
	Email  string
}

// Authenticator issues and verifies session tokens.
type Authenticator struct {
	secret []byte
	issuer string
	ttl    time.Duration
	cookie string
	now    func() time.Time
}

// New builds an Authenticator. With an empty secret every request is anonymous.
func New(cfg Config) *Authenticator {
	a := &Authenticator{
		secret: []byte(cfg.Secret),
		issuer: cfg.Issuer,
		ttl:    cfg.TTL,
		cookie: cfg.CookieName,
		now:    time.Now,
	}
	if a.ttl <= 0 {
		a.ttl = defaultTTL
	}
	if a.cookie == "" {
		a.cookie = DefaultCookieName
	}
	return a
}

// IssueToken signs a session token for userID.
func (a *Authenticator) IssueToken(userID, email string) (string, error) {
	if len(a.secret) == 0 {
		return "", errNoSecret
	}
	now := a.now()
	claims := Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    a.issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

// Verify parses and validates a raw token.
func (a *Authenticator) Verify(raw string) (Identity, error) {
	if raw == "" {
		return Identity{}, errMissingToken
	}
	if len(a.secret) == 0 {
		return Identity{}, errNoSecret
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(a.now),
	}
	if a.issuer != "" {
		opts = append(opts, jwt.WithIssuer(a.issuer))
	}

	var claims Claims
	parsed, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return a.secret, nil
	}, opts...)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", errInvalidToken, err)
	}
	if !parsed.Valid || claims.Subject == "" {
		return Identity{}, errInvalidToken
	}
	return Identity{UserID: claims.Subject, Email: claims.Email}, nil
}

// FromRequest reads the bearer token, falling back to the session cookie.
func (a *Authenticator) FromRequest(r *http.Request) (Identity, error) {
	if h := r.Header.Get(echo.HeaderAuthorization); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if !ok || !strings.EqualFold(scheme, "bearer") {
			return Identity{}, errInvalidToken
		}
		return a.Verify(strings.TrimSpace(token))
	}
	if c, err := r.Cookie(a.cookie); err == nil {
		return a.Verify(c.Value)
	}
	return Identity{}, errMissingToken
}

// Identify attaches the caller's identity to the request when a valid token is present.
// Requests without one pass through anonymously.
func (a *Authenticator) Identify() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if id, err := a.FromRequest(c.Request()); err == nil {
				ctx := context.WithValue(c.Request().Context(), ctxKey{}, id)
				c.SetRequest(c.Request().WithContext(ctx))
			}
			return next(c)
		}
	}
}

// Require rejects anonymous requests with 401. It expects Identify to run first.
func Require() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !IsAuthenticated(c) {
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}
			return next(c)
		}
	}
}

// IsAuthenticated reports whether Identify found a valid token.
func IsAuthenticated(c echo.Context) bool {
	_, ok := Current(c)
	return ok
}

// Current returns the caller's identity.
func Current(c echo.Context) (Identity, bool) {
	id, ok := c.Request().Context().Value(ctxKey{}).(Identity)
	return id, ok
}

// UserID returns the caller's user id, or "" when anonymous.
func UserID(c echo.Context) string {
	id, _ := Current(c)
	return id.UserID
}
