// Copyright 2025 The VitalFlow Authors
// SPDX-License-Identifier: Apache-2.0

// Package auth holds the explicit session value handlers use to decide
// whether a visitor is logged in. Sessions travel as HS256 signed tokens,
// either in the vf_session cookie or in an Authorization Bearer header.
package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	// CookieName is the cookie carrying the session token for pages.
	CookieName = "vf_session"

	// DefaultTTL is how long an issued token stays valid.
	DefaultTTL = 24 * time.Hour

	sessionKey = "vitalflow.session"
)

var (
	ErrInvalidToken       = errors.New("invalid token")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Session is the authentication state of one request. The zero value and
// nil both mean anonymous.
type Session struct {
	Username  string
	TokenID   string
	ExpiresAt time.Time
}

// Authenticated reports whether the session belongs to a logged in user.
func (s *Session) Authenticated() bool {
	return s != nil && s.Username != ""
}

// Issuer signs and verifies session tokens.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewIssuer creates an Issuer. A non-positive ttl means DefaultTTL.
func NewIssuer(secret string, ttl time.Duration) *Issuer {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	return &Issuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// TTL returns the lifetime of issued tokens.
func (i *Issuer) TTL() time.Duration {
	return i.ttl
}

// Issue returns a signed token for username and the session it encodes.
func (i *Issuer) Issue(username string) (string, *Session, error) {
	if username == "" {
		return "", nil, fmt.Errorf("issuing token: %w", ErrInvalidCredentials)
	}

	now := i.now()
	session := &Session{
		Username:  username,
		TokenID:   uuid.NewString(),
		ExpiresAt: now.Add(i.ttl).Truncate(time.Second),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   session.Username,
		ID:        session.TokenID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
	})

	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", nil, fmt.Errorf("signing token: %w", err)
	}

	return signed, session, nil
}

// Verify checks the token signature and expiry and returns its session.
func (i *Issuer) Verify(token string) (*Session, error) {
	claims := &jwt.RegisteredClaims{}

	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return i.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(i.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	session := &Session{Username: claims.Subject, TokenID: claims.ID}
	if claims.ExpiresAt != nil {
		session.ExpiresAt = claims.ExpiresAt.Time
	}

	return session, nil
}

// tokenFrom returns the bearer token of the request, falling back to the
// session cookie.
func tokenFrom(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		if token, ok := strings.CutPrefix(header, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}

	if cookie, err := c.Cookie(CookieName); err == nil {
		return cookie
	}

	return ""
}

// Middleware initializes the request session once, before any handler
// runs. Requests without a valid token get an anonymous session.
func (i *Issuer) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := &Session{}

		if token := tokenFrom(c); token != "" {
			if s, err := i.Verify(token); err == nil {
				session = s
			}
		}

		c.Set(sessionKey, session)
		c.Next()
	}
}

// SessionFrom returns the session the middleware attached to c.
func SessionFrom(c *gin.Context) *Session {
	if v, ok := c.Get(sessionKey); ok {
		if s, ok := v.(*Session); ok {
			return s
		}
	}

	return &Session{}
}

// RequireSession redirects anonymous visitors of gated pages to loginPath.
func RequireSession(loginPath string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !SessionFrom(c).Authenticated() {
			c.Redirect(http.StatusFound, loginPath)
			c.Abort()

			return
		}

		c.Next()
	}
}

// RequireAPISession rejects anonymous API calls with 401.
func RequireAPISession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !SessionFrom(c).Authenticated() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})

			return
		}

		c.Next()
	}
}

// SetCookie stores token in the session cookie.
func (i *Issuer) SetCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, token, int(i.ttl.Seconds()), "/", "", false, true)
}

// ClearCookie removes the session cookie.
func ClearCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, "", -1, "/", "", false, true)
}
