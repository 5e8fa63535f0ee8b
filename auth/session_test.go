// Copyright 2025 The VitalFlow Authors
// SPDX-License-Identifier: Apache-2.0

package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndVerify(t *testing.T) {
	issuer := NewIssuer("secret", 0)
	assert.Equal(t, DefaultTTL, issuer.TTL())

	token, issued, err := issuer.Issue("kavya")
	require.NoError(t, err)
	assert.NotEmpty(t, issued.TokenID)

	session, err := issuer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "kavya", session.Username)
	assert.Equal(t, issued.TokenID, session.TokenID)
	assert.True(t, session.ExpiresAt.Equal(issued.ExpiresAt))
	assert.True(t, session.Authenticated())
}

func TestVerifyRejects(t *testing.T) {
	issuer := NewIssuer("secret", time.Hour)

	token, _, err := issuer.Issue("kavya")
	require.NoError(t, err)

	t.Run("wrong secret", func(t *testing.T) {
		_, err := NewIssuer("other", time.Hour).Verify(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("tampered", func(t *testing.T) {
		_, err := issuer.Verify(token + "x")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := issuer.Verify("not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		later := NewIssuer("secret", time.Hour)
		later.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

		_, err := later.Verify(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestIssueRequiresUsername(t *testing.T) {
	_, _, err := NewIssuer("secret", 0).Issue("")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAnonymousSession(t *testing.T) {
	var s *Session
	assert.False(t, s.Authenticated())
	assert.False(t, (&Session{}).Authenticated())
}

func setupRouter(issuer *Issuer) *gin.Engine {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(issuer.Middleware())
	r.GET("/whoami", func(c *gin.Context) {
		c.String(http.StatusOK, SessionFrom(c).Username)
	})
	r.GET("/dashboard", RequireSession("/login"), func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	r.GET("/api/users", RequireAPISession(), func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	r.GET("/login", func(c *gin.Context) {
		token, _, err := issuer.Issue(c.Query("user"))
		if err != nil {
			c.Status(http.StatusBadRequest)

			return
		}

		issuer.SetCookie(c, token)
		c.Status(http.StatusNoContent)
	})
	r.GET("/logout", func(c *gin.Context) {
		ClearCookie(c)
		c.Status(http.StatusNoContent)
	})

	return r
}

func TestMiddleware(t *testing.T) {
	issuer := NewIssuer("secret", time.Hour)
	router := setupRouter(issuer)

	token, _, err := issuer.Issue("kavya")
	require.NoError(t, err)

	t.Run("anonymous", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/whoami", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Body.String())
	})

	t.Run("bearer", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set("Authorization", "Bearer "+token)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, "kavya", w.Body.String())
	})

	t.Run("cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.AddCookie(&http.Cookie{Name: CookieName, Value: token})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, "kavya", w.Body.String())
	})

	t.Run("invalid token is anonymous", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.AddCookie(&http.Cookie{Name: CookieName, Value: "bogus"})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Empty(t, w.Body.String())
	})
}

func TestGates(t *testing.T) {
	issuer := NewIssuer("secret", time.Hour)
	router := setupRouter(issuer)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/dashboard", nil))
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/users", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"Unauthorized"}`, w.Body.String())

	token, _, err := issuer.Issue("kavya")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: token})

	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLoginLogoutCookies(t *testing.T) {
	router := setupRouter(NewIssuer("secret", time.Hour))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/login?user=kavya", nil))

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, CookieName, cookies[0].Name)
	assert.Equal(t, 3600, cookies[0].MaxAge)
	assert.True(t, cookies[0].HttpOnly)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/logout", nil))

	cookies = w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "", cookies[0].Value)
	assert.Negative(t, cookies[0].MaxAge)
}
