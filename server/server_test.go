// Copyright 2025 The VitalFlow Authors
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/vitalflow/vitalflow/auth"
	"github.com/vitalflow/vitalflow/bloodbank"
	"github.com/vitalflow/vitalflow/geocode"
	"github.com/vitalflow/vitalflow/search"
	"github.com/vitalflow/vitalflow/spatial"
	"github.com/vitalflow/vitalflow/utils/htmlutils"
	"golang.org/x/net/html"
)

var (
	chennai = spatial.Point{Lat: 13.0827, Lng: 80.2707}
	egmore  = spatial.Point{Lat: 13.0732, Lng: 80.2609}
)

// testGeocoder knows a couple of Chennai places.
var testGeocoder = geocode.GeocoderFunc(func(_ context.Context, address string) (*geocode.Result, error) {
	switch address {
	case "Chennai":
		return &geocode.Result{Point: chennai}, nil
	case "Egmore, Chennai":
		return &geocode.Result{Point: egmore}, nil
	}

	return nil, geocode.ErrNoMatch
})

type testEnv struct {
	router  *gin.Engine
	backend *httptest.Server
	repo    bloodbank.Repository
	issuer  *auth.Issuer
}

func setupServerTest(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := sql.Open("duckdb", "")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := bloodbank.NewRepository(db)
	require.NoError(t, repo.CreateSchema())

	env := &testEnv{repo: repo, issuer: auth.NewIssuer("test-secret", time.Hour)}

	srv := NewServer(Options{
		Repo:   repo,
		Nearby: bloodbank.NewNearbyService(repo, testGeocoder, 0),
		Issuer: env.issuer,
		NewSearcher: func() *search.Searcher {
			return search.NewSearcher(
				search.NewClient(env.backend.URL, nil),
				search.NewResolver(testGeocoder, 2),
				testGeocoder,
				search.DefaultFallback,
			)
		},
		AllowedOrigin: "http://localhost:3000",
		Fallback:      search.DefaultFallback,
	})

	env.router = srv.Router()
	env.backend = httptest.NewServer(env.router)
	t.Cleanup(env.backend.Close)

	return env
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	return w
}

func (e *testEnv) postJSON(path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	data, _ := json.Marshal(body)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")

	for _, c := range cookies {
		req.AddCookie(c)
	}

	return e.do(req)
}

func (e *testEnv) postForm(path string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	for _, c := range cookies {
		req.AddCookie(c)
	}

	return e.do(req)
}

func (e *testEnv) get(path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)

	for _, c := range cookies {
		req.AddCookie(c)
	}

	return e.do(req)
}

func (e *testEnv) sessionCookie(t *testing.T, username string) *http.Cookie {
	t.Helper()

	token, _, err := e.issuer.Issue(username)
	require.NoError(t, err)

	return &http.Cookie{Name: auth.CookieName, Value: token}
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())

	return v
}

func parseHTML(t *testing.T, w *httptest.ResponseRecorder) *html.Node {
	t.Helper()

	doc, err := htmlutils.AsNode(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)

	return doc
}
