// Copyright 2025 The VitalFlow Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newNominatimServer(t *testing.T, status int, body string, queries *[]string) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		assert.Equal(t, "1", r.URL.Query().Get("limit"))

		if queries != nil {
			*queries = append(*queries, r.URL.Query().Get("q"))
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	return srv
}

func TestNominatimGeocode(t *testing.T) {
	var queries []string

	srv := newNominatimServer(t, http.StatusOK,
		`[{"lat":"13.0732","lon":"80.2609","display_name":"Egmore, Chennai","importance":0.45}]`, &queries)

	g := NewNominatimGeocoder(srv.URL, "Tamil Nadu, India", srv.Client())

	result, err := g.Geocode(context.Background(), "Egmore, Chennai")
	require.NoError(t, err)

	assert.InDelta(t, 13.0732, result.Point.Lat, 1e-9)
	assert.InDelta(t, 80.2609, result.Point.Lng, 1e-9)
	assert.Equal(t, "nominatim", result.Provider)
	assert.Equal(t, "medium", result.Confidence)
	assert.Equal(t, "Egmore, Chennai", result.DisplayName)
	assert.Equal(t, []string{"Egmore, Chennai, Tamil Nadu, India"}, queries)
}

func TestNominatimGeocodeWithoutRegion(t *testing.T) {
	var queries []string

	srv := newNominatimServer(t, http.StatusOK, `[{"lat":"1","lon":"2"}]`, &queries)

	_, err := NewNominatimGeocoder(srv.URL, "", srv.Client()).Geocode(context.Background(), "Salem")
	require.NoError(t, err)
	assert.Equal(t, []string{"Salem"}, queries)
}

func TestNominatimGeocodeMisses(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty array", `[]`},
		{"unparsable lat", `[{"lat":"north","lon":"80.2"}]`},
		{"missing lon", `[{"lat":"13.0"}]`},
		{"out of range", `[{"lat":"123.0","lon":"80.2"}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newNominatimServer(t, http.StatusOK, tt.body, nil)

			_, err := NewNominatimGeocoder(srv.URL, "", srv.Client()).Geocode(context.Background(), "Nowhere")
			require.Error(t, err)
			assert.True(t, IsNoMatch(err), "expected a no match error, got %v", err)
		})
	}
}

func TestNominatimGeocodeBlankAddress(t *testing.T) {
	g := NewNominatimGeocoder("http://127.0.0.1:0", "", nil)

	_, err := g.Geocode(context.Background(), "   ")
	assert.True(t, IsNoMatch(err))
}

func TestNominatimGeocodeHTTPErrors(t *testing.T) {
	srv := newNominatimServer(t, http.StatusTooManyRequests, `{}`, nil)

	_, err := NewNominatimGeocoder(srv.URL, "", srv.Client()).Geocode(context.Background(), "Madurai")
	require.Error(t, err)
	assert.True(t, IsRateLimitError(err))
	assert.False(t, IsNoMatch(err))
}

func TestNominatimGeocodeTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	client := srv.Client()
	client.Timeout = 50 * time.Millisecond

	_, err := NewNominatimGeocoder(srv.URL, "", client).Geocode(context.Background(), "Vellore")
	require.Error(t, err)
	assert.True(t, IsTimeoutError(err))
}
