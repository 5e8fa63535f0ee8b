// Copyright 2025 The VitalFlow Authors
// SPDX-License-Identifier: Apache-2.0

package httputils

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// cannedTransport records the request and answers with body.
type cannedTransport struct {
	got  *http.Request
	body string
	err  error
}

func (c *cannedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	c.got = req
	if c.err != nil {
		return nil, c.err
	}

	return &http.Response{
		Status:     "200 OK",
		StatusCode: http.StatusOK,
		Header:     http.Header{"Set-Cookie": {"vf_session=abc"}},
		Body:       io.NopCloser(strings.NewReader(c.body)),
		Request:    req,
	}, nil
}

func TestRedact(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Authorization: Bearer abc", "Authorization: <redacted>"},
		{"Cookie: vf_session=abc", "Cookie: <redacted>"},
		{"GET /maps/api/geocode/json?address=Egmore&key=AIza123 HTTP/1.1", "GET /maps/api/geocode/json?address=Egmore&key=<redacted> HTTP/1.1"},
		{"GET /search?q=Adyar&format=json HTTP/1.1", "GET /search?q=Adyar&format=json HTTP/1.1"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, redact(tt.in))
	}
}

func TestTracingTransport(t *testing.T) {
	var buf bytes.Buffer

	tr := &TracingTransport{Next: &cannedTransport{body: `{"results":[]}`}, Writer: &buf, DumpBody: true}

	req, err := http.NewRequest(http.MethodGet, "https://maps.googleapis.com/maps/api/geocode/json?address=Adyar&key=secret", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer secret")

	resp, err := tr.RoundTrip(req)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())

	out := buf.String()
	assert.Contains(t, out, "> GET /maps/api/geocode/json?address=Adyar&key=<redacted>")
	assert.Contains(t, out, "< maps.googleapis.com in ")
	assert.Contains(t, out, `< {"results":[]}`)
	assert.NotContains(t, out, "secret")
	assert.NotContains(t, out, "vf_session=abc")
}

func TestTracingTransportFailure(t *testing.T) {
	var buf bytes.Buffer

	boom := errors.New("connection refused")
	tr := &TracingTransport{Next: &cannedTransport{err: boom}, Writer: &buf}

	req, err := http.NewRequest(http.MethodPost, "http://localhost:8080/api/nearby", nil)
	require.NoError(t, err)

	_, err = tr.RoundTrip(req)
	require.ErrorIs(t, err, boom)
	assert.Contains(t, buf.String(), "< FAILED after")
}

func TestTracingTransportDisabled(t *testing.T) {
	canned := &cannedTransport{}
	tr := &TracingTransport{Next: canned}

	req, err := http.NewRequest(http.MethodGet, "http://example.com/", nil)
	require.NoError(t, err)

	resp, err := tr.RoundTrip(req)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	assert.Same(t, req, canned.got)
}

func TestTraceLinesTruncates(t *testing.T) {
	dump := strings.Repeat("x\n", maxTraceLines+10) + strings.Repeat("y", maxTraceChars+1)

	out := traceLines([]byte(dump), "> ")
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")

	assert.Len(t, lines, maxTraceLines+1)
	assert.Equal(t, "> …", lines[len(lines)-1])
}

func TestDefaultHeaderTransport(t *testing.T) {
	canned := &cannedTransport{}
	tr := &DefaultHeaderTransport{
		Next:    canned,
		Headers: http.Header{"X-Region": {"Tamil Nadu"}, "Accept": {"application/json"}},
	}

	req, err := http.NewRequest(http.MethodPost, "http://example.org", nil)
	require.NoError(t, err)
	req.Header.Set("Accept", "text/html")

	resp, err := tr.RoundTrip(req)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())

	assert.Equal(t, "Tamil Nadu", canned.got.Header.Get("X-Region"))
	assert.Equal(t, "text/html", canned.got.Header.Get("Accept"))
	assert.Empty(t, req.Header.Get("X-Region"), "caller request must not be modified")
}

func TestNewClient(t *testing.T) {
	var userAgent, accept string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userAgent, accept = r.Header.Get("User-Agent"), r.Header.Get("Accept")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client := NewClient(ClientOptions{UserAgent: "vitalflow/test", Timeout: time.Second})

	resp, err := client.Get(srv.URL)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())

	assert.Equal(t, "vitalflow/test", userAgent)
	assert.Equal(t, "application/json", accept)
	assert.Equal(t, time.Second, client.Timeout)

	assert.Equal(t, defaultTimeout, NewClient(ClientOptions{}).Timeout)
}
