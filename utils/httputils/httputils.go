// Copyright 2025 The VitalFlow Authors
// SPDX-License-Identifier: Apache-2.0

// Package httputils builds the outbound HTTP clients used for geocoding and
// nearby searches.
package httputils

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httputil"
	"os"
	"regexp"
	"strings"
	"time"
)

const (
	defaultUserAgent = "vitalflow/unknown"
	defaultTimeout   = 30 * time.Second

	maxTraceLines = 256
	maxTraceChars = 512
)

var (
	// API keys travel in the query string of Google Maps requests.
	apiKeyParam = regexp.MustCompile(`([?&]key=)[^&\s]+`)

	redactedHeaders = []string{"authorization:", "cookie:", "set-cookie:"}
)

// redact hides credentials in a single dumped line.
func redact(line string) string {
	lower := strings.ToLower(line)
	for _, h := range redactedHeaders {
		if strings.HasPrefix(lower, h) {
			return line[:len(h)] + " <redacted>"
		}
	}

	return apiKeyParam.ReplaceAllString(line, "${1}<redacted>")
}

// traceLines prefixes, redacts and bounds the lines of an HTTP dump.
func traceLines(dump []byte, prefix string) string {
	lines := strings.Split(strings.TrimRight(string(dump), "\r\n"), "\n")

	truncated := len(lines) > maxTraceLines
	if truncated {
		lines = lines[:maxTraceLines]
	}

	var sb strings.Builder

	for _, line := range lines {
		line = redact(strings.TrimRight(line, "\r"))
		if len(line) > maxTraceChars {
			line = line[:maxTraceChars] + "…"
		}

		sb.WriteString(prefix)
		sb.WriteString(line)
		sb.WriteByte('\n')
	}

	if truncated {
		sb.WriteString(prefix + "…\n")
	}

	return sb.String()
}

// TracingTransport writes a redacted dump of every exchange to Writer.
// A nil Writer disables tracing.
type TracingTransport struct {
	Next     http.RoundTripper
	Writer   io.Writer
	DumpBody bool
}

// RoundTrip implements http.RoundTripper.
func (t *TracingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.Writer == nil {
		return t.Next.RoundTrip(req)
	}

	dump, err := httputil.DumpRequestOut(req, t.DumpBody)
	if err != nil {
		return nil, fmt.Errorf("tracing HTTP request: %w", err)
	}

	fmt.Fprint(t.Writer, traceLines(dump, "> "))

	start := time.Now()

	resp, err := t.Next.RoundTrip(req)
	if err != nil {
		fmt.Fprintf(t.Writer, "< FAILED after %v: %v\n", time.Since(start), err)

		return nil, err
	}

	dump, err = httputil.DumpResponse(resp, t.DumpBody)
	if err != nil {
		return nil, fmt.Errorf("tracing HTTP response: %w", err)
	}

	fmt.Fprintf(t.Writer, "< %s in %v\n%s", req.URL.Host, time.Since(start), traceLines(dump, "< "))

	return resp, nil
}

// DefaultHeaderTransport sets headers the request does not already carry.
// The caller's request is left untouched.
type DefaultHeaderTransport struct {
	Next    http.RoundTripper
	Headers http.Header
}

// RoundTrip implements http.RoundTripper.
func (t *DefaultHeaderTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())

	for k, vs := range t.Headers {
		if req.Header.Get(k) == "" && len(vs) > 0 {
			req.Header.Set(k, vs[0])
		}
	}

	return t.Next.RoundTrip(req)
}

// ClientOptions configures the clients built by NewClient.
type ClientOptions struct {
	// UserAgent identifies us to geocoding providers, Nominatim requires it.
	UserAgent string

	// Timeout bounds every request, including reading the body.
	Timeout time.Duration

	EnableHTTPTrace     bool
	EnableHTTPBodyTrace bool

	// Transport overrides the base transport.
	Transport http.RoundTripper
}

// NewClient builds an http.Client that sends JSON-accepting requests with
// our User-Agent, optionally tracing them to stderr.
func NewClient(options ClientOptions) *http.Client {
	base := options.Transport
	if base == nil {
		base = &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			MaxIdleConns:          10,
			MaxIdleConnsPerHost:   4,
			IdleConnTimeout:       30 * time.Second,
			ResponseHeaderTimeout: 30 * time.Second,
		}
	}

	tracing := &TracingTransport{Next: base, DumpBody: options.EnableHTTPBodyTrace}
	if options.EnableHTTPTrace || options.EnableHTTPBodyTrace {
		tracing.Writer = os.Stderr
	}

	headers := make(http.Header)
	headers.Set("User-Agent", cmpOr(options.UserAgent, defaultUserAgent))
	headers.Set("Accept", "application/json")

	timeout := options.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: &DefaultHeaderTransport{Next: tracing, Headers: headers},
	}
}

func cmpOr(s, fallback string) string {
	if s == "" {
		return fallback
	}

	return s
}
