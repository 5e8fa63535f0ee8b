// Copyright 2025 The VitalFlow Authors
// SPDX-License-Identifier: Apache-2.0

package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// NearbyPath is the backend endpoint queried by Client.
const NearbyPath = "/api/nearby"

// maximum accepted response body
const maxPayloadSize = 8 << 20

// NearbyClient fetches nearby candidates for a search term.
type NearbyClient interface {
	Nearby(ctx context.Context, term string) (*Payload, error)
}

// Client queries the backend nearby endpoint over HTTP.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a Client for the backend at baseURL. The http.Client
// is expected to carry the request timeout.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{baseURL: strings.TrimRight(baseURL, "/"), client: httpClient}
}

// Nearby issues exactly one POST with the term and returns the decoded
// payload. It does not retry.
func (c *Client) Nearby(ctx context.Context, term string) (*Payload, error) {
	if strings.TrimSpace(term) == "" {
		return nil, ErrEmptyInput
	}

	body, err := json.Marshal(map[string]string{"location": term})
	if err != nil {
		return nil, &SearchError{Term: term, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+NearbyPath, bytes.NewReader(body))
	if err != nil {
		return nil, &SearchError{Term: term, Err: err}
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &SearchError{Term: term, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))

		return nil, &SearchError{
			Term:       term,
			StatusCode: resp.StatusCode,
			Err:        errors.New(strings.TrimSpace(string(msg))),
		}
	}

	var payload Payload
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxPayloadSize)).Decode(&payload); err != nil {
		return nil, &SearchError{Term: term, StatusCode: resp.StatusCode, Err: fmt.Errorf("decoding response: %w", err)}
	}

	return &payload, nil
}
