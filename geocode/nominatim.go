// Copyright 2025 The VitalFlow Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/vitalflow/vitalflow/spatial"
)

// DefaultNominatimEndpoint is the public OpenStreetMap Nominatim instance.
const DefaultNominatimEndpoint = "https://nominatim.openstreetmap.org"

// NominatimGeocoder uses the Nominatim search API.
type NominatimGeocoder struct {
	endpoint   string
	region     string
	httpClient *http.Client
}

// NewNominatimGeocoder creates a Nominatim geocoder. region, when not empty,
// is appended to every query (for example "Tamil Nadu, India").
func NewNominatimGeocoder(endpoint, region string, httpClient *http.Client) *NominatimGeocoder {
	if endpoint == "" {
		endpoint = DefaultNominatimEndpoint
	}

	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &NominatimGeocoder{
		endpoint:   strings.TrimSuffix(endpoint, "/"),
		region:     region,
		httpClient: httpClient,
	}
}

type nominatimPlace struct {
	Lat         string  `json:"lat"`
	Lon         string  `json:"lon"`
	DisplayName string  `json:"display_name"`
	Importance  float64 `json:"importance"`
}

func (g *NominatimGeocoder) Geocode(ctx context.Context, address string) (*Result, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, noMatch(address)
	}

	searchQuery := address
	if g.region != "" {
		searchQuery = address + ", " + g.region
	}

	params := url.Values{}
	params.Set("q", searchQuery)
	params.Set("format", "json")
	params.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.endpoint+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, &GeocodingError{Type: ErrorTypeInvalidRequest, Message: "building request", Err: err}
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, classifyTransportError(err)
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, ClassifyHTTPError(resp.StatusCode)
	}

	var places []nominatimPlace
	if err := json.NewDecoder(resp.Body).Decode(&places); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	if len(places) == 0 {
		return nil, noMatch(address)
	}

	place := places[0]

	// coordinates come string-encoded; anything unparsable is a miss
	lat, errLat := strconv.ParseFloat(place.Lat, 64)
	lng, errLng := strconv.ParseFloat(place.Lon, 64)

	point := spatial.Point{Lat: lat, Lng: lng}
	if errLat != nil || errLng != nil || !point.Valid() {
		return nil, noMatch(address)
	}

	confidence := "low"

	switch {
	case place.Importance >= 0.6:
		confidence = "high"
	case place.Importance >= 0.4:
		confidence = "medium"
	}

	return &Result{
		Point:       point,
		Confidence:  confidence,
		Provider:    "nominatim",
		DisplayName: place.DisplayName,
	}, nil
}
