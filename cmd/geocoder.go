// Copyright 2025 The VitalFlow Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/vitalflow/vitalflow/config"
	"github.com/vitalflow/vitalflow/geocode"
	"github.com/vitalflow/vitalflow/search"
	"github.com/vitalflow/vitalflow/utils/httputils"
)

func userAgent(cfg *config.Config) string {
	if cfg.Geocoder.UserAgent != "" {
		return cfg.Geocoder.UserAgent
	}

	return fmt.Sprintf("vitalflow/%s (+https://github.com/vitalflow/vitalflow)", Version)
}

func newHTTPClient(cfg *config.Config, timeout time.Duration) *http.Client {
	return httputils.NewClient(httputils.ClientOptions{
		UserAgent:           userAgent(cfg),
		Timeout:             timeout,
		EnableHTTPTrace:     cfg.Debug.HTTPTrace,
		EnableHTTPBodyTrace: cfg.Debug.HTTPBodyTrace,
	})
}

// newProvider builds the configured provider without rate limiting.
func newProvider(ctx context.Context, cfg *config.Config) (geocode.Geocoder, error) {
	client := newHTTPClient(cfg, cfg.Search.Timeout)

	switch cfg.Geocoder.Provider {
	case config.ProviderGoogle:
		apiKey := cfg.Geocoder.APIKey
		if apiKey == "" {
			log.Println("GOOGLE_MAPS_API_KEY is not set. Attempting to retrieve via ADC...")

			var err error

			apiKey, err = geocode.APIKeyFromADC(ctx, cfg.Geocoder.GoogleProject, cfg.Geocoder.GoogleKeyName)
			if err != nil {
				return nil, fmt.Errorf("retrieving Google Maps API key: %w", err)
			}

			log.Println("Retrieved Google Maps API key via ADC")
		}

		return geocode.NewGoogleMapsGeocoder(apiKey, cfg.Geocoder.Endpoint, cfg.Geocoder.Region, client), nil
	default:
		return geocode.NewNominatimGeocoder(cfg.Geocoder.Endpoint, cfg.Geocoder.Region, client), nil
	}
}

// newGeocoder builds the configured provider behind a rate limiter.
func newGeocoder(ctx context.Context, cfg *config.Config) (*geocode.RateLimitedGeocoder, error) {
	g, err := newProvider(ctx, cfg)
	if err != nil {
		return nil, err
	}

	return geocode.NewRateLimitedGeocoder(g, cfg.Geocoder.RatePerSecond, cfg.Geocoder.Burst), nil
}

// newServeGeocoders splits the configured rate between the nearby backend
// and the map search sessions, each behind its own limiter.
func newServeGeocoders(ctx context.Context, cfg *config.Config) (backend, sessions *geocode.RateLimitedGeocoder, err error) {
	g, err := newProvider(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	half := cfg.Geocoder.RatePerSecond / 2

	return geocode.NewRateLimitedGeocoder(g, half, cfg.Geocoder.Burst),
		geocode.NewRateLimitedGeocoder(g, half, cfg.Geocoder.Burst),
		nil
}

// newSearcherFactory returns a constructor of search sessions that query
// backendURL. All sessions share geocoder and its rate limit.
func newSearcherFactory(cfg *config.Config, backendURL string, geocoder geocode.Geocoder) func() *search.Searcher {
	client := search.NewClient(backendURL, newHTTPClient(cfg, cfg.Search.Timeout))
	resolver := search.NewResolver(geocoder, cfg.Search.Concurrency)

	return func() *search.Searcher {
		return search.NewSearcher(client, resolver, geocoder, cfg.Fallback())
	}
}
