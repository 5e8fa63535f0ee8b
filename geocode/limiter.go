// Copyright 2025 The VitalFlow Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"context"

	"golang.org/x/time/rate"
)

// RateLimitedGeocoder spaces out calls to a provider with a token bucket.
type RateLimitedGeocoder struct {
	next    Geocoder
	limiter *rate.Limiter
}

// NewRateLimitedGeocoder allows perSecond lookups per second with the given
// burst. The public Nominatim instance asks for at most one per second.
func NewRateLimitedGeocoder(next Geocoder, perSecond float64, burst int) *RateLimitedGeocoder {
	if burst < 1 {
		burst = 1
	}

	return &RateLimitedGeocoder{
		next:    next,
		limiter: rate.NewLimiter(rate.Limit(perSecond), burst),
	}
}

// Rate returns the allowed lookups per second.
func (g *RateLimitedGeocoder) Rate() float64 {
	return float64(g.limiter.Limit())
}

func (g *RateLimitedGeocoder) Geocode(ctx context.Context, address string) (*Result, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, &GeocodingError{Type: ErrorTypeTimeout, Message: "waiting for rate limiter", Err: err}
	}

	return g.next.Geocode(ctx, address)
}
