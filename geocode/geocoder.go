// Copyright 2025 The VitalFlow Authors
// SPDX-License-Identifier: Apache-2.0

// Package geocode resolves free-text addresses to coordinates using
// third-party providers.
package geocode

import (
	"context"

	"github.com/vitalflow/vitalflow/spatial"
)

// Result represents a geocoding result from any provider.
type Result struct {
	Point       spatial.Point
	Confidence  string // high, medium, low
	Provider    string
	DisplayName string
}

// Geocoder interface for different geocoding providers.
//
// A lookup that finds nothing returns an error for which IsNoMatch is true.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (*Result, error)
}

// GeocoderFunc adapts a function to the Geocoder interface.
type GeocoderFunc func(ctx context.Context, address string) (*Result, error)

// Geocode calls f.
func (f GeocoderFunc) Geocode(ctx context.Context, address string) (*Result, error) {
	return f(ctx, address)
}
