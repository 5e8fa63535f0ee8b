// Copyright 2025 The VitalFlow Authors
//
// SPDX-License-Identifier: Apache-2.0
package spatial

import (
	"fmt"
	"math"

	"github.com/uber/h3-go/v4"
)

const earthRadius = 6371e3 // meters

// SearchResolution is the H3 resolution used to prefilter nearby records.
const SearchResolution = 5

// average hexagon edge at SearchResolution, in meters
const searchEdgeLength = 8544.408276

// Point represents a geographical point with latitude and longitude.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// String returns a string representation of the Point.
func (p Point) String() string {
	return fmt.Sprintf("POINT(%f %f)", p.Lng, p.Lat)
}

// Valid reports whether the point lies within the global coordinate limits.
func (p Point) Valid() bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}

// HaversineDistance calculates the distance between two points on Earth in meters.
func (p Point) HaversineDistance(other Point) float64 {
	lat1 := p.Lat * math.Pi / 180
	lat2 := other.Lat * math.Pi / 180
	dLat := (other.Lat - p.Lat) * math.Pi / 180
	dLng := (other.Lng - p.Lng) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadius * c
}

// Cell returns the H3 cell containing the point at the given resolution.
func (p Point) Cell(res int) (int64, error) {
	cell, err := h3.LatLngToCell(h3.NewLatLng(p.Lat, p.Lng), res)
	if err != nil {
		return 0, fmt.Errorf("error converting to h3 cell at res %d: %w", res, err)
	}

	return int64(cell), nil
}

// CoveringCells returns the cells at SearchResolution that cover a disk of
// radiusMeters around p. Any point within the radius falls into one of them.
func (p Point) CoveringCells(radiusMeters float64) ([]int64, error) {
	origin, err := h3.LatLngToCell(h3.NewLatLng(p.Lat, p.Lng), SearchResolution)
	if err != nil {
		return nil, fmt.Errorf("error converting to h3 cell: %w", err)
	}

	// the distance between neighbouring cell centers is ~sqrt(3) edges
	k := int(math.Ceil(radiusMeters/(searchEdgeLength*math.Sqrt(3)))) + 1

	disk, err := h3.GridDisk(origin, k)
	if err != nil {
		return nil, fmt.Errorf("error computing grid disk: %w", err)
	}

	cells := make([]int64, 0, len(disk))
	for _, c := range disk {
		cells = append(cells, int64(c))
	}

	return cells, nil
}
