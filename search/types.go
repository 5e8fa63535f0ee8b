// Copyright 2025 The VitalFlow Authors
// SPDX-License-Identifier: Apache-2.0

// Package search implements the proximity search workflow: it asks the
// backend for donor and facility candidates, geocodes the donors that lack
// coordinates and composes a single map view out of the results.
package search

import "github.com/vitalflow/vitalflow/spatial"

// DonorCandidate is a donor returned by the backend search. Lat and Lng are
// set only when the backend already knows where the donor is.
type DonorCandidate struct {
	ID        int64    `json:"id"`
	Name      string   `json:"name"`
	BloodType string   `json:"bloodType"`
	Contact   string   `json:"contact"`
	City      string   `json:"city,omitempty"`
	Lat       *float64 `json:"lat,omitempty"`
	Lng       *float64 `json:"lng,omitempty"`
}

// Point returns the donor's coordinates when the backend provided them.
func (d DonorCandidate) Point() (spatial.Point, bool) {
	if d.Lat == nil || d.Lng == nil {
		return spatial.Point{}, false
	}

	p := spatial.Point{Lat: *d.Lat, Lng: *d.Lng}

	return p, p.Valid()
}

// FacilityCandidate is a blood bank or hospital, geocoded server side.
type FacilityCandidate struct {
	Name    string  `json:"name"`
	Address string  `json:"address"`
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
}

// Point returns the facility's coordinates.
func (f FacilityCandidate) Point() spatial.Point {
	return spatial.Point{Lat: f.Lat, Lng: f.Lng}
}

// Payload is the backend response to a nearby search.
type Payload struct {
	Donors     []DonorCandidate    `json:"donors"`
	BloodBanks []FacilityCandidate `json:"blood_banks"`
}
