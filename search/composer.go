// Copyright 2025 The VitalFlow Authors
// SPDX-License-Identifier: Apache-2.0

package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/vitalflow/vitalflow/geocode"
	"github.com/vitalflow/vitalflow/spatial"
)

// DefaultZoom is the zoom level of every composed view.
const DefaultZoom = 10

// DefaultFallback centers the map when nothing else can: Chennai.
var DefaultFallback = spatial.Point{Lat: 13.0827, Lng: 80.2707}

// MarkerKind tells donor markers from facility markers.
type MarkerKind string

const (
	MarkerDonor    MarkerKind = "donor"
	MarkerFacility MarkerKind = "facility"
)

// Marker is a point on the map with its label fields.
type Marker struct {
	Kind      MarkerKind `json:"kind"`
	Lat       float64    `json:"lat"`
	Lng       float64    `json:"lng"`
	Name      string     `json:"name"`
	BloodType string     `json:"bloodType,omitempty"`
	Contact   string     `json:"contact,omitempty"`
	Address   string     `json:"address,omitempty"`
}

// CenterSource records which rule picked the map center.
type CenterSource string

const (
	CenterFacility CenterSource = "facility"
	CenterDonor    CenterSource = "donor"
	CenterTerm     CenterSource = "term"
	CenterFallback CenterSource = "fallback"
)

// MapView is everything a search renders.
type MapView struct {
	ID           string              `json:"id"`
	Term         string              `json:"term"`
	Center       spatial.Point       `json:"center"`
	CenterSource CenterSource        `json:"center_source"`
	Zoom         int                 `json:"zoom"`
	Markers      []Marker            `json:"markers"`
	Donors       []DonorCandidate    `json:"donors"`
	Facilities   []FacilityCandidate `json:"blood_banks"`
	Located      int                 `json:"located"`
	Unlocated    int                 `json:"unlocated"`
	Notice       string              `json:"notice,omitempty"`
}

// Compose builds the map view of a search. The center is the first
// facility, else the first located donor, else the geocoded term, else
// fallback. Donor markers come first, then facility markers.
func Compose(
	ctx context.Context,
	term string,
	payload *Payload,
	resolutions []Resolution,
	geocoder geocode.Geocoder,
	fallback spatial.Point,
) MapView {
	if payload == nil {
		payload = &Payload{}
	}

	resolved := Resolved(resolutions)

	view := MapView{
		Term:       term,
		Zoom:       DefaultZoom,
		Markers:    make([]Marker, 0, len(resolved)+len(payload.BloodBanks)),
		Donors:     nonNil(payload.Donors),
		Facilities: nonNil(payload.BloodBanks),
		Located:    len(resolved),
		Unlocated:  len(resolutions) - len(resolved),
	}

	for _, r := range resolved {
		view.Markers = append(view.Markers, Marker{
			Kind:      MarkerDonor,
			Lat:       r.Point.Lat,
			Lng:       r.Point.Lng,
			Name:      r.Donor.Name,
			BloodType: r.Donor.BloodType,
			Contact:   r.Donor.Contact,
		})
	}

	for _, f := range payload.BloodBanks {
		view.Markers = append(view.Markers, Marker{
			Kind:    MarkerFacility,
			Lat:     f.Lat,
			Lng:     f.Lng,
			Name:    f.Name,
			Address: f.Address,
		})
	}

	view.Center, view.CenterSource = center(ctx, term, payload.BloodBanks, resolved, geocoder, fallback)

	if view.Unlocated > 0 {
		view.Notice = fmt.Sprintf("%d of %d donors could not be located", view.Unlocated, len(resolutions))
	}

	return view
}

func center(
	ctx context.Context,
	term string,
	facilities []FacilityCandidate,
	resolved []Resolution,
	geocoder geocode.Geocoder,
	fallback spatial.Point,
) (spatial.Point, CenterSource) {
	if len(facilities) > 0 {
		return facilities[0].Point(), CenterFacility
	}

	if len(resolved) > 0 {
		return resolved[0].Point, CenterDonor
	}

	if geocoder != nil && strings.TrimSpace(term) != "" {
		if res, err := geocoder.Geocode(ctx, term); err == nil {
			return res.Point, CenterTerm
		}
	}

	return fallback, CenterFallback
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}

	return s
}
