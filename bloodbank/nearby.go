// Copyright 2025 The VitalFlow Authors
// SPDX-License-Identifier: Apache-2.0

package bloodbank

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/vitalflow/vitalflow/geocode"
	"github.com/vitalflow/vitalflow/spatial"
	"github.com/vitalflow/vitalflow/utils/textutils"
)

// DefaultRadiusMeters bounds nearby searches when no radius is configured.
const DefaultRadiusMeters = 25_000

// NearbyResult is the payload of a nearby search.
type NearbyResult struct {
	Donors     []*Donor     `json:"donors"`
	BloodBanks []*BloodBank `json:"blood_banks"`
}

// NearbyService answers nearby searches from the registry.
type NearbyService struct {
	repo         Repository
	geocoder     geocode.Geocoder
	radiusMeters float64
}

// NewNearbyService creates a NearbyService. A non-positive radius falls
// back to DefaultRadiusMeters.
func NewNearbyService(repo Repository, geocoder geocode.Geocoder, radiusMeters float64) *NearbyService {
	if radiusMeters <= 0 {
		radiusMeters = DefaultRadiusMeters
	}

	return &NearbyService{repo: repo, geocoder: geocoder, radiusMeters: radiusMeters}
}

type ranked[T any] struct {
	item     T
	distance float64
}

func withinRadius[T any](items []T, origin spatial.Point, radius float64, point func(T) (spatial.Point, bool)) []T {
	candidates := make([]ranked[T], 0, len(items))

	for _, item := range items {
		p, ok := point(item)
		if !ok {
			continue
		}

		if d := origin.HaversineDistance(p); d <= radius {
			candidates = append(candidates, ranked[T]{item: item, distance: d})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].distance < candidates[j].distance
	})

	out := make([]T, len(candidates))
	for i, c := range candidates {
		out[i] = c.item
	}

	return out
}

// Search resolves location and returns the blood banks within the radius,
// closest first, and the donors that are either within the radius or whose
// contact or city mentions the location.
func (s *NearbyService) Search(ctx context.Context, location string) (*NearbyResult, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return nil, ErrEmptyLocation
	}

	result := &NearbyResult{Donors: []*Donor{}, BloodBanks: []*BloodBank{}}
	seen := make(map[int64]bool)

	if origin, ok := s.locate(ctx, location); ok {
		cells, err := origin.CoveringCells(s.radiusMeters)
		if err != nil {
			return nil, err
		}

		banks, err := s.repo.BloodBanksInCells(cells)
		if err != nil {
			return nil, err
		}

		result.BloodBanks = withinRadius(banks, origin, s.radiusMeters, func(b *BloodBank) (spatial.Point, bool) {
			return b.Point(), true
		})

		donors, err := s.repo.DonorsInCells(cells)
		if err != nil {
			return nil, err
		}

		for _, d := range withinRadius(donors, origin, s.radiusMeters, (*Donor).Point) {
			seen[d.ID] = true
			result.Donors = append(result.Donors, d)
		}
	}

	donors, err := s.repo.ListDonors()
	if err != nil {
		return nil, err
	}

	for _, d := range donors {
		if seen[d.ID] {
			continue
		}

		if textutils.ContainsFolded(d.Contact+", "+d.City, location) {
			seen[d.ID] = true
			result.Donors = append(result.Donors, d)
		}
	}

	return result, nil
}

// locate geocodes the search location. Misses and provider failures leave
// the search with text matching only.
func (s *NearbyService) locate(ctx context.Context, location string) (spatial.Point, bool) {
	if s.geocoder == nil {
		return spatial.Point{}, false
	}

	res, err := s.geocoder.Geocode(ctx, location)
	if err != nil {
		if !geocode.IsNoMatch(err) {
			log.Printf("nearby: geocoding %q: %v", location, err)
		}

		return spatial.Point{}, false
	}

	return res.Point, true
}

// String describes the service configuration.
func (s *NearbyService) String() string {
	return fmt.Sprintf("nearby search within %.1f km", s.radiusMeters/1000)
}
