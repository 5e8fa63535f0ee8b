// Copyright 2025 The VitalFlow Authors
// SPDX-License-Identifier: Apache-2.0

package bloodbank

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/vitalflow/vitalflow/geocode"
)

// SeedData represents the JSON seed file format.
type SeedData struct {
	Donors     []*Donor     `json:"donors"`
	Receivers  []*Receiver  `json:"receivers"`
	BloodBanks []*BloodBank `json:"blood_banks"`
}

// SeedMetrics counts the records imported by Seed.
type SeedMetrics struct {
	Donors     int
	Receivers  int
	BloodBanks int
	Skipped    int
}

// LoadSeedFile reads a seed file.
func LoadSeedFile(path string) (*SeedData, error) {
	data, err := os.ReadFile(path) // #nosec G304 - path is provided by admin
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}

	var seed SeedData
	if err := json.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}

	return &seed, nil
}

// Seed stores the seed records. Blood banks without coordinates are
// geocoded from their address; those that cannot be located are skipped,
// as are donors and receivers that fail validation.
func Seed(ctx context.Context, repo Repository, seed *SeedData, geocoder geocode.Geocoder) (SeedMetrics, error) {
	var m SeedMetrics

	for _, d := range seed.Donors {
		if err := d.Validate(); err != nil {
			m.Skipped++

			continue
		}

		if err := repo.AddDonor(d); err != nil {
			return m, fmt.Errorf("seeding donor %q: %w", d.Name, err)
		}

		m.Donors++
	}

	for _, r := range seed.Receivers {
		if err := r.Validate(); err != nil {
			m.Skipped++

			continue
		}

		if err := repo.AddReceiver(r); err != nil {
			return m, fmt.Errorf("seeding receiver %q: %w", r.Name, err)
		}

		m.Receivers++
	}

	for _, b := range seed.BloodBanks {
		if b.Lat == 0 && b.Lng == 0 {
			if geocoder == nil {
				m.Skipped++

				continue
			}

			res, err := geocoder.Geocode(ctx, b.Address)
			if err != nil {
				m.Skipped++

				continue
			}

			b.Lat, b.Lng = res.Point.Lat, res.Point.Lng
		}

		if err := repo.AddBloodBank(b); err != nil {
			return m, fmt.Errorf("seeding blood bank %q: %w", b.Name, err)
		}

		m.BloodBanks++
	}

	return m, nil
}
