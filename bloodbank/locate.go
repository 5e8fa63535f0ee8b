// Copyright 2025 The VitalFlow Authors
// SPDX-License-Identifier: Apache-2.0

package bloodbank

import (
	"context"
	"fmt"
	"log"

	"github.com/vitalflow/vitalflow/geocode"
)

// LocateMetrics reports the outcome of LocateDonors.
type LocateMetrics struct {
	Located int
	Missed  int
}

// LocateDonors geocodes the contact of every donor lacking coordinates and
// stores the result. progress, when not nil, is called once per donor.
// Geocoding failures are counted; storage failures abort.
func LocateDonors(ctx context.Context, repo Repository, geocoder geocode.Geocoder, progress func()) (LocateMetrics, error) {
	var m LocateMetrics

	donors, err := repo.DonorsWithoutLocation()
	if err != nil {
		return m, err
	}

	for _, d := range donors {
		if err := ctx.Err(); err != nil {
			return m, err
		}

		res, err := geocoder.Geocode(ctx, d.Contact)
		if err != nil {
			if !geocode.IsNoMatch(err) {
				log.Printf("locate: donor %d (%q): %v", d.ID, d.Contact, err)
			}

			m.Missed++
		} else {
			if err := repo.SetDonorLocation(d.ID, res.Point); err != nil {
				return m, fmt.Errorf("storing donor %d location: %w", d.ID, err)
			}

			m.Located++
		}

		if progress != nil {
			progress()
		}
	}

	return m, nil
}

// CountWithoutLocation returns how many donors lack coordinates.
func CountWithoutLocation(repo Repository) (int, error) {
	donors, err := repo.DonorsWithoutLocation()
	if err != nil {
		return 0, err
	}

	return len(donors), nil
}
