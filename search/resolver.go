// Copyright 2025 The VitalFlow Authors
// SPDX-License-Identifier: Apache-2.0

package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/vitalflow/vitalflow/geocode"
	"github.com/vitalflow/vitalflow/spatial"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency bounds the lookups a Resolver runs at once.
const DefaultConcurrency = 4

// Resolution is the outcome of locating one donor. Err is nil on success.
type Resolution struct {
	Donor DonorCandidate
	Point spatial.Point
	Err   error
}

// OK reports whether the donor was located.
func (r Resolution) OK() bool {
	return r.Err == nil
}

// Resolver locates donor candidates.
type Resolver struct {
	geocoder    geocode.Geocoder
	concurrency int
}

// NewResolver creates a Resolver. A non-positive concurrency means
// DefaultConcurrency.
func NewResolver(geocoder geocode.Geocoder, concurrency int) *Resolver {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	return &Resolver{geocoder: geocoder, concurrency: concurrency}
}

// Resolve returns one Resolution per donor, in input order. Donors that
// carry coordinates keep them; the rest are geocoded from their contact.
// Failures are reported in the Resolution, never as an error, and all
// lookups have finished when Resolve returns.
func (r *Resolver) Resolve(ctx context.Context, donors []DonorCandidate) []Resolution {
	out := make([]Resolution, len(donors))

	var g errgroup.Group
	g.SetLimit(r.concurrency)

	for i, donor := range donors {
		out[i].Donor = donor

		if p, ok := donor.Point(); ok {
			out[i].Point = p

			continue
		}

		g.Go(func() error {
			out[i].Point, out[i].Err = r.locate(ctx, donor)

			return nil
		})
	}

	_ = g.Wait()

	return out
}

func (r *Resolver) locate(ctx context.Context, donor DonorCandidate) (spatial.Point, error) {
	contact := strings.TrimSpace(donor.Contact)
	if contact == "" {
		return spatial.Point{}, ErrBlankContact
	}

	if r.geocoder == nil {
		return spatial.Point{}, fmt.Errorf("locating %q: %w", contact, geocode.ErrNoMatch)
	}

	res, err := r.geocoder.Geocode(ctx, contact)
	if err != nil {
		return spatial.Point{}, fmt.Errorf("locating %q: %w", contact, err)
	}

	return res.Point, nil
}

// Resolved returns the successful resolutions, preserving order.
func Resolved(rs []Resolution) []Resolution {
	out := make([]Resolution, 0, len(rs))

	for _, r := range rs {
		if r.OK() {
			out = append(out, r)
		}
	}

	return out
}
