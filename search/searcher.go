// Copyright 2025 The VitalFlow Authors
// SPDX-License-Identifier: Apache-2.0

package search

import (
	"context"
	"log"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/vitalflow/vitalflow/geocode"
	"github.com/vitalflow/vitalflow/spatial"
)

// Snapshot is what a view currently shows. View is nil before the first
// successful search.
type Snapshot struct {
	View   *MapView `json:"view"`
	Banner string   `json:"banner,omitempty"`
}

// Searcher holds the state of one map view. Every submission takes a
// sequence number; only the result of the latest one is kept. Older
// searches still run to completion, their results are dropped.
type Searcher struct {
	client   NearbyClient
	resolver *Resolver
	geocoder geocode.Geocoder
	fallback spatial.Point

	mu     sync.Mutex
	issued uint64
	view   *MapView
	banner string
}

// NewSearcher wires the workflow. geocoder is used to center views that
// have no located marker.
func NewSearcher(client NearbyClient, resolver *Resolver, geocoder geocode.Geocoder, fallback spatial.Point) *Searcher {
	return &Searcher{
		client:   client,
		resolver: resolver,
		geocoder: geocoder,
		fallback: fallback,
	}
}

func (s *Searcher) next() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.issued++

	return s.issued
}

// Submit runs one search. Blank terms are rejected with ErrEmptyInput and
// leave the state untouched. A failed request sets the failure banner and
// keeps the previous view. A search overtaken by a newer submission
// returns ErrStaleResult.
func (s *Searcher) Submit(ctx context.Context, term string) (MapView, error) {
	if strings.TrimSpace(term) == "" {
		return MapView{}, ErrEmptyInput
	}

	seq := s.next()

	payload, err := s.client.Nearby(ctx, term)
	if err != nil {
		log.Printf("search #%d %q: %v", seq, term, err)

		s.mu.Lock()
		if seq == s.issued {
			s.banner = FailureBanner
		}
		s.mu.Unlock()

		return MapView{}, err
	}

	resolutions := s.resolver.Resolve(ctx, payload.Donors)
	view := Compose(ctx, term, payload, resolutions, s.geocoder, s.fallback)
	view.ID = uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()

	if seq != s.issued {
		return view, ErrStaleResult
	}

	s.view = &view
	s.banner = ""

	return view, nil
}

// Snapshot returns the current view and banner.
func (s *Searcher) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Snapshot{View: s.view, Banner: s.banner}
}
