// Copyright 2025 The VitalFlow Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vitalflow/vitalflow/bloodbank"
	"github.com/vitalflow/vitalflow/config"
	"github.com/vitalflow/vitalflow/search"
	"github.com/vitalflow/vitalflow/spatial"
)

func TestTruncate(t *testing.T) {
	assert.Equal(t, "Egmore", truncate("Egmore", 10))
	assert.Equal(t, "Tiruchira…", truncate("Tiruchirappalli", 10))
}

func TestPrintDonors(t *testing.T) {
	located := &bloodbank.Donor{ID: 1, Name: "Arun Kumar", BloodType: "O+", Contact: "Egmore, Chennai"}
	located.SetPoint(spatial.Point{Lat: 13.0732, Lng: 80.2609})

	var buf bytes.Buffer
	printDonors(&buf, []*bloodbank.Donor{
		located,
		{ID: 2, Name: "Karthik S", BloodType: "B-", Contact: "T. Nagar, Chennai"},
	})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 6)
	assert.Contains(t, lines[3], "13.0732,80.2609")
	assert.Contains(t, lines[4], "Karthik S")
	assert.Contains(t, lines[4], " - ")
}

func TestPrintView(t *testing.T) {
	view := search.MapView{
		Term:         "Chennai",
		Center:       spatial.Point{Lat: 13.0732, Lng: 80.2609},
		CenterSource: search.CenterDonor,
		Zoom:         search.DefaultZoom,
		Markers: []search.Marker{
			{Kind: search.MarkerDonor, Name: "Arun Kumar", BloodType: "O+", Contact: "Egmore, Chennai"},
			{Kind: search.MarkerFacility, Name: "GH Blood Bank", Address: "Park Town"},
		},
		Notice: "1 of 2 donors could not be located",
	}

	var buf bytes.Buffer
	printView(&buf, view)

	out := buf.String()
	assert.Contains(t, out, "Chennai: center 13.0732,80.2609 (donor), zoom 10")
	assert.Contains(t, out, "Arun Kumar")
	assert.Contains(t, out, "GH Blood Bank")
	assert.Contains(t, out, "1 of 2 donors could not be located")

	buf.Reset()
	printView(&buf, search.MapView{Term: "Nowhere", CenterSource: search.CenterFallback})
	assert.Contains(t, buf.String(), "No donors or blood banks found nearby.")
}

func TestSeedFileLoads(t *testing.T) {
	seed, err := bloodbank.LoadSeedFile("testdata/seed.json")
	require.NoError(t, err)

	assert.Len(t, seed.Donors, 5)
	assert.Len(t, seed.Receivers, 2)
	assert.Len(t, seed.BloodBanks, 4)
}

func TestOpenRepositoryCreatesDatabase(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	cfg.Server.DBPath = filepath.Join(t.TempDir(), "db")

	repo, err := openRepository(cfg)
	require.NoError(t, err)
	require.NoError(t, repo.AddDonor(&bloodbank.Donor{Name: "Arun Kumar", BloodType: "O+", Contact: "Egmore, Chennai"}))
	require.NoError(t, repo.Close())

	repo, err = openRepository(cfg)
	require.NoError(t, err)

	t.Cleanup(func() { repo.Close() })

	donors, err := repo.ListDonors()
	require.NoError(t, err)
	require.Len(t, donors, 1)
	assert.FileExists(t, cfg.DatabaseFile())
}

func TestServeGeocodersUseSeparateLimiters(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	cfg.Geocoder.Provider = config.ProviderNominatim
	cfg.Geocoder.RatePerSecond = 1

	backend, sessions, err := newServeGeocoders(context.Background(), cfg)
	require.NoError(t, err)

	assert.NotSame(t, backend, sessions)
	assert.InDelta(t, 0.5, backend.Rate(), 1e-9)
	assert.InDelta(t, 0.5, sessions.Rate(), 1e-9)

	single, err := newGeocoder(context.Background(), cfg)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, single.Rate(), 1e-9)
}
