// Copyright 2025 The VitalFlow Authors
//
// SPDX-License-Identifier: Apache-2.0
package spatial

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	chennai    = Point{Lat: 13.0827, Lng: 80.2707}
	egmore     = Point{Lat: 13.0732, Lng: 80.2609}
	coimbatore = Point{Lat: 11.0168, Lng: 76.9558}
)

func TestHaversineDistance(t *testing.T) {
	tests := []struct {
		name  string
		a, b  Point
		lower float64
		upper float64
	}{
		{"same point", chennai, chennai, 0, 0.001},
		{"chennai to egmore", chennai, egmore, 1_000, 2_000},
		{"chennai to coimbatore", chennai, coimbatore, 420_000, 440_000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := tt.a.HaversineDistance(tt.b)
			assert.GreaterOrEqual(t, d, tt.lower)
			assert.LessOrEqual(t, d, tt.upper)
			assert.InDelta(t, d, tt.b.HaversineDistance(tt.a), 0.001)
		})
	}
}

func TestValid(t *testing.T) {
	assert.True(t, chennai.Valid())
	assert.False(t, Point{Lat: 91, Lng: 0}.Valid())
	assert.False(t, Point{Lat: 0, Lng: -181}.Valid())
}

func TestCoveringCellsContainsNearbyPoints(t *testing.T) {
	cells, err := chennai.CoveringCells(25_000)
	require.NoError(t, err)
	require.NotEmpty(t, cells)

	egmoreCell, err := egmore.Cell(SearchResolution)
	require.NoError(t, err)
	assert.True(t, slices.Contains(cells, egmoreCell))

	coimbatoreCell, err := coimbatore.Cell(SearchResolution)
	require.NoError(t, err)
	assert.False(t, slices.Contains(cells, coimbatoreCell))
}

func TestString(t *testing.T) {
	assert.Equal(t, "POINT(80.270700 13.082700)", chennai.String())
}
