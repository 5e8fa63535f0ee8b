// Copyright 2025 The VitalFlow Authors
// SPDX-License-Identifier: Apache-2.0

package bloodbank

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestBuildStats(t *testing.T) {
	donors := []*Donor{
		{BloodType: "O+"}, {BloodType: "O+"}, {BloodType: "A-"}, {BloodType: "AB+"}, {BloodType: "??"},
	}
	receivers := []*Receiver{
		{BloodType: "B+"}, {BloodType: "O+"},
	}

	expected := Stats{
		TotalDonors:    5,
		TotalReceivers: 2,
		Labels:         []string{"A+", "A-", "B+", "B-", "AB+", "AB-", "O+", "O-"},
		Donated:        []int{0, 1, 0, 0, 1, 0, 2, 0},
		Received:       []int{0, 0, 1, 0, 0, 0, 1, 0},
	}

	if diff := cmp.Diff(expected, BuildStats(donors, receivers)); diff != "" {
		t.Errorf("BuildStats() mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildStatsEmpty(t *testing.T) {
	stats := BuildStats(nil, nil)

	if diff := cmp.Diff(make([]int, 8), stats.Donated); diff != "" {
		t.Errorf("Donated mismatch (-want +got):\n%s", diff)
	}

	if stats.TotalDonors != 0 || stats.TotalReceivers != 0 {
		t.Errorf("unexpected totals %+v", stats)
	}
}

func TestLoadStats(t *testing.T) {
	_, repo := setupTestDB(t)

	require.NoError(t, repo.AddDonor(&Donor{Name: "Kavya", BloodType: "O-", Contact: "Egmore"}))
	require.NoError(t, repo.AddReceiver(&Receiver{Name: "Meena", BloodType: "O-", Contact: "Madurai"}))

	stats, err := LoadStats(repo)
	require.NoError(t, err)

	if diff := cmp.Diff([]int{0, 0, 0, 0, 0, 0, 0, 1}, stats.Donated); diff != "" {
		t.Errorf("Donated mismatch (-want +got):\n%s", diff)
	}

	if diff := cmp.Diff([]int{0, 0, 0, 0, 0, 0, 0, 1}, stats.Received); diff != "" {
		t.Errorf("Received mismatch (-want +got):\n%s", diff)
	}
}
