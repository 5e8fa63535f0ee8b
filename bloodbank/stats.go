// Copyright 2025 The VitalFlow Authors
// SPDX-License-Identifier: Apache-2.0

package bloodbank

// Stats aggregates the registry for the dashboard. Donated and Received are
// aligned with Labels.
type Stats struct {
	TotalDonors    int      `json:"total_donors"`
	TotalReceivers int      `json:"total_receivers"`
	Labels         []string `json:"labels"`
	Donated        []int    `json:"donated"`
	Received       []int    `json:"received"`
}

// CountByBloodType counts items per blood type in BloodTypes order. Items
// with an unknown blood type are not counted.
func CountByBloodType[T any](items []T, bloodType func(T) BloodType) []int {
	index := make(map[BloodType]int, len(BloodTypes))
	for i, bt := range BloodTypes {
		index[bt] = i
	}

	counts := make([]int, len(BloodTypes))

	for _, item := range items {
		if i, ok := index[bloodType(item)]; ok {
			counts[i]++
		}
	}

	return counts
}

// BuildStats computes the dashboard aggregates.
func BuildStats(donors []*Donor, receivers []*Receiver) Stats {
	labels := make([]string, len(BloodTypes))
	for i, bt := range BloodTypes {
		labels[i] = string(bt)
	}

	return Stats{
		TotalDonors:    len(donors),
		TotalReceivers: len(receivers),
		Labels:         labels,
		Donated:        CountByBloodType(donors, func(d *Donor) BloodType { return d.BloodType }),
		Received:       CountByBloodType(receivers, func(r *Receiver) BloodType { return r.BloodType }),
	}
}

// LoadStats reads the registry and computes the dashboard aggregates.
func LoadStats(repo Repository) (Stats, error) {
	donors, err := repo.ListDonors()
	if err != nil {
		return Stats{}, err
	}

	receivers, err := repo.ListReceivers()
	if err != nil {
		return Stats{}, err
	}

	return BuildStats(donors, receivers), nil
}
