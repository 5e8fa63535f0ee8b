// Copyright 2025 The VitalFlow Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/vitalflow/vitalflow/bloodbank"
	"github.com/vitalflow/vitalflow/geocode"
	"github.com/vitalflow/vitalflow/utils/textutils"
)

const defaultSeedFile = "cmd/testdata/seed.json"

var seedOptions struct {
	Append    bool
	NoGeocode bool
}

func newSeedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed [file]",
		Short: "Seeds the database with data from " + defaultSeedFile,
		Long: `Loads donors, receivers and blood banks from a JSON file. Blood banks
without coordinates are geocoded from their address. The previous database
is removed unless --append is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			path := defaultSeedFile
			if len(args) > 0 {
				path = args[0]
			}

			seed, err := bloodbank.LoadSeedFile(path)
			if err != nil {
				return fmt.Errorf("loading %s: %w", path, err)
			}

			if !seedOptions.Append {
				dbPath := cfg.DatabaseFile()
				_ = os.Remove(dbPath)
				_ = os.Remove(dbPath + ".wal")
			}

			repo, err := openRepository(cfg)
			if err != nil {
				return err
			}
			defer repo.Close()

			var geocoder geocode.Geocoder
			if !seedOptions.NoGeocode {
				if geocoder, err = newGeocoder(cmd.Context(), cfg); err != nil {
					return err
				}
			}

			m, err := bloodbank.Seed(cmd.Context(), repo, seed, geocoder)
			if err != nil {
				return err
			}

			fmt.Printf("✅ Seeded %s donors, %s receivers and %s blood banks (%s skipped)\n",
				textutils.FormatInt(int64(m.Donors)),
				textutils.FormatInt(int64(m.Receivers)),
				textutils.FormatInt(int64(m.BloodBanks)),
				textutils.FormatInt(int64(m.Skipped)))

			return nil
		},
	}

	cmd.Flags().BoolVar(&seedOptions.Append, "append", false, "Keep the existing database and add to it")
	cmd.Flags().BoolVar(&seedOptions.NoGeocode, "no-geocode", false, "Skip blood banks without coordinates instead of geocoding them")

	return cmd
}

func init() {
	rootCmd.AddCommand(newSeedCmd())
}
