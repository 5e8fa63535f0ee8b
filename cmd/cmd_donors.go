// Copyright 2025 The VitalFlow Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/vitalflow/vitalflow/bloodbank"
)

var donorsCmd = &cobra.Command{
	Use:   "donors",
	Short: "Inspect and maintain registered donors",
}

func location(d *bloodbank.Donor) string {
	if p, ok := d.Point(); ok {
		return fmt.Sprintf("%.4f,%.4f", p.Lat, p.Lng)
	}

	return "-"
}

func truncate(s string, n int) string {
	if r := []rune(s); len(r) > n {
		return string(r[:n-1]) + "…"
	}

	return s
}

func printDonors(w io.Writer, donors []*bloodbank.Donor) {
	a, b, c, d, e := strings.Repeat("─", 4), strings.Repeat("─", 20), strings.Repeat("─", 3), strings.Repeat("─", 30), strings.Repeat("─", 19)

	fmt.Fprintf(w, "╭─%4s─┬─%-20s─┬─%-3s─┬─%-30s─┬─%-19s─╮\n", a, b, c, d, e)
	fmt.Fprintf(w, "│ %4s │ %-20s │ %-3s │ %-30s │ %-19s │\n", "Id", "Name", "BT", "Contact", "Location")
	fmt.Fprintf(w, "├─%4s─┼─%-20s─┼─%-3s─┼─%-30s─┼─%-19s─┤\n", a, b, c, d, e)

	for _, donor := range donors {
		fmt.Fprintf(w, "│ %4d │ %-20s │ %-3s │ %-30s │ %-19s │\n",
			donor.ID, truncate(donor.Name, 20), donor.BloodType, truncate(donor.Contact, 30), location(donor))
	}

	fmt.Fprintf(w, "╰─%4s─┴─%-20s─┴─%-3s─┴─%-30s─┴─%-19s─╯\n", a, b, c, d, e)
}

var donorsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered donors",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		repo, err := openRepository(cfg)
		if err != nil {
			return err
		}
		defer repo.Close()

		donors, err := repo.ListDonors()
		if err != nil {
			return err
		}

		printDonors(os.Stdout, donors)

		return nil
	},
}

var donorsLocateCmd = &cobra.Command{
	Use:   "locate",
	Short: "Geocode and store the location of donors lacking one",
	Long: `Geocodes the contact of every donor without coordinates and stores the
result, so nearby searches can place them without a lookup.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		repo, err := openRepository(cfg)
		if err != nil {
			return err
		}
		defer repo.Close()

		n, err := bloodbank.CountWithoutLocation(repo)
		if err != nil {
			return err
		}

		if n == 0 {
			fmt.Println("All donors already have a location.")

			return nil
		}

		geocoder, err := newGeocoder(cmd.Context(), cfg)
		if err != nil {
			return err
		}

		var bar *progressbar.ProgressBar
		if isatty.IsTerminal(os.Stderr.Fd()) {
			bar = progressbar.NewOptions(n,
				progressbar.OptionSetDescription("Locating donors"),
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionShowCount(),
				progressbar.OptionClearOnFinish(),
			)
		}

		m, err := bloodbank.LocateDonors(cmd.Context(), repo, geocoder, func() {
			if bar != nil {
				_ = bar.Add(1)
			}
		})
		if bar != nil {
			_ = bar.Finish()
		}

		if err != nil {
			return err
		}

		fmt.Printf("✅ Located %d donors, %d could not be located\n", m.Located, m.Missed)

		return nil
	},
}

func init() {
	rootCmd.AddCommand(donorsCmd)
	donorsCmd.AddCommand(donorsListCmd)
	donorsCmd.AddCommand(donorsLocateCmd)
}
