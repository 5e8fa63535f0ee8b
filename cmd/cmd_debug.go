// Copyright 2025 The VitalFlow Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/vitalflow/vitalflow/geocode"
)

var debugCmd = &cobra.Command{
	Use:   "debug",
	Short: "Dev tools",
}

var debugGeocodeCmd = &cobra.Command{
	Use:   "geocode",
	Short: "Geocode addresses read from stdin",
	Long: `Reads one address per line, and prints the address followed by the
geocoding result of the configured provider.

$ echo Egmore | vitalflow debug geocode
Egmore		{"Point":{"lat":13.0732,"lng":80.2609},"Confidence":"high",…}
	`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		geocoder, err := newGeocoder(cmd.Context(), cfg)
		if err != nil {
			return err
		}

		if isatty.IsTerminal(os.Stdin.Fd()) {
			fmt.Fprintln(os.Stderr, "Enter addresses to geocode, one per line…")
		}

		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			address := strings.TrimSpace(scanner.Text())
			if address == "" {
				continue
			}

			res, err := geocoder.Geocode(cmd.Context(), address)
			switch {
			case geocode.IsNoMatch(err):
				fmt.Printf("%s\tno match\n", address)
			case err != nil:
				fmt.Printf("%s\t%q\n", address, err)
			default:
				s, err := json.Marshal(res)
				if err != nil {
					return err
				}

				fmt.Printf("%s\t\t%s\n", address, s)
			}
		}

		return scanner.Err()
	},
}

func init() {
	rootCmd.AddCommand(debugCmd)
	debugCmd.AddCommand(debugGeocodeCmd)
}
