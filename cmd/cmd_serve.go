// Copyright 2025 The VitalFlow Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"github.com/vitalflow/vitalflow/auth"
	"github.com/vitalflow/vitalflow/bloodbank"
	"github.com/vitalflow/vitalflow/config"
	"github.com/vitalflow/vitalflow/server"
)

var serveOptions struct {
	Listen        string
	AllowedOrigin string
	BackendURL    string
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web server and the REST backend",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		flags := cmd.Flags()
		if flags.Changed("listen") {
			cfg.Server.Listen = serveOptions.Listen
		}

		if flags.Changed("allowed-origin") {
			cfg.Server.AllowedOrigin = serveOptions.AllowedOrigin
		}

		if flags.Changed("backend-url") {
			cfg.Search.BackendURL = serveOptions.BackendURL
		}

		if cfg.Server.SecretKey == config.DefaultSecretKey {
			log.Println("VITALFLOW_SECRET_KEY is not set. Session tokens use the development secret.")
		}

		repo, err := openRepository(cfg)
		if err != nil {
			return err
		}
		defer repo.Close()

		backendGeocoder, sessionGeocoder, err := newServeGeocoders(cmd.Context(), cfg)
		if err != nil {
			return err
		}

		nearby := bloodbank.NewNearbyService(repo, backendGeocoder, cfg.RadiusMeters())

		srv := server.NewServer(server.Options{
			Repo:          repo,
			Nearby:        nearby,
			Issuer:        auth.NewIssuer(cfg.Server.SecretKey, cfg.Server.TokenTTL),
			NewSearcher:   newSearcherFactory(cfg, cfg.BackendBaseURL(), sessionGeocoder),
			AllowedOrigin: cfg.Server.AllowedOrigin,
			Fallback:      cfg.Fallback(),
		})

		fmt.Printf("🩸 VitalFlow listening on http://%s\n", cfg.Server.Listen)
		fmt.Printf("📍 Geocoding: %s, %s\n", cfg.Geocoder.Provider, nearby)
		fmt.Printf("🔎 Map searches query %s\n", cfg.BackendBaseURL())

		return srv.Run(cfg.Server.Listen)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveOptions.Listen, "listen", "localhost:8080", "Address to listen on")
	serveCmd.Flags().StringVar(&serveOptions.AllowedOrigin, "allowed-origin", "http://localhost:3000", "Origin allowed to call /api")
	serveCmd.Flags().StringVar(&serveOptions.BackendURL, "backend-url", "", "REST backend used by the map page (defaults to this server)")
}
