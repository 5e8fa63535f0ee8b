// Copyright 2025 The VitalFlow Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"database/sql"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	_ "github.com/duckdb/duckdb-go/v2" // register duckdb driver
	"github.com/spf13/cobra"
	"github.com/vitalflow/vitalflow/bloodbank"
	"github.com/vitalflow/vitalflow/config"
)

type logWriter struct {
	writer io.Writer
}

func (w *logWriter) Write(bytes []byte) (int, error) {
	return fmt.Fprintf(w.writer, "%s %s", time.Now().Format("2006-01-02 15:04:05"), string(bytes))
}

func init() {
	log.SetFlags(0)
	log.SetOutput(&logWriter{writer: os.Stderr})
}

var rootCmd = &cobra.Command{
	Use:   "vitalflow",
	Short: "blood bank registry and nearby donor search",
	Long: `
vitalflow keeps a registry of blood donors, receivers and blood banks, and
finds the donors and blood banks closest to a place in Tamil Nadu.
`,
	SilenceUsage: true,
}

var Version = "dev"

// rootOptions holds the flags shared by every command. They override the
// configuration file and the environment.
var rootOptions struct {
	ConfigPath    string
	DBPath        string
	Provider      string
	TraceHTTP     bool
	TraceHTTPBody bool
}

func Execute(version string) {
	Version = version

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&rootOptions.ConfigPath, "config", "", "YAML configuration file")
	flags.StringVar(&rootOptions.DBPath, "db-path", "db", "Directory holding the database")
	flags.StringVar(&rootOptions.Provider, "geocoder", config.ProviderNominatim, "Geocoding provider (nominatim or google)")
	flags.BoolVar(&rootOptions.TraceHTTP, "trace-http", false, "Display HTTP requests-responses")
	flags.BoolVar(&rootOptions.TraceHTTPBody, "trace-http-body", false, "Display HTTP requests-responses bodies")
}

// loadConfig reads the configuration and applies the flags the user set.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(rootOptions.ConfigPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("db-path") {
		cfg.Server.DBPath = rootOptions.DBPath
	}

	if flags.Changed("geocoder") {
		cfg.Geocoder.Provider = rootOptions.Provider
	}

	if flags.Changed("trace-http") {
		cfg.Debug.HTTPTrace = rootOptions.TraceHTTP
	}

	if flags.Changed("trace-http-body") {
		cfg.Debug.HTTPBodyTrace = rootOptions.TraceHTTPBody
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// openRepository opens the database, creating it and its schema when
// missing. The caller closes the returned repository.
func openRepository(cfg *config.Config) (bloodbank.Repository, error) {
	if err := os.MkdirAll(cfg.Server.DBPath, 0o750); err != nil {
		return nil, fmt.Errorf("creating db directory: %w", err)
	}

	db, err := sql.Open("duckdb", cfg.DatabaseFile())
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	repo := bloodbank.NewRepository(db)
	if err := repo.CreateSchema(); err != nil {
		repo.Close()

		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return repo, nil
}
