// Copyright 2025 The VitalFlow Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads the vitalflow configuration: defaults, then an
// optional YAML file, then environment overrides. Command line flags are
// applied last by the cmd package.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/vitalflow/vitalflow/spatial"
	"gopkg.in/yaml.v3"
)

// DefaultSecretKey signs session tokens when nothing else is configured.
// Deployments must override it.
const DefaultSecretKey = "vitalflow-dev-secret"

// Geocoding providers.
const (
	ProviderNominatim = "nominatim"
	ProviderGoogle    = "google"
)

// ValidProviders lists the supported geocoding providers.
var ValidProviders = []string{ProviderNominatim, ProviderGoogle}

var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the complete vitalflow configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Search   SearchConfig   `yaml:"search"`
	Geocoder GeocoderConfig `yaml:"geocoder"`
	Debug    DebugConfig    `yaml:"debug"`
}

// ServerConfig configures the web server and the REST backend.
type ServerConfig struct {
	Listen        string        `yaml:"listen"`
	AllowedOrigin string        `yaml:"allowed_origin"`
	SecretKey     string        `yaml:"secret_key"`
	TokenTTL      time.Duration `yaml:"token_ttl"`
	DBPath        string        `yaml:"db_path"`
}

// SearchConfig configures the proximity search workflow.
type SearchConfig struct {
	// BackendURL is the REST backend queried by the map page. Empty means
	// the server itself.
	BackendURL  string        `yaml:"backend_url"`
	Timeout     time.Duration `yaml:"timeout"`
	Concurrency int           `yaml:"concurrency"`
	RadiusKM    float64       `yaml:"radius_km"`
	FallbackLat float64       `yaml:"fallback_lat"`
	FallbackLng float64       `yaml:"fallback_lng"`
}

// GeocoderConfig selects and configures the geocoding provider.
type GeocoderConfig struct {
	Provider      string  `yaml:"provider"`
	Endpoint      string  `yaml:"endpoint"`
	Region        string  `yaml:"region"`
	RatePerSecond float64 `yaml:"rate_per_second"`
	Burst         int     `yaml:"burst"`
	UserAgent     string  `yaml:"user_agent"`

	// Google only. When APIKey is empty the key named GoogleKeyName is
	// looked up with Application Default Credentials.
	APIKey        string `yaml:"api_key"`
	GoogleProject string `yaml:"google_project"`
	GoogleKeyName string `yaml:"google_key_name"`
}

// DebugConfig enables HTTP tracing on outgoing requests.
type DebugConfig struct {
	HTTPTrace     bool `yaml:"http_trace"`
	HTTPBodyTrace bool `yaml:"http_body_trace"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Listen:        "localhost:8080",
			AllowedOrigin: "http://localhost:3000",
			SecretKey:     DefaultSecretKey,
			TokenTTL:      24 * time.Hour,
			DBPath:        "db",
		},
		Search: SearchConfig{
			Timeout:     15 * time.Second,
			Concurrency: 4,
			RadiusKM:    25,
			FallbackLat: 13.0827,
			FallbackLng: 80.2707,
		},
		Geocoder: GeocoderConfig{
			Provider:      ProviderNominatim,
			Region:        "Tamil Nadu, India",
			RatePerSecond: 1,
			Burst:         1,
			GoogleKeyName: "VitalFlow Geocoding Key",
		},
	}
}

// Load reads the YAML file at path over the defaults and applies the
// environment overrides. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path) // #nosec G304 - path is provided by the operator
		if err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

func (c *Config) applyEnvOverrides() {
	if key := os.Getenv("VITALFLOW_SECRET_KEY"); key != "" {
		c.Server.SecretKey = key
	}

	if key := os.Getenv("GOOGLE_MAPS_API_KEY"); key != "" {
		c.Geocoder.APIKey = key
	}

	if url := os.Getenv("VITALFLOW_BACKEND_URL"); url != "" {
		c.Search.BackendURL = url
	}
}

// Validate rejects configurations the server cannot run with.
func (c *Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.Server.Listen) == "" {
		errs = append(errs, errors.New("server.listen is empty"))
	}

	if c.Search.RadiusKM <= 0 {
		errs = append(errs, fmt.Errorf("search.radius_km must be positive, got %v", c.Search.RadiusKM))
	}

	if c.Search.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("search.timeout must be positive, got %v", c.Search.Timeout))
	}

	if c.Search.Concurrency <= 0 {
		errs = append(errs, fmt.Errorf("search.concurrency must be positive, got %d", c.Search.Concurrency))
	}

	if !c.Fallback().Valid() {
		errs = append(errs, fmt.Errorf("search fallback %v is out of range", c.Fallback()))
	}

	if c.Geocoder.RatePerSecond <= 0 {
		errs = append(errs, fmt.Errorf("geocoder.rate_per_second must be positive, got %v", c.Geocoder.RatePerSecond))
	}

	if !slices.Contains(ValidProviders, c.Geocoder.Provider) {
		errs = append(errs, fmt.Errorf("unknown geocoder.provider %q (valid: %v)", c.Geocoder.Provider, ValidProviders))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}

	return nil
}

// Fallback returns the map center used when a search locates nothing.
func (c *Config) Fallback() spatial.Point {
	return spatial.Point{Lat: c.Search.FallbackLat, Lng: c.Search.FallbackLng}
}

// RadiusMeters returns the nearby search radius in meters.
func (c *Config) RadiusMeters() float64 {
	return c.Search.RadiusKM * 1000
}

// BackendBaseURL returns the REST backend the search workflow talks to.
func (c *Config) BackendBaseURL() string {
	if c.Search.BackendURL != "" {
		return strings.TrimRight(c.Search.BackendURL, "/")
	}

	return "http://" + c.Server.Listen
}

// DatabaseFile returns the DuckDB file under the configured db path.
func (c *Config) DatabaseFile() string {
	return filepath.Join(c.Server.DBPath, "vitalflow.duckdb")
}
