// Package config loads CLI configuration from a TOML file with environment
// variable overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/adlumen/amzads/internal/connectors/amazonads"
)

// envPrefix is prepended to every override variable, e.g. AMZADS_CLIENT_ID.
const envPrefix = "AMZADS_"

// File mirrors the TOML config file layout.
type File struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	RefreshToken string `toml:"refresh_token"`
	ProfileID    string `toml:"profile_id"`
	Region       string `toml:"region"`
	StartDate    string `toml:"start_date"`
	PageSize     int    `toml:"page_size"`
	UserAgent    string `toml:"user_agent"`

	Streams map[string]StreamSettings `toml:"streams"`
}

// StreamSettings holds per-stream options.
type StreamSettings struct {
	// Fields narrows emitted records to these paths. Empty means all fields.
	Fields []string `toml:"fields"`
}

// DefaultPath returns the default config file location.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".amzads", "config.toml"), nil
}

// Load reads the config file at path, applies environment overrides, and
// returns the connector config plus per-stream settings. A missing file is
// not an error when every required value arrives from the environment.
func Load(path string) (*amazonads.Config, map[string]StreamSettings, error) {
	var file File

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, &file); err != nil {
			return nil, nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist):
		// Environment-only configuration.
	default:
		return nil, nil, fmt.Errorf("read %s: %w", path, err)
	}

	applyEnv(&file)

	cfg := amazonads.DefaultConfig()
	cfg.ClientID = file.ClientID
	cfg.ClientSecret = file.ClientSecret
	cfg.RefreshToken = file.RefreshToken
	cfg.ProfileID = file.ProfileID
	if file.Region != "" {
		cfg.Region = file.Region
	}
	if file.PageSize > 0 {
		cfg.PageSize = file.PageSize
	}
	if file.UserAgent != "" {
		cfg.UserAgent = file.UserAgent
	}
	if file.StartDate != "" {
		start, err := time.Parse("2006-01-02", file.StartDate)
		if err != nil {
			return nil, nil, fmt.Errorf("parse start_date %q: %w", file.StartDate, err)
		}
		cfg.StartDate = start
	}

	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	return cfg, file.Streams, nil
}

// applyEnv overrides file values with AMZADS_* environment variables.
func applyEnv(file *File) {
	setString := func(dst *string, key string) {
		if v := os.Getenv(envPrefix + key); v != "" {
			*dst = v
		}
	}

	setString(&file.ClientID, "CLIENT_ID")
	setString(&file.ClientSecret, "CLIENT_SECRET")
	setString(&file.RefreshToken, "REFRESH_TOKEN")
	setString(&file.ProfileID, "PROFILE_ID")
	setString(&file.Region, "REGION")
	setString(&file.StartDate, "START_DATE")
	setString(&file.UserAgent, "USER_AGENT")

	if v := os.Getenv(envPrefix + "PAGE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			file.PageSize = n
		}
	}
}
