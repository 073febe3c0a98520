package amazonads

import (
	"fmt"
	"time"
)

// API hosts per region.
const (
	baseURLNA = "https://advertising-api.amazon.com"
	baseURLEU = "https://advertising-api-eu.amazon.com"
	baseURLFE = "https://advertising-api-fe.amazon.com"

	//nolint:gosec // G101: Not credentials, OAuth endpoint URLs
	tokenURLNA = "https://api.amazon.com/auth/o2/token"
	tokenURLEU = "https://api.amazon.co.uk/auth/o2/token"
	tokenURLFE = "https://api.amazon.co.jp/auth/o2/token"
)

// Config holds everything needed to extract one advertising account.
type Config struct {
	// ClientID and ClientSecret identify the Login with Amazon application.
	ClientID     string
	ClientSecret string
	// RefreshToken is the long-lived credential for the refresh-token grant.
	RefreshToken string
	// ProfileID scopes every request to one advertising account.
	ProfileID string
	// Region selects the API host: NA, EU or FE.
	Region string
	// StartDate is the beginning of the extraction window for date-bounded
	// streams. Zero means a default lookback.
	StartDate time.Time
	// PageSize is the record count requested per list page.
	PageSize int
	// UserAgent is sent on every request.
	UserAgent string

	// BaseURL and TokenURL override the region-derived endpoints when set.
	// Tests point them at local servers.
	BaseURL  string
	TokenURL string
}

// DefaultConfig returns a config with the documented defaults applied.
func DefaultConfig() *Config {
	return &Config{
		Region:    "NA",
		PageSize:  100,
		UserAgent: "amzads",
	}
}

// Validate checks that required credentials and a known region are present.
func (c *Config) Validate() error {
	if c.ClientID == "" || c.ClientSecret == "" || c.RefreshToken == "" {
		return fmt.Errorf("client_id, client_secret and refresh_token are required")
	}
	if c.ProfileID == "" {
		return fmt.Errorf("profile_id is required")
	}
	switch c.Region {
	case "NA", "EU", "FE":
	default:
		return fmt.Errorf("unknown region %q (expected NA, EU or FE)", c.Region)
	}
	if c.PageSize <= 0 {
		return fmt.Errorf("page_size must be positive, got %d", c.PageSize)
	}
	return nil
}

// EndpointBase returns the API host for the configured region.
func (c *Config) EndpointBase() string {
	if c.BaseURL != "" {
		return c.BaseURL
	}
	switch c.Region {
	case "EU":
		return baseURLEU
	case "FE":
		return baseURLFE
	default:
		return baseURLNA
	}
}

// TokenEndpoint returns the identity endpoint for the configured region.
func (c *Config) TokenEndpoint() string {
	if c.TokenURL != "" {
		return c.TokenURL
	}
	switch c.Region {
	case "EU":
		return tokenURLEU
	case "FE":
		return tokenURLFE
	default:
		return tokenURLNA
	}
}

// startDate returns the extraction window start, defaulting to a 90 day
// lookback when unset.
func (c *Config) startDate(now time.Time) time.Time {
	if !c.StartDate.IsZero() {
		return c.StartDate
	}
	return now.AddDate(0, 0, -90)
}
