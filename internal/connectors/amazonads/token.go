package amazonads

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/carlmjohnson/requests"

	"github.com/adlumen/amzads/internal/core/domain"
	"github.com/adlumen/amzads/internal/logger"
)

// tokenSafetyMargin is subtracted from the provider-reported token lifetime
// so a token is never used close enough to expiry to die mid-request.
const tokenSafetyMargin = 300 * time.Second

// tokenRequestTimeout bounds the token exchange call.
const tokenRequestTimeout = 30 * time.Second

// tokenResponse is the identity endpoint's answer to a refresh-token grant.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// TokenStore owns the access token lifecycle for one advertising account.
// It implements driven.TokenProvider. Refresh is serialized: concurrent
// callers share a single exchange instead of issuing redundant ones.
type TokenStore struct {
	cfg *Config

	mu        sync.Mutex
	token     string
	expiresAt time.Time

	now func() time.Time
}

// NewTokenStore creates a token store for the given account config.
func NewTokenStore(cfg *Config) *TokenStore {
	return &TokenStore{
		cfg: cfg,
		now: time.Now,
	}
}

// GetToken returns a valid access token, refreshing first if the current one
// is absent or within the safety margin of expiry.
func (s *TokenStore) GetToken(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token != "" && s.now().Before(s.expiresAt) {
		return s.token, nil
	}

	return s.refreshLocked(ctx)
}

// refreshLocked performs the refresh-token grant against the identity
// endpoint and replaces the stored token. Caller holds s.mu.
func (s *TokenStore) refreshLocked(ctx context.Context) (string, error) {
	logger.Debug("amazonads: refreshing access token via %s", s.cfg.TokenEndpoint())

	data := url.Values{}
	data.Set("grant_type", "refresh_token")
	data.Set("refresh_token", s.cfg.RefreshToken)
	data.Set("client_id", s.cfg.ClientID)
	data.Set("client_secret", s.cfg.ClientSecret)

	var resp tokenResponse
	err := requests.
		URL(s.cfg.TokenEndpoint()).
		Client(&http.Client{Timeout: tokenRequestTimeout}).
		BodyForm(data).
		ToJSON(&resp).
		Fetch(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: token exchange: %v", domain.ErrAuthFailed, err)
	}

	if resp.AccessToken == "" || resp.ExpiresIn <= 0 {
		return "", fmt.Errorf("%w: token response missing access_token or expires_in", domain.ErrAuthFailed)
	}

	lifetime := time.Duration(resp.ExpiresIn) * time.Second
	s.token = resp.AccessToken
	s.expiresAt = s.now().Add(lifetime - tokenSafetyMargin)

	logger.Debug("amazonads: token refreshed, usable for %s", lifetime-tokenSafetyMargin)
	return s.token, nil
}
