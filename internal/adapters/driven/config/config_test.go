package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfig(t, `
client_id = "id"
client_secret = "secret"
refresh_token = "refresh"
profile_id = "12345"
region = "EU"
start_date = "2026-01-15"
page_size = 50
user_agent = "custom-agent"

[streams.campaigns]
fields = ["campaignId", "name", "state"]
`)

	cfg, streams, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "id", cfg.ClientID)
	assert.Equal(t, "secret", cfg.ClientSecret)
	assert.Equal(t, "refresh", cfg.RefreshToken)
	assert.Equal(t, "12345", cfg.ProfileID)
	assert.Equal(t, "EU", cfg.Region)
	assert.Equal(t, 50, cfg.PageSize)
	assert.Equal(t, "custom-agent", cfg.UserAgent)
	assert.Equal(t, time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC), cfg.StartDate)

	require.Contains(t, streams, "campaigns")
	assert.Equal(t, []string{"campaignId", "name", "state"}, streams["campaigns"].Fields)
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, `
client_id = "id"
client_secret = "secret"
refresh_token = "refresh"
profile_id = "12345"
`)

	cfg, streams, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "NA", cfg.Region)
	assert.Equal(t, 100, cfg.PageSize)
	assert.True(t, cfg.StartDate.IsZero())
	assert.Empty(t, streams)
}

func TestLoadEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
client_id = "file-id"
client_secret = "file-secret"
refresh_token = "file-refresh"
profile_id = "11111"
page_size = 50
`)

	t.Setenv("AMZADS_CLIENT_ID", "env-id")
	t.Setenv("AMZADS_PROFILE_ID", "22222")
	t.Setenv("AMZADS_REGION", "FE")
	t.Setenv("AMZADS_PAGE_SIZE", "200")

	cfg, _, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "env-id", cfg.ClientID)
	assert.Equal(t, "file-secret", cfg.ClientSecret)
	assert.Equal(t, "22222", cfg.ProfileID)
	assert.Equal(t, "FE", cfg.Region)
	assert.Equal(t, 200, cfg.PageSize)
}

func TestLoadMissingFileEnvOnly(t *testing.T) {
	t.Setenv("AMZADS_CLIENT_ID", "id")
	t.Setenv("AMZADS_CLIENT_SECRET", "secret")
	t.Setenv("AMZADS_REFRESH_TOKEN", "refresh")
	t.Setenv("AMZADS_PROFILE_ID", "12345")

	cfg, _, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)
	assert.Equal(t, "id", cfg.ClientID)
}

func TestLoadMissingFileMissingEnv(t *testing.T) {
	_, _, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestLoadInvalidTOML(t *testing.T) {
	path := writeConfig(t, `client_id = `)

	_, _, err := Load(path)
	assert.Error(t, err)
}

func TestLoadInvalidStartDate(t *testing.T) {
	path := writeConfig(t, `
client_id = "id"
client_secret = "secret"
refresh_token = "refresh"
profile_id = "12345"
start_date = "15/01/2026"
`)

	_, _, err := Load(path)
	assert.Error(t, err)
}
