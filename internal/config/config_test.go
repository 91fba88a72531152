package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func TestLoadDefaults(t *testing.T) {
	chdirTemp(t)
	t.Setenv("SEITHI_CONFIG", "")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 15*time.Second, cfg.Scrape.ListingTimeout)
	assert.Equal(t, 10*time.Second, cfg.Scrape.DetailTimeout)
	assert.Equal(t, 1, cfg.Scrape.DetailWorkers)
	assert.Equal(t, 30*time.Second, cfg.GNews.Timeout)

	s := cfg.Settings()
	assert.Equal(t, 30, s.HeadlinesMax)
	assert.Equal(t, 20, s.SupplementBelow)
	assert.Equal(t, 10, s.TamilEarlyExit)
	assert.Equal(t, 50, s.SearchMax)
	assert.Equal(t, "https://news.google.com/", s.HomeURL)
}

func TestLoadFileThenEnv(t *testing.T) {
	dir := chdirTemp(t)
	path := filepath.Join(dir, "seithi.yaml")
	doc := `
server:
  addr: ":9090"
log:
  level: DEBUG
  format: console
scrape:
  detail_workers: 4
  detail_timeout: 5s
pipeline:
  tamil_early_exit: 8
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))
	t.Setenv("SEITHI_GNEWS_API_KEY", "from-env")
	t.Setenv("SEITHI_SERVER_ADDR", ":7070")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.Server.Addr)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 4, cfg.Scrape.DetailWorkers)
	assert.Equal(t, 5*time.Second, cfg.Scrape.DetailTimeout)
	assert.Equal(t, "from-env", cfg.GNews.APIKey)
	assert.Equal(t, 8, cfg.Settings().TamilEarlyExit)
	assert.Equal(t, 30, cfg.Settings().TamilCap)
}

func TestLoadDotEnv(t *testing.T) {
	dir := chdirTemp(t)
	t.Setenv("SEITHI_CONFIG", "")
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("SEITHI_AUTH_JWT_SECRET=dotenv-secret\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("SEITHI_AUTH_JWT_SECRET") })

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "dotenv-secret", cfg.Auth.JWTSecret)
}

func TestLoadRejectsInvalid(t *testing.T) {
	chdirTemp(t)
	t.Setenv("SEITHI_CONFIG", "")

	t.Setenv("SEITHI_LOG_LEVEL", "verbose")
	_, err := Load("")
	assert.ErrorIs(t, err, ErrInvalidLogLevel)

	t.Setenv("SEITHI_LOG_LEVEL", "info")
	t.Setenv("SEITHI_SCRAPE_DETAIL_WORKERS", "50")
	_, err = Load("")
	assert.ErrorIs(t, err, ErrInvalidWorkers)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadRejectsRelativeURLs(t *testing.T) {
	chdirTemp(t)
	t.Setenv("SEITHI_CONFIG", "")

	for _, img := range []string{"/static/placeholder.png", "ftp://cdn.example.com/p.png", "placeholder.png"} {
		t.Setenv("SEITHI_PLACEHOLDER_IMAGE", img)
		_, err := Load("")
		assert.ErrorIs(t, err, ErrInvalidImage, img)
	}

	t.Setenv("SEITHI_PLACEHOLDER_IMAGE", "http://cdn.example.com/p.png")
	t.Setenv("SEITHI_PIPELINE_HOME_URL", "/home")
	_, err := Load("")
	assert.ErrorIs(t, err, ErrInvalidHomeURL)

	t.Setenv("SEITHI_PIPELINE_HOME_URL", "https://seithi.example.com/")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "https://seithi.example.com/", cfg.Settings().HomeURL)
}
