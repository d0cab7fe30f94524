package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, DefaultBaseURL, cfg.API.BaseURL)
	assert.Equal(t, DefaultLocale, cfg.Locale)
	assert.Equal(t, dir, cfg.StateDir)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout())
}

func TestLoad_PartialFileBackfillsDefaults(t *testing.T) {
	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, "config.yaml"),
		[]byte("locale: ru\n"), 0644)
	require.NoError(t, err)

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "ru", cfg.Locale)
	assert.Equal(t, DefaultBaseURL, cfg.API.BaseURL)
}

func TestLoad_FullFile(t *testing.T) {
	dir := t.TempDir()
	body := "api:\n  base_url: https://api.example.com\n  timeout: 5s\nlocale: tm\n"
	err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0644)
	require.NoError(t, err)

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "https://api.example.com", cfg.API.BaseURL)
	assert.Equal(t, "tm", cfg.Locale)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout())
}

func TestLoad_MalformedFileFails(t *testing.T) {
	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, "config.yaml"),
		[]byte("api: [not a mapping"), 0644)
	require.NoError(t, err)

	_, err = Load(dir)
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Run("UNISCOPE_API_URL overrides file value", func(t *testing.T) {
		t.Setenv("UNISCOPE_API_URL", "https://override.example.com")

		cfg := Default()
		cfg.API.BaseURL = "https://file.example.com"
		cfg.applyEnvOverrides()

		assert.Equal(t, "https://override.example.com", cfg.API.BaseURL)
	})

	t.Run("UNISCOPE_LOCALE overrides default", func(t *testing.T) {
		t.Setenv("UNISCOPE_LOCALE", "ru")

		cfg := Default()
		cfg.applyEnvOverrides()

		assert.Equal(t, "ru", cfg.Locale)
	})

	t.Run("UNISCOPE_HOME moves the state dir", func(t *testing.T) {
		t.Setenv("UNISCOPE_HOME", "/tmp/elsewhere")

		cfg := Default()
		cfg.applyEnvOverrides()

		assert.Equal(t, "/tmp/elsewhere", cfg.StateDir)
		assert.Equal(t, filepath.Join("/tmp/elsewhere", "prefs"), cfg.PrefsDir())
	})
}

func TestRequestTimeout_BadValueFallsBack(t *testing.T) {
	cfg := Default()
	cfg.API.Timeout = "soon"
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout())
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()

	cfg := Default()
	cfg.StateDir = dir
	cfg.Locale = "ru"
	require.NoError(t, cfg.Save())

	loaded, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "ru", loaded.Locale)
}
