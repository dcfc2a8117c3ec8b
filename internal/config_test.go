package internal

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfig_MissingFileGivesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, NewDefaultConfig(), cfg)
	assert.Equal(t, BackendFile, cfg.Storage.Backend)
	assert.Equal(t, ProviderAuto, cfg.Extraction.Provider)
	assert.Equal(t, DefaultTolerance, cfg.Extraction.Tolerance)
}

func TestLoadConfig_Overrides(t *testing.T) {
	path := writeConfig(t, `
storage:
  backend: Redis
  redis_addr: cache:6379
  redis_db: 2
extraction:
  provider: LOCAL
  tolerance: 0.1
currency: SEK
upcoming_limit: 5
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, BackendRedis, cfg.Storage.Backend)
	assert.Equal(t, "cache:6379", cfg.Storage.RedisAddr)
	assert.Equal(t, 2, cfg.Storage.RedisDB)
	assert.Equal(t, DefaultKeyPrefix, cfg.Storage.KeyPrefix)
	assert.Equal(t, ProviderLocal, cfg.Extraction.Provider)
	assert.Equal(t, 0.1, cfg.Extraction.Tolerance)
	assert.Equal(t, DefaultModel, cfg.Extraction.Model)
	assert.Equal(t, "SEK", cfg.Currency)
	assert.Equal(t, 5, cfg.UpcomingLimit)
}

func TestLoadConfig_SQLiteUsesDatabasePath(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "storage:\n  backend: sqlite\n"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(DefaultConfigDir(), "state.db"), cfg.Storage.Path)

	custom := filepath.Join(t.TempDir(), "mine.db")
	cfg, err = LoadConfig(writeConfig(t, "storage:\n  backend: sqlite\n  path: "+custom+"\n"))
	require.NoError(t, err)
	assert.Equal(t, custom, cfg.Storage.Path)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown backend", "storage:\n  backend: postgres\n"},
		{"unknown provider", "extraction:\n  provider: openai\n"},
		{"malformed yaml", "storage: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestConfig_SaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := NewDefaultConfig()
	cfg.Currency = "EUR"
	cfg.Extraction.Provider = ProviderGemini

	require.NoError(t, cfg.Save(path))
	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestConfig_APIKey(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Extraction.APIKeyEnv = "SUBTRACK_TEST_KEY"

	t.Setenv("SUBTRACK_TEST_KEY", "  secret  ")
	assert.Equal(t, "secret", cfg.APIKey())

	t.Setenv("SUBTRACK_TEST_KEY", "")
	assert.Empty(t, cfg.APIKey())
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, home, ExpandHome("~"))
	assert.Equal(t, filepath.Join(home, "state.json"), ExpandHome("~/state.json"))
	assert.Equal(t, "/tmp/state.json", ExpandHome("/tmp/state.json"))
	assert.Equal(t, "~user/x", ExpandHome("~user/x"))
}
