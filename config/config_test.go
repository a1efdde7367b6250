package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		TMDB: TMDBConfig{
			URL:      "https://api.themoviedb.org/3",
			ImageURL: "https://image.tmdb.org/t/p/w500",
			Language: "es-ES",
			Timeout:  15 * time.Second,
		},
		Store: StoreConfig{
			Dir:       "peliculas",
			IndexFile: "index.json",
		},
		Enrich: EnrichConfig{
			Delay: 250 * time.Millisecond,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(cfg *Config)
		wantErr     bool
		errContains string
	}{
		{
			name:    "valid config",
			mutate:  func(cfg *Config) {},
			wantErr: false,
		},
		{
			name:    "zero delay is allowed",
			mutate:  func(cfg *Config) { cfg.Enrich.Delay = 0 },
			wantErr: false,
		},
		{
			name:        "missing tmdb url",
			mutate:      func(cfg *Config) { cfg.TMDB.URL = "" },
			wantErr:     true,
			errContains: "tmdb.url is required",
		},
		{
			name:        "relative tmdb url",
			mutate:      func(cfg *Config) { cfg.TMDB.URL = "api.themoviedb.org/3" },
			wantErr:     true,
			errContains: "absolute URL",
		},
		{
			name:        "missing language",
			mutate:      func(cfg *Config) { cfg.TMDB.Language = "" },
			wantErr:     true,
			errContains: "tmdb.language",
		},
		{
			name:        "non-positive timeout",
			mutate:      func(cfg *Config) { cfg.TMDB.Timeout = 0 },
			wantErr:     true,
			errContains: "tmdb.timeout",
		},
		{
			name:        "negative rate limit",
			mutate:      func(cfg *Config) { cfg.TMDB.RateLimit = -1 },
			wantErr:     true,
			errContains: "tmdb.rate_limit",
		},
		{
			name:        "missing store dir",
			mutate:      func(cfg *Config) { cfg.Store.Dir = "" },
			wantErr:     true,
			errContains: "store.dir",
		},
		{
			name:        "index file with path separator",
			mutate:      func(cfg *Config) { cfg.Store.IndexFile = "sub/index.json" },
			wantErr:     true,
			errContains: "store.index_file",
		},
		{
			name:        "negative delay",
			mutate:      func(cfg *Config) { cfg.Enrich.Delay = -time.Second },
			wantErr:     true,
			errContains: "enrich.delay",
		},
		{
			name:        "empty preset expression",
			mutate:      func(cfg *Config) { cfg.Enrich.Presets = map[string]string{"pending": " "} },
			wantErr:     true,
			errContains: "enrich.presets.pending",
		},
		{
			name:        "invalid logging level",
			mutate:      func(cfg *Config) { cfg.Logging.Level = "verbose" },
			wantErr:     true,
			errContains: "invalid logging level: verbose",
		},
		{
			name:        "invalid logging format",
			mutate:      func(cfg *Config) { cfg.Logging.Format = "xml" },
			wantErr:     true,
			errContains: "invalid logging format: xml",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := validate(cfg)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestSetDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	var cfg Config
	require.NoError(t, v.Unmarshal(&cfg))

	assert.Equal(t, "https://api.themoviedb.org/3", cfg.TMDB.URL)
	assert.Equal(t, "https://image.tmdb.org/t/p/w500", cfg.TMDB.ImageURL)
	assert.Equal(t, "es-ES", cfg.TMDB.Language)
	assert.True(t, cfg.TMDB.IncludeAdult)
	assert.Equal(t, 15*time.Second, cfg.TMDB.Timeout)
	assert.Equal(t, "peliculas", cfg.Store.Dir)
	assert.Equal(t, "index.json", cfg.Store.IndexFile)
	assert.True(t, cfg.Store.Lock)
	assert.Equal(t, 250*time.Millisecond, cfg.Enrich.Delay)
	assert.False(t, cfg.Safety.DryRun)
	require.NoError(t, validate(&cfg))
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
tmdb:
  token: file-token
  language: en-US
  timeout: 5s
store:
  dir: /srv/movies
enrich:
  delay: 1s
  filter: 'hasPrefix(titulo, "A")'
  presets:
    pending: '!enriched'
logging:
  level: debug
  format: json
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "file-token", cfg.TMDB.Token)
	assert.Equal(t, "en-US", cfg.TMDB.Language)
	assert.Equal(t, 5*time.Second, cfg.TMDB.Timeout)
	assert.Equal(t, "/srv/movies", cfg.Store.Dir)
	assert.Equal(t, "index.json", cfg.Store.IndexFile, "unset keys keep their defaults")
	assert.Equal(t, time.Second, cfg.Enrich.Delay)
	assert.Equal(t, `hasPrefix(titulo, "A")`, cfg.Enrich.Filter)
	assert.Equal(t, map[string]string{"pending": "!enriched"}, cfg.Enrich.Presets)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoadEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("tmdb:\n  token: file-token\n"), 0o644))
	t.Setenv("ENRICHR_TMDB_TOKEN", "env-token")
	t.Setenv("ENRICHR_STORE_DIR", "/tmp/records")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "env-token", cfg.TMDB.Token)
	assert.Equal(t, "/tmp/records", cfg.Store.Dir)
}

func TestLoadDotEnv(t *testing.T) {
	// Register a restore of the real value, then start from unset.
	t.Setenv("ENRICHR_TMDB_LANGUAGE", "")
	require.NoError(t, os.Unsetenv("ENRICHR_TMDB_LANGUAGE"))

	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("ENRICHR_TMDB_LANGUAGE=fr-FR\n"), 0o644))

	original := DotEnvFiles
	DotEnvFiles = []string{envFile, filepath.Join(dir, ".env.missing")}
	t.Cleanup(func() { DotEnvFiles = original })

	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("tmdb:\n  language: en-US\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "fr-FR", cfg.TMDB.Language)
}

func TestLoadErrors(t *testing.T) {
	t.Run("explicit path must exist", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "error reading config")
	})

	t.Run("invalid values are rejected", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("logging:\n  level: loud\n"), 0o644))

		_, err := Load(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid configuration")
	})
}
