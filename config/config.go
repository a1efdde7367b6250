package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for environment variable overrides, e.g. ENRICHR_TMDB_TOKEN.
const EnvPrefix = "ENRICHR"

// DotEnvFiles are read from the working directory before the environment is consulted.
// Variables already set in the environment win.
var DotEnvFiles = []string{".env", ".env.local"}

// Load loads the configuration from file, environment and defaults.
// A missing config file is only an error when configPath is set explicitly.
func Load(configPath string) (*Config, error) {
	loadDotEnv()

	v := viper.New()

	// Set default values
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Look for config in standard locations
		v.SetConfigName("config")
		v.SetConfigType("yaml")

		// Check current directory first
		v.AddConfigPath(".")

		// Check home directory
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".enrichr"))
		}

		// Check /etc
		v.AddConfigPath("/etc/enrichr/")
	}

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || configPath != "" {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Validate configuration
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// loadDotEnv exports variables from the optional dotenv files. Missing files are ignored.
func loadDotEnv() {
	for _, name := range DotEnvFiles {
		_ = godotenv.Load(name)
	}
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// TMDB defaults
	v.SetDefault("tmdb.url", "https://api.themoviedb.org/3")
	v.SetDefault("tmdb.image_url", "https://image.tmdb.org/t/p/w500")
	v.SetDefault("tmdb.token", "")
	v.SetDefault("tmdb.language", "es-ES")
	v.SetDefault("tmdb.include_adult", true)
	v.SetDefault("tmdb.timeout", 15*time.Second)
	v.SetDefault("tmdb.rate_limit", 0)

	// Store defaults
	v.SetDefault("store.dir", "peliculas")
	v.SetDefault("store.index_file", "index.json")
	v.SetDefault("store.lock", true)

	// Enrichment defaults
	v.SetDefault("enrich.delay", 250*time.Millisecond)
	v.SetDefault("enrich.filter", "")

	// Safety defaults
	v.SetDefault("safety.dry_run", false)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.color", true)
}

// validate checks if the configuration is valid
func validate(cfg *Config) error {
	if cfg.TMDB.URL == "" {
		return fmt.Errorf("tmdb.url is required")
	}
	if u, err := url.Parse(cfg.TMDB.URL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("tmdb.url must be an absolute URL: %s", cfg.TMDB.URL)
	}

	if cfg.TMDB.ImageURL == "" {
		return fmt.Errorf("tmdb.image_url is required")
	}

	if cfg.TMDB.Language == "" {
		return fmt.Errorf("tmdb.language is required")
	}

	if cfg.TMDB.Timeout <= 0 {
		return fmt.Errorf("tmdb.timeout must be positive, got %s", cfg.TMDB.Timeout)
	}

	if cfg.TMDB.RateLimit < 0 {
		return fmt.Errorf("tmdb.rate_limit must not be negative, got %v", cfg.TMDB.RateLimit)
	}

	if cfg.Store.Dir == "" {
		return fmt.Errorf("store.dir is required")
	}

	if strings.ContainsAny(cfg.Store.IndexFile, `/\`) {
		return fmt.Errorf("store.index_file must be a file name, got %s", cfg.Store.IndexFile)
	}

	if cfg.Enrich.Delay < 0 {
		return fmt.Errorf("enrich.delay must not be negative, got %s", cfg.Enrich.Delay)
	}

	for name, expression := range cfg.Enrich.Presets {
		if strings.TrimSpace(expression) == "" {
			return fmt.Errorf("enrich.presets.%s has an empty expression", name)
		}
	}

	// Validate logging level
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[cfg.Logging.Level] {
		return fmt.Errorf("invalid logging level: %s", cfg.Logging.Level)
	}

	// Validate logging format
	validFormats := map[string]bool{
		"console": true,
		"json":    true,
	}
	if !validFormats[cfg.Logging.Format] {
		return fmt.Errorf("invalid logging format: %s", cfg.Logging.Format)
	}

	return nil
}
