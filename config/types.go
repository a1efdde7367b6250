package config

import "time"

// Config represents the complete configuration structure
type Config struct {
	TMDB    TMDBConfig    `mapstructure:"tmdb"`
	Store   StoreConfig   `mapstructure:"store"`
	Enrich  EnrichConfig  `mapstructure:"enrich"`
	Safety  SafetyConfig  `mapstructure:"safety"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// TMDBConfig holds TMDB API connection details
type TMDBConfig struct {
	URL          string        `mapstructure:"url"`
	ImageURL     string        `mapstructure:"image_url"`
	Token        string        `mapstructure:"token"`
	Language     string        `mapstructure:"language"`
	IncludeAdult bool          `mapstructure:"include_adult"`
	Timeout      time.Duration `mapstructure:"timeout"`
	RateLimit    float64       `mapstructure:"rate_limit"`
}

// StoreConfig describes where movie records live
type StoreConfig struct {
	Dir       string `mapstructure:"dir"`
	IndexFile string `mapstructure:"index_file"`
	Lock      bool   `mapstructure:"lock"`
}

// EnrichConfig contains enrichment run settings
type EnrichConfig struct {
	Delay   time.Duration     `mapstructure:"delay"`
	Filter  string            `mapstructure:"filter"`
	Presets map[string]string `mapstructure:"presets"`
}

// SafetyConfig contains safety-related settings
type SafetyConfig struct {
	DryRun bool `mapstructure:"dry_run"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Color  bool   `mapstructure:"color"`
}
