package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone  = "UTC"
	defaultUserAgent = "feed-digest/1.1 (+https://example.com)"

	configPathEnv   = "FEED_DIGEST_CONFIG"
	databasePathEnv = "FEED_DIGEST_DB"
	outputDirEnv    = "FEED_DIGEST_OUT_DIR"
	timezoneEnv     = "FEED_DIGEST_TZ"
	openAIKeyEnv    = "OPENAI_API_KEY"
	openAIModelEnv  = "OPENAI_MODEL"
)

// Config holds high-level settings required across the application.
type Config struct {
	Feeds      []string         `yaml:"feeds"`
	Database   DatabaseConfig   `yaml:"database"`
	Output     OutputConfig     `yaml:"output"`
	HTTP       HTTPConfig       `yaml:"http"`
	Translator TranslatorConfig `yaml:"translator"`
	Timezone   string           `yaml:"timezone"`
	Logging    LoggingConfig    `yaml:"logging"`

	location *time.Location
}

// DatabaseConfig describes where the SQLite state file lives.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// OutputConfig describes where per-feed reports are written.
type OutputConfig struct {
	Dir string `yaml:"dir"`
}

// HTTPConfig groups knobs shared by feed and article requests.
type HTTPConfig struct {
	TimeoutSeconds int    `yaml:"timeoutSeconds"`
	SleepBetweenMS int    `yaml:"sleepBetweenMs"`
	UserAgent      string `yaml:"userAgent"`
}

// Timeout resolves the per-request timeout.
func (h HTTPConfig) Timeout() time.Duration {
	return time.Duration(h.TimeoutSeconds) * time.Second
}

// SleepBetween resolves the politeness delay between network calls.
func (h HTTPConfig) SleepBetween() time.Duration {
	return time.Duration(h.SleepBetweenMS) * time.Millisecond
}

// TranslatorConfig selects and configures the optional translation step.
type TranslatorConfig struct {
	Mode   string       `yaml:"mode"`
	OpenAI OpenAIConfig `yaml:"openai"`
}

// OpenAIConfig defines how to contact an OpenAI-compatible API.
type OpenAIConfig struct {
	APIKey         string `yaml:"apiKey"`
	BaseURL        string `yaml:"baseUrl"`
	Model          string `yaml:"model"`
	SleepBetweenMS int    `yaml:"sleepBetweenMs"`
}

// LoggingConfig controls console log verbosity.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Location resolves the configured timezone to a time.Location.
func (c Config) Location() *time.Location {
	if c.location != nil {
		return c.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// Load reads YAML configuration (if present), applies environment
// overrides, and validates. A configuration without feeds is an error:
// the pipeline refuses to start before any network activity.
func Load() (Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		var fileCfg Config
		if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
		cfg = mergeConfig(cfg, fileCfg)
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezone()

	if len(cfg.Feeds) == 0 {
		return Config{}, fmt.Errorf("no feeds configured")
	}

	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(databasePathEnv); v != "" {
		c.Database.Path = v
	}

	if v := os.Getenv(outputDirEnv); v != "" {
		c.Output.Dir = v
	}

	if v := os.Getenv(timezoneEnv); v != "" {
		c.Timezone = v
	}

	if v := os.Getenv(openAIKeyEnv); v != "" {
		c.Translator.OpenAI.APIKey = v
	}

	if v := os.Getenv(openAIModelEnv); v != "" {
		c.Translator.OpenAI.Model = v
	}
}

func (c *Config) bindTimezone() {
	tz := c.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to %s", tz, defaultTimezone)
		loc, _ = time.LoadLocation(defaultTimezone)
	}
	c.location = loc
}

func mergeConfig(base, override Config) Config {
	if len(override.Feeds) > 0 {
		base.Feeds = override.Feeds
	}

	if override.Database.Path != "" {
		base.Database = override.Database
	}

	if override.Output.Dir != "" {
		base.Output = override.Output
	}

	if override.HTTP.TimeoutSeconds > 0 {
		base.HTTP.TimeoutSeconds = override.HTTP.TimeoutSeconds
	}
	if override.HTTP.SleepBetweenMS > 0 {
		base.HTTP.SleepBetweenMS = override.HTTP.SleepBetweenMS
	}
	if override.HTTP.UserAgent != "" {
		base.HTTP.UserAgent = override.HTTP.UserAgent
	}

	if override.Translator.Mode != "" {
		base.Translator.Mode = override.Translator.Mode
	}
	if override.Translator.OpenAI.APIKey != "" {
		base.Translator.OpenAI.APIKey = override.Translator.OpenAI.APIKey
	}
	if override.Translator.OpenAI.BaseURL != "" {
		base.Translator.OpenAI.BaseURL = override.Translator.OpenAI.BaseURL
	}
	if override.Translator.OpenAI.Model != "" {
		base.Translator.OpenAI.Model = override.Translator.OpenAI.Model
	}
	if override.Translator.OpenAI.SleepBetweenMS > 0 {
		base.Translator.OpenAI.SleepBetweenMS = override.Translator.OpenAI.SleepBetweenMS
	}

	if override.Timezone != "" {
		base.Timezone = override.Timezone
	}

	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}

	return base
}

func defaultConfig() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	return Config{
		Database: DatabaseConfig{Path: "./rss_state.db"},
		Output:   OutputConfig{Dir: "./reports"},
		HTTP: HTTPConfig{
			TimeoutSeconds: 25,
			SleepBetweenMS: 500,
			UserAgent:      defaultUserAgent,
		},
		Translator: TranslatorConfig{
			Mode: "none",
			OpenAI: OpenAIConfig{
				BaseURL:        "https://api.openai.com/v1",
				Model:          "gpt-4o-mini",
				SleepBetweenMS: 400,
			},
		},
		Timezone: defaultTimezone,
		Logging:  LoggingConfig{Level: "info"},
		location: tz,
	}
}
