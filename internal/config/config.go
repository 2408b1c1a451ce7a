// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"

	"github.com/jeranaias/summify-tui/internal/util"
)

// Environment names.
const (
	EnvProduction  = "production"
	EnvDevelopment = "development"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete summify configuration.
type Config struct {
	// Environment selects which endpoint is active: "production" or "development"
	Environment string `toml:"environment" json:"environment"`

	Endpoints EndpointsConfig `toml:"endpoints" json:"endpoints"`
	Log       LogConfig       `toml:"log" json:"log"`
	Events    EventsConfig    `toml:"events" json:"events"`
	UI        UIConfig        `toml:"ui" json:"ui"`
}

// EndpointsConfig holds one endpoint per environment.
type EndpointsConfig struct {
	Production  EndpointConfig `toml:"production" json:"production"`
	Development EndpointConfig `toml:"development" json:"development"`
}

// EndpointConfig is the backend location and request deadline for one environment.
type EndpointConfig struct {
	// BaseURL is the summarization backend, without the /summarize suffix
	BaseURL string `toml:"base_url" json:"base_url"`
	// Timeout is the hard deadline for one submission
	Timeout Duration `toml:"timeout" json:"timeout"`
}

// LogConfig controls structured logging.
type LogConfig struct {
	// Level is one of trace, debug, info, warn, error, disabled
	Level string `toml:"level" json:"level"`
	// File is where logs go; empty means ~/.summify/summify.log
	File string `toml:"file" json:"file"`
}

// EventsConfig controls the conversation event bridge.
type EventsConfig struct {
	Enabled bool `toml:"enabled" json:"enabled"`
	// Backend is "memory" (in-process) or "redis" (Redis Streams)
	Backend   string `toml:"backend" json:"backend"`
	RedisAddr string `toml:"redis_addr" json:"redis_addr"`
	Topic     string `toml:"topic" json:"topic"`
}

// UIConfig contains UI configuration.
type UIConfig struct {
	// Theme is "dark", "light" or "auto"
	Theme string `toml:"theme" json:"theme"`
	// Plain forces the line-based REPL even on a terminal
	Plain bool `toml:"plain" json:"plain"`
}

// Endpoint is the resolved (base URL, timeout) pair for the active environment.
type Endpoint struct {
	Environment string
	BaseURL     string
	Timeout     time.Duration
}

// =============================================================================
// DURATION
// =============================================================================

// Duration is a time.Duration that reads and writes as "120s" in TOML and JSON.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return errors.Wrapf(err, "invalid duration %q", string(text))
	}
	*d = Duration(parsed)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Environment: EnvDevelopment,
		Endpoints: EndpointsConfig{
			Production: EndpointConfig{
				BaseURL: "https://summify-backend-mue3.onrender.com",
				Timeout: Duration(120 * time.Second),
			},
			Development: EndpointConfig{
				BaseURL: "http://localhost:8000",
				Timeout: Duration(60 * time.Second),
			},
		},
		Log: LogConfig{
			Level: "info",
		},
		Events: EventsConfig{
			Enabled:   false,
			Backend:   "memory",
			RedisAddr: "localhost:6379",
			Topic:     "summify.conversation",
		},
		UI: UIConfig{
			Theme: "dark",
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the summify configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "could not determine home directory")
	}
	return filepath.Join(home, ".summify"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathJSON returns the path to the JSON config file.
func ConfigPathJSON() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// DefaultLogPath returns ~/.summify/summify.log.
func DefaultLogPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "summify.log"), nil
}

// ResolvePath returns path if set, otherwise the first existing default config
// file, otherwise the default TOML path.
func ResolvePath(path string) (string, error) {
	if path != "" {
		return path, nil
	}
	tomlPath, err := ConfigPathTOML()
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(tomlPath); err == nil {
		return tomlPath, nil
	}
	jsonPath, err := ConfigPathJSON()
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(jsonPath); err == nil {
		return jsonPath, nil
	}
	return tomlPath, nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from path, or from the default locations when path
// is empty. A missing file is not an error: defaults are used. Environment
// overrides are applied last, then the result is validated.
func Load(path string) (*Config, error) {
	resolved, err := ResolvePath(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if _, statErr := os.Stat(resolved); statErr == nil {
		if err := LoadFile(cfg, resolved); err != nil {
			return nil, err
		}
	} else if path != "" {
		return nil, errors.Wrapf(statErr, "config file %s", path)
	}

	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}
	return cfg, nil
}

// LoadFile decodes the file at path into cfg, choosing the format by extension.
func LoadFile(cfg *Config, path string) error {
	if strings.HasSuffix(strings.ToLower(path), ".json") {
		return LoadJSON(cfg, path)
	}
	return LoadTOML(cfg, path)
}

// LoadTOML loads configuration from a TOML file.
func LoadTOML(cfg *Config, path string) error {
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return errors.Wrapf(err, "failed to decode TOML file %s", path)
	}
	return nil
}

// LoadJSON loads configuration from a JSON file.
func LoadJSON(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "failed to read JSON file %s", path)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return errors.Wrapf(err, "failed to decode JSON file %s", path)
	}
	return nil
}

// SetDefaults fills in any zero values with defaults.
func (c *Config) SetDefaults() {
	defaults := Default()

	if c.Environment == "" {
		c.Environment = defaults.Environment
	}
	c.Environment = strings.ToLower(strings.TrimSpace(c.Environment))

	if c.Endpoints.Production.BaseURL == "" {
		c.Endpoints.Production.BaseURL = defaults.Endpoints.Production.BaseURL
	}
	if c.Endpoints.Production.Timeout == 0 {
		c.Endpoints.Production.Timeout = defaults.Endpoints.Production.Timeout
	}
	if c.Endpoints.Development.BaseURL == "" {
		c.Endpoints.Development.BaseURL = defaults.Endpoints.Development.BaseURL
	}
	if c.Endpoints.Development.Timeout == 0 {
		c.Endpoints.Development.Timeout = defaults.Endpoints.Development.Timeout
	}

	if c.Log.Level == "" {
		c.Log.Level = defaults.Log.Level
	}

	if c.Events.Backend == "" {
		c.Events.Backend = defaults.Events.Backend
	}
	if c.Events.RedisAddr == "" {
		c.Events.RedisAddr = defaults.Events.RedisAddr
	}
	if c.Events.Topic == "" {
		c.Events.Topic = defaults.Events.Topic
	}

	if c.UI.Theme == "" {
		c.UI.Theme = defaults.UI.Theme
	}
}

// =============================================================================
// ENDPOINT RESOLUTION
// =============================================================================

// active returns the endpoint config selected by Environment.
func (c *Config) active() *EndpointConfig {
	if c.Environment == EnvProduction {
		return &c.Endpoints.Production
	}
	return &c.Endpoints.Development
}

// Endpoint returns the endpoint for the active environment.
func (c *Config) Endpoint() Endpoint {
	ep := c.active()
	return Endpoint{
		Environment: c.Environment,
		BaseURL:     strings.TrimRight(ep.BaseURL, "/"),
		Timeout:     ep.Timeout.Std(),
	}
}

// =============================================================================
// OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the configuration.
//
// Supported variables:
//   - SUMMIFY_ENV: overrides environment
//   - SUMMIFY_BASE_URL: overrides the active endpoint's base_url
//   - SUMMIFY_TIMEOUT: overrides the active endpoint's timeout (e.g. "90s")
//   - SUMMIFY_LOG_LEVEL: overrides log.level
//   - SUMMIFY_REDIS_ADDR: overrides events.redis_addr and selects the redis backend
func (c *Config) ApplyEnvOverrides() {
	c.ApplyOverrides(Overrides{
		Environment: os.Getenv("SUMMIFY_ENV"),
		BaseURL:     os.Getenv("SUMMIFY_BASE_URL"),
		Timeout:     os.Getenv("SUMMIFY_TIMEOUT"),
		LogLevel:    os.Getenv("SUMMIFY_LOG_LEVEL"),
	})

	if addr := os.Getenv("SUMMIFY_REDIS_ADDR"); addr != "" {
		c.Events.RedisAddr = addr
		c.Events.Backend = "redis"
	}
}

// Overrides are values supplied on the command line.
// Empty fields leave the configuration untouched.
type Overrides struct {
	Environment string
	BaseURL     string
	Timeout     string
	LogLevel    string
}

// ApplyOverrides applies o. The environment is switched first so BaseURL and
// Timeout land on the endpoint that ends up active. An unparsable timeout is
// stored as -1 and reported by Validate.
func (c *Config) ApplyOverrides(o Overrides) {
	if o.Environment != "" {
		c.Environment = strings.ToLower(strings.TrimSpace(o.Environment))
	}
	if o.BaseURL != "" {
		c.active().BaseURL = o.BaseURL
	}
	if o.Timeout != "" {
		var d Duration
		if err := d.UnmarshalText([]byte(o.Timeout)); err != nil {
			d = -1
		}
		c.active().Timeout = d
	}
	if o.LogLevel != "" {
		c.Log.Level = o.LogLevel
	}
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// SaveTOML writes the configuration to path atomically.
func SaveTOML(cfg *Config, path string) error {
	data, err := EncodeTOML(cfg)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	buf.WriteString("# summify configuration file\n")
	buf.WriteString("# environment selects which [endpoints.*] table is used\n\n")
	buf.Write(data)

	if err := util.AtomicWriteFile(path, buf.Bytes(), 0600); err != nil {
		return errors.Wrap(err, "failed to write config file")
	}
	return nil
}

// EncodeTOML encodes cfg as TOML.
func EncodeTOML(cfg *Config) ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return nil, errors.Wrap(err, "failed to encode config")
	}
	return buf.Bytes(), nil
}

// String returns the configuration as TOML.
func (c *Config) String() string {
	data, err := EncodeTOML(c)
	if err != nil {
		return fmt.Sprintf("<config: %v>", err)
	}
	return string(data)
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

var validLogLevels = map[string]bool{
	"trace": true, "debug": true, "info": true, "warn": true, "error": true, "disabled": true,
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	if c.Environment != EnvProduction && c.Environment != EnvDevelopment {
		errs = append(errs, ValidationError{
			Field:   "environment",
			Message: fmt.Sprintf("invalid environment '%s', must be one of: production, development", c.Environment),
		})
	}

	errs = append(errs, validateEndpoint("endpoints.production", c.Endpoints.Production)...)
	errs = append(errs, validateEndpoint("endpoints.development", c.Endpoints.Development)...)

	if !validLogLevels[strings.ToLower(c.Log.Level)] {
		errs = append(errs, ValidationError{
			Field:   "log.level",
			Message: fmt.Sprintf("invalid level '%s', must be one of: trace, debug, info, warn, error, disabled", c.Log.Level),
		})
	}

	switch c.Events.Backend {
	case "memory":
	case "redis":
		if c.Events.RedisAddr == "" {
			errs = append(errs, ValidationError{Field: "events.redis_addr", Message: "required for the redis backend"})
		}
	default:
		errs = append(errs, ValidationError{
			Field:   "events.backend",
			Message: fmt.Sprintf("invalid backend '%s', must be one of: memory, redis", c.Events.Backend),
		})
	}

	switch c.UI.Theme {
	case "dark", "light", "auto":
	default:
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("invalid theme '%s', must be one of: dark, light, auto", c.UI.Theme),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func validateEndpoint(field string, ep EndpointConfig) ValidateErrors {
	var errs ValidateErrors

	u, err := url.Parse(ep.BaseURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		errs = append(errs, ValidationError{
			Field:   field + ".base_url",
			Message: fmt.Sprintf("'%s' is not an absolute http(s) URL", ep.BaseURL),
		})
	}
	if ep.Timeout <= 0 {
		errs = append(errs, ValidationError{
			Field:   field + ".timeout",
			Message: "must be a positive duration such as \"60s\"",
		})
	}
	return errs
}
