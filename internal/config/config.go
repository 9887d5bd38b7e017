// Package config resolves the application configuration.
//
// Configuration is merged from a YAML file and from environment variables
// carrying the CLI_ prefix (environment wins) into a flat Settings map.
// The interactive core only ever sees the typed Config derived from it.
package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/quocvuong92/qcli/internal/constants"
)

// Setting keys. Nested YAML mappings are flattened with "_", so
// "http: {timeout: 5s}" and CLI_HTTP_TIMEOUT both land on KeyHTTPTimeout.
const (
	KeyAppName        = "app_name"
	KeyPrompt         = "prompt"
	KeyHistoryPath    = "history_path"
	KeyHistorySize    = "history_size"
	KeyPollTimeout    = "poll_timeout"
	KeyPromptInterval = "prompt_interval"
	KeyTimeFormat     = "time_format"
	KeyLogLevel       = "log_level"
	KeyLogFormat      = "log_format"
	KeyLogFile        = "log_file"
	KeyRender         = "render"
	KeyHTTPTimeout    = "http_timeout"
	KeyHTTPMaxBody    = "http_max_body"
	KeyHTTPUserAgent  = "http_user_agent"
)

// Errors
var (
	ErrInvalidDuration = errors.New("invalid duration")
	ErrInvalidNumber   = errors.New("invalid number")
	ErrInvalidBool     = errors.New("invalid boolean")
)

// Settings is the resolved flat key/value configuration
type Settings map[string]string

// Get returns the value for key and whether it was set at all
func (s Settings) Get(key string) (string, bool) {
	v, ok := s[strings.ToLower(key)]
	return v, ok
}

// Keys returns the setting keys in sorted order
func (s Settings) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ApplyEnv overlays environment entries ("KEY=value") that carry prefix.
// CLI_HISTORY_PATH=x becomes history_path=x.
func (s Settings) ApplyEnv(prefix string, environ []string) {
	for _, kv := range environ {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(name, prefix) {
			continue
		}
		key := strings.ToLower(strings.TrimPrefix(name, prefix))
		if key == "" {
			continue
		}
		s[key] = value
	}
}

// Load reads the configuration file and overlays the process environment.
// The returned Settings are always usable: a non-nil error only reports that
// the file could not be merged, and the environment has still been applied.
func Load(path string) (Settings, error) {
	settings, _, fileErr := LoadConfigFile(path)
	if settings == nil {
		settings = Settings{}
	}
	settings.ApplyEnv(constants.DefaultEnvPrefix, os.Environ())
	return settings, fileErr
}

// Config holds the typed application configuration
type Config struct {
	AppName        string
	Prompt         string
	HistoryPath    string // empty disables history persistence
	HistorySize    int
	PollTimeout    time.Duration
	PromptInterval time.Duration
	TimeFormat     string

	LogLevel  string
	LogFormat string
	LogFile   string

	Render       bool
	HTTPTimeout  time.Duration
	MaxBodyBytes int
	UserAgent    string
}

// NewConfig creates a new Config with defaults
func NewConfig() *Config {
	return &Config{
		AppName:        constants.AppName,
		Prompt:         constants.AppName + "> ",
		HistoryPath:    constants.DefaultHistoryFile,
		HistorySize:    constants.DefaultHistorySize,
		PollTimeout:    constants.DefaultPollTimeout,
		PromptInterval: constants.DefaultPromptInterval,
		TimeFormat:     constants.DefaultTimeLayout,
		LogLevel:       "warn",
		LogFormat:      "text",
		HTTPTimeout:    constants.DefaultHTTPTimeout,
		MaxBodyBytes:   constants.DefaultMaxBodyBytes,
		UserAgent:      constants.DefaultUserAgent,
	}
}

// FromSettings builds a Config from resolved settings on top of the defaults
func FromSettings(s Settings) (*Config, error) {
	c := NewConfig()

	if v, ok := s.Get(KeyAppName); ok && v != "" {
		c.AppName = v
		c.Prompt = v + "> "
	}
	if v, ok := s.Get(KeyPrompt); ok && v != "" {
		c.Prompt = v
	}
	if v, ok := s.Get(KeyHistoryPath); ok {
		c.HistoryPath = strings.TrimSpace(v)
	}
	if v, ok := s.Get(KeyTimeFormat); ok && v != "" {
		c.TimeFormat = v
	}
	if v, ok := s.Get(KeyLogLevel); ok && v != "" {
		c.LogLevel = v
	}
	if v, ok := s.Get(KeyLogFormat); ok && v != "" {
		c.LogFormat = v
	}
	if v, ok := s.Get(KeyLogFile); ok {
		c.LogFile = strings.TrimSpace(v)
	}
	if v, ok := s.Get(KeyHTTPUserAgent); ok && v != "" {
		c.UserAgent = v
	}

	var err error
	if c.HistorySize, err = intSetting(s, KeyHistorySize, c.HistorySize); err != nil {
		return nil, err
	}
	if c.MaxBodyBytes, err = intSetting(s, KeyHTTPMaxBody, c.MaxBodyBytes); err != nil {
		return nil, err
	}
	if c.PollTimeout, err = durationSetting(s, KeyPollTimeout, c.PollTimeout); err != nil {
		return nil, err
	}
	if c.PromptInterval, err = durationSetting(s, KeyPromptInterval, c.PromptInterval); err != nil {
		return nil, err
	}
	if c.HTTPTimeout, err = durationSetting(s, KeyHTTPTimeout, c.HTTPTimeout); err != nil {
		return nil, err
	}
	if v, ok := s.Get(KeyRender); ok && v != "" {
		b, perr := strconv.ParseBool(v)
		if perr != nil {
			return nil, fmt.Errorf("%s=%q: %w", KeyRender, v, ErrInvalidBool)
		}
		c.Render = b
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks value ranges
func (c *Config) Validate() error {
	if c.PollTimeout <= 0 {
		return fmt.Errorf("%s must be positive, got %s", KeyPollTimeout, c.PollTimeout)
	}
	if c.PromptInterval <= 0 {
		return fmt.Errorf("%s must be positive, got %s", KeyPromptInterval, c.PromptInterval)
	}
	if c.HTTPTimeout < 0 {
		return fmt.Errorf("%s must not be negative, got %s", KeyHTTPTimeout, c.HTTPTimeout)
	}
	if c.MaxBodyBytes < 0 {
		return fmt.Errorf("%s must not be negative, got %d", KeyHTTPMaxBody, c.MaxBodyBytes)
	}
	if c.HistorySize <= 0 {
		return fmt.Errorf("%s must be positive, got %d", KeyHistorySize, c.HistorySize)
	}
	return nil
}

func intSetting(s Settings, key string, def int) (int, error) {
	v, ok := s.Get(key)
	if !ok || strings.TrimSpace(v) == "" {
		return def, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, fmt.Errorf("%s=%q: %w", key, v, ErrInvalidNumber)
	}
	return n, nil
}

// durationSetting accepts Go durations ("1500ms", "2s") or bare milliseconds.
func durationSetting(s Settings, key string, def time.Duration) (time.Duration, error) {
	v, ok := s.Get(key)
	v = strings.TrimSpace(v)
	if !ok || v == "" {
		return def, nil
	}
	if ms, err := strconv.Atoi(v); err == nil {
		return time.Duration(ms) * time.Millisecond, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s=%q: %w", key, v, ErrInvalidDuration)
	}
	return d, nil
}
