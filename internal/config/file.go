package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/quocvuong92/qcli/internal/constants"
)

// ConfigFileName is the name of the config file
const ConfigFileName = constants.DefaultConfigFile

// GetConfigPaths returns the paths to check for config files (in order of priority).
// An explicit path from --config is the only candidate when given.
func GetConfigPaths(explicit string) []string {
	if explicit != "" {
		return []string{explicit}
	}

	var paths []string

	// 1. Current directory
	paths = append(paths, filepath.Join(".", ConfigFileName))

	// 2. User config directory
	if configDir, err := os.UserConfigDir(); err == nil {
		paths = append(paths, filepath.Join(configDir, "qcli", ConfigFileName))
	}

	// 3. Home directory
	if homeDir, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(homeDir, ".config", "qcli", ConfigFileName))
	}

	return paths
}

// LoadConfigFile loads the first config file found and returns its path.
// With no explicit path and no file present it returns empty settings.
func LoadConfigFile(explicit string) (Settings, string, error) {
	for _, path := range GetConfigPaths(explicit) {
		if _, err := os.Stat(path); err == nil {
			s, err := loadConfigFromPath(path)
			return s, path, err
		}
	}

	if explicit != "" {
		return Settings{}, "", fmt.Errorf("config file %s not found", explicit)
	}
	return Settings{}, "", nil
}

// loadConfigFromPath loads config from a specific path
func loadConfigFromPath(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var raw map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	settings := Settings{}
	for k, v := range raw {
		flatten(settings, strings.ToLower(k), v)
	}
	return settings, nil
}

// flatten writes value under key, descending into mappings with "_" joins.
// Sequences become comma separated values.
func flatten(out Settings, key string, value interface{}) {
	switch v := value.(type) {
	case map[string]interface{}:
		for k, child := range v {
			flatten(out, key+"_"+strings.ToLower(k), child)
		}
	case map[interface{}]interface{}:
		for k, child := range v {
			flatten(out, key+"_"+strings.ToLower(fmt.Sprint(k)), child)
		}
	case []interface{}:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			parts = append(parts, fmt.Sprint(item))
		}
		out[key] = strings.Join(parts, ",")
	case nil:
		out[key] = ""
	default:
		out[key] = fmt.Sprint(v)
	}
}

// Describe renders settings as sorted "key=value" pairs on one line
func Describe(s Settings) string {
	pairs := make([]string, 0, len(s))
	for _, k := range s.Keys() {
		pairs = append(pairs, k+"="+s[k])
	}
	return strings.Join(pairs, " ")
}

// CreateDefaultConfigFile writes a commented template to path
func CreateDefaultConfigFile(path string) (string, error) {
	if path == "" {
		path = ConfigFileName
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create config directory: %w", err)
		}
	}
	if _, err := os.Stat(path); err == nil {
		return path, fmt.Errorf("config file already exists at %s", path)
	}

	defaultConfig := `# qcli configuration
# Every key can be overridden with a CLI_ environment variable,
# e.g. CLI_HISTORY_PATH or CLI_HTTP_TIMEOUT.

# app_name: cli
# prompt: "cli> "

# history:
#   path: .qcli_history   # empty disables history
#   size: 1000

# poll_timeout: 1000ms     # how often the prompt can refresh
# prompt_interval: 1s
# time_format: "Mon Jan _2 2006 15:04:05"

# log:
#   level: warn           # debug, info, warn, error, none
#   format: text          # text or json
#   file: ""              # empty logs to stderr

# render: false           # render response bodies as markdown

# http:
#   timeout: 0            # 0 keeps the transport default
#   max_body: 65536       # bytes of body shown per response
#   user_agent: qcli/0.0.1
`

	if err := os.WriteFile(path, []byte(defaultConfig), 0600); err != nil {
		return "", fmt.Errorf("failed to write config file: %w", err)
	}

	return path, nil
}
