package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// runInTempDir runs the test in a temporary directory to isolate from config files
func runInTempDir(t *testing.T) string {
	t.Helper()
	tmpDir := t.TempDir()
	oldWd, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get working dir: %v", err)
	}
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("failed to change to temp dir: %v", err)
	}
	t.Cleanup(func() {
		_ = os.Chdir(oldWd)
	})

	// Keep user-level config files out of the picture
	t.Setenv("HOME", tmpDir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, ".config"))
	return tmpDir
}

// =============================================================================
// Settings Tests
// =============================================================================

func TestSettings_ApplyEnv(t *testing.T) {
	s := Settings{"history_path": "from-file", "prompt": "file> "}

	s.ApplyEnv("CLI_", []string{
		"CLI_HISTORY_PATH=/tmp/h",
		"CLI_HTTP_TIMEOUT=5s",
		"HOME=/root",
		"CLI_=ignored",
		"CLIENT_ID=ignored",
		"malformed",
	})

	if got := s["history_path"]; got != "/tmp/h" {
		t.Errorf("history_path = %q, want env value", got)
	}
	if got := s["http_timeout"]; got != "5s" {
		t.Errorf("http_timeout = %q, want %q", got, "5s")
	}
	if got := s["prompt"]; got != "file> " {
		t.Errorf("prompt = %q, file value should survive", got)
	}
	if _, ok := s["home"]; ok {
		t.Error("unprefixed variables must not be merged")
	}
	if _, ok := s[""]; ok {
		t.Error("bare prefix must not create an empty key")
	}
	if _, ok := s["ent_id"]; ok {
		t.Error("CLIENT_ID does not carry the CLI_ prefix")
	}
}

func TestSettings_GetIsCaseInsensitive(t *testing.T) {
	s := Settings{"log_level": "debug"}
	if v, ok := s.Get("LOG_LEVEL"); !ok || v != "debug" {
		t.Errorf("Get(LOG_LEVEL) = %q, %v", v, ok)
	}
	if _, ok := s.Get("missing"); ok {
		t.Error("Get(missing) should report absence")
	}
}

func TestSettings_Keys(t *testing.T) {
	s := Settings{"b": "2", "a": "1", "c": "3"}
	keys := s.Keys()
	want := []string{"a", "b", "c"}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("Keys() = %v, want %v", keys, want)
		}
	}
}

// =============================================================================
// FromSettings Tests
// =============================================================================

func TestFromSettings_Defaults(t *testing.T) {
	cfg, err := FromSettings(Settings{})
	if err != nil {
		t.Fatalf("FromSettings() error = %v", err)
	}

	if cfg.AppName != "cli" {
		t.Errorf("AppName = %q, want %q", cfg.AppName, "cli")
	}
	if cfg.Prompt != "cli> " {
		t.Errorf("Prompt = %q, want %q", cfg.Prompt, "cli> ")
	}
	if cfg.HistoryPath != ".qcli_history" {
		t.Errorf("HistoryPath = %q, want %q", cfg.HistoryPath, ".qcli_history")
	}
	if cfg.PollTimeout != time.Second {
		t.Errorf("PollTimeout = %v, want 1s", cfg.PollTimeout)
	}
	if cfg.PromptInterval != time.Second {
		t.Errorf("PromptInterval = %v, want 1s", cfg.PromptInterval)
	}
	if cfg.HTTPTimeout != 0 {
		t.Errorf("HTTPTimeout = %v, want 0 (transport default)", cfg.HTTPTimeout)
	}
	if cfg.Render {
		t.Error("Render should default to false")
	}
}

func TestFromSettings_Overrides(t *testing.T) {
	cfg, err := FromSettings(Settings{
		KeyAppName:        "demo",
		KeyHistoryPath:    "",
		KeyPollTimeout:    "250",
		KeyPromptInterval: "2s",
		KeyHTTPTimeout:    "1500ms",
		KeyHTTPMaxBody:    "128",
		KeyRender:         "true",
		KeyLogLevel:       "debug",
	})
	if err != nil {
		t.Fatalf("FromSettings() error = %v", err)
	}

	if cfg.AppName != "demo" || cfg.Prompt != "demo> " {
		t.Errorf("AppName/Prompt = %q/%q, want demo/demo> ", cfg.AppName, cfg.Prompt)
	}
	if cfg.HistoryPath != "" {
		t.Errorf("HistoryPath = %q, an empty value disables history", cfg.HistoryPath)
	}
	if cfg.PollTimeout != 250*time.Millisecond {
		t.Errorf("PollTimeout = %v, bare numbers are milliseconds", cfg.PollTimeout)
	}
	if cfg.PromptInterval != 2*time.Second {
		t.Errorf("PromptInterval = %v, want 2s", cfg.PromptInterval)
	}
	if cfg.HTTPTimeout != 1500*time.Millisecond {
		t.Errorf("HTTPTimeout = %v, want 1.5s", cfg.HTTPTimeout)
	}
	if cfg.MaxBodyBytes != 128 {
		t.Errorf("MaxBodyBytes = %d, want 128", cfg.MaxBodyBytes)
	}
	if !cfg.Render {
		t.Error("Render should be true")
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
}

func TestFromSettings_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		s       Settings
		wantErr error
	}{
		{"bad duration", Settings{KeyPollTimeout: "soon"}, ErrInvalidDuration},
		{"bad number", Settings{KeyHTTPMaxBody: "lots"}, ErrInvalidNumber},
		{"bad bool", Settings{KeyRender: "maybe"}, ErrInvalidBool},
		{"zero poll", Settings{KeyPollTimeout: "0"}, nil},
		{"negative http timeout", Settings{KeyHTTPTimeout: "-1s"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromSettings(tt.s)
			if err == nil {
				t.Fatal("FromSettings() expected error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// =============================================================================
// Load Tests
// =============================================================================

func TestLoad_FileThenEnv(t *testing.T) {
	dir := runInTempDir(t)
	content := `
prompt: "file> "
history:
  path: file_history
http:
  timeout: 3s
`
	if err := os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("CLI_HISTORY_PATH", "env_history")

	s, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if s["prompt"] != "file> " {
		t.Errorf("prompt = %q, want file value", s["prompt"])
	}
	if s["history_path"] != "env_history" {
		t.Errorf("history_path = %q, environment should win", s["history_path"])
	}
	if s["http_timeout"] != "3s" {
		t.Errorf("http_timeout = %q, want 3s", s["http_timeout"])
	}
}

func TestLoad_MissingExplicitFileStillAppliesEnv(t *testing.T) {
	runInTempDir(t)
	t.Setenv("CLI_PROMPT", "env> ")

	s, err := Load("does-not-exist.yaml")
	if err == nil {
		t.Error("Load() should report the missing file")
	}
	if s["prompt"] != "env> " {
		t.Errorf("prompt = %q, environment should still be applied", s["prompt"])
	}
}
