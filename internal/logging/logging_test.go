package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestLevel_String(t *testing.T) {
	tests := []struct {
		level Level
		want  string
	}{
		{LevelDebug, "DEBUG"},
		{LevelInfo, "INFO"},
		{LevelWarn, "WARN"},
		{LevelError, "ERROR"},
		{LevelNone, "NONE"},
		{Level(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.level.String(); got != tt.want {
				t.Errorf("Level.String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  Level
	}{
		{"debug", LevelDebug},
		{"DEBUG", LevelDebug},
		{" info ", LevelInfo},
		{"warn", LevelWarn},
		{"warning", LevelWarn},
		{"error", LevelError},
		{"none", LevelNone},
		{"off", LevelNone},
		{"invalid", LevelInfo},
		{"", LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseLevel(tt.input); got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseFormat(t *testing.T) {
	if ParseFormat("JSON") != FormatJSON {
		t.Error("ParseFormat(JSON) should be FormatJSON")
	}
	if ParseFormat("text") != FormatText {
		t.Error("ParseFormat(text) should be FormatText")
	}
	if ParseFormat("") != FormatText {
		t.Error("ParseFormat(\"\") should default to FormatText")
	}
}

func decodeEntry(t *testing.T, data []byte) map[string]interface{} {
	t.Helper()
	var entry map[string]interface{}
	if err := json.Unmarshal(bytes.TrimSpace(data), &entry); err != nil {
		t.Fatalf("Failed to parse JSON output %q: %v", data, err)
	}
	return entry
}

func TestLogger_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Options{
		Level:  LevelDebug,
		Format: FormatText,
		Output: &buf,
	})

	logger.Info("test message", Fields{"key": "value"})

	output := buf.String()
	for _, want := range []string{"INFO", "test message", "key", "value"} {
		if !strings.Contains(output, want) {
			t.Errorf("Expected output to contain %q, got %q", want, output)
		}
	}
}

func TestLogger_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Options{
		Level:  LevelDebug,
		Format: FormatJSON,
		Output: &buf,
	})

	logger.Info("test message", Fields{"key": "value"})

	entry := decodeEntry(t, buf.Bytes())
	if entry["level"] != "INFO" {
		t.Errorf("level = %v, want %q", entry["level"], "INFO")
	}
	if entry["message"] != "test message" {
		t.Errorf("message = %v, want %q", entry["message"], "test message")
	}
	if entry["key"] != "value" {
		t.Errorf("key = %v, want %q", entry["key"], "value")
	}
	if _, ok := entry["timestamp"]; !ok {
		t.Error("Expected a timestamp field")
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Options{
		Level:  LevelWarn,
		Format: FormatText,
		Output: &buf,
	})

	logger.Debug("debug message")
	logger.Info("info message")
	logger.Warn("warn message")
	logger.Error("error message", nil)

	output := buf.String()
	if strings.Contains(output, "debug message") {
		t.Error("Debug message should be filtered out")
	}
	if strings.Contains(output, "info message") {
		t.Error("Info message should be filtered out")
	}
	if !strings.Contains(output, "warn message") {
		t.Error("Warn message should be present")
	}
	if !strings.Contains(output, "error message") {
		t.Error("Error message should be present")
	}
}

func TestLogger_ErrorLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Options{
		Level:  LevelDebug,
		Format: FormatJSON,
		Output: &buf,
	})

	logger.Error("something went wrong", errors.New("test error"))

	entry := decodeEntry(t, buf.Bytes())
	if entry["error"] != "test error" {
		t.Errorf("error = %v, want %q", entry["error"], "test error")
	}
}

func TestLogger_SetLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Options{
		Level:  LevelError,
		Format: FormatText,
		Output: &buf,
	})

	logger.Info("should not appear")
	if buf.Len() > 0 {
		t.Error("Info should be filtered at Error level")
	}

	logger.SetLevel(LevelInfo)
	logger.Info("should appear")
	if !strings.Contains(buf.String(), "should appear") {
		t.Error("Info should appear after level change")
	}
}

func TestLogger_SetFormatAndOutput(t *testing.T) {
	var first, second bytes.Buffer
	logger := New(Options{Level: LevelInfo, Format: FormatText, Output: &first})

	logger.SetOutput(&second)
	logger.SetFormat(FormatJSON)
	logger.Info("moved")

	if first.Len() != 0 {
		t.Error("old output should not receive entries")
	}
	entry := decodeEntry(t, second.Bytes())
	if entry["message"] != "moved" {
		t.Errorf("message = %v, want %q", entry["message"], "moved")
	}
}

func TestLogger_WithFields(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Options{
		Level:  LevelDebug,
		Format: FormatJSON,
		Output: &buf,
	})

	fieldLogger := logger.WithFields(Fields{"component": "prompt"})
	fieldLogger.Info("message", Fields{"extra": "field"})

	entry := decodeEntry(t, buf.Bytes())
	if entry["component"] != "prompt" {
		t.Error("Expected preset field 'component'")
	}
	if entry["extra"] != "field" {
		t.Error("Expected additional field 'extra'")
	}
}

func TestLogger_MultipleFieldsLaterWins(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Options{
		Level:  LevelDebug,
		Format: FormatJSON,
		Output: &buf,
	})

	logger.Info("message",
		Fields{"a": 1},
		Fields{"b": 2},
		Fields{"a": 3},
	)

	entry := decodeEntry(t, buf.Bytes())
	if entry["a"] != float64(3) {
		t.Errorf("a = %v, want 3", entry["a"])
	}
	if entry["b"] != float64(2) {
		t.Errorf("b = %v, want 2", entry["b"])
	}
}

func TestLogger_NoneLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Options{
		Level:  LevelNone,
		Format: FormatText,
		Output: &buf,
	})

	logger.Debug("debug")
	logger.Info("info")
	logger.Warn("warn")
	logger.Error("error", nil)

	if buf.Len() > 0 {
		t.Error("No messages should be logged at None level")
	}
}

func TestIsSensitiveHeader(t *testing.T) {
	tests := []struct {
		header string
		want   bool
	}{
		{"Authorization", true},
		{"authorization", true},
		{"Proxy-Authorization", true},
		{"X-API-KEY", true},
		{"Cookie", true},
		{"Content-Type", false},
		{"X-Request-Id", false},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			if got := isSensitiveHeader(tt.header); got != tt.want {
				t.Errorf("isSensitiveHeader(%q) = %v, want %v", tt.header, got, tt.want)
			}
		})
	}
}

func TestTruncateBody(t *testing.T) {
	if got := truncateBody([]byte("hello"), 100); got != "hello" {
		t.Errorf("truncateBody() = %q, want %q", got, "hello")
	}
	got := truncateBody([]byte(strings.Repeat("a", 200)), 50)
	if !strings.HasSuffix(got, "...[truncated]") {
		t.Errorf("truncateBody() should end with truncation marker, got %q", got)
	}
}

func TestRedactSensitiveFields(t *testing.T) {
	input := map[string]interface{}{
		"username": "john",
		"password": "secret123",
		"api_key":  "key123",
		"data": map[string]interface{}{
			"token":   "token123",
			"message": "hello",
		},
	}

	result := redactSensitiveFields(input).(map[string]interface{})

	if result["username"] != "john" {
		t.Error("username should not be redacted")
	}
	if result["password"] != "[REDACTED]" {
		t.Error("password should be redacted")
	}
	if result["api_key"] != "[REDACTED]" {
		t.Error("api_key should be redacted")
	}

	nested := result["data"].(map[string]interface{})
	if nested["token"] != "[REDACTED]" {
		t.Error("nested token should be redacted")
	}
	if nested["message"] != "hello" {
		t.Error("nested message should not be redacted")
	}
}

func TestRoundTripper_LogsAndPreservesBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("echo:" + string(body)))
	}))
	defer server.Close()

	var buf bytes.Buffer
	logger := New(Options{Level: LevelDebug, Format: FormatJSON, Output: &buf})
	httpLogger := NewHTTPLogger(logger)

	client := &http.Client{Transport: NewLoggingRoundTripper(nil, httpLogger, true)}
	req, err := http.NewRequest(http.MethodPut, server.URL, strings.NewReader("hello world"))
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	req.Header.Set("Authorization", "Bearer abc")
	req.Header.Set(RequestIDHeader, "req-1")

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if string(body) != "echo:hello world" {
		t.Errorf("body = %q, want full body despite logging", body)
	}

	out := buf.String()
	if !strings.Contains(out, "HTTP request") || !strings.Contains(out, "HTTP response") {
		t.Errorf("expected request and response entries, got %q", out)
	}
	if strings.Contains(out, "Bearer abc") {
		t.Error("Authorization header should be redacted")
	}
	if !strings.Contains(out, "req-1") {
		t.Error("request id should be logged")
	}
}
