package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

func TestGetEnvOrDefault(t *testing.T) {
	tests := []struct {
		name       string
		key        string
		envValue   string
		defaultVal string
		expected   string
	}{
		{"uses env value", "TEST_VAR_1", "hello", "default", "hello"},
		{"uses default when empty", "TEST_VAR_2", "", "default", "default"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.envValue != "" {
				os.Setenv(tc.key, tc.envValue)
				defer os.Unsetenv(tc.key)
			}

			result := getEnvOrDefault(tc.key, tc.defaultVal)
			if result != tc.expected {
				t.Errorf("Expected %q, got %q", tc.expected, result)
			}
		})
	}
}

func TestGetEnvAsIntOrDefault(t *testing.T) {
	tests := []struct {
		name       string
		key        string
		envValue   string
		defaultVal int
		expected   int
	}{
		{"parses integer", "TEST_INT_1", "42", 10, 42},
		{"uses default for empty", "TEST_INT_2", "", 10, 10},
		{"uses default for non-numeric", "TEST_INT_3", "abc", 10, 10},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.envValue != "" {
				os.Setenv(tc.key, tc.envValue)
				defer os.Unsetenv(tc.key)
			}

			result := getEnvAsIntOrDefault(tc.key, tc.defaultVal)
			if result != tc.expected {
				t.Errorf("Expected %d, got %d", tc.expected, result)
			}
		})
	}
}

func TestGetEnvAsFloatOrDefault(t *testing.T) {
	tests := []struct {
		name       string
		key        string
		envValue   string
		defaultVal float64
		expected   float64
	}{
		{"parses float", "TEST_FLOAT_1", "0.7", 0.3, 0.7},
		{"uses default for empty", "TEST_FLOAT_2", "", 0.3, 0.3},
		{"uses default for garbage", "TEST_FLOAT_3", "warm", 0.3, 0.3},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.envValue != "" {
				t.Setenv(tc.key, tc.envValue)
			}

			result := getEnvAsFloatOrDefault(tc.key, tc.defaultVal)
			if result != tc.expected {
				t.Errorf("Expected %v, got %v", tc.expected, result)
			}
		})
	}
}

func TestLoad_MissingAPIKeyDoesNotPanic(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GEMINI_MODEL", "")

	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("Load panicked without GEMINI_API_KEY: %v", r)
		}
	}()

	cfg := Load()
	if cfg.GeminiAPIKey != "" {
		t.Errorf("Expected empty API key, got %q", cfg.GeminiAPIKey)
	}
	if cfg.GeminiModel != DefaultGeminiModel {
		t.Errorf("Expected default model %q, got %q", DefaultGeminiModel, cfg.GeminiModel)
	}

	found := false
	for _, w := range cfg.Validate() {
		if w == "GEMINI_API_KEY is missing; chat requests will fail with a configuration error" {
			found = true
		}
	}
	if !found {
		t.Error("Expected a warning about the missing API key")
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "key-123")
	t.Setenv("GEMINI_MODEL", "gemini-2.0-flash")
	t.Setenv("GEMINI_TIMEOUT_SECONDS", "5")
	t.Setenv("LOG_WORKERS", "0")

	cfg := Load()
	if cfg.GeminiModel != "gemini-2.0-flash" {
		t.Errorf("Expected model override, got %q", cfg.GeminiModel)
	}
	if cfg.GeminiTimeout != 5*time.Second {
		t.Errorf("Expected 5s timeout, got %s", cfg.GeminiTimeout)
	}
	if cfg.LogWorkers != 1 {
		t.Errorf("Expected LogWorkers clamped to 1, got %d", cfg.LogWorkers)
	}
}

func TestWriteTimeout(t *testing.T) {
	tests := []struct {
		name  string
		relay time.Duration
		want  time.Duration
	}{
		{"default relay timeout", 60 * time.Second, 90 * time.Second},
		{"short relay timeout", 5 * time.Second, 35 * time.Second},
		{"relay timeout disabled", 0, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := &Config{GeminiTimeout: tc.relay}
			if got := cfg.WriteTimeout(); got != tc.want {
				t.Errorf("WriteTimeout() = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestValidate_WarnsOnOversizedHashKey(t *testing.T) {
	cfg := &Config{
		GeminiAPIKey:          "key",
		GeminiMaxOutputTokens: 1024,
		GeminiTimeout:         60 * time.Second,
		DatabaseURL:           "postgres://localhost/sideio",
		VisitorHashKey:        strings.Repeat("k", 65),
	}

	warnings := cfg.Validate()
	if len(warnings) != 1 || !strings.Contains(warnings[0], "VISITOR_HASH_KEY") {
		t.Errorf("expected a single hash key warning, got %v", warnings)
	}
}
