// ABOUTME: Tests for big3 configuration management.
// ABOUTME: Covers load, save, defaults, env overrides, backend selection and path expansion.
package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/harperreed/big3/internal/assistant"
	"github.com/harperreed/big3/internal/kv"
	"github.com/harperreed/big3/internal/logging"
)

func TestGetBackend(t *testing.T) {
	tests := []struct {
		backend string
		want    string
	}{
		{"", BackendBadger},
		{"sqlite", BackendSQLite},
		{"Charm", BackendCharm},
		{"memory", BackendMemory},
	}
	for _, tt := range tests {
		cfg := &Config{Backend: tt.backend}
		if got := cfg.GetBackend(); got != tt.want {
			t.Errorf("GetBackend(%q) = %q, want %q", tt.backend, got, tt.want)
		}
	}
}

func TestGetDataDirDefault(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/tmp/xdg-data")
	cfg := &Config{}
	if got := cfg.GetDataDir(); got != filepath.Join("/tmp/xdg-data", "big3") {
		t.Errorf("GetDataDir() = %q", got)
	}
}

func TestGetDataDirExpandsTilde(t *testing.T) {
	home, _ := os.UserHomeDir()

	cfg := &Config{DataDir: "~/big3-data"}
	got := cfg.GetDataDir()
	want := filepath.Join(home, "big3-data")
	if got != want {
		t.Errorf("GetDataDir() = %q, want %q", got, want)
	}
}

func TestExpandPath(t *testing.T) {
	home, _ := os.UserHomeDir()
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"/tmp/foo", "/tmp/foo"},
		{"~", home},
		{"~/data/big3", filepath.Join(home, "data/big3")},
		{"data/big3", "data/big3"},
	}
	for _, tt := range tests {
		if got := ExpandPath(tt.in); got != tt.want {
			t.Errorf("ExpandPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestIsStrictDefaultsTrue(t *testing.T) {
	off := false
	if !(&Config{}).IsStrict() {
		t.Error("unset strict_one_rep_max should mean strict")
	}
	if (&Config{StrictOneRepMax: &off}).IsStrict() {
		t.Error("explicit false ignored")
	}
}

func TestLoadNonExistentConfig(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() with no config file should not error: %v", err)
	}
	if cfg.Backend != "" || cfg.DataDir != "" {
		t.Errorf("expected zero config, got %+v", cfg)
	}
}

func TestSaveAndLoad(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "nonexistent"))

	strict := false
	cfg := &Config{
		Backend:         "sqlite",
		DataDir:         "/tmp/big3-data",
		StrictOneRepMax: &strict,
		Assistant:       AssistantConfig{Provider: "gemini"},
		LogLevel:        "debug",
	}
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(tmpDir, "nonexistent", "big3", "config.json")); err != nil {
		t.Fatalf("config file not created: %v", err)
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if loaded.Backend != "sqlite" || loaded.DataDir != "/tmp/big3-data" || loaded.IsStrict() {
		t.Errorf("loaded = %+v", loaded)
	}
	if loaded.Assistant.Provider != "gemini" || loaded.LogLevel != "debug" {
		t.Errorf("loaded = %+v", loaded)
	}
}

func TestLoadInvalidJSON(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir)

	configDir := filepath.Join(tmpDir, "big3")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(configDir, "config.json"), []byte("invalid json"), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(); err == nil {
		t.Error("Expected error for invalid JSON config")
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("BIG3_BACKEND", "memory")
	t.Setenv("BIG3_LOG_LEVEL", "info")
	t.Setenv("BIG3_PROVIDER", "gemini")
	t.Setenv("BIG3_STRICT_ONE_REP_MAX", "false")

	cfg := &Config{Backend: "sqlite", DataDir: "/keep"}
	if err := cfg.ApplyEnv(); err != nil {
		t.Fatalf("ApplyEnv failed: %v", err)
	}
	if cfg.Backend != "memory" || cfg.LogLevel != "info" || cfg.Assistant.Provider != "gemini" || cfg.IsStrict() {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.DataDir != "/keep" {
		t.Errorf("unset variable overwrote DataDir: %q", cfg.DataDir)
	}
}

func TestApplyEnvBadBool(t *testing.T) {
	t.Setenv("BIG3_STRICT_ONE_REP_MAX", "sometimes")
	if err := (&Config{}).ApplyEnv(); err == nil {
		t.Error("expected parse error")
	}
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("GROQ_API_KEY=from-file\nGEMINI_API_KEY=gem\n"), 0600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("GROQ_API_KEY", "from-env")
	t.Setenv("GEMINI_API_KEY", "")
	os.Unsetenv("GEMINI_API_KEY")

	if err := LoadDotEnv(path, filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Fatalf("LoadDotEnv failed: %v", err)
	}

	settings := (&Config{}).AssistantSettings()
	if settings.Provider != assistant.ProviderGroq || settings.APIKey != "from-env" {
		t.Errorf("groq settings = %+v, environment should win over .env", settings)
	}
	gem := (&Config{Assistant: AssistantConfig{Provider: "Gemini"}}).AssistantSettings()
	if gem.Provider != assistant.ProviderGemini || gem.APIKey != "gem" {
		t.Errorf("gemini settings = %+v", gem)
	}
}

func TestOpenBackend(t *testing.T) {
	logger := logging.Discard()

	t.Run("badger", func(t *testing.T) {
		dir := t.TempDir()
		b, err := (&Config{DataDir: dir}).OpenBackend(logger)
		if err != nil {
			t.Fatalf("OpenBackend failed: %v", err)
		}
		defer b.Close()
		if _, ok := b.(*kv.BadgerBackend); !ok {
			t.Errorf("backend = %T", b)
		}
		if _, err := os.Stat(filepath.Join(dir, "badger")); err != nil {
			t.Errorf("badger dir missing: %v", err)
		}
	})

	t.Run("sqlite", func(t *testing.T) {
		dir := t.TempDir()
		b, err := (&Config{Backend: "sqlite", DataDir: dir}).OpenBackend(logger)
		if err != nil {
			t.Fatalf("OpenBackend failed: %v", err)
		}
		defer b.Close()
		if _, err := os.Stat(filepath.Join(dir, "big3.db")); err != nil {
			t.Errorf("big3.db missing: %v", err)
		}
	})

	t.Run("memory", func(t *testing.T) {
		b, err := (&Config{Backend: "memory"}).OpenBackend(logger)
		if err != nil {
			t.Fatalf("OpenBackend failed: %v", err)
		}
		if _, ok := b.(*kv.MemoryBackend); !ok {
			t.Errorf("backend = %T", b)
		}
	})

	t.Run("invalid", func(t *testing.T) {
		if _, err := (&Config{Backend: "invalid"}).OpenBackend(logger); err == nil {
			t.Error("Expected error for invalid backend")
		}
	})
}
