// ABOUTME: big3 configuration management with backend selection.
// ABOUTME: Reads the JSON config file, .env secrets and BIG3_* overrides.

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/harperreed/big3/internal/assistant"
	"github.com/harperreed/big3/internal/kv"
	"github.com/harperreed/big3/internal/logging"
	"github.com/joho/godotenv"
)

// Backend names.
const (
	BackendBadger = "badger"
	BackendCharm  = "charm"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// AssistantConfig selects the planner and nutrition provider.
type AssistantConfig struct {
	// Provider is "groq" (default) or "gemini".
	Provider       string `json:"provider,omitempty"`
	ChatModel      string `json:"chat_model,omitempty"`
	NutritionModel string `json:"nutrition_model,omitempty"`
	// BaseURL overrides the Groq endpoint.
	BaseURL string `json:"base_url,omitempty"`
}

// Config stores big3 configuration.
type Config struct {
	// Backend selects the storage backend: "badger" (default), "charm",
	// "sqlite" or "memory".
	Backend string `json:"backend,omitempty"`

	// DataDir is the root directory for local storage. Badger keeps its files
	// under badger/, SQLite uses big3.db. Supports ~ expansion. Defaults to
	// ~/.local/share/big3.
	DataDir string `json:"data_dir,omitempty"`

	// KeyPrefix namespaces every collection key.
	KeyPrefix string `json:"key_prefix,omitempty"`

	// StrictOneRepMax counts only completed sets toward 1RM updates. Defaults to true.
	StrictOneRepMax *bool `json:"strict_one_rep_max,omitempty"`

	Assistant AssistantConfig `json:"assistant,omitempty"`

	// CharmHost is the sync server for the charm backend.
	CharmHost string `json:"charm_host,omitempty"`

	LogLevel  string `json:"log_level,omitempty"`
	LogFormat string `json:"log_format,omitempty"`
}

// GetBackend returns the configured backend, defaulting to "badger".
func (c *Config) GetBackend() string {
	if c.Backend == "" {
		return BackendBadger
	}
	return strings.ToLower(c.Backend)
}

// GetDataDir returns the configured data directory with ~ expanded,
// defaulting to the standard XDG data directory.
func (c *Config) GetDataDir() string {
	if c.DataDir == "" {
		return DefaultDataDir()
	}
	return ExpandPath(c.DataDir)
}

// IsStrict reports whether only completed sets count toward 1RM updates.
func (c *Config) IsStrict() bool {
	return c.StrictOneRepMax == nil || *c.StrictOneRepMax
}

// GetCharmHost returns the charm server, defaulting to kv.DefaultCharmHost.
func (c *Config) GetCharmHost() string {
	if c.CharmHost == "" {
		return kv.DefaultCharmHost
	}
	return c.CharmHost
}

// Logging returns the logger settings.
func (c *Config) Logging() logging.Config {
	return logging.Config{Level: c.LogLevel, Format: c.LogFormat}
}

// AssistantSettings resolves the provider config, reading its API key from
// GROQ_API_KEY or GEMINI_API_KEY.
func (c *Config) AssistantSettings() assistant.Config {
	provider := strings.ToLower(c.Assistant.Provider)
	if provider == "" {
		provider = assistant.ProviderGroq
	}
	key := os.Getenv("GROQ_API_KEY")
	if provider == assistant.ProviderGemini {
		key = os.Getenv("GEMINI_API_KEY")
	}
	return assistant.Config{
		Provider:       provider,
		APIKey:         key,
		ChatModel:      c.Assistant.ChatModel,
		NutritionModel: c.Assistant.NutritionModel,
		BaseURL:        c.Assistant.BaseURL,
	}
}

// DefaultDataDir follows the XDG data directory spec.
func DefaultDataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, _ := os.UserHomeDir()
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "big3")
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) string {
	if path == "" {
		return ""
	}
	if path == "~" {
		home, _ := os.UserHomeDir()
		return home
	}
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}

// OpenBackend creates the key/value backend named by the config.
func (c *Config) OpenBackend(logger *log.Logger) (kv.Backend, error) {
	dataDir := c.GetDataDir()

	switch c.GetBackend() {
	case BackendBadger:
		return kv.OpenBadger(filepath.Join(dataDir, "badger"), logger)
	case BackendCharm:
		return kv.OpenCharm("big3", c.GetCharmHost())
	case BackendSQLite:
		return kv.OpenSQLite(filepath.Join(dataDir, "big3.db"))
	case BackendMemory:
		return kv.NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown backend: %q", c.Backend)
	}
}

// ApplyEnv overlays BIG3_* environment variables onto the config.
func (c *Config) ApplyEnv() error {
	overrides := map[string]*string{
		"BIG3_BACKEND":    &c.Backend,
		"BIG3_DATA_DIR":   &c.DataDir,
		"BIG3_KEY_PREFIX": &c.KeyPrefix,
		"BIG3_PROVIDER":   &c.Assistant.Provider,
		"BIG3_CHARM_HOST": &c.CharmHost,
		"BIG3_LOG_LEVEL":  &c.LogLevel,
		"BIG3_LOG_FORMAT": &c.LogFormat,
	}
	for name, field := range overrides {
		if v, ok := os.LookupEnv(name); ok && v != "" {
			*field = v
		}
	}

	if v, ok := os.LookupEnv("BIG3_STRICT_ONE_REP_MAX"); ok && v != "" {
		strict, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("parse BIG3_STRICT_ONE_REP_MAX: %w", err)
		}
		c.StrictOneRepMax = &strict
	}
	return nil
}

// LoadDotEnv loads API keys from a .env file in the working directory.
// Variables already set in the environment win. A missing file is fine.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// GetConfigPath returns the config file path.
func GetConfigPath() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, _ := os.UserHomeDir()
		configDir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configDir, "big3", "config.json")
}

// Load reads config from disk.
func Load() (*Config, error) {
	path := GetConfigPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &cfg, nil
}

// Save writes config to disk.
func (c *Config) Save() error {
	path := GetConfigPath()
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
