// Package config provides the configuration system for the perception CLI.
//
// Configuration lives in a single YAML file under os.UserConfigDir():
//
//	~/Library/Application Support/perception/config.yaml   (macOS)
//	~/.config/perception/config.yaml                       (Linux)
//	%AppData%/perception/config.yaml                       (Windows)
//
// The PERCEPTION_CONFIG_DIR environment variable overrides the directory,
// and an explicit path (the --config flag) overrides both.
//
// API keys may reference environment variables ("$GEMINI_API_KEY" or
// "${GEMINI_API_KEY}"); they are expanded at load time so the file itself
// never has to hold a secret.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

const (
	// appDir is the directory name under os.UserConfigDir().
	appDir = "perception"

	// configFile is the name of the configuration file.
	configFile = "config.yaml"

	// envDir overrides the configuration directory when set.
	envDir = "PERCEPTION_CONFIG_DIR"
)

// Config holds every setting the CLI commands share.
type Config struct {
	// Transcriber is the speech-to-text service connection.
	Transcriber TranscriberConfig `yaml:"transcriber"`

	// Classifier selects the exercise classification backend.
	Classifier ClassifierConfig `yaml:"classifier"`

	// DataDir is where event records and audio blobs are stored.
	// Defaults to a "data" directory next to the config file.
	DataDir string `yaml:"data_dir,omitempty"`

	// Serve configures the live ingest server.
	Serve ServeConfig `yaml:"serve"`

	// path is where this config was loaded from (or would be saved to).
	path string
}

// TranscriberConfig is the connection to a whisper.cpp-compatible server.
type TranscriberConfig struct {
	// URL is the server base URL, e.g. http://localhost:8080.
	URL string `yaml:"url,omitempty"`

	// Language forces a transcription language (empty for auto-detect).
	Language string `yaml:"language,omitempty"`
}

// ClassifierConfig selects and configures an LLM classification backend.
type ClassifierConfig struct {
	// Backend is "gemini", "openai", or "none".
	Backend string `yaml:"backend,omitempty"`

	// Model overrides the backend's default model name.
	Model string `yaml:"model,omitempty"`

	// APIKey is the backend credential. Environment references like
	// "$GEMINI_API_KEY" are expanded at load time.
	APIKey string `yaml:"api_key,omitempty"`

	// BaseURL overrides the OpenAI endpoint (for compatible providers).
	BaseURL string `yaml:"base_url,omitempty"`
}

// ServeConfig configures the websocket ingest server.
type ServeConfig struct {
	// Addr is the listen address, e.g. ":8090".
	Addr string `yaml:"addr,omitempty"`
}

// Default returns a config populated with defaults, rooted at dir.
func Default(dir string) *Config {
	return &Config{
		Classifier: ClassifierConfig{Backend: "none"},
		DataDir:    filepath.Join(dir, "data"),
		Serve:      ServeConfig{Addr: ":8090"},
		path:       filepath.Join(dir, configFile),
	}
}

// Dir returns the effective configuration directory.
func Dir() (string, error) {
	if dir := os.Getenv(envDir); dir != "" {
		return dir, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine config directory: %w", err)
	}
	return filepath.Join(base, appDir), nil
}

// Load reads the configuration from the default location. A missing file
// is not an error; defaults are returned so commands that need no
// configuration still run.
func Load() (*Config, error) {
	dir, err := Dir()
	if err != nil {
		return nil, err
	}
	return LoadFrom(filepath.Join(dir, configFile))
}

// LoadFrom reads the configuration from a specific file path.
func LoadFrom(path string) (*Config, error) {
	cfg, err := LoadService[Config](path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg = Default(filepath.Dir(path))
			cfg.path = path
			return cfg, nil
		}
		return nil, err
	}
	cfg.path = path

	cfg.Classifier.APIKey = os.ExpandEnv(cfg.Classifier.APIKey)
	if cfg.Classifier.Backend == "" {
		cfg.Classifier.Backend = "none"
	}
	if cfg.DataDir == "" {
		cfg.DataDir = filepath.Join(filepath.Dir(path), "data")
	}
	if cfg.Serve.Addr == "" {
		cfg.Serve.Addr = ":8090"
	}
	return cfg, nil
}

// Save writes the configuration to the path it was loaded from,
// creating the directory if needed.
func (c *Config) Save() error {
	return SaveService(c.path, c)
}

// Path returns the file this config was loaded from.
func (c *Config) Path() string {
	return c.path
}
