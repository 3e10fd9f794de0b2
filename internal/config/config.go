// Package config loads the yumupload configuration file.
//
// The file is taken from the --config flag or the YUMUPLOAD_CONFIG
// environment variable. Without either, defaults are used.
package config

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// EnvVar names the environment variable holding the config file path
const EnvVar = "YUMUPLOAD_CONFIG"

// Log formats
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Config is the yumupload configuration.
type Config struct {
	Storage StorageConfig `yaml:"storage"`
	Catalog CatalogConfig `yaml:"catalog"`
	Upload  UploadConfig  `yaml:"upload"`
	Log     LogConfig     `yaml:"log"`
}

// StorageConfig configures where unit files are kept.
type StorageConfig struct {
	// Root is the directory unit files are moved under.
	Root string `yaml:"root"`
}

// CatalogConfig configures the unit catalog.
type CatalogConfig struct {
	// Path is the catalog database directory.
	Path string `yaml:"path"`

	// InMemory keeps the catalog in memory; nothing survives the process.
	InMemory bool `yaml:"in_memory"`
}

// UploadConfig configures ingestion.
type UploadConfig struct {
	// SkipErratumLink disables linking errata to their packages.
	SkipErratumLink bool `yaml:"skip_erratum_link"`

	// Workers bounds concurrent ingestions when a directory is uploaded.
	Workers int `yaml:"workers"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Storage: StorageConfig{Root: "/var/lib/yumupload/content"},
		Catalog: CatalogConfig{Path: "/var/lib/yumupload/catalog"},
		Upload:  UploadConfig{Workers: 4},
		Log:     LogConfig{Level: "info", Format: FormatText},
	}
}

// Load reads the file at path, or the one named by YUMUPLOAD_CONFIG when
// path is empty. Values missing from the file keep their defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(EnvVar)
	}
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if c.Storage.Root == "" {
		return fmt.Errorf("storage.root is required")
	}
	if c.Catalog.Path == "" && !c.Catalog.InMemory {
		return fmt.Errorf("catalog.path is required unless catalog.in_memory is set")
	}
	if c.Upload.Workers < 1 {
		return fmt.Errorf("upload.workers must be at least 1, got %d", c.Upload.Workers)
	}
	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	switch c.Log.Format {
	case FormatText, FormatJSON:
	default:
		return fmt.Errorf("log.format must be %q or %q, got %q", FormatText, FormatJSON, c.Log.Format)
	}
	return nil
}

// ConfigureLogger applies the log settings to logger.
func (c *Config) ConfigureLogger(logger *logrus.Logger) error {
	level, err := logrus.ParseLevel(c.Log.Level)
	if err != nil {
		return err
	}
	logger.SetLevel(level)
	if c.Log.Format == FormatJSON {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return nil
}
