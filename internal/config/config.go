// Package config loads sappy settings from defaults, an optional YAML file,
// a .env file and the environment, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

const (
	BackendSQLite = "sqlite"
	BackendFile   = "file"
)

// Config holds everything the CLI needs to open a store and build a service.
type Config struct {
	DataDir string `yaml:"data_dir"`
	Backend string `yaml:"backend"`
	// DBPath is the SQLite database file. Defaults to <data dir>/sappy.db.
	DBPath string `yaml:"db_path"`
	// StorePath is the JSON store file. Defaults to <data dir>/sappy.json.
	StorePath       string  `yaml:"store_path"`
	LogLevel        string  `yaml:"log_level"`
	StickerDropRate float64 `yaml:"sticker_drop_rate"`
	// QuestCron is when the daemon seeds the day's quests.
	QuestCron string `yaml:"quest_cron"`
	// CatalogPath optionally replaces the built-in shop catalog.
	CatalogPath string `yaml:"catalog_path"`
}

func Default() *Config {
	return &Config{
		DataDir:         filepath.Join(xdg.DataHome, "sappy"),
		Backend:         BackendSQLite,
		LogLevel:        "warn",
		StickerDropRate: 0.15,
		QuestCron:       "5 0 * * *",
	}
}

// Load reads .env (if present), then the YAML file named by SAPPY_CONFIG or
// <data dir>/config.yaml (if present), then SAPPY_* environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if dir := os.Getenv("SAPPY_DATA_DIR"); dir != "" {
		cfg.DataDir = dir
	}

	path := os.Getenv("SAPPY_CONFIG")
	explicit := path != ""
	if !explicit {
		path = filepath.Join(cfg.DataDir, "config.yaml")
	}
	if err := cfg.mergeFile(path, explicit); err != nil {
		return nil, err
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.fillPaths()
	return cfg, cfg.Validate()
}

func (c *Config) mergeFile(path string, required bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !required {
			return nil
		}
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	c.DataDir = getEnv("SAPPY_DATA_DIR", c.DataDir)
	c.Backend = getEnv("SAPPY_BACKEND", c.Backend)
	c.DBPath = getEnv("SAPPY_DB_PATH", c.DBPath)
	c.StorePath = getEnv("SAPPY_STORE_PATH", c.StorePath)
	c.LogLevel = getEnv("SAPPY_LOG_LEVEL", c.LogLevel)
	c.QuestCron = getEnv("SAPPY_QUEST_CRON", c.QuestCron)
	c.CatalogPath = getEnv("SAPPY_CATALOG", c.CatalogPath)

	if v := os.Getenv("SAPPY_STICKER_DROP_RATE"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("SAPPY_STICKER_DROP_RATE: %w", err)
		}
		c.StickerDropRate = f
	}
	return nil
}

// SetDataDir points the config at another data directory. Store paths that
// were derived from the old directory follow it.
func (c *Config) SetDataDir(dir string) {
	if c.DBPath == filepath.Join(c.DataDir, "sappy.db") {
		c.DBPath = ""
	}
	if c.StorePath == filepath.Join(c.DataDir, "sappy.json") {
		c.StorePath = ""
	}
	c.DataDir = dir
	c.fillPaths()
}

func (c *Config) fillPaths() {
	if c.DBPath == "" {
		c.DBPath = filepath.Join(c.DataDir, "sappy.db")
	}
	if c.StorePath == "" {
		c.StorePath = filepath.Join(c.DataDir, "sappy.json")
	}
}

// Path returns the file backing the configured backend.
func (c *Config) Path() string {
	if c.Backend == BackendFile {
		return c.StorePath
	}
	return c.DBPath
}

func (c *Config) Validate() error {
	switch c.Backend {
	case BackendSQLite, BackendFile:
	default:
		return fmt.Errorf("backend must be %q or %q, got %q", BackendSQLite, BackendFile, c.Backend)
	}
	if c.StickerDropRate < 0 || c.StickerDropRate > 1 {
		return fmt.Errorf("sticker drop rate must be 0-1, got %g", c.StickerDropRate)
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log level must be debug, info, warn or error, got %q", c.LogLevel)
	}
	if _, err := cron.ParseStandard(c.QuestCron); err != nil {
		return fmt.Errorf("quest cron %q: %w", c.QuestCron, err)
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}
