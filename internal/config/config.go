package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/danielpatrickdp/choicerank/internal/chooser"
	"github.com/danielpatrickdp/choicerank/internal/history"
	"github.com/danielpatrickdp/choicerank/internal/store"
)

// #region defaults

const (
	defaultConfigPath  = "./choicerank.yaml"
	defaultStoreDir    = "./history"
	defaultDBPath      = "./choicerank.db"
	defaultCatalogPath = "./catalog.yaml"

	// BackendFile keeps one XML file per store name.
	BackendFile = "file"
	// BackendSQLite keeps all stores in one SQLite database.
	BackendSQLite = "sqlite"
)

// #endregion defaults

// #region config

// Config defines all runtime configuration for the chooser tools.
// Precedence: defaults, then file values, then CHOICERANK_* environment
// overrides.
type Config struct {
	StoreDir    string `yaml:"store_dir"`
	Backend     string `yaml:"backend"`
	DBPath      string `yaml:"db_path"`
	StoreName   string `yaml:"store_name"`
	HistoryMax  int    `yaml:"history_max"`
	CatalogPath string `yaml:"catalog_path"`
	JournalPath string `yaml:"journal_path"`
}

// Default returns a Config populated with default values. The journal is
// off by default.
func Default() Config {
	return Config{
		StoreDir:    defaultStoreDir,
		Backend:     BackendFile,
		DBPath:      defaultDBPath,
		StoreName:   chooser.DefaultHistoryName,
		HistoryMax:  history.DefaultMaxSize,
		CatalogPath: defaultCatalogPath,
	}
}

// Load reads configuration from the path in CHOICERANK_CONFIG or the
// default path. A missing default path is not an error: defaults plus
// environment overrides apply.
func Load() (Config, error) {
	path := os.Getenv("CHOICERANK_CONFIG")
	if path == "" {
		path = defaultConfigPath
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			cfg := Default()
			if err := applyEnv(&cfg); err != nil {
				return Config{}, err
			}
			if err := cfg.Validate(); err != nil {
				return Config{}, err
			}
			return cfg, nil
		}
	}
	return LoadFrom(path)
}

// LoadFrom reads configuration from a specific file path.
func LoadFrom(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config yaml: %w", err)
	}
	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("CHOICERANK_STORE_DIR"); v != "" {
		cfg.StoreDir = v
	}
	if v := os.Getenv("CHOICERANK_BACKEND"); v != "" {
		cfg.Backend = v
	}
	if v := os.Getenv("CHOICERANK_DB"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("CHOICERANK_STORE"); v != "" {
		cfg.StoreName = v
	}
	if v := os.Getenv("CHOICERANK_HISTORY_MAX"); v != "" {
		max, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("CHOICERANK_HISTORY_MAX: %w", err)
		}
		cfg.HistoryMax = max
	}
	if v := os.Getenv("CHOICERANK_CATALOG"); v != "" {
		cfg.CatalogPath = v
	}
	if v := os.Getenv("CHOICERANK_JOURNAL"); v != "" {
		cfg.JournalPath = v
	}
	return nil
}

// Validate ensures configuration is complete and valid.
func (c Config) Validate() error {
	switch c.Backend {
	case BackendFile:
		if c.StoreDir == "" {
			return errors.New("store_dir must not be empty")
		}
	case BackendSQLite:
		if c.DBPath == "" {
			return errors.New("db_path must not be empty")
		}
	default:
		return fmt.Errorf("backend must be %q or %q: %s", BackendFile, BackendSQLite, c.Backend)
	}
	if c.StoreName == "" {
		return errors.New("store_name must not be empty")
	}
	if c.HistoryMax <= 0 {
		return errors.New("history_max must be positive")
	}
	if c.CatalogPath == "" {
		return errors.New("catalog_path must not be empty")
	}
	return nil
}

// #endregion config

// #region open-store

// OpenStore builds the configured history store. The returned close func
// is a no-op for the file backend.
func (c Config) OpenStore() (store.Store, func() error, error) {
	switch c.Backend {
	case BackendFile:
		s, err := store.NewFileStore(c.StoreDir)
		if err != nil {
			return nil, nil, err
		}
		return s, func() error { return nil }, nil
	case BackendSQLite:
		s, err := store.NewDBStore(c.DBPath)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown backend %q", c.Backend)
}

// #endregion open-store
