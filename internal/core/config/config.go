package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Version   int                 `toml:"version"`
	Scan      Scan                `toml:"scan"`
	Server    Server              `toml:"server"`
	Watch     Watch               `toml:"watch"`
	Cache     Cache               `toml:"cache"`
	Resolver  Resolver            `toml:"resolver"`
	Limits    Limits              `toml:"limits"`
	Log       Log                 `toml:"log"`
	Tracing   Tracing             `toml:"tracing"`
	Languages map[string]Language `toml:"languages"`
}

type Scan struct {
	Paths   []string `toml:"paths"`
	Workers int      `toml:"workers"`
	Exclude Exclude  `toml:"exclude"`
}

type Exclude struct {
	Dirs  []string `toml:"dirs"`
	Files []string `toml:"files"`
}

type Server struct {
	Listen       string        `toml:"listen"`
	ReadTimeout  time.Duration `toml:"read_timeout"`
	WriteTimeout time.Duration `toml:"write_timeout"`
	RatePerSec   float64       `toml:"rate_per_sec"`
	RateBurst    int           `toml:"rate_burst"`
}

type Watch struct {
	Debounce time.Duration `toml:"debounce"`
}

type Cache struct {
	Enabled     bool          `toml:"enabled"`
	Path        string        `toml:"path"`
	BusyTimeout time.Duration `toml:"busy_timeout"`
}

type Resolver struct {
	TSConfigNames []string `toml:"tsconfig_names"`
	ExtraBuiltins []string `toml:"extra_builtins"`
}

type Limits struct {
	MaxFileSizeKB int `toml:"max_file_size_kb"`
}

type Log struct {
	Level string `toml:"level"`
}

// Language tweaks one registered language: nil Enabled keeps the default,
// a non-empty Extensions list replaces the default extension set.
type Language struct {
	Enabled    *bool    `toml:"enabled"`
	Extensions []string `toml:"extensions"`
}

type Tracing struct {
	Enabled  bool   `toml:"enabled"`
	Endpoint string `toml:"endpoint"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)

	if err := validateVersion(&cfg); err != nil {
		return nil, err
	}
	if err := validateScan(&cfg); err != nil {
		return nil, err
	}
	if err := validateServer(&cfg); err != nil {
		return nil, err
	}
	if err := validateCache(&cfg); err != nil {
		return nil, err
	}
	if err := validateResolver(&cfg); err != nil {
		return nil, err
	}
	if err := validateLog(&cfg); err != nil {
		return nil, err
	}
	if err := validateTracing(&cfg); err != nil {
		return nil, err
	}
	if err := validateLanguages(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Default returns the configuration used when no steward.toml exists.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Version == 0 {
		cfg.Version = 1
	}

	if len(cfg.Scan.Paths) == 0 {
		cfg.Scan.Paths = []string{"."}
	}
	if len(cfg.Scan.Exclude.Dirs) == 0 {
		cfg.Scan.Exclude.Dirs = []string{
			".git", "node_modules", "venv", ".venv", "__pycache__",
			"dist", "build", ".next", "coverage", ".idea", ".vscode",
			"target", "out",
		}
	}
	if len(cfg.Scan.Exclude.Files) == 0 {
		cfg.Scan.Exclude.Files = []string{
			"package-lock.json", "yarn.lock", "pnpm-lock.yaml",
			"cargo.lock", "poetry.lock", "*.min.js", "*.min.css",
		}
	}

	if strings.TrimSpace(cfg.Server.Listen) == "" {
		cfg.Server.Listen = "127.0.0.1:8844"
	}
	if cfg.Server.ReadTimeout <= 0 {
		cfg.Server.ReadTimeout = 15 * time.Second
	}
	if cfg.Server.WriteTimeout <= 0 {
		cfg.Server.WriteTimeout = 30 * time.Second
	}
	if cfg.Server.RatePerSec <= 0 {
		cfg.Server.RatePerSec = 4
	}
	if cfg.Server.RateBurst <= 0 {
		cfg.Server.RateBurst = 8
	}

	// Default debounce if not set.
	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = 500 * time.Millisecond
	}

	if strings.TrimSpace(cfg.Cache.Path) == "" {
		cfg.Cache.Path = "steward.db"
		cfg.Cache.Enabled = true
	}
	if cfg.Cache.BusyTimeout <= 0 {
		cfg.Cache.BusyTimeout = 2 * time.Second
	}

	if len(cfg.Resolver.TSConfigNames) == 0 {
		cfg.Resolver.TSConfigNames = []string{
			"tsconfig.json", "tsconfig.app.json", "tsconfig.base.json",
		}
	}

	if cfg.Limits.MaxFileSizeKB <= 0 {
		cfg.Limits.MaxFileSizeKB = 1024
	}

	if strings.TrimSpace(cfg.Log.Level) == "" {
		cfg.Log.Level = "info"
	}

	if strings.TrimSpace(cfg.Tracing.Endpoint) == "" {
		cfg.Tracing.Endpoint = "127.0.0.1:4317"
	}
}

func validateVersion(cfg *Config) error {
	if cfg.Version < 1 {
		return fmt.Errorf("version must be >= 1, got %d", cfg.Version)
	}
	if cfg.Version > 1 {
		return fmt.Errorf("unsupported config version %d; supported version is 1", cfg.Version)
	}
	return nil
}

func validateScan(cfg *Config) error {
	for i, p := range cfg.Scan.Paths {
		if strings.TrimSpace(p) == "" {
			return fmt.Errorf("scan.paths[%d] must not be empty", i)
		}
	}
	if cfg.Scan.Workers < 0 {
		return fmt.Errorf("scan.workers must be >= 0, got %d", cfg.Scan.Workers)
	}
	for i, d := range cfg.Scan.Exclude.Dirs {
		if strings.TrimSpace(d) == "" {
			return fmt.Errorf("scan.exclude.dirs[%d] must not be empty", i)
		}
	}
	for i, f := range cfg.Scan.Exclude.Files {
		if strings.TrimSpace(f) == "" {
			return fmt.Errorf("scan.exclude.files[%d] must not be empty", i)
		}
	}
	return nil
}

func validateServer(cfg *Config) error {
	listen := strings.TrimSpace(cfg.Server.Listen)
	if listen == "" {
		return fmt.Errorf("server.listen must not be empty")
	}
	if !strings.Contains(listen, ":") {
		return fmt.Errorf("server.listen must be host:port, got %q", listen)
	}
	return nil
}

func validateCache(cfg *Config) error {
	if cfg.Cache.Enabled && strings.TrimSpace(cfg.Cache.Path) == "" {
		return fmt.Errorf("cache.path must not be empty when cache.enabled=true")
	}
	return nil
}

func validateResolver(cfg *Config) error {
	for i, name := range cfg.Resolver.TSConfigNames {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("resolver.tsconfig_names[%d] must not be empty", i)
		}
	}
	for i, name := range cfg.Resolver.ExtraBuiltins {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("resolver.extra_builtins[%d] must not be empty", i)
		}
	}
	return nil
}

func validateLog(cfg *Config) error {
	switch strings.ToLower(strings.TrimSpace(cfg.Log.Level)) {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("log.level must be one of: debug, info, warn, error")
	}
}

func validateTracing(cfg *Config) error {
	if cfg.Tracing.Enabled && strings.TrimSpace(cfg.Tracing.Endpoint) == "" {
		return fmt.Errorf("tracing.endpoint must not be empty when tracing.enabled=true")
	}
	return nil
}

func validateLanguages(cfg *Config) error {
	for language, settings := range cfg.Languages {
		if strings.TrimSpace(language) == "" {
			return fmt.Errorf("languages key must not be empty")
		}
		for _, ext := range settings.Extensions {
			if strings.TrimSpace(ext) == "" {
				return fmt.Errorf("languages.%s.extensions must not include empty values", language)
			}
		}
	}
	return nil
}
