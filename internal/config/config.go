package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"time"

	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v3"

	"github.com/atharv3903/freightpath/internal/algo"
)

type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	MySQLDSN        string        `yaml:"mysql_dsn"`
	Migrate         bool          `yaml:"migrate"`
	Workers         int           `yaml:"workers"`
	DuplicatePolicy string        `yaml:"duplicate_policy"`
	CacheCapacity   int           `yaml:"cache_capacity"`
	MaxBodyBytes    int64         `yaml:"max_body_bytes"`
	LogLevel        string        `yaml:"log_level"`
	LogFormat       string        `yaml:"log_format"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
}

func Default() ServerConfig {
	return ServerConfig{
		Addr:            ":8080",
		Workers:         runtime.GOMAXPROCS(0),
		DuplicatePolicy: string(algo.DuplicateLastWins),
		CacheCapacity:   256,
		MaxBodyBytes:    32 << 20,
		LogLevel:        "info",
		LogFormat:       "json",
		ReadTimeout:     10 * time.Second,
		WriteTimeout:    30 * time.Second,
	}
}

// FromFlagsServer resolves configuration from, in increasing precedence:
// defaults, the YAML file named by -config or FREIGHTPATH_CONFIG, environment
// variables, and explicitly set flags.
func FromFlagsServer(args []string) (ServerConfig, error) {
	def := Default()
	fs := flag.NewFlagSet("server", flag.ContinueOnError)

	var (
		path   = fs.String("config", os.Getenv("FREIGHTPATH_CONFIG"), "YAML config file")
		flags  = def
		parsed = map[string]bool{}
	)
	fs.StringVar(&flags.Addr, "addr", def.Addr, "HTTP bind address")
	fs.StringVar(&flags.MySQLDSN, "dsn", def.MySQLDSN, "MySQL DSN (empty disables the stored-data endpoints)")
	fs.BoolVar(&flags.Migrate, "migrate", def.Migrate, "apply schema migrations on start")
	fs.IntVar(&flags.Workers, "workers", def.Workers, "shipments solved concurrently per request")
	fs.StringVar(&flags.DuplicatePolicy, "duplicates", def.DuplicatePolicy, "duplicate edge policy: last-wins, keep-min, reject")
	fs.IntVar(&flags.CacheCapacity, "cache", def.CacheCapacity, "result cache capacity")
	fs.Int64Var(&flags.MaxBodyBytes, "max-body", def.MaxBodyBytes, "largest accepted request body in bytes")
	fs.StringVar(&flags.LogLevel, "log-level", def.LogLevel, "debug, info, warn, error")
	fs.StringVar(&flags.LogFormat, "log-format", def.LogFormat, "json or text")

	if err := fs.Parse(args); err != nil {
		return ServerConfig{}, err
	}
	fs.Visit(func(f *flag.Flag) { parsed[f.Name] = true })

	cfg := def
	if *path != "" {
		if err := loadFile(*path, &cfg); err != nil {
			return ServerConfig{}, err
		}
	}
	if err := applyEnv(&cfg); err != nil {
		return ServerConfig{}, err
	}

	overrides := map[string]func(){
		"addr":       func() { cfg.Addr = flags.Addr },
		"dsn":        func() { cfg.MySQLDSN = flags.MySQLDSN },
		"migrate":    func() { cfg.Migrate = flags.Migrate },
		"workers":    func() { cfg.Workers = flags.Workers },
		"duplicates": func() { cfg.DuplicatePolicy = flags.DuplicatePolicy },
		"cache":      func() { cfg.CacheCapacity = flags.CacheCapacity },
		"max-body":   func() { cfg.MaxBodyBytes = flags.MaxBodyBytes },
		"log-level":  func() { cfg.LogLevel = flags.LogLevel },
		"log-format": func() { cfg.LogFormat = flags.LogFormat },
	}
	for name, apply := range overrides {
		if parsed[name] {
			apply()
		}
	}

	return cfg, cfg.Validate()
}

func loadFile(path string, cfg *ServerConfig) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *ServerConfig) error {
	var result error

	str := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				result = multierror.Append(result, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = n
		}
	}

	str("ADDR", &cfg.Addr)
	str("DB_DSN", &cfg.MySQLDSN)
	str("DUPLICATE_POLICY", &cfg.DuplicatePolicy)
	str("LOG_LEVEL", &cfg.LogLevel)
	str("LOG_FORMAT", &cfg.LogFormat)
	num("WORKERS", &cfg.Workers)
	num("CACHE_CAPACITY", &cfg.CacheCapacity)

	if v, ok := os.LookupEnv("MAX_BODY_BYTES"); ok && v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("MAX_BODY_BYTES: %w", err))
		} else {
			cfg.MaxBodyBytes = n
		}
	}

	if v, ok := os.LookupEnv("MIGRATE"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("MIGRATE: %w", err))
		} else {
			cfg.Migrate = b
		}
	}
	return result
}

// Validate reports every invalid setting at once.
func (c ServerConfig) Validate() error {
	var result error
	if c.Addr == "" {
		result = multierror.Append(result, errors.New("addr must not be empty"))
	}
	if c.Workers < 1 {
		result = multierror.Append(result, fmt.Errorf("workers must be >= 1, got %d", c.Workers))
	}
	if _, err := algo.ParseDuplicatePolicy(c.DuplicatePolicy); err != nil {
		result = multierror.Append(result, err)
	}
	if c.CacheCapacity < 0 {
		result = multierror.Append(result, fmt.Errorf("cache capacity must be >= 0, got %d", c.CacheCapacity))
	}
	if c.MaxBodyBytes < 1 {
		result = multierror.Append(result, fmt.Errorf("max body bytes must be >= 1, got %d", c.MaxBodyBytes))
	}
	switch c.LogFormat {
	case "json", "text":
	default:
		result = multierror.Append(result, fmt.Errorf("unknown log format %q", c.LogFormat))
	}
	if c.Migrate && c.MySQLDSN == "" {
		result = multierror.Append(result, errors.New("migrate requires a MySQL DSN"))
	}
	return result
}

// Policy returns the parsed duplicate edge policy. Call after Validate.
func (c ServerConfig) Policy() algo.DuplicatePolicy {
	p, _ := algo.ParseDuplicatePolicy(c.DuplicatePolicy)
	return p
}
