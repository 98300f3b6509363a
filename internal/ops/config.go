// Package ops loads the operator configuration of the indexer.
package ops

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/yanun0323/errors"
	"gopkg.in/yaml.v3"

	"mirage-indexer/internal/chain"
	"mirage-indexer/internal/persist"
	"mirage-indexer/internal/processor"
	"mirage-indexer/pkg/conn"
	"mirage-indexer/pkg/exception"
)

// DefaultProtocolAddress is the mainnet deployment of the vault and market
// modules.
const DefaultProtocolAddress = "0x2fcf786835005f86fecba4f394f306e5444658f391bcaf301608ed78c8d64c65"

// Environment overrides.
const (
	EnvDatabaseURL     = "DATABASE_URL"
	EnvProtocolAddress = "INDEXER_PROTOCOL_ADDRESS"
	EnvWorkers         = "INDEXER_WORKERS"
	EnvMetricsListen   = "INDEXER_METRICS_LISTEN"
)

const (
	defaultBatchSize       = 500
	defaultMetricsListen   = ":9100"
	defaultMaxOpenConns    = 10
	defaultMaxIdleConns    = 5
	defaultConnMaxLifetime = 30 * time.Minute
	defaultProfilingApp    = "mirage-indexer"
)

type Config struct {
	Processor ProcessorConfig `yaml:"processor"`
	Storage   StorageConfig   `yaml:"storage"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Profiling ProfilingConfig `yaml:"profiling"`
}

type ProcessorConfig struct {
	Name            string `yaml:"name"`
	ProtocolAddress string `yaml:"protocol_address"`
	Workers         int    `yaml:"workers"`
	StrictEvents    bool   `yaml:"strict_events"`
	// BatchSize is the number of transactions per Process call.
	BatchSize int `yaml:"batch_size"`
}

type StorageConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	Database        string        `yaml:"database"`
	SSLMode         string        `yaml:"sslmode"`
	ConnString      string        `yaml:"conn_string"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	// MaxParams caps the bind parameters of one insert statement.
	MaxParams int `yaml:"max_params"`
}

type MetricsConfig struct {
	Listen string `yaml:"listen"`
}

type ProfilingConfig struct {
	Enabled       bool   `yaml:"enabled"`
	ServerAddress string `yaml:"server_address"`
	AppName       string `yaml:"app_name"`
}

func DefaultConfig() Config {
	return Config{
		Processor: ProcessorConfig{
			Name:            processor.DefaultName,
			ProtocolAddress: DefaultProtocolAddress,
			BatchSize:       defaultBatchSize,
		},
		Storage: StorageConfig{
			MaxOpenConns:    defaultMaxOpenConns,
			MaxIdleConns:    defaultMaxIdleConns,
			ConnMaxLifetime: defaultConnMaxLifetime,
			MaxParams:       persist.DefaultMaxParams,
		},
		Metrics: MetricsConfig{
			Listen: defaultMetricsListen,
		},
		Profiling: ProfilingConfig{
			AppName: defaultProfilingApp,
		},
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.Processor.Name == "" {
		c.Processor.Name = def.Processor.Name
	}
	if c.Processor.ProtocolAddress == "" {
		c.Processor.ProtocolAddress = def.Processor.ProtocolAddress
	}
	if c.Processor.BatchSize == 0 {
		c.Processor.BatchSize = def.Processor.BatchSize
	}
	if c.Storage.MaxParams == 0 {
		c.Storage.MaxParams = def.Storage.MaxParams
	}
	if c.Profiling.AppName == "" {
		c.Profiling.AppName = def.Profiling.AppName
	}
	c.Processor.ProtocolAddress = chain.StandardizeAddress(c.Processor.ProtocolAddress)
	return c
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if !validAddress(c.Processor.ProtocolAddress) {
		return errors.Wrap(exception.ErrConfigAddress, "validate").With("address", c.Processor.ProtocolAddress)
	}
	if c.Processor.Workers < 0 {
		return errors.Wrap(exception.ErrConfigInvalid, "workers must be >= 0").With("workers", c.Processor.Workers)
	}
	if c.Processor.BatchSize <= 0 {
		return errors.Wrap(exception.ErrConfigInvalid, "batch_size must be > 0").With("batch_size", c.Processor.BatchSize)
	}
	if c.Storage.MaxParams <= 0 || c.Storage.MaxParams > persist.DefaultMaxParams {
		return errors.Wrapf(exception.ErrConfigInvalid, "max_params must be in (0, %d], got %d", persist.DefaultMaxParams, c.Storage.MaxParams)
	}
	if c.Storage.MaxOpenConns < 0 || c.Storage.MaxIdleConns < 0 {
		return errors.Wrap(exception.ErrConfigInvalid, "connection pool sizes must be >= 0")
	}
	if c.Profiling.Enabled && c.Profiling.ServerAddress == "" {
		return errors.Wrap(exception.ErrConfigInvalid, "profiling enabled without server_address")
	}
	return nil
}

// ProcessorConfig converts the processor section.
func (c Config) ProcessorConfig() processor.Config {
	return processor.Config{
		Name:         c.Processor.Name,
		Workers:      c.Processor.Workers,
		StrictEvents: c.Processor.StrictEvents,
	}
}

// ConnOption converts the storage section into connection options.
func (c Config) ConnOption() conn.Option {
	return conn.Option{
		Host:            c.Storage.Host,
		Port:            c.Storage.Port,
		User:            c.Storage.User,
		Password:        c.Storage.Password,
		Database:        c.Storage.Database,
		SSLMode:         c.Storage.SSLMode,
		ConnString:      c.Storage.ConnString,
		MaxOpenConns:    c.Storage.MaxOpenConns,
		MaxIdleConns:    c.Storage.MaxIdleConns,
		ConnMaxLifetime: c.Storage.ConnMaxLifetime,
	}
}

// Load reads .env when present, then the YAML file at path (optional),
// then the environment overrides.
func Load(path string) (Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return Config{}, errors.Wrap(err, "load .env")
	}

	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, errors.Wrap(err, "read config").With("path", path)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, errors.Wrap(err, "parse config").With("path", path)
		}
	}

	if err := applyEnv(&cfg, os.LookupEnv); err != nil {
		return Config{}, err
	}

	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvDatabaseURL); ok && v != "" {
		cfg.Storage.ConnString = v
	}
	if v, ok := lookup(EnvProtocolAddress); ok && v != "" {
		cfg.Processor.ProtocolAddress = v
	}
	if v, ok := lookup(EnvWorkers); ok && v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return errors.Wrap(exception.ErrConfigInvalid, "parse "+EnvWorkers).With("value", v)
		}
		cfg.Processor.Workers = n
	}
	if v, ok := lookup(EnvMetricsListen); ok {
		cfg.Metrics.Listen = v
	}
	return nil
}

func validAddress(addr string) bool {
	hex, ok := strings.CutPrefix(addr, "0x")
	if !ok || hex == "" || len(hex) > 64 {
		return false
	}
	for _, r := range hex {
		if !strings.ContainsRune("0123456789abcdef", r) {
			return false
		}
	}
	return true
}
