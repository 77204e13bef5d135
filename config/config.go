package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ns1-tools/ns1-sync/resource"
)

const (
	defaultEndpoint     = "https://api.nsone.net/v1"
	defaultRetryMax     = 3
	defaultDeclarations = "resources.yaml"
	defaultMetricsAddr  = ":9090"
	defaultLogLevel     = "info"
	defaultLogEnv       = "prod"
)

type Config struct {
	// SyncInterval of zero runs the declarations once and exits.
	SyncInterval time.Duration `yaml:"syncInterval"`
	Declarations string        `yaml:"declarations"`
	Log          Log           `yaml:"log"`
	NS1          NS1           `yaml:"ns1"`
	Metrics      Metrics       `yaml:"metrics"`
	Reconcile    Reconcile     `yaml:"reconcile"`
}

type NS1 struct {
	APIKey   string `yaml:"apiKey"`
	Endpoint string `yaml:"endpoint"`
	RetryMax int    `yaml:"retryMax"`
}

type Log struct {
	Level string `yaml:"level"`
	Env   string `yaml:"env"`
}

type Metrics struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

type Reconcile struct {
	DryRun bool `yaml:"dryRun"`
}

func Load(path string) (*Config, error) {
	var cfg Config

	// A missing config file is fine, everything can come from env vars.
	f, err := os.Open(path)
	if err == nil {
		decoder := yaml.NewDecoder(f)
		err = decoder.Decode(&cfg)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	if cfg.NS1.Endpoint == "" {
		cfg.NS1.Endpoint = defaultEndpoint
	}
	if cfg.NS1.RetryMax == 0 {
		cfg.NS1.RetryMax = defaultRetryMax
	}
	if cfg.Declarations == "" {
		cfg.Declarations = defaultDeclarations
	}
	if cfg.Metrics.Addr == "" {
		cfg.Metrics.Addr = defaultMetricsAddr
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = defaultLogLevel
	}
	if cfg.Log.Env == "" {
		cfg.Log.Env = defaultLogEnv
	}

	// Override from environment if set
	if key := os.Getenv("NS1_SYNC_API_KEY"); key != "" {
		cfg.NS1.APIKey = key
	}
	if endpoint := os.Getenv("NS1_SYNC_ENDPOINT"); endpoint != "" {
		cfg.NS1.Endpoint = endpoint
	}
	if retryMax := os.Getenv("NS1_SYNC_RETRY_MAX"); retryMax != "" {
		if n, err := strconv.Atoi(retryMax); err == nil {
			cfg.NS1.RetryMax = n
		} else {
			slog.Default().Warn("fail parse retry max to int from string", "retryMax", retryMax, "error", err)
		}
	}
	if syncInterval := os.Getenv("NS1_SYNC_INTERVAL"); syncInterval != "" {
		if interval, err := time.ParseDuration(syncInterval); err == nil {
			cfg.SyncInterval = interval
		} else {
			slog.Default().Warn("fail parse sync interval to duration from string", "interval", syncInterval, "error", err)
		}
	}
	if declarations := os.Getenv("NS1_SYNC_DECLARATIONS"); declarations != "" {
		cfg.Declarations = declarations
	}
	if dryRun := os.Getenv("NS1_SYNC_DRYRUN"); dryRun != "" {
		switch strings.ToLower(dryRun) {
		case "true":
			cfg.Reconcile.DryRun = true
		case "false":
			cfg.Reconcile.DryRun = false
		default:
			slog.Default().Warn("fail parse dryrun to bool from string", "dryrun", dryRun)
		}
	}
	if metricsAddr := os.Getenv("NS1_SYNC_METRICS_ADDR"); metricsAddr != "" {
		cfg.Metrics.Addr = metricsAddr
		cfg.Metrics.Enabled = true
	}
	if loglevel := os.Getenv("NS1_SYNC_LOG_LEVEL"); loglevel != "" {
		cfg.Log.Level = loglevel
	}
	if logenv := os.Getenv("NS1_SYNC_LOG_ENV"); logenv != "" {
		cfg.Log.Env = logenv
	}

	if cfg.NS1.APIKey == "" {
		return nil, fmt.Errorf("ns1 api key not set in %s or NS1_SYNC_API_KEY", path)
	}
	return &cfg, nil
}

// LoadDeclarations reads the declared resource documents the sync run
// manages.
func LoadDeclarations(path string) (resource.Declarations, error) {
	var decls resource.Declarations

	f, err := os.Open(path)
	if err != nil {
		return decls, fmt.Errorf("open declarations %s: %w", path, err)
	}
	defer f.Close()

	decoder := yaml.NewDecoder(f)
	decoder.KnownFields(true)
	if err := decoder.Decode(&decls); err != nil {
		return decls, fmt.Errorf("parse declarations %s: %w", path, err)
	}
	return decls, nil
}
