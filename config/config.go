// Package config reads configuration of the Ethersphere deployment tool.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ethersphere-game/ethersphere-contract/deploy"
	"github.com/spf13/viper"
)

// EnvPrefix is a prefix of environment variables overriding file values, e.g.
// ETHERSPHERE_LOGGER_LEVEL or ETHERSPHERE_NETWORKS_TEST_PASSWORD.
const EnvPrefix = "ETHERSPHERE"

// Defaults.
const (
	DefaultArtifacts = "build"
	DefaultJournal   = "deployments.db"
	DefaultLogLevel  = "info"
)

// Config is the root of the configuration. Networks are keyed by lowercased
// names.
type Config struct {
	Logger    Logger             `mapstructure:"logger"`
	Artifacts string             `mapstructure:"artifacts"`
	Journal   string             `mapstructure:"journal"`
	Networks  map[string]Network `mapstructure:"networks"`
}

// Logger configures zap logger.
type Logger struct {
	Level string `mapstructure:"level"`
}

// Network describes Neo network contracts are deployed to.
type Network struct {
	Endpoint       string        `mapstructure:"endpoint"`
	Wallet         string        `mapstructure:"wallet"`
	Address        string        `mapstructure:"address"`
	Password       string        `mapstructure:"password"`
	DialTimeout    time.Duration `mapstructure:"dial_timeout"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	PollInterval   time.Duration `mapstructure:"poll_interval"`
}

// Load reads configuration from the YAML file at path (if path is not empty)
// and environment, applies defaults and validates the result.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("logger.level", DefaultLogLevel)
	v.SetDefault("artifacts", DefaultArtifacts)
	v.SetDefault("journal", DefaultJournal)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)

		err := v.ReadInConfig()
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config

	err := v.Unmarshal(&cfg)
	if err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	// AutomaticEnv affects only known keys, so network keys are resolved
	// explicitly
	for name, n := range cfg.Networks {
		key := "networks." + name + "."
		n.Endpoint = v.GetString(key + "endpoint")
		n.Wallet = v.GetString(key + "wallet")
		n.Address = v.GetString(key + "address")
		n.Password = v.GetString(key + "password")
		cfg.Networks[name] = n
	}

	err = cfg.Validate()
	if err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that all required values are set.
func (c *Config) Validate() error {
	if c.Artifacts == "" {
		return errors.New("missing artifacts directory")
	}

	if c.Journal == "" {
		return errors.New("missing journal path")
	}

	for name, n := range c.Networks {
		if n.Endpoint == "" {
			return fmt.Errorf("network %q: missing endpoint", name)
		}

		if n.Wallet == "" {
			return fmt.Errorf("network %q: missing wallet", name)
		}

		if n.DialTimeout < 0 || n.RequestTimeout < 0 || n.PollInterval < 0 {
			return fmt.Errorf("network %q: negative duration", name)
		}
	}

	return nil
}

// NetworkPrm converts network configuration into deployment parameters.
// Account must be set by the caller.
func (n Network) NetworkPrm() deploy.NetworkPrm {
	return deploy.NetworkPrm{
		Endpoint:       n.Endpoint,
		DialTimeout:    n.DialTimeout,
		RequestTimeout: n.RequestTimeout,
		PollInterval:   n.PollInterval,
	}
}
