//go:generate go run github.com/abice/go-enum -f=$GOFILE --marshal --names
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/creasty/defaults"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"

	"github.com/masiarekpl/keypin/log"
)

const (
	// EnvConfigFile names the environment variable which points to the config file
	EnvConfigFile = "KEYPIN_CONFIG"

	// DefaultConfigFile is used if neither a flag nor the environment names a config file
	DefaultConfigFile = "./config.yml"
)

// SingleProviderPolicy decides what happens if only one DoH provider answered ENUM(
// accept // use the answer and mark the identity as degraded
// reject // fail closed with a consistency error
// )
type SingleProviderPolicy int

// DoHFormat is the wire format spoken by a DoH provider ENUM(
// json // GET request with application/dns-json response
// wire // RFC 8484 POST with application/dns-message
// )
type DoHFormat int

// ResolutionLogType type of the resolution audit log ENUM(
// none // use logger as fallback
// console // log entries to the console
// mysql // MySQL or MariaDB database
// postgresql // PostgreSQL database
// sqlite // SQLite database file
// )
type ResolutionLogType int

// Configurable is a configuration section which can be enabled and logged
type Configurable interface {
	// IsEnabled returns true when the receiver is configured.
	IsEnabled() bool

	// LogConfig logs the receiver's configuration.
	//
	// Calling this method when `IsEnabled` returns false is undefined.
	LogConfig(*logrus.Entry)
}

// Config main configuration
type Config struct {
	Log           log.Config    `yaml:"log"`
	Identity      Identity      `yaml:"identity"`
	DNS           DNS           `yaml:"dns"`
	Fetch         Fetch         `yaml:"fetch"`
	Caching       Caching       `yaml:"caching"`
	ResolutionLog ResolutionLog `yaml:"resolutionLog"`
	ContactForm   ContactForm   `yaml:"contactForm"`
	Ports         Ports         `yaml:"ports"`
	Prometheus    Metrics       `yaml:"prometheus"`
}

// NewDefaultConfig returns a config with all default values set
func NewDefaultConfig() (*Config, error) {
	cfg := Config{}

	if err := defaults.Set(&cfg); err != nil {
		return nil, fmt.Errorf("can't apply default values: %w", err)
	}

	return &cfg, nil
}

// LoadConfig reads the YAML file at path and applies default values.
// If mandatory is false, a missing file yields the default configuration.
func LoadConfig(path string, mandatory bool) (*Config, error) {
	cfg, err := NewDefaultConfig()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !mandatory {
			log.Log().Infof("config file '%s' not found, using defaults", path)

			return cfg, cfg.validate()
		}

		return nil, fmt.Errorf("can't read config file '%s': %w", path, err)
	}

	if err := unmarshalConfig(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func unmarshalConfig(data []byte, cfg *Config) error {
	if err := yaml.UnmarshalStrict(data, cfg); err != nil {
		return fmt.Errorf("wrong file structure: %w", err)
	}

	return cfg.validate()
}

func (cfg *Config) validate() error {
	if len(cfg.DNS.Providers) < minDoHProviders {
		return fmt.Errorf("at least %d DoH providers are required, got %d", minDoHProviders, len(cfg.DNS.Providers))
	}

	seen := make(map[string]struct{}, len(cfg.DNS.Providers))

	for _, p := range cfg.DNS.Providers {
		if _, ok := seen[p.Name]; ok {
			return fmt.Errorf("DoH provider '%s' is configured twice", p.Name)
		}

		seen[p.Name] = struct{}{}
	}

	if cfg.Identity.MaxDocumentSize == 0 {
		return errors.New("identity.maxDocumentSize must be greater than zero")
	}

	if cfg.ResolutionLog.Type != ResolutionLogTypeNone && cfg.ResolutionLog.Type != ResolutionLogTypeConsole &&
		strings.TrimSpace(cfg.ResolutionLog.Target) == "" {
		return fmt.Errorf("resolutionLog.target is required for type '%s'", cfg.ResolutionLog.Type)
	}

	return nil
}

// RequireMetaDomain fails if no meta domain is configured.
// Commands which don't resolve identities can run without one.
func (cfg *Config) RequireMetaDomain() error {
	if strings.TrimSpace(cfg.Identity.MetaDomain) == "" {
		return errors.New("identity.metaDomain is not configured")
	}

	return nil
}

// LogConfig logs every enabled section of the configuration
func (cfg *Config) LogConfig(logger *logrus.Entry) {
	sections := []struct {
		name string
		c    Configurable
	}{
		{"identity", &cfg.Identity},
		{"dns", &cfg.DNS},
		{"fetch", &cfg.Fetch},
		{"caching", &cfg.Caching},
		{"resolutionLog", &cfg.ResolutionLog},
		{"contactForm", &cfg.ContactForm},
		{"ports", &cfg.Ports},
		{"prometheus", &cfg.Prometheus},
	}

	for _, s := range sections {
		if !s.c.IsEnabled() {
			logger.Infof("%s: disabled", s.name)

			continue
		}

		s.c.LogConfig(log.WithPrefix(logger, s.name))
	}
}
