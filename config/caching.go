package config

import (
	"github.com/sirupsen/logrus"
)

// Caching configuration of the in-memory caches for documents and resolved identities
type Caching struct {
	MaxAge   Duration `yaml:"maxAge" default:"1h"`
	MaxItems int      `yaml:"maxItems" default:"100"`
}

// IsEnabled implements `config.Configurable`.
func (c *Caching) IsEnabled() bool {
	return c.MaxAge.IsAboveZero()
}

// LogConfig implements `config.Configurable`.
func (c *Caching) LogConfig(logger *logrus.Entry) {
	logger.Infof("maxAge: %s", c.MaxAge)
	logger.Infof("maxItems: %d", c.MaxItems)
}
