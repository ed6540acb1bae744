package config

import (
	"github.com/sirupsen/logrus"
)

// Fetch configuration of the pinned document downloads
type Fetch struct {
	Timeout Duration `yaml:"timeout" default:"5s"`
}

// IsEnabled implements `config.Configurable`.
func (c *Fetch) IsEnabled() bool {
	return true
}

// LogConfig implements `config.Configurable`.
func (c *Fetch) LogConfig(logger *logrus.Entry) {
	logger.Info("timeout: ", c.Timeout)
}
