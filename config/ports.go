package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

// Ports configuration of the keys API listener
type Ports struct {
	HTTP        string   `yaml:"http" default:"127.0.0.1:4000"`
	CORSOrigins []string `yaml:"corsOrigins"`
}

// IsEnabled implements `config.Configurable`.
func (c *Ports) IsEnabled() bool {
	return c.HTTP != ""
}

// LogConfig implements `config.Configurable`.
func (c *Ports) LogConfig(logger *logrus.Entry) {
	logger.Infof("http: %s", c.HTTP)

	if len(c.CORSOrigins) != 0 {
		logger.Infof("corsOrigins: %s", strings.Join(c.CORSOrigins, ", "))
	}
}

// ConvertPort converts string representation into a valid port (0 - 65535)
func ConvertPort(in string) (uint16, error) {
	const (
		base    = 10
		bitSize = 16
	)

	p, err := strconv.ParseUint(strings.TrimSpace(in), base, bitSize)
	if err != nil {
		return 0, fmt.Errorf("invalid port '%s': %w", in, err)
	}

	return uint16(p), nil
}
