package config

import (
	"net/url"
	"strings"

	"github.com/sirupsen/logrus"
)

const secretObfuscator = "********"

// ResolutionLog configuration for the audit log of identity resolutions
type ResolutionLog struct {
	Target           string            `yaml:"target"`
	Type             ResolutionLogType `yaml:"type"`
	LogRetentionDays uint64            `yaml:"logRetentionDays" default:"7"`
	CreationAttempts int               `yaml:"creationAttempts" default:"3"`
	CreationCooldown Duration          `yaml:"creationCooldown" default:"2s"`
}

// IsEnabled implements `config.Configurable`.
func (c *ResolutionLog) IsEnabled() bool {
	return c.Type != ResolutionLogTypeNone
}

// LogConfig implements `config.Configurable`.
func (c *ResolutionLog) LogConfig(logger *logrus.Entry) {
	logger.Infof("type: %s", c.Type)

	if c.Target != "" {
		logger.Infof("target: %s", c.censoredTarget())
	}

	logger.Infof("logRetentionDays: %d", c.LogRetentionDays)
	logger.Debugf("creationAttempts: %d", c.CreationAttempts)
	logger.Debugf("creationCooldown: %s", c.CreationCooldown)
}

func (c *ResolutionLog) censoredTarget() string {
	// Database targets may contain credentials
	if c.Type == ResolutionLogTypeSqlite || c.Type == ResolutionLogTypeConsole {
		return c.Target
	}

	target := c.Target
	if !strings.Contains(target, "://") {
		target = "scheme://" + target
	}

	u, err := url.Parse(target)
	if err != nil {
		return secretObfuscator
	}

	if _, hasPassword := u.User.Password(); !hasPassword {
		return c.Target
	}

	u.User = url.UserPassword(u.User.Username(), secretObfuscator)

	return strings.TrimPrefix(u.String(), "scheme://")
}
