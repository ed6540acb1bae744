package config

import (
	"github.com/sirupsen/logrus"
)

// ContactForm configuration of the backend which receives encrypted contact form messages
type ContactForm struct {
	BaseURL      string   `yaml:"baseURL"`
	CSRFPath     string   `yaml:"csrfPath" default:"/api/v1/csrf/generate"`
	SubmitPath   string   `yaml:"submitPath" default:"/api/v2/contactform/send"`
	IdentityType string   `yaml:"identityType" default:"pgp"`
	Timeout      Duration `yaml:"timeout" default:"10s"`
}

// IsEnabled implements `config.Configurable`.
func (c *ContactForm) IsEnabled() bool {
	return c.BaseURL != ""
}

// LogConfig implements `config.Configurable`.
func (c *ContactForm) LogConfig(logger *logrus.Entry) {
	logger.Infof("baseURL: %s", c.BaseURL)
	logger.Infof("csrfPath: %s", c.CSRFPath)
	logger.Infof("submitPath: %s", c.SubmitPath)
	logger.Infof("identityType: %s", c.IdentityType)
	logger.Debugf("timeout: %s", c.Timeout)
}
