package config

import (
	"github.com/sirupsen/logrus"
)

// Identity configuration of the identity descriptors to resolve
type Identity struct {
	// MetaDomain holds the meta TXT record, e.g. _identity.example.com
	MetaDomain        string `yaml:"metaDomain"`
	SchemasID         string `yaml:"schemasID" default:"identity-schemas"`
	ManifestID        string `yaml:"manifestID" default:"identity-manifest"`
	VerifyFingerprint bool   `yaml:"verifyFingerprint" default:"false"`
	MaxDocumentSize   int64  `yaml:"maxDocumentSize" default:"1048576"`
}

// IsEnabled implements `config.Configurable`.
func (c *Identity) IsEnabled() bool {
	return c.MetaDomain != ""
}

// LogConfig implements `config.Configurable`.
func (c *Identity) LogConfig(logger *logrus.Entry) {
	logger.Infof("metaDomain: %s", c.MetaDomain)
	logger.Infof("schemasID: %s", c.SchemasID)
	logger.Infof("manifestID: %s", c.ManifestID)
	logger.Infof("verifyFingerprint: %t", c.VerifyFingerprint)
	logger.Debugf("maxDocumentSize: %d", c.MaxDocumentSize)
}
