package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/sirupsen/logrus"
)

const minDoHProviders = 2

// nolint:gochecknoglobals
var defaultDoHProviders = []string{
	"https://cloudflare-dns.com/dns-query",
	"https://dns.google/resolve",
}

// DNS configuration of the DoH providers used for TXT lookups
type DNS struct {
	Providers            []DoHProvider        `yaml:"providers"`
	Timeout              Duration             `yaml:"timeout" default:"5s"`
	SingleProviderPolicy SingleProviderPolicy `yaml:"singleProviderPolicy" default:"accept"`
}

// SetDefaults implements `defaults.Setter`.
func (c *DNS) SetDefaults() {
	if len(c.Providers) != 0 {
		return
	}

	for _, s := range defaultDoHProviders {
		p, err := ParseDoHProvider(s)
		if err != nil {
			panic(err)
		}

		c.Providers = append(c.Providers, p)
	}
}

// IsEnabled implements `config.Configurable`.
func (c *DNS) IsEnabled() bool {
	return len(c.Providers) != 0
}

// LogConfig implements `config.Configurable`.
func (c *DNS) LogConfig(logger *logrus.Entry) {
	logger.Info("timeout: ", c.Timeout)
	logger.Info("singleProviderPolicy: ", c.SingleProviderPolicy)
	logger.Info("providers:")

	for _, p := range c.Providers {
		logger.Infof("  - %s", p)
	}
}

// DoHProvider is one DNS-over-HTTPS endpoint
type DoHProvider struct {
	Name   string
	URL    string
	Format DoHFormat
}

// ParseDoHProvider creates a provider from a string in format [format:]https://host[:port]/path.
// The provider is named after its host.
func ParseDoHProvider(s string) (DoHProvider, error) {
	s = strings.TrimSpace(s)

	format := DoHFormatJson

	for _, name := range DoHFormatNames() {
		if strings.HasPrefix(s, name+":") && !strings.HasPrefix(s, name+"://") {
			format, _ = ParseDoHFormat(name)
			s = strings.TrimPrefix(s, name+":")

			break
		}
	}

	u, err := url.Parse(s)
	if err != nil {
		return DoHProvider{}, fmt.Errorf("can't parse DoH provider '%s': %w", s, err)
	}

	if u.Scheme != "https" {
		return DoHProvider{}, fmt.Errorf("DoH provider '%s' must use https", s)
	}

	if u.Hostname() == "" {
		return DoHProvider{}, fmt.Errorf("DoH provider '%s' has no host", s)
	}

	return DoHProvider{Name: u.Hostname(), URL: u.String(), Format: format}, nil
}

// String implements `fmt.Stringer`
func (p DoHProvider) String() string {
	return fmt.Sprintf("%s:%s", p.Format, p.URL)
}

// UnmarshalText implements `encoding.TextUnmarshaler`.
func (p *DoHProvider) UnmarshalText(data []byte) error {
	parsed, err := ParseDoHProvider(string(data))
	if err != nil {
		return err
	}

	*p = parsed

	return nil
}
