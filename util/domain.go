package util

import (
	"fmt"
	"strings"

	"golang.org/x/net/idna"
)

// Lookup profile which allows underscore labels like _identity
// nolint:gochecknoglobals
var domainProfile = idna.New(idna.MapForLookup(), idna.StrictDomainName(false), idna.BidiRule())

// NormalizeDomain converts a domain name to its lower case ASCII form without trailing dot.
// Internationalized names are converted to punycode.
func NormalizeDomain(domain string) (string, error) {
	d := strings.TrimSuffix(strings.TrimSpace(domain), ".")
	if d == "" {
		return "", fmt.Errorf("empty domain name")
	}

	ascii, err := domainProfile.ToASCII(d)
	if err != nil {
		return "", fmt.Errorf("invalid domain name '%s': %w", d, err)
	}

	return strings.ToLower(ascii), nil
}

// Fqdn returns the domain name with a trailing dot
func Fqdn(domain string) string {
	if strings.HasSuffix(domain, ".") {
		return domain
	}

	return domain + "."
}
