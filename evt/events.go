package evt

import (
	"github.com/asaskevich/EventBus"
)

const (
	// ApplicationStarted fires on start of the application. Parameter: version number, build time
	ApplicationStarted = "application:started"

	// DoHProviderFailed fires if a DoH provider gave no usable answer. Parameter: provider name, domain
	DoHProviderFailed = "doh:providerFailed"

	// DNSDegradedTrust fires if a TXT answer was accepted from a single provider.
	// Parameter: domain, name of the provider which answered
	DNSDegradedTrust = "doh:degradedTrust"

	// DNSAnswerMismatch fires if both providers answered with different TXT values. Parameter: domain
	DNSAnswerMismatch = "doh:answerMismatch"

	// PinVerificationFailed fires if a pinned document did not match its digest. Parameter: document URL
	PinVerificationFailed = "pinning:verificationFailed"

	// DocumentCacheHit fires if a pinned document was served from cache. Parameter: cache key
	DocumentCacheHit = "caching:documentHit"

	// DocumentCacheMiss fires if a pinned document had to be fetched. Parameter: cache key
	DocumentCacheMiss = "caching:documentMiss"

	// IdentityResolved fires after a successful resolution. Parameter: identity type, degraded trust flag
	IdentityResolved = "identity:resolved"

	// IdentityResolutionFailed fires after a failed resolution. Parameter: identity type, error kind name
	IdentityResolutionFailed = "identity:resolutionFailed"

	// CachesInvalidated fires if all in-memory caches were dropped. Parameter: none
	CachesInvalidated = "identity:cachesInvalidated"
)

// nolint
var evtBus = EventBus.New()

// Bus returns the global bus instance
func Bus() EventBus.Bus {
	return evtBus
}
