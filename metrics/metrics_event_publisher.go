package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/masiarekpl/keypin/evt"
	"github.com/masiarekpl/keypin/util"
)

const (
	resultReady    = "ready"
	resultDegraded = "degraded"
)

// RegisterEventListeners registers all metric handlers by the event bus
func RegisterEventListeners() {
	registerApplicationEventListeners()
	registerDNSEventListeners()
	registerDocumentEventListeners()
	registerIdentityEventListeners()
}

func registerApplicationEventListeners() {
	v := versionNumberGauge()
	RegisterMetric(v)

	subscribe(evt.ApplicationStarted, func(version, buildTime string) {
		v.WithLabelValues(version, buildTime).Set(1)
	})
}

func versionNumberGauge() *prometheus.GaugeVec {
	return prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "keypin_build_info",
			Help: "Version number and build info",
		}, []string{"version", "build_time"},
	)
}

func registerDNSEventListeners() {
	providerFailures := providerFailureCount()
	degraded := degradedTrustCount()
	mismatches := answerMismatchCount()

	RegisterMetric(providerFailures)
	RegisterMetric(degraded)
	RegisterMetric(mismatches)

	subscribe(evt.DoHProviderFailed, func(provider, _ string) {
		providerFailures.WithLabelValues(provider).Inc()
	})

	subscribe(evt.DNSDegradedTrust, func(_, provider string) {
		degraded.WithLabelValues(provider).Inc()
	})

	subscribe(evt.DNSAnswerMismatch, func(_ string) {
		mismatches.Inc()
	})
}

func providerFailureCount() *prometheus.CounterVec {
	return prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "keypin_doh_provider_failures_total",
			Help: "Number of DoH queries without usable answer per provider",
		}, []string{"provider"},
	)
}

func degradedTrustCount() *prometheus.CounterVec {
	return prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "keypin_dns_degraded_trust_total",
			Help: "Number of TXT answers accepted from a single provider",
		}, []string{"provider"},
	)
}

func answerMismatchCount() prometheus.Counter {
	return prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "keypin_dns_answer_mismatches_total",
			Help: "Number of TXT lookups where the providers disagreed",
		},
	)
}

func registerDocumentEventListeners() {
	pinFailures := pinFailureCount()
	hitCount := documentCacheHitCount()
	missCount := documentCacheMissCount()

	RegisterMetric(pinFailures)
	RegisterMetric(hitCount)
	RegisterMetric(missCount)

	subscribe(evt.PinVerificationFailed, func(_ string) {
		pinFailures.Inc()
	})

	subscribe(evt.DocumentCacheHit, func(_ string) {
		hitCount.Inc()
	})

	subscribe(evt.DocumentCacheMiss, func(_ string) {
		missCount.Inc()
	})
}

func pinFailureCount() prometheus.Counter {
	return prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "keypin_pin_verification_failures_total",
			Help: "Number of fetched documents which did not match their pin",
		},
	)
}

func documentCacheHitCount() prometheus.Counter {
	return prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "keypin_document_cache_hits_total",
			Help: "Document cache hit counter",
		},
	)
}

func documentCacheMissCount() prometheus.Counter {
	return prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "keypin_document_cache_misses_total",
			Help: "Document cache miss counter",
		},
	)
}

func registerIdentityEventListeners() {
	resolutions := resolutionCount()
	invalidations := cacheInvalidationCount()

	RegisterMetric(resolutions)
	RegisterMetric(invalidations)

	subscribe(evt.IdentityResolved, func(typ string, degraded bool) {
		result := resultReady
		if degraded {
			result = resultDegraded
		}

		resolutions.WithLabelValues(typ, result).Inc()
	})

	subscribe(evt.IdentityResolutionFailed, func(typ, kind string) {
		resolutions.WithLabelValues(typ, kind).Inc()
	})

	subscribe(evt.CachesInvalidated, func() {
		invalidations.Inc()
	})
}

func resolutionCount() *prometheus.CounterVec {
	return prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "keypin_identity_resolutions_total",
			Help: "Number of identity resolutions by type and result",
		}, []string{"type", "result"},
	)
}

func cacheInvalidationCount() prometheus.Counter {
	return prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "keypin_cache_invalidations_total",
			Help: "Number of manual cache flushes",
		},
	)
}

func subscribe(topic string, fn interface{}) {
	util.FatalOnError(fmt.Sprintf("can't subscribe topic '%s'", topic), evt.Bus().Subscribe(topic, fn))
}
