package identity

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/masiarekpl/keypin/cache/expirationcache"
	"github.com/masiarekpl/keypin/config"
	"github.com/masiarekpl/keypin/doh"
	"github.com/masiarekpl/keypin/evt"
	"github.com/masiarekpl/keypin/instanceid"
	"github.com/masiarekpl/keypin/log"
	"github.com/masiarekpl/keypin/model"
	"github.com/masiarekpl/keypin/pinning"
	"github.com/masiarekpl/keypin/resolutionlog"
	"github.com/masiarekpl/keypin/schema"
	"github.com/masiarekpl/keypin/util"
)

const (
	resolverLoggerPrefix = "identity"

	outcomeReady = "ready"
)

var identityType = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{0,62}$`)

// Resolver walks the resolution states for an identity type. It owns the caches of
// schemas, manifests and resolved identities, so one instance should be shared per process.
type Resolver struct {
	cfg      config.Identity
	maxAge   time.Duration
	dns      TXTResolver
	fetcher  DocumentFetcher
	auditLog resolutionlog.Writer

	schemas    expirationcache.ExpiringCache[schema.Schemas]
	manifests  expirationcache.ExpiringCache[schema.Manifest]
	identities expirationcache.ExpiringCache[ResolvedIdentity]
}

// Option customizes the collaborators of a Resolver
type Option func(r *Resolver)

// WithTXTResolver replaces the DoH resolver built from the dns configuration
func WithTXTResolver(dns TXTResolver) Option {
	return func(r *Resolver) {
		r.dns = dns
	}
}

// WithDocumentFetcher replaces the pinned fetcher built from the fetch configuration
func WithDocumentFetcher(fetcher DocumentFetcher) Option {
	return func(r *Resolver) {
		r.fetcher = fetcher
	}
}

// WithAuditLog writes an entry for every resolution attempt
func WithAuditLog(w resolutionlog.Writer) Option {
	return func(r *Resolver) {
		r.auditLog = w
	}
}

// NewResolver creates a resolver for the configuration. Caches are cleaned up until ctx is done.
func NewResolver(ctx context.Context, cfg *config.Config, options ...Option) (*Resolver, error) {
	if err := cfg.RequireMetaDomain(); err != nil {
		return nil, err
	}

	cacheOptions := expirationcache.Options{MaxSize: uint(cfg.Caching.MaxItems)}

	r := &Resolver{
		cfg:        cfg.Identity,
		maxAge:     cfg.Caching.MaxAge.ToDuration(),
		auditLog:   resolutionlog.NewNoneWriter(),
		schemas:    expirationcache.NewCache[schema.Schemas](ctx, cacheOptions),
		manifests:  expirationcache.NewCache[schema.Manifest](ctx, cacheOptions),
		identities: expirationcache.NewCache[ResolvedIdentity](ctx, cacheOptions),
	}

	for _, opt := range options {
		opt(r)
	}

	if r.dns == nil {
		dual, err := doh.NewDualResolver(cfg.DNS)
		if err != nil {
			return nil, err
		}

		r.dns = dual
	}

	if r.fetcher == nil {
		r.fetcher = pinning.NewFetcher(
			pinning.WithTimeout(cfg.Fetch.Timeout.ToDuration()),
			pinning.WithMaxSize(cfg.Identity.MaxDocumentSize),
		)
	}

	return r, nil
}

// Resolve returns the identity of the type or the error of the first failing state.
// Identities with degraded trust are never served from cache.
func (r *Resolver) Resolve(ctx context.Context, typ string) (*ResolvedIdentity, error) {
	typ = strings.ToLower(strings.TrimSpace(typ))

	if cached, _ := r.identities.Get(typ); cached != nil {
		res := *cached

		return &res, nil
	}

	start := time.Now()

	ctx, logger := log.CtxWithFields(ctx, logrus.Fields{"identity_type": typ})

	a := &attempt{resolver: r, typ: typ, state: StateInit, logger: logger}
	res, err := a.run(ctx)

	r.audit(a, start, res, err)

	if err != nil {
		kind := outcomeOf(err)
		logger.WithField("state", a.state).Warnf("identity resolution failed: %s", log.EscapeInput(err.Error()))
		evt.Bus().Publish(evt.IdentityResolutionFailed, typ, kind)

		return nil, err
	}

	logger.WithFields(logrus.Fields{
		"version":  res.VersionUsed,
		"degraded": res.DegradedTrust,
	}).Debug("identity resolved")
	evt.Bus().Publish(evt.IdentityResolved, typ, res.DegradedTrust)

	if !res.DegradedTrust {
		cached := *res
		r.identities.Put(typ, &cached, r.maxAge)
	}

	return res, nil
}

// Types returns the identity types published in the schemas document
func (r *Resolver) Types(ctx context.Context) ([]string, error) {
	a := &attempt{resolver: r, state: StateInit, logger: log.FromCtx(ctx)}

	meta, err := a.resolveMeta(ctx)
	if err != nil {
		return nil, err
	}

	schemas, err := a.loadSchemas(ctx, meta.Fields.Get("schemas"), meta.Fields.Get("schemas_sha256"))
	if err != nil {
		return nil, err
	}

	return schemas.TypeNames(), nil
}

// Invalidate drops all cached documents and identities
func (r *Resolver) Invalidate() {
	r.schemas.Clear()
	r.manifests.Clear()
	r.identities.Clear()

	evt.Bus().Publish(evt.CachesInvalidated)
}

// CachedIdentities returns the count of identities in cache
func (r *Resolver) CachedIdentities() int {
	return r.identities.TotalCount()
}

func (r *Resolver) String() string {
	return fmt.Sprintf("identity resolver '%s' via %s", r.cfg.MetaDomain, r.dns)
}

func (r *Resolver) audit(a *attempt, start time.Time, res *ResolvedIdentity, err error) {
	entry := &resolutionlog.Entry{
		Start:        start,
		IdentityType: a.typ,
		Domain:       a.domain,
		Version:      a.version,
		State:        a.state.String(),
		Outcome:      outcomeReady,
		Degraded:     a.degraded,
		DurationMs:   time.Since(start).Milliseconds(),
		Instance:     instanceid.String(),
	}

	if err != nil {
		entry.Outcome = outcomeOf(err)
		entry.Error = err.Error()
	}

	if res != nil {
		entry.KeyURL = res.PublicKeyURL
		entry.KeyDigest = res.PublicKeyDigest
	}

	r.auditLog.Write(entry)
}

func outcomeOf(err error) string {
	if kind, ok := model.KindOf(err); ok {
		return kind.String()
	}

	return "error"
}

func cacheKey(rawURL, digest string) string {
	return rawURL + "#" + strings.ToLower(strings.TrimSpace(digest))
}

func validType(typ string) error {
	if !identityType.MatchString(typ) {
		return &model.Error{
			Kind:    model.ErrorKindFormat,
			Message: fmt.Sprintf("invalid identity type '%s'", log.EscapeInput(typ)),
			Actual:  typ,
		}
	}

	return nil
}

func typeDomain(typ, metaDomain string) (string, error) {
	domain, err := util.NormalizeDomain(typ + "." + metaDomain)
	if err != nil {
		return "", model.WrapError(model.ErrorKindFormat, "invalid identity domain", err)
	}

	return domain, nil
}
