package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/masiarekpl/keypin/evt"
	"github.com/masiarekpl/keypin/keymaterial"
	"github.com/masiarekpl/keypin/model"
	"github.com/masiarekpl/keypin/record"
	"github.com/masiarekpl/keypin/schema"
	"github.com/masiarekpl/keypin/util"
)

const (
	fieldType      = "type"
	fieldPub       = "pub"
	fieldPubSHA256 = "pub_sha256"
	fieldFpr       = "fpr"
	fieldAlg       = "alg"
)

// attempt is a single walk through the resolution states
type attempt struct {
	resolver *Resolver
	typ      string
	logger   *logrus.Entry

	state    State
	domain   string
	version  string
	degraded bool
}

func (a *attempt) advance(state State) {
	a.state = state
	a.logger.WithField("state", state).Trace("resolution state reached")
}

func (a *attempt) run(ctx context.Context) (*ResolvedIdentity, error) {
	if err := validType(a.typ); err != nil {
		return nil, err
	}

	meta, err := a.resolveMeta(ctx)
	if err != nil {
		return nil, err
	}

	schemas, err := a.loadSchemas(ctx, meta.Fields.Get("schemas"), meta.Fields.Get("schemas_sha256"))
	if err != nil {
		return nil, err
	}

	a.advance(StateSchemaFetched)

	domain, expectedVersion, err := a.selectDomain(ctx, meta)
	if err != nil {
		return nil, err
	}

	a.domain = domain

	rec, err := a.lookup(ctx, domain, a.typ)
	if err != nil {
		return nil, err
	}

	a.version = rec.Version
	a.advance(StateRecordResolved)

	if err := a.checkRecord(rec, expectedVersion); err != nil {
		return nil, err
	}

	if err := schema.Validate(rec.Fields, schemas, a.typ, rec.Version, a.label()); err != nil {
		return nil, err
	}

	a.advance(StateRecordValidated)

	if err := rec.Fields.Require(a.typ, fieldPub, fieldPubSHA256); err != nil {
		return nil, err
	}

	doc, err := a.resolver.fetcher.FetchPinnedBytes(ctx,
		rec.Fields.Get(fieldPub), rec.Fields.Get(fieldPubSHA256), a.typ+" public key")
	if err != nil {
		return nil, err
	}

	a.advance(StateKeyFetched)

	res := &ResolvedIdentity{
		Type:            a.typ,
		VersionUsed:     rec.Version,
		Domain:          domain,
		SourceRecord:    rec.Fields,
		PublicKeyURL:    doc.URL,
		PublicKeyDigest: doc.SHA256,
		PublicKeyText:   doc.Text(),
		Algorithm:       rec.Fields.Get(fieldAlg),
		DegradedTrust:   a.degraded,
	}

	if err := a.inspectKey(res); err != nil {
		return nil, err
	}

	a.advance(StateReady)

	return res, nil
}

func (a *attempt) label() string {
	return strings.ToUpper(a.typ)
}

// lookup resolves and parses a versioned TXT record
func (a *attempt) lookup(ctx context.Context, domain, label string) (record.Versioned, error) {
	answer, err := a.resolver.dns.ResolveTXT(ctx, domain)
	if err != nil {
		return record.Versioned{}, err
	}

	if answer.Degraded {
		a.degraded = true
	}

	return record.ParseVersioned(answer.Text, label)
}

func (a *attempt) resolveMeta(ctx context.Context) (record.Versioned, error) {
	meta, err := a.lookup(ctx, a.resolver.cfg.MetaDomain, "meta")
	if err != nil {
		return record.Versioned{}, err
	}

	if meta.Version != supportedMetaVersion {
		return record.Versioned{}, &model.Error{
			Kind:     model.ErrorKindSchema,
			Message:  fmt.Sprintf("meta unsupported version v=%s", meta.Version),
			Domain:   a.resolver.cfg.MetaDomain,
			Field:    "v",
			Expected: supportedMetaVersion,
			Actual:   meta.Version,
		}
	}

	if err := meta.Fields.Require("meta", "schemas", "schemas_sha256"); err != nil {
		return record.Versioned{}, err
	}

	if meta.Fields.Has("manifest") {
		if err := meta.Fields.Require("meta", "manifest_sha256"); err != nil {
			return record.Versioned{}, err
		}
	}

	a.advance(StateMetaResolved)

	return meta, nil
}

func (a *attempt) loadSchemas(ctx context.Context, rawURL, digest string) (*schema.Schemas, error) {
	r := a.resolver
	key := cacheKey(rawURL, digest)

	if cached, _ := r.schemas.Get(key); cached != nil {
		evt.Bus().Publish(evt.DocumentCacheHit, key)

		return cached, nil
	}

	evt.Bus().Publish(evt.DocumentCacheMiss, key)

	doc, err := r.fetcher.FetchPinnedBytes(ctx, rawURL, digest, "schemas")
	if err != nil {
		return nil, err
	}

	schemas, err := schema.ParseSchemas(doc.Body, r.cfg.SchemasID)
	if err != nil {
		return nil, err
	}

	r.schemas.Put(key, schemas, r.maxAge)

	return schemas, nil
}

func (a *attempt) loadManifest(ctx context.Context, rawURL, digest string) (*schema.Manifest, error) {
	r := a.resolver
	key := cacheKey(rawURL, digest)

	if cached, _ := r.manifests.Get(key); cached != nil {
		evt.Bus().Publish(evt.DocumentCacheHit, key)

		return cached, nil
	}

	evt.Bus().Publish(evt.DocumentCacheMiss, key)

	doc, err := r.fetcher.FetchPinnedBytes(ctx, rawURL, digest, "manifest")
	if err != nil {
		return nil, err
	}

	manifest, err := schema.ParseManifest(doc.Body, r.cfg.ManifestID)
	if err != nil {
		return nil, err
	}

	r.manifests.Put(key, manifest, r.maxAge)

	return manifest, nil
}

// selectDomain returns the record domain and, with a manifest, the version the record must declare
func (a *attempt) selectDomain(ctx context.Context, meta record.Versioned) (domain, version string, err error) {
	if !meta.Fields.Has("manifest") {
		domain, err = typeDomain(a.typ, a.resolver.cfg.MetaDomain)

		return domain, "", err
	}

	manifest, err := a.loadManifest(ctx, meta.Fields.Get("manifest"), meta.Fields.Get("manifest_sha256"))
	if err != nil {
		return "", "", err
	}

	a.advance(StateManifestFetched)

	version, domain, err = manifest.Select(a.typ)
	if err != nil {
		return "", "", err
	}

	normalized, err := util.NormalizeDomain(domain)
	if err != nil {
		return "", "", &model.Error{
			Kind:    model.ErrorKindFormat,
			Message: fmt.Sprintf("manifest %s v=%s has an invalid domain", a.typ, version),
			Actual:  domain,
			Err:     err,
		}
	}

	return normalized, version, nil
}

func (a *attempt) checkRecord(rec record.Versioned, expectedVersion string) error {
	if expectedVersion != "" && rec.Version != expectedVersion {
		return &model.Error{
			Kind:     model.ErrorKindSchema,
			Message:  fmt.Sprintf("%s record version v=%s does not match manifest version v=%s", a.typ, rec.Version, expectedVersion),
			Domain:   a.domain,
			Field:    "v",
			Expected: expectedVersion,
			Actual:   rec.Version,
		}
	}

	if declared := rec.Fields.Get(fieldType); declared != "" && declared != a.typ {
		return &model.Error{
			Kind:     model.ErrorKindSchema,
			Message:  fmt.Sprintf("%s TXT declares type=%s", a.typ, declared),
			Domain:   a.domain,
			Field:    fieldType,
			Expected: a.typ,
			Actual:   declared,
		}
	}

	return nil
}

// inspectKey checks the key text of known types and fills fingerprint and algorithm
func (a *attempt) inspectKey(res *ResolvedIdentity) error {
	var computed string

	switch a.typ {
	case TypePGP:
		if err := keymaterial.CheckArmor(res.PublicKeyText); err != nil {
			return withURL(err, res.PublicKeyURL)
		}

		fpr, err := keymaterial.PGPFingerprint(res.PublicKeyText)
		if err != nil {
			a.logger.Debugf("can't compute PGP fingerprint: %s", err)
		}

		computed = fpr
	case TypeSSH:
		key, err := keymaterial.ParseSSH(res.PublicKeyText)
		if err != nil {
			return withURL(err, res.PublicKeyURL)
		}

		computed = key.Fingerprint

		if res.Algorithm == "" {
			res.Algorithm = key.Type
		}
	}

	declared := res.SourceRecord.Get(fieldFpr)

	if a.resolver.cfg.VerifyFingerprint && declared != "" {
		if err := verifyFingerprint(a.typ, computed, declared); err != nil {
			return withURL(err, res.PublicKeyURL)
		}
	}

	res.Fingerprint = declared
	if res.Fingerprint == "" {
		res.Fingerprint = computed
	}

	return nil
}

func verifyFingerprint(typ, computed, declared string) error {
	if computed == "" {
		return &model.Error{
			Kind:     model.ErrorKindFormat,
			Message:  fmt.Sprintf("%s public key fingerprint can't be computed to verify fpr", typ),
			Field:    fieldFpr,
			Expected: declared,
		}
	}

	if !keymaterial.MatchFingerprint(computed, declared) {
		return &model.Error{
			Kind:     model.ErrorKindIntegrity,
			Message:  fmt.Sprintf("%s public key fingerprint does not match fpr", typ),
			Field:    fieldFpr,
			Expected: declared,
			Actual:   computed,
		}
	}

	return nil
}

func withURL(err error, rawURL string) error {
	var e *model.Error
	if errors.As(err, &e) && e.URL == "" {
		e.URL = rawURL
	}

	return err
}
