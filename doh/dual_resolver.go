package doh

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/mroth/weightedrand"
	"github.com/sirupsen/logrus"

	"github.com/masiarekpl/keypin/config"
	"github.com/masiarekpl/keypin/evt"
	"github.com/masiarekpl/keypin/log"
	"github.com/masiarekpl/keypin/model"
	"github.com/masiarekpl/keypin/util"
)

const (
	dualResolverLogger = "doh"

	maxProviderWeight = 60
)

// TXTAnswer is the reconciled TXT value of a domain
type TXTAnswer struct {
	Domain string
	Text   string
	// Providers which returned Text
	Providers []string
	// Degraded is true if only one provider could be used
	Degraded bool
}

// DualResolver sends each TXT query to two independent DoH providers and only
// returns a value both agree on. A single answer is used depending on the configured policy.
type DualResolver struct {
	providers []*providerStatus
	policy    config.SingleProviderPolicy
}

type providerStatus struct {
	client Client

	mu            sync.RWMutex
	lastErrorTime time.Time
}

type queryResult struct {
	provider *providerStatus
	text     string
	err      error
}

// NewDualResolver creates a resolver for the configured providers
func NewDualResolver(cfg config.DNS) (*DualResolver, error) {
	httpClient := &http.Client{
		Transport: util.DefaultHTTPTransport(),
		Timeout:   cfg.Timeout.ToDuration(),
	}

	clients := make([]Client, len(cfg.Providers))
	for i, p := range cfg.Providers {
		clients[i] = NewClient(p, httpClient)
	}

	return NewDualResolverWithClients(cfg.SingleProviderPolicy, clients...)
}

// NewDualResolverWithClients creates a resolver for already constructed clients
func NewDualResolverWithClients(policy config.SingleProviderPolicy, clients ...Client) (*DualResolver, error) {
	if len(clients) < 2 {
		return nil, fmt.Errorf("at least two DoH providers are required, got %d", len(clients))
	}

	providers := make([]*providerStatus, len(clients))
	for i, c := range clients {
		providers[i] = &providerStatus{client: c, lastErrorTime: time.Unix(0, 0)}
	}

	return &DualResolver{providers: providers, policy: policy}, nil
}

func (r *DualResolver) String() string {
	result := make([]string, len(r.providers))
	for i, p := range r.providers {
		result[i] = p.client.String()
	}

	return fmt.Sprintf("dual DoH '%s'", strings.Join(result, "; "))
}

// ResolveTXT queries two providers concurrently, waits for both and reconciles the answers
func (r *DualResolver) ResolveTXT(ctx context.Context, domain string) (*TXTAnswer, error) {
	name, err := util.NormalizeDomain(domain)
	if err != nil {
		return nil, &model.Error{Kind: model.ErrorKindFormat, Message: "invalid TXT domain", Domain: domain, Err: err}
	}

	ctx, logger := log.WrapCtx(ctx, func(e *logrus.Entry) *logrus.Entry {
		return log.WithPrefix(e, dualResolverLogger).WithField("domain", log.EscapeInput(name))
	})

	p1, p2 := r.pickPair()
	logger.Debugf("querying %s and %s", p1.client.Name(), p2.client.Name())

	ch := make(chan queryResult, 2)

	go query(ctx, p1, name, ch)
	go query(ctx, p2, name, ch)

	results := make(map[*providerStatus]queryResult, 2)
	for len(results) < 2 {
		res, ok := util.CtxRecv(ctx, ch)
		if !ok {
			return nil, &model.Error{
				Kind:    model.ErrorKindTransport,
				Message: fmt.Sprintf("TXT lookup of %s was cancelled", name),
				Domain:  name,
				Err:     ctx.Err(),
			}
		}

		results[res.provider] = res
	}

	return r.reconcile(logger, name, results[p1], results[p2])
}

func (r *DualResolver) reconcile(logger *logrus.Entry, domain string, first, second queryResult) (*TXTAnswer, error) {
	for _, res := range []queryResult{first, second} {
		if res.err != nil {
			logger.WithField("provider", res.provider.client.Name()).Warn("DoH query failed: ", res.err)
			evt.Bus().Publish(evt.DoHProviderFailed, res.provider.client.Name(), domain)
		}
	}

	switch {
	case first.err == nil && second.err == nil:
		if first.text != second.text {
			evt.Bus().Publish(evt.DNSAnswerMismatch, domain)

			return nil, &model.Error{
				Kind: model.ErrorKindConsistency,
				Message: fmt.Sprintf("DNS TXT mismatch for %s (%s vs %s): possible spoofing or inconsistent propagation",
					domain, first.provider.client.Name(), second.provider.client.Name()),
				Domain:   domain,
				Expected: first.text,
				Actual:   second.text,
			}
		}

		return &TXTAnswer{
			Domain:    domain,
			Text:      first.text,
			Providers: []string{first.provider.client.Name(), second.provider.client.Name()},
		}, nil

	case first.err != nil && second.err != nil:
		var combined *multierror.Error
		combined = multierror.Append(combined, first.err, second.err)

		return nil, &model.Error{
			Kind:    combinedKind(first.err, second.err),
			Message: fmt.Sprintf("DNS TXT lookup failed for %s (no authenticated answer)", domain),
			Domain:  domain,
			Err:     combined.ErrorOrNil(),
		}
	}

	ok, failed := first, second
	if first.err != nil {
		ok, failed = second, first
	}

	if r.policy == config.SingleProviderPolicyReject {
		return nil, &model.Error{
			Kind: model.ErrorKindConsistency,
			Message: fmt.Sprintf("DNS TXT for %s answered by %s only, a second provider is required",
				domain, ok.provider.client.Name()),
			Domain: domain,
			Err:    failed.err,
		}
	}

	logger.Warnf("DNS TXT %s: using %s only (%s failed)", domain, ok.provider.client.Name(), failed.provider.client.Name())
	evt.Bus().Publish(evt.DNSDegradedTrust, domain, ok.provider.client.Name())

	return &TXTAnswer{
		Domain:    domain,
		Text:      ok.text,
		Providers: []string{ok.provider.client.Name()},
		Degraded:  true,
	}, nil
}

// combinedKind is transport only if no provider gave an answer at all,
// otherwise the failure is about missing authentication.
func combinedKind(errs ...error) model.ErrorKind {
	for _, err := range errs {
		if kind, ok := model.KindOf(err); !ok || kind != model.ErrorKindTransport {
			return model.ErrorKindAuthentication
		}
	}

	return model.ErrorKindTransport
}

// pickPair returns two different providers. With exactly two they are used in configured order.
func (r *DualResolver) pickPair() (p1, p2 *providerStatus) {
	if len(r.providers) == 2 {
		return r.providers[0], r.providers[1]
	}

	p1 = weightedRandom(r.providers, nil)
	p2 = weightedRandom(r.providers, p1)

	return p1, p2
}

func weightedRandom(in []*providerStatus, exclude *providerStatus) *providerStatus {
	var choices []weightedrand.Choice

	for _, p := range in {
		if p == exclude {
			continue
		}

		var weight float64 = maxProviderWeight

		if since := time.Since(p.lastError()); since < time.Hour {
			// reduce weight: consider last error time
			weight = math.Max(1, weight-(maxProviderWeight-since.Minutes()))
		}

		choices = append(choices, weightedrand.Choice{
			Item:   p,
			Weight: uint(weight),
		})
	}

	c, _ := weightedrand.NewChooser(choices...)

	return c.Pick().(*providerStatus)
}

func query(ctx context.Context, p *providerStatus, domain string, ch chan<- queryResult) {
	text, err := p.client.QueryTXT(ctx, domain)
	if err != nil {
		p.setLastError(time.Now())
	}

	util.CtxSend(ctx, ch, queryResult{provider: p, text: text, err: err})
}

func (p *providerStatus) lastError() time.Time {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.lastErrorTime
}

func (p *providerStatus) setLastError(t time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.lastErrorTime = t
}
