package pinning

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/masiarekpl/keypin/evt"
	"github.com/masiarekpl/keypin/log"
	"github.com/masiarekpl/keypin/model"
	"github.com/masiarekpl/keypin/util"
)

const (
	defaultFetchTimeout = 5 * time.Second
	defaultMaxSize      = 1 << 20

	fetcherLogger = "pinning"
)

// nolint:gochecknoglobals
var sha256Hex = regexp.MustCompile(`^[0-9a-f]{64}$`)

// Document is a fetched resource whose SHA-256 digest matched the pin
type Document struct {
	URL    string
	SHA256 string
	Body   []byte
}

// Text returns the body as string
func (d *Document) Text() string {
	return string(d.Body)
}

// Digest returns the lower case hex encoded SHA-256 digest of data
func Digest(data []byte) string {
	sum := sha256.Sum256(data)

	return hex.EncodeToString(sum[:])
}

// HTTPFetcher downloads documents via HTTPS and verifies them against a SHA-256 pin.
// There are no retries: a failed fetch is returned to the caller as is.
type HTTPFetcher struct {
	timeout   time.Duration
	maxSize   int64
	transport http.RoundTripper
}

type FetcherOption func(f *HTTPFetcher)

// NewFetcher creates a fetcher with the passed options
func NewFetcher(options ...FetcherOption) *HTTPFetcher {
	f := &HTTPFetcher{
		timeout:   defaultFetchTimeout,
		maxSize:   defaultMaxSize,
		transport: util.DefaultHTTPTransport(),
	}

	for _, opt := range options {
		opt(f)
	}

	return f
}

// WithTimeout sets the timeout of one fetch
func WithTimeout(timeout time.Duration) FetcherOption {
	return func(f *HTTPFetcher) {
		f.timeout = timeout
	}
}

// WithMaxSize sets the maximal accepted body size in bytes
func WithMaxSize(maxSize int64) FetcherOption {
	return func(f *HTTPFetcher) {
		f.maxSize = maxSize
	}
}

// WithTransport sets the HTTP transport
func WithTransport(transport http.RoundTripper) FetcherOption {
	return func(f *HTTPFetcher) {
		f.transport = transport
	}
}

// FetchPinned fetches the document at rawURL and returns its text if the digest matches
func (f *HTTPFetcher) FetchPinned(ctx context.Context, rawURL, expectedSHA256, label string) (string, error) {
	doc, err := f.FetchPinnedBytes(ctx, rawURL, expectedSHA256, label)
	if err != nil {
		return "", err
	}

	return doc.Text(), nil
}

// FetchPinnedBytes fetches the document at rawURL. The returned document contains the exact
// received bytes, it is only returned if their SHA-256 digest equals expectedSHA256.
func (f *HTTPFetcher) FetchPinnedBytes(ctx context.Context, rawURL, expectedSHA256, label string) (*Document, error) {
	expected := strings.ToLower(strings.TrimSpace(expectedSHA256))
	if !sha256Hex.MatchString(expected) {
		return nil, &model.Error{
			Kind:     model.ErrorKindFormat,
			Message:  fmt.Sprintf("%s SHA256 pin must be 64 hex characters", label),
			URL:      rawURL,
			Expected: expectedSHA256,
		}
	}

	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme != "https" || u.Host == "" {
		return nil, &model.Error{
			Kind:    model.ErrorKindFormat,
			Message: fmt.Sprintf("%s: only https:// URLs are allowed by identity resolver", label),
			URL:     rawURL,
			Err:     err,
		}
	}

	logger := log.WithPrefix(log.FromCtx(ctx), fetcherLogger).WithFields(logrus.Fields{
		"document": label,
		"url":      log.EscapeInput(u.String()),
	})

	body, err := f.fetch(ctx, u, label)
	if err != nil {
		logger.Warn("fetch failed: ", err)

		return nil, err
	}

	actual := Digest(body)
	if !matchesPin(actual, expected) {
		logger.WithFields(logrus.Fields{
			"expected": expected,
			"actual":   actual,
		}).Error("pin verification failed, document may have been tampered with")

		evt.Bus().Publish(evt.PinVerificationFailed, u.String())

		return nil, &model.Error{
			Kind:     model.ErrorKindIntegrity,
			Message:  fmt.Sprintf("%s SHA256 mismatch (pin failed)", label),
			URL:      u.String(),
			Expected: expected,
			Actual:   actual,
		}
	}

	logger.WithField("size", len(body)).Debug("pinned document verified")

	return &Document{URL: u.String(), SHA256: actual, Body: body}, nil
}

// matchesPin compares two lower case hex digests in constant time
func matchesPin(actual, expected string) bool {
	return subtle.ConstantTimeCompare([]byte(actual), []byte(expected)) == 1
}

func (f *HTTPFetcher) fetch(ctx context.Context, u *url.URL, label string) ([]byte, error) {
	client := http.Client{
		Timeout:   f.timeout,
		Transport: f.transport,
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, model.WrapError(model.ErrorKindTransport, fmt.Sprintf("can't create request for %s", label), err)
	}

	// the digest is the trust boundary, never let a cache answer
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Pragma", "no-cache")

	resp, err := client.Do(req)
	if err != nil {
		return nil, &model.Error{
			Kind:    model.ErrorKindTransport,
			Message: fmt.Sprintf("can't fetch %s", label),
			URL:     u.String(),
			Err:     describeNetError(err),
		}
	}

	defer func() {
		util.LogOnError("can't close response body ", resp.Body.Close())
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &model.Error{
			Kind:    model.ErrorKindTransport,
			Message: fmt.Sprintf("HTTP %d fetching %s", resp.StatusCode, u),
			URL:     u.String(),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxSize+1))
	if err != nil {
		return nil, &model.Error{
			Kind:    model.ErrorKindTransport,
			Message: fmt.Sprintf("can't read %s", label),
			URL:     u.String(),
			Err:     err,
		}
	}

	if int64(len(body)) > f.maxSize {
		return nil, &model.Error{
			Kind:    model.ErrorKindFormat,
			Message: fmt.Sprintf("%s exceeds the size limit of %d bytes", label, f.maxSize),
			URL:     u.String(),
		}
	}

	return body, nil
}

func describeNetError(err error) error {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return fmt.Errorf("name resolution failed: %w", err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("timeout: %w", err)
	}

	return err
}
