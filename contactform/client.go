// Package contactform submits PGP encrypted messages to the contact form backend.
package contactform

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/mail"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/masiarekpl/keypin/config"
	"github.com/masiarekpl/keypin/identity"
	"github.com/masiarekpl/keypin/keymaterial"
	"github.com/masiarekpl/keypin/log"
	"github.com/masiarekpl/keypin/util"
)

const (
	loggerPrefix = "contactform"

	// MaxMessageLength is the maximal length of a message body in characters
	MaxMessageLength = 5000
)

// IdentityResolver returns the identity the message is encrypted to
type IdentityResolver interface {
	Resolve(ctx context.Context, typ string) (*identity.ResolvedIdentity, error)
}

// Message is the content of a contact form
type Message struct {
	Name    string
	Email   string
	Subject string
	Body    string
}

// Receipt is the answer of the backend to an accepted message
type Receipt struct {
	Message     string
	Ref         string
	RequestID   string
	Fingerprint string
	// DegradedTrust is true if the key was confirmed by a single DoH provider only
	DegradedTrust bool
}

// RejectedError is returned if the backend did not accept the message
type RejectedError struct {
	Message string
	Ref     string
}

func (e *RejectedError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "unexpected response"
	}

	if e.Ref != "" {
		return fmt.Sprintf("%s (Ref: %s)", msg, e.Ref)
	}

	return msg
}

// Client encrypts messages to the resolved identity and posts them to the backend
type Client struct {
	cfg       config.ContactForm
	resolver  IdentityResolver
	tokens    TokenProvider
	http      *http.Client
	requestID func() string
}

// ClientOption customizes a Client
type ClientOption func(c *Client)

// WithHTTPClient sets the HTTP client used for all backend requests
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.http = client
	}
}

// WithTokenProvider replaces the CSRF provider of the configured endpoint
func WithTokenProvider(tokens TokenProvider) ClientOption {
	return func(c *Client) {
		c.tokens = tokens
	}
}

// NewClient creates a client for the configured backend
func NewClient(cfg config.ContactForm, resolver IdentityResolver, options ...ClientOption) (*Client, error) {
	if !cfg.IsEnabled() {
		return nil, errors.New("contactForm.baseURL is not configured")
	}

	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid contactForm.baseURL: %w", err)
	}

	transport := util.DefaultHTTPTransport()

	c := &Client{
		cfg:       cfg,
		resolver:  resolver,
		http:      &http.Client{Transport: transport, Timeout: cfg.Timeout.ToDuration()},
		requestID: uuid.NewString,
	}

	for _, opt := range options {
		opt(c)
	}

	if c.tokens == nil {
		c.tokens = NewCSRFProvider(c.endpoint(cfg.CSRFPath), c.http)
	}

	return c, nil
}

func (c *Client) endpoint(path string) string {
	return strings.TrimSuffix(c.cfg.BaseURL, "/") + "/" + strings.TrimPrefix(path, "/")
}

// Send encrypts the body of msg and submits the form.
// Nothing is sent if the identity can't be resolved.
func (c *Client) Send(ctx context.Context, msg Message) (*Receipt, error) {
	if err := msg.validate(); err != nil {
		return nil, err
	}

	requestID := c.requestID()

	ctx, logger := log.CtxWithFields(ctx, logrus.Fields{"prefix": loggerPrefix, "request_id": requestID})

	res, err := c.resolver.Resolve(ctx, c.cfg.IdentityType)
	if err != nil {
		return nil, fmt.Errorf("refusing to send, identity can't be resolved: %w", err)
	}

	if res.DegradedTrust {
		logger.Warn("identity key was confirmed by a single DoH provider")
	}

	ciphertext, err := keymaterial.Encrypt(res.PublicKeyText, []byte(msg.Body))
	if err != nil {
		return nil, fmt.Errorf("refusing to send, can't encrypt message: %w", err)
	}

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	form := url.Values{}
	form.Set("name", msg.Name)
	form.Set("email", msg.Email)
	form.Set("subject", msg.Subject)
	form.Set("message", ciphertext)
	form.Set("csrf_token", token)
	form.Set("cf_request_id", requestID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(c.cfg.SubmitPath),
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("can't create submit request: %w", err)
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	var (
		env  envelope
		data struct {
			Ref string `json:"ref"`
		}
	)

	if err := doJSON(c.http, req, &env); err != nil {
		return nil, fmt.Errorf("submit failed: %w", err)
	}

	if len(env.Data) != 0 {
		// data is optional and may be of any shape on errors
		_ = json.Unmarshal(env.Data, &data)
	}

	if env.Status != statusSuccess {
		logger.Warnf("message rejected: %s", log.EscapeInput(env.Message))

		return nil, &RejectedError{Message: env.Message, Ref: data.Ref}
	}

	logger.WithField("ref", data.Ref).Info("message sent")

	return &Receipt{
		Message:       env.Message,
		Ref:           data.Ref,
		RequestID:     requestID,
		Fingerprint:   res.Fingerprint,
		DegradedTrust: res.DegradedTrust,
	}, nil
}

func (m Message) validate() error {
	for _, f := range []struct{ name, value string }{
		{"name", m.Name},
		{"email", m.Email},
		{"subject", m.Subject},
		{"message", m.Body},
	} {
		if strings.TrimSpace(f.value) == "" {
			return fmt.Errorf("%s is empty", f.name)
		}
	}

	if _, err := mail.ParseAddress(m.Email); err != nil {
		return fmt.Errorf("invalid email '%s': %w", log.EscapeInput(m.Email), err)
	}

	if n := utf8.RuneCountInString(m.Body); n > MaxMessageLength {
		return fmt.Errorf("message is too long: %d characters, maximum is %d", n, MaxMessageLength)
	}

	return nil
}
