package contactform

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/masiarekpl/keypin/util"
)

const (
	statusSuccess = "success"

	maxResponseSize = 64 * 1024
)

// TokenProvider returns a fresh CSRF token of the contact form backend
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
}

// CSRFProvider asks the backend to generate a CSRF token
type CSRFProvider struct {
	url    string
	client *http.Client
}

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// NewCSRFProvider creates a provider which GETs the generate endpoint at url
func NewCSRFProvider(url string, client *http.Client) *CSRFProvider {
	return &CSRFProvider{url: url, client: client}
}

// Token returns the token of a successful response, anything else is an error
func (p *CSRFProvider) Token(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return "", fmt.Errorf("can't create CSRF request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	var (
		env  envelope
		data struct {
			CSRFToken string `json:"csrf_token"`
		}
	)

	if err := doJSON(p.client, req, &env); err != nil {
		return "", fmt.Errorf("CSRF token request failed: %w", err)
	}

	if env.Status != statusSuccess {
		return "", fmt.Errorf("CSRF token request failed with status '%s'", env.Status)
	}

	if len(env.Data) != 0 {
		if err := json.Unmarshal(env.Data, &data); err != nil {
			return "", fmt.Errorf("can't parse CSRF token: %w", err)
		}
	}

	if strings.TrimSpace(data.CSRFToken) == "" {
		return "", errors.New("CSRF token response has no token")
	}

	return data.CSRFToken, nil
}

// doJSON decodes the body of any status, the backend reports failures in the envelope
func doJSON(client *http.Client, req *http.Request, v any) error {
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		util.LogOnError("can't close response body ", resp.Body.Close())
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("can't read response: %w", err)
	}

	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("unexpected response (%s): %w", resp.Status, err)
	}

	return nil
}
