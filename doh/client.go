package doh

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/miekg/dns"

	"github.com/masiarekpl/keypin/config"
	"github.com/masiarekpl/keypin/model"
	"github.com/masiarekpl/keypin/util"
)

const (
	dnsJSONContentType = "application/dns-json"
	dnsContentType     = "application/dns-message"

	// upper bound for a single DoH response body
	maxResponseSize = 64 * 1024

	ednsBufferSize = 4096
)

// Client queries the TXT record of a domain at one DoH provider.
// A returned value is always authenticated (AD flag set, NOERROR) and normalized.
type Client interface {
	fmt.Stringer

	// Name returns the provider name used in log and error messages
	Name() string

	// QueryTXT returns the first TXT value of the domain
	QueryTXT(ctx context.Context, domain string) (string, error)
}

// NewClient creates a client for the provider's wire format
func NewClient(provider config.DoHProvider, httpClient *http.Client) Client {
	if provider.Format == config.DoHFormatWire {
		return &wireClient{provider: provider, httpClient: httpClient}
	}

	return &jsonClient{provider: provider, httpClient: httpClient}
}

type jsonClient struct {
	provider   config.DoHProvider
	httpClient *http.Client
}

// Field names are matched case-insensitively by encoding/json,
// so both "AD" and "ad" spellings of the providers are accepted.
type jsonResponse struct {
	Status *int         `json:"Status"`
	AD     bool         `json:"AD"`
	Answer []jsonAnswer `json:"Answer"`
}

type jsonAnswer struct {
	Name string          `json:"name"`
	Type json.RawMessage `json:"type"`
	Data string          `json:"data"`
}

func (a *jsonAnswer) isTXT() bool {
	var num uint16
	if err := json.Unmarshal(a.Type, &num); err == nil {
		return num == dns.TypeTXT
	}

	var name string
	if err := json.Unmarshal(a.Type, &name); err == nil {
		return strings.EqualFold(name, dns.TypeToString[dns.TypeTXT]) || name == strconv.Itoa(int(dns.TypeTXT))
	}

	return false
}

func (c *jsonClient) Name() string {
	return c.provider.Name
}

func (c *jsonClient) String() string {
	return c.provider.String()
}

func (c *jsonClient) QueryTXT(ctx context.Context, domain string) (string, error) {
	u, err := url.Parse(c.provider.URL)
	if err != nil {
		return "", model.WrapError(model.ErrorKindTransport, fmt.Sprintf("DoH %s invalid URL", c.Name()), err)
	}

	q := u.Query()
	q.Set("name", domain)
	q.Set("type", dns.TypeToString[dns.TypeTXT])
	q.Set("do", "1")
	q.Set("cd", "0")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", model.WrapError(model.ErrorKindTransport, fmt.Sprintf("DoH %s can't create request", c.Name()), err)
	}

	req.Header.Set("Accept", dnsJSONContentType)
	req.Header.Set("Cache-Control", "no-store")

	body, err := doRequest(c.httpClient, req, c.Name())
	if err != nil {
		return "", err
	}

	var resp jsonResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", model.WrapError(model.ErrorKindFormat, fmt.Sprintf("DoH %s invalid JSON response", c.Name()), err)
	}

	if !resp.AD {
		return "", authError(c.Name(), domain, "missing AD=true")
	}

	if resp.Status == nil {
		return "", authError(c.Name(), domain, "Status=null")
	}

	if *resp.Status != dns.RcodeSuccess {
		return "", authError(c.Name(), domain, fmt.Sprintf("Status=%d (%s)", *resp.Status, dns.RcodeToString[*resp.Status]))
	}

	for i := range resp.Answer {
		if resp.Answer[i].isTXT() && resp.Answer[i].Data != "" {
			return normalized(c.Name(), domain, resp.Answer[i].Data)
		}
	}

	return "", authError(c.Name(), domain, "no TXT data")
}

type wireClient struct {
	provider   config.DoHProvider
	httpClient *http.Client
}

func (c *wireClient) Name() string {
	return c.provider.Name
}

func (c *wireClient) String() string {
	return c.provider.String()
}

func (c *wireClient) QueryTXT(ctx context.Context, domain string) (string, error) {
	msg := new(dns.Msg)
	msg.SetQuestion(util.Fqdn(domain), dns.TypeTXT)
	msg.SetEdns0(ednsBufferSize, true)
	msg.AuthenticatedData = true
	// RFC 8484 4.1: use ID 0 for cache friendliness
	msg.Id = 0

	rawDNSMessage, err := msg.Pack()
	if err != nil {
		return "", model.WrapError(model.ErrorKindFormat, fmt.Sprintf("DoH %s can't pack message", c.Name()), err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.provider.URL, bytes.NewReader(rawDNSMessage))
	if err != nil {
		return "", model.WrapError(model.ErrorKindTransport, fmt.Sprintf("DoH %s can't create request", c.Name()), err)
	}

	req.Header.Set("Content-Type", dnsContentType)
	req.Header.Set("Accept", dnsContentType)
	req.Header.Set("Cache-Control", "no-store")

	body, err := doRequest(c.httpClient, req, c.Name())
	if err != nil {
		return "", err
	}

	response := new(dns.Msg)
	if err := response.Unpack(body); err != nil {
		return "", model.WrapError(model.ErrorKindFormat, fmt.Sprintf("DoH %s can't unpack message", c.Name()), err)
	}

	if !response.AuthenticatedData {
		return "", authError(c.Name(), domain, "missing AD=true")
	}

	if response.Rcode != dns.RcodeSuccess {
		return "", authError(c.Name(), domain,
			fmt.Sprintf("Status=%d (%s)", response.Rcode, dns.RcodeToString[response.Rcode]))
	}

	for _, rr := range response.Answer {
		if txt, ok := rr.(*dns.TXT); ok && len(txt.Txt) > 0 {
			// segments are already unquoted by the wire format
			return normalized(c.Name(), domain, strings.Join(txt.Txt, ""))
		}
	}

	return "", authError(c.Name(), domain, "no TXT data")
}

func doRequest(client *http.Client, req *http.Request, provider string) ([]byte, error) {
	resp, err := client.Do(req)
	if err != nil {
		return nil, model.WrapError(model.ErrorKindTransport, fmt.Sprintf("DoH %s request failed", provider), err)
	}

	defer func() {
		util.LogOnError("can't close response body ", resp.Body.Close())
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, &model.Error{
			Kind:    model.ErrorKindTransport,
			Message: fmt.Sprintf("DoH %s HTTP %d", provider, resp.StatusCode),
			URL:     req.URL.String(),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, model.WrapError(model.ErrorKindTransport, fmt.Sprintf("DoH %s can't read response body", provider), err)
	}

	return body, nil
}

func normalized(provider, domain, data string) (string, error) {
	s := NormalizeTXT(data)
	if s == "" {
		return "", &model.Error{
			Kind:    model.ErrorKindFormat,
			Message: fmt.Sprintf("DoH %s empty TXT after normalize", provider),
			Domain:  domain,
		}
	}

	return s, nil
}

func authError(provider, domain, reason string) error {
	return &model.Error{
		Kind:    model.ErrorKindAuthentication,
		Message: fmt.Sprintf("DoH %s %s", provider, reason),
		Domain:  domain,
	}
}
