package helpertest

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/miekg/dns"
	"github.com/onsi/ginkgo/v2"

	"github.com/masiarekpl/keypin/config"
)

const (
	dohPathPrefix = "/doh/"

	// ProviderA and ProviderB are the DoH providers served by IdentityServer
	ProviderA = "resolver-a"
	ProviderB = "resolver-b"

	maxTXTSegment = 255
)

// IdentityServer is a TLS test server which acts as two DoH JSON providers
// and as HTTPS host of pinned documents.
type IdentityServer struct {
	*httptest.Server

	mu       sync.RWMutex
	txt      map[string]map[string]string
	failing  map[string]int
	insecure map[string]bool
	docs     map[string][]byte
	requests map[string]int
}

// NewIdentityServer starts a server which is closed after the current spec
func NewIdentityServer() *IdentityServer {
	s := &IdentityServer{
		txt:      map[string]map[string]string{ProviderA: {}, ProviderB: {}},
		failing:  map[string]int{},
		insecure: map[string]bool{},
		docs:     map[string][]byte{},
		requests: map[string]int{},
	}

	s.Server = httptest.NewTLSServer(http.HandlerFunc(s.serve))
	ginkgo.DeferCleanup(s.Close)

	return s
}

// Providers returns the configuration of both DoH providers
func (s *IdentityServer) Providers() []config.DoHProvider {
	return []config.DoHProvider{
		{Name: ProviderA, URL: s.URL + dohPathPrefix + ProviderA, Format: config.DoHFormatJson},
		{Name: ProviderB, URL: s.URL + dohPathPrefix + ProviderB, Format: config.DoHFormatJson},
	}
}

// SetTXT publishes the TXT value of domain at both providers
func (s *IdentityServer) SetTXT(domain, txt string) {
	s.SetProviderTXT(ProviderA, domain, txt)
	s.SetProviderTXT(ProviderB, domain, txt)
}

// SetProviderTXT publishes the TXT value of domain at one provider
func (s *IdentityServer) SetProviderTXT(provider, domain, txt string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.txt[provider][dns.CanonicalName(domain)] = txt
}

// FailProvider lets all queries to the provider fail with the HTTP status, 0 restores it
func (s *IdentityServer) FailProvider(provider string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.failing[provider] = status
}

// UnauthenticatedProvider lets the provider answer without AD flag
func (s *IdentityServer) UnauthenticatedProvider(provider string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.insecure[provider] = true
}

// Publish serves body at path and returns the URL and the SHA-256 pin of it
func (s *IdentityServer) Publish(path string, body []byte) (url, digest string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.docs[path] = body
	sum := sha256.Sum256(body)

	return s.URL + path, hex.EncodeToString(sum[:])
}

// Requests returns how often path was requested
func (s *IdentityServer) Requests(path string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.requests[path]
}

func (s *IdentityServer) serve(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.requests[r.URL.Path]++
	s.mu.Unlock()

	s.mu.RLock()
	defer s.mu.RUnlock()

	if provider, ok := strings.CutPrefix(r.URL.Path, dohPathPrefix); ok {
		s.serveDoH(w, r, provider)

		return
	}

	body, ok := s.docs[r.URL.Path]
	if !ok {
		http.NotFound(w, r)

		return
	}

	_, _ = w.Write(body)
}

type dohAnswer struct {
	Name string `json:"name"`
	Type uint16 `json:"type"`
	TTL  int    `json:"TTL"`
	Data string `json:"data"`
}

type dohResponse struct {
	Status int         `json:"Status"`
	AD     bool        `json:"AD"`
	Answer []dohAnswer `json:"Answer,omitempty"`
}

func (s *IdentityServer) serveDoH(w http.ResponseWriter, r *http.Request, provider string) {
	records, ok := s.txt[provider]
	if !ok {
		http.NotFound(w, r)

		return
	}

	if status := s.failing[provider]; status != 0 {
		w.WriteHeader(status)

		return
	}

	name := dns.CanonicalName(r.URL.Query().Get("name"))
	resp := dohResponse{Status: dns.RcodeSuccess, AD: !s.insecure[provider]}

	if txt, ok := records[name]; ok {
		resp.Answer = []dohAnswer{{Name: name, Type: dns.TypeTXT, TTL: 300, Data: quoteTXT(txt)}}
	} else {
		resp.Status = dns.RcodeNameError
	}

	w.Header().Set("Content-Type", "application/dns-json")
	_ = json.NewEncoder(w).Encode(resp)
}

// quoteTXT splits the value into quoted character-strings like DoH providers present them
func quoteTXT(txt string) string {
	var segments []string

	for len(txt) > maxTXTSegment {
		segments = append(segments, fmt.Sprintf("%q", txt[:maxTXTSegment]))
		txt = txt[maxTXTSegment:]
	}

	segments = append(segments, fmt.Sprintf("%q", txt))

	return strings.Join(segments, " ")
}
