// Package identity resolves DNS published identity descriptors into pinned public keys.
package identity

import (
	"context"

	"github.com/masiarekpl/keypin/doh"
	"github.com/masiarekpl/keypin/pinning"
	"github.com/masiarekpl/keypin/record"
)

const (
	// TypePGP is the identity type of armored OpenPGP public keys
	TypePGP = "pgp"
	// TypeSSH is the identity type of authorized_keys formatted SSH keys
	TypeSSH = "ssh"

	supportedMetaVersion = "1"
)

// TXTResolver returns the authenticated TXT value of a domain
type TXTResolver interface {
	ResolveTXT(ctx context.Context, domain string) (*doh.TXTAnswer, error)
}

// DocumentFetcher returns a document only if its SHA-256 digest matches the pin
type DocumentFetcher interface {
	FetchPinnedBytes(ctx context.Context, rawURL, expectedSHA256, label string) (*pinning.Document, error)
}

// ResolvedIdentity is a public key which passed all DNS, schema and pin checks
type ResolvedIdentity struct {
	Type            string          `json:"type"`
	VersionUsed     string          `json:"versionUsed"`
	Domain          string          `json:"domain"`
	SourceRecord    record.FieldSet `json:"sourceRecord"`
	PublicKeyURL    string          `json:"publicKeyUrl"`
	PublicKeyDigest string          `json:"publicKeyDigest"`
	PublicKeyText   string          `json:"publicKeyText"`
	Fingerprint     string          `json:"fingerprint,omitempty"`
	Algorithm       string          `json:"algorithm,omitempty"`
	// DegradedTrust is true if any TXT answer on the path came from a single DoH provider
	DegradedTrust bool `json:"degradedTrust"`
}
