// @title keypin API
// @description keys API of the identity resolver

// @BasePath /api/
package api

const (
	// PathIdentities lists the published identity types
	PathIdentities = "/api/identity"
	// PathIdentity returns a resolved identity as JSON
	PathIdentity = "/api/identity/{type}"
	// PathIdentityKey returns the pinned public key as text
	PathIdentityKey = "/api/identity/{type}/key"
	// PathEncrypt encrypts a message to the resolved PGP key
	PathEncrypt = "/api/identity/encrypt"
	// PathCacheFlush drops all cached documents and identities
	PathCacheFlush = "/api/cache/flush"
)

// ErrorPrefix marks failure reasons shown to users
const ErrorPrefix = "✖ "

// TypesResult lists the identity types of the schemas document
type TypesResult struct {
	Types []string `json:"types"`
}

// EncryptRequest is the body of an encryption request
type EncryptRequest struct {
	// identity type, pgp if empty
	Type string `json:"type,omitempty"`
	// message to encrypt
	Plaintext string `json:"plaintext"`
}

// EncryptResult holds the armored PGP message
type EncryptResult struct {
	Ciphertext  string `json:"ciphertext"`
	Fingerprint string `json:"fingerprint,omitempty"`
	// true if a DNS answer came from a single DoH provider
	DegradedTrust bool `json:"degradedTrust"`
}

// ErrorResponse is returned with every non 2xx status
type ErrorResponse struct {
	Error string `json:"error"`
	// error kind, empty for request errors
	Kind string `json:"kind,omitempty"`
}
