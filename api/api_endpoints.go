package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/masiarekpl/keypin/identity"
	"github.com/masiarekpl/keypin/keymaterial"
	"github.com/masiarekpl/keypin/log"
	"github.com/masiarekpl/keypin/model"
	"github.com/masiarekpl/keypin/util"
)

const (
	contentTypeHeader = "content-type"
	jsonContentType   = "application/json"
	textContentType   = "text/plain; charset=utf-8"

	maxEncryptBodySize = 64 * 1024
)

// IdentityResolver resolves pinned identities
type IdentityResolver interface {
	Resolve(ctx context.Context, typ string) (*identity.ResolvedIdentity, error)
	Types(ctx context.Context) ([]string, error)
}

// CacheControl interface to drop cached documents
type CacheControl interface {
	Invalidate()
}

// IdentityEndpoint endpoint for identity resolution and encryption
type IdentityEndpoint struct {
	resolver IdentityResolver
}

// CacheEndpoint endpoint for cache control
type CacheEndpoint struct {
	control CacheControl
}

// RegisterEndpoint registers an implementation as HTTP endpoint
func RegisterEndpoint(router chi.Router, t interface{}) {
	if a, ok := t.(IdentityResolver); ok {
		registerIdentityEndpoints(router, a)
	}

	if a, ok := t.(CacheControl); ok {
		registerCacheEndpoints(router, a)
	}
}

func registerIdentityEndpoints(router chi.Router, resolver IdentityResolver) {
	e := &IdentityEndpoint{resolver}

	router.Get(PathIdentities, e.apiTypes)
	router.Post(PathEncrypt, e.apiEncrypt)
	router.Get(PathIdentity, e.apiIdentity)
	router.Get(PathIdentityKey, e.apiIdentityKey)
}

func registerCacheEndpoints(router chi.Router, control CacheControl) {
	e := &CacheEndpoint{control}

	router.Post(PathCacheFlush, e.apiCacheFlush)
}

// apiTypes is the http endpoint to list the identity types
// @Summary Identity types
// @Description list the identity types of the pinned schemas document
// @Tags identity
// @Produce  json
// @Success 200 {object} api.TypesResult "Published identity types"
// @Failure 424 {object} api.ErrorResponse "Resolution failed"
// @Router /identity [get]
func (e *IdentityEndpoint) apiTypes(rw http.ResponseWriter, req *http.Request) {
	types, err := e.resolver.Types(req.Context())
	if err != nil {
		writeError(rw, err)

		return
	}

	writeJSON(rw, http.StatusOK, TypesResult{Types: types})
}

// apiIdentity is the http endpoint to resolve an identity
// @Summary Resolve identity
// @Description resolve the identity type and verify all pins
// @Tags identity
// @Produce  json
// @Param type path string true "identity type (pgp, ssh)"
// @Success 200 {object} identity.ResolvedIdentity "Resolved identity"
// @Failure 424 {object} api.ErrorResponse "Resolution failed"
// @Failure 502 {object} api.ErrorResponse "Upstream not reachable"
// @Router /identity/{type} [get]
func (e *IdentityEndpoint) apiIdentity(rw http.ResponseWriter, req *http.Request) {
	res, err := e.resolver.Resolve(req.Context(), chi.URLParam(req, "type"))
	if err != nil {
		writeError(rw, err)

		return
	}

	writeJSON(rw, http.StatusOK, res)
}

// apiIdentityKey is the http endpoint to get the pinned public key
// @Summary Public key
// @Description returns the public key text after all pins were verified
// @Tags identity
// @Produce  plain
// @Param type path string true "identity type (pgp, ssh)"
// @Success 200 {string} string "Public key"
// @Failure 424 {object} api.ErrorResponse "Resolution failed"
// @Router /identity/{type}/key [get]
func (e *IdentityEndpoint) apiIdentityKey(rw http.ResponseWriter, req *http.Request) {
	res, err := e.resolver.Resolve(req.Context(), chi.URLParam(req, "type"))
	if err != nil {
		writeError(rw, err)

		return
	}

	rw.Header().Set(contentTypeHeader, textContentType)

	_, err = io.WriteString(rw, strings.TrimSpace(res.PublicKeyText)+"\n")
	util.LogOnError("unable to write response ", err)
}

// apiEncrypt is the http endpoint to encrypt a message to the resolved key
// @Summary Encrypt message
// @Description resolve the PGP identity and encrypt the plaintext to it
// @Tags identity
// @Accept  json
// @Produce  json
// @Param request body api.EncryptRequest true "message"
// @Success 200 {object} api.EncryptResult "Armored PGP message"
// @Failure 400 {object} api.ErrorResponse "Wrong request format"
// @Failure 424 {object} api.ErrorResponse "Resolution failed"
// @Router /identity/encrypt [post]
func (e *IdentityEndpoint) apiEncrypt(rw http.ResponseWriter, req *http.Request) {
	var encReq EncryptRequest

	if err := json.NewDecoder(io.LimitReader(req.Body, maxEncryptBodySize)).Decode(&encReq); err != nil {
		writeRequestError(rw, fmt.Errorf("can't read request: %w", err))

		return
	}

	if encReq.Type == "" {
		encReq.Type = identity.TypePGP
	}

	if encReq.Type != identity.TypePGP {
		writeRequestError(rw, fmt.Errorf("identity type '%s' can't encrypt", log.EscapeInput(encReq.Type)))

		return
	}

	if strings.TrimSpace(encReq.Plaintext) == "" {
		writeRequestError(rw, errors.New("plaintext is empty"))

		return
	}

	res, err := e.resolver.Resolve(req.Context(), encReq.Type)
	if err != nil {
		writeError(rw, err)

		return
	}

	ciphertext, err := keymaterial.Encrypt(res.PublicKeyText, []byte(encReq.Plaintext))
	if err != nil {
		writeError(rw, err)

		return
	}

	log.FromCtx(req.Context()).WithField("client_ip", util.HTTPClientIP(req)).
		Debugf("encrypted %d bytes to %s key", len(encReq.Plaintext), res.Type)

	writeJSON(rw, http.StatusOK, EncryptResult{
		Ciphertext:    ciphertext,
		Fingerprint:   res.Fingerprint,
		DegradedTrust: res.DegradedTrust,
	})
}

// apiCacheFlush is the http endpoint to drop all caches
// @Summary Flush caches
// @Description drop cached documents and identities, the next request resolves everything again
// @Tags cache
// @Success 200   "All caches were flushed"
// @Router /cache/flush [post]
func (e *CacheEndpoint) apiCacheFlush(rw http.ResponseWriter, _ *http.Request) {
	log.Log().Info("flushing caches...")

	e.control.Invalidate()

	writeJSON(rw, http.StatusOK, struct{}{})
}

// StatusOf maps an error kind to the HTTP status of the response
func StatusOf(err error) int {
	kind, ok := model.KindOf(err)
	if !ok {
		return http.StatusInternalServerError
	}

	if kind == model.ErrorKindTransport {
		return http.StatusBadGateway
	}

	return http.StatusFailedDependency
}

func writeError(rw http.ResponseWriter, err error) {
	resp := ErrorResponse{Error: ErrorPrefix + err.Error()}

	if kind, ok := model.KindOf(err); ok {
		resp.Kind = kind.String()
	}

	writeJSON(rw, StatusOf(err), resp)
}

func writeRequestError(rw http.ResponseWriter, err error) {
	writeJSON(rw, http.StatusBadRequest, ErrorResponse{Error: ErrorPrefix + err.Error()})
}

func writeJSON(rw http.ResponseWriter, status int, v any) {
	response, err := json.Marshal(v)
	if err != nil {
		log.Log().Error("unable to marshal response ", err)
		rw.WriteHeader(http.StatusInternalServerError)

		return
	}

	rw.Header().Set(contentTypeHeader, jsonContentType)
	rw.WriteHeader(status)

	_, err = rw.Write(response)
	util.LogOnError("unable to write response ", err)
}
