package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/mock"

	"github.com/masiarekpl/keypin/helpertest"
	"github.com/masiarekpl/keypin/identity"
	"github.com/masiarekpl/keypin/model"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type identityResolverMock struct {
	mock.Mock
}

func (m *identityResolverMock) Resolve(_ context.Context, typ string) (*identity.ResolvedIdentity, error) {
	args := m.Called(typ)

	res, _ := args.Get(0).(*identity.ResolvedIdentity)

	return res, args.Error(1)
}

func (m *identityResolverMock) Types(context.Context) ([]string, error) {
	args := m.Called()

	types, _ := args.Get(0).([]string)

	return types, args.Error(1)
}

func (m *identityResolverMock) Invalidate() {
	_ = m.Called()
}

var _ = Describe("API endpoints", func() {
	var (
		router   chi.Router
		resolver *identityResolverMock
	)

	BeforeEach(func() {
		router = chi.NewRouter()
		resolver = &identityResolverMock{}

		RegisterEndpoint(router, resolver)
	})

	do := func(method, path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		return rr
	}

	decodeError := func(rr *httptest.ResponseRecorder) ErrorResponse {
		var resp ErrorResponse

		Expect(json.NewDecoder(rr.Body).Decode(&resp)).Should(Succeed())

		return resp
	}

	Describe("GET identity", func() {
		When("the identity resolves", func() {
			It("should return it as JSON", func() {
				resolver.On("Resolve", "ssh").Return(&identity.ResolvedIdentity{
					Type:          "ssh",
					VersionUsed:   "1",
					Domain:        "ssh.example.com",
					PublicKeyURL:  "https://example.com/ssh.pub",
					DegradedTrust: true,
				}, nil)

				rr := do(http.MethodGet, "/api/identity/ssh", "")

				Expect(rr).Should(HaveHTTPStatus(http.StatusOK))
				Expect(rr).Should(HaveHTTPHeaderWithValue("content-type", "application/json"))

				var res identity.ResolvedIdentity
				Expect(json.NewDecoder(rr.Body).Decode(&res)).Should(Succeed())
				Expect(res.Domain).Should(Equal("ssh.example.com"))
				Expect(res.DegradedTrust).Should(BeTrue())
			})
		})

		When("a pin does not match", func() {
			It("should return the reason with 424", func() {
				resolver.On("Resolve", "pgp").Return(nil, &model.Error{
					Kind:    model.ErrorKindIntegrity,
					Message: "PGP public key digest mismatch",
				})

				rr := do(http.MethodGet, "/api/identity/pgp", "")

				Expect(rr).Should(HaveHTTPStatus(http.StatusFailedDependency))

				resp := decodeError(rr)
				Expect(resp.Error).Should(HavePrefix("✖ "))
				Expect(resp.Error).Should(ContainSubstring("digest mismatch"))
				Expect(resp.Kind).Should(Equal("integrity"))
			})
		})

		When("the providers are not reachable", func() {
			It("should return 502", func() {
				resolver.On("Resolve", "pgp").Return(nil, model.NewError(model.ErrorKindTransport, "no DoH provider answered"))

				rr := do(http.MethodGet, "/api/identity/pgp", "")

				Expect(rr).Should(HaveHTTPStatus(http.StatusBadGateway))
				Expect(decodeError(rr).Kind).Should(Equal("transport"))
			})
		})
	})

	Describe("GET identity key", func() {
		It("should return the key as text", func() {
			resolver.On("Resolve", "pgp").Return(&identity.ResolvedIdentity{
				PublicKeyText: "-----BEGIN PGP PUBLIC KEY BLOCK-----\n\n",
			}, nil)

			rr := do(http.MethodGet, "/api/identity/pgp/key", "")

			Expect(rr).Should(HaveHTTPStatus(http.StatusOK))
			Expect(rr).Should(HaveHTTPHeaderWithValue("content-type", "text/plain; charset=utf-8"))
			Expect(rr.Body.String()).Should(Equal("-----BEGIN PGP PUBLIC KEY BLOCK-----\n"))
		})
	})

	Describe("GET identity types", func() {
		It("should list the types", func() {
			resolver.On("Types").Return([]string{"pgp", "ssh"}, nil)

			rr := do(http.MethodGet, "/api/identity", "")

			Expect(rr).Should(HaveHTTPStatus(http.StatusOK))

			var res TypesResult
			Expect(json.NewDecoder(rr.Body).Decode(&res)).Should(Succeed())
			Expect(res.Types).Should(Equal([]string{"pgp", "ssh"}))
		})

		It("should map schema errors to 424", func() {
			resolver.On("Types").Return(nil, model.NewError(model.ErrorKindSchema, "meta unsupported version v=2"))

			rr := do(http.MethodGet, "/api/identity", "")

			Expect(rr).Should(HaveHTTPStatus(http.StatusFailedDependency))
		})
	})

	Describe("POST encrypt", func() {
		var (
			armored string
			decrypt func(string) string
		)

		BeforeEach(func() {
			key, entity := helpertest.TestPGPKey()
			armored = key
			decrypt = func(msg string) string { return helpertest.DecryptPGP(msg, entity) }
		})

		It("should encrypt to the resolved PGP key", func() {
			resolver.On("Resolve", "pgp").Return(&identity.ResolvedIdentity{
				Type:          "pgp",
				PublicKeyText: armored,
				Fingerprint:   "ABCD",
			}, nil)

			rr := do(http.MethodPost, "/api/identity/encrypt", `{"plaintext":"hello"}`)

			Expect(rr).Should(HaveHTTPStatus(http.StatusOK))

			var res EncryptResult
			Expect(json.NewDecoder(rr.Body).Decode(&res)).Should(Succeed())
			Expect(res.Ciphertext).Should(HavePrefix("-----BEGIN PGP MESSAGE-----"))
			Expect(res.Fingerprint).Should(Equal("ABCD"))
			Expect(decrypt(res.Ciphertext)).Should(Equal("hello"))
		})

		It("should refuse to encrypt if resolution failed", func() {
			resolver.On("Resolve", "pgp").Return(nil, model.NewError(model.ErrorKindConsistency, "DoH answers differ"))

			rr := do(http.MethodPost, "/api/identity/encrypt", `{"plaintext":"hello"}`)

			Expect(rr).Should(HaveHTTPStatus(http.StatusFailedDependency))
			Expect(decodeError(rr).Kind).Should(Equal("consistency"))
		})

		DescribeTable("should reject bad requests",
			func(body string) {
				rr := do(http.MethodPost, "/api/identity/encrypt", body)

				Expect(rr).Should(HaveHTTPStatus(http.StatusBadRequest))
				Expect(decodeError(rr).Error).Should(HavePrefix("✖ "))
				resolver.AssertNotCalled(GinkgoT(), "Resolve", mock.Anything)
			},
			Entry("not JSON", "plaintext=hello"),
			Entry("empty plaintext", `{"plaintext":"  "}`),
			Entry("SSH type", `{"type":"ssh","plaintext":"hello"}`),
		)
	})

	Describe("POST cache flush", func() {
		It("should invalidate the caches", func() {
			resolver.On("Invalidate").Return()

			rr := do(http.MethodPost, "/api/cache/flush", "")

			Expect(rr).Should(HaveHTTPStatus(http.StatusOK))
			resolver.AssertExpectations(GinkgoT())
		})
	})
})
