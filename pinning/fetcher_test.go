package pinning

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/masiarekpl/keypin/evt"
	"github.com/masiarekpl/keypin/model"
)

const keyText = "-----BEGIN PGP PUBLIC KEY BLOCK-----\n\nmDMEZ...\n-----END PGP PUBLIC KEY BLOCK-----\n"

var _ = Describe("HTTPFetcher", func() {
	var (
		server  *httptest.Server
		body    []byte
		status  int
		headers http.Header
		sut     *HTTPFetcher
		ctx     context.Context
	)

	BeforeEach(func() {
		body = []byte(keyText)
		status = http.StatusOK

		server = httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			headers = r.Header.Clone()
			w.WriteHeader(status)
			_, _ = w.Write(body)
		}))
		DeferCleanup(server.Close)

		sut = NewFetcher(WithTransport(server.Client().Transport), WithTimeout(time.Second))
		ctx = context.Background()
	})

	Describe("Digest", func() {
		It("should return the lower case hex SHA-256", func() {
			Expect(Digest([]byte("abc"))).Should(
				Equal("ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"))
		})
	})

	When("the digest matches", func() {
		It("should return the body unmodified", func() {
			body = []byte{0x00, 0xff, 0x10, '\r', '\n'}

			doc, err := sut.FetchPinnedBytes(ctx, server.URL+"/bin", Digest(body), "binary")
			Expect(err).Should(Succeed())

			Expect(doc.Body).Should(Equal(body))
			Expect(doc.SHA256).Should(Equal(Digest(body)))
			Expect(doc.URL).Should(Equal(server.URL + "/bin"))
		})

		It("should return the text and bypass caches", func() {
			text, err := sut.FetchPinned(ctx, server.URL+"/key.asc", Digest(body), "public key")
			Expect(err).Should(Succeed())

			Expect(text).Should(Equal(keyText))
			Expect(headers.Get("Cache-Control")).Should(Equal("no-cache"))
			Expect(headers.Get("Pragma")).Should(Equal("no-cache"))
		})

		It("should compare the digest case-insensitively", func() {
			_, err := sut.FetchPinned(ctx, server.URL+"/key.asc", " "+strings.ToUpper(Digest(body))+" ", "public key")
			Expect(err).Should(Succeed())
		})
	})

	When("the digest does not match", func() {
		It("should fail with an integrity error", func() {
			failures := make(chan string, 1)
			handler := func(url string) {
				failures <- url
			}

			Expect(evt.Bus().Subscribe(evt.PinVerificationFailed, handler)).Should(Succeed())
			DeferCleanup(evt.Bus().Unsubscribe, evt.PinVerificationFailed, handler)

			pinned := Digest([]byte("the published key"))

			doc, err := sut.FetchPinnedBytes(ctx, server.URL+"/key.asc", pinned, "public key")
			Expect(doc).Should(BeNil())
			Expect(errors.Is(err, model.ErrIntegrity)).Should(BeTrue())
			Expect(err).Should(MatchError("public key SHA256 mismatch (pin failed)"))

			var modelErr *model.Error
			Expect(errors.As(err, &modelErr)).Should(BeTrue())
			Expect(modelErr.Expected).Should(Equal(pinned))
			Expect(modelErr.Actual).Should(Equal(Digest(body)))
			Expect(modelErr.Retryable()).Should(BeFalse())

			Eventually(failures).Should(Receive(Equal(server.URL + "/key.asc")))
		})
	})

	DescribeTable("rejected input",
		func(url func() string, pin string, kind error, message string) {
			_, err := sut.FetchPinned(ctx, url(), pin, "schemas")
			Expect(errors.Is(err, kind)).Should(BeTrue())
			Expect(err).Should(MatchError(ContainSubstring(message)))
		},
		Entry("plain http", func() string { return strings.Replace(server.URL, "https", "http", 1) },
			strings.Repeat("a", 64), model.ErrFormat, "only https:// URLs are allowed"),
		Entry("relative URL", func() string { return "/key.asc" },
			strings.Repeat("a", 64), model.ErrFormat, "only https:// URLs are allowed"),
		Entry("short pin", func() string { return server.URL },
			"abcd", model.ErrFormat, "schemas SHA256 pin must be 64 hex characters"),
		Entry("non hex pin", func() string { return server.URL },
			strings.Repeat("z", 64), model.ErrFormat, "must be 64 hex characters"),
	)

	When("the server returns an error status", func() {
		It("should fail with a transport error even if the digest matches", func() {
			status = http.StatusNotFound

			_, err := sut.FetchPinned(ctx, server.URL+"/key.asc", Digest(body), "public key")
			Expect(errors.Is(err, model.ErrTransport)).Should(BeTrue())
			Expect(err).Should(MatchError(ContainSubstring("HTTP 404 fetching")))
		})
	})

	When("the body is too large", func() {
		It("should fail with a format error", func() {
			sut = NewFetcher(WithTransport(server.Client().Transport), WithMaxSize(8))

			_, err := sut.FetchPinned(ctx, server.URL+"/key.asc", Digest(body), "public key")
			Expect(errors.Is(err, model.ErrFormat)).Should(BeTrue())
			Expect(err).Should(MatchError(ContainSubstring("exceeds the size limit of 8 bytes")))
		})
	})

	When("the server can't be reached", func() {
		It("should fail with a retryable transport error", func() {
			url := server.URL
			server.Close()

			_, err := sut.FetchPinned(ctx, url+"/key.asc", Digest(body), "public key")
			Expect(errors.Is(err, model.ErrTransport)).Should(BeTrue())

			var modelErr *model.Error
			Expect(errors.As(err, &modelErr)).Should(BeTrue())
			Expect(modelErr.Retryable()).Should(BeTrue())
		})
	})
})

var _ = DescribeTable("matchesPin",
	func(actual, expected string, match bool) {
		Expect(matchesPin(actual, expected)).Should(Equal(match))
	},
	Entry("same digest", Digest([]byte("key")), Digest([]byte("key")), true),
	Entry("different digest of same length", Digest([]byte("key")), Digest([]byte("other")), false),
	Entry("prefix of the digest", Digest([]byte("key")), Digest([]byte("key"))[:32], false),
	Entry("empty pin", Digest([]byte("key")), "", false),
)
