package cmd

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"

	"github.com/sirupsen/logrus/hooks/test"

	"github.com/masiarekpl/keypin/log"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Cache command", func() {
	var (
		ts         *httptest.Server
		status     int
		path       string
		loggerHook *test.Hook
	)

	JustBeforeEach(func() {
		ts = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path = r.Method + " " + r.URL.Path
			w.WriteHeader(status)
		}))
		DeferCleanup(ts.Close)

		u, err := url.Parse(ts.URL)
		Expect(err).Should(Succeed())

		port, err := strconv.ParseUint(u.Port(), 10, 16)
		Expect(err).Should(Succeed())

		apiHost = u.Hostname()
		apiPort = uint16(port)
	})

	BeforeEach(func() {
		status = http.StatusOK
		loggerHook = test.NewGlobal()
		log.Log().AddHook(loggerHook)
		DeferCleanup(loggerHook.Reset)
	})

	Describe("flush cache", func() {
		When("flush cache is called via REST", func() {
			It("should flush caches", func() {
				Expect(flushCache(newCacheCommand(), []string{})).Should(Succeed())
				Expect(path).Should(Equal("POST /api/cache/flush"))
				Expect(loggerHook.LastEntry().Message).Should(Equal("OK"))
			})
		})

		When("the server fails", func() {
			It("should end with error", func() {
				status = http.StatusInternalServerError

				err := flushCache(newCacheCommand(), []string{})
				Expect(err).Should(MatchError(ContainSubstring("500")))
			})
		})

		When("Wrong url is used", func() {
			It("Should end with error", func() {
				apiPort = 0
				err := flushCache(newCacheCommand(), []string{})
				Expect(err).Should(HaveOccurred())
				Expect(err.Error()).Should(ContainSubstring("connection refused"))
			})
		})
	})
})
