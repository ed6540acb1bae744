package helpertest

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"github.com/onsi/gomega/gcustom"
	"github.com/onsi/gomega/types"

	"github.com/masiarekpl/keypin/log"
	"github.com/masiarekpl/keypin/model"
)

// ConfigFile writes lines to a file in a temp folder of the current spec and returns its path
func ConfigFile(name string, lines ...string) string {
	path := filepath.Join(ginkgo.GinkgoT().TempDir(), name)

	gomega.Expect(os.WriteFile(path, []byte(strings.Join(lines, "\n")), 0o600)).Should(gomega.Succeed())

	return path
}

// TestServer creates temp http server with passed data
func TestServer(data string) *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
		_, err := rw.Write([]byte(data))
		if err != nil {
			log.Log().Fatal("can't write to buffer:", err)
		}
	}))

	ginkgo.DeferCleanup(srv.Close)

	return srv
}

// HaveErrorKind checks that the error chain contains a *model.Error of the given kind
func HaveErrorKind(kind model.ErrorKind) types.GomegaMatcher {
	return gcustom.MakeMatcher(func(err error) (bool, error) {
		var modelErr *model.Error
		if !errors.As(err, &modelErr) {
			return false, nil
		}

		return modelErr.Kind == kind, nil
	}).WithTemplate(
		"Expected:\n{{.Actual}}\n{{.To}} be an error of kind:\n{{format .Data 1}}",
		kind.String(),
	)
}

// HaveErrorField checks that the first *model.Error in the chain refers to the given record field
func HaveErrorField(field string) types.GomegaMatcher {
	return gomega.WithTransform(func(err error) string {
		var modelErr *model.Error
		if errors.As(err, &modelErr) {
			return modelErr.Field
		}

		return ""
	}, gomega.Equal(field))
}
