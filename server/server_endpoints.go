package server

import (
	"html/template"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"

	"github.com/masiarekpl/keypin/api"
	"github.com/masiarekpl/keypin/config"
	"github.com/masiarekpl/keypin/identity"
	"github.com/masiarekpl/keypin/log"
	"github.com/masiarekpl/keypin/metrics"
	"github.com/masiarekpl/keypin/util"
	"github.com/masiarekpl/keypin/web"
)

func createRouter(cfg *config.Config, resolver *identity.Resolver) *chi.Mux {
	router := chi.NewRouter()

	configureCorsHandler(cfg, router)

	router.Use(middleware.Recoverer, middleware.RequestID, requestLogger)

	configureDebugHandler(router)

	configureRootHandler(cfg, router)

	api.RegisterEndpoint(router, resolver)

	metrics.Start(router, cfg.Prometheus)

	return router
}

func configureRootHandler(cfg *config.Config, router *chi.Mux) {
	t := template.Must(template.New("index").Parse(web.IndexTmpl))

	router.Get("/", func(writer http.ResponseWriter, request *http.Request) {
		type HandlerLink struct {
			URL   string
			Title string
		}

		type PageData struct {
			Links      []HandlerLink
			MetaDomain string
			Version    string
			BuildTime  string
		}
		pd := PageData{
			MetaDomain: cfg.Identity.MetaDomain,
			Version:    util.Version,
			BuildTime:  util.BuildTime,
		}
		pd.Links = []HandlerLink{
			{
				URL:   api.PathIdentities,
				Title: "Published identity types",
			},
			{
				URL:   identityPath(identity.TypePGP),
				Title: "PGP identity",
			},
			{
				URL:   identityPath(identity.TypePGP) + "/key",
				Title: "PGP public key",
			},
			{
				URL:   identityPath(identity.TypeSSH),
				Title: "SSH identity",
			},
			{
				URL:   "/debug/",
				Title: "Go Profiler",
			},
		}

		if cfg.Prometheus.Enable {
			pd.Links = append(pd.Links, HandlerLink{
				URL:   cfg.Prometheus.Path,
				Title: "Prometheus endpoint",
			})
		}

		err := t.Execute(writer, pd)
		if err != nil {
			log.Log().Error("can't write index template: ", err)
			writer.WriteHeader(http.StatusInternalServerError)
		}
	})
}

// requestLogger stores a logger with the request id in the request context
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
		ctx, _ := log.NewCtx(req.Context(), logger().WithFields(logrus.Fields{
			"request_id": middleware.GetReqID(req.Context()),
			"path":       log.EscapeInput(req.URL.Path),
		}))

		next.ServeHTTP(rw, req.WithContext(ctx))
	})
}

func identityPath(typ string) string {
	return strings.Replace(api.PathIdentity, "{type}", typ, 1)
}

func configureDebugHandler(router *chi.Mux) {
	router.Mount("/debug", middleware.Profiler())
}

func configureCorsHandler(cfg *config.Config, router *chi.Mux) {
	origins := cfg.Ports.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	crs := cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	})
	router.Use(crs.Handler)
}
