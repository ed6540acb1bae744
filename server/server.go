package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"runtime"
	"runtime/debug"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/masiarekpl/keypin/config"
	"github.com/masiarekpl/keypin/identity"
	"github.com/masiarekpl/keypin/log"
	"github.com/masiarekpl/keypin/resolutionlog"
)

// Server serves the keys API of an identity resolver
type Server struct {
	cfg      *config.Config
	resolver *identity.Resolver
	auditLog resolutionlog.Writer
	router   *chi.Mux
	listener net.Listener
	http     *httpServer
	stats    *resolutionStats
}

func logger() *logrus.Entry {
	return log.PrefixedLog("server")
}

// NewServer creates new server instance with passed config.
// Caches and the resolution log clean up run until ctx is done.
func NewServer(ctx context.Context, cfg *config.Config, options ...identity.Option) (*Server, error) {
	target, err := resolutionlog.NewWriter(cfg.ResolutionLog)
	if err != nil {
		return nil, fmt.Errorf("can't create resolution log: %w", err)
	}

	// requests must not wait for the database
	auditLog := resolutionlog.NewAsyncWriter(ctx, target)

	options = append([]identity.Option{identity.WithAuditLog(auditLog)}, options...)

	resolver, err := identity.NewResolver(ctx, cfg, options...)
	if err != nil {
		return nil, fmt.Errorf("can't create identity resolver: %w", err)
	}

	listener, err := net.Listen("tcp", cfg.Ports.HTTP)
	if err != nil {
		return nil, fmt.Errorf("start http listener on %s failed: %w", cfg.Ports.HTTP, err)
	}

	s := &Server{
		cfg:      cfg,
		resolver: resolver,
		auditLog: auditLog,
		listener: listener,
		stats:    newResolutionStats(),
	}

	s.router = createRouter(cfg, resolver)
	s.http = newHTTPServer("http", s.router)

	s.printConfiguration()

	return s, nil
}

// Addr returns the address the keys API listens on
func (s *Server) Addr() string {
	return s.listener.Addr().String()
}

// Start serves the keys API until ctx is done or Stop is called
func (s *Server) Start(ctx context.Context, errCh chan<- error) {
	logger().Info("Starting server")

	go resolutionlog.PeriodicCleanUp(ctx, s.auditLog)

	go func() {
		logger().Infof("%s server is up and running on addr/port %s", s.http, s.Addr())

		if err := s.http.Serve(ctx, s.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("start %s listener failed: %w", s.http, err)
		}
	}()

	registerPrintConfigurationTrigger(ctx, s)
}

// Stop stops the server
func (s *Server) Stop(ctx context.Context) error {
	logger().Info("Stopping server")

	s.stats.close()

	if err := s.http.Shutdown(ctx); err != nil {
		return fmt.Errorf("stop %s listener failed: %w", s.http, err)
	}

	return nil
}

func (s *Server) printConfiguration() {
	logger().Info("current configuration:")

	s.cfg.LogConfig(logger())

	logger().Infof("-> resolver: %s", s.resolver)
	logger().Infof("   cached identities: %d", s.resolver.CachedIdentities())

	s.stats.logTo(logger())

	logger().Info("runtime information:")

	// force garbage collector
	runtime.GC()
	debug.FreeOSMemory()

	// gather memory stats
	var m runtime.MemStats

	runtime.ReadMemStats(&m)

	logger().Infof("MEM Alloc =        %10v MB", toMB(m.Alloc))
	logger().Infof("MEM HeapAlloc =    %10v MB", toMB(m.HeapAlloc))
	logger().Infof("MEM Sys =          %10v MB", toMB(m.Sys))
	logger().Infof("MEM NumGC =        %10v", m.NumGC)
	logger().Infof("RUN NumCPU =       %10d", runtime.NumCPU())
	logger().Infof("RUN NumGoroutine = %10d", runtime.NumGoroutine())
}

func toMB(b uint64) uint64 {
	const bytesInKB = 1024

	return b / bytesInKB / bytesInKB
}
