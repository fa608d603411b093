package server

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/avoca-hq/calls-service/pkg/coordinator/auth"
	"github.com/avoca-hq/calls-service/pkg/coordinator/broadcast"
	"github.com/avoca-hq/calls-service/pkg/coordinator/call"
	"github.com/avoca-hq/calls-service/pkg/coordinator/config"
	"github.com/avoca-hq/calls-service/pkg/coordinator/driver"
	"github.com/avoca-hq/calls-service/pkg/coordinator/handlers"
	"github.com/avoca-hq/calls-service/pkg/coordinator/lifecycle"
	"github.com/avoca-hq/calls-service/pkg/coordinator/mw"
	"github.com/avoca-hq/calls-service/pkg/coordinator/record"
	"github.com/avoca-hq/calls-service/pkg/coordinator/registry"
)

// Server owns the coordinator's shared state: the operator registry, the
// active call table, and the driver that originates calls against them.
type Server struct {
	cfg    config.Config
	logger *slog.Logger
	mux    *http.ServeMux

	registry    *registry.Registry
	table       *call.Table
	broadcaster *broadcast.Broadcaster
	records     *record.Client
	lifecycle   *lifecycle.Lifecycle
	driver      *driver.Driver
}

func New(cfg config.Config, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	httpClient := &http.Client{
		Timeout: 30 * time.Second,
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout: 10 * time.Second,
			}).DialContext,
			ForceAttemptHTTP2:   true,
			MaxIdleConns:        100,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
		},
	}

	s := &Server{
		cfg:    cfg,
		logger: logger,
		mux:    http.NewServeMux(),

		registry:  registry.New(),
		table:     call.NewTable(),
		records:   record.NewClient(cfg.APIBaseURL, cfg.APIKey, httpClient),
		lifecycle: &lifecycle.Lifecycle{},
	}
	s.broadcaster = broadcast.New(s.registry, s.table, logger)
	s.driver = driver.New(driver.Options{
		Logger:           logger,
		Table:            s.table,
		Broadcaster:      s.broadcaster,
		Records:          s.records,
		Lifecycle:        s.lifecycle,
		MinTokenInterval: cfg.MinTokenInterval,
		MaxTokenInterval: cfg.MaxTokenInterval,
		CallInterval:     cfg.CallInterval,
	})

	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.Handle("/healthz", handlers.HealthHandler{})
	s.mux.Handle("/readyz", handlers.ReadyHandler{
		Lifecycle: s.lifecycle,
		Registry:  s.registry,
		Table:     s.table,
	})

	s.mux.Handle("/", handlers.WSHandler{
		Logger:       s.logger,
		Verifier:     auth.NewJWTVerifier(s.cfg.AccessTokenSecret),
		Registry:     s.registry,
		Table:        s.table,
		Broadcaster:  s.broadcaster,
		Records:      s.records,
		WriteTimeout: s.cfg.WSWriteTimeout,
		PingInterval: s.cfg.WSPingInterval,
	})
}

func (s *Server) Handler() http.Handler {
	var h http.Handler = s.mux
	h = mw.Recover(s.logger, h)
	h = mw.AccessLog(s.logger, h)
	h = mw.RequestID(h)
	return h
}

// RunDriver originates simulated calls until ctx is cancelled.
func (s *Server) RunDriver(ctx context.Context) {
	s.driver.Run(ctx)
}

// StartDraining stops new call origination. Calls already in flight run
// to completion; WaitForCalls observes them.
func (s *Server) StartDraining() {
	s.lifecycle.SetDraining(true)
}

// WaitForCalls blocks until every in-flight call has completed or ctx
// expires. It reports whether the drain finished cleanly.
func (s *Server) WaitForCalls(ctx context.Context) bool {
	return s.driver.Wait(ctx)
}
