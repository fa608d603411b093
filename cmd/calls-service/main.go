package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/avoca-hq/calls-service/internal/dotenv"
	"github.com/avoca-hq/calls-service/pkg/coordinator/config"
	coordserver "github.com/avoca-hq/calls-service/pkg/coordinator/server"
)

type serviceDeps struct {
	loadConfig     func() (config.Config, error)
	newCoordinator func(config.Config, *slog.Logger) *coordserver.Server
	signalNotify   func(chan<- os.Signal, ...os.Signal)
	signalStop     func(chan<- os.Signal)
}

func defaultServiceDeps() serviceDeps {
	return serviceDeps{
		loadConfig:     config.LoadFromEnv,
		newCoordinator: coordserver.New,
		signalNotify: func(c chan<- os.Signal, sig ...os.Signal) {
			signal.Notify(c, sig...)
		},
		signalStop: signal.Stop,
	}
}

func buildHTTPServer(cfg config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

func runService(ctx context.Context, logger *slog.Logger, deps serviceDeps) error {
	if deps.loadConfig == nil {
		return errors.New("missing loadConfig dependency")
	}
	if deps.newCoordinator == nil {
		return errors.New("missing newCoordinator dependency")
	}
	if deps.signalNotify == nil || deps.signalStop == nil {
		return errors.New("missing signal dependency")
	}
	if logger == nil {
		logger = slog.Default()
	}

	cfg, err := deps.loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	coord := deps.newCoordinator(cfg, logger)
	httpSrv := buildHTTPServer(cfg, coord.Handler())

	logger.Info("starting calls service", "addr", cfg.Addr, "call_interval", cfg.CallInterval)

	driverCtx, driverCancel := context.WithCancel(ctx)
	defer driverCancel()
	driverDone := make(chan struct{})
	go func() {
		defer close(driverDone)
		coord.RunDriver(driverCtx)
	}()

	listenErrCh := make(chan error, 1)
	go func() {
		err := httpSrv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			listenErrCh <- err
			return
		}
		listenErrCh <- nil
	}()

	sigCh := make(chan os.Signal, 1)
	deps.signalNotify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer deps.signalStop(sigCh)

	select {
	case err := <-listenErrCh:
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case sig := <-sigCh:
		logger.Info("shutdown signal received", "signal", sig.String())
	}

	// Stop originating new calls, let in-flight ones finish, then cancel
	// whatever is left before tearing down the listener.
	coord.StartDraining()

	waitCtx, waitCancel := context.WithTimeout(context.Background(), cfg.ShutdownGracePeriod)
	defer waitCancel()
	if !coord.WaitForCalls(waitCtx) {
		logger.Warn("in-flight calls did not drain before grace period, cancelling")
	}
	driverCancel()
	<-driverDone

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownGracePeriod)
	defer shutdownCancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}

	if err := <-listenErrCh; err != nil {
		return fmt.Errorf("serve: %w", err)
	}

	logger.Info("calls service stopped")
	return nil
}

func runMain(ctx context.Context, stderr io.Writer, deps serviceDeps) int {
	if stderr == nil {
		stderr = os.Stderr
	}
	logger := slog.New(slog.NewTextHandler(stderr, nil))

	if err := dotenv.LoadFile(".env"); err != nil {
		fmt.Fprintf(stderr, "calls-service: %v\n", err)
		return 1
	}

	if err := runService(ctx, logger, deps); err != nil {
		fmt.Fprintf(stderr, "calls-service: %v\n", err)
		return 1
	}
	return 0
}

func main() {
	os.Exit(runMain(context.Background(), os.Stderr, defaultServiceDeps()))
}
