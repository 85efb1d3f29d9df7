package common

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// ShutdownHook is a function executed after a termination signal is received
// but before the HTTP server begins its graceful shutdown. If a hook returns
// an error it will be logged; shutdown continues regardless.
type ShutdownHook func(ctx context.Context) error

// RunServerWithShutdown starts server and blocks until SIGINT or SIGTERM is
// received, then runs the hooks in order and shuts the server down within
// shutdownTimeout.
func RunServerWithShutdown(logger *zap.Logger, server *http.Server, name string, shutdownTimeout, hookTimeout time.Duration, hooks ...ShutdownHook) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return Serve(ctx, logger, server, name, shutdownTimeout, hookTimeout, hooks...)
}

// Serve is RunServerWithShutdown with the shutdown trigger supplied by the
// caller: the server stops when ctx is done.
func Serve(ctx context.Context, logger *zap.Logger, server *http.Server, name string, shutdownTimeout, hookTimeout time.Duration, hooks ...ShutdownHook) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	if hookTimeout <= 0 {
		hookTimeout = 5 * time.Second
	}
	logger = logger.With(zap.String("server", name))

	ln, err := net.Listen("tcp", server.Addr)
	if err != nil {
		return err
	}
	return serveListener(ctx, logger, server, ln, shutdownTimeout, hookTimeout, hooks)
}

func serveListener(ctx context.Context, logger *zap.Logger, server *http.Server, ln net.Listener, shutdownTimeout, hookTimeout time.Duration, hooks []ShutdownHook) error {
	serveErr := make(chan error, 1)
	go func() {
		logger.Info("starting server", zap.String("addr", ln.Addr().String()))
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			logger.Error("listen error", zap.Error(err))
			return err
		}
		return nil
	case <-ctx.Done():
	}
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	for i, h := range hooks {
		if h == nil {
			continue
		}
		hCtx, hCancel := context.WithTimeout(shutdownCtx, hookTimeout)
		if err := h(hCtx); err != nil {
			logger.Warn("shutdown hook failed", zap.Int("hook", i), zap.Error(err))
		}
		if errors.Is(hCtx.Err(), context.DeadlineExceeded) {
			logger.Warn("shutdown hook timed out", zap.Int("hook", i))
		}
		hCancel()
	}

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
		return err
	}
	logger.Info("shutdown complete")
	return nil
}

// TimeoutConfig holds server and shutdown related timeouts (all durations).
type TimeoutConfig struct {
	ReadHeader time.Duration
	Read       time.Duration
	Write      time.Duration
	Idle       time.Duration
	Shutdown   time.Duration
	Hook       time.Duration
}

// LoadTimeoutConfig reads environment variables (if present) to override defaults.
// Each env var is parsed as an integer number of seconds. If parsing fails or value <=0,
// the provided default is retained.
// Env variables:
//
//	READ_HEADER_TIMEOUT
//	READ_TIMEOUT
//	WRITE_TIMEOUT
//	IDLE_TIMEOUT
//	SHUTDOWN_TIMEOUT
//	HOOK_TIMEOUT
func LoadTimeoutConfig(defaults TimeoutConfig) TimeoutConfig {
	apply := func(curr *time.Duration, env string) {
		if v := os.Getenv(env); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				*curr = time.Duration(n) * time.Second
			}
		}
	}
	apply(&defaults.ReadHeader, "READ_HEADER_TIMEOUT")
	apply(&defaults.Read, "READ_TIMEOUT")
	apply(&defaults.Write, "WRITE_TIMEOUT")
	apply(&defaults.Idle, "IDLE_TIMEOUT")
	apply(&defaults.Shutdown, "SHUTDOWN_TIMEOUT")
	apply(&defaults.Hook, "HOOK_TIMEOUT")
	return defaults
}

// NewServerWithTimeouts attaches timeout settings to an existing *http.Server or creates a new one if nil.
func NewServerWithTimeouts(base *http.Server, cfg TimeoutConfig) *http.Server {
	if base == nil {
		base = &http.Server{}
	}
	base.ReadHeaderTimeout = cfg.ReadHeader
	base.ReadTimeout = cfg.Read
	base.WriteTimeout = cfg.Write
	base.IdleTimeout = cfg.Idle
	return base
}
