package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/imedia765/a-051853/internal/bootstrap"
	"github.com/imedia765/a-051853/internal/logger"
)

const shutdownTimeout = 15 * time.Second

// httpServer is the part of *http.Server that Run drives.
type httpServer interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
	Close() error
	Addr() string
}

type realServer struct{ *http.Server }

func (r realServer) Addr() string { return r.Server.Addr }

type serverBuilder func() (httpServer, func(), error)

// serve starts srv in the background; the channel only ever carries a real listener failure.
func serve(srv httpServer, lg zerolog.Logger) <-chan error {
	failed := make(chan error, 1)
	go func() {
		lg.Info().Str("addr", srv.Addr()).Msg("member dashboard api listening")
		err := srv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			failed <- err
		}
	}()
	return failed
}

// Run returns the process exit code: 0 after a signal-driven shutdown,
// 1 when bootstrap or the listener fails.
func Run(build serverBuilder, sigCh <-chan os.Signal, lg zerolog.Logger) int {
	srv, cleanup, err := build()
	if err != nil {
		lg.Error().Err(err).Msg("bootstrap failed")
		return 1
	}
	defer cleanup()

	select {
	case err := <-serve(srv, lg):
		lg.Error().Err(err).Msg("listener stopped unexpectedly")
		return 1
	case sig := <-sigCh:
		lg.Info().Stringer("signal", sig).Msg("draining connections")
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		lg.Warn().Err(err).Dur("timeout", shutdownTimeout).Msg("drain incomplete, closing remaining connections")
		_ = srv.Close()
	}
	lg.Info().Msg("stopped")
	return 0
}

func buildFromBootstrap() (httpServer, func(), error) {
	srv, cleanup, err := bootstrap.NewServer()
	if err != nil {
		return nil, nil, err
	}
	return realServer{srv}, cleanup, nil
}

func main() {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()
	logger.Init()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	os.Exit(Run(buildFromBootstrap, sigCh, logger.Logger))
}
