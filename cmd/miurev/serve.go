package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"syscall"
	"time"

	"github.com/go-training/miurev/pkg/config"

	"github.com/appleboy/graceful"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST gateway",
	Long: `Start the REST gateway on --addr.

Routes: /search, /album/:id, /album/:id/tracks, /artist/:id, /artist/:id/albums,
/track/:id, plus /healthz, /metrics and the MCP endpoint on /mcp.

SIGINT or SIGTERM shut the server down gracefully.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, logger, err := loadConfig(os.Stdout, v)
		if err != nil {
			return err
		}

		g, err := newGateway(cfg, logger)
		if err != nil {
			return err
		}

		m := graceful.NewManager()
		if g.limiter != nil {
			m.AddRunningJob(func(ctx context.Context) error {
				g.limiter.StartJanitor(ctx)
				<-ctx.Done()
				return nil
			})
		}
		runHTTP(m, logger, cfg.Addr, g.router())
		m.AddShutdownJob(func() error {
			logger.Info("Closing backend connections")
			return g.Close()
		})

		<-m.Done()
		return nil
	},
}

func init() {
	flags := serveCmd.Flags()
	flags.String(config.KeyAddr, ":3000", "address to listen on")
	flags.String(config.KeyAppURL, "http://localhost:3000", "public base URL used in paging links")
	flags.Float64(config.KeyRateRPS, 0, "per-client requests per second (0 disables)")
	flags.Int(config.KeyRateBurst, 20, "per-client burst size")
}

// runHTTP registers a running job serving handler on addr. The server is shut
// down when the manager's context is canceled. A listen failure triggers the
// manager's shutdown so the process exits instead of idling.
func runHTTP(m *graceful.Manager, logger *slog.Logger, addr string, handler http.Handler) {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	m.AddRunningJob(func(ctx context.Context) error {
		errCh := make(chan error, 1)
		go func() {
			logger.Info("HTTP server listening", "addr", addr)
			errCh <- srv.ListenAndServe()
		}()

		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			logger.Info("Shutting down HTTP server")
			return srv.Shutdown(shutdownCtx)
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			logger.Error("HTTP server failed", "addr", addr, "error", err)
			if p, perr := os.FindProcess(os.Getpid()); perr == nil {
				_ = p.Signal(syscall.SIGTERM)
			}
			return err
		}
	})
}
