package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vecfs-dev/vecfs/internal/httpapi"
)

func apiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "api",
		Short: "Start the HTTP/JSON API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			disp := newDispatcher(logger)
			defer func() { _ = disp.Store.Close() }()

			srv := httpapi.NewServer(disp, logger, cfg.API.AuthToken)

			httpSrv := &http.Server{
				Addr:    cfg.API.ListenAddr,
				Handler: srv.Handler(),
			}

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

			errCh := make(chan error, 1)
			go func() {
				logger.Info("vecfs: HTTP API server starting", "addr", cfg.API.ListenAddr)
				if listenErr := httpSrv.ListenAndServe(); listenErr != nil && listenErr != http.ErrServerClosed {
					errCh <- fmt.Errorf("api: HTTP server: %w", listenErr)
				}
				close(errCh)
			}()

			select {
			case sig := <-sigCh:
				logger.Info("shutting down", "signal", sig)
			case startErr := <-errCh:
				if startErr != nil {
					return startErr
				}
				return nil
			}

			const shutdownTimeout = 10 * time.Second
			if shutdownErr := httpapi.Shutdown(httpSrv, shutdownTimeout); shutdownErr != nil {
				return fmt.Errorf("api: graceful shutdown: %w", shutdownErr)
			}

			if startErr := <-errCh; startErr != nil {
				return startErr
			}

			return nil
		},
	}
}
