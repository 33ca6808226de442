/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	httpapi "github.com/HamedShams/linear-pulse/internal/http"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP admin server",
	Long: `Serve the admin API:
  GET  /healthz
  GET  /admin/last-run
  GET  /admin/preview
  POST /admin/run?channel=...&dry_run=true`,
	RunE: serve,
}

func serve(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd.Context(), true)
	if err != nil {
		return err
	}
	defer a.Close()

	router := httpapi.NewRouter(a.cfg, a.log, a.svc)
	srv := &http.Server{Addr: a.cfg.HTTPAddr, Handler: router, ReadHeaderTimeout: 10 * time.Second}

	// graceful shutdown
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	a.log.Info().Str("addr", a.cfg.HTTPAddr).Msg("http server listening")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case <-sigCh:
		a.log.Info().Msg("shutting down...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error().Err(err).Msg("http server error")
			return err
		}
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}
