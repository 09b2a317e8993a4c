// ABOUTME: serve command: runs the board HTTP API until SIGINT or SIGTERM, then shuts down gracefully.
// ABOUTME: The listener and the shutdown watcher run in one errgroup so either failure stops both.
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/2389-research/gridhq/board/server"
	"github.com/2389-research/gridhq/web"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// shutdownTimeout bounds how long in-flight requests get after a signal.
const shutdownTimeout = 10 * time.Second

func newServeCmd(a *app) *cobra.Command {
	var bind string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the board JSON API",
		Long: `Starts the HTTP API on GRIDHQ_BIND (default 127.0.0.1:8787).

Binding to a non-loopback address requires GRIDHQ_ALLOW_REMOTE=true and
either GRIDHQ_API_TOKEN or GRIDHQ_ALLOWED_EMAILS.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if bind != "" {
				a.cfg.Bind = bind
				if err := a.cfg.Validate(); err != nil {
					return err
				}
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx)
		},
	}
	cmd.Flags().StringVar(&bind, "bind", "", "listen address, overrides GRIDHQ_BIND")
	return cmd
}

func (a *app) serve(ctx context.Context) error {
	board, err := a.openBoard(ctx)
	if err != nil {
		return err
	}

	identity := server.NewIdentityProvider(a.cfg)
	if identity.Open() {
		a.logger.Warn("no API token or email allowlist configured; every request is admitted",
			zap.String("component", "cli.serve"))
	}

	srv, err := web.NewServer(web.ServerConfig{
		Addr:     a.cfg.Bind,
		Version:  a.version(),
		Board:    board,
		Identity: identity,
		Pinger:   a.db,
		Logger:   a.logger,
		Now:      a.now,
	})
	if err != nil {
		return err
	}
	httpSrv := srv.HTTPServer()

	ln, err := net.Listen("tcp", httpSrv.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", httpSrv.Addr, err)
	}
	addr := ln.Addr().String()
	a.logger.Info("gridhq listening",
		zap.String("component", "cli.serve"),
		zap.String("addr", addr),
		zap.String("db", a.cfg.DBPath),
		zap.Bool("attachments", board.AttachmentsEnabled()))
	if a.onListen != nil {
		a.onListen(addr)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := httpSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.logger.Info("shutting down", zap.String("component", "cli.serve"))
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})
	return g.Wait()
}
