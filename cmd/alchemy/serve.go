package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	httpadapter "svw.info/alchemy/internal/adapters/http"
	"svw.info/alchemy/internal/clock"
	"svw.info/alchemy/web"
)

const sweepInterval = time.Minute

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the browser client and the JSON/websocket API",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides server.addr)")
}

func runServe(cmd *cobra.Command, args []string) error {
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}
	uc, err := newService()
	if err != nil {
		return err
	}

	mux := http.NewServeMux()
	web.Register(mux, "Alchemy")
	httpadapter.New(uc, logger).Register(mux)

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           httpadapter.RequestLogger(logger, mux),
		ReadHeaderTimeout: cfg.GetReadHeaderTimeout(),
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("listening",
			zap.String("addr", cfg.Server.Addr),
			zap.String("data_dir", cfg.Storage.DataDir),
			zap.String("levels_dir", cfg.Storage.LevelsDir))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		logger.Info("shutting down")
		return srv.Shutdown(shutdown)
	})
	g.Go(func() error {
		loop := clock.Loop{Interval: cfg.GetTickInterval()}
		return ignoreCanceled(loop.Run(ctx, func(now time.Time) { uc.TickAll(now) }))
	})
	g.Go(func() error {
		loop := clock.Loop{Interval: sweepInterval}
		return ignoreCanceled(loop.Run(ctx, func(now time.Time) { uc.Sweep(ctx, now) }))
	})

	return g.Wait()
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
