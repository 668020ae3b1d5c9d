package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jward/grove/internal/server"
	"github.com/jward/grove/internal/watch"
)

var (
	flagAddr  string
	flagWatch bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the tree API and the front-end over HTTP",
	Long:  "Loads the dataset and serves the search, expand, similar and parents endpoints, plus reload, health, stats and Prometheus metrics. With --watch the dataset is reloaded whenever its file changes.",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagAddr, "addr", "", "listen address (overrides config)")
	serveCmd.Flags().BoolVar(&flagWatch, "watch", false, "reload the dataset when its file changes (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	if cmd.Flags().Changed("addr") {
		cfg.Server.Addr = flagAddr
	}
	if cmd.Flags().Changed("watch") {
		cfg.Dataset.Watch = flagWatch
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := slog.Default()
	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine, err := openEngine()
	if err != nil {
		return err
	}
	h := server.NewHandlers(engine, logger)
	srv := server.New(cfg.Server.Addr, server.NewRouter(h, cfg.Server.PublicDir), cfg.Server.ShutdownTimeout, logger)

	var w *watch.Watcher
	if cfg.Dataset.Watch {
		w, err = watch.New(cfg.Dataset.Path, h.Reload, &watch.Options{
			Debounce: cfg.Dataset.Debounce,
			Logger:   logger.With("component", "watch"),
		})
		if err != nil {
			return fmt.Errorf("watching dataset: %w", err)
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Run(gctx) })
	if w != nil {
		g.Go(func() error { return w.Run(gctx) })
	}
	return g.Wait()
}
