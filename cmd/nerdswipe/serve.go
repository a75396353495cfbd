// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/nerdswipe/internal/engine"
	"github.com/pdiddy/nerdswipe/internal/server"
	"github.com/pdiddy/nerdswipe/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the anti-recommendation HTTP API",
	Long: `Serve starts the JSON API over the knowledge base:

  GET /api/v1/health
  GET /api/v1/wikipedia/initial
  GET /api/v1/wikipedia/next?record_key=<key>
  GET /api/v1/wikipedia/previous
  GET /api/v1/wikipedia/current
  GET /api/v1/records?q=<query>&category=<text>&limit=<n>
  GET /api/v1/records/<key>
  GET /api/v1/history?limit=<n>
  GET /metrics

Navigation state is shared by all clients. Every generation is recorded in
the history table. The server stops on SIGINT or SIGTERM.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := store.NewStore(cfg.Store)
	if err != nil {
		return err
	}
	defer st.Close()

	rec, err := newRecommender(ctx, cfg.Recommender, st)
	if err != nil {
		return err
	}

	eng := engine.New(st, rec, engine.WithHistory(st), engine.WithLogger(logger))

	if !verbose {
		gin.SetMode(gin.ReleaseMode)
	}
	srv := server.NewServer(cfg.Server.Addr, st, eng, logger)
	if err := srv.Start(); err != nil {
		return err
	}

	<-ctx.Done()
	logger.Info("shutting down", zap.String("addr", srv.Addr()))
	return srv.Stop()
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default server.addr, 127.0.0.1:8080)")
	_ = viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))

	rootCmd.AddCommand(serveCmd)
}
