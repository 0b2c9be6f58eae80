package main

import (
	"net"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/docshard/internal/config"
	"github.com/jackzampolin/docshard/internal/engine"
	"github.com/jackzampolin/docshard/internal/server"
)

var (
	serveHost string
	servePort string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the docshard HTTP server",
	Long: `Start the HTTP server exposing the chunking pipeline:

  POST /v0/plan       analyze a document and materialize chunks
  POST /v0/aggregate  merge per-chunk results
  POST /v0/cleanup    remove chunk artifacts
  GET  /health        health check`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		logger := newLogger()

		h, err := loadHome()
		if err != nil {
			return err
		}
		cm, err := loadConfig(h)
		if err != nil {
			return err
		}
		cm.OnChange(func(cfg *config.Config) {
			logger.Info("configuration reloaded", "provider", cfg.Provider.Type)
		})
		cm.WatchConfig()

		cfg := cm.Get()
		host, port := serveHost, servePort
		if host == "" || port == "" {
			if cfgHost, cfgPort, err := net.SplitHostPort(cfg.Server.Addr); err == nil {
				if host == "" {
					host = cfgHost
				}
				if port == "" {
					port = cfgPort
				}
			}
		}

		eng := engine.New(h, buildProcessor(cfg, logger), logger)
		srv, err := server.New(server.Config{
			Host:    host,
			Port:    port,
			Planner: eng,
			Logger:  logger,
		})
		if err != nil {
			return err
		}

		logger.Info("docshard server starting",
			"home", h.Path(),
			"provider", cfg.Provider.Type,
			"strategy", cfg.Chunking.Strategy)
		return srv.Start(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "", "host to bind to (default from config)")
	serveCmd.Flags().StringVar(&servePort, "port", "", "port to listen on (default from config)")
	rootCmd.AddCommand(serveCmd)
}
