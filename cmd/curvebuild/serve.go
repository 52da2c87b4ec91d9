package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/meenmo/curvebuild/api"
)

var port int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve build and reprice over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup()
		if err != nil {
			return err
		}
		b, _, err := newBuilder(cfg, log)
		if err != nil {
			return err
		}
		if port == 0 {
			port = cfg.Server.Port
		}
		gin.SetMode(cfg.Server.Mode)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		srv := api.NewServer(b, api.Options{AllowedOrigins: cfg.Server.AllowedOrigins, Logger: log})
		return srv.Run(ctx, fmt.Sprintf(":%d", port))
	},
}

func init() {
	serveCmd.Flags().IntVar(&port, "port", 0, "listen port (default server.port)")
}
