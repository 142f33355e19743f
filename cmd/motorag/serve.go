package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"motorag/internal/server"
)

var flagAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the question answering API over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		engine, err := buildEngine(ctx)
		if err != nil {
			return err
		}
		addr := flagAddr
		if addr == "" {
			addr = cfg.Server.Addr
		}
		return server.New(engine, addr, logger).Start(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&flagAddr, "addr", "", "listen address (defaults to the configured server.addr)")
	rootCmd.AddCommand(serveCmd)
}
