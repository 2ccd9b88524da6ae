package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"mediaforge/logger"
	"mediaforge/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve a read-only HTTP API over tracked jobs",
	Run: func(cmd *cobra.Command, args []string) {
		a, err := newApp()
		if err != nil {
			log.Fatalf("initialisation failed: %v", err)
		}
		defer a.Close()

		addr := serveAddr
		if addr == "" {
			addr = cfg.ServerAddr
		}
		srv := server.New(addr, a.repo)

		errCh := make(chan error, 1)
		go func() { errCh <- srv.Run() }()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

		select {
		case err := <-errCh:
			if err != nil {
				log.Fatalf("server failed: %v", err)
			}
		case sig := <-sigCh:
			logger.Info("shutting down", logger.String("signal", sig.String()))
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil {
				log.Fatalf("shutdown failed: %v", err)
			}
		}
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from SERVER_ADDR)")
	rootCmd.AddCommand(serveCmd)
}
