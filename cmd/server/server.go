package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"matchengine/internal/config"
	"matchengine/internal/engine"
	"matchengine/internal/transport"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "matchengine-server",
		Short: "Runs the limit-order matching engine's TCP front end",
	}
	cfg := config.BindServerFlags(rootCmd)
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return run(cfg)
	}

	if err := rootCmd.Execute(); err != nil {
		log.Fatal().Err(err).Msg("server exited with error")
		os.Exit(1)
	}
}

func run(cfg *config.ServerConfig) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	eng := engine.New(cfg.MatcherTag).WithMetrics(prometheus.DefaultRegisterer)
	srv := transport.New(cfg.Address, cfg.Port, eng)

	go srv.Run(ctx)
	<-ctx.Done()
	return nil
}
