package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"katydid-common-idgen/internal/app"
	"katydid-common-idgen/pkg/config"
	"katydid-common-idgen/pkg/logger"
)

func newServeCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP ID service",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath,
				config.WithFlag("server.addr", cmd.Flags().Lookup("addr")),
				config.WithFlag("log.level", cmd.Flags().Lookup("log-level")),
				config.WithFlag("clock.source", cmd.Flags().Lookup("clock")),
			)
			if err != nil {
				return err
			}

			l, err := logger.Init(cfg.Log)
			if err != nil {
				return err
			}
			defer func() { _ = l.Sync() }()

			ctx, stop := signal.NotifyContext(cmdContext(cmd), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := app.New(ctx, cfg, l)
			if err != nil {
				return fmt.Errorf("assemble: %w", err)
			}
			l.Info("starting idgen", zap.String("addr", cfg.Server.Addr))
			return a.Run(ctx)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "config file (default ./configs/config.yaml)")
	cmd.Flags().String("addr", ":8080", "HTTP listen address")
	cmd.Flags().String("log-level", "info", "log level: debug|info|warn|error")
	cmd.Flags().String("clock", "system", "clock source: system|monotonic|redis")
	return cmd
}

// cmdContext cobra在Execute前未设置上下文时兜底
func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
