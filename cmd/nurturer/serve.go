package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	idb "nurturing_engine/internal/infra/database"
	"nurturing_engine/internal/infra/logger"
	"nurturing_engine/internal/infra/metrics"
	"nurturing_engine/internal/infra/scheduler"
	"nurturing_engine/internal/infra/telegram"
)

var (
	migrateOnStart bool
	cycleTimeout   time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the nurturing scheduler, operator bot and metrics endpoint",
	RunE: func(cmd *cobra.Command, args []string) error {
		mainLogger := logger.Component("main")

		if migrateOnStart {
			if err := idb.RunMigrations(cfg.DatabaseURL); err != nil {
				return err
			}
			mainLogger.Info("Database migrations applied.")
		}

		svc, err := newServices(cfg)
		if err != nil {
			return err
		}
		defer svc.Close()

		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		cycleMetrics := metrics.New(reg)

		nurturingScheduler := scheduler.NewNurturingScheduler(
			svc.engine,
			cycleMetrics,
			logger.Component("scheduler"),
			cfg.CronSpecCycle,
			cycleTimeout,
		)
		if err := nurturingScheduler.Start(); err != nil {
			return err
		}

		opsServer := metrics.NewServer(cfg.MetricsAddr, reg, svc.db.PingContext, logger.Component("ops_http"))
		opsServer.Start()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if svc.bot != nil && cfg.OpsBotEnabled() {
			botLogger := logger.Component("ops_bot")
			ops := telegram.NewOpsCommands(nurturingScheduler, svc.engine, svc.scoring, svc.activities, botLogger)
			telegram.RegisterBotCommands(svc.bot, cfg.AdminTelegramID, botLogger)
			telegram.RegisterOpsHandlers(ctx, svc.bot, ops, cfg.AdminTelegramID, botLogger)
			go svc.bot.Start()
			mainLogger.Info("Operator bot started.")
		}

		mainLogger.Info("Nurturing engine running. Press Ctrl+C to exit.")
		<-ctx.Done()
		mainLogger.Info("Shutdown signal received, stopping...")

		if svc.bot != nil && cfg.OpsBotEnabled() {
			svc.bot.Stop()
		}
		nurturingScheduler.Stop()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := opsServer.Shutdown(shutdownCtx); err != nil {
			mainLogger.WithError(err).Warn("Ops HTTP server did not shut down cleanly")
		}
		mainLogger.Info("Nurturing engine stopped.")
		return nil
	},
}

func init() {
	serveCmd.Flags().BoolVar(&migrateOnStart, "migrate", false, "apply database migrations before starting")
	serveCmd.Flags().DurationVar(&cycleTimeout, "cycle-timeout", 4*time.Minute, "upper bound for one cycle, 0 for none")
	rootCmd.AddCommand(serveCmd)
}
