package main

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"nurturing_engine/internal/infra/config"
	"nurturing_engine/internal/infra/logger"
)

var (
	cfg *config.AppConfig

	rulesFile string
	logLevel  string
)

var rootCmd = &cobra.Command{
	Use:   "nurturer",
	Short: "Automated lead nurturing for the property advisory CRM",
	Long: `nurturer scores contacts and runs the nurturing rule catalog against the CRM
contact store: follow-up messages, advisor tasks and status moves, each logged to the
contact's activity timeline and never repeated inside the dedup window.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("rules") {
			loaded.RulesFile = rulesFile
		}
		if cmd.Flags().Changed("log-level") {
			loaded.LogLevel = logLevel
		}
		cfg = loaded
		logger.Init(cfg)
		logger.Log.WithFields(logrus.Fields{
			"environment": cfg.Environment,
			"provider":    cfg.MessagingProvider,
		}).Debug("Configuration loaded")
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rulesFile, "rules", "", "rule catalog YAML file (overrides RULES_FILE)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (overrides LOG_LEVEL)")
}
