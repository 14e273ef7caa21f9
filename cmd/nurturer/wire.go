package main

import (
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"

	"nurturing_engine/internal/app"
	"nurturing_engine/internal/domain/messaging"
	"nurturing_engine/internal/domain/nurturing"
	"nurturing_engine/internal/infra/config"
	idb "nurturing_engine/internal/infra/database"
	"nurturing_engine/internal/infra/logger"
	imessaging "nurturing_engine/internal/infra/messaging"
	"nurturing_engine/internal/infra/rules"
	"nurturing_engine/internal/infra/telegram"
)

// services holds everything a command needs to talk to the store and the gateway.
type services struct {
	db         *sql.DB
	contacts   *idb.PostgresContactRepository
	activities *idb.PostgresActivityRepository
	bot        *telebot.Bot // nil unless a Telegram token is configured
	engine     *app.Engine
	scoring    *app.ScoringService
}

func loadCatalog(cfg *config.AppConfig) (nurturing.Catalog, error) {
	return rules.Load(cfg.RulesFile, logger.Component("rules"))
}

func newServices(cfg *config.AppConfig) (*services, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	catalog, err := loadCatalog(cfg)
	if err != nil {
		return nil, err
	}

	db, err := idb.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("could not connect to database: %w", err)
	}
	logger.Log.Info("Database connection established successfully.")

	s := &services{
		db:         db,
		contacts:   idb.NewPostgresContactRepository(db),
		activities: idb.NewPostgresActivityRepository(db, cfg.DedupWindow),
	}

	if cfg.TelegramToken != "" {
		s.bot, err = newBot(cfg)
		if err != nil {
			db.Close()
			return nil, err
		}
	}

	gateway, err := newGateway(cfg, s.bot)
	if err != nil {
		db.Close()
		return nil, err
	}

	s.engine = app.NewEngine(s.contacts, s.activities, gateway, catalog, logrus.NewEntry(logger.Log), app.EngineOptions{
		DedupWindow:   cfg.DedupWindow,
		ActionTimeout: cfg.ActionTimeout,
		QueryTimeout:  cfg.QueryTimeout,
		Concurrency:   cfg.DispatchConcurrency,
	})
	s.scoring = app.NewScoringService(s.contacts, logrus.NewEntry(logger.Log))
	return s, nil
}

func (s *services) Close() {
	if s.db != nil {
		s.db.Close()
	}
}

func newGateway(cfg *config.AppConfig, bot *telebot.Bot) (messaging.Gateway, error) {
	switch cfg.MessagingProvider {
	case config.ProviderTelegram:
		if bot == nil {
			return nil, fmt.Errorf("telegram provider selected but no bot is configured")
		}
		return telegram.NewRelayGateway(telegram.NewTelebotAdapter(bot), cfg.TelegramRelayChatID, logrus.NewEntry(logger.Log)), nil
	case config.ProviderWebhook:
		return imessaging.NewWebhookGateway(cfg.WebhookURL, cfg.WebhookToken, nil, logrus.NewEntry(logger.Log)), nil
	default:
		return imessaging.NewLogGateway(logrus.NewEntry(logger.Log)), nil
	}
}

const botPollTimeout = 10 * time.Second

// botHTTPTimeout bounds every Bot API request. Long polls hold a request open for
// botPollTimeout, so the bound never drops below that.
func botHTTPTimeout(actionTimeout time.Duration) time.Duration {
	if actionTimeout <= botPollTimeout {
		return botPollTimeout + 5*time.Second
	}
	return actionTimeout
}

func newBot(cfg *config.AppConfig) (*telebot.Bot, error) {
	botLogger := logger.Component("telebot")
	bot, err := telebot.NewBot(telebot.Settings{
		Token:  cfg.TelegramToken,
		Poller: &telebot.LongPoller{Timeout: botPollTimeout},
		Client: &http.Client{Timeout: botHTTPTimeout(cfg.ActionTimeout)},
		OnError: func(err error, c telebot.Context) {
			entry := botLogger.WithError(err)
			if c != nil && c.Sender() != nil && c.Chat() != nil {
				entry = entry.WithField("sender_id", c.Sender().ID).WithField("chat_id", c.Chat().ID)
			}
			entry.Error("Telegram handler error")
		},
	})
	if err != nil {
		return nil, fmt.Errorf("could not create Telegram bot: %w", err)
	}
	return bot, nil
}
