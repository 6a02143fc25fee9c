package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Alias1177/Pricer/internal/analyze"
	"github.com/Alias1177/Pricer/internal/api/torn"
	"github.com/Alias1177/Pricer/internal/bot"
	"github.com/Alias1177/Pricer/internal/config"
	"github.com/Alias1177/Pricer/internal/inventory"
	"github.com/Alias1177/Pricer/internal/metrics"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	buttonPrice = "Price Inventory"
	buttonHelp  = "Help"

	sessionIdle = 24 * time.Hour
)

const helpText = `Paste your inventory or your item-market listing page and I will price every item I recognize.

For each item you get:
- fast: undercuts the cheapest real supply, sells quickly
- fair: the typical price once suspected anchors are removed
- greedy: the upper quartile of the cleaned book

A spreadsheet with the full breakdown is attached to every answer.`

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	setupSignalHandling(cancel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	setupLogging(cfg.LogLevel)

	if cfg.TelegramToken == "" {
		log.Fatal().Msg("PRICER_TELEGRAM_BOT_TOKEN not set in environment")
	}
	if cfg.APIKey == "" {
		log.Fatal().Msg("PRICER_API_KEY not set in environment")
	}

	dict, err := inventory.LoadDictionaryFile(cfg.DictPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DictPath).Msg("Failed to load item dictionary")
	}
	log.Info().Int("items", dict.Len()).Msg("Item dictionary loaded")

	m := metrics.New()
	if cfg.MetricsAddr != "" {
		go serveMetrics(cfg.MetricsAddr, m)
	}

	client := torn.NewClient(torn.ClientOptions{
		APIKey:         cfg.APIKey,
		BaseURL:        cfg.BaseURL,
		RequestTimeout: cfg.RequestTimeout,
		RequestsPerMin: cfg.RateLimitPerMin,
		BucketCapacity: cfg.BucketCapacity(),
		Retries:        cfg.Retries,
		MaxWorkers:     cfg.MaxWorkers,
		SlotCount:      cfg.SlotCount,
		Metrics:        m,
	})

	opts := analyze.Options{
		Thresholds: cfg.Thresholds,
		Workers:    cfg.AnalysisWorkers,
		FeeRate:    cfg.MarketFee,
		Metrics:    m,
	}
	svc := bot.NewService(dict, client, cfg.FuzzyThreshold, opts)
	sessions := bot.NewSessions()

	api, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize Telegram bot")
	}
	log.Info().Str("username", api.Self.UserName).Msg("Authorized on Telegram")

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := api.GetUpdatesChan(updateConfig)

	go pruneSessions(ctx, sessions)

	for {
		select {
		case <-ctx.Done():
			api.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message != nil {
				go handleMessage(ctx, api, svc, sessions, update.Message)
			}
		}
	}
}

// setupSignalHandling configures signal handling for graceful shutdown
func setupSignalHandling(cancel context.CancelFunc) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		log.Info().Msg("Shutdown signal received, exiting...")
		cancel()
	}()
}

// setupLogging configures the logger
func setupLogging(logLevel string) {
	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	log.Logger = log.Output(output)

	level, err := zerolog.ParseLevel(logLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log.Logger = log.Logger.Level(level)
}

func serveMetrics(addr string, m *metrics.Metrics) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())

	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	log.Info().Str("addr", addr).Msg("Serving metrics")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error().Err(err).Msg("Metrics server stopped")
	}
}

// pruneSessions forgets idle users once an hour
func pruneSessions(ctx context.Context, sessions *bot.Sessions) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := sessions.Prune(sessionIdle); n > 0 {
				log.Debug().Int("removed", n).Msg("Idle sessions pruned")
			}
		}
	}
}

// handleMessage processes incoming text messages
func handleMessage(ctx context.Context, api *tgbotapi.BotAPI, svc *bot.Service, sessions *bot.Sessions, message *tgbotapi.Message) {
	if message.From == nil {
		return
	}
	userID := message.From.ID
	chatID := message.Chat.ID
	logger := log.With().Int64("user_id", userID).Logger()

	text := strings.TrimSpace(message.Text)
	switch {
	case text == "":
		return
	case strings.HasPrefix(text, "/start"):
		sessions.Get(userID)
		send(api, menuMessage(chatID, "Welcome to the Torn Pricer Bot! What would you like to do?"), &logger)
		return
	case text == "/help" || text == buttonHelp:
		sessions.Get(userID)
		send(api, menuMessage(chatID, helpText), &logger)
		return
	case text == "/price" || text == buttonPrice:
		sessions.Get(userID)
		send(api, tgbotapi.NewMessage(chatID, "Paste your inventory or listing page as one message."), &logger)
		return
	}

	if !sessions.BeginPricing(userID) {
		send(api, tgbotapi.NewMessage(chatID, "Still pricing your previous list, please wait for the answer."), &logger)
		return
	}
	defer sessions.FinishPricing(userID)

	priceInventory(ctx, api, svc, chatID, text, &logger)
}

func priceInventory(ctx context.Context, api *tgbotapi.BotAPI, svc *bot.Service, chatID int64, text string, logger *zerolog.Logger) {
	send(api, tgbotapi.NewMessage(chatID, "Checking the market..."), logger)

	start := time.Now()
	res, err := svc.Price(ctx, text)
	switch {
	case errors.Is(err, bot.ErrNothingMatched):
		send(api, menuMessage(chatID, "I did not recognize any item names. Send /help for the expected format."), logger)
		return
	case err != nil:
		logger.Error().Err(err).Msg("Pricing failed")
		send(api, menuMessage(chatID, "Something went wrong while pricing, please try again later."), logger)
		return
	}

	logger.Info().
		Int("items", len(res.Reports)).
		Int("failed", len(res.Failed)).
		Int("unmatched", len(res.Unmatched)).
		Dur("elapsed", time.Since(start)).
		Msg("Inventory priced")

	send(api, menuMessage(chatID, bot.FormatSummary(res)), logger)

	if len(res.Reports) > 0 {
		doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{
			Name:  fmt.Sprintf("prices_%s.xlsx", time.Now().Format("20060102_150405")),
			Bytes: res.Workbook,
		})
		send(api, doc, logger)
	}
}

func menuMessage(chatID int64, text string) tgbotapi.MessageConfig {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = getMainMenuKeyboard()
	return msg
}

func getMainMenuKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(buttonPrice),
			tgbotapi.NewKeyboardButton(buttonHelp),
		),
	)
}

func send(api *tgbotapi.BotAPI, c tgbotapi.Chattable, logger *zerolog.Logger) {
	if _, err := api.Send(c); err != nil {
		logger.Error().Err(err).Msg("Failed to send message")
	}
}
