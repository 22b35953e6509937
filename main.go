package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pathakanu/alina/internal/audit"
	"github.com/pathakanu/alina/internal/bot"
	"github.com/pathakanu/alina/internal/config"
	"github.com/pathakanu/alina/internal/database"
	"github.com/pathakanu/alina/internal/delivery"
	"github.com/pathakanu/alina/internal/intent"
	"github.com/pathakanu/alina/internal/metrics"
	myopenai "github.com/pathakanu/alina/internal/openai"
	"github.com/pathakanu/alina/internal/scheduler"
	"github.com/pathakanu/alina/internal/sweeper"
	"github.com/pathakanu/alina/internal/telegram"
	"github.com/pathakanu/alina/internal/timeparse"
	"github.com/pathakanu/alina/internal/transport"
	"github.com/pathakanu/alina/internal/twilio"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const deliveryTimeout = 30 * time.Second

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", "alina").Logger()
	log.Logger = logger

	cfg := config.Load()
	setLogLevel(cfg.LogLevel)
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := database.New(cfg.DatabaseURL, cfg.SQLitePath, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("database init failed")
	}
	store := database.NewStore(db)

	mux := transport.NewMux()
	var telegramClient *telegram.Client
	if cfg.TelegramToken != "" {
		telegramClient, err = telegram.New(cfg.TelegramToken, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("telegram init failed")
		}
		mux.Handle(telegram.Prefix, telegramClient)
	}
	if cfg.WhatsAppEnabled() {
		mux.Handle(twilio.Prefix, twilio.New(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioWhatsAppNumber, logger))
	}

	var recorder audit.Recorder = audit.Nop{}
	if cfg.SheetsEnabled() {
		sheets, err := audit.NewSheets(ctx, cfg.GoogleSheetID, cfg.GoogleCredentialsB64, cfg.LocalTimezone)
		if err != nil {
			logger.Warn().Err(err).Msg("sheets audit log disabled")
		} else {
			recorder = sheets
		}
	}

	dispatcher := delivery.New(store, mux, recorder, logger)

	onTimer := dispatcher.OnTimer(deliveryTimeout)
	var timers *scheduler.Scheduler
	timers = scheduler.New(func(p scheduler.Payload) {
		metrics.ArmedTimers.Set(float64(timers.Pending()))
		onTimer(p)
	}, logger)

	parser := timeparse.New(timeparse.NewDateParserEngine(cfg.DateLanguages...), cfg.LocalTimezone)
	openAIClient := myopenai.New(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.ChatMaxTokens, logger)

	alina := bot.New(bot.Deps{
		Store:      store,
		Splitter:   intent.NewSplitter(parser),
		Parser:     parser,
		Classifier: openAIClient,
		Timers:     timers,
		Audit:      recorder,
	}, logger)

	restored, err := alina.Restore(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("restore timers")
	}
	logger.Info().Int("count", restored).Msg("pending reminders re-armed")

	sweep := sweeper.New(store, dispatcher, cfg.SweepInterval, cfg.SweepFirstDelay, logger)
	if err := sweep.Start(ctx); err != nil {
		logger.Fatal().Err(err).Msg("sweeper start")
	}

	http.Handle("/twilio/webhook", twilio.Webhook(alina, logger))
	http.Handle("/metrics", promhttp.Handler())
	http.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           nil,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info().Str("port", cfg.Port).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	if telegramClient != nil {
		go telegramClient.Run(ctx, alina)
	}

	waitForShutdown(server, cancel, sweep, timers, logger)
}

func waitForShutdown(server *http.Server, cancel context.CancelFunc, sweep *sweeper.Sweeper, timers *scheduler.Scheduler, logger zerolog.Logger) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	logger.Info().Msg("shutting down...")

	cancel()

	ctx, done := context.WithTimeout(context.Background(), 10*time.Second)
	defer done()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("server shutdown error")
	}
	sweep.Stop()
	timers.Stop()
}

// setLogLevel applies LOG_LEVEL globally; unknown values fall back to info.
func setLogLevel(level string) {
	parsed, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		parsed = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(parsed)
}
