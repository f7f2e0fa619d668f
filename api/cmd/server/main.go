package main

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
	"go.uber.org/zap"

	"factcheck-bot/api/internal/analysis"
	"factcheck-bot/api/internal/cache"
	"factcheck-bot/api/internal/config"
	"factcheck-bot/api/internal/gemini"
	"factcheck-bot/api/internal/httpapi"
	"factcheck-bot/api/internal/logging"
	"factcheck-bot/api/internal/session"
	"factcheck-bot/api/internal/store"
	"factcheck-bot/api/internal/translate"
	"factcheck-bot/api/internal/whatsapp"
)

func main() {
	cfg := config.Load()
	log, err := logging.New(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	if cfg.GeminiAPIKey == "" {
		log.Fatal("GEMINI_API_KEY is required")
	}

	orch := analysis.NewOrchestrator(
		gemini.New(cfg.GeminiAPIKey, cfg.GeminiModel),
		translate.New(cfg.SarvamAPIKey, log),
		log,
	)

	sessions := session.NewStore(log)
	go sessions.Run(context.Background(), time.Hour, session.DefaultMaxAge)

	verdictCache := cache.New(cfg.RedisURL, log)

	// Postgres is optional: without it the message CRUD is simply not mounted.
	var messages *store.MessageRepo
	if cfg.DatabaseDSN != "" {
		db, err := sql.Open("pgx", cfg.DatabaseDSN)
		if err != nil {
			log.Fatalw("db open failed", "err", err)
		}
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(10)
		db.SetConnMaxLifetime(1 * time.Hour)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := db.PingContext(ctx); err != nil {
			cancel()
			log.Fatalw("db ping failed", "err", err)
		}
		cancel()

		messages = store.NewMessageRepo(db)
		if err := messages.EnsureSchema(context.Background()); err != nil {
			log.Fatalw("schema init failed", "err", err)
		}
		go purgeLoop(messages, log)
		log.Info("db connected, message API enabled")
	} else {
		log.Warn("no database configured, message API disabled")
	}

	var sender whatsapp.Sender
	if cfg.TwilioAccountSID != "" && cfg.TwilioAuthToken != "" {
		sender = whatsapp.NewClient(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioWhatsAppFrom)
	} else {
		log.Warn("Twilio credentials not found, WhatsApp delivery will fail")
		sender = whatsapp.NewClient("", "", cfg.TwilioWhatsAppFrom)
	}

	h := &httpapi.Handler{
		Analyzer: orch,
		Cache:    verdictCache,
		Messages: messages,
		Sessions: sessions,
		Dispatcher: &httpapi.Dispatcher{
			Analyzer: orch,
			Sender:   sender,
			Sessions: sessions,
			Cache:    verdictCache,
			Log:      log,
		},
		Log: log,
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	h.RegisterRoutes(r)

	addr := "0.0.0.0:" + cfg.Port
	log.Infow("listening", "addr", addr)
	if err := http.ListenAndServe(addr, r); err != nil {
		log.Fatalw("server stopped", "err", err)
	}
}

func purgeLoop(messages *store.MessageRepo, log *zap.SugaredLogger) {
	t := time.NewTicker(24 * time.Hour)
	defer t.Stop()
	for range t.C {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		n, err := messages.PurgeOlderThan(ctx, 30*24*time.Hour)
		cancel()
		if err != nil {
			log.Warnw("message purge failed", "err", err)
			continue
		}
		if n > 0 {
			log.Infow("purged old messages", "removed", n)
		}
	}
}
