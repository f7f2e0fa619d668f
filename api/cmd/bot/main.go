package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"factcheck-bot/api/internal/analysis"
	"factcheck-bot/api/internal/config"
	"factcheck-bot/api/internal/gemini"
	"factcheck-bot/api/internal/logging"
	"factcheck-bot/api/internal/session"
	"factcheck-bot/api/internal/telegram"
	"factcheck-bot/api/internal/translate"
)

func main() {
	cfg := config.Load()
	log, err := logging.New(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	if cfg.TelegramBotToken == "" {
		log.Fatal("TELEGRAM_BOT_TOKEN is required")
	}
	if cfg.GeminiAPIKey == "" {
		log.Fatal("GEMINI_API_KEY is required")
	}

	bot, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		log.Fatalw("bot init failed", "err", err)
	}
	bot.Debug = false

	sessions := session.NewStore(log)
	go sessions.Run(context.Background(), time.Hour, session.DefaultMaxAge)

	r := &telegram.Router{
		Bot: bot,
		Analyzer: analysis.NewOrchestrator(
			gemini.New(cfg.GeminiAPIKey, cfg.GeminiModel),
			translate.New(cfg.SarvamAPIKey, log),
			log,
		),
		Sessions: sessions,
		Log:      log,
	}

	http.HandleFunc("/healthz", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	addr := "0.0.0.0:" + cfg.Port
	if webhookURL := strings.TrimSpace(cfg.WebhookURL); webhookURL != "" {
		startWebhookMode(addr, bot, r, webhookURL, log)
	} else {
		startPollingMode(addr, bot, r, log)
	}
}

func startWebhookMode(addr string, bot *tgbotapi.BotAPI, r *telegram.Router, baseURL string, log *zap.SugaredLogger) {
	// secret-ish webhook path derived from the token
	path := "/webhook/" + shortHash(bot.Token)
	public := strings.TrimRight(baseURL, "/") + path

	wh, err := tgbotapi.NewWebhook(public)
	if err != nil {
		log.Fatalw("webhook config failed", "err", err)
	}
	wh.DropPendingUpdates = true
	if _, err := bot.Request(wh); err != nil {
		log.Fatalw("webhook registration failed", "err", err)
	}

	// ListenForWebhook registers its handler on the default mux
	updates := bot.ListenForWebhook(path)
	go func() {
		for upd := range updates {
			r.HandleUpdate(upd)
		}
		log.Warn("webhook updates channel closed")
	}()

	log.Infow("webhook mode", "addr", addr, "path", path)
	if err := http.ListenAndServe(addr, nil); err != nil {
		log.Fatalw("server stopped", "err", err)
	}
}

func startPollingMode(addr string, bot *tgbotapi.BotAPI, r *telegram.Router, log *zap.SugaredLogger) {
	go func() {
		log.Infow("health server", "addr", addr)
		if err := http.ListenAndServe(addr, nil); err != nil {
			log.Fatalw("health server stopped", "err", err)
		}
	}()

	log.Info("polling mode")
	runPolling(context.Background(), bot, log, r.HandleUpdate)
}

var reRetryAfter = regexp.MustCompile(`(?i)retry after\s+(\d+)`)

func retryDelayFromError(err error) time.Duration {
	if err == nil {
		return 0
	}
	s := strings.ToLower(err.Error())
	if strings.Contains(s, "too many requests") {
		if m := reRetryAfter.FindStringSubmatch(s); len(m) == 2 {
			if n, _ := strconv.Atoi(m[1]); n > 0 {
				return time.Duration(n) * time.Second
			}
		}
		return 3 * time.Second
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return 2 * time.Second
	}
	return 1 * time.Second
}

// runPolling long-polls Telegram with backoff instead of dying on the
// first transient error.
func runPolling(ctx context.Context, bot *tgbotapi.BotAPI, log *zap.SugaredLogger, handle func(tgbotapi.Update)) {
	offset := 0
	baseDelay := 1 * time.Second
	maxDelay := 15 * time.Second

	for {
		select {
		case <-ctx.Done():
			log.Info("polling: context cancelled")
			return
		default:
		}

		u := tgbotapi.NewUpdate(offset)
		u.Timeout = 30

		updates, err := bot.GetUpdates(u)
		if err != nil {
			d := retryDelayFromError(err)
			if d < baseDelay {
				d = baseDelay
			}
			if d > maxDelay {
				d = maxDelay
			}
			log.Warnw("polling error", "err", err, "retry_in", d)
			time.Sleep(d)
			continue
		}

		for _, upd := range updates {
			if upd.UpdateID >= offset {
				offset = upd.UpdateID + 1
			}
			handle(upd)
		}

		if len(updates) == 0 {
			time.Sleep(200 * time.Millisecond)
		}
	}
}

func shortHash(s string) string {
	// fnv-1a, hex; stable path per token, not crypto
	h := uint64(1469598103934665603)
	const prime = 1099511628211
	for i := 0; i < len(s); i++ {
		h ^= uint64(s[i])
		h *= prime
	}
	const hexdigits = "0123456789abcdef"
	out := make([]byte, 16)
	for i := 15; i >= 0; i-- {
		out[i] = hexdigits[h&0xF]
		h >>= 4
	}
	return string(out)
}
