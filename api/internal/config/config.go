package config

import (
	"net"
	"net/url"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port     string
	LogLevel string

	GeminiAPIKey string
	GeminiModel  string

	SarvamAPIKey string

	TwilioAccountSID   string
	TwilioAuthToken    string
	TwilioWhatsAppFrom string

	TelegramBotToken string
	WebhookURL       string

	DatabaseDSN string
	RedisURL    string
}

// Load reads configuration from the environment (a local .env is honored
// when present). Credentials are validated at the call site that needs
// them, not here: the API server runs without a Telegram token and vice
// versa.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:     getEnv("PORT", "8000"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.0-flash"),

		SarvamAPIKey: os.Getenv("SARVAM_API_KEY"),

		TwilioAccountSID:   os.Getenv("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:    os.Getenv("TWILIO_AUTH_TOKEN"),
		TwilioWhatsAppFrom: getEnv("TWILIO_WHATSAPP_NUMBER", "whatsapp:+14155238886"),

		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		WebhookURL:       os.Getenv("WEBHOOK_URL"),

		DatabaseDSN: resolveDSN(),
		RedisURL:    os.Getenv("REDIS_URL"),
	}
}

func getEnv(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

// resolveDSN prefers DATABASE_URL, otherwise assembles a DSN from the
// POSTGRES_*/PG* variables. Empty result means "run without persistence".
func resolveDSN() string {
	if v := strings.TrimSpace(os.Getenv("DATABASE_URL")); v != "" {
		return v
	}
	pass := os.Getenv("POSTGRES_PASSWORD")
	if pass == "" {
		return ""
	}
	user := getEnv("POSTGRES_USER", "factcheck")
	host := getEnv("PGHOST", "db")
	port := getEnv("PGPORT", "5432")
	db := getEnv("POSTGRES_DB", "factcheck")

	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(user, pass),
		Host:     net.JoinHostPort(host, port),
		Path:     "/" + db,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}
