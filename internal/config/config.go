package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Config stores runtime configuration loaded from environment variables.
type Config struct {
	Port                 string
	TelegramToken        string
	TwilioAccountSID     string
	TwilioAuthToken      string
	TwilioWhatsAppNumber string
	OpenAIAPIKey         string
	OpenAIModel          string
	ChatMaxTokens        int
	DatabaseURL          string
	SQLitePath           string
	GoogleSheetID        string
	GoogleCredentialsB64 string
	LogLevel             string
	DateLanguages        []string
	SweepInterval        time.Duration
	SweepFirstDelay      time.Duration
	LocalTimezone        *time.Location
}

// ErrNoTransport is returned by Validate when neither Telegram nor WhatsApp is configured.
var ErrNoTransport = errors.New("config: no messaging transport configured (set TELEGRAM_TOKEN or TWILIO_*)")

const defaultTimezone = "Europe/Istanbul"

// Load reads configuration values and prepares defaults where applicable.
func Load() *Config {
	_ = godotenv.Load()

	timezoneName := getenvDefault("LOCAL_TIMEZONE", defaultTimezone)
	location, err := time.LoadLocation(timezoneName)
	if err != nil {
		log.Warn().Err(err).Str("timezone", timezoneName).Msg("config: invalid LOCAL_TIMEZONE, defaulting to UTC")
		location = time.UTC
	}

	return &Config{
		Port:                 getenvDefault("PORT", "8080"),
		TelegramToken:        strings.TrimSpace(os.Getenv("TELEGRAM_TOKEN")),
		TwilioAccountSID:     os.Getenv("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:      os.Getenv("TWILIO_AUTH_TOKEN"),
		TwilioWhatsAppNumber: os.Getenv("TWILIO_WHATSAPP_NUMBER"),
		OpenAIAPIKey:         strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
		OpenAIModel:          getenvDefault("OPENAI_MODEL", "gpt-4o-mini"),
		ChatMaxTokens:        ParseIntEnv("CHAT_MAX_TOKENS", 1024),
		DatabaseURL:          os.Getenv("DATABASE_URL"),
		SQLitePath:           getenvDefault("SQLITE_PATH", "data.db"),
		GoogleSheetID:        strings.TrimSpace(os.Getenv("GSHEET_ID")),
		GoogleCredentialsB64: strings.TrimSpace(os.Getenv("GOOGLE_SA_JSON_B64")),
		LogLevel:             getenvDefault("LOG_LEVEL", "info"),
		DateLanguages:        splitList(getenvDefault("DATE_LANGUAGES", "tr,en")),
		SweepInterval:        ParseDurationEnv("SWEEP_INTERVAL", 20*time.Second),
		SweepFirstDelay:      ParseDurationEnv("SWEEP_FIRST_DELAY", 10*time.Second),
		LocalTimezone:        location,
	}
}

// Validate reports configuration problems that must stop the process at startup.
func (c *Config) Validate() error {
	if c.TelegramToken == "" && !c.WhatsAppEnabled() {
		return ErrNoTransport
	}
	if c.SweepInterval <= 0 {
		return errors.New("config: SWEEP_INTERVAL must be positive")
	}
	return nil
}

// WhatsAppEnabled reports whether every Twilio credential is present.
func (c *Config) WhatsAppEnabled() bool {
	return c.TwilioAccountSID != "" && c.TwilioAuthToken != "" && c.TwilioWhatsAppNumber != ""
}

// SheetsEnabled reports whether the spreadsheet audit log is configured.
func (c *Config) SheetsEnabled() bool {
	return c.GoogleSheetID != "" && c.GoogleCredentialsB64 != ""
}

func getenvDefault(key, def string) string {
	value := os.Getenv(key)
	if value == "" {
		return def
	}
	return value
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, strings.ToLower(part))
		}
	}
	return out
}

// ParseIntEnv returns the integer value for an environment variable or the provided default.
func ParseIntEnv(key string, def int) int {
	value := os.Getenv(key)
	if value == "" {
		return def
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Str("value", value).Msg("config: unable to parse int")
		return def
	}
	return parsed
}

// ParseDurationEnv returns the duration value for an environment variable or the provided default.
// Bare integers are read as seconds.
func ParseDurationEnv(key string, def time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Str("value", value).Msg("config: unable to parse duration")
		return def
	}
	return parsed
}
