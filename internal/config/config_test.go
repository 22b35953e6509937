package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "LOCAL_TIMEZONE", "SWEEP_INTERVAL", "SWEEP_FIRST_DELAY", "DATE_LANGUAGES", "TELEGRAM_TOKEN", "OPENAI_MODEL"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 20*time.Second, cfg.SweepInterval)
	assert.Equal(t, 10*time.Second, cfg.SweepFirstDelay)
	assert.Equal(t, []string{"tr", "en"}, cfg.DateLanguages)
	assert.Equal(t, "gpt-4o-mini", cfg.OpenAIModel)
	require.NotNil(t, cfg.LocalTimezone)
	assert.Equal(t, "Europe/Istanbul", cfg.LocalTimezone.String())
}

func TestLoadInvalidTimezoneFallsBackToUTC(t *testing.T) {
	t.Setenv("LOCAL_TIMEZONE", "Mars/Olympus_Mons")
	cfg := Load()
	assert.Equal(t, time.UTC, cfg.LocalTimezone)
}

func TestParseDurationEnv(t *testing.T) {
	cases := map[string]time.Duration{
		"":      5 * time.Second,
		"30":    30 * time.Second,
		"1m30s": 90 * time.Second,
		"nope":  5 * time.Second,
	}
	for input, want := range cases {
		t.Setenv("TEST_DURATION", input)
		assert.Equal(t, want, ParseDurationEnv("TEST_DURATION", 5*time.Second), "input %q", input)
	}
}

func TestValidate(t *testing.T) {
	cfg := &Config{SweepInterval: time.Second}
	require.ErrorIs(t, cfg.Validate(), ErrNoTransport)

	cfg.TelegramToken = "token"
	require.NoError(t, cfg.Validate())

	cfg = &Config{
		TwilioAccountSID:     "sid",
		TwilioAuthToken:      "secret",
		TwilioWhatsAppNumber: "+15550001",
		SweepInterval:        time.Second,
	}
	require.NoError(t, cfg.Validate())

	cfg.SweepInterval = 0
	require.Error(t, cfg.Validate())
}
