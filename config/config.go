// Package config loads environment variables and provides a typed Config used across the service.
// It applies defaults so the binary can run locally against a log directory with no database.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/CasualConversation/casualbotler/modaction"
)

// DefaultChannel is used when a request names no channel.
const DefaultChannel = "#casualconversation"

type Config struct {
	// Transcripts
	ChanlogsDir    string
	DefaultChannel string

	// Database. Empty keeps the last-record slot in memory.
	DBDsn string
	// EncryptionKey seals stored hosts when set (base64, 32 bytes).
	EncryptionKey string

	// HTTP
	HTTPAddr    string
	FormBaseURL string

	// Moderation tables and attribution
	ModerationRulesFile string
	BacktrackLines      int
	CorrectSecondsUnit  bool

	// Command limits
	MaxAutoLines    int
	MaxLogAutoLines int
	FollowingLines  int
	RecentLines     int

	// Admin endpoints
	AdminUsername string
	AdminPassword string
	AdminToken    string

	// Rate limiting of correlation requests
	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration
}

// Load reads environment variables and applies defaults. Malformed numbers are errors;
// limits are checked with the same bounds the correlator enforces per request.
func Load() (*Config, error) {
	cfg := &Config{}

	cfg.ChanlogsDir = getenv("CHANLOGS_DIR", "logs")
	cfg.DefaultChannel = strings.ToLower(getenv("DEFAULT_CHANNEL", DefaultChannel))
	cfg.DBDsn = os.Getenv("DB_DSN")
	cfg.EncryptionKey = os.Getenv("ENCRYPTION_KEY")
	cfg.HTTPAddr = getenv("HTTP_ADDR", ":8080")
	cfg.FormBaseURL = os.Getenv("FORM_BASE_URL")
	cfg.ModerationRulesFile = os.Getenv("MODERATION_RULES_FILE")
	cfg.CorrectSecondsUnit = os.Getenv("CORRECT_SECONDS_UNIT") == "1" || strings.EqualFold(os.Getenv("CORRECT_SECONDS_UNIT"), "true")

	cfg.AdminUsername = os.Getenv("ADMIN_USERNAME")
	cfg.AdminPassword = os.Getenv("ADMIN_PASSWORD")
	cfg.AdminToken = os.Getenv("ADMIN_TOKEN")
	cfg.RateLimitEnabled = os.Getenv("RATE_LIMIT_ENABLED") != "0"

	ints := []struct {
		key string
		def int
		dst *int
	}{
		{"BACKTRACK_LINES", modaction.DefaultBacktrackLines, &cfg.BacktrackLines},
		{"LOG_MAX_AUTO_LINES", 4000, &cfg.MaxAutoLines},
		{"LOG_MAX_LOG_AUTO_LINES", 400, &cfg.MaxLogAutoLines},
		{"LOG_FOLLOWING_LINES", 2, &cfg.FollowingLines},
		{"LOG_RECENT_LINES", 100, &cfg.RecentLines},
		{"RATE_LIMIT_REQUESTS_PER_IP", 10, &cfg.RateLimitRequests},
	}
	for _, v := range ints {
		n, err := getenvInt(v.key, v.def)
		if err != nil {
			return nil, err
		}
		*v.dst = n
	}
	secs, err := getenvInt("RATE_LIMIT_WINDOW_SECONDS", 60)
	if err != nil {
		return nil, err
	}
	cfg.RateLimitWindow = time.Duration(secs) * time.Second

	if cfg.BacktrackLines < 1 {
		return nil, fmt.Errorf("invalid BACKTRACK_LINES %d: must be positive", cfg.BacktrackLines)
	}
	if err := cfg.Request(cfg.DefaultChannel, modaction.ModeAuto).Validate(); err != nil {
		return nil, fmt.Errorf("invalid command limits: %w", err)
	}
	return cfg, nil
}

// Request returns a correlation request for channel carrying the configured limits.
// An empty channel selects DefaultChannel.
func (c *Config) Request(channel string, mode modaction.Mode) modaction.Request {
	if channel == "" {
		channel = c.DefaultChannel
	}
	return modaction.Request{
		Channel:         channel,
		Mode:            mode,
		Lines:           c.RecentLines,
		MaxAutoLines:    c.MaxAutoLines,
		MaxLogAutoLines: c.MaxLogAutoLines,
		FollowingLines:  c.FollowingLines,
	}
}

// DurationStyle maps CORRECT_SECONDS_UNIT to the formatter style.
func (c *Config) DurationStyle() modaction.DurationStyle {
	if c.CorrectSecondsUnit {
		return modaction.DurationCorrected
	}
	return modaction.DurationObserved
}

// Correlator combines env settings with the moderation tables.
func (c *Config) Correlator(m *Moderation) modaction.Config {
	return modaction.Config{
		Rules:          m.Rules,
		Channels:       m.Channels,
		BacktrackLines: c.BacktrackLines,
		DurationStyle:  c.DurationStyle(),
	}
}

// AdminAuthEnabled reports whether admin endpoints require credentials.
func (c *Config) AdminAuthEnabled() bool {
	return (c.AdminUsername != "" && c.AdminPassword != "") || c.AdminToken != ""
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	return n, nil
}
