// Command casualbotler serves moderation log correlation over HTTP.
// It:
//   - Loads configuration and the moderation tables and initializes structured logging.
//   - Connects to Postgres when DB_DSN is set and runs idempotent migrations;
//     otherwise keeps last records in memory.
//   - Starts the history retention job when RETENTION_KEEP_* is set.
//   - Exposes /log, /form, /records/*, /healthz, /readyz and /metrics.
//
// Shutdown is graceful on SIGINT/SIGTERM.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/CasualConversation/casualbotler/config"
	"github.com/CasualConversation/casualbotler/crypto"
	"github.com/CasualConversation/casualbotler/db"
	"github.com/CasualConversation/casualbotler/modaction"
	"github.com/CasualConversation/casualbotler/retention"
	"github.com/CasualConversation/casualbotler/server"
	"github.com/CasualConversation/casualbotler/telemetry"
	"github.com/CasualConversation/casualbotler/transcript"
)

func main() {
	// Load .env file if present (local dev convenience only; production relies on real env)
	_ = godotenv.Load()

	// Configure logging (level + format). Defaults: level=info, format=text.
	lvl := slog.LevelInfo
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	case "info", "":
	default:
		tmp := slog.New(slog.NewTextHandler(os.Stdout, nil))
		tmp.Warn("unknown LOG_LEVEL, using info", slog.String("value", os.Getenv("LOG_LEVEL")))
	}
	format := strings.ToLower(os.Getenv("LOG_FORMAT")) // text | json
	var handler slog.Handler
	switch format {
	case "json":
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	default:
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	}
	slog.SetDefault(slog.New(handler))
	slog.Info("logger initialized", slog.String("level", lvl.String()), slog.String("format", map[bool]string{true: "json", false: "text"}[format == "json"]))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", slog.Any("err", err))
		os.Exit(1)
	}
	moderation, err := config.LoadModeration(cfg.ModerationRulesFile)
	if err != nil {
		slog.Error("moderation rules load failed", slog.Any("err", err), slog.String("path", cfg.ModerationRulesFile))
		os.Exit(1)
	}

	telemetry.Init()

	// Tracing is optional; requires OTEL_EXPORTER_OTLP_ENDPOINT
	shutdown, err := telemetry.InitTracing("casualbotler", "1.0.0")
	if err != nil {
		slog.Error("tracing initialization failed", slog.Any("err", err))
		os.Exit(1)
	}
	defer shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		slog.Error("record store init failed", slog.Any("err", err))
		os.Exit(1)
	}
	defer closeStore()

	if p, ok := store.(retention.Pruner); ok {
		go retention.Start(ctx, p, retention.LoadPolicy())
	}

	source := transcript.NewFileSource(cfg.ChanlogsDir)
	deps := server.Deps{
		Correlator: modaction.NewCorrelator(source, cfg.Correlator(moderation)),
		Store:      store,
		Config:     cfg,
	}
	slog.Info("serving moderation logs",
		slog.String("chanlogs_dir", cfg.ChanlogsDir),
		slog.String("default_channel", cfg.DefaultChannel),
		slog.Int("channels", len(moderation.Channels)),
		slog.Int("suppress_rules", len(moderation.Suppress)))

	if err := server.Start(ctx, deps, cfg.HTTPAddr); err != nil {
		slog.Error("http server exited with error", slog.Any("err", err))
		os.Exit(1)
	}
	slog.Info("shutting down")
}

// openStore returns the Postgres store when DB_DSN is set and the in-memory
// store otherwise.
func openStore(ctx context.Context, cfg *config.Config) (server.RecordStore, func(), error) {
	if cfg.DBDsn == "" {
		slog.Warn("DB_DSN not set, last records are kept in memory")
		return db.NewMemoryStore(0), func() {}, nil
	}

	database, err := db.Connect(ctx, cfg.DBDsn)
	if err != nil {
		return nil, nil, err
	}
	closeDB := func() {
		if err := database.Close(); err != nil {
			slog.Error("failed to close database", slog.Any("err", err))
		}
	}

	// Versioned migrations first; embedded SQL covers databases created before them.
	slog.Info("running database migrations", slog.String("component", "db_migrate"))
	if err := db.RunMigrations(database); err != nil {
		slog.Warn("versioned migrations failed, attempting fallback to embedded SQL",
			slog.Any("err", err),
			slog.String("component", "db_migrate"))
		if err := db.Migrate(ctx, database); err != nil {
			closeDB()
			return nil, nil, err
		}
	}

	var sealer crypto.Sealer
	if cfg.EncryptionKey != "" {
		fs, err := crypto.NewFieldSealer(cfg.EncryptionKey)
		if err != nil {
			closeDB()
			return nil, nil, err
		}
		sealer = fs
		slog.Info("host sealing enabled")
	}
	return db.NewPGStore(database, sealer), closeDB, nil
}
