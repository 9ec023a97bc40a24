package observability

import (
	"log/slog"
	"os"

	"github.com/fairyhunter13/jobmatch-analyzer/internal/config"
)

// SetupLogger configures a JSON slog logger with environment fields. Level
// follows a three-way AppEnv split built on config.Config's IsDev/IsTest
// helpers: dev wants every detail,
// test wants the pipeline's own test output uncluttered by stage chatter,
// and anything else (prod) gets info.
func SetupLogger(cfg config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{}
	switch {
	case cfg.IsDev():
		opts.Level = slog.LevelDebug
	case cfg.IsTest():
		opts.Level = slog.LevelWarn
	default:
		opts.Level = slog.LevelInfo
	}
	h := slog.NewJSONHandler(os.Stdout, opts)
	logger := slog.New(h).With(
		slog.String("service", cfg.OTELServiceName),
		slog.String("env", cfg.AppEnv),
		slog.Int("worker_count", cfg.WorkerCount),
	)
	return logger
}
