package observability

import (
	"context"
	"log/slog"
	"testing"

	"github.com/fairyhunter13/jobmatch-analyzer/internal/config"
)

func TestSetupLogger_DevAndProd(t *testing.T) {
	lg := SetupLogger(config.Config{AppEnv: "dev", OTELServiceName: "svc"})
	if lg == nil {
		t.Fatalf("nil logger")
	}
	lg2 := SetupLogger(config.Config{AppEnv: "prod", OTELServiceName: "svc"})
	if lg2 == nil {
		t.Fatalf("nil logger prod")
	}
}

func TestSetupLogger_TestEnvIsQuieter(t *testing.T) {
	lg := SetupLogger(config.Config{AppEnv: "test", OTELServiceName: "svc"})
	ctx := context.Background()
	if lg.Enabled(ctx, slog.LevelDebug) {
		t.Fatalf("test env logger should not emit debug-level records")
	}
	if !lg.Enabled(ctx, slog.LevelWarn) {
		t.Fatalf("test env logger should still emit warn-level records")
	}
}

func TestSetupLogger_WithWorkerCount(t *testing.T) {
	lg := SetupLogger(config.Config{AppEnv: "dev", OTELServiceName: "svc", WorkerCount: 6})
	if lg == nil {
		t.Fatalf("nil logger")
	}
}
