// Package main provides the analyze CLI: a host process that loads a batch
// of job postings from a file or stdin, drives them through the pipeline
// orchestrator, and writes the merged result to a file or stdout. It is the
// only entry point for a module that is otherwise consumed as a library.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gopkg.in/yaml.v3"

	"github.com/fairyhunter13/jobmatch-analyzer/internal/adapter/observability"
	"github.com/fairyhunter13/jobmatch-analyzer/internal/config"
	"github.com/fairyhunter13/jobmatch-analyzer/internal/domain"
	"github.com/fairyhunter13/jobmatch-analyzer/internal/pipeline"
	"github.com/fairyhunter13/jobmatch-analyzer/internal/provider"
)

// batchInput is the on-disk shape cmd/analyze accepts, as JSON or YAML
// (sniffed via mimetype). resume is optional; its absence switches the
// Pipeline to simple (profile-backed) matching for every job.
type batchInput struct {
	Jobs    []domain.JobRecord    `json:"jobs" yaml:"jobs"`
	Profile domain.UserProfile    `json:"profile" yaml:"profile"`
	Resume  *domain.ResumeSummary `json:"resume,omitempty" yaml:"resume,omitempty"`
}

// jobOutput is one merged record in the canonical on-disk output shape,
// flattening an ItemResult's four stage annotations under one job entry.
type jobOutput struct {
	Job       domain.JobRecord        `json:"job"`
	Screened  bool                    `json:"screened"`
	Screening domain.ScreeningVerdict `json:"screening,omitempty"`
	Extracted domain.ExtractedInfo    `json:"extracted"`
	Match     domain.MatchAnalysis    `json:"match"`
}

type outputMetadata struct {
	GeneratedTime string `json:"generated_time"`
	TotalSearched int    `json:"total_searched"`
}

type outputDocument struct {
	Metadata     outputMetadata      `json:"metadata"`
	AllJobs      []jobOutput         `json:"all_jobs"`
	MarketReport domain.MarketReport `json:"market_report"`
}

func main() {
	inPath := flag.String("in", "-", "input batch file (JSON or YAML); - reads stdin")
	outPath := flag.String("out", "-", "output file for the merged result; - writes stdout")
	minScore := flag.Float64("min-score", 0, "if > 0, write only jobs at or above this score (applies FilterAndSort)")
	metricsAddr := flag.String("metrics-addr", "", "if set, serve Prometheus metrics on this address while the batch runs")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", slog.Any("error", err))
		os.Exit(1)
	}

	logger := observability.SetupLogger(cfg)
	slog.SetDefault(logger)

	shutdownTracer, err := observability.SetupTracing(cfg)
	if err != nil {
		slog.Error("failed to setup tracing", slog.Any("error", err))
	}
	defer func() {
		if shutdownTracer != nil {
			_ = shutdownTracer(context.Background())
		}
	}()

	if *metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		go func() {
			if err := http.ListenAndServe(*metricsAddr, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("metrics server error", slog.Any("error", err))
			}
		}()
	}

	registry := provider.New(cfg)
	if len(registry.Available()) == 0 {
		slog.Error("no provider has a configured credential; set at least one of DEEPSEEK_API_KEY, CLAUDE_API_KEY, GEMINI_API_KEY, OPENAI_API_KEY, GLM_API_KEY, OPENROUTER_API_KEY")
		os.Exit(1)
	}
	runStartupHealthCheck(cfg, registry)

	input, err := readBatchInput(*inPath)
	if err != nil {
		slog.Error("failed to read batch input", slog.Any("error", err))
		os.Exit(1)
	}
	slog.Info("batch loaded", slog.Int("job_count", len(input.Jobs)), slog.Bool("has_resume", input.Resume != nil))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	listener := domain.ProgressListenerFunc(func(ev domain.ProgressEvent) {
		slog.Info("stage progress",
			slog.String("run_id", ev.RunID),
			slog.String("stage", ev.Stage),
			slog.Int("done", ev.Done),
			slog.Int("total", ev.Total))
	})
	pipe := pipeline.New(cfg, registry).WithListener(listener)

	result, err := pipe.Run(ctx, input.Jobs, input.Profile, input.Resume)
	if err != nil {
		slog.Error("pipeline run failed", slog.Any("error", err))
		os.Exit(1)
	}

	items := result.Items
	if *minScore > 0 {
		items = pipeline.FilterAndSort(items, *minScore)
	}

	doc := outputDocument{
		Metadata: outputMetadata{
			GeneratedTime: time.Now().UTC().Format(time.RFC3339),
			TotalSearched: len(input.Jobs),
		},
		AllJobs:      toJobOutputs(items),
		MarketReport: result.MarketReport,
	}

	if err := writeOutputDocument(*outPath, doc); err != nil {
		slog.Error("failed to write output", slog.Any("error", err))
		os.Exit(1)
	}
}

// runStartupHealthCheck pings the configured extraction and analysis
// adapters with a tiny completion request, logging a warning (not a fatal
// error) on failure — a reachability smoke test, not a hard precondition,
// grounded on BaseAIClient.test_connection.
func runStartupHealthCheck(cfg config.Config, registry *provider.Registry) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for _, id := range []string{cfg.DefaultExtractionProvider, cfg.DefaultAnalysisProvider} {
		a, err := registry.Get(id)
		if err != nil {
			continue
		}
		if !a.Ping(ctx) {
			slog.Warn("provider health check failed, continuing anyway", slog.String("provider", id))
		}
	}
}

// readBatchInput reads raw bytes from path ("-" for stdin), sniffs JSON vs
// YAML via mimetype, and decodes into a batchInput.
func readBatchInput(path string) (batchInput, error) {
	var r io.Reader = os.Stdin
	if path != "-" && path != "" {
		f, err := os.Open(path)
		if err != nil {
			return batchInput{}, fmt.Errorf("open input: %w", err)
		}
		defer f.Close()
		r = f
	}
	raw, err := io.ReadAll(r)
	if err != nil {
		return batchInput{}, fmt.Errorf("read input: %w", err)
	}

	mime := mimetype.Detect(raw)
	var in batchInput
	if mime.Is("application/json") {
		if err := json.Unmarshal(raw, &in); err != nil {
			return batchInput{}, fmt.Errorf("decode JSON batch: %w", err)
		}
		return in, nil
	}
	if err := yaml.Unmarshal(raw, &in); err != nil {
		return batchInput{}, fmt.Errorf("decode batch as %s (yaml fallback): %w", mime.String(), err)
	}
	return in, nil
}

func writeOutputDocument(path string, doc outputDocument) error {
	var w io.Writer = os.Stdout
	if path != "-" && path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close()
		w = f
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

func toJobOutputs(items []pipeline.ItemResult) []jobOutput {
	out := make([]jobOutput, len(items))
	for i, it := range items {
		out[i] = jobOutput{Job: it.Job, Screened: it.Screened, Screening: it.Screening, Extracted: it.Extracted, Match: it.Match}
	}
	return out
}
