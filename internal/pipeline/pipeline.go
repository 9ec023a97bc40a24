// Package pipeline implements the Pipeline Orchestrator (C6) and Aggregator
// (C7): the state machine that drives a batch of job postings through
// screening, extraction, market-cognition aggregation, and per-job matching,
// grounded on enhanced_job_analyzer.py's three/four-stage orchestration.
package pipeline

import (
	"context"
	"errors"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/fairyhunter13/jobmatch-analyzer/internal/config"
	"github.com/fairyhunter13/jobmatch-analyzer/internal/domain"
	"github.com/fairyhunter13/jobmatch-analyzer/internal/executor"
	"github.com/fairyhunter13/jobmatch-analyzer/internal/obslog"
	"github.com/fairyhunter13/jobmatch-analyzer/internal/parser"
	"github.com/fairyhunter13/jobmatch-analyzer/internal/prompt"
	"github.com/fairyhunter13/jobmatch-analyzer/internal/provider"
)

var (
	vldOnce sync.Once
	vld     *validator.Validate
)

// getValidator lazily builds the package-wide validator instance, mirroring
// the teacher's httpserver handlers.go getValidator pattern.
func getValidator() *validator.Validate {
	vldOnce.Do(func() { vld = validator.New() })
	return vld
}

// ItemResult is one job's full analysis record, carried through every stage
// so MERGE can reconstruct the output in input order.
type ItemResult struct {
	Job       domain.JobRecord
	Screened  bool
	Screening domain.ScreeningVerdict
	Extracted domain.ExtractedInfo
	Match     domain.MatchAnalysis
}

// Result is the Pipeline's complete output: the full-order, full-length
// item list plus the cross-sectional market report.
type Result struct {
	Items        []ItemResult
	MarketReport domain.MarketReport
}

// Pipeline drives jobs through the four-stage analysis state machine. A
// Pipeline is safe for concurrent Run calls: all per-run mutable state lives
// on the stack inside Run, never on the Pipeline itself.
type Pipeline struct {
	cfg      config.Config
	registry *provider.Registry
	listener domain.ProgressListener
}

// New constructs a Pipeline over an already-built Registry.
func New(cfg config.Config, registry *provider.Registry) *Pipeline {
	return &Pipeline{cfg: cfg, registry: registry, listener: domain.NoopProgressListener{}}
}

// WithListener attaches a progress listener that receives every stage's
// ProgressEvent. It returns p for chaining at construction time.
func (p *Pipeline) WithListener(l domain.ProgressListener) *Pipeline {
	if l != nil {
		p.listener = l
	}
	return p
}

// Run executes INIT → S1_SCREEN → S2_EXTRACT → S3_MARKET → S4_MATCH → MERGE
// for one batch of jobs against one candidate profile and an optional
// résumé summary. The returned Result always has len(Items) == len(jobs),
// in input order, per the ordering invariant (SPEC_FULL.md §4.6/§8).
func (p *Pipeline) Run(ctx context.Context, jobs []domain.JobRecord, profile domain.UserProfile, resume *domain.ResumeSummary) (result Result, err error) {
	runID := uuid.NewString()
	ctx = obslog.ContextWithRunID(ctx, runID)

	tracer := otel.Tracer("pipeline")
	ctx, span := tracer.Start(ctx, "Pipeline.Run", trace.WithAttributes(attribute.String("run_id", runID)))
	defer span.End()

	obslog.FromContext(ctx).Info("pipeline run starting", "run_id", runID, "job_count", len(jobs))

	defer func() {
		if r := recover(); r != nil {
			span.RecordError(errors.New("pipeline panic"))
			result = Result{
				Items:        make([]ItemResult, len(jobs)),
				MarketReport: domain.DefaultMarketReport(len(jobs)),
			}
			for i, job := range jobs {
				result.Items[i] = ItemResult{Job: job, Match: domain.FailMarker(domain.KindUpstreamError, "pipeline panicked during analysis")}
			}
			err = nil
		}
	}()

	// INIT: struct validation before any provider call (SPEC_FULL.md §4.6).
	v := getValidator()
	for _, job := range jobs {
		if ferr := v.Struct(job); ferr != nil {
			return Result{}, domain.NewPipelineError(domain.KindConfigError, "invalid job record", ferr.Error(), ferr)
		}
	}
	if ferr := v.Struct(profile); ferr != nil {
		return Result{}, domain.NewPipelineError(domain.KindConfigError, "invalid user profile", ferr.Error(), ferr)
	}

	extractionAdapter, aerr := p.registry.Get(p.cfg.DefaultExtractionProvider)
	if aerr != nil {
		return Result{}, domain.NewPipelineError(domain.KindConfigError, "extraction provider unavailable", aerr.Error(), aerr)
	}
	analysisAdapter, aerr := p.registry.Get(p.cfg.DefaultAnalysisProvider)
	if aerr != nil {
		return Result{}, domain.NewPipelineError(domain.KindConfigError, "analysis provider unavailable", aerr.Error(), aerr)
	}

	items := make([]ItemResult, len(jobs))
	for i, job := range jobs {
		items[i] = ItemResult{Job: job}
	}

	opts := func(stage string) executor.Options {
		return executor.Options{
			RunID:          runID,
			Stage:          stage,
			WorkerCount:    p.cfg.WorkerCount,
			PerItemTimeout: p.cfg.PerItemTimeout,
			ProgressEvery:  p.cfg.ProgressEvery,
			Listener:       p.listener,
		}
	}

	// S1_SCREEN. Optional; off means every job proceeds to extraction.
	survivorIdx := make([]int, 0, len(jobs))
	if p.cfg.ScreeningMode {
		verdicts := executor.Run(ctx, opts(domain.StageScreen), jobs, extractionAdapter, analysisAdapter,
			screenAttempt(profile), screenFail)
		for i, verdict := range verdicts {
			items[i].Screened = true
			items[i].Screening = verdict
			if verdict.Relevant {
				survivorIdx = append(survivorIdx, i)
			} else {
				items[i].Match = domain.IrrelevantMarker(verdict.Reason)
			}
		}
	} else {
		for i := range jobs {
			survivorIdx = append(survivorIdx, i)
		}
	}

	if len(survivorIdx) == 0 {
		return Result{Items: items, MarketReport: Aggregate(nil)}, nil
	}

	survivors := make([]domain.JobRecord, len(survivorIdx))
	for k, i := range survivorIdx {
		survivors[k] = jobs[i]
	}

	// S2_EXTRACT. Parse failures retry cross-provider internally (the
	// system's primary resilience mechanism per SPEC_FULL.md §4.6); the
	// generic executor fallback is unused here (fallback=nil) so it never
	// double-retries on top of extractAttempt's own fallback call.
	extracted := executor.Run(ctx, opts(domain.StageExtract), survivors, extractionAdapter, nil,
		extractAttempt(extractionAdapter, analysisAdapter), extractFail)
	for k, i := range survivorIdx {
		items[i].Extracted = extracted[k]
	}

	// S3_MARKET. Single call, not per-item.
	marketReport := p.runMarketStage(ctx, analysisAdapter, extractionAdapter, extracted)

	// S4_MATCH. Full (résumé-backed) or simple (profile-backed) prompt.
	matches := executor.Run(ctx, opts(domain.StageMatch), survivors, analysisAdapter, extractionAdapter,
		matchAttempt(resume, profile), matchFail)
	for k, i := range survivorIdx {
		items[i].Match = matches[k]
	}

	obslog.FromContext(ctx).Info("pipeline run complete", "run_id", runID, "item_count", len(items))
	return Result{Items: items, MarketReport: marketReport}, nil
}

func (p *Pipeline) runMarketStage(ctx context.Context, primary, fallback *provider.Adapter, extracted []domain.ExtractedInfo) domain.MarketReport {
	tracer := otel.Tracer("pipeline")
	ctx, span := tracer.Start(ctx, domain.StageMarket+".call")
	defer span.End()

	if p.cfg.PerItemTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.cfg.PerItemTimeout)
		defer cancel()
	}

	marketPrompt := prompt.Market(extracted)
	text, _, err := primary.Complete(ctx, marketPrompt, domain.CompletionOptions{})
	if err != nil && fallback != nil && domain.IsRetryable(err) {
		text, _, err = fallback.Complete(ctx, marketPrompt, domain.CompletionOptions{})
	}
	if err != nil {
		span.RecordError(err)
		return Aggregate(extracted)
	}
	report, perr := parser.ParseMarketReport(text)
	if perr != nil {
		span.RecordError(perr)
		return Aggregate(extracted)
	}
	report.Overview.TotalJobsAnalyzed = len(extracted)
	return report
}
