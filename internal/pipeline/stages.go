package pipeline

import (
	"context"
	"errors"

	"github.com/fairyhunter13/jobmatch-analyzer/internal/domain"
	"github.com/fairyhunter13/jobmatch-analyzer/internal/executor"
	"github.com/fairyhunter13/jobmatch-analyzer/internal/parser"
	"github.com/fairyhunter13/jobmatch-analyzer/internal/prompt"
	"github.com/fairyhunter13/jobmatch-analyzer/internal/provider"
)

// screenAttempt builds the S1 AttemptFunc: one Complete call against the
// adapter the Stage Executor selects (primary, or fallback on a retryable
// adapter error), then the screening parser cascade.
func screenAttempt(profile domain.UserProfile) executor.AttemptFunc[domain.JobRecord, domain.ScreeningVerdict] {
	return func(ctx context.Context, job domain.JobRecord, a *provider.Adapter) (domain.ScreeningVerdict, error) {
		text, _, err := a.Complete(ctx, prompt.Screen(job, profile), domain.CompletionOptions{})
		if err != nil {
			return domain.ScreeningVerdict{}, err
		}
		return parser.ParseScreeningVerdict(text)
	}
}

// screenFail defaults an unrecoverable screening item to "not relevant",
// grounded on enhanced_job_analyzer.py's _parse_screening_result exception
// path ({"relevant": False, "reason": "解析异常"}) — screening failures must
// not silently let an unscreened job through.
func screenFail(job domain.JobRecord, err error) domain.ScreeningVerdict {
	return domain.ScreeningVerdict{Relevant: false, Reason: cancelOr(err, "筛选失败："+err.Error())}
}

// extractAttempt builds the S2 AttemptFunc with its own internal
// primary→fallback retry on ANY failure (adapter error or parse failure),
// per SPEC_FULL.md §4.6's "this cross-provider retry is the system's
// primary resilience mechanism". The adapter argument passed in by the
// Stage Executor is ignored in favor of the two captured adapters, since
// fallback=nil is always supplied by the caller to avoid a second,
// generic-IsRetryable-gated retry on top of this one.
func extractAttempt(primary, fallback *provider.Adapter) executor.AttemptFunc[domain.JobRecord, domain.ExtractedInfo] {
	once := func(ctx context.Context, job domain.JobRecord, a *provider.Adapter) (domain.ExtractedInfo, error) {
		text, _, err := a.Complete(ctx, prompt.Extract(job), domain.CompletionOptions{})
		if err != nil {
			return domain.ExtractedInfo{}, err
		}
		return parser.ParseExtractedInfo(text)
	}
	return func(ctx context.Context, job domain.JobRecord, _ *provider.Adapter) (domain.ExtractedInfo, error) {
		info, err := once(ctx, job, primary)
		if err == nil {
			return info, nil
		}
		if fallback == nil || fallback == primary {
			return info, err
		}
		return once(ctx, job, fallback)
	}
}

// extractFail substitutes the documented "unknown" sentinel extraction
// (domain.DefaultExtractedInfo) rather than dropping the item or fabricating
// plausible-looking fields, per SPEC_FULL.md §4.5 step 5.
func extractFail(job domain.JobRecord, err error) domain.ExtractedInfo {
	return domain.DefaultExtractedInfo()
}

// matchAttempt builds the S4 AttemptFunc: MatchFull when a résumé summary is
// present, else MatchSimple against the rule-assembled profile.
func matchAttempt(resume *domain.ResumeSummary, profile domain.UserProfile) executor.AttemptFunc[domain.JobRecord, domain.MatchAnalysis] {
	return func(ctx context.Context, job domain.JobRecord, a *provider.Adapter) (domain.MatchAnalysis, error) {
		if resume != nil {
			text, _, err := a.Complete(ctx, prompt.MatchFull(job, *resume), domain.CompletionOptions{})
			if err != nil {
				return domain.MatchAnalysis{}, err
			}
			return parser.ParseMatchAnalysisFull(text)
		}
		text, _, err := a.Complete(ctx, prompt.MatchSimple(job, profile), domain.CompletionOptions{})
		if err != nil {
			return domain.MatchAnalysis{}, err
		}
		return parser.ParseMatchAnalysisSimple(text)
	}
}

// matchFail produces the fail-marker MatchAnalysis invariant I2 requires:
// score=0, recommendation in the failure set, error populated. Cancellation
// gets its own explicit marker rather than being reported as a generic
// upstream failure.
func matchFail(job domain.JobRecord, err error) domain.MatchAnalysis {
	if errors.Is(err, context.Canceled) {
		return domain.CancelledMarker()
	}
	var pe *domain.PipelineError
	kind := domain.KindUpstreamError
	if errors.As(err, &pe) {
		kind = pe.Kind
	}
	return domain.FailMarker(kind, err.Error())
}

// cancelOr returns the cancellation reason when err wraps context.Canceled,
// else the supplied fallback message.
func cancelOr(err error, fallback string) string {
	if errors.Is(err, context.Canceled) {
		return "任务在完成前被取消"
	}
	return fallback
}
