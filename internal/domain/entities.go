// Package domain defines the core entities, ports, and error taxonomy shared
// by the provider, parser, prompt, executor, and pipeline packages.
package domain

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Context is a type alias to stdlib context.Context for convenience across layers.
type Context = context.Context

// Recommendation values. These are the only legal values for MatchAnalysis.Recommendation.
const (
	RecommendationStrong      = "强烈推荐"
	RecommendationRecommended = "推荐"
	RecommendationConsider    = "可以考虑"
	RecommendationReject      = "不推荐"
	RecommendationFailed      = "分析失败"
	RecommendationIrrelevant  = "岗位与求职意向不相关"
)

// Dimension score keys for the full (résumé-backed) match analysis.
const (
	DimJobMatch         = "job_match"
	DimSkillMatch       = "skill_match"
	DimExperienceMatch  = "experience_match"
	DimSkillCoverage    = "skill_coverage"
	DimKeywordMatch     = "keyword_match"
	DimHardRequirements = "hard_requirements"
)

// Unknown-value sentinels for ExtractedInfo free-text fields.
const (
	UnknownExperience = "未提及"
	UnknownEducation  = "未提及"
)

// ErrorKind enumerates the taxonomy of errors a Provider Adapter or the
// Response Parser can raise. See SPEC_FULL.md §7.
type ErrorKind string

// Error kinds.
const (
	KindConfigError           ErrorKind = "ConfigError"
	KindTransportError        ErrorKind = "TransportError"
	KindTimeoutError          ErrorKind = "TimeoutError"
	KindRateLimitError        ErrorKind = "RateLimitError"
	KindUpstreamError         ErrorKind = "UpstreamError"
	KindShapeError            ErrorKind = "ShapeError"
	KindEmptyCompletionError  ErrorKind = "EmptyCompletionError"
	KindParseError            ErrorKind = "ParseError"
)

// PipelineError wraps an underlying error with a taxonomy kind and optional
// upstream detail (truncated to 200 chars per the adapter contract).
type PipelineError struct {
	Kind     ErrorKind
	Message  string
	Upstream string
	Err      error
}

func (e *PipelineError) Error() string {
	if e.Upstream != "" {
		return fmt.Sprintf("%s: %s (upstream: %s)", e.Kind, e.Message, e.Upstream)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *PipelineError) Unwrap() error { return e.Err }

// NewPipelineError constructs a PipelineError, truncating upstream detail to 200 chars.
func NewPipelineError(kind ErrorKind, message string, upstream string, err error) *PipelineError {
	if len(upstream) > 200 {
		upstream = upstream[:200]
	}
	return &PipelineError{Kind: kind, Message: message, Upstream: upstream, Err: err}
}

// IsRetryable reports whether the Stage Executor should retry with a fallback
// adapter (transport, timeout, rate-limit, empty-completion) rather than
// fail-marking the item immediately.
func IsRetryable(err error) bool {
	var pe *PipelineError
	if !errors.As(err, &pe) {
		return false
	}
	switch pe.Kind {
	case KindTransportError, KindTimeoutError, KindRateLimitError, KindEmptyCompletionError:
		return true
	default:
		return false
	}
}

// ErrUnsupportedProvider is returned by the Registry for an unknown provider id.
var ErrUnsupportedProvider = errors.New("unsupported provider")

// JobRecord is a single raw job posting. Identity is URL if present, else
// Title+Company. Immutable after creation.
type JobRecord struct {
	Title       string `json:"title" validate:"required"`
	Company     string `json:"company" validate:"required"`
	Salary      string `json:"salary,omitempty"`
	Location    string `json:"location,omitempty"`
	URL         string `json:"url,omitempty"`
	Description string `json:"description" validate:"required"`
}

// ID returns the record's identity key per the spec: URL if present, else Title+Company.
func (j JobRecord) ID() string {
	if j.URL != "" {
		return j.URL
	}
	return j.Title + "|" + j.Company
}

// SalaryRange is the candidate's desired monthly salary band, in K units.
type SalaryRange struct {
	MinK float64 `json:"min_k,omitempty"`
	MaxK float64 `json:"max_k,omitempty"`
}

// UserProfile describes the candidate's intentions and constraints used by
// screening and simple-mode matching.
type UserProfile struct {
	Intentions      []string    `json:"intentions" validate:"required,min=1"`
	ExcludedTypes   []string    `json:"excluded_types,omitempty"`
	Skills          []string    `json:"skills,omitempty"`
	ExperienceYears int         `json:"experience_years" validate:"gte=0"`
	SalaryRange     SalaryRange `json:"salary_range,omitempty"`
}

// ResumeSummary is an optional pre-computed résumé analysis used by full-mode matching.
type ResumeSummary struct {
	CompetitivenessScore float64            `json:"competitiveness_score"`
	Strengths            []string           `json:"strengths,omitempty"`
	DimensionScores      map[string]float64 `json:"dimension_scores,omitempty"`
	CareerAdvice         string             `json:"career_advice,omitempty"`
	RecommendedJobs      []string           `json:"recommended_jobs,omitempty"`
}

// ScreeningVerdict is the Stage-1 relevance decision attached to a JobRecord.
type ScreeningVerdict struct {
	Relevant bool   `json:"relevant"`
	Reason   string `json:"reason"`
}

// HardSkills splits required vs preferred technical skill requirements.
type HardSkills struct {
	Required  []string `json:"required"`
	Preferred []string `json:"preferred"`
}

// ExtractedInfo is the Stage-2 structured summary of one job posting.
type ExtractedInfo struct {
	Responsibilities   []string   `json:"responsibilities"`
	HardSkills         HardSkills `json:"hard_skills"`
	SoftSkills         []string   `json:"soft_skills"`
	ExperienceRequired string     `json:"experience_required"`
	EducationRequired  string     `json:"education_required"`
}

// DefaultExtractedInfo returns the "unknown" sentinel extraction used when
// Stage-2 cannot produce a real result for an item (see SPEC_FULL.md §4.5 step 5).
func DefaultExtractedInfo() ExtractedInfo {
	return ExtractedInfo{
		Responsibilities:   []string{},
		HardSkills:         HardSkills{Required: []string{}, Preferred: []string{}},
		SoftSkills:         []string{},
		ExperienceRequired: UnknownExperience,
		EducationRequired:  UnknownEducation,
	}
}

// MatchAnalysis is the per-job output of Stage 4. When Error is non-empty the
// record is a fail-marker: Score MUST be 0 and Recommendation MUST be one of
// the two failure values (invariant I2).
type MatchAnalysis struct {
	Score                float64            `json:"score"`
	OverallScore         float64            `json:"overall_score"`
	Recommendation       string             `json:"recommendation"`
	DimensionScores      map[string]float64 `json:"dimension_scores"`
	MatchedSkills        []string           `json:"matched_skills"`
	MissingSkills        []string           `json:"missing_skills"`
	MatchPoints          []string           `json:"match_points,omitempty"`
	MismatchPoints       []string           `json:"mismatch_points,omitempty"`
	Reason               string             `json:"reason"`
	Summary              string             `json:"summary"`
	ActionRecommendation string             `json:"action_recommendation,omitempty"`
	Error                string             `json:"error,omitempty"`
}

// FailMarker builds a MatchAnalysis fail-marker for the given error kind and
// message. This is the ONLY sanctioned way to produce a zero-score record;
// it never fabricates a non-zero score (see SPEC_FULL.md §9 "No silent defaults").
func FailMarker(kind ErrorKind, message string) MatchAnalysis {
	return MatchAnalysis{
		Score:          0,
		OverallScore:   0,
		Recommendation: RecommendationFailed,
		DimensionScores: map[string]float64{},
		MatchedSkills:  []string{},
		MissingSkills:  []string{},
		MatchPoints:    []string{},
		MismatchPoints: []string{},
		Reason:         message,
		Summary:        "无法完成分析",
		Error:          fmt.Sprintf("%s: %s", kind, message),
	}
}

// IrrelevantMarker builds the MatchAnalysis placeholder attached at MERGE to
// items the screening stage rejected.
func IrrelevantMarker(reason string) MatchAnalysis {
	if reason == "" {
		reason = "经快速筛选，该岗位与您的求职意向不匹配"
	}
	return MatchAnalysis{
		Score:          0,
		OverallScore:   0,
		Recommendation: RecommendationIrrelevant,
		DimensionScores: map[string]float64{},
		MatchedSkills:  []string{},
		MissingSkills:  []string{},
		MatchPoints:    []string{},
		MismatchPoints: []string{},
		Reason:         reason,
		Summary:        reason,
	}
}

// CancelledMarker builds the MatchAnalysis placeholder attached to an item
// whose analysis was still in flight when the orchestrator's context was
// cancelled (SPEC_FULL.md §5 "Cancellation"). Recommendation stays within the
// closed enum the prompt templates document (invariant I2: score==0 iff
// Recommendation is one of the two failure values), so a cancelled item is
// reported as a failed analysis rather than a third, unlisted status.
func CancelledMarker() MatchAnalysis {
	m := FailMarker(KindUpstreamError, "任务在完成前被取消")
	m.Summary = "已取消"
	m.Error = "cancelled"
	return m
}

// SkillEntry is one bucketed skill/responsibility entry in a MarketReport.
type SkillEntry struct {
	Name       string  `json:"name"`
	Frequency  float64 `json:"frequency"`
	Importance string  `json:"importance"`
}

// SkillBuckets splits a skill category into the three demand-frequency tiers.
type SkillBuckets struct {
	CoreRequired       []SkillEntry `json:"core_required"`
	ImportantPreferred []SkillEntry `json:"important_preferred"`
	SpecialScenarios   []SkillEntry `json:"special_scenarios"`
}

// SkillRequirements holds the hard- and soft-skill bucket sets.
type SkillRequirements struct {
	HardSkills SkillBuckets `json:"hard_skills"`
	SoftSkills SkillBuckets `json:"soft_skills"`
}

// MarketOverview carries the cross-sectional summary header.
type MarketOverview struct {
	TotalJobsAnalyzed int    `json:"total_jobs_analyzed"`
	AnalysisDate      string `json:"analysis_date,omitempty"`
}

// MarketInsights holds the free-form cross-sectional findings.
type MarketInsights struct {
	TechStackTrends        []string       `json:"tech_stack_trends"`
	EmergingSkills         []string       `json:"emerging_skills"`
	ExperienceDistribution map[string]int `json:"experience_distribution"`
	EducationRequirements  map[string]int `json:"education_requirements"`
}

// MarketReport is the Stage-3 (or Aggregator-fallback) cross-sectional output.
type MarketReport struct {
	Overview             MarketOverview    `json:"overview"`
	SkillRequirements    SkillRequirements `json:"skill_requirements"`
	CoreResponsibilities []string          `json:"core_responsibilities"`
	MarketInsights       MarketInsights    `json:"market_insights"`
	KeyFindings          []string          `json:"key_findings"`
}

// DefaultMarketReport returns the structurally-valid, empty-content market
// report that Pipeline.Run emits when it recovers from a panic mid-run,
// grounded on enhanced_job_analyzer.py's _get_default_market_report.
// totalJobs is copied into the overview as given; Run passes the number of
// input jobs.
func DefaultMarketReport(totalJobs int) MarketReport {
	emptyBuckets := SkillBuckets{
		CoreRequired:       []SkillEntry{},
		ImportantPreferred: []SkillEntry{},
		SpecialScenarios:   []SkillEntry{},
	}
	return MarketReport{
		Overview: MarketOverview{TotalJobsAnalyzed: totalJobs},
		SkillRequirements: SkillRequirements{
			HardSkills: emptyBuckets,
			SoftSkills: emptyBuckets,
		},
		CoreResponsibilities: []string{"分析失败"},
		MarketInsights: MarketInsights{
			TechStackTrends:         []string{},
			EmergingSkills:          []string{},
			ExperienceDistribution:  map[string]int{},
			EducationRequirements:  map[string]int{},
		},
		KeyFindings: []string{"市场分析暂时不可用"},
	}
}

// ProgressEvent is emitted by the Stage Executor every N processed items.
type ProgressEvent struct {
	RunID string `json:"run_id,omitempty"`
	Stage string `json:"stage"`
	Done  int    `json:"done"`
	Total int    `json:"total"`
	Note  string `json:"note,omitempty"`
}

// Stage name constants used in ProgressEvent.Stage.
const (
	StageScreen  = "screen"
	StageExtract = "extract"
	StageMarket  = "market"
	StageMatch   = "match"
)

// ProgressListener receives progress events. Implementations MUST be safe
// for concurrent use: the Stage Executor calls it from multiple workers.
type ProgressListener interface {
	OnProgress(ev ProgressEvent)
}

// ProgressListenerFunc adapts a plain function to a ProgressListener.
type ProgressListenerFunc func(ev ProgressEvent)

// OnProgress implements ProgressListener.
func (f ProgressListenerFunc) OnProgress(ev ProgressEvent) { f(ev) }

// NoopProgressListener discards every event.
type NoopProgressListener struct{}

// OnProgress implements ProgressListener.
func (NoopProgressListener) OnProgress(ProgressEvent) {}

// CompletionOptions is the closed set of knobs exposed to callers of an
// Adapter. All other adapter behavior is internal to the implementation.
type CompletionOptions struct {
	Temperature float64
	MaxTokens   int
	Model       string
	Timeout     time.Duration
}

// Source distinguishes a primary completion from a salvaged reasoning trace.
type Source string

// Source values.
const (
	SourcePrimary   Source = "primary"
	SourceReasoning Source = "reasoning"
)
