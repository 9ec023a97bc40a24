package parser

import (
	"strconv"
	"strings"

	"github.com/fairyhunter13/jobmatch-analyzer/internal/domain"
)

// ParseScreeningVerdict recovers a ScreeningVerdict from a Stage-1 raw
// completion, falling back to ScreenLexical when no JSON object can be
// recovered. Returns a domain.KindParseError when neither strategy yields a
// usable verdict — callers must not silently default to "relevant".
func ParseScreeningVerdict(text string) (domain.ScreeningVerdict, error) {
	var raw struct {
		Relevant bool   `json:"relevant"`
		Reason   string `json:"reason"`
	}
	if err := ExtractJSON(text, &raw); err == nil {
		return domain.ScreeningVerdict{Relevant: raw.Relevant, Reason: raw.Reason}, nil
	}

	if relevant, reason, ok := ScreenLexical(text); ok {
		return domain.ScreeningVerdict{Relevant: relevant, Reason: reason}, nil
	}

	return domain.ScreeningVerdict{}, domain.NewPipelineError(domain.KindParseError, "could not recover a screening verdict from completion text", text, nil)
}

// ParseExtractedInfo recovers an ExtractedInfo from a Stage-2 raw completion.
// There is no lexical fallback for extraction (structured fields cannot be
// safely inferred from prose); a cascade miss is always a ParseError, and
// the caller is expected to substitute domain.DefaultExtractedInfo() per
// SPEC_FULL.md §4.5 step 5 rather than this function guessing.
func ParseExtractedInfo(text string) (domain.ExtractedInfo, error) {
	var raw struct {
		Responsibilities []string `json:"responsibilities"`
		HardSkills       struct {
			Required  []string `json:"required"`
			Preferred []string `json:"preferred"`
		} `json:"hard_skills"`
		SoftSkills         []string `json:"soft_skills"`
		ExperienceRequired string   `json:"experience_required"`
		EducationRequired  string   `json:"education_required"`
	}
	if err := ExtractJSON(text, &raw); err != nil {
		return domain.ExtractedInfo{}, domain.NewPipelineError(domain.KindParseError, "could not recover extracted info from completion text", text, err)
	}

	info := domain.ExtractedInfo{
		Responsibilities: nonNil(raw.Responsibilities),
		HardSkills: domain.HardSkills{
			Required:  nonNil(raw.HardSkills.Required),
			Preferred: nonNil(raw.HardSkills.Preferred),
		},
		SoftSkills:         nonNil(raw.SoftSkills),
		ExperienceRequired: raw.ExperienceRequired,
		EducationRequired:  raw.EducationRequired,
	}
	if info.ExperienceRequired == "" {
		info.ExperienceRequired = domain.UnknownExperience
	}
	if info.EducationRequired == "" {
		info.EducationRequired = domain.UnknownEducation
	}
	return info, nil
}

// ParseMatchAnalysisFull recovers a full six-dimension MatchAnalysis from a
// Stage-4 résumé-backed completion.
func ParseMatchAnalysisFull(text string) (domain.MatchAnalysis, error) {
	var raw struct {
		OverallScore         float64            `json:"overall_score"`
		Recommendation       string             `json:"recommendation"`
		DimensionScores      map[string]float64 `json:"dimension_scores"`
		MatchedSkills        []string           `json:"matched_skills"`
		MissingSkills        []string           `json:"missing_skills"`
		Summary              string             `json:"summary"`
		ActionRecommendation string             `json:"action_recommendation"`
	}
	if err := ExtractJSON(text, &raw); err == nil {
		return domain.MatchAnalysis{
			Score:                raw.OverallScore,
			OverallScore:         raw.OverallScore,
			Recommendation:       raw.Recommendation,
			DimensionScores:      nonNilScores(raw.DimensionScores),
			MatchedSkills:        nonNil(raw.MatchedSkills),
			MissingSkills:        nonNil(raw.MissingSkills),
			MatchPoints:          []string{},
			MismatchPoints:       []string{},
			Summary:              raw.Summary,
			ActionRecommendation: raw.ActionRecommendation,
		}, nil
	}

	if score, ok := ScoreLexical(text); ok {
		return bucketedMatchFromScore(score), nil
	}

	return domain.MatchAnalysis{}, domain.NewPipelineError(domain.KindParseError, "could not recover a full match analysis from completion text", text, nil)
}

// ParseMatchAnalysisSimple recovers the four-field simple-mode MatchAnalysis
// (score/recommendation/reason/summary) used when no résumé summary is
// available for Stage 4.
func ParseMatchAnalysisSimple(text string) (domain.MatchAnalysis, error) {
	var raw struct {
		Score          float64 `json:"score"`
		Recommendation string  `json:"recommendation"`
		Reason         string  `json:"reason"`
		Summary        string  `json:"summary"`
	}
	if err := ExtractJSON(text, &raw); err == nil {
		return domain.MatchAnalysis{
			Score:           raw.Score,
			OverallScore:    raw.Score,
			Recommendation:  raw.Recommendation,
			DimensionScores: map[string]float64{},
			MatchedSkills:   []string{},
			MissingSkills:   []string{},
			MatchPoints:     []string{},
			MismatchPoints:  []string{},
			Reason:          raw.Reason,
			Summary:         raw.Summary,
		}, nil
	}

	if score, ok := ScoreLexical(text); ok {
		return bucketedMatchFromScore(score), nil
	}

	return domain.MatchAnalysis{}, domain.NewPipelineError(domain.KindParseError, "could not recover a match analysis from completion text", text, nil)
}

// bucketedMatchFromScore derives a recommendation bucket from a lexically
// salvaged numeric score, matching ai_service.py's threshold ladder
// (>=8 strong, >=6 recommended, >=4 consider, else reject).
func bucketedMatchFromScore(score float64) domain.MatchAnalysis {
	var recommendation string
	switch {
	case score >= 8:
		recommendation = domain.RecommendationStrong
	case score >= 6:
		recommendation = domain.RecommendationRecommended
	case score >= 4:
		recommendation = domain.RecommendationConsider
	default:
		recommendation = domain.RecommendationReject
	}
	return domain.MatchAnalysis{
		Score:           score,
		OverallScore:    score,
		Recommendation:  recommendation,
		DimensionScores: map[string]float64{},
		MatchedSkills:   []string{},
		MissingSkills:   []string{},
		MatchPoints:     []string{},
		MismatchPoints:  []string{},
		Summary:         "基于文本中提取的评分推断",
	}
}

// rawSkillEntry mirrors the JSON shape job_analysis_prompts.py's market
// cognition prompt demands: {"name":"..","frequency":"85%","importance":".."}.
type rawSkillEntry struct {
	Name       string `json:"name"`
	Frequency  string `json:"frequency"`
	Importance string `json:"importance"`
}

// ParseMarketReport recovers a MarketReport from a Stage-3 raw completion.
// There is no lexical fallback: a cascade miss is always a ParseError, and
// the caller is expected to substitute the deterministic Aggregator (C7)
// rather than this function guessing at market statistics.
func ParseMarketReport(text string) (domain.MarketReport, error) {
	var raw struct {
		MarketOverview struct {
			TotalJobsAnalyzed int    `json:"total_jobs_analyzed"`
			AnalysisDate      string `json:"analysis_date"`
		} `json:"market_overview"`
		SkillRequirements struct {
			HardSkills struct {
				CoreRequired       []rawSkillEntry `json:"core_required"`
				ImportantPreferred []rawSkillEntry `json:"important_preferred"`
				SpecialScenarios   []rawSkillEntry `json:"special_scenarios"`
			} `json:"hard_skills"`
			SoftSkills struct {
				CoreRequired       []rawSkillEntry `json:"core_required"`
				ImportantPreferred []rawSkillEntry `json:"important_preferred"`
				SpecialScenarios   []rawSkillEntry `json:"special_scenarios"`
			} `json:"soft_skills"`
		} `json:"skill_requirements"`
		CoreResponsibilities []string `json:"core_responsibilities"`
		MarketInsights       struct {
			TechStackTrends         []string          `json:"tech_stack_trends"`
			EmergingSkills          []string          `json:"emerging_skills"`
			ExperienceDistribution  map[string]string `json:"experience_distribution"`
			EducationRequirements   map[string]string `json:"education_requirements"`
		} `json:"market_insights"`
		KeyFindings []string `json:"key_findings"`
	}
	if err := ExtractJSON(text, &raw); err != nil {
		return domain.MarketReport{}, domain.NewPipelineError(domain.KindParseError, "could not recover a market report from completion text", text, err)
	}

	total := raw.MarketOverview.TotalJobsAnalyzed
	toBuckets := func(r struct {
		CoreRequired       []rawSkillEntry `json:"core_required"`
		ImportantPreferred []rawSkillEntry `json:"important_preferred"`
		SpecialScenarios   []rawSkillEntry `json:"special_scenarios"`
	}) domain.SkillBuckets {
		return domain.SkillBuckets{
			CoreRequired:       toSkillEntries(r.CoreRequired),
			ImportantPreferred: toSkillEntries(r.ImportantPreferred),
			SpecialScenarios:   toSkillEntries(r.SpecialScenarios),
		}
	}

	return domain.MarketReport{
		Overview: domain.MarketOverview{
			TotalJobsAnalyzed: total,
			AnalysisDate:      raw.MarketOverview.AnalysisDate,
		},
		SkillRequirements: domain.SkillRequirements{
			HardSkills: toBuckets(raw.SkillRequirements.HardSkills),
			SoftSkills: toBuckets(raw.SkillRequirements.SoftSkills),
		},
		CoreResponsibilities: nonNil(raw.CoreResponsibilities),
		MarketInsights: domain.MarketInsights{
			TechStackTrends:        nonNil(raw.MarketInsights.TechStackTrends),
			EmergingSkills:         nonNil(raw.MarketInsights.EmergingSkills),
			ExperienceDistribution: toIntCounts(raw.MarketInsights.ExperienceDistribution, total),
			EducationRequirements:  toIntCounts(raw.MarketInsights.EducationRequirements, total),
		},
		KeyFindings: nonNil(raw.KeyFindings),
	}, nil
}

func toSkillEntries(raw []rawSkillEntry) []domain.SkillEntry {
	out := make([]domain.SkillEntry, 0, len(raw))
	for _, r := range raw {
		out = append(out, domain.SkillEntry{
			Name:       r.Name,
			Frequency:  parsePercent(r.Frequency),
			Importance: r.Importance,
		})
	}
	return out
}

// parsePercent converts a "85%" (or bare "0.85"/"85") string into a [0,1]
// fraction, tolerating the model's inconsistent formatting.
func parsePercent(s string) float64 {
	s = strings.TrimSpace(s)
	percent := strings.HasSuffix(s, "%")
	s = strings.TrimSuffix(s, "%")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	if percent || f > 1 {
		f /= 100
	}
	if f < 0 {
		f = 0
	}
	if f > 1 {
		f = 1
	}
	return f
}

// toIntCounts converts the model's percentage-labeled distribution map into
// approximate job counts against total, since domain.MarketInsights keeps
// distributions as counts (the Aggregator's native unit) rather than
// percentages, for a single consistent representation regardless of
// whether the report came from the LLM or the deterministic fallback.
func toIntCounts(raw map[string]string, total int) map[string]int {
	out := make(map[string]int, len(raw))
	for k, v := range raw {
		pct := parsePercent(v)
		out[k] = int(pct*float64(total) + 0.5)
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func nonNilScores(m map[string]float64) map[string]float64 {
	if m == nil {
		return map[string]float64{}
	}
	return m
}
