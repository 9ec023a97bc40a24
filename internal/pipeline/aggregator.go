package pipeline

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/fairyhunter13/jobmatch-analyzer/internal/domain"
)

// Aggregator (C7) thresholds for bucketing a skill's demand frequency,
// transcribed from the market-cognition prompt's own classification rule
// (job_analysis_prompts.py's get_market_cognition_prompt).
const (
	coreRequiredThreshold       = 0.7
	importantPreferredThreshold = 0.3
)

var (
	yearRangeRe = regexp.MustCompile(`(\d+)\s*[-~到]\s*(\d+)\s*年`)
	yearAboveRe = regexp.MustCompile(`(\d+)\s*年以上`)
	yearSingleRe = regexp.MustCompile(`(\d+)\s*年`)
)

// Aggregate computes a deterministic, structurally-valid MarketReport
// directly from the Stage-2 extractions, bypassing the LLM entirely. It is
// the Aggregator's (C7) core operation: used both when Stage 3's LLM call
// fails (SPEC_FULL.md §8 scenario 6) and, with an empty slice, for the
// zero-relevant-jobs boundary case (§8 scenario 2 / the all-reject path).
func Aggregate(extracts []domain.ExtractedInfo) domain.MarketReport {
	total := len(extracts)

	hardCounts := map[string]int{}
	hardDisplay := map[string]string{}
	softCounts := map[string]int{}
	softDisplay := map[string]string{}
	respCounts := map[string]int{}
	respDisplay := map[string]string{}
	expBuckets := map[string]int{}
	eduBuckets := map[string]int{}

	for _, e := range extracts {
		countOnce(hardCounts, hardDisplay, append(append([]string{}, e.HardSkills.Required...), e.HardSkills.Preferred...))
		countOnce(softCounts, softDisplay, e.SoftSkills)
		countOnce(respCounts, respDisplay, e.Responsibilities)
		expBuckets[bucketExperience(e.ExperienceRequired)]++
		eduBuckets[bucketEducation(e.EducationRequired)]++
	}

	hardSkills := bucketSkills(hardCounts, hardDisplay, total)
	softSkills := bucketSkills(softCounts, softDisplay, total)
	coreResponsibilities := topPhrases(respCounts, respDisplay)

	return domain.MarketReport{
		Overview: domain.MarketOverview{TotalJobsAnalyzed: total},
		SkillRequirements: domain.SkillRequirements{
			HardSkills: hardSkills,
			SoftSkills: softSkills,
		},
		CoreResponsibilities: coreResponsibilities,
		MarketInsights: domain.MarketInsights{
			TechStackTrends:        topNames(hardSkills.CoreRequired, 5),
			EmergingSkills:         topNames(hardSkills.SpecialScenarios, 5),
			ExperienceDistribution: expBuckets,
			EducationRequirements:  eduBuckets,
		},
		KeyFindings: keyFindings(total, hardSkills),
	}
}

// countOnce increments the normalized-key count for each distinct item in
// values, once per call (an extract mentioning a skill twice in its own
// required+preferred lists still counts as one occurrence for that job).
func countOnce(counts map[string]int, display map[string]string, values []string) {
	seen := map[string]bool{}
	for _, v := range values {
		n := normalize(v)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		counts[n]++
		if _, ok := display[n]; !ok {
			display[n] = strings.TrimSpace(v)
		}
	}
}

// normalize case-normalizes and trims a skill/responsibility string for
// frequency counting (SPEC_FULL.md §4.7: "case-normalized, trimmed").
func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// bucketSkills classifies every counted skill into the three demand-
// frequency tiers and returns entries sorted by descending frequency (then
// name, for a deterministic tie-break) so repeated runs over the same
// extractions are byte-for-byte identical.
func bucketSkills(counts map[string]int, display map[string]string, total int) domain.SkillBuckets {
	buckets := domain.SkillBuckets{
		CoreRequired:       []domain.SkillEntry{},
		ImportantPreferred: []domain.SkillEntry{},
		SpecialScenarios:   []domain.SkillEntry{},
	}
	if total == 0 {
		return buckets
	}
	for n, c := range counts {
		freq := float64(c) / float64(total)
		entry := domain.SkillEntry{Name: display[n], Frequency: freq}
		switch {
		case freq >= coreRequiredThreshold:
			entry.Importance = "核心必备"
			buckets.CoreRequired = append(buckets.CoreRequired, entry)
		case freq >= importantPreferredThreshold:
			entry.Importance = "重要加分"
			buckets.ImportantPreferred = append(buckets.ImportantPreferred, entry)
		default:
			entry.Importance = "特定场景"
			buckets.SpecialScenarios = append(buckets.SpecialScenarios, entry)
		}
	}
	sortEntries(buckets.CoreRequired)
	sortEntries(buckets.ImportantPreferred)
	sortEntries(buckets.SpecialScenarios)
	return buckets
}

func sortEntries(entries []domain.SkillEntry) {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Frequency != entries[j].Frequency {
			return entries[i].Frequency > entries[j].Frequency
		}
		return entries[i].Name < entries[j].Name
	})
}

// topPhrases returns the 3-5 most frequent responsibility phrases (fewer if
// the input doesn't have that many distinct phrases), tie-broken
// alphabetically for determinism.
func topPhrases(counts map[string]int, display map[string]string) []string {
	type entry struct {
		name  string
		count int
	}
	entries := make([]entry, 0, len(counts))
	for n, c := range counts {
		entries = append(entries, entry{name: display[n], count: c})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].count != entries[j].count {
			return entries[i].count > entries[j].count
		}
		return entries[i].name < entries[j].name
	})
	n := 5
	if len(entries) < n {
		n = len(entries)
	}
	out := make([]string, 0, n)
	for _, e := range entries[:n] {
		out = append(out, e.name)
	}
	return out
}

func topNames(entries []domain.SkillEntry, n int) []string {
	if len(entries) < n {
		n = len(entries)
	}
	out := make([]string, 0, n)
	for _, e := range entries[:n] {
		out = append(out, e.Name)
	}
	return out
}

func keyFindings(total int, hardSkills domain.SkillBuckets) []string {
	if total == 0 {
		return []string{}
	}
	findings := []string{fmt.Sprintf("共分析%d个岗位的技能需求", total)}
	if len(hardSkills.CoreRequired) > 0 {
		findings = append(findings, fmt.Sprintf("最核心的必备技能是%s", hardSkills.CoreRequired[0].Name))
	}
	return findings
}

// bucketExperience classifies a free-text experience requirement into one
// of a fixed set of year-range buckets by regex-identified year counts
// (SPEC_FULL.md §4.7).
func bucketExperience(s string) string {
	s = strings.TrimSpace(s)
	if s == "" || s == domain.UnknownExperience {
		return "未注明"
	}
	if strings.Contains(s, "不限") || strings.Contains(s, "不要求") {
		return "经验不限"
	}
	if m := yearRangeRe.FindStringSubmatch(s); m != nil {
		_, max := atoi(m[1]), atoi(m[2])
		return bucketYears(max)
	}
	if m := yearAboveRe.FindStringSubmatch(s); m != nil {
		// "N年以上" means more than N years, so it belongs to the bucket above N.
		return bucketYears(atoi(m[1]) + 1)
	}
	if m := yearSingleRe.FindStringSubmatch(s); m != nil {
		return bucketYears(atoi(m[1]))
	}
	return "未注明"
}

func bucketYears(years int) string {
	switch {
	case years <= 3:
		return "0-3年"
	case years <= 5:
		return "3-5年"
	default:
		return "5年以上"
	}
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

// bucketEducation classifies a free-text education requirement against a
// fixed keyword set (SPEC_FULL.md §4.7).
func bucketEducation(s string) string {
	s = strings.TrimSpace(s)
	switch {
	case s == "" || s == domain.UnknownEducation:
		return "未注明"
	case strings.Contains(s, "博士"):
		return "博士"
	case strings.Contains(s, "硕士") || strings.Contains(s, "研究生"):
		return "硕士"
	case strings.Contains(s, "本科"):
		return "本科"
	case strings.Contains(s, "大专") || strings.Contains(s, "专科"):
		return "大专"
	case strings.Contains(s, "不限"):
		return "不限"
	default:
		return "未注明"
	}
}

// FilterAndSort is the supplemented, non-core convenience named by
// SPEC_FULL.md §4.7/§2.3: keep items scoring at least minScore, sorted
// descending by score, grounded on enhanced_job_analyzer.py's
// filter_and_sort_jobs.
func FilterAndSort(items []ItemResult, minScore float64) []ItemResult {
	out := make([]ItemResult, 0, len(items))
	for _, it := range items {
		if it.Match.Score >= minScore {
			out = append(out, it)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Match.Score > out[j].Match.Score
	})
	return out
}
