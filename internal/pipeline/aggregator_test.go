package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/jobmatch-analyzer/internal/domain"
)

func extractedFixture(hard, soft []string, resp []string, exp, edu string) domain.ExtractedInfo {
	return domain.ExtractedInfo{
		Responsibilities:   resp,
		HardSkills:         domain.HardSkills{Required: hard},
		SoftSkills:         soft,
		ExperienceRequired: exp,
		EducationRequired:  edu,
	}
}

func TestAggregate_EmptyInput(t *testing.T) {
	report := Aggregate(nil)
	assert.Equal(t, 0, report.Overview.TotalJobsAnalyzed)
	assert.Empty(t, report.SkillRequirements.HardSkills.CoreRequired)
	assert.Empty(t, report.SkillRequirements.HardSkills.ImportantPreferred)
	assert.Empty(t, report.SkillRequirements.HardSkills.SpecialScenarios)
	assert.Empty(t, report.CoreResponsibilities)
	assert.Empty(t, report.KeyFindings)
}

func TestAggregate_SkillFrequencyBuckets(t *testing.T) {
	extracts := []domain.ExtractedInfo{
		extractedFixture([]string{"Python", "Go"}, nil, nil, "3-5年", "本科"),
		extractedFixture([]string{"Python", "Go"}, nil, nil, "3-5年", "本科"),
		extractedFixture([]string{"Python"}, nil, nil, "0-2年", "本科"),
		extractedFixture([]string{"Rust"}, nil, nil, "5年以上", "硕士"),
	}
	report := Aggregate(extracts)
	assert.Equal(t, 4, report.Overview.TotalJobsAnalyzed)

	byName := map[string]domain.SkillEntry{}
	for _, e := range report.SkillRequirements.HardSkills.CoreRequired {
		byName[e.Name] = e
	}
	for _, e := range report.SkillRequirements.HardSkills.ImportantPreferred {
		byName[e.Name] = e
	}
	for _, e := range report.SkillRequirements.HardSkills.SpecialScenarios {
		byName[e.Name] = e
	}

	python, ok := byName["Python"]
	require.True(t, ok)
	assert.InDelta(t, 0.75, python.Frequency, 0.001)
	assert.Equal(t, "核心必备", python.Importance)

	goSkill, ok := byName["Go"]
	require.True(t, ok)
	assert.InDelta(t, 0.5, goSkill.Frequency, 0.001)
	assert.Equal(t, "重要加分", goSkill.Importance)

	rust, ok := byName["Rust"]
	require.True(t, ok)
	assert.InDelta(t, 0.25, rust.Frequency, 0.001)
	assert.Equal(t, "特定场景", rust.Importance)
}

func TestAggregate_ResponsibilitiesAndDistributions(t *testing.T) {
	extracts := []domain.ExtractedInfo{
		extractedFixture(nil, nil, []string{"负责后端开发", "参与需求评审"}, "3-5年", "本科"),
		extractedFixture(nil, nil, []string{"负责后端开发"}, "5年以上", "硕士"),
		extractedFixture(nil, nil, []string{"负责后端开发", "撰写技术文档"}, domain.UnknownExperience, domain.UnknownEducation),
	}
	report := Aggregate(extracts)
	require.NotEmpty(t, report.CoreResponsibilities)
	assert.Equal(t, "负责后端开发", report.CoreResponsibilities[0])

	assert.Equal(t, 1, report.MarketInsights.ExperienceDistribution["3-5年"])
	assert.Equal(t, 1, report.MarketInsights.ExperienceDistribution["5年以上"])
	assert.Equal(t, 1, report.MarketInsights.ExperienceDistribution["未注明"])
	assert.Equal(t, 1, report.MarketInsights.EducationRequirements["本科"])
	assert.Equal(t, 1, report.MarketInsights.EducationRequirements["硕士"])
	assert.Equal(t, 1, report.MarketInsights.EducationRequirements["未注明"])
}

func TestAggregate_DeterministicAcrossRuns(t *testing.T) {
	extracts := []domain.ExtractedInfo{
		extractedFixture([]string{"Python", "SQL", "Docker"}, []string{"沟通"}, []string{"负责数据分析"}, "3-5年", "本科"),
		extractedFixture([]string{"Python", "SQL"}, []string{"沟通", "协作"}, []string{"负责数据分析", "撰写报表"}, "0-3年", "不限"),
	}
	first := Aggregate(extracts)
	second := Aggregate(extracts)
	assert.Equal(t, first, second)
}

func TestBucketExperience(t *testing.T) {
	cases := map[string]string{
		"":       "未注明",
		"未提及":    "未注明",
		"经验不限":   "经验不限",
		"1-3年":   "0-3年",
		"3-5年":   "3-5年",
		"5年以上":   "5年以上",
		"8年":     "5年以上",
		"2年":     "0-3年",
	}
	for in, want := range cases {
		assert.Equal(t, want, bucketExperience(in), "input=%q", in)
	}
}

func TestBucketEducation(t *testing.T) {
	cases := map[string]string{
		"":      "未注明",
		"未提及":   "未注明",
		"本科及以上": "本科",
		"硕士研究生": "硕士",
		"大专学历":  "大专",
		"学历不限":  "不限",
		"博士":    "博士",
	}
	for in, want := range cases {
		assert.Equal(t, want, bucketEducation(in), "input=%q", in)
	}
}

func TestFilterAndSort(t *testing.T) {
	items := []ItemResult{
		{Job: domain.JobRecord{Title: "a"}, Match: domain.MatchAnalysis{Score: 4}},
		{Job: domain.JobRecord{Title: "b"}, Match: domain.MatchAnalysis{Score: 8}},
		{Job: domain.JobRecord{Title: "c"}, Match: domain.MatchAnalysis{Score: 6}},
	}
	out := FilterAndSort(items, 6)
	require.Len(t, out, 2)
	assert.Equal(t, "b", out[0].Job.Title)
	assert.Equal(t, "c", out[1].Job.Title)
}
