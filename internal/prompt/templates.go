package prompt

import (
	"fmt"
	"strings"

	"github.com/fairyhunter13/jobmatch-analyzer/internal/domain"
)

// HRSystemPrompt is the canonical system-role preamble for match-analysis
// calls, transcribed from job_analysis_prompts.py's get_hr_system_prompt.
const HRSystemPrompt = `你是一位拥有15年丰富经验的资深HR总监，专精于人才与岗位的精准匹配分析。

你具备以下专业能力：
1. 深度理解候选人的核心竞争力和发展潜力
2. 精准评估岗位要求与人才能力的匹配度
3. 多维度分析人岗匹配的各个关键因素
4. 基于市场趋势提供客观的职业发展建议
5. 识别潜在的职业风险和机会点

你的分析必须：
- 客观公正，基于具体事实和数据
- 多维度考量，不仅看技能匹配，还要考虑发展潜力
- 前瞻性思考，结合行业发展趋势
- 实用性强，提供可行的建议和改进方案`

// Screen builds the Stage-1 relevance-screening prompt: job fields plus the
// candidate's intentions/excluded types, demanding a {relevant, reason} verdict.
func Screen(job domain.JobRecord, profile domain.UserProfile) string {
	description := truncateRunes(job.Description, 500)
	var b strings.Builder
	fmt.Fprintf(&b, "请判断以下岗位是否与求职意向相关：\n\n求职意向：\n%s\n", joinNonEmpty(profile.Intentions, "、"))
	if len(profile.ExcludedTypes) > 0 {
		fmt.Fprintf(&b, "明确排除的岗位类型：\n%s\n", joinNonEmpty(profile.ExcludedTypes, "、"))
	}
	fmt.Fprintf(&b, `
岗位信息：
职位：%s
公司：%s
描述：%s

判断标准：
1. 岗位类型是否匹配求职意向
2. 核心工作内容是否相关
3. 技能要求是否对口

输出要求：
- 只输出一个JSON对象
- 格式：{"relevant": true/false, "reason": "简短说明原因"}
- relevant为true表示相关，false表示不相关`, job.Title, job.Company, description)
	return truncateTokens(b.String(), 2000)
}

// Extract builds the Stage-2 structured-extraction prompt: job fields
// truncated to a 300-char description, demanding an ExtractedInfo JSON object.
func Extract(job domain.JobRecord) string {
	description := truncateRunes(job.Description, 300)
	prompt := fmt.Sprintf(`分析以下岗位信息，提取关键要素：

岗位名称：%s
公司：%s
岗位描述：
%s

请从上述岗位描述中提取以下信息：
1. 岗位职责（responsibilities）：主要工作内容
2. 硬技能要求（hard_skills）：技术、工具、专业能力等
   - required：必须掌握的技能
   - preferred：加分项技能
3. 软技能要求（soft_skills）：沟通、团队协作等
4. 经验要求（experience_required）：工作年限要求
5. 学历要求（education_required）：最低学历要求

输出格式要求：
- 必须是标准JSON格式
- 不要输出任何其他文字
- 如果某项信息未提及，使用"未提及"或空数组

示例输出格式（请根据实际岗位信息填充）：
{
    "responsibilities": ["实际职责1", "实际职责2", "实际职责3"],
    "hard_skills": {
        "required": ["必备技能1", "必备技能2"],
        "preferred": ["加分技能1", "加分技能2"]
    },
    "soft_skills": ["软技能1", "软技能2"],
    "experience_required": "3-5年",
    "education_required": "本科"
}`, job.Title, job.Company, description)
	return truncateTokens(prompt, 1500)
}

// Market builds the Stage-3 cross-sectional market-cognition prompt from the
// aggregated extracted skill/responsibility samples across every screened-in job.
func Market(extracts []domain.ExtractedInfo) string {
	var hardSkills, softSkills, responsibilities []string
	for _, e := range extracts {
		hardSkills = append(hardSkills, e.HardSkills.Required...)
		hardSkills = append(hardSkills, e.HardSkills.Preferred...)
		softSkills = append(softSkills, e.SoftSkills...)
		responsibilities = append(responsibilities, e.Responsibilities...)
	}
	hardSkills = capSlice(hardSkills, 50)
	softSkills = capSlice(softSkills, 30)
	responsibilities = capSlice(responsibilities, 20)

	return fmt.Sprintf(`基于%d个岗位的信息提取结果，请生成岗位市场认知报告。

【分析任务】
1. 技能需求统计与分类
   - 统计每个技能的出现频次
   - 按频次分类：核心必备（70%%+）、重要加分（30%%-70%%）、特殊场景（<30%%）
   - 区分硬技能和软技能

2. 核心职责总结
   - 归纳最常见的3-5项核心工作职责
   - 识别不同公司的职责差异

3. 市场洞察
   - 行业技术栈趋势
   - 新兴技能需求
   - 经验和学历要求分布

【已收集的数据样本】
- 硬技能样本（前50个）：%s
- 软技能样本（前30个）：%s
- 职责样本（前20个）：%s

请按以下JSON格式返回分析结果：
{
    "market_overview": {"total_jobs_analyzed": %d, "analysis_date": "今天的日期"},
    "skill_requirements": {
        "hard_skills": {
            "core_required": [{"name": "技能名", "frequency": "85%%", "importance": "核心必备"}],
            "important_preferred": [{"name": "技能名", "frequency": "45%%", "importance": "重要加分"}],
            "special_scenarios": [{"name": "技能名", "frequency": "15%%", "importance": "特定场景"}]
        },
        "soft_skills": {
            "core_required": [{"name": "软技能名", "frequency": "80%%", "importance": "核心必备"}],
            "important_preferred": [{"name": "软技能名", "frequency": "50%%", "importance": "重要加分"}],
            "special_scenarios": [{"name": "软技能名", "frequency": "20%%", "importance": "特定场景"}]
        }
    },
    "core_responsibilities": ["核心职责1", "核心职责2", "核心职责3"],
    "market_insights": {
        "tech_stack_trends": ["趋势1", "趋势2"],
        "emerging_skills": ["新兴技能1", "新兴技能2"],
        "experience_distribution": {"0-3年": "X%%", "3-5年": "Y%%", "5年以上": "Z%%"},
        "education_requirements": {"本科": "X%%", "硕士": "Y%%", "不限": "Z%%"}
    },
    "key_findings": ["关键发现1", "关键发现2", "关键发现3"]
}`, len(extracts), strings.Join(hardSkills, "、"), strings.Join(softSkills, "、"), strings.Join(responsibilities, " | "), len(extracts))
}

// MatchFull builds the Stage-4 résumé-backed six-dimension match-analysis
// prompt, demanding a full MatchAnalysis JSON object.
func MatchFull(job domain.JobRecord, resume domain.ResumeSummary) string {
	description := truncateRunes(job.Description, 500)
	more := ""
	if len([]rune(job.Description)) > 500 {
		more = "..."
	}
	prompt := fmt.Sprintf(`请基于候选人简历分析结果，对以下岗位进行精准匹配分析：

【候选人简历分析摘要】
- 综合竞争力评分：%.1f/10
- 核心优势：%s
- 职业发展建议：%s

【目标岗位信息】
- 岗位标题：%s
- 公司名称：%s
- 薪资范围：%s
- 工作地点：%s
- 岗位描述：%s%s

请从以下6个维度进行深度匹配分析，每个维度给出1-10分评分：job_match, skill_match, experience_match, skill_coverage, keyword_match, hard_requirements。

请按以下JSON格式返回分析结果：
{
    "overall_score": 综合匹配度评分(1-10),
    "recommendation": "强烈推荐/推荐/可以考虑/不推荐",
    "dimension_scores": {
        "job_match": 分数(1-10),
        "skill_match": 分数(1-10),
        "experience_match": 分数(1-10),
        "skill_coverage": 分数(1-10),
        "keyword_match": 分数(1-10),
        "hard_requirements": 分数(1-10)
    },
    "matched_skills": ["列出候选人掌握且岗位需要的技能"],
    "missing_skills": ["列出岗位要求但候选人缺失的技能"],
    "summary": "一句话总结",
    "action_recommendation": "明确的行动建议"
}`, resume.CompetitivenessScore, joinNonEmpty(resume.Strengths, "、"), orDefault(resume.CareerAdvice, "暂无"),
		job.Title, job.Company, orDefault(job.Salary, "未提供"), orDefault(job.Location, "未提供"), description, more)
	return truncateTokens(prompt, 3000)
}

// MatchSimple builds the Stage-4 reduced match-analysis prompt used when no
// résumé summary is available, demanding score/recommendation/reason/summary.
func MatchSimple(job domain.JobRecord, profile domain.UserProfile) string {
	description := truncateRunes(job.Description, 1000)
	requirements := fmt.Sprintf("求职意向：%s\n期望薪资：%.0fK-%.0fK\n工作年限：%d年\n核心技能：%s",
		joinNonEmpty(profile.Intentions, "、"), profile.SalaryRange.MinK, profile.SalaryRange.MaxK,
		profile.ExperienceYears, joinNonEmpty(profile.Skills, "、"))

	prompt := fmt.Sprintf(`你是一个专业的职业匹配分析师。请分析以下岗位信息与求职者要求的匹配度。

岗位信息：
- 标题：%s
- 公司：%s
- 薪资：%s
- 工作地点：%s

岗位描述摘要：
%s

求职者要求：
%s

请从以下维度进行深度分析：
1. 岗位类型匹配度
2. 技能匹配度
3. 经验匹配度
4. 薪资合理性
5. 发展前景

请以JSON格式回复：
{
    "score": 评分(1-10),
    "recommendation": "强烈推荐/推荐/可以考虑/不推荐",
    "reason": "详细理由",
    "summary": "一句话总结"
}`, job.Title, job.Company, orDefault(job.Salary, "未提供"), orDefault(job.Location, "未提供"), description, requirements)
	return truncateTokens(prompt, 2000)
}

func capSlice(s []string, n int) []string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
