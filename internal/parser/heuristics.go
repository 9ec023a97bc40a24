package parser

import (
	"regexp"
	"strconv"
	"strings"
)

// Phrase cues used by the lexical screening heuristic when no JSON can be
// recovered from a screening completion. Transcribed verbatim from
// glm_client.py's reasoning_content relevance salvage, which this cascade
// generalizes to any provider's raw text, not just GLM's.
var (
	relevantPhrases = []string{
		"符合求职意向", "与求职意向相关", "属于目标岗位",
		"匹配用户需求", "是相关岗位", "符合要求",
	}
	irrelevantPhrases = []string{
		"不符合求职意向", "与求职意向不相关", "不属于目标岗位",
		"属于不接受的岗位类型", "明确排除", "用户不接受此类岗位",
	}
	reasonCueWords = []string{"属于", "符合", "匹配", "相关"}
)

// ScreenLexical infers a relevance verdict and reason from free-form text
// when ExtractJSON finds no parseable object. It never fabricates a
// confident verdict it cannot support: ok is false when even the
// signal-counting fallback is a tie (equal positive/negative mentions).
func ScreenLexical(text string) (relevant bool, reason string, ok bool) {
	switch {
	case containsAny(text, relevantPhrases):
		return true, "岗位与求职意向匹配", true
	case containsAny(text, irrelevantPhrases):
		return false, "岗位不符合求职意向", true
	}

	positive := strings.Count(text, "相关") + strings.Count(text, "符合") + strings.Count(text, "匹配")
	negative := strings.Count(text, "不相关") + strings.Count(text, "不符合") + strings.Count(text, "不匹配")
	if positive == negative {
		return false, "", false
	}
	relevant = positive > negative
	reason = "岗位特征与求职意向不匹配"
	if relevant {
		reason = "岗位特征与求职意向部分匹配"
	}
	if extracted, found := extractReasonSentence(text); found {
		reason = extracted
	}
	return relevant, reason, true
}

func containsAny(text string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(text, p) {
			return true
		}
	}
	return false
}

// extractReasonSentence finds the first Chinese sentence mentioning a
// relevance cue word, mirroring glm_client.py's "。"-split scan.
func extractReasonSentence(text string) (string, bool) {
	if !strings.Contains(text, "岗位") {
		return "", false
	}
	for _, sentence := range strings.Split(text, "。") {
		for _, cue := range reasonCueWords {
			if strings.Contains(sentence, cue) {
				trimmed := strings.TrimSpace(sentence)
				if len(trimmed) > 10 {
					if len([]rune(trimmed)) > 100 {
						trimmed = string([]rune(trimmed)[:100])
					}
					return trimmed, true
				}
			}
		}
	}
	return "", false
}

// numericScoreRe matches a labeled numeric score anywhere in free text,
// transcribed from ai_service.py's fallback regex
// `(?:总分|综合|评分|score).*?(\d+(?:\.\d+)?)`.
var numericScoreRe = regexp.MustCompile(`(?is)(?:总分|综合|评分|score).*?(\d+(?:\.\d+)?)`)

// ScoreLexical extracts a 0-10 match score from free text via the labeled
// numeric regex. ok is false when no labeled score is found; callers MUST
// NOT substitute a default score in that case (SPEC_FULL.md §9).
func ScoreLexical(text string) (score float64, ok bool) {
	m := numericScoreRe.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	f, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	if f < 0 {
		f = 0
	}
	if f > 10 {
		f = 10
	}
	return f, true
}
