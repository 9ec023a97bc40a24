package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScreenLexical_PositivePhrase(t *testing.T) {
	relevant, reason, ok := ScreenLexical("综合来看，该岗位符合求职意向，建议投递。")
	assert.True(t, ok)
	assert.True(t, relevant)
	assert.Equal(t, "岗位与求职意向匹配", reason)
}

func TestScreenLexical_NegativePhrase(t *testing.T) {
	relevant, reason, ok := ScreenLexical("经分析，该岗位与求职意向不相关，不建议投递。")
	assert.True(t, ok)
	assert.False(t, relevant)
	assert.Equal(t, "岗位不符合求职意向", reason)
}

func TestScreenLexical_SignalCountingFallback(t *testing.T) {
	relevant, _, ok := ScreenLexical("这个岗位相关相关相关，但是不相关。")
	assert.True(t, ok)
	assert.True(t, relevant)
}

func TestScreenLexical_TieIsNotOK(t *testing.T) {
	_, _, ok := ScreenLexical("这是一段完全无关的文本，没有任何信号词。")
	assert.False(t, ok)
}

func TestScreenLexical_ExtractsReasonSentence(t *testing.T) {
	text := "分析如下。该岗位属于后端开发方向，与候选人技能高度相关。综合判断，比较匹配。"
	relevant, reason, ok := ScreenLexical(text)
	assert.True(t, ok)
	assert.True(t, relevant)
	assert.Equal(t, "该岗位属于后端开发方向，与候选人技能高度相关", reason)
}

func TestScoreLexical_LabeledScore(t *testing.T) {
	score, ok := ScoreLexical("综合评分: 7.5分，建议考虑")
	assert.True(t, ok)
	assert.Equal(t, 7.5, score)
}

func TestScoreLexical_ClampsToRange(t *testing.T) {
	score, ok := ScoreLexical("score: 15")
	assert.True(t, ok)
	assert.Equal(t, 10.0, score)
}

func TestScoreLexical_NoLabelFound(t *testing.T) {
	_, ok := ScoreLexical("this candidate seems like an 8 out of 10 fit")
	assert.False(t, ok)
}
