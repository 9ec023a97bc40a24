// Package prompt builds the five canonical prompt templates (Screen,
// Extract, Market, MatchFull, MatchSimple) as pure, deterministic string
// functions, grounded on extraction_prompts.py and job_analysis_prompts.py.
package prompt

import (
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"
	_ "github.com/pkoukk/tiktoken-go-loader"
)

var (
	encOnce sync.Once
	enc     *tiktoken.Tiktoken
)

func encoding() *tiktoken.Tiktoken {
	encOnce.Do(func() {
		e, err := tiktoken.GetEncoding("cl100k_base")
		if err == nil {
			enc = e
		}
	})
	return enc
}

// truncateRunes truncates text to at most maxRunes runes, used for the
// field-level character budgets named directly in extraction_prompts.py (300 for
// extraction, 500 for screening, 1000 for simple matching).
func truncateRunes(text string, maxRunes int) string {
	r := []rune(text)
	if len(r) <= maxRunes {
		return text
	}
	return string(r[:maxRunes])
}

// truncateTokens truncates text to at most maxTokens tokens as measured by
// the cl100k_base encoding, falling back to a rune-count heuristic
// (roughly 2 runes per token for mixed CJK/Latin text) when the tokenizer's
// offline ranks are unavailable, per SPEC_FULL.md §4.4.
func truncateTokens(text string, maxTokens int) string {
	e := encoding()
	if e == nil {
		return truncateRunes(text, maxTokens*2)
	}
	tokens := e.Encode(text, nil, nil)
	if len(tokens) <= maxTokens {
		return text
	}
	return e.Decode(tokens[:maxTokens])
}

// joinNonEmpty joins non-empty strings with sep, skipping blanks — used for
// intentions/excluded-type lists rendered into prompt text.
func joinNonEmpty(items []string, sep string) string {
	var kept []string
	for _, it := range items {
		if strings.TrimSpace(it) != "" {
			kept = append(kept, it)
		}
	}
	if len(kept) == 0 {
		return "无"
	}
	return strings.Join(kept, sep)
}
