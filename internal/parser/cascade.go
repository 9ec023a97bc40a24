// Package parser implements the Response Parser (C3): a cascade of
// increasingly permissive strategies for recovering a JSON object from raw
// LLM completion text, plus schema-specific extraction with a lexical
// heuristics fallback when no strategy yields valid JSON.
package parser

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/fairyhunter13/jobmatch-analyzer/pkg/textx"
)

var (
	fencedBlockRe  = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")
	trailingCommaRe = regexp.MustCompile(`,(\s*[}\]])`)
	lineCommentRe   = regexp.MustCompile(`(?m)(^|[\s,{\[])//[^\n]*`)
	unquotedKeyRe   = regexp.MustCompile(`([{,]\s*)([A-Za-z_][A-Za-z0-9_]*)(\s*:)`)
	boldRe          = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	nestedBraceRe   = regexp.MustCompile(`(?s)\{[^{}]*(?:\{[^{}]*\}[^{}]*)*\}`)
)

// ExtractJSON runs the extraction cascade against raw text and returns the
// first candidate JSON document that unmarshals into v. Each strategy is
// attempted in order; the cascade stops at the first success. Grounded on
// response_cleaner.go's CleanJSONResponse pipeline (fenced strip → format
// fix → brace extraction → trailing-comma/key-quoting repair) and
// glm_client.py's reasoning_content regex salvage.
func ExtractJSON(text string, v any) error {
	text = textx.SanitizeText(text)
	candidates := []func(string) string{
		stripFencedBlock,
		identity,
		braceBalancedSubstring,
		permissiveNestedBraces,
	}
	var lastErr error
	for _, candidate := range candidates {
		doc := strings.TrimSpace(candidate(text))
		if doc == "" {
			continue
		}
		if err := json.Unmarshal([]byte(doc), v); err == nil {
			return nil
		}
		repaired := repairCommonIssues(doc)
		if err := json.Unmarshal([]byte(repaired), v); err == nil {
			return nil
		} else {
			lastErr = err
		}
	}
	if lastErr == nil {
		lastErr = errNoJSONFound
	}
	return lastErr
}

func identity(s string) string { return s }

func stripFencedBlock(s string) string {
	m := fencedBlockRe.FindStringSubmatch(s)
	if m == nil {
		return ""
	}
	return m[1]
}

// braceBalancedSubstring walks the string tracking brace depth and returns
// the first fully-balanced {...} span, tolerant of prose before/after it.
func braceBalancedSubstring(s string) string {
	start := strings.IndexByte(s, '{')
	if start == -1 {
		return ""
	}
	depth := 0
	for i := start; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}

// permissiveNestedBraces matches a one-level-nested brace span via regex,
// looser than braceBalancedSubstring: it tolerates an unclosed opening
// brace earlier in the text (the glm_client.py reasoning-content case).
func permissiveNestedBraces(s string) string {
	m := nestedBraceRe.FindString(s)
	return m
}

// repairCommonIssues strips "//" line comments and fixes markdown artifacts,
// trailing commas, and unquoted keys before a second parse attempt.
func repairCommonIssues(s string) string {
	s = lineCommentRe.ReplaceAllString(s, "$1")
	s = strings.ReplaceAll(s, "`", "\"")
	s = boldRe.ReplaceAllString(s, `"$1"`)
	s = trailingCommaRe.ReplaceAllString(s, "$1")
	s = unquotedKeyRe.ReplaceAllString(s, `$1"$2"$3`)
	return s
}

type parseErr string

func (e parseErr) Error() string { return string(e) }

const errNoJSONFound = parseErr("no JSON object recovered from response text")
