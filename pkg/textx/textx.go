// Package textx provides the small text-sanitization step the Response
// Parser (C3) runs over raw LLM completion text before any JSON-extraction
// strategy sees it.
package textx

import (
	"strings"
)

// zeroWidth is the set of invisible characters models occasionally emit at
// the start of a completion (a UTF-8 BOM) or between tokens (zero-width
// space/joiners); left in place outside a string value they make
// encoding/json reject an otherwise well-formed document.
var zeroWidth = map[rune]bool{
	0xFEFF: true, // byte order mark
	0x200B: true, // zero-width space
	0x200C: true, // zero-width non-joiner
	0x200D: true, // zero-width joiner
}

// SanitizeText removes control characters (except tab/newline/CR) and
// zero-width/BOM characters, then trims surrounding whitespace.
func SanitizeText(s string) string {
	var b strings.Builder
	for _, r := range s {
		if zeroWidth[r] {
			continue
		}
		if r == '\n' || r == '\r' || r == '\t' || (r >= 32 && r != 127) {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}
