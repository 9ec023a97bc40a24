package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type simpleDoc struct {
	A int    `json:"a"`
	B string `json:"b"`
}

func TestExtractJSON_DirectJSON(t *testing.T) {
	var d simpleDoc
	require.NoError(t, ExtractJSON(`{"a": 1, "b": "hi"}`, &d))
	assert.Equal(t, 1, d.A)
	assert.Equal(t, "hi", d.B)
}

func TestExtractJSON_FencedBlock(t *testing.T) {
	var d simpleDoc
	text := "Here is the result:\n```json\n{\"a\": 2, \"b\": \"fenced\"}\n```\nthanks"
	require.NoError(t, ExtractJSON(text, &d))
	assert.Equal(t, 2, d.A)
	assert.Equal(t, "fenced", d.B)
}

func TestExtractJSON_BraceBalancedSubstring(t *testing.T) {
	var d simpleDoc
	text := "Sure, based on my analysis the result is {\"a\": 3, \"b\": \"embedded\"} and that's final."
	require.NoError(t, ExtractJSON(text, &d))
	assert.Equal(t, 3, d.A)
	assert.Equal(t, "embedded", d.B)
}

func TestExtractJSON_TrailingCommaRepaired(t *testing.T) {
	var d simpleDoc
	text := `{"a": 4, "b": "trailing",}`
	require.NoError(t, ExtractJSON(text, &d))
	assert.Equal(t, 4, d.A)
}

func TestExtractJSON_UnquotedKeysRepaired(t *testing.T) {
	var d simpleDoc
	text := `{a: 5, b: "unquoted"}`
	require.NoError(t, ExtractJSON(text, &d))
	assert.Equal(t, 5, d.A)
	assert.Equal(t, "unquoted", d.B)
}

func TestExtractJSON_NoJSONFound(t *testing.T) {
	var d simpleDoc
	err := ExtractJSON("this response has no structure at all", &d)
	require.Error(t, err)
}

func TestExtractJSON_ReasoningContentNestedBraceSalvage(t *testing.T) {
	var raw struct {
		Relevant bool `json:"relevant"`
	}
	text := "Let me think this through. The analysis shows {\"relevant\": true, \"reason\": \"符合求职意向\"} based on review."
	require.NoError(t, ExtractJSON(text, &raw))
	assert.True(t, raw.Relevant)
}
