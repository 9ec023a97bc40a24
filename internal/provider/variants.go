package provider

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/fairyhunter13/jobmatch-analyzer/internal/domain"
)

// openAICompatibleBody is the wire shape shared by DeepSeek, OpenAI, GLM, and
// OpenRouter — all expose an OpenAI-compatible /chat/completions endpoint.
type openAICompatibleBody struct {
	Model       string                  `json:"model"`
	Messages    []openAICompatibleTurn  `json:"messages"`
	Temperature float64                 `json:"temperature,omitempty"`
	MaxTokens   int                     `json:"max_tokens,omitempty"`
}

type openAICompatibleTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAICompatibleResponse struct {
	Choices []struct {
		Message struct {
			Content          string `json:"content"`
			ReasoningContent string `json:"reasoning_content"`
		} `json:"message"`
	} `json:"choices"`
}

func openAICompatibleBuild(baseURL, defaultModel string) requestBuilder {
	return func(system, user string, opts domain.CompletionOptions) (string, string, map[string]string, []byte, error) {
		model := opts.Model
		if model == "" {
			model = defaultModel
		}
		var turns []openAICompatibleTurn
		if system != "" {
			turns = append(turns, openAICompatibleTurn{Role: "system", Content: system})
		}
		turns = append(turns, openAICompatibleTurn{Role: "user", Content: user})
		body, err := json.Marshal(openAICompatibleBody{
			Model:       model,
			Messages:    turns,
			Temperature: opts.Temperature,
			MaxTokens:   opts.MaxTokens,
		})
		if err != nil {
			return "", "", nil, nil, err
		}
		return "POST", baseURL + "/chat/completions", nil, body, nil
	}
}

func openAICompatibleParse(body []byte) (string, string, error) {
	var resp openAICompatibleResponse
	if err := decodeJSON(body, &resp); err != nil {
		return "", "", err
	}
	if len(resp.Choices) == 0 {
		return "", "", fmt.Errorf("choices array empty")
	}
	return resp.Choices[0].Message.Content, resp.Choices[0].Message.ReasoningContent, nil
}

// NewDeepSeek builds the DeepSeek adapter: chat-style, OpenAI-compatible body, 30s timeout.
func NewDeepSeek(apiKey, baseURL, defaultModel string) *Adapter {
	if defaultModel == "" {
		defaultModel = "deepseek-chat"
	}
	impl := newHTTPChatFunc("deepseek", apiKey, authBearer(apiKey, openAICompatibleBuild(baseURL, defaultModel)), openAICompatibleParse, defaultBackoff)
	return &Adapter{id: "deepseek", impl: impl, timeout: 30 * time.Second}
}

// NewOpenAI builds the OpenAI adapter: chat-style, canonical /chat/completions.
func NewOpenAI(apiKey, baseURL, defaultModel string) *Adapter {
	if defaultModel == "" {
		defaultModel = "gpt-4o-mini"
	}
	impl := newHTTPChatFunc("openai", apiKey, authBearer(apiKey, openAICompatibleBuild(baseURL, defaultModel)), openAICompatibleParse, defaultBackoff)
	return &Adapter{id: "openai", impl: impl, timeout: 30 * time.Second}
}

// NewOpenRouter builds the OpenRouter adapter: chat-style, OpenAI-compatible
// body routed through OPENROUTER_BASE_URL. Grounded on the other_examples
// OpenRouter client's fluent-builder texture, reimplemented on the shared
// HTTP transport rather than a third-party SDK.
func NewOpenRouter(apiKey, baseURL, defaultModel string) *Adapter {
	if defaultModel == "" {
		defaultModel = "openrouter/auto"
	}
	impl := newHTTPChatFunc("openrouter", apiKey, authBearer(apiKey, openAICompatibleBuild(baseURL, defaultModel)), openAICompatibleParse, defaultBackoff)
	return &Adapter{id: "openrouter", impl: impl, timeout: 30 * time.Second}
}

// NewGLM builds the reasoning-capable GLM adapter: 120s timeout (GLM-4.5's
// "deep thinking" mode can run long), OpenAI-compatible body, with
// reasoning_content populated as a fallback salvage source when content is
// empty (see glm_client.py).
func NewGLM(apiKey, baseURL, defaultModel string) *Adapter {
	if defaultModel == "" {
		defaultModel = "glm-4.5"
	}
	impl := newHTTPChatFunc("glm", apiKey, authBearer(apiKey, openAICompatibleBuild(baseURL, defaultModel)), openAICompatibleParse, defaultBackoff)
	return &Adapter{id: "glm", impl: impl, timeout: 120 * time.Second}
}

func authBearer(apiKey string, build requestBuilder) requestBuilder {
	return func(system, user string, opts domain.CompletionOptions) (string, string, map[string]string, []byte, error) {
		method, url, headers, body, err := build(system, user, opts)
		if err != nil {
			return "", "", nil, nil, err
		}
		if headers == nil {
			headers = map[string]string{}
		}
		headers["Authorization"] = "Bearer " + apiKey
		return method, url, headers, body, nil
	}
}

// --- Claude (Anthropic Messages API): system is a top-level field, not a message. ---

type claudeBody struct {
	Model       string       `json:"model"`
	System      string       `json:"system,omitempty"`
	Messages    []claudeTurn `json:"messages"`
	MaxTokens   int          `json:"max_tokens"`
	Temperature float64      `json:"temperature,omitempty"`
}

type claudeTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type claudeResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

// NewClaude builds the Claude adapter: chat-style, Anthropic Messages-API
// body shape, 30s timeout.
func NewClaude(apiKey, baseURL, defaultModel string) *Adapter {
	if defaultModel == "" {
		defaultModel = "claude-3-5-sonnet-latest"
	}
	build := func(system, user string, opts domain.CompletionOptions) (string, string, map[string]string, []byte, error) {
		model := opts.Model
		if model == "" {
			model = defaultModel
		}
		maxTokens := opts.MaxTokens
		if maxTokens == 0 {
			maxTokens = 1024
		}
		body, err := json.Marshal(claudeBody{
			Model:       model,
			System:      system,
			Messages:    []claudeTurn{{Role: "user", Content: user}},
			MaxTokens:   maxTokens,
			Temperature: opts.Temperature,
		})
		if err != nil {
			return "", "", nil, nil, err
		}
		headers := map[string]string{
			"x-api-key":         apiKey,
			"anthropic-version": "2023-06-01",
		}
		return "POST", baseURL + "/messages", headers, body, nil
	}
	parse := func(body []byte) (string, string, error) {
		var resp claudeResponse
		if err := decodeJSON(body, &resp); err != nil {
			return "", "", err
		}
		if len(resp.Content) == 0 {
			return "", "", fmt.Errorf("content array empty")
		}
		return resp.Content[0].Text, "", nil
	}
	impl := newHTTPChatFunc("claude", apiKey, build, parse, defaultBackoff)
	return &Adapter{id: "claude", impl: impl, timeout: 30 * time.Second}
}

// --- Gemini (generateContent): single-content-array shape; system+user are
// concatenated into one turn internally since Gemini's REST API has no
// separate system role in the baseline generateContent endpoint. ---

type geminiBody struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// NewGemini builds the Gemini adapter: single-prompt-oriented, 30s timeout.
func NewGemini(apiKey, baseURL, defaultModel string) *Adapter {
	if defaultModel == "" {
		defaultModel = "gemini-1.5-flash"
	}
	build := func(system, user string, opts domain.CompletionOptions) (string, string, map[string]string, []byte, error) {
		model := opts.Model
		if model == "" {
			model = defaultModel
		}
		combined := user
		if system != "" {
			combined = system + "\n\n" + user
		}
		body, err := json.Marshal(geminiBody{Contents: []geminiContent{{Parts: []geminiPart{{Text: combined}}}}})
		if err != nil {
			return "", "", nil, nil, err
		}
		url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", baseURL, model, apiKey)
		return "POST", url, nil, body, nil
	}
	parse := func(body []byte) (string, string, error) {
		var resp geminiResponse
		if err := decodeJSON(body, &resp); err != nil {
			return "", "", err
		}
		if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
			return "", "", fmt.Errorf("candidates/parts empty")
		}
		return resp.Candidates[0].Content.Parts[0].Text, "", nil
	}
	impl := newHTTPChatFunc("gemini", apiKey, build, parse, defaultBackoff)
	return &Adapter{id: "gemini", impl: impl, timeout: 30 * time.Second}
}
