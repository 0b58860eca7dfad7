package models

import (
	"encoding/json"
	"strings"

	"github.com/josehu07/codetective/utils"
)

// DetectionPrompt is the system prompt sent alongside each code file.
const DetectionPrompt = `You are an expert in detecting AI-generated source code. ` +
	`Analyze the code given by the user and estimate the likelihood that it was ` +
	`authored by an AI assistant rather than a human. Consider naming habits, ` +
	`comment style, structural regularity, and idiom choices. Respond with a ` +
	`single JSON object of the shape {"likelihood": <integer 0-100>, "reasoning": ` +
	`"<one or two sentences>"} and nothing else.`

// DetectResult is the outcome of one successful classification call.
type DetectResult struct {
	Likelihood uint8  `json:"likelihood"`
	Reasoning  string `json:"reasoning"`
}

// AIError is the error body shape most providers return on failed requests.
type AIError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// ChatMessage is a single message of an OpenAI-compatible chat request.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatCompletionRequest is the request body shared by the OpenAI-compatible
// providers (OpenAI, Groq Cloud, OpenRouter).
type ChatCompletionRequest struct {
	Model     string        `json:"model"`
	Messages  []ChatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens,omitempty"`
}

// ChatCompletionResponse is the response body shared by the OpenAI-compatible
// providers.
type ChatCompletionResponse struct {
	Choices []struct {
		Message ChatMessage `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

// rawDetectResult tolerates out-of-range likelihood values before clamping.
type rawDetectResult struct {
	Likelihood int    `json:"likelihood"`
	Reasoning  string `json:"reasoning"`
}

// ParseDetectResult extracts a DetectResult from a model's response text,
// tolerating surrounding markdown fences or prose. A response with no valid
// JSON object is a Parse-kind error (malformed/truncated response).
func ParseDetectResult(text string) (*DetectResult, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return nil, utils.ParseErr("no JSON object in model response: %q", Truncate(text, 120))
	}

	var raw rawDetectResult
	if err := json.Unmarshal([]byte(text[start:end+1]), &raw); err != nil {
		return nil, utils.ParseErr("malformed JSON in model response: %v", err)
	}

	likelihood := raw.Likelihood
	if likelihood < 0 {
		likelihood = 0
	}
	if likelihood > 100 {
		likelihood = 100
	}
	return &DetectResult{Likelihood: uint8(likelihood), Reasoning: raw.Reasoning}, nil
}

// Truncate shortens a string for inclusion in error messages.
func Truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
