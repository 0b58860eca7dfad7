package claude

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/josehu07/codetective/providers/contracts"
	"github.com/josehu07/codetective/providers/models"
	contracts2 "github.com/josehu07/codetective/token_management/contracts"
	"github.com/josehu07/codetective/utils"
)

// ClaudeConfig implements the detection provider interface for Claude.
//
// Reference: https://docs.anthropic.com/en/api/getting-started
type ClaudeConfig struct {
	BaseURL         string
	Model           string
	ApiKey          string
	TokenManagement contracts2.ITokenManagement
}

const (
	defaultBaseURL = "https://api.anthropic.com/v1"
	defaultModel   = "claude-3-7-sonnet-20250219"

	// Claude requires an API version date header.
	apiVersion = "2023-06-01"

	maxOutputTokens = 1024
)

// modelInfoResponse is the body of the model information endpoint, used as
// the API key validity check.
type modelInfoResponse struct {
	Type string `json:"type"`
	Id   string `json:"id"`
}

// messagesRequest is the Claude messages API request body.
type messagesRequest struct {
	Model     string               `json:"model"`
	MaxTokens int                  `json:"max_tokens"`
	System    string               `json:"system"`
	Messages  []models.ChatMessage `json:"messages"`
}

// messagesResponse is the Claude messages API response body.
type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

// NewClaudeDetectionProvider initializes a new Claude detection provider.
func NewClaudeDetectionProvider(config *ClaudeConfig) contracts.IDetectionProvider {
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	model := config.Model
	if model == "" {
		model = defaultModel
	}
	return &ClaudeConfig{
		BaseURL:         baseURL,
		Model:           model,
		ApiKey:          config.ApiKey,
		TokenManagement: config.TokenManagement,
	}
}

func (p *ClaudeConfig) Name() string {
	return fmt.Sprintf("Claude (%s)", p.Model)
}

func (p *ClaudeConfig) setHeaders(req *http.Request) {
	req.Header.Set("x-api-key", p.ApiKey)
	req.Header.Set("anthropic-version", apiVersion)
	req.Header.Set("Content-Type", "application/json")
}

// ValidateApiKey checks the API key against the model information endpoint.
func (p *ClaudeConfig) ValidateApiKey(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, "GET",
		fmt.Sprintf("%s/models/%s", p.BaseURL, p.Model), nil)
	if err != nil {
		return utils.ParseErr("error creating request: %v", err)
	}
	p.setHeaders(req)

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		return utils.StatusErr("error sending request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return utils.StatusErr("API key validation failed with %s: %s",
			resp.Status, models.Truncate(string(body), 200))
	}

	var info modelInfoResponse
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return utils.ParseErr("error parsing validation response: %v", err)
	}
	if info.Id != p.Model {
		return utils.StatusErr("API key validation successful, but unexpected model name: %s", info.Id)
	}

	return nil
}

// DetectAICode makes a messages API call and parses the detection result.
func (p *ClaudeConfig) DetectAICode(ctx context.Context, code string) (*models.DetectResult, error) {
	reqBody := messagesRequest{
		Model:     p.Model,
		MaxTokens: maxOutputTokens,
		System:    models.DetectionPrompt,
		Messages: []models.ChatMessage{
			{Role: "user", Content: code},
		},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, utils.ParseErr("error marshalling request body: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST",
		fmt.Sprintf("%s/messages", p.BaseURL), bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, utils.ParseErr("error creating request: %v", err)
	}
	p.setHeaders(req)

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		return nil, utils.StatusErr("error sending request: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, utils.StatusErr("error reading response: %v", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiError models.AIError
		if err := json.Unmarshal(body, &apiError); err == nil && apiError.Error.Message != "" {
			return nil, utils.StatusErr("API request failed with %s: %s",
				resp.Status, apiError.Error.Message)
		}
		return nil, utils.StatusErr("API request failed with %s", resp.Status)
	}

	var message messagesResponse
	if err := json.Unmarshal(body, &message); err != nil {
		return nil, utils.ParseErr("error unmarshalling response: %v", err)
	}
	if len(message.Content) == 0 {
		return nil, utils.ParseErr("response contains no content blocks")
	}

	if p.TokenManagement != nil && message.Usage.InputTokens > 0 {
		p.TokenManagement.UsedTokens(message.Usage.InputTokens, message.Usage.OutputTokens)
	}

	return models.ParseDetectResult(message.Content[0].Text)
}
