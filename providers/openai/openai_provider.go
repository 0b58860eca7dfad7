package openai

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

// OpenAIConfig implements the detection provider interface for OpenAI.
//
// Reference: https://platform.openai.com/docs/api-reference
type OpenAIConfig struct {
	BaseURL         string
	Model           string
	ApiKey          string
	TokenManagement contracts2.ITokenManagement
}

const (
	defaultBaseURL = "https://api.openai.com/v1"
	defaultModel   = "gpt-4o"
)

// modelInfoResponse is the body of the model information endpoint, used as
// the API key validity check.
type modelInfoResponse struct {
	Id     string `json:"id"`
	Object string `json:"object"`
}

// NewOpenAIDetectionProvider initializes a new OpenAI detection provider.
func NewOpenAIDetectionProvider(config *OpenAIConfig) contracts.IDetectionProvider {
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	model := config.Model
	if model == "" {
		model = defaultModel
	}
	return &OpenAIConfig{
		BaseURL:         baseURL,
		Model:           model,
		ApiKey:          config.ApiKey,
		TokenManagement: config.TokenManagement,
	}
}

func (p *OpenAIConfig) Name() string {
	return fmt.Sprintf("OpenAI (%s)", p.Model)
}

// ValidateApiKey checks the API key against the model information endpoint.
func (p *OpenAIConfig) ValidateApiKey(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, "GET",
		fmt.Sprintf("%s/models/%s", p.BaseURL, p.Model), nil)
	if err != nil {
		return utils.ParseErr("error creating request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.ApiKey)

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		return utils.StatusErr("error sending request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// probably network error or authorization failure
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

// DetectAICode makes a chat completion call and parses the detection result.
func (p *OpenAIConfig) DetectAICode(ctx context.Context, code string) (*models.DetectResult, error) {
	reqBody := models.ChatCompletionRequest{
		Model: p.Model,
		Messages: []models.ChatMessage{
			{Role: "system", Content: models.DetectionPrompt},
			{Role: "user", Content: code},
		},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, utils.ParseErr("error marshalling request body: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST",
		fmt.Sprintf("%s/chat/completions", p.BaseURL), bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, utils.ParseErr("error creating request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.ApiKey)

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

	var completion models.ChatCompletionResponse
	if err := json.Unmarshal(body, &completion); err != nil {
		return nil, utils.ParseErr("error unmarshalling response: %v", err)
	}
	if len(completion.Choices) == 0 {
		return nil, utils.ParseErr("response contains no choices")
	}

	if p.TokenManagement != nil && completion.Usage.PromptTokens > 0 {
		p.TokenManagement.UsedTokens(completion.Usage.PromptTokens, completion.Usage.CompletionTokens)
	}

	return models.ParseDetectResult(completion.Choices[0].Message.Content)
}
