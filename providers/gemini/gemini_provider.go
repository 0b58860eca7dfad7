package gemini

import (
	"context"
	"fmt"
	"io"
	"net/http"

	genai "google.golang.org/genai"

	"github.com/josehu07/codetective/providers/contracts"
	"github.com/josehu07/codetective/providers/models"
	contracts2 "github.com/josehu07/codetective/token_management/contracts"
	"github.com/josehu07/codetective/utils"
)

// GeminiConfig implements the detection provider interface for Gemini, using
// the official genai client for generation. Gemini authenticates with the key
// as a URL query parameter rather than a header.
//
// Reference: https://ai.google.dev/api
type GeminiConfig struct {
	BaseURL         string
	Model           string
	ApiKey          string
	TokenManagement contracts2.ITokenManagement
}

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	defaultModel   = "gemini-2.0-flash"
)

type modelInfoResponse struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
}

// NewGeminiDetectionProvider initializes a new Gemini detection provider.
func NewGeminiDetectionProvider(config *GeminiConfig) contracts.IDetectionProvider {
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	model := config.Model
	if model == "" {
		model = defaultModel
	}
	return &GeminiConfig{
		BaseURL:         baseURL,
		Model:           model,
		ApiKey:          config.ApiKey,
		TokenManagement: config.TokenManagement,
	}
}

func (p *GeminiConfig) Name() string {
	return fmt.Sprintf("Gemini (%s)", p.Model)
}

// ValidateApiKey checks the API key against the model information endpoint.
func (p *GeminiConfig) ValidateApiKey(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, "GET",
		fmt.Sprintf("%s/models/%s?key=%s", p.BaseURL, p.Model, p.ApiKey), nil)
	if err != nil {
		return utils.ParseErr("error creating request: %v", err)
	}

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

	return nil
}

// DetectAICode makes a generation call and parses the detection result.
func (p *GeminiConfig) DetectAICode(ctx context.Context, code string) (*models.DetectResult, error) {
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  p.ApiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, utils.StatusErr("error creating client: %v", err)
	}

	full := models.DetectionPrompt + "\n\n" + code
	resp, err := cli.Models.GenerateContent(ctx, p.Model,
		[]*genai.Content{{Parts: []*genai.Part{{Text: full}}}},
		&genai.GenerateContentConfig{ResponseMIMEType: "application/json"},
	)
	if err != nil {
		return nil, utils.StatusErr("API request failed: %v", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil ||
		len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, utils.ParseErr("response contains no candidates")
	}

	if p.TokenManagement != nil && resp.UsageMetadata != nil {
		p.TokenManagement.UsedTokens(
			int(resp.UsageMetadata.PromptTokenCount),
			int(resp.UsageMetadata.CandidatesTokenCount))
	}

	return models.ParseDetectResult(resp.Candidates[0].Content.Parts[0].Text)
}
