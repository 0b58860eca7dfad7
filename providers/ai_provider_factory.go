package providers

import (
	"math/rand"
	"os"

	"github.com/josehu07/codetective/providers/claude"
	"github.com/josehu07/codetective/providers/contracts"
	"github.com/josehu07/codetective/providers/gemini"
	"github.com/josehu07/codetective/providers/groqcl"
	"github.com/josehu07/codetective/providers/openai"
	"github.com/josehu07/codetective/providers/openrt"
	contracts2 "github.com/josehu07/codetective/token_management/contracts"
	"github.com/josehu07/codetective/utils"
)

// AIProviderConfig represents the AI provider selection along with override
// knobs for the endpoint, model, and API key.
type AIProviderConfig struct {
	Provider string `mapstructure:"provider"`
	BaseURL  string `mapstructure:"base_url"`
	Model    string `mapstructure:"model"`
	ApiKey   string `mapstructure:"api_key"`
}

// freeQuotaEnvVars maps free-tier capable providers to the environment
// variable that may hold a shared quota key for them.
var freeQuotaEnvVars = map[string]string{
	"gemini": "GEMINI_API_KEY",
	"openrt": "OPENROUTER_API_KEY",
	"groqcl": "GROQ_API_KEY",
}

// DetectionProviderFactory creates a detection provider based on the
// configured provider name. An empty API key falls back to a free quota key
// for providers that can have one.
func DetectionProviderFactory(config *AIProviderConfig, tokenManagement contracts2.ITokenManagement) (contracts.IDetectionProvider, error) {
	provider := config.Provider
	apiKey := config.ApiKey

	if !isASCII(apiKey) {
		return nil, utils.AsciiErr("API key contains non-ASCII characters")
	}

	if provider == "free" {
		if apiKey != "" {
			return nil, utils.ParseErr("free provider does not accept an API key")
		}
		provider = pickFreeProvider()
	}

	if apiKey == "" {
		envVar, ok := freeQuotaEnvVars[provider]
		if ok {
			apiKey = os.Getenv(envVar)
		}
		if apiKey == "" {
			return nil, utils.LimitErr("no API key given and no free quota available for provider '%s'", provider)
		}
	}

	switch provider {
	case "openai":
		return openai.NewOpenAIDetectionProvider(&openai.OpenAIConfig{
			BaseURL:         config.BaseURL,
			Model:           config.Model,
			ApiKey:          apiKey,
			TokenManagement: tokenManagement,
		}), nil
	case "claude":
		return claude.NewClaudeDetectionProvider(&claude.ClaudeConfig{
			BaseURL:         config.BaseURL,
			Model:           config.Model,
			ApiKey:          apiKey,
			TokenManagement: tokenManagement,
		}), nil
	case "gemini":
		return gemini.NewGeminiDetectionProvider(&gemini.GeminiConfig{
			BaseURL:         config.BaseURL,
			Model:           config.Model,
			ApiKey:          apiKey,
			TokenManagement: tokenManagement,
		}), nil
	case "openrt":
		return openrt.NewOpenRtDetectionProvider(&openrt.OpenRtConfig{
			BaseURL:         config.BaseURL,
			Model:           config.Model,
			ApiKey:          apiKey,
			TokenManagement: tokenManagement,
		}), nil
	case "groqcl":
		return groqcl.NewGroqClDetectionProvider(&groqcl.GroqClConfig{
			BaseURL:         config.BaseURL,
			Model:           config.Model,
			ApiKey:          apiKey,
			TokenManagement: tokenManagement,
		}), nil
	default:
		return nil, utils.ParseErr("unsupported provider '%s'", provider)
	}
}

// pickFreeProvider picks a random free-tier capable provider, preferring
// ones that actually have a quota key set in the environment.
func pickFreeProvider() string {
	available := make([]string, 0, len(freeQuotaEnvVars))
	for name, envVar := range freeQuotaEnvVars {
		if os.Getenv(envVar) != "" {
			available = append(available, name)
		}
	}
	if len(available) == 0 {
		for name := range freeQuotaEnvVars {
			available = append(available, name)
		}
	}
	return available[rand.Intn(len(available))]
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] > 127 {
			return false
		}
	}
	return true
}
