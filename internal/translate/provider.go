package translate

import "context"

// ProviderConfig carries the credentials for every supported provider.
type ProviderConfig struct {
	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAIBaseURL string
	GeminiAPIKey  string
	GeminiModel   string
}

// NewProvider picks OpenAI when its key is set, then Gemini. It returns a nil
// Provider and name "none" when neither is configured.
func NewProvider(ctx context.Context, cfg ProviderConfig) (Provider, string, error) {
	switch {
	case cfg.OpenAIAPIKey != "":
		return NewOpenAIProvider(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.OpenAIModel), "openai", nil
	case cfg.GeminiAPIKey != "":
		p, err := NewGeminiProvider(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, "gemini", err
		}
		return p, "gemini", nil
	default:
		return nil, "none", nil
	}
}
