package translate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"
)

// OpenAIProvider calls an OpenAI-compatible chat completions endpoint in JSON mode.
type OpenAIProvider struct {
	client *resty.Client
	model  string
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string            `json:"model"`
	Messages       []chatMessage     `json:"messages"`
	Temperature    float64           `json:"temperature"`
	ResponseFormat map[string]string `json:"response_format"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

type chatError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

func NewOpenAIProvider(baseURL, apiKey, model string) *OpenAIProvider {
	return &OpenAIProvider{
		client: resty.New().
			SetBaseURL(strings.TrimRight(baseURL, "/")).
			SetAuthToken(apiKey).
			SetHeader("Content-Type", "application/json"),
		model: model,
	}
}

func (p *OpenAIProvider) Translate(ctx context.Context, lang string, texts []string) ([]string, error) {
	prompt, err := userPrompt(lang, texts)
	if err != nil {
		return nil, err
	}

	var result chatResponse
	var apiErr chatError
	resp, err := p.client.R().
		SetContext(ctx).
		SetBody(chatRequest{
			Model: p.model,
			Messages: []chatMessage{
				{Role: "system", Content: systemPrompt},
				{Role: "user", Content: prompt},
			},
			Temperature:    0,
			ResponseFormat: map[string]string{"type": "json_object"},
		}).
		SetResult(&result).
		SetError(&apiErr).
		Post("/chat/completions")
	if err != nil {
		return nil, fmt.Errorf("openai request: %w", err)
	}
	if resp.IsError() {
		if apiErr.Error.Message != "" {
			return nil, fmt.Errorf("openai: status %d: %s", resp.StatusCode(), apiErr.Error.Message)
		}
		return nil, fmt.Errorf("openai: status %d", resp.StatusCode())
	}
	if len(result.Choices) == 0 {
		return nil, errors.New("openai: empty choices")
	}
	return parseReply(result.Choices[0].Message.Content, len(texts))
}
