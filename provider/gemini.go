package provider

import (
	"context"
	"strings"

	"github.com/ali-185/DualLang"
	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiProvider implements Gateway using Google's Gemini models.
type GeminiProvider struct {
	client      *genai.Client
	model       string
	temperature float32
}

// GeminiConfig holds configuration for the Gemini provider.
type GeminiConfig struct {
	APIKey      string  // Gemini API key
	Model       string  // Model to use (default: "gemini-1.5-flash")
	Temperature float32 // Temperature for generation (default: 0.3)
}

// NewGeminiProvider creates a Gemini client. Call Close when done.
func NewGeminiProvider(ctx context.Context, cfg GeminiConfig) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, &duallang.ProviderError{Message: "creating Gemini client", Cause: err}
	}

	model := cfg.Model
	if model == "" {
		model = "gemini-1.5-flash"
	}

	temperature := cfg.Temperature
	if temperature == 0 {
		temperature = 0.3
	}

	return &GeminiProvider{client: client, model: model, temperature: temperature}, nil
}

// Transform translates a batch of spans with one generation request.
func (p *GeminiProvider) Transform(ctx context.Context, req TransformRequest) ([]string, error) {
	if len(req.Texts) == 0 {
		return []string{}, nil
	}

	model := p.client.GenerativeModel(p.model)
	model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(buildSystemPrompt(req))}}
	model.ResponseMIMEType = "application/json"
	model.SetTemperature(p.temperature)

	resp, err := model.GenerateContent(ctx, genai.Text(buildUserMessage(req)))
	if err != nil {
		return nil, &duallang.ProviderError{
			Message:   "Gemini API call failed",
			Cause:     err,
			Retryable: isRetryableError(err),
		}
	}

	content, err := responseText(resp)
	if err != nil {
		return nil, err
	}
	return parseResponse("Gemini", content, len(req.Texts))
}

// Close releases the underlying client.
func (p *GeminiProvider) Close() error {
	return p.client.Close()
}

// responseText concatenates the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", &duallang.ProviderError{Message: "no response from Gemini", Retryable: true}
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	if b.Len() == 0 {
		return "", &duallang.ProviderError{Message: "empty response from Gemini", Retryable: true}
	}
	return b.String(), nil
}

var _ Gateway = (*GeminiProvider)(nil)
