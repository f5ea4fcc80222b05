// Package provider contains translation backends implementing the
// duallang Gateway interface.
package provider

import (
	"fmt"
	"strings"

	"github.com/ali-185/DualLang"
)

// Gateway is an alias to the main package interface for convenience.
type Gateway = duallang.Gateway

// TransformRequest is an alias to the main package type.
type TransformRequest = duallang.TransformRequest

// TextTranslator is an alias to the main package interface.
type TextTranslator = duallang.TextTranslator

// Names of the built-in providers, as accepted by New.
const (
	NameOpenAI = "openai"
	NameGemini = "gemini"
	NameGoogle = "google"
	NameMock   = "mock"
	NameUpper  = "upper"
)

// Config selects and configures a provider.
type Config struct {
	Name        string  // One of the Name* constants
	APIKey      string  // API key for openai or gemini
	Model       string  // Model override
	BaseURL     string  // Endpoint override
	Temperature float32 // Sampling temperature for LLM providers
}

// New creates the provider named in cfg. Gemini needs a client and is
// created with NewGeminiProvider instead.
func New(cfg Config) (Gateway, error) {
	switch strings.ToLower(cfg.Name) {
	case NameOpenAI:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("openai: API key is required")
		}
		return NewOpenAIProvider(OpenAIConfig{
			APIKey:      cfg.APIKey,
			Model:       cfg.Model,
			BaseURL:     cfg.BaseURL,
			Temperature: cfg.Temperature,
		}), nil
	case NameGoogle, "":
		return duallang.NewJoinedGateway(NewGoogleProvider(GoogleConfig{BaseURL: cfg.BaseURL}), ""), nil
	case NameMock:
		return NewMockProvider(), nil
	case NameUpper:
		return UppercaseProvider{}, nil
	case NameGemini:
		return nil, fmt.Errorf("gemini: use NewGeminiProvider")
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Name)
	}
}
