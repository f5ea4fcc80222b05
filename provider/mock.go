package provider

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// MockProvider is a mock gateway for testing.
type MockProvider struct {
	Translations map[string]string // Map of source text to translation
	CallCount    int               // Number of times Transform was called
	LastRequest  *TransformRequest // Last request received

	mu sync.Mutex
}

// NewMockProvider creates a new mock provider with default translations.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		Translations: map[string]string{
			"Hello":       "Hola",
			"World":       "Mundo",
			"Hello World": "Hola Mundo",
			"The dog":     "El perro",
			"bit me":      "me mordió",
		},
	}
}

// Transform returns mock translations.
func (m *MockProvider) Transform(ctx context.Context, req TransformRequest) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.CallCount++
	m.LastRequest = &req

	results := make([]string, len(req.Texts))
	for i, text := range req.Texts {
		if translation, ok := m.Translations[text]; ok {
			results[i] = translation
		} else {
			// Return bracketed text for unknown translations
			results[i] = fmt.Sprintf("[%s]", text)
		}
	}

	return results, nil
}

// Reset resets the call count and last request.
func (m *MockProvider) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CallCount = 0
	m.LastRequest = nil
}

// UppercaseProvider "translates" by upper-casing. Dry runs use it to show
// where translations would go.
type UppercaseProvider struct{}

// Transform implements Gateway.
func (UppercaseProvider) Transform(ctx context.Context, req TransformRequest) ([]string, error) {
	results := make([]string, len(req.Texts))
	for i, text := range req.Texts {
		results[i] = strings.ToUpper(text)
	}
	return results, nil
}

var (
	_ Gateway = (*MockProvider)(nil)
	_ Gateway = UppercaseProvider{}
)
