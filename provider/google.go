package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ali-185/DualLang"
)

// DefaultGoogleURL is the free web translation endpoint.
const DefaultGoogleURL = "https://translate.googleapis.com/translate_a/single"

// GoogleProvider translates single strings through the Google web
// translation endpoint. It needs no API key. Wrap it in a
// duallang.JoinedGateway to send a whole batch in one request.
type GoogleProvider struct {
	client  *http.Client
	baseURL string
}

// GoogleConfig holds configuration for the Google web provider.
type GoogleConfig struct {
	BaseURL string        // Endpoint override, mainly for tests
	Timeout time.Duration // Request timeout (default: 30s)
}

// NewGoogleProvider creates a web translation client.
func NewGoogleProvider(cfg GoogleConfig) *GoogleProvider {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultGoogleURL
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &GoogleProvider{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

// TranslateText implements duallang.TextTranslator.
func (p *GoogleProvider) TranslateText(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	sl := "auto"
	if sourceLang != "" {
		sl = duallang.ToHTMLLang(sourceLang)
	}

	params := url.Values{}
	params.Set("client", "gtx")
	params.Set("sl", sl)
	params.Set("tl", duallang.ToHTMLLang(targetLang))
	params.Set("dt", "t")

	form := url.Values{}
	form.Set("q", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"?"+params.Encode(), strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", duallang.UserAgent())

	resp, err := p.client.Do(req)
	if err != nil {
		return "", &duallang.ProviderError{
			Message:   "Google translate request failed",
			Cause:     err,
			Retryable: ctx.Err() == nil,
		}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &duallang.ProviderError{Message: "reading Google translate response", Cause: err, Retryable: true}
	}

	if resp.StatusCode != http.StatusOK {
		return "", &duallang.ProviderError{
			Message:   fmt.Sprintf("Google translate returned HTTP %d", resp.StatusCode),
			Retryable: resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500,
		}
	}

	return parseGoogleResponse(body)
}

// parseGoogleResponse joins the translated sentences of a response shaped
// like [[["Hola","Hello",...],["mundo","world",...]],null,"en"].
func parseGoogleResponse(body []byte) (string, error) {
	var raw []interface{}
	if err := json.Unmarshal(body, &raw); err != nil {
		return "", &duallang.ProviderError{Message: "invalid response format from Google translate", Cause: err}
	}
	if len(raw) == 0 {
		return "", &duallang.ProviderError{Message: "empty response from Google translate"}
	}

	sentences, ok := raw[0].([]interface{})
	if !ok {
		return "", &duallang.ProviderError{Message: "unexpected response shape from Google translate"}
	}

	var b strings.Builder
	for _, s := range sentences {
		parts, ok := s.([]interface{})
		if !ok || len(parts) == 0 {
			continue
		}
		if text, ok := parts[0].(string); ok {
			b.WriteString(text)
		}
	}
	return b.String(), nil
}

var _ TextTranslator = (*GoogleProvider)(nil)
