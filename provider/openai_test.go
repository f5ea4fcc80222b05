package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ali-185/DualLang"
)

// fakeChatServer answers chat completions by upper-casing the JSON array
// in the user message.
func fakeChatServer(t *testing.T, status int, gotRequest *map[string]interface{}) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			http.NotFound(w, r)
			return
		}
		if status != http.StatusOK {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			w.Write([]byte(`{"error":{"message":"slow down","type":"rate_limit"}}`))
			return
		}

		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
			ResponseFormat map[string]interface{} `json:"response_format"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		if gotRequest != nil {
			*gotRequest = map[string]interface{}{
				"model":  req.Model,
				"system": req.Messages[0].Content,
				"format": req.ResponseFormat["type"],
			}
		}

		var texts []string
		if err := json.Unmarshal([]byte(req.Messages[len(req.Messages)-1].Content), &texts); err != nil {
			t.Errorf("user message is not a JSON array: %v", err)
		}
		for i := range texts {
			texts[i] = strings.ToUpper(texts[i])
		}
		content, _ := json.Marshal(map[string][]string{"translations": texts})

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":      "chatcmpl-test",
			"object":  "chat.completion",
			"created": 0,
			"model":   req.Model,
			"choices": []map[string]interface{}{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]string{"role": "assistant", "content": string(content)},
			}},
		})
	}))
}

func TestOpenAIProvider_Transform(t *testing.T) {
	var got map[string]interface{}
	srv := fakeChatServer(t, http.StatusOK, &got)
	defer srv.Close()

	p := NewOpenAIProvider(OpenAIConfig{APIKey: "test", BaseURL: srv.URL + "/v1"})
	results, err := p.Transform(context.Background(), TransformRequest{
		Texts:      []string{"The dog", "bit me"},
		SourceLang: "en",
		TargetLang: "es_ES",
	})
	if err != nil {
		t.Fatalf("Transform failed: %v", err)
	}

	if strings.Join(results, "|") != "THE DOG|BIT ME" {
		t.Errorf("results = %v", results)
	}
	if got["model"] != "gpt-4o-mini" {
		t.Errorf("model = %v, want default gpt-4o-mini", got["model"])
	}
	if got["format"] != "json_object" {
		t.Errorf("response_format = %v, want json_object", got["format"])
	}
	if !strings.Contains(got["system"].(string), "Spanish (Spain)") {
		t.Errorf("system prompt should name the target language: %v", got["system"])
	}
}

func TestOpenAIProvider_EmptyBatch(t *testing.T) {
	p := NewOpenAIProvider(OpenAIConfig{APIKey: "test", BaseURL: "http://127.0.0.1:1"})
	results, err := p.Transform(context.Background(), TransformRequest{})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 0 {
		t.Errorf("expected no results, got %v", results)
	}
}

func TestOpenAIProvider_RateLimited(t *testing.T) {
	srv := fakeChatServer(t, http.StatusTooManyRequests, nil)
	defer srv.Close()

	p := NewOpenAIProvider(OpenAIConfig{APIKey: "test", BaseURL: srv.URL + "/v1"})
	_, err := p.Transform(context.Background(), TransformRequest{Texts: []string{"Hello"}})

	var pe *duallang.ProviderError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ProviderError, got %v", err)
	}
	if !pe.Retryable {
		t.Errorf("HTTP 429 should be retryable: %v", err)
	}
}

func TestOpenAIProvider_Model(t *testing.T) {
	if m := NewOpenAIProvider(OpenAIConfig{APIKey: "k", Model: "gpt-4o"}).Model(); m != "gpt-4o" {
		t.Errorf("Model() = %q", m)
	}
}
