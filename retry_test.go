package duallang

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

var fastRetry = RetryConfig{MaxRetries: 3, BaseDelay: time.Millisecond, MaxDelay: 4 * time.Millisecond}

func TestWithRetry(t *testing.T) {
	transient := &ProviderError{Message: "503", Retryable: true}
	fatal := &ProviderError{Message: "invalid API key"}

	tests := []struct {
		name      string
		failures  []error // returned by successive attempts, then success
		retries   int
		wantCalls int
		wantErr   error
	}{
		{"first attempt succeeds", nil, 3, 1, nil},
		{"recovers after transient failures", []error{transient, transient}, 3, 3, nil},
		{"fatal error is not retried", []error{fatal}, 3, 1, fatal},
		{"gives up after MaxRetries", []error{transient, transient, transient}, 2, 3, transient},
		{"mismatch is retried", []error{&CountMismatchError{Expected: 2, Got: 1}}, 1, 2, nil},
		{"zero retries", []error{transient}, 0, 1, transient},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := fastRetry
			cfg.MaxRetries = tt.retries
			calls := 0

			got, err := WithRetry(context.Background(), cfg, func(attempt int) (string, error) {
				if attempt != calls {
					t.Errorf("attempt = %d, want %d", attempt, calls)
				}
				calls++
				if attempt < len(tt.failures) {
					return "partial", tt.failures[attempt]
				}
				return "ok", nil
			})

			if calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tt.wantCalls)
			}
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("err = %v, want %v", err, tt.wantErr)
				}
				if got != "" {
					t.Errorf("result on failure = %q, want zero value", got)
				}
				return
			}
			if err != nil || got != "ok" {
				t.Errorf("got %q, %v", got, err)
			}
		})
	}
}

func TestWithRetry_CancelledDuringBackoff(t *testing.T) {
	cfg := RetryConfig{MaxRetries: 3, BaseDelay: time.Minute, MaxDelay: time.Minute}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := WithRetry(ctx, cfg, func(int) (int, error) {
		return 0, &ProviderError{Retryable: true}
	})

	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err = %v, want deadline exceeded", err)
	}
	if time.Since(start) > time.Second {
		t.Error("backoff did not stop on cancellation")
	}
}

func TestRetryConfig_Backoff(t *testing.T) {
	cfg := RetryConfig{BaseDelay: time.Second, MaxDelay: 5 * time.Second}
	want := []time.Duration{time.Second, 2 * time.Second, 4 * time.Second, 5 * time.Second, 5 * time.Second}
	for attempt, w := range want {
		if got := cfg.backoff(attempt); got != w {
			t.Errorf("backoff(%d) = %v, want %v", attempt, got, w)
		}
	}
	if got := cfg.backoff(80); got != 5*time.Second {
		t.Errorf("backoff(80) = %v, want cap", got)
	}
	if got := (RetryConfig{}).backoff(2); got != 0 {
		t.Errorf("zero config backoff = %v", got)
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"retryable provider error", &ProviderError{Retryable: true}, true},
		{"non-retryable provider error", &ProviderError{Retryable: false}, false},
		{"generic error", errors.New("some error"), false},
		{"context canceled", context.Canceled, false},
		{"count mismatch", &CountMismatchError{Expected: 2, Got: 1}, true},
		{"wrapped retryable", fmt.Errorf("batch: %w", &ProviderError{Retryable: true}), true},
		{"structural", &StructuralError{Message: "stray </b>"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.expected {
				t.Errorf("IsRetryable(%v) = %v, want %v", tt.err, got, tt.expected)
			}
		})
	}
}

// scriptedGateway answers each call with the next scripted reply, then
// upper-cases the batch once the script runs out.
type scriptedGateway struct {
	mu      sync.Mutex
	replies []func(req TransformRequest) ([]string, error)
	batches [][]string
}

func (g *scriptedGateway) Transform(ctx context.Context, req TransformRequest) ([]string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.batches = append(g.batches, req.Texts)
	if len(g.replies) > 0 {
		reply := g.replies[0]
		g.replies = g.replies[1:]
		return reply(req)
	}
	return upper(req.Texts), nil
}

func upper(texts []string) []string {
	out := make([]string, len(texts))
	for i, s := range texts {
		out[i] = strings.ToUpper(s)
	}
	return out
}

func dropLast(req TransformRequest) ([]string, error) {
	return upper(req.Texts[:len(req.Texts)-1]), nil
}

func overloaded(TransformRequest) ([]string, error) {
	return nil, &ProviderError{Message: "overloaded", Retryable: true}
}

func TestRetryableGateway_RecoversFromTransientFailure(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	inner := &scriptedGateway{replies: []func(TransformRequest) ([]string, error){overloaded, overloaded}}

	got, err := NewRetryableGateway(inner, fastRetry, zap.New(core)).Transform(context.Background(),
		TransformRequest{Texts: []string{"The dog", "bit me"}})

	if err != nil {
		t.Fatalf("Transform failed: %v", err)
	}
	if strings.Join(got, "|") != "THE DOG|BIT ME" {
		t.Errorf("got %v", got)
	}
	if len(inner.batches) != 3 {
		t.Errorf("calls = %d, want 3", len(inner.batches))
	}
	if n := logs.FilterMessage("translation attempt failed, retrying").Len(); n != 2 {
		t.Errorf("logged %d retries, want 2", n)
	}
}

func TestRetryableGateway_ShortReplyIsRetried(t *testing.T) {
	inner := &scriptedGateway{replies: []func(TransformRequest) ([]string, error){dropLast}}

	got, err := NewRetryableGateway(inner, fastRetry, nil).Transform(context.Background(),
		TransformRequest{Texts: []string{"a", "b", "c"}})

	if err != nil {
		t.Fatalf("Transform failed: %v", err)
	}
	if len(got) != 3 || len(inner.batches) != 2 {
		t.Errorf("got %v after %d calls", got, len(inner.batches))
	}
}

func TestRetryableGateway_SplitsPersistentMismatch(t *testing.T) {
	cfg := fastRetry
	cfg.MaxRetries = 1
	cfg.SplitOnMismatch = true
	// The full batch is answered short twice; its halves are answered
	// correctly.
	inner := &scriptedGateway{replies: []func(TransformRequest) ([]string, error){dropLast, dropLast}}

	got, err := NewRetryableGateway(inner, cfg, nil).Transform(context.Background(),
		TransformRequest{Texts: []string{"one", "two", "three", "four"}})

	if err != nil {
		t.Fatalf("Transform failed: %v", err)
	}
	if strings.Join(got, " ") != "ONE TWO THREE FOUR" {
		t.Errorf("got %v", got)
	}
	want := []string{"one two three four", "one two three four", "one two", "three four"}
	if len(inner.batches) != len(want) {
		t.Fatalf("batches = %v", inner.batches)
	}
	for i, b := range inner.batches {
		if strings.Join(b, " ") != want[i] {
			t.Errorf("batch %d = %v, want %q", i, b, want[i])
		}
	}
}

func TestRetryableGateway_SingleTextMismatchFails(t *testing.T) {
	cfg := fastRetry
	cfg.MaxRetries = 1
	cfg.SplitOnMismatch = true
	empty := func(TransformRequest) ([]string, error) { return nil, nil }
	inner := &scriptedGateway{replies: []func(TransformRequest) ([]string, error){empty, empty}}

	_, err := NewRetryableGateway(inner, cfg, nil).Transform(context.Background(),
		TransformRequest{Texts: []string{"alone"}})

	var mismatch *CountMismatchError
	if !errors.As(err, &mismatch) || mismatch.Expected != 1 || mismatch.Got != 0 {
		t.Fatalf("err = %v, want count mismatch 1/0", err)
	}
}

func TestRetryableGateway_NoSplitWhenDisabled(t *testing.T) {
	cfg := fastRetry
	cfg.MaxRetries = 0
	inner := &scriptedGateway{replies: []func(TransformRequest) ([]string, error){dropLast}}

	_, err := NewRetryableGateway(inner, cfg, nil).Transform(context.Background(),
		TransformRequest{Texts: []string{"a", "b"}})

	var mismatch *CountMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("err = %v, want count mismatch", err)
	}
	if len(inner.batches) != 1 {
		t.Errorf("calls = %d, want 1", len(inner.batches))
	}
}

func TestRetryableGateway_GivesUp(t *testing.T) {
	cfg := fastRetry
	cfg.MaxRetries = 1
	cfg.SplitOnMismatch = true
	inner := &scriptedGateway{replies: []func(TransformRequest) ([]string, error){overloaded, overloaded}}

	_, err := NewRetryableGateway(inner, cfg, nil).Transform(context.Background(),
		TransformRequest{Texts: []string{"hello", "world"}})

	var providerErr *ProviderError
	if !errors.As(err, &providerErr) {
		t.Fatalf("Expected ProviderError, got: %v", err)
	}
	if len(inner.batches) != 2 {
		t.Errorf("calls = %d, want 2 (provider errors are not split)", len(inner.batches))
	}
}

func TestDefaultRetryConfig(t *testing.T) {
	cfg := DefaultRetryConfig()
	if cfg.MaxRetries != 3 || cfg.BaseDelay != time.Second || cfg.MaxDelay != 30*time.Second || !cfg.SplitOnMismatch {
		t.Errorf("DefaultRetryConfig() = %+v", cfg)
	}
}
