package duallang

import (
	"context"
	"sync"
	"time"
)

// ParallelCacheLookup performs cache lookups in parallel using goroutines.
// Returns a map of hash to cached value, and the unique cache misses in
// document order.
func ParallelCacheLookup(cache TranslationCache, spans []Span, sourceLang, targetLang string) (map[string]string, []Span) {
	if cache == nil || len(spans) == 0 {
		return make(map[string]string), uniqueSpans(spans)
	}

	type lookupResult struct {
		hash  string
		value string
		found bool
	}

	unique := uniqueSpans(spans)

	results := make(chan lookupResult, len(unique))
	var wg sync.WaitGroup

	for _, span := range unique {
		wg.Add(1)
		go func(h string) {
			defer wg.Done()
			key := CacheKey(h, sourceLang, targetLang)
			if val, ok := cache.Get(key); ok {
				results <- lookupResult{hash: h, value: val, found: true}
			} else {
				results <- lookupResult{hash: h, found: false}
			}
		}(span.Hash)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	translations := make(map[string]string)
	missed := make(map[string]bool)
	for result := range results {
		if result.found {
			translations[result.hash] = result.value
		} else {
			missed[result.hash] = true
		}
	}

	// Preserve document order for the gateway request
	var misses []Span
	for _, span := range unique {
		if missed[span.Hash] {
			misses = append(misses, span)
		}
	}

	return translations, misses
}

// uniqueSpans drops spans whose hash was already seen, keeping the first.
func uniqueSpans(spans []Span) []Span {
	seen := make(map[string]bool, len(spans))
	var unique []Span
	for _, span := range spans {
		if !seen[span.Hash] {
			seen[span.Hash] = true
			unique = append(unique, span)
		}
	}
	return unique
}

// RunParallel runs fn for every task with at most maxConcurrent running at
// once, waiting delay between launches. The first error cancels the context
// passed to running tasks and stops further launches; it is returned. Tasks
// not yet started when ctx is cancelled are skipped.
func RunParallel[T any](parent context.Context, tasks []T, maxConcurrent int, delay time.Duration, fn func(context.Context, T) error) error {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	sem := make(chan struct{}, maxConcurrent)
	var wg sync.WaitGroup
	var firstErr error
	var errOnce sync.Once

launch:
	for i, task := range tasks {
		if ctx.Err() != nil {
			break
		}

		if i > 0 && delay > 0 {
			select {
			case <-ctx.Done():
				break launch
			case <-time.After(delay):
			}
		}

		select {
		case <-ctx.Done():
			break launch
		case sem <- struct{}{}:
		}
		// A slot freed by a failing task races with its cancellation.
		if ctx.Err() != nil {
			<-sem
			break
		}
		wg.Add(1)

		go func(t T) {
			defer func() {
				<-sem
				wg.Done()
			}()

			if err := fn(ctx, t); err != nil {
				errOnce.Do(func() {
					firstErr = err
					cancel()
				})
			}
		}(task)
	}

	wg.Wait()
	if firstErr == nil && parent.Err() != nil {
		return parent.Err()
	}
	return firstErr
}
