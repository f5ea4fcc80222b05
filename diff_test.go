package duallang

import (
	"testing"
)

func TestDiffSpans_NoChanges(t *testing.T) {
	spans := []Span{
		{Hash: "hash1", Text: "Hello"},
		{Hash: "hash2", Text: "World"},
	}

	diff := DiffSpans(spans, spans)

	if diff.HasChanges() {
		t.Error("Expected no changes for identical content")
	}

	if len(diff.Unchanged) != 2 {
		t.Errorf("Expected 2 unchanged, got %d", len(diff.Unchanged))
	}
}

func TestDiffSpans_AllNew(t *testing.T) {
	newSpans := []Span{
		{Hash: "hash1", Text: "Hello"},
		{Hash: "hash2", Text: "World"},
	}

	diff := DiffSpans(nil, newSpans)

	if len(diff.Added) != 2 {
		t.Errorf("Expected 2 added, got %d", len(diff.Added))
	}

	if len(diff.Removed) != 0 {
		t.Errorf("Expected 0 removed, got %d", len(diff.Removed))
	}
}

func TestDiffSpans_AllRemoved(t *testing.T) {
	oldSpans := []Span{
		{Hash: "hash1", Text: "Hello"},
		{Hash: "hash2", Text: "World"},
	}

	diff := DiffSpans(oldSpans, []Span{})

	if len(diff.Added) != 0 {
		t.Errorf("Expected 0 added, got %d", len(diff.Added))
	}

	if len(diff.Removed) != 2 {
		t.Errorf("Expected 2 removed, got %d", len(diff.Removed))
	}
}

func TestDiffSpans_MixedKeepsOrder(t *testing.T) {
	oldSpans := []Span{
		{Hash: "hash1", Text: "Hello"},
		{Hash: "hash2", Text: "World"},
		{Hash: "hash3", Text: "Removed"},
		{Hash: "hash1", Text: "Hello"},
	}
	newSpans := []Span{
		{Hash: "hash5", Text: "First"},
		{Hash: "hash1", Text: "Hello"},
		{Hash: "hash2", Text: "World"},
		{Hash: "hash4", Text: "Added"},
	}

	diff := DiffSpans(oldSpans, newSpans)

	if len(diff.Unchanged) != 2 {
		t.Errorf("Expected 2 unchanged (duplicates once), got %d", len(diff.Unchanged))
	}
	if len(diff.Removed) != 1 {
		t.Errorf("Expected 1 removed, got %d", len(diff.Removed))
	}
	if len(diff.Added) != 2 {
		t.Fatalf("Expected 2 added, got %d", len(diff.Added))
	}
	if diff.Added[0].Text != "First" || diff.Added[1].Text != "Added" {
		t.Errorf("Added not in document order: %+v", diff.Added)
	}
}

func TestDiffSpansWithPosition_DetectsModified(t *testing.T) {
	oldSpans := []Span{
		{Index: 0, Fragment: "p-0", Hash: "hash1", Text: "Hello"},
		{Index: 1, Fragment: "p-1", Hash: "hash2", Text: "Welcome"},
	}
	newSpans := []Span{
		{Index: 0, Fragment: "p-0", Hash: "hash3", Text: "Hi"},
		{Index: 1, Fragment: "p-1", Hash: "hash2", Text: "Welcome"},
	}

	diff := DiffSpansWithPosition(oldSpans, newSpans)

	if len(diff.Modified) != 1 {
		t.Fatalf("Expected 1 modified, got %d", len(diff.Modified))
	}
	if len(diff.Unchanged) != 1 {
		t.Errorf("Expected 1 unchanged, got %d", len(diff.Unchanged))
	}
	if len(diff.Added) != 0 || len(diff.Removed) != 0 {
		t.Errorf("Expected nothing left after matching, got %d added %d removed", len(diff.Added), len(diff.Removed))
	}
	if diff.Modified[0].Old.Text != "Hello" || diff.Modified[0].New.Text != "Hi" {
		t.Errorf("Modified span mismatch: %v", diff.Modified[0])
	}
}

func TestDiffSpansWithPosition_MatchesByFragment(t *testing.T) {
	oldSpans := []Span{
		{Index: 0, Fragment: "p-0", Hash: "a", Text: "Intro"},
		{Index: 1, Fragment: "p-1", Hash: "b", Text: "Old sentence"},
	}
	newSpans := []Span{
		{Index: 0, Fragment: "p-0", Hash: "a", Text: "Intro"},
		{Index: 1, Fragment: "p-0", Hash: "c", Text: "Inserted"},
		{Index: 2, Fragment: "p-1", Hash: "d", Text: "New sentence"},
	}

	diff := DiffSpansWithPosition(oldSpans, newSpans)

	if len(diff.Modified) != 1 {
		t.Fatalf("Expected 1 modified, got %d", len(diff.Modified))
	}
	// Index 1 pairs "Old sentence" with "Inserted" first.
	if diff.Modified[0].New.Text != "Inserted" {
		t.Errorf("Modified = %+v", diff.Modified[0])
	}
	if len(diff.Added) != 1 || diff.Added[0].Text != "New sentence" {
		t.Errorf("Added = %+v", diff.Added)
	}
}

func TestDiffResult_NeedsTranslation(t *testing.T) {
	diff := &DiffResult{
		Added: []Span{
			{Hash: "hash1", Text: "New text"},
		},
		Modified: []ModifiedSpan{
			{
				Old: Span{Hash: "hash2", Text: "Old text"},
				New: Span{Hash: "hash3", Text: "Updated text"},
			},
		},
		Unchanged: []Span{
			{Hash: "hash4", Text: "Same text"},
		},
	}

	needs := diff.NeedsTranslation()

	if len(needs) != 2 {
		t.Errorf("Expected 2 spans needing translation, got %d", len(needs))
	}
}

func TestDiffResult_Stats(t *testing.T) {
	diff := &DiffResult{
		Added:     make([]Span, 3),
		Removed:   make([]Span, 2),
		Unchanged: make([]Span, 10),
		Modified:  make([]ModifiedSpan, 1),
	}

	stats := diff.Stats()

	if stats.Added != 3 || stats.Removed != 2 || stats.Unchanged != 10 || stats.Modified != 1 {
		t.Errorf("Stats mismatch: %+v", stats)
	}
}

func TestDiffResult_HasChanges(t *testing.T) {
	tests := []struct {
		name     string
		diff     DiffResult
		expected bool
	}{
		{"no changes", DiffResult{Unchanged: make([]Span, 5)}, false},
		{"has added", DiffResult{Added: make([]Span, 1)}, true},
		{"has removed", DiffResult{Removed: make([]Span, 1)}, true},
		{"has modified", DiffResult{Modified: make([]ModifiedSpan, 1)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.diff.HasChanges() != tt.expected {
				t.Errorf("HasChanges() = %v, want %v", tt.diff.HasChanges(), tt.expected)
			}
		})
	}
}

func TestConverter_SpansFeedDiff(t *testing.T) {
	c := NewConverter("en", "es", nil, WithProcessor(&blockProcessor{}))

	oldSpans, err := c.Spans("<p>Hello. World.</p>", "text")
	if err != nil {
		t.Fatal(err)
	}
	newSpans, err := c.Spans("<p>Hello. Moon.</p>", "text")
	if err != nil {
		t.Fatal(err)
	}

	if len(oldSpans) != 2 || oldSpans[1].Fragment != "f-0" || oldSpans[1].Index != 1 {
		t.Fatalf("unexpected spans: %+v", oldSpans)
	}

	diff := DiffSpansWithPosition(oldSpans, newSpans)
	if len(diff.Modified) != 1 || diff.Modified[0].New.Text != "Moon" {
		t.Errorf("Expected World -> Moon, got %+v", diff.Modified)
	}
}
