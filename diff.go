package duallang

// DiffResult represents the difference between the spans of two document
// versions.
type DiffResult struct {
	// Added contains spans that are new (not in the previous version).
	Added []Span

	// Removed contains spans that no longer occur in the new version.
	Removed []Span

	// Unchanged contains spans present in both versions.
	Unchanged []Span

	// Modified pairs a removed span with an added one at the same place in
	// the document. Only DiffSpansWithPosition fills it.
	Modified []ModifiedSpan
}

// ModifiedSpan represents a span whose text changed.
type ModifiedSpan struct {
	Old Span
	New Span
}

// Stats returns summary statistics for the diff.
func (d *DiffResult) Stats() DiffStats {
	return DiffStats{
		Added:     len(d.Added),
		Removed:   len(d.Removed),
		Unchanged: len(d.Unchanged),
		Modified:  len(d.Modified),
	}
}

// DiffStats contains summary statistics for a diff.
type DiffStats struct {
	Added     int
	Removed   int
	Unchanged int
	Modified  int
}

// HasChanges returns true if there are any differences.
func (d *DiffResult) HasChanges() bool {
	return len(d.Added) > 0 || len(d.Removed) > 0 || len(d.Modified) > 0
}

// NeedsTranslation returns the spans that are not covered by a previous
// conversion: added spans and the new side of modified spans.
func (d *DiffResult) NeedsTranslation() []Span {
	result := make([]Span, 0, len(d.Added)+len(d.Modified))
	result = append(result, d.Added...)
	for _, m := range d.Modified {
		result = append(result, m.New)
	}
	return result
}

// DiffSpans compares two span lists by hash. Repeated spans are reported
// once. Every list in the result keeps document order.
func DiffSpans(oldSpans, newSpans []Span) *DiffResult {
	result := &DiffResult{}

	oldHashes := make(map[string]bool, len(oldSpans))
	newHashes := make(map[string]bool, len(newSpans))
	for _, span := range oldSpans {
		oldHashes[span.Hash] = true
	}
	for _, span := range newSpans {
		newHashes[span.Hash] = true
	}

	for _, span := range uniqueSpans(oldSpans) {
		if newHashes[span.Hash] {
			result.Unchanged = append(result.Unchanged, span)
		} else {
			result.Removed = append(result.Removed, span)
		}
	}

	for _, span := range uniqueSpans(newSpans) {
		if !oldHashes[span.Hash] {
			result.Added = append(result.Added, span)
		}
	}

	return result
}

// DiffSpansWithPosition is DiffSpans plus detection of modified spans: a
// removed span and an added span are paired when they have the same index,
// or failing that, come from the same fragment.
func DiffSpansWithPosition(oldSpans, newSpans []Span) *DiffResult {
	result := DiffSpans(oldSpans, newSpans)
	if len(result.Added) == 0 || len(result.Removed) == 0 {
		return result
	}

	addedMatched := make(map[int]bool)
	removedMatched := make(map[int]bool)

	match := func(same func(removed, added Span) bool) {
		for ri, removed := range result.Removed {
			if removedMatched[ri] {
				continue
			}
			for ai, added := range result.Added {
				if addedMatched[ai] || !same(removed, added) {
					continue
				}
				result.Modified = append(result.Modified, ModifiedSpan{Old: removed, New: added})
				addedMatched[ai] = true
				removedMatched[ri] = true
				break
			}
		}
	}

	match(func(r, a Span) bool { return r.Index == a.Index })
	match(func(r, a Span) bool { return r.Fragment != "" && r.Fragment == a.Fragment })

	added := make([]Span, 0)
	for i, span := range result.Added {
		if !addedMatched[i] {
			added = append(added, span)
		}
	}
	result.Added = added

	removed := make([]Span, 0)
	for i, span := range result.Removed {
		if !removedMatched[i] {
			removed = append(removed, span)
		}
	}
	result.Removed = removed

	return result
}
