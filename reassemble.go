package duallang

import (
	"fmt"
	"strings"
)

// Validate checks that the markers are usable: non-empty, distinct, not
// contained in one another, and free of markup characters.
func (s Sentinels) Validate() error {
	switch {
	case s.Open == "" || s.Close == "":
		return &SentinelError{Message: "sentinel markers must not be empty"}
	case strings.Contains(s.Open, s.Close) || strings.Contains(s.Close, s.Open):
		return &SentinelError{Message: "sentinel markers must be distinct"}
	case strings.ContainsAny(s.Open+s.Close, "<>&"):
		return &SentinelError{Message: "sentinel markers must not contain markup characters"}
	}
	return nil
}

// checkAbsent fails if either marker already occurs in markup.
func (s Sentinels) checkAbsent(markup string) error {
	if i := strings.Index(markup, s.Open); i >= 0 {
		return &SentinelError{Message: "input contains the opening sentinel", Offset: i}
	}
	if i := strings.Index(markup, s.Close); i >= 0 {
		return &SentinelError{Message: "input contains the closing sentinel", Offset: i}
	}
	return nil
}

// ExtractSpans returns the sentinel-wrapped spans of markup in left-to-right
// order, without their markers. Unpaired or nested markers are an error.
func ExtractSpans(markup string, s Sentinels) ([]string, error) {
	var spans []string
	err := walkSpans(markup, s, func(_ string, span string) {
		spans = append(spans, span)
	})
	if err != nil {
		return nil, err
	}
	return spans, nil
}

// Substitute replaces the i-th sentinel span of markup with results[i].
// Any marker echoed back inside a result is removed, so the output never
// contains sentinels. len(results) must equal the number of spans.
func Substitute(markup string, s Sentinels, results []string) (string, error) {
	spans, err := ExtractSpans(markup, s)
	if err != nil {
		return "", err
	}
	if len(results) != len(spans) {
		return "", &CountMismatchError{Expected: len(spans), Got: len(results)}
	}

	strip := strings.NewReplacer(s.Open, "", s.Close, "")
	var b strings.Builder
	b.Grow(len(markup))
	i := 0
	err = walkSpans(markup, s, func(between string, _ string) {
		b.WriteString(between)
		b.WriteString(strip.Replace(results[i]))
		i++
	})
	if err != nil {
		return "", err
	}
	b.WriteString(markup[lastSpanEnd(markup, s):])
	return b.String(), nil
}

// Reassemble substitutes results into a segmented fragment.
func Reassemble(seg *Segmented, results []string) (string, error) {
	return Substitute(seg.Markup, seg.Sentinels, results)
}

// walkSpans calls fn for each span with the text preceding it (since the
// previous span) and the span body.
func walkSpans(markup string, s Sentinels, fn func(between, span string)) error {
	offset := 0
	rest := markup
	for {
		open := strings.Index(rest, s.Open)
		if open < 0 {
			if i := strings.Index(rest, s.Close); i >= 0 {
				return &SentinelError{Message: "closing sentinel without opening sentinel", Offset: offset + i}
			}
			return nil
		}
		if i := strings.Index(rest[:open], s.Close); i >= 0 {
			return &SentinelError{Message: "closing sentinel without opening sentinel", Offset: offset + i}
		}

		bodyStart := open + len(s.Open)
		end := strings.Index(rest[bodyStart:], s.Close)
		if end < 0 {
			return &SentinelError{Message: "unterminated sentinel span", Offset: offset + open}
		}
		body := rest[bodyStart : bodyStart+end]
		if i := strings.Index(body, s.Open); i >= 0 {
			return &SentinelError{
				Message: fmt.Sprintf("nested sentinel span inside span starting at %d", offset+open),
				Offset:  offset + bodyStart + i,
			}
		}

		fn(rest[:open], body)

		consumed := bodyStart + end + len(s.Close)
		offset += consumed
		rest = rest[consumed:]
	}
}

// lastSpanEnd returns the offset just past the last closing sentinel, or 0.
func lastSpanEnd(markup string, s Sentinels) int {
	i := strings.LastIndex(markup, s.Close)
	if i < 0 {
		return 0
	}
	return i + len(s.Close)
}
