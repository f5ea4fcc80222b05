package duallang

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
)

// Converter turns documents into dual-language documents. It is immutable
// after construction and safe for concurrent use: every call owns its own
// segmentation state.
type Converter struct {
	sourceLang        string
	targetLang        string
	gateway           Gateway
	cache             TranslationCache
	delimiters        []rune
	sentinels         Sentinels
	separator         string
	excludedTerms     []string
	context           string
	glossary          map[string]string
	style             TranslationStyle
	processors        map[string]ContentProcessor
	logger            *zap.Logger
	foldNewlines      bool
	skipMalformed     bool
	parallelThreshold int
	segmenter         *Segmenter
}

// TranslationCache is the interface for translation caching.
type TranslationCache interface {
	Get(key string) (string, bool)
	Set(key string, value string) error
}

// ContentProcessor splits a document into fragments and splices converted
// fragments back into it.
type ContentProcessor interface {
	Extract(content string) (interface{}, []Fragment, error)
	// Apply receives converted markup keyed by Fragment.ID; fragments
	// missing from the map are left unchanged.
	Apply(parsed interface{}, fragments []Fragment, converted map[string]string) (string, error)
	ContentType() string
}

// ConverterOption is a functional option for configuring the Converter.
type ConverterOption func(*Converter)

// WithCache sets the translation cache.
func WithCache(cache TranslationCache) ConverterOption {
	return func(c *Converter) {
		c.cache = cache
	}
}

// WithDelimiters sets the characters that end a text run.
func WithDelimiters(delimiters []rune) ConverterOption {
	return func(c *Converter) {
		c.delimiters = delimiters
	}
}

// WithSentinels sets the span markers. They must never occur in the input.
func WithSentinels(s Sentinels) ConverterOption {
	return func(c *Converter) {
		c.sentinels = s
	}
}

// WithSeparator sets the text placed between a run and its translation.
func WithSeparator(sep string) ConverterOption {
	return func(c *Converter) {
		c.separator = sep
	}
}

// WithExcludedTerms sets terms that should not be translated.
func WithExcludedTerms(terms []string) ConverterOption {
	return func(c *Converter) {
		c.excludedTerms = terms
	}
}

// WithContext sets the global translation context.
func WithContext(ctx string) ConverterOption {
	return func(c *Converter) {
		c.context = ctx
	}
}

// WithGlossary sets preferred translations for specific phrases.
func WithGlossary(glossary map[string]string) ConverterOption {
	return func(c *Converter) {
		c.glossary = glossary
	}
}

// WithStyle sets the translation style/register.
func WithStyle(style TranslationStyle) ConverterOption {
	return func(c *Converter) {
		c.style = style
	}
}

// WithProcessor registers a content processor.
func WithProcessor(processor ContentProcessor) ConverterOption {
	return func(c *Converter) {
		c.processors[processor.ContentType()] = processor
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *zap.Logger) ConverterOption {
	return func(c *Converter) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithNewlineFolding controls whether line breaks inside a fragment are
// replaced by spaces before segmentation (default true). Source HTML is
// usually hard-wrapped, and a wrapped line must not end up split across two
// gateway items.
func WithNewlineFolding(enabled bool) ConverterOption {
	return func(c *Converter) {
		c.foldNewlines = enabled
	}
}

// WithSkipMalformed makes document conversion leave malformed fragments
// untouched and log them instead of failing the whole document.
func WithSkipMalformed(enabled bool) ConverterOption {
	return func(c *Converter) {
		c.skipMalformed = enabled
	}
}

// WithParallelLookup enables parallel cache lookups for batches of at least
// threshold spans. Zero disables them.
func WithParallelLookup(threshold int) ConverterOption {
	return func(c *Converter) {
		c.parallelThreshold = threshold
	}
}

// NewConverter creates a Converter translating from sourceLang to targetLang
// through gateway.
func NewConverter(sourceLang, targetLang string, gateway Gateway, opts ...ConverterOption) *Converter {
	c := &Converter{
		sourceLang:   sourceLang,
		targetLang:   targetLang,
		gateway:      gateway,
		delimiters:   DefaultDelimiters,
		sentinels:    DefaultSentinels,
		separator:    DefaultSeparator,
		style:        StyleNeutral,
		processors:   make(map[string]ContentProcessor),
		logger:       zap.NewNop(),
		foldNewlines: true,
	}

	for _, opt := range opts {
		opt(c)
	}

	c.segmenter = NewSegmenter(c.delimiters, c.sentinels, c.separator)
	return c
}

var newlineFolder = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

// Segment segments a single fragment without translating it.
func (c *Converter) Segment(fragment string) (*Segmented, error) {
	if c.foldNewlines {
		fragment = newlineFolder.Replace(fragment)
	}
	return c.segmenter.Segment(fragment)
}

// ConvertFragment converts one fragment, typically the inner content of a
// body or paragraph element. Structural errors are returned as is.
func (c *Converter) ConvertFragment(ctx context.Context, fragment string) (*ProcessedContent, error) {
	frag := Fragment{ID: "fragment", Markup: fragment}
	converted, stats, err := c.convertFragments(ctx, []Fragment{frag}, false)
	if err != nil {
		var fe *FragmentError
		if errors.As(err, &fe) {
			return nil, fe.Cause
		}
		return nil, err
	}

	stats.Content = converted[frag.ID]
	return stats, nil
}

// Process converts content of the specified type.
func (c *Converter) Process(ctx context.Context, content string, contentType string) (*ProcessedContent, error) {
	if c.IsSourceLang() {
		return &ProcessedContent{Content: content}, nil
	}

	processor, ok := c.processors[contentType]
	if !ok {
		return nil, &ProcessorError{
			Message:     "no processor registered for content type",
			ContentType: contentType,
		}
	}

	parsed, fragments, err := processor.Extract(content)
	if err != nil {
		return nil, err
	}

	if len(fragments) == 0 {
		return &ProcessedContent{Content: content}, nil
	}

	converted, stats, err := c.convertFragments(ctx, fragments, c.skipMalformed)
	if err != nil {
		return nil, err
	}

	result, err := processor.Apply(parsed, fragments, converted)
	if err != nil {
		return nil, err
	}

	stats.Content = result
	return stats, nil
}

// ProcessHTML is a convenience method for processing HTML documents.
func (c *Converter) ProcessHTML(ctx context.Context, html string) (*ProcessedContent, error) {
	return c.Process(ctx, html, "html")
}

// Spans segments a document without translating it and returns its spans
// in document order. Malformed fragments are skipped when skip-malformed is
// enabled.
func (c *Converter) Spans(content string, contentType string) ([]Span, error) {
	processor, ok := c.processors[contentType]
	if !ok {
		return nil, &ProcessorError{
			Message:     "no processor registered for content type",
			ContentType: contentType,
		}
	}

	_, fragments, err := processor.Extract(content)
	if err != nil {
		return nil, err
	}

	var spans []Span
	for _, frag := range fragments {
		seg, err := c.Segment(frag.Markup)
		if err != nil {
			if c.skipMalformed && isMarkupError(err) {
				continue
			}
			return nil, &FragmentError{FragmentID: frag.ID, Cause: err}
		}
		for _, text := range seg.Spans {
			spans = append(spans, Span{
				Index:    len(spans),
				Text:     text,
				Hash:     HashText(text),
				Fragment: frag.ID,
			})
		}
	}
	return spans, nil
}

// segmentedFragment pairs a fragment with its segmentation and the range of
// its spans in the document-wide batch.
type segmentedFragment struct {
	id    string
	seg   *Segmented
	first int
}

// convertFragments segments every fragment, translates all spans with a
// single gateway call and substitutes the results back.
func (c *Converter) convertFragments(ctx context.Context, fragments []Fragment, skipMalformed bool) (map[string]string, *ProcessedContent, error) {
	stats := &ProcessedContent{}
	var segmented []segmentedFragment
	var texts []string

	for _, frag := range fragments {
		seg, err := c.Segment(frag.Markup)
		if err != nil {
			if skipMalformed && isMarkupError(err) {
				c.logger.Warn("skipping malformed fragment",
					zap.String("fragment", frag.ID),
					zap.Error(err),
				)
				stats.SkippedFragments++
				continue
			}
			return nil, nil, &FragmentError{FragmentID: frag.ID, Cause: err}
		}

		segmented = append(segmented, segmentedFragment{id: frag.ID, seg: seg, first: len(texts)})
		texts = append(texts, seg.Spans...)
	}
	stats.FragmentCount = len(segmented)
	stats.SpanCount = len(texts)

	c.logger.Debug("segmented fragments",
		zap.Int("fragments", len(segmented)),
		zap.Int("skipped", stats.SkippedFragments),
		zap.Int("spans", len(texts)),
	)

	results, cached, translated, err := c.transformSpans(ctx, texts)
	if err != nil {
		return nil, nil, err
	}
	stats.CachedCount = cached
	stats.TranslatedCount = translated

	converted := make(map[string]string, len(segmented))
	for _, sf := range segmented {
		n := len(sf.seg.Spans)
		out, err := Reassemble(sf.seg, results[sf.first:sf.first+n])
		if err != nil {
			return nil, nil, &FragmentError{FragmentID: sf.id, Cause: err}
		}
		converted[sf.id] = out
	}

	return converted, stats, nil
}

func isMarkupError(err error) bool {
	var se *StructuralError
	var sentinel *SentinelError
	return errors.As(err, &se) || errors.As(err, &sentinel)
}

// transformSpans translates texts, using the cache where possible. The
// result is index-aligned with texts.
func (c *Converter) transformSpans(ctx context.Context, texts []string) ([]string, int, int, error) {
	if len(texts) == 0 {
		return []string{}, 0, 0, nil
	}

	spans := make([]Span, len(texts))
	for i, text := range texts {
		spans[i] = Span{Index: i, Text: text, Hash: HashText(text)}
	}

	var translations map[string]string
	var misses []Span
	if c.cache != nil && c.parallelThreshold > 0 && len(spans) >= c.parallelThreshold {
		translations, misses = ParallelCacheLookup(c.cache, spans, c.sourceLang, c.targetLang)
	} else {
		translations, misses = c.cacheLookup(spans)
	}

	cachedCount := 0
	for _, span := range spans {
		if _, ok := translations[span.Hash]; ok {
			cachedCount++
		}
	}

	translatedCount := 0
	if len(misses) > 0 {
		if c.gateway == nil {
			return nil, 0, 0, &ProviderError{Message: "no gateway configured"}
		}

		missTexts := make([]string, len(misses))
		for i, span := range misses {
			missTexts[i] = span.Text
		}

		results, err := c.gateway.Transform(ctx, TransformRequest{
			Texts:         missTexts,
			SourceLang:    c.sourceLang,
			TargetLang:    c.targetLang,
			ExcludedTerms: c.excludedTerms,
			Context:       c.context,
			Glossary:      c.glossary,
			Style:         c.style,
		})
		if err != nil {
			return nil, 0, 0, err
		}
		if len(results) != len(misses) {
			return nil, 0, 0, &CountMismatchError{Expected: len(misses), Got: len(results)}
		}

		for i, span := range misses {
			translations[span.Hash] = results[i]
			if c.cache != nil {
				key := CacheKey(span.Hash, c.sourceLang, c.targetLang)
				if err := c.cache.Set(key, results[i]); err != nil {
					c.logger.Debug("cache set failed", zap.String("key", key), zap.Error(err))
				}
			}
			translatedCount++
		}
	}

	out := make([]string, len(spans))
	for i, span := range spans {
		out[i] = translations[span.Hash]
	}
	return out, cachedCount, translatedCount, nil
}

// cacheLookup checks the cache sequentially and returns the unique misses.
func (c *Converter) cacheLookup(spans []Span) (map[string]string, []Span) {
	translations := make(map[string]string)
	var misses []Span
	seen := make(map[string]bool)

	for _, span := range spans {
		if seen[span.Hash] {
			continue
		}
		seen[span.Hash] = true

		if c.cache != nil {
			if cached, ok := c.cache.Get(CacheKey(span.Hash, c.sourceLang, c.targetLang)); ok {
				translations[span.Hash] = cached
				continue
			}
		}
		misses = append(misses, span)
	}

	return translations, misses
}

// SourceLang returns the source language.
func (c *Converter) SourceLang() string {
	return c.sourceLang
}

// TargetLang returns the target language.
func (c *Converter) TargetLang() string {
	return c.targetLang
}

// IsSourceLang reports whether source and target share a base language, in
// which case conversion is a no-op.
func (c *Converter) IsSourceLang() bool {
	return SameLanguage(c.sourceLang, c.targetLang)
}

// Sentinels returns the span markers in use.
func (c *Converter) Sentinels() Sentinels {
	return c.sentinels
}

// Logger returns the converter's logger.
func (c *Converter) Logger() *zap.Logger {
	return c.logger
}
