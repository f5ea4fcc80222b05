package duallang

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

// Gateway is the interface for batch translation backends. Transform must
// return exactly one result per input text, in input order.
type Gateway interface {
	Transform(ctx context.Context, req TransformRequest) ([]string, error)
}

// TransformRequest contains the parameters for a batch translation.
type TransformRequest struct {
	Texts         []string
	SourceLang    string
	TargetLang    string
	ExcludedTerms []string
	Context       string
	Glossary      map[string]string
	Style         TranslationStyle
}

// TextTranslator translates a single block of text. Web translation
// endpoints that accept one string per call implement this; JoinedGateway
// turns them into a Gateway.
type TextTranslator interface {
	TranslateText(ctx context.Context, text, sourceLang, targetLang string) (string, error)
}

// DefaultJoinMark separates items in a joined request.
const DefaultJoinMark = "|"

// JoinedGateway sends a whole batch as one string, items separated by the
// join mark followed by a newline. The newline keeps items on their own
// lines so the backend does not merge or trim across them; it is removed
// from the response before splitting on the mark.
type JoinedGateway struct {
	translator TextTranslator
	mark       string
}

// NewJoinedGateway wraps a single-string translator. An empty mark selects
// DefaultJoinMark.
func NewJoinedGateway(t TextTranslator, mark string) *JoinedGateway {
	if mark == "" {
		mark = DefaultJoinMark
	}
	return &JoinedGateway{translator: t, mark: mark}
}

// Transform implements Gateway.
func (g *JoinedGateway) Transform(ctx context.Context, req TransformRequest) ([]string, error) {
	if len(req.Texts) == 0 {
		return []string{}, nil
	}

	// Items that would be split apart on the way back are sent one by one.
	for _, text := range req.Texts {
		if strings.Contains(text, g.mark) || strings.Contains(text, "\n") {
			return g.transformEach(ctx, req)
		}
	}

	joined := strings.Join(req.Texts, g.mark+"\n")
	out, err := g.translator.TranslateText(ctx, joined, req.SourceLang, req.TargetLang)
	if err != nil {
		return nil, err
	}

	parts := strings.Split(strings.ReplaceAll(out, "\n", ""), g.mark)
	if len(parts) != len(req.Texts) {
		return nil, &CountMismatchError{Expected: len(req.Texts), Got: len(parts)}
	}
	return parts, nil
}

func (g *JoinedGateway) transformEach(ctx context.Context, req TransformRequest) ([]string, error) {
	results := make([]string, len(req.Texts))
	for i, text := range req.Texts {
		out, err := g.translator.TranslateText(ctx, text, req.SourceLang, req.TargetLang)
		if err != nil {
			return nil, err
		}
		results[i] = out
	}
	return results, nil
}

// FallbackGateway degrades gracefully: when the wrapped gateway fails, the
// input texts are returned unchanged instead of failing the document.
// Cancellation is still reported as an error. Wrap a RetryableGateway with
// it so the fallback only applies after retries are exhausted.
type FallbackGateway struct {
	gateway Gateway
	logger  *zap.Logger
}

// NewFallbackGateway wraps gateway. A nil logger discards log output.
func NewFallbackGateway(gateway Gateway, logger *zap.Logger) *FallbackGateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FallbackGateway{gateway: gateway, logger: logger}
}

// Transform implements Gateway.
func (g *FallbackGateway) Transform(ctx context.Context, req TransformRequest) ([]string, error) {
	results, err := g.gateway.Transform(ctx, req)
	if err == nil {
		return results, nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	g.logger.Warn("translation failed, keeping original text",
		zap.Int("texts", len(req.Texts)),
		zap.String("source_lang", req.SourceLang),
		zap.String("target_lang", req.TargetLang),
		zap.Error(err),
	)
	out := make([]string, len(req.Texts))
	copy(out, req.Texts)
	return out, nil
}
