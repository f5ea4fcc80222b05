package duallang

// TranslationStyle controls the tone and formality of translations.
type TranslationStyle string

const (
	// StyleFormal uses formal, professional language.
	StyleFormal TranslationStyle = "formal"
	// StyleNeutral uses a neutral tone suitable for general prose.
	StyleNeutral TranslationStyle = "neutral"
	// StyleCasual uses casual, conversational language.
	StyleCasual TranslationStyle = "casual"
	// StyleLiteral keeps the translation close to the source wording,
	// which suits readers following the original phrase by phrase.
	StyleLiteral TranslationStyle = "literal"
)

// DefaultDelimiters are the punctuation characters that end a text run.
var DefaultDelimiters = []rune{'.', '!', '?', ',', ';', ':', '"'}

// DefaultSeparator is inserted between the original run and its copy.
const DefaultSeparator = " "

// Sentinels delimit a span destined for translation inside a segmented
// fragment. Neither marker may occur in the input markup.
type Sentinels struct {
	Open  string
	Close string
}

// DefaultSentinels uses the STX and ETX control characters, which never
// appear in well-formed HTML text.
var DefaultSentinels = Sentinels{Open: "\x02", Close: "\x03"}

// Wrap marks s for translation.
func (s Sentinels) Wrap(text string) string {
	return s.Open + text + s.Close
}

// Segment is one text run paired with its sentinel-wrapped duplicate.
type Segment struct {
	Prefix      string // Ancestor opening markup floated in front of the run
	Original    string // Run as it appears in the output, prefix included
	Transformed string // Copy with plain text wrapped in sentinels, prefix trimmed to tags
}

// Segmented is the result of segmenting a single fragment.
type Segmented struct {
	Markup    string    // Sentinel-tagged fragment
	Spans     []string  // Sentinel-wrapped spans in document order
	Segments  []Segment // Runs in document order
	Sentinels Sentinels
}

// Fragment is a region of a document handed to the segmenter as one unit.
type Fragment struct {
	ID       string            // Position-based identifier, e.g. "p-3"
	Markup   string            // Raw markup of the region
	Metadata map[string]string // Element name, byte offset, etc.
}

// Span is a unit of text sent to the gateway.
type Span struct {
	Index    int    // Position in document order
	Text     string // Span text without sentinels
	Hash     string // HashText(Text)
	Fragment string // ID of the fragment the span belongs to
}

// ProcessedContent is the result of a conversion.
type ProcessedContent struct {
	Content          string // Dual-language content
	FragmentCount    int    // Fragments segmented
	SkippedFragments int    // Malformed fragments left untouched
	SpanCount        int    // Sentinel spans found
	TranslatedCount  int    // Unique spans sent to the gateway
	CachedCount      int    // Spans served from cache
}

// IgnoredTags contains elements whose content is never segmented.
var IgnoredTags = map[string]bool{
	"script":   true,
	"style":    true,
	"code":     true,
	"pre":      true,
	"textarea": true,
	"noscript": true,
}

// VoidElements are HTML elements that never take a closing tag; they are
// treated as neutral even when written without a trailing slash.
var VoidElements = map[string]bool{
	"area":   true,
	"base":   true,
	"br":     true,
	"col":    true,
	"embed":  true,
	"hr":     true,
	"img":    true,
	"input":  true,
	"link":   true,
	"meta":   true,
	"param":  true,
	"source": true,
	"track":  true,
	"wbr":    true,
}

// RTLLanguages contains language codes that use right-to-left text direction.
var RTLLanguages = map[string]bool{
	"ar": true, // Arabic
	"he": true, // Hebrew
	"fa": true, // Persian/Farsi
	"ur": true, // Urdu
	"ps": true, // Pashto
	"sd": true, // Sindhi
	"ug": true, // Uyghur
	"yi": true, // Yiddish
}
