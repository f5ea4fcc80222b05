package processor

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ali-185/DualLang"
	"golang.org/x/net/html"
)

// DefaultElements are the elements converted when none are configured.
var DefaultElements = []string{"p"}

// autoClosing elements end implicitly when a sibling of the same name
// starts or their parent closes.
var autoClosing = map[string]bool{
	"p":  true,
	"li": true,
	"dt": true,
	"dd": true,
}

// HTMLProcessor extracts the inner markup of selected elements (paragraphs
// by default) inside <body> as fragments. Everything outside the fragments
// is copied byte for byte, so documents keep their exact formatting.
type HTMLProcessor struct {
	elements    map[string]bool
	ignoredTags map[string]bool
	bodyOnly    bool
}

// HTMLOption configures an HTMLProcessor.
type HTMLOption func(*HTMLProcessor)

// WithElements sets the elements whose content is converted.
func WithElements(names ...string) HTMLOption {
	return func(p *HTMLProcessor) {
		p.elements = lowerSet(names)
	}
}

// WithIgnoredTags sets the elements whose content is never converted.
func WithIgnoredTags(tags ...string) HTMLOption {
	return func(p *HTMLProcessor) {
		p.ignoredTags = lowerSet(tags)
	}
}

// WithWholeDocument also converts elements outside <body>.
func WithWholeDocument() HTMLOption {
	return func(p *HTMLProcessor) {
		p.bodyOnly = false
	}
}

// NewHTMLProcessor creates a new HTML processor.
func NewHTMLProcessor(opts ...HTMLOption) *HTMLProcessor {
	p := &HTMLProcessor{
		elements:    lowerSet(DefaultElements),
		ignoredTags: duallang.IgnoredTags,
		bodyOnly:    true,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func lowerSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[strings.ToLower(n)] = true
	}
	return set
}

// keepPrefix starts the comment standing in for an ignored element nested
// in a fragment. Comments pass through segmentation untouched.
const keepPrefix = "<!--duallang:keep:"

func keepMarker(i int) string {
	return keepPrefix + strconv.Itoa(i) + "-->"
}

// keptRange is an ignored element inside a fragment.
type keptRange struct {
	name       string
	start, end int
	nest       int
}

// region is a fragment's position in the source document.
type region struct {
	id         string
	element    string
	start, end int
	inBody     bool
	kept       []keptRange
}

// markup returns the fragment with kept elements replaced by markers.
func (r region) markup(content string) string {
	if len(r.kept) == 0 {
		return content[r.start:r.end]
	}
	var b strings.Builder
	prev := r.start
	for i, k := range r.kept {
		b.WriteString(content[prev:k.start])
		b.WriteString(keepMarker(i))
		prev = k.end
	}
	b.WriteString(content[prev:r.end])
	return b.String()
}

// restore puts the kept elements back in place of their markers.
func (r region) restore(content, converted string) string {
	for i, k := range r.kept {
		converted = strings.ReplaceAll(converted, keepMarker(i), content[k.start:k.end])
	}
	return converted
}

// htmlDocument is the parsed form handed back to Apply.
type htmlDocument struct {
	content string
	regions []region
}

// openElement tracks the fragment being read.
type openElement struct {
	name   string
	start  int
	inBody bool
	inner  []string // elements opened inside the fragment
	kept   []keptRange
	keep   *keptRange // ignored element being read
}

// Extract tokenizes content and returns one fragment per selected element.
// A document without a <body> tag is treated as all body. Ignored elements
// nested in a selected element are kept out of the fragment and restored
// unchanged by Apply.
func (p *HTMLProcessor) Extract(content string) (interface{}, []duallang.Fragment, error) {
	z := html.NewTokenizer(strings.NewReader(content))
	canKeep := !strings.Contains(content, keepPrefix)

	var (
		regions  []region
		cur      *openElement
		offset   int
		inBody   bool
		sawBody  bool
		skipName string
		skipNest int
	)

	endKeep := func(end int) {
		cur.keep.end = end
		cur.kept = append(cur.kept, *cur.keep)
		cur.keep = nil
	}
	closeAt := func(end int) {
		if cur.keep != nil {
			endKeep(end)
		}
		regions = append(regions, region{element: cur.name, start: cur.start, end: end, inBody: cur.inBody, kept: cur.kept})
		cur = nil
	}

	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			if z.Err() == io.EOF {
				break
			}
			return nil, nil, &duallang.ProcessorError{
				Message:     "failed to tokenize HTML",
				Cause:       z.Err(),
				ContentType: "html",
			}
		}

		start := offset
		offset += len(z.Raw())

		if tt != html.StartTagToken && tt != html.EndTagToken && tt != html.SelfClosingTagToken {
			continue
		}
		nameBytes, hasAttr := z.TagName()
		name := string(nameBytes)
		noTranslate := hasAttr && hasNoTranslate(z)
		opens := tt == html.StartTagToken && !duallang.VoidElements[name]

		if cur != nil && cur.keep != nil {
			k := cur.keep
			switch {
			case name == k.name && opens:
				k.nest++
				continue
			case name == k.name && tt == html.EndTagToken:
				if k.nest--; k.nest == 0 {
					endKeep(offset)
				}
				continue
			case tt == html.EndTagToken && name == cur.name:
				// The fragment ends an unclosed ignored element.
				endKeep(start)
			default:
				continue
			}
		} else if cur != nil && canKeep && opens && (p.ignoredTags[name] || noTranslate) {
			cur.keep = &keptRange{name: name, start: start, nest: 1}
			continue
		}

		if cur != nil {
			switch {
			case tt == html.StartTagToken && name == cur.name && autoClosing[name] && len(cur.inner) == 0:
				closeAt(start)
			case tt == html.EndTagToken && len(cur.inner) > 0 && cur.inner[len(cur.inner)-1] == name:
				cur.inner = cur.inner[:len(cur.inner)-1]
				continue
			case tt == html.EndTagToken && name == cur.name && !contains(cur.inner, name):
				// Unclosed inline elements stay in the fragment for the
				// segmenter to report.
				closeAt(start)
				continue
			case tt == html.EndTagToken && len(cur.inner) > 0:
				continue
			case tt == html.EndTagToken && autoClosing[cur.name]:
				// A parent closes the element.
				closeAt(start)
			case opens:
				cur.inner = append(cur.inner, name)
				continue
			default:
				continue
			}
		}

		if skipNest > 0 {
			if name == skipName {
				if opens {
					skipNest++
				} else if tt == html.EndTagToken {
					skipNest--
				}
			}
			continue
		}

		switch {
		case name == "body" && tt == html.StartTagToken:
			inBody, sawBody = true, true
		case name == "body" && tt == html.EndTagToken:
			inBody = false
		case opens && (p.ignoredTags[name] || noTranslate):
			skipName, skipNest = name, 1
		case opens && p.elements[name]:
			cur = &openElement{name: name, start: offset, inBody: inBody}
		}
	}

	if cur != nil {
		closeAt(offset)
	}

	doc := &htmlDocument{content: content}
	var fragments []duallang.Fragment
	counts := make(map[string]int)
	for _, r := range regions {
		if p.bodyOnly && sawBody && !r.inBody {
			continue
		}
		markup := r.markup(content)
		if strings.TrimSpace(markup) == "" {
			continue
		}

		r.id = fmt.Sprintf("%s-%d", r.element, counts[r.element])
		counts[r.element]++

		doc.regions = append(doc.regions, r)
		fragments = append(fragments, duallang.Fragment{
			ID:     r.id,
			Markup: markup,
			Metadata: map[string]string{
				"element": r.element,
				"offset":  strconv.Itoa(r.start),
			},
		})
	}

	return doc, fragments, nil
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

func hasNoTranslate(z *html.Tokenizer) bool {
	for {
		key, _, more := z.TagAttr()
		if string(key) == "data-no-translate" {
			return true
		}
		if !more {
			return false
		}
	}
}

// Apply splices converted fragments into the original document. Fragments
// missing from converted keep their original markup.
func (p *HTMLProcessor) Apply(parsed interface{}, fragments []duallang.Fragment, converted map[string]string) (string, error) {
	doc, ok := parsed.(*htmlDocument)
	if !ok {
		return "", &duallang.ProcessorError{
			Message:     "invalid parsed content type",
			ContentType: "html",
		}
	}

	var b strings.Builder
	b.Grow(len(doc.content) * 2)
	prev := 0
	for _, r := range doc.regions {
		b.WriteString(doc.content[prev:r.start])
		if c, ok := converted[r.id]; ok {
			b.WriteString(r.restore(doc.content, c))
		} else {
			b.WriteString(doc.content[r.start:r.end])
		}
		prev = r.end
	}
	b.WriteString(doc.content[prev:])

	return b.String(), nil
}

// ContentType returns "html".
func (p *HTMLProcessor) ContentType() string {
	return "html"
}

var _ ContentProcessor = (*HTMLProcessor)(nil)
