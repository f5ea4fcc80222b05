package duallang

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/net/html"
)

// Segmenter splits a fragment into delimiter-bounded text runs and follows
// every run with a sentinel-wrapped copy of itself. It holds configuration
// only: each call to Segment owns its own scope stack, so one Segmenter may
// be shared between goroutines.
type Segmenter struct {
	delimiters map[rune]bool
	sentinels  Sentinels
	separator  string
	spaced     bool // separator ends in whitespace
}

// NewSegmenter creates a segmenter. Nil delimiters select DefaultDelimiters.
func NewSegmenter(delimiters []rune, sentinels Sentinels, separator string) *Segmenter {
	if delimiters == nil {
		delimiters = DefaultDelimiters
	}
	set := make(map[rune]bool, len(delimiters))
	for _, r := range delimiters {
		set[r] = true
	}
	last, _ := utf8.DecodeLastRuneInString(separator)
	return &Segmenter{
		delimiters: set,
		sentinels:  sentinels,
		separator:  separator,
		spaced:     separator != "" && unicode.IsSpace(last),
	}
}

// Sentinels returns the markers used to wrap spans.
func (s *Segmenter) Sentinels() Sentinels {
	return s.sentinels
}

// Segment converts fragment into a sentinel-tagged fragment. All markup is
// preserved; every text run is followed by the separator and its copy, in
// which plain text is wrapped in sentinels and tags are left untouched.
//
// Unbalanced markup, a tag without '>', or a sentinel marker in the input
// fail without partial output.
func (s *Segmenter) Segment(fragment string) (*Segmented, error) {
	if err := s.sentinels.Validate(); err != nil {
		return nil, err
	}
	if err := s.sentinels.checkAbsent(fragment); err != nil {
		return nil, err
	}

	st := &segmentState{
		seg:   s,
		input: fragment,
		stack: newScopeStack(),
	}
	if err := st.run(); err != nil {
		return nil, err
	}

	markup := st.stack.top().String()
	spans, err := ExtractSpans(markup, s.sentinels)
	if err != nil {
		return nil, err
	}

	return &Segmented{
		Markup:    markup,
		Spans:     spans,
		Segments:  st.segments,
		Sentinels: s.sentinels,
	}, nil
}

// scopeStack holds the markup accumulated for each open nesting level.
// Frame 0 is the implicit root.
type scopeStack struct {
	frames []*strings.Builder
}

func newScopeStack() *scopeStack {
	return &scopeStack{frames: []*strings.Builder{new(strings.Builder)}}
}

func (st *scopeStack) depth() int {
	return len(st.frames)
}

func (st *scopeStack) top() *strings.Builder {
	return st.frames[len(st.frames)-1]
}

func (st *scopeStack) push(seed string) {
	b := new(strings.Builder)
	b.WriteString(seed)
	st.frames = append(st.frames, b)
}

// pop removes the top frame and returns its content. Frame 0 is never popped.
func (st *scopeStack) pop() string {
	last := st.frames[len(st.frames)-1]
	st.frames = st.frames[:len(st.frames)-1]
	return last.String()
}

// popN removes the top n frames and returns their content joined outermost
// first.
func (st *scopeStack) popN(n int) string {
	parts := make([]string, n)
	for i := n - 1; i >= 0; i-- {
		parts[i] = st.pop()
	}
	return strings.Join(parts, "")
}

type segmentState struct {
	seg      *Segmenter
	input    string
	stack    *scopeStack
	segments []Segment
}

func (st *segmentState) run() error {
	in := st.input
	pos := 0
	for pos < len(in) {
		if in[pos] != '<' {
			n, err := st.textRun(pos)
			if err != nil {
				return err
			}
			pos += n
			continue
		}

		tag, err := ReadTag(in[pos:])
		if err != nil {
			return st.structural(err, pos)
		}

		switch tag.Kind {
		case TagOpening:
			st.stack.push(tag.Text)
		case TagClosing:
			if st.stack.depth() == 1 {
				return &StructuralError{
					Message: fmt.Sprintf("closing tag %s has no matching opening tag", tag.Text),
					Offset:  pos,
					Depth:   1,
				}
			}
			inner := st.stack.pop()
			top := st.stack.top()
			top.WriteString(inner)
			top.WriteString(tag.Text)
		default:
			st.stack.top().WriteString(tag.Text)
		}
		pos += len(tag.Text)
	}

	if st.stack.depth() != 1 {
		return &StructuralError{
			Message: fmt.Sprintf("unbalanced markup: %d unclosed tag(s)", st.stack.depth()-1),
			Offset:  len(in),
			Depth:   st.stack.depth(),
		}
	}
	return nil
}

// textRun scans one run starting at pos and appends it, together with its
// transformed copy, to the current top frame. It returns the number of
// bytes consumed.
//
// depth counts tags opened inside the run; delimiters only end the run while
// depth is zero. overflow counts closing tags that belong to ancestor
// scopes: those scopes are popped and their markup floated in front of the
// run.
func (st *segmentState) textRun(pos int) (int, error) {
	in := st.input
	var original, transformed strings.Builder
	depth, overflow := 0, 0

	i := pos
	for {
		n := st.seg.scanText(in[i:], depth == 0)
		text := in[i : i+n]
		original.WriteString(text)
		transformed.WriteString(st.seg.wrapText(text))
		i += n

		if i < len(in) && in[i] == '<' {
			tag, err := ReadTag(in[i:])
			if err != nil {
				return 0, st.structural(err, i)
			}
			original.WriteString(tag.Text)
			transformed.WriteString(tag.Text)

			switch tag.Kind {
			case TagOpening:
				depth++
			case TagClosing:
				if depth > 0 {
					depth--
				} else {
					overflow++
				}
			}
			i += len(tag.Text)
			continue
		}

		// Delimiter or end of input
		if i < len(in) {
			_, size := utf8.DecodeRuneInString(in[i:])
			original.WriteString(in[i : i+size])
			transformed.WriteString(in[i : i+size])
			i += size
		}
		break
	}

	if depth > 0 {
		return 0, &StructuralError{
			Message: fmt.Sprintf("text run ends with %d unclosed tag(s)", depth),
			Offset:  i,
			Depth:   st.stack.depth() + depth,
		}
	}
	if overflow > st.stack.depth()-1 {
		return 0, &StructuralError{
			Message: fmt.Sprintf("%d closing tag(s) without matching opening tag", overflow-(st.stack.depth()-1)),
			Offset:  i,
			Depth:   st.stack.depth(),
		}
	}

	prefix := ""
	if overflow > 0 {
		prefix = st.stack.popN(overflow)
	}

	// A run placed right after a spaced separator drops its own leading
	// whitespace in the copy.
	copied := transformed.String()
	if prefix == "" && st.seg.spaced {
		copied = strings.TrimLeftFunc(copied, unicode.IsSpace)
	}

	seg := Segment{
		Prefix:      prefix,
		Original:    prefix + original.String(),
		Transformed: TrimTagText(prefix) + copied,
	}
	st.segments = append(st.segments, seg)

	top := st.stack.top()
	top.WriteString(seg.Original)
	top.WriteString(st.seg.separator)
	top.WriteString(seg.Transformed)

	return i - pos, nil
}

// structural attaches the fragment offset and stack depth to a tag error.
func (st *segmentState) structural(err error, offset int) error {
	if se, ok := err.(*StructuralError); ok {
		return &StructuralError{
			Message: se.Message,
			Offset:  offset + se.Offset,
			Depth:   st.stack.depth(),
		}
	}
	return err
}

// scanText returns the length of the text at the start of s, up to the next
// tag or, when restricted, the next delimiter. Character references such
// as "&amp;" are never split by a ';' delimiter.
func (s *Segmenter) scanText(text string, restricted bool) int {
	i := 0
	for i < len(text) {
		c := text[i]
		if c == '<' {
			return i
		}
		if restricted && c == '&' {
			if n := entityLength(text[i:]); n > 0 {
				i += n
				continue
			}
		}
		r, size := utf8.DecodeRuneInString(text[i:])
		if restricted && s.delimiters[r] {
			return i
		}
		i += size
	}
	return i
}

// maxEntityLength bounds the search for the ';' ending a character reference.
const maxEntityLength = 32

// entityLength returns the length of the character reference at the start of
// s, or 0 if s does not start with one. Numeric references need digits of
// their base; named ones must be known HTML entities, so "AT&T;" is text.
func entityLength(s string) int {
	end := strings.IndexByte(s[:min(len(s), maxEntityLength)], ';')
	if end < 2 {
		return 0
	}
	ref, name := s[:end+1], s[1:end]

	if name[0] == '#' {
		digits, isDigit := name[1:], isDecimal
		if len(digits) > 0 && (digits[0] == 'x' || digits[0] == 'X') {
			digits, isDigit = digits[1:], isHex
		}
		if digits == "" || strings.IndexFunc(digits, func(r rune) bool { return !isDigit(r) }) >= 0 {
			return 0
		}
		return len(ref)
	}

	if strings.IndexFunc(name, func(r rune) bool { return !isDecimal(r) && !isLetter(r) }) >= 0 {
		return 0
	}
	// The unescaper also expands legacy prefixes such as "&ampx;" to "&x;",
	// leaving the semicolon behind.
	u := html.UnescapeString(ref)
	if u == ref || (u != ";" && strings.HasSuffix(u, ";")) {
		return 0
	}
	return len(ref)
}

func isDecimal(r rune) bool { return r >= '0' && r <= '9' }

func isHex(r rune) bool {
	return isDecimal(r) || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

func isLetter(r rune) bool { return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') }

// wrapText wraps the non-blank core of text in sentinels. Leading and
// trailing whitespace stays outside so a backend that trims cannot lose it.
func (s *Segmenter) wrapText(text string) string {
	core := strings.TrimFunc(text, unicode.IsSpace)
	if core == "" {
		return text
	}
	lead := len(text) - len(strings.TrimLeftFunc(text, unicode.IsSpace))
	trail := lead + len(core)
	return text[:lead] + s.sentinels.Wrap(core) + text[trail:]
}
