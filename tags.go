package duallang

import (
	"strings"
	"unicode"
)

// TagKind classifies a tag by its effect on nesting.
type TagKind int

const (
	// TagOpening opens a scope, e.g. <p class="x">.
	TagOpening TagKind = iota
	// TagClosing closes the innermost scope, e.g. </p>.
	TagClosing
	// TagNeutral neither opens nor closes: comments, doctypes, <br/>, <img>.
	TagNeutral
)

func (k TagKind) String() string {
	switch k {
	case TagOpening:
		return "opening"
	case TagClosing:
		return "closing"
	case TagNeutral:
		return "neutral"
	default:
		return "unknown"
	}
}

// Tag is a single markup tag and its classification.
type Tag struct {
	Text string
	Kind TagKind
}

// ReadTag reads the tag at the start of s, which must begin with '<'.
// The tag ends at the next '>', except for comments which end at "-->".
func ReadTag(s string) (Tag, error) {
	if !strings.HasPrefix(s, "<") {
		return Tag{}, &StructuralError{Message: "tag must start with '<'"}
	}

	if strings.HasPrefix(s, "<!--") {
		end := strings.Index(s[4:], "-->")
		if end < 0 {
			return Tag{}, &StructuralError{Message: "unterminated comment"}
		}
		return Tag{Text: s[:4+end+3], Kind: TagNeutral}, nil
	}

	end := strings.IndexByte(s, '>')
	if end < 0 {
		return Tag{}, &StructuralError{Message: "tag has no closing '>'"}
	}

	text := s[:end+1]
	return Tag{Text: text, Kind: classifyTag(text)}, nil
}

func classifyTag(tag string) TagKind {
	switch {
	case strings.HasPrefix(tag, "</"):
		return TagClosing
	case strings.HasPrefix(tag, "<!"), strings.HasPrefix(tag, "<?"):
		return TagNeutral
	case strings.HasSuffix(tag, "/>"):
		return TagNeutral
	case VoidElements[TagName(tag)]:
		return TagNeutral
	}
	return TagOpening
}

// TagName returns the lower-cased element name of a tag ("p" for "</P>").
func TagName(tag string) string {
	name := strings.TrimPrefix(tag, "<")
	name = strings.TrimSuffix(name, ">")
	name = strings.TrimPrefix(name, "/")

	end := strings.IndexFunc(name, func(r rune) bool {
		return unicode.IsSpace(r) || r == '/'
	})
	if end >= 0 {
		name = name[:end]
	}
	return strings.ToLower(name)
}

// TrimTagText removes all text outside of tags, leaving only the tags.
//
//	TrimTagText(`<p class="a">Hello <b>there</b>`) == `<p class="a"><b></b>`
//
// A trailing '<' without a matching '>' is not a tag and is dropped.
func TrimTagText(markup string) string {
	var b strings.Builder
	for {
		start := strings.IndexByte(markup, '<')
		if start < 0 {
			break
		}
		tag, err := ReadTag(markup[start:])
		if err != nil {
			break
		}
		b.WriteString(tag.Text)
		markup = markup[start+len(tag.Text):]
	}
	return b.String()
}
