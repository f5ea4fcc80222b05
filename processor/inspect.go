package processor

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/ali-185/DualLang"
)

// DocumentInfo summarizes an HTML document.
type DocumentInfo struct {
	Title      string
	Lang       string // Declared language of the <html> element
	Dir        string
	Paragraphs int
	Headings   int
	Images     int
	Words      int // Words of body text outside ignored elements
}

// Inspect parses content and reports what a conversion would work on.
func Inspect(content string) (*DocumentInfo, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return nil, &duallang.ProcessorError{
			Message:     "failed to parse HTML",
			Cause:       err,
			ContentType: "html",
		}
	}

	htmlSel := doc.Find("html").First()
	lang := htmlSel.AttrOr("lang", "")
	if lang == "" {
		lang = htmlSel.AttrOr("xml:lang", "")
	}

	body := doc.Find("body").First().Clone()
	for tag := range duallang.IgnoredTags {
		body.Find(tag).Remove()
	}

	return &DocumentInfo{
		Title:      strings.TrimSpace(doc.Find("title").First().Text()),
		Lang:       lang,
		Dir:        htmlSel.AttrOr("dir", ""),
		Paragraphs: doc.Find("body p").Length(),
		Headings:   doc.Find("body h1, body h2, body h3, body h4, body h5, body h6").Length(),
		Images:     doc.Find("body img").Length(),
		Words:      len(strings.Fields(body.Text())),
	}, nil
}
