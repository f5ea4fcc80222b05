package epub

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"
)

const containerPath = "META-INF/container.xml"

// Book is the package metadata of an EPUB.
type Book struct {
	Title     string
	Language  string
	OPFPath   string
	Documents []string // content documents, spine order first
}

type container struct {
	XMLName   xml.Name `xml:"container"`
	Rootfiles []struct {
		FullPath  string `xml:"full-path,attr"`
		MediaType string `xml:"media-type,attr"`
	} `xml:"rootfiles>rootfile"`
}

type opfPackage struct {
	XMLName  xml.Name `xml:"package"`
	Metadata struct {
		Title    []string `xml:"title"`
		Language []string `xml:"language"`
	} `xml:"metadata"`
	Items []struct {
		ID        string `xml:"id,attr"`
		Href      string `xml:"href,attr"`
		MediaType string `xml:"media-type,attr"`
	} `xml:"manifest>item"`
	ItemRefs []struct {
		IDRef string `xml:"idref,attr"`
	} `xml:"spine>itemref"`
}

var contentMediaTypes = map[string]bool{
	"application/xhtml+xml": true,
	"text/html":             true,
}

// ReadBook reads container.xml and the package document. Books without
// them fall back to every .html, .xhtml and .htm entry in archive order.
func ReadBook(r *zip.Reader) (*Book, error) {
	files := make(map[string]*zip.File, len(r.File))
	for _, f := range r.File {
		files[f.Name] = f
	}

	book := &Book{}
	if f, ok := files[containerPath]; ok {
		var c container
		if err := decodeXML(f, &c); err != nil {
			return nil, fmt.Errorf("reading %s: %w", containerPath, err)
		}
		if len(c.Rootfiles) > 0 {
			book.OPFPath = c.Rootfiles[0].FullPath
		}
	}

	if opf, ok := files[book.OPFPath]; ok && book.OPFPath != "" {
		var pkg opfPackage
		if err := decodeXML(opf, &pkg); err != nil {
			return nil, fmt.Errorf("reading %s: %w", book.OPFPath, err)
		}
		if len(pkg.Metadata.Title) > 0 {
			book.Title = strings.TrimSpace(pkg.Metadata.Title[0])
		}
		if len(pkg.Metadata.Language) > 0 {
			book.Language = strings.TrimSpace(pkg.Metadata.Language[0])
		}
		book.Documents = manifestDocuments(&pkg, path.Dir(book.OPFPath), files)
	}

	if len(book.Documents) == 0 {
		for _, f := range r.File {
			if IsContentDocument(f.Name) {
				book.Documents = append(book.Documents, f.Name)
			}
		}
	}
	return book, nil
}

// manifestDocuments lists the HTML items of the manifest that exist in the
// archive, spine items first.
func manifestDocuments(pkg *opfPackage, dir string, files map[string]*zip.File) []string {
	hrefs := make(map[string]string, len(pkg.Items))
	var ordered []string
	for _, item := range pkg.Items {
		if !contentMediaTypes[item.MediaType] {
			continue
		}
		href := item.Href
		if u, err := url.PathUnescape(href); err == nil {
			href = u
		}
		if i := strings.IndexByte(href, '#'); i >= 0 {
			href = href[:i]
		}
		name := path.Join(dir, href)
		if _, ok := files[name]; !ok {
			continue
		}
		hrefs[item.ID] = name
		ordered = append(ordered, name)
	}

	seen := make(map[string]bool)
	var docs []string
	for _, ref := range pkg.ItemRefs {
		if name, ok := hrefs[ref.IDRef]; ok && !seen[name] {
			seen[name] = true
			docs = append(docs, name)
		}
	}
	for _, name := range ordered {
		if !seen[name] {
			seen[name] = true
			docs = append(docs, name)
		}
	}
	return docs
}

func decodeXML(f *zip.File, v interface{}) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return err
	}
	return xml.Unmarshal(data, v)
}

// IsContentDocument reports whether name has an HTML extension.
func IsContentDocument(name string) bool {
	switch strings.ToLower(path.Ext(name)) {
	case ".html", ".xhtml", ".htm":
		return true
	}
	return false
}
