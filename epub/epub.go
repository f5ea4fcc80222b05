// Package epub converts every content document of an EPUB into
// dual-language HTML.
package epub

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ali-185/DualLang"
)

const mimetypeName = "mimetype"

// DefaultConcurrency is the number of documents converted at once.
const DefaultConcurrency = 4

// ProgressFunc is called after each document with the number of documents
// done, the total, and the name of the document just finished.
type ProgressFunc func(done, total int, name string)

// Converter rewrites EPUB archives through a duallang.Converter.
type Converter struct {
	conv            *duallang.Converter
	concurrency     int
	progress        ProgressFunc
	continueOnError bool
	logger          *zap.Logger
}

// Option configures a Converter.
type Option func(*Converter)

// WithConcurrency sets how many documents are converted at once.
func WithConcurrency(n int) Option {
	return func(c *Converter) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

// WithProgress sets the progress callback. It is never called concurrently.
func WithProgress(fn ProgressFunc) Option {
	return func(c *Converter) {
		c.progress = fn
	}
}

// WithContinueOnError keeps a document unchanged when it fails to convert
// instead of aborting the book. Failures are listed in the Report.
func WithContinueOnError(enabled bool) Option {
	return func(c *Converter) {
		c.continueOnError = enabled
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Converter) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates an EPUB converter. conv must have an "html" processor
// registered.
func New(conv *duallang.Converter, opts ...Option) *Converter {
	c := &Converter{
		conv:        conv,
		concurrency: DefaultConcurrency,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FileError records a document that could not be converted.
type FileError struct {
	Name string
	Err  error
}

func (e FileError) Error() string {
	return fmt.Sprintf("%s: %v", e.Name, e.Err)
}

// Report summarizes a conversion.
type Report struct {
	Title            string
	Language         string
	Entries          int // Archive entries written
	Documents        int // Content documents found
	Converted        int
	Failed           []FileError
	SpanCount        int
	TranslatedCount  int
	CachedCount      int
	SkippedFragments int
	Duration         time.Duration
}

// ConvertFile converts the EPUB at inPath and writes the result to outPath.
// The output is written to a temporary file first, so a failed conversion
// never leaves a partial book behind.
func (c *Converter) ConvertFile(ctx context.Context, inPath, outPath string) (*Report, error) {
	zr, err := zip.OpenReader(inPath)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", inPath, err)
	}
	defer zr.Close()

	if dir := filepath.Dir(outPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating output directory: %w", err)
		}
	}
	tmp, err := os.CreateTemp(filepath.Dir(outPath), ".duallang-*.epub")
	if err != nil {
		return nil, fmt.Errorf("creating output: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	report, err := c.Convert(ctx, &zr.Reader, tmp)
	if cerr := tmp.Close(); err == nil && cerr != nil {
		err = cerr
	}
	if err != nil {
		return nil, err
	}

	if err := os.Rename(tmpName, outPath); err != nil {
		return nil, fmt.Errorf("writing %s: %w", outPath, err)
	}
	return report, nil
}

type document struct {
	file   *zip.File
	result *duallang.ProcessedContent
	err    error
}

// Convert reads the archive r and writes the converted archive to w. The
// mimetype entry is written first and uncompressed; every other entry keeps
// its original order.
func (c *Converter) Convert(ctx context.Context, r *zip.Reader, w io.Writer) (*Report, error) {
	start := time.Now()

	book, err := ReadBook(r)
	if err != nil {
		return nil, err
	}
	report := &Report{Title: book.Title, Language: book.Language}

	names := make(map[string]bool, len(book.Documents))
	for _, name := range book.Documents {
		names[name] = true
	}

	docs := make(map[string]*document, len(book.Documents))
	var tasks []*document
	for _, f := range r.File {
		if names[f.Name] {
			d := &document{file: f}
			docs[f.Name] = d
			tasks = append(tasks, d)
		}
	}
	report.Documents = len(tasks)

	c.logger.Info("converting epub",
		zap.String("title", book.Title),
		zap.String("language", book.Language),
		zap.Int("documents", len(tasks)),
		zap.String("source_lang", c.conv.SourceLang()),
		zap.String("target_lang", c.conv.TargetLang()),
	)

	var mu sync.Mutex
	done := 0
	err = duallang.RunParallel(ctx, tasks, c.concurrency, 0, func(ctx context.Context, d *document) error {
		d.result, d.err = c.convertDocument(ctx, d.file)

		mu.Lock()
		done++
		if c.progress != nil {
			c.progress(done, len(tasks), d.file.Name)
		}
		mu.Unlock()

		if d.err != nil {
			if c.continueOnError && ctx.Err() == nil {
				c.logger.Warn("document failed, keeping original",
					zap.String("file", d.file.Name), zap.Error(d.err))
				return nil
			}
			return FileError{Name: d.file.Name, Err: d.err}
		}
		c.logger.Debug("document converted",
			zap.String("file", d.file.Name),
			zap.Int("spans", d.result.SpanCount),
			zap.Int("translated", d.result.TranslatedCount),
			zap.Int("cached", d.result.CachedCount),
		)
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, d := range tasks {
		if d.err != nil {
			report.Failed = append(report.Failed, FileError{Name: d.file.Name, Err: d.err})
			continue
		}
		report.Converted++
		report.SpanCount += d.result.SpanCount
		report.TranslatedCount += d.result.TranslatedCount
		report.CachedCount += d.result.CachedCount
		report.SkippedFragments += d.result.SkippedFragments
	}

	n, err := writeArchive(r, w, docs)
	if err != nil {
		return nil, err
	}
	report.Entries = n
	report.Duration = time.Since(start)
	return report, nil
}

func (c *Converter) convertDocument(ctx context.Context, f *zip.File) (*duallang.ProcessedContent, error) {
	data, err := readFile(f)
	if err != nil {
		return nil, err
	}
	return c.conv.ProcessHTML(ctx, string(data))
}

// writeArchive writes the entries of r to w, replacing converted documents.
func writeArchive(r *zip.Reader, w io.Writer, docs map[string]*document) (int, error) {
	zw := zip.NewWriter(w)
	written := 0

	for _, f := range r.File {
		if f.Name != mimetypeName {
			continue
		}
		data, err := readFile(f)
		if err != nil {
			return 0, err
		}
		out, err := zw.CreateHeader(&zip.FileHeader{
			Name:     mimetypeName,
			Method:   zip.Store,
			Modified: f.Modified,
		})
		if err != nil {
			return 0, err
		}
		if _, err := out.Write(data); err != nil {
			return 0, err
		}
		written++
		break
	}

	for _, f := range r.File {
		if f.Name == mimetypeName {
			continue
		}
		d, ok := docs[f.Name]
		if !ok || d.err != nil || d.result == nil {
			if err := zw.Copy(f); err != nil {
				return 0, fmt.Errorf("copying %s: %w", f.Name, err)
			}
			written++
			continue
		}

		out, err := zw.CreateHeader(&zip.FileHeader{
			Name:     f.Name,
			Method:   zip.Deflate,
			Modified: f.Modified,
		})
		if err != nil {
			return 0, err
		}
		if _, err := io.WriteString(out, d.result.Content); err != nil {
			return 0, fmt.Errorf("writing %s: %w", f.Name, err)
		}
		written++
	}

	if err := zw.Close(); err != nil {
		return 0, err
	}
	return written, nil
}

func readFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", f.Name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", f.Name, err)
	}
	return data, nil
}
