package main

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ali-185/DualLang"
	"github.com/ali-185/DualLang/epub"
	"github.com/ali-185/DualLang/processor"
)

// DocumentReport is the JSON form of an inspected document.
type DocumentReport struct {
	Name       string   `json:"name"`
	Title      string   `json:"title,omitempty"`
	Lang       string   `json:"lang,omitempty"`
	Paragraphs int      `json:"paragraphs"`
	Words      int      `json:"words"`
	SpanCount  int      `json:"span_count"`
	Spans      []string `json:"spans,omitempty"`
	Error      string   `json:"error,omitempty"`
}

// InspectReport is the JSON output of the inspect command.
type InspectReport struct {
	File      string           `json:"file"`
	Title     string           `json:"title,omitempty"`
	Lang      string           `json:"lang,omitempty"`
	SpanCount int              `json:"span_count"`
	Documents []DocumentReport `json:"documents"`
}

func (a *app) newInspectCmd() *cobra.Command {
	var jsonOutput bool
	var showSpans bool
	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "List the phrases a conversion would translate, without calling a provider",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := a.inspect(cmd, args[0], showSpans || jsonOutput)
			if err != nil {
				return err
			}
			if jsonOutput {
				enc := json.NewEncoder(a.stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}
			a.printInspect(report, showSpans)
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().BoolVar(&showSpans, "spans", true, "List every phrase")
	return cmd
}

// segmenter returns a converter used only to segment documents.
func (a *app) segmenter() *duallang.Converter {
	return a.newConverter(a.cfg.SourceLang, a.cfg.SourceLang, nil, nil)
}

func (a *app) inspect(cmd *cobra.Command, path string, withSpans bool) (*InspectReport, error) {
	conv := a.segmenter()
	report := &InspectReport{File: filepath.Base(path)}

	if !strings.EqualFold(filepath.Ext(path), ".epub") {
		data, err := readInput(cmd, path)
		if err != nil {
			return nil, err
		}
		doc, err := inspectDocument(conv, report.File, string(data), withSpans)
		if err != nil {
			return nil, err
		}
		report.Title = doc.Title
		report.Lang = doc.Lang
		report.SpanCount = doc.SpanCount
		report.Documents = []DocumentReport{*doc}
		return report, nil
	}

	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer zr.Close()

	book, err := epub.ReadBook(&zr.Reader)
	if err != nil {
		return nil, err
	}
	report.Title = book.Title
	report.Lang = book.Language

	files := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		files[f.Name] = f
	}
	for _, name := range book.Documents {
		data, err := readZipFile(files[name])
		if err != nil {
			return nil, err
		}
		doc, err := inspectDocument(conv, name, string(data), withSpans)
		if err != nil {
			// Reported per document, the rest of the book is still listed.
			doc = &DocumentReport{Name: name, Error: err.Error()}
		}
		report.SpanCount += doc.SpanCount
		report.Documents = append(report.Documents, *doc)
	}
	return report, nil
}

func inspectDocument(conv *duallang.Converter, name, content string, withSpans bool) (*DocumentReport, error) {
	info, err := processor.Inspect(content)
	if err != nil {
		return nil, err
	}
	spans, err := conv.Spans(content, "html")
	if err != nil {
		return nil, err
	}

	doc := &DocumentReport{
		Name:       name,
		Title:      info.Title,
		Lang:       info.Lang,
		Paragraphs: info.Paragraphs,
		Words:      info.Words,
		SpanCount:  len(spans),
	}
	if withSpans {
		for _, s := range spans {
			doc.Spans = append(doc.Spans, s.Text)
		}
	}
	return doc, nil
}

func readZipFile(f *zip.File) ([]byte, error) {
	if f == nil {
		return nil, fmt.Errorf("missing archive entry")
	}
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", f.Name, err)
	}
	return data, nil
}

func (a *app) printInspect(r *InspectReport, showSpans bool) {
	fmt.Fprintf(a.stdout, "File:      %s\n", r.File)
	if r.Title != "" {
		fmt.Fprintf(a.stdout, "Title:     %s\n", r.Title)
	}
	if r.Lang != "" {
		fmt.Fprintf(a.stdout, "Language:  %s\n", r.Lang)
	}
	fmt.Fprintf(a.stdout, "Documents: %d\n", len(r.Documents))
	fmt.Fprintf(a.stdout, "Spans:     %d\n", r.SpanCount)

	for _, d := range r.Documents {
		fmt.Fprintf(a.stdout, "\n%s: %d paragraphs, %d words, %d spans\n", d.Name, d.Paragraphs, d.Words, d.SpanCount)
		if d.Error != "" {
			fmt.Fprintf(a.stdout, "  error: %s\n", d.Error)
			continue
		}
		if !showSpans {
			continue
		}
		for i, text := range d.Spans {
			fmt.Fprintf(a.stdout, "%3d. %q\n", i+1, truncate(text, 60))
		}
	}
}

func (a *app) newDiffCmd() *cobra.Command {
	var jsonOutput bool
	cmd := &cobra.Command{
		Use:   "diff <old> <new>",
		Short: "Show which phrases changed between two versions of an HTML document",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runDiff(cmd, args[0], args[1], jsonOutput)
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func (a *app) runDiff(cmd *cobra.Command, oldPath, newPath string, jsonOut bool) error {
	conv := a.segmenter()

	spansOf := func(path string) ([]duallang.Span, error) {
		data, err := readInput(cmd, path)
		if err != nil {
			return nil, err
		}
		spans, err := conv.Spans(string(data), "html")
		if err != nil {
			return nil, fmt.Errorf("segmenting %s: %w", path, err)
		}
		return spans, nil
	}

	oldSpans, err := spansOf(oldPath)
	if err != nil {
		return err
	}
	newSpans, err := spansOf(newPath)
	if err != nil {
		return err
	}

	diff := duallang.DiffSpansWithPosition(oldSpans, newSpans)
	stats := diff.Stats()

	if jsonOut {
		type modified struct {
			Old string `json:"old"`
			New string `json:"new"`
		}
		type diffOutput struct {
			OldFile string `json:"old_file"`
			NewFile string `json:"new_file"`
			Stats   struct {
				Added     int `json:"added"`
				Removed   int `json:"removed"`
				Modified  int `json:"modified"`
				Unchanged int `json:"unchanged"`
			} `json:"stats"`
			NeedsTranslation []string   `json:"needs_translation"`
			Added            []string   `json:"added,omitempty"`
			Removed          []string   `json:"removed,omitempty"`
			Modified         []modified `json:"modified,omitempty"`
		}

		out := diffOutput{
			OldFile: filepath.Base(oldPath),
			NewFile: filepath.Base(newPath),
		}
		out.Stats.Added = stats.Added
		out.Stats.Removed = stats.Removed
		out.Stats.Modified = stats.Modified
		out.Stats.Unchanged = stats.Unchanged
		out.NeedsTranslation = []string{}

		for _, s := range diff.NeedsTranslation() {
			out.NeedsTranslation = append(out.NeedsTranslation, s.Text)
		}
		for _, s := range diff.Added {
			out.Added = append(out.Added, s.Text)
		}
		for _, s := range diff.Removed {
			out.Removed = append(out.Removed, s.Text)
		}
		for _, m := range diff.Modified {
			out.Modified = append(out.Modified, modified{Old: m.Old.Text, New: m.New.Text})
		}

		enc := json.NewEncoder(a.stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	fmt.Fprintf(a.stdout, "Diff: %s vs %s\n\n", filepath.Base(oldPath), filepath.Base(newPath))
	fmt.Fprintf(a.stdout, "Summary:\n")
	fmt.Fprintf(a.stdout, "  Unchanged: %d\n", stats.Unchanged)
	fmt.Fprintf(a.stdout, "  Added:     %d\n", stats.Added)
	fmt.Fprintf(a.stdout, "  Removed:   %d\n", stats.Removed)
	fmt.Fprintf(a.stdout, "  Modified:  %d\n", stats.Modified)
	fmt.Fprintf(a.stdout, "\n")

	if !diff.HasChanges() {
		fmt.Fprintf(a.stdout, "No changes detected. All translations are up to date.\n")
		return nil
	}

	fmt.Fprintf(a.stdout, "Needs translation: %d phrases\n\n", len(diff.NeedsTranslation()))

	if len(diff.Added) > 0 {
		fmt.Fprintf(a.stdout, "Added:\n")
		for _, s := range diff.Added {
			fmt.Fprintf(a.stdout, "  + %q\n", truncate(s.Text, 50))
		}
		fmt.Fprintf(a.stdout, "\n")
	}
	if len(diff.Modified) > 0 {
		fmt.Fprintf(a.stdout, "Modified:\n")
		for _, m := range diff.Modified {
			fmt.Fprintf(a.stdout, "  ~ %q -> %q\n", truncate(m.Old.Text, 30), truncate(m.New.Text, 30))
		}
		fmt.Fprintf(a.stdout, "\n")
	}
	if len(diff.Removed) > 0 {
		fmt.Fprintf(a.stdout, "Removed:\n")
		for _, s := range diff.Removed {
			fmt.Fprintf(a.stdout, "  - %q\n", truncate(s.Text, 50))
		}
		fmt.Fprintf(a.stdout, "\n")
	}
	return nil
}
