package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ali-185/DualLang"
	"github.com/ali-185/DualLang/epub"
	"github.com/ali-185/DualLang/processor"
)

type convertFlags struct {
	concurrency     int
	continueOnError bool
	skipMalformed   bool
	fallback        bool
	context         string
	style           string
	exclude         []string
	elements        []string
	separator       string
	delimiters      string
	rpm             int
	tpm             int
	retries         int
	jsonOutput      bool
}

func (a *app) newConvertCmd() *cobra.Command {
	var f convertFlags
	cmd := &cobra.Command{
		Use:   "convert <in_lang> <out_lang> <input> <output>",
		Short: "Convert an HTML or EPUB file into a dual-language edition",
		Long: `Convert an HTML page or EPUB book. Every phrase of the source text is
followed by its translation, with the surrounding markup repeated.

The input type is chosen by extension (.epub, otherwise HTML). Use "-" as
input or output to read HTML from stdin or write it to stdout.`,
		Args: cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			a.applyConvertFlags(cmd, &f)
			return a.runConvert(cmd, f, args[0], args[1], args[2], args[3])
		},
	}

	fl := cmd.Flags()
	fl.IntVar(&f.concurrency, "concurrency", 0, "EPUB documents converted at once")
	fl.BoolVar(&f.continueOnError, "continue-on-error", false, "Keep failed EPUB documents unchanged instead of aborting")
	fl.BoolVar(&f.skipMalformed, "skip-malformed", false, "Leave paragraphs with unbalanced markup untouched")
	fl.BoolVar(&f.fallback, "fallback", false, "Keep the original text when the provider keeps failing")
	fl.StringVar(&f.context, "context", "", "Context for LLM providers (e.g. 'A 19th century novel')")
	fl.StringVar(&f.style, "style", "", "Translation style: formal, neutral, casual, literal")
	fl.StringSliceVar(&f.exclude, "exclude", nil, "Terms to never translate")
	fl.StringSliceVar(&f.elements, "elements", nil, "HTML elements to convert (default: p)")
	fl.StringVar(&f.separator, "separator", "", "Text between a phrase and its translation")
	fl.StringVar(&f.delimiters, "delimiters", "", "Characters that end a phrase")
	fl.IntVar(&f.rpm, "rpm", 0, "Provider requests per minute (0 = unlimited)")
	fl.IntVar(&f.tpm, "tpm", 0, "Spans sent to the provider per minute (0 = unlimited)")
	fl.IntVar(&f.retries, "retries", 0, "Retries for failed provider calls")
	fl.BoolVar(&f.jsonOutput, "json", false, "Print the summary as JSON")
	return cmd
}

func (a *app) applyConvertFlags(cmd *cobra.Command, f *convertFlags) {
	cfg := a.cfg
	fl := cmd.Flags()
	if fl.Changed("concurrency") {
		cfg.Concurrency = f.concurrency
	}
	if fl.Changed("skip-malformed") {
		cfg.SkipMalformed = f.skipMalformed
	}
	if fl.Changed("fallback") {
		cfg.Fallback = f.fallback
	}
	if fl.Changed("context") {
		cfg.Context = f.context
	}
	if fl.Changed("style") {
		cfg.Style = f.style
	}
	if fl.Changed("exclude") {
		cfg.Exclude = splitList(f.exclude)
	}
	if fl.Changed("elements") {
		cfg.Elements = splitList(f.elements)
	}
	if fl.Changed("separator") {
		cfg.Separator = f.separator
	}
	if fl.Changed("delimiters") {
		cfg.Delimiters = f.delimiters
	}
	if fl.Changed("rpm") {
		cfg.RequestsPerMinute = f.rpm
	}
	if fl.Changed("tpm") {
		cfg.TextsPerMinute = f.tpm
	}
	if fl.Changed("retries") {
		cfg.Retries = f.retries
	}
}

// newConverter builds a converter with the configured options, cache and
// HTML processor.
func (a *app) newConverter(sourceLang, targetLang string, gateway duallang.Gateway, tc duallang.TranslationCache) *duallang.Converter {
	var htmlOpts []processor.HTMLOption
	if len(a.cfg.Elements) > 0 {
		htmlOpts = append(htmlOpts, processor.WithElements(a.cfg.Elements...))
	}

	opts := a.cfg.ConverterOptions()
	opts = append(opts,
		duallang.WithProcessor(processor.NewHTMLProcessor(htmlOpts...)),
		duallang.WithLogger(a.logger),
	)
	if tc != nil {
		opts = append(opts, duallang.WithCache(tc))
	}
	return duallang.NewConverter(sourceLang, targetLang, gateway, opts...)
}

// Summary is the JSON form of a conversion summary.
type Summary struct {
	Input            string   `json:"input"`
	Output           string   `json:"output"`
	SourceLang       string   `json:"source_lang"`
	TargetLang       string   `json:"target_lang"`
	Documents        int      `json:"documents"`
	Failed           []string `json:"failed,omitempty"`
	SpanCount        int      `json:"span_count"`
	TranslatedCount  int      `json:"translated_count"`
	CachedCount      int      `json:"cached_count"`
	SkippedFragments int      `json:"skipped_fragments"`
	ElapsedMs        int64    `json:"elapsed_ms"`
}

func (a *app) runConvert(cmd *cobra.Command, f convertFlags, sourceLang, targetLang, input, output string) error {
	for _, lang := range []string{sourceLang, targetLang} {
		if err := duallang.ValidateLanguage(lang); err != nil {
			return err
		}
	}
	if err := a.cfg.Validate(); err != nil {
		return err
	}

	ctx := cmd.Context()
	gateway, release, err := a.newGateway(ctx)
	if err != nil {
		return err
	}
	defer release()

	tc, closeCache, err := a.openCache()
	if err != nil {
		return err
	}
	defer closeCache()

	conv := a.newConverter(sourceLang, targetLang, gateway, tc)
	if conv.IsSourceLang() {
		a.logger.Warn("source and target language are the same, copying input",
			zap.String("lang", sourceLang))
	}

	summary := &Summary{
		Input:      input,
		Output:     output,
		SourceLang: sourceLang,
		TargetLang: targetLang,
	}
	start := time.Now()

	if strings.EqualFold(filepath.Ext(input), ".epub") {
		err = a.convertEPUB(cmd, conv, f, input, output, summary)
	} else {
		err = a.convertHTML(cmd, conv, input, output, summary)
	}
	if err != nil {
		return err
	}
	summary.ElapsedMs = time.Since(start).Milliseconds()

	if f.jsonOutput {
		enc := json.NewEncoder(a.stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	}

	if !a.quiet {
		fmt.Fprintf(a.stderr, "\nDone in %v\n", (time.Duration(summary.ElapsedMs) * time.Millisecond).Round(time.Millisecond))
		fmt.Fprintf(a.stderr, "  Documents:    %d\n", summary.Documents)
		fmt.Fprintf(a.stderr, "  Spans:        %d\n", summary.SpanCount)
		fmt.Fprintf(a.stderr, "  Translated:   %d\n", summary.TranslatedCount)
		fmt.Fprintf(a.stderr, "  From cache:   %d\n", summary.CachedCount)
		if summary.SkippedFragments > 0 {
			fmt.Fprintf(a.stderr, "  Skipped:      %d\n", summary.SkippedFragments)
		}
		for _, name := range summary.Failed {
			fmt.Fprintf(a.stderr, "  Failed:       %s\n", name)
		}
	}
	return nil
}

func (a *app) convertEPUB(cmd *cobra.Command, conv *duallang.Converter, f convertFlags, input, output string, summary *Summary) error {
	opts := []epub.Option{
		epub.WithConcurrency(a.cfg.Concurrency),
		epub.WithContinueOnError(f.continueOnError),
		epub.WithLogger(a.logger),
	}
	if !a.quiet && !f.jsonOutput {
		opts = append(opts, epub.WithProgress(func(done, total int, name string) {
			fmt.Fprintf(a.stderr, "[%d/%d] %s\n", done, total, name)
		}))
	}

	report, err := epub.New(conv, opts...).ConvertFile(cmd.Context(), input, output)
	if err != nil {
		return fmt.Errorf("converting %s: %w", input, err)
	}

	summary.Documents = report.Converted
	summary.SpanCount = report.SpanCount
	summary.TranslatedCount = report.TranslatedCount
	summary.CachedCount = report.CachedCount
	summary.SkippedFragments = report.SkippedFragments
	for _, fe := range report.Failed {
		summary.Failed = append(summary.Failed, fe.Name)
	}
	return nil
}

func (a *app) convertHTML(cmd *cobra.Command, conv *duallang.Converter, input, output string, summary *Summary) error {
	data, err := readInput(cmd, input)
	if err != nil {
		return err
	}

	result, err := conv.ProcessHTML(cmd.Context(), string(data))
	if err != nil {
		return fmt.Errorf("converting %s: %w", input, err)
	}

	if output == "-" {
		if _, err := io.WriteString(a.stdout, result.Content); err != nil {
			return err
		}
	} else {
		if dir := filepath.Dir(output); dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("creating output directory: %w", err)
			}
		}
		if err := os.WriteFile(output, []byte(result.Content), 0o644); err != nil { // #nosec G306 - output is a user document
			return fmt.Errorf("writing output file: %w", err)
		}
	}

	summary.Documents = 1
	summary.SpanCount = result.SpanCount
	summary.TranslatedCount = result.TranslatedCount
	summary.CachedCount = result.CachedCount
	summary.SkippedFragments = result.SkippedFragments
	return nil
}

// readInput reads a user-specified file, or stdin for "-".
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path) // #nosec G304 - CLI tool reads user-specified files
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}
	return data, nil
}
