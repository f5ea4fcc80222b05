// Command duallang turns HTML pages and EPUB books into dual-language
// editions, following every phrase with its translation.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ali-185/DualLang"
	"github.com/ali-185/DualLang/cache"
	"github.com/ali-185/DualLang/config"
	"github.com/ali-185/DualLang/provider"
)

// Build-time variables (can be overridden with ldflags)
var (
	version   = duallang.Version
	commit    = duallang.GitCommit
	buildDate = duallang.BuildDate
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// app holds the global flags and the state shared by subcommands.
type app struct {
	stdout, stderr io.Writer

	configDir string
	verbose   bool
	quiet     bool

	provider  string
	model     string
	apiKey    string
	baseURL   string
	cacheType string
	cacheURL  string
	cachePath string
	cacheTTL  int

	cfg    *config.Config
	logger *zap.Logger
}

func run(args []string, stdout, stderr io.Writer) error {
	a := &app{stdout: stdout, stderr: stderr, logger: zap.NewNop()}
	root := a.newRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	defer func() { _ = a.logger.Sync() }()

	return root.Execute()
}

func (a *app) newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           duallang.Name,
		Short:         duallang.Description,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			return a.setup(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configDir, "config-dir", ".", "Directory holding "+config.FileName+" and .env")
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "Log debug output")
	pf.BoolVarP(&a.quiet, "quiet", "q", false, "Only log warnings and errors")
	pf.StringVar(&a.provider, "provider", "", "Translation backend: google, openai, gemini, mock, upper")
	pf.StringVar(&a.model, "model", "", "Model for LLM providers")
	pf.StringVar(&a.apiKey, "api-key", "", "API key (default: OPENAI_API_KEY or GEMINI_API_KEY)")
	pf.StringVar(&a.baseURL, "base-url", "", "Endpoint override for the provider")
	pf.StringVar(&a.cacheType, "cache", "", "Span cache: memory, sqlite, redis, none")
	pf.StringVar(&a.cacheURL, "cache-url", "", "Redis URL for --cache redis")
	pf.StringVar(&a.cachePath, "cache-path", "", "Database file for --cache sqlite")
	pf.IntVar(&a.cacheTTL, "cache-ttl", 0, "Cache TTL in seconds (0 = never expire)")

	root.AddCommand(
		a.newConvertCmd(),
		a.newInspectCmd(),
		a.newDiffCmd(),
		a.newCacheCmd(),
		a.newVersionCmd(),
	)
	return root
}

// setup loads the configuration, applies flag overrides and builds the
// logger.
func (a *app) setup(cmd *cobra.Command) error {
	a.logger = newLogger(a.stderr, a.verbose, a.quiet)

	cfg, err := config.Load(a.configDir)
	if err != nil {
		return err
	}

	f := cmd.Flags()
	if f.Changed("provider") {
		cfg.SetProvider(a.provider)
	}
	if f.Changed("model") {
		cfg.Model = a.model
	}
	if f.Changed("api-key") {
		cfg.APIKey = a.apiKey
	}
	if f.Changed("base-url") {
		cfg.BaseURL = a.baseURL
	}
	if f.Changed("cache") {
		cfg.Cache.Type = a.cacheType
	}
	if f.Changed("cache-url") {
		cfg.Cache.URL = a.cacheURL
	}
	if f.Changed("cache-path") {
		cfg.Cache.Path = a.cachePath
	}
	if f.Changed("cache-ttl") {
		cfg.Cache.TTL = a.cacheTTL
	}

	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg
	return nil
}

// newLogger writes human-readable log lines to w.
func newLogger(w io.Writer, verbose, quiet bool) *zap.Logger {
	level := zapcore.InfoLevel
	switch {
	case verbose:
		level = zapcore.DebugLevel
	case quiet:
		level = zapcore.WarnLevel
	}

	enc := zap.NewDevelopmentEncoderConfig()
	enc.TimeKey = ""
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(enc), zapcore.AddSync(w), level)
	return zap.New(core)
}

// openCache opens the configured span cache. The returned function
// releases it.
func (a *app) openCache() (duallang.TranslationCache, func(), error) {
	c := a.cfg.Cache
	noop := func() {}

	switch c.Type {
	case config.CacheNone:
		return nil, noop, nil
	case config.CacheRedis:
		rc, err := cache.NewRedisCache(cache.RedisConfig{
			URL:       c.URL,
			TTL:       c.TTL,
			KeyPrefix: c.KeyPrefix,
			Logger:    a.logger,
		})
		if err != nil {
			return nil, noop, fmt.Errorf("connecting to redis: %w", err)
		}
		return rc, func() { _ = rc.Close() }, nil
	case config.CacheSQLite:
		sc, err := cache.OpenSQLiteCache(c.Path, c.TTL)
		if err != nil {
			return nil, noop, fmt.Errorf("opening cache database: %w", err)
		}
		if c.TTL > 0 {
			if n, err := sc.Prune(); err == nil && n > 0 {
				a.logger.Debug("pruned expired cache entries", zap.Int64("entries", n))
			}
		}
		return sc, func() { _ = sc.Close() }, nil
	default:
		if c.MaxEntries > 0 {
			return cache.NewBoundedInMemoryCache(c.TTL, c.MaxEntries), noop, nil
		}
		return cache.NewInMemoryCache(c.TTL), noop, nil
	}
}

// newGateway builds the configured provider wrapped with rate limiting,
// retries and, if enabled, fallback to the original text.
func (a *app) newGateway(ctx context.Context) (duallang.Gateway, func(), error) {
	cfg := a.cfg
	pc := cfg.ProviderConfig()
	release := func() {}

	var gateway duallang.Gateway
	switch pc.Name {
	case provider.NameGemini:
		if pc.APIKey == "" {
			return nil, release, fmt.Errorf("gemini: API key required (--api-key or GEMINI_API_KEY env)")
		}
		gp, err := provider.NewGeminiProvider(ctx, provider.GeminiConfig{
			APIKey:      pc.APIKey,
			Model:       pc.Model,
			Temperature: pc.Temperature,
		})
		if err != nil {
			return nil, release, err
		}
		gateway = gp
		release = func() { _ = gp.Close() }
	case provider.NameOpenAI:
		if pc.APIKey == "" {
			return nil, release, fmt.Errorf("openai: API key required (--api-key or OPENAI_API_KEY env)")
		}
		fallthrough
	default:
		g, err := provider.New(pc)
		if err != nil {
			return nil, release, err
		}
		gateway = g
	}

	if cfg.RequestsPerMinute > 0 || cfg.TextsPerMinute > 0 {
		gateway = duallang.NewRateLimitedGateway(gateway, duallang.RateLimitConfig{
			RequestsPerMinute: cfg.RequestsPerMinute,
			TextsPerMinute:    cfg.TextsPerMinute,
		})
	}
	if cfg.Retries > 0 {
		rc := duallang.DefaultRetryConfig()
		rc.MaxRetries = cfg.Retries
		gateway = duallang.NewRetryableGateway(gateway, rc, a.logger)
	}
	if cfg.Fallback {
		gateway = duallang.NewFallbackGateway(gateway, a.logger)
	}
	return gateway, release, nil
}

func (a *app) newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(a.stdout, "%s %s\n", duallang.Name, version)
			if commit != "unknown" && commit != "" {
				fmt.Fprintf(a.stdout, "  commit:  %s\n", commit)
			}
			if buildDate != "unknown" && buildDate != "" {
				fmt.Fprintf(a.stdout, "  built:   %s\n", buildDate)
			}
		},
	}
}

// truncate shortens s to n runes for listings.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
