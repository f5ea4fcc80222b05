// Package config loads duallang settings from .duallang.yaml, a .env file
// and the environment.
//
// Precedence, lowest first: built-in defaults, .duallang.yaml, environment
// (a variable already set in the process wins over the same key in .env).
// Command-line flags are applied on top by the caller.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/ali-185/DualLang"
	"github.com/ali-185/DualLang/provider"
)

// FileName is the configuration file looked up in the working directory.
const FileName = ".duallang.yaml"

// EnvFileName is the dotenv file looked up next to it.
const EnvFileName = ".env"

// Cache backends.
const (
	CacheNone   = "none"
	CacheMemory = "memory"
	CacheRedis  = "redis"
	CacheSQLite = "sqlite"
)

// Config is the top-level .duallang.yaml structure.
type Config struct {
	SourceLang string `yaml:"source_lang,omitempty"`
	TargetLang string `yaml:"target_lang,omitempty"`

	Provider    string  `yaml:"provider,omitempty"`
	Model       string  `yaml:"model,omitempty"`
	BaseURL     string  `yaml:"base_url,omitempty"`
	Temperature float32 `yaml:"temperature,omitempty"`
	APIKey      string  `yaml:"-"` // environment only

	// Prompt hints for LLM providers.
	Context  string            `yaml:"context,omitempty"`
	Style    string            `yaml:"style,omitempty"`
	Glossary map[string]string `yaml:"glossary,omitempty"`
	Exclude  []string          `yaml:"exclude,omitempty"`

	// Segmentation.
	Delimiters    string   `yaml:"delimiters,omitempty"`
	Separator     string   `yaml:"separator,omitempty"`
	Elements      []string `yaml:"elements,omitempty"`
	SkipMalformed bool     `yaml:"skip_malformed,omitempty"`

	// Gateway behaviour.
	Retries           int  `yaml:"retries,omitempty"`
	RequestsPerMinute int  `yaml:"requests_per_minute,omitempty"`
	TextsPerMinute    int  `yaml:"texts_per_minute,omitempty"`
	Fallback          bool `yaml:"fallback,omitempty"`
	Concurrency       int  `yaml:"concurrency,omitempty"`

	Cache CacheConfig `yaml:"cache,omitempty"`

	env map[string]string // .env values
}

// CacheConfig selects and configures the span cache.
type CacheConfig struct {
	Type       string `yaml:"type,omitempty"`
	TTL        int    `yaml:"ttl,omitempty"` // seconds, 0 = never expire
	MaxEntries int    `yaml:"max_entries,omitempty"`
	URL        string `yaml:"url,omitempty"`  // redis
	Path       string `yaml:"path,omitempty"` // sqlite
	KeyPrefix  string `yaml:"key_prefix,omitempty"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		SourceLang:  "en",
		Provider:    provider.NameGoogle,
		Style:       string(duallang.StyleNeutral),
		Separator:   duallang.DefaultSeparator,
		Retries:     duallang.DefaultRetryConfig().MaxRetries,
		Concurrency: 4,
		Cache: CacheConfig{
			Type: CacheMemory,
			TTL:  3600,
		},
	}
}

// Load reads the settings for dir. Missing files are not an error.
func Load(dir string) (*Config, error) {
	cfg := Default()

	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	case !errors.Is(err, os.ErrNotExist):
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	env, err := readEnvFile(filepath.Join(dir, EnvFileName))
	if err != nil {
		return nil, err
	}
	if err := cfg.applyEnv(env); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func readEnvFile(path string) (map[string]string, error) {
	env, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return env, nil
}

// lookup returns the process environment value of key, falling back to the
// dotenv values.
func lookup(env map[string]string, key string) (string, bool) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v, true
	}
	v, ok := env[key]
	return v, ok && v != ""
}

func (c *Config) applyEnv(env map[string]string) error {
	strs := map[string]*string{
		"DUALLANG_SOURCE_LANG": &c.SourceLang,
		"DUALLANG_TARGET_LANG": &c.TargetLang,
		"DUALLANG_PROVIDER":    &c.Provider,
		"DUALLANG_MODEL":       &c.Model,
		"DUALLANG_BASE_URL":    &c.BaseURL,
		"DUALLANG_CONTEXT":     &c.Context,
		"DUALLANG_STYLE":       &c.Style,
		"DUALLANG_CACHE":       &c.Cache.Type,
		"DUALLANG_CACHE_URL":   &c.Cache.URL,
		"DUALLANG_CACHE_PATH":  &c.Cache.Path,
	}
	for key, dst := range strs {
		if v, ok := lookup(env, key); ok {
			*dst = v
		}
	}

	ints := map[string]*int{
		"DUALLANG_CACHE_TTL":   &c.Cache.TTL,
		"DUALLANG_RETRIES":     &c.Retries,
		"DUALLANG_RPM":         &c.RequestsPerMinute,
		"DUALLANG_TPM":         &c.TextsPerMinute,
		"DUALLANG_CONCURRENCY": &c.Concurrency,
	}
	for key, dst := range ints {
		v, ok := lookup(env, key)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %q is not a number", key, v)
		}
		*dst = n
	}

	if v, ok := lookup(env, "REDIS_URL"); ok && c.Cache.URL == "" {
		c.Cache.URL = v
	}

	c.env = env
	c.APIKey = c.apiKeyFrom(env)
	return nil
}

// SetProvider switches the provider and resolves its API key again.
func (c *Config) SetProvider(name string) {
	c.Provider = name
	c.APIKey = c.apiKeyFrom(c.env)
}

// apiKeyFrom resolves the key for the selected provider. DUALLANG_API_KEY
// applies to every provider.
func (c *Config) apiKeyFrom(env map[string]string) string {
	if v, ok := lookup(env, "DUALLANG_API_KEY"); ok {
		return v
	}
	switch strings.ToLower(c.Provider) {
	case provider.NameOpenAI:
		v, _ := lookup(env, "OPENAI_API_KEY")
		return v
	case provider.NameGemini:
		if v, ok := lookup(env, "GEMINI_API_KEY"); ok {
			return v
		}
		v, _ := lookup(env, "GOOGLE_API_KEY")
		return v
	}
	return ""
}

// Validate checks enumerated values and numeric ranges.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Provider) {
	case provider.NameOpenAI, provider.NameGemini, provider.NameGoogle, provider.NameMock, provider.NameUpper:
	default:
		return fmt.Errorf("unknown provider %q", c.Provider)
	}

	switch duallang.TranslationStyle(c.Style) {
	case "", duallang.StyleFormal, duallang.StyleNeutral, duallang.StyleCasual, duallang.StyleLiteral:
	default:
		return fmt.Errorf("unknown style %q", c.Style)
	}

	switch c.Cache.Type {
	case "", CacheNone, CacheMemory:
	case CacheRedis:
		if c.Cache.URL == "" {
			return fmt.Errorf("redis cache needs cache.url")
		}
	case CacheSQLite:
		if c.Cache.Path == "" {
			return fmt.Errorf("sqlite cache needs cache.path")
		}
	default:
		return fmt.Errorf("unknown cache type %q", c.Cache.Type)
	}

	if c.Cache.TTL < 0 || c.Retries < 0 || c.RequestsPerMinute < 0 || c.TextsPerMinute < 0 || c.Concurrency < 0 {
		return fmt.Errorf("negative values are not allowed")
	}
	if c.SourceLang != "" {
		if err := duallang.ValidateLanguage(c.SourceLang); err != nil {
			return err
		}
	}
	if c.TargetLang != "" {
		if err := duallang.ValidateLanguage(c.TargetLang); err != nil {
			return err
		}
	}
	return nil
}

// ProviderConfig returns the gateway settings.
func (c *Config) ProviderConfig() provider.Config {
	return provider.Config{
		Name:        strings.ToLower(c.Provider),
		APIKey:      c.APIKey,
		Model:       c.Model,
		BaseURL:     c.BaseURL,
		Temperature: c.Temperature,
	}
}

// ConverterOptions returns the converter options the settings imply. Cache,
// logger and processors are added by the caller.
func (c *Config) ConverterOptions() []duallang.ConverterOption {
	var opts []duallang.ConverterOption
	if c.Delimiters != "" {
		opts = append(opts, duallang.WithDelimiters([]rune(c.Delimiters)))
	}
	if c.Separator != "" {
		opts = append(opts, duallang.WithSeparator(c.Separator))
	}
	if c.Context != "" {
		opts = append(opts, duallang.WithContext(c.Context))
	}
	if c.Style != "" {
		opts = append(opts, duallang.WithStyle(duallang.TranslationStyle(c.Style)))
	}
	if len(c.Glossary) > 0 {
		opts = append(opts, duallang.WithGlossary(c.Glossary))
	}
	if len(c.Exclude) > 0 {
		opts = append(opts, duallang.WithExcludedTerms(c.Exclude))
	}
	if c.SkipMalformed {
		opts = append(opts, duallang.WithSkipMalformed(true))
	}
	return opts
}
