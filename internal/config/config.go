package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Search  SearchConfig  `yaml:"search" mapstructure:"search"`
	Scrape  ScrapeConfig  `yaml:"scrape" mapstructure:"scrape"`
	Context ContextConfig `yaml:"context" mapstructure:"context"`
	LLM     LLMConfig     `yaml:"llm" mapstructure:"llm"`
	Answer  AnswerConfig  `yaml:"answer" mapstructure:"answer"`
	Cache   CacheConfig   `yaml:"cache" mapstructure:"cache"`
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// SearchConfig holds Custom Search Engine credentials and limits.
type SearchConfig struct {
	Key            string   `yaml:"key" mapstructure:"key"`
	EngineID       string   `yaml:"engine_id" mapstructure:"engine_id"`
	MaxResults     int      `yaml:"max_results" mapstructure:"max_results"`
	TimeoutSecs    int      `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxRetries     int      `yaml:"max_retries" mapstructure:"max_retries"`
	Language       string   `yaml:"language" mapstructure:"language"`
	AllowedDomains []string `yaml:"allowed_domains" mapstructure:"allowed_domains"`
}

// PrimaryDomain is the domain sent as the siteSearch restriction.
func (s SearchConfig) PrimaryDomain() string {
	if len(s.AllowedDomains) == 0 {
		return ""
	}
	return s.AllowedDomains[0]
}

// ScrapeConfig controls page fetching and cleaning.
type ScrapeConfig struct {
	TimeoutSecs    int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxPageChars   int     `yaml:"max_page_chars" mapstructure:"max_page_chars"`
	MinContentLen  int     `yaml:"min_content_len" mapstructure:"min_content_len"`
	MaxConcurrent  int     `yaml:"max_concurrent" mapstructure:"max_concurrent"`
	RequestsPerSec float64 `yaml:"requests_per_sec" mapstructure:"requests_per_sec"`
	UserAgent      string  `yaml:"user_agent" mapstructure:"user_agent"`
}

// ContextConfig bounds the assembled reference text.
type ContextConfig struct {
	Budget         int `yaml:"budget" mapstructure:"budget"`
	PerDocumentCap int `yaml:"per_document_cap" mapstructure:"per_document_cap"`
}

// LLMConfig holds answer-generation settings.
type LLMConfig struct {
	Provider    string  `yaml:"provider" mapstructure:"provider"` // openrouter or anthropic
	Key         string  `yaml:"key" mapstructure:"key"`
	BaseURL     string  `yaml:"base_url" mapstructure:"base_url"`
	Model       string  `yaml:"model" mapstructure:"model"`
	Temperature float64 `yaml:"temperature" mapstructure:"temperature"`
	MaxTokens   int     `yaml:"max_tokens" mapstructure:"max_tokens"`
	MaxRetries  int     `yaml:"max_retries" mapstructure:"max_retries"`
	TimeoutSecs int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// AnswerConfig holds composition settings.
type AnswerConfig struct {
	// Institution is the school name the assistant speaks for.
	Institution string `yaml:"institution" mapstructure:"institution"`
	// HedgePhrases mark an answer as low-confidence when any of them
	// appears in it (case-insensitive substring match).
	HedgePhrases []string `yaml:"hedge_phrases" mapstructure:"hedge_phrases"`
}

// CacheConfig configures the answer cache store.
type CacheConfig struct {
	Enabled  bool   `yaml:"enabled" mapstructure:"enabled"`
	Path     string `yaml:"path" mapstructure:"path"`
	TTLHours int    `yaml:"ttl_hours" mapstructure:"ttl_hours"`
}

// ServerConfig configures the chat HTTP server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from an optional config.yaml and the
// environment (CAMPUS_ prefix).
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("CAMPUS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("search.max_results", 6)
	v.SetDefault("search.timeout_secs", 15)
	v.SetDefault("search.max_retries", 2)
	v.SetDefault("search.language", "lang_en")
	v.SetDefault("search.allowed_domains", []string{"rajagiritech.ac.in"})
	v.SetDefault("scrape.timeout_secs", 15)
	v.SetDefault("scrape.max_page_chars", 8000)
	v.SetDefault("scrape.min_content_len", 100)
	v.SetDefault("scrape.max_concurrent", 4)
	v.SetDefault("scrape.requests_per_sec", 2.0)
	v.SetDefault("scrape.user_agent", "Mozilla/5.0 (compatible; CampusAssistBot/1.0)")
	v.SetDefault("context.budget", 8000)
	v.SetDefault("context.per_document_cap", 2500)
	v.SetDefault("llm.provider", "openrouter")
	v.SetDefault("llm.base_url", "https://openrouter.ai/api/v1")
	v.SetDefault("llm.model", "meta-llama/llama-3-70b-instruct")
	v.SetDefault("llm.temperature", 0.2)
	v.SetDefault("llm.max_tokens", 512)
	v.SetDefault("llm.max_retries", 2)
	v.SetDefault("llm.timeout_secs", 60)
	v.SetDefault("answer.institution", "Rajagiri School of Engineering and Technology, Kochi")
	v.SetDefault("answer.hedge_phrases", DefaultHedgePhrases())
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.path", "campus-assist.db")
	v.SetDefault("cache.ttl_hours", 1)
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// DefaultHedgePhrases is the stock low-confidence vocabulary.
func DefaultHedgePhrases() []string {
	return []string{
		"couldn't find",
		"could not find",
		"don't know",
		"not specified",
		"no information",
		"not mentioned",
	}
}

// Validate fails fast on missing credentials so a misconfigured process
// never reaches per-request handling.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Search.Key) == "" {
		return eris.New("config: search.key is required")
	}
	if strings.TrimSpace(c.Search.EngineID) == "" {
		return eris.New("config: search.engine_id is required")
	}
	if len(c.Search.AllowedDomains) == 0 {
		return eris.New("config: search.allowed_domains must not be empty")
	}
	if strings.TrimSpace(c.LLM.Key) == "" {
		return eris.New("config: llm.key is required")
	}
	switch c.LLM.Provider {
	case "openrouter", "anthropic":
	default:
		return eris.Errorf("config: unsupported llm.provider %q", c.LLM.Provider)
	}
	return nil
}

// SearchTimeout returns the search timeout as a duration.
func (c *Config) SearchTimeout() time.Duration {
	return time.Duration(c.Search.TimeoutSecs) * time.Second
}

// ScrapeTimeout returns the fetch timeout as a duration.
func (c *Config) ScrapeTimeout() time.Duration {
	return time.Duration(c.Scrape.TimeoutSecs) * time.Second
}

// CacheTTL returns the answer cache TTL as a duration.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLHours) * time.Hour
}

// InitLogger installs the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
