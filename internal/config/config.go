package config

import (
	_ "embed"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed prices.yaml
var pricesYAML []byte

// Provider names accepted by LLM_PROVIDER.
const (
	ProviderGroq   = "groq"
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
	ProviderOllama = "ollama"
)

const (
	defaultGroqURL      = "https://api.groq.com/openai/v1/chat/completions"
	defaultGroqModel    = "meta-llama/llama-4-scout-17b-16e-instruct"
	defaultOpenAIModel  = "gpt-4.1-mini"
	defaultGeminiModel  = "gemini-2.5-flash"
	defaultOllamaURL    = "http://localhost:11434"
	defaultOllamaModel  = "llama3.2-vision:11b"
	defaultSecretKey    = "default_secret"
	defaultCacheTTLSecs = 3600
)

type Config struct {
	Provider  string // groq, openai, gemini or ollama
	Groq      GroqConfig
	OpenAI    OpenAIConfig
	Gemini    GeminiConfig
	Ollama    OllamaConfig
	Face      FaceConfig
	Web       WebConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Log       LogConfig
	Prices    PricesConfig
	SecretKey string // signs the visitor session cookie
}

// GroqConfig describes an OpenAI-compatible chat completions endpoint. The URL is the
// full endpoint, not a base URL.
type GroqConfig struct {
	APIKey string
	URL    string
	Model  string
}

type OpenAIConfig struct {
	Token   string
	Model   string
	BaseURL string // optional, for OpenAI-compatible gateways
}

type GeminiConfig struct {
	APIKey  string
	Model   string
	BaseURL string // optional, overrides the Gemini API endpoint
}

type OllamaConfig struct {
	URL   string
	Model string
}

type FaceConfig struct {
	CascadePath string
}

type WebConfig struct {
	Host           string
	Port           int
	AllowedOrigins []string // CORS whitelist; localhost is always allowed
	RateLimitRPS   float64
	RateLimitBurst int
	TrustProxy     bool // take the client IP from X-Forwarded-For / X-Real-IP
}

type DatabaseConfig struct {
	URL          string // postgres://... or a MariaDB DSN; empty disables lookup history
	MaxOpenConns int    // Maximum open connections (default 10)
	MaxIdleConns int    // Maximum idle connections (default 2)
}

type RedisConfig struct {
	URL     string // redis://...; empty disables the identification cache
	TTLSecs int
}

type LogConfig struct {
	Level  string
	Format string
	File   string
}

type PricesConfig struct {
	Models map[string]RequestPricing `yaml:"models"`
}

// RequestPricing holds input/output prices per 1M tokens.
type RequestPricing struct {
	Input  float64 `yaml:"input"`
	Output float64 `yaml:"output"`
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envFloat is envInt for positive floats.
func envFloat(key string, defaultVal float64) float64 {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f > 0 {
		return f
	}
	return defaultVal
}

func envBool(key string, defaultVal bool) bool {
	if b, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(key))); err == nil {
		return b
	}
	return defaultVal
}

// envList splits a comma-separated environment variable, dropping empty items.
func envList(key string) []string {
	var items []string
	for item := range strings.SplitSeq(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

func envString(key, defaultVal string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return defaultVal
}

func Load() *Config {
	var prices PricesConfig
	if err := yaml.Unmarshal(pricesYAML, &prices); err != nil {
		// This is an embedded file so this error should never happen in practice
		panic("failed to unmarshal embedded prices.yaml: " + err.Error())
	}

	return &Config{
		Provider: strings.ToLower(envString("LLM_PROVIDER", ProviderGroq)),
		Groq: GroqConfig{
			APIKey: os.Getenv("GROQ_API_KEY"),
			URL:    envString("GROQ_API_URL", defaultGroqURL),
			Model:  envString("GROQ_MODEL_NAME", defaultGroqModel),
		},
		OpenAI: OpenAIConfig{
			Token:   os.Getenv("OPENAI_TOKEN"),
			Model:   envString("OPENAI_MODEL", defaultOpenAIModel),
			BaseURL: os.Getenv("OPENAI_BASE_URL"),
		},
		Gemini: GeminiConfig{
			APIKey:  os.Getenv("GEMINI_API_KEY"),
			Model:   envString("GEMINI_MODEL", defaultGeminiModel),
			BaseURL: os.Getenv("GEMINI_BASE_URL"),
		},
		Ollama: OllamaConfig{
			URL:   envString("OLLAMA_URL", defaultOllamaURL),
			Model: envString("OLLAMA_MODEL", defaultOllamaModel),
		},
		Face: FaceConfig{
			CascadePath: os.Getenv("FACE_CASCADE_PATH"),
		},
		Web: WebConfig{
			Host:           envString("WEB_HOST", "0.0.0.0"),
			Port:           envInt("WEB_PORT", 5000),
			AllowedOrigins: envList("WEB_ALLOWED_ORIGINS"),
			RateLimitRPS:   envFloat("RATE_LIMIT_RPS", 2),
			RateLimitBurst: envInt("RATE_LIMIT_BURST", 5),
			TrustProxy:     envBool("WEB_TRUST_PROXY", false),
		},
		Database: DatabaseConfig{
			URL:          os.Getenv("DATABASE_URL"),
			MaxOpenConns: envInt("DATABASE_MAX_OPEN_CONNS", 10),
			MaxIdleConns: envInt("DATABASE_MAX_IDLE_CONNS", 2),
		},
		Redis: RedisConfig{
			URL:     os.Getenv("REDIS_URL"),
			TTLSecs: envInt("CACHE_TTL", defaultCacheTTLSecs),
		},
		Log: LogConfig{
			Level:  envString("LOG_LEVEL", "info"),
			Format: envString("LOG_FORMAT", "text"),
			File:   os.Getenv("LOG_FILE"),
		},
		Prices:    prices,
		SecretKey: envString("SECRET_KEY", defaultSecretKey),
	}
}

// ActiveModel returns the model name used by the configured provider.
func (c *Config) ActiveModel() string {
	switch c.Provider {
	case ProviderOpenAI:
		return c.OpenAI.Model
	case ProviderGemini:
		return c.Gemini.Model
	case ProviderOllama:
		return c.Ollama.Model
	default:
		return c.Groq.Model
	}
}

// GetModelPricing returns pricing for a specific model, or zero pricing if unknown.
func (c *Config) GetModelPricing(modelName string) RequestPricing {
	if pricing, ok := c.Prices.Models[modelName]; ok {
		return pricing
	}
	return RequestPricing{}
}
