package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/kozaktomas/celebrity-detector/internal/ai"
	"github.com/kozaktomas/celebrity-detector/internal/cache"
	"github.com/kozaktomas/celebrity-detector/internal/celebrity"
	"github.com/kozaktomas/celebrity-detector/internal/config"
	"github.com/kozaktomas/celebrity-detector/internal/database"
	"github.com/kozaktomas/celebrity-detector/internal/facedetect"
	"github.com/kozaktomas/celebrity-detector/internal/logging"

	// History backends register themselves with the database package.
	_ "github.com/kozaktomas/celebrity-detector/internal/database/mariadb"
	_ "github.com/kozaktomas/celebrity-detector/internal/database/postgres"
)

// app holds everything a command needs. Close releases the optional backends.
type app struct {
	cfg     *config.Config
	logger  *logrus.Logger
	service *celebrity.Service
	closers []io.Closer
}

// newApp loads configuration and wires the detector, provider, cache and history
// store. Cache and history are skipped when their URLs are unset.
func newApp(ctx context.Context, cmd *cobra.Command) (*app, error) {
	cfg := config.Load()
	logger := newLogger(cmd, cfg)

	detector, err := facedetect.NewPigoDetector(cfg.Face.CascadePath)
	if err != nil {
		return nil, err
	}

	provider, err := newProvider(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, logger: logger}
	opts := celebrity.Options{
		Detector: detector,
		Provider: provider,
		CacheTTL: time.Duration(cfg.Redis.TTLSecs) * time.Second,
		Logger:   logger,
	}

	if cfg.Redis.URL != "" {
		rc, err := cache.NewRedisCache(ctx, cfg.Redis.URL, logger)
		if err != nil {
			return nil, fmt.Errorf("connecting to redis: %w", err)
		}
		opts.Cache = rc
		a.closers = append(a.closers, rc)
		logger.Info("identification cache enabled (redis)")
	}

	if cfg.Database.URL != "" {
		store, err := database.Open(ctx, &cfg.Database)
		if err != nil {
			a.Close()
			return nil, err
		}
		// Assigned only here so an unset URL leaves a nil interface.
		opts.History = store
		a.closers = append(a.closers, store)
		driver, _ := database.DetectDriver(cfg.Database.URL)
		logger.WithField("driver", driver).Info("lookup history enabled")
	}

	a.service = celebrity.NewService(opts)
	logger.WithFields(logrus.Fields{
		"provider": cfg.Provider,
		"model":    provider.Name(),
	}).Debug("application initialized")
	return a, nil
}

// Close releases the cache and history connections.
func (a *app) Close() {
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			a.logger.WithError(err).Warn("closing backend")
		}
	}
	a.closers = nil
}

// newLogger applies the --log-level/--log-format overrides to the configured logger.
func newLogger(cmd *cobra.Command, cfg *config.Config) *logrus.Logger {
	opts := logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format, File: cfg.Log.File}
	if v, _ := cmd.Flags().GetString("log-level"); v != "" {
		opts.Level = v
	}
	if v, _ := cmd.Flags().GetString("log-format"); v != "" {
		opts.Format = v
	}
	return logging.NewLogger(opts)
}

// newProvider builds the LLM provider selected by LLM_PROVIDER.
// A missing Groq key is only a warning: requests then fail with 401 and degrade to
// the fallback answers.
func newProvider(ctx context.Context, cfg *config.Config, logger logrus.FieldLogger) (ai.Provider, error) {
	pricing := aiPricing(cfg.GetModelPricing(cfg.ActiveModel()))

	switch cfg.Provider {
	case config.ProviderGroq, "":
		if cfg.Groq.APIKey == "" {
			logger.Warn("GROQ_API_KEY is not set, identification requests will fail")
		}
		return ai.NewChatProvider(cfg.Groq.URL, cfg.Groq.APIKey, cfg.Groq.Model, pricing)
	case config.ProviderOpenAI:
		if cfg.OpenAI.Token == "" {
			return nil, errors.New("OPENAI_TOKEN environment variable is required")
		}
		return ai.NewOpenAIProvider(cfg.OpenAI.Token, cfg.OpenAI.Model, cfg.OpenAI.BaseURL, pricing), nil
	case config.ProviderGemini:
		if cfg.Gemini.APIKey == "" {
			return nil, errors.New("GEMINI_API_KEY environment variable is required")
		}
		return ai.NewGeminiProvider(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model, cfg.Gemini.BaseURL, pricing)
	case config.ProviderOllama:
		return ai.NewOllamaProvider(cfg.Ollama.URL, cfg.Ollama.Model)
	default:
		return nil, fmt.Errorf("unknown LLM provider %q (expected groq, openai, gemini or ollama)", cfg.Provider)
	}
}

func aiPricing(p config.RequestPricing) ai.RequestPricing {
	return ai.RequestPricing{Input: p.Input, Output: p.Output}
}

// printUsage reports token usage and cost on stdout after a CLI run.
func printUsage(u ai.Usage) {
	if u.InputTokens == 0 && u.OutputTokens == 0 {
		return
	}
	fmt.Printf("\nTokens: %d in / %d out, cost $%.4f\n", u.InputTokens, u.OutputTokens, u.TotalCost)
}
