package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/hh-scout/internal/ai"
	"github.com/spigell/hh-scout/internal/ai/gemini"
	"github.com/spigell/hh-scout/internal/filtering"
	"github.com/spigell/hh-scout/internal/headhunter"
	"github.com/spigell/hh-scout/internal/profile"
	"github.com/spigell/hh-scout/internal/scoring"
	"github.com/spigell/hh-scout/internal/secrets"
	"github.com/spigell/hh-scout/internal/store"
)

func resolveToken(config *Config) (string, error) {
	if config == nil {
		return "", errors.New("config is required")
	}

	tokenFile := strings.TrimSpace(config.TokenFile)
	if tokenFile == "" {
		tokenFile = strings.TrimSpace(viper.GetString("token-file"))
	}

	if tokenFile == "" {
		return "", errors.New("headhunter token file is not configured")
	}

	return secrets.Load(secrets.Source{
		Name: "headhunter token",
		File: tokenFile,
	})
}

// newHHClient builds the hh.ru client. Without requireToken a missing token
// leaves the client anonymous, which is enough for search.
func newHHClient(config *Config, logger *zap.Logger, requireToken bool) (*headhunter.Client, error) {
	token, err := resolveToken(config)
	if err != nil {
		if requireToken {
			return nil, err
		}
		logger.Info("using anonymous hh.ru client", zap.String("reason", err.Error()))
		token = ""
	}

	return headhunter.New(logger, token, headhunter.WithUserAgent(config.UserAgent)), nil
}

// newGenerator returns nil when AI is disabled.
func newGenerator(ctx context.Context, cfg *AIConfig, logger *zap.Logger) (*gemini.Generator, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, nil
	}

	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if provider != "" && provider != "gemini" {
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}

	if cfg.Gemini == nil {
		cfg.Gemini = &GeminiConfig{}
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name: "gemini api key",
		File: cfg.Gemini.APIKeyFile,
		Env:  "GEMINI_API_KEY",
	})
	if err != nil {
		return nil, fmt.Errorf("%w (or set ai.gemini.api-key-file / GEMINI_API_KEY_FILE)", err)
	}

	return gemini.NewGenerator(ctx, apiKey, cfg.Gemini.Model, cfg.Gemini.MaxRetries, logger)
}

func maxLogLength(cfg *AIConfig) int {
	if cfg == nil || cfg.Gemini == nil {
		return 0
	}
	return cfg.Gemini.MaxLogLength
}

// newRedis returns nil when redis is not configured or not reachable.
func newRedis(ctx context.Context, config *Config, logger *zap.Logger) *redis.Client {
	if config.Redis == nil || config.Redis.URL == "" {
		return nil
	}

	rdb, err := store.NewRedisClient(ctx, config.Redis.URL)
	if err != nil {
		logger.Warn("profile cache disabled", zap.Error(err))
		return nil
	}

	return rdb
}

// newAnalyzer chains cache, gemini and keyword fallback. gen and rdb may be nil.
func newAnalyzer(config *Config, gen *gemini.Generator, rdb *redis.Client, logger *zap.Logger) ai.ProfileAnalyzer {
	var primary ai.ProfileAnalyzer
	if gen != nil {
		primary = gemini.NewProfileAnalyzer(gen, logger, maxLogLength(config.AI))
	}

	analyzer := ai.WithKeywordFallback(primary, logger)
	if rdb == nil {
		return analyzer
	}

	return store.NewCachedAnalyzer(store.NewProfileCache(rdb, config.Redis.ProfileTTL), analyzer, logger)
}

// loadProfile reads the profile file when configured, otherwise analyzes the résumé.
// The résumé text is returned for cover letters and is empty for a profile file.
func loadProfile(ctx context.Context, config *Config, hh *headhunter.Client, resume *headhunter.Resume, analyzer ai.ProfileAnalyzer) (*profile.Profile, string, error) {
	if path := config.Profile.File; path != "" {
		p, err := profile.Load(path)
		return p, "", err
	}

	text, err := resumeText(ctx, config, hh, resume)
	if err != nil {
		return nil, "", err
	}

	p, err := analyzer.Analyze(ctx, text)
	if err != nil {
		return nil, "", fmt.Errorf("analyze resume: %w", err)
	}

	return p, text, nil
}

func resumeText(ctx context.Context, config *Config, hh *headhunter.Client, resume *headhunter.Resume) (string, error) {
	if path := config.Profile.ResumeFile; path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("read resume file: %w", err)
		}
		return string(data), nil
	}

	if resume == nil {
		return "", errors.New("set profile.file, profile.resume-file or apply.resume")
	}

	details, err := hh.GetResumeDetails(ctx, resume.ID)
	if err != nil {
		return "", fmt.Errorf("get resume details: %w", err)
	}

	return details.Text(), nil
}

func newRanker(config *Config, logger *zap.Logger) *scoring.Ranker {
	concurrency := 0
	if config.Scoring != nil {
		concurrency = config.Scoring.Concurrency
	}

	return scoring.NewRanker(scoring.NewScorer(logger), logger, concurrency)
}

func excludedEmployers(config *Config) []string {
	if config.Apply == nil || config.Apply.Exclude == nil {
		return nil
	}
	return config.Apply.Exclude.Employers
}

// baseFilters are used by every command that ranks vacancies.
func baseFilters(config *Config, logger *zap.Logger) []filtering.Filter {
	return []filtering.Filter{
		filtering.NewWithTest(logger),
		filtering.NewExcludedEmployers(excludedEmployers(config), logger),
		filtering.NewExcludeFile(config.ExcludeFile, logger),
	}
}
