package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spigell/hh-scout/internal/profile"
)

const (
	profileKeyPrefix  = "hh-scout:profile:"
	DefaultProfileTTL = 24 * time.Hour
)

// NewRedisClient parses redisURL and verifies connectivity.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis.ParseURL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return client, nil
}

// ProfileCache keeps analyzed profiles keyed by the résumé content.
type ProfileCache struct {
	rdb redis.Cmdable
	ttl time.Duration
}

func NewProfileCache(rdb redis.Cmdable, ttl time.Duration) *ProfileCache {
	if ttl <= 0 {
		ttl = DefaultProfileTTL
	}
	return &ProfileCache{rdb: rdb, ttl: ttl}
}

func (c *ProfileCache) Get(ctx context.Context, resumeText string) (*profile.Profile, bool, error) {
	data, err := c.rdb.Get(ctx, profileKey(resumeText)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get cached profile: %w", err)
	}

	var p profile.Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, false, fmt.Errorf("decode cached profile: %w", err)
	}

	return &p, true, nil
}

func (c *ProfileCache) Put(ctx context.Context, resumeText string, p *profile.Profile) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}

	if err := c.rdb.Set(ctx, profileKey(resumeText), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache profile: %w", err)
	}

	return nil
}

func profileKey(resumeText string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(resumeText)))
	return profileKeyPrefix + hex.EncodeToString(sum[:])
}

// Analyzer is satisfied by ai.ProfileAnalyzer implementations.
type Analyzer interface {
	Analyze(ctx context.Context, resumeText string) (*profile.Profile, error)
}

// CachedAnalyzer consults the cache before the analyzer. Cache failures are logged
// and never fail the analysis.
type CachedAnalyzer struct {
	cache    *ProfileCache
	analyzer Analyzer
	logger   *zap.Logger
}

func NewCachedAnalyzer(cache *ProfileCache, analyzer Analyzer, logger *zap.Logger) *CachedAnalyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedAnalyzer{cache: cache, analyzer: analyzer, logger: logger}
}

func (a *CachedAnalyzer) Analyze(ctx context.Context, resumeText string) (*profile.Profile, error) {
	cached, ok, err := a.cache.Get(ctx, resumeText)
	switch {
	case err != nil:
		a.logger.Warn("profile cache is unavailable", zap.Error(err))
	case ok:
		a.logger.Debug("profile found in cache")
		return cached, nil
	}

	p, err := a.analyzer.Analyze(ctx, resumeText)
	if err != nil {
		return nil, err
	}

	if err := a.cache.Put(ctx, resumeText, p); err != nil {
		a.logger.Warn("failed to cache profile", zap.Error(err))
	}

	return p, nil
}
