package service

import (
	"context"
	"fmt"
	"strconv"

	"nuance/backend/internal/config"
	"nuance/backend/internal/logger"
	"nuance/backend/internal/repository"
	"nuance/backend/internal/service/ai"
)

const keyRateLimit = "ai.rate_limit"

// PipelineSettings holds the runtime-tunable pipeline policies.
type PipelineSettings struct {
	// ExplanationLanguage is the language interpretations are written in.
	ExplanationLanguage string `json:"explanationLanguage"`
	// DedupHistory collapses repeat translations of the same content into
	// one history record.
	DedupHistory bool `json:"dedupHistory"`
	// RateLimit is the provider-call QPS cap.
	RateLimit int `json:"rateLimit"`
}

// SettingsService provides settings management.
type SettingsService interface {
	// GetSettings returns the current pipeline policies.
	GetSettings(ctx context.Context) (*PipelineSettings, error)
	// UpdateSettings stores the pipeline policies and applies the rate
	// limit immediately.
	UpdateSettings(ctx context.Context, settings *PipelineSettings) error
	// TestProvider sends a test message through the configured provider.
	TestProvider(ctx context.Context) (string, error)
}

type settingsService struct {
	repo     repository.SettingsRepository
	provider ai.Provider
	limiter  *ai.RateLimiter
}

// NewSettingsService creates a new settings service.
func NewSettingsService(repo repository.SettingsRepository, provider ai.Provider, limiter *ai.RateLimiter) SettingsService {
	return &settingsService{repo: repo, provider: provider, limiter: limiter}
}

func (s *settingsService) GetSettings(ctx context.Context) (*PipelineSettings, error) {
	settings := &PipelineSettings{
		ExplanationLanguage: config.DefaultExplanationLanguage,
		DedupHistory:        true,
		RateLimit:           s.limiter.GetLimit(),
	}

	if val, err := s.getString(ctx, KeyExplanationLanguage); err == nil && val != "" {
		settings.ExplanationLanguage = val
	}
	if val, err := s.getString(ctx, KeyHistoryDedup); err == nil && val == "false" {
		settings.DedupHistory = false
	}

	return settings, nil
}

func (s *settingsService) UpdateSettings(ctx context.Context, settings *PipelineSettings) error {
	if settings.ExplanationLanguage != "" {
		if err := s.repo.Set(ctx, KeyExplanationLanguage, settings.ExplanationLanguage); err != nil {
			return fmt.Errorf("set explanation language: %w", err)
		}
	}

	dedup := "true"
	if !settings.DedupHistory {
		dedup = "false"
	}
	if err := s.repo.Set(ctx, KeyHistoryDedup, dedup); err != nil {
		return fmt.Errorf("set history dedup: %w", err)
	}

	if settings.RateLimit > 0 {
		if err := s.repo.Set(ctx, keyRateLimit, strconv.Itoa(settings.RateLimit)); err != nil {
			return fmt.Errorf("set rate limit: %w", err)
		}
		s.limiter.SetLimit(settings.RateLimit)
	}

	logger.Info("settings updated", "module", "service", "action", "update", "resource", "settings", "result", "ok")
	return nil
}

func (s *settingsService) TestProvider(ctx context.Context) (string, error) {
	reply, err := s.provider.Test(ctx)
	if err != nil {
		logger.Warn("provider test failed", "module", "service", "action", "fetch", "resource", "ai", "result", "failed", "provider", s.provider.Name(), "error", err)
		return "", classifyUpstream(err)
	}
	return reply, nil
}

// RestoreRateLimit applies a persisted rate limit at startup.
func RestoreRateLimit(ctx context.Context, repo repository.SettingsRepository, limiter *ai.RateLimiter) {
	setting, err := repo.Get(ctx, keyRateLimit)
	if err != nil || setting == nil || setting.Value == "" {
		return
	}
	if qps, err := strconv.Atoi(setting.Value); err == nil && qps > 0 {
		limiter.SetLimit(qps)
	}
}

func (s *settingsService) getString(ctx context.Context, key string) (string, error) {
	setting, err := s.repo.Get(ctx, key)
	if err != nil {
		return "", err
	}
	if setting == nil {
		return "", nil
	}
	return setting.Value, nil
}
