package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"nuance/backend/internal/config"
	"nuance/backend/internal/logger"
	"nuance/backend/internal/model"
	"nuance/backend/internal/repository"
	"nuance/backend/internal/service/ai"
	"nuance/backend/internal/worker"
)

// Settings keys consumed by the pipeline.
const (
	KeyExplanationLanguage = "ai.explanation_language"
	KeyHistoryDedup        = "history.dedup"
)

// PipelineRequest is the transient input of one pipeline run.
type PipelineRequest struct {
	Text           string
	SourceLanguage string
	TargetLanguage string
	// Translation carries a pre-computed translation for the standalone
	// interpretation operations.
	Translation string
}

// Timing holds the per-stage diagnostics returned to the caller, in seconds.
type Timing struct {
	TranslationTime    float64 `json:"translation_time"`
	InterpretationTime float64 `json:"interpretation_time"`
	SaveTime           float64 `json:"save_time"`
	TotalTime          float64 `json:"total_time"`
}

// TranslateResult is the merged output of both stages.
type TranslateResult struct {
	Translation    string `json:"translation"`
	Interpretation string `json:"interpretation"`
	Timing         Timing `json:"timing"`
}

// PipelineService orchestrates the translation and interpretation stages.
type PipelineService interface {
	// Translate runs the full dual-stage pipeline and persists the result
	// synchronously. A persistence failure is logged, never surfaced.
	Translate(ctx context.Context, ownerID string, req PipelineRequest) (*TranslateResult, error)
	// TranslateOnly runs the translation stage alone.
	TranslateOnly(ctx context.Context, req PipelineRequest) (string, float64, error)
	// InterpretStream starts a streaming interpretation of the request's
	// translation pair. The text channel closes on completion; the error
	// channel reports a mid-flight provider failure.
	InterpretStream(ctx context.Context, req PipelineRequest) (<-chan string, <-chan error, error)
	// InterpretAndSave runs a blocking interpretation and persists the
	// completed record inline.
	InterpretAndSave(ctx context.Context, ownerID string, req PipelineRequest) (string, Timing, error)
	// SaveResultAsync persists a completed record off the critical path.
	// Used after stream teardown; failures are only logged.
	SaveResultAsync(ownerID string, req PipelineRequest, interpretation string)
	// ExplanationLanguage returns the configured interpretation language.
	ExplanationLanguage(ctx context.Context) string
}

type pipelineService struct {
	provider     ai.Provider
	translations repository.TranslationRepository
	settings     repository.SettingsRepository
	limiter      *ai.RateLimiter
	pool         *worker.Pool
	callTimeout  time.Duration
}

// NewPipelineService creates the pipeline coordinator. The provider, pool
// and limiter are process-wide singletons constructed at startup.
func NewPipelineService(
	provider ai.Provider,
	translations repository.TranslationRepository,
	settings repository.SettingsRepository,
	limiter *ai.RateLimiter,
	pool *worker.Pool,
	callTimeout time.Duration,
) PipelineService {
	return &pipelineService{
		provider:     provider,
		translations: translations,
		settings:     settings,
		limiter:      limiter,
		pool:         pool,
		callTimeout:  callTimeout,
	}
}

func (s *pipelineService) Translate(ctx context.Context, ownerID string, req PipelineRequest) (*TranslateResult, error) {
	if err := validateRequest(req, false); err != nil {
		return nil, err
	}

	runID := uuid.New().String()
	start := time.Now()
	dir := ResolveDirection(req.SourceLanguage, req.TargetLanguage, s.ExplanationLanguage(ctx))

	var (
		translation, interpretation string
		translationTime             float64
		interpretationTime          float64
	)

	if dir.Parallel {
		// Interpretation depends only on the original text here, so both
		// stages are dispatched onto the pool at once. The first failure
		// cancels the sibling and terminates the request.
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			return s.pool.Run(gctx, func() error {
				var err error
				translation, translationTime, err = s.runTranslate(gctx, req)
				return err
			})
		})
		g.Go(func() error {
			return s.pool.Run(gctx, func() error {
				var err error
				interpretation, interpretationTime, err = s.runInterpret(gctx, req.Text, req.SourceLanguage)
				return err
			})
		})
		if err := g.Wait(); err != nil {
			logger.Warn("pipeline stage failed", "module", "service", "action", "translate", "resource", "pipeline", "result", "failed", "run_id", runID, "ordering", "parallel", "error", err)
			return nil, err
		}
	} else {
		// The interpretation prompt is built from the translated text, so
		// translation must complete first. A translation failure
		// short-circuits without ever starting interpretation.
		err := s.pool.Run(ctx, func() error {
			var err error
			translation, translationTime, err = s.runTranslate(ctx, req)
			return err
		})
		if err != nil {
			logger.Warn("pipeline translation failed", "module", "service", "action", "translate", "resource", "pipeline", "result", "failed", "run_id", runID, "ordering", "sequential", "error", err)
			return nil, err
		}

		translated := translation
		err = s.pool.Run(ctx, func() error {
			var err error
			interpretation, interpretationTime, err = s.runInterpret(ctx, translated, req.TargetLanguage)
			return err
		})
		if err != nil {
			logger.Warn("pipeline interpretation failed", "module", "service", "action", "translate", "resource", "pipeline", "result", "failed", "run_id", runID, "ordering", "sequential", "error", err)
			return nil, err
		}
	}

	// Best-effort inline persistence: the response is already computed and
	// a storage fault must not alter it.
	saveTime, err := s.persist(ctx, model.TranslationRecord{
		OwnerID:        ownerID,
		SourceText:     req.Text,
		TranslatedText: translation,
		SourceLanguage: req.SourceLanguage,
		TargetLanguage: req.TargetLanguage,
		Interpretation: interpretation,
	})
	if err != nil {
		logger.Warn("pipeline save failed", "module", "service", "action", "save", "resource", "translation", "result", "failed", "run_id", runID, "owner", ownerID, "error", err)
	}

	result := &TranslateResult{
		Translation:    translation,
		Interpretation: interpretation,
		Timing: Timing{
			TranslationTime:    translationTime,
			InterpretationTime: interpretationTime,
			SaveTime:           saveTime,
			TotalTime:          time.Since(start).Seconds(),
		},
	}
	logger.Info("pipeline completed", "module", "service", "action", "translate", "resource", "pipeline", "result", "ok", "run_id", runID, "owner", ownerID, "parallel", dir.Parallel, "total_s", result.Timing.TotalTime)
	return result, nil
}

func (s *pipelineService) TranslateOnly(ctx context.Context, req PipelineRequest) (string, float64, error) {
	if err := validateRequest(req, false); err != nil {
		return "", 0, err
	}

	var translation string
	var elapsed float64
	err := s.pool.Run(ctx, func() error {
		var err error
		translation, elapsed, err = s.runTranslate(ctx, req)
		return err
	})
	if err != nil {
		return "", elapsed, err
	}
	return translation, elapsed, nil
}

func (s *pipelineService) InterpretStream(ctx context.Context, req PipelineRequest) (<-chan string, <-chan error, error) {
	if err := validateRequest(req, true); err != nil {
		return nil, nil, err
	}

	text, textLanguage := s.interpretInput(ctx, req)

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, nil, fmt.Errorf("rate limit: %w", err)
	}

	// No per-call deadline here: once opened, the stream runs to provider
	// completion or provider-side error.
	systemPrompt := ai.GetInterpretPrompt(s.ExplanationLanguage(ctx))
	textCh, errCh := s.provider.CompleteStream(ctx, systemPrompt, ai.GetInterpretInput(text, textLanguage))
	logger.Info("interpretation stream started", "module", "service", "action", "interpret", "resource", "pipeline", "result", "ok", "provider", s.provider.Name())
	return textCh, errCh, nil
}

func (s *pipelineService) InterpretAndSave(ctx context.Context, ownerID string, req PipelineRequest) (string, Timing, error) {
	if err := validateRequest(req, true); err != nil {
		return "", Timing{}, err
	}

	start := time.Now()
	text, textLanguage := s.interpretInput(ctx, req)

	var interpretation string
	var interpretationTime float64
	err := s.pool.Run(ctx, func() error {
		var err error
		interpretation, interpretationTime, err = s.runInterpret(ctx, text, textLanguage)
		return err
	})
	if err != nil {
		return "", Timing{}, err
	}

	saveTime, err := s.persist(ctx, model.TranslationRecord{
		OwnerID:        ownerID,
		SourceText:     req.Text,
		TranslatedText: req.Translation,
		SourceLanguage: req.SourceLanguage,
		TargetLanguage: req.TargetLanguage,
		Interpretation: interpretation,
	})
	if err != nil {
		logger.Warn("interpretation save failed", "module", "service", "action", "save", "resource", "translation", "result", "failed", "owner", ownerID, "error", err)
	}

	return interpretation, Timing{
		InterpretationTime: interpretationTime,
		SaveTime:           saveTime,
		TotalTime:          time.Since(start).Seconds(),
	}, nil
}

func (s *pipelineService) SaveResultAsync(ownerID string, req PipelineRequest, interpretation string) {
	rec := model.TranslationRecord{
		OwnerID:        ownerID,
		SourceText:     req.Text,
		TranslatedText: req.Translation,
		SourceLanguage: req.SourceLanguage,
		TargetLanguage: req.TargetLanguage,
		Interpretation: interpretation,
	}

	// Detached task: spawned after the terminal stream event, never awaited
	// by the response path. Failures go to the log sink only.
	err := s.pool.Submit(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if _, err := s.persist(ctx, rec); err != nil {
			logger.Warn("background save failed", "module", "service", "action", "save", "resource", "translation", "result", "failed", "owner", ownerID, "error", err)
			return
		}
		logger.Info("background save completed", "module", "service", "action", "save", "resource", "translation", "result", "ok", "owner", ownerID)
	})
	if err != nil {
		logger.Warn("background save not scheduled", "module", "service", "action", "save", "resource", "translation", "result", "failed", "owner", ownerID, "error", err)
	}
}

func (s *pipelineService) ExplanationLanguage(ctx context.Context) string {
	setting, err := s.settings.Get(ctx, KeyExplanationLanguage)
	if err != nil || setting == nil || setting.Value == "" {
		return config.DefaultExplanationLanguage
	}
	return setting.Value
}

// runTranslate executes the translation stage: a single provider call with
// a literal, punctuation-free translation prompt.
func (s *pipelineService) runTranslate(ctx context.Context, req PipelineRequest) (string, float64, error) {
	start := time.Now()

	if err := s.limiter.Wait(ctx); err != nil {
		return "", time.Since(start).Seconds(), fmt.Errorf("rate limit: %w", err)
	}

	callCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()

	out, err := s.provider.Complete(callCtx, ai.GetTranslatePrompt(req.SourceLanguage, req.TargetLanguage), req.Text)
	elapsed := time.Since(start).Seconds()
	if err != nil {
		return "", elapsed, classifyUpstream(err)
	}
	return strings.TrimSpace(out), elapsed, nil
}

// runInterpret executes the interpretation stage against the given text,
// which is either the original input or the completed translation.
func (s *pipelineService) runInterpret(ctx context.Context, text, textLanguage string) (string, float64, error) {
	start := time.Now()

	if err := s.limiter.Wait(ctx); err != nil {
		return "", time.Since(start).Seconds(), fmt.Errorf("rate limit: %w", err)
	}

	callCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()

	systemPrompt := ai.GetInterpretPrompt(s.ExplanationLanguage(ctx))
	out, err := s.provider.Complete(callCtx, systemPrompt, ai.GetInterpretInput(text, textLanguage))
	elapsed := time.Since(start).Seconds()
	if err != nil {
		return "", elapsed, classifyUpstream(err)
	}
	return strings.TrimSpace(out), elapsed, nil
}

// interpretInput selects the interpretation stage's input for requests that
// carry a pre-computed translation.
func (s *pipelineService) interpretInput(ctx context.Context, req PipelineRequest) (text, textLanguage string) {
	dir := ResolveDirection(req.SourceLanguage, req.TargetLanguage, s.ExplanationLanguage(ctx))
	if dir.InterpretTranslation {
		return req.Translation, req.TargetLanguage
	}
	return req.Text, req.SourceLanguage
}

// persist stores the finished record and returns the elapsed save time.
// Content deduplication is a configurable policy; when disabled every run
// appends a new record.
func (s *pipelineService) persist(ctx context.Context, rec model.TranslationRecord) (float64, error) {
	start := time.Now()

	var err error
	if s.dedupEnabled(ctx) {
		_, err = s.translations.Upsert(ctx, rec)
	} else {
		_, err = s.translations.Insert(ctx, rec)
	}
	elapsed := time.Since(start).Seconds()
	if err != nil {
		return elapsed, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return elapsed, nil
}

func (s *pipelineService) dedupEnabled(ctx context.Context) bool {
	setting, err := s.settings.Get(ctx, KeyHistoryDedup)
	if err != nil || setting == nil || setting.Value == "" {
		return true
	}
	return setting.Value != "false"
}

func validateRequest(req PipelineRequest, needTranslation bool) error {
	if strings.TrimSpace(req.Text) == "" {
		return fmt.Errorf("%w: text is required", ErrInvalid)
	}
	if strings.TrimSpace(req.SourceLanguage) == "" {
		return fmt.Errorf("%w: source language is required", ErrInvalid)
	}
	if strings.TrimSpace(req.TargetLanguage) == "" {
		return fmt.Errorf("%w: target language is required", ErrInvalid)
	}
	if needTranslation && strings.TrimSpace(req.Translation) == "" {
		return fmt.Errorf("%w: translation is required", ErrInvalid)
	}
	return nil
}
