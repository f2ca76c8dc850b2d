package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"nuance/backend/internal/logger"
	"nuance/backend/internal/model"
	"nuance/backend/internal/repository"
)

// HistoryItem is one stored translation, shaped for the API. IDs are
// serialized as strings so they survive JavaScript number precision.
type HistoryItem struct {
	ID             string    `json:"id"`
	SourceText     string    `json:"source_text"`
	TranslatedText string    `json:"translated_text"`
	SourceLanguage string    `json:"source_language"`
	TargetLanguage string    `json:"target_language"`
	Interpretation string    `json:"interpretation"`
	CreatedAt      time.Time `json:"created_at"`
}

// HistoryDay groups an owner's records for one calendar date.
type HistoryDay struct {
	Date  string        `json:"date"`
	Items []HistoryItem `json:"items"`
}

// HistoryGroup groups an owner's records for one calendar month.
type HistoryGroup struct {
	Month string       `json:"month"`
	Days  []HistoryDay `json:"days"`
}

// HistoryService exposes the owner-scoped translation history.
type HistoryService interface {
	// List returns the owner's history, newest first, grouped by month
	// and then by date.
	List(ctx context.Context, ownerID string) ([]HistoryGroup, error)
	// Delete removes one record owned by ownerID.
	Delete(ctx context.Context, ownerID string, id int64) error
}

type historyService struct {
	repo repository.TranslationRepository
}

// NewHistoryService creates a new history service.
func NewHistoryService(repo repository.TranslationRepository) HistoryService {
	return &historyService{repo: repo}
}

func (s *historyService) List(ctx context.Context, ownerID string) ([]HistoryGroup, error) {
	records, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		logger.Warn("history list failed", "module", "service", "action", "fetch", "resource", "translation", "result", "failed", "owner", ownerID, "error", err)
		return nil, fmt.Errorf("list translations: %w", err)
	}
	return groupByMonth(records), nil
}

func (s *historyService) Delete(ctx context.Context, ownerID string, id int64) error {
	deleted, err := s.repo.DeleteByID(ctx, ownerID, id)
	if err != nil {
		logger.Warn("history delete failed", "module", "service", "action", "delete", "resource", "translation", "result", "failed", "owner", ownerID, "id", id, "error", err)
		return fmt.Errorf("delete translation: %w", err)
	}
	if deleted == 0 {
		return ErrNotFound
	}
	logger.Info("history record deleted", "module", "service", "action", "delete", "resource", "translation", "result", "ok", "owner", ownerID, "id", id)
	return nil
}

// groupByMonth folds an already-sorted record list into month and date
// groups, preserving the newest-first order at every level.
func groupByMonth(records []model.TranslationRecord) []HistoryGroup {
	groups := []HistoryGroup{}
	for _, rec := range records {
		month := rec.CreatedAt.Format("2006-01")
		date := rec.CreatedAt.Format("2006-01-02")

		if len(groups) == 0 || groups[len(groups)-1].Month != month {
			groups = append(groups, HistoryGroup{Month: month})
		}
		g := &groups[len(groups)-1]

		if len(g.Days) == 0 || g.Days[len(g.Days)-1].Date != date {
			g.Days = append(g.Days, HistoryDay{Date: date})
		}
		d := &g.Days[len(g.Days)-1]

		d.Items = append(d.Items, HistoryItem{
			ID:             strconv.FormatInt(rec.ID, 10),
			SourceText:     rec.SourceText,
			TranslatedText: rec.TranslatedText,
			SourceLanguage: rec.SourceLanguage,
			TargetLanguage: rec.TargetLanguage,
			Interpretation: rec.Interpretation,
			CreatedAt:      rec.CreatedAt,
		})
	}
	return groups
}
