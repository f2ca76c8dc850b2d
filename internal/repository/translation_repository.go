package repository

import (
	"context"
	"database/sql"
	"time"

	"nuance/backend/internal/model"
	"nuance/backend/internal/snowflake"
)

// TranslationRepository stores completed translation records, scoped per owner.
type TranslationRepository interface {
	// Upsert inserts the record, or updates interpretation and created_at in
	// place when the same (owner_id, source_text, translated_text) triple
	// already exists. Returns the ID of the stored row.
	Upsert(ctx context.Context, rec model.TranslationRecord) (int64, error)
	// Insert always creates a new record, bypassing content deduplication.
	Insert(ctx context.Context, rec model.TranslationRecord) (int64, error)
	GetByID(ctx context.Context, ownerID string, id int64) (*model.TranslationRecord, error)
	// ListByOwner returns the owner's records, newest first.
	ListByOwner(ctx context.Context, ownerID string) ([]model.TranslationRecord, error)
	// DeleteByID removes the owner's record. Returns the number of rows deleted.
	DeleteByID(ctx context.Context, ownerID string, id int64) (int64, error)
}

type translationRepository struct {
	db dbtx
}

func NewTranslationRepository(db dbtx) TranslationRepository {
	return &translationRepository{db: db}
}

func (r *translationRepository) Upsert(ctx context.Context, rec model.TranslationRecord) (int64, error) {
	id := snowflake.NextID()
	now := formatTime(time.Now())

	// Single statement so concurrent writers from the same owner cannot
	// produce duplicate rows for one content triple.
	_, err := r.db.ExecContext(
		ctx,
		`INSERT INTO translations (id, owner_id, source_text, translated_text, source_language, target_language, interpretation, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(owner_id, source_text, translated_text) DO UPDATE SET
		   interpretation = excluded.interpretation,
		   created_at = excluded.created_at`,
		id, rec.OwnerID, rec.SourceText, rec.TranslatedText,
		rec.SourceLanguage, rec.TargetLanguage, rec.Interpretation, now,
	)
	if err != nil {
		return 0, err
	}

	row := r.db.QueryRowContext(
		ctx,
		`SELECT id FROM translations WHERE owner_id = ? AND source_text = ? AND translated_text = ?`,
		rec.OwnerID, rec.SourceText, rec.TranslatedText,
	)
	var storedID int64
	if err := row.Scan(&storedID); err != nil {
		return 0, err
	}
	return storedID, nil
}

func (r *translationRepository) Insert(ctx context.Context, rec model.TranslationRecord) (int64, error) {
	id := snowflake.NextID()
	now := formatTime(time.Now())

	_, err := r.db.ExecContext(
		ctx,
		`INSERT INTO translations (id, owner_id, source_text, translated_text, source_language, target_language, interpretation, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, rec.OwnerID, rec.SourceText, rec.TranslatedText,
		rec.SourceLanguage, rec.TargetLanguage, rec.Interpretation, now,
	)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *translationRepository) GetByID(ctx context.Context, ownerID string, id int64) (*model.TranslationRecord, error) {
	row := r.db.QueryRowContext(
		ctx,
		`SELECT id, owner_id, source_text, translated_text, source_language, target_language, interpretation, created_at
		 FROM translations WHERE id = ? AND owner_id = ?`,
		id, ownerID,
	)

	rec, err := scanTranslation(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *translationRepository) ListByOwner(ctx context.Context, ownerID string) ([]model.TranslationRecord, error) {
	rows, err := r.db.QueryContext(
		ctx,
		`SELECT id, owner_id, source_text, translated_text, source_language, target_language, interpretation, created_at
		 FROM translations WHERE owner_id = ?
		 ORDER BY created_at DESC, id DESC`,
		ownerID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []model.TranslationRecord
	for rows.Next() {
		rec, err := scanTranslation(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (r *translationRepository) DeleteByID(ctx context.Context, ownerID string, id int64) (int64, error) {
	result, err := r.db.ExecContext(
		ctx,
		`DELETE FROM translations WHERE id = ? AND owner_id = ?`,
		id, ownerID,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTranslation(row rowScanner) (model.TranslationRecord, error) {
	var rec model.TranslationRecord
	var createdAt string

	err := row.Scan(
		&rec.ID, &rec.OwnerID, &rec.SourceText, &rec.TranslatedText,
		&rec.SourceLanguage, &rec.TargetLanguage, &rec.Interpretation, &createdAt,
	)
	if err != nil {
		return rec, err
	}

	rec.CreatedAt, _ = parseTime(createdAt)
	return rec, nil
}
