package repository_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"nuance/backend/internal/model"
	"nuance/backend/internal/repository"
	"nuance/backend/internal/repository/testutil"
)

func TestTranslationRepository_InsertAndGet(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repository.NewTranslationRepository(db)
	ctx := context.Background()

	id, err := repo.Insert(ctx, model.TranslationRecord{
		OwnerID:        "owner-1",
		SourceText:     "Hello",
		TranslatedText: "안녕하세요",
		SourceLanguage: "영어",
		TargetLanguage: "한국어",
		Interpretation: "인사말",
	})
	require.NoError(t, err)
	require.NotZero(t, id)

	fetched, err := repo.GetByID(ctx, "owner-1", id)
	require.NoError(t, err)
	require.NotNil(t, fetched)
	require.Equal(t, "Hello", fetched.SourceText)
	require.Equal(t, "안녕하세요", fetched.TranslatedText)
	require.Equal(t, "인사말", fetched.Interpretation)
	require.False(t, fetched.CreatedAt.IsZero())
}

func TestTranslationRepository_GetByID_Missing(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repository.NewTranslationRepository(db)

	fetched, err := repo.GetByID(context.Background(), "owner-1", 999)
	require.NoError(t, err)
	require.Nil(t, fetched)
}

func TestTranslationRepository_GetByID_OwnerScoped(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repository.NewTranslationRepository(db)
	ctx := context.Background()

	id, err := repo.Insert(ctx, model.TranslationRecord{
		OwnerID: "owner-1", SourceText: "a", TranslatedText: "b",
		SourceLanguage: "영어", TargetLanguage: "한국어",
	})
	require.NoError(t, err)

	fetched, err := repo.GetByID(ctx, "owner-2", id)
	require.NoError(t, err)
	require.Nil(t, fetched, "another owner must not see the record")
}

func TestTranslationRepository_Upsert_UpdatesInPlace(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repository.NewTranslationRepository(db)
	ctx := context.Background()

	rec := model.TranslationRecord{
		OwnerID:        "owner-1",
		SourceText:     "Hello",
		TranslatedText: "안녕하세요",
		SourceLanguage: "영어",
		TargetLanguage: "한국어",
		Interpretation: "first",
	}

	firstID, err := repo.Upsert(ctx, rec)
	require.NoError(t, err)

	// Same content triple again: no new row, interpretation replaced.
	rec.Interpretation = "second"
	secondID, err := repo.Upsert(ctx, rec)
	require.NoError(t, err)
	require.Equal(t, firstID, secondID, "upsert must keep the original row")

	records, err := repo.ListByOwner(ctx, "owner-1")
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "second", records[0].Interpretation)
}

func TestTranslationRepository_Upsert_DistinctContentCreatesRows(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repository.NewTranslationRepository(db)
	ctx := context.Background()

	base := model.TranslationRecord{
		OwnerID: "owner-1", SourceText: "Hello", TranslatedText: "안녕하세요",
		SourceLanguage: "영어", TargetLanguage: "한국어",
	}

	_, err := repo.Upsert(ctx, base)
	require.NoError(t, err)

	other := base
	other.TranslatedText = "안녕"
	_, err = repo.Upsert(ctx, other)
	require.NoError(t, err)

	// Same triple but different owner is also a distinct row.
	foreign := base
	foreign.OwnerID = "owner-2"
	_, err = repo.Upsert(ctx, foreign)
	require.NoError(t, err)

	records, err := repo.ListByOwner(ctx, "owner-1")
	require.NoError(t, err)
	require.Len(t, records, 2)
}

func TestTranslationRepository_ListByOwner_NewestFirst(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repository.NewTranslationRepository(db)
	ctx := context.Background()

	var ids []int64
	for _, text := range []string{"a", "b", "c"} {
		id, err := repo.Insert(ctx, model.TranslationRecord{
			OwnerID: "owner-1", SourceText: text, TranslatedText: text + "-t",
			SourceLanguage: "영어", TargetLanguage: "한국어",
		})
		require.NoError(t, err)
		ids = append(ids, id)
	}

	records, err := repo.ListByOwner(ctx, "owner-1")
	require.NoError(t, err)
	require.Len(t, records, 3)
	require.Equal(t, ids[2], records[0].ID)
	require.Equal(t, ids[1], records[1].ID)
	require.Equal(t, ids[0], records[2].ID)
}

func TestTranslationRepository_DeleteByID(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repository.NewTranslationRepository(db)
	ctx := context.Background()

	id, err := repo.Insert(ctx, model.TranslationRecord{
		OwnerID: "owner-1", SourceText: "a", TranslatedText: "b",
		SourceLanguage: "영어", TargetLanguage: "한국어",
	})
	require.NoError(t, err)

	// Wrong owner deletes nothing.
	deleted, err := repo.DeleteByID(ctx, "owner-2", id)
	require.NoError(t, err)
	require.Zero(t, deleted)

	deleted, err = repo.DeleteByID(ctx, "owner-1", id)
	require.NoError(t, err)
	require.Equal(t, int64(1), deleted)

	deleted, err = repo.DeleteByID(ctx, "owner-1", id)
	require.NoError(t, err)
	require.Zero(t, deleted)
}
