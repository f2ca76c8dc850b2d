package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"nuance/backend/internal/model"
	"nuance/backend/internal/repository/mock"
	"nuance/backend/internal/service"
)

func TestHistoryService_List_GroupsByMonthAndDate(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mock.NewMockTranslationRepository(ctrl)
	repo.EXPECT().ListByOwner(gomock.Any(), "o").Return([]model.TranslationRecord{
		{ID: 4, OwnerID: "o", SourceText: "d", CreatedAt: time.Date(2025, 2, 10, 9, 0, 0, 0, time.UTC)},
		{ID: 3, OwnerID: "o", SourceText: "c", CreatedAt: time.Date(2025, 2, 10, 8, 0, 0, 0, time.UTC)},
		{ID: 2, OwnerID: "o", SourceText: "b", CreatedAt: time.Date(2025, 2, 3, 12, 0, 0, 0, time.UTC)},
		{ID: 1, OwnerID: "o", SourceText: "a", CreatedAt: time.Date(2025, 1, 28, 12, 0, 0, 0, time.UTC)},
	}, nil)

	svc := service.NewHistoryService(repo)
	groups, err := svc.List(context.Background(), "o")
	require.NoError(t, err)
	require.Len(t, groups, 2)

	require.Equal(t, "2025-02", groups[0].Month)
	require.Len(t, groups[0].Days, 2)
	require.Equal(t, "2025-02-10", groups[0].Days[0].Date)
	require.Len(t, groups[0].Days[0].Items, 2)
	require.Equal(t, "2025-02-03", groups[0].Days[1].Date)

	require.Equal(t, "2025-01", groups[1].Month)
	require.Len(t, groups[1].Days, 1)
	require.Equal(t, "2025-01-28", groups[1].Days[0].Date)

	// Newest-first order is preserved inside a day; IDs are strings.
	require.Equal(t, "4", groups[0].Days[0].Items[0].ID)
	require.Equal(t, "3", groups[0].Days[0].Items[1].ID)
}

func TestHistoryService_List_Empty(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mock.NewMockTranslationRepository(ctrl)
	repo.EXPECT().ListByOwner(gomock.Any(), "o").Return(nil, nil)

	svc := service.NewHistoryService(repo)
	groups, err := svc.List(context.Background(), "o")
	require.NoError(t, err)
	require.NotNil(t, groups)
	require.Empty(t, groups)
}

func TestHistoryService_List_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mock.NewMockTranslationRepository(ctrl)
	repo.EXPECT().ListByOwner(gomock.Any(), "o").Return(nil, errors.New("query failed"))

	svc := service.NewHistoryService(repo)
	_, err := svc.List(context.Background(), "o")
	require.Error(t, err)
	require.Contains(t, err.Error(), "list translations")
}

func TestHistoryService_Delete(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mock.NewMockTranslationRepository(ctrl)
	repo.EXPECT().DeleteByID(gomock.Any(), "o", int64(42)).Return(int64(1), nil)

	svc := service.NewHistoryService(repo)
	require.NoError(t, svc.Delete(context.Background(), "o", 42))
}

func TestHistoryService_Delete_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mock.NewMockTranslationRepository(ctrl)
	repo.EXPECT().DeleteByID(gomock.Any(), "o", int64(42)).Return(int64(0), nil)

	svc := service.NewHistoryService(repo)
	err := svc.Delete(context.Background(), "o", 42)
	require.ErrorIs(t, err, service.ErrNotFound)
}

func TestHistoryService_Delete_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mock.NewMockTranslationRepository(ctrl)
	repo.EXPECT().DeleteByID(gomock.Any(), "o", int64(42)).Return(int64(0), errors.New("exec failed"))

	svc := service.NewHistoryService(repo)
	err := svc.Delete(context.Background(), "o", 42)
	require.Error(t, err)
	require.NotErrorIs(t, err, service.ErrNotFound)
}
