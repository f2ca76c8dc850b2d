package service_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"nuance/backend/internal/service"
)

func TestResolveDirection_ForeignSourceRunsParallel(t *testing.T) {
	// The source text is foreign to the reader, so interpretation explains
	// the original input and has no dependency on the translation.
	dir := service.ResolveDirection("영어", "한국어", "한국어")
	require.True(t, dir.Parallel)
	require.False(t, dir.InterpretTranslation)

	dir = service.ResolveDirection("日本語", "한국어", "한국어")
	require.True(t, dir.Parallel)
	require.False(t, dir.InterpretTranslation)
}

func TestResolveDirection_NativeSourceIsSequential(t *testing.T) {
	// The source is already in the explanation language; the foreign text
	// is the translation, so interpretation must wait for it.
	dir := service.ResolveDirection("한국어", "영어", "한국어")
	require.False(t, dir.Parallel)
	require.True(t, dir.InterpretTranslation)
}

func TestResolveDirection_IgnoresCaseAndSpace(t *testing.T) {
	dir := service.ResolveDirection(" English ", "Korean", "english")
	require.False(t, dir.Parallel)
	require.True(t, dir.InterpretTranslation)
}
