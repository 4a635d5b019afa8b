package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zsj-atlas/zsj-cli/internal/model"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func testInput() model.RunInput {
	return model.RunInput{Input: "zsj.csv", OutputDir: "out", Points: true}
}

func TestSQLite_CreateAndGetRun(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	run, err := st.CreateRun(ctx, testInput())
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, model.RunStatusRunning, run.Status)

	got, err := st.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.ID, got.ID)
	assert.Equal(t, testInput(), got.Input)
	assert.Equal(t, model.RunStatusRunning, got.Status)
	assert.Nil(t, got.Summary)
	assert.Nil(t, got.FinishedAt)
}

func TestSQLite_FinishRun(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	run, err := st.CreateRun(ctx, testInput())
	require.NoError(t, err)

	summary := model.RunSummary{
		Records:  4,
		Geocoded: 1,
		SubsetCounts: map[model.Subset]int{
			model.SubsetAll: 4,
		},
	}
	require.NoError(t, st.FinishRun(ctx, run.ID, summary, nil))

	got, err := st.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusComplete, got.Status)
	require.NotNil(t, got.Summary)
	assert.Equal(t, 4, got.Summary.Records)
	assert.Equal(t, 4, got.Summary.SubsetCounts[model.SubsetAll])
	require.NotNil(t, got.FinishedAt)
	assert.False(t, got.FinishedAt.Before(got.StartedAt))
}

func TestSQLite_FinishRun_Failed(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	run, err := st.CreateRun(ctx, testInput())
	require.NoError(t, err)
	require.NoError(t, st.FinishRun(ctx, run.ID, model.RunSummary{}, errors.New("read input: boom")))

	got, err := st.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusFailed, got.Status)
	assert.Equal(t, "read input: boom", got.Error)
}

func TestSQLite_FinishRun_NotFound(t *testing.T) {
	st := newTestSQLiteStore(t)
	err := st.FinishRun(context.Background(), "missing", model.RunSummary{}, nil)
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestSQLite_GetRun_NotFound(t *testing.T) {
	st := newTestSQLiteStore(t)
	_, err := st.GetRun(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestSQLite_ListRuns(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	var ids []string
	for range 3 {
		run, err := st.CreateRun(ctx, testInput())
		require.NoError(t, err)
		ids = append(ids, run.ID)
	}
	require.NoError(t, st.FinishRun(ctx, ids[0], model.RunSummary{Records: 1}, nil))

	all, err := st.ListRuns(ctx, RunFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	limited, err := st.ListRuns(ctx, RunFilter{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	complete, err := st.ListRuns(ctx, RunFilter{Status: model.RunStatusComplete})
	require.NoError(t, err)
	require.Len(t, complete, 1)
	assert.Equal(t, ids[0], complete[0].ID)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, DriverNone, "")
	require.NoError(t, err)
	assert.Nil(t, s)

	s, err = Open(ctx, DriverSQLite, filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	require.NotNil(t, s)
	defer s.Close() //nolint:errcheck

	runs, err := s.ListRuns(ctx, RunFilter{})
	require.NoError(t, err)
	assert.Empty(t, runs)

	_, err = Open(ctx, DriverPostgres, "")
	assert.Error(t, err)

	_, err = Open(ctx, "mysql", "x")
	assert.Error(t, err)
}
