package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onsen-labs/ryokan-atlas/internal/model"
)

func newTestRunLog(t *testing.T) *RunLog {
	t.Helper()
	log, err := NewRunLog(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = log.Close() })
	return log
}

func TestRunLog_CompleteRun(t *testing.T) {
	t.Parallel()
	log := newTestRunLog(t)
	ctx := context.Background()

	id, err := log.StartRun(ctx, model.RunScrape)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	counters := model.RunCounters{
		PagesProcessed: 54,
		PagesSkipped:   2,
		Listings:       412,
	}
	require.NoError(t, log.CompleteRun(ctx, id, counters))

	runs, err := log.RecentRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, id, runs[0].ID)
	assert.Equal(t, model.RunScrape, runs[0].Kind)
	assert.Equal(t, model.RunCompleted, runs[0].Status)
	assert.Equal(t, counters, runs[0].Counters)
	assert.Empty(t, runs[0].Error)
	assert.NotEmpty(t, runs[0].StartedAt)
	assert.NotEmpty(t, runs[0].EndedAt)
}

func TestRunLog_FailRun(t *testing.T) {
	t.Parallel()
	log := newTestRunLog(t)
	ctx := context.Background()

	id, err := log.StartRun(ctx, model.RunGeocode)
	require.NoError(t, err)
	require.NoError(t, log.FailRun(ctx, id, "catalog: replace snapshot: disk full"))

	runs, err := log.RecentRuns(ctx, 1)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, model.RunFailed, runs[0].Status)
	assert.Equal(t, "catalog: replace snapshot: disk full", runs[0].Error)
}

func TestRunLog_RecentRunsLimit(t *testing.T) {
	t.Parallel()
	log := newTestRunLog(t)
	ctx := context.Background()

	for range 5 {
		_, err := log.StartRun(ctx, model.RunScrape)
		require.NoError(t, err)
	}

	runs, err := log.RecentRuns(ctx, 3)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	for _, r := range runs {
		assert.Equal(t, model.RunRunning, r.Status)
	}
}
