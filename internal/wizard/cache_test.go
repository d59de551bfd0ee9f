package wizard_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"automlcli/internal/wizard"
	"automlcli/internal/wizard/testutil"
	"automlcli/pkg/contracts/domain"
)

func newCache(t *testing.T) (*wizard.PreviewCache, *testutil.MockPreviewFetcher) {
	t.Helper()
	fetcher := testutil.NewMockPreviewFetcher()
	return wizard.NewPreviewCache(fetcher, time.Minute, nil), fetcher
}

func TestGetPreviewCachesSecondCall(t *testing.T) {
	cache, fetcher := newCache(t)
	ctx := context.Background()

	first, err := cache.GetPreview(ctx, "d1", wizard.StageRaw)
	require.NoError(t, err)

	second, err := cache.GetPreview(ctx, "d1", wizard.StageRaw)
	require.NoError(t, err)

	assert.Equal(t, 1, fetcher.CallCount("d1", wizard.StageRaw), "second call must be a cache hit")
	assert.Same(t, first, second)
	assert.Equal(t, "d1", first.DatasetID)
	assert.Equal(t, wizard.StageRaw, first.Stage)
	assert.False(t, first.FetchedAt.IsZero())
}

func TestRefreshAlwaysFetches(t *testing.T) {
	cache, fetcher := newCache(t)
	ctx := context.Background()

	_, err := cache.GetPreview(ctx, "d1", wizard.StageRaw)
	require.NoError(t, err)

	_, err = cache.Refresh(ctx, "d1", wizard.StageRaw)
	require.NoError(t, err)
	_, err = cache.Refresh(ctx, "d1", wizard.StageRaw)
	require.NoError(t, err)

	assert.Equal(t, 3, fetcher.CallCount("d1", wizard.StageRaw))
}

func TestRefreshOverwritesCachedEntry(t *testing.T) {
	cache, fetcher := newCache(t)
	ctx := context.Background()

	fetcher.SetPage("d1", wizard.StageRaw, &domain.PreviewPage{
		Rows:    []domain.PreviewRow{{"a": 1}},
		Columns: []string{"a"},
	})
	_, err := cache.GetPreview(ctx, "d1", wizard.StageRaw)
	require.NoError(t, err)

	fetcher.SetPage("d1", wizard.StageRaw, &domain.PreviewPage{
		Rows:    []domain.PreviewRow{{"a": 1}, {"a": 2}},
		Columns: []string{"a"},
	})
	refreshed, err := cache.Refresh(ctx, "d1", wizard.StageRaw)
	require.NoError(t, err)
	assert.Len(t, refreshed.Rows, 2)

	// The refreshed entry is now what the cache serves.
	cached, err := cache.GetPreview(ctx, "d1", wizard.StageRaw)
	require.NoError(t, err)
	assert.Len(t, cached.Rows, 2)
	assert.Equal(t, 2, fetcher.CallCount("d1", wizard.StageRaw))
}

func TestStageKeysAreIndependent(t *testing.T) {
	cache, fetcher := newCache(t)
	ctx := context.Background()

	fetcher.SetPage("d1", wizard.StageRaw, &domain.PreviewPage{
		Rows:    []domain.PreviewRow{{"a": "raw"}},
		Columns: []string{"a", "b"},
	})
	fetcher.SetPage("d1", wizard.StageCleaned, &domain.PreviewPage{
		Rows:    []domain.PreviewRow{{"a": "cleaned"}},
		Columns: []string{"a"},
	})

	raw, err := cache.GetPreview(ctx, "d1", wizard.StageRaw)
	require.NoError(t, err)
	cleaned, err := cache.GetPreview(ctx, "d1", wizard.StageCleaned)
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b"}, raw.Columns)
	assert.Equal(t, []string{"a"}, cleaned.Columns)
	assert.Equal(t, "raw", raw.Rows[0]["a"])
	assert.Equal(t, "cleaned", cleaned.Rows[0]["a"])
}

// Two fetches for different stages of the same dataset may be in
// flight at once; both entries must be independently retrievable with
// stage-specific content afterwards.
func TestConcurrentFetchesDoNotCrossContaminate(t *testing.T) {
	fetcher := testutil.NewMockPreviewFetcher()
	fetcher.Gate = make(chan struct{})
	cache := wizard.NewPreviewCache(fetcher, time.Minute, nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	results := make(map[wizard.ProcessingStage]*wizard.PreviewEntry)
	var mu sync.Mutex

	for _, stage := range []wizard.ProcessingStage{wizard.StageRaw, wizard.StageCleaned} {
		wg.Add(1)
		go func(stage wizard.ProcessingStage) {
			defer wg.Done()
			entry, err := cache.GetPreview(ctx, "d1", stage)
			if !assert.NoError(t, err) {
				return
			}
			mu.Lock()
			results[stage] = entry
			mu.Unlock()
		}(stage)
	}

	// Let both fetches reach the collaborator, then release them.
	time.Sleep(20 * time.Millisecond)
	close(fetcher.Gate)
	wg.Wait()

	require.Len(t, results, 2)
	assert.Equal(t, wizard.StageRaw, results[wizard.StageRaw].Stage)
	assert.Equal(t, wizard.StageCleaned, results[wizard.StageCleaned].Stage)
	assert.Equal(t, "d1-raw", results[wizard.StageRaw].Rows[0]["b"])
	assert.Equal(t, "d1-cleaned", results[wizard.StageCleaned].Rows[0]["b"])
}

func TestConcurrentSameKeySharesOneFetch(t *testing.T) {
	fetcher := testutil.NewMockPreviewFetcher()
	fetcher.Gate = make(chan struct{})
	cache := wizard.NewPreviewCache(fetcher, time.Minute, nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := cache.GetPreview(ctx, "d1", wizard.StageRaw)
			assert.NoError(t, err)
		}()
	}

	time.Sleep(20 * time.Millisecond)
	close(fetcher.Gate)
	wg.Wait()

	assert.Equal(t, 1, fetcher.CallCount("d1", wizard.StageRaw))
}

func TestFailedFetchIsNotCached(t *testing.T) {
	cache, fetcher := newCache(t)
	ctx := context.Background()

	cause := errors.New("upstream unavailable")
	fetcher.SetErr("d1", wizard.StageRaw, cause)

	_, err := cache.GetPreview(ctx, "d1", wizard.StageRaw)
	require.Error(t, err)

	var fetchErr *wizard.PreviewFetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, wizard.StageRaw, fetchErr.Stage)
	assert.Equal(t, "d1", fetchErr.DatasetID)
	assert.ErrorIs(t, err, cause)

	// A later retry goes back upstream instead of serving the failure.
	fetcher.SetErr("d1", wizard.StageRaw, nil)
	entry, err := cache.GetPreview(ctx, "d1", wizard.StageRaw)
	require.NoError(t, err)
	assert.Equal(t, "d1", entry.DatasetID)
	assert.Equal(t, 2, fetcher.CallCount("d1", wizard.StageRaw))
}

func TestInvalidateDatasetEvictsOnlyThatDataset(t *testing.T) {
	cache, fetcher := newCache(t)
	ctx := context.Background()

	_, err := cache.GetPreview(ctx, "d1", wizard.StageRaw)
	require.NoError(t, err)
	_, err = cache.GetPreview(ctx, "d1", wizard.StageCleaned)
	require.NoError(t, err)
	_, err = cache.GetPreview(ctx, "d2", wizard.StageRaw)
	require.NoError(t, err)

	cache.InvalidateDataset("d1")

	_, err = cache.GetPreview(ctx, "d1", wizard.StageRaw)
	require.NoError(t, err)
	_, err = cache.GetPreview(ctx, "d2", wizard.StageRaw)
	require.NoError(t, err)

	assert.Equal(t, 2, fetcher.CallCount("d1", wizard.StageRaw), "d1 entries must be refetched")
	assert.Equal(t, 1, fetcher.CallCount("d2", wizard.StageRaw), "d2 entries must survive")
}

func TestGetPreviewRejectsBadArguments(t *testing.T) {
	cache, _ := newCache(t)
	ctx := context.Background()

	_, err := cache.GetPreview(ctx, "", wizard.StageRaw)
	assert.Error(t, err)

	_, err = cache.GetPreview(ctx, "d1", wizard.StageNone)
	assert.Error(t, err)

	_, err = cache.GetPreview(ctx, "d1", wizard.ProcessingStage("bogus"))
	assert.Error(t, err)
}
