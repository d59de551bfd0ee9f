package wizard

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"automlcli/pkg/contracts/domain"
)

// DefaultPreviewTTL bounds how long a preview entry stays authoritative
// without a refresh. Entries are also evicted explicitly whenever the
// dataset is replaced.
const DefaultPreviewTTL = 15 * time.Minute

// PreviewEntry is one cached preview page, authoritative only for the
// exact (dataset, stage) pair it was fetched under.
type PreviewEntry struct {
	DatasetID string                  `json:"dataset_id"`
	Stage     ProcessingStage         `json:"stage"`
	Rows      []domain.PreviewRow     `json:"rows"`
	Columns   []string                `json:"columns"`
	Overview  *domain.DatasetOverview `json:"overview,omitempty"`
	FetchedAt time.Time               `json:"fetched_at"`
}

// PreviewCache serves preview pages keyed by (dataset, stage), fetching
// from the preview collaborator on miss. Keying by the pair rather than
// by request ordinal is what makes out-of-order responses safe: a late
// result is still stored under its own key, and last-write-wins per key
// is acceptable because both writers carry the same truth for that key.
type PreviewCache struct {
	fetcher PreviewFetcher
	store   *gocache.Cache
	logger  *slog.Logger
	metrics *Metrics

	// inflight collapses concurrent GetPreview calls for the same key
	// into a single upstream request.
	mu       sync.Mutex
	inflight map[string]*fetchCall
}

type fetchCall struct {
	done  chan struct{}
	entry *PreviewEntry
	err   error
}

// NewPreviewCache creates a preview cache over the given fetcher.
func NewPreviewCache(fetcher PreviewFetcher, ttl time.Duration, logger *slog.Logger) *PreviewCache {
	if logger == nil {
		logger = slog.Default()
	}
	if ttl <= 0 {
		ttl = DefaultPreviewTTL
	}
	return &PreviewCache{
		fetcher:  fetcher,
		store:    gocache.New(ttl, ttl),
		logger:   logger.With(slog.String("component", "wizard.preview_cache")),
		inflight: make(map[string]*fetchCall),
	}
}

// SetMetrics attaches business metrics. Optional.
func (c *PreviewCache) SetMetrics(m *Metrics) {
	c.metrics = m
}

func previewKey(datasetID string, stage ProcessingStage) string {
	return datasetID + ":" + string(stage)
}

// GetPreview returns the cached entry for (datasetID, stage), fetching
// from the collaborator on miss. Concurrent calls for the same key
// share one upstream request; calls for different keys fetch
// independently. Failed fetches are not cached.
func (c *PreviewCache) GetPreview(ctx context.Context, datasetID string, stage ProcessingStage) (*PreviewEntry, error) {
	if datasetID == "" {
		return nil, fmt.Errorf("dataset id is required")
	}
	if !stage.Valid() || stage == StageNone {
		return nil, fmt.Errorf("stage %q has no preview", stage)
	}

	key := previewKey(datasetID, stage)
	if v, ok := c.store.Get(key); ok {
		c.metrics.recordCacheHit(ctx, stage)
		return v.(*PreviewEntry), nil
	}

	c.mu.Lock()
	if call, ok := c.inflight[key]; ok {
		c.mu.Unlock()
		select {
		case <-call.done:
			return call.entry, call.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	call := &fetchCall{done: make(chan struct{})}
	c.inflight[key] = call
	c.mu.Unlock()

	c.metrics.recordCacheMiss(ctx, stage)
	call.entry, call.err = c.fetch(ctx, datasetID, stage)

	c.mu.Lock()
	delete(c.inflight, key)
	c.mu.Unlock()
	close(call.done)

	return call.entry, call.err
}

// Refresh bypasses the cache, always issuing an upstream fetch and
// overwriting the stored entry on success.
func (c *PreviewCache) Refresh(ctx context.Context, datasetID string, stage ProcessingStage) (*PreviewEntry, error) {
	if datasetID == "" {
		return nil, fmt.Errorf("dataset id is required")
	}
	if !stage.Valid() || stage == StageNone {
		return nil, fmt.Errorf("stage %q has no preview", stage)
	}
	return c.fetch(ctx, datasetID, stage)
}

// InvalidateDataset evicts every entry for the given dataset. Called
// when the dataset is replaced by a new upload.
func (c *PreviewCache) InvalidateDataset(datasetID string) {
	if datasetID == "" {
		return
	}
	prefix := datasetID + ":"
	evicted := 0
	for key := range c.store.Items() {
		if strings.HasPrefix(key, prefix) {
			c.store.Delete(key)
			evicted++
		}
	}
	if evicted > 0 {
		c.logger.Debug("evicted preview entries for replaced dataset",
			slog.String("dataset_id", datasetID),
			slog.Int("entries", evicted))
	}
}

// fetch calls the preview collaborator and stores the result under the
// (dataset, stage) key. Errors are wrapped as PreviewFetchError and
// nothing is cached for them.
func (c *PreviewCache) fetch(ctx context.Context, datasetID string, stage ProcessingStage) (*PreviewEntry, error) {
	page, err := c.fetcher.Preview(ctx, datasetID, stage)
	if err != nil {
		c.metrics.recordFetchError(ctx, stage)
		c.logger.WarnContext(ctx, "preview fetch failed",
			slog.String("dataset_id", datasetID),
			slog.String("stage", string(stage)),
			slog.String("error", err.Error()))
		return nil, &PreviewFetchError{DatasetID: datasetID, Stage: stage, Err: err}
	}

	entry := &PreviewEntry{
		DatasetID: datasetID,
		Stage:     stage,
		Rows:      page.Rows,
		Columns:   page.Columns,
		FetchedAt: time.Now(),
	}
	if page.NumRows > 0 || page.NumColumns > 0 || len(page.NumericalFeatures) > 0 || len(page.CategoricalFeatures) > 0 {
		entry.Overview = &domain.DatasetOverview{
			NumRows:             page.NumRows,
			NumColumns:          page.NumColumns,
			NumericalFeatures:   page.NumericalFeatures,
			CategoricalFeatures: page.CategoricalFeatures,
		}
	}

	c.store.Set(previewKey(datasetID, stage), entry, gocache.DefaultExpiration)
	return entry, nil
}
