// Package service provides implementations of domain services that implement core business logic
// This package depends only on domain models and repository interfaces (not implementations)
package service

import (
	"coffeeStatApp/internal/domain/model"
	"coffeeStatApp/internal/domain/repository"
	"coffeeStatApp/internal/domain/useCases"
	"coffeeStatApp/internal/lib/logger/sl"
	"coffeeStatApp/pkg/generator"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Metric names recorded by DatasetService.
const (
	MetricDatasetsGenerated  = "coffee_datasets_generated_total"
	MetricGenerationDuration = "coffee_generation_duration_seconds"
	MetricSnapshotLookups    = "coffee_snapshot_lookups_total"
	MetricBackendErrors      = "coffee_backend_errors_total"
)

// Recorder is the subset of the metrics backend the service needs.
type Recorder interface {
	Record(name string, value float64)
	RecordWithLabels(name string, value float64, labelValues ...string)
}

type nopRecorder struct{}

func (nopRecorder) Record(string, float64)                     {}
func (nopRecorder) RecordWithLabels(string, float64, ...string) {}

// Options tune DatasetService. Zero values fall back to defaults.
type Options struct {
	WindowDays   int
	TopN         int
	MaxSnapshots int
	Location     *time.Location
	Now          func() time.Time
}

type entry struct {
	snap   *model.Snapshot
	report *model.Report
}

// DatasetService owns the datasets shown by the dashboard. Lookups go through
// memory, then the cache, then the archive, and finally regenerate from the seed.
// Generation is a pure function of GenerationParams, so every layer holds
// interchangeable copies.
type DatasetService struct {
	mu        sync.RWMutex
	snapshots map[model.GenerationParams]*entry
	active    map[int]model.GenerationParams // dataset currently shown per record count
	catalog   *model.Catalog
	cache     repository.SnapshotCache   // optional
	storage   repository.SnapshotArchive // optional
	publisher *SnapshotPublisherUseCase  // optional
	metrics   Recorder
	log       *slog.Logger
	opts      Options
}

// NewDatasetService wires the service. cache, storage and publisher may be nil.
func NewDatasetService(
	log *slog.Logger,
	catalog *model.Catalog,
	cache repository.SnapshotCache,
	storage repository.SnapshotArchive,
	publisher *SnapshotPublisherUseCase,
	metrics Recorder,
	opts Options,
) *DatasetService {
	if opts.WindowDays <= 0 {
		opts.WindowDays = generator.DefaultWindowDays
	}
	if opts.TopN <= 0 {
		opts.TopN = 8
	}
	if opts.MaxSnapshots <= 0 {
		opts.MaxSnapshots = 32
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if metrics == nil {
		metrics = nopRecorder{}
	}

	return &DatasetService{
		snapshots: make(map[model.GenerationParams]*entry),
		active:    make(map[int]model.GenerationParams),
		catalog:   catalog,
		cache:     cache,
		storage:   storage,
		publisher: publisher,
		metrics:   metrics,
		log:       log.With(slog.String("component", "dataset_service")),
		opts:      opts,
	}
}

// Catalog returns the catalog datasets are generated from.
func (s *DatasetService) Catalog() *model.Catalog {
	return s.catalog
}

// Window is the default trailing window as of now.
func (s *DatasetService) Window() model.TimeWindow {
	return model.DefaultWindow(s.opts.Now().In(s.opts.Location), s.opts.WindowDays)
}

// Current returns the dataset currently shown for records, generating one from
// process entropy if none exists yet.
func (s *DatasetService) Current(ctx context.Context, records int) (*model.Snapshot, *model.Report, error) {
	s.mu.RLock()
	params, ok := s.active[records]
	s.mu.RUnlock()

	if ok {
		return s.Get(ctx, params)
	}
	return s.Regenerate(ctx, records)
}

// Seeded returns the dataset for records and seed over the default window.
func (s *DatasetService) Seeded(ctx context.Context, records int, seed uint64) (*model.Snapshot, *model.Report, error) {
	w := s.Window()
	return s.Get(ctx, model.GenerationParams{
		Records: records,
		Seed:    seed,
		Start:   w.Start.Format(model.DateLayout),
		End:     w.End.Format(model.DateLayout),
	})
}

// Get resolves params through memory, cache, archive and finally generation.
func (s *DatasetService) Get(ctx context.Context, params model.GenerationParams) (*model.Snapshot, *model.Report, error) {
	s.mu.RLock()
	e, ok := s.snapshots[params]
	s.mu.RUnlock()

	// First priority: memory
	if ok {
		s.metrics.RecordWithLabels(MetricSnapshotLookups, 1, "memory")
		return e.snap, e.report, nil
	}

	// Second priority: cache
	if s.cache != nil {
		snap, err := s.cache.GetSnapshot(ctx, params)
		if err != nil {
			s.log.Warn("cache lookup failed", slog.String("key", params.Key()), sl.Err(err))
		} else if snap != nil {
			s.metrics.RecordWithLabels(MetricSnapshotLookups, 1, "cache")
			e := s.remember(snap, false)
			return e.snap, e.report, nil
		}
	}

	// Third priority: archive
	if s.storage != nil {
		snap, err := s.storage.GetSnapshot(ctx, params)
		if err != nil {
			s.log.Warn("archive lookup failed", slog.String("key", params.Key()), sl.Err(err))
		} else if snap != nil {
			s.metrics.RecordWithLabels(MetricSnapshotLookups, 1, "archive")
			e := s.remember(snap, false)
			s.saveCache(ctx, snap)
			return e.snap, e.report, nil
		}
	}

	// Not stored anywhere: replay the seed
	started := time.Now()
	ds, err := generator.Regenerate(params, s.catalog, s.opts.Location)
	if err != nil {
		return nil, nil, err
	}
	s.observeGeneration("replay", started)
	s.metrics.RecordWithLabels(MetricSnapshotLookups, 1, "generated")

	snap := s.newSnapshot(ds)
	e = s.remember(snap, false)
	s.saveCache(ctx, snap)
	s.saveArchive(ctx, snap)

	return e.snap, e.report, nil
}

// Regenerate draws a fresh seed, generates a new dataset for records and makes
// it the current one. The result is cached, archived and published.
func (s *DatasetService) Regenerate(ctx context.Context, records int) (*model.Snapshot, *model.Report, error) {
	if ctx.Err() != nil {
		return nil, nil, ctx.Err()
	}

	started := time.Now()
	ds, err := generator.GenerateSeeded(records, s.catalog, s.Window(), generator.EntropySeed())
	if err != nil {
		return nil, nil, fmt.Errorf("generate %d records: %w", records, err)
	}
	s.observeGeneration("regenerate", started)

	snap := s.newSnapshot(ds)
	e := s.remember(snap, true)

	s.log.Info("dataset regenerated",
		slog.String("run_id", snap.RunID),
		slog.Int("records", records),
		slog.Uint64("seed", ds.Params.Seed),
	)

	s.saveCache(ctx, snap)
	s.saveArchive(ctx, snap)
	if err := s.publisher.Execute(ctx, snap); err != nil {
		s.metrics.RecordWithLabels(MetricBackendErrors, 1, "publisher")
	}

	return e.snap, e.report, nil
}

// ActiveRecordCounts lists record counts that have a current dataset.
func (s *DatasetService) ActiveRecordCounts() []int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]int, 0, len(s.active))
	for n := range s.active {
		out = append(out, n)
	}
	return out
}

func (s *DatasetService) newSnapshot(ds *model.Dataset) *model.Snapshot {
	return &model.Snapshot{
		RunID:       uuid.New().String(),
		GeneratedAt: s.opts.Now().UTC(),
		Dataset:     ds,
	}
}

// remember stores snap in memory together with its report. With activate set,
// snap becomes the current dataset for its record count before anything is evicted.
func (s *DatasetService) remember(snap *model.Snapshot, activate bool) *entry {
	report := BuildReport(snap.Dataset, s.catalog, s.opts.TopN)
	report.RunID = snap.RunID
	report.GeneratedAt = snap.GeneratedAt

	e := &entry{snap: snap, report: report}

	s.mu.Lock()
	s.snapshots[snap.Dataset.Params] = e
	if activate {
		s.active[snap.Dataset.Params.Records] = snap.Dataset.Params
	}
	s.evictLocked()
	s.mu.Unlock()

	return e
}

// evictLocked drops datasets that are no longer current once the memory bound is exceeded.
func (s *DatasetService) evictLocked() {
	if len(s.snapshots) <= s.opts.MaxSnapshots {
		return
	}
	current := make(map[model.GenerationParams]bool, len(s.active))
	for _, p := range s.active {
		current[p] = true
	}
	for p := range s.snapshots {
		if len(s.snapshots) <= s.opts.MaxSnapshots {
			return
		}
		if !current[p] {
			delete(s.snapshots, p)
		}
	}
}

func (s *DatasetService) saveCache(ctx context.Context, snap *model.Snapshot) {
	if s.cache == nil {
		return
	}
	if err := s.cache.SaveSnapshot(ctx, snap); err != nil {
		s.metrics.RecordWithLabels(MetricBackendErrors, 1, "cache")
		s.log.Warn("failed to cache snapshot", slog.String("run_id", snap.RunID), sl.Err(err))
	}
}

func (s *DatasetService) saveArchive(ctx context.Context, snap *model.Snapshot) {
	if s.storage == nil {
		return
	}
	if err := s.storage.SaveSnapshot(ctx, snap); err != nil {
		s.metrics.RecordWithLabels(MetricBackendErrors, 1, "archive")
		s.log.Warn("failed to archive snapshot", slog.String("run_id", snap.RunID), sl.Err(err))
	}
}

func (s *DatasetService) observeGeneration(kind string, started time.Time) {
	s.metrics.RecordWithLabels(MetricDatasetsGenerated, 1, kind)
	s.metrics.Record(MetricGenerationDuration, time.Since(started).Seconds())
}

// Ensure interface compliance
var _ useCases.DatasetService = (*DatasetService)(nil)
