// Package repository defines all the repository interfaces used by domain services
// Following the dependency inversion principle, domain logic depends on these interfaces,
// and infrastructure implementations provide concrete implementations
package repository

import (
	"coffeeStatApp/internal/domain/model"
	"context"
)

// SnapshotCache defines the interface for caching generated datasets
// Implementations should prioritize speed over durability
type SnapshotCache interface {
	// SaveSnapshot stores a snapshot under its generation parameters
	SaveSnapshot(ctx context.Context, snap *model.Snapshot) error

	// GetSnapshot returns the cached snapshot for params, or nil when absent
	GetSnapshot(ctx context.Context, params model.GenerationParams) (*model.Snapshot, error)
}

// SnapshotArchive defines the interface for durable storage of generated runs
// It keeps every run and its rows for later analysis
type SnapshotArchive interface {
	// SaveSnapshot persists the run metadata and all of its transactions
	SaveSnapshot(ctx context.Context, snap *model.Snapshot) error

	// GetSnapshot loads the most recent run generated with params, or nil when absent
	GetSnapshot(ctx context.Context, params model.GenerationParams) (*model.Snapshot, error)

	// ListRuns returns the latest archived runs, newest first
	ListRuns(ctx context.Context, limit int) ([]model.GenerationParams, error)
}

// SnapshotPublisher fans a freshly generated snapshot out to downstream consumers
type SnapshotPublisher interface {
	PublishSnapshot(ctx context.Context, snap *model.Snapshot) error
}
