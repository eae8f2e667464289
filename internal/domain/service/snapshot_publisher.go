package service

import (
	"coffeeStatApp/internal/domain/model"
	"coffeeStatApp/internal/domain/repository"
	"coffeeStatApp/internal/lib/logger/sl"
	"context"
	"log/slog"
)

// SnapshotPublisherUseCase handles publishing generated snapshots to the message queue
type SnapshotPublisherUseCase struct {
	Publisher repository.SnapshotPublisher
	log       *slog.Logger
}

// NewSnapshotPublisherUseCase creates a new use case for publishing snapshots
func NewSnapshotPublisherUseCase(publisher repository.SnapshotPublisher, log *slog.Logger) *SnapshotPublisherUseCase {
	return &SnapshotPublisherUseCase{
		Publisher: publisher,
		log:       log,
	}
}

// Execute publishes every transaction of snap
func (uc *SnapshotPublisherUseCase) Execute(ctx context.Context, snap *model.Snapshot) error {
	if uc == nil || uc.Publisher == nil {
		return nil
	}
	err := uc.Publisher.PublishSnapshot(ctx, snap)
	if err != nil {
		uc.log.Error("failed to publish snapshot", slog.String("run_id", snap.RunID), sl.Err(err))
		return err
	}
	uc.log.Debug("snapshot published", slog.String("run_id", snap.RunID), slog.Int("records", snap.Dataset.Len()))
	return nil
}
