package useCases

import (
	"coffeeStatApp/internal/domain/model"
	"context"
	"net/http"
)

// DatasetService defines the interface for obtaining datasets and their reports.
type DatasetService interface {
	Current(ctx context.Context, records int) (*model.Snapshot, *model.Report, error)
	Get(ctx context.Context, params model.GenerationParams) (*model.Snapshot, *model.Report, error)
	Seeded(ctx context.Context, records int, seed uint64) (*model.Snapshot, *model.Report, error)
	Regenerate(ctx context.Context, records int) (*model.Snapshot, *model.Report, error)
}

// Broadcaster defines an interface for pushing updates to WebSocket/API layers.
type Broadcaster interface {
	BroadcastReport(report *model.Report)
	Handler() http.HandlerFunc
}
