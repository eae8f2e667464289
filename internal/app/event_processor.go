package app

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"coffeeStatApp/internal/app/dto"
	"coffeeStatApp/internal/domain/useCases"
	"coffeeStatApp/internal/lib/logger/sl"
)

// ErrContextCancelled is returned when the context is cancelled during processing
var ErrContextCancelled = errors.New("context cancelled during processing")

// Dedup defaults. The cache is reset when either bound is hit.
const (
	DefaultDedupLimit    = 10000
	DefaultDedupInterval = 10 * time.Minute
)

// EventProcessor serves regeneration requests from a channel and broadcasts the new reports.
type EventProcessor struct {
	ReqCh       chan *dto.RegenerateRequestDTO
	Datasets    useCases.DatasetService
	Broadcaster useCases.Broadcaster
	DedupCache  map[string]struct{}

	// DedupLimit and DedupInterval bound DedupCache; set them before Run.
	DedupLimit    int
	DedupInterval time.Duration

	log *slog.Logger
}

func NewEventProcessor(
	reqCh chan *dto.RegenerateRequestDTO,
	datasets useCases.DatasetService,
	broadcaster useCases.Broadcaster,
	log *slog.Logger,
) *EventProcessor {
	return &EventProcessor{
		ReqCh:         reqCh,
		Datasets:      datasets,
		Broadcaster:   broadcaster,
		DedupCache:    make(map[string]struct{}),
		DedupLimit:    DefaultDedupLimit,
		DedupInterval: DefaultDedupInterval,
		log:           log.With(slog.String("component", "event_processor")),
	}
}

func (p *EventProcessor) Run(ctx context.Context) error {
	interval := p.DedupInterval
	if interval <= 0 {
		interval = DefaultDedupInterval
	}
	cleanupTicker := time.NewTicker(interval)
	defer cleanupTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-cleanupTicker.C:
			p.resetDedup("interval")
		case req, ok := <-p.ReqCh:
			if !ok {
				return nil
			}
			if err := p.process(ctx, req); err != nil {
				if errors.Is(err, ErrContextCancelled) {
					p.log.Info("context cancelled, stopping event processor")
					return ctx.Err()
				}
				p.log.Error("failed to process regenerate request", sl.Err(err))
			}
		}
	}
}

// process handles a single request with context checks between stages
func (p *EventProcessor) process(ctx context.Context, req *dto.RegenerateRequestDTO) error {
	if ctx.Err() != nil {
		return ErrContextCancelled
	}
	if req == nil {
		return nil
	}

	if req.ID != "" {
		if _, exists := p.DedupCache[req.ID]; exists {
			p.log.Debug("duplicate request skipped", slog.String("request_id", req.ID))
			return nil
		}
		if p.DedupLimit > 0 && len(p.DedupCache) >= p.DedupLimit {
			p.resetDedup("limit")
		}
		p.DedupCache[req.ID] = struct{}{}
	}

	_, report, err := p.Datasets.Regenerate(ctx, req.Records)
	if err != nil {
		if ctx.Err() != nil {
			return ErrContextCancelled
		}
		return err
	}

	if ctx.Err() != nil {
		return ErrContextCancelled
	}

	p.Broadcaster.BroadcastReport(report)
	p.log.Debug("report broadcast",
		slog.String("request_id", req.ID),
		slog.String("run_id", report.RunID),
	)
	return nil
}

// resetDedup drops every remembered request id
func (p *EventProcessor) resetDedup(reason string) {
	if len(p.DedupCache) == 0 {
		return
	}
	p.log.Debug("dedup cache cleaned up", slog.Int("entries", len(p.DedupCache)), slog.String("reason", reason))
	p.DedupCache = make(map[string]struct{})
}
