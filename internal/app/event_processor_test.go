package app_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coffeeStatApp/internal/app"
	"coffeeStatApp/internal/app/dto"
	"coffeeStatApp/internal/domain/model"
	"coffeeStatApp/internal/domain/service"
)

// MockBroadcaster implements the Broadcaster interface for testing
type MockBroadcaster struct {
	broadcasts []*model.Report
	mu         sync.Mutex
}

func NewMockBroadcaster() *MockBroadcaster {
	return &MockBroadcaster{broadcasts: make([]*model.Report, 0)}
}

func (b *MockBroadcaster) BroadcastReport(report *model.Report) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.broadcasts = append(b.broadcasts, report)
}

func (b *MockBroadcaster) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {}
}

func (b *MockBroadcaster) GetBroadcasts() []*model.Report {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]*model.Report(nil), b.broadcasts...)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestEventProcessor(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log := discardLogger()
	reqCh := make(chan *dto.RegenerateRequestDTO, 10)
	datasets := service.NewDatasetService(log, model.DefaultCatalog(), nil, nil, nil, nil, service.Options{})
	broadcaster := NewMockBroadcaster()

	processor := app.NewEventProcessor(reqCh, datasets, broadcaster, log)
	done := make(chan error, 1)
	go func() { done <- processor.Run(ctx) }()

	reqCh <- &dto.RegenerateRequestDTO{ID: "req1", Records: 50}
	reqCh <- &dto.RegenerateRequestDTO{ID: "req2", Records: 80}

	require.Eventually(t, func() bool { return len(broadcaster.GetBroadcasts()) == 2 }, 2*time.Second, 10*time.Millisecond)

	got := broadcaster.GetBroadcasts()
	assert.Equal(t, 50, got[0].KPI.TotalOrders)
	assert.Equal(t, 80, got[1].KPI.TotalOrders)

	// the broadcast report is now the current one for that size
	_, current, err := datasets.Current(ctx, 80)
	require.NoError(t, err)
	assert.Equal(t, got[1].RunID, current.RunID)

	// duplicates are ignored
	reqCh <- &dto.RegenerateRequestDTO{ID: "req1", Records: 50}
	// invalid requests are logged and do not stop the loop
	reqCh <- &dto.RegenerateRequestDTO{ID: "bad", Records: 0}
	reqCh <- &dto.RegenerateRequestDTO{ID: "req3", Records: 10}

	require.Eventually(t, func() bool { return len(broadcaster.GetBroadcasts()) == 3 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 10, broadcaster.GetBroadcasts()[2].KPI.TotalOrders)

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("processor did not stop")
	}
}

func TestEventProcessorStopsOnClosedChannel(t *testing.T) {
	log := discardLogger()
	reqCh := make(chan *dto.RegenerateRequestDTO)
	datasets := service.NewDatasetService(log, model.DefaultCatalog(), nil, nil, nil, nil, service.Options{})

	processor := app.NewEventProcessor(reqCh, datasets, NewMockBroadcaster(), log)
	close(reqCh)

	assert.NoError(t, processor.Run(context.Background()))
}

func TestEventProcessorBoundsDedupCache(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log := discardLogger()
	reqCh := make(chan *dto.RegenerateRequestDTO, 20)
	datasets := service.NewDatasetService(log, model.DefaultCatalog(), nil, nil, nil, nil, service.Options{})
	broadcaster := NewMockBroadcaster()

	processor := app.NewEventProcessor(reqCh, datasets, broadcaster, log)
	processor.DedupLimit = 3
	done := make(chan error, 1)
	go func() { done <- processor.Run(ctx) }()

	for i := 0; i < 10; i++ {
		reqCh <- &dto.RegenerateRequestDTO{ID: fmt.Sprintf("req-%d", i), Records: 5}
	}
	require.Eventually(t, func() bool { return len(broadcaster.GetBroadcasts()) == 10 }, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("processor did not stop")
	}
	assert.LessOrEqual(t, len(processor.DedupCache), 3)
	assert.Contains(t, processor.DedupCache, "req-9")
}

func TestEventProcessorForgetsIDsAfterInterval(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log := discardLogger()
	reqCh := make(chan *dto.RegenerateRequestDTO, 10)
	datasets := service.NewDatasetService(log, model.DefaultCatalog(), nil, nil, nil, nil, service.Options{})
	broadcaster := NewMockBroadcaster()

	processor := app.NewEventProcessor(reqCh, datasets, broadcaster, log)
	processor.DedupInterval = 20 * time.Millisecond
	go processor.Run(ctx)

	reqCh <- &dto.RegenerateRequestDTO{ID: "same", Records: 5}
	require.Eventually(t, func() bool { return len(broadcaster.GetBroadcasts()) == 1 }, 2*time.Second, 5*time.Millisecond)

	time.Sleep(100 * time.Millisecond)
	reqCh <- &dto.RegenerateRequestDTO{ID: "same", Records: 5}
	assert.Eventually(t, func() bool { return len(broadcaster.GetBroadcasts()) == 2 }, 2*time.Second, 5*time.Millisecond)
}
