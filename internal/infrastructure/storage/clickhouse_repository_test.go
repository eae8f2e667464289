package storage_test

import (
	"coffeeStatApp/config"
	"coffeeStatApp/internal/domain/model"
	"coffeeStatApp/internal/infrastructure/storage"
	"coffeeStatApp/pkg/generator"
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestClickHouseRepository(t *testing.T) {
	t.Skip("Skipping ClickHouse test - requires live ClickHouse instance")

	// Load test config
	cfg := config.LoadConfig()

	// Initialize repository
	repo, err := storage.NewClickHouseRepository(storage.ClickHouseConfig{
		Addr:     cfg.ClickhouseAddr,
		Database: cfg.ClickhouseDatabase,
		Username: cfg.ClickhouseUsername,
		Password: cfg.ClickhousePassword,
		Timeout:  cfg.ClickhouseTimeout,
		Location: time.UTC,
	})
	if err != nil {
		t.Fatalf("Failed to connect to ClickHouse: %v", err)
	}
	defer repo.Close()

	ctx := context.Background()
	ds, err := generator.GenerateSeeded(50, model.DefaultCatalog(), model.DefaultWindow(time.Now().UTC(), 180), 42)
	if err != nil {
		t.Fatalf("Failed to generate dataset: %v", err)
	}
	snap := &model.Snapshot{RunID: uuid.New().String(), GeneratedAt: time.Now().UTC(), Dataset: ds}

	// Test SaveSnapshot
	if err := repo.SaveSnapshot(ctx, snap); err != nil {
		t.Fatalf("Failed to save snapshot: %v", err)
	}

	// Test GetSnapshot
	got, err := repo.GetSnapshot(ctx, ds.Params)
	if err != nil {
		t.Fatalf("Failed to get snapshot: %v", err)
	}
	if got == nil || got.RunID != snap.RunID {
		t.Fatalf("Expected run %s, got %+v", snap.RunID, got)
	}
	for i, tx := range got.Dataset.Transactions {
		if !tx.TotalSales.Equal(ds.Transactions[i].TotalSales) {
			t.Errorf("order %d: expected total %s, got %s", tx.OrderID, ds.Transactions[i].TotalSales, tx.TotalSales)
		}
	}

	// Test ListRuns
	runs, err := repo.ListRuns(ctx, 10)
	if err != nil {
		t.Fatalf("Failed to list runs: %v", err)
	}
	if len(runs) == 0 {
		t.Error("Saved run not found in listed runs")
	}
}
