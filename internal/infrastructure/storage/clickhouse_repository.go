package storage

import (
	"coffeeStatApp/internal/domain/model"
	"coffeeStatApp/internal/domain/repository"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/shopspring/decimal"
)

// ClickHouseRepository implements the SnapshotArchive interface using ClickHouse
// as the backend database. Every generated run is kept together with its rows.
type ClickHouseRepository struct {
	conn driver.Conn
	loc  *time.Location
}

type ClickHouseConfig struct {
	Addr     string
	Database string
	Username string
	Password string
	Timeout  int
	Location *time.Location
}

func NewClickHouseRepository(cfg ClickHouseConfig) (*ClickHouseRepository, error) {
	if cfg.Database == "" {
		cfg.Database = "default"
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}

	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{cfg.Addr},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
		DialTimeout: time.Duration(cfg.Timeout) * time.Second,
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		},
	})
	if err != nil {
		return nil, err
	}

	// Check the connection
	if err := conn.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to ping ClickHouse: %w", err)
	}

	// Ensure tables exist
	if err := createTablesIfNotExist(conn); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return &ClickHouseRepository{conn: conn, loc: cfg.Location}, nil
}

// Ensure ClickHouseRepository implements the archive interface
var _ repository.SnapshotArchive = (*ClickHouseRepository)(nil)

func createTablesIfNotExist(conn driver.Conn) error {
	err := conn.Exec(context.Background(), `
		CREATE TABLE IF NOT EXISTS dataset_runs (
			run_id String,
			records UInt32,
			seed UInt64,
			window_start Date,
			window_end Date,
			generated_at DateTime
		) ENGINE = MergeTree()
		ORDER BY (records, seed, window_start, window_end, generated_at)
	`)
	if err != nil {
		return err
	}

	err = conn.Exec(context.Background(), `
		CREATE TABLE IF NOT EXISTS coffee_transactions (
			run_id String,
			order_id UInt32,
			ts DateTime,
			item String,
			category LowCardinality(String),
			quantity UInt8,
			unit_price Decimal(10, 2),
			total_sales Decimal(12, 2),
			payment_method LowCardinality(String),
			rating UInt8
		) ENGINE = MergeTree()
		ORDER BY (run_id, order_id)
	`)

	return err
}

// SaveSnapshot writes the run row and all transactions in one batch
func (r *ClickHouseRepository) SaveSnapshot(ctx context.Context, snap *model.Snapshot) error {
	params := snap.Dataset.Params
	window, err := params.Window(r.loc)
	if err != nil {
		return err
	}

	batch, err := r.conn.PrepareBatch(ctx, "INSERT INTO coffee_transactions")
	if err != nil {
		return fmt.Errorf("prepare transactions batch: %w", err)
	}
	for _, tx := range snap.Dataset.Transactions {
		if err := batch.Append(
			snap.RunID,
			uint32(tx.OrderID),
			tx.Timestamp,
			tx.Item,
			tx.Category,
			uint8(tx.Quantity),
			tx.UnitPrice,
			tx.TotalSales,
			string(tx.PaymentMethod),
			uint8(tx.Rating),
		); err != nil {
			return fmt.Errorf("append order %d: %w", tx.OrderID, err)
		}
	}
	if err := batch.Send(); err != nil {
		return fmt.Errorf("send transactions batch: %w", err)
	}

	// The run row goes last so a visible run always has its rows
	return r.conn.Exec(ctx, `
		INSERT INTO dataset_runs (
			run_id, records, seed, window_start, window_end, generated_at
		) VALUES (
			?, ?, ?, ?, ?, ?
		)
	`,
		snap.RunID,
		uint32(params.Records),
		params.Seed,
		window.Start,
		window.End,
		snap.GeneratedAt,
	)
}

// GetSnapshot loads the latest run generated with params
func (r *ClickHouseRepository) GetSnapshot(ctx context.Context, params model.GenerationParams) (*model.Snapshot, error) {
	query := `
		SELECT run_id, generated_at
		FROM dataset_runs
		WHERE records = ? AND seed = ? AND window_start = toDate(?) AND window_end = toDate(?)
		ORDER BY generated_at DESC
		LIMIT 1
	`

	snap := &model.Snapshot{}
	row := r.conn.QueryRow(ctx, query, uint32(params.Records), params.Seed, params.Start, params.End)
	if err := row.Scan(&snap.RunID, &snap.GeneratedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	txs, err := r.transactions(ctx, snap.RunID)
	if err != nil {
		return nil, err
	}
	if len(txs) != params.Records {
		return nil, fmt.Errorf("run %s has %d of %d rows", snap.RunID, len(txs), params.Records)
	}

	snap.GeneratedAt = snap.GeneratedAt.UTC()
	snap.Dataset = &model.Dataset{Params: params, Transactions: txs}
	return snap, nil
}

func (r *ClickHouseRepository) transactions(ctx context.Context, runID string) ([]model.Transaction, error) {
	query := `
		SELECT order_id, ts, item, category, quantity, unit_price, total_sales, payment_method, rating
		FROM coffee_transactions
		WHERE run_id = ?
		ORDER BY order_id
	`

	rows, err := r.conn.Query(ctx, query, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []model.Transaction
	for rows.Next() {
		var (
			orderID          uint32
			ts               time.Time
			item, category   string
			quantity, rating uint8
			unitPrice, total decimal.Decimal
			payment          string
		)
		if err := rows.Scan(&orderID, &ts, &item, &category, &quantity, &unitPrice, &total, &payment, &rating); err != nil {
			return nil, err
		}
		results = append(results, model.Transaction{
			OrderID:       int(orderID),
			Timestamp:     ts.In(r.loc),
			Item:          item,
			Category:      category,
			Quantity:      int(quantity),
			UnitPrice:     unitPrice,
			TotalSales:    total,
			PaymentMethod: model.PaymentMethod(payment),
			Rating:        int(rating),
		})
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return results, nil
}

// ListRuns returns the generation parameters of the latest runs
func (r *ClickHouseRepository) ListRuns(ctx context.Context, limit int) ([]model.GenerationParams, error) {
	query := `
		SELECT records, seed, toString(window_start), toString(window_end)
		FROM dataset_runs
		ORDER BY generated_at DESC
		LIMIT ?
	`

	rows, err := r.conn.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := make([]model.GenerationParams, 0, limit)
	for rows.Next() {
		var (
			records uint32
			p       model.GenerationParams
		)
		if err := rows.Scan(&records, &p.Seed, &p.Start, &p.End); err != nil {
			return nil, err
		}
		p.Records = int(records)
		results = append(results, p)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return results, nil
}

func (r *ClickHouseRepository) Close() error {
	return r.conn.Close()
}
