package dto

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"coffeeStatApp/internal/domain/model"
)

// TransactionDTO is the wire form of a transaction. Field names follow the CSV header.
type TransactionDTO struct {
	OrderID       int             `json:"Order ID"`
	Date          string          `json:"Date"`
	Time          string          `json:"Time"`
	Item          string          `json:"Item"`
	Category      string          `json:"Category"`
	Quantity      int             `json:"Quantity"`
	UnitPrice     decimal.Decimal `json:"Unit Price"`
	TotalSales    decimal.Decimal `json:"Total Sales"`
	PaymentMethod string          `json:"Payment Method"`
	Rating        int             `json:"Rating"`
	Datetime      string          `json:"Datetime"`
}

// ToModel converts a TransactionDTO to a domain model, reading Datetime in loc
func (dto *TransactionDTO) ToModel(loc *time.Location) (model.Transaction, error) {
	ts, err := time.ParseInLocation(model.DateTimeLayout, dto.Datetime, loc)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("order %d: %w", dto.OrderID, err)
	}
	return model.Transaction{
		OrderID:       dto.OrderID,
		Timestamp:     ts,
		Item:          dto.Item,
		Category:      dto.Category,
		Quantity:      dto.Quantity,
		UnitPrice:     dto.UnitPrice,
		TotalSales:    dto.TotalSales,
		PaymentMethod: model.PaymentMethod(dto.PaymentMethod),
		Rating:        dto.Rating,
	}, nil
}

// FromModel creates a TransactionDTO from a domain model
func FromModel(tx model.Transaction) TransactionDTO {
	return TransactionDTO{
		OrderID:       tx.OrderID,
		Date:          tx.Date(),
		Time:          tx.TimeOfDay(),
		Item:          tx.Item,
		Category:      tx.Category,
		Quantity:      tx.Quantity,
		UnitPrice:     tx.UnitPrice,
		TotalSales:    tx.TotalSales,
		PaymentMethod: string(tx.PaymentMethod),
		Rating:        tx.Rating,
		Datetime:      tx.Timestamp.Format(model.DateTimeLayout),
	}
}

func FromModels(txs []model.Transaction) []TransactionDTO {
	dtos := make([]TransactionDTO, len(txs))
	for i, tx := range txs {
		dtos[i] = FromModel(tx)
	}
	return dtos
}

// SnapshotDTO is how a snapshot is serialized into the cache
type SnapshotDTO struct {
	RunID        string                 `json:"run_id"`
	GeneratedAt  time.Time              `json:"generated_at"`
	Params       model.GenerationParams `json:"params"`
	Transactions []TransactionDTO       `json:"transactions"`
}

func FromSnapshot(snap *model.Snapshot) *SnapshotDTO {
	return &SnapshotDTO{
		RunID:        snap.RunID,
		GeneratedAt:  snap.GeneratedAt,
		Params:       snap.Dataset.Params,
		Transactions: FromModels(snap.Dataset.Transactions),
	}
}

// ToModel rebuilds the snapshot, reading timestamps in loc
func (dto *SnapshotDTO) ToModel(loc *time.Location) (*model.Snapshot, error) {
	txs := make([]model.Transaction, len(dto.Transactions))
	for i := range dto.Transactions {
		tx, err := dto.Transactions[i].ToModel(loc)
		if err != nil {
			return nil, err
		}
		txs[i] = tx
	}
	return &model.Snapshot{
		RunID:       dto.RunID,
		GeneratedAt: dto.GeneratedAt,
		Dataset: &model.Dataset{
			Params:       dto.Params,
			Transactions: txs,
		},
	}, nil
}

// TransactionEvent is one message on the transactions topic
type TransactionEvent struct {
	RunID       string         `json:"run_id"`
	Seed        uint64         `json:"seed"`
	Records     int            `json:"records"`
	Transaction TransactionDTO `json:"transaction"`
}

// RegenerateRequestDTO asks the processor for a freshly seeded dataset
type RegenerateRequestDTO struct {
	ID      string `json:"id"`
	Records int    `json:"records"`
}
