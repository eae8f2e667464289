// Package generator fabricates coffee-shop transactions from weighted distributions.
package generator

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"coffeeStatApp/internal/domain/model"
)

// ErrInvalidArgument is returned for inputs that cannot produce a dataset.
var ErrInvalidArgument = errors.New("invalid argument")

// DefaultWindowDays is the length of the default trailing window.
const DefaultWindowDays = 180

var hours = []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17, 18, 19, 20, 21, 22, 23}

// Morning peak at 8, lunch peak at 12-13. Nothing before 6 or after 21.
var hourWeights = []float64{
	0, 0, 0, 0, 0, 0,
	0.02, 0.15, 0.20, 0.15, 0.08, 0.08,
	0.15, 0.15, 0.05, 0.04, 0.04, 0.03,
	0.02, 0.02, 0.01, 0.01, 0, 0,
}

var (
	hourDist     = MustDistribution(hours, hourWeights)
	quantityDist = MustDistribution([]int{1, 2, 3}, []float64{0.80, 0.15, 0.05})
	paymentDist  = MustDistribution(model.PaymentMethods, []float64{0.60, 0.25, 0.15})
	ratingDist   = MustDistribution([]int{1, 2, 3, 4, 5}, []float64{0.02, 0.03, 0.10, 0.35, 0.50})
)

// HourProbability is the normalized probability of an order landing in hour h.
func HourProbability(h int) float64 {
	if h < 0 || h > 23 {
		return 0
	}
	return hourDist.Probability(h)
}

// Generate fabricates recordCount transactions dated inside window.
// Inputs are validated before any draw, so an error never comes with a partial dataset.
func Generate(recordCount int, catalog *model.Catalog, window model.TimeWindow, rng Source) (*model.Dataset, error) {
	if recordCount <= 0 {
		return nil, fmt.Errorf("%w: record count must be positive, got %d", ErrInvalidArgument, recordCount)
	}
	if catalog.Len() == 0 {
		return nil, fmt.Errorf("%w: catalog is empty", ErrInvalidArgument)
	}
	if rng == nil {
		return nil, fmt.Errorf("%w: nil random source", ErrInvalidArgument)
	}
	days := window.Days()
	if days < 0 {
		return nil, fmt.Errorf("%w: window %s ends before it starts", ErrInvalidArgument, window)
	}

	start := window.Start
	loc := start.Location()
	txs := make([]model.Transaction, recordCount)

	for i := 0; i < recordCount; i++ {
		offset := rng.IntN(days + 1)
		hour := hourDist.Sample(rng)
		minute := rng.IntN(60)
		ts := time.Date(start.Year(), start.Month(), start.Day()+offset, hour, minute, 0, 0, loc)

		item := catalog.Item(rng.IntN(catalog.Len()))
		qty := quantityDist.Sample(rng)
		payment := paymentDist.Sample(rng)
		rating := ratingDist.Sample(rng)

		txs[i] = model.Transaction{
			OrderID:       i + 1,
			Timestamp:     ts,
			Item:          item.Name,
			Category:      item.Category,
			Quantity:      qty,
			UnitPrice:     item.Price,
			TotalSales:    item.Price.Mul(decimal.NewFromInt(int64(qty))),
			PaymentMethod: payment,
			Rating:        rating,
		}
	}

	return &model.Dataset{
		Params: model.GenerationParams{
			Records: recordCount,
			Start:   start.Format(model.DateLayout),
			End:     window.End.Format(model.DateLayout),
		},
		Transactions: txs,
	}, nil
}

// GenerateSeeded runs Generate with a PCG source for seed and records the seed
// in the dataset parameters. Identical arguments yield identical datasets.
func GenerateSeeded(recordCount int, catalog *model.Catalog, window model.TimeWindow, seed uint64) (*model.Dataset, error) {
	ds, err := Generate(recordCount, catalog, window, NewSeededSource(seed))
	if err != nil {
		return nil, err
	}
	ds.Params.Seed = seed
	return ds, nil
}

// Regenerate replays the dataset described by params.
func Regenerate(params model.GenerationParams, catalog *model.Catalog, loc *time.Location) (*model.Dataset, error) {
	window, err := params.Window(loc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	return GenerateSeeded(params.Records, catalog, window, params.Seed)
}
