package generator_test

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coffeeStatApp/internal/domain/model"
	"coffeeStatApp/pkg/generator"
)

// scriptedSource replays fixed draws so generated records can be checked by hand.
type scriptedSource struct {
	ints   []int
	floats []float64
}

func (s *scriptedSource) IntN(n int) int {
	v := s.ints[0]
	s.ints = s.ints[1:]
	if v >= n {
		panic("scripted int out of range")
	}
	return v
}

func (s *scriptedSource) Float64() float64 {
	v := s.floats[0]
	s.floats = s.floats[1:]
	return v
}

func testWindow() model.TimeWindow {
	return model.TimeWindow{
		Start: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 6, 29, 0, 0, 0, 0, time.UTC),
	}
}

func TestGenerateScriptedDraws(t *testing.T) {
	catalog := model.DefaultCatalog()

	// per record: ints are (day offset, minute, item index), floats are (hour, quantity, payment, rating)
	rng := &scriptedSource{
		ints: []int{
			0, 15, 0, // 2024-01-01, Espresso
			31, 30, 5, // 2024-02-01, Green Tea
			100, 0, 13, // 2024-04-10, Ham & Cheese
			180, 59, 15, // 2024-06-29, Turkey Club
		},
		floats: []float64{
			0.0, 0.5, 0.1, 0.9, // hour 6, qty 1, Card, rating 5
			0.2, 0.85, 0.7, 0.3, // hour 8, qty 2, Cash, rating 4
			0.6, 0.97, 0.9, 0.1, // hour 12, qty 3, Mobile, rating 3
			0.999, 0.0, 0.0, 0.01, // hour 21, qty 1, Card, rating 1
		},
	}

	ds, err := generator.Generate(4, catalog, testWindow(), rng)
	require.NoError(t, err)
	require.Len(t, ds.Transactions, 4)

	expected := []struct {
		ts       string
		item     string
		category string
		qty      int
		total    string
		payment  model.PaymentMethod
		rating   int
	}{
		{"2024-01-01 06:15:00", "Espresso", "Coffee", 1, "2.50", model.PaymentCard, 5},
		{"2024-02-01 08:30:00", "Green Tea", "Tea", 2, "5.50", model.PaymentCash, 4},
		{"2024-04-10 12:00:00", "Ham & Cheese", "Sandwich", 3, "19.50", model.PaymentMobile, 3},
		{"2024-06-29 21:59:00", "Turkey Club", "Sandwich", 1, "7.50", model.PaymentCard, 1},
	}

	for i, want := range expected {
		got := ds.Transactions[i]
		assert.Equal(t, i+1, got.OrderID)
		assert.Equal(t, want.ts, got.Timestamp.Format(model.DateTimeLayout))
		assert.Equal(t, want.item, got.Item)
		assert.Equal(t, want.category, got.Category)
		assert.Equal(t, want.qty, got.Quantity)
		assert.Equal(t, want.total, got.TotalSales.StringFixed(2))
		assert.Equal(t, want.payment, got.PaymentMethod)
		assert.Equal(t, want.rating, got.Rating)
	}

	assert.Empty(t, rng.ints)
	assert.Empty(t, rng.floats)
}

func TestGenerateInvariants(t *testing.T) {
	catalog := model.DefaultCatalog()
	window := testWindow()

	ds, err := generator.GenerateSeeded(5000, catalog, window, 7)
	require.NoError(t, err)
	require.Equal(t, 5000, ds.Len())

	last := window.End.Add(24 * time.Hour)
	for i, tx := range ds.Transactions {
		assert.Equal(t, i+1, tx.OrderID)

		entry, ok := catalog.Lookup(tx.Item)
		require.True(t, ok, "unknown item %q", tx.Item)
		assert.Equal(t, entry.Category, tx.Category)
		assert.True(t, entry.Price.Equal(tx.UnitPrice))
		assert.True(t, tx.TotalSales.Equal(tx.UnitPrice.Mul(decimal.NewFromInt(int64(tx.Quantity)))))

		assert.Contains(t, []int{1, 2, 3}, tx.Quantity)
		assert.GreaterOrEqual(t, tx.Rating, 1)
		assert.LessOrEqual(t, tx.Rating, 5)
		assert.Contains(t, model.PaymentMethods, tx.PaymentMethod)

		assert.False(t, tx.Timestamp.Before(window.Start))
		assert.True(t, tx.Timestamp.Before(last))
		assert.Equal(t, 0, tx.Timestamp.Second())
	}
}

func TestGenerateNeverUsesClosedHours(t *testing.T) {
	ds, err := generator.GenerateSeeded(100000, model.DefaultCatalog(), testWindow(), 42)
	require.NoError(t, err)

	var counts [24]int
	for _, tx := range ds.Transactions {
		counts[tx.Hour()]++
	}
	for _, h := range []int{22, 23, 0, 1, 2, 3, 4, 5} {
		assert.Zero(t, counts[h], "hour %d", h)
	}
	// the morning peak dominates
	for h := 0; h < 24; h++ {
		assert.LessOrEqual(t, counts[h], counts[8])
	}
}

func TestGenerateSeededIsDeterministic(t *testing.T) {
	catalog := model.DefaultCatalog()

	a, err := generator.GenerateSeeded(1000, catalog, testWindow(), 42)
	require.NoError(t, err)
	b, err := generator.GenerateSeeded(1000, catalog, testWindow(), 42)
	require.NoError(t, err)
	c, err := generator.GenerateSeeded(1000, catalog, testWindow(), 43)
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a.Transactions, c.Transactions)
	assert.Equal(t, uint64(42), a.Params.Seed)
}

func TestRegenerateFromParams(t *testing.T) {
	catalog := model.DefaultCatalog()

	ds, err := generator.GenerateSeeded(50, catalog, testWindow(), 9)
	require.NoError(t, err)

	again, err := generator.Regenerate(ds.Params, catalog, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, ds, again)
}

func TestGenerateInvalidArguments(t *testing.T) {
	catalog := model.DefaultCatalog()
	rng := generator.NewSeededSource(1)
	inverted := model.TimeWindow{Start: testWindow().End, End: testWindow().Start}

	tests := []struct {
		name    string
		count   int
		catalog *model.Catalog
		window  model.TimeWindow
		rng     generator.Source
	}{
		{"zero records", 0, catalog, testWindow(), rng},
		{"negative records", -3, catalog, testWindow(), rng},
		{"nil catalog", 10, nil, testWindow(), rng},
		{"empty catalog", 10, &model.Catalog{}, testWindow(), rng},
		{"inverted window", 10, catalog, inverted, rng},
		{"nil rng", 10, catalog, testWindow(), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds, err := generator.Generate(tt.count, tt.catalog, tt.window, tt.rng)
			assert.Nil(t, ds)
			assert.True(t, errors.Is(err, generator.ErrInvalidArgument))
		})
	}
}

func TestHourProbabilitySumsToOne(t *testing.T) {
	var sum float64
	for h := 0; h < 24; h++ {
		sum += generator.HourProbability(h)
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
	assert.Zero(t, generator.HourProbability(23))
	assert.InDelta(t, 0.20/1.20, generator.HourProbability(8), 1e-9)
	assert.False(t, math.IsNaN(generator.HourProbability(-1)))
}
