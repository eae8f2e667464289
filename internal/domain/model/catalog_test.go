package model_test

import (
	"errors"
	"testing"
	"time"

	"coffeeStatApp/internal/domain/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	c := model.DefaultCatalog()

	assert.Equal(t, 16, c.Len())
	assert.Equal(t, []string{"Coffee", "Tea", "Bakery", "Sandwich"}, c.Categories())

	item, ok := c.Lookup("Turkey Club")
	require.True(t, ok)
	assert.Equal(t, "Sandwich", item.Category)
	assert.True(t, item.Price.Equal(decimal.RequireFromString("7.5")))

	rank, ok := c.ItemRank("Espresso")
	require.True(t, ok)
	assert.Equal(t, 0, rank)

	_, ok = c.Lookup("Hot Chocolate")
	assert.False(t, ok)
}

func TestNewCatalogValidation(t *testing.T) {
	one := decimal.NewFromInt(1)

	tests := []struct {
		name     string
		sections []model.MenuSection
	}{
		{"empty", nil},
		{"no items", []model.MenuSection{{Category: "A"}}},
		{"blank category", []model.MenuSection{{Items: []model.MenuItem{{Name: "x", Price: one}}}}},
		{"zero price", []model.MenuSection{{Category: "A", Items: []model.MenuItem{{Name: "x", Price: decimal.Zero}}}}},
		{"duplicate item", []model.MenuSection{
			{Category: "A", Items: []model.MenuItem{{Name: "x", Price: one}}},
			{Category: "B", Items: []model.MenuItem{{Name: "x", Price: one}}},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := model.NewCatalog(tt.sections)
			require.Error(t, err)
			assert.True(t, errors.Is(err, model.ErrInvalidCatalog))
		})
	}
}

func TestCatalogSectionsRoundTrip(t *testing.T) {
	c := model.DefaultCatalog()
	again, err := model.NewCatalog(c.Sections())
	require.NoError(t, err)
	assert.Equal(t, c.Items(), again.Items())
}

func TestTransactionDerivedFields(t *testing.T) {
	tx := model.Transaction{Timestamp: time.Date(2024, 3, 10, 8, 5, 0, 0, time.UTC)}

	assert.Equal(t, "2024-03-10", tx.Date())
	assert.Equal(t, "08:05:00", tx.TimeOfDay())
	assert.Equal(t, "2024-03", tx.Month())
	assert.Equal(t, 8, tx.Hour())
	// 2024-03-10 is a Sunday
	assert.Equal(t, 6, tx.Weekday())
}

func TestDefaultWindow(t *testing.T) {
	now := time.Date(2024, 6, 30, 17, 45, 0, 0, time.UTC)
	w := model.DefaultWindow(now, 180)

	assert.Equal(t, "2024-01-02", w.Start.Format(model.DateLayout))
	assert.Equal(t, "2024-06-30", w.End.Format(model.DateLayout))
	assert.Equal(t, 180, w.Days())
}
