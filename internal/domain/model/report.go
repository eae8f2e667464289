package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Days in reporting order.
var Weekdays = [7]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

type CategoryRevenue struct {
	Category string          `json:"category"`
	Revenue  decimal.Decimal `json:"revenue"`
}

type CategoryShare struct {
	Category string          `json:"category"`
	Percent  decimal.Decimal `json:"percent"`
}

type ItemQuantity struct {
	Item     string `json:"item"`
	Category string `json:"category"`
	Quantity int    `json:"quantity"`
}

type PaymentShare struct {
	Method  PaymentMethod   `json:"method"`
	Count   int             `json:"count"`
	Percent decimal.Decimal `json:"percent"`
}

type MonthlyRevenue struct {
	Month   string          `json:"month"`
	Revenue decimal.Decimal `json:"revenue"`
}

// NumericSummary mirrors a describe() row: count, mean, sample std, min, quartiles and max.
type NumericSummary struct {
	Count int     `json:"count"`
	Mean  float64 `json:"mean"`
	Std   float64 `json:"std"`
	Min   float64 `json:"min"`
	P25   float64 `json:"p25"`
	P50   float64 `json:"p50"`
	P75   float64 `json:"p75"`
	Max   float64 `json:"max"`
}

type Description struct {
	Quantity   NumericSummary `json:"quantity"`
	UnitPrice  NumericSummary `json:"unit_price"`
	TotalSales NumericSummary `json:"total_sales"`
	Rating     NumericSummary `json:"rating"`
}

// KPI is the headline block. Empty is set when the dataset had no records,
// in which case the averages are zero.
type KPI struct {
	TotalRevenue      decimal.Decimal `json:"total_revenue"`
	TotalOrders       int             `json:"total_orders"`
	AverageOrderValue decimal.Decimal `json:"average_order_value"`
	AverageRating     float64         `json:"average_rating"`
	Empty             bool            `json:"empty"`
}

// Report bundles every aggregation over one dataset.
type Report struct {
	RunID           string            `json:"run_id,omitempty"`
	Params          GenerationParams  `json:"params"`
	GeneratedAt     time.Time         `json:"generated_at"`
	KPI             KPI               `json:"kpi"`
	CategoryRevenue []CategoryRevenue `json:"category_revenue"`
	CategoryShares  []CategoryShare   `json:"category_shares"`
	TopItems        []ItemQuantity    `json:"top_items"`
	PaymentShares   []PaymentShare    `json:"payment_shares"`
	HourlyCounts    [24]int           `json:"hourly_counts"`
	PeakHour        *int              `json:"peak_hour"`
	DayHourMatrix   [7][24]int        `json:"day_hour_matrix"`
	MonthlyRevenue  []MonthlyRevenue  `json:"monthly_revenue"`
	Description     Description       `json:"description"`
}
