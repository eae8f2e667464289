package service

import (
	"sort"

	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/stat"

	"coffeeStatApp/internal/domain/model"
)

// The queries below are pure reads over a Dataset. A nil or empty dataset
// yields zero values, empty slices or an explicit ok=false, never a panic.

var hundred = decimal.NewFromInt(100)

// TotalRevenue sums TotalSales over all records.
func TotalRevenue(ds *model.Dataset) decimal.Decimal {
	total := decimal.Zero
	if ds == nil {
		return total
	}
	for _, tx := range ds.Transactions {
		total = total.Add(tx.TotalSales)
	}
	return total
}

// OrderCount is the number of records.
func OrderCount(ds *model.Dataset) int {
	return ds.Len()
}

// AverageOrderValue is revenue per order. ok is false for an empty dataset.
func AverageOrderValue(ds *model.Dataset) (decimal.Decimal, bool) {
	n := ds.Len()
	if n == 0 {
		return decimal.Zero, false
	}
	return TotalRevenue(ds).Div(decimal.NewFromInt(int64(n))), true
}

// AverageRating is the mean rating. ok is false for an empty dataset.
func AverageRating(ds *model.Dataset) (float64, bool) {
	n := ds.Len()
	if n == 0 {
		return 0, false
	}
	sum := 0
	for _, tx := range ds.Transactions {
		sum += tx.Rating
	}
	return float64(sum) / float64(n), true
}

// CategoryRevenue groups revenue by category, largest first.
// Ties follow catalog order; categories missing from the catalog sort last by name.
func CategoryRevenue(ds *model.Dataset, catalog *model.Catalog) []model.CategoryRevenue {
	sums := make(map[string]decimal.Decimal)
	if ds != nil {
		for _, tx := range ds.Transactions {
			sums[tx.Category] = sums[tx.Category].Add(tx.TotalSales)
		}
	}

	out := make([]model.CategoryRevenue, 0, len(sums))
	for cat, revenue := range sums {
		out = append(out, model.CategoryRevenue{Category: cat, Revenue: revenue})
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Revenue.Cmp(out[j].Revenue); c != 0 {
			return c > 0
		}
		return catalogLess(catalog.CategoryRank, out[i].Category, out[j].Category)
	})
	return out
}

// CategoryShares is each category's share of total revenue in percent, in CategoryRevenue order.
func CategoryShares(ds *model.Dataset, catalog *model.Catalog) []model.CategoryShare {
	revenue := CategoryRevenue(ds, catalog)
	total := TotalRevenue(ds)
	out := make([]model.CategoryShare, 0, len(revenue))
	if total.IsZero() {
		return out
	}
	for _, r := range revenue {
		out = append(out, model.CategoryShare{
			Category: r.Category,
			Percent:  r.Revenue.Mul(hundred).Div(total).Round(2),
		})
	}
	return out
}

// ItemQuantities sums quantity per item, largest first.
// Ties follow catalog order; items missing from the catalog sort last by name.
func ItemQuantities(ds *model.Dataset, catalog *model.Catalog) []model.ItemQuantity {
	index := make(map[string]int)
	var out []model.ItemQuantity
	if ds != nil {
		for _, tx := range ds.Transactions {
			i, ok := index[tx.Item]
			if !ok {
				i = len(out)
				index[tx.Item] = i
				out = append(out, model.ItemQuantity{Item: tx.Item, Category: tx.Category})
			}
			out[i].Quantity += tx.Quantity
		}
	}
	if out == nil {
		out = []model.ItemQuantity{}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Quantity != out[j].Quantity {
			return out[i].Quantity > out[j].Quantity
		}
		return catalogLess(catalog.ItemRank, out[i].Item, out[j].Item)
	})
	return out
}

// TopItems is the first n entries of ItemQuantities.
func TopItems(ds *model.Dataset, catalog *model.Catalog, n int) []model.ItemQuantity {
	if n <= 0 {
		return []model.ItemQuantity{}
	}
	all := ItemQuantities(ds, catalog)
	if len(all) > n {
		all = all[:n]
	}
	return all
}

// PaymentShares counts orders per payment method with their percentage of all
// orders rounded to two places. Most used first, ties in PaymentMethods order.
func PaymentShares(ds *model.Dataset) []model.PaymentShare {
	n := ds.Len()
	out := []model.PaymentShare{}
	if n == 0 {
		return out
	}

	counts := make(map[model.PaymentMethod]int)
	for _, tx := range ds.Transactions {
		counts[tx.PaymentMethod]++
	}

	rank := func(m model.PaymentMethod) int {
		for i, known := range model.PaymentMethods {
			if known == m {
				return i
			}
		}
		return len(model.PaymentMethods)
	}

	total := decimal.NewFromInt(int64(n))
	for method, count := range counts {
		out = append(out, model.PaymentShare{
			Method:  method,
			Count:   count,
			Percent: decimal.NewFromInt(int64(count)).Mul(hundred).Div(total).Round(2),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		ri, rj := rank(out[i].Method), rank(out[j].Method)
		if ri != rj {
			return ri < rj
		}
		return out[i].Method < out[j].Method
	})
	return out
}

// HourlyCounts counts orders per hour of day.
func HourlyCounts(ds *model.Dataset) [24]int {
	var counts [24]int
	if ds == nil {
		return counts
	}
	for _, tx := range ds.Transactions {
		counts[tx.Hour()]++
	}
	return counts
}

// PeakHour is the busiest hour, the earliest one on ties. ok is false for an empty dataset.
func PeakHour(ds *model.Dataset) (int, bool) {
	if ds.Len() == 0 {
		return 0, false
	}
	counts := HourlyCounts(ds)
	peak := 0
	for h := 1; h < 24; h++ {
		if counts[h] > counts[peak] {
			peak = h
		}
	}
	return peak, true
}

// DayHourMatrix cross-tabulates orders by weekday (Monday first) and hour.
func DayHourMatrix(ds *model.Dataset) [7][24]int {
	var m [7][24]int
	if ds == nil {
		return m
	}
	for _, tx := range ds.Transactions {
		m[tx.Weekday()][tx.Hour()]++
	}
	return m
}

// MonthlyRevenue sums revenue per calendar month in chronological order.
func MonthlyRevenue(ds *model.Dataset) []model.MonthlyRevenue {
	sums := make(map[string]decimal.Decimal)
	if ds != nil {
		for _, tx := range ds.Transactions {
			m := tx.Month()
			sums[m] = sums[m].Add(tx.TotalSales)
		}
	}
	out := make([]model.MonthlyRevenue, 0, len(sums))
	for month, revenue := range sums {
		out = append(out, model.MonthlyRevenue{Month: month, Revenue: revenue})
	}
	// YYYY-MM sorts lexically in time order
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out
}

// Describe summarizes the numeric columns.
func Describe(ds *model.Dataset) model.Description {
	n := ds.Len()
	qty := make([]float64, 0, n)
	price := make([]float64, 0, n)
	sales := make([]float64, 0, n)
	rating := make([]float64, 0, n)
	if ds != nil {
		for _, tx := range ds.Transactions {
			qty = append(qty, float64(tx.Quantity))
			price = append(price, tx.UnitPrice.InexactFloat64())
			sales = append(sales, tx.TotalSales.InexactFloat64())
			rating = append(rating, float64(tx.Rating))
		}
	}
	return model.Description{
		Quantity:   summarize(qty),
		UnitPrice:  summarize(price),
		TotalSales: summarize(sales),
		Rating:     summarize(rating),
	}
}

// BuildReport runs every query over ds. topN bounds TopItems.
func BuildReport(ds *model.Dataset, catalog *model.Catalog, topN int) *model.Report {
	aov, ok := AverageOrderValue(ds)
	rating, _ := AverageRating(ds)

	r := &model.Report{
		KPI: model.KPI{
			TotalRevenue:      TotalRevenue(ds),
			TotalOrders:       OrderCount(ds),
			AverageOrderValue: aov,
			AverageRating:     rating,
			Empty:             !ok,
		},
		CategoryRevenue: CategoryRevenue(ds, catalog),
		CategoryShares:  CategoryShares(ds, catalog),
		TopItems:        TopItems(ds, catalog, topN),
		PaymentShares:   PaymentShares(ds),
		HourlyCounts:    HourlyCounts(ds),
		DayHourMatrix:   DayHourMatrix(ds),
		MonthlyRevenue:  MonthlyRevenue(ds),
		Description:     Describe(ds),
	}
	if ds != nil {
		r.Params = ds.Params
	}
	if h, ok := PeakHour(ds); ok {
		r.PeakHour = &h
	}
	return r
}

func catalogLess(rank func(string) (int, bool), a, b string) bool {
	ra, okA := rank(a)
	rb, okB := rank(b)
	switch {
	case okA && okB:
		return ra < rb
	case okA != okB:
		return okA
	default:
		return a < b
	}
}

func summarize(values []float64) model.NumericSummary {
	n := len(values)
	if n == 0 {
		return model.NumericSummary{}
	}
	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	mean, std := stat.MeanStdDev(sorted, nil)
	if n == 1 {
		std = 0
	}

	return model.NumericSummary{
		Count: n,
		Mean:  mean,
		Std:   std,
		Min:   sorted[0],
		P25:   quantile(sorted, 0.25),
		P50:   quantile(sorted, 0.50),
		P75:   quantile(sorted, 0.75),
		Max:   sorted[n-1],
	}
}

// quantile interpolates linearly between closest ranks, at position q*(n-1).
// stat.LinInterp interpolates at q*n-1, so q is mapped onto that scale.
func quantile(sorted []float64, q float64) float64 {
	n := float64(len(sorted))
	return stat.Quantile((q*(n-1)+1)/n, stat.LinInterp, sorted, nil)
}
