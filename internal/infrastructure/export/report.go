package export

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"coffeeStatApp/internal/domain/model"
)

// ChartData is the series behind the four dashboard charts.
type ChartData struct {
	MonthlyRevenue []model.MonthlyRevenue `json:"monthly_revenue"`
	CategoryShares []model.CategoryShare  `json:"category_shares"`
	TopItems       []model.ItemQuantity   `json:"top_items"`
	Heatmap        Heatmap                `json:"heatmap"`
}

type Heatmap struct {
	Days  [7]string  `json:"days"`
	Hours [24]int    `json:"hours"`
	Cells [7][24]int `json:"cells"`
}

// NewChartData pulls the chart series out of a report.
func NewChartData(r *model.Report) ChartData {
	var hours [24]int
	for h := range hours {
		hours[h] = h
	}
	return ChartData{
		MonthlyRevenue: r.MonthlyRevenue,
		CategoryShares: r.CategoryShares,
		TopItems:       r.TopItems,
		Heatmap: Heatmap{
			Days:  model.Weekdays,
			Hours: hours,
			Cells: r.DayHourMatrix,
		},
	}
}

// WriteChartData writes the chart series as indented JSON.
func WriteChartData(w io.Writer, r *model.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(NewChartData(r))
}

// WriteChartDataFile replaces path with the chart series of r.
func WriteChartDataFile(path string, r *model.Report) error {
	return writeFileAtomic(path, func(w io.Writer) error { return WriteChartData(w, r) })
}

// WriteAnalysis prints the plain-text analysis: overview, category sales,
// best sellers, peak hour and payment split.
func WriteAnalysis(w io.Writer, r *model.Report, topN int) error {
	p := &printer{w: w}

	p.line("--- Deep Data Analysis ---")
	p.line("")
	p.line("1. General Overview:")
	p.describe(r.Description)
	p.line("")
	p.printf("Total Revenue: $%s\n", r.KPI.TotalRevenue.StringFixed(2))
	p.printf("Total Orders: %d\n", r.KPI.TotalOrders)
	if r.KPI.Empty {
		p.line("Average Transaction Value: n/a (no orders)")
	} else {
		p.printf("Average Transaction Value: $%s\n", r.KPI.AverageOrderValue.StringFixed(2))
		p.printf("Average Rating: %.1f\n", r.KPI.AverageRating)
	}

	p.line("")
	p.line("2. Sales by Category:")
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	for _, c := range r.CategoryRevenue {
		fmt.Fprintf(tw, "%s\t%s\t\n", c.Category, c.Revenue.StringFixed(2))
	}
	p.flush(tw)

	p.line("")
	p.printf("3. Top %d Best Selling Items:\n", topN)
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	for i, item := range r.TopItems {
		if i == topN {
			break
		}
		fmt.Fprintf(tw, "%s\t%d\t\n", item.Item, item.Quantity)
	}
	p.flush(tw)

	p.line("")
	if r.PeakHour != nil {
		p.printf("4. Peak Hour: %d:00\n", *r.PeakHour)
	} else {
		p.line("4. Peak Hour: n/a")
	}

	p.line("")
	p.line("5. Payment Method Distribution:")
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	for _, s := range r.PaymentShares {
		fmt.Fprintf(tw, "%s\t%s%%\t\n", s.Method, s.Percent.StringFixed(2))
	}
	p.flush(tw)

	return p.err
}

type printer struct {
	w   io.Writer
	err error
}

func (p *printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

func (p *printer) line(s string) { p.printf("%s\n", s) }

func (p *printer) flush(tw *tabwriter.Writer) {
	if p.err != nil {
		return
	}
	p.err = tw.Flush()
}

func (p *printer) describe(d model.Description) {
	if p.err != nil {
		return
	}
	tw := tabwriter.NewWriter(p.w, 0, 0, 2, ' ', tabwriter.AlignRight)
	cols := []struct {
		name string
		s    model.NumericSummary
	}{
		{"Quantity", d.Quantity},
		{"Unit Price", d.UnitPrice},
		{"Total Sales", d.TotalSales},
		{"Rating", d.Rating},
	}

	header := []string{""}
	for _, c := range cols {
		header = append(header, c.name)
	}
	fmt.Fprintf(tw, "%s\t\n", strings.Join(header, "\t"))

	rows := []struct {
		label string
		get   func(model.NumericSummary) float64
	}{
		{"count", func(s model.NumericSummary) float64 { return float64(s.Count) }},
		{"mean", func(s model.NumericSummary) float64 { return s.Mean }},
		{"std", func(s model.NumericSummary) float64 { return s.Std }},
		{"min", func(s model.NumericSummary) float64 { return s.Min }},
		{"25%", func(s model.NumericSummary) float64 { return s.P25 }},
		{"50%", func(s model.NumericSummary) float64 { return s.P50 }},
		{"75%", func(s model.NumericSummary) float64 { return s.P75 }},
		{"max", func(s model.NumericSummary) float64 { return s.Max }},
	}
	for _, row := range rows {
		cells := []string{row.label}
		for _, c := range cols {
			cells = append(cells, strconv.FormatFloat(row.get(c.s), 'f', 6, 64))
		}
		fmt.Fprintf(tw, "%s\t\n", strings.Join(cells, "\t"))
	}
	p.flush(tw)
}
