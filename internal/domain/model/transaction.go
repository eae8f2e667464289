package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod is how a customer paid for an order.
type PaymentMethod string

const (
	PaymentCard   PaymentMethod = "Card"
	PaymentCash   PaymentMethod = "Cash"
	PaymentMobile PaymentMethod = "Mobile Payment"
)

// PaymentMethods lists the payment methods in their fixed reporting order.
var PaymentMethods = []PaymentMethod{PaymentCard, PaymentCash, PaymentMobile}

const (
	DateLayout     = "2006-01-02"
	TimeLayout     = "15:04:05"
	MonthLayout    = "2006-01"
	DateTimeLayout = "2006-01-02 15:04:05"
)

// Transaction is a single fabricated coffee-shop order.
type Transaction struct {
	OrderID       int
	Timestamp     time.Time
	Item          string
	Category      string
	Quantity      int
	UnitPrice     decimal.Decimal
	TotalSales    decimal.Decimal
	PaymentMethod PaymentMethod
	Rating        int
}

func (t Transaction) Date() string      { return t.Timestamp.Format(DateLayout) }
func (t Transaction) TimeOfDay() string { return t.Timestamp.Format(TimeLayout) }
func (t Transaction) Month() string     { return t.Timestamp.Format(MonthLayout) }
func (t Transaction) Hour() int         { return t.Timestamp.Hour() }

// Weekday returns the day index with Monday as 0 and Sunday as 6.
func (t Transaction) Weekday() int {
	return (int(t.Timestamp.Weekday()) + 6) % 7
}

// TimeWindow is an inclusive range of calendar dates.
type TimeWindow struct {
	Start time.Time
	End   time.Time
}

// DefaultWindow is the trailing window of the given number of days ending on now's date.
func DefaultWindow(now time.Time, days int) TimeWindow {
	end := truncateDay(now)
	return TimeWindow{Start: end.AddDate(0, 0, -days), End: end}
}

// Days is the number of whole days between Start and End. It is negative for an inverted window.
func (w TimeWindow) Days() int {
	s := truncateDay(w.Start)
	e := truncateDay(w.End)
	su := time.Date(s.Year(), s.Month(), s.Day(), 0, 0, 0, 0, time.UTC)
	eu := time.Date(e.Year(), e.Month(), e.Day(), 0, 0, 0, 0, time.UTC)
	return int(eu.Sub(su).Hours() / 24)
}

func (w TimeWindow) String() string {
	return fmt.Sprintf("%s..%s", w.Start.Format(DateLayout), w.End.Format(DateLayout))
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// GenerationParams fully determines a seeded dataset.
type GenerationParams struct {
	Records int    `json:"records"`
	Seed    uint64 `json:"seed"`
	Start   string `json:"start"`
	End     string `json:"end"`
}

// Key is the cache key for datasets generated with these parameters.
func (p GenerationParams) Key() string {
	return fmt.Sprintf("dataset:%d:%d:%s:%s", p.Records, p.Seed, p.Start, p.End)
}

// Window parses Start and End back into a TimeWindow in loc.
func (p GenerationParams) Window(loc *time.Location) (TimeWindow, error) {
	start, err := time.ParseInLocation(DateLayout, p.Start, loc)
	if err != nil {
		return TimeWindow{}, fmt.Errorf("parse window start: %w", err)
	}
	end, err := time.ParseInLocation(DateLayout, p.End, loc)
	if err != nil {
		return TimeWindow{}, fmt.Errorf("parse window end: %w", err)
	}
	return TimeWindow{Start: start, End: end}, nil
}

// Dataset is the ordered, immutable output of one generation run.
type Dataset struct {
	Params       GenerationParams
	Transactions []Transaction
}

// Len is nil-safe.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Transactions)
}

// Snapshot is a generated dataset tagged with the run that produced it.
type Snapshot struct {
	RunID       string
	GeneratedAt time.Time
	Dataset     *Dataset
}
