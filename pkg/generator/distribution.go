package generator

import (
	"fmt"
	"math"
	"sort"
)

// Distribution samples from a finite set of values with fixed weights.
type Distribution[T any] struct {
	values []T
	cum    []float64
	last   int
}

// NewDistribution normalizes weights into a cumulative table.
// Weights need not sum to 1 but must be non-negative with a positive total.
func NewDistribution[T any](values []T, weights []float64) (*Distribution[T], error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("%w: distribution has no values", ErrInvalidArgument)
	}
	if len(values) != len(weights) {
		return nil, fmt.Errorf("%w: %d values but %d weights", ErrInvalidArgument, len(values), len(weights))
	}

	var total float64
	last := -1
	for i, w := range weights {
		if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			return nil, fmt.Errorf("%w: weight %d is %v", ErrInvalidArgument, i, w)
		}
		if w > 0 {
			last = i
		}
		total += w
	}
	if total <= 0 {
		return nil, fmt.Errorf("%w: weights sum to zero", ErrInvalidArgument)
	}

	cum := make([]float64, len(weights))
	var acc float64
	for i, w := range weights {
		acc += w / total
		cum[i] = acc
	}
	// rounding must not leave a gap below 1
	for i := last; i < len(cum); i++ {
		cum[i] = 1
	}

	vals := make([]T, len(values))
	copy(vals, values)

	return &Distribution[T]{values: vals, cum: cum, last: last}, nil
}

// MustDistribution is NewDistribution for tables known at compile time.
func MustDistribution[T any](values []T, weights []float64) *Distribution[T] {
	d, err := NewDistribution(values, weights)
	if err != nil {
		panic(err)
	}
	return d
}

// Sample draws one Float64 from rng and returns the first value whose
// cumulative weight exceeds it. Zero-weight values are never returned.
func (d *Distribution[T]) Sample(rng Source) T {
	u := rng.Float64()
	i := sort.Search(len(d.cum), func(i int) bool { return u < d.cum[i] })
	if i > d.last {
		i = d.last
	}
	return d.values[i]
}

// Probability is the normalized weight of the value at index i.
func (d *Distribution[T]) Probability(i int) float64 {
	if i == 0 {
		return d.cum[0]
	}
	return d.cum[i] - d.cum[i-1]
}
