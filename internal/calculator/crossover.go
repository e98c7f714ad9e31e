package calculator

import (
	"errors"
	"fmt"
	"time"
)

// ErrMisalignedSeries is returned when two series do not share the same dates.
var ErrMisalignedSeries = errors.New("misaligned series")

// Direction is the sign flip of a crossover.
type Direction int

const (
	CrossUp   Direction = 1
	CrossDown Direction = -1
)

func (d Direction) String() string {
	if d == CrossUp {
		return "up"
	}
	return "down"
}

// Crossover is a flagged point where fast-slow changed sign.
type Crossover struct {
	Index     int
	Date      time.Time
	Direction Direction
	Price     float64
}

// DetectCrossovers flags every index t where diff = fast - slow strictly flips sign
// between t-1 and t. A zero diff on either side suppresses the flag, and index 0
// is never flagged. prices supplies the price carried by each flag and must have
// the same length as the series.
func DetectCrossovers(fast, slow Series, prices []float64) ([]Crossover, error) {
	if err := checkAligned(fast, slow); err != nil {
		return nil, err
	}
	if len(prices) != fast.Len() {
		return nil, fmt.Errorf("%d prices for %d points: %w", len(prices), fast.Len(), ErrMisalignedSeries)
	}

	var out []Crossover
	for t := 1; t < fast.Len(); t++ {
		prev := fast.Values[t-1] - slow.Values[t-1]
		cur := fast.Values[t] - slow.Values[t]
		var dir Direction
		switch {
		case prev < 0 && cur > 0:
			dir = CrossUp
		case prev > 0 && cur < 0:
			dir = CrossDown
		default:
			continue
		}
		out = append(out, Crossover{Index: t, Date: fast.Dates[t], Direction: dir, Price: prices[t]})
	}
	return out, nil
}

func checkAligned(a, b Series) error {
	if a.Len() != b.Len() || len(a.Dates) != a.Len() || len(b.Dates) != b.Len() {
		return fmt.Errorf("EMA(%d) has %d points, EMA(%d) has %d: %w",
			a.Period, a.Len(), b.Period, b.Len(), ErrMisalignedSeries)
	}
	for i := range a.Dates {
		if !a.Dates[i].Equal(b.Dates[i]) {
			return fmt.Errorf("EMA(%d) and EMA(%d) differ at index %d (%s vs %s): %w",
				a.Period, b.Period, i, a.Dates[i].Format("2006-01-02"), b.Dates[i].Format("2006-01-02"), ErrMisalignedSeries)
		}
	}
	return nil
}
