package calculator

import (
	"errors"
	"fmt"
	"time"

	"EmaSentinel/internal/model"

	"github.com/markcheno/go-talib"
)

// ErrInsufficientHistory is returned when the series is shorter than the slow window.
var ErrInsufficientHistory = errors.New("insufficient history")

// SmoothingForm selects the EMA recurrence.
type SmoothingForm string

const (
	// SmoothingRecursive is the non-adjusted form: ema[0] = p[0], ema[i] = a*p[i] + (1-a)*ema[i-1].
	SmoothingRecursive SmoothingForm = "recursive"
	// SmoothingAdjusted divides the exponentially weighted sum of all history by the sum of weights.
	SmoothingAdjusted SmoothingForm = "adjusted"
	// SmoothingSMASeeded seeds with the SMA of the first period closes (TA-Lib); earlier values are undefined.
	SmoothingSMASeeded SmoothingForm = "sma_seeded"
)

// Valid reports whether f names a supported form.
func (f SmoothingForm) Valid() bool {
	switch f {
	case SmoothingRecursive, SmoothingAdjusted, SmoothingSMASeeded:
		return true
	}
	return false
}

// Alpha returns the smoothing factor 2/(N+1).
func Alpha(period int) float64 {
	return 2.0 / float64(period+1)
}

// CalculateEMA computes the EMA of prices over the given period, one value per price.
func CalculateEMA(prices []float64, period int, form SmoothingForm) ([]float64, error) {
	if period <= 0 {
		return nil, errors.New("period must be positive")
	}
	if len(prices) == 0 {
		return nil, nil
	}
	switch form {
	case SmoothingRecursive, "":
		return recursiveEMA(prices, period), nil
	case SmoothingAdjusted:
		return adjustedEMA(prices, period), nil
	case SmoothingSMASeeded:
		if len(prices) < period {
			return nil, fmt.Errorf("not enough data for seeded EMA(%d): %w", period, ErrInsufficientHistory)
		}
		return talib.Ema(prices, period), nil
	default:
		return nil, fmt.Errorf("unknown smoothing form %q", form)
	}
}

func recursiveEMA(prices []float64, period int) []float64 {
	alpha := Alpha(period)
	out := make([]float64, len(prices))
	out[0] = prices[0]
	for i := 1; i < len(prices); i++ {
		out[i] = alpha*prices[i] + (1-alpha)*out[i-1]
	}
	return out
}

func adjustedEMA(prices []float64, period int) []float64 {
	w := 1 - Alpha(period)
	out := make([]float64, len(prices))
	var num, den float64
	for i, p := range prices {
		num = p + w*num
		den = 1 + w*den
		out[i] = num / den
	}
	return out
}

// Windows are the three EMA lengths monitored by the system.
type Windows struct {
	Fast int
	Mid  int
	Slow int
}

// DefaultWindows returns the 20/50/200 configuration.
func DefaultWindows() Windows {
	return Windows{Fast: 20, Mid: 50, Slow: 200}
}

// Validate checks that all windows are positive and strictly ascending.
func (w Windows) Validate() error {
	if w.Fast <= 0 || w.Mid <= 0 || w.Slow <= 0 {
		return fmt.Errorf("windows must be positive, got %d/%d/%d", w.Fast, w.Mid, w.Slow)
	}
	if w.Fast >= w.Mid || w.Mid >= w.Slow {
		return fmt.Errorf("windows must be ascending fast < mid < slow, got %d/%d/%d", w.Fast, w.Mid, w.Slow)
	}
	return nil
}

// WarmUp is the number of leading rows dropped from the aligned table.
func (w Windows) WarmUp() int { return w.Slow - 1 }

// Series is an EMA aligned on its dates.
type Series struct {
	Period int
	Dates  []time.Time
	Values []float64
}

// Len returns the number of points.
func (s Series) Len() int { return len(s.Values) }

// EMATable is the post-warm-up view of the bars with all three EMAs on the same index.
type EMATable struct {
	Bars []model.OHLCV
	Fast Series
	Mid  Series
	Slow Series
}

// Len returns the number of usable rows.
func (t *EMATable) Len() int { return len(t.Bars) }

// Closes returns the close price per row.
func (t *EMATable) Closes() []float64 {
	closes := make([]float64, len(t.Bars))
	for i, b := range t.Bars {
		closes[i] = b.Close
	}
	return closes
}

// BuildEMATable runs the smoothing engine once per window over the full series,
// then drops the first slow-1 rows. Fewer bars than the slow window yields
// ErrInsufficientHistory.
func BuildEMATable(bars []model.OHLCV, w Windows, form SmoothingForm) (*EMATable, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}
	if len(bars) < w.Slow {
		return nil, fmt.Errorf("need %d bars, got %d: %w", w.Slow, len(bars), ErrInsufficientHistory)
	}

	closes := make([]float64, len(bars))
	dates := make([]time.Time, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
		dates[i] = model.DateOf(b.Time)
	}

	skip := w.WarmUp()
	series := func(period int) (Series, error) {
		values, err := CalculateEMA(closes, period, form)
		if err != nil {
			return Series{}, fmt.Errorf("ema(%d): %w", period, err)
		}
		return Series{Period: period, Dates: dates[skip:], Values: values[skip:]}, nil
	}

	fast, err := series(w.Fast)
	if err != nil {
		return nil, err
	}
	mid, err := series(w.Mid)
	if err != nil {
		return nil, err
	}
	slow, err := series(w.Slow)
	if err != nil {
		return nil, err
	}

	return &EMATable{Bars: bars[skip:], Fast: fast, Mid: mid, Slow: slow}, nil
}
