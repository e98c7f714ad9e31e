package collector

import (
	"context"
	"fmt"
	"log"
	"math"
	"sort"
	"time"

	"EmaSentinel/internal/model"
)

// Collector fetches the daily history of one symbol and normalizes it into a
// strictly increasing, one-bar-per-date series.
type Collector struct {
	Fetcher     Fetcher
	Symbol      string
	HistoryDays int
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, symbol string, historyDays int) *Collector {
	return &Collector{Fetcher: fetcher, Symbol: symbol, HistoryDays: historyDays}
}

// Collect fetches and normalizes the price series.
func (c *Collector) Collect(ctx context.Context) (*model.PriceSeries, error) {
	bars, err := c.Fetcher.FetchDailyBars(ctx, c.Symbol, c.HistoryDays)
	if err != nil {
		return nil, fmt.Errorf("fetch daily bars: %w", err)
	}

	clean, dropped := Normalize(bars)
	if dropped > 0 {
		log.Printf("[WARN] %s: dropped %d invalid or duplicate bars", c.Symbol, dropped)
	}
	log.Printf("[INFO] fetched %d daily bars for %s from %s", len(clean), c.Symbol, c.Fetcher.Name())

	return &model.PriceSeries{
		Symbol:    c.Symbol,
		Source:    c.Fetcher.Name(),
		DailyBars: clean,
		FetchedAt: time.Now(),
	}, nil
}

// Normalize sorts bars by time, reduces every timestamp to its UTC date, keeps the
// last bar of each date and drops bars without a usable close. It returns the
// clean bars and how many input bars were discarded.
func Normalize(bars []model.OHLCV) ([]model.OHLCV, int) {
	sorted := append([]model.OHLCV(nil), bars...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Time.Before(sorted[j].Time) })

	out := make([]model.OHLCV, 0, len(sorted))
	for _, b := range sorted {
		if b.Close <= 0 || math.IsNaN(b.Close) || math.IsInf(b.Close, 0) {
			continue
		}
		b.Time = model.DateOf(b.Time)
		if n := len(out); n > 0 && out[n-1].Time.Equal(b.Time) {
			out[n-1] = b
			continue
		}
		out = append(out, b)
	}
	return out, len(bars) - len(out)
}
