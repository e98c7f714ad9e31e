package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"EmaSentinel/internal/model"
)

const (
	binanceBaseURL   = "https://api.binance.com"
	binancePageLimit = 1000
)

// BinanceFetcher implements Fetcher using the Binance spot klines endpoint.
// History longer than one page is fetched page by page.
type BinanceFetcher struct {
	BaseURL string
	Client  *http.Client
	Now     func() time.Time
}

// NewBinanceFetcher creates a new Binance fetcher with optional proxy support.
func NewBinanceFetcher(baseURL, proxyURL string) *BinanceFetcher {
	if baseURL == "" {
		baseURL = binanceBaseURL
	}
	return &BinanceFetcher{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  newHTTPClient(proxyURL),
		Now:     time.Now,
	}
}

func (f *BinanceFetcher) Name() string { return "binance" }

// binanceSymbol turns "BTC/USDT" or "btc-usdt" into "BTCUSDT".
func binanceSymbol(symbol string) string {
	r := strings.NewReplacer("/", "", "-", "", "_", "")
	return strings.ToUpper(r.Replace(symbol))
}

func (f *BinanceFetcher) FetchDailyBars(ctx context.Context, symbol string, days int) ([]model.OHLCV, error) {
	end := f.Now().UTC()
	since := end.AddDate(0, 0, -days).UnixMilli()
	endMs := end.UnixMilli()

	var bars []model.OHLCV
	for {
		page, err := f.fetchPage(ctx, binanceSymbol(symbol), since)
		if err != nil {
			return nil, err
		}
		if len(page) == 0 {
			break
		}
		bars = append(bars, page...)

		since = page[len(page)-1].Time.UnixMilli() + 1
		if since > endMs || len(page) < binancePageLimit {
			break
		}
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("binance: no data returned for %s", symbol)
	}
	return bars, nil
}

func (f *BinanceFetcher) fetchPage(ctx context.Context, symbol string, startMs int64) ([]model.OHLCV, error) {
	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("interval", "1d")
	q.Set("startTime", strconv.FormatInt(startMs, 10))
	q.Set("limit", strconv.Itoa(binancePageLimit))
	endpoint := f.BaseURL + "/api/v3/klines?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("binance fetch: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("binance: status %d, body: %s", resp.StatusCode, string(body))
	}

	// Each kline is [openTime, "open", "high", "low", "close", "volume", closeTime, ...].
	var raw [][]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("binance decode: %w", err)
	}

	bars := make([]model.OHLCV, 0, len(raw))
	for i, k := range raw {
		bar, err := parseKline(k)
		if err != nil {
			return nil, fmt.Errorf("binance kline %d: %w", i, err)
		}
		bars = append(bars, bar)
	}
	return bars, nil
}

func parseKline(k []json.RawMessage) (model.OHLCV, error) {
	if len(k) < 6 {
		return model.OHLCV{}, fmt.Errorf("expected at least 6 fields, got %d", len(k))
	}
	var openTime int64
	if err := json.Unmarshal(k[0], &openTime); err != nil {
		return model.OHLCV{}, fmt.Errorf("open time: %w", err)
	}
	vals := make([]float64, 5)
	for i := range vals {
		var s string
		if err := json.Unmarshal(k[i+1], &s); err != nil {
			return model.OHLCV{}, fmt.Errorf("field %d: %w", i+1, err)
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return model.OHLCV{}, fmt.Errorf("field %d: %w", i+1, err)
		}
		vals[i] = v
	}
	return model.OHLCV{
		Time:   time.UnixMilli(openTime).UTC(),
		Open:   vals[0],
		High:   vals[1],
		Low:    vals[2],
		Close:  vals[3],
		Volume: vals[4],
	}, nil
}
