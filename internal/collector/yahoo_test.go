package collector

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const chartBody = `{"chart":{"result":[{"timestamp":[1704205800,1704119400,1704292200],
"indicators":{"quote":[{"open":[2,1,null],"high":[2.5,1.5,null],"low":[1.5,0.5,null],
"close":[2.2,1.1,null],"volume":[200,100,null]}]}}],"error":null}}`

func TestYahooFetcher_ParsesAndSkipsNullBars(t *testing.T) {
	var gotPath, gotRange string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotRange = r.URL.Query().Get("range")
		fmt.Fprint(w, chartBody)
	}))
	defer srv.Close()

	f := NewYahooFetcher("")
	f.BaseURL = srv.URL

	bars, err := f.FetchDailyBars(context.Background(), "SPX500", 3650)
	require.NoError(t, err)
	assert.Equal(t, "/v8/finance/chart/^GSPC", gotPath)
	assert.Equal(t, "10y", gotRange)
	require.Len(t, bars, 2)
	assert.Equal(t, 1.1, bars[0].Close)
	assert.Equal(t, 2.2, bars[1].Close)
	assert.True(t, bars[0].Time.Before(bars[1].Time))
}

func TestYahooFetcher_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found"}}}`)
	}))
	defer srv.Close()

	f := NewYahooFetcher("")
	f.BaseURL = srv.URL
	_, err := f.FetchDailyBars(context.Background(), "NOPE", 30)
	assert.ErrorContains(t, err, "No data found")
}

func TestYahooRange(t *testing.T) {
	tests := map[int]string{10: "1mo", 365: "1y", 700: "2y", 1800: "5y", 3650: "10y", 5000: "max"}
	for days, want := range tests {
		assert.Equal(t, want, yahooRange(days), "days=%d", days)
	}
}
