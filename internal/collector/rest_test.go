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

func TestRESTFetcher_SendsBearerAndSorts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Equal(t, "SPX500", r.URL.Query().Get("symbol"))
		assert.Equal(t, "2", r.URL.Query().Get("limit"))
		fmt.Fprint(w, `[{"timestamp":1704240000,"close":5},{"timestamp":1704153600,"close":4}]`)
	}))
	defer srv.Close()

	bars, err := NewRESTFetcher(srv.URL+"/", "secret", "").FetchDailyBars(context.Background(), "SPX500", 2)
	require.NoError(t, err)
	require.Len(t, bars, 2)
	assert.Equal(t, 4.0, bars[0].Close)
	assert.Equal(t, 5.0, bars[1].Close)
}
