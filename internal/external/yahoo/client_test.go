package yahoo

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/finpulse/internal/contracts"
	"github.com/wonny/finpulse/pkg/httputil"
	"github.com/wonny/finpulse/pkg/logger"
)

func day(y int, m time.Month, d int) int64 {
	return time.Date(y, m, d, 14, 30, 0, 0, time.UTC).Unix()
}

var chartBody = fmt.Sprintf(`{"chart":{"result":[{
  "meta":{"symbol":"AAPL","longName":"Apple Inc.","shortName":"Apple"},
  "timestamp":[%d,%d,%d,%d,%d],
  "indicators":{"quote":[{
    "open":  [150, 180, null, 182, 184],
    "high":  [151, 181, null, 183, 185],
    "low":   [149, 179, null, 181, 183],
    "close": [150, 180.5, null, 182.5, 184.5],
    "volume":[1000, 2000, null, 3000, null]
  }]}
}],"error":null}}`,
	day(2024, 1, 2), day(2024, 2, 27), day(2024, 2, 28), day(2024, 2, 29), day(2024, 3, 1))

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	hc := httputil.New(logger.NewNop(), 5*time.Second).DisableRetry()
	c := NewClient(hc, server.URL, logger.NewNop())
	c.now = func() time.Time { return time.Date(2024, 3, 1, 21, 0, 0, 0, time.UTC) }
	return c
}

func TestRange(t *testing.T) {
	tests := []struct {
		days int
		want string
	}{
		{1, "5d"},
		{30, "1mo"},
		{60, "3mo"},
		{90, "3mo"},
		{120, "6mo"},
		{365, "1y"},
		{1000, "2y"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Range(tt.days), "days=%d", tt.days)
	}
}

func TestFetchHistory(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v8/finance/chart/AAPL", r.URL.Path)
		assert.Equal(t, "1d", r.URL.Query().Get("interval"))
		assert.Equal(t, "1mo", r.URL.Query().Get("range"))
		fmt.Fprint(w, chartBody)
	})

	bars, err := c.FetchHistory(context.Background(), " aapl ", 30)
	require.NoError(t, err)

	// 2024-01-02 is outside the lookback; the null row is skipped
	require.Len(t, bars, 3)
	assert.Equal(t, 180.5, bars[0].Close)
	assert.Equal(t, 2000.0, bars[0].Volume)
	assert.Equal(t, 184.5, bars[2].Close)
	assert.Equal(t, 0.0, bars[2].Volume, "null volume reads as 0")
	assert.True(t, bars[0].Date.Before(bars[1].Date))
}

func TestFetchMetadata(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, chartBody)
	})

	meta, err := c.FetchMetadata(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, "Apple Inc.", meta.DisplayName)
	assert.Zero(t, meta.MarketCap)
}

func TestFetchMetadata_FallsBackToSymbol(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"chart":{"result":[{"meta":{"symbol":"ZZZ"},"timestamp":[],"indicators":{"quote":[]}}]}}`)
	})

	meta, err := c.FetchMetadata(context.Background(), "zzz")
	require.NoError(t, err)
	assert.Equal(t, "ZZZ", meta.DisplayName)
}

func TestFetch_Errors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		want    string
	}{
		{
			name: "not found",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
				fmt.Fprint(w, `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found"}}}`)
			},
			want: "unknown symbol",
		},
		{
			name: "api error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, `{"chart":{"result":null,"error":{"code":"Bad Request","description":"Invalid range"}}}`)
			},
			want: "Invalid range",
		},
		{
			name: "empty result",
			handler: func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, `{"chart":{"result":[]}}`)
			},
			want: "no data returned",
		},
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
			},
			want: "502",
		},
		{
			name: "garbage",
			handler: func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, `<html>`)
			},
			want: "decode",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, tt.handler)

			_, err := c.FetchHistory(context.Background(), "AAPL", 60)
			require.Error(t, err)
			assert.True(t, errors.Is(err, contracts.ErrDataUnavailable))
			assert.True(t, strings.Contains(err.Error(), tt.want), err.Error())

			_, err = c.FetchMetadata(context.Background(), "AAPL")
			assert.True(t, errors.Is(err, contracts.ErrDataUnavailable))
		})
	}
}

func TestFetchHistory_ContextCanceled(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, chartBody)
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.FetchHistory(ctx, "AAPL", 30)
	require.Error(t, err)
	assert.True(t, errors.Is(err, contracts.ErrDataUnavailable))
	assert.True(t, errors.Is(err, context.Canceled))
}
