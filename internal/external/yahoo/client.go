// Package yahoo reads daily bars and display metadata from the Yahoo Finance
// chart API.
package yahoo

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/wonny/finpulse/internal/contracts"
	"github.com/wonny/finpulse/internal/fallback"
	"github.com/wonny/finpulse/pkg/httputil"
	"github.com/wonny/finpulse/pkg/logger"
)

// DefaultBaseURL is the public chart API host
const DefaultBaseURL = "https://query1.finance.yahoo.com"

// Client implements contracts.MarketDataSource
// ⭐ SSOT: Yahoo Finance API 호출은 이 클라이언트에서만
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
	now        func() time.Time
}

// NewClient creates a new Yahoo Finance client
func NewClient(httpClient *httputil.Client, baseURL string, log *logger.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &Client{
		httpClient: httpClient,
		logger:     log,
		baseURL:    baseURL,
		now:        time.Now,
	}
}

// chartResponse is the v8 chart payload. Quote arrays carry nulls on
// non-trading rows.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol    string `json:"symbol"`
				LongName  string `json:"longName"`
				ShortName string `json:"shortName"`
				Currency  string `json:"currency"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// Range maps a calendar lookback to the smallest chart range covering it
func Range(days int) string {
	switch {
	case days <= 5:
		return "5d"
	case days <= 31:
		return "1mo"
	case days <= 92:
		return "3mo"
	case days <= 183:
		return "6mo"
	case days <= 366:
		return "1y"
	default:
		return "2y"
	}
}

func (c *Client) fetchChart(ctx context.Context, symbol, rng string) (*chartResponse, error) {
	params := url.Values{}
	params.Set("interval", "1d")
	params.Set("range", rng)
	fullURL := fmt.Sprintf("%s/v8/finance/chart/%s?%s", c.baseURL, url.PathEscape(symbol), params.Encode())

	var chart chartResponse
	if err := c.httpClient.GetJSON(ctx, fullURL, &chart); err != nil {
		var se *httputil.StatusError
		if errors.As(err, &se) && se.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %s: unknown symbol", contracts.ErrDataUnavailable, symbol)
		}
		return nil, fmt.Errorf("%w: %s: %w", contracts.ErrDataUnavailable, symbol, err)
	}

	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("%w: %s: %s", contracts.ErrDataUnavailable, symbol, chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 {
		return nil, fmt.Errorf("%w: %s: no data returned", contracts.ErrDataUnavailable, symbol)
	}

	return &chart, nil
}

// FetchHistory returns the daily bars of the last lookbackDays calendar days,
// oldest first. Rows without a close are skipped.
func (c *Client) FetchHistory(ctx context.Context, symbol string, lookbackDays int) ([]contracts.PriceBar, error) {
	sym := fallback.Normalize(symbol)
	chart, err := c.fetchChart(ctx, sym, Range(lookbackDays))
	if err != nil {
		return nil, err
	}

	result := chart.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil, fmt.Errorf("%w: %s: no quotes", contracts.ErrDataUnavailable, sym)
	}
	quote := result.Indicators.Quote[0]

	cutoff := c.now().AddDate(0, 0, -lookbackDays)
	bars := make([]contracts.PriceBar, 0, len(result.Timestamp))

	for i, ts := range result.Timestamp {
		closePx := at(quote.Close, i)
		if closePx == nil {
			continue // 휴장일 등 null 행
		}
		date := time.Unix(ts, 0).UTC()
		if lookbackDays > 0 && date.Before(cutoff) {
			continue
		}

		bars = append(bars, contracts.PriceBar{
			Date:   date,
			Open:   value(at(quote.Open, i), *closePx),
			High:   value(at(quote.High, i), *closePx),
			Low:    value(at(quote.Low, i), *closePx),
			Close:  *closePx,
			Volume: value(at(quote.Volume, i), 0),
		})
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })

	c.logger.WithFields(map[string]interface{}{
		"symbol": sym,
		"range":  Range(lookbackDays),
		"bars":   len(bars),
	}).Debug("Fetched Yahoo chart")

	return bars, nil
}

// FetchMetadata returns the display name from the chart meta block. The
// chart API does not carry market cap, so it is always 0.
func (c *Client) FetchMetadata(ctx context.Context, symbol string) (contracts.Metadata, error) {
	sym := fallback.Normalize(symbol)
	chart, err := c.fetchChart(ctx, sym, "5d")
	if err != nil {
		return contracts.Metadata{}, err
	}

	meta := chart.Chart.Result[0].Meta
	name := meta.LongName
	if name == "" {
		name = meta.ShortName
	}
	if name == "" {
		name = sym
	}

	return contracts.Metadata{DisplayName: name}, nil
}

func at(values []*float64, i int) *float64 {
	if i < len(values) {
		return values[i]
	}
	return nil
}

func value(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}
