package contracts

import (
	"context"
	"errors"
	"time"
)

// ErrDataUnavailable marks any market data failure: network, unknown symbol,
// empty or too-short history. Callers route it to the fallback path.
var ErrDataUnavailable = errors.New("market data unavailable")

// PriceBar is one daily OHLCV observation
// ⭐ SSOT: 일봉 시세 단위
type PriceBar struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// Metadata is optional company information for a symbol
type Metadata struct {
	DisplayName string  `json:"display_name"`
	MarketCap   float64 `json:"market_cap"`
}

// MarketDataSource is the boundary to the external market data provider.
// Errors should wrap ErrDataUnavailable.
// ⭐ SSOT: 시장 데이터 수집 인터페이스
type MarketDataSource interface {
	// FetchHistory returns chronological daily bars covering lookbackDays
	FetchHistory(ctx context.Context, symbol string, lookbackDays int) ([]PriceBar, error)
	// FetchMetadata returns company metadata
	FetchMetadata(ctx context.Context, symbol string) (Metadata, error)
}

// Closes extracts closing prices from bars
func Closes(bars []PriceBar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Close
	}
	return out
}

// Volumes extracts volumes from bars
func Volumes(bars []PriceBar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Volume
	}
	return out
}
