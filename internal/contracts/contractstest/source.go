// Package contractstest provides an in-memory MarketDataSource for tests.
package contractstest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/wonny/finpulse/internal/contracts"
)

// Source is a programmable in-memory contracts.MarketDataSource
type Source struct {
	mu       sync.Mutex
	history  map[string][]contracts.PriceBar
	metadata map[string]contracts.Metadata
	errs     map[string]error
	delays   map[string]time.Duration
	calls    map[string]int
}

// NewSource creates an empty source; unknown symbols are unavailable
func NewSource() *Source {
	return &Source{
		history:  make(map[string][]contracts.PriceBar),
		metadata: make(map[string]contracts.Metadata),
		errs:     make(map[string]error),
		delays:   make(map[string]time.Duration),
		calls:    make(map[string]int),
	}
}

// SetHistory registers bars for symbol
func (s *Source) SetHistory(symbol string, bars []contracts.PriceBar) *Source {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history[symbol] = bars
	return s
}

// SetMetadata registers metadata for symbol
func (s *Source) SetMetadata(symbol string, meta contracts.Metadata) *Source {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.metadata[symbol] = meta
	return s
}

// SetError makes every fetch for symbol fail with err
func (s *Source) SetError(symbol string, err error) *Source {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errs[symbol] = err
	return s
}

// SetDelay stalls history fetches for symbol until d elapses or ctx ends
func (s *Source) SetDelay(symbol string, d time.Duration) *Source {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delays[symbol] = d
	return s
}

// HistoryCalls returns how many times FetchHistory ran for symbol
func (s *Source) HistoryCalls(symbol string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[symbol]
}

// FetchHistory implements contracts.MarketDataSource
func (s *Source) FetchHistory(ctx context.Context, symbol string, lookbackDays int) ([]contracts.PriceBar, error) {
	s.mu.Lock()
	s.calls[symbol]++
	delay := s.delays[symbol]
	err := s.errs[symbol]
	bars, ok := s.history[symbol]
	s.mu.Unlock()

	if delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}

	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: unknown symbol %s", contracts.ErrDataUnavailable, symbol)
	}

	if lookbackDays > 0 && len(bars) > lookbackDays {
		bars = bars[len(bars)-lookbackDays:]
	}
	out := make([]contracts.PriceBar, len(bars))
	copy(out, bars)
	return out, nil
}

// FetchMetadata implements contracts.MarketDataSource
func (s *Source) FetchMetadata(ctx context.Context, symbol string) (contracts.Metadata, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.errs[symbol]; err != nil {
		return contracts.Metadata{}, err
	}
	meta, ok := s.metadata[symbol]
	if !ok {
		return contracts.Metadata{}, fmt.Errorf("%w: no metadata for %s", contracts.ErrDataUnavailable, symbol)
	}
	return meta, nil
}

// Series builds daily bars from closes with a constant volume
func Series(closes []float64, volume float64) []contracts.PriceBar {
	volumes := make([]float64, len(closes))
	for i := range volumes {
		volumes[i] = volume
	}
	return SeriesWithVolumes(closes, volumes)
}

// SeriesWithVolumes builds daily bars from parallel close/volume slices
func SeriesWithVolumes(closes, volumes []float64) []contracts.PriceBar {
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	bars := make([]contracts.PriceBar, len(closes))
	for i, c := range closes {
		bars[i] = contracts.PriceBar{
			Date:   start.AddDate(0, 0, i),
			Open:   c,
			High:   c,
			Low:    c,
			Close:  c,
			Volume: volumes[i],
		}
	}
	return bars
}

// Flat returns n closes equal to price
func Flat(n int, price float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = price
	}
	return out
}

// Trend returns n closes starting at start, moving step per bar
func Trend(n int, start, step float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	return out
}
