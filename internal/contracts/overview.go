package contracts

import "time"

// SectorPerformance is the average change of a sector's real-data members
type SectorPerformance struct {
	Sector      string  `json:"sector_name"`
	Performance float64 `json:"performance"`
	Trend       string  `json:"trend"`
	RealMembers int     `json:"real_members"`
}

// MarketOverview summarizes benchmark sentiment and sector performance
// ⭐ SSOT: 시장 개요
type MarketOverview struct {
	MarketSentiment      string              `json:"market_sentiment"`
	BenchmarkSymbol      string              `json:"benchmark_symbol"`
	BenchmarkPerformance float64             `json:"benchmark_performance"`
	SectorPerformance    []SectorPerformance `json:"sector_performance"`
	Timestamp            time.Time           `json:"timestamp"`
}
