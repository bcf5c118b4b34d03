package selection

import (
	"fmt"
	"math"
	"time"

	"github.com/wonny/finpulse/internal/contracts"
	"github.com/wonny/finpulse/internal/mathutil"
	"github.com/wonny/finpulse/pkg/logger"
)

// Skip reasons reported by Evaluate
const (
	SkipSynthetic      = "synthetic"
	SkipNoRule         = "no_rule"
	SkipBelowThreshold = "below_threshold"
)

// ScreenerConfig defines the opportunity rule set and cut-offs
type ScreenerConfig struct {
	Variant     Variant
	Threshold   float64 // score must exceed this
	TopN        int     // 상위 N개만 반환
	MaxSymbols  int     // universe 앞에서 N개만 스캔 (0 = 전체)
	Concurrency int     // 동시 fetch 수
}

// DefaultScreenerConfig returns the cut-offs that go with a variant
func DefaultScreenerConfig(v Variant) ScreenerConfig {
	if v == VariantReduced {
		return ScreenerConfig{Variant: VariantReduced, Threshold: 70, TopN: 4, MaxSymbols: 6, Concurrency: 8}
	}
	return ScreenerConfig{Variant: VariantFull, Threshold: 60, TopN: 6, MaxSymbols: 8, Concurrency: 8}
}

// Screener classifies snapshots into opportunities
// ⭐ SSOT: 기회 스크리닝 로직은 여기서만
type Screener struct {
	config ScreenerConfig
	rules  []Rule
	logger *logger.Logger
	now    func() time.Time
}

// NewScreener creates a new screener
func NewScreener(config ScreenerConfig, log *logger.Logger) (*Screener, error) {
	rules, err := Rules(config.Variant)
	if err != nil {
		return nil, err
	}
	if config.TopN <= 0 {
		return nil, fmt.Errorf("top_n must be positive, got %d", config.TopN)
	}
	if config.Concurrency <= 0 {
		config.Concurrency = 1
	}

	return &Screener{
		config: config,
		rules:  rules,
		logger: log,
		now:    time.Now,
	}, nil
}

// Config returns the screener configuration
func (s *Screener) Config() ScreenerConfig {
	return s.config
}

// Evaluate applies the rules to one snapshot. It returns the opportunity
// and "" when the symbol qualifies, otherwise a skip reason.
// Synthetic snapshots are never evaluated.
func (s *Screener) Evaluate(snap *contracts.TechnicalSnapshot) (contracts.OpportunityResult, string) {
	if !snap.IsRealData {
		return contracts.OpportunityResult{}, SkipSynthetic
	}

	ratio := snap.VolumeRatio()

	var matched *Rule
	for i := range s.rules {
		if s.rules[i].Match(snap, ratio) {
			matched = &s.rules[i]
			break
		}
	}
	if matched == nil {
		return contracts.OpportunityResult{}, SkipNoRule
	}
	if matched.Score <= s.config.Threshold {
		return contracts.OpportunityResult{}, SkipBelowThreshold
	}

	return contracts.OpportunityResult{
		Symbol:           snap.Symbol,
		Name:             snap.CompanyName,
		Type:             matched.Type,
		OpportunityScore: matched.Score,
		Confidence:       math.Min(95, matched.Score-10),
		PotentialReturn:  mathutil.Round(math.Abs(snap.PriceChangePercent)*1.5+5, 1),
		CurrentChange:    mathutil.Round(snap.PriceChangePercent, 2),
		CurrentPrice:     snap.CurrentPrice,
		Reasoning:        []string{matched.Reason},
		IsOpportunity:    true,
		Timestamp:        s.now(),
	}, ""
}
