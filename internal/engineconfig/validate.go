package engineconfig

import (
	"errors"
	"fmt"
	"math"

	"github.com/wonny/finpulse/internal/fallback"
	"github.com/wonny/finpulse/internal/risk"
	"github.com/wonny/finpulse/internal/scoring"
	"github.com/wonny/finpulse/internal/selection"
	"github.com/wonny/finpulse/internal/snapshot"
)

// ErrInvalidConfig is wrapped by every validation failure
var ErrInvalidConfig = errors.New("invalid engine config")

// ValidationError 검증 실패 (프로그램 중단)
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Is makes errors.Is(err, ErrInvalidConfig) hold for validation failures
func (e ValidationError) Is(target error) bool {
	return target == ErrInvalidConfig
}

// Warning 권장 위반 (경고만)
type Warning struct {
	Code    string
	Message string
}

// Validate checks all required constraints
// 실패 시 error 반환 (프로그램 중단)
func Validate(cfg *Config) error {
	// === Universe ===
	if len(cfg.Universe.Symbols) == 0 {
		return ValidationError{"universe.symbols", "required"}
	}
	if err := validateSymbols(cfg.Universe.Symbols); err != nil {
		return ValidationError{"universe.symbols", err.Error()}
	}

	// === Benchmark ===
	if fallback.Normalize(cfg.Benchmark.Symbol) == "" {
		return ValidationError{"benchmark.symbol", "required"}
	}
	if cfg.Benchmark.LookbackDays < 2 {
		return ValidationError{"benchmark.lookback_days", "must be >= 2"}
	}

	// === Sectors ===
	seen := make(map[string]bool, len(cfg.Sectors))
	for i, s := range cfg.Sectors {
		field := fmt.Sprintf("sectors[%d]", i)
		if s.Name == "" {
			return ValidationError{field + ".name", "required"}
		}
		if seen[s.Name] {
			return ValidationError{field + ".name", fmt.Sprintf("duplicate sector %q", s.Name)}
		}
		seen[s.Name] = true
		if len(s.Members) == 0 {
			return ValidationError{field + ".members", "required"}
		}
		if err := validateSymbols(s.Members); err != nil {
			return ValidationError{field + ".members", err.Error()}
		}
	}

	// === Lookbacks ===
	if cfg.Lookbacks.SnapshotDays < snapshot.MinBars {
		return ValidationError{"lookbacks.snapshot_days", fmt.Sprintf("must be >= %d", snapshot.MinBars)}
	}
	if cfg.Lookbacks.RiskDays < risk.MinBars {
		return ValidationError{"lookbacks.risk_days", fmt.Sprintf("must be >= %d", risk.MinBars)}
	}

	// === Opportunities ===
	o := cfg.Opportunities
	if !selection.Variant(o.Variant).Valid() {
		return ValidationError{"opportunities.variant", "must be full or reduced"}
	}
	if o.Threshold != nil && (*o.Threshold < 0 || *o.Threshold > 100 || math.IsNaN(*o.Threshold)) {
		return ValidationError{"opportunities.threshold", "must be in range [0, 100]"}
	}
	if o.TopN < 0 {
		return ValidationError{"opportunities.top_n", "must be >= 0"}
	}
	if o.MaxSymbols < 0 {
		return ValidationError{"opportunities.max_symbols", "must be >= 0"}
	}

	// === Scoring ===
	if !scoring.TrendFormula(cfg.Scoring.TrendFormula).Valid() {
		return ValidationError{"scoring.trend_formula", "must be standard or strength"}
	}
	if err := validateWeightsSum([]float64{
		scoring.WeightMomentum, scoring.WeightTrend, scoring.WeightVolume, scoring.WeightRSI,
	}, 1.0, 1e-9); err != nil {
		return ValidationError{"scoring.weights", err.Error()}
	}

	return nil
}

// Warn checks recommended constraints (non-fatal)
func Warn(cfg *Config) []Warning {
	var warnings []Warning

	sc := cfg.ScreenerConfig(1)
	rules, _ := selection.Rules(sc.Variant)
	reachable := false
	for _, r := range rules {
		if r.Score > sc.Threshold {
			reachable = true
			break
		}
	}
	if !reachable {
		warnings = append(warnings, Warning{
			Code:    "UNREACHABLE_THRESHOLD",
			Message: fmt.Sprintf("threshold %.0f: no %s rule can qualify", sc.Threshold, sc.Variant),
		})
	}

	if sc.MaxSymbols > len(cfg.Universe.Symbols) {
		warnings = append(warnings, Warning{
			Code:    "SHORT_UNIVERSE",
			Message: fmt.Sprintf("max_symbols=%d > universe size %d", sc.MaxSymbols, len(cfg.Universe.Symbols)),
		})
	}

	return warnings
}

// === Helper Functions ===

func validateSymbols(symbols []string) error {
	seen := make(map[string]bool, len(symbols))
	for _, s := range symbols {
		n := fallback.Normalize(s)
		if n == "" {
			return errors.New("empty symbol")
		}
		if seen[n] {
			return fmt.Errorf("duplicate symbol %q", n)
		}
		seen[n] = true
	}
	return nil
}

func validateWeightsSum(weights []float64, target float64, epsilon float64) error {
	if len(weights) == 0 {
		return errors.New("must not be empty")
	}
	sum := 0.0
	for _, w := range weights {
		sum += w
	}
	if math.Abs(sum-target) > epsilon {
		return fmt.Errorf("must sum to %.2f, got %.4f", target, sum)
	}
	return nil
}
