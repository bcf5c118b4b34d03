package indicator

import (
	"fmt"
	"math"
)

// Guard names the reason a neutral default replaced a computed value
type Guard string

const (
	GuardNone             Guard = ""
	GuardInsufficientData Guard = "insufficient_data"
	GuardZeroLoss         Guard = "zero_loss"
	GuardNonFinite        Guard = "non_finite"
	GuardEmptySeries      Guard = "empty_series"
)

// Outcome is either a computed value (Guard == GuardNone) or a guarded default
// ⭐ SSOT: 지표 계산 결과 (계산값 | 가드 기본값)
type Outcome struct {
	Value float64
	Guard Guard
}

func computed(v float64) Outcome {
	return Outcome{Value: v}
}

func guarded(v float64, g Guard) Outcome {
	return Outcome{Value: v, Guard: g}
}

// Guarded reports whether the value is a substituted default
func (o Outcome) Guarded() bool {
	return o.Guard != GuardNone
}

// Label formats the guard for snapshot bookkeeping ("rsi:zero_loss")
func (o Outcome) Label(name string) string {
	return fmt.Sprintf("%s:%s", name, o.Guard)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
