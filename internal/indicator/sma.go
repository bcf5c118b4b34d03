package indicator

// SMA periods used by the snapshot
const (
	SMAShort = 20
	SMALong  = 50
)

// VolumeWindow is the trailing window of the volume average
const VolumeWindow = 20

// SMA returns the mean of the last period closes. With fewer closes than the
// period the latest close is returned; an empty series yields 0.
func SMA(closes []float64, period int) Outcome {
	if len(closes) == 0 {
		return guarded(0, GuardEmptySeries)
	}

	latest := closes[len(closes)-1]
	if period <= 0 || len(closes) < period {
		if !finite(latest) {
			return guarded(0, GuardNonFinite)
		}
		return guarded(latest, GuardInsufficientData)
	}

	avg := mean(closes[len(closes)-period:])
	if !finite(avg) {
		return guarded(0, GuardNonFinite)
	}

	return computed(avg)
}

// VolumeAverage returns the mean of the last (up to) window volumes
func VolumeAverage(volumes []float64, window int) Outcome {
	if len(volumes) == 0 {
		return guarded(0, GuardEmptySeries)
	}

	if window > 0 && len(volumes) > window {
		volumes = volumes[len(volumes)-window:]
	}

	avg := mean(volumes)
	if !finite(avg) {
		return guarded(0, GuardNonFinite)
	}

	return computed(avg)
}
