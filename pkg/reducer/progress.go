package reducer

// OverallKey is the synthetic progress entry holding the arithmetic mean of
// all real entries. It is recomputed on every merge and never averaged into
// itself.
const OverallKey = "_overall"

// NewProgress returns the monotonic-progress reducer.
//
// merged[k] = max(current[k], proposed[k]), clamped to [0,100]. A proposed
// value lower than the stored one is rejected, not stored, so per-key
// progress never decreases across merges. Non-numeric proposed values are
// dropped.
func NewProgress() Func {
	return func(current, proposed any) (any, error) {
		base, ok := asMap(current)
		if !ok {
			return nil, errf(MonotonicProgress, "current value is not a mapping (%T)", current)
		}
		update, ok := asMap(proposed)
		if !ok {
			return nil, errf(MonotonicProgress, "proposed value is not a mapping (%T)", proposed)
		}

		merged := make(map[string]float64, len(base)+len(update))
		for k, v := range base {
			if f, ok := asFloat(v); ok {
				merged[k] = clampProgress(f)
			}
		}

		for k, v := range update {
			if k == OverallKey {
				continue // synthetic, recomputed below
			}
			f, ok := asFloat(v)
			if !ok {
				continue // dropped, not stored
			}
			f = clampProgress(f)
			if cur, exists := merged[k]; !exists || f > cur {
				merged[k] = f
			}
		}

		delete(merged, OverallKey)
		if len(merged) > 0 {
			var total float64
			for _, v := range merged {
				total += v
			}
			merged[OverallKey] = total / float64(len(merged))
		}

		return merged, nil
	}
}

func clampProgress(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 100 {
		return 100
	}
	return f
}
