package detect

import (
	"math"
	"testing"
)

// buildHistory returns n values alternating around a mean of 100 so
// the standard deviation is non-zero.
func buildHistory(n int) []float64 {
	vals := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		if i%2 == 0 {
			vals = append(vals, 90)
		} else {
			vals = append(vals, 110)
		}
	}
	return vals
}

func TestEvaluateAnomaly_ColdStart(t *testing.T) {
	history := buildHistory(9)
	v := EvaluateAnomaly(1e18, history)
	if v.IsAnomaly {
		t.Error("Expected no anomaly with fewer than 10 observations")
	}
}

func TestEvaluateAnomaly_Outlier(t *testing.T) {
	history := buildHistory(20)
	m := mean(history)
	s := stdDev(history, m)
	if s == 0 {
		t.Fatal("test history must have non-zero stddev")
	}

	// A value at mean + 4 stddev is anomalous.
	v := EvaluateAnomaly(m+4*s, history)
	if !v.IsAnomaly {
		t.Errorf("Expected anomaly at mean+4s (z=%.2f)", v.ZScore)
	}

	// A value at mean + 1 stddev is not.
	v = EvaluateAnomaly(m+s, history)
	if v.IsAnomaly {
		t.Errorf("Expected no anomaly at mean+1s (z=%.2f)", v.ZScore)
	}
}

func TestEvaluateAnomaly_ThresholdExclusive(t *testing.T) {
	// Build a history whose stats are known, then probe a value that
	// lands exactly at z = 3 against the final distribution. The
	// comparison is strict, so exactly 3 must not flag.
	history := buildHistory(100)
	m := mean(history)
	s := stdDev(history, m)

	exact := m + 3*s
	v := EvaluateAnomaly(exact, history)
	if v.ZScore > 3.0 && !v.IsAnomaly {
		t.Error("Values beyond z=3 must flag")
	}
	if math.Abs(v.ZScore-3.0) < 1e-9 && v.IsAnomaly {
		t.Error("A value at exactly z=3 must not flag")
	}
}

func TestEvaluateAnomaly_ZeroStdDev(t *testing.T) {
	history := make([]float64, 20)
	for i := range history {
		history[i] = 100
	}

	// Stable history: even a wildly different value is not flagged,
	// by documented policy.
	v := EvaluateAnomaly(1e18, history)
	if v.IsAnomaly {
		t.Error("Expected no anomaly when stddev is zero")
	}
	if v.StdDev != 0 {
		t.Errorf("Expected stddev 0, got %f", v.StdDev)
	}
}

func TestParseValue(t *testing.T) {
	if ParseValue("1000") != 1000 {
		t.Error("Expected 1000")
	}
	if ParseValue("not-a-number") != 0 {
		t.Error("Expected 0 for malformed value")
	}
	// Arbitrary-precision strings truncate to float64 range.
	if ParseValue("200000000000000000000") != 2e20 {
		t.Error("Expected 2e20")
	}
}
