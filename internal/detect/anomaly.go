package detect

import (
	"math"
	"strconv"
)

const (
	// MinObservations gates anomaly detection: with fewer prior
	// observations the verdict is always "not anomalous".
	MinObservations = 10

	// zScoreThreshold is strict: a value at exactly mean+3*stddev is
	// not flagged, only values beyond it are.
	zScoreThreshold = 3.0
)

// AnomalyVerdict is the outcome of a statistical outlier check, with
// the distribution figures used to explain it.
type AnomalyVerdict struct {
	IsAnomaly bool
	Value     float64
	Mean      float64
	StdDev    float64
	ZScore    float64
}

// EvaluateAnomaly checks a transaction value against the receiver's
// historical value distribution. history holds the prior observations
// and must NOT include the value being judged: the orchestrator
// snapshots the history first, then appends the current value. This
// keeps the z-score of a value at exactly mean+4*stddev at 4.
//
// stddev == 0 means a perfectly stable history; by policy that is
// never an anomaly, even when the new value equals the mean exactly.
func EvaluateAnomaly(value float64, history []float64) AnomalyVerdict {
	v := AnomalyVerdict{Value: value}
	if len(history) < MinObservations {
		return v
	}

	v.Mean = mean(history)
	v.StdDev = stdDev(history, v.Mean)
	if v.StdDev == 0 {
		return v
	}

	v.ZScore = math.Abs(value-v.Mean) / v.StdDev
	v.IsAnomaly = v.ZScore > zScoreThreshold
	return v
}

// ParseValue converts an arbitrary-precision decimal string into a
// float64. Precision beyond the float64 mantissa is truncated; that
// loss is accepted for distribution statistics.
func ParseValue(value string) float64 {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0
	}
	return f
}

func mean(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// stdDev is the population standard deviation.
func stdDev(values []float64, m float64) float64 {
	sum := 0.0
	for _, v := range values {
		d := v - m
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)))
}
