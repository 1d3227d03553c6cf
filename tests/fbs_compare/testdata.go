package fbscompare

import (
	"math/rand"
	"time"
)

// TestDataConfig configures the generation of realistic test data.
type TestDataConfig struct {
	NumMetrics     int           // Number of metrics to generate
	NumPoints      int           // Number of data points per metric
	StartTime      time.Time     // Starting timestamp
	BaseInterval   time.Duration // Base interval between points
	JitterPercent  float64       // Jitter as a fraction of the base interval
	BaseValue      float64       // Starting value for metrics
	DeltaPercent   float64       // Maximum relative change between consecutive points
	MetricIDOffset uint64        // Starting metric ID
}

// DefaultTestDataConfig returns 1-second intervals with 5% jitter and values
// drifting by at most 2% per point.
func DefaultTestDataConfig(numMetrics, numPoints int) TestDataConfig {
	return TestDataConfig{
		NumMetrics:     numMetrics,
		NumPoints:      numPoints,
		StartTime:      time.Unix(1700000000, 0),
		BaseInterval:   time.Second,
		JitterPercent:  0.05,
		BaseValue:      100.0,
		DeltaPercent:   0.02,
		MetricIDOffset: 1000,
	}
}

// GenerateTestData generates reproducible metric series.
func GenerateTestData(cfg TestDataConfig) []MetricData {
	rng := rand.New(rand.NewSource(42)) //nolint: gosec
	metrics := make([]MetricData, cfg.NumMetrics)

	for m := range cfg.NumMetrics {
		timestamps := make([]int64, cfg.NumPoints)
		values := make([]float64, cfg.NumPoints)

		currentTime := cfg.StartTime
		currentValue := cfg.BaseValue + float64(m)*10.0

		for i := range cfg.NumPoints {
			jitterRange := float64(cfg.BaseInterval) * cfg.JitterPercent
			jitter := time.Duration((rng.Float64()*2 - 1) * jitterRange)
			currentTime = currentTime.Add(cfg.BaseInterval + jitter)
			timestamps[i] = currentTime.UnixMicro()

			deltaRange := currentValue * cfg.DeltaPercent
			currentValue += (rng.Float64()*2 - 1) * deltaRange
			values[i] = currentValue
		}

		metrics[m] = MetricData{
			ID:         cfg.MetricIDOffset + uint64(m), //nolint: gosec
			Timestamps: timestamps,
			Values:     values,
		}
	}

	return metrics
}

// BenchmarkSizes returns the points-per-metric used by benchmarks.
func BenchmarkSizes() []int {
	return []int{10, 100, 250}
}
