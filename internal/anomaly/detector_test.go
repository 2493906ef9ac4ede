package anomaly

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wattwise/wattwise/pkg/models"
)

func usageHistory(values ...float64) []models.DailyUsage {
	base := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)
	history := make([]models.DailyUsage, len(values))
	for i, v := range values {
		history[i] = models.DailyUsage{Date: base.AddDate(0, 0, i), ConsumptionKWh: v}
	}
	return history
}

func TestUntrainedUsesFixedThresholds(t *testing.T) {
	d := NewDetector()

	assert.Equal(t, Untrained, d.Mode())
	assert.True(t, d.Classify(60.0), "above fixed high threshold")
	assert.True(t, d.Classify(0.2), "below fixed low threshold")
	assert.False(t, d.Classify(10.0), "ordinary value")
}

func TestNonPositiveNeverAnomalous(t *testing.T) {
	d := NewDetector()
	assert.False(t, d.Classify(0))
	assert.False(t, d.Classify(-5))

	require.True(t, d.Train(usageHistory(8, 9, 10, 11, 12, 9.5, 10.5)))
	assert.False(t, d.Classify(0))
	assert.False(t, d.Classify(-5))
}

func TestTrainNeedsEnoughValidPoints(t *testing.T) {
	d := NewDetector()

	assert.False(t, d.Train(usageHistory(10, 11, 12, 13)))
	assert.Equal(t, Untrained, d.Mode())

	// Zero-consumption days are excluded, so this is still only 4 points.
	assert.False(t, d.Train(usageHistory(10, 11, 0, 12, 0, 13)))
	assert.Equal(t, Untrained, d.Mode())
}

func TestTrainLowVarianceFallsBackToStatistical(t *testing.T) {
	d := NewDetector()

	fitted := d.Train(usageHistory(10, 10, 10, 10, 10, 10))
	assert.False(t, fitted)
	assert.Equal(t, StatisticalOnly, d.Mode())

	// std is zero, so classification falls through to fixed thresholds.
	assert.True(t, d.Classify(60.0))
	assert.False(t, d.Classify(10.0))
}

func TestTrainFitsQuantileModel(t *testing.T) {
	d := NewDetector()

	require.True(t, d.Train(usageHistory(8, 9, 9.5, 10, 10.5, 11, 12)))
	assert.Equal(t, Fitted, d.Mode())

	mean, std := d.Stats()
	assert.InDelta(t, 10.0, mean, 0.01)
	assert.Greater(t, std, 0.1)

	// Q1 = 9.25, Q3 = 10.75, fences at 7.0 and 13.0.
	assert.False(t, d.Classify(10.0))
	assert.False(t, d.Classify(8.0))
	assert.True(t, d.Classify(20.0))
	assert.True(t, d.Classify(5.0))
}

func TestStatisticalModeZScore(t *testing.T) {
	d := NewDetector()

	// Variance is positive but under the quantile-model floor, so the
	// z-score rule applies with a nonzero std.
	assert.False(t, d.Train(usageHistory(10, 10, 10, 10.1, 10, 10.1)))
	require.Equal(t, StatisticalOnly, d.Mode())

	_, std := d.Stats()
	require.Greater(t, std, 0.0)
	require.LessOrEqual(t, std, 0.1)

	assert.True(t, d.Classify(10.2), "more than 2.5 std above the mean")
	assert.False(t, d.Classify(10.05), "within 2.5 std of the mean")
}

func TestRetrainReplacesModel(t *testing.T) {
	d := NewDetector()
	require.True(t, d.Train(usageHistory(8, 9, 9.5, 10, 10.5, 11, 12)))
	assert.True(t, d.Classify(20.0))

	// A history centered around 20 makes the same value ordinary.
	require.True(t, d.Train(usageHistory(18, 19, 19.5, 20, 20.5, 21, 22)))
	assert.False(t, d.Classify(20.0))
	assert.True(t, d.Classify(10.0))
}

func TestAnalyzeTrendInsufficientData(t *testing.T) {
	assert.Equal(t, TrendInsufficientData, AnalyzeTrend(nil, 30).Trend)
	assert.Equal(t, TrendInsufficientData, AnalyzeTrend(usageHistory(10), 30).Trend)
}

func TestAnalyzeTrendIncreasing(t *testing.T) {
	// First half averages 10, second half 15: +50%.
	r := AnalyzeTrend(usageHistory(10, 10, 10, 10, 15, 15, 15, 15), 30)

	assert.Equal(t, TrendIncreasing, r.Trend)
	assert.InDelta(t, 50.0, r.ChangePercent, 0.01)
	assert.InDelta(t, 15.0, r.AvgRecent, 0.01)
	assert.InDelta(t, 10.0, r.AvgPrevious, 0.01)
}

func TestAnalyzeTrendDecreasing(t *testing.T) {
	r := AnalyzeTrend(usageHistory(20, 20, 20, 20, 10, 10, 10, 10), 30)

	assert.Equal(t, TrendDecreasing, r.Trend)
	assert.InDelta(t, -50.0, r.ChangePercent, 0.01)
}

func TestAnalyzeTrendStableWithinBand(t *testing.T) {
	r := AnalyzeTrend(usageHistory(10, 10, 10, 10, 10.5, 10.5, 10.5, 10.5), 30)

	assert.Equal(t, TrendStable, r.Trend)
}

func TestAnalyzeTrendRespectsWindow(t *testing.T) {
	// Newest-first input: only the first 4 records fall in the window,
	// so the 99s in older history never influence the result.
	history := usageHistory(99, 99, 99, 99, 10, 10, 30, 30)
	// usageHistory dates ascend, so reverse to newest-first like storage.
	for i, j := 0, len(history)-1; i < j; i, j = i+1, j-1 {
		history[i], history[j] = history[j], history[i]
	}

	r := AnalyzeTrend(history, 4)
	assert.Equal(t, TrendIncreasing, r.Trend)
	assert.InDelta(t, 30.0, r.AvgRecent, 0.01)
	assert.InDelta(t, 10.0, r.AvgPrevious, 0.01)
}
