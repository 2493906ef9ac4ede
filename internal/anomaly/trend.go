package anomaly

import (
	"math"
	"sort"

	"github.com/wattwise/wattwise/pkg/models"
)

// Trend labels the direction of recent usage.
type Trend string

const (
	TrendIncreasing       Trend = "increasing"
	TrendDecreasing       Trend = "decreasing"
	TrendStable           Trend = "stable"
	TrendInsufficientData Trend = "insufficient_data"
)

// TrendResult compares the average of the second half of a trailing
// window against the first half.
type TrendResult struct {
	Trend         Trend   `json:"trend"`
	ChangePercent float64 `json:"change_percent"`
	AvgRecent     float64 `json:"avg_recent"`
	AvgPrevious   float64 `json:"avg_previous"`
}

// AnalyzeTrend looks at up to days of the most recent usage records,
// splits the window chronologically in half, and compares the half
// averages. A swing beyond 10% either way labels the trend; anything
// inside that band is stable.
func AnalyzeTrend(usage []models.DailyUsage, days int) TrendResult {
	if len(usage) < 2 {
		return TrendResult{Trend: TrendInsufficientData}
	}

	recent := usage
	if len(recent) > days {
		recent = recent[:days]
	}
	if len(recent) < 2 {
		return TrendResult{Trend: TrendInsufficientData}
	}

	sorted := make([]models.DailyUsage, len(recent))
	copy(sorted, recent)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	mid := len(sorted) / 2
	avgFirst := avgConsumption(sorted[:mid])
	avgSecond := avgConsumption(sorted[mid:])

	var change float64
	if avgFirst > 0 {
		change = (avgSecond - avgFirst) / avgFirst * 100
	}

	trend := TrendStable
	switch {
	case change > 10:
		trend = TrendIncreasing
	case change < -10:
		trend = TrendDecreasing
	}

	return TrendResult{
		Trend:         trend,
		ChangePercent: round2(change),
		AvgRecent:     round2(avgSecond),
		AvgPrevious:   round2(avgFirst),
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func avgConsumption(usage []models.DailyUsage) float64 {
	if len(usage) == 0 {
		return 0
	}
	var sum float64
	for _, u := range usage {
		sum += u.ConsumptionKWh
	}
	return sum / float64(len(usage))
}
