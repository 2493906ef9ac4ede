package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wattwise/wattwise/pkg/models"
)

func record(date time.Time, kwh, cost float64, anomaly bool) models.DailyUsage {
	return models.DailyUsage{Date: date, ConsumptionKWh: kwh, Cost: cost, IsAnomaly: anomaly}
}

func TestMonthlyAggregates(t *testing.T) {
	jul := func(d int) time.Time { return time.Date(2025, time.July, d, 0, 0, 0, 0, time.UTC) }
	usage := []models.DailyUsage{
		record(jul(3), 12, 60, false),
		record(jul(1), 10, 50, false),
		record(jul(2), 20, 100, true),
		record(time.Date(2025, time.June, 30, 0, 0, 0, 0, time.UTC), 99, 500, false),
	}

	r := Monthly(usage, 2025, time.July)

	assert.Equal(t, "2025-07", r.Month)
	assert.Equal(t, 3, r.Stats.DaysRecorded)
	assert.Equal(t, 42.0, r.Stats.TotalKWh)
	assert.Equal(t, 210.0, r.Stats.TotalCost)
	assert.Equal(t, 14.0, r.Stats.AvgDailyKWh)
	assert.Equal(t, 20.0, r.Stats.PeakKWh)
	assert.Equal(t, 10.0, r.Stats.MinKWh)
	assert.Equal(t, 1, r.Stats.AnomalyDays)

	// Daily data comes back chronological regardless of input order.
	require.Len(t, r.Daily, 3)
	assert.Equal(t, jul(1), r.Daily[0].Date)
	assert.Equal(t, jul(3), r.Daily[2].Date)
}

func TestMonthlyEmpty(t *testing.T) {
	r := Monthly(nil, 2025, time.July)

	assert.Equal(t, 0, r.Stats.DaysRecorded)
	assert.Equal(t, 0.0, r.Stats.AvgDailyKWh)
	assert.Empty(t, r.Daily)
}

func TestYearlyGroupsByMonth(t *testing.T) {
	usage := []models.DailyUsage{
		record(time.Date(2025, time.January, 5, 0, 0, 0, 0, time.UTC), 10, 50, false),
		record(time.Date(2025, time.January, 6, 0, 0, 0, 0, time.UTC), 14, 70, false),
		record(time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC), 8, 40, false),
		record(time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC), 99, 500, false),
	}

	s := Yearly(usage, 2025)

	assert.Equal(t, 2025, s.Year)
	assert.Equal(t, 2, s.MonthsRecorded)
	require.Len(t, s.MonthlyData, 2)
	assert.Equal(t, 1, s.MonthlyData[0].Month)
	assert.Equal(t, 24.0, s.MonthlyData[0].TotalKWh)
	assert.Equal(t, 2, s.MonthlyData[0].DaysRecorded)
	assert.Equal(t, 3, s.MonthlyData[1].Month)
	assert.Equal(t, 32.0, s.TotalKWh)
	assert.Equal(t, 160.0, s.TotalCost)
}

func TestCompareWithPreviousMonth(t *testing.T) {
	usage := []models.DailyUsage{
		record(time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC), 30, 150, false),
		record(time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC), 20, 100, false),
	}

	c := Compare(usage, 2025, time.July)

	assert.Equal(t, "2025-07", c.Current.Month)
	assert.Equal(t, "2025-06", c.Previous.Month)
	assert.Equal(t, 50.0, c.KWhDeltaPercent)
	assert.Equal(t, 50.0, c.CostDeltaPercent)
}

func TestCompareJanuaryRollsToPriorDecember(t *testing.T) {
	usage := []models.DailyUsage{
		record(time.Date(2025, time.January, 10, 0, 0, 0, 0, time.UTC), 10, 50, false),
		record(time.Date(2024, time.December, 10, 0, 0, 0, 0, time.UTC), 20, 100, false),
	}

	c := Compare(usage, 2025, time.January)

	assert.Equal(t, "2024-12", c.Previous.Month)
	assert.Equal(t, -50.0, c.KWhDeltaPercent)
}

func TestCompareEmptyPreviousMonth(t *testing.T) {
	usage := []models.DailyUsage{
		record(time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC), 30, 150, false),
	}

	c := Compare(usage, 2025, time.July)

	assert.Equal(t, 0.0, c.KWhDeltaPercent)
	assert.Equal(t, 0.0, c.CostDeltaPercent)
}

func TestPredictBillNoData(t *testing.T) {
	p := PredictBill(nil, time.Now())
	assert.False(t, p.HasData)
	assert.Equal(t, 0.0, p.PredictedKWh)
}

func TestPredictBillProjectsRecentAverage(t *testing.T) {
	today := time.Date(2025, time.July, 15, 0, 0, 0, 0, time.UTC)
	usage := []models.DailyUsage{
		record(today.AddDate(0, 0, -1), 10, 44, false),
		record(today.AddDate(0, 0, -2), 10, 44, false),
		record(today.AddDate(0, 0, -3), 10, 44, false),
	}

	p := PredictBill(usage, today)

	require.True(t, p.HasData)
	assert.Equal(t, 300.0, p.PredictedKWh)
	assert.Equal(t, 10.0, p.AvgDailyKWh)
	// 300 monthly units double to 600 bi-monthly: 2645 total, halved.
	assert.Equal(t, 1322.5, p.PredictedCost)
	assert.Equal(t, "2025-07", p.CurrentMonth)
	assert.Equal(t, 30.0, p.KWhSoFar)
	assert.Equal(t, 3, p.DaysRecorded)
}

func TestUsagePatternsWeekendHeavy(t *testing.T) {
	// Saturday 2025-07-05 and Sunday 2025-07-06 run hotter than weekdays.
	usage := []models.DailyUsage{
		record(time.Date(2025, time.July, 5, 0, 0, 0, 0, time.UTC), 20, 100, false),
		record(time.Date(2025, time.July, 6, 0, 0, 0, 0, time.UTC), 22, 110, false),
		record(time.Date(2025, time.July, 7, 0, 0, 0, 0, time.UTC), 10, 50, false),
		record(time.Date(2025, time.July, 8, 0, 0, 0, 0, time.UTC), 12, 60, false),
	}

	p := UsagePatterns(usage)

	assert.Equal(t, HigherWeekends, p.Pattern)
	assert.Equal(t, 21.0, p.WeekendAvgKWh)
	assert.Equal(t, 11.0, p.WeekdayAvgKWh)
	assert.Equal(t, "Sunday", p.PeakDay)
	assert.Equal(t, "Monday", p.LowDay)
}

func TestUsagePatternsEmpty(t *testing.T) {
	p := UsagePatterns(nil)

	assert.Equal(t, HigherWeekdays, p.Pattern)
	assert.Empty(t, p.PeakDay)
}

func TestSummarize(t *testing.T) {
	today := time.Date(2025, time.July, 15, 0, 0, 0, 0, time.UTC)

	// 15 days of history, newest first: last 7 days at 12 kWh, the 7
	// before at 10 kWh, plus one older day.
	var usage []models.DailyUsage
	for i := 0; i < 7; i++ {
		usage = append(usage, record(today.AddDate(0, 0, -i), 12, 55, i == 0))
	}
	for i := 7; i < 14; i++ {
		usage = append(usage, record(today.AddDate(0, 0, -i), 10, 44, false))
	}
	usage = append(usage, record(today.AddDate(0, 0, -14), 9, 40, false))

	s := Summarize(usage, today)

	assert.Equal(t, 12.0, s.TodayKWh)
	assert.True(t, s.TodayAnomaly)
	assert.Equal(t, 84.0, s.WeekTotalKWh)
	assert.Equal(t, 12.0, s.WeekAvgKWh)
	assert.InDelta(t, 20.0, s.TrendPercent, 0.01)
	assert.True(t, s.Prediction.HasData)
	assert.Len(t, s.RecentUsage, 7)
}
