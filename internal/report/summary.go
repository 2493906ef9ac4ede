package report

import (
	"time"

	"github.com/wattwise/wattwise/internal/tariff"
	"github.com/wattwise/wattwise/pkg/models"
)

// Summary is the dashboard view: today, the trailing week, and the bill
// projection in one result.
type Summary struct {
	TodayKWh      float64             `json:"today_kwh"`
	TodayCost     float64             `json:"today_cost"`
	TodayAnomaly  bool                `json:"today_anomaly"`
	WeekTotalKWh  float64             `json:"week_total_kwh"`
	WeekTotalCost float64             `json:"week_total_cost"`
	WeekAvgKWh    float64             `json:"week_avg_kwh"`
	TrendPercent  float64             `json:"trend_percent"`
	Prediction    BillPrediction      `json:"prediction"`
	RecentUsage   []models.DailyUsage `json:"recent_usage"`
}

// Summarize builds the dashboard summary from usage history (newest
// first). The trend compares the last 7 recorded days against the 7
// before them and is zero until 14 days exist.
func Summarize(usage []models.DailyUsage, today time.Time) Summary {
	s := Summary{Prediction: PredictBill(usage, today)}

	for _, u := range usage {
		if sameDay(u.Date, today) {
			s.TodayKWh = u.ConsumptionKWh
			s.TodayCost = u.Cost
			s.TodayAnomaly = u.IsAnomaly
			break
		}
	}

	week := usage
	if len(week) > 7 {
		week = week[:7]
	}
	for _, u := range week {
		s.WeekTotalKWh += u.ConsumptionKWh
		s.WeekTotalCost += u.Cost
	}
	if len(week) > 0 {
		s.WeekAvgKWh = tariff.Round2(s.WeekTotalKWh / float64(len(week)))
	}
	s.WeekTotalKWh = tariff.Round2(s.WeekTotalKWh)
	s.WeekTotalCost = tariff.Round2(s.WeekTotalCost)
	s.RecentUsage = week

	if len(usage) >= 14 {
		var thisWeek, lastWeek float64
		for _, u := range usage[:7] {
			thisWeek += u.ConsumptionKWh
		}
		for _, u := range usage[7:14] {
			lastWeek += u.ConsumptionKWh
		}
		if lastWeek > 0 {
			s.TrendPercent = tariff.Round2((thisWeek - lastWeek) / lastWeek * 100)
		}
	}

	return s
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}
