// Package report computes monthly, yearly, and comparative statistics
// from persisted daily usage records.
//
// Every function here is pure: it takes the full usage history (as the
// storage layer returns it, newest first) plus plain parameters and
// returns plain data. Absent data is an empty report, not an error.
package report

import (
	"fmt"
	"sort"
	"time"

	"github.com/wattwise/wattwise/internal/tariff"
	"github.com/wattwise/wattwise/pkg/models"
)

// MonthlyStats aggregates one calendar month of daily usage.
type MonthlyStats struct {
	DaysRecorded int     `json:"days_recorded"`
	TotalKWh     float64 `json:"total_kwh"`
	TotalCost    float64 `json:"total_cost"`
	AvgDailyKWh  float64 `json:"avg_daily_kwh"`
	PeakKWh      float64 `json:"peak_kwh"`
	MinKWh       float64 `json:"min_kwh"`
	AnomalyDays  int     `json:"anomaly_days"`
}

// MonthlyReport is the month's stats plus its chronological daily data.
type MonthlyReport struct {
	Month string              `json:"month"`
	Stats MonthlyStats        `json:"stats"`
	Daily []models.DailyUsage `json:"daily_data"`
}

// Monthly filters usage to one year-month and aggregates it.
func Monthly(usage []models.DailyUsage, year int, month time.Month) MonthlyReport {
	report := MonthlyReport{Month: fmt.Sprintf("%04d-%02d", year, month)}

	for _, u := range usage {
		if u.Date.Year() != year || u.Date.Month() != month {
			continue
		}
		report.Daily = append(report.Daily, u)

		s := &report.Stats
		s.TotalKWh += u.ConsumptionKWh
		s.TotalCost += u.Cost
		if s.DaysRecorded == 0 || u.ConsumptionKWh > s.PeakKWh {
			s.PeakKWh = u.ConsumptionKWh
		}
		if s.DaysRecorded == 0 || u.ConsumptionKWh < s.MinKWh {
			s.MinKWh = u.ConsumptionKWh
		}
		if u.IsAnomaly {
			s.AnomalyDays++
		}
		s.DaysRecorded++
	}

	if report.Stats.DaysRecorded > 0 {
		report.Stats.AvgDailyKWh = tariff.Round2(report.Stats.TotalKWh / float64(report.Stats.DaysRecorded))
	}
	report.Stats.TotalKWh = tariff.Round2(report.Stats.TotalKWh)
	report.Stats.TotalCost = tariff.Round2(report.Stats.TotalCost)

	sort.Slice(report.Daily, func(i, j int) bool {
		return report.Daily[i].Date.Before(report.Daily[j].Date)
	})

	return report
}

// MonthTotal is one month's row in a yearly summary.
type MonthTotal struct {
	Month        int     `json:"month"`
	TotalKWh     float64 `json:"total_kwh"`
	TotalCost    float64 `json:"total_cost"`
	DaysRecorded int     `json:"days_recorded"`
}

// YearlySummary groups a year of usage by month.
type YearlySummary struct {
	Year           int          `json:"year"`
	MonthlyData    []MonthTotal `json:"monthly_data"`
	TotalKWh       float64      `json:"total_kwh"`
	TotalCost      float64      `json:"total_cost"`
	MonthsRecorded int          `json:"months_recorded"`
}

// Yearly sums usage per month for one year, listing only months that
// have data.
func Yearly(usage []models.DailyUsage, year int) YearlySummary {
	var months [13]MonthTotal

	for _, u := range usage {
		if u.Date.Year() != year {
			continue
		}
		m := &months[int(u.Date.Month())]
		m.TotalKWh += u.ConsumptionKWh
		m.TotalCost += u.Cost
		m.DaysRecorded++
	}

	summary := YearlySummary{Year: year}
	for i := 1; i <= 12; i++ {
		if months[i].DaysRecorded == 0 {
			continue
		}
		months[i].Month = i
		months[i].TotalKWh = tariff.Round2(months[i].TotalKWh)
		months[i].TotalCost = tariff.Round2(months[i].TotalCost)
		summary.MonthlyData = append(summary.MonthlyData, months[i])
		summary.TotalKWh += months[i].TotalKWh
		summary.TotalCost += months[i].TotalCost
	}

	summary.TotalKWh = tariff.Round2(summary.TotalKWh)
	summary.TotalCost = tariff.Round2(summary.TotalCost)
	summary.MonthsRecorded = len(summary.MonthlyData)
	return summary
}

// Comparison holds a month against its immediately preceding month.
type Comparison struct {
	Current          MonthlyReport `json:"current"`
	Previous         MonthlyReport `json:"previous"`
	KWhDeltaPercent  float64       `json:"kwh_delta_percent"`
	CostDeltaPercent float64       `json:"cost_delta_percent"`
}

// Compare aggregates a month and the month before it. January rolls back
// to December of the prior year. Percent deltas are zero when the prior
// month had no usage.
func Compare(usage []models.DailyUsage, year int, month time.Month) Comparison {
	prevYear, prevMonth := year, month-1
	if month == time.January {
		prevYear, prevMonth = year-1, time.December
	}

	c := Comparison{
		Current:  Monthly(usage, year, month),
		Previous: Monthly(usage, prevYear, prevMonth),
	}

	if c.Previous.Stats.TotalKWh > 0 {
		c.KWhDeltaPercent = tariff.Round2((c.Current.Stats.TotalKWh - c.Previous.Stats.TotalKWh) / c.Previous.Stats.TotalKWh * 100)
	}
	if c.Previous.Stats.TotalCost > 0 {
		c.CostDeltaPercent = tariff.Round2((c.Current.Stats.TotalCost - c.Previous.Stats.TotalCost) / c.Previous.Stats.TotalCost * 100)
	}

	return c
}

// BillPrediction projects the next monthly bill from recent usage.
type BillPrediction struct {
	HasData       bool                `json:"has_data"`
	PredictedKWh  float64             `json:"predicted_monthly_kwh"`
	PredictedCost float64             `json:"predicted_monthly_cost"`
	AvgDailyKWh   float64             `json:"avg_daily_kwh"`
	AvgDailyCost  float64             `json:"avg_daily_cost"`
	SlabBreakdown []tariff.SlabCharge `json:"slab_breakdown"`
	CurrentMonth  string              `json:"current_month"`
	KWhSoFar      float64             `json:"kwh_so_far"`
	CostSoFar     float64             `json:"cost_so_far"`
	DaysRecorded  int                 `json:"days_recorded"`
}

// PredictBill averages the most recent 30 or fewer daily consumptions,
// projects to 30 days, and prices the projection through the slab
// engine. Month-to-date figures come from the month containing today.
func PredictBill(usage []models.DailyUsage, today time.Time) BillPrediction {
	if len(usage) == 0 {
		return BillPrediction{}
	}

	recent := usage
	if len(recent) > 30 {
		recent = recent[:30]
	}

	var sum float64
	for _, u := range recent {
		sum += u.ConsumptionKWh
	}
	avgDaily := sum / float64(len(recent))
	predictedKWh := tariff.Round2(avgDaily * 30)

	bill := tariff.EstimateMonthlyBill(predictedKWh)
	current := Monthly(usage, today.Year(), today.Month())

	return BillPrediction{
		HasData:       true,
		PredictedKWh:  predictedKWh,
		PredictedCost: bill.TotalAmount,
		AvgDailyKWh:   tariff.Round2(avgDaily),
		AvgDailyCost:  tariff.EstimateDailyCost(avgDaily, predictedKWh),
		SlabBreakdown: bill.Breakdown,
		CurrentMonth:  current.Month,
		KWhSoFar:      current.Stats.TotalKWh,
		CostSoFar:     current.Stats.TotalCost,
		DaysRecorded:  current.Stats.DaysRecorded,
	}
}
