package report

import (
	"time"

	"github.com/wattwise/wattwise/internal/tariff"
	"github.com/wattwise/wattwise/pkg/models"
)

// PatternLabel names which day-type bucket averages higher.
type PatternLabel string

const (
	HigherWeekends PatternLabel = "higher_weekends"
	HigherWeekdays PatternLabel = "higher_weekdays"
)

// UsagePattern is the weekday/weekend split of historical usage.
type UsagePattern struct {
	WeekdayAvgKWh float64      `json:"weekday_avg_kwh"`
	WeekendAvgKWh float64      `json:"weekend_avg_kwh"`
	Pattern       PatternLabel `json:"pattern"`
	PeakDay       string       `json:"peak_day,omitempty"`
	LowDay        string       `json:"low_day,omitempty"`
}

// UsagePatterns buckets days by weekday/weekend, averages each bucket,
// and labels the pattern by whichever average is higher. Peak and low
// days are the weekdays with the highest and lowest per-day average.
func UsagePatterns(usage []models.DailyUsage) UsagePattern {
	var sums [7]float64
	var counts [7]int

	for _, u := range usage {
		wd := int(u.Date.Weekday())
		sums[wd] += u.ConsumptionKWh
		counts[wd]++
	}

	var weekdaySum, weekendSum float64
	var weekdayCount, weekendCount int
	for wd := 0; wd < 7; wd++ {
		if time.Weekday(wd) == time.Saturday || time.Weekday(wd) == time.Sunday {
			weekendSum += sums[wd]
			weekendCount += counts[wd]
		} else {
			weekdaySum += sums[wd]
			weekdayCount += counts[wd]
		}
	}

	p := UsagePattern{Pattern: HigherWeekdays}
	if weekdayCount > 0 {
		p.WeekdayAvgKWh = tariff.Round2(weekdaySum / float64(weekdayCount))
	}
	if weekendCount > 0 {
		p.WeekendAvgKWh = tariff.Round2(weekendSum / float64(weekendCount))
	}
	if p.WeekendAvgKWh > p.WeekdayAvgKWh {
		p.Pattern = HigherWeekends
	}

	peak, low := -1, -1
	for wd := 0; wd < 7; wd++ {
		if counts[wd] == 0 {
			continue
		}
		avg := sums[wd] / float64(counts[wd])
		if peak < 0 || avg > sums[peak]/float64(counts[peak]) {
			peak = wd
		}
		if low < 0 || avg < sums[low]/float64(counts[low]) {
			low = wd
		}
	}
	if peak >= 0 {
		p.PeakDay = time.Weekday(peak).String()
		p.LowDay = time.Weekday(low).String()
	}

	return p
}
