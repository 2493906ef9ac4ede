// Package billing tracks the TNEB billing cycle and monthly consumption
// goals.
//
// A cycle is anchored by the date and meter reading of the last issued
// bill. Consumption to date is always recomputed from stored readings
// against that anchor; no running total is kept.
package billing

import (
	"math"
	"time"

	"github.com/wattwise/wattwise/internal/tariff"
	"github.com/wattwise/wattwise/pkg/models"
)

const (
	// nominalCycleDays is the length of a TNEB bi-monthly cycle.
	nominalCycleDays = 60
	// closingSoonDays is when the cycle status starts warning.
	closingSoonDays = 55
)

// CycleStatus describes the current billing cycle's progress.
type CycleStatus struct {
	LastBillDate        time.Time   `json:"last_bill_date"`
	LastBillReading     float64     `json:"last_bill_reading"`
	CurrentReading      float64     `json:"current_reading"`
	CycleConsumptionKWh float64     `json:"cycle_consumption_kwh"`
	BillingPeriodMonths int         `json:"billing_period_months"`
	DaysElapsed         int         `json:"days_elapsed"`
	CycleLengthDays     int         `json:"cycle_length_days"`
	ClosingSoon         bool        `json:"closing_soon"`
	Ended               bool        `json:"ended"`
	EstimatedBill       tariff.Bill `json:"estimated_bill"`
}

// Status computes cycle progress from the stored cycle anchor and the
// full reading history. The current reading is the highest reading dated
// on or after the cycle start; with none, the anchor reading stands and
// consumption is zero. Consumption never goes negative.
func Status(cycle models.BillingCycle, readings []models.MeterReading, today time.Time) CycleStatus {
	current := cycle.LastBillReading
	for _, r := range readings {
		if r.Date.Before(cycle.LastBillDate) {
			continue
		}
		if r.ReadingKWh > current {
			current = r.ReadingKWh
		}
	}

	consumption := math.Max(0, current-cycle.LastBillReading)

	days := int(today.Sub(cycle.LastBillDate).Hours() / 24)
	if days < 0 {
		days = 0
	}

	return CycleStatus{
		LastBillDate:        cycle.LastBillDate,
		LastBillReading:     cycle.LastBillReading,
		CurrentReading:      current,
		CycleConsumptionKWh: tariff.Round2(consumption),
		BillingPeriodMonths: cycle.BillingPeriodMonths,
		DaysElapsed:         days,
		CycleLengthDays:     nominalCycleDays,
		ClosingSoon:         days >= closingSoonDays && days < nominalCycleDays,
		Ended:               days >= nominalCycleDays,
		EstimatedBill:       tariff.ComputeBimonthlyBill(consumption),
	}
}
