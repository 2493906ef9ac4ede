// Package tariff implements the Tamil Nadu (TNEB) domestic electricity
// slab rate calculation.
//
// TNEB bills once every two calendar months. The 100 free units and all
// slab boundaries apply to the two-month total, so monthly figures must
// be derived by doubling the units, pricing the bi-monthly total, and
// halving the resulting cost. A monthly-slab table would price them wrong.
package tariff

import (
	"math"
	"strconv"
)

// Slab is one contiguous unit range with its own per-unit rate.
type Slab struct {
	Min  float64 `json:"min"`
	Max  float64 `json:"max"` // +Inf on the last slab
	Rate float64 `json:"rate"`
}

// BimonthlySlabs is the TNEB domestic tariff for a two-month billing
// period, in rupees per unit. This table encodes the real-world tariff;
// changing it changes billed amounts.
var BimonthlySlabs = []Slab{
	{Min: 0, Max: 100, Rate: 0.00}, // free for domestic consumers
	{Min: 101, Max: 200, Rate: 2.35},
	{Min: 201, Max: 400, Rate: 4.70},
	{Min: 401, Max: 500, Rate: 6.30},
	{Min: 501, Max: 600, Rate: 8.40},
	{Min: 601, Max: 800, Rate: 9.45},
	{Min: 801, Max: 1000, Rate: 10.50},
	{Min: 1001, Max: math.Inf(1), Rate: 11.55},
}

// SlabCharge is the portion of a bill attributable to one slab.
type SlabCharge struct {
	Slab   string  `json:"slab"`
	Units  float64 `json:"units"`
	Rate   float64 `json:"rate"`
	Amount float64 `json:"amount"`
}

// Bill is a priced consumption total with its per-slab breakdown. For
// monthly estimates BimonthlyTotal holds the full two-month amount the
// estimate was halved from.
type Bill struct {
	TotalUnits     float64      `json:"total_units"`
	TotalAmount    float64      `json:"total_amount"`
	AverageRate    float64      `json:"average_rate"`
	Breakdown      []SlabCharge `json:"breakdown"`
	BimonthlyTotal float64      `json:"bimonthly_total,omitempty"`
}

// width returns the number of units a slab covers. Widths are derived
// from successive upper bounds so the slabs tile [0, Inf) exactly: the
// 0-100 slab covers units 1..100, the 101-200 slab units 101..200, etc.
func width(i int) float64 {
	if math.IsInf(BimonthlySlabs[i].Max, 1) {
		return math.Inf(1)
	}
	if i == 0 {
		return BimonthlySlabs[0].Max
	}
	return BimonthlySlabs[i].Max - BimonthlySlabs[i-1].Max
}

// Label formats a slab range for display ("101-200", "1001+").
func (s Slab) Label() string {
	if math.IsInf(s.Max, 1) {
		return strconv.Itoa(int(s.Min)) + "+"
	}
	return strconv.Itoa(int(s.Min)) + "-" + strconv.Itoa(int(s.Max))
}

// ComputeBimonthlyBill apportions a two-month consumption total across
// the slabs in ascending order and prices each portion at its slab rate.
// Negative input is clamped to zero, never rejected. The breakdown lists
// only slabs that received units.
func ComputeBimonthlyBill(totalUnits float64) Bill {
	totalUnits = math.Max(0, totalUnits)
	remaining := totalUnits

	var totalCost float64
	var breakdown []SlabCharge

	for i, slab := range BimonthlySlabs {
		if remaining <= 0 {
			break
		}

		units := math.Min(remaining, width(i))
		cost := units * slab.Rate
		totalCost += cost

		if units > 0 {
			breakdown = append(breakdown, SlabCharge{
				Slab:   slab.Label(),
				Units:  Round2(units),
				Rate:   slab.Rate,
				Amount: Round2(cost),
			})
		}

		remaining -= units
	}

	avgRate := 0.0
	if totalUnits > 0 {
		avgRate = totalCost / totalUnits
	}

	return Bill{
		TotalUnits:  Round2(totalUnits),
		TotalAmount: Round2(totalCost),
		AverageRate: Round2(avgRate),
		Breakdown:   breakdown,
	}
}

// EstimateMonthlyBill prices a monthly consumption figure. The free
// allowance and slab boundaries reset per bi-monthly cycle, so the units
// are doubled, priced against the bi-monthly table, and the cost halved.
// The breakdown stays in bi-monthly units.
func EstimateMonthlyBill(monthlyUnits float64) Bill {
	monthlyUnits = math.Max(0, monthlyUnits)
	bimonthly := ComputeBimonthlyBill(monthlyUnits * 2)

	return Bill{
		TotalUnits:     Round2(monthlyUnits),
		TotalAmount:    Round2(bimonthly.TotalAmount / 2),
		AverageRate:    bimonthly.AverageRate,
		Breakdown:      bimonthly.Breakdown,
		BimonthlyTotal: bimonthly.TotalAmount,
	}
}

// EstimateDailyCost allocates a share of the estimated monthly bill to a
// single day, proportional to the day's consumption. This prices the day
// at the household's marginal slab position rather than in isolation: a
// low-usage day mid-cycle still costs the high-slab rate when the month's
// cumulative usage is already there. A monthlyEstimateKWh <= 0 defaults
// to dailyKWh*30.
func EstimateDailyCost(dailyKWh, monthlyEstimateKWh float64) float64 {
	dailyKWh = math.Max(0, dailyKWh)
	if monthlyEstimateKWh <= 0 {
		monthlyEstimateKWh = dailyKWh * 30
	}
	if monthlyEstimateKWh <= 0 {
		return 0
	}

	monthly := EstimateMonthlyBill(monthlyEstimateKWh)
	return Round2(dailyKWh / monthlyEstimateKWh * monthly.TotalAmount)
}

// SlabInfo describes where a consumption total sits in the schedule.
type SlabInfo struct {
	CurrentSlab     string  `json:"current_slab"`
	CurrentRate     float64 `json:"current_rate"`
	NextSlabAt      float64 `json:"next_slab_at,omitempty"`       // 0 on the last slab
	UnitsToNextSlab float64 `json:"units_to_next_slab,omitempty"` // 0 on the last slab
}

// Lookup returns the slab a consumption total falls in. Units are
// interpreted as bi-monthly unless monthly is set, in which case they are
// doubled first.
func Lookup(units float64, monthly bool) SlabInfo {
	if monthly {
		units *= 2
	}
	units = math.Max(0, units)

	for _, slab := range BimonthlySlabs {
		if units <= slab.Max {
			info := SlabInfo{
				CurrentSlab: slab.Label(),
				CurrentRate: slab.Rate,
			}
			if !math.IsInf(slab.Max, 1) {
				info.NextSlabAt = slab.Max + 1
				info.UnitsToNextSlab = math.Max(0, slab.Max-units+1)
			}
			return info
		}
	}

	last := BimonthlySlabs[len(BimonthlySlabs)-1]
	return SlabInfo{CurrentSlab: last.Label(), CurrentRate: last.Rate}
}

// Round2 rounds to two decimal places, the precision used for all stored
// consumption and cost figures.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
