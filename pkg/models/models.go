package models

import "time"

// TimeOfDay identifies which of the two daily meter readings a value is.
type TimeOfDay string

const (
	Morning TimeOfDay = "morning"
	Night   TimeOfDay = "night"
)

// Valid reports whether t is one of the two accepted reading slots.
func (t TimeOfDay) Valid() bool {
	return t == Morning || t == Night
}

// MeterReading is a single raw meter reading. Readings are unique per
// (user, date, time of day) and a day is complete once both slots exist.
type MeterReading struct {
	Date       time.Time `json:"date"`
	TimeOfDay  TimeOfDay `json:"time_of_day"`
	ReadingKWh float64   `json:"reading_kwh"`
}

// DailyUsage is the derived record for one completed day. It is always
// recomputed in full from the stored reading pair, never edited in place.
type DailyUsage struct {
	ID             int       `json:"id"`
	Date           time.Time `json:"date"`
	ConsumptionKWh float64   `json:"consumption_kwh"`
	Cost           float64   `json:"cost"`
	IsAnomaly      bool      `json:"is_anomaly"`
	ReadingsCount  int       `json:"readings_count"`
}

// BillingCycle anchors the current billing period to the last issued bill.
// Consumption since the cycle start is always computed from readings,
// never stored as a running total.
type BillingCycle struct {
	LastBillDate        time.Time `json:"last_bill_date"`
	LastBillReading     float64   `json:"last_bill_reading"`
	LastBillAmount      float64   `json:"last_bill_amount,omitempty"`
	BillingPeriodMonths int       `json:"billing_period_months"`
}

// Budget holds a user's monthly consumption goals. A zero goal means the
// goal is not set. AlertThreshold is a percentage (default 80).
type Budget struct {
	MonthlyKWhGoal  float64 `json:"monthly_kwh_goal,omitempty"`
	MonthlyCostGoal float64 `json:"monthly_cost_goal,omitempty"`
	AlertThreshold  float64 `json:"alert_threshold"`
}

// Appliance is a user-declared household appliance, used for estimated
// per-appliance consumption in exports.
type Appliance struct {
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	PowerRatingWatts float64 `json:"power_rating_watts"`
	UsageHoursPerDay float64 `json:"usage_duration_hours_per_day"`
	Category         string  `json:"category"`
}

// EstimatedDailyKWh returns the appliance's estimated daily consumption.
func (a Appliance) EstimatedDailyKWh() float64 {
	return a.PowerRatingWatts * a.UsageHoursPerDay / 1000
}
