package billing

import (
	"errors"

	"github.com/wattwise/wattwise/internal/tariff"
	"github.com/wattwise/wattwise/pkg/models"
)

// DefaultAlertThreshold is the percent of the goal at which progress
// starts warning.
const DefaultAlertThreshold = 80.0

var errNegativeGoal = errors.New("budget goals must not be negative")

// NewBudget validates and builds a budget. Goals of zero mean unset;
// negative goals or thresholds are rejected outright rather than
// corrected. A zero threshold takes the default.
func NewBudget(kwhGoal, costGoal, alertThreshold float64) (models.Budget, error) {
	if kwhGoal < 0 || costGoal < 0 || alertThreshold < 0 {
		return models.Budget{}, errNegativeGoal
	}
	if alertThreshold == 0 {
		alertThreshold = DefaultAlertThreshold
	}
	return models.Budget{
		MonthlyKWhGoal:  kwhGoal,
		MonthlyCostGoal: costGoal,
		AlertThreshold:  alertThreshold,
	}, nil
}

// BudgetProgress is the current month measured against the goal.
type BudgetProgress struct {
	Budget           models.Budget `json:"budget"`
	CurrentKWh       float64       `json:"current_kwh"`
	KWhProgress      float64       `json:"kwh_progress"`
	OverBudget       bool          `json:"over_budget"`
	ApproachingLimit bool          `json:"approaching_limit"`
}

// Progress measures current-month consumption against the kWh goal.
// Progress is zero when no goal is set, so an empty state renders
// cleanly downstream.
func Progress(budget models.Budget, currentMonthKWh float64) BudgetProgress {
	p := BudgetProgress{
		Budget:     budget,
		CurrentKWh: tariff.Round2(currentMonthKWh),
	}

	if budget.MonthlyKWhGoal <= 0 {
		return p
	}

	threshold := budget.AlertThreshold
	if threshold <= 0 {
		threshold = DefaultAlertThreshold
	}

	p.KWhProgress = tariff.Round2(currentMonthKWh / budget.MonthlyKWhGoal * 100)
	p.OverBudget = p.KWhProgress >= 100
	p.ApproachingLimit = p.KWhProgress >= threshold
	return p
}
